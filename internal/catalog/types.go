package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind names a catalog resource; it doubles as the endpoint path
type Kind string

const (
	KindCategories Kind = "categories"
	KindAuthors    Kind = "authors"
	KindDevelopers Kind = "developers"
	KindBooks      Kind = "books"
	KindFolklore   Kind = "folklore"
)

// Kinds lists the resources in tab order
var Kinds = []Kind{KindBooks, KindAuthors, KindCategories, KindDevelopers, KindFolklore}

// Ref is a related record as embedded in a listing
type Ref struct {
	ID      int    `json:"id"`
	NameCyr string `json:"name_cyr,omitempty"`
	NameLat string `json:"name_lat,omitempty"`
}

// Refs is a list of related records. The backend answers with either plain
// ids or embedded objects carrying an "id"; both decode. Refs always encode
// as plain ids since that is what writes expect.
type Refs []Ref

func (r *Refs) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("refs: %w", err)
	}
	refs := make(Refs, 0, len(raw))
	for _, item := range raw {
		var id int
		if err := json.Unmarshal(item, &id); err == nil {
			refs = append(refs, Ref{ID: id})
			continue
		}
		var obj struct {
			ID      *int   `json:"id"`
			NameCyr string `json:"name_cyr"`
			NameLat string `json:"name_lat"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.ID == nil {
			return fmt.Errorf("refs: unexpected element %s", item)
		}
		refs = append(refs, Ref{ID: *obj.ID, NameCyr: obj.NameCyr, NameLat: obj.NameLat})
	}
	*r = refs
	return nil
}

func (r Refs) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.IDs())
}

// IDs returns the related ids in order
func (r Refs) IDs() []int {
	ids := make([]int, 0, len(r))
	for _, ref := range r {
		ids = append(ids, ref.ID)
	}
	return ids
}

// Names joins the related names in lang; refs without a name show as #id
func (r Refs) Names(lang Language) string {
	names := make([]string, 0, len(r))
	for _, ref := range r {
		name := lang.Pick(ref.NameCyr, ref.NameLat)
		if strings.TrimSpace(name) == "" {
			name = "#" + strconv.Itoa(ref.ID)
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

type Category struct {
	ID             int    `json:"id"`
	NameCyr        string `json:"name_cyr"`
	NameLat        string `json:"name_lat"`
	DescriptionCyr string `json:"description_cyr,omitempty"`
	DescriptionLat string `json:"description_lat,omitempty"`
	Parent         *int   `json:"parent"`
}

type Author struct {
	ID           int     `json:"id"`
	NameCyr      string  `json:"name_cyr"`
	NameLat      string  `json:"name_lat"`
	BiographyCyr string  `json:"biography_cyr,omitempty"`
	BiographyLat string  `json:"biography_lat,omitempty"`
	DateOfBirth  string  `json:"date_of_birth,omitempty"`
	DateOfDeath  *string `json:"date_of_death"`
	Photo        string  `json:"photo,omitempty"`
}

// Developer is not bilingual
type Developer struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Photo       string `json:"photo,omitempty"`
}

// Publication is the shape shared by books and folklore
type Publication struct {
	ID              int    `json:"id"`
	TitleCyr        string `json:"title_cyr"`
	TitleLat        string `json:"title_lat"`
	DescriptionCyr  string `json:"description_cyr,omitempty"`
	DescriptionLat  string `json:"description_lat,omitempty"`
	CoverImage      string `json:"cover_image,omitempty"`
	EpubFileCyr     string `json:"epub_file_cyr,omitempty"`
	EpubFileLat     string `json:"epub_file_lat,omitempty"`
	PublicationYear *int   `json:"publication_year"`
	Publisher       string `json:"publisher,omitempty"`
	IsActive        bool   `json:"is_active"`
	Order           *int   `json:"order"`
	Categories      Refs   `json:"categories"`
	Authors         Refs   `json:"authors"`
}

type (
	Book     = Publication
	Folklore = Publication
)
