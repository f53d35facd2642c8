package catalog

import (
	"context"
	"strconv"

	"github.com/charmbracelet/x/ansi"

	"catalogadmin/internal/api"
	"catalogadmin/internal/form"
	"catalogadmin/internal/multiselect"
)

// Service bundles one REST resource per catalog type
type Service struct {
	Categories *api.Resource[Category]
	Authors    *api.Resource[Author]
	Developers *api.Resource[Developer]
	Books      *api.Resource[Book]
	Folklore   *api.Resource[Folklore]

	bindings map[Kind]Binding
}

// NewService creates the catalog resources on top of client
func NewService(client *api.Client) *Service {
	s := &Service{
		Categories: api.NewResource[Category](client, string(KindCategories)),
		Authors:    api.NewResource[Author](client, string(KindAuthors)),
		Developers: api.NewResource[Developer](client, string(KindDevelopers)),
		Books:      api.NewResource[Book](client, string(KindBooks)),
		Folklore:   api.NewResource[Folklore](client, string(KindFolklore)),
	}
	s.bindings = map[Kind]Binding{
		KindCategories: s.categoryBinding(),
		KindAuthors:    s.authorBinding(),
		KindDevelopers: s.developerBinding(),
		KindBooks:      s.publicationBinding(KindBooks, "Books", s.Books),
		KindFolklore:   s.publicationBinding(KindFolklore, "Folklore", s.Folklore),
	}
	return s
}

// Binding returns the screen binding for kind
func (s *Service) Binding(kind Kind) (Binding, bool) {
	b, ok := s.bindings[kind]
	return b, ok
}

// Bindings returns every binding in tab order
func (s *Service) Bindings() []Binding {
	out := make([]Binding, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, s.bindings[k])
	}
	return out
}

func idField() form.Field {
	return form.Field{Name: "id", Label: "ID", Type: form.TypeNumber, ReadOnly: true}
}

func (s *Service) categoryBinding() Binding {
	return &binding[Category]{
		kind:    KindCategories,
		title:   "Categories",
		columns: []Column{{"ID", 6}, {"Name", 30}, {"Description", 40}, {"Parent", 8}},
		res:     s.Categories,
		id:      func(c Category) int { return c.ID },
		cells: func(c Category, l Language) []string {
			return []string{
				strconv.Itoa(c.ID),
				l.Pick(c.NameCyr, c.NameLat),
				clip(l.Pick(c.DescriptionCyr, c.DescriptionLat), 40),
				refOrBlank(c.Parent),
			}
		},
		values: func(c Category) map[string]any {
			return map[string]any{
				"id":              c.ID,
				"name_cyr":        c.NameCyr,
				"name_lat":        c.NameLat,
				"description_cyr": c.DescriptionCyr,
				"description_lat": c.DescriptionLat,
				"parent":          intOrNil(c.Parent),
			}
		},
		fields: s.categoryFields,
	}
}

// categoryFields offers every other category as a parent
func (s *Service) categoryFields(ctx context.Context, id int, lang Language) ([]form.Field, error) {
	categories, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	others := make([]Category, 0, len(categories))
	for _, c := range categories {
		if id == 0 || c.ID != id {
			others = append(others, c)
		}
	}
	return []form.Field{
		idField(),
		{Name: "name_cyr", Label: "Name (Cyrillic)", Type: form.TypeText, Required: true},
		{Name: "name_lat", Label: "Name (Latin)", Type: form.TypeText, Required: true},
		{Name: "description_cyr", Label: "Description (Cyrillic)", Type: form.TypeTextarea},
		{Name: "description_lat", Label: "Description (Latin)", Type: form.TypeTextarea},
		{Name: "parent", Label: "Parent category", Type: form.TypeSelect, Options: CategoryOptions(others, lang)},
	}, nil
}

func (s *Service) authorBinding() Binding {
	return &binding[Author]{
		kind:    KindAuthors,
		title:   "Authors",
		columns: []Column{{"ID", 6}, {"Name", 30}, {"Biography", 22}, {"Born", 12}, {"Died", 12}},
		res:     s.Authors,
		id:      func(a Author) int { return a.ID },
		cells: func(a Author, l Language) []string {
			return []string{
				strconv.Itoa(a.ID),
				l.Pick(a.NameCyr, a.NameLat),
				clip(l.Pick(a.BiographyCyr, a.BiographyLat), 20),
				a.DateOfBirth,
				stringOrBlank(a.DateOfDeath),
			}
		},
		values: func(a Author) map[string]any {
			return map[string]any{
				"id":            a.ID,
				"name_cyr":      a.NameCyr,
				"name_lat":      a.NameLat,
				"biography_cyr": a.BiographyCyr,
				"biography_lat": a.BiographyLat,
				"date_of_birth": a.DateOfBirth,
				"date_of_death": stringOrBlank(a.DateOfDeath),
				"photo":         a.Photo,
			}
		},
		fields: staticFields(
			idField(),
			form.Field{Name: "name_cyr", Label: "Name (Cyrillic)", Type: form.TypeText, Required: true},
			form.Field{Name: "name_lat", Label: "Name (Latin)", Type: form.TypeText, Required: true},
			form.Field{Name: "date_of_birth", Label: "Date of birth", Type: form.TypeDate, Required: true},
			form.Field{Name: "date_of_death", Label: "Date of death", Type: form.TypeDate},
			form.Field{Name: "biography_cyr", Label: "Biography (Cyrillic)", Type: form.TypeTextarea},
			form.Field{Name: "biography_lat", Label: "Biography (Latin)", Type: form.TypeTextarea},
			form.Field{Name: "photo", Label: "Photo", Type: form.TypeFile},
		),
	}
}

func (s *Service) developerBinding() Binding {
	return &binding[Developer]{
		kind:    KindDevelopers,
		title:   "Developers",
		columns: []Column{{"ID", 6}, {"Name", 30}, {"Description", 40}, {"Photo", 24}},
		res:     s.Developers,
		id:      func(d Developer) int { return d.ID },
		cells: func(d Developer, _ Language) []string {
			return []string{strconv.Itoa(d.ID), d.Name, clip(d.Description, 40), clip(d.Photo, 24)}
		},
		values: func(d Developer) map[string]any {
			return map[string]any{
				"id":          d.ID,
				"name":        d.Name,
				"description": d.Description,
				"photo":       d.Photo,
			}
		},
		fields: staticFields(
			idField(),
			form.Field{Name: "name", Label: "Name", Type: form.TypeText, Required: true},
			form.Field{Name: "description", Label: "Description", Type: form.TypeTextarea},
			form.Field{Name: "photo", Label: "Photo", Type: form.TypeFile},
		),
	}
}

// publicationBinding serves books and folklore, which share one shape
func (s *Service) publicationBinding(kind Kind, title string, res *api.Resource[Publication]) Binding {
	return &binding[Publication]{
		kind:  kind,
		title: title,
		columns: []Column{
			{"ID", 6}, {"Title", 30}, {"Publisher", 16}, {"Categories", 20},
			{"Authors", 20}, {"Status", 8}, {"Order", 5},
		},
		res: res,
		id:  func(p Publication) int { return p.ID },
		cells: func(p Publication, l Language) []string {
			return []string{
				strconv.Itoa(p.ID),
				l.Pick(p.TitleCyr, p.TitleLat),
				p.Publisher,
				clip(p.Categories.Names(l), 20),
				clip(p.Authors.Names(l), 20),
				activeLabel(p.IsActive),
				intOrBlank(p.Order),
			}
		},
		values: func(p Publication) map[string]any {
			return map[string]any{
				"id":               p.ID,
				"title_cyr":        p.TitleCyr,
				"title_lat":        p.TitleLat,
				"description_cyr":  p.DescriptionCyr,
				"description_lat":  p.DescriptionLat,
				"cover_image":      p.CoverImage,
				"epub_file_cyr":    p.EpubFileCyr,
				"epub_file_lat":    p.EpubFileLat,
				"publication_year": intOrNil(p.PublicationYear),
				"publisher":        p.Publisher,
				"is_active":        p.IsActive,
				"order":            intOrNil(p.Order),
				"categories":       p.Categories.IDs(),
				"authors":          p.Authors.IDs(),
			}
		},
		fields: s.publicationFields,
	}
}

func (s *Service) publicationFields(ctx context.Context, _ int, lang Language) ([]form.Field, error) {
	categories, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	authors, err := s.Authors.List(ctx)
	if err != nil {
		return nil, err
	}
	return []form.Field{
		idField(),
		{Name: "title_cyr", Label: "Title (Cyrillic)", Type: form.TypeText, Required: true},
		{Name: "title_lat", Label: "Title (Latin)", Type: form.TypeText, Required: true},
		{Name: "publication_year", Label: "Publication year", Type: form.TypeNumber},
		{Name: "publisher", Label: "Publisher", Type: form.TypeText},
		{Name: "categories", Label: "Categories", Type: form.TypeMultiSelect, Options: CategoryOptions(categories, lang), Required: true},
		{Name: "authors", Label: "Authors", Type: form.TypeMultiSelect, Options: AuthorOptions(authors, lang)},
		{Name: "is_active", Label: "Status", Type: form.TypeSelect, Options: statusOptions(), Required: true},
		{Name: "order", Label: "Order", Type: form.TypeNumber},
		{Name: "description_cyr", Label: "Description (Cyrillic)", Type: form.TypeTextarea},
		{Name: "description_lat", Label: "Description (Latin)", Type: form.TypeTextarea},
		{Name: "cover_image", Label: "Cover image", Type: form.TypeFile},
		{Name: "epub_file_cyr", Label: "EPUB (Cyrillic)", Type: form.TypeFile},
		{Name: "epub_file_lat", Label: "EPUB (Latin)", Type: form.TypeFile},
	}, nil
}

func statusOptions() []multiselect.Option[any] {
	return []multiselect.Option[any]{
		{Label: activeLabel(true), Value: true},
		{Label: activeLabel(false), Value: false},
	}
}

func activeLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

// clip shortens s to width cells
func clip(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intOrBlank(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func refOrBlank(p *int) string {
	if p == nil {
		return ""
	}
	return "#" + strconv.Itoa(*p)
}

func stringOrBlank(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
