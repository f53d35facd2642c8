package catalog

import (
	"catalogadmin/internal/multiselect"
)

func optionsOf[T any](items []T, lang Language, id func(T) int, label func(T, Language) string) []multiselect.Option[any] {
	out := make([]multiselect.Option[any], 0, len(items))
	for _, item := range items {
		out = append(out, multiselect.Option[any]{Label: label(item, lang), Value: id(item)})
	}
	return out
}

// CategoryOptions builds select options from a category listing
func CategoryOptions(items []Category, lang Language) []multiselect.Option[any] {
	return optionsOf(items, lang, func(c Category) int { return c.ID }, func(c Category, l Language) string {
		return l.Pick(c.NameCyr, c.NameLat)
	})
}

// AuthorOptions builds select options from an author listing
func AuthorOptions(items []Author, lang Language) []multiselect.Option[any] {
	return optionsOf(items, lang, func(a Author) int { return a.ID }, func(a Author, l Language) string {
		return l.Pick(a.NameCyr, a.NameLat)
	})
}
