package catalog

import (
	"context"
	"fmt"

	"catalogadmin/internal/api"
	"catalogadmin/internal/form"
)

// Column is a table column header
type Column struct {
	Title string
	Width int
}

// Record is one listed item, ready for the table and for an edit form
type Record struct {
	ID     int
	Cells  []string
	Values map[string]any
}

// Binding connects one resource to the screens: how it is listed, which
// form edits it, and how saves and deletes reach the backend
type Binding interface {
	Kind() Kind
	Title() string
	Columns() []Column
	List(ctx context.Context, lang Language) ([]Record, error)
	// Fields returns the form descriptors for record id, 0 for a new one.
	// Related listings are fetched to build select options.
	Fields(ctx context.Context, id int, lang Language) ([]form.Field, error)
	// Save creates when id is 0 and replaces otherwise. It returns the id
	// of the stored record.
	Save(ctx context.Context, id int, values map[string]any) (int, error)
	Delete(ctx context.Context, id int) error
}

type binding[T any] struct {
	kind    Kind
	title   string
	columns []Column
	res     *api.Resource[T]
	id      func(T) int
	cells   func(T, Language) []string
	values  func(T) map[string]any
	fields  func(context.Context, int, Language) ([]form.Field, error)
}

func (b *binding[T]) Kind() Kind        { return b.kind }
func (b *binding[T]) Title() string     { return b.title }
func (b *binding[T]) Columns() []Column { return b.columns }

func (b *binding[T]) List(ctx context.Context, lang Language) ([]Record, error) {
	items, err := b.res.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		records = append(records, Record{
			ID:     b.id(item),
			Cells:  b.cells(item, lang),
			Values: b.values(item),
		})
	}
	return records, nil
}

func (b *binding[T]) Fields(ctx context.Context, id int, lang Language) ([]form.Field, error) {
	fields, err := b.fields(ctx, id, lang)
	if err != nil {
		return nil, fmt.Errorf("load %s form: %w", b.kind, err)
	}
	return fields, nil
}

func (b *binding[T]) Save(ctx context.Context, id int, values map[string]any) (int, error) {
	var (
		item T
		err  error
	)
	if id == 0 {
		item, err = b.res.Create(ctx, values)
	} else {
		item, err = b.res.Update(ctx, id, values)
	}
	if err != nil {
		return 0, err
	}
	return b.id(item), nil
}

func (b *binding[T]) Delete(ctx context.Context, id int) error {
	return b.res.Delete(ctx, id)
}

// staticFields wraps a fixed field list
func staticFields(fields ...form.Field) func(context.Context, int, Language) ([]form.Field, error) {
	return func(context.Context, int, Language) ([]form.Field, error) {
		return fields, nil
	}
}
