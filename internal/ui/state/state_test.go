package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogadmin/internal/catalog"
	"catalogadmin/internal/ui/logic"
)

func TestMoveTabWraps(t *testing.T) {
	s := NewAppState(catalog.Cyrillic)
	require.Equal(t, catalog.KindBooks, s.ActiveKind())

	s.DeleteTarget = &catalog.Record{ID: 1}
	s.FilterQuery = "gogol"
	s.MoveTab(-1)
	assert.Equal(t, catalog.KindFolklore, s.ActiveKind())
	assert.Nil(t, s.DeleteTarget, "switching tabs drops a pending delete")
	assert.False(t, s.IsFiltered())

	s.MoveTab(len(s.Tabs) + 1)
	assert.Equal(t, catalog.KindBooks, s.ActiveKind())
}

func TestRecordsAndLoading(t *testing.T) {
	s := NewAppState(catalog.Cyrillic)
	assert.False(t, s.Loaded(catalog.KindBooks))

	s.SetLoading(catalog.KindBooks, true)
	assert.True(t, s.Busy())

	s.SetRecords(catalog.KindBooks, nil)
	assert.True(t, s.Loaded(catalog.KindBooks), "an empty listing still counts as loaded")
	assert.False(t, s.Busy())

	_, ok := s.RecordAt(0)
	assert.False(t, ok)

	s.SetRecords(catalog.KindBooks, []catalog.Record{{ID: 7}})
	rec, ok := s.RecordAt(0)
	require.True(t, ok)
	assert.Equal(t, 7, rec.ID)

	s.Invalidate(catalog.KindBooks)
	assert.False(t, s.Loaded(catalog.KindBooks))
}

func TestLogoutResetsSession(t *testing.T) {
	s := NewAppState(catalog.Latin)
	s.Screen = ScreenForm
	s.Session.Username = "admin"
	s.Session.Token = "tok"
	s.SetRecords(catalog.KindAuthors, []catalog.Record{{ID: 1}})
	s.SetLoading(catalog.KindBooks, true)
	s.ShowHelp = true

	s.Logout()
	assert.Equal(t, ScreenLogin, s.Screen)
	assert.False(t, s.Session.LoggedIn())
	assert.Equal(t, "admin", s.Session.Username, "the username is kept for the next login")
	assert.False(t, s.Loaded(catalog.KindAuthors))
	assert.False(t, s.Busy())
	assert.False(t, s.ShowHelp)
	assert.Equal(t, catalog.Latin, s.Language)
}

func TestVisibleRecords(t *testing.T) {
	s := NewAppState(catalog.Cyrillic)
	s.SetRecords(catalog.KindBooks, []catalog.Record{
		{ID: 9, Cells: []string{"9", "Тарас Бульба"}},
		{ID: 7, Cells: []string{"7", "Вий"}},
	})

	s.SortMode = logic.SortByName
	rec, ok := s.RecordAt(0)
	require.True(t, ok)
	assert.Equal(t, 7, rec.ID, "rows follow the sorted order")

	s.FilterQuery = "тарас"
	require.Len(t, s.Visible(), 1)
	rec, _ = s.RecordAt(0)
	assert.Equal(t, 9, rec.ID)
	_, ok = s.RecordAt(1)
	assert.False(t, ok)
	assert.Len(t, s.Records[catalog.KindBooks], 2, "filtering never drops stored records")
}
