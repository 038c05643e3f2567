package query

import (
	"testing"
	"time"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_AbsentKeysAddNoPredicate(t *testing.T) {
	f, err := ClimateDataView.Build(Params{})
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())

	where, args := f.Where()
	assert.Empty(t, where)
	assert.Nil(t, args)
}

func TestBuild_OnePredicatePerKey(t *testing.T) {
	f, err := ClimateDataView.Build(Params{
		KeyDataType:  "temperature",
		KeySourceID:  "7b0a3b5e-1f6b-4f0f-9a39-5c7b1d3d8a11",
		KeyStartDate: "2024-01-01",
		KeyEndDate:   "2024-01-31",
		KeyPage:      "3",
		"unknown":    "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.Len())
}

func TestBuild_BlankValueIsAbsent(t *testing.T) {
	f, err := AlertsView.Build(Params{KeySeverity: "   ", KeySearchText: ""})
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestBuild_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		view   *View
		params Params
		field  string
	}{
		{"unknown data type", ClimateDataView, Params{KeyDataType: "magma"}, KeyDataType},
		{"bad source id", ClimateDataView, Params{KeySourceID: "station-a"}, KeySourceID},
		{"bad start date", ClimateDataView, Params{KeyStartDate: "yesterday"}, KeyStartDate},
		{"bad end date", AlertsView, Params{KeyEndDate: "2024-13-45"}, KeyEndDate},
		{"bad boolean", ClimateDataView, Params{KeyIsAnomaly: "maybe"}, KeyIsAnomaly},
		{"unknown alert status", AlertsView, Params{KeyStatus: "pending"}, KeyStatus},
		{"unknown role", AccountsView, Params{KeyRoleFilter: "superuser"}, KeyRoleFilter},
		{"unknown priority", TicketsView, Params{KeyPriority: "whenever"}, KeyPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.view.Build(tt.params)
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestBuild_ScopesAppended(t *testing.T) {
	f, err := TicketsView.Build(Params{KeyStatus: "open"}, Eq("created_by", "u1"))
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	where, args := f.Where()
	assert.Equal(t, "WHERE status = ? AND created_by = ?", where)
	assert.Equal(t, []interface{}{"open", "u1"}, args)
}

func TestWhere_SearchEscapesWildcards(t *testing.T) {
	f := NewFilter(Search([]string{"title", "description"}, "50%_off"))
	where, args := f.Where()

	assert.Equal(t, "WHERE (title ILIKE ? OR description ILIKE ?)", where)
	require.Len(t, args, 2)
	assert.Equal(t, `%50\%\_off%`, args[0])
	assert.Equal(t, args[0], args[1])
}

func TestWhere_In(t *testing.T) {
	f := NewFilter(In("severity", []string{"low", "medium"}))
	where, args := f.Where()
	assert.Equal(t, "WHERE severity = ANY(?)", where)
	assert.Len(t, args, 1)
}

func TestEndDateCoversWholeDay(t *testing.T) {
	f, err := ClimateDataView.Build(Params{KeyStartDate: "2024-03-10", KeyEndDate: "2024-03-10"})
	require.NoError(t, err)

	row := func(ts time.Time) Getter {
		return func(column string) interface{} {
			if column == "cd.timestamp" {
				return ts
			}
			return nil
		}
	}

	assert.True(t, f.Match(row(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))))
	assert.True(t, f.Match(row(time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC))))
	assert.False(t, f.Match(row(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))))
	assert.False(t, f.Match(row(time.Date(2024, 3, 9, 23, 59, 59, 0, time.UTC))))
}

func TestMatch(t *testing.T) {
	record := map[string]interface{}{
		"username":  "Alice",
		"email":     "alice@example.com",
		"is_active": true,
		"severity":  "medium",
		"value":     20.5,
	}
	get := func(column string) interface{} { return record[column] }

	tests := []struct {
		name string
		f    *Filter
		want bool
	}{
		{"nil filter", nil, true},
		{"empty filter", NewFilter(), true},
		{"eq string", NewFilter(Eq("username", "Alice")), true},
		{"eq mismatch", NewFilter(Eq("username", "bob")), false},
		{"eq bool", NewFilter(Eq("is_active", true)), true},
		{"eq bool mismatch", NewFilter(Eq("is_active", false)), false},
		{"in", NewFilter(In("severity", []string{"low", "medium"})), true},
		{"not in", NewFilter(In("severity", []string{"high"})), false},
		{"search any column", NewFilter(Search([]string{"username", "email"}, "EXAMPLE")), true},
		{"search miss", NewFilter(Search([]string{"username"}, "example")), false},
		{"gte float", NewFilter(Gte("value", 20.5)), true},
		{"lte float", NewFilter(Lte("value", 10.0)), false},
		{"missing column never compares", NewFilter(Gte("timestamp", time.Now())), false},
		{"and", NewFilter(Eq("username", "Alice"), Eq("severity", "high")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Match(get))
		})
	}
}

func TestAndCopies(t *testing.T) {
	base := NewFilter(Eq("a", 1))
	extended := base.And(Eq("b", 2))
	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, extended.Len())
}

func TestParsePage(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-4"))
	assert.Equal(t, 7, ParsePage("7"))
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name                           string
		total, requested, size         int
		wantNumber, wantPages, wantOff int
	}{
		{"empty set is page one of one", 0, 5, 20, 1, 1, 0},
		{"first page", 45, 1, 20, 1, 3, 0},
		{"middle page", 45, 2, 20, 2, 3, 20},
		{"last page partial", 45, 3, 20, 3, 3, 40},
		{"out of range clamps to last", 45, 99, 20, 3, 3, 40},
		{"exact multiple", 40, 2, 20, 2, 2, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Paginate(tt.total, tt.requested, tt.size)
			assert.Equal(t, tt.wantNumber, w.Number)
			assert.Equal(t, tt.wantPages, w.TotalPages)
			assert.Equal(t, tt.wantOff, w.Offset)
			assert.Equal(t, tt.total, w.TotalItems)
		})
	}
}

func TestPageNineThousandOfThreeItemsMatchesPageOne(t *testing.T) {
	items := []string{"a", "b", "c"}

	far := ClimateDataView.Window(Params{KeyPage: "9999"}, len(items))
	first := ClimateDataView.Window(Params{KeyPage: "1"}, len(items))
	assert.Equal(t, first, far)

	page := NewPage(Slice(items, far), far)
	assert.Equal(t, items, page.Items)
	assert.Equal(t, 1, page.Number)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestNewPage_EmptyItemsNeverNil(t *testing.T) {
	w := Paginate(0, 1, TicketsPageSize)
	page := NewPage[string](nil, w)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, Slice(items, Window{Offset: 2, Size: 2}))
	assert.Equal(t, []int{5}, Slice(items, Window{Offset: 4, Size: 2}))
	assert.Equal(t, []int{}, Slice(items, Window{Offset: 10, Size: 2}))
}

func TestParseDate(t *testing.T) {
	ts, dateOnly, err := ParseDate("2024-05-01")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), ts)

	ts, dateOnly, err = ParseDate("2024-05-01T12:30:00+02:00")
	require.NoError(t, err)
	assert.False(t, dateOnly)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), ts)

	_, _, err = ParseDate("05/01/2024")
	assert.Error(t, err)
}
