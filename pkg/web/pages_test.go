package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/denoland-id/denoid/pkg/provider"
	"github.com/denoland-id/denoid/pkg/snapshot"
)

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Modules: []provider.Module{
			{Name: "baz", Desc: "foo helper"},
			{Name: "foo_bar", Desc: "A tool"},
			{Name: "oak", Desc: "Middleware framework"},
		},
		Generation: 4,
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name       string
		respStatus int
		errStatus  int
		expected   int
	}{
		{"response status wins", 500, 502, 500},
		{"falls back to error status", 0, 503, 503},
		{"defaults to not found", 0, 0, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveStatus(tt.respStatus, tt.errStatus))
		})
	}
}

func TestNewErrorPage(t *testing.T) {
	page := NewErrorPage(http.StatusInternalServerError)

	assert.Equal(t, "500 Internal Server Error", page.Heading())
	assert.Equal(t, "{\n  \"statusCode\": 500,\n  \"title\": \"Internal Server Error\"\n}", page.Dump())
}

func TestNewErrorPage_UnknownStatus(t *testing.T) {
	page := NewErrorPage(599)

	assert.Equal(t, "599", page.Heading())
	assert.Equal(t, "{\n  \"statusCode\": 599\n}", page.Dump())
}

func TestNewListPage(t *testing.T) {
	snap := testSnapshot()

	t.Run("blank query lists everything in order", func(t *testing.T) {
		page := NewListPage(snap, "  ", nil)
		assert.False(t, page.Empty())
		assert.Equal(t, []string{"baz", "foo_bar", "oak"}, rowNames(page))
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, uint64(4), page.Generation)
	})

	t.Run("query matches name or description", func(t *testing.T) {
		page := NewListPage(snap, "foo", nil)
		assert.Equal(t, []string{"baz", "foo_bar"}, rowNames(page))
		assert.Equal(t, "module-baz", page.Rows[0].ID)
		assert.Equal(t, "/x/baz", page.Rows[0].Href)
	})

	t.Run("no match is empty", func(t *testing.T) {
		page := NewListPage(snap, "zzz", nil)
		assert.True(t, page.Empty())
		assert.Equal(t, "zzz", page.Query)
	})

	t.Run("empty snapshot", func(t *testing.T) {
		page := NewListPage(&snapshot.Snapshot{}, "", nil)
		assert.True(t, page.Empty())
	})
}

type countingFilter struct {
	calls int
}

func (f *countingFilter) Filter(generation uint64, modules []provider.Module, query string) []provider.Module {
	f.calls++
	return modules[:1]
}

func TestNewListPage_UsesFilterer(t *testing.T) {
	f := &countingFilter{}
	page := NewListPage(testSnapshot(), "anything", f)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, []string{"baz"}, rowNames(page))
}

func TestNewDetailPage(t *testing.T) {
	page := NewDetailPage(DefaultSite(), provider.Module{Name: "oak", Desc: "Middleware framework"})

	assert.Equal(t, "https://denoland.id/x/oak/mod.ts", page.ImportURL)
	assert.Equal(t, "https://denoland.id/x/oak@master/mod.ts", page.BranchURL)
	assert.Equal(t, "master", page.DefaultBranch)
}

func rowNames(page ListPage) []string {
	names := make([]string, 0, len(page.Rows))
	for _, r := range page.Rows {
		names = append(names, r.Name)
	}
	return names
}
