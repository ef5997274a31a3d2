package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denoland-id/denoid/pkg/provider"
)

type record struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Token:   "pat-test",
		BaseID:  "appDenoID",
		Table:   "modules",
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing token", Config{BaseID: "app", Table: "modules"}},
		{"missing base", Config{Token: "t", Table: "modules"}},
		{"missing table", Config{Token: "t", BaseID: "app"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestClient_ListModules_Pagination(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v0/appDenoID/modules", r.URL.Path)
		assert.Equal(t, "Bearer pat-test", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, []string{"name", "desc"}, q["fields[]"])
		assert.Equal(t, "{active} = 1", q.Get("filterByFormula"))
		assert.Equal(t, "name", q.Get("sort[0][field]"))
		assert.Equal(t, "asc", q.Get("sort[0][direction]"))

		w.Header().Set("Content-Type", "application/json")
		switch q.Get("offset") {
		case "":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"records": []record{
					{ID: "rec1", Fields: map[string]string{"name": "abc", "desc": "first"}},
					{ID: "rec2", Fields: map[string]string{"name": "denon", "desc": "runner"}},
				},
				"offset": "itrPage2",
			})
		case "itrPage2":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"records": []record{
					{ID: "rec3", Fields: map[string]string{"name": "oak", "desc": "middleware"}},
				},
			})
		default:
			t.Errorf("unexpected offset %q", q.Get("offset"))
		}
	})

	got, err := client.ListModules(context.Background(), provider.DefaultQuery())
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []provider.Module{
		{Name: "abc", Desc: "first"},
		{Name: "denon", Desc: "runner"},
		{Name: "oak", Desc: "middleware"},
	}, got)
}

func TestClient_ListModules_APIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType string
		wantMsg  string
	}{
		{"string error", http.StatusNotFound, `{"error":"NOT_FOUND"}`, "NOT_FOUND", ""},
		{"object error", http.StatusUnprocessableEntity, `{"error":{"type":"INVALID_FILTER_BY_FORMULA","message":"bad formula"}}`, "INVALID_FILTER_BY_FORMULA", "bad formula"},
		{"no body", http.StatusInternalServerError, ``, "Internal Server Error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.ListModules(context.Background(), provider.DefaultQuery())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestClient_ListModules_InvalidRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"records": []record{
				{ID: "rec1", Fields: map[string]string{"name": "oak"}},
				{ID: "rec2", Fields: map[string]string{"name": "oak"}},
			},
		})
	})

	_, err := client.ListModules(context.Background(), provider.DefaultQuery())
	assert.ErrorIs(t, err, provider.ErrInvalidRecord)
}

func TestClient_ListModules_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records": [`))
	})

	_, err := client.ListModules(context.Background(), provider.DefaultQuery())
	assert.Error(t, err)
}

func TestClient_ListModules_RejectsUnsupportedQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})

	_, err := client.ListModules(context.Background(), provider.Query{SortBy: "desc"})
	assert.Error(t, err)
}

func TestClient_PageURL_InactiveAndUnsorted(t *testing.T) {
	client, err := NewClient(Config{Token: "t", BaseID: "app", Table: "third party"})
	require.NoError(t, err)

	u := client.pageURL(provider.Query{}, "")
	assert.Contains(t, u, "/v0/app/third%20party?")
	assert.NotContains(t, u, "filterByFormula")
	assert.NotContains(t, u, "sort")
	assert.Contains(t, u, "pageSize=100")
}
