package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageJSON(id, title string) map[string]any {
	return map[string]any{
		"object": "page",
		"id":     id,
		"properties": map[string]any{
			"Name": map[string]any{
				"type":  "title",
				"title": []map[string]any{{"plain_text": title}},
			},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"object":  "error",
		"status":  404,
		"code":    "object_not_found",
		"message": "Could not find database",
	})
}

func newTestClient(server *httptest.Server, token, id string) *Client {
	return NewClient(server.Client(), Options{
		BaseURL:      server.URL,
		Token:        token,
		DataSourceID: id,
		UserAgent:    "test-agent",
		Timeout:      5 * time.Second,
	})
}

func TestQuery_NotConfigured(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	for _, tc := range []struct{ token, id string }{{"", "ds"}, {"token", ""}, {"", ""}} {
		pages, err := newTestClient(server, tc.token, tc.id).Query(context.Background())
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Empty(t, pages)
	}
	assert.Zero(t, atomic.LoadInt32(&calls), "no request should be made without configuration")
}

func TestQuery_DataSourceIDFallsBackAfterNotFoundProbe(t *testing.T) {
	var queried string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/databases/ds-1":
			notFound(w)
		case r.Method == http.MethodPost && r.URL.Path == "/v1/data_sources/ds-1/query":
			queried = "ds-1"
			writeJSON(w, http.StatusOK, map[string]any{
				"results":  []any{pageJSON("p1", "First")},
				"has_more": false,
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer server.Close()

	pages, err := newTestClient(server, "secret", "ds-1").Query(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "ds-1", queried)
	assert.Equal(t, "p1", pages[0].ID)

	title, ok := pages[0].Properties.Title(PropertyName)
	assert.True(t, ok)
	assert.Equal(t, "First", title)
}

func TestQuery_DatabaseProbeResolvesChildDataSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/databases/db-1":
			writeJSON(w, http.StatusOK, map[string]any{
				"object":       "database",
				"id":           "db-1",
				"data_sources": []map[string]any{{"id": "child-ds", "name": "News"}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/data_sources/child-ds/query":
			writeJSON(w, http.StatusOK, map[string]any{
				"results":  []any{pageJSON("p1", "Child")},
				"has_more": false,
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			notFound(w)
		}
	}))
	defer server.Close()

	pages, err := newTestClient(server, "secret", "db-1").Query(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "p1", pages[0].ID)
}

func TestQuery_SendsFilterSortAndHeaders(t *testing.T) {
	var body queryRequest
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notFound(w)
			return
		}
		headers = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{}, "has_more": false})
	}))
	defer server.Close()

	_, err := newTestClient(server, "secret", "ds").Query(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))
	assert.Equal(t, DefaultVersion, headers.Get("Notion-Version"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))
	assert.Equal(t, "test-agent", headers.Get("User-Agent"))

	assert.Equal(t, "Status", body.Filter.Property)
	assert.Equal(t, "Published", body.Filter.Status.Equals)
	require.Len(t, body.Sorts, 1)
	assert.Equal(t, "Publication Date", body.Sorts[0].Property)
	assert.Equal(t, "descending", body.Sorts[0].Direction)
	assert.Empty(t, body.StartCursor)
}

func TestQuery_FollowsPaginationInOrder(t *testing.T) {
	var cursors []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notFound(w)
			return
		}
		var req queryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		cursors = append(cursors, req.StartCursor)

		switch req.StartCursor {
		case "":
			writeJSON(w, http.StatusOK, map[string]any{
				"results":     []any{pageJSON("p1", "One"), pageJSON("p2", "Two")},
				"has_more":    true,
				"next_cursor": "c2",
			})
		case "c2":
			writeJSON(w, http.StatusOK, map[string]any{
				"results":     []any{pageJSON("p3", "Three")},
				"has_more":    false,
				"next_cursor": nil,
			})
		default:
			t.Errorf("unexpected cursor %q", req.StartCursor)
		}
	}))
	defer server.Close()

	pages, err := newTestClient(server, "secret", "ds").Query(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
	assert.Equal(t, []string{"", "c2"}, cursors)
}

func TestQuery_APIErrorIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"object":  "error",
			"status":  401,
			"code":    "unauthorized",
			"message": "API token is invalid.",
		})
	}))
	defer server.Close()

	pages, err := newTestClient(server, "bad", "ds").Query(context.Background())
	assert.Nil(t, pages)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "unauthorized", apiErr.Code)
	assert.Equal(t, "API token is invalid.", apiErr.Message)
	assert.False(t, IsNotFound(err))
}

func TestQuery_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>bad gateway</html>")
	}))
	defer server.Close()

	_, err := newTestClient(server, "secret", "ds").Query(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "http_error", apiErr.Code)
}

func TestQuery_FailsWholeQueryWhenLaterPageFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notFound(w)
			return
		}
		var req queryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.StartCursor == "" {
			writeJSON(w, http.StatusOK, map[string]any{
				"results":     []any{pageJSON("p1", "One")},
				"has_more":    true,
				"next_cursor": "c2",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status": 400, "code": "validation_error", "message": "Could not find property",
		})
	}))
	defer server.Close()

	pages, err := newTestClient(server, "secret", "ds").Query(context.Background())
	assert.Error(t, err)
	assert.Nil(t, pages)
}

func TestQuery_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			notFound(w)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "{not json")
	}))
	defer server.Close()

	_, err := newTestClient(server, "secret", "ds").Query(context.Background())
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestProperties_Lookups(t *testing.T) {
	raw := `{
		"id": "p1",
		"properties": {
			"Name": {"type": "title", "title": [{"plain_text": "Tip "}, {"plain_text": "#5"}]},
			"Link": {"type": "url", "url": "https://youtu.be/abcdefghijk"},
			"Empty Link": {"type": "url", "url": null},
			"Category": {"type": "select", "select": {"name": "Tips & Tutorials"}},
			"No Category": {"type": "select", "select": null},
			"Status": {"type": "status", "status": {"name": "Published"}},
			"Publication Date": {"type": "date", "date": {"start": "2024-01-01", "end": null}},
			"Expiry Date": {"type": "date", "date": null},
			"Source": {"type": "rich_text", "rich_text": [{"plain_text": "  "}]}
		}
	}`

	var page Page
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	props := page.Properties

	title, ok := props.Title("Name")
	assert.True(t, ok)
	assert.Equal(t, "Tip #5", title)

	link, ok := props.URL("Link")
	assert.True(t, ok)
	assert.Equal(t, "https://youtu.be/abcdefghijk", link)

	_, ok = props.URL("Empty Link")
	assert.False(t, ok)

	category, ok := props.Select("Category")
	assert.True(t, ok)
	assert.Equal(t, "Tips & Tutorials", category)

	_, ok = props.Select("No Category")
	assert.False(t, ok)

	status, ok := props.Status("Status")
	assert.True(t, ok)
	assert.Equal(t, "Published", status)

	date, ok := props.Date("Publication Date")
	assert.True(t, ok)
	assert.Equal(t, "2024-01-01", date)

	_, ok = props.Date("Expiry Date")
	assert.False(t, ok)

	_, ok = props.RichText("Source")
	assert.False(t, ok, "whitespace-only rich text counts as absent")

	_, ok = props.RichText("Missing")
	assert.False(t, ok)
}
