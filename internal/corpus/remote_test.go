package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageServer(t *testing.T, items []map[string]any, pageSize int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		assert.Equal(t, pageSize, limit)

		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		var pageItems []map[string]any
		if offset < len(items) {
			pageItems = items[offset:end]
		}
		json.NewEncoder(w).Encode(map[string]any{
			"total": len(items),
			"items": pageItems,
		})
	}))
}

func wireItems(n int) []map[string]any {
	items := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]any{
			"id":        fmt.Sprintf("msg-%d", i),
			"user_name": fmt.Sprintf("Member %d", i%3),
			"message":   fmt.Sprintf("Message number %d", i),
			"timestamp": "2026-08-20T10:00:00Z",
		})
	}
	return items
}

func TestFetchAllPaginates(t *testing.T) {
	items := wireItems(25)
	srv := pageServer(t, items, 10)
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 10, 5*time.Second, nil)
	messages, err := f.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, messages, 25)
	assert.Equal(t, "msg-0", messages[0].ID)
	assert.Equal(t, "msg-24", messages[24].ID)
	assert.Equal(t, "Member 0", messages[0].Author)
	assert.Equal(t, "Message number 24", messages[24].Text)
}

func TestFetchAllDeduplicatesByID(t *testing.T) {
	items := wireItems(5)
	items = append(items, items[0], items[1])
	srv := pageServer(t, items, 100)
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 100, 5*time.Second, nil)
	messages, err := f.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, messages, 5)
}

func TestFetchAllBareArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset > 0 {
			w.Write([]byte(`[]`))
			return
		}
		json.NewEncoder(w).Encode(wireItems(3))
	}))
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 100, 5*time.Second, nil)
	messages, err := f.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, messages, 3)
}

func TestFetchAllPartialOnAccessDenied(t *testing.T) {
	items := wireItems(10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset > 0 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"total": 100, "items": items[:5]})
	}))
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 5, 5*time.Second, nil)
	messages, err := f.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, messages, 5)
}

func TestFetchAllDeniedUpfrontFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 10, 5*time.Second, nil)
	_, err := f.FetchAll(context.Background())
	require.Error(t, err)
}

func TestFetchAllGeneratesMissingIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset > 0 {
			w.Write([]byte(`{"total": 2, "items": []}`))
			return
		}
		w.Write([]byte(`{"total": 2, "items": [
			{"id": null, "user_name": "Sophia Al-Farsi", "message": "First"},
			{"id": 42, "user_name": "Armand Dupont", "message": "Second"}
		]}`))
	}))
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 100, 5*time.Second, nil)
	messages, err := f.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.NotEmpty(t, messages[0].ID)
	assert.Equal(t, "42", messages[1].ID)
}

func TestFetchPageRetriesTransientErrors(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"total": 1, "items": wireItems(1)})
	}))
	defer srv.Close()

	f := NewRemoteFetcher(srv.URL, 100, 5*time.Second, nil)
	messages, err := f.FetchAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.GreaterOrEqual(t, attempts, 3)
}
