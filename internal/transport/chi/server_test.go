package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/index"
	"github.com/kailas-cloud/catalogd/internal/resolver"
	"github.com/kailas-cloud/catalogd/internal/store"
	cataloguc "github.com/kailas-cloud/catalogd/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/catalogd/internal/usecase/health"
	"github.com/kailas-cloud/catalogd/internal/usecase/syncer"
)

// newTestServer wires the full stack over a throwaway SQLite database with
// the search index disabled, so every read exercises the storage path.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zap.NewNop()
	idx := index.Disabled(logger)
	resources := store.NewResources(st.DB())

	sync := syncer.New(resources, idx, logger, 8)
	t.Cleanup(sync.Close)

	svc := cataloguc.New(
		resources,
		store.NewItems(st.DB()),
		store.NewComments(st.DB()),
		resolver.New(store.NewFeatures(st.DB())),
		idx,
		sync,
		cataloguc.Paging{},
		logger,
	)
	server := NewServer(svc, healthuc.New(st, idx), logger)

	r := chirouter.NewRouter()
	server.Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, actorID, role string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if actorID != "" {
		req.Header.Set("X-Actor-ID", actorID)
	}
	if role != "" {
		req.Header.Set("X-Actor-Role", role)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func createResource(t *testing.T, ts *httptest.Server, actorID, name string, price float64) string {
	t.Helper()
	resp, body := doRequest(t, ts, http.MethodPost, "/api/v1/resources", actorID, "", map[string]any{
		"name":  name,
		"price": price,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create resource: status %d, body %s", resp.StatusCode, body)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return out.ID
}

func TestResourceLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRequest(t, ts, http.MethodPost, "/api/v1/resources", "owner-1", "", map[string]any{
		"name":        "Sunny loft",
		"description": "top floor",
		"price":       250,
		"features":    []map[string]string{{"name": "rooms", "value": "3"}},
		"images":      []map[string]string{{"url": "https://img/1.jpg"}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", resp.StatusCode, body)
	}
	var created struct {
		ID       string `json:"id"`
		OwnerID  string `json:"owner_id"`
		Features []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.OwnerID != "owner-1" {
		t.Errorf("owner = %q, want the acting user", created.OwnerID)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/v1/resources/"+created.ID {
		t.Errorf("Location = %q", loc)
	}

	resp, body = doRequest(t, ts, http.MethodGet, "/api/v1/resources/"+created.ID, "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d, body %s", resp.StatusCode, body)
	}

	resp, body = doRequest(t, ts, http.MethodPut, "/api/v1/resources/"+created.ID, "owner-1", "", map[string]any{
		"price": 300,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d, body %s", resp.StatusCode, body)
	}

	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/resources/"+created.ID, "owner-1", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, ts, http.MethodGet, "/api/v1/resources/"+created.ID, "", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", resp.StatusCode)
	}
}

func TestAccessControl(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doRequest(t, ts, http.MethodPost, "/api/v1/resources", "", "", map[string]any{"name": "x"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous create: status %d, want 401", resp.StatusCode)
	}

	id := createResource(t, ts, "owner-1", "Loft", 100)

	resp, _ = doRequest(t, ts, http.MethodPut, "/api/v1/resources/"+id, "stranger", "", map[string]any{"price": 1})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("stranger update: status %d, want 403", resp.StatusCode)
	}

	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/resources/"+id, "adm", "admin", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("admin delete: status %d, want 204", resp.StatusCode)
	}
}

func TestListResources(t *testing.T) {
	ts := newTestServer(t)

	createResource(t, ts, "owner-1", "Sunny loft", 100)
	createResource(t, ts, "owner-1", "Dark basement", 50)
	createResource(t, ts, "owner-2", "Sunny house", 300)

	resp, body := doRequest(t, ts, http.MethodGet, "/api/v1/resources?q=sunny&sortBy=price&order=asc", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d, body %s", resp.StatusCode, body)
	}
	var page struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Total int64 `json:"total"`
		Page  int   `json:"page"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("page = %+v, want the 2 sunny rows", page)
	}
	if page.Items[0].Name != "Sunny loft" {
		t.Errorf("order = %v, want cheapest sunny row first", page.Items)
	}
	if page.Page != 1 {
		t.Errorf("page = %d, want 1", page.Page)
	}
}

func TestListResources_Pagination(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 5; i++ {
		createResource(t, ts, "owner-1", fmt.Sprintf("Place %d", i), float64(10*(i+1)))
	}

	resp, body := doRequest(t, ts, http.MethodGet, "/api/v1/resources?limit=2&page=2&sortBy=price&order=asc", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	var page struct {
		Items []struct {
			Price float64 `json:"price"`
		} `json:"items"`
		Total  int64 `json:"total"`
		Page   int   `json:"page"`
		Limit  int   `json:"limit"`
		Offset int   `json:"offset"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 5 || page.Page != 2 || page.Limit != 2 || page.Offset != 2 {
		t.Errorf("page meta = %+v", page)
	}
	if len(page.Items) != 2 || page.Items[0].Price != 30 {
		t.Errorf("items = %+v, want the 3rd and 4th cheapest", page.Items)
	}
}

func TestListResources_FeatureFilter(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRequest(t, ts, http.MethodPost, "/api/v1/resources", "owner-1", "", map[string]any{
		"name":     "Big place",
		"features": []map[string]string{{"name": "rooms", "value": "4"}, {"name": "surface", "value": "120"}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}
	resp, body = doRequest(t, ts, http.MethodPost, "/api/v1/resources", "owner-1", "", map[string]any{
		"name":     "Small place",
		"features": []map[string]string{{"name": "rooms", "value": "1"}, {"name": "surface", "value": "30"}},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.StatusCode, body)
	}

	resp, body = doRequest(t, ts, http.MethodGet, "/api/v1/resources?rooms=4&surfaceMin=100", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	var page struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Name != "Big place" {
		t.Errorf("page = %+v, want only the big place", page)
	}

	// An impossible combination short-circuits to an empty page.
	resp, body = doRequest(t, ts, http.MethodGet, "/api/v1/resources?rooms=4&surfaceMax=50", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("page = %+v, want empty", page)
	}
}

func TestListResources_BadParams(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRequest(t, ts, http.MethodGet, "/api/v1/resources?minPrice=cheap", "", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var e struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Code != codeValidationFailed {
		t.Errorf("code = %q, want %q", e.Code, codeValidationFailed)
	}
}

func TestSuggestEndpoint(t *testing.T) {
	ts := newTestServer(t)

	createResource(t, ts, "owner-1", "Sunny loft", 100)
	createResource(t, ts, "owner-1", "Dark basement", 50)

	resp, body := doRequest(t, ts, http.MethodGet, "/api/v1/resources/suggest?q=loft", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("suggest: status %d", resp.StatusCode)
	}
	var out struct {
		Items []struct {
			Name string `json:"name"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Name != "Sunny loft" {
		t.Errorf("items = %+v", out.Items)
	}
}

func TestItemEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := createResource(t, ts, "owner-1", "Loft", 100)

	resp, body := doRequest(t, ts, http.MethodPost, "/api/v1/resources/"+id+"/items", "owner-1", "", map[string]any{
		"name":     "Chair",
		"quantity": 4,
		"price":    19.99,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create item: status %d, body %s", resp.StatusCode, body)
	}
	var item struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &item); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp, _ = doRequest(t, ts, http.MethodPost, "/api/v1/resources/"+id+"/items", "stranger", "", map[string]any{
		"name": "Table",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("stranger create item: status %d, want 403", resp.StatusCode)
	}

	resp, body = doRequest(t, ts, http.MethodPut, "/api/v1/resources/"+id+"/items/"+item.ID, "owner-1", "", map[string]any{
		"quantity": 2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update item: status %d, body %s", resp.StatusCode, body)
	}

	resp, body = doRequest(t, ts, http.MethodGet, "/api/v1/resources/"+id+"/items", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list items: status %d", resp.StatusCode)
	}

	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/resources/"+id+"/items/"+item.ID, "owner-1", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete item: status %d, want 204", resp.StatusCode)
	}
}

func TestCommentEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := createResource(t, ts, "owner-1", "Loft", 100)

	resp, body := doRequest(t, ts, http.MethodPost, "/api/v1/resources/"+id+"/comments", "visitor-1", "", map[string]any{
		"message": "nice place",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create comment: status %d, body %s", resp.StatusCode, body)
	}
	var comment struct {
		ID       string `json:"id"`
		AuthorID string `json:"author_id"`
	}
	if err := json.Unmarshal(body, &comment); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if comment.AuthorID != "visitor-1" {
		t.Errorf("author = %q", comment.AuthorID)
	}

	// Only the author edits; even the resource owner is denied.
	resp, _ = doRequest(t, ts, http.MethodPut, "/api/v1/resources/"+id+"/comments/"+comment.ID, "owner-1", "", map[string]any{
		"message": "edited",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("owner edit: status %d, want 403", resp.StatusCode)
	}

	// The resource owner may still remove it.
	resp, _ = doRequest(t, ts, http.MethodDelete, "/api/v1/resources/"+id+"/comments/"+comment.ID, "owner-1", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("owner delete: status %d, want 204", resp.StatusCode)
	}
}

func TestReindexEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doRequest(t, ts, http.MethodPost, "/api/v1/admin/reindex", "user-1", "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin: status %d, want 403", resp.StatusCode)
	}

	// The index is disabled in this wiring, so even an admin gets a 503.
	resp, _ = doRequest(t, ts, http.MethodPost, "/api/v1/admin/reindex", "adm", "admin", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("admin with disabled index: status %d, want 503", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRequest(t, ts, http.MethodGet, "/healthz", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}
	var out struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ok" {
		t.Errorf("status = %q, want ok", out.Status)
	}
	if _, ok := out.Checks["index"]; ok {
		t.Error("disabled index must not be health-checked")
	}
}
