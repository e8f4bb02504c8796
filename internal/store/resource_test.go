package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/geo"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedResource(t *testing.T, repo *Resources, res *resource.Resource) *resource.Resource {
	t.Helper()
	if err := repo.Create(context.Background(), res); err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	return res
}

func TestResources_CreateAndByID(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{
		Name:        "Loft",
		Description: "top floor",
		Price:       250,
		OwnerID:     "owner-1",
		Features:    []resource.Feature{{Name: "rooms", Value: "3"}},
		Images:      []resource.Image{{URL: "https://img/1.jpg"}},
		Coordinate:  &resource.Coordinate{Latitude: 44.4268, Longitude: 26.1025},
	})
	if res.ID == "" {
		t.Fatal("Create() must assign an id")
	}

	got, err := repo.ByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if got.Name != "Loft" || got.OwnerID != "owner-1" {
		t.Errorf("loaded = %+v", got)
	}
	if len(got.Features) != 1 || got.Features[0].Value != "3" {
		t.Errorf("Features = %v, want preloaded", got.Features)
	}
	if got.Coordinate == nil || got.Coordinate.Latitude != 44.4268 {
		t.Errorf("Coordinate = %+v, want preloaded", got.Coordinate)
	}

	if _, err := repo.ByID(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ByID(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestResources_Update(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{Name: "Old", Price: 10, OwnerID: "o"})
	res.Name = "New"
	res.Price = 20
	if err := repo.Update(ctx, res); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.ByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if got.Name != "New" || got.Price != 20 {
		t.Errorf("loaded = %+v, want updated columns", got)
	}

	if err := repo.Update(ctx, &resource.Resource{ID: "ghost", Name: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestResources_DeleteCascades(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	items := NewItems(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{
		Name:    "Loft",
		OwnerID: "o",
		Items:   []resource.Item{{ID: "it-1", Name: "Chair"}},
		Images:  []resource.Image{{URL: "https://img/1.jpg"}},
	})

	if err := repo.Delete(ctx, res.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.ByID(ctx, res.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("resource still loadable after delete: %v", err)
	}
	if _, err := items.ByID(ctx, res.ID, "it-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("child item survived the delete: %v", err)
	}

	if err := repo.Delete(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Delete(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestResources_Filtered(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	seedResource(t, repo, &resource.Resource{ID: "a", Name: "Sunny loft", Price: 100, OwnerID: "o1"})
	seedResource(t, repo, &resource.Resource{ID: "b", Name: "Dark basement", Price: 50, OwnerID: "o1"})
	seedResource(t, repo, &resource.Resource{ID: "c", Name: "Sunny house", Price: 300, OwnerID: "o2"})

	t.Run("text", func(t *testing.T) {
		out, total, err := repo.Filtered(ctx, search.Criteria{Text: "sunny", Limit: 10})
		if err != nil {
			t.Fatalf("Filtered() error = %v", err)
		}
		if total != 2 || len(out) != 2 {
			t.Errorf("got %d/%d, want 2 sunny rows", len(out), total)
		}
	})

	t.Run("price range", func(t *testing.T) {
		min, max := 60.0, 200.0
		out, total, err := repo.Filtered(ctx, search.Criteria{MinPrice: &min, MaxPrice: &max, Limit: 10})
		if err != nil {
			t.Fatalf("Filtered() error = %v", err)
		}
		if total != 1 || len(out) != 1 || out[0].ID != "a" {
			t.Errorf("got %v/%d, want only a", out, total)
		}
	})

	t.Run("owner", func(t *testing.T) {
		_, total, err := repo.Filtered(ctx, search.Criteria{OwnerID: "o2", Limit: 10})
		if err != nil {
			t.Fatalf("Filtered() error = %v", err)
		}
		if total != 1 {
			t.Errorf("total = %d, want 1", total)
		}
	})

	t.Run("id allow-list", func(t *testing.T) {
		out, total, err := repo.Filtered(ctx, search.Criteria{IDs: []string{"a", "c"}, Limit: 10})
		if err != nil {
			t.Fatalf("Filtered() error = %v", err)
		}
		if total != 2 || len(out) != 2 {
			t.Errorf("got %d/%d, want the 2 allowed ids", len(out), total)
		}
	})

	t.Run("sort price asc", func(t *testing.T) {
		out, _, err := repo.Filtered(ctx, search.Criteria{SortBy: search.SortPrice, Order: search.Asc, Limit: 10})
		if err != nil {
			t.Fatalf("Filtered() error = %v", err)
		}
		if len(out) != 3 || out[0].ID != "b" || out[2].ID != "c" {
			t.Errorf("order = %v, want cheapest first", out)
		}
	})

	t.Run("pagination keeps total", func(t *testing.T) {
		out, total, err := repo.Filtered(ctx, search.Criteria{SortBy: search.SortPrice, Order: search.Asc, Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("Filtered() error = %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want full match count", total)
		}
		if len(out) != 1 || out[0].ID != "a" {
			t.Errorf("page = %v, want the middle row", out)
		}
	})
}

func TestResources_NameLike(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	seedResource(t, repo, &resource.Resource{Name: "Sunny loft"})
	seedResource(t, repo, &resource.Resource{Name: "Dark basement"})

	out, err := repo.NameLike(ctx, "loft", 10)
	if err != nil {
		t.Fatalf("NameLike() error = %v", err)
	}
	if len(out) != 1 || out[0].Name != "Sunny loft" {
		t.Errorf("NameLike() = %v", out)
	}
}

func TestResources_Document(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{
		Name:    "Loft",
		Price:   250,
		OwnerID: "o1",
		Features: []resource.Feature{
			{Name: "surface", Value: "80"},
			{Name: "new", Value: "true"},
		},
		Images: []resource.Image{{URL: "https://img/1.jpg"}, {URL: "https://img/2.jpg"}},
		Items:  []resource.Item{{Name: "Chair"}},
	})

	doc, err := repo.Document(ctx, res.ID)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if doc.ID != res.ID || doc.Name != "Loft" {
		t.Errorf("doc = %+v", doc)
	}
	if doc.Surface == nil || *doc.Surface != 80 {
		t.Errorf("Surface = %v, want 80", doc.Surface)
	}
	if doc.IsNew == nil || !*doc.IsNew {
		t.Errorf("IsNew = %v, want true", doc.IsNew)
	}
	if doc.Image != "https://img/1.jpg" || doc.ImagesCount != 2 || doc.ItemsCount != 1 {
		t.Errorf("doc projection = %+v", doc)
	}

	if _, err := repo.Document(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Document(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestResources_AllDocuments(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	seedResource(t, repo, &resource.Resource{ID: "b", Name: "B"})
	seedResource(t, repo, &resource.Resource{ID: "a", Name: "A"})

	docs, err := repo.AllDocuments(ctx)
	if err != nil {
		t.Fatalf("AllDocuments() error = %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("docs = %v, want ordered by id", docs)
	}
}

func TestResources_ReplaceFeatures(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{
		Name: "Loft",
		Features: []resource.Feature{
			{Name: "rooms", Value: "2"},
			{Name: "surface", Value: "60"},
		},
	})

	// Only the named attribute changes; surface survives untouched.
	err := repo.ReplaceFeatures(ctx, res.ID, []resource.Feature{{Name: "rooms", Value: "4"}})
	if err != nil {
		t.Fatalf("ReplaceFeatures() error = %v", err)
	}

	got, err := repo.ByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if len(got.Features) != 2 {
		t.Fatalf("Features = %v, want 2 rows", got.Features)
	}
	if v, ok := got.FeatureValue("rooms"); !ok || v != "4" {
		t.Errorf("rooms = %q, want 4", v)
	}
	if v, ok := got.FeatureValue("surface"); !ok || v != "60" {
		t.Errorf("surface = %q, want untouched 60", v)
	}
}

func TestResources_UpsertCoordinate(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{Name: "Loft"})

	if err := repo.UpsertCoordinate(ctx, res.ID, geo.Point{Lat: 44.4, Lon: 26.1}); err != nil {
		t.Fatalf("UpsertCoordinate() create error = %v", err)
	}
	if err := repo.UpsertCoordinate(ctx, res.ID, geo.Point{Lat: 45.0, Lon: 25.0}); err != nil {
		t.Fatalf("UpsertCoordinate() update error = %v", err)
	}

	got, err := repo.ByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if got.Coordinate == nil || got.Coordinate.Latitude != 45.0 || got.Coordinate.Longitude != 25.0 {
		t.Errorf("Coordinate = %+v, want the second point", got.Coordinate)
	}

	var count int64
	st.DB().Model(&resource.Coordinate{}).Where("resource_id = ?", res.ID).Count(&count)
	if count != 1 {
		t.Errorf("coordinate rows = %d, want exactly 1", count)
	}
}

func TestResources_Images(t *testing.T) {
	st := newTestStore(t)
	repo := NewResources(st.DB())
	ctx := context.Background()

	res := seedResource(t, repo, &resource.Resource{Name: "Loft"})

	imgs := []resource.Image{{URL: "https://img/1.jpg"}, {URL: "https://img/2.jpg"}}
	if err := repo.AddImages(ctx, res.ID, imgs); err != nil {
		t.Fatalf("AddImages() error = %v", err)
	}

	got, err := repo.ByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if len(got.Images) != 2 {
		t.Fatalf("Images = %v, want 2", got.Images)
	}

	if err := repo.DeleteImages(ctx, res.ID, []uint{got.Images[0].ID}); err != nil {
		t.Fatalf("DeleteImages() error = %v", err)
	}
	got, _ = repo.ByID(ctx, res.ID)
	if len(got.Images) != 1 {
		t.Errorf("Images = %v, want 1 after delete", got.Images)
	}
}

func TestStore_Ping(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}
