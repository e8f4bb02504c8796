package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain/geo"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
	"github.com/kailas-cloud/catalogd/internal/resolver"
)

// Shared function-field mocks. Unset fields return zero values so each test
// only spells out the calls it cares about.

type mockResourceStore struct {
	create           func(ctx context.Context, res *resource.Resource) error
	byID             func(ctx context.Context, id string) (*resource.Resource, error)
	byIDs            func(ctx context.Context, ids []string) ([]resource.Resource, error)
	update           func(ctx context.Context, res *resource.Resource) error
	deleteFn         func(ctx context.Context, id string) error
	filtered         func(ctx context.Context, c search.Criteria) ([]resource.Resource, int64, error)
	nameLike         func(ctx context.Context, term string, limit int) ([]resource.Resource, error)
	allDocuments     func(ctx context.Context) ([]resource.Document, error)
	replaceFeatures  func(ctx context.Context, id string, feats []resource.Feature) error
	upsertCoordinate func(ctx context.Context, id string, p geo.Point) error
	addImages        func(ctx context.Context, id string, imgs []resource.Image) error
	deleteImages     func(ctx context.Context, id string, imageIDs []uint) error
}

func (m *mockResourceStore) Create(ctx context.Context, res *resource.Resource) error {
	if m.create == nil {
		return nil
	}
	return m.create(ctx, res)
}

func (m *mockResourceStore) ByID(ctx context.Context, id string) (*resource.Resource, error) {
	if m.byID == nil {
		return &resource.Resource{ID: id}, nil
	}
	return m.byID(ctx, id)
}

func (m *mockResourceStore) ByIDs(ctx context.Context, ids []string) ([]resource.Resource, error) {
	if m.byIDs == nil {
		return nil, nil
	}
	return m.byIDs(ctx, ids)
}

func (m *mockResourceStore) Update(ctx context.Context, res *resource.Resource) error {
	if m.update == nil {
		return nil
	}
	return m.update(ctx, res)
}

func (m *mockResourceStore) Delete(ctx context.Context, id string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *mockResourceStore) Filtered(ctx context.Context, c search.Criteria) ([]resource.Resource, int64, error) {
	if m.filtered == nil {
		return nil, 0, nil
	}
	return m.filtered(ctx, c)
}

func (m *mockResourceStore) NameLike(ctx context.Context, term string, limit int) ([]resource.Resource, error) {
	if m.nameLike == nil {
		return nil, nil
	}
	return m.nameLike(ctx, term, limit)
}

func (m *mockResourceStore) AllDocuments(ctx context.Context) ([]resource.Document, error) {
	if m.allDocuments == nil {
		return nil, nil
	}
	return m.allDocuments(ctx)
}

func (m *mockResourceStore) ReplaceFeatures(ctx context.Context, id string, feats []resource.Feature) error {
	if m.replaceFeatures == nil {
		return nil
	}
	return m.replaceFeatures(ctx, id, feats)
}

func (m *mockResourceStore) UpsertCoordinate(ctx context.Context, id string, p geo.Point) error {
	if m.upsertCoordinate == nil {
		return nil
	}
	return m.upsertCoordinate(ctx, id, p)
}

func (m *mockResourceStore) AddImages(ctx context.Context, id string, imgs []resource.Image) error {
	if m.addImages == nil {
		return nil
	}
	return m.addImages(ctx, id, imgs)
}

func (m *mockResourceStore) DeleteImages(ctx context.Context, id string, imageIDs []uint) error {
	if m.deleteImages == nil {
		return nil
	}
	return m.deleteImages(ctx, id, imageIDs)
}

type mockItemStore struct {
	byResource func(ctx context.Context, resourceID string) ([]resource.Item, error)
	byID       func(ctx context.Context, resourceID, itemID string) (*resource.Item, error)
	create     func(ctx context.Context, it *resource.Item) error
	update     func(ctx context.Context, it *resource.Item) error
	deleteFn   func(ctx context.Context, resourceID, itemID string) error
}

func (m *mockItemStore) ByResource(ctx context.Context, resourceID string) ([]resource.Item, error) {
	if m.byResource == nil {
		return nil, nil
	}
	return m.byResource(ctx, resourceID)
}

func (m *mockItemStore) ByID(ctx context.Context, resourceID, itemID string) (*resource.Item, error) {
	if m.byID == nil {
		return &resource.Item{ID: itemID, ResourceID: resourceID}, nil
	}
	return m.byID(ctx, resourceID, itemID)
}

func (m *mockItemStore) Create(ctx context.Context, it *resource.Item) error {
	if m.create == nil {
		return nil
	}
	return m.create(ctx, it)
}

func (m *mockItemStore) Update(ctx context.Context, it *resource.Item) error {
	if m.update == nil {
		return nil
	}
	return m.update(ctx, it)
}

func (m *mockItemStore) Delete(ctx context.Context, resourceID, itemID string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, resourceID, itemID)
}

type mockCommentStore struct {
	byResource func(ctx context.Context, resourceID string) ([]resource.Comment, error)
	byID       func(ctx context.Context, resourceID, commentID string) (*resource.Comment, error)
	create     func(ctx context.Context, c *resource.Comment) error
	update     func(ctx context.Context, c *resource.Comment) error
	deleteFn   func(ctx context.Context, resourceID, commentID string) error
}

func (m *mockCommentStore) ByResource(ctx context.Context, resourceID string) ([]resource.Comment, error) {
	if m.byResource == nil {
		return nil, nil
	}
	return m.byResource(ctx, resourceID)
}

func (m *mockCommentStore) ByID(ctx context.Context, resourceID, commentID string) (*resource.Comment, error) {
	if m.byID == nil {
		return &resource.Comment{ID: commentID, ResourceID: resourceID}, nil
	}
	return m.byID(ctx, resourceID, commentID)
}

func (m *mockCommentStore) Create(ctx context.Context, c *resource.Comment) error {
	if m.create == nil {
		return nil
	}
	return m.create(ctx, c)
}

func (m *mockCommentStore) Update(ctx context.Context, c *resource.Comment) error {
	if m.update == nil {
		return nil
	}
	return m.update(ctx, c)
}

func (m *mockCommentStore) Delete(ctx context.Context, resourceID, commentID string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, resourceID, commentID)
}

type mockResolver struct {
	idConstraint func(ctx context.Context, f resolver.Filters) ([]string, bool, error)
}

func (m *mockResolver) IDConstraint(ctx context.Context, f resolver.Filters) ([]string, bool, error) {
	if m.idConstraint == nil {
		return nil, false, nil
	}
	return m.idConstraint(ctx, f)
}

type mockIndex struct {
	enabled     bool
	search      func(ctx context.Context, c search.Criteria) (search.Result, error)
	suggest     func(ctx context.Context, term string, limit int) ([]search.Suggestion, error)
	bulkReindex func(ctx context.Context, docs []resource.Document) (int, error)
}

func (m *mockIndex) Enabled() bool { return m.enabled }

func (m *mockIndex) Search(ctx context.Context, c search.Criteria) (search.Result, error) {
	if m.search == nil {
		return search.Result{}, nil
	}
	return m.search(ctx, c)
}

func (m *mockIndex) Suggest(ctx context.Context, term string, limit int) ([]search.Suggestion, error) {
	if m.suggest == nil {
		return nil, nil
	}
	return m.suggest(ctx, term, limit)
}

func (m *mockIndex) BulkReindex(ctx context.Context, docs []resource.Document) (int, error) {
	if m.bulkReindex == nil {
		return len(docs), nil
	}
	return m.bulkReindex(ctx, docs)
}

// mockNotifier records which ids were scheduled for sync and removal.
type mockNotifier struct {
	synced  []string
	removed []string
}

func (m *mockNotifier) Sync(id string)   { m.synced = append(m.synced, id) }
func (m *mockNotifier) Remove(id string) { m.removed = append(m.removed, id) }

type deps struct {
	resources *mockResourceStore
	items     *mockItemStore
	comments  *mockCommentStore
	resolver  *mockResolver
	index     *mockIndex
	notify    *mockNotifier
}

func newTestService() (*Service, *deps) {
	d := &deps{
		resources: &mockResourceStore{},
		items:     &mockItemStore{},
		comments:  &mockCommentStore{},
		resolver:  &mockResolver{},
		index:     &mockIndex{},
		notify:    &mockNotifier{},
	}
	svc := New(d.resources, d.items, d.comments, d.resolver, d.index, d.notify, Paging{}, zap.NewNop())
	return svc, d
}

func strPtr(s string) *string   { return &s }
func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }
