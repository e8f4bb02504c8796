package catalog

import (
	"context"

	"github.com/kailas-cloud/catalogd/internal/domain/geo"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
	"github.com/kailas-cloud/catalogd/internal/resolver"
)

// ResourceStore is the persistence contract the service depends on.
// Satisfied by store.Resources.
type ResourceStore interface {
	Create(ctx context.Context, res *resource.Resource) error
	ByID(ctx context.Context, id string) (*resource.Resource, error)
	ByIDs(ctx context.Context, ids []string) ([]resource.Resource, error)
	Update(ctx context.Context, res *resource.Resource) error
	Delete(ctx context.Context, id string) error
	Filtered(ctx context.Context, c search.Criteria) ([]resource.Resource, int64, error)
	NameLike(ctx context.Context, term string, limit int) ([]resource.Resource, error)
	AllDocuments(ctx context.Context) ([]resource.Document, error)
	ReplaceFeatures(ctx context.Context, id string, feats []resource.Feature) error
	UpsertCoordinate(ctx context.Context, id string, p geo.Point) error
	AddImages(ctx context.Context, id string, imgs []resource.Image) error
	DeleteImages(ctx context.Context, id string, imageIDs []uint) error
}

// ItemStore is satisfied by store.Items.
type ItemStore interface {
	ByResource(ctx context.Context, resourceID string) ([]resource.Item, error)
	ByID(ctx context.Context, resourceID, itemID string) (*resource.Item, error)
	Create(ctx context.Context, it *resource.Item) error
	Update(ctx context.Context, it *resource.Item) error
	Delete(ctx context.Context, resourceID, itemID string) error
}

// CommentStore is satisfied by store.Comments.
type CommentStore interface {
	ByResource(ctx context.Context, resourceID string) ([]resource.Comment, error)
	ByID(ctx context.Context, resourceID, commentID string) (*resource.Comment, error)
	Create(ctx context.Context, c *resource.Comment) error
	Update(ctx context.Context, c *resource.Comment) error
	Delete(ctx context.Context, resourceID, commentID string) error
}

// ConstraintResolver turns attribute filters into an id-set constraint.
// Satisfied by resolver.Resolver.
type ConstraintResolver interface {
	IDConstraint(ctx context.Context, f resolver.Filters) (ids []string, constrained bool, err error)
}

// SearchIndex is the read side of the search index plus bulk reindex.
// Satisfied by index.Client. Every method may fail with
// domain.ErrIndexUnavailable, which the service treats as a signal to use
// storage, never as an error to surface.
type SearchIndex interface {
	Enabled() bool
	Search(ctx context.Context, c search.Criteria) (search.Result, error)
	Suggest(ctx context.Context, term string, limit int) ([]search.Suggestion, error)
	BulkReindex(ctx context.Context, docs []resource.Document) (int, error)
}

// Notifier receives fire-and-forget index sync requests after mutations.
// Satisfied by syncer.Syncer.
type Notifier interface {
	Sync(id string)
	Remove(id string)
}
