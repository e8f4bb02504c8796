package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/geo"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
)

// Resources is the resource repository.
type Resources struct {
	db *gorm.DB
}

// NewResources creates a resource repository.
func NewResources(db *gorm.DB) *Resources {
	return &Resources{db: db}
}

// hydration preloads the associations embedded in API responses and index
// documents. Comments are loaded only on single-resource reads.
func hydration(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Features").
		Preload("Images").
		Preload("Items").
		Preload("Coordinate")
}

// Create persists a resource together with its children. An empty ID is
// assigned a fresh UUID.
func (r *Resources) Create(ctx context.Context, res *resource.Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(res).Error; err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// ByID loads one resource with all associations, comments included.
func (r *Resources) ByID(ctx context.Context, id string) (*resource.Resource, error) {
	var res resource.Resource
	err := hydration(r.db.WithContext(ctx)).
		Preload("Comments").
		First(&res, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load resource %s: %w", id, err)
	}
	return &res, nil
}

// ByIDs loads resources for the given ids with list-level associations.
// Missing ids are simply absent from the result; callers preserve their own
// ordering.
func (r *Resources) ByIDs(ctx context.Context, ids []string) ([]resource.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []resource.Resource
	err := hydration(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load resources by ids: %w", err)
	}
	return out, nil
}

// Update persists changed resource columns.
func (r *Resources) Update(ctx context.Context, res *resource.Resource) error {
	result := r.db.WithContext(ctx).Model(&resource.Resource{}).
		Where("id = ?", res.ID).
		Updates(map[string]any{
			"name":        res.Name,
			"description": res.Description,
			"price":       res.Price,
		})
	if result.Error != nil {
		return fmt.Errorf("update resource %s: %w", res.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a resource and all of its children.
func (r *Resources) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{
			&resource.Feature{}, &resource.Coordinate{}, &resource.Image{},
			&resource.Item{}, &resource.Comment{},
		} {
			if err := tx.Where("resource_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("delete children of %s: %w", id, err)
			}
		}
		result := tx.Delete(&resource.Resource{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete resource %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// sortColumn maps a sort field to its column. The index path sorts on the
// same underlying values, so both paths stay numerically indistinguishable.
func sortColumn(f search.SortField) string {
	switch f {
	case search.SortPrice:
		return "price"
	case search.SortName:
		return "name"
	default:
		return "created_at"
	}
}

func applyCriteria(q *gorm.DB, c search.Criteria) *gorm.DB {
	if c.Text != "" {
		like := "%" + c.Text + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if c.MinPrice != nil {
		q = q.Where("price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		q = q.Where("price <= ?", *c.MaxPrice)
	}
	if c.DateFrom != nil {
		q = q.Where("created_at >= ?", *c.DateFrom)
	}
	if c.DateTo != nil {
		q = q.Where("created_at <= ?", *c.DateTo)
	}
	if c.OwnerID != "" {
		q = q.Where("owner_id = ?", c.OwnerID)
	}
	if c.IDs != nil {
		q = q.Where("id IN ?", c.IDs)
	}
	return q
}

// Filtered executes the storage-backed equivalent of an index query: same
// constraints, same sort, same pagination. Relevance ranking is unavailable
// here; ordering falls back to the requested sort field.
func (r *Resources) Filtered(ctx context.Context, c search.Criteria) ([]resource.Resource, int64, error) {
	base := applyCriteria(r.db.WithContext(ctx).Model(&resource.Resource{}), c)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count filtered resources: %w", err)
	}

	dir := "DESC"
	if c.Order == search.Asc {
		dir = "ASC"
	}

	var out []resource.Resource
	err := hydration(applyCriteria(r.db.WithContext(ctx), c)).
		Order(sortColumn(c.SortBy) + " " + dir).
		Limit(c.Limit).
		Offset(c.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, fmt.Errorf("filter resources: %w", err)
	}
	return out, total, nil
}

// NameLike is the suggestion fallback: newest resources whose name contains
// the term.
func (r *Resources) NameLike(ctx context.Context, term string, limit int) ([]resource.Resource, error) {
	var out []resource.Resource
	err := r.db.WithContext(ctx).
		Preload("Images").
		Where("name LIKE ?", "%"+term+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("suggest resources: %w", err)
	}
	return out, nil
}

// Document loads a resource and projects it into its index document.
func (r *Resources) Document(ctx context.Context, id string) (resource.Document, error) {
	var res resource.Resource
	err := hydration(r.db.WithContext(ctx)).First(&res, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resource.Document{}, domain.ErrNotFound
		}
		return resource.Document{}, fmt.Errorf("load resource %s: %w", id, err)
	}
	return resource.BuildDocument(&res), nil
}

// AllDocuments projects every resource for a bulk reindex, ordered by id for
// deterministic batches.
func (r *Resources) AllDocuments(ctx context.Context) ([]resource.Document, error) {
	var all []resource.Resource
	err := hydration(r.db.WithContext(ctx)).Order("id ASC").Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("load all resources: %w", err)
	}
	docs := make([]resource.Document, len(all))
	for i := range all {
		docs[i] = resource.BuildDocument(&all[i])
	}
	return docs, nil
}

// ReplaceFeatures swaps the attribute rows named in feats, leaving other
// names untouched. The (resource, name) uniqueness invariant holds because
// existing rows with the incoming names are removed first.
func (r *Resources) ReplaceFeatures(ctx context.Context, id string, feats []resource.Feature) error {
	if len(feats) == 0 {
		return nil
	}
	names := make([]string, len(feats))
	for i, f := range feats {
		names[i] = f.Name
		feats[i].ResourceID = id
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_id = ? AND name IN ?", id, names).
			Delete(&resource.Feature{}).Error; err != nil {
			return fmt.Errorf("clear features of %s: %w", id, err)
		}
		if err := tx.Create(&feats).Error; err != nil {
			return fmt.Errorf("insert features of %s: %w", id, err)
		}
		return nil
	})
}

// UpsertCoordinate creates or replaces the single coordinate of a resource.
func (r *Resources) UpsertCoordinate(ctx context.Context, id string, p geo.Point) error {
	var existing resource.Coordinate
	err := r.db.WithContext(ctx).First(&existing, "resource_id = ?", id).Error
	switch {
	case err == nil:
		existing.Latitude = p.Lat
		existing.Longitude = p.Lon
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return fmt.Errorf("update coordinate of %s: %w", id, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		c := resource.Coordinate{ResourceID: id, Latitude: p.Lat, Longitude: p.Lon}
		if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
			return fmt.Errorf("create coordinate of %s: %w", id, err)
		}
		return nil
	default:
		return fmt.Errorf("load coordinate of %s: %w", id, err)
	}
}

// AddImages appends image URL records to a resource.
func (r *Resources) AddImages(ctx context.Context, id string, imgs []resource.Image) error {
	if len(imgs) == 0 {
		return nil
	}
	for i := range imgs {
		imgs[i].ResourceID = id
	}
	if err := r.db.WithContext(ctx).Create(&imgs).Error; err != nil {
		return fmt.Errorf("add images to %s: %w", id, err)
	}
	return nil
}

// DeleteImages removes the given image rows belonging to a resource.
func (r *Resources) DeleteImages(ctx context.Context, id string, imageIDs []uint) error {
	if len(imageIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("resource_id = ? AND id IN ?", id, imageIDs).
		Delete(&resource.Image{}).Error
	if err != nil {
		return fmt.Errorf("delete images of %s: %w", id, err)
	}
	return nil
}
