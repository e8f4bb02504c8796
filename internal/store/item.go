package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
)

// Items is the line-item repository.
type Items struct {
	db *gorm.DB
}

// NewItems creates a line-item repository.
func NewItems(db *gorm.DB) *Items {
	return &Items{db: db}
}

// ByResource lists a resource's items, newest first.
func (r *Items) ByResource(ctx context.Context, resourceID string) ([]resource.Item, error) {
	var out []resource.Item
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list items of %s: %w", resourceID, err)
	}
	return out, nil
}

// ByID loads one item scoped to its resource.
func (r *Items) ByID(ctx context.Context, resourceID, itemID string) (*resource.Item, error) {
	var it resource.Item
	err := r.db.WithContext(ctx).
		First(&it, "id = ? AND resource_id = ?", itemID, resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load item %s: %w", itemID, err)
	}
	return &it, nil
}

// Create persists a new item, assigning a UUID when absent.
func (r *Items) Create(ctx context.Context, it *resource.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(it).Error; err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// Update persists item changes.
func (r *Items) Update(ctx context.Context, it *resource.Item) error {
	if err := r.db.WithContext(ctx).Save(it).Error; err != nil {
		return fmt.Errorf("update item %s: %w", it.ID, err)
	}
	return nil
}

// Delete removes one item scoped to its resource.
func (r *Items) Delete(ctx context.Context, resourceID, itemID string) error {
	result := r.db.WithContext(ctx).
		Delete(&resource.Item{}, "id = ? AND resource_id = ?", itemID, resourceID)
	if result.Error != nil {
		return fmt.Errorf("delete item %s: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
