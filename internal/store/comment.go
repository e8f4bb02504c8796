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

// Comments is the comment repository.
type Comments struct {
	db *gorm.DB
}

// NewComments creates a comment repository.
func NewComments(db *gorm.DB) *Comments {
	return &Comments{db: db}
}

// ByResource lists a resource's comments, newest first.
func (r *Comments) ByResource(ctx context.Context, resourceID string) ([]resource.Comment, error) {
	var out []resource.Comment
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of %s: %w", resourceID, err)
	}
	return out, nil
}

// ByID loads one comment scoped to its resource.
func (r *Comments) ByID(ctx context.Context, resourceID, commentID string) (*resource.Comment, error) {
	var c resource.Comment
	err := r.db.WithContext(ctx).
		First(&c, "id = ? AND resource_id = ?", commentID, resourceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load comment %s: %w", commentID, err)
	}
	return &c, nil
}

// Create persists a new comment, assigning a UUID when absent.
func (r *Comments) Create(ctx context.Context, c *resource.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Update persists comment changes.
func (r *Comments) Update(ctx context.Context, c *resource.Comment) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return fmt.Errorf("update comment %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes one comment scoped to its resource.
func (r *Comments) Delete(ctx context.Context, resourceID, commentID string) error {
	result := r.db.WithContext(ctx).
		Delete(&resource.Comment{}, "id = ? AND resource_id = ?", commentID, resourceID)
	if result.Error != nil {
		return fmt.Errorf("delete comment %s: %w", commentID, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
