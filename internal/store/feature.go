package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kailas-cloud/catalogd/internal/domain/feature"
)

// Features answers the attribute-filter queries behind id-constraint
// resolution.
type Features struct {
	db *gorm.DB
}

// NewFeatures creates a feature repository.
func NewFeatures(db *gorm.DB) *Features {
	return &Features{db: db}
}

// IDsByValue returns the distinct resource ids holding an exact
// (name, value) attribute.
func (f *Features) IDsByValue(ctx context.Context, name feature.Name, value string) ([]string, error) {
	var ids []string
	err := f.db.WithContext(ctx).
		Table("resource_features").
		Distinct("resource_id").
		Where("name = ? AND value = ?", string(name), value).
		Pluck("resource_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("feature ids %s=%s: %w", name, value, err)
	}
	return ids, nil
}

// IDsByRange returns the distinct resource ids whose attribute value, cast
// to an integer, falls within [min, max]. Either bound may be nil. Rows whose
// value does not cast are excluded by the integer comparison.
func (f *Features) IDsByRange(ctx context.Context, name feature.Name, min, max *int) ([]string, error) {
	q := f.db.WithContext(ctx).
		Table("resource_features").
		Distinct("resource_id").
		Where("name = ?", string(name))
	if min != nil {
		q = q.Where("CAST(value AS INTEGER) >= ?", *min)
	}
	if max != nil {
		q = q.Where("CAST(value AS INTEGER) <= ?", *max)
	}

	var ids []string
	if err := q.Pluck("resource_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("feature ids %s range: %w", name, err)
	}
	return ids, nil
}
