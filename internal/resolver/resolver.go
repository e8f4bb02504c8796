// Package resolver computes resource-id constraints from enumerated
// attribute filters. Attribute values are not natively modeled in the search
// index, so filters resolve against the relational store into an id
// allow-list merged into the main query.
package resolver

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/catalogd/internal/domain/feature"
)

// ExactFilter matches an attribute by exact value.
type ExactFilter struct {
	Name  feature.Name
	Value string
}

// RangeFilter matches an attribute whose integer-cast value falls in
// [Min, Max]. Either bound may be nil.
type RangeFilter struct {
	Name feature.Name
	Min  *int
	Max  *int
}

// Filters is the full set of attribute constraints of one query.
type Filters struct {
	Exact  []ExactFilter
	Ranges []RangeFilter
}

// Empty reports whether no constraint is present.
func (f Filters) Empty() bool {
	return len(f.Exact) == 0 && len(f.Ranges) == 0
}

// FeatureStore is the consumer interface over the attribute rows.
type FeatureStore interface {
	IDsByValue(ctx context.Context, name feature.Name, value string) ([]string, error)
	IDsByRange(ctx context.Context, name feature.Name, min, max *int) ([]string, error)
}

// Resolver intersects per-filter id sets into a single constraint.
type Resolver struct {
	features FeatureStore
}

// New creates a resolver.
func New(features FeatureStore) *Resolver {
	return &Resolver{features: features}
}

// IDConstraint returns the intersection of the id sets matched by each
// filter. constrained is false when no filter applies, meaning all ids are
// permitted. A constrained empty result means the caller must short-circuit
// to an empty page without touching any backend.
func (r *Resolver) IDConstraint(ctx context.Context, f Filters) (ids []string, constrained bool, err error) {
	var acc map[string]struct{}

	intersect := func(found []string) {
		if acc == nil {
			acc = make(map[string]struct{}, len(found))
			for _, id := range found {
				acc[id] = struct{}{}
			}
			return
		}
		next := make(map[string]struct{}, len(found))
		for _, id := range found {
			if _, ok := acc[id]; ok {
				next[id] = struct{}{}
			}
		}
		acc = next
	}

	for _, ef := range f.Exact {
		found, err := r.features.IDsByValue(ctx, ef.Name, ef.Value)
		if err != nil {
			return nil, false, fmt.Errorf("resolve %s filter: %w", ef.Name, err)
		}
		intersect(found)
		if len(acc) == 0 {
			return []string{}, true, nil
		}
	}

	for _, rf := range f.Ranges {
		if rf.Min == nil && rf.Max == nil {
			// Unparsable or absent bounds contribute no constraint.
			continue
		}
		found, err := r.features.IDsByRange(ctx, rf.Name, rf.Min, rf.Max)
		if err != nil {
			return nil, false, fmt.Errorf("resolve %s range filter: %w", rf.Name, err)
		}
		intersect(found)
		if len(acc) == 0 {
			return []string{}, true, nil
		}
	}

	if acc == nil {
		return nil, false, nil
	}

	out := make([]string, 0, len(acc))
	for id := range acc {
		out = append(out, id)
	}
	return out, true, nil
}
