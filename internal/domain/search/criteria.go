// Package search defines the filter criteria shared by the index-backed and
// store-backed query paths. Both paths must honor identical semantics so that
// a fallback is invisible to the caller.
package search

import "time"

// Order is the sort direction.
type Order string

const (
	// Asc sorts ascending.
	Asc Order = "ASC"
	// Desc sorts descending, the default.
	Desc Order = "DESC"
)

// ParseOrder normalizes a raw direction, defaulting to Desc.
func ParseOrder(raw string) Order {
	switch raw {
	case "ASC", "asc":
		return Asc
	default:
		return Desc
	}
}

// SortField names a sortable resource field.
type SortField string

const (
	// SortCreatedAt sorts by creation time, the default.
	SortCreatedAt SortField = "createdAt"
	// SortPrice sorts by price.
	SortPrice SortField = "price"
	// SortName sorts by name. Text sorting uses the exact, non-analyzed form.
	SortName SortField = "name"
)

// ParseSortField normalizes a raw field name, defaulting to SortCreatedAt.
func ParseSortField(raw string) SortField {
	switch SortField(raw) {
	case SortPrice, SortName, SortCreatedAt:
		return SortField(raw)
	default:
		return SortCreatedAt
	}
}

// Criteria is a fully normalized filter query. IDs nil means unconstrained;
// an empty non-nil slice never reaches a backend — callers short-circuit it.
type Criteria struct {
	Text     string
	MinPrice *float64
	MaxPrice *float64
	DateFrom *time.Time
	DateTo   *time.Time
	OwnerID  string
	IDs      []string

	SortBy SortField
	Order  Order
	Limit  int
	Offset int
}

// Result is the index-path outcome: ranked ids plus the backend-reported
// total. Order is authoritative; hydration must preserve it.
type Result struct {
	IDs   []string
	Total int64
}

// Suggestion is one autocomplete hit.
type Suggestion struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}
