// Package resource defines the authoritative catalog entities and the
// denormalized projection pushed to the search index.
package resource

import (
	"time"
)

// Resource is a catalog entry. The relational store is its source of truth;
// the search index only ever holds a derived copy.
type Resource struct {
	ID          string  `gorm:"primarykey;size:36" json:"id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	OwnerID     string  `gorm:"size:36;not null;index" json:"owner_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Features   []Feature   `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"features"`
	Images     []Image     `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"images"`
	Items      []Item      `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"items"`
	Comments   []Comment   `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Coordinate *Coordinate `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"coordinate,omitempty"`
}

// TableName returns the table name for Resource.
func (Resource) TableName() string { return "resources" }

// Feature is a (resource, name, value) attribute row. At most one row exists
// per (resource, name); values are strings so range filters can cast them.
type Feature struct {
	ID         uint   `gorm:"primarykey" json:"-"`
	ResourceID string `gorm:"size:36;not null;index;uniqueIndex:idx_resource_feature" json:"-"`
	Name       string `gorm:"size:32;not null;index;uniqueIndex:idx_resource_feature" json:"name"`
	Value      string `gorm:"size:255;not null" json:"value"`
}

// TableName returns the table name for Feature.
func (Feature) TableName() string { return "resource_features" }

// Coordinate is the 1:1 geographic location of a resource.
type Coordinate struct {
	ID         uint    `gorm:"primarykey" json:"-"`
	ResourceID string  `gorm:"size:36;not null;uniqueIndex" json:"-"`
	Latitude   float64 `gorm:"not null" json:"latitude"`
	Longitude  float64 `gorm:"not null" json:"longitude"`
}

// TableName returns the table name for Coordinate.
func (Coordinate) TableName() string { return "resource_coordinates" }

// Image is a stored image URL record. Upload storage itself is external;
// only the resolved URL and alt text are persisted here.
type Image struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	ResourceID string `gorm:"size:36;not null;index" json:"-"`
	URL        string `gorm:"size:512;not null" json:"url"`
	Alt        string `gorm:"size:255" json:"alt,omitempty"`
}

// TableName returns the table name for Image.
func (Image) TableName() string { return "resource_images" }

// Item is a line item under a resource.
type Item struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	ResourceID string    `gorm:"size:36;not null;index" json:"-"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Price      float64   `gorm:"not null" json:"price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for Item.
func (Item) TableName() string { return "resource_items" }

// Comment is a user comment under a resource.
type Comment struct {
	ID         string    `gorm:"primarykey;size:36" json:"id"`
	ResourceID string    `gorm:"size:36;not null;index" json:"-"`
	AuthorID   string    `gorm:"size:36;not null;index" json:"author_id"`
	Message    string    `gorm:"size:500;not null" json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for Comment.
func (Comment) TableName() string { return "resource_comments" }

// PrimaryImage returns the first image URL, or "" when none exist.
func (r *Resource) PrimaryImage() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0].URL
}

// FeatureValue returns the stored value for a feature name, if present.
func (r *Resource) FeatureValue(name string) (string, bool) {
	for _, f := range r.Features {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}
