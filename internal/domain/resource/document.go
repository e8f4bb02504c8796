package resource

import (
	"strconv"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain/feature"
)

// Document is the denormalized, non-authoritative search index projection of
// a resource. It may lag the store arbitrarily; on any discrepancy the
// relational store wins.
type Document struct {
	ID          string
	Name        string
	Description string
	Price       float64
	OwnerID     string

	// Location is nil when the resource has no coordinate.
	Location *struct{ Lat, Lon float64 }

	// Typed attribute projection; nil pointers mean "attribute absent".
	Surface *int
	Level   *int
	Rooms   *int
	IsNew   *bool

	Image       string
	ImagesCount int
	ItemsCount  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BuildDocument projects a fully loaded resource into its index document.
func BuildDocument(r *Resource) Document {
	doc := Document{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		OwnerID:     r.OwnerID,
		Image:       r.PrimaryImage(),
		ImagesCount: len(r.Images),
		ItemsCount:  len(r.Items),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if c := r.Coordinate; c != nil {
		doc.Location = &struct{ Lat, Lon float64 }{Lat: c.Latitude, Lon: c.Longitude}
	}

	for _, f := range r.Features {
		switch feature.Name(f.Name) {
		case feature.Surface:
			if v, err := strconv.Atoi(f.Value); err == nil {
				doc.Surface = &v
			}
		case feature.Level:
			if v, err := strconv.Atoi(f.Value); err == nil {
				doc.Level = &v
			}
		case feature.Rooms:
			if v, err := strconv.Atoi(f.Value); err == nil {
				doc.Rooms = &v
			}
		case feature.New:
			if v, err := strconv.ParseBool(f.Value); err == nil {
				doc.IsNew = &v
			}
		}
	}

	return doc
}
