package catalog

import (
	"context"
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/feature"
	"github.com/kailas-cloud/catalogd/internal/domain/geo"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
)

// ImageInput is one image reference to attach to a resource.
type ImageInput struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// CreateInput carries a new resource. Location accepts split or combined
// coordinate forms; Features is a free-form name/value list validated
// against the known feature set.
type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Features    []feature.Input `json:"features"`
	Location    geo.Payload     `json:"location"`
	Images      []ImageInput    `json:"images"`
}

// UpdateInput uses pointers to distinguish "leave unchanged" from "set".
// A nil Features slice keeps the existing set; a non-nil one swaps in the
// named values and leaves features it does not name untouched.
type UpdateInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       *float64        `json:"price"`
	Features    []feature.Input `json:"features"`
	Location    geo.Payload     `json:"location"`
}

// Create validates and persists a resource owned by the actor, then
// schedules an index upsert.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*resource.Resource, error) {
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, domain.Validationf("name is required")
	}
	if in.Price < 0 {
		return nil, domain.Validationf("price must not be negative")
	}

	feats, err := feature.Normalize(in.Features)
	if err != nil {
		return nil, err
	}
	point, err := in.Location.Resolve(false)
	if err != nil {
		return nil, err
	}

	res := &resource.Resource{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		OwnerID:     actor.ID,
	}
	for _, f := range feats {
		res.Features = append(res.Features, resource.Feature{
			Name:  string(f.Name),
			Value: f.Value,
		})
	}
	for _, img := range in.Images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, domain.Validationf("image url is required")
		}
		res.Images = append(res.Images, resource.Image{URL: img.URL, Alt: img.Alt})
	}
	if point != nil {
		res.Coordinate = &resource.Coordinate{Latitude: point.Lat, Longitude: point.Lon}
	}

	if err := s.resources.Create(ctx, res); err != nil {
		return nil, err
	}
	s.notify.Sync(res.ID)
	return s.resources.ByID(ctx, res.ID)
}

// Get loads one resource with all associations.
func (s *Service) Get(ctx context.Context, id string) (*resource.Resource, error) {
	return s.resources.ByID(ctx, id)
}

// Update applies a partial update. Only the owner or an admin may modify a
// resource. An unresolved partial coordinate pair leaves the stored location
// untouched; a combined string that fails to parse is an error.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id string, in UpdateInput) (*resource.Resource, error) {
	existing, err := s.resources.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanManage(existing.OwnerID) {
		return nil, domain.ErrForbidden
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validationf("name must not be empty")
		}
		existing.Name = name
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.Validationf("price must not be negative")
		}
		existing.Price = *in.Price
	}

	var feats []resource.Feature
	if in.Features != nil {
		parsed, err := feature.Normalize(in.Features)
		if err != nil {
			return nil, err
		}
		feats = make([]resource.Feature, 0, len(parsed))
		for _, f := range parsed {
			feats = append(feats, resource.Feature{
				ResourceID: id,
				Name:       string(f.Name),
				Value:      f.Value,
			})
		}
	}
	point, err := in.Location.Resolve(true)
	if err != nil {
		return nil, err
	}

	if err := s.resources.Update(ctx, existing); err != nil {
		return nil, err
	}
	if in.Features != nil {
		if err := s.resources.ReplaceFeatures(ctx, id, feats); err != nil {
			return nil, err
		}
	}
	if point != nil {
		if err := s.resources.UpsertCoordinate(ctx, id, *point); err != nil {
			return nil, err
		}
	}

	s.notify.Sync(id)
	return s.resources.ByID(ctx, id)
}

// Delete removes a resource and its children, then schedules index removal.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := s.resources.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Known() {
		return domain.ErrUnauthorized
	}
	if !actor.CanManage(existing.OwnerID) {
		return domain.ErrForbidden
	}
	if err := s.resources.Delete(ctx, id); err != nil {
		return err
	}
	s.notify.Remove(id)
	return nil
}

// AddImages attaches image records to a resource.
func (s *Service) AddImages(ctx context.Context, actor domain.Actor, id string, imgs []ImageInput) (*resource.Resource, error) {
	existing, err := s.resources.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanManage(existing.OwnerID) {
		return nil, domain.ErrForbidden
	}
	if len(imgs) == 0 {
		return nil, domain.Validationf("at least one image is required")
	}

	records := make([]resource.Image, 0, len(imgs))
	for _, img := range imgs {
		if strings.TrimSpace(img.URL) == "" {
			return nil, domain.Validationf("image url is required")
		}
		records = append(records, resource.Image{ResourceID: id, URL: img.URL, Alt: img.Alt})
	}
	if err := s.resources.AddImages(ctx, id, records); err != nil {
		return nil, err
	}
	s.notify.Sync(id)
	return s.resources.ByID(ctx, id)
}

// DeleteImages detaches image records from a resource.
func (s *Service) DeleteImages(ctx context.Context, actor domain.Actor, id string, imageIDs []uint) error {
	existing, err := s.resources.ByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Known() {
		return domain.ErrUnauthorized
	}
	if !actor.CanManage(existing.OwnerID) {
		return domain.ErrForbidden
	}
	if len(imageIDs) == 0 {
		return domain.Validationf("at least one image id is required")
	}
	if err := s.resources.DeleteImages(ctx, id, imageIDs); err != nil {
		return err
	}
	s.notify.Sync(id)
	return nil
}
