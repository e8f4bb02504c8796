package catalog

import (
	"context"
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
)

// ItemInput carries an inventory item create or update. On update, nil
// pointers leave the field unchanged.
type ItemInput struct {
	Name     *string  `json:"name"`
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

// Items lists a resource's inventory items, newest first.
func (s *Service) Items(ctx context.Context, resourceID string) ([]resource.Item, error) {
	if _, err := s.resources.ByID(ctx, resourceID); err != nil {
		return nil, err
	}
	return s.items.ByResource(ctx, resourceID)
}

// CreateItem adds an inventory item. Only the resource owner or an admin.
func (s *Service) CreateItem(ctx context.Context, actor domain.Actor, resourceID string, in ItemInput) (*resource.Item, error) {
	res, err := s.resources.ByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanManage(res.OwnerID) {
		return nil, domain.ErrForbidden
	}

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validationf("item name is required")
	}
	it := &resource.Item{
		ResourceID: resourceID,
		Name:       strings.TrimSpace(*in.Name),
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, domain.Validationf("item quantity must not be negative")
		}
		it.Quantity = *in.Quantity
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.Validationf("item price must not be negative")
		}
		it.Price = *in.Price
	}

	if err := s.items.Create(ctx, it); err != nil {
		return nil, err
	}
	s.notify.Sync(resourceID)
	return it, nil
}

// UpdateItem applies a partial update to an inventory item.
func (s *Service) UpdateItem(ctx context.Context, actor domain.Actor, resourceID, itemID string, in ItemInput) (*resource.Item, error) {
	res, err := s.resources.ByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanManage(res.OwnerID) {
		return nil, domain.ErrForbidden
	}

	it, err := s.items.ByID(ctx, resourceID, itemID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Validationf("item name must not be empty")
		}
		it.Name = name
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, domain.Validationf("item quantity must not be negative")
		}
		it.Quantity = *in.Quantity
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, domain.Validationf("item price must not be negative")
		}
		it.Price = *in.Price
	}

	if err := s.items.Update(ctx, it); err != nil {
		return nil, err
	}
	s.notify.Sync(resourceID)
	return it, nil
}

// DeleteItem removes one inventory item.
func (s *Service) DeleteItem(ctx context.Context, actor domain.Actor, resourceID, itemID string) error {
	res, err := s.resources.ByID(ctx, resourceID)
	if err != nil {
		return err
	}
	if !actor.Known() {
		return domain.ErrUnauthorized
	}
	if !actor.CanManage(res.OwnerID) {
		return domain.ErrForbidden
	}
	if err := s.items.Delete(ctx, resourceID, itemID); err != nil {
		return err
	}
	s.notify.Sync(resourceID)
	return nil
}
