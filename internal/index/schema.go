package index

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// schemaArgs is the FT.CREATE field schema: a keyword id, weighted analyzed
// text for name and description (name additionally sortable in its exact
// form), sortable numerics for price and creation time, owner and is_new
// tags, a geo point, and the numeric attribute projections. Hash fields
// outside the schema (image, child counts) stay retrievable via RETURN.
var schemaArgs = []string{
	"SCHEMA",
	"id", "TAG",
	"name", "TEXT", "WEIGHT", "3", "SORTABLE",
	"description", "TEXT",
	"price", "NUMERIC", "SORTABLE",
	"created_at", "NUMERIC", "SORTABLE",
	"updated_at", "NUMERIC",
	"owner_id", "TAG",
	"location", "GEO",
	"surface", "NUMERIC",
	"level", "NUMERIC",
	"rooms", "NUMERIC",
	"is_new", "TAG",
}

// EnsureIndex creates the index if absent. Idempotent and safe to race: a
// concurrent creation losing to "index already exists" is not an error.
func (c *Client) EnsureIndex(ctx context.Context) error {
	if !c.Enabled() {
		return domain.ErrIndexUnavailable
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()

	args := append([]string{c.name, "ON", "HASH", "PREFIX", "1", KeyPrefix}, schemaArgs...)
	cmd := c.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("ensure index %s: %w", c.name, err)
	}
	return nil
}

// dropIndex removes the index together with its documents (DD). A missing
// index is not an error.
func (c *Client) dropIndex(ctx context.Context) error {
	cmd := c.b().Arbitrary("FT.DROPINDEX").Args(c.name, "DD").Build()
	if err := c.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return nil
		}
		return fmt.Errorf("drop index %s: %w", c.name, err)
	}
	return nil
}
