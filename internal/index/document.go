package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
)

func docKey(id string) string { return KeyPrefix + id }

// docFields flattens a document into the hash representation the schema
// indexes. Geo points use the "lon,lat" form GEO fields expect.
func docFields(doc resource.Document) map[string]string {
	fields := map[string]string{
		"id":           doc.ID,
		"name":         doc.Name,
		"description":  doc.Description,
		"price":        strconv.FormatFloat(doc.Price, 'f', -1, 64),
		"owner_id":     doc.OwnerID,
		"created_at":   strconv.FormatInt(doc.CreatedAt.Unix(), 10),
		"updated_at":   strconv.FormatInt(doc.UpdatedAt.Unix(), 10),
		"images_count": strconv.Itoa(doc.ImagesCount),
		"items_count":  strconv.Itoa(doc.ItemsCount),
	}
	if doc.Image != "" {
		fields["image"] = doc.Image
	}
	if doc.Location != nil {
		fields["location"] = fmt.Sprintf("%f,%f", doc.Location.Lon, doc.Location.Lat)
	}
	if doc.Surface != nil {
		fields["surface"] = strconv.Itoa(*doc.Surface)
	}
	if doc.Level != nil {
		fields["level"] = strconv.Itoa(*doc.Level)
	}
	if doc.Rooms != nil {
		fields["rooms"] = strconv.Itoa(*doc.Rooms)
	}
	if doc.IsNew != nil {
		fields["is_new"] = strconv.FormatBool(*doc.IsNew)
	}
	return fields
}

func hsetCmd(b rueidis.Builder, key string, fields map[string]string) rueidis.Completed {
	cmd := b.Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

// Upsert writes one document keyed by resource id, replacing any previous
// version wholesale so dropped attributes do not linger. Redis hash writes
// are searchable immediately, which covers the read-after-write attempt.
func (c *Client) Upsert(ctx context.Context, doc resource.Document) error {
	if !c.Enabled() {
		return domain.ErrIndexUnavailable
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()

	key := docKey(doc.ID)
	cmds := []rueidis.Completed{
		c.b().Del().Key(key).Build(),
		hsetCmd(c.b(), key, docFields(doc)),
	}
	for _, res := range c.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// Delete removes a document. Deleting an id that was never indexed is fine.
func (c *Client) Delete(ctx context.Context, id string) error {
	if !c.Enabled() {
		return domain.ErrIndexUnavailable
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.do(ctx, c.b().Del().Key(docKey(id)).Build()).Error(); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// BulkReindex drops and recreates the index, then loads every document.
// Per-item failures are logged and skipped; the batch never aborts on them.
// Returns the number of documents written.
func (c *Client) BulkReindex(ctx context.Context, docs []resource.Document) (int, error) {
	if !c.Enabled() {
		return 0, domain.ErrIndexUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout*10)
	defer cancel()

	if err := c.dropIndex(ctx); err != nil {
		return 0, err
	}
	if err := c.EnsureIndex(ctx); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	cmds := make([]rueidis.Completed, len(docs))
	for i, doc := range docs {
		cmds[i] = hsetCmd(c.b(), docKey(doc.ID), docFields(doc))
	}

	count := 0
	for i, res := range c.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			c.logger.Warn("reindex item failed",
				zap.String("resource_id", docs[i].ID),
				zap.Error(err),
			)
			continue
		}
		count++
	}
	return count, nil
}
