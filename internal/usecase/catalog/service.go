// Package catalog implements the query and mutation orchestration for
// catalog resources. Reads go through the search index when it is reachable
// and silently fall back to storage when it is not; both paths apply
// identical membership rules and pagination.
package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/resource"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
	"github.com/kailas-cloud/catalogd/internal/metrics"
	"github.com/kailas-cloud/catalogd/internal/resolver"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	defaultSuggestLimit = 5
	maxSuggestLimit     = 20
)

// Paging bounds list pagination. Zero values fall back to the package
// defaults.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// Service wires storage, the feature resolver, the search index, and the
// background syncer into the catalog API.
type Service struct {
	resources ResourceStore
	items     ItemStore
	comments  CommentStore
	resolver  ConstraintResolver
	index     SearchIndex
	notify    Notifier
	paging    Paging
	logger    *zap.Logger
}

func New(
	resources ResourceStore,
	items ItemStore,
	comments CommentStore,
	res ConstraintResolver,
	index SearchIndex,
	notify Notifier,
	paging Paging,
	logger *zap.Logger,
) *Service {
	return &Service{
		resources: resources,
		items:     items,
		comments:  comments,
		resolver:  res,
		index:     index,
		notify:    notify,
		paging:    paging,
		logger:    logger,
	}
}

// FilterQuery carries every list-endpoint parameter after transport-level
// parsing. Page, when positive, overrides Offset.
type FilterQuery struct {
	Text     string
	MinPrice *float64
	MaxPrice *float64
	DateFrom *time.Time
	DateTo   *time.Time
	OwnerID  string
	Features resolver.Filters
	SortBy   search.SortField
	Order    search.Order
	Limit    int
	Offset   int
	Page     int
}

// Page is one page of filter results. Page number is always derived from
// the effective offset, whichever way the caller asked for it.
type Page struct {
	Items  []resource.Resource `json:"items"`
	Total  int64               `json:"total"`
	Page   int                 `json:"page"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

func (p Paging) normalize(limit, offset, page int) (int, int) {
	def, max := p.DefaultLimit, p.MaxLimit
	if def < 1 {
		def = defaultPageSize
	}
	if max < 1 {
		max = maxPageSize
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if page > 0 {
		offset = (page - 1) * limit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Filter lists resources matching the query. Attribute filters resolve to an
// id constraint first; an empty intersection short-circuits to an empty page
// without touching either read path.
func (s *Service) Filter(ctx context.Context, q FilterQuery) (*Page, error) {
	limit, offset := s.paging.normalize(q.Limit, q.Offset, q.Page)
	page := offset/limit + 1

	crit := search.Criteria{
		Text:     q.Text,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		OwnerID:  q.OwnerID,
		SortBy:   q.SortBy,
		Order:    q.Order,
		Limit:    limit,
		Offset:   offset,
	}

	if !q.Features.Empty() {
		ids, constrained, err := s.resolver.IDConstraint(ctx, q.Features)
		if err != nil {
			return nil, err
		}
		if constrained {
			if len(ids) == 0 {
				return &Page{Items: []resource.Resource{}, Total: 0, Page: page, Limit: limit, Offset: offset}, nil
			}
			crit.IDs = ids
		}
	}

	if res, err := s.index.Search(ctx, crit); err == nil {
		items, err := s.hydrate(ctx, res.IDs)
		if err != nil {
			return nil, err
		}
		metrics.QueryPathTotal.WithLabelValues("filter", "index").Inc()
		return &Page{Items: items, Total: res.Total, Page: page, Limit: limit, Offset: offset}, nil
	} else if !errors.Is(err, domain.ErrIndexUnavailable) {
		return nil, err
	}

	metrics.QueryPathTotal.WithLabelValues("filter", "storage").Inc()
	items, total, err := s.resources.Filtered(ctx, crit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []resource.Resource{}
	}
	return &Page{Items: items, Total: total, Page: page, Limit: limit, Offset: offset}, nil
}

// hydrate loads full resources for index hits and restores index order.
// Ids the index knows but storage no longer has are dropped.
func (s *Service) hydrate(ctx context.Context, ids []string) ([]resource.Resource, error) {
	if len(ids) == 0 {
		return []resource.Resource{}, nil
	}
	loaded, err := s.resources.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]resource.Resource, len(loaded))
	for _, r := range loaded {
		byID[r.ID] = r
	}
	out := make([]resource.Resource, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Suggest returns lightweight autocomplete entries for the term.
func (s *Service) Suggest(ctx context.Context, term string, limit int) ([]search.Suggestion, error) {
	if limit < 1 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}
	if term == "" {
		return []search.Suggestion{}, nil
	}

	if out, err := s.index.Suggest(ctx, term, limit); err == nil {
		metrics.QueryPathTotal.WithLabelValues("suggest", "index").Inc()
		return out, nil
	} else if !errors.Is(err, domain.ErrIndexUnavailable) {
		return nil, err
	}

	metrics.QueryPathTotal.WithLabelValues("suggest", "storage").Inc()
	rows, err := s.resources.NameLike(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	out := make([]search.Suggestion, 0, len(rows))
	for _, r := range rows {
		out = append(out, search.Suggestion{
			ID:    r.ID,
			Name:  r.Name,
			Price: r.Price,
			Image: r.PrimaryImage(),
		})
	}
	return out, nil
}

// ReindexReport summarizes a full rebuild of the search index. Count is the
// number of documents actually written; per-document failures lower it
// without failing the rebuild.
type ReindexReport struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// Reindex drops and rebuilds the index from storage. Admin only.
func (s *Service) Reindex(ctx context.Context, actor domain.Actor) (*ReindexReport, error) {
	if !actor.Known() {
		return nil, domain.ErrUnauthorized
	}
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !s.index.Enabled() {
		return nil, domain.ErrIndexUnavailable
	}

	docs, err := s.resources.AllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	indexed, err := s.index.BulkReindex(ctx, docs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("search index rebuilt",
		zap.Int("indexed", indexed),
		zap.Int("total", len(docs)))
	return &ReindexReport{Success: true, Count: indexed}, nil
}
