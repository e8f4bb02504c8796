package chi

import (
	"net/url"
	"strconv"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/feature"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
	"github.com/kailas-cloud/catalogd/internal/resolver"
	cataloguc "github.com/kailas-cloud/catalogd/internal/usecase/catalog"
)

// filterQueryFromParams parses the list-endpoint query string. Core
// parameters (price, dates, paging) reject garbage; feature range bounds
// that fail to parse simply contribute no constraint.
func filterQueryFromParams(values url.Values) (cataloguc.FilterQuery, error) {
	q := cataloguc.FilterQuery{
		Text:    values.Get("q"),
		OwnerID: values.Get("ownerId"),
		SortBy:  search.ParseSortField(values.Get("sortBy")),
		Order:   search.ParseOrder(values.Get("order")),
	}

	var err error
	if q.MinPrice, err = floatParam(values, "minPrice"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = floatParam(values, "maxPrice"); err != nil {
		return q, err
	}
	if q.DateFrom, err = timeParam(values, "dateFrom"); err != nil {
		return q, err
	}
	if q.DateTo, err = timeParam(values, "dateTo"); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(values, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = intParam(values, "offset"); err != nil {
		return q, err
	}
	if q.Page, err = intParam(values, "page"); err != nil {
		return q, err
	}

	q.Features = featureFiltersFromParams(values)
	return q, nil
}

func featureFiltersFromParams(values url.Values) resolver.Filters {
	var f resolver.Filters

	for _, p := range []struct {
		param string
		name  feature.Name
	}{
		{"rooms", feature.Rooms},
		{"level", feature.Level},
	} {
		raw := values.Get(p.param)
		if raw == "" {
			continue
		}
		if _, err := strconv.Atoi(raw); err != nil {
			continue
		}
		f.Exact = append(f.Exact, resolver.ExactFilter{Name: p.name, Value: raw})
	}

	if raw := values.Get("isNew"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			f.Exact = append(f.Exact, resolver.ExactFilter{
				Name:  feature.New,
				Value: strconv.FormatBool(v),
			})
		}
	}

	min := intBound(values.Get("surfaceMin"))
	max := intBound(values.Get("surfaceMax"))
	if min != nil || max != nil {
		f.Ranges = append(f.Ranges, resolver.RangeFilter{
			Name: feature.Surface,
			Min:  min,
			Max:  max,
		})
	}

	return f
}

func intBound(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func floatParam(values url.Values, name string) (*float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, domain.Validationf("%s must be a number", name)
	}
	return &v, nil
}

func intParam(values url.Values, name string) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validationf("%s must be an integer", name)
	}
	return v, nil
}

// timeParam accepts RFC 3339 timestamps and plain dates.
func timeParam(values url.Values, name string) (*time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validationf("%s must be an RFC 3339 timestamp or a YYYY-MM-DD date", name)
}
