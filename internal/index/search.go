package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
	"github.com/kailas-cloud/catalogd/internal/domain/search"
)

// asUnavailable folds any index call failure into ErrIndexUnavailable.
// Unreachable, timed out, and misconfigured all mean the same thing to the
// orchestrator: use the storage fallback for this call.
func asUnavailable(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
}

// Search runs the merged filter query and returns ranked ids plus the total
// match count. Order in the result is authoritative; callers hydrate from
// storage preserving it exactly.
func (c *Client) Search(ctx context.Context, crit search.Criteria) (search.Result, error) {
	if !c.Enabled() {
		return search.Result{}, domain.ErrIndexUnavailable
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()

	args := []string{
		c.name, buildQuery(crit),
		"RETURN", "1", "id",
		"SORTBY", sortField(crit.SortBy), sortDir(crit.Order),
		"LIMIT", strconv.Itoa(crit.Offset), strconv.Itoa(crit.Limit),
		"DIALECT", "2",
	}

	cmd := c.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := c.do(ctx, cmd).ToArray()
	if err != nil {
		c.logger.Warn("index search failed, falling back to storage", zap.Error(err))
		return search.Result{}, asUnavailable(err)
	}

	res, err := parseSearchResult(raw)
	if err != nil {
		c.logger.Warn("index search reply malformed, falling back to storage", zap.Error(err))
		return search.Result{}, asUnavailable(err)
	}
	return res, nil
}

// Suggest returns autocomplete hits: a prefix-biased match on name with a
// fuzzy fallback across name and description.
func (c *Client) Suggest(ctx context.Context, term string, limit int) ([]search.Suggestion, error) {
	if !c.Enabled() {
		return nil, domain.ErrIndexUnavailable
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return []search.Suggestion{}, nil
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()

	args := []string{
		c.name, buildSuggestQuery(term),
		"RETURN", "4", "id", "name", "price", "image",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := c.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := c.do(ctx, cmd).ToArray()
	if err != nil {
		c.logger.Warn("index suggest failed, falling back to storage", zap.Error(err))
		return nil, asUnavailable(err)
	}

	out, err := parseSuggestResult(raw)
	if err != nil {
		c.logger.Warn("index suggest reply malformed, falling back to storage", zap.Error(err))
		return nil, asUnavailable(err)
	}
	return out, nil
}

// --- Query building ---

// buildQuery translates criteria into an FT.SEARCH query string. An empty
// criteria set matches everything.
func buildQuery(c search.Criteria) string {
	var parts []string

	if clause := textClause(c.Text); clause != "" {
		parts = append(parts, clause)
	}
	if c.MinPrice != nil || c.MaxPrice != nil {
		parts = append(parts, numericClause("price", floatBound(c.MinPrice), floatBound(c.MaxPrice)))
	}
	if c.DateFrom != nil || c.DateTo != nil {
		minB, maxB := "-inf", "+inf"
		if c.DateFrom != nil {
			minB = strconv.FormatInt(c.DateFrom.Unix(), 10)
		}
		if c.DateTo != nil {
			maxB = strconv.FormatInt(c.DateTo.Unix(), 10)
		}
		parts = append(parts, fmt.Sprintf("@created_at:[%s %s]", minB, maxB))
	}
	if c.OwnerID != "" {
		parts = append(parts, fmt.Sprintf("@owner_id:{%s}", tagEscaper.Replace(c.OwnerID)))
	}
	if c.IDs != nil {
		escaped := make([]string, len(c.IDs))
		for i, id := range c.IDs {
			escaped[i] = tagEscaper.Replace(id)
		}
		parts = append(parts, fmt.Sprintf("@id:{%s}", strings.Join(escaped, "|")))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// textClause matches all query tokens against name (weighted in the schema)
// and description, each token by prefix with a fuzzy alternative for tokens
// long enough to tolerate an edit.
func textClause(text string) string {
	toks := strings.Fields(text)
	if len(toks) == 0 {
		return ""
	}
	per := make([]string, 0, len(toks))
	for _, tok := range toks {
		esc := tokenEscaper.Replace(tok)
		if esc == "" {
			continue
		}
		if len([]rune(esc)) >= 3 {
			per = append(per, fmt.Sprintf("(%s*|%%%s%%)", esc, esc))
		} else {
			per = append(per, esc+"*")
		}
	}
	if len(per) == 0 {
		return ""
	}
	return fmt.Sprintf("@name|description:(%s)", strings.Join(per, " "))
}

// buildSuggestQuery prefers name prefixes; fuzzy name+description matches
// rank behind them via query union.
func buildSuggestQuery(term string) string {
	toks := strings.Fields(term)
	prefixes := make([]string, 0, len(toks))
	fuzzies := make([]string, 0, len(toks))
	for _, tok := range toks {
		esc := tokenEscaper.Replace(tok)
		if esc == "" {
			continue
		}
		prefixes = append(prefixes, esc+"*")
		if len([]rune(esc)) >= 3 {
			fuzzies = append(fuzzies, "%"+esc+"%")
		}
	}
	if len(prefixes) == 0 {
		return "*"
	}
	q := fmt.Sprintf("(@name:(%s))", strings.Join(prefixes, " "))
	if len(fuzzies) > 0 {
		q = fmt.Sprintf("(%s|(@name|description:(%s)))", q, strings.Join(fuzzies, " "))
	}
	return q
}

func numericClause(field, minB, maxB string) string {
	return fmt.Sprintf("@%s:[%s %s]", field, minB, maxB)
}

func floatBound(v *float64) string {
	if v == nil {
		return "-inf"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func sortField(f search.SortField) string {
	switch f {
	case search.SortPrice:
		return "price"
	case search.SortName:
		return "name"
	default:
		return "created_at"
	}
}

func sortDir(o search.Order) string {
	if o == search.Asc {
		return "ASC"
	}
	return "DESC"
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (search.Result, error) {
	if len(raw) == 0 {
		return search.Result{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return search.Result{}, fmt.Errorf("parse total: %w", err)
	}

	ids := make([]string, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)
		id := m["id"]
		if id == "" {
			id = strings.TrimPrefix(key, KeyPrefix)
		}
		ids = append(ids, id)
	}

	return search.Result{IDs: ids, Total: total}, nil
}

func parseSuggestResult(raw []rueidis.RedisMessage) ([]search.Suggestion, error) {
	if len(raw) == 0 {
		return []search.Suggestion{}, nil
	}
	if _, err := raw[0].AsInt64(); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	out := make([]search.Suggestion, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)
		s := search.Suggestion{
			ID:    m["id"],
			Name:  m["name"],
			Image: m["image"],
		}
		if s.ID == "" {
			s.ID = strings.TrimPrefix(key, KeyPrefix)
		}
		if p, err := strconv.ParseFloat(m["price"], 64); err == nil {
			s.Price = p
		}
		out = append(out, s)
	}
	return out, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Escaping ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

var tokenEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
