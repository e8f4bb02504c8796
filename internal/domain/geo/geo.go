// Package geo parses free-form geographic coordinate input into validated
// decimal degrees. Three grammars are tried in order: degrees-minutes-seconds,
// decimal degrees with an optional hemisphere letter, and a bare float.
package geo

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Point is a validated coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether latitude is in [-90,90] and longitude in [-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Axis selects the latitude or longitude grammar and range.
type Axis int

const (
	// Latitude accepts N/S hemisphere letters and magnitudes up to 90.
	Latitude Axis = iota
	// Longitude accepts E/W hemisphere letters and magnitudes up to 180.
	Longitude
)

func (a Axis) String() string {
	if a == Latitude {
		return "latitude"
	}
	return "longitude"
}

func (a Axis) limit() float64 {
	if a == Latitude {
		return 90
	}
	return 180
}

// accepts reports whether a hemisphere letter belongs to this axis,
// and whether it selects the negative hemisphere.
func (a Axis) accepts(h byte) (negative, ok bool) {
	switch a {
	case Latitude:
		switch h {
		case 'N':
			return false, true
		case 'S':
			return true, true
		}
	case Longitude:
		switch h {
		case 'E':
			return false, true
		case 'W':
			return true, true
		}
	}
	return false, false
}

// Parse converts one coordinate component to decimal degrees. Comma decimal
// separators are normalized to periods first. Out-of-range magnitudes are
// rejected, not clamped. Parse is pure: identical input yields identical output.
func Parse(a Axis, raw string) (float64, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, domain.Validationf("empty %s", a)
	}

	if v, ok := parseDMS(a, s); ok {
		return checkRange(a, v)
	}
	if v, ok := parseDecimal(a, s); ok {
		return checkRange(a, v)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return checkRange(a, v)
	}
	return 0, domain.Validationf("cannot parse %s %q", a, raw)
}

// ParsePair parses a latitude and longitude together.
func ParsePair(lat, lon string) (Point, error) {
	la, err := Parse(Latitude, lat)
	if err != nil {
		return Point{}, err
	}
	lo, err := Parse(Longitude, lon)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: la, Lon: lo}, nil
}

// SplitCombined splits a combined "lat lon" string on whitespace or commas.
func SplitCombined(s string) (lat, lon string, ok bool) {
	parts := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func checkRange(a Axis, v float64) (float64, error) {
	if v < -a.limit() || v > a.limit() {
		return 0, domain.Validationf("invalid %s value", a)
	}
	return v, nil
}

// parseDMS accepts: optional hemisphere letter, signed integer degrees, an
// optional degree symbol, integer minutes, optional seconds with a decimal
// fraction, conventional minute/second symbols, optional trailing hemisphere
// letter. Minutes are mandatory here — degree-only forms are handled by the
// decimal grammar. A hemisphere letter wins over the numeric sign.
func parseDMS(a Axis, s string) (float64, bool) {
	sc := &scanner{s: s}
	sc.skipSpaces()

	lead := sc.hemisphere()
	sc.skipSpaces()

	degStr, ok := sc.signedInt()
	if !ok {
		return 0, false
	}
	sc.skipSpaces()
	sc.symbol("°º")
	sc.skipSpaces()

	minStr, ok := sc.digits()
	if !ok {
		return 0, false
	}
	sc.skipSpaces()
	sc.symbol("'’′")
	sc.skipSpaces()

	secStr := "0"
	if src, ok := sc.number(); ok {
		secStr = src
		sc.skipSpaces()
		sc.symbol("\"”″")
		sc.skipSpaces()
	}

	trail := sc.hemisphere()
	sc.skipSpaces()
	if !sc.eof() {
		return 0, false
	}

	deg, err := strconv.ParseFloat(degStr, 64)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.ParseFloat(minStr, 64)
	if err != nil || minutes >= 60 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(secStr, 64)
	if err != nil || seconds >= 60 {
		return 0, false
	}

	v := abs(deg) + minutes/60 + seconds/3600
	if deg < 0 || strings.HasPrefix(degStr, "-") {
		v = -v
	}
	return applyHemisphere(a, v, lead, trail)
}

// parseDecimal accepts a plain decimal number with an optional hemisphere
// letter before or after and an optional degree symbol.
func parseDecimal(a Axis, s string) (float64, bool) {
	sc := &scanner{s: s}
	sc.skipSpaces()

	lead := sc.hemisphere()
	sc.skipSpaces()

	numStr, ok := sc.signedNumber()
	if !ok {
		return 0, false
	}
	sc.skipSpaces()
	sc.symbol("°º")
	sc.skipSpaces()

	trail := sc.hemisphere()
	sc.skipSpaces()
	if !sc.eof() {
		return 0, false
	}

	v, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}
	return applyHemisphere(a, v, lead, trail)
}

// applyHemisphere resolves the final sign. The trailing letter takes
// precedence over the leading one; any letter overrides the numeric sign.
// A letter from the wrong axis fails the grammar.
func applyHemisphere(a Axis, v float64, lead, trail byte) (float64, bool) {
	h := trail
	if h == 0 {
		h = lead
	}
	if h == 0 {
		return v, true
	}
	negative, ok := a.accepts(h)
	if !ok {
		return 0, false
	}
	if negative {
		return -abs(v), true
	}
	return abs(v), true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// scanner is a minimal cursor over the input string.
type scanner struct {
	s string
	i int
}

func (sc *scanner) eof() bool { return sc.i >= len(sc.s) }

func (sc *scanner) peek() byte {
	if sc.eof() {
		return 0
	}
	return sc.s[sc.i]
}

func (sc *scanner) skipSpaces() {
	for !sc.eof() && (sc.s[sc.i] == ' ' || sc.s[sc.i] == '\t') {
		sc.i++
	}
}

// hemisphere consumes a single N/S/E/W letter (either case) if present.
func (sc *scanner) hemisphere() byte {
	c := sc.peek()
	switch c {
	case 'N', 'S', 'E', 'W':
		sc.i++
		return c
	case 'n', 's', 'e', 'w':
		sc.i++
		return c - 'a' + 'A'
	}
	return 0
}

// symbol consumes one rune from set if it is next.
func (sc *scanner) symbol(set string) bool {
	for _, r := range set {
		n := len(string(r))
		if sc.i+n <= len(sc.s) && sc.s[sc.i:sc.i+n] == string(r) {
			sc.i += n
			return true
		}
	}
	return false
}

// digits consumes an unsigned integer.
func (sc *scanner) digits() (string, bool) {
	start := sc.i
	for !sc.eof() && sc.s[sc.i] >= '0' && sc.s[sc.i] <= '9' {
		sc.i++
	}
	if sc.i == start {
		return "", false
	}
	return sc.s[start:sc.i], true
}

// signedInt consumes an optionally signed integer.
func (sc *scanner) signedInt() (string, bool) {
	start := sc.i
	if c := sc.peek(); c == '+' || c == '-' {
		sc.i++
	}
	if _, ok := sc.digits(); !ok {
		sc.i = start
		return "", false
	}
	return sc.s[start:sc.i], true
}

// number consumes an unsigned number with an optional decimal fraction.
func (sc *scanner) number() (string, bool) {
	start := sc.i
	if _, ok := sc.digits(); !ok {
		return "", false
	}
	if sc.peek() == '.' {
		sc.i++
		if _, ok := sc.digits(); !ok {
			sc.i = start
			return "", false
		}
	}
	return sc.s[start:sc.i], true
}

// signedNumber consumes an optionally signed number with an optional fraction.
func (sc *scanner) signedNumber() (string, bool) {
	start := sc.i
	if c := sc.peek(); c == '+' || c == '-' {
		sc.i++
	}
	if _, ok := sc.number(); !ok {
		sc.i = start
		return "", false
	}
	return sc.s[start:sc.i], true
}
