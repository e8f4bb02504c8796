// Package feature models the closed set of enumerated resource attributes.
// Names are fixed; each name carries a typed value (integer or boolean)
// validated at the boundary and persisted as a string so that range queries
// can cast it back.
package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Name identifies an allowed attribute.
type Name string

const (
	// Rooms is the room count, exact-match filterable.
	Rooms Name = "rooms"
	// Surface is the surface area in square meters, range filterable.
	Surface Name = "surface"
	// Level is the floor number.
	Level Name = "level"
	// New flags a newly built resource.
	New Name = "new"
)

// Kind is the value type carried by an attribute name.
type Kind int

const (
	// KindInt values are non-negative integers.
	KindInt Kind = iota
	// KindBool values are true/false.
	KindBool
)

var kinds = map[Name]Kind{
	Rooms:   KindInt,
	Surface: KindInt,
	Level:   KindInt,
	New:     KindBool,
}

// Valid reports whether n belongs to the allowed set.
func (n Name) Valid() bool {
	_, ok := kinds[n]
	return ok
}

// KindOf returns the value kind for an allowed name.
func KindOf(n Name) Kind { return kinds[n] }

// Feature is a validated (name, value) attribute pair.
type Feature struct {
	Name  Name
	Value string
}

// Parse validates rawName against the allowed set and rawValue against the
// name's kind, returning the canonical pair.
func Parse(rawName, rawValue string) (Feature, error) {
	n := Name(strings.ToLower(strings.TrimSpace(rawName)))
	if !n.Valid() {
		return Feature{}, domain.Validationf("unknown feature %q", rawName)
	}

	v := strings.TrimSpace(rawValue)
	switch KindOf(n) {
	case KindInt:
		iv, err := strconv.Atoi(v)
		if err != nil || iv < 0 {
			return Feature{}, domain.Validationf("feature %s requires a non-negative integer, got %q", n, rawValue)
		}
		return Feature{Name: n, Value: strconv.Itoa(iv)}, nil
	case KindBool:
		bv, err := strconv.ParseBool(v)
		if err != nil {
			return Feature{}, domain.Validationf("feature %s requires a boolean, got %q", n, rawValue)
		}
		return Feature{Name: n, Value: strconv.FormatBool(bv)}, nil
	}
	return Feature{}, fmt.Errorf("unhandled feature kind for %s", n)
}

// Input is an unvalidated attribute pair as received from a caller.
type Input struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Normalize validates inputs and deduplicates by name, last value winning.
// The slice order follows the first occurrence of each name.
func Normalize(inputs []Input) ([]Feature, error) {
	seen := make(map[Name]int, len(inputs))
	out := make([]Feature, 0, len(inputs))
	for _, in := range inputs {
		f, err := Parse(in.Name, in.Value)
		if err != nil {
			return nil, err
		}
		if i, ok := seen[f.Name]; ok {
			out[i] = f
			continue
		}
		seen[f.Name] = len(out)
		out = append(out, f)
	}
	return out, nil
}

// IntValue casts a stored value to an integer. Returns false for values that
// do not parse, mirroring how range filters skip unparsable rows.
func (f Feature) IntValue() (int, bool) {
	v, err := strconv.Atoi(f.Value)
	if err != nil {
		return 0, false
	}
	return v, true
}
