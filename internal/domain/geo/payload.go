package geo

import (
	"strings"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Payload is raw coordinate input as received from a caller: separate
// latitude/longitude fields, a combined "lat lon" string, or both.
type Payload struct {
	Latitude  string
	Longitude string
	Combined  string
}

// Provided reports whether any coordinate input was supplied.
func (p Payload) Provided() bool {
	return strings.TrimSpace(p.Latitude) != "" ||
		strings.TrimSpace(p.Longitude) != "" ||
		strings.TrimSpace(p.Combined) != ""
}

// Resolve turns the payload into a validated point.
//
// On a creation flow a half-supplied pair is an error. On an update flow a
// partially supplied pair that fails to resolve both values means "no change
// requested" (nil, nil) — unless it came from a combined string that split
// unambiguously, in which case the parse error surfaces.
func (p Payload) Resolve(update bool) (*Point, error) {
	if !p.Provided() {
		return nil, nil
	}

	latRaw := strings.TrimSpace(p.Latitude)
	lonRaw := strings.TrimSpace(p.Longitude)
	combined := strings.TrimSpace(p.Combined)

	fromCombined := false
	if combined != "" && (latRaw == "" || lonRaw == "") {
		a, b, ok := SplitCombined(combined)
		if !ok {
			if update {
				return nil, nil
			}
			return nil, domain.Validationf("combined coordinates must contain latitude and longitude")
		}
		if latRaw == "" {
			latRaw = a
		}
		if lonRaw == "" {
			lonRaw = b
		}
		fromCombined = true
	}

	if latRaw == "" || lonRaw == "" {
		if update {
			return nil, nil
		}
		if latRaw != "" {
			return nil, domain.Validationf("longitude is required when latitude is provided")
		}
		return nil, domain.Validationf("latitude is required when longitude is provided")
	}

	lat, err := Parse(Latitude, latRaw)
	if err != nil {
		if update && !fromCombined {
			return nil, nil
		}
		return nil, err
	}
	lon, err := Parse(Longitude, lonRaw)
	if err != nil {
		if update && !fromCombined {
			return nil, nil
		}
		return nil, err
	}

	return &Point{Lat: lat, Lon: lon}, nil
}
