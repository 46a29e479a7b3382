// Package geo resolves optional report coordinates from form fields or
// embedded image metadata.
package geo

import (
	"bytes"
	"strconv"

	"github.com/rwcarlsen/goexif/exif"
)

// ParseCoordinates parses user-provided coordinate strings. Invalid or
// partial pairs are dropped silently; a report is never rejected for a
// bad location alone.
func ParseCoordinates(latStr, lonStr string) (*float64, *float64) {
	if latStr == "" || lonStr == "" {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return nil, nil
	}
	return &lat, &lon
}

// FromEXIF extracts GPS coordinates from an image's EXIF tags. Images
// without usable EXIF data yield no coordinates.
func FromEXIF(imageBytes []byte) (*float64, *float64) {
	x, err := exif.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, nil
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return nil, nil
	}
	return &lat, &lon
}
