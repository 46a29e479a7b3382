package geo

import "testing"

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lon     string
		wantLat float64
		wantLon float64
		wantOK  bool
	}{
		{"valid pair", "52.2297", "21.0122", 52.2297, 21.0122, true},
		{"negative values", "-33.86", "151.21", -33.86, 151.21, true},
		{"both empty", "", "", 0, 0, false},
		{"missing longitude", "52.2297", "", 0, 0, false},
		{"missing latitude", "", "21.0122", 0, 0, false},
		{"garbage latitude", "north", "21.0122", 0, 0, false},
		{"garbage longitude", "52.2297", "east", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := ParseCoordinates(tt.lat, tt.lon)
			if tt.wantOK {
				if lat == nil || lon == nil {
					t.Fatalf("Expected coordinates, got %v, %v", lat, lon)
				}
				if *lat != tt.wantLat || *lon != tt.wantLon {
					t.Errorf("Expected (%v, %v), got (%v, %v)", tt.wantLat, tt.wantLon, *lat, *lon)
				}
				return
			}
			if lat != nil || lon != nil {
				t.Errorf("Expected no coordinates, got (%v, %v)", lat, lon)
			}
		})
	}
}

func TestFromEXIF_NotAnImage(t *testing.T) {
	lat, lon := FromEXIF([]byte("not a jpeg"))
	if lat != nil || lon != nil {
		t.Errorf("Expected no coordinates from junk bytes, got (%v, %v)", lat, lon)
	}
}
