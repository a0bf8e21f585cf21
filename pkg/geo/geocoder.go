package geo

import (
	"context"
	"errors"
	"math"

	"googlemaps.github.io/maps"

	"keyskeeper-backend/internal/domain"
)

// GoogleGeocoder wraps the Google Maps client behind the Geocoder contract.
// The handle is created once at startup and injected where needed; callers
// check Ready before use rather than poking a module-level flag.
type GoogleGeocoder struct {
	client *maps.Client
	region string
}

// NewGoogleGeocoder returns a nil-client geocoder when no API key is set, so
// the rest of the app degrades to non-geo behavior instead of failing boot.
func NewGoogleGeocoder(apiKey, region string) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return &GoogleGeocoder{region: region}, nil
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GoogleGeocoder{client: c, region: region}, nil
}

// Ready reports whether geocoding calls can be made.
func (g *GoogleGeocoder) Ready() bool {
	return g != nil && g.client != nil
}

// Geocode resolves an address to coordinates. A nil result with nil error
// means the address could not be resolved; callers treat that as "no coords"
// and never block their primary operation on it.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*domain.LatLng, error) {
	if !g.Ready() {
		return nil, errors.New("geocoder not configured")
	}
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	loc := results[0].Geometry.Location
	return &domain.LatLng{Lat: loc.Lat, Lng: loc.Lng}, nil
}

const earthRadiusMeters = 6371000.0

// DistanceMeters is the haversine great-circle distance between two points.
// Good to well under 1% at city scale, which is all the search ordering needs.
func DistanceMeters(a, b domain.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
