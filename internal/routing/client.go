// Package routing wraps the external routing provider used to precompute a
// route's geometry and distance from its ordered stop coordinates. The
// provider is a black box returning a point list plus a distance/duration
// summary (OSRM response shape).
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
)

// RouteSummary is what the catalog needs back from the provider.
type RouteSummary struct {
	Geometry    []models.LatLng
	DistanceKm  float64
	DurationMin int
}

// Provider is the seam services depend on; tests stub it.
type Provider interface {
	Route(ctx context.Context, points []models.LatLng) (RouteSummary, error)
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// Route asks the provider for a driving route through the given points, in
// order.
func (c *Client) Route(ctx context.Context, points []models.LatLng) (RouteSummary, error) {
	if len(points) < 2 {
		return RouteSummary{}, fmt.Errorf("routing: butuh minimal 2 titik, dapat %d", len(points))
	}

	coords := make([]string, 0, len(points))
	for _, p := range points {
		coords = append(coords, fmt.Sprintf("%f,%f", p.Lng, p.Lat))
	}
	url := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson",
		c.BaseURL, strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RouteSummary{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return RouteSummary{}, fmt.Errorf("routing: request gagal: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RouteSummary{}, fmt.Errorf("routing: provider balas status %d", resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RouteSummary{}, fmt.Errorf("routing: decode gagal: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return RouteSummary{}, fmt.Errorf("routing: provider balas code=%s routes=%d", body.Code, len(body.Routes))
	}

	r := body.Routes[0]
	geom := make([]models.LatLng, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		geom = append(geom, models.LatLng{Lat: c[1], Lng: c[0]})
	}

	return RouteSummary{
		Geometry:    geom,
		DistanceKm:  r.Distance / 1000.0,
		DurationMin: int(r.Duration/60.0 + 0.5),
	}, nil
}
