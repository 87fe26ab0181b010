package models

// LatLng is one geometry point, stored as part of the route's JSON polyline.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is a waypoint on a route. Seq keeps the stored order; Position is the
// distance from the origin in kilometers.
type Stop struct {
	ID       int64   `json:"id"`
	RouteID  int64   `json:"routeId"`
	Name     string  `json:"name"`
	StopType string  `json:"stopType"` // terminal / pickup / dropoff
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Position float64 `json:"position"`
	DwellMin int     `json:"dwellMin"`
	Fee      int64   `json:"fee"`
	Seq      int     `json:"seq"`
}

type Route struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	DistanceKm  float64  `json:"distanceKm"`
	DurationMin int      `json:"durationMin"`
	Geometry    []LatLng `json:"geometry,omitempty"`
	Stops       []Stop   `json:"stops,omitempty"`
}
