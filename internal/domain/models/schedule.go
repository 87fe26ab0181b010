package models

// Schedule binds one route, one armada, and an optional driver/conductor pair
// to a set of operating weekdays. Days is stored as a comma separated label
// list; parse it with domain.ParseDays before doing any set work.
type Schedule struct {
	ID                int64  `json:"id"`
	RouteID           int64  `json:"routeId"`
	ArmadaID          int64  `json:"armadaId"`
	DriverID          *int64 `json:"driverId,omitempty"`
	ConductorID       *int64 `json:"conductorId,omitempty"`
	Days              string `json:"days"`
	DepartureTime     string `json:"departureTime"` // HH:MM
	ArrivalTime       string `json:"arrivalTime"`
	Price             int64  `json:"price"`
	PriceWeekend      int64  `json:"priceWeekend"`
	IsLive            bool   `json:"isLive"`
	NeedsReassignment bool   `json:"needsReassignment"`
	SeatsBooked       int    `json:"seatsBooked"`
}

// PublicSchedule is the storefront listing row: schedule plus the joined
// route/armada columns and the fare effective for the requested date.
type PublicSchedule struct {
	Schedule
	RouteName      string `json:"routeName"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	ArmadaCode     string `json:"armadaCode"`
	Capacity       int    `json:"capacity"`
	SeatsAvailable int    `json:"seatsAvailable"`
	EffectivePrice int64  `json:"effectivePrice"`
}
