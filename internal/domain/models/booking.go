package models

// Booking status values.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"

	CheckinPending   = "pending"
	CheckinCheckedIn = "checked_in"
	CheckinNoShow    = "no_show"
)

// Booking reserves seats on a schedule for one trip date. SeatLabels is the
// optional comma separated seat list ("A1,A2"); SeatCount is authoritative for
// capacity accounting.
type Booking struct {
	ID             int64  `json:"id"`
	BookingCode    string `json:"bookingCode"`
	ScheduleID     int64  `json:"scheduleId"`
	TripDate       string `json:"tripDate"` // YYYY-MM-DD
	SeatCount      int    `json:"seatCount"`
	SeatLabels     string `json:"seatLabels,omitempty"`
	PassengerName  string `json:"passengerName"`
	PassengerPhone string `json:"passengerPhone,omitempty"`
	TotalPrice     int64  `json:"totalPrice"`
	Status         string `json:"status"`
	CheckinStatus  string `json:"checkinStatus"`
}
