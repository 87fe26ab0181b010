package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/utils"
)

// BookingService is the seat ledger. The capacity check and the insert run in
// one transaction with the schedule row locked, so two concurrent bookings can
// never jointly oversell.
type BookingService struct {
	BookingRepo  repositories.BookingRepo
	ScheduleRepo repositories.ScheduleRepo
	DB           *sql.DB
	RequestID    string
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) bookings() repositories.BookingRepo {
	if s.BookingRepo.DB != nil {
		return s.BookingRepo
	}
	return repositories.BookingRepo{DB: s.db()}
}

func (s BookingService) schedules() repositories.ScheduleRepo {
	if s.ScheduleRepo.DB != nil {
		return s.ScheduleRepo
	}
	return repositories.ScheduleRepo{DB: s.db()}
}

type BookingInput struct {
	ScheduleID     int64
	TripDate       string
	SeatCount      int
	SeatLabels     string
	PassengerName  string
	PassengerPhone string
}

// Create reserves seats for one trip date. Total price uses the same weekend
// rule as the public listing so quote and charge cannot drift.
func (s BookingService) Create(in BookingInput) (models.Booking, error) {
	var out models.Booking

	if in.ScheduleID <= 0 {
		return out, domain.ValidationError{Field: "schedule_id", Msg: "id tidak valid"}
	}
	tripDate, err := utils.ParseDate(in.TripDate)
	if err != nil {
		return out, domain.ValidationError{Field: "date", Msg: "format harus YYYY-MM-DD"}
	}
	name := utils.NormalizeSpace(in.PassengerName)
	if name == "" {
		return out, domain.ValidationError{Field: "passenger_name", Msg: "wajib diisi"}
	}

	seatLabels := utils.SplitSeatList(in.SeatLabels)
	seatCount := in.SeatCount
	if seatCount <= 0 {
		seatCount = len(seatLabels)
	}
	if seatCount <= 0 {
		return out, domain.ValidationError{Field: "seats", Msg: "jumlah kursi harus lebih dari 0"}
	}
	if len(seatLabels) > 0 && len(seatLabels) != seatCount {
		return out, domain.ValidationError{Field: "seats", Msg: "jumlah label kursi tidak cocok dengan seat_count"}
	}

	dateStr := utils.FormatDate(tripDate)

	tx, err := s.db().Begin()
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lockKey := fmt.Sprintf("bookings:%d:%s", in.ScheduleID, dateStr)
	if err := acquireNamedLock(tx, lockKey, 5); err != nil {
		return out, domain.InternalError{Msg: "gagal mengunci kapasitas", Err: err}
	}
	defer releaseNamedLock(tx, lockKey)

	schedule, err := s.schedules().GetByIDTx(tx, in.ScheduleID)
	if err == sql.ErrNoRows {
		return out, domain.NotFoundError{Resource: "schedule", Err: err}
	}
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	if !schedule.IsLive {
		return out, domain.ValidationError{Field: "schedule_id", Msg: "jadwal tidak tersedia untuk dipesan"}
	}
	if !scheduleOperatesOn(schedule.Days, tripDate) {
		return out, domain.ValidationError{Field: "date",
			Msg: fmt.Sprintf("jadwal tidak beroperasi hari %s", tripDate.Weekday())}
	}

	var capacity int
	if err := tx.QueryRow(`SELECT capacity FROM armadas WHERE id = ?`, schedule.ArmadaID).Scan(&capacity); err != nil {
		return out, domain.InternalError{Err: err}
	}

	booked, err := s.bookings().SumActiveSeats(tx, in.ScheduleID, dateStr)
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	available := capacity - booked
	if seatCount > available {
		return out, domain.InsufficientCapacityError{
			ScheduleID: in.ScheduleID,
			TripDate:   dateStr,
			Requested:  seatCount,
			Available:  available,
		}
	}

	unit := domain.EffectivePrice(schedule.Price, schedule.PriceWeekend, domain.IsWeekendDate(tripDate))

	out = models.Booking{
		BookingCode:    strings.ToUpper(uuid.NewString()[:8]),
		ScheduleID:     in.ScheduleID,
		TripDate:       dateStr,
		SeatCount:      seatCount,
		SeatLabels:     strings.Join(seatLabels, ","),
		PassengerName:  name,
		PassengerPhone: strings.TrimSpace(in.PassengerPhone),
		TotalPrice:     unit * int64(seatCount),
		Status:         models.BookingConfirmed,
		CheckinStatus:  models.CheckinPending,
	}

	id, err := s.bookings().Insert(tx, out)
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	if err := s.bookings().AdjustSeatsBooked(tx, in.ScheduleID, seatCount); err != nil {
		return out, domain.InternalError{Err: err}
	}
	releaseNamedLock(tx, lockKey)
	if err := tx.Commit(); err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed = true

	out.ID = id
	utils.LogEvent(s.RequestID, "booking", "create",
		fmt.Sprintf("id=%d schedule=%d date=%s seats=%d total=%d", id, in.ScheduleID, dateStr, seatCount, out.TotalPrice))
	return out, nil
}

// Cancel marks the booking cancelled and returns its seats to the pool.
// Cancelling an already-cancelled booking is a no-op, never a double refund:
// the status check-and-set and the counter decrement share one transaction.
func (s BookingService) Cancel(id int64) (models.Booking, error) {
	var out models.Booking
	if id <= 0 {
		return out, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booking, err := s.bookings().GetByIDTx(tx, id)
	if err == sql.ErrNoRows {
		return out, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return out, domain.InternalError{Err: err}
	}

	if booking.Status == models.BookingCancelled {
		// idempotent: sudah batal, tidak ada yang dikembalikan lagi
		return booking, nil
	}

	if err := s.bookings().MarkCancelled(tx, id); err != nil {
		return out, domain.InternalError{Err: err}
	}
	if err := s.bookings().AdjustSeatsBooked(tx, booking.ScheduleID, -booking.SeatCount); err != nil {
		return out, domain.InternalError{Err: err}
	}
	if err := tx.Commit(); err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed = true

	booking.Status = models.BookingCancelled
	utils.LogEvent(s.RequestID, "booking", "cancel",
		fmt.Sprintf("id=%d schedule=%d seats=%d", id, booking.ScheduleID, booking.SeatCount))
	return booking, nil
}

// Checkin updates the boarding state for the operator console.
func (s BookingService) Checkin(id int64, status string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	switch status {
	case models.CheckinPending, models.CheckinCheckedIn, models.CheckinNoShow:
	default:
		return domain.ValidationError{Field: "checkin_status", Msg: "status harus pending/checked_in/no_show"}
	}
	err := s.bookings().SetCheckin(id, status)
	if err == sql.ErrNoRows {
		return domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return domain.InternalError{Err: err}
	}
	return nil
}

// ListPublicForDate applies availability and the effective fare for one trip
// date to every live schedule operating that day.
func (s BookingService) ListPublicForDate(dateStr string) ([]models.PublicSchedule, error) {
	tripDate, err := utils.ParseDate(dateStr)
	if err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "format harus YYYY-MM-DD"}
	}

	all, err := s.schedules().ListPublic()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}

	weekend := domain.IsWeekendDate(tripDate)
	date := utils.FormatDate(tripDate)

	out := []models.PublicSchedule{}
	for _, p := range all {
		if !scheduleOperatesOn(p.Days, tripDate) {
			continue
		}
		booked, err := s.sumActiveSeats(p.ID, date)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		p.SeatsAvailable = p.Capacity - booked
		if p.SeatsAvailable < 0 {
			p.SeatsAvailable = 0
		}
		p.EffectivePrice = domain.EffectivePrice(p.Price, p.PriceWeekend, weekend)
		out = append(out, p)
	}
	return out, nil
}

// sumActiveSeats is the read-path variant of the tx'd capacity sum.
func (s BookingService) sumActiveSeats(scheduleID int64, date string) (int, error) {
	var n int
	err := s.db().QueryRow(`
		SELECT COALESCE(SUM(seat_count), 0)
		FROM bookings
		WHERE schedule_id = ? AND trip_date = ? AND status <> 'cancelled'
	`, scheduleID, date).Scan(&n)
	return n, err
}

func scheduleOperatesOn(days string, date time.Time) bool {
	set, err := domain.ParseDays(days)
	if err != nil {
		return false
	}
	return set.Contains(date.Weekday())
}
