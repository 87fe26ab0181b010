package repositories

import (
	"database/sql"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
)

type BookingRepo struct {
	DB *sql.DB
}

const bookingColumns = `
	id, booking_code, schedule_id, DATE_FORMAT(trip_date, '%Y-%m-%d'),
	seat_count, COALESCE(seat_labels,''), passenger_name, COALESCE(passenger_phone,''),
	total_price, status, checkin_status
`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.BookingCode, &b.ScheduleID, &b.TripDate,
		&b.SeatCount, &b.SeatLabels, &b.PassengerName, &b.PassengerPhone,
		&b.TotalPrice, &b.Status, &b.CheckinStatus,
	)
	return b, err
}

func (r BookingRepo) GetByID(id int64) (models.Booking, error) {
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

func (r BookingRepo) GetByCode(code string) (models.Booking, error) {
	row := r.DB.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE booking_code = ?`, code)
	return scanBooking(row)
}

// GetByIDTx locks the booking row; the cancel path's check-and-set depends on
// it.
func (r BookingRepo) GetByIDTx(tx *sql.Tx, id int64) (models.Booking, error) {
	row := tx.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id)
	return scanBooking(row)
}

// SumActiveSeats totals non-cancelled seats for a schedule and date, inside
// the booking transaction.
func (r BookingRepo) SumActiveSeats(tx *sql.Tx, scheduleID int64, tripDate string) (int, error) {
	var n int
	err := tx.QueryRow(`
		SELECT COALESCE(SUM(seat_count), 0)
		FROM bookings
		WHERE schedule_id = ? AND trip_date = ? AND status <> 'cancelled'
	`, scheduleID, tripDate).Scan(&n)
	return n, err
}

func (r BookingRepo) Insert(tx *sql.Tx, b models.Booking) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO bookings
			(booking_code, schedule_id, trip_date, seat_count, seat_labels,
			 passenger_name, passenger_phone, total_price, status, checkin_status, created_at)
		VALUES (?, ?, ?, ?, NULLIF(?,''), ?, NULLIF(?,''), ?, ?, ?, NOW())
	`, b.BookingCode, b.ScheduleID, b.TripDate, b.SeatCount, b.SeatLabels,
		b.PassengerName, b.PassengerPhone, b.TotalPrice, b.Status, b.CheckinStatus)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepo) MarkCancelled(tx *sql.Tx, id int64) error {
	_, err := tx.Exec(`UPDATE bookings SET status = 'cancelled', updated_at = NOW() WHERE id = ?`, id)
	return err
}

func (r BookingRepo) SetCheckin(id int64, status string) error {
	res, err := r.DB.Exec(`UPDATE bookings SET checkin_status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AdjustSeatsBooked moves the schedule's running counter, floored at zero on
// the way down.
func (r BookingRepo) AdjustSeatsBooked(tx *sql.Tx, scheduleID int64, delta int) error {
	_, err := tx.Exec(`
		UPDATE schedules
		SET seats_booked = GREATEST(seats_booked + ?, 0), updated_at = NOW()
		WHERE id = ?
	`, delta, scheduleID)
	return err
}

func (r BookingRepo) List(scheduleID int64, tripDate string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	if scheduleID > 0 {
		query += ` AND schedule_id = ?`
		args = append(args, scheduleID)
	}
	if tripDate != "" {
		query += ` AND trip_date = ?`
		args = append(args, tripDate)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
