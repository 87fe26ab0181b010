package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
)

func bookingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "booking_code", "schedule_id", "trip_date",
		"seat_count", "seat_labels", "passenger_name", "passenger_phone",
		"total_price", "status", "checkin_status",
	})
}

// 2026-01-02 jatuh di hari Jumat.
const fridayTrip = "2026-01-02"

func expectBookingLock(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"l"}).AddRow(1))
}

func expectScheduleForBooking(mock sqlmock.Sqlmock, seatsBooked int) {
	mock.ExpectQuery("FROM schedules WHERE id = \\? FOR UPDATE").
		WillReturnRows(scheduleRows().
			AddRow(3, 1, 7, nil, nil, "Friday", "08:00", "12:00", 3000, 3600, true, false, seatsBooked))
}

func TestCreateBookingRejectsWhenCapacityExceeded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectBookingLock(mock)
	expectScheduleForBooking(mock, 39)
	mock.ExpectQuery("SELECT capacity FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(39))
	mock.ExpectRollback()

	svc := BookingService{BookingRepo: repositories.BookingRepo{DB: db}, ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.Create(BookingInput{
		ScheduleID:    3,
		TripDate:      fridayTrip,
		SeatCount:     2,
		PassengerName: "Budi",
	})

	var capErr domain.InsufficientCapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected InsufficientCapacity, got %v", err)
	}
	if capErr.Available != 1 || capErr.Requested != 2 {
		t.Fatalf("detail kapasitas salah: %+v", capErr)
	}
}

func TestCreateBookingLastSeatSucceedsWithWeekendPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectBookingLock(mock)
	expectScheduleForBooking(mock, 39)
	mock.ExpectQuery("SELECT capacity FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(40))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(39))
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(77, 1))
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE_LOCK").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{BookingRepo: repositories.BookingRepo{DB: db}, ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	b, err := svc.Create(BookingInput{
		ScheduleID:    3,
		TripDate:      fridayTrip,
		SeatCount:     1,
		PassengerName: "Budi",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if b.ID != 77 {
		t.Fatalf("id tidak terisi: %d", b.ID)
	}
	// Jumat termasuk jendela weekend: pakai price_weekend
	if b.TotalPrice != 3600 {
		t.Fatalf("total harga salah: got %d want 3600", b.TotalPrice)
	}
	if b.BookingCode == "" {
		t.Fatalf("booking code kosong")
	}
	// kunci kapasitas harus dilepas ke server sebelum commit
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateBookingRejectsNonOperatingDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectBookingLock(mock)
	expectScheduleForBooking(mock, 0)
	mock.ExpectRollback()

	svc := BookingService{BookingRepo: repositories.BookingRepo{DB: db}, ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	// 2026-01-05 adalah Senin; jadwal cuma beroperasi Jumat
	_, err = svc.Create(BookingInput{
		ScheduleID:    3,
		TripDate:      "2026-01-05",
		SeatCount:     1,
		PassengerName: "Budi",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelBookingRestoresSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WillReturnRows(bookingRows().
			AddRow(77, "AB12CD34", 3, fridayTrip, 2, "A1,A2", "Budi", "0800", 7200, "confirmed", "pending"))
	mock.ExpectExec("UPDATE bookings SET status = 'cancelled'").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := BookingService{BookingRepo: repositories.BookingRepo{DB: db}, ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	b, err := svc.Cancel(77)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if b.Status != "cancelled" {
		t.Fatalf("status tidak berubah: %s", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCancelBookingIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM bookings WHERE id = \\? FOR UPDATE").
		WillReturnRows(bookingRows().
			AddRow(77, "AB12CD34", 3, fridayTrip, 2, "A1,A2", "Budi", "0800", 7200, "cancelled", "pending"))
	mock.ExpectRollback()

	svc := BookingService{BookingRepo: repositories.BookingRepo{DB: db}, ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	b, err := svc.Cancel(77)
	if err != nil {
		t.Fatalf("pembatalan ulang harus no-op, got %v", err)
	}
	if b.Status != "cancelled" {
		t.Fatalf("status salah: %s", b.Status)
	}
	// tidak boleh ada UPDATE apa pun
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
