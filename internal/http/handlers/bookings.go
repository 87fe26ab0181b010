package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/services"
)

type bookingPayload struct {
	ScheduleID     int64  `json:"scheduleId" binding:"required"`
	Date           string `json:"date" binding:"required"`
	SeatCount      int    `json:"seatCount"`
	SeatLabels     string `json:"seatLabels"`
	PassengerName  string `json:"passengerName" binding:"required"`
	PassengerPhone string `json:"passengerPhone"`
}

// POST /api/bookings
// 409 insufficient_capacity jika kursi tidak cukup.
func CreateBooking(c *gin.Context) {
	var payload bookingPayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	b, err := svc.Create(services.BookingInput{
		ScheduleID:     payload.ScheduleID,
		TripDate:       strings.TrimSpace(payload.Date),
		SeatCount:      payload.SeatCount,
		SeatLabels:     payload.SeatLabels,
		PassengerName:  payload.PassengerName,
		PassengerPhone: payload.PassengerPhone,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings/code/:code
func GetBookingByCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if code == "" {
		RespondError(c, http.StatusBadRequest, "kode booking wajib diisi", nil)
		return
	}
	repo := repositories.BookingRepo{DB: dbHandle()}
	b, err := repo.GetByCode(code)
	if err == sql.ErrNoRows {
		RespondDomainError(c, domain.NotFoundError{Resource: "booking"})
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal query booking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bookings?schedule_id=&date= (admin)
func GetBookings(c *gin.Context) {
	scheduleID, _ := strconv.ParseInt(strings.TrimSpace(c.Query("schedule_id")), 10, 64)
	date := strings.TrimSpace(c.Query("date"))

	repo := repositories.BookingRepo{DB: dbHandle()}
	list, err := repo.List(scheduleID, date)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal mengambil data booking", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DELETE /api/bookings/:id
// Pembatalan mengembalikan kursi; mengulang pembatalan tidak mengembalikan
// dua kali.
func CancelBooking(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	b, err := svc.Cancel(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking dibatalkan", "booking": b})
}

type checkinPayload struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/bookings/:id/checkin (admin)
func CheckinBooking(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload checkinPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	if err := svc.Checkin(id, strings.TrimSpace(payload.Status)); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status check-in diupdate"})
}

// GET /api/bookings/:id/e-ticket
func GetBookingETicketPDF(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdf, filename, err := svc.GenerateETicket(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
