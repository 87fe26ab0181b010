package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/services"
)

type schedulePayload struct {
	RouteID       int64  `json:"routeId" binding:"required"`
	ArmadaID      int64  `json:"armadaId" binding:"required"`
	DriverID      *int64 `json:"driverId"`
	ConductorID   *int64 `json:"conductorId"`
	Days          string `json:"days" binding:"required"`
	DepartureTime string `json:"departureTime" binding:"required"`
	ArrivalTime   string `json:"arrivalTime" binding:"required"`
	Price         *int64 `json:"price"`
	PriceWeekend  *int64 `json:"priceWeekend"`
	IsLive        *bool  `json:"isLive"`
}

func (p schedulePayload) toInput() services.ScheduleInput {
	return services.ScheduleInput{
		RouteID:       p.RouteID,
		ArmadaID:      p.ArmadaID,
		DriverID:      p.DriverID,
		ConductorID:   p.ConductorID,
		Days:          p.Days,
		DepartureTime: strings.TrimSpace(p.DepartureTime),
		ArrivalTime:   strings.TrimSpace(p.ArrivalTime),
		Price:         p.Price,
		PriceWeekend:  p.PriceWeekend,
		IsLive:        p.IsLive,
	}
}

// GET /api/schedules (admin)
func GetSchedules(c *gin.Context) {
	repo := repositories.ScheduleRepo{DB: dbHandle()}
	list, err := repo.List()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal mengambil data jadwal", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/schedules
// 409 jika armada/driver/conductor bentrok hari dengan jadwal live lain.
func CreateSchedule(c *gin.Context) {
	var payload schedulePayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	svc := services.ScheduleService{RequestID: middleware.GetRequestID(c)}
	s, err := svc.Create(payload.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// PUT /api/schedules/:id
// Validasi bentrok dijalankan ulang, jadwal ini sendiri dikecualikan.
func UpdateSchedule(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload schedulePayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	svc := services.ScheduleService{RequestID: middleware.GetRequestID(c)}
	s, err := svc.Update(id, payload.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// PUT /api/schedules/:id/toggle-live
func ToggleScheduleLive(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	svc := services.ScheduleService{RequestID: middleware.GetRequestID(c)}
	s, err := svc.ToggleLive(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// DELETE /api/schedules/:id
func DeleteSchedule(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	svc := services.ScheduleService{RequestID: middleware.GetRequestID(c)}
	if err := svc.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "jadwal berhasil dihapus"})
}

// GET /api/schedules/live?date=YYYY-MM-DD
// Listing publik: harga efektif mengikuti aturan weekend (Jumat-Minggu).
func GetLiveSchedules(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		RespondError(c, http.StatusBadRequest, "parameter date wajib diisi (YYYY-MM-DD)", nil)
		return
	}

	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	list, err := svc.ListPublicForDate(date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
