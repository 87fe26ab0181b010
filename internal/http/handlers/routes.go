package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/routing"
	"github.com/natannielz/Ticket-Bus-sub000/internal/services"
)

var (
	routingMu       sync.RWMutex
	routingProvider routing.Provider
)

// SetRoutingProvider wires the external routing client; called once from the
// router.
func SetRoutingProvider(p routing.Provider) {
	routingMu.Lock()
	defer routingMu.Unlock()
	routingProvider = p
}

func getRoutingProvider() routing.Provider {
	routingMu.RLock()
	defer routingMu.RUnlock()
	return routingProvider
}

// GET /api/routes
func GetRoutes(c *gin.Context) {
	repo := repositories.RouteRepo{DB: dbHandle()}
	list, err := repo.List()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal mengambil data rute", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/routes/:id
// Termasuk geometry untuk animasi kendaraan di sisi klien.
func GetRouteByID(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	repo := repositories.RouteRepo{DB: dbHandle()}
	rt, err := repo.GetByID(id)
	if err == sql.ErrNoRows {
		RespondDomainError(c, domain.NotFoundError{Resource: "route"})
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal query rute", err)
		return
	}
	c.JSON(http.StatusOK, rt)
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var payload services.RouteInput
	if !BindJSONOrError(c, &payload) {
		return
	}

	svc := services.RouteService{
		Routing:   getRoutingProvider(),
		RequestID: middleware.GetRequestID(c),
	}
	if svc.Routing == nil {
		RespondError(c, http.StatusServiceUnavailable, "routing provider belum dikonfigurasi", nil)
		return
	}

	rt, err := svc.Create(c.Request.Context(), payload)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rt)
}

type routeUpdatePayload struct {
	Name        string `json:"name" binding:"required"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// PUT /api/routes/:id
// Hanya metadata; geometry dan stops tidak diubah lewat endpoint ini.
func UpdateRoute(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload routeUpdatePayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	res, err := dbHandle().Exec(`
		UPDATE routes SET name = ?, origin = ?, destination = ? WHERE id = ?
	`, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Origin),
		strings.TrimSpace(payload.Destination), id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal update rute", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "rute tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rute berhasil diupdate"})
}

// DELETE /api/routes/:id
func DeleteRoute(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	svc := services.RouteService{RequestID: middleware.GetRequestID(c)}
	if err := svc.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rute berhasil dihapus"})
}
