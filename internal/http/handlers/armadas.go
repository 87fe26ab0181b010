package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/http/middleware"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/services"
)

type armadaPayload struct {
	Code        string  `json:"code" binding:"required"`
	PlateNumber string  `json:"plateNumber" binding:"required"`
	Capacity    int     `json:"capacity" binding:"required"`
	RatePerKm   float64 `json:"ratePerKm"`
	Status      string  `json:"status"`
}

// GET /api/armadas?q=BUS
func GetArmadas(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))

	query := `
		SELECT id, code, plate_number, capacity, rate_per_km, status
		FROM armadas
	`
	args := []any{}
	if q != "" {
		query += ` WHERE (code LIKE ? OR plate_number LIKE ?)`
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	query += ` ORDER BY id DESC`

	rows, err := intconfig.DB.Query(query, args...)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal mengambil data armada", err)
		return
	}
	defer rows.Close()

	list := []models.Armada{}
	for rows.Next() {
		var a models.Armada
		if err := rows.Scan(&a.ID, &a.Code, &a.PlateNumber, &a.Capacity, &a.RatePerKm, &a.Status); err != nil {
			RespondError(c, http.StatusInternalServerError, "gagal scan data armada", err)
			return
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		RespondError(c, http.StatusInternalServerError, "error iterasi rows", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/armadas
func CreateArmada(c *gin.Context) {
	var payload armadaPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	if payload.Capacity <= 0 {
		RespondError(c, http.StatusBadRequest, "capacity harus lebih dari 0", nil)
		return
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = models.ArmadaAvailable
	}
	if !models.ValidArmadaStatus(status) {
		RespondError(c, http.StatusBadRequest, "status harus available/on_duty/maintenance", nil)
		return
	}

	res, err := intconfig.DB.Exec(`
		INSERT INTO armadas (code, plate_number, capacity, rate_per_km, status, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`, strings.TrimSpace(payload.Code), strings.TrimSpace(payload.PlateNumber),
		payload.Capacity, payload.RatePerKm, status)
	if err != nil {
		if mysqlErrNumber(err) == mysqlDuplicateEntry {
			RespondError(c, http.StatusConflict, "Kode atau plat armada sudah terdaftar (duplikat)", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal menambah armada", err)
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "armada berhasil ditambahkan", "id": id})
}

// PUT /api/armadas/:id
func UpdateArmada(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload armadaPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	if payload.Capacity <= 0 {
		RespondError(c, http.StatusBadRequest, "capacity harus lebih dari 0", nil)
		return
	}

	res, err := intconfig.DB.Exec(`
		UPDATE armadas
		SET code = ?, plate_number = ?, capacity = ?, rate_per_km = ?, updated_at = NOW()
		WHERE id = ?
	`, strings.TrimSpace(payload.Code), strings.TrimSpace(payload.PlateNumber),
		payload.Capacity, payload.RatePerKm, id)
	if err != nil {
		if mysqlErrNumber(err) == mysqlDuplicateEntry {
			RespondError(c, http.StatusConflict, "Kode atau plat armada sudah terdaftar (duplikat)", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal update armada", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "armada tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "armada berhasil diupdate"})
}

type armadaStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

// PUT /api/armadas/:id/status
// Status maintenance menonaktifkan semua jadwal armada ini dalam satu
// transaksi (is_live=0, needs_reassignment=1).
func SetArmadaStatus(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload armadaStatusPayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	svc := services.ScheduleService{RequestID: middleware.GetRequestID(c)}
	invalidated, err := svc.SetArmadaStatus(id, strings.TrimSpace(payload.Status))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":               "status armada berhasil diupdate",
		"schedules_invalidated": invalidated,
	})
}

// DELETE /api/armadas/:id
func DeleteArmada(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	repo := repositories.ScheduleRepo{DB: dbHandle()}
	liveCount, err := repo.CountLiveByArmada(id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal cek jadwal armada", err)
		return
	}
	if liveCount > 0 {
		RespondDomainError(c, domain.DependencyConflictError{Resource: "armada", ResourceID: id})
		return
	}

	res, err := intconfig.DB.Exec(`DELETE FROM armadas WHERE id = ?`, id)
	if err != nil {
		if mysqlErrNumber(err) == mysqlRowIsReferenced {
			RespondDomainError(c, domain.DependencyConflictError{Resource: "armada", ResourceID: id})
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal hapus armada", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "armada tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "armada berhasil dihapus"})
}
