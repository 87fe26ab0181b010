package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
)

type crewPayload struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"required"`
	Status   string `json:"status"`
	ArmadaID *int64 `json:"armadaId"`
}

// GET /api/crews?role=driver
func GetCrews(c *gin.Context) {
	role := strings.TrimSpace(c.Query("role"))

	query := `
		SELECT id, name, COALESCE(phone,''), role, status, armada_id
		FROM crew_members
	`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, strings.ToLower(role))
	}
	query += ` ORDER BY id DESC`

	rows, err := intconfig.DB.Query(query, args...)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal mengambil data kru", err)
		return
	}
	defer rows.Close()

	list := []models.CrewMember{}
	for rows.Next() {
		var (
			m      models.CrewMember
			armada sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone, &m.Role, &m.Status, &armada); err != nil {
			RespondError(c, http.StatusInternalServerError, "gagal scan data kru", err)
			return
		}
		if armada.Valid {
			v := armada.Int64
			m.ArmadaID = &v
		}
		list = append(list, m)
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/crews
func CreateCrew(c *gin.Context) {
	var payload crewPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	role := strings.ToLower(strings.TrimSpace(payload.Role))
	if !models.ValidCrewRole(role) {
		RespondError(c, http.StatusBadRequest, "role harus driver/conductor", nil)
		return
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status == "" {
		status = models.CrewActive
	}
	if !models.ValidCrewStatus(status) {
		RespondError(c, http.StatusBadRequest, "status harus active/inactive", nil)
		return
	}

	res, err := intconfig.DB.Exec(`
		INSERT INTO crew_members (name, phone, role, status, armada_id, created_at)
		VALUES (?, NULLIF(?,''), ?, ?, ?, NOW())
	`, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Phone), role, status, payload.ArmadaID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal menambah kru", err)
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "kru berhasil ditambahkan", "id": id})
}

// PUT /api/crews/:id
func UpdateCrew(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload crewPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	role := strings.ToLower(strings.TrimSpace(payload.Role))
	if !models.ValidCrewRole(role) {
		RespondError(c, http.StatusBadRequest, "role harus driver/conductor", nil)
		return
	}
	status := strings.ToLower(strings.TrimSpace(payload.Status))
	if status == "" {
		status = models.CrewActive
	}
	if !models.ValidCrewStatus(status) {
		RespondError(c, http.StatusBadRequest, "status harus active/inactive", nil)
		return
	}

	res, err := intconfig.DB.Exec(`
		UPDATE crew_members
		SET name = ?, phone = NULLIF(?,''), role = ?, status = ?, armada_id = ?, updated_at = NOW()
		WHERE id = ?
	`, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Phone), role, status, payload.ArmadaID, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal update kru", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "kru tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "kru berhasil diupdate"})
}

// DELETE /api/crews/:id
// Ditolak selama kru masih dipakai jadwal live.
func DeleteCrew(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	repo := repositories.ScheduleRepo{DB: dbHandle()}
	liveCount, err := repo.CountLiveByCrew(id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal cek jadwal kru", err)
		return
	}
	if liveCount > 0 {
		RespondDomainError(c, domain.DependencyConflictError{Resource: "crew", ResourceID: id})
		return
	}

	res, err := intconfig.DB.Exec(`DELETE FROM crew_members WHERE id = ?`, id)
	if err != nil {
		if mysqlErrNumber(err) == mysqlRowIsReferenced {
			RespondDomainError(c, domain.DependencyConflictError{Resource: "crew", ResourceID: id})
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal hapus kru", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "kru tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "kru berhasil dihapus"})
}
