package handlers

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
)

type userPayload struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	Password string `json:"password"`
}

// GET /api/users
func GetUsers(c *gin.Context) {
	rows, err := intconfig.DB.Query(`
		SELECT id, name, username, email, COALESCE(phone,''), role, status
		FROM users ORDER BY id DESC
	`)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal mengambil data user", err)
		return
	}
	defer rows.Close()

	list := []AuthUser{}
	for rows.Next() {
		var u AuthUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status); err != nil {
			RespondError(c, http.StatusInternalServerError, "gagal scan data user", err)
			return
		}
		list = append(list, u)
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/users/:id
func GetUserByID(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var u AuthUser
	err := intconfig.DB.QueryRow(`
		SELECT id, name, username, email, COALESCE(phone,''), role, status
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status)
	if err == sql.ErrNoRows {
		RespondError(c, http.StatusNotFound, "user tidak ditemukan", nil)
		return
	}
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal query user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// POST /api/users
func CreateUser(c *gin.Context) {
	var payload userPayload
	if !BindJSONOrError(c, &payload) {
		return
	}
	if strings.TrimSpace(payload.Password) == "" {
		RespondError(c, http.StatusBadRequest, "password wajib diisi", nil)
		return
	}
	role := strings.TrimSpace(payload.Role)
	if role == "" {
		role = "admin"
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = "active"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal hash password", err)
		return
	}

	res, err := intconfig.DB.Exec(`
		INSERT INTO users (name, username, email, phone, password_hash, role, status, created_at)
		VALUES (?, ?, ?, NULLIF(?,''), ?, ?, ?, NOW())
	`, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Username),
		strings.TrimSpace(payload.Email), strings.TrimSpace(payload.Phone), string(hash), role, status)
	if err != nil {
		if mysqlErrNumber(err) == mysqlDuplicateEntry {
			RespondError(c, http.StatusConflict, "Email atau username sudah terdaftar", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal menambah user", err)
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "user berhasil ditambahkan", "id": id})
}

// PUT /api/users/:id
func UpdateUser(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var payload userPayload
	if !BindJSONOrError(c, &payload) {
		return
	}

	args := []any{
		strings.TrimSpace(payload.Name),
		strings.TrimSpace(payload.Username),
		strings.TrimSpace(payload.Email),
		strings.TrimSpace(payload.Phone),
		strings.TrimSpace(payload.Role),
		strings.TrimSpace(payload.Status),
	}
	query := `
		UPDATE users
		SET name = ?, username = ?, email = ?, phone = NULLIF(?,''), role = ?, status = ?`
	if strings.TrimSpace(payload.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			RespondError(c, http.StatusInternalServerError, "gagal hash password", err)
			return
		}
		query += `, password_hash = ?`
		args = append(args, string(hash))
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := intconfig.DB.Exec(query, args...)
	if err != nil {
		if mysqlErrNumber(err) == mysqlDuplicateEntry {
			RespondError(c, http.StatusConflict, "Email atau username sudah terdaftar", nil)
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal update user", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "user tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user berhasil diupdate"})
}

// DELETE /api/users/:id
func DeleteUser(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := intconfig.DB.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal hapus user", err)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		RespondError(c, http.StatusNotFound, "user tidak ditemukan", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user berhasil dihapus"})
}
