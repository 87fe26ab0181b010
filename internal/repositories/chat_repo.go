package repositories

import (
	"database/sql"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
)

type ChatRepo struct {
	DB *sql.DB
}

func (r ChatRepo) Insert(m models.ChatMessage) (int64, error) {
	res, err := r.DB.Exec(`
		INSERT INTO chat_messages (session_key, sender_role, sender_name, body, created_at)
		VALUES (?, ?, NULLIF(?,''), ?, NOW())
	`, m.SessionKey, m.SenderRole, m.SenderName, m.Body)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListBySession returns messages in insertion order, optionally only those
// after sinceID (polling cursor).
func (r ChatRepo) ListBySession(sessionKey string, sinceID int64) ([]models.ChatMessage, error) {
	rows, err := r.DB.Query(`
		SELECT id, session_key, sender_role, COALESCE(sender_name,''), body, created_at
		FROM chat_messages
		WHERE session_key = ? AND id > ?
		ORDER BY id
	`, sessionKey, sinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionKey, &m.SenderRole, &m.SenderName, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListSessions summarizes sessions for the operator console, newest first.
func (r ChatRepo) ListSessions() ([]models.ChatSession, error) {
	rows, err := r.DB.Query(`
		SELECT m.session_key, m.sender_role, m.body, t.cnt, m.created_at
		FROM chat_messages m
		JOIN (
			SELECT session_key, MAX(id) AS max_id, COUNT(*) AS cnt
			FROM chat_messages GROUP BY session_key
		) t ON t.session_key = m.session_key AND t.max_id = m.id
		ORDER BY m.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ChatSession{}
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.SessionKey, &s.LastSender, &s.LastBody, &s.MessageCount, &s.LastAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
