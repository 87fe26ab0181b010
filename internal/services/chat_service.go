package services

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	intdb "github.com/natannielz/Ticket-Bus-sub000/internal/db"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/utils"
)

// ChatService relays support messages between guest sessions and operators.
// Plain store-and-poll; the UI polls ListBySession with a cursor.
type ChatService struct {
	ChatRepo  repositories.ChatRepo
	DB        *sql.DB
	RequestID string
}

var (
	chatTableMu    sync.Mutex
	chatTableReady bool
)

func (s ChatService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ChatService) chats() repositories.ChatRepo {
	if s.ChatRepo.DB != nil {
		return s.ChatRepo
	}
	return repositories.ChatRepo{DB: s.db()}
}

// ensureChatTable creates the table on first use. A failed create does not
// mark the table ready; the next call retries.
func (s ChatService) ensureChatTable() error {
	chatTableMu.Lock()
	defer chatTableMu.Unlock()

	if chatTableReady {
		return nil
	}

	db := s.db()
	if !intdb.HasTable(db, "chat_messages") {
		if _, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS chat_messages (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				session_key VARCHAR(64) NOT NULL,
				sender_role VARCHAR(16) NOT NULL,
				sender_name VARCHAR(100) NULL,
				body TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				KEY idx_session (session_key, id)
			)
		`); err != nil {
			return err
		}
	}
	chatTableReady = true
	return nil
}

func (s ChatService) Send(sessionKey, senderRole, senderName, body string) (models.ChatMessage, error) {
	var out models.ChatMessage

	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return out, domain.ValidationError{Field: "session_key", Msg: "wajib diisi"}
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return out, domain.ValidationError{Field: "body", Msg: "pesan kosong"}
	}
	switch senderRole {
	case "guest", "user", "admin":
	default:
		return out, domain.ValidationError{Field: "sender_role", Msg: "role harus guest/user/admin"}
	}

	if err := s.ensureChatTable(); err != nil {
		return out, domain.InternalError{Err: err}
	}

	out = models.ChatMessage{
		SessionKey: sessionKey,
		SenderRole: senderRole,
		SenderName: strings.TrimSpace(senderName),
		Body:       body,
	}
	id, err := s.chats().Insert(out)
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	out.ID = id

	utils.LogEvent(s.RequestID, "chat", "send", fmt.Sprintf("session=%s role=%s", sessionKey, senderRole))
	return out, nil
}

func (s ChatService) ListBySession(sessionKey string, sinceID int64) ([]models.ChatMessage, error) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		return nil, domain.ValidationError{Field: "session", Msg: "wajib diisi"}
	}
	if err := s.ensureChatTable(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	out, err := s.chats().ListBySession(sessionKey, sinceID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

func (s ChatService) ListSessions() ([]models.ChatSession, error) {
	if err := s.ensureChatTable(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	out, err := s.chats().ListSessions()
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}
