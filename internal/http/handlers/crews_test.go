package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
)

func TestDeleteCrewBlockedByLiveSchedule(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	prev := intconfig.DB
	intconfig.DB = db
	defer func() { intconfig.DB = prev }()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schedules").
		WithArgs(int64(5), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/crews/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	DeleteCrew(c)

	if w.Code != http.StatusConflict {
		t.Fatalf("kru dengan jadwal live harus 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "dependency_conflict") {
		t.Fatalf("body tanpa kode dependency_conflict: %s", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteCrewWithoutLiveScheduleSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	prev := intconfig.DB
	intconfig.DB = db
	defer func() { intconfig.DB = prev }()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM schedules").
		WithArgs(int64(5), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("DELETE FROM crew_members").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/crews/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	DeleteCrew(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
