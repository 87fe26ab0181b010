package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/routing"
)

type stubProvider struct {
	summary routing.RouteSummary
	err     error
	called  int
}

func (s *stubProvider) Route(ctx context.Context, points []models.LatLng) (routing.RouteSummary, error) {
	s.called++
	return s.summary, s.err
}

func TestCreateRouteUsesProviderDistance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	provider := &stubProvider{summary: routing.RouteSummary{
		Geometry:    []models.LatLng{{Lat: -6.2, Lng: 106.8}, {Lat: -6.9, Lng: 107.6}},
		DistanceKm:  150,
		DurationMin: 180,
	}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO routes").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("INSERT INTO route_stops").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO route_stops").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	svc := RouteService{RouteRepo: repositories.RouteRepo{DB: db}, Routing: provider, DB: db}
	rt, err := svc.Create(context.Background(), RouteInput{
		Name: "Jakarta - Bandung",
		Stops: []StopInput{
			{Name: "Terminal Jakarta", Lat: -6.2, Lng: 106.8},
			{Name: "Terminal Bandung", Lat: -6.9, Lng: 107.6},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if provider.called != 1 {
		t.Fatalf("provider harus dipanggil sekali, got %d", provider.called)
	}
	if rt.ID != 9 {
		t.Fatalf("id tidak terisi: %d", rt.ID)
	}
	if rt.DistanceKm != 150 {
		t.Fatalf("distance dari provider tidak dipakai: %v", rt.DistanceKm)
	}
	if rt.Origin != "Terminal Jakarta" || rt.Destination != "Terminal Bandung" {
		t.Fatalf("origin/destination fallback salah: %s / %s", rt.Origin, rt.Destination)
	}
	if rt.Stops[0].StopType != "terminal" || rt.Stops[0].Position != 0 {
		t.Fatalf("stop pertama salah: %+v", rt.Stops[0])
	}
	if rt.Stops[1].Position <= 0 {
		t.Fatalf("posisi stop kedua harus kumulatif: %+v", rt.Stops[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateRouteNeedsTwoStops(t *testing.T) {
	svc := RouteService{Routing: &stubProvider{}, DB: nil}
	_, err := svc.Create(context.Background(), RouteInput{
		Name:  "Pendek",
		Stops: []StopInput{{Name: "Satu", Lat: 0, Lng: 0}},
	})
	if err == nil {
		t.Fatalf("rute satu stop harus ditolak")
	}
}
