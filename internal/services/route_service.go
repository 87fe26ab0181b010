package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/routing"
	"github.com/natannielz/Ticket-Bus-sub000/internal/utils"
)

// RouteService builds catalog entries: the routing provider supplies geometry
// and total distance for the ordered stops, stop positions come from the
// cumulative great-circle distance between them.
type RouteService struct {
	RouteRepo repositories.RouteRepo
	Routing   routing.Provider
	DB        *sql.DB
	RequestID string
}

func (s RouteService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s RouteService) routes() repositories.RouteRepo {
	if s.RouteRepo.DB != nil {
		return s.RouteRepo
	}
	return repositories.RouteRepo{DB: s.db()}
}

type StopInput struct {
	Name     string  `json:"name"`
	StopType string  `json:"stopType"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	DwellMin int     `json:"dwellMin"`
	Fee      int64   `json:"fee"`
}

type RouteInput struct {
	Name        string      `json:"name"`
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Stops       []StopInput `json:"stops"`
}

func (s RouteService) Create(ctx context.Context, in RouteInput) (models.Route, error) {
	var out models.Route

	name := utils.NormalizeSpace(in.Name)
	if name == "" {
		return out, domain.ValidationError{Field: "name", Msg: "wajib diisi"}
	}
	if len(in.Stops) < 2 {
		return out, domain.ValidationError{Field: "stops", Msg: "minimal 2 pemberhentian"}
	}

	points := make([]models.LatLng, 0, len(in.Stops))
	for i, st := range in.Stops {
		if utils.NormalizeSpace(st.Name) == "" {
			return out, domain.ValidationError{Field: fmt.Sprintf("stops[%d].name", i), Msg: "wajib diisi"}
		}
		points = append(points, models.LatLng{Lat: st.Lat, Lng: st.Lng})
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	summary, err := s.Routing.Route(ctx, points)
	if err != nil {
		return out, domain.InternalError{Msg: "routing provider gagal", Err: err}
	}

	out = models.Route{
		Name:        name,
		Origin:      utils.NormalizeSpace(in.Origin),
		Destination: utils.NormalizeSpace(in.Destination),
		DistanceKm:  summary.DistanceKm,
		DurationMin: summary.DurationMin,
		Geometry:    summary.Geometry,
	}
	if out.Origin == "" {
		out.Origin = in.Stops[0].Name
	}
	if out.Destination == "" {
		out.Destination = in.Stops[len(in.Stops)-1].Name
	}

	pos := 0.0
	for i, st := range in.Stops {
		if i > 0 {
			prev := in.Stops[i-1]
			pos += haversineKm(prev.Lat, prev.Lng, st.Lat, st.Lng)
		}
		stopType := st.StopType
		if stopType == "" {
			stopType = "pickup"
			if i == 0 || i == len(in.Stops)-1 {
				stopType = "terminal"
			}
		}
		out.Stops = append(out.Stops, models.Stop{
			Name:     utils.NormalizeSpace(st.Name),
			StopType: stopType,
			Lat:      st.Lat,
			Lng:      st.Lng,
			Position: math.Round(pos*100) / 100,
			DwellMin: st.DwellMin,
			Fee:      st.Fee,
			Seq:      i,
		})
	}

	id, err := s.routes().Insert(out)
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	out.ID = id

	utils.LogEvent(s.RequestID, "route", "create",
		fmt.Sprintf("id=%d stops=%d distance_km=%.2f", id, len(out.Stops), out.DistanceKm))
	return out, nil
}

func (s RouteService) Delete(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	var n int
	if err := s.db().QueryRow(`SELECT COUNT(*) FROM schedules WHERE route_id = ?`, id).Scan(&n); err != nil {
		return domain.InternalError{Err: err}
	}
	if n > 0 {
		return domain.DependencyConflictError{Resource: "route", ResourceID: id,
			Msg: "rute masih dipakai jadwal, hapus jadwalnya dulu"}
	}
	ok, err := s.routes().Delete(id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "route"}
	}
	return nil
}

// haversine distance in km
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0088 // mean Earth radius km
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
