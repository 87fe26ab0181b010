package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
)

type RouteRepo struct {
	DB *sql.DB
}

func (r RouteRepo) List() ([]models.Route, error) {
	rows, err := r.DB.Query(`
		SELECT id, name, origin, destination, distance_km, duration_min
		FROM routes ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Origin, &rt.Destination, &rt.DistanceKm, &rt.DurationMin); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// GetByID loads the route with geometry and its stops in stored order.
func (r RouteRepo) GetByID(id int64) (models.Route, error) {
	var (
		rt      models.Route
		geomRaw sql.NullString
	)
	err := r.DB.QueryRow(`
		SELECT id, name, origin, destination, distance_km, duration_min, geometry
		FROM routes WHERE id = ?
	`, id).Scan(&rt.ID, &rt.Name, &rt.Origin, &rt.Destination, &rt.DistanceKm, &rt.DurationMin, &geomRaw)
	if err != nil {
		return rt, err
	}
	if geomRaw.Valid && geomRaw.String != "" {
		// geometry rusak tidak boleh mematikan endpoint; cukup kosong
		_ = json.Unmarshal([]byte(geomRaw.String), &rt.Geometry)
	}

	rows, err := r.DB.Query(`
		SELECT id, route_id, name, stop_type, lat, lng, position, dwell_min, fee, seq
		FROM route_stops WHERE route_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return rt, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Stop
		if err := rows.Scan(&s.ID, &s.RouteID, &s.Name, &s.StopType, &s.Lat, &s.Lng, &s.Position, &s.DwellMin, &s.Fee, &s.Seq); err != nil {
			return rt, err
		}
		rt.Stops = append(rt.Stops, s)
	}
	return rt, rows.Err()
}

// Insert writes the route and its stops in one transaction.
func (r RouteRepo) Insert(rt models.Route) (int64, error) {
	geomJSON, err := json.Marshal(rt.Geometry)
	if err != nil {
		return 0, err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(`
		INSERT INTO routes (name, origin, destination, distance_km, duration_min, geometry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, rt.Name, rt.Origin, rt.Destination, rt.DistanceKm, rt.DurationMin, string(geomJSON))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, s := range rt.Stops {
		if _, err := tx.Exec(`
			INSERT INTO route_stops (route_id, name, stop_type, lat, lng, position, dwell_min, fee, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, s.Name, s.StopType, s.Lat, s.Lng, s.Position, s.DwellMin, s.Fee, i); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return id, nil
}

func (r RouteRepo) Delete(id int64) (bool, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`DELETE FROM route_stops WHERE route_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.Exec(`DELETE FROM routes WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return affected > 0, nil
}
