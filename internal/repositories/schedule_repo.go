package repositories

import (
	"database/sql"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
)

// ScheduleRepo wraps DB access for schedules. Conflict-sensitive reads take a
// *sql.Tx so the allocator can keep check and insert in one transaction.
type ScheduleRepo struct {
	DB *sql.DB
}

const scheduleColumns = `
	id, route_id, armada_id, driver_id, conductor_id, days,
	departure_time, arrival_time, price, price_weekend,
	is_live, needs_reassignment, seats_booked
`

func scanSchedule(row interface{ Scan(...any) error }) (models.Schedule, error) {
	var (
		s         models.Schedule
		driver    sql.NullInt64
		conductor sql.NullInt64
	)
	err := row.Scan(
		&s.ID, &s.RouteID, &s.ArmadaID, &driver, &conductor, &s.Days,
		&s.DepartureTime, &s.ArrivalTime, &s.Price, &s.PriceWeekend,
		&s.IsLive, &s.NeedsReassignment, &s.SeatsBooked,
	)
	if err != nil {
		return s, err
	}
	if driver.Valid {
		v := driver.Int64
		s.DriverID = &v
	}
	if conductor.Valid {
		v := conductor.Int64
		s.ConductorID = &v
	}
	return s, nil
}

func (r ScheduleRepo) GetByID(id int64) (models.Schedule, error) {
	row := r.DB.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	return scanSchedule(row)
}

// GetByIDTx reads the schedule row inside tx with a row lock, serializing
// concurrent writers on the same schedule.
func (r ScheduleRepo) GetByIDTx(tx *sql.Tx, id int64) (models.Schedule, error) {
	row := tx.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ? FOR UPDATE`, id)
	return scanSchedule(row)
}

// FindLiveSharingResources returns every live schedule referencing any of the
// candidate's non-null resources, excluding excludeID (0 means no exclusion).
// Day-set intersection is the caller's job.
func (r ScheduleRepo) FindLiveSharingResources(tx *sql.Tx, armadaID int64, driverID, conductorID *int64, excludeID int64) ([]models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE is_live = 1 AND id <> ? AND (armada_id = ?`
	args := []any{excludeID, armadaID}
	if driverID != nil {
		query += ` OR driver_id = ? OR conductor_id = ?`
		args = append(args, *driverID, *driverID)
	}
	if conductorID != nil {
		query += ` OR driver_id = ? OR conductor_id = ?`
		args = append(args, *conductorID, *conductorID)
	}
	query += `) ORDER BY id`

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r ScheduleRepo) Insert(tx *sql.Tx, s models.Schedule) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO schedules
			(route_id, armada_id, driver_id, conductor_id, days,
			 departure_time, arrival_time, price, price_weekend,
			 is_live, needs_reassignment, seats_booked, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, NOW())
	`, s.RouteID, s.ArmadaID, s.DriverID, s.ConductorID, s.Days,
		s.DepartureTime, s.ArrivalTime, s.Price, s.PriceWeekend, s.IsLive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r ScheduleRepo) Update(tx *sql.Tx, s models.Schedule) error {
	res, err := tx.Exec(`
		UPDATE schedules
		SET route_id = ?, armada_id = ?, driver_id = ?, conductor_id = ?, days = ?,
		    departure_time = ?, arrival_time = ?, price = ?, price_weekend = ?,
		    updated_at = NOW()
		WHERE id = ?
	`, s.RouteID, s.ArmadaID, s.DriverID, s.ConductorID, s.Days,
		s.DepartureTime, s.ArrivalTime, s.Price, s.PriceWeekend, s.ID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r ScheduleRepo) SetLive(tx *sql.Tx, id int64, live bool) error {
	res, err := tx.Exec(`UPDATE schedules SET is_live = ?, updated_at = NOW() WHERE id = ?`, live, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r ScheduleRepo) Delete(id int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (r ScheduleRepo) List() ([]models.Schedule, error) {
	rows, err := r.DB.Query(`SELECT ` + scheduleColumns + ` FROM schedules ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListPublic returns live schedules joined with route and armada data for the
// storefront. Availability and effective price per date are filled in by the
// service.
func (r ScheduleRepo) ListPublic() ([]models.PublicSchedule, error) {
	rows, err := r.DB.Query(`
		SELECT s.id, s.route_id, s.armada_id, s.days,
		       s.departure_time, s.arrival_time, s.price, s.price_weekend,
		       s.seats_booked,
		       r.name, r.origin, r.destination,
		       a.code, a.capacity
		FROM schedules s
		JOIN routes r ON r.id = s.route_id
		JOIN armadas a ON a.id = s.armada_id
		WHERE s.is_live = 1
		ORDER BY s.departure_time, s.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.PublicSchedule{}
	for rows.Next() {
		var p models.PublicSchedule
		if err := rows.Scan(
			&p.ID, &p.RouteID, &p.ArmadaID, &p.Days,
			&p.DepartureTime, &p.ArrivalTime, &p.Price, &p.PriceWeekend,
			&p.SeatsBooked,
			&p.RouteName, &p.Origin, &p.Destination,
			&p.ArmadaCode, &p.Capacity,
		); err != nil {
			return nil, err
		}
		p.IsLive = true
		out = append(out, p)
	}
	return out, rows.Err()
}

// InvalidateByArmada flips every schedule on the armada out of service; runs
// inside the maintenance-cascade transaction.
func (r ScheduleRepo) InvalidateByArmada(tx *sql.Tx, armadaID int64) (int64, error) {
	res, err := tx.Exec(`
		UPDATE schedules
		SET is_live = 0, needs_reassignment = 1, updated_at = NOW()
		WHERE armada_id = ?
	`, armadaID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountLiveByArmada backs the fleet dependency check before deletion.
func (r ScheduleRepo) CountLiveByArmada(armadaID int64) (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM schedules WHERE is_live = 1 AND armada_id = ?`, armadaID).Scan(&n)
	return n, err
}

// CountLiveByCrew backs the crew dependency check before deletion.
func (r ScheduleRepo) CountLiveByCrew(crewID int64) (int, error) {
	var n int
	err := r.DB.QueryRow(`
		SELECT COUNT(*) FROM schedules
		WHERE is_live = 1 AND (driver_id = ? OR conductor_id = ?)
	`, crewID, crewID).Scan(&n)
	return n, err
}
