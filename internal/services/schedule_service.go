package services

import (
	"database/sql"
	"fmt"

	intconfig "github.com/natannielz/Ticket-Bus-sub000/internal/config"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/domain/models"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
	"github.com/natannielz/Ticket-Bus-sub000/internal/utils"
)

const allocatorLockKey = "schedules:allocate"

// ScheduleService is the allocator: it binds route, armada, and crew into an
// operating schedule, refuses double-booked resources, fills in the default
// fare, and cascades maintenance into schedule invalidation.
type ScheduleService struct {
	ScheduleRepo repositories.ScheduleRepo
	DB           *sql.DB
	RequestID    string
}

func (s ScheduleService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s ScheduleService) schedules() repositories.ScheduleRepo {
	if s.ScheduleRepo.DB != nil {
		return s.ScheduleRepo
	}
	return repositories.ScheduleRepo{DB: s.db()}
}

// ScheduleInput is the create/update payload after JSON binding. Price fields
// are pointers so "absent" can fall back to the computed fare.
type ScheduleInput struct {
	RouteID       int64
	ArmadaID      int64
	DriverID      *int64
	ConductorID   *int64
	Days          string
	DepartureTime string
	ArrivalTime   string
	Price         *int64
	PriceWeekend  *int64
	IsLive        *bool
}

type routeInfo struct {
	ID         int64
	DistanceKm float64
}

type armadaInfo struct {
	ID        int64
	Capacity  int
	RatePerKm float64
	Status    string
}

func (s ScheduleService) validate(in ScheduleInput) (domain.DaySet, error) {
	if in.RouteID <= 0 {
		return nil, domain.ValidationError{Field: "route_id", Msg: "id tidak valid"}
	}
	if in.ArmadaID <= 0 {
		return nil, domain.ValidationError{Field: "armada_id", Msg: "id tidak valid"}
	}
	if in.DriverID != nil && *in.DriverID <= 0 {
		return nil, domain.ValidationError{Field: "driver_id", Msg: "id tidak valid"}
	}
	if in.ConductorID != nil && *in.ConductorID <= 0 {
		return nil, domain.ValidationError{Field: "conductor_id", Msg: "id tidak valid"}
	}
	days, err := domain.ParseDays(in.Days)
	if err != nil {
		return nil, err
	}
	if _, err := utils.ParseClock(in.DepartureTime); err != nil {
		return nil, domain.ValidationError{Field: "departure_time", Msg: "format harus HH:MM"}
	}
	if _, err := utils.ParseClock(in.ArrivalTime); err != nil {
		return nil, domain.ValidationError{Field: "arrival_time", Msg: "format harus HH:MM"}
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, domain.ValidationError{Field: "price", Msg: "tidak boleh negatif"}
	}
	if in.PriceWeekend != nil && *in.PriceWeekend < 0 {
		return nil, domain.ValidationError{Field: "price_weekend", Msg: "tidak boleh negatif"}
	}
	return days, nil
}

func (s ScheduleService) routeTx(tx *sql.Tx, id int64) (routeInfo, error) {
	var r routeInfo
	err := tx.QueryRow(`SELECT id, distance_km FROM routes WHERE id = ?`, id).Scan(&r.ID, &r.DistanceKm)
	if err == sql.ErrNoRows {
		return r, domain.NotFoundError{Resource: "route", Err: err}
	}
	return r, err
}

func (s ScheduleService) armadaTx(tx *sql.Tx, id int64) (armadaInfo, error) {
	var a armadaInfo
	err := tx.QueryRow(`SELECT id, capacity, rate_per_km, status FROM armadas WHERE id = ?`, id).Scan(&a.ID, &a.Capacity, &a.RatePerKm, &a.Status)
	if err == sql.ErrNoRows {
		return a, domain.NotFoundError{Resource: "armada", Err: err}
	}
	return a, err
}

func (s ScheduleService) crewExistsTx(tx *sql.Tx, id int64, field string) error {
	var found int64
	err := tx.QueryRow(`SELECT id FROM crew_members WHERE id = ?`, id).Scan(&found)
	if err == sql.ErrNoRows {
		return domain.NotFoundError{Resource: field, Err: err}
	}
	return err
}

// checkConflicts enforces the allocator invariant: while live, the candidate's
// armada, driver, and conductor must not share an operating day with another
// live schedule using the same resource. Each dimension is tested on its own;
// sharing only the bus on a common day is still a conflict. First hit wins.
func (s ScheduleService) checkConflicts(tx *sql.Tx, in ScheduleInput, days domain.DaySet, excludeID int64) error {
	candidates, err := s.schedules().FindLiveSharingResources(tx, in.ArmadaID, in.DriverID, in.ConductorID, excludeID)
	if err != nil {
		return domain.InternalError{Err: err}
	}

	crewMatches := func(other models.Schedule, id int64) bool {
		return (other.DriverID != nil && *other.DriverID == id) ||
			(other.ConductorID != nil && *other.ConductorID == id)
	}

	for _, other := range candidates {
		otherDays, err := domain.ParseDays(other.Days)
		if err != nil {
			// baris lama dengan label rusak: anggap bentrok tidak terdeteksi
			// lebih buruk daripada error, jadi gagalkan saja
			return domain.InternalError{Msg: fmt.Sprintf("jadwal %d punya label hari rusak", other.ID), Err: err}
		}
		shared := days.Intersect(otherDays)
		if len(shared) == 0 {
			continue
		}
		if other.ArmadaID == in.ArmadaID {
			return domain.ResourceConflictError{Resource: "armada", ResourceID: in.ArmadaID, ScheduleID: other.ID, Days: shared}
		}
		if in.DriverID != nil && crewMatches(other, *in.DriverID) {
			return domain.ResourceConflictError{Resource: "driver", ResourceID: *in.DriverID, ScheduleID: other.ID, Days: shared}
		}
		if in.ConductorID != nil && crewMatches(other, *in.ConductorID) {
			return domain.ResourceConflictError{Resource: "conductor", ResourceID: *in.ConductorID, ScheduleID: other.ID, Days: shared}
		}
	}
	return nil
}

// Create runs the full allocation flow: validate, lock, conflict-check, price,
// insert — all in one transaction so two concurrent creations for the same
// resource and day cannot both pass the check.
func (s ScheduleService) Create(in ScheduleInput) (models.Schedule, error) {
	var out models.Schedule

	days, err := s.validate(in)
	if err != nil {
		return out, err
	}

	live := true
	if in.IsLive != nil {
		live = *in.IsLive
	}

	tx, err := s.db().Begin()
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := acquireNamedLock(tx, allocatorLockKey, 5); err != nil {
		return out, domain.InternalError{Msg: "gagal mengunci alokasi jadwal", Err: err}
	}
	defer releaseNamedLock(tx, allocatorLockKey)

	route, err := s.routeTx(tx, in.RouteID)
	if err != nil {
		return out, wrapInternal(err)
	}
	armada, err := s.armadaTx(tx, in.ArmadaID)
	if err != nil {
		return out, wrapInternal(err)
	}
	if in.DriverID != nil {
		if err := s.crewExistsTx(tx, *in.DriverID, "driver"); err != nil {
			return out, wrapInternal(err)
		}
	}
	if in.ConductorID != nil {
		if err := s.crewExistsTx(tx, *in.ConductorID, "conductor"); err != nil {
			return out, wrapInternal(err)
		}
	}

	if live {
		if armada.Status == models.ArmadaMaintenance {
			return out, domain.ValidationError{Field: "armada_id", Msg: "armada sedang maintenance, tidak bisa dijadwalkan live"}
		}
		if err := s.checkConflicts(tx, in, days, 0); err != nil {
			return out, err
		}
	}

	price, priceWeekend := resolvePrices(in, route, armada)

	out = models.Schedule{
		RouteID:       in.RouteID,
		ArmadaID:      in.ArmadaID,
		DriverID:      in.DriverID,
		ConductorID:   in.ConductorID,
		Days:          days.Canonical(),
		DepartureTime: in.DepartureTime,
		ArrivalTime:   in.ArrivalTime,
		Price:         price,
		PriceWeekend:  priceWeekend,
		IsLive:        live,
	}

	id, err := s.schedules().Insert(tx, out)
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	releaseNamedLock(tx, allocatorLockKey)
	if err := tx.Commit(); err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed = true

	out.ID = id
	utils.LogEvent(s.RequestID, "schedule", "create",
		fmt.Sprintf("id=%d armada=%d days=%s price=%d", id, out.ArmadaID, out.Days, out.Price))
	return out, nil
}

// Update re-runs the whole allocation flow against the stored schedule,
// excluding the schedule itself from the conflict set.
func (s ScheduleService) Update(id int64, in ScheduleInput) (models.Schedule, error) {
	var out models.Schedule
	if id <= 0 {
		return out, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}

	days, err := s.validate(in)
	if err != nil {
		return out, err
	}

	tx, err := s.db().Begin()
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := acquireNamedLock(tx, allocatorLockKey, 5); err != nil {
		return out, domain.InternalError{Msg: "gagal mengunci alokasi jadwal", Err: err}
	}
	defer releaseNamedLock(tx, allocatorLockKey)

	existing, err := s.schedules().GetByIDTx(tx, id)
	if err == sql.ErrNoRows {
		return out, domain.NotFoundError{Resource: "schedule", Err: err}
	}
	if err != nil {
		return out, domain.InternalError{Err: err}
	}

	route, err := s.routeTx(tx, in.RouteID)
	if err != nil {
		return out, wrapInternal(err)
	}
	armada, err := s.armadaTx(tx, in.ArmadaID)
	if err != nil {
		return out, wrapInternal(err)
	}
	if in.DriverID != nil {
		if err := s.crewExistsTx(tx, *in.DriverID, "driver"); err != nil {
			return out, wrapInternal(err)
		}
	}
	if in.ConductorID != nil {
		if err := s.crewExistsTx(tx, *in.ConductorID, "conductor"); err != nil {
			return out, wrapInternal(err)
		}
	}

	live := existing.IsLive
	if in.IsLive != nil {
		live = *in.IsLive
	}
	if live {
		if armada.Status == models.ArmadaMaintenance {
			return out, domain.ValidationError{Field: "armada_id", Msg: "armada sedang maintenance, tidak bisa dijadwalkan live"}
		}
		if err := s.checkConflicts(tx, in, days, id); err != nil {
			return out, err
		}
	}

	price, priceWeekend := resolvePrices(in, route, armada)

	out = existing
	out.RouteID = in.RouteID
	out.ArmadaID = in.ArmadaID
	out.DriverID = in.DriverID
	out.ConductorID = in.ConductorID
	out.Days = days.Canonical()
	out.DepartureTime = in.DepartureTime
	out.ArrivalTime = in.ArrivalTime
	out.Price = price
	out.PriceWeekend = priceWeekend
	out.IsLive = live

	if err := s.schedules().Update(tx, out); err != nil {
		return out, domain.InternalError{Err: err}
	}
	if live != existing.IsLive {
		if err := s.schedules().SetLive(tx, id, live); err != nil {
			return out, domain.InternalError{Err: err}
		}
	}
	releaseNamedLock(tx, allocatorLockKey)
	if err := tx.Commit(); err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed = true

	utils.LogEvent(s.RequestID, "schedule", "update", fmt.Sprintf("id=%d days=%s", id, out.Days))
	return out, nil
}

// ToggleLive flips visibility. Going live re-runs the conflict check first;
// going dark never needs one. needs_reassignment stays as-is either way.
func (s ScheduleService) ToggleLive(id int64) (models.Schedule, error) {
	var out models.Schedule
	if id <= 0 {
		return out, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := acquireNamedLock(tx, allocatorLockKey, 5); err != nil {
		return out, domain.InternalError{Msg: "gagal mengunci alokasi jadwal", Err: err}
	}
	defer releaseNamedLock(tx, allocatorLockKey)

	existing, err := s.schedules().GetByIDTx(tx, id)
	if err == sql.ErrNoRows {
		return out, domain.NotFoundError{Resource: "schedule", Err: err}
	}
	if err != nil {
		return out, domain.InternalError{Err: err}
	}

	target := !existing.IsLive
	if target {
		days, err := domain.ParseDays(existing.Days)
		if err != nil {
			return out, domain.InternalError{Err: err}
		}
		in := ScheduleInput{
			ArmadaID:    existing.ArmadaID,
			DriverID:    existing.DriverID,
			ConductorID: existing.ConductorID,
		}
		if err := s.checkConflicts(tx, in, days, id); err != nil {
			return out, err
		}
	}

	if err := s.schedules().SetLive(tx, id, target); err != nil {
		return out, domain.InternalError{Err: err}
	}
	releaseNamedLock(tx, allocatorLockKey)
	if err := tx.Commit(); err != nil {
		return out, domain.InternalError{Err: err}
	}
	committed = true

	existing.IsLive = target
	utils.LogEvent(s.RequestID, "schedule", "toggle_live", fmt.Sprintf("id=%d live=%v", id, target))
	return existing, nil
}

// SetArmadaStatus writes the armada status and, for maintenance, invalidates
// every schedule on that armada in the same transaction. A crash between the
// two writes must leave both or neither.
func (s ScheduleService) SetArmadaStatus(armadaID int64, status string) (int64, error) {
	if armadaID <= 0 {
		return 0, domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	if !models.ValidArmadaStatus(status) {
		return 0, domain.ValidationError{Field: "status", Msg: "status harus available/on_duty/maintenance"}
	}

	tx, err := s.db().Begin()
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(`UPDATE armadas SET status = ?, updated_at = NOW() WHERE id = ?`, status, armadaID)
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		// baris mungkin sudah berstatus sama; pastikan armada memang ada
		var found int64
		if err := tx.QueryRow(`SELECT id FROM armadas WHERE id = ?`, armadaID).Scan(&found); err != nil {
			return 0, domain.NotFoundError{Resource: "armada", Err: err}
		}
	}

	var invalidated int64
	if status == models.ArmadaMaintenance {
		invalidated, err = s.schedules().InvalidateByArmada(tx, armadaID)
		if err != nil {
			return 0, domain.InternalError{Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.InternalError{Err: err}
	}
	committed = true

	utils.LogEvent(s.RequestID, "fleet", "set_status",
		fmt.Sprintf("armada=%d status=%s invalidated=%d", armadaID, status, invalidated))
	return invalidated, nil
}

// Delete removes a schedule that is not live; live schedules must be toggled
// off first so the storefront never loses a bookable row mid-flight.
func (s ScheduleService) Delete(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "id tidak valid"}
	}
	existing, err := s.schedules().GetByID(id)
	if err == sql.ErrNoRows {
		return domain.NotFoundError{Resource: "schedule", Err: err}
	}
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if existing.IsLive {
		return domain.DependencyConflictError{Resource: "schedule", ResourceID: id,
			Msg: "jadwal masih live, nonaktifkan dulu sebelum dihapus"}
	}
	ok, err := s.schedules().Delete(id)
	if err != nil {
		return domain.InternalError{Err: err}
	}
	if !ok {
		return domain.NotFoundError{Resource: "schedule"}
	}
	return nil
}

func resolvePrices(in ScheduleInput, route routeInfo, armada armadaInfo) (int64, int64) {
	var price int64
	if in.Price != nil {
		price = *in.Price
	} else {
		price = domain.DefaultPrice(route.DistanceKm, armada.RatePerKm)
	}
	var priceWeekend int64
	if in.PriceWeekend != nil {
		priceWeekend = *in.PriceWeekend
	} else {
		priceWeekend = domain.DefaultWeekendPrice(price)
	}
	return price, priceWeekend
}

// wrapInternal keeps domain errors as-is and wraps everything else.
func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) || domain.IsValidation(err) ||
		domain.IsResourceConflict(err) || domain.IsInsufficientCapacity(err) ||
		domain.IsDependencyConflict(err) {
		return err
	}
	return domain.InternalError{Err: err}
}
