package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/natannielz/Ticket-Bus-sub000/internal/domain"
	"github.com/natannielz/Ticket-Bus-sub000/internal/repositories"
)

func asResourceConflict(err error, target *domain.ResourceConflictError) bool {
	return errors.As(err, target)
}

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "route_id", "armada_id", "driver_id", "conductor_id", "days",
		"departure_time", "arrival_time", "price", "price_weekend",
		"is_live", "needs_reassignment", "seats_booked",
	})
}

func expectAllocatorLock(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"l"}).AddRow(1))
}

func expectAllocatorUnlock(mock sqlmock.Sqlmock) {
	mock.ExpectExec("RELEASE_LOCK").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestCreateScheduleComputesDefaultPrice(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows())
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(42, 1))
	expectAllocatorUnlock(mock)
	mock.ExpectCommit()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	out, err := svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Monday,Friday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.ID != 42 {
		t.Fatalf("id tidak terisi, got %d", out.ID)
	}
	if out.Price != 3000 {
		t.Fatalf("price default salah: got %d want 3000", out.Price)
	}
	if out.PriceWeekend != 3600 {
		t.Fatalf("price weekend default salah: got %d want 3600", out.PriceWeekend)
	}
	if out.Days != "Monday,Friday" {
		t.Fatalf("days tidak dinormalisasi: %q", out.Days)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

// Named lock milik sesi MySQL, bukan transaksi: kalau tidak dilepas sebelum
// commit, koneksi kembali ke pool sambil memegang kunci dan alokasi berikutnya
// macet di GET_LOCK.
func TestCreateScheduleReleasesLockBeforeCommit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows())
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(45, 1))
	// urutan ketat: RELEASE_LOCK harus sampai ke driver sebelum commit
	expectAllocatorUnlock(mock)
	mock.ExpectCommit()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	if _, err := svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Wednesday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
	}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("lock tidak dilepas sebelum commit: %v", err)
	}
}

func TestCreateScheduleExplicitPriceWins(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows())
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(43, 1))
	expectAllocatorUnlock(mock)
	mock.ExpectCommit()

	price := int64(5000)
	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	out, err := svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Tuesday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
		Price:         &price,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Price != 5000 {
		t.Fatalf("price eksplisit tertimpa: got %d", out.Price)
	}
	if out.PriceWeekend != 6000 {
		t.Fatalf("weekend fallback dari harga eksplisit salah: got %d want 6000", out.PriceWeekend)
	}
}

func TestCreateScheduleArmadaDayConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	// jadwal A: bus 7, Monday+Friday, live
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows().
			AddRow(11, 1, 7, nil, nil, "Monday,Friday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectRollback()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Friday",
		DepartureTime: "13:00",
		ArrivalTime:   "17:00",
	})
	if !domain.IsResourceConflict(err) {
		t.Fatalf("expected ResourceConflict, got %v", err)
	}
	var rc domain.ResourceConflictError
	if !asResourceConflict(err, &rc) {
		t.Fatalf("cannot unwrap conflict: %v", err)
	}
	if rc.Resource != "armada" || rc.ScheduleID != 11 {
		t.Fatalf("conflict detail salah: %+v", rc)
	}
	if len(rc.Days) != 1 || rc.Days[0] != "Friday" {
		t.Fatalf("hari bentrok salah: %v", rc.Days)
	}
}

func TestCreateScheduleDriverConflictIndependentOfArmada(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	driver := int64(5)

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(8, 40, 20.0, "available"))
	mock.ExpectQuery("FROM crew_members").WithArgs(driver).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	// bus lain (9) tapi driver sama, hari beririsan
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows().
			AddRow(12, 1, 9, driver, nil, "Friday,Saturday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectRollback()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      8,
		DriverID:      &driver,
		Days:          "Saturday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
	})
	var rc domain.ResourceConflictError
	if !asResourceConflict(err, &rc) {
		t.Fatalf("expected ResourceConflict, got %v", err)
	}
	if rc.Resource != "driver" || rc.ResourceID != driver || rc.ScheduleID != 12 {
		t.Fatalf("conflict detail salah: %+v", rc)
	}
}

func TestCreateScheduleDisjointDaysPass(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows().
			AddRow(11, 1, 7, nil, nil, "Monday,Wednesday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectExec("INSERT INTO schedules").
		WillReturnResult(sqlmock.NewResult(44, 1))
	expectAllocatorUnlock(mock)
	mock.ExpectCommit()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Friday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
	})
	if err != nil {
		t.Fatalf("hari disjoint seharusnya lolos, got %v", err)
	}
}

func TestSetArmadaStatusMaintenanceCascades(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE armadas SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	invalidated, err := svc.SetArmadaStatus(7, "maintenance")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if invalidated != 3 {
		t.Fatalf("jumlah jadwal dinonaktifkan salah: got %d want 3", invalidated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetArmadaStatusAvailableNoCascade(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE armadas SET status").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	invalidated, err := svc.SetArmadaStatus(7, "available")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if invalidated != 0 {
		t.Fatalf("tidak boleh ada jadwal dinonaktifkan, got %d", invalidated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestToggleLiveActivationRerunsConflictCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	// jadwal 20 sedang nonaktif, bus 7, Friday
	mock.ExpectQuery("FROM schedules WHERE id = \\? FOR UPDATE").
		WillReturnRows(scheduleRows().
			AddRow(20, 1, 7, nil, nil, "Friday", "08:00", "12:00", 3000, 3600, false, true, 0))
	// jadwal live lain memakai bus 7 di hari yang sama
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows().
			AddRow(11, 1, 7, nil, nil, "Monday,Friday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectRollback()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.ToggleLive(20)
	if !domain.IsResourceConflict(err) {
		t.Fatalf("aktivasi jadwal bentrok harus ditolak, got %v", err)
	}
}

func TestUpdateScheduleExcludesSelfFromConflictCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM schedules WHERE id = \\? FOR UPDATE").
		WillReturnRows(scheduleRows().
			AddRow(11, 1, 7, nil, nil, "Monday,Friday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	// excludeID = 11: jadwal yang sedang diubah tidak boleh bentrok dengan
	// dirinya sendiri
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WithArgs(int64(11), int64(7)).
		WillReturnRows(scheduleRows())
	mock.ExpectExec("UPDATE schedules").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectAllocatorUnlock(mock)
	mock.ExpectCommit()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	out, err := svc.Update(11, ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Monday,Friday",
		DepartureTime: "09:00",
		ArrivalTime:   "13:00",
	})
	if err != nil {
		t.Fatalf("update dengan hari sendiri harus lolos, got %v", err)
	}
	if out.DepartureTime != "09:00" {
		t.Fatalf("jam berangkat tidak terubah: %s", out.DepartureTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateScheduleConflictAgainstOtherSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM schedules WHERE id = \\? FOR UPDATE").
		WillReturnRows(scheduleRows().
			AddRow(11, 1, 7, nil, nil, "Monday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "available"))
	// jadwal 12 live memakai bus 7 hari Jumat
	mock.ExpectQuery("FROM schedules WHERE is_live = 1").
		WillReturnRows(scheduleRows().
			AddRow(12, 1, 7, nil, nil, "Friday,Saturday", "08:00", "12:00", 3000, 3600, true, false, 0))
	mock.ExpectRollback()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.Update(11, ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Friday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
	})
	var rc domain.ResourceConflictError
	if !asResourceConflict(err, &rc) {
		t.Fatalf("update ke hari bentrok harus ditolak, got %v", err)
	}
	if rc.Resource != "armada" || rc.ScheduleID != 12 {
		t.Fatalf("conflict detail salah: %+v", rc)
	}
}

func TestCreateScheduleRejectsMaintenanceArmada(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	expectAllocatorLock(mock)
	mock.ExpectQuery("FROM routes").
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance_km"}).AddRow(1, 150.0))
	mock.ExpectQuery("FROM armadas").
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "rate_per_km", "status"}).
			AddRow(7, 40, 20.0, "maintenance"))
	mock.ExpectRollback()

	svc := ScheduleService{ScheduleRepo: repositories.ScheduleRepo{DB: db}, DB: db}
	_, err = svc.Create(ScheduleInput{
		RouteID:       1,
		ArmadaID:      7,
		Days:          "Monday",
		DepartureTime: "08:00",
		ArrivalTime:   "12:00",
	})
	if !domain.IsValidation(err) {
		t.Fatalf("armada maintenance tidak boleh dijadwalkan live, got %v", err)
	}
}
