package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ResourceConflictError is returned by the schedule allocator when an armada,
// driver, or conductor is already committed to another live schedule on one of
// the requested days.
type ResourceConflictError struct {
	Resource   string // armada / driver / conductor
	ResourceID int64
	ScheduleID int64 // the live schedule holding the resource
	Days       []string
}

func (e ResourceConflictError) Error() string {
	return fmt.Sprintf("%s %d sudah terpakai di jadwal %d pada hari %s",
		e.Resource, e.ResourceID, e.ScheduleID, JoinDays(e.Days))
}

// InsufficientCapacityError is returned by the booking ledger when a request
// exceeds the seats still available for a (schedule, date) pair.
type InsufficientCapacityError struct {
	ScheduleID int64
	TripDate   string
	Requested  int
	Available  int
}

func (e InsufficientCapacityError) Error() string {
	return fmt.Sprintf("kursi tidak cukup untuk jadwal %d tanggal %s: diminta %d, tersisa %d",
		e.ScheduleID, e.TripDate, e.Requested, e.Available)
}

// DependencyConflictError blocks deletion of a resource still referenced by a
// live schedule.
type DependencyConflictError struct {
	Resource   string
	ResourceID int64
	Msg        string
}

func (e DependencyConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s %d masih dipakai jadwal aktif", e.Resource, e.ResourceID)
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsResourceConflict(err error) bool {
	var target ResourceConflictError
	return errors.As(err, &target)
}

func IsInsufficientCapacity(err error) bool {
	var target InsufficientCapacityError
	return errors.As(err, &target)
}

func IsDependencyConflict(err error) bool {
	var target DependencyConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
