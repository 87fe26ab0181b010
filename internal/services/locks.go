package services

import (
	"database/sql"
	"errors"
)

// MySQL named locks serialize check-then-write flows that span more than one
// row lock (schedule allocation, booking capacity).
//
// Named locks belong to the session, not the transaction: commit does not
// release them, and tx.Exec after commit is ErrTxDone and never reaches the
// server. Callers must release explicitly before Commit; the deferred release
// only covers the error paths (after commit it is a no-op).
func acquireNamedLock(tx *sql.Tx, key string, timeoutSec int) error {
	if tx == nil || key == "" {
		return errors.New("acquireNamedLock: invalid args")
	}
	var got sql.NullInt64
	if err := tx.QueryRow(`SELECT GET_LOCK(?, ?)`, key, timeoutSec).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return errors.New("cannot acquire lock")
	}
	return nil
}

func releaseNamedLock(tx *sql.Tx, key string) {
	if tx == nil || key == "" {
		return
	}
	_, _ = tx.Exec(`SELECT RELEASE_LOCK(?)`, key)
}
