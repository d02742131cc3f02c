// Package storagetest opens throwaway sqlite databases carrying the
// application schema, so storages and services can be tested without a
// running postgres.
package storagetest

import (
	"database/sql"
	_ "embed"
	"fmt"
	"github.com/burenotti/hoops_backend/internal/adapter/storage"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
	"path/filepath"
	"testing"
)

//go:embed schema.sql
var schema string

// Open creates a fresh database file under t.TempDir. A file is used instead
// of :memory: because every pooled connection would get its own memory db.
func Open(t testing.TB) *storage.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hoops.db")
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)

	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})
	return &storage.DB{DB: db}
}

// Athlete inserts a bare athlete row and returns its id.
func Athlete(t testing.TB, db *storage.DB, first, last, code string) int64 {
	t.Helper()

	res, err := db.Exec(
		`INSERT INTO athletes (first_name, last_name, student_code, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		first, last, code,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// Enroll places the athlete in a group of its own, creating the group when
// needed, and returns the group id.
func Enroll(t testing.TB, db *storage.DB, athleteID int64, active bool) string {
	t.Helper()

	groupID := Group(t, db, fmt.Sprintf("group-%d", athleteID), "coach")

	_, err := db.Exec(
		`INSERT INTO enrollments (enrollment_id, group_id, athlete_id, active, enrolled_at, updated_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		fmt.Sprintf("enrollment-%d", athleteID), groupID, athleteID, active,
	)
	require.NoError(t, err)
	return groupID
}

// Group inserts a bare group row unless it already exists.
func Group(t testing.TB, db *storage.DB, groupID, coachID string) string {
	t.Helper()

	_, err := db.Exec(
		`INSERT OR IGNORE INTO groups (group_id, name, coach_id, created_at, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		groupID, groupID, coachID,
	)
	require.NoError(t, err)
	return groupID
}

// User inserts an account row so profiles can reference it.
func User(t testing.TB, db *storage.DB, userID, email string) string {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO users (user_id, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, '', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		userID, email,
	)
	require.NoError(t, err)
	return userID
}
