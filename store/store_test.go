package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintdeck/config"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "maintdeck.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserLifecycle(t *testing.T) {
	db := newTestDB(t)

	n, err := db.CountUsers()
	require.NoError(t, err)
	assert.Zero(t, n)

	u := &User{Username: "inspector1", PasswordHash: "$2a$10$fake", FullName: "Pat Doe", Role: RoleInspector, Active: true}
	require.NoError(t, db.CreateUser(u))
	assert.NotZero(t, u.ID)

	got, err := db.GetUserByUsername("inspector1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, RoleInspector, got.Role)
	assert.True(t, got.Active)
	assert.Nil(t, got.LastLoginAt)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, db.UpdateLastLogin(u.ID))
	got, err = db.GetUser(u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)

	require.NoError(t, db.SetUserActive(u.ID, false))
	got, err = db.GetUser(u.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = db.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestInsertIDUsesReturningDialect(t *testing.T) {
	db := newTestDB(t)

	// SQLite understands $n placeholders and RETURNING, so the postgres
	// dialect can run against the same connection. This is the path where
	// LastInsertId is unavailable and the id must come from the row.
	pg := &DB{DB: db.DB, dialect: postgresDialect{}, driver: "postgres"}

	first, err := pg.insertID(`INSERT INTO users (username, password_hash, full_name, role, active) VALUES (?, ?, ?, ?, ?)`,
		"returning1", "h", "", RoleViewer, true)
	require.NoError(t, err)
	assert.NotZero(t, first)

	second, err := pg.insertID(`INSERT INTO users (username, password_hash, full_name, role, active) VALUES (?, ?, ?, ?, ?)`,
		"returning2", "h", "", RoleViewer, true)
	require.NoError(t, err)
	assert.Greater(t, second, first)

	got, err := db.GetUserByUsername("returning2")
	require.NoError(t, err)
	assert.Equal(t, second, got.ID)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	err := db.CreateUser(&User{Username: "x", PasswordHash: "h", Role: "superuser"})
	assert.Error(t, err)
}

func TestDuplicateUsernameRejected(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.CreateUser(&User{Username: "dup", PasswordHash: "h", Role: RoleViewer, Active: true}))
	err := db.CreateUser(&User{Username: "dup", PasswordHash: "h", Role: RoleViewer, Active: true})
	assert.Error(t, err)
}

func TestPresetSaveIsUpsert(t *testing.T) {
	db := newTestDB(t)

	u := &User{Username: "planner", PasswordHash: "h", Role: RoleSupervisor, Active: true}
	require.NoError(t, db.CreateUser(u))

	p := &FilterPreset{
		UserID:  u.ID,
		Page:    "inspections",
		Name:    "overdue psv",
		Filters: json.RawMessage(`{"status":"planned","is_planned":true}`),
	}
	require.NoError(t, db.SavePreset(p))
	assert.NotZero(t, p.ID)

	// Saving the same (user, page, name) replaces the filters.
	p2 := &FilterPreset{UserID: u.ID, Page: "inspections", Name: "overdue psv", Filters: json.RawMessage(`{"status":"in_progress"}`)}
	require.NoError(t, db.SavePreset(p2))

	got, err := db.GetPreset(u.ID, "inspections", "overdue psv")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"in_progress"}`, string(got.Filters))

	list, err := db.ListPresets(u.ID, "inspections")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, db.DeletePreset(u.ID, "inspections", "overdue psv"))
	_, err = db.GetPreset(u.ID, "inspections", "overdue psv")
	assert.ErrorIs(t, err, ErrPresetNotFound)
	assert.ErrorIs(t, db.DeletePreset(u.ID, "inspections", "overdue psv"), ErrPresetNotFound)
}

func TestPresetRejectsInvalidJSON(t *testing.T) {
	db := newTestDB(t)
	u := &User{Username: "planner", PasswordHash: "h", Role: RoleSupervisor, Active: true}
	require.NoError(t, db.CreateUser(u))

	err := db.SavePreset(&FilterPreset{UserID: u.ID, Page: "events", Name: "bad", Filters: json.RawMessage(`{not json`)})
	assert.Error(t, err)
}

func TestNotificationLog(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.RecordNotification("error", "Update failed", "findings too long", "validation"))
	require.NoError(t, db.RecordNotification("success", "Report saved", "", ""))

	records, err := db.ListNotifications(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, "Report saved", records[0].Title)
	assert.Equal(t, "Update failed", records[1].Title)
	assert.Equal(t, "validation", records[1].Code)

	records, err = db.ListNotifications(1)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPruneNotifications(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.RecordNotification("info", "Old news", "", ""))
	_, err := db.Exec(`UPDATE notification_log SET created_at = '2020-01-01 00:00:00'`)
	require.NoError(t, err)
	require.NoError(t, db.RecordNotification("info", "Fresh", "", ""))

	require.NoError(t, db.PruneNotifications(30*24*time.Hour))

	records, err := db.ListNotifications(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Fresh", records[0].Title)
}
