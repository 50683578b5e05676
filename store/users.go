package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Dashboard roles, broadest first.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleInspector  = "inspector"
	RoleViewer     = "viewer"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Role         string
	Active       bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleInspector, RoleViewer:
		return true
	}
	return false
}

func (db *DB) CreateUser(u *User) error {
	if !ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	id, err := db.insertID(`INSERT INTO users (username, password_hash, full_name, role, active) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, u.FullName, u.Role, u.Active)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func (db *DB) GetUserByUsername(username string) (*User, error) {
	row := db.QueryRow(db.Q(`SELECT id, username, password_hash, full_name, role, active, created_at, last_login_at FROM users WHERE username = ?`), username)
	return scanUser(row)
}

func (db *DB) GetUser(id int64) (*User, error) {
	row := db.QueryRow(db.Q(`SELECT id, username, password_hash, full_name, role, active, created_at, last_login_at FROM users WHERE id = ?`), id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string
	var lastLogin sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.Active, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseStoredTime(createdAt)
	if lastLogin.Valid {
		t := parseStoredTime(lastLogin.String)
		u.LastLoginAt = &t
	}
	return &u, nil
}

func (db *DB) ListUsers() ([]*User, error) {
	rows, err := db.Query(db.Q(`SELECT id, username, password_hash, full_name, role, active, created_at, last_login_at FROM users ORDER BY username`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		var createdAt string
		var lastLogin sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role, &u.Active, &createdAt, &lastLogin); err != nil {
			return nil, err
		}
		u.CreatedAt = parseStoredTime(createdAt)
		if lastLogin.Valid {
			t := parseStoredTime(lastLogin.String)
			u.LastLoginAt = &t
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (db *DB) UpdateLastLogin(id int64) error {
	_, err := db.Exec(db.Q(`UPDATE users SET last_login_at = datetime('now') WHERE id = ?`), id)
	return err
}

func (db *DB) SetUserActive(id int64, active bool) error {
	_, err := db.Exec(db.Q(`UPDATE users SET active = ? WHERE id = ?`), active, id)
	return err
}

// CountUsers supports first-run admin seeding.
func (db *DB) CountUsers() (int, error) {
	var n int
	err := db.QueryRow(db.Q(`SELECT COUNT(*) FROM users`)).Scan(&n)
	return n, err
}

func parseStoredTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
