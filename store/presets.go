package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var ErrPresetNotFound = errors.New("filter preset not found")

// FilterPreset is a named set of dashboard filters saved per user and page,
// e.g. the events page filtered to "in_progress overhauls".
type FilterPreset struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Page      string          `json:"page"`
	Name      string          `json:"name"`
	Filters   json.RawMessage `json:"filters"`
	CreatedAt time.Time       `json:"created_at"`
}

// SavePreset inserts or replaces the preset named (user, page, name).
func (db *DB) SavePreset(p *FilterPreset) error {
	if len(p.Filters) == 0 {
		p.Filters = json.RawMessage("{}")
	}
	if !json.Valid(p.Filters) {
		return errors.New("preset filters must be valid JSON")
	}

	_, err := db.Exec(db.Q(`DELETE FROM filter_presets WHERE user_id = ? AND page = ? AND name = ?`),
		p.UserID, p.Page, p.Name)
	if err != nil {
		return err
	}
	id, err := db.insertID(`INSERT INTO filter_presets (user_id, page, name, filters) VALUES (?, ?, ?, ?)`,
		p.UserID, p.Page, p.Name, string(p.Filters))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (db *DB) ListPresets(userID int64, page string) ([]*FilterPreset, error) {
	rows, err := db.Query(db.Q(`SELECT id, user_id, page, name, filters, created_at FROM filter_presets WHERE user_id = ? AND page = ? ORDER BY name`),
		userID, page)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*FilterPreset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (db *DB) GetPreset(userID int64, page, name string) (*FilterPreset, error) {
	row := db.QueryRow(db.Q(`SELECT id, user_id, page, name, filters, created_at FROM filter_presets WHERE user_id = ? AND page = ? AND name = ?`),
		userID, page, name)
	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPresetNotFound
	}
	return p, err
}

func (db *DB) DeletePreset(userID int64, page, name string) error {
	result, err := db.Exec(db.Q(`DELETE FROM filter_presets WHERE user_id = ? AND page = ? AND name = ?`),
		userID, page, name)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrPresetNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (*FilterPreset, error) {
	var p FilterPreset
	var filters string
	var createdAt string
	if err := row.Scan(&p.ID, &p.UserID, &p.Page, &p.Name, &filters, &createdAt); err != nil {
		return nil, err
	}
	p.Filters = json.RawMessage(filters)
	p.CreatedAt = parseStoredTime(createdAt)
	return &p, nil
}
