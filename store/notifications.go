package store

import "time"

// NotificationRecord is one row of the persisted notification log.
type NotificationRecord struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordNotification satisfies notify.Recorder.
func (db *DB) RecordNotification(level, title, message, code string) error {
	_, err := db.Exec(db.Q(`INSERT INTO notification_log (level, title, message, code) VALUES (?, ?, ?, ?)`),
		level, title, message, code)
	return err
}

// ListNotifications returns the newest entries first, capped at limit.
func (db *DB) ListNotifications(limit int) ([]*NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(db.Q(`SELECT id, level, title, message, code, created_at FROM notification_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*NotificationRecord
	for rows.Next() {
		var rec NotificationRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.Title, &rec.Message, &rec.Code, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = parseStoredTime(createdAt)
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// PruneNotifications drops entries older than the cutoff.
func (db *DB) PruneNotifications(olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02 15:04:05")
	_, err := db.Exec(db.Q(`DELETE FROM notification_log WHERE created_at < ?`), cutoff)
	return err
}
