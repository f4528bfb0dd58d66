// Package storage provides the SQLite implementation of the storage port.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tilmanv/piwake/internal/domain"
	"github.com/tilmanv/piwake/internal/ports"
)

// sqliteStorage implements ports.Storage using SQLite.
type sqliteStorage struct {
	db *sql.DB
}

// Ensure sqliteStorage implements ports.Storage.
var _ ports.Storage = (*sqliteStorage)(nil)

// New creates a SQLite storage instance at the given path.
func New(dbPath string) (ports.Storage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	storage := &sqliteStorage{db: db}
	if err := storage.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return storage, nil
}

// NewMemory creates an in-memory SQLite storage instance for testing.
func NewMemory() (ports.Storage, error) {
	return New(":memory:")
}

// Close closes the database connection.
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

func (s *sqliteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS streams (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS alarms (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		hour INTEGER NOT NULL,
		minute INTEGER NOT NULL,
		is_active INTEGER NOT NULL,
		weekdays TEXT,
		onetime_date TEXT,
		stream_id INTEGER,
		volume REAL,
		visual_effect INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (stream_id) REFERENCES streams(id) ON DELETE SET NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// SaveAlarm inserts or replaces an alarm definition. The definition must
// carry an id; assignment happens in the configuration, not here.
func (s *sqliteStorage) SaveAlarm(ctx context.Context, alarm *domain.AlarmDefinition) error {
	if alarm.ID == nil {
		return fmt.Errorf("cannot persist alarm %q without an id", alarm.Name)
	}

	var weekdays, onetime sql.NullString
	if len(alarm.Recurring) > 0 {
		weekdays = sql.NullString{String: encodeWeekdays(alarm.Recurring), Valid: true}
	}
	if alarm.OneTime != nil {
		onetime = sql.NullString{String: alarm.OneTime.String(), Valid: true}
	}

	var streamID sql.NullInt64
	var volume sql.NullFloat64
	if alarm.AudioEffect != nil {
		streamID = sql.NullInt64{Int64: int64(alarm.AudioEffect.Stream.ID), Valid: true}
		volume = sql.NullFloat64{Float64: alarm.AudioEffect.Volume, Valid: true}
	}

	visual := 0
	if alarm.VisualEffect != nil {
		visual = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO alarms
		(id, name, hour, minute, is_active, weekdays, onetime_date, stream_id, volume, visual_effect)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		*alarm.ID, alarm.Name, alarm.Hour, alarm.Minute, boolToInt(alarm.IsActive),
		weekdays, onetime, streamID, volume, visual)
	if err != nil {
		return fmt.Errorf("failed to save alarm %d: %w", *alarm.ID, err)
	}
	return nil
}

// ListAlarms loads all persisted alarm definitions, sorted by id.
func (s *sqliteStorage) ListAlarms(ctx context.Context) ([]*domain.AlarmDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.hour, a.minute, a.is_active,
		       a.weekdays, a.onetime_date, a.volume, a.visual_effect,
		       s.id, s.name, s.url
		FROM alarms a
		LEFT JOIN streams s ON s.id = a.stream_id
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alarms: %w", err)
	}
	defer rows.Close()

	var alarms []*domain.AlarmDefinition
	for rows.Next() {
		var (
			id, hour, minute, active, visual int
			name                             string
			weekdays, onetime                sql.NullString
			volume                           sql.NullFloat64
			streamID                         sql.NullInt64
			streamName, streamURL            sql.NullString
		)
		if err := rows.Scan(&id, &name, &hour, &minute, &active,
			&weekdays, &onetime, &volume, &visual,
			&streamID, &streamName, &streamURL); err != nil {
			return nil, fmt.Errorf("failed to scan alarm: %w", err)
		}

		alarmID := id
		alarm := &domain.AlarmDefinition{
			ID:       &alarmID,
			Name:     name,
			Hour:     hour,
			Minute:   minute,
			IsActive: active != 0,
		}
		if weekdays.Valid {
			alarm.Recurring, err = decodeWeekdays(weekdays.String)
			if err != nil {
				return nil, fmt.Errorf("alarm %d: %w", id, err)
			}
		}
		if onetime.Valid {
			date, err := decodeDate(onetime.String)
			if err != nil {
				return nil, fmt.Errorf("alarm %d: %w", id, err)
			}
			alarm.OneTime = &date
		}
		if streamID.Valid && volume.Valid {
			alarm.AudioEffect = &domain.StreamAudioEffect{
				Stream: domain.AudioStream{
					ID:   int(streamID.Int64),
					Name: streamName.String,
					URL:  streamURL.String,
				},
				Volume: volume.Float64,
			}
		}
		if visual != 0 {
			alarm.VisualEffect = &domain.VisualEffect{}
		}
		alarms = append(alarms, alarm)
	}
	return alarms, rows.Err()
}

// DeleteAlarm removes an alarm definition by id.
func (s *sqliteStorage) DeleteAlarm(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM alarms WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete alarm %d: %w", id, err)
	}
	return nil
}

// SaveStream inserts or replaces an audio stream.
func (s *sqliteStorage) SaveStream(ctx context.Context, stream domain.AudioStream) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO streams (id, name, url) VALUES (?, ?, ?)",
		stream.ID, stream.Name, stream.URL)
	if err != nil {
		return fmt.Errorf("failed to save stream %d: %w", stream.ID, err)
	}
	return nil
}

// ListStreams loads all persisted streams, sorted by id.
func (s *sqliteStorage) ListStreams(ctx context.Context) ([]domain.AudioStream, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, url FROM streams ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query streams: %w", err)
	}
	defer rows.Close()

	var streams []domain.AudioStream
	for rows.Next() {
		var stream domain.AudioStream
		if err := rows.Scan(&stream.ID, &stream.Name, &stream.URL); err != nil {
			return nil, fmt.Errorf("failed to scan stream: %w", err)
		}
		streams = append(streams, stream)
	}
	return streams, rows.Err()
}

// DeleteStream removes a stream by id.
func (s *sqliteStorage) DeleteStream(ctx context.Context, id int) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM streams WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete stream %d: %w", id, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeWeekdays(days []domain.Weekday) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) ([]domain.Weekday, error) {
	var days []domain.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday list %q: %w", s, err)
		}
		days = append(days, domain.Weekday(n))
	}
	return days, nil
}

func decodeDate(s string) (domain.Date, error) {
	var d domain.Date
	var month int
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &d.Year, &month, &d.Day); err != nil {
		return domain.Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Month = time.Month(month)
	return d, nil
}
