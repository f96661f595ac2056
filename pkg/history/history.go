// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The Railscope Authors

// Package history archives telemetry samples in a local SQLite database so
// recordings can be queried and exported after the fact.
package history

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/railscope/railscope/pkg/record"
)

// DB wraps the SQL database connection
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the archive database
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn: conn,
		path: path,
	}

	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate creates or updates the database schema
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device TEXT NOT NULL,
		taken DATETIME NOT NULL,
		name TEXT NOT NULL,
		vendor TEXT,
		product TEXT,
		powered_secs INTEGER NOT NULL,
		uptime_secs INTEGER NOT NULL,
		temp1 REAL,
		temp2 REAL,
		fan_rpm REAL,
		supply_volts REAL,
		total_watts REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS rails (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sample_id INTEGER NOT NULL,
		rail INTEGER NOT NULL,
		volts REAL NOT NULL,
		amps REAL NOT NULL,
		watts REAL NOT NULL,
		FOREIGN KEY (sample_id) REFERENCES samples(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_samples_device ON samples(device);
	CREATE INDEX IF NOT EXISTS idx_samples_taken ON samples(taken);
	CREATE INDEX IF NOT EXISTS idx_rails_sample_id ON rails(sample_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// SampleRow is one archived sample
type SampleRow struct {
	ID          int64
	Device      string
	Taken       time.Time
	Name        string
	Vendor      string
	Product     string
	PoweredSecs uint32
	UptimeSecs  uint32
	TempA       float64
	TempB       float64
	FanRPM      float64
	SupplyVolts float64
	TotalWatts  float64
}

// RailRow is one rail measurement belonging to a sample
type RailRow struct {
	Rail  int     `json:"rail"`
	Volts float64 `json:"volts"`
	Amps  float64 `json:"amps"`
	Watts float64 `json:"watts"`
}

// InsertSample archives one sample and its rails
func (db *DB) InsertSample(device string, s *record.Sample) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(
		`INSERT INTO samples (device, taken, name, vendor, product, powered_secs,
		 uptime_secs, temp1, temp2, fan_rpm, supply_volts, total_watts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		device, time.Unix(s.Taken, 0).UTC(), s.Name, s.Vendor, s.Product,
		s.PoweredSecs, s.UptimeSecs, s.TempA, s.TempB, s.FanRPM,
		s.SupplyVolts, s.TotalWatts,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sample: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	for rail, r := range s.Rails {
		_, err := tx.Exec(
			`INSERT INTO rails (sample_id, rail, volts, amps, watts)
			 VALUES (?, ?, ?, ?, ?)`,
			id, rail, r.Volts, r.Amps, r.Watts,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert rail %d: %w", rail, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sample: %w", err)
	}
	return id, nil
}

// Import archives every sample remaining in a recording and returns how
// many were inserted. The recording's device tag is attached to each row.
func (db *DB) Import(r *record.Reader) (int, error) {
	device := r.Header().Device
	count := 0
	for {
		s, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read sample %d: %w", count+1, err)
		}
		if _, err := db.InsertSample(device, s); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// SampleFilter narrows ListSamples and the exports
type SampleFilter struct {
	Device string
	Since  *time.Time
	Limit  int
}

// ListSamples retrieves archived samples, newest first
func (db *DB) ListSamples(filter SampleFilter) ([]*SampleRow, error) {
	query := `SELECT id, device, taken, name, vendor, product, powered_secs,
	          uptime_secs, temp1, temp2, fan_rpm, supply_volts, total_watts
	          FROM samples WHERE 1=1`
	args := []interface{}{}

	if filter.Device != "" {
		query += " AND device = ?"
		args = append(args, filter.Device)
	}

	if filter.Since != nil {
		query += " AND taken >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY taken DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []*SampleRow
	for rows.Next() {
		s := &SampleRow{}
		err := rows.Scan(
			&s.ID, &s.Device, &s.Taken, &s.Name, &s.Vendor, &s.Product,
			&s.PoweredSecs, &s.UptimeSecs, &s.TempA, &s.TempB, &s.FanRPM,
			&s.SupplyVolts, &s.TotalWatts,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// GetRails retrieves the rail measurements for one sample
func (db *DB) GetRails(sampleID int64) ([]RailRow, error) {
	rows, err := db.conn.Query(
		`SELECT rail, volts, amps, watts FROM rails
		 WHERE sample_id = ? ORDER BY rail`,
		sampleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get rails: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rails []RailRow
	for rows.Next() {
		var r RailRow
		if err := rows.Scan(&r.Rail, &r.Volts, &r.Amps, &r.Watts); err != nil {
			return nil, fmt.Errorf("failed to scan rail: %w", err)
		}
		rails = append(rails, r)
	}
	return rails, rows.Err()
}
