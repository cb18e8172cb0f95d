// Package history persists an append-only audit log of admissions:
// what was decided for each case and when it was discharged. The active
// roster itself lives in memory; this log backs the admin listing and
// CSV export.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/triage-routing-engine/internal/domain"
)

// SQLiteStore implements domain.HistoryStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite history store. It creates the
// database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS admissions (
		case_id TEXT PRIMARY KEY,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		symptoms TEXT NOT NULL DEFAULT '',
		risk_level TEXT NOT NULL,
		confidence_score REAL NOT NULL,
		priority_score INTEGER NOT NULL,
		preferred_department TEXT NOT NULL,
		routed_department TEXT NOT NULL,
		routing_message TEXT DEFAULT '',
		reasoning TEXT DEFAULT '',
		severity_timeline TEXT DEFAULT '',
		heart_rate INTEGER NOT NULL,
		bp_systolic INTEGER NOT NULL,
		bp_diastolic INTEGER NOT NULL,
		temperature REAL NOT NULL,
		spo2 INTEGER NOT NULL,
		respiratory_rate INTEGER NOT NULL DEFAULT 0,
		pain_score INTEGER NOT NULL DEFAULT 0,
		chronic_disease_count INTEGER NOT NULL DEFAULT 0,
		symptom_duration INTEGER NOT NULL DEFAULT 0,
		admitted_at DATETIME NOT NULL,
		discharged_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_admissions_risk ON admissions(risk_level);
	CREATE INDEX IF NOT EXISTS idx_admissions_admitted_at ON admissions(admitted_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveAdmission appends one committed admission to the log.
func (s *SQLiteStore) SaveAdmission(ctx context.Context, c *domain.Case) error {
	query := `
	INSERT INTO admissions (
		case_id, age, gender, symptoms, risk_level, confidence_score,
		priority_score, preferred_department, routed_department,
		routing_message, reasoning, severity_timeline,
		heart_rate, bp_systolic, bp_diastolic, temperature, spo2,
		respiratory_rate, pain_score, chronic_disease_count,
		symptom_duration, admitted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Age, string(c.Gender), strings.Join(c.Symptoms, ","),
		string(c.RiskTier), c.Confidence, c.PriorityScore,
		c.PreferredDepartment, c.RoutedDepartment, c.RoutingMessage,
		c.Reasoning, c.SeverityTimeline,
		c.Vitals.HeartRate, c.Vitals.BPSystolic, c.Vitals.BPDiastolic,
		c.Vitals.Temperature, c.Vitals.SpO2, c.Vitals.RespiratoryRate,
		c.Vitals.PainScore, c.ChronicDiseaseCount, c.SymptomDurationHours,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving admission: %w", err)
	}
	return nil
}

// MarkDischarged records the discharge time for a case.
func (s *SQLiteStore) MarkDischarged(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE admissions SET discharged_at = ? WHERE case_id = ?", at, id)
	if err != nil {
		return fmt.Errorf("marking discharge: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking discharge: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAdmissions returns admissions newest first, optionally filtered
// by risk tier.
func (s *SQLiteStore) ListAdmissions(ctx context.Context, riskFilter string, limit int) ([]domain.Case, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `
	SELECT case_id, age, gender, symptoms, risk_level, confidence_score,
		priority_score, preferred_department, routed_department,
		routing_message, reasoning, severity_timeline,
		heart_rate, bp_systolic, bp_diastolic, temperature, spo2,
		respiratory_rate, pain_score, chronic_disease_count,
		symptom_duration, admitted_at, discharged_at
	FROM admissions`
	args := []interface{}{}
	if riskFilter != "" {
		query += " WHERE risk_level = ?"
		args = append(args, riskFilter)
	}
	query += " ORDER BY admitted_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing admissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Case
	for rows.Next() {
		c, err := scanAdmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning admission: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAdmission(s scanner) (*domain.Case, error) {
	c := &domain.Case{}
	var gender, tier, symptoms string
	var dischargedAt sql.NullTime

	err := s.Scan(
		&c.ID, &c.Age, &gender, &symptoms, &tier, &c.Confidence,
		&c.PriorityScore, &c.PreferredDepartment, &c.RoutedDepartment,
		&c.RoutingMessage, &c.Reasoning, &c.SeverityTimeline,
		&c.Vitals.HeartRate, &c.Vitals.BPSystolic, &c.Vitals.BPDiastolic,
		&c.Vitals.Temperature, &c.Vitals.SpO2, &c.Vitals.RespiratoryRate,
		&c.Vitals.PainScore, &c.ChronicDiseaseCount, &c.SymptomDurationHours,
		&c.CreatedAt, &dischargedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Gender = domain.Gender(gender)
	c.RiskTier = domain.RiskTier(tier)
	if symptoms != "" {
		c.Symptoms = strings.Split(symptoms, ",")
	}
	c.Active = !dischargedAt.Valid
	return c, nil
}
