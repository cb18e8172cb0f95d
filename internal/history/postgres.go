package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/triage-routing-engine/internal/domain"
)

// PostgresStore implements domain.HistoryStore using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL history store over an
// existing connection.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := createPostgresSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL history store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func createPostgresSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS admissions (
		case_id TEXT PRIMARY KEY,
		age INTEGER NOT NULL,
		gender TEXT NOT NULL,
		symptoms TEXT NOT NULL DEFAULT '',
		risk_level TEXT NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL,
		priority_score INTEGER NOT NULL,
		preferred_department TEXT NOT NULL,
		routed_department TEXT NOT NULL,
		routing_message TEXT DEFAULT '',
		reasoning TEXT DEFAULT '',
		severity_timeline TEXT DEFAULT '',
		heart_rate INTEGER NOT NULL,
		bp_systolic INTEGER NOT NULL,
		bp_diastolic INTEGER NOT NULL,
		temperature DOUBLE PRECISION NOT NULL,
		spo2 INTEGER NOT NULL,
		respiratory_rate INTEGER NOT NULL DEFAULT 0,
		pain_score INTEGER NOT NULL DEFAULT 0,
		chronic_disease_count INTEGER NOT NULL DEFAULT 0,
		symptom_duration INTEGER NOT NULL DEFAULT 0,
		admitted_at TIMESTAMP WITH TIME ZONE NOT NULL,
		discharged_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_admissions_risk ON admissions(risk_level);
	CREATE INDEX IF NOT EXISTS idx_admissions_admitted_at ON admissions(admitted_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveAdmission appends one committed admission to the log.
func (s *PostgresStore) SaveAdmission(ctx context.Context, c *domain.Case) error {
	query := `
	INSERT INTO admissions (
		case_id, age, gender, symptoms, risk_level, confidence_score,
		priority_score, preferred_department, routed_department,
		routing_message, reasoning, severity_timeline,
		heart_rate, bp_systolic, bp_diastolic, temperature, spo2,
		respiratory_rate, pain_score, chronic_disease_count,
		symptom_duration, admitted_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

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
func (s *PostgresStore) MarkDischarged(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE admissions SET discharged_at = $1 WHERE case_id = $2", at, id)
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
func (s *PostgresStore) ListAdmissions(ctx context.Context, riskFilter string, limit int) ([]domain.Case, error) {
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
		query += " WHERE risk_level = $1 ORDER BY admitted_at DESC LIMIT $2"
		args = append(args, riskFilter, limit)
	} else {
		query += " ORDER BY admitted_at DESC LIMIT $1"
		args = append(args, limit)
	}

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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
