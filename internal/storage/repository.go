package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertMeasurementSQL = `INSERT INTO measurements (
        sensor_name,
        sensor_kind,
        room_type,
        value,
        recorded_at
    ) VALUES (
        $1,$2,$3,$4,$5
    ) RETURNING id;`

	listRecentMeasurementsSQL = `SELECT
        id,
        sensor_name,
        sensor_kind,
        room_type,
        value,
        recorded_at
    FROM measurements
    WHERE sensor_name = $1
    ORDER BY recorded_at DESC
    LIMIT $2;`

	listMeasurementsBetweenSQL = `SELECT
        id,
        sensor_name,
        sensor_kind,
        room_type,
        value,
        recorded_at
    FROM measurements
    WHERE sensor_name = $1
      AND recorded_at >= $2
      AND recorded_at < $3
    ORDER BY recorded_at;`

	countMeasurementsSQL = `SELECT COUNT(*) FROM measurements WHERE sensor_name = $1;`

	insertAnalysisSQL = `INSERT INTO analyses (
        sensor_name,
        classical_is_anomaly,
        classical_score,
        ensemble_is_anomaly,
        ensemble_score,
        models_agree,
        consensus_is_anomaly,
        agreement_score
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    ) RETURNING id, created_at;`

	insertRecommendationSQL = `INSERT INTO recommendations (
        sensor_name,
        room_type,
        problem,
        action,
        reasoning,
        target_value,
        current_value,
        confidence,
        severity,
        priority,
        time_to_normal
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
    ) RETURNING id, created_at;`

	listRecentRecommendationsSQL = `SELECT
        id,
        sensor_name,
        room_type,
        problem,
        action,
        reasoning,
        target_value,
        current_value,
        confidence,
        severity,
        priority,
        time_to_normal,
        created_at
    FROM recommendations
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteRecommendationsBeforeSQL = `DELETE FROM recommendations WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// MeasurementStore defines operations for measurement persistence.
type MeasurementStore interface {
	InsertMeasurement(ctx context.Context, m Measurement) (int64, error)
	ListRecentMeasurements(ctx context.Context, sensorName string, limit int) ([]Measurement, error)
	ListMeasurementsBetween(ctx context.Context, sensorName string, from, to time.Time) ([]Measurement, error)
	CountMeasurements(ctx context.Context, sensorName string) (int64, error)
}

// AnalysisStore defines operations for the detection-comparison audit log.
type AnalysisStore interface {
	InsertAnalysis(ctx context.Context, rec AnalysisRecord) (AnalysisRecord, error)
}

// RecommendationStore defines operations for recommendation persistence.
type RecommendationStore interface {
	InsertRecommendation(ctx context.Context, rec RecommendationRecord) (RecommendationRecord, error)
	ListRecentRecommendations(ctx context.Context, limit int) ([]RecommendationRecord, error)
	DeleteRecommendationsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to measurements, analyses, and recommendations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertMeasurement persists one reading and returns its id.
func (s *Store) InsertMeasurement(ctx context.Context, m Measurement) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertMeasurementSQL,
		m.SensorName,
		m.SensorKind,
		m.RoomType,
		m.Value.String(),
		m.RecordedAt,
	).Scan(&id)
	if scanErr != nil {
		return 0, fmt.Errorf("insert measurement: %w", scanErr)
	}
	return id, nil
}

// ListRecentMeasurements lists the newest readings for a sensor, newest first.
func (s *Store) ListRecentMeasurements(ctx context.Context, sensorName string, limit int) ([]Measurement, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentMeasurementsSQL, sensorName, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent measurements: %w", queryErr)
	}
	defer rows.Close()

	return collectMeasurements(rows, limit)
}

// ListMeasurementsBetween lists a sensor's readings within a time window,
// oldest first.
func (s *Store) ListMeasurementsBetween(ctx context.Context, sensorName string, from, to time.Time) ([]Measurement, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listMeasurementsBetweenSQL, sensorName, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list measurements between: %w", queryErr)
	}
	defer rows.Close()

	return collectMeasurements(rows, 0)
}

// CountMeasurements counts a sensor's stored readings.
func (s *Store) CountMeasurements(ctx context.Context, sensorName string) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countMeasurementsSQL, sensorName).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count measurements: %w", scanErr)
	}
	return count, nil
}

// InsertAnalysis persists a classical-vs-ensemble comparison row.
func (s *Store) InsertAnalysis(ctx context.Context, rec AnalysisRecord) (AnalysisRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AnalysisRecord{}, err
	}

	row := pool.QueryRow(ctx, insertAnalysisSQL,
		rec.SensorName,
		rec.ClassicalIsAnomaly,
		rec.ClassicalScore.String(),
		rec.EnsembleIsAnomaly,
		rec.EnsembleScore.String(),
		rec.ModelsAgree,
		rec.ConsensusIsAnomaly,
		rec.AgreementScore.String(),
	)

	if scanErr := row.Scan(&rec.ID, &rec.CreatedAt); scanErr != nil {
		return AnalysisRecord{}, fmt.Errorf("insert analysis: %w", scanErr)
	}
	return rec, nil
}

// InsertRecommendation persists a recommendation.
func (s *Store) InsertRecommendation(ctx context.Context, rec RecommendationRecord) (RecommendationRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return RecommendationRecord{}, err
	}

	row := pool.QueryRow(ctx, insertRecommendationSQL,
		rec.SensorName,
		rec.RoomType,
		rec.Problem,
		rec.Action,
		rec.Reasoning,
		rec.TargetValue.String(),
		rec.CurrentValue.String(),
		rec.Confidence.String(),
		rec.Severity,
		rec.Priority,
		rec.TimeToNormal,
	)

	if scanErr := row.Scan(&rec.ID, &rec.CreatedAt); scanErr != nil {
		return RecommendationRecord{}, fmt.Errorf("insert recommendation: %w", scanErr)
	}
	return rec, nil
}

// ListRecentRecommendations lists the newest recommendations.
func (s *Store) ListRecentRecommendations(ctx context.Context, limit int) ([]RecommendationRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentRecommendationsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent recommendations: %w", queryErr)
	}
	defer rows.Close()

	recs := make([]RecommendationRecord, 0, limit)
	for rows.Next() {
		var rec RecommendationRecord
		var targetStr, currentStr, confidenceStr string
		if err := rows.Scan(
			&rec.ID,
			&rec.SensorName,
			&rec.RoomType,
			&rec.Problem,
			&rec.Action,
			&rec.Reasoning,
			&targetStr,
			&currentStr,
			&confidenceStr,
			&rec.Severity,
			&rec.Priority,
			&rec.TimeToNormal,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		var convErr error
		rec.TargetValue, convErr = decimal.NewFromString(targetStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse target value: %w", convErr)
		}
		rec.CurrentValue, convErr = decimal.NewFromString(currentStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse current value: %w", convErr)
		}
		rec.Confidence, convErr = decimal.NewFromString(confidenceStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse confidence: %w", convErr)
		}

		recs = append(recs, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return recs, nil
}

// DeleteRecommendationsBefore deletes historical recommendations.
func (s *Store) DeleteRecommendationsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteRecommendationsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete recommendations before: %w", execErr)
	}
	return nil
}

func collectMeasurements(rows pgx.Rows, capacity int) ([]Measurement, error) {
	measurements := make([]Measurement, 0, capacity)
	for rows.Next() {
		var m Measurement
		var valueStr string
		if err := rows.Scan(
			&m.ID,
			&m.SensorName,
			&m.SensorKind,
			&m.RoomType,
			&valueStr,
			&m.RecordedAt,
		); err != nil {
			return nil, err
		}

		value, convErr := decimal.NewFromString(valueStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse measurement value: %w", convErr)
		}
		m.Value = value
		measurements = append(measurements, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return measurements, nil
}
