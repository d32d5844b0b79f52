package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Measurement is one persisted sensor reading.
type Measurement struct {
	ID         int64
	SensorName string
	SensorKind string
	RoomType   string
	Value      decimal.Decimal
	RecordedAt time.Time
}

// AnalysisRecord is the audit row comparing the classical and ensemble
// verdicts for one reading, including the consensus between them.
type AnalysisRecord struct {
	ID                 int64
	SensorName         string
	ClassicalIsAnomaly bool
	ClassicalScore     decimal.Decimal
	EnsembleIsAnomaly  bool
	EnsembleScore      decimal.Decimal
	ModelsAgree        bool
	ConsensusIsAnomaly bool
	AgreementScore     decimal.Decimal
	CreatedAt          time.Time
}

// RecommendationRecord is a persisted corrective recommendation.
type RecommendationRecord struct {
	ID           int64
	SensorName   string
	RoomType     string
	Problem      string
	Action       string
	Reasoning    string
	TargetValue  decimal.Decimal
	CurrentValue decimal.Decimal
	Confidence   decimal.Decimal
	Severity     string
	Priority     int
	TimeToNormal string
	CreatedAt    time.Time
}
