package postgres

import (
	"time"

	"gorm.io/gorm"
)

// PredictionLogPG is the audit row written for every prediction request.
// It carries enough of the rejection summary to reconstruct why zones were
// or were not generated.
type PredictionLogPG struct {
	ID  string  `gorm:"primaryKey"`
	Lat float64 `gorm:"not null"`
	Lon float64 `gorm:"not null"`

	TimeOfDay       int     `gorm:"not null"`
	Season          string  `gorm:"size:32"`
	HuntingPressure string  `gorm:"size:32"`
	RadiusM         float64 `gorm:"not null"`

	ZoneCount          int     `gorm:"not null"`
	Confidence         float64 `gorm:"not null"`
	UsedFallbackData   bool    `gorm:"not null"`
	NearbyObservations int     `gorm:"not null"`
	RejectionSummary   string  `gorm:"type:text"`

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the table name
func (PredictionLogPG) TableName() string {
	return "prediction_logs"
}
