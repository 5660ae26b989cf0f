package model

import (
	"time"

	"gorm.io/gorm"
)

// ObservationKind classifies a field scouting observation.
type ObservationKind int

const (
	ObservationSighting ObservationKind = iota
	ObservationBed
	ObservationRub
	ObservationScrape
	ObservationTrail
	ObservationTrackset
)

func (k ObservationKind) String() string {
	switch k {
	case ObservationSighting:
		return "sighting"
	case ObservationBed:
		return "bed"
	case ObservationRub:
		return "rub"
	case ObservationScrape:
		return "scrape"
	case ObservationTrail:
		return "trail"
	case ObservationTrackset:
		return "trackset"
	}
	return "unknown"
}

// ObservationPG is the GORM model for PostgreSQL storage of observations.
type ObservationPG struct {
	ID   string          `gorm:"primaryKey"`
	Kind ObservationKind `gorm:"not null"`
	Lat  float64         `gorm:"not null;index:idx_observations_lat_lon"`
	Lon  float64         `gorm:"not null;index:idx_observations_lat_lon"`
	Note string          `gorm:"type:text"`

	ObservedAt time.Time      `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name
func (ObservationPG) TableName() string {
	return "observations"
}

// Observation is the unified in-memory model for a scouting observation.
type Observation struct {
	ID   string          `json:"id"`
	Kind ObservationKind `json:"kind"`
	Lat  float64         `json:"lat"`
	Lon  float64         `json:"lon"`
	Note string          `json:"note,omitempty"`

	ObservedAt time.Time `json:"observed_at"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ObservationFromPG creates an Observation from its PostgreSQL model.
func ObservationFromPG(pg *ObservationPG) *Observation {
	return &Observation{
		ID:         pg.ID,
		Kind:       pg.Kind,
		Lat:        pg.Lat,
		Lon:        pg.Lon,
		Note:       pg.Note,
		ObservedAt: pg.ObservedAt,
		CreatedAt:  pg.CreatedAt,
		UpdatedAt:  pg.UpdatedAt,
	}
}

// ToPG converts the observation to its PostgreSQL model.
func (o *Observation) ToPG() *ObservationPG {
	return &ObservationPG{
		ID:         o.ID,
		Kind:       o.Kind,
		Lat:        o.Lat,
		Lon:        o.Lon,
		Note:       o.Note,
		ObservedAt: o.ObservedAt,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// ToLightVersion returns a lighter copy for Redis storage.
func (o *Observation) ToLightVersion() *Observation {
	return &Observation{
		ID:         o.ID,
		Kind:       o.Kind,
		Lat:        o.Lat,
		Lon:        o.Lon,
		ObservedAt: o.ObservedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
