package postgres

import "time"

// RoadPointPG is one sampled point of a road or motorized trail, extracted
// from an OSM PBF file by cmd/osm-road-indexer. The road-distance adapter
// answers distance-to-road queries from this table.
type RoadPointPG struct {
	ID      uint    `gorm:"primaryKey;autoIncrement"`
	OSMWay  int64   `gorm:"not null;index"`
	Highway string  `gorm:"size:64;not null"`
	Lat     float64 `gorm:"not null;index:idx_road_points_lat_lon"`
	Lon     float64 `gorm:"not null;index:idx_road_points_lat_lon"`

	CreatedAt time.Time
}

// TableName overrides the table name
func (RoadPointPG) TableName() string {
	return "road_points"
}
