package model

// ThermalPhase represents the time-of-day-dependent direction of convective
// air movement on a slope.
type ThermalPhase int

const (
	ThermalMorningUpslope ThermalPhase = iota
	ThermalMiddayTransition
	ThermalEveningDownslope
)

func (p ThermalPhase) String() string {
	switch p {
	case ThermalMorningUpslope:
		return "morning_upslope"
	case ThermalMiddayTransition:
		return "midday_transition"
	case ThermalEveningDownslope:
		return "evening_downslope"
	}
	return "unknown"
}

// DataSource marks the provenance of a feature record so confidence scoring
// can discount fallback-estimated data.
type DataSource int

const (
	DataSourceSatellite DataSource = iota
	DataSourceFallback
)

func (d DataSource) String() string {
	if d == DataSourceFallback {
		return "fallback-estimate"
	}
	return "satellite"
}

// FeatureRecord is the canonical per-point feature set used by scoring and
// placement. Invariants: SlopeDeg in [0, 90], AspectDeg in [0, 360),
// CanopyPct and ConiferPct in [0, 1].
type FeatureRecord struct {
	ElevationM      float64      `json:"elevation_m"`
	SlopeDeg        float64      `json:"slope_deg"`
	AspectDeg       float64      `json:"aspect_deg"`
	CanopyPct       float64      `json:"canopy_pct"`
	ConiferPct      float64      `json:"conifer_pct"`
	NDVI            float64      `json:"ndvi"`
	DistanceToRoadM float64      `json:"distance_to_road_m"`
	WindDirDeg      float64      `json:"wind_dir_deg"`
	WindSpeedMPH    float64      `json:"wind_speed_mph"`
	ThermalPhase    ThermalPhase `json:"thermal_phase"`
	DataSource      DataSource   `json:"data_source"`
}

// FeatureGrid is a fixed Size×Size sampling of FeatureRecords over a square
// area around Center. Built once per request and read-only afterward.
type FeatureGrid struct {
	Center  GeoPoint
	RadiusM float64
	Size    int

	// Points[row][col] and Cells[row][col] are parallel. Row 0 is the
	// southern edge, column 0 the western edge.
	Points [][]GeoPoint
	Cells  [][]FeatureRecord

	// Fallback is true when the grid was built entirely from region
	// defaults because every upstream source was unavailable.
	Fallback bool
}

// CenterCell returns the record and point of the cell containing Center.
func (g *FeatureGrid) CenterCell() (GeoPoint, FeatureRecord) {
	mid := g.Size / 2
	return g.Points[mid][mid], g.Cells[mid][mid]
}

// ForEachCell visits every cell in row-major order.
func (g *FeatureGrid) ForEachCell(fn func(row, col int, pt GeoPoint, rec FeatureRecord)) {
	for r := 0; r < g.Size; r++ {
		for c := 0; c < g.Size; c++ {
			fn(r, c, g.Points[r][c], g.Cells[r][c])
		}
	}
}
