package placement

import (
	"fmt"

	"huntcore/internal/model"
	"huntcore/internal/util"
)

// Config holds the per-site offset distances and the flat-terrain cutoff.
type Config struct {
	BeddingDistanceM float64
	FeedingDistanceM float64
	// StandDistanceM is measured beyond the bedding offset for morning
	// stands, and from the anchor for evening stands.
	StandDistanceM  float64
	CameraDistanceM float64
	// FlatSlopeDeg is the slope below which uphill/downhill bearings are
	// replaced with wind-derived ones.
	FlatSlopeDeg float64
	// South-facing band used for the morning feeding aspect check.
	SouthBandMinDeg float64
	SouthBandMaxDeg float64
}

func DefaultConfig() Config {
	return Config{
		BeddingDistanceM: 150,
		FeedingDistanceM: 250,
		StandDistanceM:   120,
		CameraDistanceM:  100,
		FlatSlopeDeg:     5,
		SouthBandMinDeg:  135,
		SouthBandMaxDeg:  225,
	}
}

// Placements are the site points derived from one anchor. Feeding may be
// empty with FeedingNeedsSearch set when the local aspect disqualifies a
// morning feeding placement; the caller then runs the fallback search for a
// south-facing cell instead.
type Placements struct {
	Phase    model.HuntPhase
	Bearings Bearings

	Bedding []model.GeoPoint
	Feeding []model.GeoPoint
	Stands  []model.GeoPoint
	Cameras []model.GeoPoint

	FeedingNeedsSearch bool
}

// GeometryInconsistencyError reports a placement that violates the mutual
// geometry of bedding, feeding, and stands. It signals a programming error,
// not bad input, and must fail loudly.
type GeometryInconsistencyError struct {
	Detail string
}

func (e *GeometryInconsistencyError) Error() string {
	return "placement geometry inconsistency: " + e.Detail
}

// bearingToleranceDeg bounds the drift between a requested offset bearing
// and the bearing measured back from the anchor. Offsets here stay under a
// kilometer, where the great-circle round trip holds well inside this.
const bearingToleranceDeg = 1.0

// PlaceRelatedSites derives bedding, feeding, stand, and camera points from
// an anchor and its feature record. The hunt phase for the given hour
// selects which bearing dominates each site. Pure geometry, no I/O.
func PlaceRelatedSites(anchor model.GeoPoint, rec model.FeatureRecord, hour int, cfg Config) (Placements, error) {
	phase := model.PhaseForHour(hour)
	b := ComputeBearings(rec)

	sloped := rec.SlopeDeg >= cfg.FlatSlopeDeg

	// On flat terrain the slope bearings carry no meaning; bedding falls
	// back to wind protection and the opposing role follows suit so the
	// derived sites keep their relative geometry.
	upRole := b.Uphill
	downRole := b.Downhill
	if !sloped {
		upRole = Leeward(rec.WindDirDeg)
		downRole = util.NormalizeBearing(upRole + 180)
	}

	out := Placements{Phase: phase, Bearings: b}

	bedding := offset(anchor, upRole, cfg.BeddingDistanceM)
	out.Bedding = []model.GeoPoint{bedding}

	switch phase {
	case model.PhasePM:
		// Evening: the downslope draft carries movement toward food;
		// the thermal bearing overrides aspect preference.
		out.Feeding = []model.GeoPoint{offset(anchor, downRole, cfg.FeedingDistanceM)}
	default:
		// Morning and midday: food quality dominates, so the south-facing
		// aspect must hold. When it does not, the neighborhood search owns
		// the decision.
		if sloped && !util.WithinBand(rec.AspectDeg, cfg.SouthBandMinDeg, cfg.SouthBandMaxDeg) {
			out.FeedingNeedsSearch = true
		} else {
			out.Feeding = []model.GeoPoint{offset(anchor, downRole, cfg.FeedingDistanceM)}
		}
	}

	var standBearing float64
	var standDistance float64
	switch phase {
	case model.PhaseAM:
		// Morning stand intercepts the final approach to bedding: strictly
		// beyond the bedding point along the same uphill line, never
		// between anchor and bedding.
		standBearing = upRole
		standDistance = cfg.BeddingDistanceM + cfg.StandDistanceM
	case model.PhasePM:
		standBearing = downRole
		standDistance = cfg.StandDistanceM
	default:
		standBearing = util.NormalizeBearing(upRole + 45)
		standDistance = cfg.BeddingDistanceM + cfg.StandDistanceM
	}
	out.Stands = []model.GeoPoint{offset(anchor, standBearing, standDistance)}

	out.Cameras = []model.GeoPoint{offset(anchor, b.Crosswind, cfg.CameraDistanceM)}

	if err := verifyGeometry(anchor, out, upRole, downRole, cfg); err != nil {
		return Placements{}, err
	}
	return out, nil
}

func offset(from model.GeoPoint, bearingDeg, distanceM float64) model.GeoPoint {
	lat, lon := util.DestinationPoint(from.Lat, from.Lon, bearingDeg, distanceM)
	return model.GeoPoint{Lat: lat, Lon: lon}
}

// verifyGeometry asserts the mutual-consistency invariant over the derived
// sites. Violations here are programming errors in the bearing logic.
func verifyGeometry(anchor model.GeoPoint, p Placements, upRole, downRole float64, cfg Config) error {
	if len(p.Bedding) == 0 {
		return &GeometryInconsistencyError{Detail: "no bedding point derived"}
	}
	bedding := p.Bedding[0]
	beddingBearing := util.InitialBearing(anchor.Lat, anchor.Lon, bedding.Lat, bedding.Lon)
	if util.AngularDiff(beddingBearing, upRole) > bearingToleranceDeg {
		return &GeometryInconsistencyError{
			Detail: fmt.Sprintf("bedding bearing %.1f drifted from uphill role %.1f", beddingBearing, upRole),
		}
	}

	for _, stand := range p.Stands {
		standBearing := util.InitialBearing(anchor.Lat, anchor.Lon, stand.Lat, stand.Lon)
		standDist := util.HaversineDistance(anchor.Lat, anchor.Lon, stand.Lat, stand.Lon)

		switch p.Phase {
		case model.PhaseAM:
			// The morning stand must sit on the bedding side of the anchor
			// and farther out than bedding itself.
			if util.AngularDiff(standBearing, beddingBearing) > bearingToleranceDeg {
				return &GeometryInconsistencyError{
					Detail: fmt.Sprintf("morning stand bearing %.1f off the bedding line %.1f", standBearing, beddingBearing),
				}
			}
			beddingDist := util.HaversineDistance(anchor.Lat, anchor.Lon, bedding.Lat, bedding.Lon)
			if standDist <= beddingDist {
				return &GeometryInconsistencyError{
					Detail: fmt.Sprintf("morning stand at %.0f m not beyond bedding at %.0f m", standDist, beddingDist),
				}
			}
		case model.PhasePM:
			// The evening stand must never land on the bedding side.
			if util.AngularDiff(standBearing, downRole) > 90 {
				return &GeometryInconsistencyError{
					Detail: fmt.Sprintf("evening stand bearing %.1f on the uphill side", standBearing),
				}
			}
		}
	}

	for _, feeding := range p.Feeding {
		feedDist := util.HaversineDistance(anchor.Lat, anchor.Lon, feeding.Lat, feeding.Lon)
		if feedDist > cfg.FeedingDistanceM*1.01 {
			return &GeometryInconsistencyError{
				Detail: fmt.Sprintf("feeding point at %.0f m exceeds configured %.0f m", feedDist, cfg.FeedingDistanceM),
			}
		}
	}

	return nil
}
