package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"huntcore/internal/grid"
	"huntcore/internal/model"
	"huntcore/internal/scoring"
	"huntcore/internal/util"

	"github.com/dhconnelly/rtreego"
)

// approxDegPerMeter converts a separation distance to the crude degree box
// used for the r-tree pre-filter.
const approxDegPerMeter = 1.0 / 111320.0

// NoViableSiteError is the structured answer when every relaxation tier was
// exhausted without a passing cell. It is a valid biological answer, not a
// fault; callers must surface it instead of substituting data.
type NoViableSiteError struct {
	SiteType      model.SiteType
	RadiusM       float64
	TiersTried    int
	FailureCounts map[string]int
}

func (e *NoViableSiteError) Error() string {
	parts := make([]string, 0, len(e.FailureCounts))
	for name, count := range e.FailureCounts {
		parts = append(parts, fmt.Sprintf("%s×%d", name, count))
	}
	sort.Strings(parts)
	return fmt.Sprintf("no viable %s site within %.0f m after %d tiers (failures: %s)",
		e.SiteType, e.RadiusM, e.TiersTried, strings.Join(parts, ", "))
}

// Searcher runs the tiered fallback search over a sampled neighborhood.
type Searcher struct {
	Sampler *grid.Sampler
}

func NewSearcher(s *grid.Sampler) *Searcher {
	return &Searcher{Sampler: s}
}

// FindAlternatives samples the neighborhood once and scans it through the
// relaxation ladder. See ScanGrid for the tier semantics.
func (s *Searcher) FindAlternatives(ctx context.Context, center model.GeoPoint, radiusM float64, gridSize, hour int, siteType model.SiteType, base scoring.Config, tiers []scoring.Tier, maxResults int) ([]model.SiteCandidate, error) {
	g, err := s.Sampler.SampleGrid(ctx, center, radiusM, gridSize, hour)
	if err != nil {
		return nil, err
	}
	return ScanGrid(g, siteType, base, tiers, maxResults)
}

// ScanGrid scores every cell of an already sampled grid against each tier
// in order. The first tier that yields maxResults passing cells wins;
// otherwise the ladder proceeds and the last tier's survivors are returned.
// Results are the top maxResults by score, ties broken by distance to the
// grid center (closest first), with a minimum spacing between picks so the
// alternatives do not stack inside one thicket.
func ScanGrid(g *model.FeatureGrid, siteType model.SiteType, base scoring.Config, tiers []scoring.Tier, maxResults int) ([]model.SiteCandidate, error) {
	if err := scoring.ValidateTiers(tiers); err != nil {
		return nil, fmt.Errorf("invalid tier ladder: %w", err)
	}
	if maxResults <= 0 {
		maxResults = 1
	}

	failureCounts := make(map[string]int)
	var passing []model.SiteCandidate

	for tierIdx, tier := range tiers {
		cfg := base.WithTier(siteType, tier)
		passing = passing[:0]

		g.ForEachCell(func(row, col int, pt model.GeoPoint, rec model.FeatureRecord) {
			res := scoring.Score(rec, siteType, cfg)
			if res.Passed {
				passing = append(passing, model.SiteCandidate{
					Point:          pt,
					SiteType:       siteType,
					Score:          res.Score,
					Breakdown:      res.Breakdown,
					PassedRequired: true,
					SourceTier:     tier.Level,
					Feature:        rec,
				})
				return
			}
			logRejection(tier.Level, pt, res)
			countFailures(failureCounts, res)
		})

		if len(passing) >= maxResults || tierIdx == len(tiers)-1 {
			break
		}
		log.Printf("Fallback search: tier %d produced %d/%d %s candidates, relaxing to tier %d",
			tier.Level, len(passing), maxResults, siteType, tiers[tierIdx+1].Level)
	}

	if len(passing) == 0 {
		return nil, &NoViableSiteError{
			SiteType:      siteType,
			RadiusM:       g.RadiusM,
			TiersTried:    len(tiers),
			FailureCounts: failureCounts,
		}
	}

	return selectSpaced(g, passing, maxResults), nil
}

// logRejection records why one cell failed, criterion and value included.
// This traceability feeds regression debugging and is a contract of the
// search, not incidental logging.
func logRejection(tierLevel int, pt model.GeoPoint, res model.ScoreResult) {
	if len(res.FailedCriteria) == 0 {
		log.Printf("tier %d: rejected (%.5f, %.5f): overall score %.1f below minimum",
			tierLevel, pt.Lat, pt.Lon, res.Score)
		return
	}
	for _, f := range res.FailedCriteria {
		log.Printf("tier %d: rejected (%.5f, %.5f): %s=%.2f fails threshold %.2f",
			tierLevel, pt.Lat, pt.Lon, f.Criterion, f.Value, f.Threshold)
	}
}

func countFailures(counts map[string]int, res model.ScoreResult) {
	if len(res.FailedCriteria) == 0 {
		counts["overall_score"]++
		return
	}
	for _, f := range res.FailedCriteria {
		counts[f.Criterion]++
	}
}

// candidateSpatial adapts a picked candidate for r-tree separation checks.
type candidateSpatial struct {
	point  model.GeoPoint
	boxDeg float64
}

// Bounds implements the rtreego.Spatial interface
func (c *candidateSpatial) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(
		rtreego.Point{c.point.Lon - c.boxDeg, c.point.Lat - c.boxDeg},
		[]float64{2 * c.boxDeg, 2 * c.boxDeg},
	)
	return rect
}

// selectSpaced orders candidates by score (distance to center breaking
// ties) and greedily picks up to maxResults with a minimum separation of
// 1.5 grid steps.
func selectSpaced(g *model.FeatureGrid, passing []model.SiteCandidate, maxResults int) []model.SiteCandidate {
	center := g.Center
	sort.SliceStable(passing, func(i, j int) bool {
		if passing[i].Score != passing[j].Score {
			return passing[i].Score > passing[j].Score
		}
		di := util.HaversineDistance(passing[i].Point.Lat, passing[i].Point.Lon, center.Lat, center.Lon)
		dj := util.HaversineDistance(passing[j].Point.Lat, passing[j].Point.Lon, center.Lat, center.Lon)
		return di < dj
	})

	minSepM := 1.5 * 2 * g.RadiusM / float64(g.Size-1)
	boxDeg := minSepM * approxDegPerMeter

	index := rtreego.NewTree(2, 2, 8)
	picked := make([]model.SiteCandidate, 0, maxResults)

	for _, cand := range passing {
		if len(picked) >= maxResults {
			break
		}

		probe := &candidateSpatial{point: cand.Point, boxDeg: boxDeg}
		tooClose := false
		for _, hit := range index.SearchIntersect(probe.Bounds()) {
			other := hit.(*candidateSpatial)
			if util.HaversineDistance(cand.Point.Lat, cand.Point.Lon, other.point.Lat, other.point.Lon) < minSepM {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		index.Insert(probe)
		picked = append(picked, cand)
	}

	// If spacing starved the result set, backfill with the next best
	// regardless of separation; count beats spread.
	if len(picked) < maxResults && len(picked) < len(passing) {
		seen := make(map[model.GeoPoint]bool, len(picked))
		for _, c := range picked {
			seen[c.Point] = true
		}
		for _, cand := range passing {
			if len(picked) >= maxResults {
				break
			}
			if !seen[cand.Point] {
				picked = append(picked, cand)
				seen[cand.Point] = true
			}
		}
	}

	return picked
}
