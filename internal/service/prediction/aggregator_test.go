package prediction

import (
	"testing"

	"huntcore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedCandidates(siteType model.SiteType, scores ...float64) []model.SiteCandidate {
	out := make([]model.SiteCandidate, len(scores))
	for i, sc := range scores {
		out[i] = model.SiteCandidate{
			SiteType:       siteType,
			Score:          sc,
			PassedRequired: true,
			Point:          model.GeoPoint{Lat: 46.8 + float64(i)*0.001, Lon: -113.9},
		}
	}
	return out
}

func TestSubtypeLabelsByRank(t *testing.T) {
	zones, _ := Aggregate(AggregateInput{
		Candidates: map[model.SiteType][]model.SiteCandidate{
			model.SiteBedding: rankedCandidates(model.SiteBedding, 90, 80, 70),
			model.SiteFeeding: rankedCandidates(model.SiteFeeding, 85, 75, 65),
		},
		Requested: map[model.SiteType]int{model.SiteBedding: 3, model.SiteFeeding: 3},
	})

	require.Len(t, zones, 6)

	bySite := map[model.SiteType][]model.Zone{}
	for _, z := range zones {
		bySite[z.Type] = append(bySite[z.Type], z)
	}

	bedding := bySite[model.SiteBedding]
	assert.Equal(t, model.SubtypePrimary, bedding[0].Subtype)
	assert.Equal(t, model.SubtypeSecondary, bedding[1].Subtype)
	assert.Equal(t, model.SubtypeEscape, bedding[2].Subtype)

	feeding := bySite[model.SiteFeeding]
	assert.Equal(t, model.SubtypePrimary, feeding[0].Subtype)
	assert.Equal(t, model.SubtypeSecondary, feeding[1].Subtype)
	assert.Equal(t, model.SubtypeEmergency, feeding[2].Subtype)

	for _, z := range zones {
		assert.NotEmpty(t, z.ID)
	}
}

func TestConfidenceFromMeanScore(t *testing.T) {
	_, confidence := Aggregate(AggregateInput{
		Candidates: map[model.SiteType][]model.SiteCandidate{
			model.SiteBedding: rankedCandidates(model.SiteBedding, 90, 80, 70),
		},
		Requested: map[model.SiteType]int{model.SiteBedding: 3},
	})

	assert.InDelta(t, 0.8, confidence, 1e-9)
}

func TestFallbackDataDiscountsConfidence(t *testing.T) {
	in := AggregateInput{
		Candidates: map[model.SiteType][]model.SiteCandidate{
			model.SiteBedding: rankedCandidates(model.SiteBedding, 90, 80, 70),
		},
		Requested: map[model.SiteType]int{model.SiteBedding: 3},
	}

	_, live := Aggregate(in)

	in.UsedFallbackData = true
	fallbackZones, degraded := Aggregate(in)

	assert.Less(t, degraded, live, "fallback data must strictly lower confidence")
	assert.InDelta(t, 0.64, degraded, 1e-9)
	for _, z := range fallbackZones {
		assert.Less(t, z.Confidence, z.Candidate.Score/100)
	}
}

func TestPartialGenerationLowersConfidence(t *testing.T) {
	full := AggregateInput{
		Candidates: map[model.SiteType][]model.SiteCandidate{
			model.SiteBedding: rankedCandidates(model.SiteBedding, 80, 80, 80),
		},
		Requested: map[model.SiteType]int{model.SiteBedding: 3},
	}
	partial := AggregateInput{
		Candidates: map[model.SiteType][]model.SiteCandidate{
			model.SiteBedding: rankedCandidates(model.SiteBedding, 80),
		},
		Requested: map[model.SiteType]int{model.SiteBedding: 3},
	}

	_, fullConf := Aggregate(full)
	_, partialConf := Aggregate(partial)

	assert.InDelta(t, 0.8, fullConf, 1e-9)
	assert.InDelta(t, 0.8/3, partialConf, 1e-9)
}

func TestObservationBonusMonotoneAndCapped(t *testing.T) {
	in := AggregateInput{
		Candidates: map[model.SiteType][]model.SiteCandidate{
			model.SiteBedding: rankedCandidates(model.SiteBedding, 70),
		},
		Requested: map[model.SiteType]int{model.SiteBedding: 1},
	}

	prev := -1.0
	for _, count := range []int{0, 1, 2, 3, 10} {
		in.NearbyObservations = count
		_, conf := Aggregate(in)
		assert.GreaterOrEqual(t, conf, prev, "adding observations must never lower confidence")
		prev = conf
	}

	in.NearbyObservations = 100
	_, capped := Aggregate(in)
	assert.InDelta(t, 0.7+0.15, capped, 1e-9)
}

func TestEmptyCandidatesYieldZeroConfidence(t *testing.T) {
	zones, confidence := Aggregate(AggregateInput{
		Requested: map[model.SiteType]int{model.SiteBedding: 3},
	})

	assert.Empty(t, zones)
	assert.Zero(t, confidence)
}
