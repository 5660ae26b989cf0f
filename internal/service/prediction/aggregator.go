package prediction

import (
	"huntcore/internal/model"
	"huntcore/internal/util"
)

// fallbackDiscount scales confidence when any feature input came from
// region defaults instead of a live source.
const fallbackDiscount = 0.8

// observationBonusPer is the confidence bonus per nearby scouting
// observation; observationBonusCap bounds the total.
const (
	observationBonusPer = 0.05
	observationBonusCap = 0.15
)

// AggregateInput carries everything the aggregator needs. Candidates are
// already ranked best-first per site type by the search.
type AggregateInput struct {
	Candidates         map[model.SiteType][]model.SiteCandidate
	Requested          map[model.SiteType]int
	UsedFallbackData   bool
	NearbyObservations int
}

// subtypeLadder maps rank order to subtype labels per site type. Ranks past
// the end of a ladder keep the last label.
func subtypeLadder(siteType model.SiteType) []model.ZoneSubtype {
	switch siteType {
	case model.SiteBedding:
		return []model.ZoneSubtype{model.SubtypePrimary, model.SubtypeSecondary, model.SubtypeEscape}
	case model.SiteFeeding:
		return []model.ZoneSubtype{model.SubtypePrimary, model.SubtypeSecondary, model.SubtypeEmergency}
	default:
		return []model.ZoneSubtype{model.SubtypePrimary, model.SubtypeSecondary}
	}
}

// Aggregate labels the ranked candidates as zones and computes the
// request-level confidence. Inputs are not mutated; the returned zone set is
// complete and final for the request.
func Aggregate(in AggregateInput) ([]model.Zone, float64) {
	zones := make([]model.Zone, 0)
	scoreSum := 0.0

	for _, siteType := range []model.SiteType{model.SiteBedding, model.SiteFeeding, model.SiteStand, model.SiteCamera} {
		ladder := subtypeLadder(siteType)
		for rank, cand := range in.Candidates[siteType] {
			subtype := ladder[len(ladder)-1]
			if rank < len(ladder) {
				subtype = ladder[rank]
			}

			zoneConfidence := cand.Score / 100
			if in.UsedFallbackData {
				zoneConfidence *= fallbackDiscount
			}

			zones = append(zones, model.Zone{
				ID:         util.ShortUUID(),
				Type:       siteType,
				Subtype:    subtype,
				Candidate:  cand,
				Confidence: clamp01(zoneConfidence),
			})
			scoreSum += cand.Score
		}
	}

	return zones, requestConfidence(in, zones, scoreSum)
}

// requestConfidence combines mean candidate score, the fallback-data
// discount, the generated-vs-requested ratio, and a capped bonus for nearby
// scouting observations.
func requestConfidence(in AggregateInput, zones []model.Zone, scoreSum float64) float64 {
	if len(zones) == 0 {
		return 0
	}

	confidence := scoreSum / float64(len(zones)) / 100

	if in.UsedFallbackData {
		confidence *= fallbackDiscount
	}

	requested := 0
	for _, n := range in.Requested {
		requested += n
	}
	if requested > 0 {
		ratio := float64(len(zones)) / float64(requested)
		if ratio > 1 {
			ratio = 1
		}
		confidence *= ratio
	}

	bonus := observationBonusPer * float64(in.NearbyObservations)
	if bonus > observationBonusCap {
		bonus = observationBonusCap
	}

	return clamp01(confidence + bonus)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
