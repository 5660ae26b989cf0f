package scoring

import (
	"huntcore/internal/model"
	"huntcore/internal/util"
)

// Score evaluates one feature record against the criteria for a site type.
// Required criteria that fail disqualify the record regardless of the other
// sub-scores, unless a named compensation rule covers the shortfall.
// Compensable criteria feed the weighted overall score. Pure function.
func Score(rec model.FeatureRecord, siteType model.SiteType, cfg Config) model.ScoreResult {
	result := model.ScoreResult{
		Breakdown: make(map[string]float64),
	}

	crits, ok := cfg.Criteria[siteType]
	if !ok || len(crits) == 0 {
		result.FailedCriteria = append(result.FailedCriteria, model.CriterionFailure{
			Criterion: "criteria",
			Threshold: 1,
		})
		return result
	}

	var weightedSum, weightTotal float64

	for _, crit := range crits {
		if crit.Field == FieldAspect && aspectWaived(rec, siteType, cfg) {
			continue
		}

		value := featureValue(crit.Field, rec)
		sub := subScore(crit, value)
		result.Breakdown[crit.Name] = sub
		weightedSum += sub * crit.Weight
		weightTotal += crit.Weight

		if !crit.Required {
			continue
		}
		if passesThreshold(crit, value) {
			continue
		}

		if donor, rule, compensated := compensationFor(crit, value, crits, rec, cfg); compensated {
			// The shortfall is covered by surplus in the donor criterion.
			result.Breakdown[crit.Name+"_compensated_by_"+donor] = rule.DonorMin
			continue
		}

		result.FailedCriteria = append(result.FailedCriteria, model.CriterionFailure{
			Criterion: crit.Name,
			Value:     value,
			Threshold: requiredThreshold(crit),
		})
	}

	if weightTotal > 0 {
		result.Score = weightedSum / weightTotal
	}
	result.Passed = len(result.FailedCriteria) == 0 && result.Score >= cfg.MinOverallScore

	return result
}

// aspectWaived implements the time-of-day aspect rules. On flat ground
// aspect carries no solar or thermal meaning. During PM hunts on sloped
// terrain the downslope thermal draft dominates food-quality aspect, so
// feeding aspect is waived in favor of downhill placement. Morning feeding
// keeps the south-facing requirement: food quality outweighs movement.
func aspectWaived(rec model.FeatureRecord, siteType model.SiteType, cfg Config) bool {
	if rec.SlopeDeg < cfg.AspectSlopeMinDeg {
		return true
	}
	return siteType == model.SiteFeeding && cfg.Phase == model.PhasePM
}

func featureValue(f Field, rec model.FeatureRecord) float64 {
	switch f {
	case FieldCanopy:
		return rec.CanopyPct
	case FieldSlope:
		return rec.SlopeDeg
	case FieldAspect:
		return rec.AspectDeg
	case FieldIsolation:
		return rec.DistanceToRoadM
	case FieldForage:
		return rec.NDVI
	case FieldConifer:
		return rec.ConiferPct
	}
	return 0
}

// subScore maps a raw value onto 0-100 along the criterion's ramp.
func subScore(crit Criterion, value float64) float64 {
	if crit.Field == FieldAspect {
		return aspectSubScore(*crit.Band, value)
	}

	var t float64
	if crit.LowerBetter {
		t = (crit.Floor - value) / (crit.Floor - crit.Ideal)
	} else {
		t = (value - crit.Floor) / (crit.Ideal - crit.Floor)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * 100
}

// aspectSubScore is 100 at the band center, 70 at the band edge, and fades
// to 0 over the 60 degrees beyond the edge.
func aspectSubScore(band AspectBand, aspect float64) float64 {
	diff := util.AngularDiff(aspect, band.Center())
	hw := band.HalfWidth()
	if hw <= 0 {
		return 0
	}
	if diff <= hw {
		return 100 - 30*diff/hw
	}
	s := 70 - 70*(diff-hw)/60
	if s < 0 {
		return 0
	}
	return s
}

func passesThreshold(crit Criterion, value float64) bool {
	if crit.Field == FieldAspect {
		return crit.Band.Contains(value)
	}
	if crit.LowerBetter {
		return value <= crit.Threshold
	}
	return value >= crit.Threshold
}

func requiredThreshold(crit Criterion) float64 {
	if crit.Field == FieldAspect {
		return crit.Band.MinDeg
	}
	return crit.Threshold
}

// compensationFor looks for a named rule covering a failed required
// criterion. Aspect failures are never compensable: facing the wrong way is
// a semantic failure, not a magnitude shortfall.
func compensationFor(crit Criterion, value float64, crits []Criterion, rec model.FeatureRecord, cfg Config) (string, CompensationRule, bool) {
	if crit.Field == FieldAspect {
		return "", CompensationRule{}, false
	}

	for _, rule := range cfg.Compensation {
		if rule.Recipient != crit.Name {
			continue
		}

		var donor *Criterion
		for i := range crits {
			if crits[i].Name == rule.Donor {
				donor = &crits[i]
				break
			}
		}
		if donor == nil {
			continue
		}

		donorValue := featureValue(donor.Field, rec)
		if donorValue < rule.DonorMin {
			continue
		}

		// The recipient may fall only to the rule's floor, not to zero.
		withinFloor := value >= rule.RecipientFloor
		if crit.LowerBetter {
			withinFloor = value <= rule.RecipientFloor
		}
		if withinFloor {
			return rule.Donor, rule, true
		}
	}
	return "", CompensationRule{}, false
}
