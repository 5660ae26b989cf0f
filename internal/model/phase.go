package model

// HuntPhase partitions the hunting day. The phase decides which bearing
// dominates placement and whether feeding-aspect requirements apply.
type HuntPhase int

const (
	PhaseAM HuntPhase = iota
	PhaseMidday
	PhasePM
)

func (p HuntPhase) String() string {
	switch p {
	case PhaseAM:
		return "am"
	case PhaseMidday:
		return "midday"
	case PhasePM:
		return "pm"
	}
	return "unknown"
}

// PhaseForHour maps an hour of day (0-23) to the hunt phase. Pre-noon is AM,
// 15:00 and later is PM, in between is the midday transition.
func PhaseForHour(hour int) HuntPhase {
	switch {
	case hour < 12:
		return PhaseAM
	case hour >= 15:
		return PhasePM
	default:
		return PhaseMidday
	}
}
