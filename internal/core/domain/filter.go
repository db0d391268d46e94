package domain

import "time"

// FilterByTimeframe returns the patients whose last visit falls inside the
// given window, evaluated against now. It is a pure function over the
// collection passed in; it never touches the backend.
//
// Patients with no last-visit date never match a timeframe filter. An
// unrecognised timeframe (TimeframeNone) applies no filtering at all.
func FilterByTimeframe(patients []Patient, tf Timeframe, now time.Time) []Patient {
	if tf == TimeframeNone {
		return patients
	}

	out := make([]Patient, 0, len(patients))
	for _, p := range patients {
		if p.LastVisitDate == nil || p.LastVisitDate.IsZero() {
			continue
		}
		if matchesTimeframe(p.LastVisitDate.Time, tf, now) {
			out = append(out, p)
		}
	}
	return out
}

func matchesTimeframe(visit time.Time, tf Timeframe, now time.Time) bool {
	switch tf {
	case TimeframeToday:
		vy, vm, vd := visit.In(now.Location()).Date()
		ny, nm, nd := now.Date()
		return vy == ny && vm == nm && vd == nd
	case TimeframeThisWeek:
		// Rolling 7-day window compared as instants, inclusive.
		return !visit.Before(now.AddDate(0, 0, -7))
	case TimeframeThisMonth:
		v := visit.In(now.Location())
		return v.Month() == now.Month() && v.Year() == now.Year()
	default:
		return false
	}
}
