package syncsetting

import "time"

// Intervals is the cadence of the three scheduled syncs.
type Intervals struct {
	Full        time.Duration
	Incremental time.Duration
	Realtime    time.Duration
}

// DefaultIntervals mirrors the seeded interval settings.
func DefaultIntervals() Intervals {
	return Intervals{
		Full:        DefaultFullSyncIntervalHours * time.Hour,
		Incremental: DefaultIncrementalSyncIntervalMinutes * time.Minute,
		Realtime:    DefaultRealtimeSyncIntervalMinutes * time.Minute,
	}
}

// ResolveIntervals overlays the stored interval settings on fallback.
// Missing, malformed and non-positive values keep the fallback.
func ResolveIntervals(settings []*Setting, fallback Intervals) Intervals {
	out := fallback
	for _, s := range settings {
		var (
			target *time.Duration
			unit   time.Duration
		)
		switch s.Key() {
		case KeyFullSyncIntervalHours:
			target, unit = &out.Full, time.Hour
		case KeyIncrementalSyncIntervalMinutes:
			target, unit = &out.Incremental, time.Minute
		case KeyRealtimeSyncIntervalMinutes:
			target, unit = &out.Realtime, time.Minute
		default:
			continue
		}
		if v, err := s.GetIntValue(); err == nil && v > 0 {
			*target = time.Duration(v) * unit
		}
	}
	return out
}
