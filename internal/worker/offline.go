package worker

import (
	"fmt"
	"slices"
	"time"

	"playgate/internal/models"
)

// Offline rule defaults: Friday to Sunday, 20:00 to 21:00, UTC+8.
var defaultWeekdays = []int{int(time.Friday), int(time.Saturday), int(time.Sunday)}

const (
	defaultWindowStart      = "20:00"
	defaultWindowEnd        = "21:00"
	defaultUTCOffsetMinutes = 480

	defaultPlayableTitle     = "Healthy gaming reminder"
	defaultPlayableContent   = "You are in the permitted play window. Remember to rest."
	defaultUnplayableTitle   = "Play time restricted"
	defaultUnplayableContent = "Minors may only play during the permitted hours."
)

// offlineClock pins local time to a wall-clock reading taken once, advanced
// by monotonic elapsed time, so changing the device clock while offline
// does not extend play time.
type offlineClock struct {
	wall time.Time
	mono time.Time
}

// anchor records the baseline unless one is already set.
func (c *offlineClock) anchor(now time.Time) {
	if !c.wall.IsZero() {
		return
	}
	c.wall = now.Round(0)
	c.mono = now
}

// now returns the baseline advanced by the time elapsed since anchoring.
func (c offlineClock) now(current time.Time) time.Time {
	if c.wall.IsZero() {
		return current
	}
	return c.wall.Add(current.Sub(c.mono))
}

// MinorPlayable computes a minor's remaining play time from the cached
// time-range policy. The result depends only on cfg and now.
func MinorPlayable(cfg models.LocalConfig, now time.Time) models.PlayableResult {
	tr := cfg.TimeRange
	offset := defaultUTCOffsetMinutes
	if tr.UTCOffsetMinutes != nil {
		offset = *tr.UTCOffsetMinutes
	}
	local := now.In(time.FixedZone("", offset*60))

	start, errStart := clockSeconds(tr.TimeStart, defaultWindowStart)
	end, errEnd := clockSeconds(tr.TimeEnd, defaultWindowEnd)
	if errStart != nil || errEnd != nil || end <= start {
		start, _ = clockSeconds(defaultWindowStart, "")
		end, _ = clockSeconds(defaultWindowEnd, "")
	}

	sec := local.Hour()*3600 + local.Minute()*60 + local.Second()
	if playableDay(tr, local) && sec >= start && sec < end {
		return models.PlayableResult{
			RemainTime: end - sec,
			Title:      orDefault(cfg.UI.PlayableTitle, defaultPlayableTitle),
			Content:    orDefault(cfg.UI.PlayableContent, defaultPlayableContent),
		}
	}
	return models.PlayableResult{
		RemainTime: 0,
		Title:      orDefault(cfg.UI.UnplayableTitle, defaultUnplayableTitle),
		Content:    orDefault(cfg.UI.UnplayableContent, defaultUnplayableContent),
	}
}

func playableDay(tr models.TimeRangeConfig, local time.Time) bool {
	if slices.Contains(tr.Holidays, local.Format(time.DateOnly)) {
		return true
	}
	weekdays := tr.Weekdays
	if len(weekdays) == 0 {
		weekdays = defaultWeekdays
	}
	return slices.Contains(weekdays, int(local.Weekday()))
}

// clockSeconds parses "HH:MM" into seconds after midnight.
func clockSeconds(s, fallback string) (int, error) {
	if s == "" {
		s = fallback
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*3600 + t.Minute()*60, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
