package camp

import "time"

// Calendar converts instants into camp business days under the program's
// fixed reference timezone. A camp's business day is the 1-based count of
// calendar days since its anchor date, clamped to [1, duration_days].
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) *Calendar {
	return &Calendar{loc: loc}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today truncates an instant to its calendar date in the reference timezone.
func (c *Calendar) Today(at time.Time) time.Time {
	local := at.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

func (c *Calendar) anchorDate(cm *Camp) time.Time {
	a := cm.Anchor()
	return time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, c.loc)
}

// BusinessDay resolves the camp's current day number at the given instant.
// Camps still in early registration are frozen at day 1 regardless of dates;
// the auto-start sweep looks at start_date directly and is not affected.
func (c *Calendar) BusinessDay(cm *Camp, at time.Time) int {
	if cm.Status == StatusEarlyRegistration {
		return 1
	}
	rawDay := calendarDays(c.anchorDate(cm), c.Today(at)) + 1
	if rawDay < 1 {
		return 1
	}
	if rawDay > cm.DurationDays {
		return cm.DurationDays
	}
	return rawDay
}

// calendarDays counts whole calendar days between two local dates. The
// subtraction runs on UTC reconstructions of the dates so a DST transition
// between them (a 23h or 25h local day) cannot skew the count.
func calendarDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// IsRunning reports whether the instant falls inside the camp's window:
// anchor <= today < anchor + duration_days.
func (c *Calendar) IsRunning(cm *Camp, at time.Time) bool {
	anchor := c.anchorDate(cm)
	today := c.Today(at)
	end := anchor.AddDate(0, 0, cm.DurationDays)
	return !today.Before(anchor) && today.Before(end)
}

// DayBounds returns the local calendar-day window [from, to) containing the
// instant, used for per-calendar-day notification matching.
func (c *Calendar) DayBounds(at time.Time) (time.Time, time.Time) {
	from := c.Today(at)
	return from, from.AddDate(0, 0, 1)
}
