// Package timeline reconstructs what happened around a point in time from
// daily-note headlines and recently updated knowledge-graph facts.
package timeline

import (
	"strings"
	"time"

	"github.com/Aman-CERP/memex/internal/search"
)

// Default window and fact counts.
const (
	DefaultHoursBefore  = 24
	DefaultHoursAfter   = 24
	DefaultFactsPerFile = 5
)

// EventType identifies where an event came from.
type EventType string

const (
	EventDailyNote      EventType = "daily_note"
	EventKnowledgeGraph EventType = "knowledge_graph"
)

// Anchor selects the point a timeline is centered on. The first non-empty
// field in the order ID, Date, Query is used.
type Anchor struct {
	// ID is an entry id, optionally with the "mem-" citation prefix.
	ID string

	// Date is YYYY-MM-DD or an ISO date-time.
	Date string

	// Query is searched and the best match's day is used.
	Query string
}

// IsZero reports whether no anchor field is set.
func (a Anchor) IsZero() bool {
	return strings.TrimSpace(a.ID) == "" && strings.TrimSpace(a.Date) == "" && strings.TrimSpace(a.Query) == ""
}

// String describes the anchor for logs and telemetry.
func (a Anchor) String() string {
	switch {
	case strings.TrimSpace(a.ID) != "":
		return "id:" + a.ID
	case strings.TrimSpace(a.Date) != "":
		return "date:" + a.Date
	default:
		return "query:" + a.Query
	}
}

// Window is the day range a timeline covers.
type Window struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	HoursBefore int    `json:"hours_before"`
	HoursAfter  int    `json:"hours_after"`

	from time.Time
	to   time.Time
}

// newWindow spans [anchor-before, anchor+after] on the wall clock of the
// anchor's location and collapses it to days. A 24h window around a
// daylight-saving change still reaches the neighbouring calendar day.
func newWindow(anchor time.Time, hoursBefore, hoursAfter int) Window {
	y, m, d := anchor.Date()
	h, mi, s := anchor.Clock()
	ns, loc := anchor.Nanosecond(), anchor.Location()
	from := time.Date(y, m, d, h-hoursBefore, mi, s, ns, loc)
	to := time.Date(y, m, d, h+hoursAfter, mi, s, ns, loc)
	return Window{
		Start:       from.Format(dateLayout),
		End:         to.Format(dateLayout),
		HoursBefore: hoursBefore,
		HoursAfter:  hoursAfter,
		from:        from,
		to:          to,
	}
}

// containsDay compares YYYY-MM-DD strings lexically.
func (w Window) containsDay(day string) bool {
	return w.Start <= day && day <= w.End
}

// containsInstant reports whether t is inside the hour-precise window, inclusive.
func (w Window) containsInstant(t time.Time) bool {
	return !t.Before(w.from) && !t.After(w.to)
}

// Event is one dated happening in the window.
type Event struct {
	// Date is the event's day (YYYY-MM-DD), or the raw stored value when unparseable.
	Date   string    `json:"date"`
	Type   EventType `json:"type"`
	Text   string    `json:"event"`
	Source string    `json:"source"`
	Entity string    `json:"entity,omitempty"`

	at    time.Time
	dated bool
}

// Instant returns the event's normalized time and whether it has one.
func (e Event) Instant() (time.Time, bool) {
	return e.at, e.dated
}

// Result is a reconstructed timeline.
type Result struct {
	// Anchor is the entry the timeline was anchored on; nil for explicit dates.
	Anchor *search.Result `json:"anchor"`
	Window Window         `json:"time_window"`
	Events []Event        `json:"events"`
}

// Days groups events by their displayed date, preserving order.
func (r *Result) Days() []Day {
	var days []Day
	for _, ev := range r.Events {
		if n := len(days); n > 0 && days[n-1].Date == ev.Date {
			days[n-1].Events = append(days[n-1].Events, ev)
			continue
		}
		days = append(days, Day{Date: ev.Date, Events: []Event{ev}})
	}
	return days
}

// Day is a run of events sharing a displayed date.
type Day struct {
	Date   string
	Events []Event
}
