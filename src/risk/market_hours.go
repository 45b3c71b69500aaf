package risk

import (
	"fmt"
	"time"
)

// ----- session labels -----

type Session string

const (
	SessionLive       Session = "live"
	SessionPreOpen    Session = "pre_open"
	SessionAfterClose Session = "after_close"
	SessionWeekend    Session = "weekend"
	SessionHoliday    Session = "holiday"
)

// NSE/BSE regular trading window, Indian Standard Time.
const (
	openHour    = 9
	openMinute  = 15
	closeHour   = 15
	closeMinute = 30
)

// Status is the market-hours verdict for one instant. Message feeds the
// heartbeat record shown on the dashboard.
type Status struct {
	Open    bool
	Session Session
	Message string
}

// Calendar answers "is the market open" for NSE/BSE. The movable festival
// holidays cannot be computed, so they live in a year-keyed table alongside
// the fixed national dates.
type Calendar struct {
	location *time.Location
}

// NewCalendar loads the IST location. A host without tzdata falls back to
// a fixed +05:30 zone, which is equivalent for this calendar.
func NewCalendar() *Calendar {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+30*60)
	}
	return &Calendar{location: loc}
}

// Check classifies an instant against weekday, holiday calendar and the
// 09:15-15:30 trading window.
func (c *Calendar) Check(now time.Time) Status {
	ist := now.In(c.location)

	if ist.Weekday() == time.Saturday || ist.Weekday() == time.Sunday {
		return Status{Session: SessionWeekend, Message: "Market closed (weekend)"}
	}

	if name, ok := holidayName(ist); ok {
		return Status{Session: SessionHoliday, Message: fmt.Sprintf("Market closed (%s)", name)}
	}

	open := time.Date(ist.Year(), ist.Month(), ist.Day(), openHour, openMinute, 0, 0, c.location)
	closeAt := time.Date(ist.Year(), ist.Month(), ist.Day(), closeHour, closeMinute, 0, 0, c.location)

	if ist.Before(open) {
		wait := open.Sub(ist).Round(time.Minute)
		return Status{
			Session: SessionPreOpen,
			Message: fmt.Sprintf("Market opens at 09:15 IST (in %s)", wait),
		}
	}
	if ist.After(closeAt) {
		return Status{Session: SessionAfterClose, Message: "Market closed for today (after 15:30 IST)"}
	}

	return Status{Open: true, Session: SessionLive, Message: "Market is LIVE"}
}

// fixed-date national holidays observed by NSE every year
var fixedHolidays = map[[2]int]string{
	{int(time.January), 26}:  "Republic Day",
	{int(time.April), 14}:    "Ambedkar Jayanti",
	{int(time.May), 1}:       "Maharashtra Day",
	{int(time.August), 15}:   "Independence Day",
	{int(time.October), 2}:   "Gandhi Jayanti",
	{int(time.December), 25}: "Christmas",
}

// movable festival holidays by year (lunar calendar, published by NSE)
var festivalHolidays = map[[3]int]string{
	{2025, int(time.March), 14}:   "Holi",
	{2025, int(time.October), 21}: "Diwali",
	{2026, int(time.March), 4}:    "Holi",
	{2026, int(time.November), 8}: "Diwali",
}

func holidayName(t time.Time) (string, bool) {
	if name, ok := fixedHolidays[[2]int{int(t.Month()), t.Day()}]; ok {
		return name, true
	}
	if name, ok := festivalHolidays[[3]int{t.Year(), int(t.Month()), t.Day()}]; ok {
		return name, true
	}
	return "", false
}
