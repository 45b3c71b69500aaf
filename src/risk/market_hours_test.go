package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func istDate(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+30*60)
	}
	_ = t
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func TestCalendarCheck(t *testing.T) {
	cal := NewCalendar()

	tests := []struct {
		name        string
		at          time.Time
		wantOpen    bool
		wantSession Session
	}{
		{
			name:        "Tuesday mid-session is live",
			at:          istDate(t, 2026, time.February, 10, 11, 0),
			wantOpen:    true,
			wantSession: SessionLive,
		},
		{
			name:        "opening bell minute is live",
			at:          istDate(t, 2026, time.February, 10, 9, 15),
			wantOpen:    true,
			wantSession: SessionLive,
		},
		{
			name:        "closing bell minute is live",
			at:          istDate(t, 2026, time.February, 10, 15, 30),
			wantOpen:    true,
			wantSession: SessionLive,
		},
		{
			name:        "before open is pre-open",
			at:          istDate(t, 2026, time.February, 10, 8, 0),
			wantSession: SessionPreOpen,
		},
		{
			name:        "after close",
			at:          istDate(t, 2026, time.February, 10, 16, 0),
			wantSession: SessionAfterClose,
		},
		{
			name:        "Saturday is weekend",
			at:          istDate(t, 2026, time.February, 14, 11, 0),
			wantSession: SessionWeekend,
		},
		{
			name:        "Sunday is weekend",
			at:          istDate(t, 2026, time.February, 15, 11, 0),
			wantSession: SessionWeekend,
		},
		{
			name:        "Republic Day is a holiday",
			at:          istDate(t, 2026, time.January, 26, 11, 0),
			wantSession: SessionHoliday,
		},
		{
			name:        "Holi 2026 is a holiday",
			at:          istDate(t, 2026, time.March, 4, 11, 0),
			wantSession: SessionHoliday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := cal.Check(tt.at)
			require.Equal(t, tt.wantOpen, status.Open)
			require.Equal(t, tt.wantSession, status.Session)
			require.NotEmpty(t, status.Message)
		})
	}
}
