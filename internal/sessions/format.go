package sessions

import (
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
)

const (
	dateLayout = "Monday, January 2, 2006"
	timeLayout = "3:04 PM"
)

// FormatDate renders a session date the way the site shows it,
// e.g. "Monday, June 1, 2025".
func FormatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

// FormatTimeRange renders a start and end time, e.g. "4:00 PM - 5:15 PM".
func FormatTimeRange(start, end time.Time, loc *time.Location) string {
	if loc != nil {
		start = start.In(loc)
		end = end.In(loc)
	}
	return start.Format(timeLayout) + " - " + end.Format(timeLayout)
}

// FormatSchedule renders a session's full date and time block.
func FormatSchedule(session *models.GroupSession, loc *time.Location) (string, string) {
	end := EndTime(session)
	return FormatDate(session.SessionDate, loc), FormatTimeRange(session.SessionDate, end, loc)
}
