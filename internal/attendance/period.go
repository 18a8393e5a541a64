package attendance

import "time"

// Period classifies a local time into one of four day periods. Intervals
// are half-open (left-inclusive, right-exclusive) and cover the full day:
//
//	[05:00, 11:00) morning
//	[11:00, 13:30) noon
//	[13:30, 17:00) afternoon
//	everything else evening
func Period(t time.Time) string {
	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes >= 5*60 && minutes < 11*60:
		return "morning"
	case minutes >= 11*60 && minutes < 13*60+30:
		return "noon"
	case minutes >= 13*60+30 && minutes < 17*60:
		return "afternoon"
	default:
		return "evening"
	}
}
