package utils

import "time"

// Indian Standard Time (+05:30); shop hours are evaluated in shop-local time.
var istLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+1800)
}()

func NowUnixSeconds() int64 { return time.Now().Unix() }

func NowIST() time.Time { return time.Now().In(istLoc) }

// FromUnixSecondsIST converts an epoch value in seconds to IST.
// Returns zero time if t<=0 to let callers decide how to render.
func FromUnixSecondsIST(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(istLoc)
}

// IsOffHours reports whether t falls in the 22:00-06:00 window, the period
// the anomaly detector treats as unusual for kirana trade.
func IsOffHours(t time.Time) bool {
	hour := t.In(istLoc).Hour()
	return hour >= 22 || hour < 6
}

// DayBoundsIST returns the [start, end) unix-second bounds of the IST calendar
// day containing t.
func DayBoundsIST(t time.Time) (int64, int64) {
	local := t.In(istLoc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, istLoc)
	return start.Unix(), start.AddDate(0, 0, 1).Unix()
}

// ParseBatchDate parses a YYYY-MM-DD aggregation date in IST.
func ParseBatchDate(date string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", date, istLoc)
}

func FormatRFC3339IST(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(istLoc).Format(time.RFC3339)
}
