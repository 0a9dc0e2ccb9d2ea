package utils

import "time"

// DateLayout - формат дат в DTO (предпочтительные даты, дата возврата).
const DateLayout = "2006-01-02"

// TruncateToDay обнуляет время, оставляя календарный день в той же локации.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay сообщает, приходятся ли два момента на один календарный день.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CombineDateAndTime собирает момент "дата возврата + конец смены":
// календарный день берётся из date, время суток - из clockTime.
func CombineDateAndTime(date time.Time, clockTime time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		clockTime.Hour(), clockTime.Minute(), clockTime.Second(), 0,
		date.Location(),
	)
}
