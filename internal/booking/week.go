package booking

import "time"

// WorkDays is the number of days booked per week, Monday through Friday.
const WorkDays = 5

// NextMonday returns now when it is a Monday, otherwise the coming Monday at
// the same wall-clock time.
func NextMonday(now time.Time) time.Time {
	offset := (8 - int(now.Weekday())) % 7
	return now.AddDate(0, 0, offset)
}

// WeekPlan lists the five weekdays starting at monday, keeping monday's time of day.
func WeekPlan(monday time.Time) []time.Time {
	days := make([]time.Time, WorkDays)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days
}
