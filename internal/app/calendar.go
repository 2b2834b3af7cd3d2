package app

import "time"

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in month (1..12) of year.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month-1]
}

// FirstWeekday returns the weekday of the first day of the month, Sunday = 0.
func FirstWeekday(year, month int) int {
	return int(time.Date(year, time.Month(month), 1, 12, 0, 0, 0, time.UTC).Weekday())
}

// Prev returns the previous month, borrowing from the year past January.
func (c CalendarState) Prev() CalendarState {
	if c.Month <= 1 {
		return CalendarState{Year: c.Year - 1, Month: 12}
	}
	return CalendarState{Year: c.Year, Month: c.Month - 1}
}

// Next returns the following month, carrying into the year past December.
func (c CalendarState) Next() CalendarState {
	if c.Month >= 12 {
		return CalendarState{Year: c.Year + 1, Month: 1}
	}
	return CalendarState{Year: c.Year, Month: c.Month + 1}
}
