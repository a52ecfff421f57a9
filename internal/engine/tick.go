// Package engine runs the campus simulation: a discrete-event schedule of
// monthly student and group steps bracketed by yearly enrollment and
// attrition.
package engine

import (
	"fmt"
	"math"
)

// Calendar. Time is measured in simulated months.
const (
	MonthsInAcademicYear = 9
	MonthsInSummer       = 3
	MonthsInYear         = MonthsInAcademicYear + MonthsInSummer
)

// Start-up and yearly offsets, in months.
const (
	initialPersonDelay  = 1.5
	initialGroupDelay   = 2.0
	initialControlDelay = 1.1
	freshmanDelay       = 1.4
	newGroupDelay       = 2.0
	monthlyDelay        = 1.0
	summerDelay         = MonthsInSummer + 1
)

// NextMonthInAcademicYear reports whether the month following now is a
// school month.
func NextMonthInAcademicYear(now float64) bool {
	month := int(math.Ceil(now)) % MonthsInYear
	return month < MonthsInAcademicYear
}

// CurrentYear returns the zero-based simulated year containing now.
func CurrentYear(now float64) int {
	return int(math.Floor(now / MonthsInYear))
}

// IsEndOfSim reports whether now lies past the last simulated year.
func IsEndOfSim(now float64, maxYears int) bool {
	return now/MonthsInYear > float64(maxYears)
}

// IsLastYear reports whether now falls in the final simulated year.
func IsLastYear(now float64, maxYears int) bool {
	return CurrentYear(now) >= maxYears-1
}

// SimTime returns a human-readable simulation time string.
func SimTime(now float64) string {
	if now < 0 {
		return "before start"
	}
	month := int(math.Floor(now)) % MonthsInYear
	season := "term"
	if month >= MonthsInAcademicYear {
		season = "summer"
	}
	return fmt.Sprintf("Year %d Month %d (%s)", CurrentYear(now)+1, month+1, season)
}
