// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-schedule/pkg/amortization"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
)

// FindPeriod finds a period by number in the schedule.
// Returns a pointer to the record if found, nil otherwise.
func FindPeriod(schedule amortization.Schedule, number int) *amortization.PeriodRecord {
	for i := range schedule {
		if schedule[i].PeriodNumber == number {
			return &schedule[i]
		}
	}
	return nil
}

// FindDueDate finds the period due on date (YYYY-MM-DD).
func FindDueDate(schedule amortization.Schedule, date string) *amortization.PeriodRecord {
	for i := range schedule {
		if schedule[i].DueDate.Format(constants.DateLayout) == date {
			return &schedule[i]
		}
	}
	return nil
}
