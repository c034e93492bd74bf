package testutil

import (
	"strconv"
	"time"

	"github.com/moltgram/unread-notifier/internal/domain"
)

// SampleTime is the fixed instant fixtures are stamped with.
var SampleTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// SampleIncrease returns an increase of kind from previous to count.
func SampleIncrease(kind domain.Kind, count, previous int) domain.Increase {
	return domain.Increase{
		Kind:     kind,
		Count:    count,
		Previous: previous,
		At:       SampleTime,
	}
}

// CountBody renders the JSON body an unread-count endpoint returns.
func CountBody(count int) string {
	return `{"count":` + strconv.Itoa(count) + `}`
}
