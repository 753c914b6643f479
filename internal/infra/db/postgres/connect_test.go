package postgres

import (
	"testing"
	"time"
)

func TestNullableTimestamp(t *testing.T) {
	// a job row is first written at queue time, before any attempt started
	if got := nullableTimestamp(time.Time{}); got.Valid {
		t.Errorf("zero time = %v, want NULL", got)
	}

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got := nullableTimestamp(at)
	if !got.Valid || !got.Time.Equal(at) {
		t.Errorf("set time = %v, want valid %v", got, at)
	}
}

func TestNullableTime(t *testing.T) {
	if got := nullableTime(nil); got.Valid {
		t.Errorf("nil = %v, want NULL", got)
	}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got := nullableTime(&at)
	if !got.Valid || !got.Time.Equal(at) {
		t.Errorf("set time = %v, want valid %v", got, at)
	}
}
