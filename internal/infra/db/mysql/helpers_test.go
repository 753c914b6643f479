package mysql

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

func TestStringOrDash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"   ", "-"},
		{"deps", "deps"},
	}
	for _, tt := range tests {
		if got := stringOrDash(tt.in); got != tt.want {
			t.Errorf("stringOrDash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONColumn(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"values", []string{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jsonColumn(tt.in); got != tt.want {
				t.Errorf("jsonColumn = %s, want %s", got, tt.want)
			}
		})
	}
}
