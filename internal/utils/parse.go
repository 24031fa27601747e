package utils

import (
	"courtbooking/internal/db"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDate resolves operator-typed date text to midnight of that day in loc.
// The canonical YYYY-MM-DD form is tried first, then a general date parser.
func ParseDate(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.ParseInLocation(db.DateLayout, text, loc); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(text, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q: %w", text, err)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseTimeSlot normalises a slot to HH:MM. Without a colon the value is read as a
// spreadsheet day fraction (0.5 is noon) and otherwise as an hour number.
func ParseTimeSlot(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty time")
	}
	if strings.Contains(text, ":") {
		parts := strings.Split(text, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return "", fmt.Errorf("unrecognised time %q", text)
		}
		h, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
		m, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
			return "", fmt.Errorf("unrecognised time %q", text)
		}
		return fmt.Sprintf("%02d:%02d", h, m), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f >= 0 && f < 1 {
		minutes := int(math.Round(f * 24 * 60))
		if minutes == 24*60 {
			minutes--
		}
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), nil
	}
	h, err := db.ParseInt(text)
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("unrecognised time %q", text)
	}
	return fmt.Sprintf("%02d:00", h), nil
}

// ParseCourt accepts "3" as well as spreadsheet-style "3.0".
func ParseCourt(text string) (int, error) {
	n, err := db.ParseInt(text)
	if err != nil {
		return 0, fmt.Errorf("unrecognised court %q", text)
	}
	return n, nil
}

// NormalizeName is the comparison form of a customer name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SameDay compares calendar days, ignoring time of day and zone.
func SameDay(a, b time.Time) bool {
	return a.Format(db.DateLayout) == b.Format(db.DateLayout)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
