package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("CST", 8*60*60)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, taipei)
	for _, text := range []string{"2024-06-10", " 2024-06-10 ", "2024/06/10", "Jun 10, 2024"} {
		got, err := ParseDate(text, taipei)
		require.NoError(t, err, text)
		assert.True(t, want.Equal(got), "%s parsed as %s", text, got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, text := range []string{"", "   ", "soon", "2024-13-45"} {
		_, err := ParseDate(text, taipei)
		assert.Error(t, err, text)
	}
}

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"10:00", "10:00"},
		{"9:00", "09:00"},
		{"09:30", "09:30"},
		{"10:00:00", "10:00"},
		{"0.5", "12:00"},
		{"0.4166666667", "10:00"},
		{"0.75", "18:00"},
		{"0", "00:00"},
		{"10", "10:00"},
		{"10.0", "10:00"},
		{" 21 ", "21:00"},
	}
	for _, tt := range tests {
		got, err := ParseTimeSlot(tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestParseTimeSlotRejects(t *testing.T) {
	for _, text := range []string{"", "noon", "24:00", "10:75", "25", "10.5", "1:2:3:4"} {
		_, err := ParseTimeSlot(text)
		assert.Error(t, err, text)
	}
}

func TestParseCourt(t *testing.T) {
	n, err := ParseCourt("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ParseCourt("2.0")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ParseCourt("2.5")
	assert.Error(t, err)
	_, err = ParseCourt("")
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "alice", NormalizeName("  Alice "))
	assert.Equal(t, NormalizeName("BOB"), NormalizeName("bob"))
}

func TestStartOfDayUsesZone(t *testing.T) {
	// 2024-06-09 20:00 UTC is already the 10th in Taipei
	utc := time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC)
	got := StartOfDay(utc, taipei)
	assert.Equal(t, "2024-06-10", got.Format("2006-01-02"))
	assert.Equal(t, 0, got.Hour())
	assert.True(t, SameDay(got, time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)))
}
