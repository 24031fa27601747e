package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, "Bookings", cfg.BookingsSheet)
	assert.Equal(t, "📥 Booking Requests", cfg.RequestsSheet)
	assert.Equal(t, 4, cfg.CourtCount)
	assert.Equal(t, 8, cfg.OpeningHour)
	assert.Equal(t, 22, cfg.ClosingHour)
	assert.Equal(t, 7, cfg.DashboardDays)
	assert.Equal(t, "Asia/Taipei", cfg.TimeZone)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled())
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORE_BACKEND=memory\nCOURT_COUNT=6\nKAFKA_BROKERS=k1:9092,k2:9092\n"), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"STORE_BACKEND", "COURT_COUNT", "KAFKA_BROKERS"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.CourtCount)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"sheets without id", map[string]string{"STORE_BACKEND": "sheets", "GOOGLE_CREDENTIALS_PATH": "creds.json"}},
		{"postgres without url", map[string]string{"STORE_BACKEND": "postgres"}},
		{"unknown backend", map[string]string{"STORE_BACKEND": "excel"}},
		{"no courts", map[string]string{"STORE_BACKEND": "memory", "COURT_COUNT": "0"}},
		{"closing before opening", map[string]string{"STORE_BACKEND": "memory", "OPENING_HOUR": "10", "CLOSING_HOUR": "9"}},
		{"bad zone", map[string]string{"STORE_BACKEND": "memory", "TIME_ZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestTimeSlotsAndCourts(t *testing.T) {
	cfg := Default()
	cfg.OpeningHour, cfg.ClosingHour, cfg.CourtCount = 8, 11, 2

	assert.Equal(t, []string{"08:00", "09:00", "10:00"}, cfg.TimeSlots())
	assert.Equal(t, []int{1, 2}, cfg.Courts())
	assert.True(t, cfg.IsOperatingSlot("10:00"))
	assert.False(t, cfg.IsOperatingSlot("11:00"))
	assert.False(t, cfg.IsOperatingSlot("10:30"))
}

func TestTabs(t *testing.T) {
	tabs := Default().Tabs()
	assert.Len(t, tabs, 5)
	assert.Contains(t, tabs, "📁 Requests Archive")
}
