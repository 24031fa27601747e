package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the immutable settings value handed to every component.
type Config struct {
	Backend               string `envconfig:"STORE_BACKEND" default:"sheets" validate:"oneof=sheets postgres memory"`
	GoogleCredentialsPath string `envconfig:"GOOGLE_CREDENTIALS_PATH" validate:"required_if=Backend sheets"`
	SheetID               string `envconfig:"SHEET_ID" validate:"required_if=Backend sheets"`
	DatabaseURL           string `envconfig:"DATABASE_URL" validate:"required_if=Backend postgres"`

	BookingsSheet        string `envconfig:"BOOKINGS_SHEET" default:"Bookings" validate:"required"`
	DashboardSheet       string `envconfig:"DASHBOARD_SHEET" default:"Availability Dashboard" validate:"required"`
	RequestsSheet        string `envconfig:"REQUESTS_SHEET" default:"📥 Booking Requests" validate:"required"`
	BookingsArchiveSheet string `envconfig:"BOOKINGS_ARCHIVE_SHEET" default:"📁 Bookings Archive" validate:"required"`
	RequestsArchiveSheet string `envconfig:"REQUESTS_ARCHIVE_SHEET" default:"📁 Requests Archive" validate:"required"`

	CourtCount     int    `envconfig:"COURT_COUNT" default:"4" validate:"min=1,max=50"`
	OpeningHour    int    `envconfig:"OPENING_HOUR" default:"8" validate:"min=0,max=23"`
	ClosingHour    int    `envconfig:"CLOSING_HOUR" default:"22" validate:"max=24,gtfield=OpeningHour"`
	MaxAdvanceDays int    `envconfig:"MAX_ADVANCE_DAYS" default:"14" validate:"min=0"`
	DashboardDays  int    `envconfig:"DASHBOARD_DAYS" default:"7" validate:"min=1,max=31"`
	TimeZone       string `envconfig:"TIME_ZONE" default:"Asia/Taipei" validate:"required"`

	SyncSchedule string `envconfig:"SYNC_SCHEDULE" default:"*/5 * * * *"`
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"`

	JWTSecret         string `envconfig:"JWT_SECRET"`
	AdminEmail        string `envconfig:"ADMIN_EMAIL"`
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	RunLockTTL   time.Duration `envconfig:"RUN_LOCK_TTL" default:"10m"`
	KafkaBrokers []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string        `envconfig:"KAFKA_TOPIC" default:"court.reservations"`

	SendGridAPIKey    string `envconfig:"SENDGRID_API_KEY"`
	SendGridFromEmail string `envconfig:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `envconfig:"SENDGRID_FROM_NAME" default:"Court Desk"`
	TwilioAccountSID  string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber  string `envconfig:"TWILIO_FROM_NUMBER"`

	StoreMaxRetries         int `envconfig:"STORE_MAX_RETRIES" default:"3" validate:"min=1,max=10"`
	SheetsRequestsPerMinute int `envconfig:"SHEETS_REQUESTS_PER_MINUTE" default:"60" validate:"min=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

var validate = validator.New()

// Load reads an optional dotenv file and decodes the environment into a Config.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in settings, useful for tests and the memory backend.
func Default() *Config {
	return &Config{
		Backend:                 BackendMemory,
		BookingsSheet:           "Bookings",
		DashboardSheet:          "Availability Dashboard",
		RequestsSheet:           "📥 Booking Requests",
		BookingsArchiveSheet:    "📁 Bookings Archive",
		RequestsArchiveSheet:    "📁 Requests Archive",
		CourtCount:              4,
		OpeningHour:             8,
		ClosingHour:             22,
		MaxAdvanceDays:          14,
		DashboardDays:           7,
		TimeZone:                "Asia/Taipei",
		SyncSchedule:            "*/5 * * * *",
		HTTPAddr:                ":8080",
		RunLockTTL:              10 * time.Minute,
		KafkaTopic:              "court.reservations",
		SendGridFromName:        "Court Desk",
		StoreMaxRetries:         3,
		SheetsRequestsPerMinute: 60,
		LogLevel:                "info",
		LogFormat:               "text",
	}
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid configuration: unknown time zone %q: %w", c.TimeZone, err)
	}
	return nil
}

// Location is the reference zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		// only reachable for a Config that skipped Validate
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// TimeSlots lists the hourly labels of the operating window, e.g. "08:00".."21:00".
func (c *Config) TimeSlots() []string {
	slots := make([]string, 0, c.ClosingHour-c.OpeningHour)
	for h := c.OpeningHour; h < c.ClosingHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

func (c *Config) Courts() []int {
	courts := make([]int, c.CourtCount)
	for i := range courts {
		courts[i] = i + 1
	}
	return courts
}

func (c *Config) IsOperatingSlot(slot string) bool {
	for _, s := range c.TimeSlots() {
		if s == slot {
			return true
		}
	}
	return false
}

// Tabs lists every tab the workspace needs.
func (c *Config) Tabs() []string {
	return []string{c.BookingsSheet, c.DashboardSheet, c.RequestsSheet, c.BookingsArchiveSheet, c.RequestsArchiveSheet}
}

func (c *Config) NotificationsEnabled() bool {
	return c.SendGridAPIKey != "" || c.TwilioAccountSID != ""
}

func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.KafkaBrokers[0]) != ""
}
