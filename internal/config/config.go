package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds all application configuration
type Config struct {
	// MongoDB Configuration
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// HTTP Server Configuration
	HTTPPort         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// Clinic time handling. All civil-time arithmetic (join windows,
	// appointment due checks) happens in this single fixed offset.
	ClinicUTCOffsetMinutes int

	// Meeting Configuration
	PreJoinWindow   time.Duration
	MeetingDuration time.Duration
	MaxParticipants int

	// Video Provider Configuration
	MeetBrokerURL   string
	MeetBrokerToken string
	ProviderTimeout time.Duration
	JitsiBaseURL    string

	// Invite Dispatch Configuration
	NotifyGatewayURL string
	NotifyTimeout    time.Duration

	// Sweeper Configuration
	SweepEnabled     bool
	SweepSchedule    string
	SweepLockTTL     time.Duration
	SweepConcurrency int
	SweepQueueSize   int

	// CORS Configuration
	CORSAllowedOrigins   string
	CORSAllowedMethods   string
	CORSAllowedHeaders   string
	CORSAllowCredentials bool
	CORSMaxAge           int
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		// MongoDB
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/clinova_consult?authSource=admin"),
		MongoDatabase: getEnv("MONGO_DATABASE", "clinova_consult"),
		MongoTimeout:  getDurationEnv("MONGO_TIMEOUT_SEC", 10) * time.Second,

		// HTTP Server
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		HTTPReadTimeout:  getDurationEnv("HTTP_READ_TIMEOUT_SEC", 30) * time.Second,
		HTTPWriteTimeout: getDurationEnv("HTTP_WRITE_TIMEOUT_SEC", 30) * time.Second,

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Clinic civil time (default UTC+07:00)
		ClinicUTCOffsetMinutes: getIntEnv("CLINIC_UTC_OFFSET_MINUTES", 420),

		// Meeting. The pre-join offset and duration are the single
		// authoritative values; nothing else may hardcode them.
		PreJoinWindow:   getDurationEnv("MEETING_PRE_JOIN_MINUTES", 5) * time.Minute,
		MeetingDuration: getDurationEnv("MEETING_DURATION_MINUTES", 60) * time.Minute,
		MaxParticipants: getIntEnv("MEETING_MAX_PARTICIPANTS", 2),

		// Video providers
		MeetBrokerURL:   getEnv("MEET_BROKER_URL", "http://localhost:9090"),
		MeetBrokerToken: getEnv("MEET_BROKER_TOKEN", ""),
		ProviderTimeout: getDurationEnv("PROVIDER_TIMEOUT_SEC", 10) * time.Second,
		JitsiBaseURL:    getEnv("JITSI_BASE_URL", "https://meet.jit.si"),

		// Invite dispatch
		NotifyGatewayURL: getEnv("NOTIFY_GATEWAY_URL", "http://localhost:9091/v1/notifications"),
		NotifyTimeout:    getDurationEnv("NOTIFY_TIMEOUT_SEC", 10) * time.Second,

		// Sweeper
		SweepEnabled:     getBoolEnv("SWEEP_ENABLED", true),
		SweepSchedule:    getEnv("SWEEP_SCHEDULE", "*/5 * * * *"),
		SweepLockTTL:     getDurationEnv("SWEEP_LOCK_TTL_SEC", 240) * time.Second,
		SweepConcurrency: getIntEnv("SWEEP_CONCURRENCY", 4),
		SweepQueueSize:   getIntEnv("SWEEP_QUEUE_SIZE", 256),

		// CORS
		CORSAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		CORSAllowedMethods:   getEnv("CORS_ALLOWED_METHODS", "GET, POST, OPTIONS"),
		CORSAllowedHeaders:   getEnv("CORS_ALLOWED_HEADERS", "*"),
		CORSAllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           getIntEnv("CORS_MAX_AGE", 3600),
	}
}

// Validate checks configuration values that would otherwise fail late
func (c *Config) Validate() error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.SweepSchedule); err != nil {
		return fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", c.SweepSchedule, err)
	}
	if c.MaxParticipants < 1 {
		return fmt.Errorf("MEETING_MAX_PARTICIPANTS must be at least 1, got %d", c.MaxParticipants)
	}
	if c.PreJoinWindow < 0 || c.MeetingDuration <= 0 {
		return fmt.Errorf("meeting window configuration must be positive")
	}
	return nil
}

// ClinicLocation returns the fixed civil-time zone all scheduling math uses
func (c *Config) ClinicLocation() *time.Location {
	return time.FixedZone("clinic", c.ClinicUTCOffsetMinutes*60)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal)
		}
		log.Printf("Warning: Invalid duration value for %s, using default %d", key, defaultValue)
	}
	return time.Duration(defaultValue)
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
	}
	return defaultValue
}
