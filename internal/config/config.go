package config

import (
	"fmt"
	"strings"
	"time"

	"staff_sync_backend/pkg/utils"

	"github.com/joho/godotenv"
)

// Check-in modes for repeated check-in/check-out cycles on the same day.
const (
	CheckInModeOverwrite  = "overwrite"
	CheckInModeAccumulate = "accumulate"
)

// Config holds all configuration
type Config struct {
	Port        string
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORSOrigins []string
	Attendance  AttendanceConfig
	Seed        SeedConfig
	LogLevel    string
	LogFormat   string
}

// DBConfig holds PostgreSQL connection settings
type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	ApplySchema bool
}

// DSN renders the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// AttendanceConfig controls how check-ins are turned into attendance rows.
type AttendanceConfig struct {
	CheckInMode string
	Location    *time.Location
	// LateAfter is minutes after local midnight; nil disables late marking.
	LateAfter *int
}

// SeedConfig describes the bootstrap administrator created on an empty roster.
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Enabled reports whether an admin should be seeded.
func (s SeedConfig) Enabled() bool {
	return s.AdminEmail != "" && s.AdminPassword != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	redisDB, err := utils.GetenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	expireMinutes, err := utils.GetenvInt("JWT_EXPIRE_MINUTES", 720)
	if err != nil {
		return nil, err
	}
	if expireMinutes <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE_MINUTES must be positive")
	}
	applySchema, err := utils.GetenvBool("DB_APPLY_SCHEMA", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port: utils.Getenv("PORT", "8080"),
		DB: DBConfig{
			Host:        utils.Getenv("DB_HOST", "localhost"),
			Port:        utils.Getenv("DB_PORT", "5432"),
			User:        utils.Getenv("DB_USER", "staff_sync_user"),
			Password:    utils.Getenv("DB_PASSWORD", "staff_sync_password"),
			Name:        utils.Getenv("DB_NAME", "staff_sync_db"),
			SSLMode:     utils.Getenv("DB_SSLMODE", "disable"),
			ApplySchema: applySchema,
		},
		Redis: RedisConfig{
			Addr:     utils.Getenv("REDIS_ADDR", "localhost:6379"),
			Password: utils.Getenv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: utils.Getenv("JWT_SECRET", ""),
			TTL:    time.Duration(expireMinutes) * time.Minute,
			Issuer: utils.Getenv("JWT_ISSUER", "staff-sync-backend"),
		},
		CORSOrigins: splitList(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		Seed: SeedConfig{
			AdminName:     utils.Getenv("SEED_ADMIN_NAME", "Admin User"),
			AdminEmail:    utils.Getenv("SEED_ADMIN_EMAIL", ""),
			AdminPassword: utils.Getenv("SEED_ADMIN_PASSWORD", ""),
		},
		LogLevel:  utils.Getenv("LOG_LEVEL", "info"),
		LogFormat: utils.Getenv("LOG_FORMAT", "console"),
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.Attendance, err = loadAttendance()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadAttendance() (AttendanceConfig, error) {
	mode := strings.ToLower(utils.Getenv("ATTENDANCE_CHECKIN_MODE", CheckInModeOverwrite))
	if mode != CheckInModeOverwrite && mode != CheckInModeAccumulate {
		return AttendanceConfig{}, fmt.Errorf("ATTENDANCE_CHECKIN_MODE must be %q or %q, got %q",
			CheckInModeOverwrite, CheckInModeAccumulate, mode)
	}

	tz := utils.Getenv("ATTENDANCE_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return AttendanceConfig{}, fmt.Errorf("ATTENDANCE_TIMEZONE: %w", err)
	}

	var lateAfter *int
	if raw := utils.Getenv("ATTENDANCE_LATE_AFTER", ""); raw != "" {
		minutes, err := ParseClock(raw)
		if err != nil {
			return AttendanceConfig{}, fmt.Errorf("ATTENDANCE_LATE_AFTER: %w", err)
		}
		lateAfter = &minutes
	}

	return AttendanceConfig{CheckInMode: mode, Location: loc, LateAfter: lateAfter}, nil
}

// ParseClock turns "HH:MM" into minutes after midnight.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
