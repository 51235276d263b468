package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server         ServerConfig         `json:"server"`
	Database       DatabaseConfig       `json:"database"`
	Auth           AuthConfig           `json:"auth"`
	CompaniesHouse CompaniesHouseConfig `json:"companies_house"`
	Email          EmailConfig          `json:"email"`
	Reminders      RemindersConfig      `json:"reminders"`
	Practice       PracticeConfig       `json:"practice"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// AuthConfig holds session settings
type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// CompaniesHouseConfig holds register API access
type CompaniesHouseConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

// EmailConfig holds outbound mail settings
type EmailConfig struct {
	Region string `json:"region"`
	Sender string `json:"sender"`
}

// RemindersConfig controls the deadline reminder scan
type RemindersConfig struct {
	Enabled     bool   `json:"enabled"`
	CronSpec    string `json:"cron_spec"`
	OffsetsDays []int  `json:"offsets_days"`
}

// PracticeConfig holds firm identity used on letters and email
type PracticeConfig struct {
	Name string `json:"name"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Default config
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "practice_portal",
			SSLMode: "disable",
		},
		Auth: AuthConfig{
			TokenTTL: 12 * time.Hour,
		},
		Reminders: RemindersConfig{
			Enabled: true,
		},
		Practice: PracticeConfig{
			Name: "Ledgerline Accountants",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if key := os.Getenv("COMPANIES_HOUSE_API_KEY"); key != "" {
		config.CompaniesHouse.APIKey = key
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.Email.Region = region
	}
	if sender := os.Getenv("EMAIL_SENDER"); sender != "" {
		config.Email.Sender = sender
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
