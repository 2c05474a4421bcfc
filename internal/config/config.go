package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // Europe/Zurich must resolve on hosts without zoneinfo

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT" validate:"required"`
		Mode string `yaml:"mode" env:"SERVER_MODE" validate:"oneof=development production test"`
		// Archives of charge sheets take a while to stream, hence a separate write timeout.
		ReadTimeout     string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST" validate:"required"`
		Port            string `yaml:"port" env:"DB_PORT" validate:"required"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME" validate:"required"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" validate:"gte=1"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json text"`
	} `yaml:"logging"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL" validate:"omitempty,email"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS"`
	} `yaml:"smtp"`

	// Workload constants of a full-time teaching position, in periods per school year.
	Workload struct {
		MaxEnsPeriods   int `yaml:"max_ens_periods" env:"MAX_ENS_PERIODS" validate:"gt=0"`
		MaxEnsFormation int `yaml:"max_ens_formation" env:"MAX_ENS_FORMATION" validate:"gte=0"`
	} `yaml:"workload"`

	// Import maps external column names to internal attribute names.
	Import struct {
		StudentMapping     map[string]string `yaml:"student_mapping" env:"STUDENT_IMPORT_MAPPING" validate:"required"`
		CorporationMapping map[string]string `yaml:"corporation_mapping" env:"CORPORATION_IMPORT_MAPPING" validate:"required"`
		InstructorMapping  map[string]string `yaml:"instructor_mapping" env:"INSTRUCTOR_IMPORT_MAPPING" validate:"required"`
	} `yaml:"import"`

	Locale struct {
		Timezone string `yaml:"timezone" env:"TZ_NAME" validate:"required"`
		Language string `yaml:"language" env:"LANGUAGE_CODE"`
	} `yaml:"locale"`

	Documents struct {
		ChargeSheetTitle string `yaml:"charge_sheet_title" env:"CHARGE_SHEET_TITLE"`
		SignaturePlace   string `yaml:"signature_place" env:"SIGNATURE_PLACE"`
	} `yaml:"documents"`

	Storage struct {
		TempDir string `yaml:"temp_dir" env:"STORAGE_TEMP_DIR" validate:"required"`
	} `yaml:"storage"`
}

// LoadConfig loads configuration from a file and environment variables. A .env file next
// to the working directory is loaded first so its values act as environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "30s"
	config.Server.WriteTimeout = "2m"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "stages"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.FromName = "Secrétariat"

	config.Workload.MaxEnsPeriods = 1900
	config.Workload.MaxEnsFormation = 250

	config.Import.StudentMapping = map[string]string{
		"NO_CLOEE":        "ext_id",
		"NOM":             "last_name",
		"PRENOM":          "first_name",
		"RUE":             "street",
		"LOCALITE":        "city",
		"TEL_PRIVE":       "tel",
		"TEL_MOBILE":      "mobile",
		"EMAIL_RPN":       "email",
		"DATENAI":         "birth_date",
		"NAVS13":          "avs",
		"SEXE":            "gender",
		"NO_EMPLOYEUR":    "corporation",
		"NO_FORMATEUR":    "instructor",
		"CLASSE_ACTUELLE": "klass",
	}
	config.Import.CorporationMapping = map[string]string{
		"NO_EMPLOYEUR":       "ext_id",
		"EMPLOYEUR":          "name",
		"RUE_EMPLOYEUR":      "street",
		"LOCALITE_EMPLOYEUR": "city",
		"TEL_EMPLOYEUR":      "tel",
		"CANTON_EMPLOYEUR":   "district",
	}
	config.Import.InstructorMapping = map[string]string{
		"NO_FORMATEUR":     "ext_id",
		"NOM_FORMATEUR":    "last_name",
		"PRENOM_FORMATEUR": "first_name",
		"TEL_FORMATEUR":    "tel",
		"MAIL_FORMATEUR":   "email",
	}

	config.Locale.Timezone = "Europe/Zurich"
	config.Locale.Language = "fr"

	config.Documents.ChargeSheetTitle = "Feuille de charge pour l'année scolaire"
	config.Documents.SignaturePlace = "La Chaux-de-Fonds"

	config.Storage.TempDir = os.TempDir()
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime: %w", err)
	}
	for name, value := range map[string]string{
		"server read timeout":     config.Server.ReadTimeout,
		"server write timeout":    config.Server.WriteTimeout,
		"server shutdown timeout": config.Server.ShutdownTimeout,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if _, err := config.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Locale.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Locale.Timezone, err)
	}
	return loc, nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
