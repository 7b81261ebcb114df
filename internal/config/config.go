package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dominic0df/2023-amse/internal/db"
	"github.com/dominic0df/2023-amse/internal/graph"
	"github.com/dominic0df/2023-amse/internal/timetable"
)

// Config holds all configuration for the pipeline binaries and the API
type Config struct {
	// Sink
	SinkDriver   string
	DatabasePath string
	DatabaseURL  string

	// Stage 1 source
	SourceURL      string
	SourceEncoding string

	// Side artifact shared between the stages
	TownSetPath   string
	TownSetMaxAge time.Duration

	// Stage 2 remote API
	TimetableBaseURL string
	CredentialsFile  string
	RateLimit        int

	// HTTP
	MaxAttempts int
	RetryDelay  time.Duration
	HTTPTimeout time.Duration

	// Output tables
	ConnectionsTable string
	TimetableTable   string
	TownsTable       string
	StationsTable    string

	// API
	Port string

	Debug bool

	Namespaces graph.Namespaces
}

// LoadDotEnv loads .env, then lets .env.local override it. Missing files are ignored.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	ns := graph.DefaultNamespaces()
	ns.EntityIRI = getEnv("NS_ENTITY", ns.EntityIRI)
	ns.OntologyIRI = getEnv("NS_ONTOLOGY", ns.OntologyIRI)
	ns.SchemaIRI = getEnv("NS_SCHEMA", ns.SchemaIRI)
	ns.DBpediaIRI = getEnv("NS_DBPEDIA", ns.DBpediaIRI)
	ns.WikidataIRI = getEnv("NS_WIKIDATA", ns.WikidataIRI)

	return &Config{
		SinkDriver:   getEnv("SINK_DRIVER", "sqlite"),
		DatabasePath: getEnv("SQLITE_DATABASE", "data/data.sqlite"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		SourceURL:      getEnv("SOURCE_URL", "https://mobilithek.info/mdp-api/files/aux/573356838940979200/moin-2022-05-02.1-20220502.131229-1.ttl.bz2"),
		SourceEncoding: getEnv("SOURCE_ENCODING", "utf-8"),

		TownSetPath:   getEnv("TOWNSET_PATH", "data/towns.json"),
		TownSetMaxAge: time.Duration(getEnvInt("TOWNSET_MAX_AGE_HOURS", 168)) * time.Hour,

		TimetableBaseURL: getEnv("TIMETABLE_BASE_URL", "https://apis.deutschebahn.com/db-api-marketplace/apis/timetables/v1"),
		CredentialsFile:  getEnv("CREDENTIALS_FILE", "config/credentials.yaml"),
		RateLimit:        getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		MaxAttempts: getEnvInt("MAX_ATTEMPTS", 3),
		RetryDelay:  time.Duration(getEnvInt("RETRY_DELAY_SECONDS", 5)) * time.Second,
		HTTPTimeout: time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 120)) * time.Second,

		ConnectionsTable: getEnv("CONNECTIONS_TABLE", "connections"),
		TimetableTable:   getEnv("TIMETABLE_TABLE", "timetable_changes"),
		TownsTable:       getEnv("TOWNS_TABLE", "towns"),
		StationsTable:    getEnv("STATIONS_TABLE", "town_stations"),

		Port: getEnv("PORT", "8081"),

		Debug: getEnvBool("DEBUG", false),

		Namespaces: ns,
	}
}

// Validate rejects settings the binaries cannot run with.
func (c *Config) Validate() error {
	switch c.SinkDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SINK_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown SINK_DRIVER %q", c.SinkDriver)
	}

	for _, name := range []string{c.ConnectionsTable, c.TimetableTable, c.TownsTable, c.StationsTable} {
		if err := db.ValidateIdentifier(name); err != nil {
			return err
		}
	}

	if c.RateLimit < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimit)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	}
	if c.Namespaces.EntityIRI == "" || c.Namespaces.OntologyIRI == "" {
		return fmt.Errorf("entity and ontology namespaces must not be empty")
	}
	return nil
}

// LoadCredentials reads and validates the YAML credential file.
func LoadCredentials(path string) (timetable.Credentials, error) {
	var creds timetable.Credentials

	data, err := os.ReadFile(path)
	if err != nil {
		return creds, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	v := validator.New()
	if err := v.Struct(creds); err != nil {
		return creds, fmt.Errorf("invalid credentials file %s: %w", path, err)
	}
	return creds, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
