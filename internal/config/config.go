package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-attendance/internal/geofence"
)

//go:embed default_zones.yaml
var defaultZonesYAML []byte

type Config struct {
	Embedding   EmbeddingConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Recognition RecognitionConfig
}

type EmbeddingConfig struct {
	URL   string // defaults to http://localhost:8000
	Model string // defaults to buffalo_l
	Dim   int    // defaults to 512, fixed by the upstream model
}

type StoreConfig struct {
	FaceDBPath        string // identity database JSON file
	SitesPath         string // geofence zones JSON file
	AttendanceLogPath string // append-only attendance CSV
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty selects the file store
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RecognitionConfig struct {
	Threshold    float64 // default similarity threshold (0.50)
	MaxAccuracyM float64 // GPS fixes less precise than this are rejected (default 5000)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			URL:   os.Getenv("EMBEDDING_URL"),
			Model: os.Getenv("EMBEDDING_MODEL"),
			Dim:   envInt("EMBEDDING_DIM", 512),
		},
		Store: StoreConfig{
			FaceDBPath:        envString("FACE_DB_PATH", "face_db.json"),
			SitesPath:         envString("SITES_PATH", "allowed_sites.json"),
			AttendanceLogPath: envString("ATTENDANCE_LOG_PATH", "attendance.csv"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Recognition: RecognitionConfig{
			Threshold:    envFloat("MATCH_THRESHOLD", 0.50),
			MaxAccuracyM: envFloat("GPS_MAX_ACCURACY_M", 5000),
		},
	}
}

type zoneSeed struct {
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
	RadiusM float64 `yaml:"radius_m"`
}

type zonesFile struct {
	Zones map[string][]zoneSeed `yaml:"zones"`
}

// DefaultZones returns the embedded fallback zones used to seed the
// geofence registry when no sites file exists yet.
func DefaultZones() map[string][]geofence.Zone {
	var parsed zonesFile
	if err := yaml.Unmarshal(defaultZonesYAML, &parsed); err != nil {
		// The file is embedded at compile time, so this cannot happen with
		// a healthy build.
		panic("failed to unmarshal embedded default_zones.yaml: " + err.Error())
	}

	seed := make(map[string][]geofence.Zone, len(parsed.Zones))
	for code, zones := range parsed.Zones {
		converted := make([]geofence.Zone, 0, len(zones))
		for _, z := range zones {
			converted = append(converted, geofence.Zone{Lat: z.Lat, Lng: z.Lng, RadiusM: z.RadiusM})
		}
		seed[code] = converted
	}
	return seed
}
