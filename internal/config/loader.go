package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/room-booking/internal/logging"
)

// MemoryDSN selects the in-memory store instead of SQLite.
const MemoryDSN = "memory"

// Config captures the settings of the booking console.
type Config struct {
	StoreDSN           string        `yaml:"store_dsn"`
	Codec              string        `yaml:"codec"`
	Compress           bool          `yaml:"compress"`
	Latency            time.Duration `yaml:"latency"`
	DeletePolicy       string        `yaml:"delete_policy"`
	CascadeRoomDeletes bool          `yaml:"cascade_room_deletes"`
	SeedFile           string        `yaml:"seed_file"`
	LogLevel           string        `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		StoreDSN:     "roombooking.db",
		Codec:        "json",
		Latency:      500 * time.Millisecond,
		DeletePolicy: "admin-only",
		LogLevel:     "warn",
	}
}

// Load reads the file named by ROOMBOOKING_CONFIG, if any, and applies
// environment overrides on top.
func Load() (Config, error) {
	return LoadFile(strings.TrimSpace(os.Getenv("ROOMBOOKING_CONFIG")))
}

// LoadFile reads path as the base configuration and applies environment
// overrides on top. An empty path starts from Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	invalid := applyEnvironment(&cfg)
	invalid = append(invalid, validate(cfg)...)
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("некоректні значення конфігурації: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnvironment(cfg *Config) []string {
	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_STORE_DSN")); dsn != "" {
		cfg.StoreDSN = dsn
	}
	if codec := strings.TrimSpace(os.Getenv("ROOMBOOKING_CODEC")); codec != "" {
		cfg.Codec = codec
	}
	if value := strings.TrimSpace(os.Getenv("ROOMBOOKING_COMPRESS")); value != "" {
		compress, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "ROOMBOOKING_COMPRESS")
		} else {
			cfg.Compress = compress
		}
	}
	if value := strings.TrimSpace(os.Getenv("ROOMBOOKING_LATENCY")); value != "" {
		latency, err := time.ParseDuration(value)
		if err != nil {
			invalid = append(invalid, "ROOMBOOKING_LATENCY")
		} else {
			cfg.Latency = latency
		}
	}
	if policy := strings.TrimSpace(os.Getenv("ROOMBOOKING_DELETE_POLICY")); policy != "" {
		cfg.DeletePolicy = policy
	}
	if value := strings.TrimSpace(os.Getenv("ROOMBOOKING_CASCADE_ROOM_DELETES")); value != "" {
		cascade, err := strconv.ParseBool(value)
		if err != nil {
			invalid = append(invalid, "ROOMBOOKING_CASCADE_ROOM_DELETES")
		} else {
			cfg.CascadeRoomDeletes = cascade
		}
	}
	if seed := strings.TrimSpace(os.Getenv("ROOMBOOKING_SEED_FILE")); seed != "" {
		cfg.SeedFile = seed
	}
	if level := strings.TrimSpace(os.Getenv("ROOMBOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	return invalid
}

func validate(cfg Config) []string {
	invalid := make([]string, 0, 1)

	if strings.TrimSpace(cfg.StoreDSN) == "" {
		invalid = append(invalid, "store_dsn")
	}
	switch strings.ToLower(cfg.Codec) {
	case "json", "cbor":
	default:
		invalid = append(invalid, "codec")
	}
	if cfg.Latency < 0 {
		invalid = append(invalid, "latency")
	}
	switch strings.ToLower(cfg.DeletePolicy) {
	case "admin-only", "admin-or-author":
	default:
		invalid = append(invalid, "delete_policy")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		invalid = append(invalid, "log_level")
	}

	return invalid
}

// InMemory reports whether the configured store is the in-memory one.
func (c Config) InMemory() bool {
	return strings.EqualFold(strings.TrimSpace(c.StoreDSN), MemoryDSN)
}
