package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListen          = ":9400"
	DefaultDelimiter       = "^"
	DefaultFormat          = "json"
	DefaultMaxMessageBytes = 64 * 1024
)

// Config drives the decoder, the CLI and the HTTP service.
type Config struct {
	Name             string
	Dictionary       string
	StrictDictionary bool
	Delimiter        string
	Format           string
	Listen           string
	CorsOrigins      []string
	MaxMessageBytes  int64
	// AuthToken, when set, is required as a bearer token on POST /decode.
	AuthToken        string
}

type fileConfig struct {
	Name             string   `toml:"name"`
	Dictionary       string   `toml:"dictionary"`
	StrictDictionary bool     `toml:"strict_dictionary"`
	Delimiter        string   `toml:"delimiter"`
	Format           string   `toml:"format"`
	Listen           string   `toml:"listen"`
	CorsOrigins      []string `toml:"cors_origins"`
	MaxMessageBytes  int64    `toml:"max_message_bytes"`
	AuthToken        string   `toml:"auth_token"`
}

func DefaultConfig() Config {
	return Config{
		Name:            "fixctl",
		Delimiter:       DefaultDelimiter,
		Format:          DefaultFormat,
		Listen:          DefaultListen,
		CorsOrigins:     []string{"http://localhost:3000"},
		MaxMessageBytes: DefaultMaxMessageBytes,
	}
}

// Load reads path over DefaultConfig; only keys present in the file
// override defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("dictionary") {
		cfg.Dictionary = strings.TrimSpace(raw.Dictionary)
	}
	if meta.IsDefined("strict_dictionary") {
		cfg.StrictDictionary = raw.StrictDictionary
	}
	if meta.IsDefined("delimiter") {
		cfg.Delimiter = raw.Delimiter
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}
	if meta.IsDefined("max_message_bytes") {
		cfg.MaxMessageBytes = raw.MaxMessageBytes
	}
	if meta.IsDefined("auth_token") {
		cfg.AuthToken = strings.TrimSpace(raw.AuthToken)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if _, err := ParseDelimiter(cfg.Delimiter); err != nil {
		return err
	}
	switch cfg.Format {
	case "json", "yaml", "cbor":
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or cbor)", cfg.Format)
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		return fmt.Errorf("config missing listen")
	}
	if cfg.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", cfg.MaxMessageBytes)
	}
	if cfg.StrictDictionary && cfg.Dictionary == "" {
		return fmt.Errorf("strict_dictionary requires dictionary")
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
