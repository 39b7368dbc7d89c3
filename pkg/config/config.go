// Package config loads cellplace.toml.
//
// Every setting is optional; a missing file yields [Default]. Command-line
// flags are applied on top by the CLI.
//
//	[engine]
//	candidates = 4
//	mode = "auto"          # auto | full | incremental
//	index = "grid"         # linear | grid
//	workers = 8
//	timeout = "30s"
//
//	[cache]
//	backend = "redis"      # file | redis | none
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"      # none | file | mongo
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/overlap"
	"github.com/matzehuels/cellplace/pkg/place"
	"github.com/matzehuels/cellplace/pkg/wirelength"
)

// FileName is the config file name looked up in the user config dir.
const FileName = "config.toml"

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the full configuration file.
type Config struct {
	Engine Engine `toml:"engine"`
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
}

// Engine holds placement settings.
type Engine struct {
	Candidates int      `toml:"candidates"`
	Threshold  int      `toml:"threshold"`
	Mode       string   `toml:"mode"`
	Index      string   `toml:"index"`
	GridCell   int      `toml:"grid_cell"`
	Workers    int      `toml:"workers"`
	Exhaustion string   `toml:"exhaustion"`
	MaxRounds  int      `toml:"max_rounds"`
	Timeout    Duration `toml:"timeout"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Store selects the run history backend.
type Store struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server configures `cellplace serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("30s", "1h").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: Engine{
			Candidates: place.DefaultCandidates,
			Threshold:  wirelength.DefaultThreshold,
			Mode:       place.ModeAuto,
			Index:      string(overlap.KindLinear),
			GridCell:   overlap.DefaultGridCell,
			Workers:    place.DefaultWorkers,
			Exhaustion: string(place.ExhaustFail),
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Store: Store{
			Backend: BackendFile,
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/cellplace/config.toml or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cellplace", FileName), nil
}

// Load reads path on top of Default. An empty path tries DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidOptions, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidOptions, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and backend requirements.
func (c Config) Validate() error {
	if err := c.Engine.Options().WithDefaults().Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidOptions, err, "[engine]")
	}
	if c.Engine.Timeout.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "[engine] timeout must not be negative")
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if err := errs.ValidateURI(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidOptions, err, "[cache] redis_url")
		}
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "[cache] unknown backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case BackendNone, BackendFile:
	case BackendMongo:
		if err := errs.ValidateURI(c.Store.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidOptions, err, "[store] mongo_uri")
		}
	default:
		return errs.New(errs.ErrCodeInvalidOptions, "[store] unknown backend %q (must be one of: none, file, mongo)", c.Store.Backend)
	}
	return nil
}

// Options converts the engine section to placement options.
func (e Engine) Options() place.Options {
	return place.Options{
		Candidates: e.Candidates,
		Threshold:  e.Threshold,
		Mode:       e.Mode,
		Index:      overlap.Kind(e.Index),
		GridCell:   e.GridCell,
		Workers:    e.Workers,
		Exhaustion: place.Exhaustion(e.Exhaustion),
		MaxRounds:  e.MaxRounds,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
