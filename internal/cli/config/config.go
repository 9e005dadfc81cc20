// Package config loads the advisor's run parameters: a flat key/value map
// read from indexadvisor.yml and the ADVISOR_ environment, validated
// against the algorithm's known keys before anything runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/indexadvisor/internal/advisor/extend"
)

// knownKeys is the complete set of parameters the Extend algorithm and its
// surrounding connector/server plumbing understand. Anything else in the
// config file or environment is a typo, not an extension point.
var knownKeys = map[string]bool{
	"budget_mb":             true,
	"max_index_width":       true,
	"min_cost_improvement":  true,
	"max_indexes":           true,
	"constraint":            true,
	"score_func":            true,
	"connector":             true,
	"dsn":                   true,
	"cache_size":            true,
	"cache_backend":         true,
	"redis_addr":            true,
	"estimator_mode":        true,
	"estimator_multiplier":  true,
	"server_addr":           true,
	"auth_secret":           true,
	"auth_api_key_hash":     true,
	"log_level":             true,
}

// DefaultParameters mirrors the algorithm's own defaults, applied for any
// key the config file and environment both leave unset.
var DefaultParameters = map[string]any{
	"budget_mb":            int64(0),
	"max_index_width":      4,
	"min_cost_improvement": 1.003,
	"max_indexes":          0,
	"constraint":           "storage",
	"score_func":           "benefit_per_sto",
	"connector":            "whatif",
	"cache_size":           4096,
	"cache_backend":        "memory",
	"estimator_mode":       "whatif",
	"estimator_multiplier": 1.0,
	"server_addr":          ":8080",
	"log_level":            "info",
}

// ConfigUnknownKey is returned when the config file or environment sets a
// key the advisor does not recognize.
type ConfigUnknownKey struct {
	Key string
}

func (e ConfigUnknownKey) Error() string {
	return fmt.Sprintf("unknown configuration key: %s", e.Key)
}

// IsUnknownKey reports whether err is a ConfigUnknownKey.
func IsUnknownKey(err error) bool {
	_, ok := err.(ConfigUnknownKey)
	return ok
}

// Config is the flat parameter map the rest of the advisor reads from,
// already merged with DefaultParameters and validated against knownKeys.
type Config map[string]any

// Load reads indexadvisor.yml (if present) and the ADVISOR_-prefixed
// environment, merges both over DefaultParameters, and validates every key
// actually set by the file or environment against knownKeys.
func Load() (Config, error) {
	v := viper.New()

	for key, value := range DefaultParameters {
		v.SetDefault(key, value)
	}

	v.SetConfigName("indexadvisor")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ADVISOR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for _, key := range v.AllKeys() {
		if !knownKeys[key] {
			return nil, ConfigUnknownKey{Key: key}
		}
	}
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(name, "ADVISOR_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, "ADVISOR_"))
		if !knownKeys[key] {
			return nil, ConfigUnknownKey{Key: key}
		}
	}

	cfg := make(Config, len(DefaultParameters))
	for key := range knownKeys {
		cfg[key] = getTyped(v, key)
	}

	return cfg, nil
}

// getTyped reads key using the getter matching its known value type, so
// callers get a stable Go type (int64, int, float64, string) regardless of
// whether the value came from YAML, an env var, or a default.
func getTyped(v *viper.Viper, key string) any {
	switch key {
	case "budget_mb":
		return v.GetInt64(key)
	case "max_index_width", "max_indexes", "cache_size":
		return v.GetInt(key)
	case "min_cost_improvement", "estimator_multiplier":
		return v.GetFloat64(key)
	default:
		return v.GetString(key)
	}
}

// KnownKeys returns the sorted list of recognized configuration keys, used
// by `indexadvisor config show` and for "did you mean" suggestions on an
// unknown key.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InProject checks if the current directory holds an indexadvisor.yml.
func InProject() bool {
	if _, err := os.Stat("indexadvisor.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("indexadvisor.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot walks up from the working directory looking for
// indexadvisor.yml, returning the directory it's found in.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "indexadvisor.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "indexadvisor.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an index advisor project (no indexadvisor.yml found)")
		}
		dir = parent
	}
}

// ToExtendConfig builds an extend.Config from the loaded parameters.
func (c Config) ToExtendConfig() extend.Config {
	cfg := extend.Config{
		BudgetMB:           c["budget_mb"].(int64),
		MaxIndexWidth:      c["max_index_width"].(int),
		MinCostImprovement: c["min_cost_improvement"].(float64),
		MaxIndexes:         c["max_indexes"].(int),
		ScoreFunc:          scoreFuncFor(c["score_func"]),
	}
	if c["constraint"] == "number" {
		cfg.Constraint = extend.ConstraintNumber
	}
	return cfg
}

// scoreFuncFor maps the configured score_func name to the extend.ScoreFunc
// it names, defaulting to nil (extend.Run's own BenefitPerSTO default) for
// an unrecognized or empty name.
func scoreFuncFor(name any) extend.ScoreFunc {
	switch name {
	case "benefit_per_sto":
		return extend.BenefitPerSTO
	case "benefit_pure":
		return extend.BenefitPure
	case "cost_per_sto":
		return extend.CostPerSTO
	case "cost_pure":
		return extend.CostPure
	default:
		return nil
	}
}

// String renders the config's keys in sorted order, one "key = value" per
// line.
func (c Config) String() string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s = %v\n", k, c[k])
	}
	return b.String()
}
