package config

import (
	"reflect"
	"strings"

	"listing-reconciler/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AuditConfig holds configuration for the reconciliation audit.
type AuditConfig struct {
	// MappingsPath is the YAML file holding user-defined key mappings.
	// Empty means no user mappings are applied.
	MappingsPath string `mapstructure:"mappings_path" default:""`
	// RulesPath is the YAML file holding equivalence synonym groups.
	// Empty means only the built-in normalization applies.
	RulesPath string `mapstructure:"rules_path" default:""`
	// MappingsTTL is how long loaded key mappings stay cached, in seconds.
	// Zero disables caching and reloads the file on every audit.
	MappingsTTL int `mapstructure:"mappings_ttl" default:"300"`
	// Strict makes the audit command exit non-zero when any issue is found.
	Strict bool `mapstructure:"strict" default:"false"`
}

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Audit holds configuration for the reconciliation audit.
	Audit AuditConfig `mapstructure:"audit"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. AUDIT_RULES_PATH -> audit.rules_path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
