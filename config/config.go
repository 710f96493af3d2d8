// Package config loads and merges the generator's configuration record
// (spec §6): output directory, API basename, namespace token, and the
// primitive-override / proxy / custom-serde tables. Of those tables only
// primitive_overrides changes resolution; proxy_map and custom_serde_set
// are loaded but not read, so proxies and custom-serde fields come only
// from source attributes (spec §4.2).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the generation run's configuration record.
type Config struct {
	// OutputDir is the directory the Writer (spec §4.7) writes emitted files under.
	OutputDir string `yaml:"output_dir"`
	// APIBasename seeds the <api> token in emitted file names
	// (<api>_api_functions.hpp, <api>_<client>.hpp, ...).
	APIBasename string `yaml:"api_basename"`
	// NamespaceToken is the identifier substituted for the BUFFI_NAMESPACE
	// placeholder (spec §4.6) at file-write time.
	NamespaceToken string `yaml:"namespace_token"`

	// PrimitiveOverrides maps a fully-qualified source path to the primitive
	// wire name it should resolve to, extending the built-in table in spec §4.3.
	PrimitiveOverrides map[string]string `yaml:"primitive_overrides"`
	// ProxyMap maps a foreign type's canonical path to a local proxy type
	// name. It is loaded but not read by the Type Resolver, which takes
	// proxies only from proxy(target=) attributes (spec §4.2).
	ProxyMap map[string]string `yaml:"proxy_map"`
	// CustomSerdeSet names fields by "Type.field" path. It is loaded but not
	// read; custom-serde fields come only from custom_serde attributes.
	CustomSerdeSet []string `yaml:"custom_serde_set"`

	// MaxContainerDepth bounds nested container recursion during deserialization
	// (spec §4.5); 0 means "use the default of 500".
	MaxContainerDepth int `yaml:"max_container_depth"`

	// DocSchemaMin and DocSchemaMax bound the supported rustdoc format_version range.
	DocSchemaMin int `yaml:"doc_schema_min"`
	DocSchemaMax int `yaml:"doc_schema_max"`

	// CacheRedisAddr, when non-empty, enables the optional doc cache (spec §11.3).
	CacheRedisAddr string `yaml:"cache_redis_addr"`
	// LedgerMongoURI, when non-empty, enables the hermeticity ledger (spec §11.2).
	LedgerMongoURI string `yaml:"ledger_mongo_uri"`
}

// Default returns a Config with every documented default applied.
func Default() *Config {
	return &Config{
		APIBasename:       "api",
		NamespaceToken:    "BUFFI_NAMESPACE",
		MaxContainerDepth: 500,
		DocSchemaMin:      1,
		DocSchemaMax:      1,
	}
}

// Load reads a YAML config file and overlays it onto Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MaxContainerDepth <= 0 {
		cfg.MaxContainerDepth = 500
	}
	if cfg.DocSchemaMax == 0 {
		cfg.DocSchemaMax = cfg.DocSchemaMin
	}
	return cfg, nil
}

// Validate reports whether the config record has the fields Writer and the
// Doc Loader require.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("config: output_dir is required")
	}
	if c.NamespaceToken == "" {
		return fmt.Errorf("config: namespace_token is required")
	}
	if c.APIBasename == "" {
		return fmt.Errorf("config: api_basename is required")
	}
	if c.DocSchemaMin <= 0 || c.DocSchemaMax < c.DocSchemaMin {
		return fmt.Errorf("config: doc_schema_min/doc_schema_max must describe a non-empty range")
	}
	return nil
}
