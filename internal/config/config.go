// Package config loads the project configuration file kestrelc reads before
// a compilation run: the project's module name, the directories its schema
// definitions live in, and the path of its schema binary cache (spec.md §6
// names the cache format; this file just records where one lives for a
// given project, the way the teacher's own tool configuration does).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the parsed contents of a project's kestrel.yaml.
type Config struct {
	// Module is the project's module name as written in kestrel.yaml. No
	// compilation step reads it: a source file that declares no module
	// keeps an empty module name.
	Module string `yaml:"module"`
	// SchemaDirs lists directories internal/schema.Load scans for `.kdef`
	// definition files, in order; later directories' types merge on top of
	// earlier ones by the same rule internal/schema.Load applies within one
	// directory.
	SchemaDirs []string `yaml:"schema_dirs"`
	// CacheFile is the schema binary cache (spec.md §6) that `kestrelc
	// check` and `kestrelc build` load instead of the definition files when
	// it is fresh. `kestrelc schema cache build|verify` do not read it; they
	// take their cache path as an argument.
	CacheFile string `yaml:"cache_file"`
}

// Default returns the configuration used when no kestrel.yaml is present:
// a single "schema" directory and a cache alongside it.
func Default() Config {
	return Config{
		Module:     "",
		SchemaDirs: []string{"schema"},
		CacheFile:  "schema/.kestrel-cache.bin",
	}
}

// Load reads and parses the kestrel.yaml file at path. A missing file is
// not an error: the caller gets Default() back so a bare `kestrelc build`
// works against a project with no configuration file at all.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if len(cfg.SchemaDirs) == 0 {
		cfg.SchemaDirs = Default().SchemaDirs
	}
	return cfg, nil
}
