package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when neither -config nor PARAMFORGE_CONFIG names a file.
const DefaultPath = "paramforge.yaml"

type Config struct {
	Port         string `yaml:"port"`
	SchemaPath   string `yaml:"schemaPath"`
	ManifestPath string `yaml:"manifestPath"`
	OutDir       string `yaml:"outDir"`
	Package      string `yaml:"package"`
	DBURL        string `yaml:"dbUrl"`
	AutoMigrate  bool   `yaml:"autoMigrate"`

	// AlwaysFinal names classes that stay final even when extended.
	AlwaysFinal []string `yaml:"alwaysFinal"`

	LogLevel  string `yaml:"logLevel"`  // debug | info | warn | error
	LogFormat string `yaml:"logFormat"` // text | json

	// Args holds the positional arguments left after flag parsing.
	Args []string `yaml:"-"`
}

func def() Config {
	return Config{
		Port:         "8080",
		SchemaPath:   "params.schema",
		ManifestPath: "params.yaml",
		OutDir:       ".",
		Package:      "params",
		DBURL:        "",
		AutoMigrate:  false,

		LogLevel:  "info",
		LogFormat: "text",
	}
}

// loadFile overlays a YAML (or JSON) file on the defaults.
func loadFile(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "true") || s == "1" || strings.EqualFold(s, "yes")
}

// Load builds the configuration for command name: defaults, then the config
// file, then PARAMFORGE_* variables, then args.
func Load(name string, args []string) (Config, error) {
	return load(name, getenv("PARAMFORGE_CONFIG", DefaultPath), args)
}

func load(name, path string, args []string) (Config, error) {
	cfg := def()

	if st, err := os.Stat(path); err == nil && !st.IsDir() {
		c2, err := loadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		cfg = c2
	}

	// ENV overrides
	cfg.Port = getenv("PARAMFORGE_PORT", cfg.Port)
	cfg.SchemaPath = getenv("PARAMFORGE_SCHEMA", cfg.SchemaPath)
	cfg.ManifestPath = getenv("PARAMFORGE_MANIFEST", cfg.ManifestPath)
	cfg.OutDir = getenv("PARAMFORGE_OUT_DIR", cfg.OutDir)
	cfg.Package = getenv("PARAMFORGE_PACKAGE", cfg.Package)
	cfg.DBURL = getenv("PARAMFORGE_DB_URL", cfg.DBURL)
	cfg.AutoMigrate = getenvBool("PARAMFORGE_AUTO_MIGRATE", cfg.AutoMigrate)
	if v := getenv("PARAMFORGE_ALWAYS_FINAL", ""); v != "" {
		cfg.AlwaysFinal = splitList(v)
	}
	cfg.LogLevel = getenv("PARAMFORGE_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("PARAMFORGE_LOG_FORMAT", cfg.LogFormat)

	// Flags overrides
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := fs.String("config", path, "Path to config file (YAML or JSON)")
	port := fs.String("port", cfg.Port, "HTTP port")
	schemaPath := fs.String("schema", cfg.SchemaPath, "Path to the schema file")
	manifestPath := fs.String("manifest", cfg.ManifestPath, "Path to the resolved manifest")
	outDir := fs.String("out", cfg.OutDir, "Output directory for generated bindings")
	pkg := fs.String("package", cfg.Package, "Package name of generated bindings")
	db := fs.String("db", cfg.DBURL, "Postgres URL (empty = in-memory)")
	auto := fs.String("auto-migrate", strconv.FormatBool(cfg.AutoMigrate), "Create instance tables on startup (true/false)")
	final := fs.String("always-final", strings.Join(cfg.AlwaysFinal, ","), "Comma-separated classes that stay final")
	level := fs.String("log-level", cfg.LogLevel, "Log level (debug/info/warn/error)")
	format := fs.String("log-format", cfg.LogFormat, "Log format (text/json)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	// A different config file restarts the layering from that file.
	if *configPath != path {
		return load(name, *configPath, args)
	}

	cfg.Port = strings.TrimSpace(*port)
	cfg.SchemaPath = strings.TrimSpace(*schemaPath)
	cfg.ManifestPath = strings.TrimSpace(*manifestPath)
	cfg.OutDir = strings.TrimSpace(*outDir)
	cfg.Package = strings.TrimSpace(*pkg)
	cfg.DBURL = strings.TrimSpace(*db)
	cfg.AutoMigrate = parseBool(*auto)
	cfg.AlwaysFinal = splitList(*final)
	cfg.LogLevel = strings.TrimSpace(*level)
	cfg.LogFormat = strings.TrimSpace(*format)
	cfg.Args = fs.Args()

	if cfg.Package == "" {
		return cfg, errors.New("config: package name must not be empty")
	}
	return cfg, nil
}
