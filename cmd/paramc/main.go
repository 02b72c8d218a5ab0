// Command paramc compiles a parameter schema into Go bindings and a YAML
// manifest for the server.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"paramforge/internal/binding"
	"paramforge/internal/config"
	"paramforge/internal/dsl"
	"paramforge/internal/manifest"
	"paramforge/internal/schema"
)

// GenFile is the name of the emitted Go source inside the output directory.
const GenFile = "params_gen.go"

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("paramc failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	cfg, err := config.Load("paramc", args)
	if err != nil {
		return err
	}
	log, err := cfg.Logger(stderr)
	if err != nil {
		return err
	}

	ds, err := dsl.LoadFile(cfg.SchemaPath, log)
	if err != nil {
		return err
	}
	g, err := schema.Resolve(ds, schema.Options{AlwaysFinal: cfg.AlwaysFinal, Logger: log})
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.SchemaPath, err)
	}
	for _, is := range schema.Lint(g, cfg.AlwaysFinal) {
		log.Warn("schema lint", "class", is.Class, "attr", is.Attr, "code", is.Code, "msg", is.Message)
	}

	reg, err := binding.Build(g)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.SchemaPath, err)
	}
	src, err := binding.EmitGo(reg, cfg.Package)
	if err != nil {
		return err
	}
	m, err := manifest.FromRegistry(reg)
	if err != nil {
		return err
	}

	// nothing is written until every stage succeeded
	out := filepath.Join(cfg.OutDir, GenFile)
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return err
	}
	if cfg.ManifestPath != "" {
		if err := manifest.Write(cfg.ManifestPath, m); err != nil {
			return err
		}
	}

	log.Info("schema compiled",
		"schema", cfg.SchemaPath,
		"data_version", reg.DataVersion,
		"classes", len(reg.Classes()),
		"final", len(reg.Finals()),
		"bindings", out,
		"manifest", cfg.ManifestPath,
	)
	return nil
}
