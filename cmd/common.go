package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kestrel-lang/kestrelc/internal/check"
	"github.com/kestrel-lang/kestrelc/internal/config"
	"github.com/kestrel-lang/kestrelc/internal/depgraph"
	"github.com/kestrel-lang/kestrelc/internal/diag"
	"github.com/kestrel-lang/kestrelc/internal/feature"
	"github.com/kestrel-lang/kestrelc/internal/ir"
	"github.com/kestrel-lang/kestrelc/internal/logging"
	"github.com/kestrel-lang/kestrelc/internal/schema"
	"github.com/kestrel-lang/kestrelc/internal/tree"
	"github.com/kestrel-lang/kestrelc/internal/viewcompile"
)

// defaultConfigFile is the project configuration file `kestrelc check` and
// `kestrelc build` read from the current directory when --config is not
// given.
const defaultConfigFile = "kestrel.yaml"

// ProgramReader reads the JSON program tree a command operates on, the
// same IO-seam the teacher's ParseReader establishes for its parse
// subcommand (cmd/parse.go in the teacher repo): tests substitute an
// in-memory reader, the CLI binary wires plain file I/O.
type ProgramReader interface {
	ReadProgram(path string) ([]byte, error)
}

type fileProgramReader struct{}

func newDefaultProgramReader() *fileProgramReader { return &fileProgramReader{} }

func (r *fileProgramReader) ReadProgram(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// schemaDirFlags resolves the effective schema directories: --schema flags
// override the project config's schema_dirs entirely when any are given.
func schemaDirFlags(cfgDirs, flagDirs []string) []string {
	if len(flagDirs) > 0 {
		return flagDirs
	}
	return cfgDirs
}

// loadConfig reads the project configuration at path, falling back to
// config.Default() per that package's documented "missing file" tolerance.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	return config.Load(path)
}

// loadSchema builds a schema.Store from dirs, using cacheFile as a
// pre-built binary cache when it exists and is not stale (spec.md §6).
func loadSchema(dirs []string, cacheFile string, logger *zap.Logger) (*schema.Store, error) {
	fresh := cacheFile != "" && len(dirs) > 0
	for _, d := range dirs {
		if fresh && schema.CacheStale(d, cacheFile) {
			fresh = false
		}
	}
	if fresh {
		store, err := schema.LoadCache(cacheFile)
		if err == nil {
			return store, nil
		}
		logger.Warn("schema: cache unreadable, falling back to source definitions",
			zap.String("cache", cacheFile), zap.Error(err))
	}
	return schema.LoadDirs(dirs, logger)
}

// pipelineResult carries every stage a `check`/`build` run produces, so a
// caller can report diagnostics regardless of how far compilation got.
type pipelineResult struct {
	warnings []diag.Diagnostic
	program  *ir.Program
}

// runPipeline executes the full front-end pipeline from a decoded program
// tree to an assembled IR artifact: type check, dependency sort, view
// compilation, feature detection, and compilation-ID stamping. The check
// and build commands share this so their diagnostics agree exactly.
func runPipeline(prog *tree.Program, store *schema.Store) (pipelineResult, error) {
	checker := check.New(store)
	diags := checker.Check(prog)
	res := pipelineResult{warnings: diags.Warnings()}
	if diags.Failed() {
		return res, diags.Err()
	}

	graph := depgraph.Build(prog)
	order, cycle, ok := depgraph.Sort(graph)
	if !ok {
		return res, cycle
	}

	compiler := viewcompile.New(store)
	emissions := make(map[string]*viewcompile.ComponentEmission, len(order))
	for _, comp := range order {
		emissions[comp.Name] = compiler.Compile(comp)
	}

	flags := feature.Detect(prog, store)
	compilationID, err := ir.NewCompilationID()
	if err != nil {
		return res, fmt.Errorf("minting compilation id: %w", err)
	}

	res.program = ir.Assemble(compilationID, order, emissions, flags)
	return res, nil
}

// newPipelineLogger builds the warning logger a check/build run uses for
// schema-load diagnostics (internal/logging's documented split between
// operational warnings and internal/diag compile errors).
func newPipelineLogger(verbose bool) (*zap.Logger, error) {
	return logging.New(verbose)
}
