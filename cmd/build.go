package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrel-lang/kestrelc/internal/ir"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// BuildWriter writes the assembled IR artifact a `kestrelc build` run
// produces. The default implementation writes to a file or, when path is
// "", to the command's own stdout stream.
type BuildWriter interface {
	WriteBuild(cmd *cobra.Command, path string, data []byte) error
}

type fileBuildWriter struct{}

func newDefaultBuildWriter() *fileBuildWriter { return &fileBuildWriter{} }

func (w *fileBuildWriter) WriteBuild(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NewBuildCmd creates the `kestrelc build` subcommand: it runs the same
// pipeline as `check` and, on success, serializes the resulting
// internal/ir.Program as JSON to --out (or stdout).
func NewBuildCmd(reader ProgramReader, writer BuildWriter) *cobra.Command {
	var (
		schemaDirs []string
		configPath string
		outPath    string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:          "build <program.json>",
		Short:        "Compile a kestrel program tree to the build IR",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := reader.ReadProgram(args[0])
			if err != nil {
				return fmt.Errorf("reading program: %w", err)
			}
			prog, err := tree.DecodeProgram(data)
			if err != nil {
				return fmt.Errorf("decoding program: %w", err)
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := newPipelineLogger(verbose)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			store, err := loadSchema(schemaDirFlags(cfg.SchemaDirs, schemaDirs), cfg.CacheFile, logger)
			if err != nil {
				return fmt.Errorf("loading schema: %w", err)
			}

			res, err := runPipeline(prog, store)
			for _, w := range res.warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), w.String())
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
				return fmt.Errorf("build failed")
			}

			out, err := ir.Marshal(res.program)
			if err != nil {
				return fmt.Errorf("serializing build artifact: %w", err)
			}
			return writer.WriteBuild(cmd, outPath, out)
		},
	}

	cmd.Flags().StringArrayVar(&schemaDirs, "schema", nil, "schema definition directory (repeatable, overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to kestrel.yaml (default: ./kestrel.yaml)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the build artifact here (default: stdout)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "lower the log level from warn to debug")
	return cmd
}
