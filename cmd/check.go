package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrel-lang/kestrelc/internal/tree"
)

// NewCheckCmd creates the `kestrelc check` subcommand: it runs the full
// type-checking pipeline against a program.json tree and reports
// diagnostics, without emitting a build artifact.
func NewCheckCmd(reader ProgramReader) *cobra.Command {
	var (
		schemaDirs []string
		configPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:          "check <program.json>",
		Short:        "Type-check a kestrel program tree",
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
				return fmt.Errorf("check failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&schemaDirs, "schema", nil, "schema definition directory (repeatable, overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to kestrel.yaml (default: ./kestrel.yaml)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "lower the log level from warn to debug")
	return cmd
}
