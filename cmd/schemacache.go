package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrel-lang/kestrelc/internal/logging"
	"github.com/kestrel-lang/kestrelc/internal/schema"
)

// NewSchemaCmd creates the `kestrelc schema` command group, currently just
// the binary cache builder/verifier spec.md §6 names.
func NewSchemaCmd() *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and maintain schema definitions",
	}
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Build or verify the schema binary cache",
	}
	cacheCmd.AddCommand(newSchemaCacheBuildCmd())
	cacheCmd.AddCommand(newSchemaCacheVerifyCmd())
	schemaCmd.AddCommand(cacheCmd)
	return schemaCmd
}

func newSchemaCacheBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "build <schemaDir> <cacheFile>",
		Short:        "Parse a schema definition directory and write its binary cache",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cacheFile := args[0], args[1]
			logger, err := logging.New(false)
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck
			store, err := schema.Load(dir, logger)
			if err != nil {
				return fmt.Errorf("loading schema: %w", err)
			}
			if err := schema.SaveCache(store, cacheFile); err != nil {
				return fmt.Errorf("writing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cacheFile)
			return nil
		},
	}
}

func newSchemaCacheVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "verify <schemaDir> <cacheFile>",
		Short:        "Report whether a schema binary cache is stale relative to its source directory",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, cacheFile := args[0], args[1]
			if schema.CacheStale(dir, cacheFile) {
				fmt.Fprintln(cmd.OutOrStdout(), "stale")
				return fmt.Errorf("schema cache is stale")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "fresh")
			return nil
		},
	}
}
