package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrel-lang/kestrelc/acceptance"
)

const (
	defaultSpecsDir = "specs"
	defaultIRDir    = "acceptance-pipeline/ir"
	defaultTestDir  = "generated-acceptance-tests"
)

// NewAcceptanceCmd creates the `kestrelc acceptance` command group: the
// spec->IR->Go-test pipeline described in spec.md §8, reworked from a
// standalone driver (acceptance/cmd/pipeline in the teacher repo) into
// kestrelc subcommands so the GWT fixtures under specs/ stay part of the
// ordinary build.
func NewAcceptanceCmd() *cobra.Command {
	var (
		specsDir string
		irDir    string
		testDir  string
	)

	acceptanceCmd := &cobra.Command{
		Use:   "acceptance",
		Short: "Run the GWT acceptance spec pipeline (parse, generate, run)",
	}
	acceptanceCmd.PersistentFlags().StringVar(&specsDir, "specs", defaultSpecsDir, "directory of GWT spec files")
	acceptanceCmd.PersistentFlags().StringVar(&irDir, "ir", defaultIRDir, "directory for intermediate spec IR JSON")
	acceptanceCmd.PersistentFlags().StringVar(&testDir, "out", defaultTestDir, "directory for generated Go test files")

	acceptanceCmd.AddCommand(&cobra.Command{
		Use:          "parse",
		Short:        "Parse specs/*.txt into intermediate IR JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcceptanceParse(cmd, specsDir, irDir)
		},
	})
	acceptanceCmd.AddCommand(&cobra.Command{
		Use:          "generate",
		Short:        "Generate Go test files from IR JSON, preserving bound implementations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAcceptanceGenerate(cmd, irDir, testDir)
		},
	})
	acceptanceCmd.AddCommand(&cobra.Command{
		Use:          "run",
		Short:        "Parse, generate, and run the acceptance test suite",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runAcceptanceParse(cmd, specsDir, irDir); err != nil {
				return err
			}
			if err := runAcceptanceGenerate(cmd, irDir, testDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "running acceptance tests...")
			goTest := exec.Command("go", "test", "-v", "./"+testDir+"/...")
			goTest.Stdout = cmd.OutOrStdout()
			goTest.Stderr = cmd.ErrOrStderr()
			return goTest.Run()
		},
	})

	return acceptanceCmd
}

func runAcceptanceParse(cmd *cobra.Command, specsDir, irDir string) error {
	var specFiles []string
	err := filepath.WalkDir(specsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".txt") {
			specFiles = append(specFiles, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("finding spec files: %w", err)
	}
	if len(specFiles) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no spec files found in %s\n", specsDir)
		return nil
	}
	if err := os.MkdirAll(irDir, 0o755); err != nil {
		return fmt.Errorf("creating IR directory: %w", err)
	}

	for _, specFile := range specFiles {
		feature, err := acceptance.ParseSpecFileImpl(specFile)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", specFile, err)
		}
		data, err := acceptance.SerializeIR(feature)
		if err != nil {
			return fmt.Errorf("serializing IR for %s: %w", specFile, err)
		}

		rel, _ := filepath.Rel(specsDir, specFile)
		irName := strings.ReplaceAll(strings.TrimSuffix(rel, ".txt"), string(filepath.Separator), "-")
		irFile := filepath.Join(irDir, irName+".json")
		if err := acceptance.WriteIRImpl(irFile, data); err != nil {
			return fmt.Errorf("writing IR for %s: %w", specFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "parsed: %s -> %s\n", specFile, irFile)
	}
	return nil
}

func runAcceptanceGenerate(cmd *cobra.Command, irDir, testDir string) error {
	irFiles, err := filepath.Glob(filepath.Join(irDir, "*.json"))
	if err != nil {
		return fmt.Errorf("finding IR files: %w", err)
	}
	if len(irFiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no IR files found, run `kestrelc acceptance parse` first")
		return nil
	}
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return fmt.Errorf("creating test directory: %w", err)
	}

	for _, irFile := range irFiles {
		data, err := acceptance.ReadIRImpl(irFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", irFile, err)
		}
		feature, err := acceptance.DeserializeIR(data)
		if err != nil {
			return fmt.Errorf("deserializing %s: %w", irFile, err)
		}

		testFile := filepath.Join(testDir, strings.TrimSuffix(filepath.Base(irFile), ".json")+"_test.go")
		existingSource := ""
		if existing, err := os.ReadFile(testFile); err == nil {
			existingSource = string(existing)
		}

		testCode, err := acceptance.GenerateTests(feature, existingSource)
		if err != nil {
			return fmt.Errorf("generating tests for %s: %w", irFile, err)
		}
		if err := acceptance.WriteTestFileImpl(testFile, testCode); err != nil {
			return fmt.Errorf("writing test for %s: %w", irFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "generated: %s -> %s\n", irFile, testFile)
	}
	return nil
}
