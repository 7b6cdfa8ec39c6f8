package cmd_test

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kestrel-lang/kestrelc/cmd"
)

// fakeBuildWriter is the in-memory BuildWriter test double: it records the
// path and bytes it was asked to write instead of touching the filesystem.
type fakeBuildWriter struct {
	path string
	data []byte
}

func (w *fakeBuildWriter) WriteBuild(cmd *cobra.Command, path string, data []byte) error {
	w.path = path
	w.data = append([]byte(nil), data...)
	return nil
}

func TestBuildCmd_Success(t *testing.T) {
	reader := &fakeProgramReader{data: []byte(emptyProgramJSON)}
	writer := &fakeBuildWriter{}
	c := cmd.NewBuildCmd(reader, writer)
	c.SetArgs([]string{"--config", emptyConfigPath(t), "--out", "build.json", "program.json"})

	var stdout, stderr bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&stderr)

	if err := c.Execute(); err != nil {
		t.Fatalf("Execute() error = %v, stderr = %s", err, stderr.String())
	}
	if writer.path != "build.json" {
		t.Errorf("writer.path = %q, want %q", writer.path, "build.json")
	}
	if len(writer.data) == 0 {
		t.Error("writer.data is empty, want a serialized build artifact")
	}
}

func TestBuildCmd_PipelineFailureDoesNotWrite(t *testing.T) {
	badProgram := `{"components":[{
		"name": "App",
		"state": [{
			"position": {"line": 1, "column": 1},
			"type": {"name": "string"},
			"name": "count",
			"mutable": true,
			"init": {"kind": "IntLit", "position": {"line": 1, "column": 1}, "value": 0}
		}]
	}]}`
	reader := &fakeProgramReader{data: []byte(badProgram)}
	writer := &fakeBuildWriter{}
	c := cmd.NewBuildCmd(reader, writer)
	c.SetArgs([]string{"--config", emptyConfigPath(t), "program.json"})

	var stdout, stderr bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&stderr)

	if err := c.Execute(); err == nil {
		t.Fatal("Execute() error = nil, want a build failure")
	}
	if writer.data != nil {
		t.Errorf("writer.data = %q, want no write on a failed build", writer.data)
	}
}

func TestBuildCmd_DefaultOutIsStdout(t *testing.T) {
	reader := &fakeProgramReader{data: []byte(emptyProgramJSON)}
	writer := newDefaultBuildWriterForTest()
	c := cmd.NewBuildCmd(reader, writer)
	c.SetArgs([]string{"--config", emptyConfigPath(t), "program.json"})

	var stdout, stderr bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&stderr)

	if err := c.Execute(); err != nil {
		t.Fatalf("Execute() error = %v, stderr = %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		t.Error("stdout is empty, want the serialized build artifact written via cmd.OutOrStdout()")
	}
}

// newDefaultBuildWriterForTest builds a BuildWriter that writes through
// cmd.OutOrStdout() when path is empty, exercising the same stdout branch
// the default file-backed writer uses, without touching the filesystem.
func newDefaultBuildWriterForTest() *stdoutBuildWriter { return &stdoutBuildWriter{} }

type stdoutBuildWriter struct{}

func (stdoutBuildWriter) WriteBuild(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return nil
}
