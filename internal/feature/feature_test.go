package feature_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kestrel-lang/kestrelc/internal/feature"
	"github.com/kestrel-lang/kestrelc/internal/schema"
	"github.com/kestrel-lang/kestrelc/internal/tree"
)

func attr(name string) tree.Attribute {
	return tree.Attribute{Name: name, Value: &tree.IntLit{Value: 0}}
}

func TestDetect_EventKinds(t *testing.T) {
	comp := &tree.Component{
		Name: "Box",
		View: []tree.ViewNode{
			&tree.Element{Tag: "input", Attributes: []tree.Attribute{
				attr("oninput"), attr("onkeydown"),
			}},
			&tree.Element{Tag: "button", Attributes: []tree.Attribute{attr("onclick")}},
		},
	}
	prog := &tree.Program{Components: []*tree.Component{comp}}

	flags := feature.Detect(prog, nil)
	if !flags.Click || !flags.Input || !flags.Keydown {
		t.Fatalf("flags = %+v, want click/input/keydown all set", flags)
	}
	if flags.Change {
		t.Error("Change should not be set; no onchange attribute present")
	}
}

func TestDetect_NoEvents(t *testing.T) {
	comp := &tree.Component{
		Name: "Static",
		View: []tree.ViewNode{&tree.TextNode{Value: &tree.StringLit{Segments: []tree.StringSegment{{Literal: "hi"}}}}},
	}
	prog := &tree.Program{Components: []*tree.Component{comp}}

	flags := feature.Detect(prog, nil)
	if flags.Click || flags.Input || flags.Change || flags.Keydown {
		t.Errorf("flags = %+v, want all false", flags)
	}
}

func TestDetect_RequiredHandleFromParam(t *testing.T) {
	store := buildHandleStore(t)

	comp := &tree.Component{
		Name:   "Clock",
		Params: []tree.Param{{Name: "timer", Type: tree.Scalar("Timer")}},
	}
	prog := &tree.Program{Components: []*tree.Component{comp}}

	flags := feature.Detect(prog, store)
	if len(flags.RequiredHandles) != 1 || flags.RequiredHandles[0] != "Timer" {
		t.Errorf("RequiredHandles = %v, want [Timer]", flags.RequiredHandles)
	}
	if len(flags.Namespaces) != 1 || flags.Namespaces[0] != "time" {
		t.Errorf("Namespaces = %v, want [time]", flags.Namespaces)
	}
}

func TestDetect_HandleFromArrayState(t *testing.T) {
	store := buildHandleStore(t)

	comp := &tree.Component{
		Name:  "Pool",
		State: []tree.StateVar{{Name: "timers", Type: tree.Array(tree.Scalar("Timer"))}},
	}
	prog := &tree.Program{Components: []*tree.Component{comp}}

	flags := feature.Detect(prog, store)
	if len(flags.RequiredHandles) != 1 || flags.RequiredHandles[0] != "Timer" {
		t.Errorf("RequiredHandles = %v, want [Timer]", flags.RequiredHandles)
	}
}

func buildHandleStore(t *testing.T) *schema.Store {
	t.Helper()
	dir := t.TempDir()
	src := `
type Timer {
  @map("time::start")
  def start(): void {}
}
`
	if err := os.WriteFile(filepath.Join(dir, "timer.kdef"), []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	store, err := schema.Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("building store: %v", err)
	}
	return store
}
