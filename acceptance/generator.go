package acceptance

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// UnboundSentinel is the body of a freshly generated scenario test: a
// placeholder a developer replaces with a real assertion once the scenario
// is implemented.
const UnboundSentinel = `t.Fatal("acceptance test not yet bound")`

const defaultImports = "\t\"testing\""

var funcHeaderRe = regexp.MustCompile(`(?m)^func (Test_\w+)\(t \*testing\.T\) \{$`)

// ExtractImports returns the body of source's import block (the lines
// between "import (" and the matching ")"), or "" if source has no import
// block. GenerateTests preserves a file's existing imports verbatim across
// regeneration, since a bound scenario's own code may need packages the
// generator itself never imports.
func ExtractImports(source string) string {
	start := strings.Index(source, "import (")
	if start == -1 {
		return ""
	}
	rest := source[start+len("import ("):]
	end := strings.Index(rest, ")")
	if end == -1 {
		return ""
	}
	return strings.TrimRight(rest[:end], "\n")
}

// ExtractBoundFunctions scans source for Test_* functions whose body is not
// the unbound sentinel and returns each one, preceding comments included,
// keyed by function name. A generated file reuses these verbatim across
// regeneration so a developer's implementation work is never clobbered by
// re-running the pipeline.
func ExtractBoundFunctions(source string) map[string]string {
	out := map[string]string{}
	if source == "" {
		return out
	}

	locs := funcHeaderRe.FindAllStringSubmatchIndex(source, -1)
	for i, loc := range locs {
		headerStart, headerEnd := loc[0], loc[1]
		name := source[loc[2]:loc[3]]

		bodyEnd := matchingBrace(source, headerEnd-1)
		if bodyEnd == -1 {
			continue
		}
		funcEnd := bodyEnd + 1

		body := source[headerEnd:bodyEnd]
		if strings.Contains(body, UnboundSentinel) {
			continue
		}

		start := commentBlockStart(source, headerStart, i, locs)
		out[name] = strings.TrimRight(source[start:funcEnd], "\n")
	}
	return out
}

// matchingBrace finds the index of the "}" matching the "{" at openIdx.
func matchingBrace(source string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// commentBlockStart walks backward from a function header (headerStart, the
// index of the line-initial "func") to include any contiguous "// ..."
// comment lines immediately preceding it, without reaching back into the
// previous function's closing brace.
func commentBlockStart(source string, headerStart, idx int, locs [][]int) int {
	lowerBound := 0
	if idx > 0 {
		lowerBound = locs[idx-1][1]
	}
	start := headerStart
	for start > lowerBound {
		prevNL := strings.LastIndexByte(source[:start-1], '\n')
		lineStart := prevNL + 1
		line := source[lineStart : start-1]
		if !strings.HasPrefix(strings.TrimSpace(line), "//") {
			break
		}
		start = lineStart
	}
	return start
}

// sanitizeFuncName turns a scenario description into a legal Go identifier
// suffix: runs of non-alphanumeric characters collapse to a single
// underscore, consistent with how Go test names conventionally render a
// human sentence.
func sanitizeFuncName(description string) string {
	var sb strings.Builder
	lastUnderscore := false
	for _, r := range description {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return "Test_" + strings.Trim(sb.String(), "_")
}

// renderStub produces an unbound scenario's generated body: a comment per
// GWT step followed by the sentinel failure.
func renderStub(s Scenario) string {
	var body strings.Builder
	for _, step := range s.Steps {
		fmt.Fprintf(&body, "\t// %s %s\n", step.Keyword, step.Text)
	}
	if len(s.Steps) > 0 {
		body.WriteString("\n")
	}
	body.WriteString("\t" + UnboundSentinel + "\n")
	return body.String()
}

// GenerateTests renders feature's scenarios as a single _test.go source
// file. Any scenario whose generated function name already has a bound
// (non-sentinel) implementation in existingSource keeps that
// implementation verbatim; everything else is freshly stubbed. A bound
// function left over from a since-renamed or since-removed scenario is
// appended at the end with a warning comment rather than silently dropped.
func GenerateTests(feature *Feature, existingSource string) (string, error) {
	bound := ExtractBoundFunctions(existingSource)
	imports := ExtractImports(existingSource)
	if imports == "" {
		imports = defaultImports
	}

	var out strings.Builder
	out.WriteString("// Code generated by the acceptance test pipeline. DO NOT EDIT the stubs;\n")
	out.WriteString("// bound implementations are preserved across regeneration.\n")
	out.WriteString("package acceptance_test\n\n")
	out.WriteString("import (\n")
	out.WriteString(imports)
	out.WriteString("\n)\n")

	seen := make(map[string]bool, len(bound))
	for _, s := range feature.Scenarios {
		name := sanitizeFuncName(s.Description)
		seen[name] = true

		out.WriteString("\n")
		fmt.Fprintf(&out, "// %s\n", s.Description)
		fmt.Fprintf(&out, "// Source: %s:%d\n", feature.SourceFile, s.Line)
		if fn, ok := bound[name]; ok {
			out.WriteString(fn)
			out.WriteString("\n")
			continue
		}
		fmt.Fprintf(&out, "func %s(t *testing.T) {\n", name)
		out.WriteString(renderStub(s))
		out.WriteString("}\n")
	}

	var orphaned []string
	for name := range bound {
		if !seen[name] {
			orphaned = append(orphaned, name)
		}
	}
	for _, name := range orphaned {
		out.WriteString("\n")
		out.WriteString("// WARNING: orphaned bound test — its scenario no longer appears in the spec.\n")
		out.WriteString(bound[name])
		out.WriteString("\n")
	}

	return out.String(), nil
}

// WriteTestFileImpl writes generated test source to path. Excluded from
// coverage requirements because it wraps OS calls (mirrors
// acceptance.WriteIRImpl's own exemption for the same reason).
func WriteTestFileImpl(path string, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
