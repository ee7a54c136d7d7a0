// pre_processor.go implements the WGSL shader pre-processor. It resolves
// //#include directives against a registry of canonical GPU struct sources,
// evaluates //#if NAME ... //#else ... //#end conditional blocks against the
// configured defines, and substitutes {{NAME}} tokens with define values.
// Pre-processing runs before reflection so conditional bindings only appear in
// the parsed layouts when their define is set.
package shader

import (
	"fmt"
	"strings"

	"github.com/parallax3d/parallax/engine/model"
)

// Define is a named conditional-compilation flag with an optional value.
// A Define with an empty Value still enables //#if blocks gated on its name.
type Define struct {
	// Name is the flag identifier referenced by //#if and {{NAME}} tokens.
	Name string

	// Value is substituted for {{NAME}} tokens in the source. May be empty.
	Value string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// includeRegistry maps //#include arguments to embedded WGSL struct sources.
	includeRegistry map[string]string

	// defines maps flag names to their substitution values.
	defines map[string]string
}

// PreProcessor processes raw WGSL shader source code containing //# directives,
// resolving includes, conditional blocks, and define substitutions into plain
// WGSL ready for parsing and module creation.
type PreProcessor interface {
	// Process takes raw WGSL shader source code and pre-processes it.
	// //#include <key> lines are replaced with the registered struct source.
	// //#if NAME blocks are kept when NAME is defined, otherwise dropped
	// (an optional //#else branch inverts this), //#end closes a block.
	// {{NAME}} tokens are replaced with the define's value.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing directives
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if a directive is malformed or references an unknown key
	Process(source string) (string, error)

	// Defined reports whether a flag name is set on this pre-processor.
	//
	// Parameters:
	//   - name: the flag name to check
	//
	// Returns:
	//   - bool: true if the flag is defined
	Defined(name string) bool
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with the canonical vertex struct
// sources registered for //#include and the provided defines active.
//
// Parameters:
//   - defines: conditional-compilation flags to enable during Process
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(defines ...Define) PreProcessor {
	p := &preProcessor{
		includeRegistry: map[string]string{
			"vertex":     model.GPUVertexSource,
			"sky_vertex": model.GPUSkyVertexSource,
		},
		defines: make(map[string]string, len(defines)),
	}
	for _, d := range defines {
		p.defines[d.Name] = d.Value
	}
	return p
}

func (p *preProcessor) Defined(name string) bool {
	_, ok := p.defines[name]
	return ok
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	// Conditional block state: each //#if pushes whether its branch is live.
	type condFrame struct {
		keep     bool
		seenElse bool
	}
	var stack []condFrame

	live := func() bool {
		for _, f := range stack {
			if !f.keep {
				return false
			}
		}
		return true
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "//#if "):
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "//#if "))
			if name == "" {
				return "", fmt.Errorf("line %d: //#if requires a flag name", i+1)
			}
			_, defined := p.defines[name]
			stack = append(stack, condFrame{keep: defined})
		case trimmed == "//#else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: //#else without matching //#if", i+1)
			}
			top := &stack[len(stack)-1]
			if top.seenElse {
				return "", fmt.Errorf("line %d: duplicate //#else", i+1)
			}
			top.keep = !top.keep
			top.seenElse = true
		case trimmed == "//#end":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: //#end without matching //#if", i+1)
			}
			stack = stack[:len(stack)-1]
		case strings.HasPrefix(trimmed, "//#include "):
			if !live() {
				continue
			}
			key := strings.TrimSpace(strings.TrimPrefix(trimmed, "//#include "))
			src, ok := p.includeRegistry[key]
			if !ok {
				return "", fmt.Errorf("line %d: unknown //#include argument %q", i+1, key)
			}
			out = append(out, src)
		default:
			if !live() {
				continue
			}
			out = append(out, p.substitute(line))
		}
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("unterminated //#if block")
	}
	return strings.Join(out, "\n"), nil
}

// substitute replaces {{NAME}} tokens on a line with their define values.
func (p *preProcessor) substitute(line string) string {
	if !strings.Contains(line, "{{") {
		return line
	}
	for name, value := range p.defines {
		line = strings.ReplaceAll(line, "{{"+name+"}}", value)
	}
	return line
}
