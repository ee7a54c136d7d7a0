package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreProcessorInclude(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//#include vertex\nfn main() {}")
	require.NoError(t, err)
	assert.Contains(t, out, "struct VertexInput")
	assert.Contains(t, out, "tangent: vec4<f32>")
	assert.Contains(t, out, "fn main() {}")
}

func TestPreProcessorUnknownInclude(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//#include bogus")
	assert.ErrorContains(t, err, "unknown //#include")
}

func TestPreProcessorConditionals(t *testing.T) {
	source := strings.Join([]string{
		"//#if TANGENT",
		"let t = input.tangent;",
		"//#else",
		"let t = vec4<f32>(1.0, 0.0, 0.0, 1.0);",
		"//#end",
	}, "\n")

	tests := []struct {
		name        string
		defines     []Define
		wantLine    string
		dropped     string
	}{
		{"defined", []Define{{Name: "TANGENT"}}, "let t = input.tangent;", "vec4<f32>(1.0"},
		{"undefined", nil, "let t = vec4<f32>(1.0, 0.0, 0.0, 1.0);", "input.tangent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewPreProcessor(tt.defines...).Process(source)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantLine)
			assert.NotContains(t, out, tt.dropped)
		})
	}
}

func TestPreProcessorNestedConditionals(t *testing.T) {
	source := strings.Join([]string{
		"//#if A",
		"outer",
		"//#if B",
		"inner",
		"//#end",
		"//#end",
	}, "\n")

	out, err := NewPreProcessor(Define{Name: "A"}).Process(source)
	require.NoError(t, err)
	assert.Contains(t, out, "outer")
	assert.NotContains(t, out, "inner")

	out, err = NewPreProcessor(Define{Name: "A"}, Define{Name: "B"}).Process(source)
	require.NoError(t, err)
	assert.Contains(t, out, "inner")
}

func TestPreProcessorSubstitution(t *testing.T) {
	pp := NewPreProcessor(Define{Name: "W_COORD", Value: "1.0"})
	out, err := pp.Process("out.position.w = {{W_COORD}};")
	require.NoError(t, err)
	assert.Equal(t, "out.position.w = 1.0;", out)
}

func TestPreProcessorDirectiveErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"else without if", "//#else"},
		{"end without if", "//#end"},
		{"unterminated if", "//#if A\nbody"},
		{"if without name", "//#if "},
		{"duplicate else", "//#if A\n//#else\n//#else\n//#end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor(Define{Name: "A"}).Process(tt.source)
			assert.Error(t, err)
		})
	}
}

func TestPreProcessorDefined(t *testing.T) {
	pp := NewPreProcessor(Define{Name: "SHADOW"})
	assert.True(t, pp.Defined("SHADOW"))
	assert.False(t, pp.Defined("OTHER"))
}
