package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forthjit/forthjit/pkg/ops"
)

func TestParseTopLevelArithmetic(t *testing.T) {
	prog, err := Parse("1 2 + .")
	require.NoError(t, err)

	exec, defs := prog.Ops()
	assert.Empty(t, defs)
	assert.Equal(t, []ops.Op{
		ops.NewNum(1),
		ops.NewNum(2),
		{Kind: ops.Add},
		{Kind: ops.Dot},
	}, exec)
}

func TestParseNegativeNumber(t *testing.T) {
	prog, err := Parse("5 -3 +")
	require.NoError(t, err)
	exec, _ := prog.Ops()
	assert.Equal(t, []ops.Op{ops.NewNum(5), ops.NewNum(-3), {Kind: ops.Add}}, exec)
}

func TestBareMinusIsTheSubWord(t *testing.T) {
	prog, err := Parse("5 3 -")
	require.NoError(t, err)
	exec, _ := prog.Ops()
	assert.Equal(t, []ops.Op{ops.NewNum(5), ops.NewNum(3), {Kind: ops.Sub}}, exec)
}

func TestParseDefinition(t *testing.T) {
	prog, err := Parse(": sq dup * ; 4 sq .")
	require.NoError(t, err)

	exec, defs := prog.Ops()
	require.Contains(t, defs, "sq")
	assert.Equal(t, []ops.Op{{Kind: ops.Dup}, {Kind: ops.Mul}}, defs["sq"])
	assert.Equal(t, []ops.Op{ops.NewNum(4), ops.NewWord("sq"), {Kind: ops.Dot}}, exec)
}

func TestParseMultipleDefinitionsAcrossLines(t *testing.T) {
	prog, err := Parse(": sq dup * ;\n: greet 72 emit 105 emit ;\ngreet")
	require.NoError(t, err)

	exec, defs := prog.Ops()
	require.Contains(t, defs, "sq")
	require.Contains(t, defs, "greet")
	assert.Equal(t, []ops.Op{ops.NewWord("greet")}, exec)
}

func TestRedefinitionLastWinsWithinOneProgram(t *testing.T) {
	prog, err := Parse(": w 1 ; : w 2 ;")
	require.NoError(t, err)
	_, defs := prog.Ops()
	assert.Equal(t, []ops.Op{ops.NewNum(2)}, defs["w"])
}

func TestUnknownWordReference(t *testing.T) {
	prog, err := Parse("foo")
	require.NoError(t, err)
	exec, _ := prog.Ops()
	assert.Equal(t, []ops.Op{ops.NewWord("foo")}, exec)
}
