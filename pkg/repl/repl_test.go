package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forthjit/forthjit/pkg/interp"
)

func TestReplOkAndErrorLines(t *testing.T) {
	var stdout strings.Builder
	in := interp.New(func(s string) { stdout.WriteString(s) })

	input := "1 2 + .\n+\n"
	r := New(in, strings.NewReader(input), &stdout)
	require.NoError(t, r.Run())

	got := stdout.String()
	assert.Equal(t, "3 ok\nerror: stack underflow\n", got)
}

func TestReplDefinitionsPersistAcrossLines(t *testing.T) {
	var stdout strings.Builder
	in := interp.New(func(s string) { stdout.WriteString(s) })

	input := ": sq dup * ;\n4 sq .\n"
	r := New(in, strings.NewReader(input), &stdout)
	require.NoError(t, r.Run())

	assert.Equal(t, " ok\n16 ok\n", stdout.String())
}

func TestReplEOFExitsCleanly(t *testing.T) {
	var stdout strings.Builder
	in := interp.New(func(s string) { stdout.WriteString(s) })

	r := New(in, strings.NewReader(""), &stdout)
	assert.NoError(t, r.Run())
}
