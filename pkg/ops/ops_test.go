package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"sq", true},
		{"greet", true},
		{"+", true},
		{"", false},
		{":", false},
		{";", false},
		{"has space", false},
		{"tab\ttab", false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, ValidName(c.name), "ValidName(%q)", c.name)
	}
}

func TestDictionaryDefineLookup(t *testing.T) {
	d := NewDictionary()
	_, ok := d.Lookup("sq")
	require.False(t, ok)

	body := []Op{NewNum(2), {Kind: Dup}, {Kind: Mul}}
	d.Define("sq", body)

	got, ok := d.Lookup("sq")
	require.True(t, ok)
	assert.Equal(t, body, got)
	assert.Equal(t, 1, d.Len())
}

func TestDictionaryRedefineLastWins(t *testing.T) {
	d := NewDictionary()
	d.Define("w", []Op{NewNum(1)})
	d.Define("w", []Op{NewNum(2)})

	got, ok := d.Lookup("w")
	require.True(t, ok)
	assert.Equal(t, []Op{NewNum(2)}, got)
	assert.Equal(t, 1, d.Len())
}

func TestOpBinary(t *testing.T) {
	for _, k := range []Kind{Add, Sub, Mul, Div} {
		assert.True(t, Op{Kind: k}.Binary())
	}
	for _, k := range []Kind{Num, Dup, Swap, Over, Rot, Drop, Dot, Emit, Word} {
		assert.False(t, Op{Kind: k}.Binary())
	}
}

func TestNewWord(t *testing.T) {
	op := NewWord("greet")
	assert.Equal(t, Word, op.Kind)
	assert.Equal(t, "greet", op.Name)
}
