//go:build amd64

package jit

import (
	"strconv"

	"github.com/ebitengine/purego"

	"github.com/forthjit/forthjit/pkg/stack"
)

// callbacks holds the three C-ABI function pointers compiled code calls
// into, minted once per Module via purego.NewCallback. They are the only
// bridge between JIT-emitted machine code and the Go runtime: compiled
// words never touch Go memory directly, only the opaque stack handle
// purego hands back and forth as a uintptr.
type callbacks struct {
	push  uintptr
	pop   uintptr
	print uintptr
}

func newCallbacks(output func(string)) *callbacks {
	push := purego.NewCallback(func(handle uintptr, value int64) {
		stack.FromHandle(handle).Push(value)
	})
	pop := purego.NewCallback(func(handle uintptr) int64 {
		v, ok := stack.FromHandle(handle).Pop()
		if !ok {
			return 0
		}
		return v
	})
	print := purego.NewCallback(func(value int64) {
		output(strconv.FormatInt(value, 10))
	})
	return &callbacks{push: push, pop: pop, print: print}
}

// addr resolves one of the three fixed callback names to its minted
// function pointer. Any other name is a programmer error in compileWord,
// not a user-facing failure.
func (c *callbacks) addr(name string) uintptr {
	switch name {
	case "push":
		return c.push
	case "pop":
		return c.pop
	case "print":
		return c.print
	default:
		panic("jit: unknown callback " + name)
	}
}
