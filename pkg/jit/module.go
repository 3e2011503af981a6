//go:build amd64

// Package jit compiles FORTH word definitions to native amd64 machine
// code and runs them directly, bypassing the tree-walking interpreter in
// pkg/interp for words that have been through a successful Batch.
package jit

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"

	"github.com/forthjit/forthjit/pkg/interp"
	"github.com/forthjit/forthjit/pkg/ops"
	"github.com/forthjit/forthjit/pkg/stack"
)

// Module owns one mmap'd executable region and the host callbacks every
// word compiled into it calls back into. Executable regions are only
// ever added, never released. Each Batch call compiles every word of the
// dictionary it is given, including words an earlier Batch already
// finalized, and a newly finalized entry point replaces the earlier one
// under the same name.
type Module struct {
	callbacks *callbacks
	regions   [][]byte // kept alive so the GC never reclaims executable pages
	entries   map[string]uintptr
}

// NewModule creates an empty JIT module. output is the same sink the
// interpreter's Dot/Emit write through, so `.` behaves identically
// whether a word ran interpreted or compiled.
func NewModule(output func(string)) *Module {
	return &Module{
		callbacks: newCallbacks(output),
		entries:   make(map[string]uintptr),
	}
}

// Batch compiles every word in dict and installs as many as it can into
// executable memory, returning a CompiledDictionary for the ones that
// succeeded and the errors for the ones that did not. A word fails only
// for its own sake (a pop! fallback failure, an unsupported op, or
// register-pool exhaustion) or because, transitively, every path to a
// finalized definition of a word it calls failed — an unrelated word's
// failure never blocks this batch's otherwise-compilable words.
func (m *Module) Batch(dict *ops.Dictionary) (interp.CompiledDictionary, []error) {
	var errs []error
	compiled := make(map[string]*compiledWord)

	for _, name := range dict.Names() {
		body, _ := dict.Lookup(name)
		cw, err := compileWord(name, body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		compiled[name] = cw
	}

	// Fixpoint removal: drop any word whose call graph never bottoms out
	// in either an already-finalized entry point or a word that survives
	// this round, until no more drops occur.
	for {
		dropped := false
		for name, cw := range compiled {
			for _, fx := range cw.fixups {
				if fx.kind != fixupWord {
					continue
				}
				if _, ok := m.entries[fx.name]; ok {
					continue
				}
				if _, ok := compiled[fx.name]; ok {
					continue
				}
				errs = append(errs, &Error{Kind: UnresolvedWord, Word: name, Reason: fx.name})
				delete(compiled, name)
				dropped = true
			}
		}
		if !dropped {
			break
		}
	}

	if len(compiled) == 0 {
		return nil, errs
	}

	names := make([]string, 0, len(compiled))
	for name := range compiled {
		names = append(names, name)
	}

	total := 0
	offsets := make(map[string]int, len(names))
	for _, name := range names {
		offsets[name] = total
		total += len(compiled[name].code)
	}

	mem, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		errs = append(errs, fmt.Errorf("jit: mmap executable region: %w", err))
		return nil, errs
	}
	base := uintptr(unsafe.Pointer(&mem[0]))

	resolve := func(name string) (uintptr, bool) {
		if off, ok := offsets[name]; ok {
			return base + uintptr(off), true
		}
		if addr, ok := m.entries[name]; ok {
			return addr, true
		}
		return 0, false
	}

	for _, name := range names {
		cw := compiled[name]
		patcher := &CodeBuffer{code: cw.code}
		for _, fx := range cw.fixups {
			var target uintptr
			switch fx.kind {
			case fixupCallback:
				target = m.callbacks.addr(fx.name)
			case fixupWord:
				target, _ = resolve(fx.name) // guaranteed present: fixpoint above proved it
			}
			patcher.Patch(fx.offset, target)
		}
		copy(mem[offsets[name]:], cw.code)
	}

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		errs = append(errs, fmt.Errorf("jit: mprotect executable region: %w", err))
		return nil, errs
	}
	m.regions = append(m.regions, mem)

	out := make(interp.CompiledDictionary, len(names))
	for _, name := range names {
		addr := base + uintptr(offsets[name])
		m.entries[name] = addr
		out[name] = compiledFunc{addr: addr}
	}
	return out, errs
}

// compiledFunc adapts one finalized JIT entry point to interp.CompiledWord,
// invoking it through purego.SyscallN with the operand stack's opaque
// handle as its sole argument.
type compiledFunc struct {
	addr uintptr
}

func (f compiledFunc) Invoke(s *stack.OperandStack) {
	purego.SyscallN(f.addr, s.Handle())
}
