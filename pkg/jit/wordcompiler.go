//go:build amd64

package jit

import "github.com/forthjit/forthjit/pkg/ops"

// state is a word's position in the per-word compilation lifecycle.
// Only a finalized word may be called; a failure at any transition
// invalidates only the word it happened to.
type state int

const (
	stateNew state = iota
	stateBuilding
	stateSealed
	stateDefined
	stateFinalized
)

// fixupTarget kind.
type fixupTargetKind int

const (
	fixupCallback fixupTargetKind = iota
	fixupWord
)

// fixup records a call site whose absolute target address is not yet
// known: either one of the three host callbacks (known as soon as the
// JIT module exists) or another dictionary word (known only once every
// word in the batch has either compiled or failed).
type fixup struct {
	offset int
	kind   fixupTargetKind
	name   string // callback name ("push"/"pop"/"print") or word name
}

// compiledWord is the result of successfully lowering one dictionary
// entry to machine code: a relocatable byte buffer plus the call sites
// still needing an address patched in.
type compiledWord struct {
	name   string
	state  state
	code   []byte
	fixups []fixup
}

// compileWord lowers name's op sequence to a relocatable byte buffer. It
// never touches executable memory or resolves any fixup — that is
// Module.Batch's job, once every word in the batch has had a turn here.
func compileWord(name string, body []ops.Op) (*compiledWord, error) {
	cw := &compiledWord{name: name, state: stateNew}
	buf := &CodeBuffer{}
	shadow := &shadowStack{}
	poolNext := 0

	alloc := func() (Reg, error) {
		if poolNext >= len(pool) {
			return 0, &Error{Kind: CodegenFailure, Word: name,
				Reason: "shadow stack register pool exhausted"}
		}
		r := pool[poolNext]
		poolNext++
		return r, nil
	}

	materialize := func(v shadowValue) (Reg, error) {
		if !v.isConst {
			return v.reg, nil
		}
		r, err := alloc()
		if err != nil {
			return 0, err
		}
		buf.MovImm64(r, v.imm)
		return r, nil
	}

	pop1 := func() (shadowValue, error) {
		if v, ok := shadow.pop(); ok {
			return v, nil
		}
		// pop! fallback: the shadow stack is empty, so materialize via
		// the pop host callback instead.
		buf.MovRR(RDI, R15)
		immOff := buf.CallAbsPlaceholder(RCX)
		cw.fixups = append(cw.fixups, fixup{offset: immOff, kind: fixupCallback, name: "pop"})
		r, err := alloc()
		if err != nil {
			return shadowValue{}, err
		}
		buf.MovRR(r, RAX)
		return regValue(r), nil
	}

	flush := func() error {
		for _, v := range shadow.drain() {
			r, err := materialize(v)
			if err != nil {
				return err
			}
			buf.MovRR(RDI, R15)
			buf.MovRR(RSI, r)
			immOff := buf.CallAbsPlaceholder(RCX)
			cw.fixups = append(cw.fixups, fixup{offset: immOff, kind: fixupCallback, name: "push"})
		}
		poolNext = 0 // every live value has been flushed to the real stack
		return nil
	}

	cw.state = stateBuilding

	// Prologue: save callee-saved registers, then persist stack_ptr (in
	// RDI on entry) into R15 for the rest of the function body.
	for _, r := range calleeSaved {
		buf.PushReg(r)
	}
	buf.MovRR(R15, RDI)

	for _, op := range body {
		switch op.Kind {
		case ops.Num:
			shadow.push(constValue(op.Value))

		case ops.Add, ops.Sub, ops.Mul, ops.Div:
			bv, err := pop1()
			if err != nil {
				return nil, err
			}
			av, err := pop1()
			if err != nil {
				return nil, err
			}
			bReg, err := materialize(bv)
			if err != nil {
				return nil, err
			}
			aReg, err := materialize(av)
			if err != nil {
				return nil, err
			}
			dst, err := alloc()
			if err != nil {
				return nil, err
			}
			switch op.Kind {
			case ops.Add:
				buf.MovRR(dst, aReg)
				buf.AddRR(dst, bReg)
			case ops.Sub:
				buf.MovRR(dst, aReg)
				buf.SubRR(dst, bReg)
			case ops.Mul:
				buf.MovRR(dst, aReg)
				buf.ImulRR(dst, bReg)
			case ops.Div:
				buf.MovRR(RAX, aReg)
				buf.Cqo()
				buf.IdivR(bReg)
				buf.MovRR(dst, RAX)
			}
			shadow.push(regValue(dst))

		case ops.Dup:
			v, err := pop1()
			if err != nil {
				return nil, err
			}
			shadow.push(v)
			shadow.push(v)

		case ops.Swap:
			b, err := pop1()
			if err != nil {
				return nil, err
			}
			a, err := pop1()
			if err != nil {
				return nil, err
			}
			shadow.push(b)
			shadow.push(a)

		case ops.Over:
			b, err := pop1()
			if err != nil {
				return nil, err
			}
			a, err := pop1()
			if err != nil {
				return nil, err
			}
			shadow.push(a)
			shadow.push(b)
			shadow.push(a)

		case ops.Rot:
			c, err := pop1()
			if err != nil {
				return nil, err
			}
			b, err := pop1()
			if err != nil {
				return nil, err
			}
			a, err := pop1()
			if err != nil {
				return nil, err
			}
			shadow.push(b)
			shadow.push(c)
			shadow.push(a)

		case ops.Drop:
			if _, err := pop1(); err != nil {
				return nil, err
			}

		case ops.Dot:
			v, err := pop1()
			if err != nil {
				return nil, err
			}
			r, err := materialize(v)
			if err != nil {
				return nil, err
			}
			buf.MovRR(RDI, r)
			immOff := buf.CallAbsPlaceholder(RCX)
			cw.fixups = append(cw.fixups, fixup{offset: immOff, kind: fixupCallback, name: "print"})

		case ops.Word:
			if err := flush(); err != nil {
				return nil, err
			}
			buf.MovRR(RDI, R15)
			immOff := buf.CallAbsPlaceholder(RCX)
			cw.fixups = append(cw.fixups, fixup{offset: immOff, kind: fixupWord, name: op.Name})

		case ops.Emit:
			// Not lowered by the JIT: a compile-time failure for this
			// one word is the documented, correct behavior.
			return nil, &Error{Kind: CodegenFailure, Word: name,
				Reason: "emit is not supported by the JIT backend"}

		default:
			return nil, &Error{Kind: CodegenFailure, Word: name, Reason: "unknown op"}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	cw.state = stateSealed

	for i := len(calleeSaved) - 1; i >= 0; i-- {
		buf.PopReg(calleeSaved[i])
	}
	buf.Ret()

	cw.state = stateDefined
	cw.code = buf.Bytes()
	return cw, nil
}
