// Package interp implements the interpreter: it owns the operand stack,
// executes op sequences, and routes Word ops to either a JIT-compiled
// entry point or a recursive interpretation of the dictionary entry.
package interp

import (
	"fmt"

	"github.com/forthjit/forthjit/pkg/ops"
	"github.com/forthjit/forthjit/pkg/stack"
)

// CompiledWord is the capability a JIT-compiled word exposes to the
// interpreter: invoke it against a live operand stack. pkg/jit's
// finalized functions implement this; pkg/interp never depends on
// pkg/jit itself, only on this interface.
type CompiledWord interface {
	Invoke(s *stack.OperandStack)
}

// CompiledDictionary maps word name to its compiled entry point. It is
// installed on the interpreter wholesale after a successful JIT batch,
// replacing any prior table.
type CompiledDictionary map[string]CompiledWord

// Interpreter owns the operand stack and dispatches op sequences against
// it and a dictionary.
type Interpreter struct {
	Stack      *stack.OperandStack
	Dictionary *ops.Dictionary
	Compiled   CompiledDictionary
	Output     func(string)
}

// New returns an interpreter with a fresh stack and dictionary, printing
// to out (if nil, output is discarded — tests typically pass a buffer).
func New(out func(string)) *Interpreter {
	if out == nil {
		out = func(string) {}
	}
	return &Interpreter{
		Stack:      stack.New(),
		Dictionary: ops.NewDictionary(),
		Compiled:   make(CompiledDictionary),
		Output:     out,
	}
}

// InstallCompiled replaces the compiled dictionary wholesale. Called once
// per successful JIT batch.
func (in *Interpreter) InstallCompiled(cd CompiledDictionary) {
	in.Compiled = cd
}

// Exec runs each op in sequence against the interpreter's stack. On
// failure it returns an *Error and does not roll back effects (pushes,
// prints) already performed by ops earlier in the sequence.
func (in *Interpreter) Exec(seq []ops.Op) error {
	for _, op := range seq {
		if err := in.execOne(op); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execOne(op ops.Op) error {
	switch op.Kind {
	case ops.Num:
		in.Stack.Push(op.Value)
		return nil

	case ops.Add, ops.Sub, ops.Mul, ops.Div:
		return in.execBinary(op.Kind)

	case ops.Dup:
		a, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		in.Stack.Push(a)
		in.Stack.Push(a)
		return nil

	case ops.Swap:
		b, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		a, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		in.Stack.Push(b)
		in.Stack.Push(a)
		return nil

	case ops.Over:
		b, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		a, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		in.Stack.Push(a)
		in.Stack.Push(b)
		in.Stack.Push(a)
		return nil

	case ops.Rot:
		c, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		b, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		a, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		in.Stack.Push(b)
		in.Stack.Push(c)
		in.Stack.Push(a)
		return nil

	case ops.Drop:
		if _, ok := in.Stack.Pop(); !ok {
			return errUnderflow()
		}
		return nil

	case ops.Dot:
		v, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		in.Output(fmt.Sprintf("%d", v))
		return nil

	case ops.Emit:
		v, ok := in.Stack.Pop()
		if !ok {
			return errUnderflow()
		}
		r := rune(int32(v))
		if v < 0 || v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
			return errInvalidChar()
		}
		in.Output(string(r))
		return nil

	case ops.Word:
		return in.execWord(op.Name)

	default:
		return fmt.Errorf("unknown op kind %v", op.Kind)
	}
}

// execBinary pops b then a, computes a⊕b, and pushes the result. This
// ordering (second-popped first) must match the JIT's lowering exactly.
func (in *Interpreter) execBinary(kind ops.Kind) error {
	b, ok := in.Stack.Pop()
	if !ok {
		return errUnderflow()
	}
	a, ok := in.Stack.Pop()
	if !ok {
		return errUnderflow()
	}
	var r int64
	switch kind {
	case ops.Add:
		r = a + b
	case ops.Sub:
		r = a - b
	case ops.Mul:
		r = a * b
	case ops.Div:
		r = a / b // truncates toward zero, matches Go's int division
	}
	in.Stack.Push(r)
	return nil
}

// execWord dispatches a Word op: compiled entry point first, else a
// recursive interpretation of the dictionary entry, else undefined-word.
func (in *Interpreter) execWord(name string) error {
	if cw, ok := in.Compiled[name]; ok {
		cw.Invoke(in.Stack)
		return nil
	}
	body, ok := in.Dictionary.Lookup(name)
	if !ok {
		return errUndefined(name)
	}
	return in.Exec(body)
}
