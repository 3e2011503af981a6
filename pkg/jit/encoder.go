//go:build amd64

package jit

import "encoding/binary"

// CodeBuffer accumulates the raw amd64 machine code bytes for one word's
// compiled entry point. It knows nothing about shadow stacks, dictionary
// lookups, or fixup *resolution* — only mechanical instruction encoding
// and (via Patch) overwriting a previously-emitted 8-byte immediate. This
// mirrors the separation tinyrange-rtg's std/compiler/backend_x64.go
// draws between the byte-buffer CodeGen and the fixup list that refers
// into it.
type CodeBuffer struct {
	code []byte
}

// Len reports the current size of the buffer, i.e. the offset the next
// emitted byte will land at.
func (c *CodeBuffer) Len() int { return len(c.code) }

// Bytes returns the accumulated machine code.
func (c *CodeBuffer) Bytes() []byte { return c.code }

func (c *CodeBuffer) emit(b ...byte) { c.code = append(c.code, b...) }

func (c *CodeBuffer) emitImm64(v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	c.code = append(c.code, buf[:]...)
}

// rex builds a REX prefix byte. reg/rm correspond to the ModRM reg and
// rm fields respectively (REX.R and REX.B).
func rex(w bool, reg, rm Reg) byte {
	b := byte(0x40)
	if w {
		b |= 0x08
	}
	if reg.extended() {
		b |= 0x04
	}
	if rm.extended() {
		b |= 0x01
	}
	return b
}

func modrmReg(reg, rm Reg) byte {
	return 0xC0 | (reg.low3() << 3) | rm.low3()
}

// MovImm64 loads a 64-bit immediate into dst (MOVABS dst, imm64).
func (c *CodeBuffer) MovImm64(dst Reg, imm int64) {
	c.emit(rex(true, 0, dst))
	c.emit(0xB8 + dst.low3())
	c.emitImm64(imm)
}

// MovRR copies src into dst (MOV dst, src).
func (c *CodeBuffer) MovRR(dst, src Reg) {
	c.emit(rex(true, src, dst))
	c.emit(0x89)
	c.emit(modrmReg(src, dst))
}

// AddRR computes dst += src.
func (c *CodeBuffer) AddRR(dst, src Reg) {
	c.emit(rex(true, src, dst))
	c.emit(0x01)
	c.emit(modrmReg(src, dst))
}

// SubRR computes dst -= src.
func (c *CodeBuffer) SubRR(dst, src Reg) {
	c.emit(rex(true, src, dst))
	c.emit(0x29)
	c.emit(modrmReg(src, dst))
}

// ImulRR computes dst *= src.
func (c *CodeBuffer) ImulRR(dst, src Reg) {
	c.emit(rex(true, dst, src))
	c.emit(0x0F, 0xAF)
	c.emit(modrmReg(dst, src))
}

// Cqo sign-extends RAX into RDX:RAX, as required before IDIV.
func (c *CodeBuffer) Cqo() {
	c.emit(0x48, 0x99)
}

// IdivR computes RDX:RAX / src, leaving the truncated quotient in RAX and
// the remainder in RDX. Caller must have already arranged the dividend in
// RAX and sign-extended it via Cqo.
func (c *CodeBuffer) IdivR(src Reg) {
	c.emit(rex(true, 0, src))
	c.emit(0xF7)
	c.emit(0xF8 | src.low3())
}

// PushReg pushes a 64-bit register onto the native machine stack.
func (c *CodeBuffer) PushReg(r Reg) {
	if r.extended() {
		c.emit(0x41)
	}
	c.emit(0x50 + r.low3())
}

// PopReg pops a 64-bit register off the native machine stack.
func (c *CodeBuffer) PopReg(r Reg) {
	if r.extended() {
		c.emit(0x41)
	}
	c.emit(0x58 + r.low3())
}

// Ret emits a near return.
func (c *CodeBuffer) Ret() {
	c.emit(0xC3)
}

// CallAbsPlaceholder emits `MOVABS tmp, 0` followed by `CALL tmp`, and
// returns the offset of the eight placeholder immediate bytes so the
// caller can patch in the real target address once it is known (either
// immediately, for host callbacks, or at batch-finalize time, for
// cross-word calls — see Module.Batch).
func (c *CodeBuffer) CallAbsPlaceholder(tmp Reg) (immOffset int) {
	c.MovImm64(tmp, 0)
	immOffset = c.Len() - 8
	c.emit(rex(false, 0, tmp))
	c.emit(0xFF)
	c.emit(0xD0 | tmp.low3())
	return immOffset
}

// Patch overwrites the 8-byte little-endian immediate at offset with
// addr. offset must have been returned by CallAbsPlaceholder (or
// otherwise point at an 8-byte MovImm64 operand).
func (c *CodeBuffer) Patch(offset int, addr uintptr) {
	binary.LittleEndian.PutUint64(c.code[offset:offset+8], uint64(addr))
}
