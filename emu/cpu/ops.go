package cpu

type handler func(emu *EMU, in Instruction) error

// handlers holds one entry per Op. Each entry implements exactly one
// instruction, including how it moves the program counter.
var handlers = [numOps]handler{
	Invalid: (*EMU).invalid,
	CLS:     (*EMU).cls,
	RET:     (*EMU).ret,
	JP:      (*EMU).jp,
	CALL:    (*EMU).call,
	SEByte:  (*EMU).seByte,
	SNEByte: (*EMU).sneByte,
	SEReg:   (*EMU).seReg,
	LDByte:  (*EMU).ldByte,
	ADDByte: (*EMU).addByte,
	LDReg:   (*EMU).ldReg,
	OR:      (*EMU).or,
	AND:     (*EMU).and,
	XOR:     (*EMU).xor,
	ADDReg:  (*EMU).addReg,
	SUB:     (*EMU).sub,
	SHR:     (*EMU).shr,
	SUBN:    (*EMU).subn,
	SHL:     (*EMU).shl,
	SNEReg:  (*EMU).sneReg,
	LDI:     (*EMU).ldI,
	JPV0:    (*EMU).jpV0,
	RND:     (*EMU).rnd,
	DRW:     (*EMU).drw,
	SKP:     (*EMU).skp,
	SKNP:    (*EMU).sknp,
	LDVxDT:  (*EMU).ldVxDT,
	LDKey:   (*EMU).ldKey,
	LDDTVx:  (*EMU).ldDTVx,
	LDSTVx:  (*EMU).ldSTVx,
	ADDI:    (*EMU).addI,
	LDF:     (*EMU).ldF,
	LDB:     (*EMU).ldB,
	LDMemVx: (*EMU).ldMemVx,
	LDVxMem: (*EMU).ldVxMem,
}

func (emu *EMU) next() {
	emu.reg.PC += 2
}

func (emu *EMU) skipIf(cond bool) {
	emu.reg.PC += 2
	if cond {
		emu.reg.PC += 2
	}
}

func (emu *EMU) invalid(in Instruction) error {
	if !emu.opts.Strict {
		emu.next()
	}
	return &Fault{Code: UnrecognizedOpcode}
}

func (emu *EMU) cls(Instruction) error {
	emu.display.Clear()
	emu.next()
	return nil
}

// the stack holds call sites, so return continues after the call
func (emu *EMU) ret(Instruction) error {
	addr, err := emu.reg.Pop()
	if err != nil {
		return err
	}
	emu.reg.PC = addr
	emu.next()
	return nil
}

func (emu *EMU) jp(in Instruction) error {
	emu.reg.PC = in.NNN
	return nil
}

func (emu *EMU) call(in Instruction) error {
	if err := emu.reg.Push(emu.reg.PC); err != nil {
		return err
	}
	emu.reg.PC = in.NNN
	return nil
}

func (emu *EMU) seByte(in Instruction) error {
	emu.skipIf(emu.reg.V[in.X] == in.KK)
	return nil
}

func (emu *EMU) sneByte(in Instruction) error {
	emu.skipIf(emu.reg.V[in.X] != in.KK)
	return nil
}

func (emu *EMU) seReg(in Instruction) error {
	emu.skipIf(emu.reg.V[in.X] == emu.reg.V[in.Y])
	return nil
}

func (emu *EMU) ldByte(in Instruction) error {
	emu.reg.V[in.X] = in.KK
	emu.next()
	return nil
}

func (emu *EMU) addByte(in Instruction) error {
	emu.reg.V[in.X] += in.KK
	emu.next()
	return nil
}

func (emu *EMU) ldReg(in Instruction) error {
	emu.reg.V[in.X] = emu.reg.V[in.Y]
	emu.next()
	return nil
}

func (emu *EMU) or(in Instruction) error {
	emu.reg.V[in.X] |= emu.reg.V[in.Y]
	emu.next()
	return nil
}

func (emu *EMU) and(in Instruction) error {
	emu.reg.V[in.X] &= emu.reg.V[in.Y]
	emu.next()
	return nil
}

func (emu *EMU) xor(in Instruction) error {
	emu.reg.V[in.X] ^= emu.reg.V[in.Y]
	emu.next()
	return nil
}

// The flag instructions below write VF after Vx, so when x is F the
// register ends up holding the flag.

func (emu *EMU) addReg(in Instruction) error {
	sum := uint16(emu.reg.V[in.X]) + uint16(emu.reg.V[in.Y])
	emu.reg.V[in.X] = uint8(sum)
	emu.reg.setFlag(sum > 0xFF)
	emu.next()
	return nil
}

func (emu *EMU) sub(in Instruction) error {
	noBorrow := emu.reg.V[in.X] >= emu.reg.V[in.Y]
	emu.reg.V[in.X] -= emu.reg.V[in.Y]
	emu.reg.setFlag(noBorrow)
	emu.next()
	return nil
}

func (emu *EMU) shr(in Instruction) error {
	out := emu.reg.V[in.X] & 1
	emu.reg.V[in.X] >>= 1
	emu.reg.V[VF] = out
	emu.next()
	return nil
}

func (emu *EMU) subn(in Instruction) error {
	noBorrow := emu.reg.V[in.Y] >= emu.reg.V[in.X]
	emu.reg.V[in.X] = emu.reg.V[in.Y] - emu.reg.V[in.X]
	emu.reg.setFlag(noBorrow)
	emu.next()
	return nil
}

func (emu *EMU) shl(in Instruction) error {
	out := emu.reg.V[in.X] >> 7 & 1
	emu.reg.V[in.X] <<= 1
	emu.reg.V[VF] = out
	emu.next()
	return nil
}

func (emu *EMU) sneReg(in Instruction) error {
	emu.skipIf(emu.reg.V[in.X] != emu.reg.V[in.Y])
	return nil
}

func (emu *EMU) ldI(in Instruction) error {
	emu.reg.I = in.NNN
	emu.next()
	return nil
}

func (emu *EMU) jpV0(in Instruction) error {
	emu.reg.PC = in.NNN + uint16(emu.reg.V[0])
	return nil
}

func (emu *EMU) rnd(in Instruction) error {
	emu.reg.V[in.X] = emu.random() & in.KK
	emu.next()
	return nil
}

func (emu *EMU) drw(in Instruction) error {
	sprite, err := emu.memory.Block(emu.reg.I, int(in.N))
	if err != nil {
		return err
	}
	collision := emu.display.Draw(emu.reg.V[in.X], emu.reg.V[in.Y], sprite)
	emu.reg.setFlag(collision)
	emu.next()
	return nil
}

func (emu *EMU) skp(in Instruction) error {
	emu.skipIf(emu.keys[emu.reg.V[in.X]&0xF])
	return nil
}

func (emu *EMU) sknp(in Instruction) error {
	emu.skipIf(!emu.keys[emu.reg.V[in.X]&0xF])
	return nil
}

func (emu *EMU) ldVxDT(in Instruction) error {
	emu.reg.V[in.X] = emu.timers.Delay
	emu.next()
	return nil
}

// ldKey suspends the machine. The program counter stays put until KeyDown
// completes the instruction.
func (emu *EMU) ldKey(in Instruction) error {
	emu.state = AwaitingKey
	emu.waitReg = in.X
	return nil
}

func (emu *EMU) ldDTVx(in Instruction) error {
	emu.timers.Delay = emu.reg.V[in.X]
	emu.next()
	return nil
}

func (emu *EMU) ldSTVx(in Instruction) error {
	emu.timers.Sound = emu.reg.V[in.X]
	emu.next()
	return nil
}

func (emu *EMU) addI(in Instruction) error {
	sum := uint32(emu.reg.I) + uint32(emu.reg.V[in.X])
	emu.reg.I = uint16(sum)
	if emu.opts.OverflowI {
		emu.reg.setFlag(sum > 0xFFF)
	}
	emu.next()
	return nil
}

func (emu *EMU) ldF(in Instruction) error {
	emu.reg.I = FontAddr + uint16(emu.reg.V[in.X]&0xF)*glyphHeight
	emu.next()
	return nil
}

func (emu *EMU) ldB(in Instruction) error {
	b, err := emu.memory.Block(emu.reg.I, 3)
	if err != nil {
		return err
	}
	v := emu.reg.V[in.X]
	b[0], b[1], b[2] = v/100, v/10%10, v%10
	emu.next()
	return nil
}

func (emu *EMU) ldMemVx(in Instruction) error {
	b, err := emu.memory.Block(emu.reg.I, int(in.X)+1)
	if err != nil {
		return err
	}
	copy(b, emu.reg.V[:in.X+1])
	emu.next()
	return nil
}

func (emu *EMU) ldVxMem(in Instruction) error {
	b, err := emu.memory.Block(emu.reg.I, int(in.X)+1)
	if err != nil {
		return err
	}
	copy(emu.reg.V[:in.X+1], b)
	emu.next()
	return nil
}
