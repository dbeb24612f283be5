package cpu

import "fmt"

const (
	MemorySize   = 4096
	ProgramStart = 0x200
	maxRomSize   = MemorySize - ProgramStart
)

// Memory is the flat 4KB address space. The font lives below ProgramStart
// and the ROM is copied in at ProgramStart.
type Memory [MemorySize]uint8

func memoryFault(addr int) error {
	return &Fault{Code: MemoryFault, Addr: addr}
}

func romTooLarge(size int) error {
	return &Fault{
		Code: RomTooLarge,
		Err:  fmt.Errorf("%d bytes, limit is %d", size, maxRomSize),
	}
}

// Load copies rom into memory at ProgramStart. Nothing is written if the
// rom does not fit.
func (m *Memory) Load(rom []byte) error {
	if len(rom) > maxRomSize {
		return romTooLarge(len(rom))
	}
	copy(m[ProgramStart:], rom)
	return nil
}

// LoadFont copies the digit sprites into memory at FontAddr.
func (m *Memory) LoadFont(set [FontSize]uint8) {
	copy(m[FontAddr:], set[:])
}

func (m *Memory) Read(addr uint16) (uint8, error) {
	if int(addr) >= MemorySize {
		return 0, memoryFault(int(addr))
	}
	return m[addr], nil
}

func (m *Memory) Write(addr uint16, v uint8) error {
	if int(addr) >= MemorySize {
		return memoryFault(int(addr))
	}
	m[addr] = v
	return nil
}

// ReadWord returns the big-endian instruction word at addr.
func (m *Memory) ReadWord(addr uint16) (uint16, error) {
	if int(addr)+1 >= MemorySize {
		return 0, memoryFault(int(addr) + 1)
	}
	return uint16(m[addr])<<8 | uint16(m[addr+1]), nil
}

// Block returns the n bytes starting at addr. The slice aliases memory, so
// writes through it land in memory. The whole range is checked before
// anything is returned so a faulting instruction leaves memory untouched.
func (m *Memory) Block(addr uint16, n int) ([]uint8, error) {
	end := int(addr) + n
	if end > MemorySize {
		return nil, memoryFault(MemorySize)
	}
	return m[addr:end], nil
}
