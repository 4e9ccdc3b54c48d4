package trap

import "github.com/mothkernel/core/internal/ioport"

// HardwarePIC is the real PIC implementation, backed by the privileged
// port-I/O primitives in internal/ioport. cmd/kernel wires this in;
// trap_test.go uses a fake instead (see PIC's doc comment).
type HardwarePIC struct{}

func (HardwarePIC) WriteCommand(port uint16, value byte) {
	ioport.Outb(port, value)
}
