package eventqueue

// Kind tags an Event's variant with a single-character code.
type Kind byte

const (
	KindKey    Kind = 'k'
	KindMouse  Kind = 'm'
	KindResize Kind = 'r'
	KindQuit   Kind = 'q'
)

// Scancodes the debug console and session care about, from PS/2 set 1.
const (
	ScancodeF1  = 0x3B
	ScancodeF2  = 0x3C
	ScancodeBKS = 0x0E
)

// Event is the flat, tagged record produced by IRQ handlers: a kind code
// plus three machine-word payload slots. It is deliberately small and
// copyable so pushing one from interrupt context never allocates.
type Event struct {
	Kind Kind
	A    int
	B    int
	C    int
}

// KeyEvent is the decoded form of a KindKey Event.
type KeyEvent struct {
	Scancode int
	Char     rune
	Pressed  bool
}

// MouseEvent is the decoded form of a KindMouse Event: relative motion plus
// button state, packed the way the flat Event carries it.
type MouseEvent struct {
	DX, DY  int
	Buttons int
}

// ResizeEvent is the decoded form of a KindResize Event.
type ResizeEvent struct {
	Width, Height int
}

// ToOption converts the flat Event into its tagged variant. The conversion
// is total: unrecognized kinds decode to ok=false rather than panicking,
// since a corrupted or future Event must never crash the event task.
func (e Event) ToOption() (any, bool) {
	switch e.Kind {
	case KindKey:
		return KeyEvent{
			Scancode: e.A,
			Char:     rune(e.B),
			Pressed:  e.C != 0,
		}, true
	case KindMouse:
		return MouseEvent{DX: e.A, DY: e.B, Buttons: e.C}, true
	case KindResize:
		return ResizeEvent{Width: e.A, Height: e.B}, true
	case KindQuit:
		return struct{}{}, true
	default:
		return nil, false
	}
}

// NewKeyEvent builds the flat Event for a key press/release.
func NewKeyEvent(scancode int, ch rune, pressed bool) Event {
	p := 0
	if pressed {
		p = 1
	}
	return Event{Kind: KindKey, A: scancode, B: int(ch), C: p}
}
