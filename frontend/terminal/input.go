package terminal

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/grovewalk/game/engine"
)

// DefaultHoldWindow is how long a key press counts as held. Terminals
// report key repeats but never key releases.
const DefaultHoldWindow = 180 * time.Millisecond

// Action is what a terminal event asks the game to do
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionReset
	ActionHover
	ActionClick
)

// Input turns key presses into a held-intent snapshot
type Input struct {
	hold time.Duration
	held map[engine.Direction]time.Time

	buttons tcell.ButtonMask
}

// NewInput creates an input tracker; hold <= 0 uses DefaultHoldWindow
func NewInput(hold time.Duration) *Input {
	if hold <= 0 {
		hold = DefaultHoldWindow
	}
	return &Input{hold: hold, held: make(map[engine.Direction]time.Time)}
}

// Press marks dir held until now plus the hold window
func (in *Input) Press(dir engine.Direction, now time.Time) {
	in.held[dir] = now.Add(in.hold)
}

// Intent returns the directions still held at now
func (in *Input) Intent(now time.Time) engine.Intent {
	held := func(d engine.Direction) bool {
		until, ok := in.held[d]
		if ok && !now.Before(until) {
			delete(in.held, d)
			return false
		}
		return ok
	}
	return engine.Intent{
		Up:    held(engine.Up),
		Down:  held(engine.Down),
		Left:  held(engine.Left),
		Right: held(engine.Right),
	}
}

// Release drops every held key
func (in *Input) Release() {
	clear(in.held)
}

// HandleKey records direction keys and reports control actions
func (in *Input) HandleKey(ev *tcell.EventKey, now time.Time) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyUp:
		in.Press(engine.Up, now)
	case tcell.KeyDown:
		in.Press(engine.Down, now)
	case tcell.KeyLeft:
		in.Press(engine.Left, now)
	case tcell.KeyRight:
		in.Press(engine.Right, now)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return ActionQuit
		case 'r', 'R':
			return ActionReset
		case 'w', 'W':
			in.Press(engine.Up, now)
		case 's', 'S':
			in.Press(engine.Down, now)
		case 'a', 'A':
			in.Press(engine.Left, now)
		case 'd', 'D':
			in.Press(engine.Right, now)
		}
	}
	return ActionNone
}

// HandleMouse reports a hover for motion and a click on the left button's
// press edge
func (in *Input) HandleMouse(ev *tcell.EventMouse) Action {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && in.buttons&tcell.Button1 == 0
	in.buttons = buttons
	if pressed {
		return ActionClick
	}
	return ActionHover
}
