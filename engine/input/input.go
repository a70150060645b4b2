// Package input samples ebiten mouse and keyboard state once per frame and
// maps it onto viewer actions.
package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	// Mouse
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	prevMouseX       int
	prevMouseY       int
	LeftPressed      bool
	MiddlePressed    bool
	LeftJustPressed  bool
	RightJustPressed bool
	LeftJustReleased bool
	ScrollY          float64

	// Drag
	DragStartX, DragStartY int
	Dragging               bool
	DragThreshold          int

	// Keyboard
	KeysPressed map[ebiten.Key]bool
}

func NewInputState() *InputState {
	return &InputState{
		DragThreshold: 5,
		KeysPressed:   make(map[ebiten.Key]bool),
	}
}

var panKeys = []ebiten.Key{
	ebiten.KeyW, ebiten.KeyA, ebiten.KeyS, ebiten.KeyD,
	ebiten.KeyUp, ebiten.KeyDown, ebiten.KeyLeft, ebiten.KeyRight,
	ebiten.KeyShift,
}

// Update should be called every frame
func (s *InputState) Update() {
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	leftDown := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.LeftJustReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	s.LeftPressed = leftDown
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	_, s.ScrollY = ebiten.Wheel()

	// Drag tracking
	if s.LeftJustPressed {
		s.DragStartX = s.MouseX
		s.DragStartY = s.MouseY
		s.Dragging = false
	}
	if leftDown && !s.Dragging {
		s.Dragging = exceeds(s.MouseX-s.DragStartX, s.MouseY-s.DragStartY, s.DragThreshold)
	}
	if !leftDown {
		s.Dragging = false
	}

	for _, k := range panKeys {
		s.KeysPressed[k] = ebiten.IsKeyPressed(k)
	}
}

func exceeds(dx, dy, threshold int) bool {
	return dx*dx+dy*dy > threshold*threshold
}

// IsKeyJustPressed returns true if key was just pressed this frame
func (s *InputState) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// DragRect returns the selection rectangle if dragging
func (s *InputState) DragRect() (x1, y1, x2, y2 int, active bool) {
	if !s.Dragging {
		return 0, 0, 0, 0, false
	}
	return s.DragStartX, s.DragStartY, s.MouseX, s.MouseY, true
}

// Actions is what the viewer should do this frame
type Actions struct {
	PanX, PanY   int     // keyboard pan direction, -1..1
	DragX, DragY int     // middle-drag pan in pixels
	Zoom         float64 // multiplicative, 1 = none
	Fast         bool

	Click     bool // left click without drag, at the cursor
	BoxSelect bool // left drag released
	MoveOrder bool // right click, at the cursor
	Stop      bool
	Additive  bool // shift held for selection

	TogglePause bool
	ToggleTrees bool
	ToggleGrid  bool
	Replan      bool
	Snapshot    bool
	Quit        bool
}

// Actions maps the sampled state onto viewer actions. wasDragging is the
// drag flag from before the button was released.
func (s *InputState) Actions(wasDragging bool) Actions {
	a := Actions{Zoom: 1}
	if s.KeysPressed[ebiten.KeyW] || s.KeysPressed[ebiten.KeyUp] {
		a.PanY++
	}
	if s.KeysPressed[ebiten.KeyS] || s.KeysPressed[ebiten.KeyDown] {
		a.PanY--
	}
	if s.KeysPressed[ebiten.KeyA] || s.KeysPressed[ebiten.KeyLeft] {
		a.PanX--
	}
	if s.KeysPressed[ebiten.KeyD] || s.KeysPressed[ebiten.KeyRight] {
		a.PanX++
	}
	a.Fast = s.KeysPressed[ebiten.KeyShift]
	a.Additive = a.Fast
	if s.MiddlePressed {
		a.DragX, a.DragY = s.MouseDX, s.MouseDY
	}
	a.Zoom = zoomFactor(s.ScrollY)

	if s.LeftJustReleased {
		a.Click = !wasDragging
		a.BoxSelect = wasDragging
	}
	a.MoveOrder = s.RightJustPressed
	a.Stop = s.IsKeyJustPressed(ebiten.KeyX)

	a.TogglePause = s.IsKeyJustPressed(ebiten.KeySpace)
	a.ToggleTrees = s.IsKeyJustPressed(ebiten.KeyT)
	a.ToggleGrid = s.IsKeyJustPressed(ebiten.KeyG)
	a.Replan = s.IsKeyJustPressed(ebiten.KeyR)
	a.Snapshot = s.IsKeyJustPressed(ebiten.KeyP)
	a.Quit = s.IsKeyJustPressed(ebiten.KeyEscape)
	return a
}

// zoomFactor turns wheel ticks into a zoom step of 10% per tick
func zoomFactor(scrollY float64) float64 {
	switch {
	case scrollY > 0:
		return 1.1
	case scrollY < 0:
		return 1 / 1.1
	}
	return 1
}
