package state

import (
	"github.com/charmbracelet/bubbles/viewport"
)

// UIState holds the viewport, cursor and prompt state of the inbox.
type UIState struct {
	viewport viewport.Model
	width    int
	height   int
	cursor   int

	confirmClear bool
}

// NewUIState creates a UIState with default dimensions.
func NewUIState() *UIState {
	u := &UIState{width: defaultViewportWidth, height: defaultViewportHeight}
	u.UpdateViewportSize()
	return u
}

// Viewport returns the viewport model.
func (u *UIState) Viewport() *viewport.Model {
	return &u.viewport
}

// Width returns the current width of the UI.
func (u *UIState) Width() int {
	return u.width
}

// Height returns the current height of the UI.
func (u *UIState) Height() int {
	return u.height
}

// Resize updates the dimensions and rebuilds the viewport. Non-positive
// values fall back to the defaults.
func (u *UIState) Resize(width, height int) {
	u.width, u.height = width, height
	if u.width <= 0 {
		u.width = defaultViewportWidth
	}
	if u.height <= 0 {
		u.height = defaultViewportHeight
	}
	u.UpdateViewportSize()
}

// UpdateViewportSize sizes the viewport to the space left by the header and footer.
func (u *UIState) UpdateViewportSize() {
	h := u.height - headerFooterLines
	if h < 1 {
		h = 1
	}
	u.viewport = viewport.New(u.width, h)
}

// Cursor returns the current cursor position.
func (u *UIState) Cursor() int {
	return u.cursor
}

// MoveCursorUp moves the cursor up one position if possible.
func (u *UIState) MoveCursorUp() {
	if u.cursor > 0 {
		u.cursor--
	}
}

// MoveCursorDown moves the cursor down one position if possible.
func (u *UIState) MoveCursorDown(listLen int) {
	if u.cursor < listLen-1 {
		u.cursor++
	}
}

// AdjustCursorBounds keeps the cursor inside a list of listLen items.
func (u *UIState) AdjustCursorBounds(listLen int) {
	if listLen == 0 || u.cursor < 0 {
		u.cursor = 0
		return
	}
	if u.cursor >= listLen {
		u.cursor = listLen - 1
	}
}

// ResetCursor moves the cursor to the first item.
func (u *UIState) ResetCursor() {
	u.cursor = 0
	u.viewport.GotoTop()
}

// EnsureCursorVisible scrolls the viewport so the cursor row is shown.
func (u *UIState) EnsureCursorVisible(listLen int) {
	if listLen == 0 {
		return
	}
	offset := u.viewport.YOffset
	if u.cursor < offset {
		u.viewport.SetYOffset(u.cursor)
	}
	if u.cursor >= offset+u.viewport.Height {
		u.viewport.SetYOffset(u.cursor - u.viewport.Height + 1)
	}
}

// ConfirmingClear reports whether the delete-all prompt is shown.
func (u *UIState) ConfirmingClear() bool {
	return u.confirmClear
}

// SetConfirmClear shows or hides the delete-all prompt.
func (u *UIState) SetConfirmClear(active bool) {
	u.confirmClear = active
}
