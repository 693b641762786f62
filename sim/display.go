package sim

import (
	"errors"
	"time"
)

// ErrQuit is returned by a frame loop when the display reports a quit request.
var ErrQuit = errors.New("sim: quit requested")

// Display is the input and pacing side of a frontend.
type Display interface {
	// Tick blocks until the next frame slot.
	Tick()
	// QuitRequested polls pending input events and reports a quit request.
	QuitRequested() bool
}

// Headless is a Display without a window. With FPS > 0 it paces frames
// using a ticker; otherwise frames run back to back.
type Headless struct {
	ticker *time.Ticker
	quit   func() bool
}

// NewHeadless creates a headless display paced at fps (0 = unpaced).
func NewHeadless(fps int) *Headless {
	h := &Headless{}
	if fps > 0 {
		h.ticker = time.NewTicker(time.Second / time.Duration(fps))
	}
	return h
}

// OnQuit installs a poll function consulted by QuitRequested.
func (h *Headless) OnQuit(poll func() bool) {
	h.quit = poll
}

// Tick implements Display.
func (h *Headless) Tick() {
	if h.ticker != nil {
		<-h.ticker.C
	}
}

// QuitRequested implements Display.
func (h *Headless) QuitRequested() bool {
	if h.quit == nil {
		return false
	}
	return h.quit()
}

// Stop releases the pacing ticker.
func (h *Headless) Stop() {
	if h.ticker != nil {
		h.ticker.Stop()
	}
}
