package flappy

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sprite"
)

// Pipe is an obstacle pair with a fixed-height gap, scrolling left.
type Pipe struct {
	X      float64
	Height float64 // Y of the gap's top edge
	Top    float64 // Y of the top segment's top-left corner
	Bottom float64 // Y of the bottom segment's top-left corner
	Passed bool

	top    *sprite.Sprite
	bottom *sprite.Sprite
	cfg    *config.FlappyConfig
}

// NewPipe creates a pipe at x with a gap height drawn uniformly from
// [PipeMinHeight, PipeMaxHeight).
func NewPipe(cfg *config.FlappyConfig, atlas *sprite.Atlas, x float64, rng *rand.Rand) *Pipe {
	p := &Pipe{
		X:      x,
		top:    atlas.PipeTop,
		bottom: atlas.PipeBottom,
		cfg:    cfg,
	}
	h := cfg.PipeMinHeight + rng.Intn(cfg.PipeMaxHeight-cfg.PipeMinHeight)
	p.SetHeight(float64(h))
	return p
}

// SetHeight places the gap with its top edge at h.
func (p *Pipe) SetHeight(h float64) {
	p.Height = h
	p.Top = h - float64(p.top.Height())
	p.Bottom = h + p.cfg.PipeGap
}

// Width returns the pipe width in pixels.
func (p *Pipe) Width() float64 {
	return float64(p.top.Width())
}

// Move scrolls the pipe one tick to the left.
func (p *Pipe) Move() {
	p.X -= p.cfg.PipeVelocity
}

// OffScreen reports whether the pipe has fully left the playfield.
func (p *Pipe) OffScreen() bool {
	return p.X+p.Width() < 0
}

// TopSprite returns the downward-facing segment.
func (p *Pipe) TopSprite() *sprite.Sprite { return p.top }

// BottomSprite returns the upward-facing segment.
func (p *Pipe) BottomSprite() *sprite.Sprite { return p.bottom }

// Collide reports a pixel-level overlap between the bird's current frame
// and either pipe segment.
func (p *Pipe) Collide(b *Bird) bool {
	birdMask := b.Mask()
	bx := int(math.Round(b.X))
	by := int(math.Round(b.Y))
	px := int(math.Round(p.X))

	topOffsetY := int(math.Round(p.Top)) - by
	bottomOffsetY := int(math.Round(p.Bottom)) - by

	return birdMask.Overlap(p.bottom.Mask, px-bx, bottomOffsetY) ||
		birdMask.Overlap(p.top.Mask, px-bx, topOffsetY)
}
