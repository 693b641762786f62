// Package flappy implements the Flappy Bird simulation driven by evolved networks.
package flappy

import (
	"math"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sprite"
)

// Bird is a vertically moving agent body.
type Bird struct {
	X, Y      float64
	Tilt      float64 // Degrees, positive is nose up
	Velocity  float64 // Velocity set by the last jump
	TickCount int     // Ticks since the last jump
	Height    float64 // Y at the last jump

	frames   [3]*sprite.Sprite
	imgCount int
	frame    int

	cfg *config.FlappyConfig
}

// NewBird places a bird at (x, y).
func NewBird(cfg *config.FlappyConfig, atlas *sprite.Atlas, x, y float64) *Bird {
	return &Bird{
		X:      x,
		Y:      y,
		Height: y,
		frames: atlas.Bird,
		cfg:    cfg,
	}
}

// Jump gives the bird an upward impulse.
func (b *Bird) Jump() {
	b.Velocity = b.cfg.JumpVelocity
	b.TickCount = 0
	b.Height = b.Y
}

// Displacement returns the per-tick movement t ticks after a jump with
// velocity v: d = v*t + 0.5*g*t^2, capped at MaxFall downward. Upward
// movement gets RiseBoost extra pixels and is capped at MaxRise.
func Displacement(cfg *config.FlappyConfig, v float64, t int) float64 {
	ft := float64(t)
	d := v*ft + 0.5*cfg.Gravity*ft*ft

	if d >= cfg.MaxFall {
		d = cfg.MaxFall
	}
	if d < 0 {
		d -= cfg.RiseBoost
		if d < -cfg.MaxRise {
			d = -cfg.MaxRise
		}
	}
	return d
}

// Move advances the bird one tick and updates its tilt.
func (b *Bird) Move() {
	b.TickCount++
	d := Displacement(b.cfg, b.Velocity, b.TickCount)
	b.Y += d

	if d < 0 || b.Y < b.Height+b.cfg.TiltThreshold {
		if b.Tilt < b.cfg.MaxRotation {
			b.Tilt = b.cfg.MaxRotation
		}
	} else if b.Tilt > b.cfg.MinRotation {
		b.Tilt -= b.cfg.RotationVel
	}
}

// Animate advances the wing cycle: up, level, down, level, up.
// A diving bird holds its wings level.
func (b *Bird) Animate() {
	at := b.cfg.AnimationTime
	b.imgCount++

	switch {
	case b.imgCount < at:
		b.frame = 0
	case b.imgCount < at*2:
		b.frame = 1
	case b.imgCount < at*3:
		b.frame = 2
	case b.imgCount < at*4:
		b.frame = 1
	case b.imgCount == at*4+1:
		b.frame = 0
		b.imgCount = 0
	}

	if b.Tilt <= b.cfg.MinRotation+10 {
		b.frame = 1
		b.imgCount = at * 2
	}
}

// Frame returns the index of the current wing frame.
func (b *Bird) Frame() int {
	return b.frame
}

// Sprite returns the current wing frame sprite.
func (b *Bird) Sprite() *sprite.Sprite {
	return b.frames[b.frame]
}

// Mask returns the collision mask of the current frame.
func (b *Bird) Mask() *sprite.Mask {
	return b.Sprite().Mask
}

// Bottom returns the y of the bird's lower edge.
func (b *Bird) Bottom() float64 {
	return b.Y + float64(b.Sprite().Height())
}

// OutOfBounds reports whether the bird hit the floor or left through the top.
func (b *Bird) OutOfBounds() bool {
	return b.Bottom() >= b.cfg.Floor || b.Y < 0
}

// Sensors returns the network inputs: bird y and vertical distance to the
// gap's top and bottom edges of pipe.
func (b *Bird) Sensors(p *Pipe, buf []float64) []float64 {
	buf = append(buf[:0],
		b.Y,
		math.Abs(b.Y-p.Height),
		math.Abs(b.Y-p.Bottom),
	)
	return buf
}
