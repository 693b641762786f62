package flappy

import (
	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sprite"
)

// Base is the scrolling ground, drawn as two tiles that leapfrog.
type Base struct {
	Y      float64
	X1, X2 float64

	img *sprite.Sprite
	vel float64
}

// NewBase creates the ground at the floor line.
func NewBase(cfg *config.FlappyConfig, atlas *sprite.Atlas) *Base {
	w := float64(atlas.Base.Width())
	return &Base{
		Y:   cfg.Floor,
		X1:  0,
		X2:  w,
		img: atlas.Base,
		vel: cfg.BaseVelocity,
	}
}

// Move scrolls both tiles and wraps the one that left the screen.
func (b *Base) Move() {
	w := b.Width()
	b.X1 -= b.vel
	b.X2 -= b.vel

	if b.X1+w < 0 {
		b.X1 = b.X2 + w
	}
	if b.X2+w < 0 {
		b.X2 = b.X1 + w
	}
}

// Width returns the tile width.
func (b *Base) Width() float64 {
	return float64(b.img.Width())
}

// Sprite returns the tile image.
func (b *Base) Sprite() *sprite.Sprite {
	return b.img
}
