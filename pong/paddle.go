// Package pong implements the single-paddle Pong simulation driven by evolved networks.
package pong

import (
	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sprite"
)

// Paddle is the agent body: it only moves vertically, one fixed step per tick.
type Paddle struct {
	X, Y float64

	img *sprite.Sprite
	cfg *config.PongConfig
}

// NewPaddle places a paddle at PaddleX, vertically centred.
func NewPaddle(cfg *config.PongConfig, atlas *sprite.Atlas) *Paddle {
	h := float64(atlas.Paddle.Height())
	return &Paddle{
		X:   cfg.PaddleX,
		Y:   (float64(cfg.Height) - h) / 2,
		img: atlas.Paddle,
		cfg: cfg,
	}
}

// Width returns the paddle width.
func (p *Paddle) Width() float64 { return float64(p.img.Width()) }

// Height returns the paddle height.
func (p *Paddle) Height() float64 { return float64(p.img.Height()) }

// MoveUp steps up unless the paddle is already above PaddleMinY.
func (p *Paddle) MoveUp() {
	if p.Y >= p.cfg.PaddleMinY {
		p.Y -= p.cfg.PaddleVelocity
	}
}

// MoveDown steps down unless the paddle is already past the bottom limit.
func (p *Paddle) MoveDown() {
	if p.Y <= float64(p.cfg.Height)+p.cfg.PaddleMaxSlack-p.Height() {
		p.Y += p.cfg.PaddleVelocity
	}
}

// Sprite returns the paddle image.
func (p *Paddle) Sprite() *sprite.Sprite { return p.img }

// Sensors returns the network inputs: paddle y and the horizontal and
// vertical distance to ball.
func (p *Paddle) Sensors(b *Ball, buf []float64) []float64 {
	dx := p.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return append(buf[:0], p.Y, dx, dy)
}
