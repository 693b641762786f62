package pong

import (
	"math/rand"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sprite"
)

// Contact is the result of a ball collision test.
type Contact int

const (
	ContactNone Contact = iota
	ContactPaddle
	ContactWall // Far wall opposite the paddle
)

// Ball moves with independent x and y speeds and direction signs.
type Ball struct {
	X, Y       float64
	XVel, YVel float64
	XDir, YDir float64 // -1 or 1

	size     float64
	hitYSpan int
	img      *sprite.Sprite
	cfg      *config.PongConfig
}

// NewBall serves a ball from the centre line towards the paddle with a
// random height and random speeds.
func NewBall(cfg *config.Config, atlas *sprite.Atlas, rng *rand.Rand) *Ball {
	pc := &cfg.Pong
	size := float64(pc.BallSize)
	return &Ball{
		X:    (float64(pc.Width) - size) / 2,
		Y:    float64(pc.BallMinY + rng.Intn(cfg.Derived.PongBallYSpan)),
		XVel: float64(pc.BallMinSpeed + rng.Intn(cfg.Derived.PongBallSpeedSpan)),
		YVel: float64(pc.BallMinSpeed + rng.Intn(cfg.Derived.PongBallSpeedSpan)),
		XDir: -1,
		YDir: -1,

		size:     size,
		hitYSpan: cfg.Derived.PongHitYSpeedSpan,
		img:      atlas.Ball,
		cfg:      pc,
	}
}

// Size returns the ball edge length.
func (b *Ball) Size() float64 { return b.size }

// Floor returns the largest y the ball may occupy.
func (b *Ball) Floor() float64 { return float64(b.cfg.Height) - b.size }

// Move advances the ball one tick. The vertical direction flips when the
// ball sits on the floor or ceiling and is still heading into it; the
// result is clamped to the court.
func (b *Ball) Move() {
	vy := b.YVel * b.YDir
	floor := b.Floor()
	if (b.Y >= floor && vy > 0) || (b.Y <= 0 && vy < 0) {
		b.YDir = -b.YDir
	}

	b.X += b.XVel * b.XDir
	b.Y += b.YVel * b.YDir

	if b.Y < 0 {
		b.Y = 0
	} else if b.Y > floor {
		b.Y = floor
	}
}

// Missed reports whether the ball got behind the paddle's face.
func (b *Ball) Missed(p *Paddle) bool {
	return b.X < p.X+p.Width()-b.cfg.MissMargin
}

// Collide tests the ball against the paddle and the far wall. Only a ball
// travelling towards a surface can hit it.
func (b *Ball) Collide(p *Paddle) Contact {
	vx := b.XVel * b.XDir
	if vx < 0 && p.X+p.Width() >= b.X && p.Y <= b.Y && b.Y <= p.Y+p.Height() {
		return ContactPaddle
	}
	if vx > 0 && b.X+b.size >= float64(b.cfg.Width) {
		return ContactWall
	}
	return ContactNone
}

// Hit returns the ball off a surface: the horizontal direction inverts, the
// horizontal speed jumps to HitSpeed and the vertical speed is re-drawn.
func (b *Ball) Hit(rng *rand.Rand) {
	b.XDir = -b.XDir
	b.XVel = b.cfg.HitSpeed
	b.YVel = float64(b.cfg.HitMinYSpeed + rng.Intn(b.hitYSpan))
}

// Sprite returns the ball image.
func (b *Ball) Sprite() *sprite.Sprite { return b.img }
