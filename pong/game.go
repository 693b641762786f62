package pong

import (
	"context"
	"math/rand"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sim"
	"github.com/pthm-cable/arcade/sprite"
)

// View renders a Pong frame and paces the loop.
type View interface {
	sim.Display
	DrawPong(g *Game)
}

type headlessView struct{ sim.Display }

func (headlessView) DrawPong(*Game) {}

// Headless returns a View that paces and polls through d but draws nothing.
func Headless(d sim.Display) View {
	return headlessView{d}
}

// Rally is one agent's paddle and its private ball.
type Rally struct {
	Paddle *Paddle
	Ball   *Ball
}

// Game is one generation of Pong. Every genome defends against its own
// ball; the score counts eliminations.
type Game struct {
	cfg       *config.Config
	threshold float64
	atlas     *sprite.Atlas
	view      View
	session   *sim.Session
	rng       *rand.Rand

	roster *sim.Roster[*Rally]
	deaths int
	frame  int

	sensors []float64
}

// New creates an empty generation.
func New(cfg *config.Config, atlas *sprite.Atlas, view View, session *sim.Session, rng *rand.Rand) *Game {
	if view == nil {
		view = Headless(sim.NewHeadless(0))
	}
	if session == nil {
		session = &sim.Session{}
	}
	return &Game{
		cfg:       cfg,
		threshold: cfg.Evolution.Threshold,
		atlas:     atlas,
		view:      view,
		session:   session,
		rng:       rng,
		roster:    sim.NewRoster[*Rally](16),
		sensors:   make([]float64, 0, 3),
	}
}

// AddAgent adds a paddle and a freshly served ball for genome.
func (g *Game) AddAgent(brain sim.Brain, genome sim.FitnessRecorder) int {
	r := &Rally{
		Paddle: NewPaddle(&g.cfg.Pong, g.atlas),
		Ball:   NewBall(g.cfg, g.atlas, g.rng),
	}
	return g.roster.Add(r, brain, genome)
}

// Run steps the game until every paddle is eliminated, the frame cap is hit,
// ctx is cancelled or the view asks to quit (sim.ErrQuit).
func (g *Game) Run(ctx context.Context) error {
	defer func() { g.session.RecordScore(g.deaths) }()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.view.Tick()
		running, err := g.Step()
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
	}
}

// Step runs one tick. It returns false once the generation is over.
func (g *Game) Step() (bool, error) {
	if g.view.QuitRequested() {
		return false, sim.ErrQuit
	}
	if g.roster.Len() == 0 {
		return false, nil
	}
	if g.cfg.Pong.MaxFrames > 0 && g.frame >= g.cfg.Pong.MaxFrames {
		return false, nil
	}

	for i, r := range g.roster.Entities() {
		g.sensors = r.Paddle.Sensors(r.Ball, g.sensors)
		if sim.Decide(g.roster.Brain(i), g.sensors, g.threshold) {
			r.Paddle.MoveUp()
		} else {
			r.Paddle.MoveDown()
		}
	}

	for _, r := range g.roster.Entities() {
		r.Ball.Move()
	}

	g.deaths += g.roster.Retain(func(i int) bool {
		r := g.roster.Entity(i)
		if r.Ball.Missed(r.Paddle) {
			g.roster.Genome(i).AddFitness(-1)
			return false
		}
		switch r.Ball.Collide(r.Paddle) {
		case ContactPaddle:
			g.roster.Genome(i).AddFitness(1)
			r.Ball.Hit(g.rng)
		case ContactWall:
			r.Ball.Hit(g.rng)
		}
		return true
	})

	g.frame++
	g.session.Frames++
	g.view.DrawPong(g)

	return g.roster.Len() > 0, nil
}

// Rallies returns the alive agents' paddles and balls.
func (g *Game) Rallies() []*Rally { return g.roster.Entities() }

// Deaths returns the number of paddles eliminated this generation.
func (g *Game) Deaths() int { return g.deaths }

// Alive returns the number of paddles still in play.
func (g *Game) Alive() int { return g.roster.Len() }

// Frame returns the number of ticks simulated.
func (g *Game) Frame() int { return g.frame }

// Generation returns the current generation number.
func (g *Game) Generation() int { return g.session.Generation }

// Ordinal returns the 1-based generation number for display.
func (g *Game) Ordinal() int { return g.session.Ordinal() }

// Config returns the Pong settings.
func (g *Game) Config() *config.PongConfig { return &g.cfg.Pong }

// Atlas returns the sprites in use.
func (g *Game) Atlas() *sprite.Atlas { return g.atlas }
