package flappy

import (
	"context"
	"math/rand"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/sim"
	"github.com/pthm-cable/arcade/sprite"
)

// View renders a Flappy frame and paces the loop.
type View interface {
	sim.Display
	DrawFlappy(g *Game)
}

type headlessView struct{ sim.Display }

func (headlessView) DrawFlappy(*Game) {}

// Headless returns a View that paces and polls through d but draws nothing.
func Headless(d sim.Display) View {
	return headlessView{d}
}

// Game is one generation of Flappy Bird: every genome flies its own bird
// through a shared pipe course until all birds are eliminated.
type Game struct {
	cfg       *config.FlappyConfig
	threshold float64
	atlas     *sprite.Atlas
	view      View
	session   *sim.Session
	rng       *rand.Rand

	roster *sim.Roster[*Bird]
	pipes  []*Pipe
	base   *Base
	score  int
	frame  int

	sensors []float64
	doomed  []int
}

// New creates a generation with one pipe at the spawn line and no birds.
func New(cfg *config.Config, atlas *sprite.Atlas, view View, session *sim.Session, rng *rand.Rand) *Game {
	if view == nil {
		view = Headless(sim.NewHeadless(0))
	}
	if session == nil {
		session = &sim.Session{}
	}
	fc := &cfg.Flappy
	g := &Game{
		cfg:       fc,
		threshold: cfg.Evolution.Threshold,
		atlas:     atlas,
		view:      view,
		session:   session,
		rng:       rng,
		roster:    sim.NewRoster[*Bird](16),
		base:      NewBase(fc, atlas),
		sensors:   make([]float64, 0, 3),
	}
	g.pipes = append(g.pipes, NewPipe(fc, atlas, fc.PipeSpawnX, rng))
	return g
}

// AddAgent adds a bird controlled by brain whose fitness goes to genome.
func (g *Game) AddAgent(brain sim.Brain, genome sim.FitnessRecorder) int {
	bird := NewBird(g.cfg, g.atlas, g.cfg.BirdX, g.cfg.BirdY)
	return g.roster.Add(bird, brain, genome)
}

// Run steps the game until every bird is eliminated, the frame cap is hit,
// ctx is cancelled or the view asks to quit (sim.ErrQuit).
func (g *Game) Run(ctx context.Context) error {
	defer func() { g.session.RecordScore(g.score) }()
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
	if g.cfg.MaxFrames > 0 && g.frame >= g.cfg.MaxFrames {
		return false, nil
	}

	// Sense and act
	next := g.pipes[g.nextPipe()]
	for i := 0; i < g.roster.Len(); i++ {
		bird := g.roster.Entity(i)
		g.sensors = bird.Sensors(next, g.sensors)
		if sim.Decide(g.roster.Brain(i), g.sensors, g.threshold) {
			bird.Jump()
		}
	}

	for _, bird := range g.roster.Entities() {
		bird.Move()
	}

	// Collisions and pipe lifecycle
	g.doomed = g.doomed[:0]
	addPipe := false
	kept := g.pipes[:0]
	for _, p := range g.pipes {
		for i, bird := range g.roster.Entities() {
			if p.Collide(bird) {
				g.doom(i)
			}
			if !p.Passed && p.X < bird.X {
				p.Passed = true
				addPipe = true
			}
		}

		offScreen := p.OffScreen()
		p.Move()
		if !offScreen {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(g.pipes); i++ {
		g.pipes[i] = nil
	}
	g.pipes = kept

	for i, bird := range g.roster.Entities() {
		if bird.OutOfBounds() {
			g.doom(i)
		}
	}
	g.eliminate()

	if addPipe {
		g.score++
		g.roster.Reward(1)
		g.pipes = append(g.pipes, NewPipe(g.cfg, g.atlas, g.cfg.PipeSpawnX, g.rng))
	}

	g.base.Move()
	for _, bird := range g.roster.Entities() {
		bird.Animate()
	}

	g.frame++
	g.session.Frames++
	g.view.DrawFlappy(g)

	return g.roster.Len() > 0, nil
}

// nextPipe returns the index of the pipe the birds should steer for.
// All birds share one x, so the first bird decides.
func (g *Game) nextPipe() int {
	if len(g.pipes) > 1 && g.roster.Len() > 0 {
		lead := g.roster.Entity(0)
		if lead.X > g.pipes[0].X+g.pipes[0].Width() {
			return 1
		}
	}
	return 0
}

// doom marks the agent at index i for elimination at the end of the pass.
func (g *Game) doom(i int) {
	id := g.roster.ID(i)
	for _, d := range g.doomed {
		if d == id {
			return
		}
	}
	g.doomed = append(g.doomed, id)
}

// eliminate penalizes and removes every doomed agent.
func (g *Game) eliminate() {
	if len(g.doomed) == 0 {
		return
	}
	for i := 0; i < g.roster.Len(); i++ {
		id := g.roster.ID(i)
		for _, d := range g.doomed {
			if d == id {
				g.roster.Genome(i).AddFitness(-1)
				break
			}
		}
	}
	g.roster.Remove(g.doomed...)
}

// Birds returns the alive birds.
func (g *Game) Birds() []*Bird { return g.roster.Entities() }

// Pipes returns the pipes on screen, oldest first.
func (g *Game) Pipes() []*Pipe { return g.pipes }

// Base returns the ground.
func (g *Game) Base() *Base { return g.base }

// Score returns the number of pipes passed this generation.
func (g *Game) Score() int { return g.score }

// Alive returns the number of birds still flying.
func (g *Game) Alive() int { return g.roster.Len() }

// Frame returns the number of ticks simulated.
func (g *Game) Frame() int { return g.frame }

// Generation returns the current generation number.
func (g *Game) Generation() int { return g.session.Generation }

// Ordinal returns the 1-based generation number for display.
func (g *Game) Ordinal() int { return g.session.Ordinal() }

// Config returns the Flappy settings.
func (g *Game) Config() *config.FlappyConfig { return g.cfg }

// Atlas returns the sprites in use.
func (g *Game) Atlas() *sprite.Atlas { return g.atlas }
