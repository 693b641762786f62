package flappy

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/neural"
	"github.com/pthm-cable/arcade/sim"
	"github.com/pthm-cable/arcade/sprite"
)

// hover jumps whenever the bird sinks below y, keeping it inside a gap.
func hover(y float64) sim.Brain {
	return sim.BrainFunc(func(in []float64) ([]float64, error) {
		if in[0] > y {
			return []float64{1}, nil
		}
		return []float64{0}, nil
	})
}

// fixedGapConfig returns defaults with every pipe gap spanning 250..450.
func fixedGapConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Flappy.PipeMinHeight = 250
	cfg.Flappy.PipeMaxHeight = 251
	return cfg
}

type recordingView struct {
	draws int
	quit  bool
}

func (v *recordingView) Tick()               {}
func (v *recordingView) QuitRequested() bool { return v.quit }
func (v *recordingView) DrawFlappy(*Game)    { v.draws++ }

func TestDisplacement(t *testing.T) {
	cfg := &config.Defaults().Flappy

	if d := Displacement(cfg, 0, 1); d != 1.5 {
		t.Errorf("free fall first tick = %v, want 1.5", d)
	}
	if d := Displacement(cfg, cfg.JumpVelocity, 1); d != -11 {
		t.Errorf("first tick after jump = %v, want -11", d)
	}

	prev := Displacement(cfg, cfg.JumpVelocity, 3)
	for tick := 1; tick < 60; tick++ {
		d := Displacement(cfg, cfg.JumpVelocity, tick)
		if d > cfg.MaxFall || d < -cfg.MaxRise {
			t.Fatalf("tick %d: displacement %v outside [%v, %v]", tick, d, -cfg.MaxRise, cfg.MaxFall)
		}
		if tick >= 4 {
			if d < prev {
				t.Fatalf("tick %d: displacement %v decreased from %v", tick, d, prev)
			}
			prev = d
		}
	}
	if d := Displacement(cfg, 0, 50); d != cfg.MaxFall {
		t.Errorf("terminal fall = %v, want %v", d, cfg.MaxFall)
	}
}

func TestPipeGap(t *testing.T) {
	cfg := config.Defaults()
	atlas := sprite.Procedural()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		p := NewPipe(&cfg.Flappy, atlas, cfg.Flappy.PipeSpawnX, rng)
		if p.Height < float64(cfg.Flappy.PipeMinHeight) || p.Height >= float64(cfg.Flappy.PipeMaxHeight) {
			t.Fatalf("height %v outside [%d, %d)", p.Height, cfg.Flappy.PipeMinHeight, cfg.Flappy.PipeMaxHeight)
		}
		if p.Bottom-p.Height != cfg.Flappy.PipeGap {
			t.Fatalf("gap = %v, want %v", p.Bottom-p.Height, cfg.Flappy.PipeGap)
		}
		if p.Top != p.Height-float64(sprite.PipeHeight) {
			t.Fatalf("top = %v, want %v", p.Top, p.Height-float64(sprite.PipeHeight))
		}
	}
}

func TestPipeCollide(t *testing.T) {
	cfg := config.Defaults()
	atlas := sprite.Procedural()

	tests := []struct {
		name   string
		birdY  float64
		pipeDX float64
		want   bool
	}{
		{"inside gap", 350, 0, false},
		{"clips top segment", 280, 0, true},
		{"clips bottom segment", 470, 0, true},
		{"pipe far ahead", 280, 200, false},
		// Bounding boxes share a corner, the bird's ellipse does not reach it
		{"transparent corner", 298, 64, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBird(&cfg.Flappy, atlas, 230, tt.birdY)
			p := &Pipe{X: 230 + tt.pipeDX, top: atlas.PipeTop, bottom: atlas.PipeBottom, cfg: &cfg.Flappy}
			p.SetHeight(300)
			if got := p.Collide(b); got != tt.want {
				t.Errorf("Collide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaseWraps(t *testing.T) {
	cfg := config.Defaults()
	base := NewBase(&cfg.Flappy, sprite.Procedural())

	for i := 0; i < 1000; i++ {
		base.Move()
		w := base.Width()
		if base.X1 < -w || base.X2 < -w {
			t.Fatalf("tile left the screen: x1=%v x2=%v", base.X1, base.X2)
		}
		if d := base.X2 - base.X1; d != w && d != -w {
			t.Fatalf("tiles not adjacent: x1=%v x2=%v", base.X1, base.X2)
		}
	}
}

func TestSinkingBirdEliminated(t *testing.T) {
	cfg := config.Defaults()
	g := New(cfg, sprite.Procedural(), nil, nil, rand.New(rand.NewSource(7)))

	var tally sim.Tally
	g.AddAgent(sim.Constant(0.4), &tally)

	lastY := g.Birds()[0].Y
	for {
		running, err := g.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if !running {
			break
		}
		y := g.Birds()[0].Y
		if y <= lastY {
			t.Fatalf("bird rose from %v to %v without jumping", lastY, y)
		}
		lastY = y
	}

	if g.Alive() != 0 {
		t.Errorf("alive = %d, want 0", g.Alive())
	}
	if tally.Fitness != -1 || tally.Deltas != 1 {
		t.Errorf("fitness = %v over %d deltas, want -1 over 1", tally.Fitness, tally.Deltas)
	}
	if g.Score() != 0 {
		t.Errorf("score = %d, want 0", g.Score())
	}
}

func TestPassingPipeScores(t *testing.T) {
	cfg := fixedGapConfig()
	g := New(cfg, sprite.Procedural(), nil, nil, rand.New(rand.NewSource(3)))

	var hovering, sinking sim.Tally
	g.AddAgent(hover(370), &hovering)
	g.AddAgent(sim.Constant(0), &sinking)

	for i := 0; i < 300 && g.Score() == 0; i++ {
		if _, err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if g.Score() != 1 {
		t.Fatalf("score = %d, want 1", g.Score())
	}
	if g.Alive() != 1 {
		t.Fatalf("alive = %d, want 1", g.Alive())
	}
	if hovering.Fitness != 1 {
		t.Errorf("hovering fitness = %v, want 1", hovering.Fitness)
	}
	if sinking.Fitness != -1 || sinking.Deltas != 1 {
		t.Errorf("sinking fitness = %v over %d deltas, want -1 over 1", sinking.Fitness, sinking.Deltas)
	}

	pipes := g.Pipes()
	if len(pipes) != 2 {
		t.Fatalf("pipes = %d, want 2", len(pipes))
	}
	if !pipes[0].Passed {
		t.Error("first pipe should be marked passed")
	}
	if pipes[1].X != cfg.Flappy.PipeSpawnX {
		t.Errorf("new pipe x = %v, want %v", pipes[1].X, cfg.Flappy.PipeSpawnX)
	}

	// Keep flying until the first pipe's right edge has left the screen
	first, second := pipes[0], pipes[1]
	for i := 0; i < 300 && !first.OffScreen(); i++ {
		if _, err := g.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !first.OffScreen() {
		t.Fatalf("first pipe still at x=%v", first.X)
	}
	if g.Score() != 1 {
		t.Errorf("score = %d once the first pipe left, want 1", g.Score())
	}
	pipes = g.Pipes()
	if len(pipes) != 2 || pipes[0] != first || pipes[1] != second {
		t.Errorf("pipes = %d, want the first pipe followed by the appended one", len(pipes))
	}
	if g.Alive() != 1 || hovering.Fitness != 1 {
		t.Errorf("alive = %d, hovering fitness = %v, want 1 and 1", g.Alive(), hovering.Fitness)
	}
}

func TestMaxFramesStopsWithoutPenalty(t *testing.T) {
	cfg := fixedGapConfig()
	cfg.Flappy.MaxFrames = 10
	view := &recordingView{}
	session := &sim.Session{}
	g := New(cfg, sprite.Procedural(), view, session, rand.New(rand.NewSource(1)))

	var tally sim.Tally
	g.AddAgent(hover(370), &tally)

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.Frame() != 10 || view.draws != 10 || session.Frames != 10 {
		t.Errorf("frame=%d draws=%d session frames=%d, want 10", g.Frame(), view.draws, session.Frames)
	}
	if g.Alive() != 1 || tally.Deltas != 0 {
		t.Errorf("alive=%d deltas=%d, want survivor with no deltas", g.Alive(), tally.Deltas)
	}
	if g.Generation() != 0 || g.Ordinal() != 1 {
		t.Errorf("generation = %d shown as %d, want 0 shown as 1", g.Generation(), g.Ordinal())
	}
}

func TestQuitRequested(t *testing.T) {
	view := &recordingView{quit: true}
	g := New(config.Defaults(), sprite.Procedural(), view, nil, rand.New(rand.NewSource(1)))
	g.AddAgent(sim.Constant(0), &sim.Tally{})

	if err := g.Run(context.Background()); !errors.Is(err, sim.ErrQuit) {
		t.Fatalf("Run error = %v, want ErrQuit", err)
	}
	if view.draws != 0 {
		t.Errorf("draws = %d, want 0", view.draws)
	}
}

func TestEmptyGenerationEndsImmediately(t *testing.T) {
	g := New(config.Defaults(), sprite.Procedural(), nil, nil, rand.New(rand.NewSource(1)))
	running, err := g.Step()
	if err != nil || running {
		t.Errorf("Step on empty game = (%v, %v), want (false, nil)", running, err)
	}
}

func TestHeadlessViewQuit(t *testing.T) {
	h := sim.NewHeadless(0)
	quit := false
	h.OnQuit(func() bool { return quit })

	g := New(config.Defaults(), sprite.Procedural(), Headless(h), nil, rand.New(rand.NewSource(1)))
	g.AddAgent(hover(350), &sim.Tally{})

	for i := 0; i < 3; i++ {
		if running, err := g.Step(); err != nil || !running {
			t.Fatalf("step %d = (%v, %v), want running", i, running, err)
		}
	}
	quit = true
	if _, err := g.Step(); !errors.Is(err, sim.ErrQuit) {
		t.Errorf("Step after quit = %v, want ErrQuit", err)
	}
}

func TestEvaluate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Flappy.MaxFrames = 200
	rng := rand.New(rand.NewSource(3))

	gen := &neural.Generation{Number: 4}
	for i := 1; i <= 5; i++ {
		gen.Individuals = append(gen.Individuals, &neural.Individual{
			ID:     i,
			Genome: neural.CreateBrainGenome(rng, i, neural.BrainInputs, neural.BrainOutputs, 1.0),
		})
	}
	// No genome means no network: the bird never flaps
	broken := &neural.Individual{ID: 99}
	gen.Individuals = append(gen.Individuals, broken)

	session := &sim.Session{}
	eval := Evaluate(cfg, sprite.Procedural(), nil, session, rng)
	if err := eval(context.Background(), gen); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if session.Generation != 4 {
		t.Errorf("session generation = %d, want 4", session.Generation)
	}
	if gen.Frames <= 0 || gen.Frames > 200 {
		t.Errorf("frames = %d, want 1..200", gen.Frames)
	}
	if session.Frames != gen.Frames {
		t.Errorf("session frames = %d, want %d", session.Frames, gen.Frames)
	}
	if broken.Fitness != -1 {
		t.Errorf("broken genome fitness = %v, want -1", broken.Fitness)
	}
	for _, ind := range gen.Individuals {
		if ind.Fitness < -1 {
			t.Errorf("genome %d penalized more than once: %v", ind.ID, ind.Fitness)
		}
	}
}
