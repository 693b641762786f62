package pong

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/neural"
	"github.com/pthm-cable/arcade/sim"
	"github.com/pthm-cable/arcade/sprite"
)

// Evaluate returns the per-generation fitness function for Pong.
func Evaluate(cfg *config.Config, atlas *sprite.Atlas, view View, session *sim.Session, rng *rand.Rand) neural.EvaluateFunc {
	return func(ctx context.Context, gen *neural.Generation) error {
		session.Begin(gen.Number)
		g := New(cfg, atlas, view, session, rng)

		for _, ind := range gen.Individuals {
			var brain sim.Brain
			if ctrl, err := neural.NewController(ind); err != nil {
				slog.Warn("genome has no usable network", "genome", ind.ID, "error", err)
			} else {
				brain = ctrl
			}
			g.AddAgent(brain, ind)
		}

		err := g.Run(ctx)
		gen.Score = g.Deaths()
		gen.Frames = g.Frame()
		return err
	}
}
