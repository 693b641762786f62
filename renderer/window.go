package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcade/config"
	"github.com/pthm-cable/arcade/flappy"
	"github.com/pthm-cable/arcade/pong"
	"github.com/pthm-cable/arcade/sprite"
)

// Window is the graphical frontend. It paces the frame loop through
// raylib's target FPS and reports window close as a quit request.
type Window struct {
	cfg *config.Config
	tex *Textures

	width, height int32
	fontSize      int32

	fast   bool // Uncapped frame rate
	paused bool
	quit   bool

	redraw func() // Repeats the last frame while paused
}

var (
	_ flappy.View = (*Window)(nil)
	_ pong.View   = (*Window)(nil)
)

// Open creates the window for game ("flappy" or "pong") and uploads the atlas.
func Open(cfg *config.Config, game string, atlas *sprite.Atlas) *Window {
	w := &Window{
		cfg:      cfg,
		fontSize: int32(cfg.Screen.FontSize),
	}

	title := "Flappy Bird"
	w.width, w.height = int32(cfg.Flappy.Width), int32(cfg.Flappy.Height)
	if game == "pong" {
		title = "Pong"
		w.width, w.height = int32(cfg.Pong.Width), int32(cfg.Pong.Height)
	}

	rl.InitWindow(w.width, w.height, title)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	w.tex = LoadTextures(atlas)
	return w
}

// Close frees textures and closes the window.
func (w *Window) Close() {
	w.tex.Unload()
	rl.CloseWindow()
}

// Tick applies keyboard shortcuts and blocks while paused.
func (w *Window) Tick() {
	if rl.IsKeyPressed(rl.KeyF) {
		w.setFast(!w.fast)
	}
	if rl.IsKeyPressed(rl.KeyP) {
		w.paused = !w.paused
	}

	for w.paused && w.redraw != nil {
		if rl.WindowShouldClose() {
			w.quit = true
			return
		}
		if rl.IsKeyPressed(rl.KeyP) {
			w.paused = false
		}
		w.redraw()
	}
}

// QuitRequested reports whether the window was closed.
func (w *Window) QuitRequested() bool {
	return w.quit || rl.WindowShouldClose()
}

func (w *Window) setFast(fast bool) {
	w.fast = fast
	if fast {
		rl.SetTargetFPS(0)
	} else {
		rl.SetTargetFPS(int32(w.cfg.Screen.TargetFPS))
	}
}

// DrawFlappy renders a Flappy Bird frame.
func (w *Window) DrawFlappy(g *flappy.Game) {
	w.redraw = func() { w.drawFlappy(g) }
	w.drawFlappy(g)
}

func (w *Window) drawFlappy(g *flappy.Game) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.SkyBlue)

	rl.DrawTexture(w.tex.Background, 0, 0, rl.White)

	for _, p := range g.Pipes() {
		rl.DrawTexture(w.tex.PipeTop, int32(p.X), int32(p.Top), rl.White)
		rl.DrawTexture(w.tex.PipeBottom, int32(p.X), int32(p.Bottom), rl.White)
	}

	base := g.Base()
	rl.DrawTexture(w.tex.Base, int32(base.X1), int32(base.Y), rl.White)
	rl.DrawTexture(w.tex.Base, int32(base.X2), int32(base.Y), rl.White)

	for _, b := range g.Birds() {
		w.drawBird(b)
	}

	// Score top right, generation and survivors top left
	score := fmt.Sprintf("Score: %d", g.Score())
	rl.DrawText(score, w.width-10-rl.MeasureText(score, w.fontSize), 10, w.fontSize, rl.White)
	rl.DrawText(fmt.Sprintf("Gen: %d", g.Ordinal()), 10, 10, w.fontSize, rl.White)
	rl.DrawText(fmt.Sprintf("Alive: %d", g.Alive()), 10, 10+w.fontSize+10, w.fontSize, rl.White)

	w.drawControls()
	rl.EndDrawing()
}

// drawBird draws the current wing frame rotated about its center.
func (w *Window) drawBird(b *flappy.Bird) {
	tex := w.tex.Bird[b.Frame()]
	fw, fh := float32(tex.Width), float32(tex.Height)

	src := rl.Rectangle{X: 0, Y: 0, Width: fw, Height: fh}
	dst := rl.Rectangle{X: float32(b.X) + fw/2, Y: float32(b.Y) + fh/2, Width: fw, Height: fh}
	origin := rl.Vector2{X: fw / 2, Y: fh / 2}

	// Tilt is counter-clockwise, raylib rotates clockwise
	rl.DrawTexturePro(tex, src, dst, origin, float32(-b.Tilt), rl.White)
}

// DrawPong renders a Pong frame.
func (w *Window) DrawPong(g *pong.Game) {
	w.redraw = func() { w.drawPong(g) }
	w.drawPong(g)
}

func (w *Window) drawPong(g *pong.Game) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	rl.DrawTexture(w.tex.PongBackground, 0, 0, rl.White)

	for _, r := range g.Rallies() {
		rl.DrawTexture(w.tex.Paddle, int32(r.Paddle.X), int32(r.Paddle.Y), rl.White)
		rl.DrawTexture(w.tex.Ball, int32(r.Ball.X), int32(r.Ball.Y), rl.White)
	}

	deaths := fmt.Sprintf("Deaths: %d", g.Deaths())
	rl.DrawText(deaths, w.width-10-rl.MeasureText(deaths, w.fontSize), 10, w.fontSize, rl.White)
	rl.DrawText(fmt.Sprintf("Gen: %d", g.Ordinal()), 10, 10, w.fontSize, rl.White)

	w.drawControls()
	rl.EndDrawing()
}

// drawControls draws the speed and pause buttons along the bottom edge.
func (w *Window) drawControls() {
	y := float32(w.height) - 40

	if gui.Button(rl.Rectangle{X: 10, Y: y, Width: 100, Height: 30}, toggleText(w.fast, "Speed: max", "Speed: 1x")) {
		w.setFast(!w.fast)
	}
	if gui.Button(rl.Rectangle{X: 120, Y: y, Width: 100, Height: 30}, toggleText(w.paused, "Resume", "Pause")) {
		w.paused = !w.paused
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
