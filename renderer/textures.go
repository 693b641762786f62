// Package renderer draws the arcade games in a raylib window.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arcade/sprite"
)

// Textures holds GPU copies of the atlas sprites.
type Textures struct {
	Bird       [3]rl.Texture2D
	PipeTop    rl.Texture2D
	PipeBottom rl.Texture2D
	Base       rl.Texture2D
	Background rl.Texture2D

	PongBackground rl.Texture2D
	Paddle         rl.Texture2D
	Ball           rl.Texture2D

	loaded []rl.Texture2D
}

// LoadTextures uploads every sprite of atlas (must be called after the
// raylib window is created).
func LoadTextures(atlas *sprite.Atlas) *Textures {
	t := &Textures{}
	for i, s := range atlas.Bird {
		t.Bird[i] = t.load(s)
	}
	t.PipeTop = t.load(atlas.PipeTop)
	t.PipeBottom = t.load(atlas.PipeBottom)
	t.Base = t.load(atlas.Base)
	t.Background = t.load(atlas.Background)
	t.PongBackground = t.load(atlas.PongBackground)
	t.Paddle = t.load(atlas.Paddle)
	t.Ball = t.load(atlas.Ball)
	return t
}

func (t *Textures) load(s *sprite.Sprite) rl.Texture2D {
	img := rl.NewImageFromImage(s.Image)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	t.loaded = append(t.loaded, tex)
	return tex
}

// Unload frees GPU resources.
func (t *Textures) Unload() {
	for _, tex := range t.loaded {
		rl.UnloadTexture(tex)
	}
	t.loaded = nil
}
