package sprite

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// Sprite is an image paired with its collision mask.
type Sprite struct {
	Image image.Image
	Mask  *Mask
}

// NewSprite wraps img and computes its mask.
func NewSprite(img image.Image) *Sprite {
	return &Sprite{Image: img, Mask: NewMask(img)}
}

// Width returns the sprite width in pixels.
func (s *Sprite) Width() int { return s.Image.Bounds().Dx() }

// Height returns the sprite height in pixels.
func (s *Sprite) Height() int { return s.Image.Bounds().Dy() }

// Atlas holds every sprite used by the two games.
type Atlas struct {
	Bird       [3]*Sprite // Wing frames: up, level, down
	PipeBottom *Sprite
	PipeTop    *Sprite // PipeBottom flipped vertically
	Base       *Sprite
	Background *Sprite

	PongBackground *Sprite
	Paddle         *Sprite
	Ball           *Sprite
}

// Sprite sizes used when drawing procedurally; they match the scaled PNG assets.
const (
	BirdWidth    = 68
	BirdHeight   = 48
	PipeWidth    = 104
	PipeHeight   = 640
	BaseWidth    = 672
	BaseHeight   = 224
	BGWidth      = 576
	BGHeight     = 1024
	PaddleWidth  = 20
	PaddleHeight = 120
	BallSize     = 20
)

// asset file names inside an assets directory
const (
	fileBird1      = "bird1.png"
	fileBird2      = "bird2.png"
	fileBird3      = "bird3.png"
	filePipe       = "pipe.png"
	fileBase       = "base.png"
	fileBG         = "bg.png"
	filePongBG     = "pong_background.png"
	filePongPaddle = "pong_paddle.png"
	filePongBall   = "white_square.png"
)

// Load reads sprites from dir. An empty dir yields the procedural atlas.
// Flappy images are scaled 2x, the paddle 4x and the ball to 20x20, the
// same way the art was authored for.
func Load(dir string) (*Atlas, error) {
	if dir == "" {
		return Procedural(), nil
	}

	a := &Atlas{}
	for i, name := range []string{fileBird1, fileBird2, fileBird3} {
		img, err := loadScaled(dir, name, 2)
		if err != nil {
			return nil, err
		}
		a.Bird[i] = NewSprite(img)
	}

	pipe, err := loadScaled(dir, filePipe, 2)
	if err != nil {
		return nil, err
	}
	a.PipeBottom = NewSprite(pipe)
	a.PipeTop = NewSprite(transform.FlipV(pipe))

	base, err := loadScaled(dir, fileBase, 2)
	if err != nil {
		return nil, err
	}
	a.Base = NewSprite(base)

	bg, err := loadScaled(dir, fileBG, 2)
	if err != nil {
		return nil, err
	}
	a.Background = NewSprite(bg)

	pongBG, err := loadScaled(dir, filePongBG, 1)
	if err != nil {
		return nil, err
	}
	a.PongBackground = NewSprite(pongBG)

	paddle, err := loadScaled(dir, filePongPaddle, 4)
	if err != nil {
		return nil, err
	}
	a.Paddle = NewSprite(paddle)

	ball, err := imgio.Open(filepath.Join(dir, filePongBall))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", filePongBall, err)
	}
	a.Ball = NewSprite(transform.Resize(ball, BallSize, BallSize, transform.NearestNeighbor))

	return a, nil
}

// loadScaled opens dir/name and scales it by an integer factor.
func loadScaled(dir, name string, factor int) (image.Image, error) {
	img, err := imgio.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	if factor == 1 {
		return img, nil
	}
	b := img.Bounds()
	return transform.Resize(img, b.Dx()*factor, b.Dy()*factor, transform.NearestNeighbor), nil
}

// Palette for procedural sprites
var (
	colBird      = color.RGBA{R: 250, G: 200, B: 40, A: 255}
	colWing      = color.RGBA{R: 255, G: 240, B: 200, A: 255}
	colEye       = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	colPipe      = color.RGBA{R: 90, G: 180, B: 60, A: 255}
	colPipeLip   = color.RGBA{R: 60, G: 140, B: 40, A: 255}
	colBase      = color.RGBA{R: 220, G: 210, B: 150, A: 255}
	colGrass     = color.RGBA{R: 110, G: 190, B: 70, A: 255}
	colSky       = color.RGBA{R: 110, G: 200, B: 210, A: 255}
	colCourt     = color.RGBA{R: 15, G: 15, B: 25, A: 255}
	colCourtLine = color.RGBA{R: 60, G: 60, B: 80, A: 255}
	colWhite     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Procedural draws an atlas in memory, for headless runs and tests.
// The bird is an ellipse so its mask has transparent corners.
func Procedural() *Atlas {
	a := &Atlas{}
	for i := range a.Bird {
		a.Bird[i] = NewSprite(drawBird(i))
	}

	pipe := drawPipe()
	a.PipeBottom = NewSprite(pipe)
	a.PipeTop = NewSprite(transform.FlipV(pipe))

	a.Base = NewSprite(drawBase())
	a.Background = NewSprite(fill(BGWidth, BGHeight, colSky))
	a.PongBackground = NewSprite(drawCourt(1024, 768))
	a.Paddle = NewSprite(fill(PaddleWidth, PaddleHeight, colWhite))
	a.Ball = NewSprite(fill(BallSize, BallSize, colWhite))
	return a
}

func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// drawBird draws wing frame 0 (up), 1 (level) or 2 (down).
func drawBird(frame int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, BirdWidth, BirdHeight))
	rx := float64(BirdWidth) / 2
	ry := float64(BirdHeight) / 2
	for y := 0; y < BirdHeight; y++ {
		for x := 0; x < BirdWidth; x++ {
			dx := (float64(x) + 0.5 - rx) / rx
			dy := (float64(y) + 0.5 - ry) / ry
			if dx*dx+dy*dy <= 1 {
				img.SetRGBA(x, y, colBird)
			}
		}
	}

	// Wing sits inside the body outline so every frame shares one silhouette
	wingY := BirdHeight/2 - 8 + frame*6
	for y := wingY; y < wingY+6; y++ {
		for x := 12; x < 30; x++ {
			img.SetRGBA(x, y, colWing)
		}
	}

	for y := 12; y < 18; y++ {
		for x := 46; x < 52; x++ {
			img.SetRGBA(x, y, colEye)
		}
	}
	return img
}

func drawPipe() *image.RGBA {
	img := fill(PipeWidth, PipeHeight, colPipe)
	for y := 0; y < 30; y++ {
		for x := 0; x < PipeWidth; x++ {
			img.SetRGBA(x, y, colPipeLip)
		}
	}
	return img
}

func drawBase() *image.RGBA {
	img := fill(BaseWidth, BaseHeight, colBase)
	for y := 0; y < 20; y++ {
		for x := 0; x < BaseWidth; x++ {
			img.SetRGBA(x, y, colGrass)
		}
	}
	return img
}

func drawCourt(w, h int) *image.RGBA {
	img := fill(w, h, colCourt)
	for y := 0; y < h; y++ {
		if (y/20)%2 == 0 {
			for x := w/2 - 2; x < w/2+2; x++ {
				img.SetRGBA(x, y, colCourtLine)
			}
		}
	}
	return img
}
