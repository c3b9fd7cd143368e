package sapling

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsRefresh is how often, in seconds, the FPS text is refreshed.
const fpsRefresh = 0.5

// FPSWidget is a node that displays the current FPS and TPS in the top
// left corner. Add an instance of [FPSClass] anywhere in a tree driven by
// [Game].
type FPSWidget struct {
	NodeBase
	elapsed float64
	text    string
	img     *ebiten.Image
}

// FPSClass is the class of [FPSWidget] nodes.
var FPSClass = NewClass(ClassConfig{Name: "fps_widget"}, func() Node { return &FPSWidget{} })

// Text returns the text last rendered by the widget.
func (w *FPSWidget) Text() string { return w.text }

// OnInit renders the first reading so the widget is never blank.
func (w *FPSWidget) OnInit(context.Context) error {
	w.refresh()
	return nil
}

// Update refreshes the text every fpsRefresh seconds.
func (w *FPSWidget) Update(dt float64) error {
	w.elapsed += dt
	if w.elapsed < fpsRefresh {
		return nil
	}
	w.elapsed = 0
	w.refresh()
	return nil
}

func (w *FPSWidget) refresh() {
	w.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if w.img != nil {
		w.redraw()
	}
}

func (w *FPSWidget) redraw() {
	w.img.Clear()
	// Semi-transparent background for readability
	w.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(w.img, w.text)
}

// Draw paints the widget onto screen. A nil screen is ignored.
func (w *FPSWidget) Draw(screen *ebiten.Image) {
	if screen == nil {
		return
	}
	if w.img == nil {
		// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
		w.img = ebiten.NewImage(100, 32)
		w.redraw()
	}
	screen.DrawImage(w.img, nil)
}
