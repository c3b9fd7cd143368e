package sapling

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"
)

// Updater is implemented by nodes that advance every tick. dt is the tick
// length in seconds.
type Updater interface {
	Update(dt float64) error
}

// Drawer is implemented by nodes that render every frame.
type Drawer interface {
	Draw(screen *ebiten.Image)
}

// RunConfig configures [Run] and [NewGame].
type RunConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// TPS is the number of updates per second. Zero means 60.
	TPS int `yaml:"tps"`
}

const defaultTPS = 60

// LoadRunConfig parses a YAML run configuration.
func LoadRunConfig(data []byte) (RunConfig, error) {
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("sapling: run config: %w", err)
	}
	if cfg.Width < 0 || cfg.Height < 0 || cfg.TPS < 0 {
		return RunConfig{}, fmt.Errorf("sapling: run config: negative size or tps")
	}
	return cfg, nil
}

func (c RunConfig) tps() int {
	if c.TPS <= 0 {
		return defaultTPS
	}
	return c.TPS
}

// Game drives a scene tree from the ebiten game loop. It implements
// [ebiten.Game]. Only ready nodes are updated and drawn.
type Game struct {
	root    Node
	cfg     RunConfig
	stopped atomic.Bool
}

// NewGame returns a game over root.
func NewGame(root Node, cfg RunConfig) *Game {
	return &Game{root: root, cfg: cfg}
}

// Root returns the root node.
func (g *Game) Root() Node { return g.root }

// Stop ends the loop at the next tick. It is safe to call from any
// goroutine.
func (g *Game) Stop() { g.stopped.Store(true) }

// Update calls Update on every ready [Updater] in the tree, in pre-order.
// It returns [ebiten.Termination] once Stop has been called.
func (g *Game) Update() error {
	if g.stopped.Load() {
		return ebiten.Termination
	}
	dt := 1 / float64(g.cfg.tps())
	for n := range Walk(g.root) {
		if !n.AsNode().ready {
			continue
		}
		if u, ok := n.(Updater); ok {
			if err := u.Update(dt); err != nil {
				return fmt.Errorf("sapling: update %s: %w", n.AsNode().Path(), err)
			}
		}
	}
	return nil
}

// Draw calls Draw on every ready [Drawer] in the tree, in pre-order.
func (g *Game) Draw(screen *ebiten.Image) {
	for n := range Walk(g.root) {
		if !n.AsNode().ready {
			continue
		}
		if d, ok := n.(Drawer); ok {
			d.Draw(screen)
		}
	}
}

// Layout returns the configured screen size, or the outside size when none
// is configured.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Width > 0 && g.cfg.Height > 0 {
		return g.cfg.Width, g.cfg.Height
	}
	return outsideWidth, outsideHeight
}

// Run loads c, creates and inits a root instance and runs it in an ebiten
// window until the window is closed, ctx is done or an Update fails. The
// root is destroyed before Run returns.
func Run(ctx context.Context, r *Registry, c *Class, cfg RunConfig) error {
	if _, err := r.Load(ctx, c); err != nil {
		return err
	}
	root, err := r.New(c)
	if err != nil {
		return err
	}
	if _, err := root.AsNode().Init(ctx); err != nil {
		return err
	}

	g := NewGame(root, cfg)
	stop := context.AfterFunc(ctx, g.Stop)
	defer stop()

	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	ebiten.SetTPS(cfg.tps())

	runErr := ebiten.RunGame(g)
	// The loop may have ended because ctx is done; teardown still runs.
	_, destroyErr := root.AsNode().Destroy(context.WithoutCancel(ctx))
	return errors.Join(runErr, destroyErr)
}
