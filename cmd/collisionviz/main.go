// Command collisionviz runs a collision dispatcher over a synthetic spiral
// pattern and draws every collider, for eyeballing the engine.
//
// Controls:
//
//	Mouse    - move the probe receiver
//	K        - toggle whether the probe accepts kills
//	B        - cycle backend (auto, sequential, batch)
//	Space    - pause
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"

	"danmaku-server/collision"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth  = 960
	screenHeight = 720

	spiralArms   = 6
	spiralSpin   = 1.3 // radians/s
	bulletSpeed  = 140.0
	bulletRadius = 5.0
	bulletLife   = 6.0
	spokeLength  = 260.0
	probeRadius  = 22.0
)

var (
	colBullet  = color.RGBA{R: 180, G: 220, B: 255, A: 255}
	colSpoke   = color.RGBA{R: 255, G: 120, B: 200, A: 255}
	colIdle    = color.RGBA{R: 90, G: 200, B: 120, A: 255}
	colEnter   = color.RGBA{R: 250, G: 220, B: 80, A: 255}
	colStay    = color.RGBA{R: 245, G: 90, B: 70, A: 255}
	colContact = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type bullet struct {
	collision.Projectile
	handle collision.Handle
	vel    collision.Vec2
	spin   float64
	angle  float64
	life   float64
	shape  [1]collision.Shape
}

type target struct {
	collision.Receiver
	handle collision.Handle
	enters int
	stays  int
}

type viz struct {
	log     *slog.Logger
	coll    *collision.Dispatcher
	cfg     collision.Config
	bullets map[collision.Handle]*bullet
	probe   *target
	barrier *target
	byH     map[collision.Handle]*target
	points  []collision.Vec2
	angle   float64
	cd      float64
	paused  bool
	last    collision.TickStats
}

func newViz(cfg collision.Config, log *slog.Logger) (*viz, error) {
	v := &viz{
		log:     log,
		cfg:     cfg,
		bullets: make(map[collision.Handle]*bullet),
		byH:     make(map[collision.Handle]*target),
	}
	coll, err := collision.NewDispatcher(cfg,
		collision.WithLogger(log),
		collision.WithHandler(collision.HandlerFuncs{
			Enter: func(c collision.Contact) { v.touch(c, true) },
			Stay:  func(c collision.Contact) { v.touch(c, false) },
		}),
		collision.WithLifecycle(v),
	)
	if err != nil {
		return nil, err
	}
	v.coll = coll
	tags := coll.Tags()
	mask := tags.Mask("player")

	v.probe = &target{Receiver: collision.Receiver{
		Shape:        collision.Circle(collision.Vec2{}, probeRadius),
		Tags:         mask,
		AcceptsKills: true,
	}}
	// A wall that stops at most three bullets per tick
	v.barrier = &target{Receiver: collision.Receiver{
		Transform:            collision.At(collision.Vec2{X: screenWidth / 2, Y: screenHeight - 80}, 0),
		Shape:                collision.Segment(collision.Vec2{X: -200}, collision.Vec2{X: 200}),
		Tags:                 mask,
		MaxCollisionsPerTick: 3,
		AcceptsKills:         true,
	}}
	for _, t := range []*target{v.probe, v.barrier} {
		h, err := coll.RegisterReceiver(&t.Receiver)
		if err != nil {
			return nil, err
		}
		t.handle = h
		v.byH[h] = t
	}
	return v, nil
}

func (v *viz) touch(c collision.Contact, enter bool) {
	t, ok := v.byH[c.Receiver]
	if !ok {
		return
	}
	if enter {
		t.enters++
	} else {
		t.stays++
	}
	v.points = append(v.points, c.Point)
}

// DestroyProjectile implements collision.Lifecycle
func (v *viz) DestroyProjectile(h collision.Handle) {
	v.coll.UnregisterProjectile(h)
	delete(v.bullets, h)
}

func (v *viz) spawn(b *bullet) {
	h, err := v.coll.RegisterProjectile(&b.Projectile)
	if err != nil {
		v.log.Warn("bullet not registered", "err", err)
		return
	}
	b.handle = h
	v.bullets[h] = b
}

func (v *viz) fire() {
	tags := v.coll.Tags()
	mask := tags.Mask("player")
	centre := collision.Vec2{X: screenWidth / 2, Y: screenHeight / 3}
	for i := 0; i < spiralArms; i++ {
		a := v.angle + 2*math.Pi*float64(i)/spiralArms
		_, r := collision.Orientation(a)
		b := &bullet{vel: r.Mult(bulletSpeed), angle: a, life: bulletLife}
		b.shape[0] = collision.Circle(collision.Vec2{}, bulletRadius)
		b.Shapes = b.shape[:]
		b.Tags = mask
		b.DestroyOnHit = true
		b.Transform = collision.At(centre, a)
		v.spawn(b)
	}
}

func (v *viz) addSpokes() {
	tags := v.coll.Tags()
	mask := tags.Mask("player")
	centre := collision.Vec2{X: screenWidth / 2, Y: screenHeight / 3}
	for i := 0; i < 2; i++ {
		a := math.Pi * float64(i)
		b := &bullet{angle: a, spin: -0.5, life: math.Inf(1)}
		b.shape[0] = collision.Segment(collision.Vec2{X: 40}, collision.Vec2{X: spokeLength})
		b.Shapes = b.shape[:]
		b.Tags = mask
		b.Transform = collision.At(centre, a)
		v.spawn(b)
	}
}

func (v *viz) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		v.probe.AcceptsKills = !v.probe.AcceptsKills
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.cfg.Backend = (v.cfg.Backend + 1) % (collision.BackendBatch + 1)
		if err := v.coll.Configure(v.cfg); err != nil {
			v.log.Error("reconfigure failed", "err", err)
		}
	}
	mx, my := ebiten.CursorPosition()
	v.probe.Transform = collision.At(collision.Vec2{X: float64(mx), Y: float64(my)}, 0)

	if v.paused {
		return nil
	}
	dt := 1.0 / float64(ebiten.TPS())

	v.angle += spiralSpin * dt
	v.cd -= dt
	if v.cd <= 0 {
		v.cd = 0.08
		v.fire()
	}
	for h, b := range v.bullets {
		b.life -= dt
		if b.life <= 0 || b.Position.X < -50 || b.Position.X > screenWidth+50 ||
			b.Position.Y < -50 || b.Position.Y > screenHeight+50 {
			v.coll.UnregisterProjectile(h)
			delete(v.bullets, h)
			continue
		}
		b.angle += b.spin * dt
		b.Transform = collision.At(b.Position.Add(b.vel.Mult(dt)), b.angle)
	}

	for _, t := range v.byH {
		t.enters, t.stays = 0, 0
	}
	v.points = v.points[:0]
	v.last = v.coll.Tick()
	return nil
}

func (v *viz) Draw(screen *ebiten.Image) {
	for _, b := range v.bullets {
		s := b.shape[0]
		if s.Kind == collision.ShapeSegment {
			a := local(b.Transform, s.Start)
			e := local(b.Transform, s.End)
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(e.X), float32(e.Y), 3, colSpoke, true)
			continue
		}
		vector.DrawFilledCircle(screen, float32(b.Position.X), float32(b.Position.Y), float32(s.Radius), colBullet, true)
	}

	for _, t := range v.byH {
		col := colIdle
		switch {
		case t.enters > 0:
			col = colEnter
		case t.stays > 0:
			col = colStay
		}
		s := t.Shape
		if s.Kind == collision.ShapeSegment {
			a := local(t.Transform, s.Start)
			e := local(t.Transform, s.End)
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(e.X), float32(e.Y), 4, col, true)
			continue
		}
		vector.StrokeCircle(screen, float32(t.Position.X), float32(t.Position.Y), float32(s.Radius), 2, col, true)
	}

	for _, p := range v.points {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 2, colContact, false)
	}

	st := v.last
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"backend:%s  tick:%d  projectiles:%d  receivers:%d  pairs:%d",
		st.Backend, st.Tick, st.Projectiles, st.Receivers, st.PairsTested), 10, 10)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"matches:%d  accepted:%d  enter:%d  stay:%d  exit:%d  destroyed:%d  capped:%d/%d",
		st.Matches, st.Accepted, st.Enters, st.Stays, st.Exits, st.Destroyed,
		st.DroppedGlobal, st.DroppedReceiverCap), 10, 26)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(
		"probe kills:%v  paused:%v  [K] kills [B] backend [Space] pause",
		v.probe.AcceptsKills, v.paused), 10, 42)
}

func (v *viz) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// local maps a point in t's frame to screen space
func local(t collision.Transform, p collision.Vec2) collision.Vec2 {
	return t.Position.Add(t.Right.Mult(p.X * t.Scale)).Add(t.Forward.Mult(p.Y * t.Scale))
}

func main() {
	configPath := flag.String("config", "", "YAML collision config")
	workers := flag.Int("workers", 0, "batch lanes (0 = GOMAXPROCS)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := collision.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = collision.LoadConfig(*configPath); err != nil {
			log.Error("config load failed", "path", *configPath, "err", err)
			os.Exit(1)
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	v, err := newViz(cfg, log)
	if err != nil {
		log.Error("dispatcher setup failed", "err", err)
		os.Exit(1)
	}
	v.addSpokes()

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("collisionviz")
	if err := ebiten.RunGame(v); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}
