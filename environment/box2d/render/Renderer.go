// Package render draws frames of the lunar lander environment.
//
// A Renderer is attached to an environment as its ParticleSink. Exhaust
// particles are simulated in a Box2D world owned by the Renderer, which
// holds only the particles and a copy of the moon's surface. The
// environment's own world never sees a particle, so rendering cannot
// change the outcome of an episode.
package render

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"

	"github.com/samuelfneumann/golander/environment/box2d/lunarlander"
	"github.com/samuelfneumann/golander/utils/floatutils"
)

const (
	// Particle lifetime lost per frame
	decay float64 = 0.15

	particleRadius float64 = 2.0 / lunarlander.Scale

	staticBody  = 0
	dynamicBody = 2
)

var (
	boundaryColour = color.RGBA{R: 255, G: 166, B: 0, A: 255}
	moonShade      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	skyShade       = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	landerColour   = color.RGBA{R: 128, G: 102, B: 230, A: 255}
	legColour      = color.RGBA{R: 77, G: 77, B: 128, A: 255}
	contactColour  = color.RGBA{R: 102, G: 230, B: 102, A: 255}
	flagColour     = color.RGBA{R: 204, G: 204, B: 0, A: 255}
)

type particle struct {
	body *box2d.B2Body
	ttl  float64
}

// Renderer implements lunarlander.ParticleSink. It draws each frame
// with gg and, if constructed with a directory, saves every frame as a
// PNG image.
type Renderer struct {
	dir     string
	gravity float64

	world     box2d.B2World
	particles []*particle

	terrain lunarlander.Terrain
	dc      *gg.Context
	frames  int
}

// New returns a new Renderer. If dir is not empty, frames are saved
// there as frame000000.png, frame000001.png, ... The gravity should be
// the gravity of the environment being rendered.
func New(dir string, gravity float64) (*Renderer, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("new: could not create render "+
				"directory: %w", err)
		}
	}

	r := &Renderer{
		dir:     dir,
		gravity: gravity,
		dc: gg.NewContext(int(lunarlander.ViewportW),
			int(lunarlander.ViewportH)),
	}
	r.Reset(lunarlander.Terrain{})
	return r, nil
}

// Reset implements the lunarlander.ParticleSink interface. It removes
// all particles and builds the ground of the new terrain.
func (r *Renderer) Reset(t lunarlander.Terrain) {
	r.terrain = t
	r.particles = r.particles[:0]
	r.world = box2d.MakeB2World(box2d.MakeB2Vec2(0.0, r.gravity))

	groundDef := box2d.MakeB2BodyDef()
	groundDef.Type = staticBody
	ground := r.world.CreateBody(&groundDef)

	for i := 0; i+1 < len(t.Points); i++ {
		p1, p2 := t.Points[i], t.Points[i+1]

		edge := box2d.NewB2EdgeShape()
		edge.Set(box2d.MakeB2Vec2(p1[0], p1[1]), box2d.MakeB2Vec2(p2[0], p2[1]))

		fix := box2d.MakeB2FixtureDef()
		fix.Shape = edge
		fix.Friction = 0.1
		ground.CreateFixtureFromDef(&fix)
	}
}

// Emit implements the lunarlander.ParticleSink interface. Each puff
// of exhaust becomes a particle which lives for as many frames as the
// engine's power allows.
func (r *Renderer) Emit(e lunarlander.Exhaust) {
	def := box2d.MakeB2BodyDef()
	def.Type = dynamicBody
	def.Position = e.Point
	body := r.world.CreateBody(&def)

	shape := box2d.NewB2CircleShape()
	shape.M_radius = particleRadius

	fix := box2d.MakeB2FixtureDef()
	fix.Shape = shape
	fix.Density = e.Mass
	fix.Friction = 0.1
	fix.Restitution = 0.3
	fix.Filter.CategoryBits = 0x0100
	fix.Filter.MaskBits = 0x0001
	body.CreateFixtureFromDef(&fix)

	body.ApplyLinearImpulse(e.Impulse, e.Point, true)
	r.particles = append(r.particles, &particle{body: body, ttl: e.Power})
}

// Frame implements the lunarlander.ParticleSink interface. It moves
// the particles forward by one step, draws the scene, and saves the
// frame if the Renderer has a directory.
func (r *Renderer) Frame(s lunarlander.Scene) error {
	r.world.Step(1.0/lunarlander.FPS, 6, 2)
	r.age()
	r.draw(s)

	defer func() { r.frames++ }()
	if r.dir == "" {
		return nil
	}

	file := filepath.Join(r.dir, fmt.Sprintf("frame%06d.png", r.frames))
	if err := r.dc.SavePNG(file); err != nil {
		return fmt.Errorf("frame: could not save frame %v: %w", r.frames, err)
	}
	return nil
}

// age decays the lifetime of all particles and removes the dead ones
func (r *Renderer) age() {
	alive := r.particles[:0]
	for _, p := range r.particles {
		p.ttl -= decay
		if p.ttl < 0 {
			r.world.DestroyBody(p.body)
			continue
		}
		alive = append(alive, p)
	}
	r.particles = alive
}

// Image returns the last frame drawn
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// Particles returns the number of live particles
func (r *Renderer) Particles() int {
	return len(r.particles)
}

// Frames returns the number of frames drawn since the Renderer was
// created
func (r *Renderer) Frames() int {
	return r.frames
}

func (r *Renderer) draw(s lunarlander.Scene) {
	dc := r.dc
	H := lunarlander.ViewportH / lunarlander.Scale

	dc.SetColor(moonShade)
	dc.Clear()

	// Sky is everything above the surface of the moon
	points := s.Terrain.Points
	if len(points) > 0 {
		dc.ClearPath()
		start := toPixel(points[0][0], H)
		dc.MoveTo(start[0], start[1])
		for _, v := range points {
			p := toPixel(v[0], v[1])
			dc.LineTo(p[0], p[1])
		}
		end := toPixel(points[len(points)-1][0], H)
		dc.LineTo(end[0], end[1])
		dc.ClosePath()
		dc.SetColor(skyShade)
		dc.Fill()

		dc.SetColor(boundaryColour)
		dc.SetLineWidth(3.0)
		for i := 0; i+1 < len(points); i++ {
			p1 := toPixel(points[i][0], points[i][1])
			p2 := toPixel(points[i+1][0], points[i+1][1])
			dc.DrawLine(p1[0], p1[1], p2[0], p2[1])
		}
		dc.Stroke()
	}

	for _, p := range r.particles {
		pos := p.body.GetPosition()
		c := toPixel(pos.X, pos.Y)
		shade := uint8(255 * floatutils.Clip(p.ttl, 0, 1))
		dc.SetColor(color.RGBA{R: shade, G: shade / 2, B: shade / 4, A: 255})
		dc.DrawCircle(c[0], c[1], particleRadius*lunarlander.Scale)
		dc.Fill()
	}

	r.drawFlags(s.Terrain)

	for _, poly := range s.Lander {
		fillPolygon(dc, poly, landerColour)
	}
	for i, poly := range s.Legs {
		c := color.Color(legColour)
		if i < len(s.LegContact) && s.LegContact[i] {
			c = contactColour
		}
		fillPolygon(dc, poly, c)
	}
}

func (r *Renderer) drawFlags(t lunarlander.Terrain) {
	dc := r.dc
	for _, x := range []float64{t.HelipadX1, t.HelipadX2} {
		bottom := toPixel(x, t.HelipadY)
		top := toPixel(x, t.HelipadY+50/lunarlander.Scale)

		dc.SetColor(moonShade)
		dc.SetLineWidth(1.0)
		dc.DrawLine(bottom[0], bottom[1], top[0], top[1])
		dc.Stroke()

		flag := [][2]float64{
			{x, t.HelipadY + 50/lunarlander.Scale},
			{x, t.HelipadY + 40/lunarlander.Scale},
			{x + 25/lunarlander.Scale, t.HelipadY + 45/lunarlander.Scale},
		}
		fillPolygon(dc, flag, flagColour)
	}
}

// fillPolygon fills a polygon given in Box2D world coordinates
func fillPolygon(dc *gg.Context, poly [][2]float64, c color.Color) {
	if len(poly) == 0 {
		return
	}

	dc.ClearPath()
	for _, v := range poly {
		p := toPixel(v[0], v[1])
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()
	dc.SetColor(c)
	dc.Fill()
}

// toPixel converts Box2D world coordinates into pixel coordinates, with
// the origin at the top left of the image
func toPixel(x, y float64) [2]float64 {
	return [2]float64{
		lunarlander.Scale * x,
		lunarlander.ViewportH - lunarlander.Scale*y,
	}
}
