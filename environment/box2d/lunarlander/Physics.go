package lunarlander

import (
	"sync"

	"golang.org/x/exp/rand"

	"github.com/ByteArena/box2d"
	"gonum.org/v1/gonum/stat/distuv"
)

// State is the physical state of the lander read from the Box2D world
// after a step
type State struct {
	Position        box2d.B2Vec2
	Velocity        box2d.B2Vec2
	Angle           float64
	AngularVelocity float64
	LegContact      [2]bool

	// Awake is false once Box2D has put the lander to sleep, which it
	// does when the lander has come to rest
	Awake bool
}

// Terrain describes the surface of the moon generated for an episode.
// Points holds the surface vertices from left to right in Box2D units.
// The helipad is the flat section between HelipadX1 and HelipadX2 at
// height HelipadY.
type Terrain struct {
	HelipadX1 float64
	HelipadX2 float64
	HelipadY  float64
	Points    [][2]float64
}

// physics owns the Box2D world of a single environment and all bodies
// in it. It is never shared between environments.
type physics struct {
	gravity float64

	world  box2d.B2World
	moon   *box2d.B2Body
	lander *box2d.B2Body
	legs   [2]*box2d.B2Body

	legContact [2]bool
	gameOver   bool

	terrain Terrain
}

func newPhysics(gravity float64) *physics {
	warmContacts()
	return &physics{gravity: gravity}
}

// contactDetector tracks contacts of the lander and its legs with the
// moon
type contactDetector struct {
	p *physics
}

func (c contactDetector) touches(body *box2d.B2Body,
	contact box2d.B2ContactInterface) bool {
	return body == contact.GetFixtureA().GetBody() ||
		body == contact.GetFixtureB().GetBody()
}

func (c contactDetector) BeginContact(contact box2d.B2ContactInterface) {
	// If the hull touches the ground, it's game over. The lander
	// should be landed gently on its legs.
	if c.touches(c.p.lander, contact) {
		c.p.gameOver = true
	}

	for i, leg := range c.p.legs {
		if c.touches(leg, contact) {
			c.p.legContact[i] = true
		}
	}
}

func (c contactDetector) EndContact(contact box2d.B2ContactInterface) {
	for i, leg := range c.p.legs {
		if c.touches(leg, contact) {
			c.p.legContact[i] = false
		}
	}
}

func (c contactDetector) PreSolve(contact box2d.B2ContactInterface,
	oldManifold box2d.B2Manifold) {
}

func (c contactDetector) PostSolve(contact box2d.B2ContactInterface,
	impulse *box2d.B2ContactImpulse) {
}

// reset replaces the world with a new one holding freshly generated
// terrain and a lander at (x, y). Terrain heights and the initial
// random force on the lander are drawn from src.
func (p *physics) reset(x, y float64, src rand.Source) {
	p.world = box2d.MakeB2World(box2d.MakeB2Vec2(0.0, p.gravity))
	p.world.SetContactListener(contactDetector{p})
	p.gameOver = false
	p.legContact = [2]bool{}

	p.terrain = p.createMoon(src)
	p.createLander(x, y, src)
}

func (p *physics) createMoon(src rand.Source) Terrain {
	W := worldWidth()
	H := worldHeight()

	heights := distuv.Uniform{Min: 0, Max: H / 2, Src: src}
	height := make([]float64, Chunks+1)
	for i := range height {
		height[i] = heights.Rand()
	}

	chunkX := make([]float64, Chunks)
	for i := range chunkX {
		chunkX[i] = W / float64(Chunks-1) * float64(i)
	}

	t := Terrain{
		HelipadX1: chunkX[Chunks/2-1],
		HelipadX2: chunkX[Chunks/2+1],
		HelipadY:  H / 4,
	}
	for i := Chunks/2 - 2; i <= Chunks/2+2; i++ {
		height[i] = t.HelipadY
	}

	t.Points = make([][2]float64, Chunks)
	for i := range t.Points {
		prev := i - 1
		if i == 0 {
			prev = len(height) - 1
		}
		t.Points[i] = [2]float64{
			chunkX[i],
			0.33 * (height[prev] + height[i] + height[i+1]),
		}
	}

	moonDef := box2d.MakeB2BodyDef()
	moonDef.Type = staticBody
	p.moon = p.world.CreateBody(&moonDef)

	bottom := box2d.NewB2EdgeShape()
	bottom.Set(box2d.MakeB2Vec2(0.0, 0.0), box2d.MakeB2Vec2(W, 0.0))
	bottomFix := box2d.MakeB2FixtureDef()
	bottomFix.Shape = bottom
	p.moon.CreateFixtureFromDef(&bottomFix)

	for i := 0; i < Chunks-1; i++ {
		p1, p2 := t.Points[i], t.Points[i+1]

		edge := box2d.NewB2EdgeShape()
		edge.Set(box2d.MakeB2Vec2(p1[0], p1[1]), box2d.MakeB2Vec2(p2[0], p2[1]))

		edgeFix := box2d.MakeB2FixtureDef()
		edgeFix.Shape = edge
		edgeFix.Density = 0.0
		edgeFix.Friction = 0.1
		p.moon.CreateFixtureFromDef(&edgeFix)
	}

	return t
}

func (p *physics) createLander(x, y float64, src rand.Source) {
	landerDef := box2d.MakeB2BodyDef()
	landerDef.Type = dynamicBody
	landerDef.Position = box2d.MakeB2Vec2(x, y)
	landerDef.Angle = 0.0
	p.lander = p.world.CreateBody(&landerDef)

	vertices := make([]box2d.B2Vec2, len(LanderPoly))
	for i, v := range LanderPoly {
		vertices[i] = box2d.MakeB2Vec2(v[0]/Scale, v[1]/Scale)
	}
	landerShape := box2d.NewB2PolygonShape()
	landerShape.Set(vertices, len(vertices))

	landerFix := box2d.MakeB2FixtureDef()
	landerFix.Shape = landerShape
	landerFix.Density = 5.0
	landerFix.Friction = 0.1
	landerFix.Restitution = 0.0
	landerFix.Filter = filter(landerCategory)
	p.lander.CreateFixtureFromDef(&landerFix)

	force := distuv.Uniform{Min: -InitialRandom, Max: InitialRandom, Src: src}
	fx := force.Rand()
	fy := force.Rand()
	p.lander.ApplyForceToCenter(box2d.MakeB2Vec2(fx, fy), true)

	for j, i := range []float64{-1.0, 1.0} {
		legDef := box2d.MakeB2BodyDef()
		legDef.Type = dynamicBody
		legDef.Position = box2d.MakeB2Vec2(x-i*LegAway/Scale, y)
		legDef.Angle = i * 0.05
		leg := p.world.CreateBody(&legDef)

		legShape := box2d.NewB2PolygonShape()
		legShape.SetAsBox(LegW/Scale, LegH/Scale)

		legFix := box2d.MakeB2FixtureDef()
		legFix.Shape = legShape
		legFix.Density = 1.0
		legFix.Restitution = 0.0
		legFix.Filter = filter(legCategory)
		leg.CreateFixtureFromDef(&legFix)

		rjd := box2d.MakeB2RevoluteJointDef()
		rjd.BodyA = p.lander
		rjd.BodyB = leg
		rjd.LocalAnchorA = box2d.MakeB2Vec2(0.0, 0.0)
		rjd.LocalAnchorB = box2d.MakeB2Vec2(i*LegAway/Scale, LegDown/Scale)
		rjd.EnableMotor = true
		rjd.EnableLimit = true
		rjd.MaxMotorTorque = LegSpringTorque
		rjd.MotorSpeed = 0.3 * i
		if i < 0 {
			rjd.LowerAngle = 0.9 - 0.5
			rjd.UpperAngle = 0.9
		} else {
			rjd.LowerAngle = -0.9
			rjd.UpperAngle = -0.9 + 0.5
		}
		p.world.CreateJoint(&rjd)

		p.legs[j] = leg
	}
}

// filter returns a collision filter for a body of the given category
// that collides only with the ground
func filter(category uint16) box2d.B2Filter {
	f := box2d.MakeB2Filter()
	f.CategoryBits = category
	f.MaskBits = groundCategory
	return f
}

// state returns the current state of the lander
func (p *physics) state() State {
	return State{
		Position:        p.lander.GetPosition(),
		Velocity:        p.lander.GetLinearVelocity(),
		Angle:           p.lander.GetAngle(),
		AngularVelocity: p.lander.GetAngularVelocity(),
		LegContact:      p.legContact,
		Awake:           p.lander.IsAwake(),
	}
}

// disturb applies a world frame force along x to the lander's centre
// and a torque about it
func (p *physics) disturb(force, torque float64) {
	p.lander.ApplyForceToCenter(box2d.MakeB2Vec2(force, 0.0), true)
	p.lander.ApplyTorque(torque, true)
}

// apply applies an engine impulse to the lander
func (p *physics) apply(i Impulse) {
	p.lander.ApplyLinearImpulse(i.Impulse, i.Point, true)
}

// advance steps the world forward by one tick of 1/FPS seconds
func (p *physics) advance() {
	p.world.Step(1.0/FPS, VelocityIterations, PositionIterations)
}

// scene returns the drawable state of the world
func (p *physics) scene(number int) Scene {
	s := Scene{
		Number:     number,
		Terrain:    p.terrain,
		Lander:     polygons(p.lander),
		LegContact: p.legContact,
	}
	for _, leg := range p.legs {
		s.Legs = append(s.Legs, polygons(leg)...)
	}
	return s
}

// polygons returns the world coordinates of all polygon fixtures of b
func polygons(b *box2d.B2Body) [][][2]float64 {
	var polys [][][2]float64
	for fix := b.GetFixtureList(); fix != nil; fix = fix.M_next {
		shape, ok := fix.M_shape.(*box2d.B2PolygonShape)
		if !ok {
			continue
		}

		poly := make([][2]float64, 0, shape.M_count)
		for i := 0; i < shape.M_count; i++ {
			v := box2d.B2TransformVec2Mul(b.M_xf, shape.M_vertices[i])
			poly = append(poly, [2]float64{v.X, v.Y})
		}
		polys = append(polys, poly)
	}
	return polys
}

var warmOnce sync.Once

// warmContacts creates a single contact in a throwaway world. Box2D
// fills its table of contact constructors lazily on the first contact
// in the process; doing it up front lets independent worlds be stepped
// from different goroutines.
func warmContacts() {
	warmOnce.Do(func() {
		world := box2d.MakeB2World(box2d.MakeB2Vec2(0.0, 0.0))
		for i := 0; i < 2; i++ {
			def := box2d.MakeB2BodyDef()
			def.Type = dynamicBody
			body := world.CreateBody(&def)

			shape := box2d.NewB2PolygonShape()
			shape.SetAsBox(1.0, 1.0)
			fix := box2d.MakeB2FixtureDef()
			fix.Shape = shape
			fix.Density = 1.0
			body.CreateFixtureFromDef(&fix)
		}
		world.Step(1.0/FPS, 1, 1)
	})
}
