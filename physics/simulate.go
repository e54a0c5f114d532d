package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Contact is a touching pair found during a step. Normal points from Actor1
// towards Actor0; Separation is negative while the shapes overlap.
type Contact struct {
	Actor0, Actor1 BodyHandle
	Point          mgl32.Vec3
	Normal         mgl32.Vec3
	Separation     float32
	Impulse        float32 // normal impulse applied this substep
	Force          float32 // Impulse divided by the substep length
}

type contactPair struct {
	a, b       *Actor
	point      mgl32.Vec3
	normal     mgl32.Vec3
	separation float32
}

// Simulate advances the scene by dt seconds and rebuilds the render buffer.
func (s *Scene) Simulate(dt float32) error {
	if s.released {
		return ErrReleased
	}
	if !(dt > 0) || dt > MaxTimestep {
		return fmt.Errorf("%w: %v", ErrInvalidTimestep, dt)
	}

	steps := int(math.Ceil(float64(dt / MaxSubstep)))
	if steps < 1 {
		steps = 1
	}
	h := dt / float32(steps)

	for i := 0; i < steps; i++ {
		s.step(h)
	}
	s.elapsed += float64(dt)

	s.buildRenderBuffer()
	return nil
}

func (s *Scene) step(h float32) {
	for _, a := range s.actors {
		if a.Kind != ActorDynamic {
			continue
		}

		a.LinearVelocity = a.LinearVelocity.Add(s.gravity.Mul(h))
		a.LinearVelocity = a.LinearVelocity.Mul(1 / (1 + h*a.LinearDamping))
		a.AngularVelocity = a.AngularVelocity.Mul(1 / (1 + h*a.AngularDamping))

		a.Position = a.Position.Add(a.LinearVelocity.Mul(h))

		if a.AngularVelocity.Len() > 0 {
			spin := mgl32.Quat{W: 0, V: a.AngularVelocity.Mul(0.5 * h)}.Mul(a.Rotation)
			a.Rotation = a.Rotation.Add(spin).Normalize()
		}
	}

	s.contacts = s.contacts[:0]
	for i, a := range s.actors {
		if a.Kind != ActorDynamic || a.Shape != ShapeSphere {
			continue
		}
		for j, b := range s.actors {
			if i == j {
				continue
			}

			var pair contactPair
			var touching bool
			switch b.Shape {
			case ShapePlane:
				pair, touching = spherePlane(a, b)
			case ShapeSphere:
				// dynamic pairs are handled once, from the lower index
				if b.Kind == ActorDynamic && j < i {
					continue
				}
				pair, touching = sphereSphere(a, b)
			}
			if touching {
				s.contacts = append(s.contacts, s.resolve(pair, h))
			}
		}
	}
}

func spherePlane(sphere, plane *Actor) (contactPair, bool) {
	n := plane.PlaneNormal
	dist := n.Dot(sphere.Position) - plane.PlaneDistance
	sep := dist - sphere.Radius
	if sep >= 0 {
		return contactPair{}, false
	}
	return contactPair{
		a:          sphere,
		b:          plane,
		point:      sphere.Position.Sub(n.Mul(dist)),
		normal:     n,
		separation: sep,
	}, true
}

func sphereSphere(a, b *Actor) (contactPair, bool) {
	delta := a.Position.Sub(b.Position)
	d := delta.Len()
	sep := d - a.Radius - b.Radius
	if sep >= 0 {
		return contactPair{}, false
	}

	n := mgl32.Vec3{0, 1, 0}
	if d > 1e-6 {
		n = delta.Mul(1 / d)
	}
	return contactPair{
		a:          a,
		b:          b,
		point:      b.Position.Add(n.Mul(b.Radius)),
		normal:     n,
		separation: sep,
	}, true
}

func (s *Scene) resolve(c contactPair, h float32) Contact {
	a, b := c.a, c.b
	n := c.normal

	// Push out of penetration, split by inverse mass
	invSum := a.invMass + b.invMass
	if invSum > 0 {
		depth := -c.separation
		a.Position = a.Position.Add(n.Mul(depth * a.invMass / invSum))
		if b.Kind == ActorDynamic {
			b.Position = b.Position.Sub(n.Mul(depth * b.invMass / invSum))
		}
	}

	out := Contact{
		Actor0:     a.Handle,
		Actor1:     b.Handle,
		Point:      c.point,
		Normal:     n,
		Separation: c.separation,
	}

	ra := c.point.Sub(a.Position)
	rb := c.point.Sub(b.Position)

	rel := relativeVelocity(a, b, ra, rb)
	vn := rel.Dot(n)
	if vn >= 0 {
		return out
	}

	e := (a.Material.Restitution + b.Material.Restitution) * 0.5
	if -vn < BounceThreshold {
		e = 0
	}

	kn := effectiveMass(a, b, ra, rb, n)
	if kn <= 0 {
		return out
	}
	jn := -(1 + e) * vn / kn
	applyImpulse(a, b, ra, rb, n.Mul(jn))

	// Coulomb friction; the angular part makes spheres roll
	rel = relativeVelocity(a, b, ra, rb)
	vt := rel.Sub(n.Mul(rel.Dot(n)))
	if speed := vt.Len(); speed > 1e-5 {
		t := vt.Mul(1 / speed)
		kt := effectiveMass(a, b, ra, rb, t)
		if kt > 0 {
			mu := (a.Material.DynamicFriction + b.Material.DynamicFriction) * 0.5
			jt := -speed / kt
			if limit := mu * jn; jt < -limit {
				jt = -limit
			}
			applyImpulse(a, b, ra, rb, t.Mul(jt))
		}
	}

	out.Impulse = jn
	out.Force = jn / h
	return out
}

func relativeVelocity(a, b *Actor, ra, rb mgl32.Vec3) mgl32.Vec3 {
	va := a.LinearVelocity.Add(a.AngularVelocity.Cross(ra))
	if b.Kind != ActorDynamic {
		return va
	}
	vb := b.LinearVelocity.Add(b.AngularVelocity.Cross(rb))
	return va.Sub(vb)
}

func effectiveMass(a, b *Actor, ra, rb, dir mgl32.Vec3) float32 {
	rad := ra.Cross(dir)
	k := a.invMass + rad.Dot(rad)*a.invInertia
	if b.Kind == ActorDynamic {
		rbd := rb.Cross(dir)
		k += b.invMass + rbd.Dot(rbd)*b.invInertia
	}
	return k
}

func applyImpulse(a, b *Actor, ra, rb, impulse mgl32.Vec3) {
	a.LinearVelocity = a.LinearVelocity.Add(impulse.Mul(a.invMass))
	a.AngularVelocity = a.AngularVelocity.Add(ra.Cross(impulse).Mul(a.invInertia))
	if b.Kind == ActorDynamic {
		b.LinearVelocity = b.LinearVelocity.Sub(impulse.Mul(b.invMass))
		b.AngularVelocity = b.AngularVelocity.Sub(rb.Cross(impulse).Mul(b.invInertia))
	}
}
