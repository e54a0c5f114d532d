// Package physics is a small rigid-body scene built for debug visualization:
// static planes, dynamic spheres, impulse-based contacts and a render buffer
// of colored points, lines and triangles describing the current state.
//
// A Scene is not safe for concurrent use.
package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var (
	ErrInvalidTimestep = errors.New("physics: timestep must be positive, finite and at most MaxTimestep")
	ErrInvalidGeometry = errors.New("physics: invalid geometry")
	ErrInvalidDensity  = errors.New("physics: density must be positive")
	ErrReleased        = errors.New("physics: scene released")
	ErrUnknownActor    = errors.New("physics: unknown actor")
)

// MaxTimestep is the longest frame Simulate accepts.
const MaxTimestep = float32(60.0)

// MaxSubstep bounds the integration step; longer frames are split.
const MaxSubstep = float32(1.0 / 120.0)

// BounceThreshold is the approach speed below which restitution is ignored.
const BounceThreshold = float32(2.0)

type BodyHandle uuid.UUID

func (h BodyHandle) String() string {
	return uuid.UUID(h).String()
}

type ActorKind int

const (
	ActorStatic ActorKind = iota
	ActorDynamic
)

type Shape int

const (
	ShapePlane Shape = iota
	ShapeSphere
)

type Material struct {
	StaticFriction  float32
	DynamicFriction float32
	Restitution     float32
}

func NewMaterial(staticFriction, dynamicFriction, restitution float32) Material {
	return Material{
		StaticFriction:  staticFriction,
		DynamicFriction: dynamicFriction,
		Restitution:     restitution,
	}
}

type Actor struct {
	Handle   BodyHandle
	Kind     ActorKind
	Shape    Shape
	Material Material

	Radius        float32    // ShapeSphere
	PlaneNormal   mgl32.Vec3 // ShapePlane, unit length
	PlaneDistance float32    // ShapePlane, dot(n, x) = d on the surface

	Position        mgl32.Vec3
	Rotation        mgl32.Quat
	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3

	Mass           float32
	LinearDamping  float32
	AngularDamping float32

	invMass    float32
	invInertia float32
}

// GlobalPose returns the actor transform as a matrix.
func (a *Actor) GlobalPose() mgl32.Mat4 {
	return mgl32.Translate3D(a.Position.X(), a.Position.Y(), a.Position.Z()).Mul4(a.Rotation.Mat4())
}

func (a *Actor) GlobalPosition() mgl32.Vec3 {
	return a.Position
}

// Bounds returns the world AABB of a sphere. Planes are unbounded and report ok=false.
func (a *Actor) Bounds() (min, max mgl32.Vec3, ok bool) {
	if a.Shape != ShapeSphere {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	r := mgl32.Vec3{a.Radius, a.Radius, a.Radius}
	return a.Position.Sub(r), a.Position.Add(r), true
}

type SceneDesc struct {
	Gravity mgl32.Vec3
}

func DefaultSceneDesc() SceneDesc {
	return SceneDesc{Gravity: mgl32.Vec3{0, -9.81, 0}}
}

// DynamicSphereDesc describes a dynamic sphere. Mass is derived from Density.
type DynamicSphereDesc struct {
	Transform      mgl32.Mat4
	Radius         float32
	Material       Material
	Density        float32
	LinearDamping  float32
	AngularDamping float32
}

type Scene struct {
	gravity  mgl32.Vec3
	actors   []*Actor
	index    map[BodyHandle]*Actor
	params   [visualizationParameterCount]float32
	contacts []Contact
	buffer   RenderBuffer
	elapsed  float64
	released bool
}

func NewScene(desc SceneDesc) *Scene {
	return &Scene{
		gravity: desc.Gravity,
		index:   make(map[BodyHandle]*Actor),
	}
}

func (s *Scene) Gravity() mgl32.Vec3 {
	return s.gravity
}

func (s *Scene) SetGravity(g mgl32.Vec3) {
	s.gravity = g
}

// Elapsed is the total simulated time in seconds.
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// CreatePlane adds a static half-space whose surface is dot(normal, x) = distance.
func (s *Scene) CreatePlane(normal mgl32.Vec3, distance float32, material Material) (BodyHandle, error) {
	if s.released {
		return BodyHandle{}, ErrReleased
	}
	if normal.Len() < 1e-6 || !finiteVec(normal) {
		return BodyHandle{}, fmt.Errorf("%w: plane normal %v", ErrInvalidGeometry, normal)
	}

	a := &Actor{
		Handle:        BodyHandle(uuid.New()),
		Kind:          ActorStatic,
		Shape:         ShapePlane,
		Material:      material,
		PlaneNormal:   normal.Normalize(),
		PlaneDistance: distance,
		Rotation:      mgl32.QuatIdent(),
	}
	s.add(a)
	return a.Handle, nil
}

func (s *Scene) CreateDynamicSphere(desc DynamicSphereDesc) (BodyHandle, error) {
	if s.released {
		return BodyHandle{}, ErrReleased
	}
	if !(desc.Radius > 0) || math.IsInf(float64(desc.Radius), 0) {
		return BodyHandle{}, fmt.Errorf("%w: sphere radius %v", ErrInvalidGeometry, desc.Radius)
	}
	if !(desc.Density > 0) || math.IsInf(float64(desc.Density), 0) {
		return BodyHandle{}, fmt.Errorf("%w: %v", ErrInvalidDensity, desc.Density)
	}

	if desc.Transform == (mgl32.Mat4{}) {
		desc.Transform = mgl32.Ident4()
	}

	r := desc.Radius
	volume := float32(4.0/3.0*math.Pi) * r * r * r
	mass := desc.Density * volume
	inertia := 0.4 * mass * r * r

	a := &Actor{
		Handle:         BodyHandle(uuid.New()),
		Kind:           ActorDynamic,
		Shape:          ShapeSphere,
		Material:       desc.Material,
		Radius:         r,
		Position:       desc.Transform.Col(3).Vec3(),
		Rotation:       mgl32.Mat4ToQuat(desc.Transform).Normalize(),
		Mass:           mass,
		LinearDamping:  desc.LinearDamping,
		AngularDamping: desc.AngularDamping,
		invMass:        1 / mass,
		invInertia:     1 / inertia,
	}
	s.add(a)
	return a.Handle, nil
}

func (s *Scene) add(a *Actor) {
	s.actors = append(s.actors, a)
	s.index[a.Handle] = a
}

func (s *Scene) Actor(h BodyHandle) (*Actor, bool) {
	a, ok := s.index[h]
	return a, ok
}

// Actors returns the actors in creation order.
func (s *Scene) Actors() []*Actor {
	return s.actors
}

func (s *Scene) RemoveActor(h BodyHandle) error {
	if s.released {
		return ErrReleased
	}
	a, ok := s.index[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, h)
	}
	delete(s.index, h)
	for i, other := range s.actors {
		if other == a {
			s.actors = append(s.actors[:i], s.actors[i+1:]...)
			break
		}
	}
	return nil
}

// Contacts returns the contacts found by the last substep of the last Simulate call.
func (s *Scene) Contacts() []Contact {
	return s.contacts
}

// RenderBuffer returns the debug geometry produced by the last Simulate call.
// The buffer is reused; it is only valid until the next Simulate.
func (s *Scene) RenderBuffer() *RenderBuffer {
	return &s.buffer
}

// Release drops all scene state. Later mutating calls fail with ErrReleased.
func (s *Scene) Release() {
	s.actors = nil
	s.index = make(map[BodyHandle]*Actor)
	s.contacts = nil
	s.buffer = RenderBuffer{}
	s.released = true
}

func (s *Scene) Released() bool {
	return s.released
}

func finiteVec(v mgl32.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return false
		}
	}
	return true
}
