// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"
	"sort"

	"github.com/gazed/rigid2d/math2d"
)

// shapes.go implements the external collaborator named but left abstract
// by spec.md §1/§3/§6 ("Shape primitive math ... treated as pure functions
// over value types"): Circle, Polygon, Edge and Chain as plain value
// types satisfying the Shape interface, grounded on the teacher's own
// shape.go (box/sphere as simple structs implementing a small Shape
// interface: Type/Aabb/Inertia) but reworked for 2D convex-polygon
// collision rather than 3D OBB/sphere collision.

// ShapeType enumerates the four concrete shapes the core dispatches on.
type ShapeType int

const (
	CircleShape ShapeType = iota
	PolygonShape
	EdgeShape
	ChainShape
)

// MassData is the result of integrating density over a shape's area.
type MassData struct {
	Mass       float64
	Center     math2d.Vec2
	RotInertia float64 // about the shape's local origin
}

// RayCastInput is a ray segment to test against a shape.
type RayCastInput struct {
	P1, P2      math2d.Vec2
	MaxFraction float64
}

// RayCastOutput is the result of a ray cast against one shape child.
type RayCastOutput struct {
	Normal   math2d.Vec2
	Fraction float64
	Hit      bool
}

// DistanceProxy is the minimal convex-hull view GJK/EPA need: a small
// vertex loop plus a vertex radius (so circles are "a single vertex with
// a radius" and rounded polygons fall out for free).
type DistanceProxy struct {
	Vertices []math2d.Vec2
	Radius   float64
}

// Support returns the index of the proxy vertex farthest along d.
func (p DistanceProxy) Support(d math2d.Vec2) int {
	best, bestVal := 0, math2d.Dot(p.Vertices[0], d)
	for i := 1; i < len(p.Vertices); i++ {
		v := math2d.Dot(p.Vertices[i], d)
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	return best
}

// Shape is a polymorphic collision primitive, a tagged union in spirit
// (§9 redesign note) implemented here as a small closed interface with
// four concrete value-type implementers.
type Shape interface {
	Type() ShapeType
	ChildCount() int
	GetChild(i int) DistanceProxy
	ComputeAABB(i int, xf math2d.Transform) AABB
	ComputeMassData(density float64) MassData
	RayCast(input RayCastInput, xf math2d.Transform, childIndex int) RayCastOutput
	TestPoint(xf math2d.Transform, p math2d.Vec2) bool
}

// Circle
// ============================================================================

// Circle is a disc of the given Radius centered at Center in shape-local
// space.
type Circle struct {
	Center math2d.Vec2
	Radius float64
}

func (c Circle) Type() ShapeType  { return CircleShape }
func (c Circle) ChildCount() int  { return 1 }
func (c Circle) GetChild(int) DistanceProxy {
	return DistanceProxy{Vertices: []math2d.Vec2{c.Center}, Radius: c.Radius}
}

func (c Circle) ComputeAABB(_ int, xf math2d.Transform) AABB {
	p := xf.Apply(c.Center)
	r := math2d.Vec2{c.Radius, c.Radius}
	return AABB{Lower: math2d.Sub(p, r), Upper: math2d.Add(p, r)}
}

func (c Circle) ComputeMassData(density float64) MassData {
	mass := density * math.Pi * c.Radius * c.Radius
	// I = 0.5*m*r^2 about the center, shifted to the local origin.
	inertia := mass * (0.5*c.Radius*c.Radius + math2d.Dot(c.Center, c.Center))
	return MassData{Mass: mass, Center: c.Center, RotInertia: inertia}
}

func (c Circle) TestPoint(xf math2d.Transform, p math2d.Vec2) bool {
	center := xf.Apply(c.Center)
	return math2d.DistSqr(p, center) <= c.Radius*c.Radius
}

func (c Circle) RayCast(input RayCastInput, xf math2d.Transform, _ int) RayCastOutput {
	position := xf.Apply(c.Center)
	s := math2d.Sub(input.P1, position)
	b := math2d.LenSqr(s) - c.Radius*c.Radius

	d := math2d.Sub(input.P2, input.P1)
	dLen := math2d.LenSqr(d)
	rr := math2d.Dot(s, d)
	sigma := rr*rr - dLen*b
	if sigma < 0 || dLen < math2d.Epsilon {
		return RayCastOutput{}
	}
	t := -(rr + math.Sqrt(sigma))
	if t >= 0 && t <= input.MaxFraction*dLen {
		t /= dLen
		hit := math2d.Add(s, math2d.Scale(d, t))
		n, _ := math2d.Normalize(hit)
		return RayCastOutput{Hit: true, Fraction: t, Normal: n}
	}
	return RayCastOutput{}
}

// Polygon
// ============================================================================

// polygonRadius is the small rounding radius Box2D-family engines apply
// to polygons so that two flush polygon faces still report a touching
// (not merely grazing) manifold; see spec.md §4.4's totalRadius usage.
const polygonRadius = 0.01

// Polygon is a convex polygon given by CCW-wound vertices. NewPolygon
// computes the convex hull of the input points (Andrew's monotone chain)
// so callers don't need to pre-sort or pre-validate winding.
type Polygon struct {
	Vertices []math2d.Vec2
	Normals  []math2d.Vec2
	Centroid math2d.Vec2
	Radius   float64
}

// NewPolygonBox builds an axis-aligned box polygon with the given
// half-extents, centered at the origin.
func NewPolygonBox(hx, hy float64) Polygon {
	return NewPolygon([]math2d.Vec2{
		{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy},
	})
}

// NewPolygon computes the convex hull of points and builds a Polygon.
func NewPolygon(points []math2d.Vec2) Polygon {
	hull := convexHull(points)
	n := len(hull)
	normals := make([]math2d.Vec2, n)
	for i := 0; i < n; i++ {
		edge := math2d.Sub(hull[(i+1)%n], hull[i])
		normal, _ := math2d.Normalize(math2d.Vec2{edge[1], -edge[0]})
		normals[i] = normal
	}
	return Polygon{
		Vertices: hull,
		Normals:  normals,
		Centroid: polygonCentroid(hull),
		Radius:   polygonRadius,
	}
}

// convexHull returns the CCW convex hull of points via Andrew's monotone
// chain, the standard O(n log n) hull algorithm (not specific to any one
// example repo, used here because the teacher's box-only shape.go never
// needed a general hull and the spec requires arbitrary convex polygons).
func convexHull(points []math2d.Vec2) []math2d.Vec2 {
	pts := append([]math2d.Vec2(nil), points...)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	cross := func(o, a, b math2d.Vec2) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}
	n := len(pts)
	hull := make([]math2d.Vec2, 0, 2*n)
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func polygonCentroid(vs []math2d.Vec2) math2d.Vec2 {
	c := math2d.Zero2
	area := 0.0
	origin := vs[0]
	const inv3 = 1.0 / 3.0
	for i := 1; i+1 < len(vs); i++ {
		e1 := math2d.Sub(vs[i], origin)
		e2 := math2d.Sub(vs[i+1], origin)
		a := 0.5 * math2d.Cross2(e1, e2)
		area += a
		c = math2d.Add(c, math2d.Scale(math2d.Add(e1, e2), a*inv3))
	}
	if area > math2d.Epsilon {
		c = math2d.Scale(c, 1.0/area)
	}
	return math2d.Add(c, origin)
}

func (p Polygon) Type() ShapeType { return PolygonShape }
func (p Polygon) ChildCount() int { return 1 }
func (p Polygon) GetChild(int) DistanceProxy {
	return DistanceProxy{Vertices: p.Vertices, Radius: p.Radius}
}

func (p Polygon) ComputeAABB(_ int, xf math2d.Transform) AABB {
	ab := EmptyAABB
	for _, v := range p.Vertices {
		wp := xf.Apply(v)
		ab = Union(ab, AABB{Lower: wp, Upper: wp})
	}
	return ab.Extend(p.Radius)
}

func (p Polygon) ComputeMassData(density float64) MassData {
	center := math2d.Zero2
	area := 0.0
	inertia := 0.0
	origin := p.Vertices[0]
	const inv3 = 1.0 / 3.0
	n := len(p.Vertices)
	for i := 0; i < n; i++ {
		e1 := math2d.Sub(p.Vertices[i], origin)
		e2 := math2d.Sub(p.Vertices[(i+1)%n], origin)
		d := math2d.Cross2(e1, e2)
		triArea := 0.5 * d
		area += triArea
		center = math2d.Add(center, math2d.Scale(math2d.Add(e1, e2), triArea*inv3))
		intx2 := e1[0]*e1[0] + e1[0]*e2[0] + e2[0]*e2[0]
		inty2 := e1[1]*e1[1] + e1[1]*e2[1] + e2[1]*e2[1]
		inertia += (0.25 * inv3 * d) * (intx2 + inty2)
	}
	mass := density * area
	if area > math2d.Epsilon {
		center = math2d.Scale(center, 1.0/area)
	}
	centerWorld := math2d.Add(center, origin)
	// Shift inertia from the origin-relative frame to the shape's local
	// origin (parallel axis theorem), matching Box2D's PolygonShape.cpp.
	i := density*inertia - mass*math2d.Dot(center, center)
	i += mass * math2d.Dot(centerWorld, centerWorld)
	return MassData{Mass: mass, Center: centerWorld, RotInertia: i}
}

func (p Polygon) TestPoint(xf math2d.Transform, pt math2d.Vec2) bool {
	local := xf.ApplyT(pt)
	for i, n := range p.Normals {
		if math2d.Dot(n, math2d.Sub(local, p.Vertices[i])) > 0 {
			return false
		}
	}
	return true
}

func (p Polygon) RayCast(input RayCastInput, xf math2d.Transform, _ int) RayCastOutput {
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := math2d.Sub(p2, p1)

	lower, upper := 0.0, input.MaxFraction
	index := -1
	for i, n := range p.Normals {
		numerator := math2d.Dot(n, math2d.Sub(p.Vertices[i], p1))
		denominator := math2d.Dot(n, d)
		if denominator == 0 {
			if numerator < 0 {
				return RayCastOutput{}
			}
			continue
		}
		t := numerator / denominator
		if denominator < 0 && t > lower {
			lower = t
			index = i
		} else if denominator > 0 && t < upper {
			upper = t
		}
		if upper < lower {
			return RayCastOutput{}
		}
	}
	if index >= 0 {
		n := xf.Rotation.Apply(p.Normals[index])
		return RayCastOutput{Hit: true, Fraction: lower, Normal: n}
	}
	return RayCastOutput{}
}

// Edge
// ============================================================================

// Edge is a single line segment V1->V2, optionally flanked by ghost
// vertices V0/V3 that Chain fills in from a child's neighbors (Box2D's
// b2EdgeShape/b2ChainShape). Collision uses only V1 and V2; the ghost
// vertices are not read.
type Edge struct {
	V0, V1, V2, V3   math2d.Vec2
	HasV0, HasV3     bool
	OneSided         bool
}

func (e Edge) Type() ShapeType { return EdgeShape }
func (e Edge) ChildCount() int { return 1 }
func (e Edge) GetChild(int) DistanceProxy {
	return DistanceProxy{Vertices: []math2d.Vec2{e.V1, e.V2}, Radius: 0}
}

func (e Edge) ComputeAABB(_ int, xf math2d.Transform) AABB {
	w1, w2 := xf.Apply(e.V1), xf.Apply(e.V2)
	return Union(AABB{Lower: w1, Upper: w1}, AABB{Lower: w2, Upper: w2})
}

func (e Edge) ComputeMassData(float64) MassData {
	mid := math2d.Scale(math2d.Add(e.V1, e.V2), 0.5)
	return MassData{Mass: 0, Center: mid, RotInertia: 0}
}

func (e Edge) TestPoint(math2d.Transform, math2d.Vec2) bool { return false }

func (e Edge) RayCast(input RayCastInput, xf math2d.Transform, _ int) RayCastOutput {
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := math2d.Sub(p2, p1)
	v1, v2 := e.V1, e.V2
	edge, _ := math2d.Normalize(math2d.Sub(v2, v1))
	normal := math2d.Vec2{edge[1], -edge[0]}

	denom := math2d.Dot(d, normal)
	if denom == 0 {
		return RayCastOutput{}
	}
	t := math2d.Dot(math2d.Sub(v1, p1), normal) / denom
	if t < 0 || t > input.MaxFraction {
		return RayCastOutput{}
	}
	point := math2d.Add(p1, math2d.Scale(d, t))
	s := math2d.Dot(math2d.Sub(point, v1), edge)
	if s < 0 || s > math2d.Len(math2d.Sub(v2, v1)) {
		return RayCastOutput{}
	}
	if denom > 0 {
		normal = math2d.Neg(normal)
	}
	return RayCastOutput{Hit: true, Fraction: t, Normal: xf.Rotation.Apply(normal)}
}

// Chain
// ============================================================================

// Chain is a connected strip of edges sharing vertices, each child edge
// carrying ghost vertices from its neighbors (Box2D's b2ChainShape). The
// narrow phase collides each child as a plain segment and does not use
// the ghost vertices.
type Chain struct {
	Vertices []math2d.Vec2
	Loop     bool
}

func (c Chain) Type() ShapeType { return ChainShape }

func (c Chain) ChildCount() int {
	if c.Loop {
		return len(c.Vertices)
	}
	if len(c.Vertices) < 2 {
		return 0
	}
	return len(c.Vertices) - 1
}

func (c Chain) edgeAt(i int) Edge {
	n := len(c.Vertices)
	i1, i2 := i, (i+1)%n
	e := Edge{V1: c.Vertices[i1], V2: c.Vertices[i2]}
	if c.Loop || i1 > 0 {
		e.V0 = c.Vertices[(i1-1+n)%n]
		e.HasV0 = true
	}
	if c.Loop || i2 < n-1 {
		e.V3 = c.Vertices[(i2+1)%n]
		e.HasV3 = true
	}
	return e
}

func (c Chain) GetChild(i int) DistanceProxy { return c.edgeAt(i).GetChild(0) }

func (c Chain) ComputeAABB(i int, xf math2d.Transform) AABB {
	return c.edgeAt(i).ComputeAABB(0, xf)
}

func (c Chain) ComputeMassData(float64) MassData { return MassData{} }

func (c Chain) TestPoint(math2d.Transform, math2d.Vec2) bool { return false }

func (c Chain) RayCast(input RayCastInput, xf math2d.Transform, childIndex int) RayCastOutput {
	return c.edgeAt(childIndex).RayCast(input, xf, 0)
}
