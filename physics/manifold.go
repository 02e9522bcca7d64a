// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// manifold.go implements spec.md §4.4 (CollideShapes): per shape-pair
// manifold generation. The teacher has no 2D SAT/clipping code to ground
// this on (its box.go does 3D AABB-vs-AABB only), so the structure here
// follows the spec's own step-by-step algorithm description directly,
// written in this module's naming conventions.

// featureType distinguishes a vertex-identified contact feature from a
// face-identified one, for warm-start matching across steps.
type featureType uint8

const (
	featureVertex featureType = iota
	featureFace
)

// ContactFeature identifies which vertex or edge of each shape produced a
// manifold point, stable enough across steps to carry warm-start impulses
// forward when the same feature re-appears (§3 "Manifold").
type ContactFeature struct {
	TypeA, TypeB   featureType
	IndexA, IndexB uint8
}

// ManifoldPoint is one point of contact in a manifold's reference frame.
type ManifoldPoint struct {
	LocalPoint     math2d.Vec2
	Feature        ContactFeature
	NormalImpulse  float64
	TangentImpulse float64
}

// ManifoldType tags which shape's local frame a Manifold's points live in.
type ManifoldType int

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// Manifold is the geometric result of CollideShapes: up to two contact
// points plus a normal, expressed in shape A's local frame (circles,
// faceA) or shape B's (faceB), per §3.
type Manifold struct {
	Type        ManifoldType
	LocalNormal math2d.Vec2
	LocalPoint  math2d.Vec2
	PointCount  int
	Points      [2]ManifoldPoint
}

// shapeCircle extracts a Circle view of shape if it is (or degenerates
// to) one: a Circle directly, or a zero-radius Edge/Chain pivot vertex
// per §4.4 "Degenerate zero-length edges resolve to the circle case".
func shapeCircle(shape Shape, index int) (Circle, bool) {
	switch s := shape.(type) {
	case Circle:
		return s, true
	case Edge:
		if math2d.DistSqr(s.V1, s.V2) < math2d.Epsilon {
			return Circle{Center: s.V1, Radius: 0}, true
		}
	case Chain:
		e := s.edgeAt(index)
		if math2d.DistSqr(e.V1, e.V2) < math2d.Epsilon {
			return Circle{Center: e.V1, Radius: 0}, true
		}
	}
	return Circle{}, false
}

// shapePolygon extracts a convex 2-or-more vertex polygon view of shape:
// the Polygon itself, or a degenerate 2-vertex "polygon" (a single edge
// with two opposing normals, zero radius) for Edge/Chain, so the rest of
// narrow phase only has one convex-polygon code path to reason about
// (§4.4's "structurally similar" note for edge-involved pairs).
func shapePolygon(shape Shape, index int) Polygon {
	switch s := shape.(type) {
	case Polygon:
		return s
	case Edge:
		return edgeAsPolygon(s)
	case Chain:
		return edgeAsPolygon(s.edgeAt(index))
	}
	return Polygon{}
}

func edgeAsPolygon(e Edge) Polygon {
	edge := math2d.Sub(e.V2, e.V1)
	n, _ := math2d.Normalize(math2d.Vec2{edge[1], -edge[0]})
	return Polygon{
		Vertices: []math2d.Vec2{e.V1, e.V2},
		Normals:  []math2d.Vec2{n, math2d.Neg(n)},
		Centroid: math2d.Scale(math2d.Add(e.V1, e.V2), 0.5),
		Radius:   0,
	}
}

// CollideShapes dispatches on the (circle?, polygon-like) nature of each
// shape and returns the resulting manifold, always expressed with shapeA
// as manifold-frame "A" and shapeB as "B" regardless of which concrete
// shape type each is.
func CollideShapes(shapeA Shape, indexA int, xfA math2d.Transform, shapeB Shape, indexB int, xfB math2d.Transform) Manifold {
	circA, isCircA := shapeCircle(shapeA, indexA)
	circB, isCircB := shapeCircle(shapeB, indexB)

	switch {
	case isCircA && isCircB:
		return collideCircles(circA, xfA, circB, xfB)
	case isCircA && !isCircB:
		polyB := shapePolygon(shapeB, indexB)
		return flipManifold(collidePolygonAndCircle(polyB, xfB, circA, xfA))
	case !isCircA && isCircB:
		polyA := shapePolygon(shapeA, indexA)
		return collidePolygonAndCircle(polyA, xfA, circB, xfB)
	default:
		polyA := shapePolygon(shapeA, indexA)
		polyB := shapePolygon(shapeB, indexB)
		return collidePolygons(polyA, xfA, polyB, xfB)
	}
}

// flipManifold swaps the A/B roles of a manifold computed with the
// operands reversed, used when CollideShapes' caller order doesn't match
// the polygon-circle helper's fixed (poly, circle) signature.
func flipManifold(m Manifold) Manifold {
	if m.Type == ManifoldFaceA {
		m.Type = ManifoldFaceB
	} else if m.Type == ManifoldFaceB {
		m.Type = ManifoldFaceA
	} else if m.PointCount == 1 {
		// Circles: LocalPoint is on A and the point's LocalPoint on B.
		m.LocalPoint, m.Points[0].LocalPoint = m.Points[0].LocalPoint, m.LocalPoint
	}
	for i := 0; i < m.PointCount; i++ {
		m.Points[i].Feature.TypeA, m.Points[i].Feature.TypeB = m.Points[i].Feature.TypeB, m.Points[i].Feature.TypeA
		m.Points[i].Feature.IndexA, m.Points[i].Feature.IndexB = m.Points[i].Feature.IndexB, m.Points[i].Feature.IndexA
	}
	return m
}

// collideCircles is circle-vs-circle: at most one point, at the midpoint
// of the overlap along the center line.
func collideCircles(a Circle, xfA math2d.Transform, b Circle, xfB math2d.Transform) Manifold {
	pA := xfA.Apply(a.Center)
	pB := xfB.Apply(b.Center)
	d := math2d.Sub(pB, pA)
	distSqr := math2d.LenSqr(d)
	totalRadius := a.Radius + b.Radius
	if distSqr > totalRadius*totalRadius {
		return Manifold{}
	}
	return Manifold{
		Type:       ManifoldCircles,
		LocalPoint: a.Center,
		Points: [2]ManifoldPoint{
			{LocalPoint: b.Center, Feature: ContactFeature{TypeA: featureVertex, TypeB: featureVertex}},
		},
		PointCount: 1,
	}
}

// collidePolygonAndCircle handles a convex polygon (or degenerate edge,
// via shapePolygon) against a circle.
func collidePolygonAndCircle(poly Polygon, xfA math2d.Transform, circle Circle, xfB math2d.Transform) Manifold {
	center := xfA.ApplyT(xfB.Apply(circle.Center))

	n := len(poly.Vertices)
	separation := -math.MaxFloat64
	vertIndex := 0
	for i := 0; i < n; i++ {
		s := math2d.Dot(poly.Normals[i], math2d.Sub(center, poly.Vertices[i]))
		if s > separation {
			separation = s
			vertIndex = i
		}
	}
	totalRadius := poly.Radius + circle.Radius
	if separation > totalRadius {
		return Manifold{}
	}

	v1 := poly.Vertices[vertIndex]
	v2 := poly.Vertices[(vertIndex+1)%n]

	var localNormal math2d.Vec2
	var localPoint math2d.Vec2
	switch {
	case separation < math2d.Epsilon:
		// Circle center is inside the polygon: use the face normal.
		localNormal = poly.Normals[vertIndex]
		localPoint = math2d.Scale(math2d.Add(v1, v2), 0.5)
	default:
		u1 := math2d.Dot(math2d.Sub(center, v1), math2d.Sub(v2, v1))
		u2 := math2d.Dot(math2d.Sub(center, v2), math2d.Sub(v1, v2))
		switch {
		case u1 <= 0:
			if math2d.DistSqr(center, v1) > totalRadius*totalRadius {
				return Manifold{}
			}
			localNormal, _ = math2d.Normalize(math2d.Sub(center, v1))
			localPoint = v1
		case u2 <= 0:
			if math2d.DistSqr(center, v2) > totalRadius*totalRadius {
				return Manifold{}
			}
			localNormal, _ = math2d.Normalize(math2d.Sub(center, v2))
			localPoint = v2
		default:
			localNormal = poly.Normals[vertIndex]
			localPoint = math2d.Scale(math2d.Add(v1, v2), 0.5)
		}
	}

	return Manifold{
		Type:        ManifoldCircles,
		LocalNormal: localNormal,
		LocalPoint:  localPoint,
		PointCount:  1,
		Points: [2]ManifoldPoint{
			{LocalPoint: circle.Center, Feature: ContactFeature{TypeA: featureFace, IndexA: uint8(vertIndex), TypeB: featureVertex}},
		},
	}
}

// clipVertex is one endpoint surviving (or not) a Sutherland-Hodgman clip.
type clipVertex struct {
	v       math2d.Vec2
	feature ContactFeature
}

// clipSegmentToLine clips the 2-point segment in against the half-plane
// {x : dot(normal,x) <= offset}, per §4.4 step 5, tagging newly created
// points with the clip edge's index so later feature comparisons still
// make sense.
func clipSegmentToLine(in [2]clipVertex, normal math2d.Vec2, offset float64, clipEdge uint8) ([2]clipVertex, int) {
	var out [2]clipVertex
	count := 0

	d0 := math2d.Dot(normal, in[0].v) - offset
	d1 := math2d.Dot(normal, in[1].v) - offset

	if d0 <= 0 {
		out[count] = in[0]
		count++
	}
	if d1 <= 0 {
		out[count] = in[1]
		count++
	}
	if d0*d1 < 0 {
		t := d0 / (d0 - d1)
		v := math2d.Lerp(in[0].v, in[1].v, t)
		f := in[0].feature
		f.TypeA = featureFace
		f.IndexA = clipEdge
		out[count] = clipVertex{v: v, feature: f}
		count++
	}
	return out, count
}

// collidePolygons implements §4.4 steps 1-6 in full: SAT on both
// polygons' face normals, reference/incident edge selection with
// hysteresis, incident-edge clipping against the reference edge's side
// planes, and emission of up to two surviving points.
func collidePolygons(polyA Polygon, xfA math2d.Transform, polyB Polygon, xfB math2d.Transform) Manifold {
	totalRadius := polyA.Radius + polyB.Radius

	edgeA, sepA := findMaxSeparation(polyA, polyB, xfA, xfB)
	if sepA > totalRadius {
		return Manifold{}
	}
	edgeB, sepB := findMaxSeparation(polyB, polyA, xfB, xfA)
	if sepB > totalRadius {
		return Manifold{}
	}

	const tol = 0.1 * 0.005 // linearSlop/10, see §4.4 "small tolerance hysteresis"
	var ref, inc Polygon
	var xfRef, xfInc math2d.Transform
	var edge1 int
	flip := false
	if sepB > sepA+tol {
		ref, xfRef = polyB, xfB
		inc, xfInc = polyA, xfA
		edge1 = edgeB
		flip = true
	} else {
		ref, xfRef = polyA, xfA
		inc, xfInc = polyB, xfB
		edge1 = edgeA
	}

	incEdge := findIncidentEdge(ref, xfRef, edge1, inc, xfInc)

	n1 := len(ref.Vertices)
	i11, i12 := edge1, (edge1+1)%n1
	v11, v12 := ref.Vertices[i11], ref.Vertices[i12]
	localTangent, _ := math2d.Normalize(math2d.Sub(v12, v11))
	localNormal := math2d.Vec2{localTangent[1], -localTangent[0]}
	planePoint := math2d.Scale(math2d.Add(v11, v12), 0.5)

	tangent := xfRef.Rotation.Apply(localTangent)

	v11w := xfRef.Apply(v11)
	v12w := xfRef.Apply(v12)

	in := [2]clipVertex{
		{v: xfInc.Apply(inc.Vertices[incEdge]), feature: ContactFeature{TypeA: featureVertex, TypeB: featureFace, IndexB: uint8(incEdge)}},
		{v: xfInc.Apply(inc.Vertices[(incEdge+1)%len(inc.Vertices)]), feature: ContactFeature{TypeA: featureVertex, TypeB: featureFace, IndexB: uint8((incEdge + 1) % len(inc.Vertices))}},
	}

	clipped, n := clipSegmentToLine(in, math2d.Neg(tangent), -math2d.Dot(tangent, v11w), uint8(i11))
	if n < 2 {
		return Manifold{}
	}
	clipped, n = clipSegmentToLine(clipped, tangent, math2d.Dot(tangent, v12w), uint8(i12))
	if n < 2 {
		return Manifold{}
	}

	m := Manifold{LocalNormal: localNormal, LocalPoint: planePoint}
	if flip {
		m.Type = ManifoldFaceB
	} else {
		m.Type = ManifoldFaceA
	}

	worldNormal := xfRef.Rotation.Apply(localNormal)
	pointCount := 0
	for i := 0; i < 2; i++ {
		separation := math2d.Dot(worldNormal, math2d.Sub(clipped[i].v, v11w)) - totalRadius
		if separation <= 0 {
			// project back into the reference frame's local space.
			local := xfRef.ApplyT(clipped[i].v)
			feature := clipped[i].feature
			if flip {
				feature.TypeA, feature.TypeB = feature.TypeB, feature.TypeA
				feature.IndexA, feature.IndexB = feature.IndexB, feature.IndexA
			}
			m.Points[pointCount] = ManifoldPoint{LocalPoint: local, Feature: feature}
			pointCount++
		}
	}
	m.PointCount = pointCount
	if pointCount == 0 {
		return Manifold{}
	}
	return m
}

// findMaxSeparation implements §4.4 step 1/2: for each face normal of
// poly1, the separation to poly2's deepest vertex against that normal;
// returns the owning edge and the maximum such separation.
func findMaxSeparation(poly1, poly2 Polygon, xf1, xf2 math2d.Transform) (bestEdge int, bestSeparation float64) {
	xf := math2d.MulT(xf2, xf1)
	count1, count2 := len(poly1.Vertices), len(poly2.Vertices)
	bestSeparation = -math.MaxFloat64

	for i := 0; i < count1; i++ {
		n := xf.Rotation.Apply(poly1.Normals[i])
		v1 := xf.Apply(poly1.Vertices[i])

		si := math.MaxFloat64
		for j := 0; j < count2; j++ {
			sij := math2d.Dot(n, math2d.Sub(poly2.Vertices[j], v1))
			if sij < si {
				si = sij
			}
		}
		if si > bestSeparation {
			bestSeparation = si
			bestEdge = i
		}
	}
	return
}

// findIncidentEdge implements §4.4 step 4: the incident polygon's edge
// whose normal is most anti-parallel to the reference edge's normal.
func findIncidentEdge(ref Polygon, xfRef math2d.Transform, refEdge int, inc Polygon, xfInc math2d.Transform) int {
	refNormal := xfRef.Rotation.Apply(ref.Normals[refEdge])
	localNormal := xfInc.Rotation.ApplyT(refNormal)

	index := 0
	minDot := math.MaxFloat64
	for i, n := range inc.Normals {
		d := math2d.Dot(localNormal, n)
		if d < minDot {
			minDot = d
			index = i
		}
	}
	return index
}
