// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "github.com/gazed/rigid2d/math2d"

// joint.go defines the Joint interface the island solver drives, plus
// the two reference implementations (distancejoint.go, revolutejoint.go)
// grounded on original_source/Box2D's b2DistanceJoint.cpp and
// RevoluteJoint.hpp, the expansion's MODULE EXPANSION entry for joints.

// Joint is a velocity+position constraint between two bodies, solved
// once per island alongside contacts (§4.8). Concrete joints (distance,
// revolute, ...) implement this against the shared solverBody state the
// island solver maintains for the step.
type Joint interface {
	bodyA() BodyHandle
	bodyB() BodyHandle
	isEnabled() bool
	collideConnected() bool

	initVelocityConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, dt float64)
	warmStartJoint(bodies []*solverBody, indexOf map[BodyHandle]int)
	solveVelocityConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, dt float64)
	solvePositionConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, conf StepConf) bool

	inIsland() bool
	setIsland(v bool)
}

// jointBase holds the fields common to every concrete joint: the two
// bodies, whether the joint participates in solving, and whether it
// suppresses collision between its own two bodies.
type jointBase struct {
	a, b         BodyHandle
	enabled      bool
	noCollide    bool
	localAnchorA math2d.Vec2
	localAnchorB math2d.Vec2
	userData     any
	islandFlag   bool
}

func (j jointBase) bodyA() BodyHandle      { return j.a }
func (j jointBase) bodyB() BodyHandle      { return j.b }
func (j jointBase) isEnabled() bool        { return j.enabled }
func (j jointBase) collideConnected() bool { return !j.noCollide }

func (j *jointBase) inIsland() bool    { return j.islandFlag }
func (j *jointBase) setIsland(v bool)  { j.islandFlag = v }
