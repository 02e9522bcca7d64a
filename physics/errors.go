// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "fmt"

// ContractViolation reports a programmer error per spec.md §7: a null or
// stale handle, a double-destroy, mutating the world from inside a
// listener callback, or creating a joint between identical bodies. These
// are bugs, not runtime conditions to recover from, so the core panics
// with this type rather than returning an error.
type ContractViolation struct {
	Op      string
	Message string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("physics: contract violation in %s: %s", e.Op, e.Message)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Message: fmt.Sprintf(format, args...)})
}

// StepStats are the counters Step returns for numeric non-convergence
// (§7 "Numerical non-convergence", §4.10): the step always completes with
// best-effort values, and the caller can inspect these to decide whether
// to warn, log, or just carry on.
type StepStats struct {
	IslandCount                int
	ContactsCreated             int
	ContactsDestroyed           int
	TouchingContacts            int
	ToiSubSteps                 int
	ToiContactsProcessed        int
	RegPositionUnsolvedIslands  int
	ToiPositionUnsolvedContacts int
	DistanceMaxIterHits         int
	ToiRootFinderFailures       int
}
