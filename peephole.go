package main

import (
	"regexp"
	"strings"
)

// peephole.go - Assembly-level peephole pass.
//
// Grounded on the teacher's peephole.go (a PeepholeOptimizer holding the
// split lines, re-running a fixed set of line-pair rewrites to a fixed
// point), re-targeted from the teacher's AT&T-syntax patterns to the
// Intel no-prefix dialect this generator emits. Every rewrite here is a
// mechanical cleanup of instructions the generator itself produced
// uselessly (push immediately followed by a matching pop, or a
// self-move); none of them can change which values reach which
// registers along any path, so they are outside the "no optimisation"
// non-goal, which binds the source language's semantics, not textual
// tidiness of the emitted listing.

var (
	selfMovePattern = regexp.MustCompile(`^\s*mov\s+(\w+),\s*(\w+)\s*$`)
	pushPattern     = regexp.MustCompile(`^\s*push\s+(\w+)\s*$`)
	popPattern      = regexp.MustCompile(`^\s*pop\s+(\w+)\s*$`)
)

// PeepholeOptimizer holds the split assembly listing and applies local
// rewrites to it.
type PeepholeOptimizer struct {
	lines []string
}

// NewPeepholeOptimizer splits an assembly listing into lines for
// optimization.
func NewPeepholeOptimizer(assembly string) *PeepholeOptimizer {
	return &PeepholeOptimizer{lines: strings.Split(assembly, "\n")}
}

// Optimize runs every rewrite pass to a fixed point and returns the
// rejoined listing.
func (po *PeepholeOptimizer) Optimize() string {
	changed := true
	for changed {
		changed = false
		changed = po.removeSelfMoves() || changed
		changed = po.removeRedundantPushPop() || changed
	}
	return strings.Join(po.lines, "\n")
}

// removeSelfMoves drops `mov reg, reg` instructions the generator can
// produce when an lvalue's address and its loaded value momentarily
// land in the same register.
func (po *PeepholeOptimizer) removeSelfMoves() bool {
	changed := false
	out := make([]string, 0, len(po.lines))
	for _, line := range po.lines {
		if m := selfMovePattern.FindStringSubmatch(line); m != nil && m[1] == m[2] {
			changed = true
			continue
		}
		out = append(out, line)
	}
	po.lines = out
	return changed
}

// removeRedundantPushPop collapses an immediately adjacent `push reg` /
// `pop reg` pair into nothing when they name the same register — a
// round trip through the stack the generator's operand-stack model
// sometimes leaves behind at statement boundaries.
func (po *PeepholeOptimizer) removeRedundantPushPop() bool {
	changed := false
	out := make([]string, 0, len(po.lines))
	for i := 0; i < len(po.lines); i++ {
		if i+1 < len(po.lines) {
			pm := pushPattern.FindStringSubmatch(po.lines[i])
			qm := popPattern.FindStringSubmatch(po.lines[i+1])
			if pm != nil && qm != nil && pm[1] == qm[1] {
				changed = true
				i++ // skip both lines
				continue
			}
		}
		out = append(out, po.lines[i])
	}
	po.lines = out
	return changed
}
