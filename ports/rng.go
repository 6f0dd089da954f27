package ports

import (
	"golang.org/x/exp/rand"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// RNG provides seeded random streams for deterministic simulation. Every
// (condition, replication, stage) coordinate must map to the same stream on
// every run and on every worker, so results never depend on scheduling.
type RNG interface {
	// Stream returns the generator for one pipeline stage of one cell.
	Stream(cond study.Condition, replication int, stage string) *rand.Rand

	// GlobalStream returns the generator for a study-level stage that is
	// not tied to a grid cell.
	GlobalStream(stage string) *rand.Rand
}
