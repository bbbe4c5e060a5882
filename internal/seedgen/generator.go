// Package seedgen generates synthetic review rosters for testing and
// local exploration. The engine itself never depends on it.
package seedgen

import (
	"fmt"
	"math/rand"

	"github.com/okian/ninebox/internal/domain/model"
)

// Rating distribution weights: most employees sit in the middle of the
// grid, few at the extremes.
const (
	lowWeight    = 0.25
	mediumWeight = 0.50
	flagChance   = 0.30
)

var firstNames = []string{
	"Ada", "Alan", "Barbara", "Claude", "Donald", "Edsger", "Frances",
	"Grace", "John", "Katherine", "Ken", "Leslie", "Margaret", "Niklaus",
	"Radia", "Tim",
}

var lastNames = []string{
	"Allen", "Dijkstra", "Hamilton", "Hopper", "Johnson", "Kay",
	"Knuth", "Lamport", "Liskov", "Lovelace", "McCarthy", "Perlman",
	"Ritchie", "Shannon", "Thompson", "Wirth",
}

// Generator produces deterministic synthetic rosters for a given seed.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator with a deterministic seed.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec // deterministic seed for reproducible rosters
}

// Roster generates n employee snapshots with sequential ids starting
// at 1.
func (g *Generator) Roster(n int) []model.Employee {
	out := make([]model.Employee, n)
	for i := range out {
		e := model.Employee{
			ID:   i + 1,
			Name: g.name(),
		}
		e.SetPlacement(g.rating(), g.rating())
		e.Flags = g.flags()
		out[i] = e
	}
	return out
}

func (g *Generator) name() string {
	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]
	return fmt.Sprintf("%s %s", first, last)
}

func (g *Generator) rating() model.Rating {
	roll := g.rng.Float64()
	switch {
	case roll < lowWeight:
		return model.RatingLow
	case roll < lowWeight+mediumWeight:
		return model.RatingMedium
	default:
		return model.RatingHigh
	}
}

func (g *Generator) flags() []model.Flag {
	if g.rng.Float64() >= flagChance {
		return nil
	}
	known := model.KnownFlags()
	return []model.Flag{known[g.rng.Intn(len(known))]}
}
