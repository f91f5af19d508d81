package idgen

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Generator produces order identifiers. The strategy is injectable so tests
// can supply deterministic ids and deployments can choose their id space.
type Generator interface {
	NewOrderID() string
}

// UUIDGenerator is the default: a 128-bit random identifier makes collisions
// negligible.
type UUIDGenerator struct{}

func (UUIDGenerator) NewOrderID() string {
	return "order_" + uuid.NewString()
}

// LegacyRandomGenerator reproduces the historical "order_<0..9999>" scheme.
// Ten thousand possible ids collide quickly; the repository's existence
// check turns a collision into ErrDuplicateKey rather than an overwrite.
// Kept only for compatibility with data sets created under that scheme.
type LegacyRandomGenerator struct{}

func (LegacyRandomGenerator) NewOrderID() string {
	return fmt.Sprintf("order_%d", rand.Intn(10000))
}

// SequenceGenerator yields order_1, order_2, ... for deterministic tests.
type SequenceGenerator struct {
	next int
}

func (g *SequenceGenerator) NewOrderID() string {
	g.next++
	return fmt.Sprintf("order_%d", g.next)
}
