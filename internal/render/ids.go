package render

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces figure identifiers. Writers derive the HTML element
// id from them, so two figures on one page need distinct ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator is the default IDGenerator. Its ids begin with a
// millisecond timestamp, so figures exported in one session sort by
// creation time.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator hands out a fixed list of figure ids in order. Golden
// HTML files depend on it.
type FixedGenerator struct {
	mu   sync.Mutex
	ids  []string
	next int
}

func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id. A chart that renders more figures than a
// test listed ids for panics.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next == len(g.ids) {
		panic(fmt.Sprintf("render: fixed figure ids exhausted after %d", len(g.ids)))
	}
	id := g.ids[g.next]
	g.next++
	return id
}
