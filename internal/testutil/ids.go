package testutil

// ConstantIDGenerator returns the same figure id every time, for tests
// that render one chart repeatedly and compare the HTML.
type ConstantIDGenerator struct {
	id string
}

// NewConstantIDGenerator returns a generator for id, or for "test-figure"
// when id is empty.
func NewConstantIDGenerator(id string) *ConstantIDGenerator {
	if id == "" {
		id = "test-figure"
	}
	return &ConstantIDGenerator{id: id}
}

func (g *ConstantIDGenerator) Generate() string {
	return g.id
}
