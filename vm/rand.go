package vm

import "math/rand/v2"

// randSource is the narrow slice of math/rand/v2 the RAND instruction
// needs, so tests can swap in a fixed sequence without touching global
// state (SPEC_FULL.md Open Question #2).
type randSource interface {
	Uint8() byte
}

type pcgRandSource struct {
	r *rand.Rand
}

func (s *pcgRandSource) Uint8() byte {
	return byte(s.r.Uint32())
}

// newDefaultRandSource seeds from math/rand/v2's randomly seeded
// top-level source, giving a different sequence per process unless the
// caller later calls Seed.
func newDefaultRandSource() randSource {
	return &pcgRandSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Seed reseeds the RAND instruction's source deterministically, wired
// to the CLI's -seed flag.
func (vm *VM) Seed(seed uint64) {
	vm.rng = &pcgRandSource{r: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}
