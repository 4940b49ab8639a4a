package namegen

import (
	"math/rand/v2"
	"sync"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// MinLength and MaxLength bound generated names: [MinLength, MaxLength).
	MinLength = 5
	MaxLength = 100
)

// Generator produces random display names.
type Generator interface {
	// Length draws a name length uniformly from [MinLength, MaxLength).
	Length() int
	// Name returns n characters drawn independently from Alphabet.
	Name(n int) string
}

type randomGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New wraps src. A nil src is seeded from the runtime's random source.
func New(src rand.Source) Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &randomGenerator{rnd: rand.New(src)}
}

// NewSeeded is deterministic for a given seed.
func NewSeeded(seed uint64) Generator {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (g *randomGenerator) Length() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return MinLength + g.rnd.IntN(MaxLength-MinLength)
}

func (g *randomGenerator) Name(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	g.mu.Lock()
	for i := range buf {
		buf[i] = Alphabet[g.rnd.IntN(len(Alphabet))]
	}
	g.mu.Unlock()
	return string(buf)
}
