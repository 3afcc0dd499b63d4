// sequencer.go - non-repeating palette draws with reshuffle on exhaustion.
package palette

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Selector picks the palette for the next wallpaper.
type Selector func() Palette

// Fixed returns a Selector that always yields p.
func Fixed(p Palette) Selector {
	return func() Palette { return p }
}

// Sequencer hands out catalog palettes in shuffled passes. Within one pass
// every palette appears exactly once; a repeat across two passes (last of
// one, first of the next) is possible.
type Sequencer struct {
	mu    sync.Mutex
	rng   *rand.Rand
	queue []Palette
}

// NewSequencer creates a sequencer drawing its permutations from rng.
// A nil rng is replaced by a time-seeded source.
func NewSequencer(rng *rand.Rand) *Sequencer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Sequencer{rng: rng}
}

// NewSeededSequencer is NewSequencer with a deterministic PCG source.
func NewSeededSequencer(seed uint64) *Sequencer {
	return NewSequencer(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Draw removes and returns the head of the queue, refilling it with a
// fresh permutation of the catalog when empty.
func (s *Sequencer) Draw() Palette {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		s.queue = Catalog()
		s.rng.Shuffle(len(s.queue), func(i, j int) {
			s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
		})
	}

	p := s.queue[0]
	s.queue = s.queue[1:]
	return p
}

// Remaining reports how many palettes are left before the next reshuffle.
func (s *Sequencer) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
