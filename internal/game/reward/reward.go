// Package reward implements the weighted reward tables shared by the cast
// and pond minigames: which item (and rarity) a successful cast yields, and
// what a pond cell conceals. Sampling is with replacement and independent
// per call.
package reward

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
	"time"
)

// CastReward is the outcome of a successful cast: either a plain fish or a
// collectible item with a type and rating drawn from the catalogs.
type CastReward struct {
	Item   bool
	Type   ItemType // valid only when Item
	Rating Rating   // valid only when Item
}

// ContentKind tags what a pond cell concealed once fully revealed.
type ContentKind int

const (
	ContentCatch ContentKind = iota
	ContentJunk
	ContentHazard
)

// CellContent is one concealed pond cell value.
type CellContent struct {
	Kind ContentKind
	Name string
	// Value is the score awarded for a catch; zero for junk and hazard.
	Value int
}

// Sampler draws from the reward tables. The random source is injectable so
// tests can be deterministic; callers may share one Sampler across sessions.
type Sampler struct {
	mu  sync.Mutex
	rng *mrand.Rand

	itemTypeCum []int
	itemTypeTot int
	ratingCum   []int
	ratingTot   int
	contentCum  []int
	contentTot  int
}

// NewSampler creates a Sampler. A nil rng is seeded from crypto/rand.
func NewSampler(rng *mrand.Rand) *Sampler {
	if rng == nil {
		var b [8]byte
		if _, err := crand.Read(b[:]); err != nil {
			rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
		} else {
			rng = mrand.New(mrand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
		}
	}

	s := &Sampler{rng: rng}
	s.itemTypeCum, s.itemTypeTot = cumulate(itemTypeWeights)
	s.ratingCum, s.ratingTot = cumulate(ratingWeights)

	contentWeights := make([]int, 0, len(speciesTable)+2)
	for _, sp := range speciesTable {
		contentWeights = append(contentWeights, sp.Weight)
	}
	contentWeights = append(contentWeights, junkWeight, hazardWeight)
	s.contentCum, s.contentTot = cumulate(contentWeights)

	return s
}

// CastReward draws one cast outcome: 25% item (type and rating drawn
// independently from their weighted catalogs), otherwise a plain fish.
func (s *Sampler) CastReward() CastReward {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Intn(100) >= itemChancePercent {
		return CastReward{}
	}
	return CastReward{
		Item:   true,
		Type:   ItemType(pick(s.rng, s.itemTypeCum, s.itemTypeTot)),
		Rating: Rating(pick(s.rng, s.ratingCum, s.ratingTot)),
	}
}

// CellContent draws one concealed pond cell value from the weighted table of
// fish species, junk, and the hazard.
func (s *Sampler) CellContent() CellContent {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := pick(s.rng, s.contentCum, s.contentTot)
	switch {
	case i < len(speciesTable):
		sp := speciesTable[i]
		return CellContent{Kind: ContentCatch, Name: sp.Name, Value: sp.Value}
	case i == len(speciesTable):
		return CellContent{Kind: ContentJunk, Name: junkNames[s.rng.Intn(len(junkNames))]}
	default:
		return CellContent{Kind: ContentHazard, Name: "Hungry Shark"}
	}
}

// Intn exposes the underlying source for callers that need auxiliary rolls
// (cell kinds, reveal counts) against the same seed.
func (s *Sampler) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// cumulate builds a cumulative weight table.
func cumulate(weights []int) ([]int, int) {
	cum := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		if w < 1 {
			w = 1
		}
		total += w
		cum[i] = total
	}
	return cum, total
}

// pick binary-searches the cumulative table for a uniform roll.
func pick(rng *mrand.Rand, cum []int, total int) int {
	roll := rng.Intn(total)
	lo, hi := 0, len(cum)-1
	for lo < hi {
		mid := (lo + hi) >> 1
		if roll < cum[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
