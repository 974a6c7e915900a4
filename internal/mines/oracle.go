package mines

import (
	"encoding/binary"
	"math/rand/v2"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Oracle decides whether a point holds a mine. A game asks it at most once per
// point and remembers the answer, so an oracle may be random.
type Oracle func(p Point) bool

func Never(Point) bool  { return false }
func Always(Point) bool { return true }

// MinesAt places mines at exactly the given points.
func MinesAt(points ...Point) Oracle {
	mined := make(map[Point]struct{}, len(points))
	for _, p := range points {
		mined[p] = struct{}{}
	}
	return func(p Point) bool {
		_, ok := mined[p]
		return ok
	}
}

// RandomOracle draws every answer from r. r is not safe for concurrent use, so
// draws are serialized.
func RandomOracle(probability float64, r *rand.Rand) Oracle {
	var mu sync.Mutex
	return func(Point) bool {
		mu.Lock()
		defer mu.Unlock()
		return r.Float64() < probability
	}
}

// SeededOracle derives the answer for p from a hash of seed and p, so the same
// seed always yields the same field.
func SeededOracle(seed uint64, probability float64) Oracle {
	return func(p Point) bool {
		var buf [24]byte
		binary.LittleEndian.PutUint64(buf[0:], seed)
		binary.LittleEndian.PutUint64(buf[8:], uint64(int64(p.X)))
		binary.LittleEndian.PutUint64(buf[16:], uint64(int64(p.Y)))
		h := xxhash.Sum64(buf[:])
		return float64(h>>11)/(1<<53) < probability
	}
}

// SafeZone keeps every point within radius of the origin free of mines.
func SafeZone(radius int, o Oracle) Oracle {
	if radius < 0 {
		return o
	}
	var origin Point
	return func(p Point) bool {
		if p.Chebyshev(origin) <= radius {
			return false
		}
		return o(p)
	}
}

// Oracle builds the production oracle for a seeded game played with p.
func (p Params) Oracle(seed uint64) Oracle {
	return SafeZone(p.SafeRadius, SeededOracle(seed, p.MineProbability))
}
