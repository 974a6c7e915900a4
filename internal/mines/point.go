package mines

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point addresses a single square. The board has no bounds, so every pair of
// ints is a valid point.
type Point struct {
	X, Y int
}

// Key is the textual identity of a [Point], "x:y". Distinct points always have
// distinct keys.
type Key string

var ErrBadKey = errors.New("malformed point key")

func (p Point) Key() Key {
	return Key(strconv.Itoa(p.X) + ":" + strconv.Itoa(p.Y))
}

// [Point] implements [fmt.Stringer]
func (p Point) String() string {
	return string(p.Key())
}

func ParseKey(k Key) (Point, error) {
	xs, ys, ok := strings.Cut(string(k), ":")
	if !ok {
		return Point{}, fmt.Errorf("%w: %q", ErrBadKey, k)
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: %w", ErrBadKey, k, err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %q: %w", ErrBadKey, k, err)
	}
	return Point{x, y}, nil
}

// [Point] implements [encoding.TextMarshaler]
func (p Point) MarshalText() ([]byte, error) {
	return []byte(p.Key()), nil
}

func (p *Point) UnmarshalText(text []byte) error {
	q, err := ParseKey(Key(text))
	if err != nil {
		return err
	}
	*p = q
	return nil
}

// Compare orders points row by row: first by Y, then by X.
func (p Point) Compare(q Point) int {
	if c := cmp.Compare(p.Y, q.Y); c != 0 {
		return c
	}
	return cmp.Compare(p.X, q.X)
}

// Add offsets p by dx and dy. Like any int sum it wraps around at the int
// limits; use [Point.Neighbours] to step without crossing them.
func (p Point) Add(dx, dy int) Point {
	return Point{p.X + dx, p.Y + dy}
}

// Chebyshev returns the king-move distance between p and q.
func (p Point) Chebyshev(q Point) int {
	return max(absDiff(p.X, q.X), absDiff(p.Y, q.Y))
}

// Neighbours returns the surrounding points: 8 of them, fewer on the edge of
// the int range, which the board does not wrap around. The order is fixed:
// rows from top to bottom, left to right within a row.
func (p Point) Neighbours() []Point {
	ns := make([]Point, 0, 8)
	for dy := -1; dy <= +1; dy++ {
		if !canStep(p.Y, dy) {
			continue
		}
		for dx := -1; dx <= +1; dx++ {
			if (dx == 0 && dy == 0) || !canStep(p.X, dx) {
				continue
			}
			ns = append(ns, p.Add(dx, dy))
		}
	}
	return ns
}

func canStep(v, d int) bool {
	return !(d < 0 && v == math.MinInt) && !(d > 0 && v == math.MaxInt)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
