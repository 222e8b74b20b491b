package detection

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// segment is a directed boundary piece inside one cell. Bright values lie to
// the right when walking from -> to in image coordinates.
type segment struct {
	from, to Point
}

// edgeFraction returns where level falls between two corner values.
func edgeFraction(from, to, level float64) float64 {
	if from == to {
		return 0
	}
	return (level - from) / (to - from)
}

// contourSegments runs marching squares over every 2x2 cell of field.
func contourSegments(field mat.Matrix, level float64) []segment {
	rows, cols := field.Dims()
	var segs []segment

	for r0 := 0; r0 < rows-1; r0++ {
		for c0 := 0; c0 < cols-1; c0++ {
			r1, c1 := r0+1, c0+1

			ul := field.At(r0, c0)
			ur := field.At(r0, c1)
			ll := field.At(r1, c0)
			lr := field.At(r1, c1)

			if math.IsNaN(ul) || math.IsNaN(ur) || math.IsNaN(ll) || math.IsNaN(lr) {
				continue
			}

			cell := 0
			if ul > level {
				cell |= 1
			}
			if ur > level {
				cell |= 2
			}
			if ll > level {
				cell |= 4
			}
			if lr > level {
				cell |= 8
			}
			if cell == 0 || cell == 15 {
				continue
			}

			fr0, fc0 := float64(r0), float64(c0)
			top := Point{Row: fr0, Col: fc0 + edgeFraction(ul, ur, level)}
			bottom := Point{Row: fr0 + 1, Col: fc0 + edgeFraction(ll, lr, level)}
			left := Point{Row: fr0 + edgeFraction(ul, ll, level), Col: fc0}
			right := Point{Row: fr0 + edgeFraction(ur, lr, level), Col: fc0 + 1}

			switch cell {
			case 1:
				segs = append(segs, segment{top, left})
			case 2:
				segs = append(segs, segment{right, top})
			case 3:
				segs = append(segs, segment{right, left})
			case 4:
				segs = append(segs, segment{left, bottom})
			case 5:
				segs = append(segs, segment{top, bottom})
			case 6:
				// Saddle: connect through the low corners.
				segs = append(segs, segment{right, top}, segment{left, bottom})
			case 7:
				segs = append(segs, segment{right, bottom})
			case 8:
				segs = append(segs, segment{bottom, right})
			case 9:
				// Saddle: connect through the low corners.
				segs = append(segs, segment{top, left}, segment{bottom, right})
			case 10:
				segs = append(segs, segment{bottom, top})
			case 11:
				segs = append(segs, segment{bottom, left})
			case 12:
				segs = append(segs, segment{left, right})
			case 13:
				segs = append(segs, segment{top, right})
			case 14:
				segs = append(segs, segment{left, top})
			}
		}
	}
	return segs
}

// chain is a contour under construction. Points prepended to the chain are
// kept reversed in head so both ends grow in amortized constant time.
type chain struct {
	id   int
	head []Point
	tail []Point
}

func newChain(id int, from, to Point) *chain {
	return &chain{id: id, tail: []Point{from, to}}
}

func (c *chain) first() Point {
	if len(c.head) > 0 {
		return c.head[len(c.head)-1]
	}
	return c.tail[0]
}

func (c *chain) last() Point {
	if len(c.tail) > 0 {
		return c.tail[len(c.tail)-1]
	}
	return c.head[0]
}

func (c *chain) prepend(p Point) { c.head = append(c.head, p) }

func (c *chain) append(p Point) { c.tail = append(c.tail, p) }

func (c *chain) points() Contour {
	out := make(Contour, 0, len(c.head)+len(c.tail))
	for i := len(c.head) - 1; i >= 0; i-- {
		out = append(out, c.head[i])
	}
	return append(out, c.tail...)
}

// appendChain adds every point of other after c's last point.
func (c *chain) appendChain(other *chain) {
	c.tail = append(c.tail, other.points()...)
}

// prependChain adds every point of other before c's first point.
func (c *chain) prependChain(other *chain) {
	pts := other.points()
	for i := len(pts) - 1; i >= 0; i-- {
		c.prepend(pts[i])
	}
}

// assembleContours links segments sharing end points into contours.
//
// When a segment joins two existing chains, the chain created first absorbs
// the other, so the surviving ids preserve discovery order.
func assembleContours(segs []segment) []Contour {
	nextID := 0
	chains := make(map[int]*chain)
	starts := make(map[Point]*chain)
	ends := make(map[Point]*chain)

	for _, s := range segs {
		if s.from == s.to {
			continue
		}

		tail, hasTail := starts[s.to]
		delete(starts, s.to)
		head, hasHead := ends[s.from]
		delete(ends, s.from)

		switch {
		case hasTail && hasHead:
			if tail == head {
				// Closing a loop.
				head.append(s.to)
				continue
			}
			if tail.id > head.id {
				head.appendChain(tail)
				delete(chains, tail.id)
				starts[head.first()] = head
				ends[head.last()] = head
			} else {
				tail.prependChain(head)
				delete(starts, head.first())
				delete(chains, head.id)
				starts[tail.first()] = tail
				ends[tail.last()] = tail
			}
		case !hasTail && !hasHead:
			c := newChain(nextID, s.from, s.to)
			chains[nextID] = c
			starts[s.from] = c
			ends[s.to] = c
			nextID++
		case !hasHead:
			tail.prepend(s.from)
			starts[s.from] = tail
		default:
			head.append(s.to)
			ends[s.to] = head
		}
	}

	ids := make([]int, 0, len(chains))
	for id := range chains {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Contour, 0, len(ids))
	for _, id := range ids {
		out = append(out, chains[id].points())
	}
	return out
}
