package broker

import (
	"container/heap"
	"math"

	"taximarket/core/model"
)

// candidate pairs a bidder with a fare at a computed utility.
type candidate struct {
	utility     float64
	origin      model.Coord
	destination model.Coord
	taxi        string
	seq         int
}

// candidateHeap is a max-heap ordered by utility; ties keep insertion order.
type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }
func (h candidateHeap) Less(i, j int) bool {
	if h[i].utility != h[j].utility {
		return h[i].utility > h[j].utility
	}
	return h[i].seq < h[j].seq
}
func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// Assignment is one committed taxi/fare pairing.
type Assignment struct {
	Taxi        string
	Origin      model.Coord
	Destination model.Coord
	Utility     float64
}

type farePair struct {
	origin      model.Coord
	destination model.Coord
}

// Matcher accumulates the tick's scored candidates and resolves them into a
// conflict-free assignment by greedy priority extraction. It approximates
// maximum-weight bipartite matching without backtracking: a taxi claimed
// early can block a globally better pairing, which is an accepted trade-off.
type Matcher struct {
	candidates candidateHeap
	pairs      map[farePair]struct{}
	seq        int
}

// NewMatcher returns an empty matcher for one tick.
func NewMatcher() *Matcher {
	return &Matcher{pairs: make(map[farePair]struct{})}
}

// Add records a scored candidate.
func (m *Matcher) Add(utility float64, origin, destination model.Coord, taxi string) {
	m.candidates = append(m.candidates, candidate{
		utility:     utility,
		origin:      origin,
		destination: destination,
		taxi:        taxi,
		seq:         m.seq,
	})
	m.seq++
	m.pairs[farePair{origin: origin, destination: destination}] = struct{}{}
}

// Fares returns the number of distinct fare pairs with candidates this tick.
func (m *Matcher) Fares() int { return len(m.pairs) }

// Resolve drains the candidates best-first. A candidate is committed only if
// neither its taxi nor its fare pair has been claimed yet; otherwise it is
// discarded, since a better-or-equal match already took one side. Resolution
// stops once every available taxi or every distinct fare is claimed.
func (m *Matcher) Resolve(availableTaxis int) []Assignment {
	if availableTaxis <= 0 || len(m.candidates) == 0 {
		return nil
	}
	heap.Init(&m.candidates)

	claimedTaxis := make(map[string]struct{})
	claimedPairs := make(map[farePair]struct{})
	var out []Assignment
	for m.candidates.Len() > 0 {
		c := heap.Pop(&m.candidates).(candidate)
		if math.IsInf(c.utility, -1) {
			// Strategies mark an impossible pairing with -Inf; such a
			// candidate must never win, not even unopposed.
			continue
		}
		pair := farePair{origin: c.origin, destination: c.destination}
		if _, ok := claimedTaxis[c.taxi]; !ok {
			if _, ok := claimedPairs[pair]; !ok {
				claimedTaxis[c.taxi] = struct{}{}
				claimedPairs[pair] = struct{}{}
				out = append(out, Assignment{
					Taxi:        c.taxi,
					Origin:      c.origin,
					Destination: c.destination,
					Utility:     c.utility,
				})
			}
		}
		if len(claimedTaxis) == availableTaxis || len(claimedTaxis) == m.Fares() {
			break
		}
	}
	return out
}
