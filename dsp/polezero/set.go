package polezero

import "slices"

const unlinked = -1

// Set is an ordered sequence of points of one kind. Each point may be
// linked to a conjugate partner in the same set.
//
// The zero value is an empty set ready to use.
type Set struct {
	points  []Point
	partner []int
}

// Len returns the number of points.
func (s *Set) Len() int {
	return len(s.points)
}

// At returns the point at index i.
func (s *Set) At(i int) (Point, bool) {
	if !s.valid(i) {
		return Point{}, false
	}
	return s.points[i], true
}

// Partner returns the index linked to i, or -1 when i is unlinked or out
// of range.
func (s *Set) Partner(i int) int {
	if !s.valid(i) {
		return unlinked
	}
	return s.partner[i]
}

// Points returns a copy of the points in insertion order.
func (s *Set) Points() []Point {
	return slices.Clone(s.points)
}

// Append adds an unlinked point and returns its index.
func (s *Set) Append(p Point) int {
	s.points = append(s.points, p)
	s.partner = append(s.partner, unlinked)
	return len(s.points) - 1
}

// AppendPair adds p and its conjugate as a linked pair and returns both
// indices.
func (s *Set) AppendPair(p Point) (int, int) {
	i := len(s.points)
	s.points = append(s.points, p, p.Conj())
	s.partner = append(s.partner, i+1, i)
	return i, i + 1
}

// Replace overwrites the point at i. The partner is not touched.
func (s *Set) Replace(i int, p Point) bool {
	if !s.valid(i) {
		return false
	}
	s.points[i] = p
	return true
}

// Remove deletes the point at i together with its linked partner. Later
// points shift down and their links are renumbered.
func (s *Set) Remove(i int) bool {
	if !s.valid(i) {
		return false
	}

	j := s.partner[i]
	remap := make([]int, len(s.points))
	n := 0
	for k := range s.points {
		if k == i || k == j {
			remap[k] = unlinked
			continue
		}
		remap[k] = n
		n++
	}

	points := make([]Point, 0, n)
	partner := make([]int, 0, n)
	for k, p := range s.points {
		if remap[k] == unlinked {
			continue
		}
		link := unlinked
		if q := s.partner[k]; q >= 0 {
			link = remap[q]
		}
		points = append(points, p)
		partner = append(partner, link)
	}

	s.points, s.partner = points, partner
	return true
}

// HitTest returns the index of the first point, in insertion order, whose
// per-axis distance to c is at most threshold on both axes.
func (s *Set) HitTest(c Point, threshold float64) (int, bool) {
	for i, p := range s.points {
		if p.Within(c, threshold) {
			return i, true
		}
	}
	return unlinked, false
}

// Unpaired returns the indices of non-real points whose conjugate is not
// present. Every point serves as partner for at most one other; explicit
// links are preferred over positional matches.
func (s *Set) Unpaired(tol float64) []int {
	used := make([]bool, len(s.points))
	var out []int

	for i, p := range s.points {
		if used[i] || p.IsReal(tol) {
			continue
		}

		match := unlinked
		if j := s.partner[i]; j >= 0 && !used[j] && p.IsConjugateOf(s.points[j], tol) {
			match = j
		} else {
			for j, q := range s.points {
				if j != i && !used[j] && p.IsConjugateOf(q, tol) {
					match = j
					break
				}
			}
		}

		if match == unlinked {
			out = append(out, i)
			continue
		}
		used[i], used[match] = true, true
	}

	return out
}

func (s *Set) valid(i int) bool {
	return i >= 0 && i < len(s.points)
}

func (s *Set) clone() Set {
	return Set{
		points:  slices.Clone(s.points),
		partner: slices.Clone(s.partner),
	}
}
