package fleet

import "github.com/nstehr/wingman/model"

// Set is an insertion-ordered set of deposits. Order matters: every
// tie-break in the allocation protocol walks it front to back, so two runs
// over the same world make the same choices.
type Set struct {
	order []model.Deposit
	index map[model.Deposit]struct{}
}

func NewSet() *Set {
	return &Set{index: make(map[model.Deposit]struct{})}
}

// Add inserts d. Returns false if it was already present.
func (s *Set) Add(d model.Deposit) bool {
	if d == nil {
		return false
	}
	if _, ok := s.index[d]; ok {
		return false
	}
	s.index[d] = struct{}{}
	s.order = append(s.order, d)
	return true
}

// Remove deletes d. Returns false if it was absent.
func (s *Set) Remove(d model.Deposit) bool {
	if d == nil {
		return false
	}
	if _, ok := s.index[d]; !ok {
		return false
	}
	delete(s.index, d)
	for i, x := range s.order {
		if x == d {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Contains(d model.Deposit) bool {
	if d == nil {
		return false
	}
	_, ok := s.index[d]
	return ok
}

func (s *Set) Len() int { return len(s.order) }

// Entries returns a copy in insertion order, safe to iterate while mutating.
func (s *Set) Entries() []model.Deposit {
	out := make([]model.Deposit, len(s.order))
	copy(out, s.order)
	return out
}
