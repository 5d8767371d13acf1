package cart

import (
	"fmt"
	"sync"

	"github.com/imrishuroy/go-storefront-checkout/internal/catalog"
)

// Store holds one session's cart lines in insertion order.
type Store struct {
	mu    sync.Mutex
	lines []LineItem
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// AddItem merges into the line for (product, variant) or appends a new one.
func (s *Store) AddItem(p catalog.Product, v Variant, quantity int) (LineItem, error) {
	quantity = clamp(quantity)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ProductID == p.ID && s.lines[i].Variant == v {
			s.lines[i].Quantity += quantity
			return s.lines[i], nil
		}
	}

	line, err := NewLine(p, v, quantity)
	if err != nil {
		return LineItem{}, err
	}
	s.lines = append(s.lines, line)
	return line, nil
}

// IncreaseQuantity adds one to the line. There is no upper bound.
func (s *Store) IncreaseQuantity(lineID string) (LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexOf(lineID)
	if err != nil {
		return LineItem{}, err
	}
	s.lines[i].Quantity++
	return s.lines[i], nil
}

// DecreaseQuantity subtracts one from the line, stopping at 1. The line is
// never removed here; use RemoveItem.
func (s *Store) DecreaseQuantity(lineID string) (LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexOf(lineID)
	if err != nil {
		return LineItem{}, err
	}
	if s.lines[i].Quantity > 1 {
		s.lines[i].Quantity--
	}
	return s.lines[i], nil
}

// RemoveItem deletes the line. Unknown ids are ignored.
func (s *Store) RemoveItem(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexOf(lineID)
	if err != nil {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}

// TotalItemCount is the sum of all line quantities.
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countItems(s.lines)
}

// Lines returns a snapshot of the cart.
func (s *Store) Lines() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.lines...)
}

// Len is the number of distinct lines, not the item count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool { return s.Len() == 0 }

func (s *Store) indexOf(lineID string) (int, error) {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// CountItems sums quantities of an arbitrary line slice.
func CountItems(lines []LineItem) int { return countItems(lines) }

func countItems(lines []LineItem) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
