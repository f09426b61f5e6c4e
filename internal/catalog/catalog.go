package catalog

import (
	"errors"
	"fmt"
	"sort"

	"triad/internal/domain"
)

// Catalog resolves card ids to card definitions. Implementations must be
// safe for concurrent readers.
type Catalog interface {
	// Lookup resolves ids in order. One unknown id fails the whole batch.
	Lookup(ids []int) ([]domain.Card, error)
	// ListByFilter returns every card the predicate keeps, in id order.
	ListByFilter(keep func(domain.Card) bool) []domain.Card
	// MaxID returns the highest id in the catalog.
	MaxID() int
}

var (
	// ErrUnknownCard is wrapped with the offending id.
	ErrUnknownCard = errors.New("unknown card id")
	// ErrInvalidCard reports a malformed card definition at load time.
	ErrInvalidCard = errors.New("invalid card definition")
)

// InMemory is an immutable in-process catalog.
type InMemory struct {
	byID  map[int]domain.Card
	order []int
	maxID int
}

// NewInMemory builds a catalog from card definitions, validating ids and
// rank bounds. Cards are copied in; the input slice stays untouched.
func NewInMemory(cards []domain.Card) (*InMemory, error) {
	c := &InMemory{byID: make(map[int]domain.Card, len(cards))}
	for _, card := range cards {
		if card.ID <= 0 {
			return nil, fmt.Errorf("%w: id %d must be positive", ErrInvalidCard, card.ID)
		}
		if card.Name == "" {
			return nil, fmt.Errorf("%w: id %d has no name", ErrInvalidCard, card.ID)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidCard, card.ID)
		}
		for _, rank := range [4]int{card.Top, card.Right, card.Bottom, card.Left} {
			if rank < domain.MinRank || rank > domain.MaxRank {
				return nil, fmt.Errorf("%w: id %d rank %d outside [%d,%d]",
					ErrInvalidCard, card.ID, rank, domain.MinRank, domain.MaxRank)
			}
		}
		c.byID[card.ID] = card
		c.order = append(c.order, card.ID)
		if card.ID > c.maxID {
			c.maxID = card.ID
		}
	}
	sort.Ints(c.order)
	return c, nil
}

// Lookup resolves ids preserving input order. Results are value copies;
// mutating them cannot touch the catalog.
func (c *InMemory) Lookup(ids []int) ([]domain.Card, error) {
	out := make([]domain.Card, len(ids))
	for i, id := range ids {
		card, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownCard, id)
		}
		out[i] = card
	}
	return out, nil
}

// ListByFilter returns the cards the predicate keeps, ordered by id.
func (c *InMemory) ListByFilter(keep func(domain.Card) bool) []domain.Card {
	var out []domain.Card
	for _, id := range c.order {
		card := c.byID[id]
		if keep == nil || keep(card) {
			out = append(out, card)
		}
	}
	return out
}

// MaxID returns the highest card id, 0 for an empty catalog.
func (c *InMemory) MaxID() int {
	return c.maxID
}

// Len returns the number of cards in the catalog.
func (c *InMemory) Len() int {
	return len(c.order)
}
