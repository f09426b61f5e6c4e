package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"triad/internal/domain"
)

func TestLookupPreservesOrder(t *testing.T) {
	c := MustStandard()

	ids := []int{14, 3, 30, 3, 1}
	cards, err := c.Lookup(ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != len(ids) {
		t.Fatalf("expected %d cards, got %d", len(ids), len(cards))
	}
	for i, id := range ids {
		if cards[i].ID != id {
			t.Errorf("position %d: expected id %d, got %d", i, id, cards[i].ID)
		}
	}
}

func TestLookupUnknownID(t *testing.T) {
	c := MustStandard()

	_, err := c.Lookup([]int{1, 2, 999})
	if !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}
}

func TestLookupReturnsCopies(t *testing.T) {
	c := MustStandard()

	first, err := c.Lookup([]int{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first[0].Top = 99

	second, err := c.Lookup([]int{5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second[0].Top == 99 {
		t.Errorf("caller mutation reached the catalog")
	}
}

func TestListByFilter(t *testing.T) {
	c := MustStandard()

	strong := c.ListByFilter(func(card domain.Card) bool {
		return card.Top >= 7
	})
	if len(strong) == 0 {
		t.Fatalf("expected at least one card with top >= 7")
	}
	lastID := 0
	for _, card := range strong {
		if card.Top < 7 {
			t.Errorf("card %d leaked through the filter with top %d", card.ID, card.Top)
		}
		if card.ID <= lastID {
			t.Errorf("results not in id order: %d after %d", card.ID, lastID)
		}
		lastID = card.ID
	}

	all := c.ListByFilter(nil)
	if len(all) != c.Len() {
		t.Errorf("nil predicate: expected %d cards, got %d", c.Len(), len(all))
	}
}

func TestNewInMemoryRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name  string
		cards []domain.Card
	}{
		{
			name:  "non-positive id",
			cards: []domain.Card{{ID: 0, Name: "Zero", Top: 1, Right: 1, Bottom: 1, Left: 1}},
		},
		{
			name:  "missing name",
			cards: []domain.Card{{ID: 1, Top: 1, Right: 1, Bottom: 1, Left: 1}},
		},
		{
			name: "duplicate id",
			cards: []domain.Card{
				{ID: 1, Name: "A", Top: 1, Right: 1, Bottom: 1, Left: 1},
				{ID: 1, Name: "B", Top: 2, Right: 2, Bottom: 2, Left: 2},
			},
		},
		{
			name:  "rank above bound",
			cards: []domain.Card{{ID: 1, Name: "A", Top: 11, Right: 1, Bottom: 1, Left: 1}},
		},
		{
			name:  "rank below bound",
			cards: []domain.Card{{ID: 1, Name: "A", Top: 1, Right: 0, Bottom: 1, Left: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewInMemory(tt.cards); !errors.Is(err, ErrInvalidCard) {
				t.Fatalf("expected ErrInvalidCard, got %v", err)
			}
		})
	}
}

func TestStandardSetIsValid(t *testing.T) {
	c := MustStandard()
	if c.Len() != 30 {
		t.Errorf("expected 30 cards, got %d", c.Len())
	}
	if c.MaxID() != 30 {
		t.Errorf("expected max id 30, got %d", c.MaxID())
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	payload := `[
		{"id": 1, "name": "Moss Crab", "top": 1, "right": 4, "bottom": 1, "left": 5},
		{"id": 2, "name": "Ember Imp", "top": 5, "right": 1, "bottom": 1, "left": 3}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, err := FromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cards, err := c.Lookup([]int{2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cards[0].Name != "Ember Imp" || cards[0].Top != 5 {
		t.Errorf("unexpected card from file: %+v", cards[0])
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
