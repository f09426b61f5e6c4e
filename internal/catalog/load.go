package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"triad/internal/domain"
)

type cardRecord struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Top    int    `json:"top"`
	Right  int    `json:"right"`
	Bottom int    `json:"bottom"`
	Left   int    `json:"left"`
}

// FromFile loads a catalog from a JSON card list on disk.
func FromFile(path string) (*InMemory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card catalog: %w", err)
	}

	var records []cardRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card catalog: %w", err)
	}

	cards := make([]domain.Card, len(records))
	for i, r := range records {
		cards[i] = domain.Card{
			ID:     r.ID,
			Name:   r.Name,
			Top:    r.Top,
			Right:  r.Right,
			Bottom: r.Bottom,
			Left:   r.Left,
		}
	}
	return NewInMemory(cards)
}
