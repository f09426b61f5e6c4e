package catalog

import "triad/internal/domain"

// StandardSet returns the built-in thirty-card set used when no catalog
// file is configured. Ranks are top, right, bottom, left.
func StandardSet() []domain.Card {
	return []domain.Card{
		{ID: 1, Name: "Moss Crab", Top: 1, Right: 4, Bottom: 1, Left: 5},
		{ID: 2, Name: "Ember Imp", Top: 5, Right: 1, Bottom: 1, Left: 3},
		{ID: 3, Name: "Dune Beetle", Top: 1, Right: 3, Bottom: 3, Left: 5},
		{ID: 4, Name: "Cave Bat", Top: 6, Right: 1, Bottom: 1, Left: 2},
		{ID: 5, Name: "Tide Jelly", Top: 2, Right: 3, Bottom: 1, Left: 5},
		{ID: 6, Name: "Thorn Fox", Top: 2, Right: 1, Bottom: 4, Left: 4},
		{ID: 7, Name: "Gale Wisp", Top: 1, Right: 5, Bottom: 4, Left: 1},
		{ID: 8, Name: "Silt Eel", Top: 3, Right: 5, Bottom: 2, Left: 1},
		{ID: 9, Name: "Bog Wraith", Top: 2, Right: 1, Bottom: 6, Left: 1},
		{ID: 10, Name: "Pine Sprite", Top: 4, Right: 2, Bottom: 4, Left: 3},
		{ID: 11, Name: "Storm Crow", Top: 5, Right: 4, Bottom: 5, Left: 2},
		{ID: 12, Name: "Frost Hare", Top: 5, Right: 2, Bottom: 3, Left: 5},
		{ID: 13, Name: "Ash Golem", Top: 3, Right: 6, Bottom: 2, Left: 5},
		{ID: 14, Name: "Reef Drake", Top: 6, Right: 3, Bottom: 1, Left: 6},
		{ID: 15, Name: "Sun Mantis", Top: 4, Right: 5, Bottom: 5, Left: 3},
		{ID: 16, Name: "Iron Toad", Top: 5, Right: 5, Bottom: 4, Left: 4},
		{ID: 17, Name: "Night Howler", Top: 6, Right: 2, Bottom: 6, Left: 3},
		{ID: 18, Name: "Coral Naga", Top: 4, Right: 4, Bottom: 5, Left: 5},
		{ID: 19, Name: "Cinder Wolf", Top: 7, Right: 3, Bottom: 4, Left: 4},
		{ID: 20, Name: "Mire Serpent", Top: 4, Right: 6, Bottom: 5, Left: 4},
		{ID: 21, Name: "Granite Ogre", Top: 6, Right: 5, Bottom: 6, Left: 5},
		{ID: 22, Name: "Spark Djinn", Top: 7, Right: 4, Bottom: 5, Left: 6},
		{ID: 23, Name: "Abyss Squid", Top: 5, Right: 6, Bottom: 7, Left: 4},
		{ID: 24, Name: "Glacier Bear", Top: 7, Right: 5, Bottom: 6, Left: 5},
		{ID: 25, Name: "Dread Falcon", Top: 6, Right: 7, Bottom: 5, Left: 6},
		{ID: 26, Name: "Magma Tortoise", Top: 5, Right: 6, Bottom: 6, Left: 8},
		{ID: 27, Name: "Void Panther", Top: 8, Right: 5, Bottom: 7, Left: 5},
		{ID: 28, Name: "Thunder Ram", Top: 7, Right: 7, Bottom: 6, Left: 6},
		{ID: 29, Name: "Star Seraph", Top: 8, Right: 6, Bottom: 8, Left: 6},
		{ID: 30, Name: "Eclipse Dragon", Top: 9, Right: 8, Bottom: 7, Left: 8},
	}
}

// MustStandard builds the built-in catalog and panics on a defect in the
// compiled-in set. Intended for wiring and tests.
func MustStandard() *InMemory {
	c, err := NewInMemory(StandardSet())
	if err != nil {
		panic(err)
	}
	return c
}
