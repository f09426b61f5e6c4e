package domain

import (
	"errors"
	"reflect"
	"testing"
)

func card(id, top, right, bottom, left int) Card {
	return Card{ID: id, Name: "card", Top: top, Right: right, Bottom: bottom, Left: left}
}

// uniformHand builds a five-card hand where every rank on every card is r.
func uniformHand(baseID, r int) []Card {
	hand := make([]Card, HandSize)
	for i := range hand {
		hand[i] = card(baseID+i, r, r, r, r)
	}
	return hand
}

func TestOpponent(t *testing.T) {
	tests := []struct {
		side     Side
		expected Side
	}{
		{side: Side1, expected: Side2},
		{side: Side2, expected: Side1},
		{side: SideNone, expected: SideNone},
	}

	for _, tt := range tests {
		if got := tt.side.Opponent(); got != tt.expected {
			t.Errorf("Opponent(%q): expected %q, got %q", tt.side, tt.expected, got)
		}
	}
}

func TestNewMatch(t *testing.T) {
	tests := []struct {
		name    string
		size1   int
		size2   int
		wantErr error
	}{
		{name: "both hands of five", size1: 5, size2: 5},
		{name: "first hand short", size1: 4, size2: 5, wantErr: ErrInvalidHandSize},
		{name: "second hand long", size1: 5, size2: 6, wantErr: ErrInvalidHandSize},
		{name: "both hands empty", size1: 0, size2: 0, wantErr: ErrInvalidHandSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h1 := uniformHand(1, 5)[:tt.size1]
			h2 := uniformHand(11, 5)
			if tt.size2 > HandSize {
				h2 = append(h2, card(99, 5, 5, 5, 5))
			} else {
				h2 = h2[:tt.size2]
			}

			s, err := NewMatch(h1, h2)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Turn != Side1 {
				t.Errorf("expected side 1 to open, got %q", s.Turn)
			}
			if s.Status != StatusPlaying {
				t.Errorf("expected status playing, got %q", s.Status)
			}
			if s.Score1 != 5 || s.Score2 != 5 {
				t.Errorf("expected 5/5 opening scores, got %d/%d", s.Score1, s.Score2)
			}
			if s.CellsPlaced() != 0 {
				t.Errorf("expected empty board, got %d placed", s.CellsPlaced())
			}
		})
	}
}

func TestNewMatchCopiesHands(t *testing.T) {
	h1 := uniformHand(1, 5)
	h2 := uniformHand(11, 5)
	s, err := NewMatch(h1, h2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h1[0].Top = 9
	if s.Hand1[0].Top != 5 {
		t.Errorf("caller mutation leaked into match state")
	}
}

func TestPlaceCheckOrder(t *testing.T) {
	started := func() MatchState {
		s, err := NewMatch(uniformHand(1, 5), uniformHand(11, 5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return s
	}

	tests := []struct {
		name      string
		prep      func() MatchState
		side      Side
		handIndex int
		row, col  int
		wantErr   error
	}{
		{
			name: "finished reported before turn or bounds",
			prep: func() MatchState {
				s := started()
				s.Status = StatusFinished
				return s
			},
			side: Side2, handIndex: 9, row: -1, col: 7,
			wantErr: ErrMatchFinished,
		},
		{
			name: "wrong turn reported before bounds",
			prep: started, side: Side2, handIndex: 0, row: -1, col: 0,
			wantErr: ErrWrongTurn,
		},
		{
			name: "row below board",
			prep: started, side: Side1, handIndex: 0, row: -1, col: 0,
			wantErr: ErrOutOfBounds,
		},
		{
			name: "row above board",
			prep: started, side: Side1, handIndex: 0, row: 3, col: 0,
			wantErr: ErrOutOfBounds,
		},
		{
			name: "column out of bounds reported before hand index",
			prep: started, side: Side1, handIndex: 9, row: 0, col: 3,
			wantErr: ErrOutOfBounds,
		},
		{
			name: "negative hand index",
			prep: started, side: Side1, handIndex: -1, row: 0, col: 0,
			wantErr: ErrInvalidHandIndex,
		},
		{
			name: "hand index reported before occupancy",
			prep: func() MatchState {
				s := started()
				s, _, _ = Place(s, Side1, 0, 0, 0)
				return s
			},
			side: Side2, handIndex: 5, row: 0, col: 0,
			wantErr: ErrInvalidHandIndex,
		},
		{
			name: "occupied cell",
			prep: func() MatchState {
				s := started()
				s, _, _ = Place(s, Side1, 0, 0, 0)
				return s
			},
			side: Side2, handIndex: 0, row: 0, col: 0,
			wantErr: ErrCellOccupied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.prep()
			after, flipped, err := Place(before, tt.side, tt.handIndex, tt.row, tt.col)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if flipped != nil {
				t.Errorf("expected no captures on rejection, got %v", flipped)
			}
			if !reflect.DeepEqual(before, after) {
				t.Errorf("rejected placement changed the state")
			}
		})
	}
}

func TestPlaceCaptures(t *testing.T) {
	type staged struct {
		row, col int
		card     Card
		owner    Side
	}

	tests := []struct {
		name        string
		board       []staged
		placed      Card
		row, col    int
		wantFlipped []CellRef
		wantOwners  map[CellRef]Side
	}{
		{
			name:        "weaker right neighbor flips",
			board:       []staged{{1, 2, card(20, 3, 3, 3, 3), Side2}},
			placed:      card(1, 1, 8, 1, 1),
			row:         1, col: 1,
			wantFlipped: []CellRef{{Row: 1, Col: 2}},
			wantOwners:  map[CellRef]Side{{Row: 1, Col: 2}: Side1},
		},
		{
			name:       "equal facing ranks never capture",
			board:      []staged{{1, 2, card(20, 5, 5, 5, 5), Side2}},
			placed:     card(1, 5, 5, 5, 5),
			row:        1, col: 1,
			wantOwners: map[CellRef]Side{{Row: 1, Col: 2}: Side2},
		},
		{
			name:       "stronger neighbor survives",
			board:      []staged{{1, 2, card(20, 9, 9, 9, 9), Side2}},
			placed:     card(1, 4, 4, 4, 4),
			row:        1, col: 1,
			wantOwners: map[CellRef]Side{{Row: 1, Col: 2}: Side2},
		},
		{
			name:       "own card never flips",
			board:      []staged{{1, 2, card(20, 1, 1, 1, 1), Side1}},
			placed:     card(1, 9, 9, 9, 9),
			row:        1, col: 1,
			wantOwners: map[CellRef]Side{{Row: 1, Col: 2}: Side1},
		},
		{
			name:       "diagonal neighbor untouched",
			board:      []staged{{0, 0, card(20, 1, 1, 1, 1), Side2}},
			placed:     card(1, 9, 9, 9, 9),
			row:        1, col: 1,
			wantOwners: map[CellRef]Side{{Row: 0, Col: 0}: Side2},
		},
		{
			name: "flipped card does not chain",
			board: []staged{
				{0, 1, card(20, 9, 1, 2, 1), Side2},
				{0, 0, card(21, 1, 1, 1, 1), Side2},
			},
			placed:      card(1, 7, 1, 1, 1),
			row:         1, col: 1,
			wantFlipped: []CellRef{{Row: 0, Col: 1}},
			wantOwners: map[CellRef]Side{
				{Row: 0, Col: 1}: Side1,
				{Row: 0, Col: 0}: Side2,
			},
		},
		{
			name: "one placement can flip several neighbors",
			board: []staged{
				{0, 1, card(20, 1, 1, 2, 1), Side2},
				{1, 0, card(21, 1, 3, 1, 1), Side2},
				{1, 2, card(22, 1, 1, 1, 4), Side2},
			},
			placed:      card(1, 8, 8, 8, 8),
			row:         1, col: 1,
			wantFlipped: []CellRef{{Row: 0, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 0}},
			wantOwners: map[CellRef]Side{
				{Row: 0, Col: 1}: Side1,
				{Row: 1, Col: 0}: Side1,
				{Row: 1, Col: 2}: Side1,
			},
		},
		{
			name:   "corner placement skips off-board neighbors",
			placed: card(1, 9, 9, 9, 9),
			row:    0, col: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MatchState{
				Hand1:  []Card{tt.placed, card(2, 1, 1, 1, 1)},
				Hand2:  []Card{card(12, 1, 1, 1, 1)},
				Turn:   Side1,
				Status: StatusPlaying,
			}
			for _, st := range tt.board {
				s.Board[st.row][st.col] = BoardCell{Card: st.card, Owner: st.owner}
			}

			next, flipped, err := Place(s, Side1, 0, tt.row, tt.col)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(flipped) != len(tt.wantFlipped) {
				t.Fatalf("expected flips %v, got %v", tt.wantFlipped, flipped)
			}
			for i, want := range tt.wantFlipped {
				if flipped[i] != want {
					t.Errorf("flip %d: expected %v, got %v", i, want, flipped[i])
				}
			}
			for ref, owner := range tt.wantOwners {
				if got := next.Board[ref.Row][ref.Col].Owner; got != owner {
					t.Errorf("cell (%d,%d): expected owner %q, got %q", ref.Row, ref.Col, owner, got)
				}
			}
			if got := next.Board[tt.row][tt.col].Owner; got != Side1 {
				t.Errorf("placed cell: expected owner %q, got %q", Side1, got)
			}
			if next.Score1+next.Score2 != len(next.Hand1)+len(next.Hand2)+next.CellsPlaced() {
				t.Errorf("scores do not account for every card: %d/%d", next.Score1, next.Score2)
			}
		})
	}
}

// TestFullMatchStrongSweep plays a scripted nine-move game where side 1
// holds uniformly stronger cards and must win 9-1.
func TestFullMatchStrongSweep(t *testing.T) {
	s, err := NewMatch(uniformHand(1, 9), uniformHand(11, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moves := []struct {
		side     Side
		row, col int
	}{
		{Side1, 0, 0},
		{Side2, 0, 1},
		{Side1, 0, 2},
		{Side2, 1, 0},
		{Side1, 1, 1},
		{Side2, 1, 2},
		{Side1, 2, 0},
		{Side2, 2, 1},
		{Side1, 2, 2},
	}

	for i, mv := range moves {
		if s.Turn != mv.side {
			t.Fatalf("move %d: expected turn %q, got %q", i, mv.side, s.Turn)
		}
		s, _, err = Place(s, mv.side, 0, mv.row, mv.col)
		if err != nil {
			t.Fatalf("move %d: unexpected error: %v", i, err)
		}
		if s.Score1+s.Score2 != 2*HandSize {
			t.Fatalf("move %d: scores %d/%d do not sum to %d", i, s.Score1, s.Score2, 2*HandSize)
		}
		if i < len(moves)-1 && s.Status != StatusPlaying {
			t.Fatalf("move %d: match ended early with status %q", i, s.Status)
		}
	}

	if s.Status != StatusFinished {
		t.Fatalf("expected finished, got %q", s.Status)
	}
	if s.Turn != SideNone {
		t.Errorf("expected no turn after finish, got %q", s.Turn)
	}
	if s.Winner != WinnerSide1 {
		t.Errorf("expected winner %q, got %q", WinnerSide1, s.Winner)
	}
	if s.Score1 != 9 || s.Score2 != 1 {
		t.Errorf("expected 9/1, got %d/%d", s.Score1, s.Score2)
	}
}

// TestFullMatchDraw plays a game of identical cards; with no possible
// captures the final split is five-five.
func TestFullMatchDraw(t *testing.T) {
	s, err := NewMatch(uniformHand(1, 5), uniformHand(11, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cells := []CellRef{
		{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2},
	}
	for i, ref := range cells {
		var flipped []CellRef
		s, flipped, err = Place(s, s.Turn, 0, ref.Row, ref.Col)
		if err != nil {
			t.Fatalf("move %d: unexpected error: %v", i, err)
		}
		if len(flipped) != 0 {
			t.Fatalf("move %d: equal ranks captured %v", i, flipped)
		}
	}

	if s.Winner != WinnerDraw {
		t.Errorf("expected draw, got %q", s.Winner)
	}
	if s.Score1 != 5 || s.Score2 != 5 {
		t.Errorf("expected 5/5, got %d/%d", s.Score1, s.Score2)
	}
}

func TestPlaceLeavesInputUntouched(t *testing.T) {
	s, err := NewMatch(uniformHand(1, 9), uniformHand(11, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	next, _, err := Place(s, Side1, 2, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Hand1) != HandSize || s.CellsPlaced() != 0 || s.Turn != Side1 {
		t.Errorf("input state was mutated by Place")
	}
	if len(next.Hand1) != HandSize-1 || next.CellsPlaced() != 1 || next.Turn != Side2 {
		t.Errorf("successor state not advanced: hand %d, placed %d, turn %q",
			len(next.Hand1), next.CellsPlaced(), next.Turn)
	}
	if next.Hand1[2].ID != 4 {
		t.Errorf("expected hand to close over the removed index, got id %d", next.Hand1[2].ID)
	}
}
