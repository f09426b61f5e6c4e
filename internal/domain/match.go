package domain

import "errors"

// BoardSize is the side length of the square board.
const BoardSize = 3

// Status is the lifecycle stage of a match.
type Status string

const (
	// StatusWaiting is the pre-game state before the second hand arrives.
	StatusWaiting Status = "waiting"
	// StatusPlaying is the active state where cards are placed.
	StatusPlaying Status = "playing"
	// StatusFinished is the state after the ninth placement.
	StatusFinished Status = "finished"
)

// Rule violations reported by NewMatch and Place. They are terminal for
// the offending request only; the state they were raised against is
// returned unchanged.
var (
	ErrInvalidHandSize  = errors.New("hand must contain exactly five cards")
	ErrMatchFinished    = errors.New("match is already finished")
	ErrWrongTurn        = errors.New("not this side's turn")
	ErrOutOfBounds      = errors.New("cell is out of bounds")
	ErrInvalidHandIndex = errors.New("hand index out of range")
	ErrCellOccupied     = errors.New("cell is already occupied")
)

// BoardCell is one cell of the board. Owner == SideNone means empty.
// An occupied cell never empties again within a match; only Owner changes.
type BoardCell struct {
	Card  Card
	Owner Side
}

// Board is the 3x3 grid. Row 0 is the top row, column 0 the left column.
type Board [BoardSize][BoardSize]BoardCell

// CellRef addresses a single board cell.
type CellRef struct {
	Row int
	Col int
}

// MatchState is the complete state of one match. Transitions return fresh
// values; a MatchState held by a caller is never mutated, which is what
// the move fingerprint chain relies on.
type MatchState struct {
	Board  Board
	Hand1  []Card
	Hand2  []Card
	Turn   Side
	Score1 int
	Score2 int
	Status Status
	Winner Winner
}

// NewMatch starts a match from two five-card hands. Side 1 moves first
// and both sides start at five points.
func NewMatch(hand1, hand2 []Card) (MatchState, error) {
	if len(hand1) != HandSize || len(hand2) != HandSize {
		return MatchState{}, ErrInvalidHandSize
	}
	return MatchState{
		Hand1:  append([]Card(nil), hand1...),
		Hand2:  append([]Card(nil), hand2...),
		Turn:   Side1,
		Score1: HandSize,
		Score2: HandSize,
		Status: StatusPlaying,
	}, nil
}

// Hand returns the ordered hand of the given side. Index position is the
// hand index used by Place.
func (s MatchState) Hand(side Side) []Card {
	if side == Side2 {
		return s.Hand2
	}
	return s.Hand1
}

// Score returns the current score of the given side.
func (s MatchState) Score(side Side) int {
	if side == Side2 {
		return s.Score2
	}
	return s.Score1
}

// CellsPlaced counts the occupied board cells, which is also the number
// of moves played so far.
func (s MatchState) CellsPlaced() int {
	n := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if s.Board[r][c].Owner != SideNone {
				n++
			}
		}
	}
	return n
}

// Place plays the card at handIndex for side onto (row, col) and resolves
// captures. It returns the successor state and the cells flipped by this
// placement. Checks run in a fixed order: finished, turn, bounds, hand
// index, occupancy; on failure the input state comes back unchanged with
// the matching rule violation.
func Place(s MatchState, side Side, handIndex, row, col int) (MatchState, []CellRef, error) {
	if s.Status == StatusFinished {
		return s, nil, ErrMatchFinished
	}
	if side != s.Turn {
		return s, nil, ErrWrongTurn
	}
	if row < 0 || row >= BoardSize || col < 0 || col >= BoardSize {
		return s, nil, ErrOutOfBounds
	}
	hand := s.Hand(side)
	if handIndex < 0 || handIndex >= len(hand) {
		return s, nil, ErrInvalidHandIndex
	}
	if s.Board[row][col].Owner != SideNone {
		return s, nil, ErrCellOccupied
	}

	next := s
	card := hand[handIndex]
	remaining := make([]Card, 0, len(hand)-1)
	remaining = append(remaining, hand[:handIndex]...)
	remaining = append(remaining, hand[handIndex+1:]...)
	if side == Side2 {
		next.Hand2 = remaining
	} else {
		next.Hand1 = remaining
	}
	next.Board[row][col] = BoardCell{Card: card, Owner: side}

	flipped := resolveCaptures(&next.Board, side, row, col)
	next.Score1, next.Score2 = countScores(next)

	if next.CellsPlaced() == BoardSize*BoardSize {
		next.Status = StatusFinished
		next.Turn = SideNone
		next.Winner = winnerByScore(next.Score1, next.Score2)
	} else {
		next.Turn = side.Opponent()
	}
	return next, flipped, nil
}

// resolveCaptures flips every axis-aligned neighbor owned by the opponent
// whose facing rank is strictly lower than the placed card's facing rank.
// Equal ranks never capture, diagonals are never considered, and flipped
// cards do not trigger further captures.
func resolveCaptures(b *Board, side Side, row, col int) []CellRef {
	placed := b[row][col].Card
	var flipped []CellRef
	for _, d := range [4]CellRef{{-1, 0}, {0, 1}, {1, 0}, {0, -1}} {
		r, c := row+d.Row, col+d.Col
		if r < 0 || r >= BoardSize || c < 0 || c >= BoardSize {
			continue
		}
		cell := &b[r][c]
		if cell.Owner == SideNone || cell.Owner == side {
			continue
		}
		attack, defend := facingRanks(placed, cell.Card, d.Row, d.Col)
		if attack > defend {
			cell.Owner = side
			flipped = append(flipped, CellRef{Row: r, Col: c})
		}
	}
	return flipped
}

// facingRanks returns the rank of the placed card facing the neighbor at
// offset (dr, dc) and the neighbor's rank facing back.
func facingRanks(placed, neighbor Card, dr, dc int) (int, int) {
	switch {
	case dr < 0:
		return placed.Top, neighbor.Bottom
	case dr > 0:
		return placed.Bottom, neighbor.Top
	case dc > 0:
		return placed.Right, neighbor.Left
	default:
		return placed.Left, neighbor.Right
	}
}

// countScores recomputes both scores: cards owned on the board plus cards
// still in hand. The two always sum to twice the hand size.
func countScores(s MatchState) (int, int) {
	s1, s2 := len(s.Hand1), len(s.Hand2)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			switch s.Board[r][c].Owner {
			case Side1:
				s1++
			case Side2:
				s2++
			}
		}
	}
	return s1, s2
}

func winnerByScore(s1, s2 int) Winner {
	switch {
	case s1 > s2:
		return WinnerSide1
	case s2 > s1:
		return WinnerSide2
	}
	return WinnerDraw
}
