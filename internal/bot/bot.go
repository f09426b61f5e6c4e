package bot

import (
	"errors"
	"fmt"

	"triad/internal/domain"
)

var (
	// ErrNoMoves is returned when the side has no legal placement left.
	ErrNoMoves = errors.New("no legal placement available")
	// ErrPoolTooSmall is returned by PickHand when the filtered catalog
	// cannot fill a hand.
	ErrPoolTooSmall = errors.New("not enough cards satisfy the hand constraints")
)

// Move is the placement a strategy decided on.
type Move struct {
	HandIndex int
	Row       int
	Col       int
}

// Strategy is the interface all bot opponents implement.
type Strategy interface {
	// ChooseMove picks a placement for side. Implementations must only
	// return legal moves for the given state.
	ChooseMove(state domain.MatchState, side domain.Side) (Move, error)
}

// Level selects a strategy strength.
type Level int

const (
	LevelRandom Level = iota
	LevelGreedy
)

// New creates a strategy for the level. seed drives the random strategy
// and is ignored by deterministic ones.
func New(level Level, seed int64) (Strategy, error) {
	switch level {
	case LevelRandom:
		return NewRandomBot(seed), nil
	case LevelGreedy:
		return &GreedyBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
