package bot

import (
	"math/rand"

	"triad/internal/catalog"
	"triad/internal/domain"
)

// RandomBot places a random card from its hand on a random free cell.
type RandomBot struct {
	rng *rand.Rand
}

func NewRandomBot(seed int64) *RandomBot {
	return &RandomBot{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBot) ChooseMove(state domain.MatchState, side domain.Side) (Move, error) {
	moves := legalMoves(state, side)
	if len(moves) == 0 {
		return Move{}, ErrNoMoves
	}
	return moves[b.rng.Intn(len(moves))], nil
}

// GreedyBot picks the placement that captures the most opposing cards.
// Ties resolve to the first candidate in hand-index, row-major order, so
// the strategy is deterministic.
type GreedyBot struct{}

func (b *GreedyBot) ChooseMove(state domain.MatchState, side domain.Side) (Move, error) {
	moves := legalMoves(state, side)
	if len(moves) == 0 {
		return Move{}, ErrNoMoves
	}
	best := moves[0]
	bestFlips := -1
	for _, m := range moves {
		_, flipped, err := domain.Place(state, side, m.HandIndex, m.Row, m.Col)
		if err != nil {
			continue
		}
		if len(flipped) > bestFlips {
			best = m
			bestFlips = len(flipped)
		}
	}
	return best, nil
}

// legalMoves enumerates every hand index and free cell for side, in
// hand-index then row-major order.
func legalMoves(state domain.MatchState, side domain.Side) []Move {
	if state.Status == domain.StatusFinished || state.Turn != side {
		return nil
	}
	hand := state.Hand(side)
	var moves []Move
	for hi := range hand {
		for row := 0; row < domain.BoardSize; row++ {
			for col := 0; col < domain.BoardSize; col++ {
				if state.Board[row][col].Owner != domain.SideNone {
					continue
				}
				moves = append(moves, Move{HandIndex: hi, Row: row, Col: col})
			}
		}
	}
	return moves
}

// PickHand draws a five card hand from the catalog, strongest ranks
// excluded above maxRankSum. A maxRankSum of zero or less means any card
// qualifies. The draw is without repeats.
func PickHand(cat catalog.Catalog, rng *rand.Rand, maxRankSum int) ([]int, error) {
	pool := cat.ListByFilter(func(c domain.Card) bool {
		if maxRankSum <= 0 {
			return true
		}
		return c.Top+c.Right+c.Bottom+c.Left <= maxRankSum
	})
	if len(pool) < domain.HandSize {
		return nil, ErrPoolTooSmall
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	ids := make([]int, domain.HandSize)
	for i := range ids {
		ids[i] = pool[i].ID
	}
	return ids, nil
}
