package ws

import (
	"testing"

	"github.com/stretchr/testify/require"

	"triad/internal/catalog"
	"triad/internal/domain"
)

func playingState(t *testing.T) domain.MatchState {
	t.Helper()
	cat := catalog.MustStandard()
	hand1, err := cat.Lookup([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	hand2, err := cat.Lookup([]int{6, 7, 8, 9, 10})
	require.NoError(t, err)

	state, err := domain.NewMatch(hand1, hand2)
	require.NoError(t, err)
	state, _, err = domain.Place(state, domain.Side1, 0, 1, 1)
	require.NoError(t, err)
	return state
}

func requireConcealed(t *testing.T, hand []CardView) {
	t.Helper()
	for i, c := range hand {
		require.Zero(t, c.ID, "card %d should be hidden", i)
		require.Equal(t, "Hidden", c.Name, "card %d should be hidden", i)
		require.Zero(t, c.Top+c.Right+c.Bottom+c.Left, "card %d ranks should be zeroed", i)
	}
}

func requireRevealed(t *testing.T, hand []CardView) {
	t.Helper()
	for i, c := range hand {
		require.NotZero(t, c.ID, "card %d should be visible", i)
		require.NotEqual(t, "Hidden", c.Name, "card %d should be visible", i)
	}
}

func TestStateViewConcealsOpponentHandWhilePlaying(t *testing.T) {
	state := playingState(t)

	v1 := NewStateView(state, domain.Side1)
	require.Len(t, v1.Player1Hand, 4)
	require.Len(t, v1.Player2Hand, 5)
	requireRevealed(t, v1.Player1Hand)
	requireConcealed(t, v1.Player2Hand)

	v2 := NewStateView(state, domain.Side2)
	requireConcealed(t, v2.Player1Hand)
	requireRevealed(t, v2.Player2Hand)
}

func TestStateViewSpectatorSeesNoHand(t *testing.T) {
	state := playingState(t)

	v := NewStateView(state, domain.SideNone)
	requireConcealed(t, v.Player1Hand)
	requireConcealed(t, v.Player2Hand)
	require.Len(t, v.Player1Hand, 4)
	require.Len(t, v.Player2Hand, 5)
}

func TestStateViewBoardCardsArePublic(t *testing.T) {
	state := playingState(t)

	for _, viewer := range []domain.Side{domain.Side1, domain.Side2, domain.SideNone} {
		v := NewStateView(state, viewer)
		cell := v.Board[1][1]
		require.NotNil(t, cell.Card, "placed card must be visible to %q", viewer)
		require.Equal(t, state.Board[1][1].Card.ID, cell.Card.ID)
		require.Equal(t, string(domain.Side1), cell.Owner)
		require.Nil(t, v.Board[0][0].Card, "empty cell must stay empty")
	}
}

func TestStateViewRevealsHandsWhenFinished(t *testing.T) {
	state := playingState(t)
	state.Status = domain.StatusFinished
	state.Turn = domain.SideNone
	state.Winner = domain.WinnerSide2

	for _, viewer := range []domain.Side{domain.Side1, domain.Side2, domain.SideNone} {
		v := NewStateView(state, viewer)
		requireRevealed(t, v.Player1Hand)
		requireRevealed(t, v.Player2Hand)
		require.Equal(t, string(domain.WinnerSide2), v.Winner)
		require.Equal(t, "finished", v.Status)
	}
}

func TestCaptureViewsIsNeverNil(t *testing.T) {
	out := captureViews(nil)
	require.NotNil(t, out)
	require.Empty(t, out)

	out = captureViews([]domain.CellRef{{Row: 2, Col: 0}})
	require.Equal(t, []CellRefView{{Row: 2, Col: 0}}, out)
}
