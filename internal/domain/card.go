package domain

// Rank bounds for the four sides of a card. Catalog data outside this
// range is invalid.
const (
	MinRank = 1
	MaxRank = 10
)

// HandSize is the number of cards each player brings to a match.
const HandSize = 5

// Card is a single playing card. Each rank faces one board direction;
// captures compare the two ranks along the shared edge.
type Card struct {
	ID     int
	Name   string
	Top    int
	Right  int
	Bottom int
	Left   int
}

// HiddenCard returns the placeholder substituted for a concealed opponent
// card: id 0, name "Hidden", every rank zero.
func HiddenCard() Card {
	return Card{ID: 0, Name: "Hidden"}
}

// Side identifies one of the two players of a match.
type Side string

const (
	SideNone Side = ""
	Side1    Side = "player1"
	Side2    Side = "player2"
)

// Opponent returns the other side. SideNone has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case Side1:
		return Side2
	case Side2:
		return Side1
	}
	return SideNone
}

// Winner is the outcome of a finished match.
type Winner string

const (
	WinnerNone  Winner = ""
	WinnerSide1 Winner = "player1"
	WinnerSide2 Winner = "player2"
	WinnerDraw  Winner = "draw"
)

// WinnerOf maps a side to its winner value.
func WinnerOf(s Side) Winner {
	switch s {
	case Side1:
		return WinnerSide1
	case Side2:
		return WinnerSide2
	}
	return WinnerNone
}
