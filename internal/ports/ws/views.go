package ws

import (
	"time"

	"triad/internal/app"
	"triad/internal/domain"
)

// CardView is a card as serialized to clients.
type CardView struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Top    int    `json:"top"`
	Right  int    `json:"right"`
	Bottom int    `json:"bottom"`
	Left   int    `json:"left"`
}

// CellView is one board cell. An empty cell has no card and no owner.
type CellView struct {
	Card  *CardView `json:"card,omitempty"`
	Owner string    `json:"owner,omitempty"`
}

// CellRefView addresses a board cell in capture lists.
type CellRefView struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// StateView is a match state rendered for one recipient. While the match
// is playing, the recipient sees their own hand and a same-length row of
// hidden placeholders for the opponent; a finished match reveals both
// hands to everyone. Board cards are public either way.
type StateView struct {
	Board        [domain.BoardSize][domain.BoardSize]CellView `json:"board"`
	Player1Hand  []CardView                                   `json:"player1Hand"`
	Player2Hand  []CardView                                   `json:"player2Hand"`
	CurrentTurn  string                                       `json:"currentTurn"`
	Player1Score int                                          `json:"player1Score"`
	Player2Score int                                          `json:"player2Score"`
	Status       string                                       `json:"status"`
	Winner       string                                       `json:"winner,omitempty"`
}

// GameSummary is one lobby listing entry, shared by GAME_LIST, GAME_INFO
// and the REST read surface. It never carries hands.
type GameSummary struct {
	GameID           string    `json:"gameId"`
	Status           string    `json:"status"`
	Player1          string    `json:"player1"`
	Player2          string    `json:"player2,omitempty"`
	Player1Connected bool      `json:"player1Connected"`
	Player2Connected bool      `json:"player2Connected"`
	CreatedAt        time.Time `json:"createdAt"`
}

func cardView(c domain.Card) CardView {
	return CardView{ID: c.ID, Name: c.Name, Top: c.Top, Right: c.Right, Bottom: c.Bottom, Left: c.Left}
}

// handView renders a hand for the recipient. conceal swaps every entry
// for the hidden placeholder, preserving only the hand length.
func handView(hand []domain.Card, conceal bool) []CardView {
	out := make([]CardView, len(hand))
	for i, c := range hand {
		if conceal {
			out[i] = cardView(domain.HiddenCard())
			continue
		}
		out[i] = cardView(c)
	}
	return out
}

// NewStateView sanitizes a match state for the given viewer. A viewer on
// neither side (spectator) sees both hands concealed until the finish.
func NewStateView(s domain.MatchState, viewer domain.Side) StateView {
	playing := s.Status == domain.StatusPlaying
	view := StateView{
		Player1Hand:  handView(s.Hand1, playing && viewer != domain.Side1),
		Player2Hand:  handView(s.Hand2, playing && viewer != domain.Side2),
		CurrentTurn:  string(s.Turn),
		Player1Score: s.Score1,
		Player2Score: s.Score2,
		Status:       string(s.Status),
		Winner:       string(s.Winner),
	}
	for r := 0; r < domain.BoardSize; r++ {
		for c := 0; c < domain.BoardSize; c++ {
			cell := s.Board[r][c]
			if cell.Owner == domain.SideNone {
				continue
			}
			card := cardView(cell.Card)
			view.Board[r][c] = CellView{Card: &card, Owner: string(cell.Owner)}
		}
	}
	return view
}

// NewGameSummary maps a room summary onto the wire shape.
func NewGameSummary(s app.RoomSummary) GameSummary {
	return GameSummary{
		GameID:           s.ID,
		Status:           string(s.Status),
		Player1:          s.Player1,
		Player2:          s.Player2,
		Player1Connected: s.Player1Connected,
		Player2Connected: s.Player2Connected,
		CreatedAt:        s.CreatedAt,
	}
}

// captureViews converts capture coordinates, keeping an empty list over a
// null on the wire.
func captureViews(captures []domain.CellRef) []CellRefView {
	out := make([]CellRefView, len(captures))
	for i, ref := range captures {
		out[i] = CellRefView{Row: ref.Row, Col: ref.Col}
	}
	return out
}
