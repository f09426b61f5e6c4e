// Package ws is the real-time protocol adapter: it terminates player
// websocket connections, validates and dispatches inbound messages to the
// room service, and fans sanitized state back out to both sides of a
// match. One JSON object per message, discriminated by a "type" tag.
package ws

import (
	"encoding/json"
	"fmt"

	"triad/internal/domain"
	"triad/internal/ports"
)

// Client to server message types.
const (
	TypeCreateGame      = "CREATE_GAME"
	TypeJoinGame        = "JOIN_GAME"
	TypePlaceCard       = "PLACE_CARD"
	TypeListGames       = "LIST_GAMES"
	TypeGetGame         = "GET_GAME"
	TypeSubmitHandProof = "SUBMIT_HAND_PROOF"
	TypeSubmitMoveProof = "SUBMIT_MOVE_PROOF"
)

// Server to client message types.
const (
	TypeGameCreated          = "GAME_CREATED"
	TypeGameJoined           = "GAME_JOINED"
	TypeGameStart            = "GAME_START"
	TypeGameState            = "GAME_STATE"
	TypeGameOver             = "GAME_OVER"
	TypeGameList             = "GAME_LIST"
	TypeGameInfo             = "GAME_INFO"
	TypeOpponentDisconnected = "OPPONENT_DISCONNECTED"
	TypeError                = "ERROR"
	TypeHandProof            = "HAND_PROOF"
	TypeMoveProven           = "MOVE_PROVEN"
)

// envelope carries only the discriminator; the variant payload is decoded
// in a second pass once the type is known.
type envelope struct {
	Type string `json:"type"`
}

// Inbound variants. Integer fields default to zero when absent, which the
// range checks and the rules engine treat like any other value.

type createGameMsg struct {
	CardIDs []int `json:"cardIds"`
}

type joinGameMsg struct {
	GameID  string `json:"gameId"`
	CardIDs []int  `json:"cardIds"`
}

type placeCardMsg struct {
	GameID    string `json:"gameId"`
	HandIndex int    `json:"handIndex"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	MoveSeq   *int   `json:"moveSeq,omitempty"`
}

type getGameMsg struct {
	GameID string `json:"gameId"`
}

type submitHandProofMsg struct {
	GameID    string          `json:"gameId"`
	HandProof ports.HandProof `json:"handProof"`
}

type submitMoveProofMsg struct {
	GameID    string          `json:"gameId"`
	HandIndex int             `json:"handIndex"`
	Row       int             `json:"row"`
	Col       int             `json:"col"`
	MoveProof ports.MoveProof `json:"moveProof"`
	MoveSeq   *int            `json:"moveSeq,omitempty"`
}

// decodeEnvelope extracts the type tag. A payload that is not a JSON
// object with a string type is rejected before any dispatch.
func decodeEnvelope(raw []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("malformed message: %v", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("message has no type")
	}
	return env.Type, nil
}

// Validation gate. Everything here runs before the room service sees the
// request; a rejection goes back to the sender only.

func validateCardIDs(ids []int, maxID int) error {
	if len(ids) != domain.HandSize {
		return fmt.Errorf("cardIds must contain exactly %d entries", domain.HandSize)
	}
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id < 1 || id > maxID {
			return fmt.Errorf("card id %d outside [1,%d]", id, maxID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate card id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validatePlacement(handIndex, row, col int) error {
	if handIndex < 0 || handIndex >= domain.HandSize {
		return fmt.Errorf("handIndex %d outside [0,%d]", handIndex, domain.HandSize-1)
	}
	if row < 0 || row >= domain.BoardSize {
		return fmt.Errorf("row %d outside [0,%d]", row, domain.BoardSize-1)
	}
	if col < 0 || col >= domain.BoardSize {
		return fmt.Errorf("col %d outside [0,%d]", col, domain.BoardSize-1)
	}
	return nil
}

// validateMoveSeq bounds the optional duplicate-suppression counter. nil
// means the client did not send one.
func validateMoveSeq(seq *int) error {
	if seq == nil {
		return nil
	}
	max := domain.BoardSize*domain.BoardSize - 1
	if *seq < 0 || *seq > max {
		return fmt.Errorf("moveSeq %d outside [0,%d]", *seq, max)
	}
	return nil
}

// Outbound messages. Field names are part of the wire contract.

type gameCreatedMsg struct {
	Type         string `json:"type"`
	GameID       string `json:"gameId"`
	PlayerNumber int    `json:"playerNumber"`
}

type gameJoinedMsg struct {
	Type         string    `json:"type"`
	GameID       string    `json:"gameId"`
	PlayerNumber int       `json:"playerNumber"`
	GameState    StateView `json:"gameState"`
}

type gameStartMsg struct {
	Type      string    `json:"type"`
	GameID    string    `json:"gameId"`
	GameState StateView `json:"gameState"`
}

type gameStateMsg struct {
	Type      string        `json:"type"`
	GameID    string        `json:"gameId"`
	GameState StateView     `json:"gameState"`
	Captures  []CellRefView `json:"captures"`
}

type gameOverMsg struct {
	Type      string    `json:"type"`
	GameID    string    `json:"gameId"`
	GameState StateView `json:"gameState"`
	Winner    string    `json:"winner"`
}

type gameListMsg struct {
	Type  string        `json:"type"`
	Games []GameSummary `json:"games"`
}

type gameInfoMsg struct {
	Type string       `json:"type"`
	Game *GameSummary `json:"game"`
}

type opponentDisconnectedMsg struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type handProofMsg struct {
	Type       string          `json:"type"`
	GameID     string          `json:"gameId"`
	HandProof  ports.HandProof `json:"handProof"`
	FromPlayer int             `json:"fromPlayer"`
}

type moveProvenMsg struct {
	Type      string          `json:"type"`
	GameID    string          `json:"gameId"`
	GameState StateView       `json:"gameState"`
	Captures  []CellRefView   `json:"captures"`
	MoveProof ports.MoveProof `json:"moveProof"`
	HandIndex int             `json:"handIndex"`
	Row       int             `json:"row"`
	Col       int             `json:"col"`
}
