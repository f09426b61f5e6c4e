package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"triad/internal/app"
	"triad/internal/catalog"
	"triad/internal/domain"
)

// Options tune a Hub. Zero values select defaults.
type Options struct {
	// GracePeriod is how long a disconnected player of a playing match
	// may reconnect before the match forfeits against them.
	GracePeriod time.Duration
	// ReapInterval is the period of the idle-room sweep driven by Run.
	ReapInterval time.Duration
	// MaxPayload caps one inbound message in bytes.
	MaxPayload int64
}

// Hub terminates player connections and bridges them to the room
// service. Identities come from the token presented at connect time; a
// reconnect with the same identity takes over the binding and cancels
// any pending disconnect grace timer.
type Hub struct {
	rooms   *app.RoomService
	tokens  *app.TokenService
	catalog catalog.Catalog
	log     *logrus.Logger

	grace      time.Duration
	reapEvery  time.Duration
	maxPayload int64
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	clients  map[string]*client
	graceSeq uint64
	timers   map[string]graceEntry
}

// graceEntry is one armed disconnect timer. The sequence number keeps a
// stale timer that fires during rearming from killing the newer window.
type graceEntry struct {
	timer *time.Timer
	seq   uint64
}

// NewHub wires the protocol server over the given services.
func NewHub(rooms *app.RoomService, tokens *app.TokenService, cat catalog.Catalog, log *logrus.Logger, opts Options) *Hub {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = app.DefaultGracePeriod
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = app.DefaultReapInterval
	}
	if opts.MaxPayload <= 0 {
		opts.MaxPayload = 1 << 20
	}
	return &Hub{
		rooms:      rooms,
		tokens:     tokens,
		catalog:    cat,
		log:        log,
		grace:      opts.GracePeriod,
		reapEvery:  opts.ReapInterval,
		maxPayload: opts.MaxPayload,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
		timers:  make(map[string]graceEntry),
	}
}

// Handler upgrades an authenticated request to a websocket connection.
// The identity token travels as the "token" query parameter.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := h.tokens.Verify(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warnf("ws: upgrade for %s: %v", identity.PlayerID, err)
			return
		}

		c := newClient(h, conn, identity.PlayerID, identity.Name)
		h.bind(c)
		go c.writePump()
		go c.readPump()
	}
}

// Run drives the idle-room reaper until the context ends.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.reapEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := h.rooms.Reap(now); n > 0 {
				h.log.Infof("ws: reaped %d idle games", n)
			}
		}
	}
}

// bind registers the connection under its player id, replacing any older
// connection for the same identity and cancelling a pending grace timer.
// A seat the player holds in a playing room is marked live again.
func (h *Hub) bind(c *client) {
	h.mu.Lock()
	old := h.clients[c.playerID]
	h.clients[c.playerID] = c
	rejoined := h.cancelGraceLocked(c.playerID)
	h.mu.Unlock()

	if old != nil {
		old.close()
	}
	h.rooms.Resume(c.playerID)
	switch {
	case rejoined:
		h.log.Infof("ws: player %s reconnected within grace", c.playerID)
	case old != nil:
		h.log.Infof("ws: player %s rebound to a new connection", c.playerID)
	default:
		h.log.Infof("ws: player %s connected", c.playerID)
	}
}

// unbind runs when a connection's read pump ends. A connection that was
// already replaced by a newer one for the same identity changes nothing;
// otherwise the departure is settled against the player's room.
func (h *Hub) unbind(c *client) {
	h.mu.Lock()
	if h.clients[c.playerID] != c {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.playerID)
	h.mu.Unlock()

	h.settleDeparture(c.playerID)
}

// settleDeparture releases the departed player's room or, for a playing
// match, notifies the opponent and arms the grace timer. A reconnect may
// land anywhere in here; when it beats the arming, the seat is marked
// live again and no timer runs.
func (h *Hub) settleDeparture(playerID string) {
	snap, playing := h.rooms.Leave(playerID)
	if !playing {
		h.log.Infof("ws: player %s disconnected", playerID)
		return
	}

	h.log.Infof("ws: player %s disconnected from playing game %s, grace %s", playerID, snap.ID, h.grace)
	if peer := peerOf(snap, playerID); peer != "" {
		h.sendToPlayer(peer, opponentDisconnectedMsg{Type: TypeOpponentDisconnected, GameID: snap.ID})
	}
	if h.armGrace(playerID, snap.ID) {
		return
	}
	h.rooms.Resume(playerID)
	h.log.Infof("ws: player %s reconnected mid-departure, game %s continues", playerID, snap.ID)
}

// armGrace starts the one-shot disconnect timer for the player and
// reports whether it ran. A reconnect that already reclaimed the identity
// makes the timer moot: bind stores the connection and cancels under the
// same lock held here, so the connection table is authoritative.
func (h *Hub) armGrace(playerID, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, online := h.clients[playerID]; online {
		return false
	}
	if e, ok := h.timers[playerID]; ok {
		e.timer.Stop()
	}
	h.graceSeq++
	seq := h.graceSeq
	h.timers[playerID] = graceEntry{
		timer: time.AfterFunc(h.grace, func() { h.expireGrace(playerID, roomID, seq) }),
		seq:   seq,
	}
	return true
}

// CancelGrace stops a pending disconnect timer for the player, reporting
// whether one was armed. Reconnection binding calls this internally; it
// is exported for integrations that reassert identity out of band.
func (h *Hub) CancelGrace(playerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelGraceLocked(playerID)
}

func (h *Hub) cancelGraceLocked(playerID string) bool {
	e, ok := h.timers[playerID]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(h.timers, playerID)
	return true
}

// expireGrace forfeits the match against a player whose grace window
// passed without a reconnect.
func (h *Hub) expireGrace(playerID, roomID string, seq uint64) {
	h.mu.Lock()
	e, ok := h.timers[playerID]
	if !ok || e.seq != seq {
		h.mu.Unlock()
		return
	}
	delete(h.timers, playerID)
	h.mu.Unlock()

	snap, err := h.rooms.Forfeit(roomID, playerID)
	if err != nil {
		h.log.Debugf("ws: grace expiry for %s in %s: %v", playerID, roomID, err)
		return
	}
	h.log.Infof("ws: player %s never returned, game %s forfeited", playerID, roomID)

	if peer := peerOf(snap, playerID); peer != "" && snap.Started {
		h.sendToPlayer(peer, gameOverMsg{
			Type:      TypeGameOver,
			GameID:    snap.ID,
			GameState: NewStateView(snap.State, snap.Side(peer)),
			Winner:    string(snap.State.Winner),
		})
	}
}

// sendToPlayer queues a message for one player if they are connected.
func (h *Hub) sendToPlayer(playerID string, msg any) {
	h.mu.Lock()
	c := h.clients[playerID]
	h.mu.Unlock()
	if c != nil {
		c.enqueue(msg)
	}
}

// sendError reports a failure to the offending sender only.
func (h *Hub) sendError(c *client, text string) {
	c.enqueue(errorMsg{Type: TypeError, Message: text})
}

// dispatch routes one inbound message. The gate rejections and service
// failures all land back at the sender as ERROR; nothing here reaches
// the opponent unless the request succeeded.
func (h *Hub) dispatch(c *client, raw []byte) {
	if int64(len(raw)) > h.maxPayload {
		h.sendError(c, "payload exceeds limit")
		return
	}

	msgType, err := decodeEnvelope(raw)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	switch msgType {
	case TypeCreateGame:
		h.handleCreateGame(c, raw)
	case TypeJoinGame:
		h.handleJoinGame(c, raw)
	case TypePlaceCard:
		h.handlePlaceCard(c, raw)
	case TypeListGames:
		h.handleListGames(c)
	case TypeGetGame:
		h.handleGetGame(c, raw)
	case TypeSubmitHandProof:
		h.handleSubmitHandProof(c, raw)
	case TypeSubmitMoveProof:
		h.handleSubmitMoveProof(c, raw)
	default:
		h.log.Warnf("ws: unknown message type %q from %s", msgType, c.playerID)
		h.sendError(c, "unknown message type: "+msgType)
	}
}

func (h *Hub) handleCreateGame(c *client, raw []byte) {
	var msg createGameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed CREATE_GAME payload")
		return
	}
	if err := validateCardIDs(msg.CardIDs, h.catalog.MaxID()); err != nil {
		h.sendError(c, err.Error())
		return
	}

	snap, err := h.rooms.CreateRoom(c.playerID, msg.CardIDs)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.log.Infof("ws: game %s created by %s", snap.ID, c.playerID)
	c.enqueue(gameCreatedMsg{Type: TypeGameCreated, GameID: snap.ID, PlayerNumber: 1})
}

func (h *Hub) handleJoinGame(c *client, raw []byte) {
	var msg joinGameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed JOIN_GAME payload")
		return
	}
	if err := validateCardIDs(msg.CardIDs, h.catalog.MaxID()); err != nil {
		h.sendError(c, err.Error())
		return
	}

	snap, err := h.rooms.JoinRoom(msg.GameID, c.playerID, msg.CardIDs)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.log.Infof("ws: player %s joined game %s, match on", c.playerID, snap.ID)

	c.enqueue(gameJoinedMsg{
		Type:         TypeGameJoined,
		GameID:       snap.ID,
		PlayerNumber: 2,
		GameState:    NewStateView(snap.State, domain.Side2),
	})
	h.broadcast(snap, func(side domain.Side) any {
		return gameStartMsg{Type: TypeGameStart, GameID: snap.ID, GameState: NewStateView(snap.State, side)}
	})
	h.relayStoredProofs(snap)
}

func (h *Hub) handlePlaceCard(c *client, raw []byte) {
	var msg placeCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed PLACE_CARD payload")
		return
	}
	if err := h.gateMove(c, msg.GameID, msg.HandIndex, msg.Row, msg.Col, msg.MoveSeq); err != nil {
		return
	}

	snap, captures, err := h.rooms.ApplyMove(msg.GameID, c.playerID, msg.HandIndex, msg.Row, msg.Col)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	caps := captureViews(captures)
	h.broadcast(snap, func(side domain.Side) any {
		return gameStateMsg{
			Type:      TypeGameState,
			GameID:    snap.ID,
			GameState: NewStateView(snap.State, side),
			Captures:  caps,
		}
	})
	h.finishIfOver(snap)
}

func (h *Hub) handleListGames(c *client) {
	summaries := h.rooms.Summaries()
	games := make([]GameSummary, 0, len(summaries))
	for _, s := range summaries {
		games = append(games, NewGameSummary(s))
	}
	c.enqueue(gameListMsg{Type: TypeGameList, Games: games})
}

func (h *Hub) handleGetGame(c *client, raw []byte) {
	var msg getGameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed GET_GAME payload")
		return
	}

	snap, err := h.rooms.Room(msg.GameID)
	if err != nil {
		c.enqueue(gameInfoMsg{Type: TypeGameInfo, Game: nil})
		return
	}
	summary := summaryOf(snap)
	c.enqueue(gameInfoMsg{Type: TypeGameInfo, Game: &summary})
}

func (h *Hub) handleSubmitHandProof(c *client, raw []byte) {
	var msg submitHandProofMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed SUBMIT_HAND_PROOF payload")
		return
	}
	if msg.HandProof.Commitment == "" {
		h.sendError(c, "handProof has no commitment")
		return
	}

	snap, side, err := h.rooms.SetHandProof(msg.GameID, c.playerID, msg.HandProof)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}
	h.log.Infof("ws: hand proof from %s for game %s", c.playerID, snap.ID)

	if peer := peerOf(snap, c.playerID); peer != "" {
		h.sendToPlayer(peer, handProofMsg{
			Type:       TypeHandProof,
			GameID:     snap.ID,
			HandProof:  msg.HandProof,
			FromPlayer: playerNumber(side),
		})
	}
}

func (h *Hub) handleSubmitMoveProof(c *client, raw []byte) {
	var msg submitMoveProofMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendError(c, "malformed SUBMIT_MOVE_PROOF payload")
		return
	}
	if err := h.gateMove(c, msg.GameID, msg.HandIndex, msg.Row, msg.Col, msg.MoveSeq); err != nil {
		return
	}

	snap, captures, err := h.rooms.ApplyMove(msg.GameID, c.playerID, msg.HandIndex, msg.Row, msg.Col)
	if err != nil {
		h.sendError(c, err.Error())
		return
	}

	caps := captureViews(captures)
	h.broadcast(snap, func(side domain.Side) any {
		return moveProvenMsg{
			Type:      TypeMoveProven,
			GameID:    snap.ID,
			GameState: NewStateView(snap.State, side),
			Captures:  caps,
			MoveProof: msg.MoveProof,
			HandIndex: msg.HandIndex,
			Row:       msg.Row,
			Col:       msg.Col,
		}
	})
	h.finishIfOver(snap)
}

// gateMove applies the placement range checks plus the optional moveSeq
// duplicate guard. The guard compares against a snapshot; the per-room
// lock inside ApplyMove stays the one source of move ordering truth.
func (h *Hub) gateMove(c *client, gameID string, handIndex, row, col int, moveSeq *int) error {
	if err := validatePlacement(handIndex, row, col); err != nil {
		h.sendError(c, err.Error())
		return err
	}
	if err := validateMoveSeq(moveSeq); err != nil {
		h.sendError(c, err.Error())
		return err
	}
	if moveSeq != nil {
		snap, err := h.rooms.Room(gameID)
		if err == nil && snap.Started && *moveSeq != snap.State.CellsPlaced() {
			err = errors.New("stale moveSeq, move already applied")
			h.sendError(c, err.Error())
			return err
		}
	}
	return nil
}

// finishIfOver follows a terminal placement with the GAME_OVER fan-out.
// The finished state reveals both hands, so the views are identical.
func (h *Hub) finishIfOver(snap app.RoomSnapshot) {
	if snap.State.Status != domain.StatusFinished {
		return
	}
	h.log.Infof("ws: game %s over, winner %q", snap.ID, snap.State.Winner)
	h.broadcast(snap, func(side domain.Side) any {
		return gameOverMsg{
			Type:      TypeGameOver,
			GameID:    snap.ID,
			GameState: NewStateView(snap.State, side),
			Winner:    string(snap.State.Winner),
		}
	})
}

// broadcast renders the message once per seated player and delivers to
// whoever is connected.
func (h *Hub) broadcast(snap app.RoomSnapshot, build func(viewer domain.Side) any) {
	if snap.Player1 != "" {
		h.sendToPlayer(snap.Player1, build(domain.Side1))
	}
	if snap.Player2 != "" {
		h.sendToPlayer(snap.Player2, build(domain.Side2))
	}
}

// relayStoredProofs forwards hand proofs submitted before the opponent
// was around, so a creator's early proof still reaches the joiner.
func (h *Hub) relayStoredProofs(snap app.RoomSnapshot) {
	if snap.HandProof1 != nil && snap.Player2 != "" {
		h.sendToPlayer(snap.Player2, handProofMsg{
			Type:       TypeHandProof,
			GameID:     snap.ID,
			HandProof:  *snap.HandProof1,
			FromPlayer: 1,
		})
	}
	if snap.HandProof2 != nil && snap.Player1 != "" {
		h.sendToPlayer(snap.Player1, handProofMsg{
			Type:       TypeHandProof,
			GameID:     snap.ID,
			HandProof:  *snap.HandProof2,
			FromPlayer: 2,
		})
	}
}

// peerOf names the other seated player, empty when there is none.
func peerOf(snap app.RoomSnapshot, playerID string) string {
	switch playerID {
	case snap.Player1:
		return snap.Player2
	case snap.Player2:
		return snap.Player1
	}
	return ""
}

func playerNumber(side domain.Side) int {
	if side == domain.Side2 {
		return 2
	}
	return 1
}

// summaryOf builds a listing entry from a single-room snapshot.
func summaryOf(snap app.RoomSnapshot) GameSummary {
	return GameSummary{
		GameID:           snap.ID,
		Status:           string(snap.Status),
		Player1:          snap.Player1,
		Player2:          snap.Player2,
		Player1Connected: snap.Online1,
		Player2Connected: snap.Online2,
		CreatedAt:        snap.CreatedAt,
	}
}
