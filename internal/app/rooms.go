package app

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"triad/internal/catalog"
	"triad/internal/domain"
	"triad/internal/ports"
)

var (
	ErrDuplicateCardIDs = errors.New("hand contains duplicate card ids")
	ErrPlayerBusy       = errors.New("player already has an active game")
	ErrRoomNotFound     = errors.New("game not found")
	ErrRoomFull         = errors.New("game already has two players")
	ErrSelfJoin         = errors.New("cannot join own game")
	ErrMatchNotStarted  = errors.New("match has not started")
	ErrPlayerNotInRoom  = errors.New("player is not in this game")
)

// Room is one pairwise match and its players. All access goes through
// RoomService; the embedded lock makes the service the single logical
// writer per room. The Online flags track whether each seat currently
// has a live connection; the connection layer maintains them through
// Leave and Resume.
type Room struct {
	ID        string
	Player1   string
	Player2   string
	Cards1    []int
	Cards2    []int
	Online1   bool
	Online2   bool
	State     *domain.MatchState
	Proof1    *ports.HandProof
	Proof2    *ports.HandProof
	CreatedAt time.Time
	LastMove  time.Time

	mu sync.Mutex
}

// RoomSnapshot is a read-only copy of a room taken under its lock. State
// is meaningful only when Started is true. The hand proofs are whatever
// each side has submitted so far, nil until then.
type RoomSnapshot struct {
	ID         string
	Player1    string
	Player2    string
	Online1    bool
	Online2    bool
	Started    bool
	Status     domain.Status
	State      domain.MatchState
	HandProof1 *ports.HandProof
	HandProof2 *ports.HandProof
	CreatedAt  time.Time
	LastMove   time.Time
}

// Side returns the side the player occupies in this snapshot, SideNone
// for strangers.
func (s RoomSnapshot) Side(playerID string) domain.Side {
	switch playerID {
	case "":
		return domain.SideNone
	case s.Player1:
		return domain.Side1
	case s.Player2:
		return domain.Side2
	}
	return domain.SideNone
}

// RoomSummary is the listing entry for one room. The connected flags
// report seat presence: live from create or join, dark while a
// disconnected player of a playing room waits out the grace window.
type RoomSummary struct {
	ID               string
	Status           domain.Status
	Player1          string
	Player2          string
	Player1Connected bool
	Player2Connected bool
	CreatedAt        time.Time
}

// RoomServiceOptions tune a RoomService. Zero values select defaults.
type RoomServiceOptions struct {
	Now         func() time.Time
	NewID       func() string
	IdleTimeout time.Duration
}

// RoomService owns every active room plus the player-to-room index that
// enforces one active game per player. The service lock guards the maps,
// each room's lock serializes its two players.
type RoomService struct {
	catalog     catalog.Catalog
	now         func() time.Time
	newID       func() string
	idleTimeout time.Duration

	mu         sync.RWMutex
	rooms      map[string]*Room
	playerRoom map[string]string
}

// NewRoomService constructs a service over the given catalog.
func NewRoomService(cat catalog.Catalog, opts RoomServiceOptions) *RoomService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &RoomService{
		catalog:     cat,
		now:         opts.Now,
		newID:       opts.NewID,
		idleTimeout: opts.IdleTimeout,
		rooms:       make(map[string]*Room),
		playerRoom:  make(map[string]string),
	}
}

// CreateRoom opens a waiting room for the player's five-card hand. The
// hand is validated against the catalog immediately so a bad selection
// fails here rather than at the joiner's expense.
func (s *RoomService) CreateRoom(playerID string, cardIDs []int) (RoomSnapshot, error) {
	if err := s.checkHand(cardIDs); err != nil {
		return RoomSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseFinishedLocked(playerID)
	if _, busy := s.playerRoom[playerID]; busy {
		return RoomSnapshot{}, ErrPlayerBusy
	}

	now := s.now()
	room := &Room{
		ID:        s.newID(),
		Player1:   playerID,
		Cards1:    append([]int(nil), cardIDs...),
		Online1:   true,
		CreatedAt: now,
		LastMove:  now,
	}
	s.rooms[room.ID] = room
	s.playerRoom[playerID] = room.ID
	return snapshotRoom(room), nil
}

// JoinRoom seats the second player and starts the match: both hands are
// resolved through the catalog and handed to the rules engine.
func (s *RoomService) JoinRoom(roomID, playerID string, cardIDs []int) (RoomSnapshot, error) {
	if err := s.checkHand(cardIDs); err != nil {
		return RoomSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseFinishedLocked(playerID)
	room, ok := s.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.Player1 == playerID {
		return RoomSnapshot{}, ErrSelfJoin
	}
	if room.Player2 != "" {
		return RoomSnapshot{}, ErrRoomFull
	}
	if _, busy := s.playerRoom[playerID]; busy {
		return RoomSnapshot{}, ErrPlayerBusy
	}

	hand1, err := s.catalog.Lookup(room.Cards1)
	if err != nil {
		return RoomSnapshot{}, err
	}
	hand2, err := s.catalog.Lookup(cardIDs)
	if err != nil {
		return RoomSnapshot{}, err
	}
	state, err := domain.NewMatch(hand1, hand2)
	if err != nil {
		return RoomSnapshot{}, err
	}

	room.Player2 = playerID
	room.Cards2 = append([]int(nil), cardIDs...)
	room.Online2 = true
	room.State = &state
	room.LastMove = s.now()
	s.playerRoom[playerID] = room.ID
	return snapshotLocked(room), nil
}

// ApplyMove plays one placement for the player and returns the updated
// room with the cells captured by the placement. Rule violations from the
// engine pass through verbatim and leave the room untouched.
func (s *RoomService) ApplyMove(roomID, playerID string, handIndex, row, col int) (RoomSnapshot, []domain.CellRef, error) {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return RoomSnapshot{}, nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	side := sideLocked(room, playerID)
	if side == domain.SideNone {
		return RoomSnapshot{}, nil, ErrPlayerNotInRoom
	}
	if room.State == nil {
		return RoomSnapshot{}, nil, ErrMatchNotStarted
	}

	next, captures, err := domain.Place(*room.State, side, handIndex, row, col)
	if err != nil {
		return RoomSnapshot{}, nil, err
	}
	room.State = &next
	room.LastMove = s.now()
	return snapshotLocked(room), captures, nil
}

// SetHandProof stores the hand proof a player submitted for relay to the
// opponent. The room keeps it so a proof submitted before the opponent
// joins is not lost. Returns the submitting side along with the updated
// snapshot.
func (s *RoomService) SetHandProof(roomID, playerID string, proof ports.HandProof) (RoomSnapshot, domain.Side, error) {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return RoomSnapshot{}, domain.SideNone, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	side := sideLocked(room, playerID)
	if side == domain.SideNone {
		return RoomSnapshot{}, domain.SideNone, ErrPlayerNotInRoom
	}
	p := proof
	if side == domain.Side1 {
		room.Proof1 = &p
	} else {
		room.Proof2 = &p
	}
	return snapshotLocked(room), side, nil
}

// Leave handles a player abandoning their room. A room still waiting for
// an opponent, or already finished, is deleted outright. A playing room
// is kept with the leaver's seat marked dark and reported back so the
// caller can notify the opponent and arm the disconnect grace timer; the
// player stays bound to it for a possible reconnect.
func (s *RoomService) Leave(playerID string) (RoomSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID, ok := s.playerRoom[playerID]
	if !ok {
		return RoomSnapshot{}, false
	}
	room, ok := s.rooms[roomID]
	if !ok {
		delete(s.playerRoom, playerID)
		return RoomSnapshot{}, false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if statusLocked(room) == domain.StatusPlaying {
		setOnlineLocked(room, playerID, false)
		return snapshotLocked(room), true
	}
	snap := snapshotLocked(room)
	s.removeLocked(room)
	return snap, false
}

// Resume marks the player's seat as held by a live connection again,
// reporting whether they had a room to come back to. The connection
// layer calls it when an identity re-binds.
func (s *RoomService) Resume(playerID string) bool {
	s.mu.RLock()
	roomID, ok := s.playerRoom[playerID]
	var room *Room
	if ok {
		room, ok = s.rooms[roomID]
	}
	s.mu.RUnlock()
	if !ok {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	setOnlineLocked(room, playerID, true)
	return true
}

// Forfeit ends a playing room against the leaver: the surviving side is
// recorded as winner and the room is deleted. Used when the disconnect
// grace period expires.
func (s *RoomService) Forfeit(roomID, leaverID string) (RoomSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return RoomSnapshot{}, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	side := sideLocked(room, leaverID)
	if side == domain.SideNone {
		return RoomSnapshot{}, ErrPlayerNotInRoom
	}
	if room.State != nil && room.State.Status == domain.StatusPlaying {
		next := *room.State
		next.Status = domain.StatusFinished
		next.Turn = domain.SideNone
		next.Winner = domain.WinnerOf(side.Opponent())
		room.State = &next
	}
	snap := snapshotLocked(room)
	s.removeLocked(room)
	return snap, nil
}

// Reap deletes every room whose last activity is older than the idle
// timeout, whatever its status, and reports how many were removed.
func (s *RoomService) Reap(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, room := range s.rooms {
		room.mu.Lock()
		idle := now.Sub(room.LastMove) > s.idleTimeout
		if idle {
			s.removeLocked(room)
			removed++
		}
		room.mu.Unlock()
	}
	return removed
}

// Room returns a snapshot of one room.
func (s *RoomService) Room(roomID string) (RoomSnapshot, error) {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if !ok {
		return RoomSnapshot{}, ErrRoomNotFound
	}
	return snapshotRoom(room), nil
}

// RoomFor returns the room a player is currently bound to, if any.
func (s *RoomService) RoomFor(playerID string) (RoomSnapshot, bool) {
	s.mu.RLock()
	roomID, ok := s.playerRoom[playerID]
	var room *Room
	if ok {
		room, ok = s.rooms[roomID]
	}
	s.mu.RUnlock()
	if !ok {
		return RoomSnapshot{}, false
	}
	return snapshotRoom(room), true
}

// Summaries lists every room for the lobby, oldest first.
func (s *RoomService) Summaries() []RoomSummary {
	s.mu.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.mu.RUnlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		out = append(out, RoomSummary{
			ID:               room.ID,
			Status:           statusLocked(room),
			Player1:          room.Player1,
			Player2:          room.Player2,
			Player1Connected: room.Online1,
			Player2Connected: room.Online2,
			CreatedAt:        room.CreatedAt,
		})
		room.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Count returns the number of active rooms.
func (s *RoomService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// checkHand validates shape and catalog membership of a hand selection.
func (s *RoomService) checkHand(cardIDs []int) error {
	if len(cardIDs) != domain.HandSize {
		return domain.ErrInvalidHandSize
	}
	seen := make(map[int]struct{}, len(cardIDs))
	for _, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateCardIDs
		}
		seen[id] = struct{}{}
	}
	_, err := s.catalog.Lookup(cardIDs)
	return err
}

// releaseFinishedLocked drops the player's binding when it points at a
// finished or missing room. A finished room only waits for the reaper;
// it must not count as the player's active game. Caller holds the
// service write lock.
func (s *RoomService) releaseFinishedLocked(playerID string) {
	roomID, ok := s.playerRoom[playerID]
	if !ok {
		return
	}
	room, ok := s.rooms[roomID]
	if !ok {
		delete(s.playerRoom, playerID)
		return
	}

	room.mu.Lock()
	finished := statusLocked(room) == domain.StatusFinished
	room.mu.Unlock()
	if finished {
		delete(s.playerRoom, playerID)
	}
}

// removeLocked drops a room and every index entry pointing at it. Callers
// hold both the service and the room lock. Bindings are matched against
// the room id so a player who already moved on to a new room keeps it.
func (s *RoomService) removeLocked(room *Room) {
	delete(s.rooms, room.ID)
	if s.playerRoom[room.Player1] == room.ID {
		delete(s.playerRoom, room.Player1)
	}
	if room.Player2 != "" && s.playerRoom[room.Player2] == room.ID {
		delete(s.playerRoom, room.Player2)
	}
}

func sideLocked(room *Room, playerID string) domain.Side {
	switch playerID {
	case "":
		return domain.SideNone
	case room.Player1:
		return domain.Side1
	case room.Player2:
		return domain.Side2
	}
	return domain.SideNone
}

func setOnlineLocked(room *Room, playerID string, online bool) {
	switch sideLocked(room, playerID) {
	case domain.Side1:
		room.Online1 = online
	case domain.Side2:
		room.Online2 = online
	}
}

func statusLocked(room *Room) domain.Status {
	if room.State == nil {
		return domain.StatusWaiting
	}
	return room.State.Status
}

func snapshotLocked(room *Room) RoomSnapshot {
	snap := RoomSnapshot{
		ID:        room.ID,
		Player1:   room.Player1,
		Player2:   room.Player2,
		Online1:   room.Online1,
		Online2:   room.Online2,
		Status:    statusLocked(room),
		CreatedAt: room.CreatedAt,
		LastMove:  room.LastMove,
	}
	if room.State != nil {
		snap.Started = true
		snap.State = *room.State
	}
	if room.Proof1 != nil {
		p := *room.Proof1
		snap.HandProof1 = &p
	}
	if room.Proof2 != nil {
		p := *room.Proof2
		snap.HandProof2 = &p
	}
	return snap
}

func snapshotRoom(room *Room) RoomSnapshot {
	room.mu.Lock()
	defer room.mu.Unlock()
	return snapshotLocked(room)
}
