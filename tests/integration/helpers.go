// Package integration exercises the assembled server end to end: a real
// listener with the websocket and REST surfaces mounted, real client
// connections, and a proof session on each side of the match.
package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"triad/internal/app"
	"triad/internal/catalog"
	"triad/internal/domain"
	"triad/internal/ports"
	"triad/internal/ports/mockproof"
	"triad/internal/ports/rest"
	"triad/internal/ports/ws"
	"triad/internal/proofs"
)

// TestServer is the full stack behind one ephemeral listener.
type TestServer struct {
	URL     string
	Rooms   *app.RoomService
	Catalog *catalog.InMemory
}

// StartTestServer wires the services the way cmd/server does and serves
// them from an httptest listener. The disconnect grace is shortened so
// forfeit paths finish within test deadlines.
func StartTestServer(t *testing.T) *TestServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cat := catalog.MustStandard()
	rooms := app.NewRoomService(cat, app.RoomServiceOptions{})
	tokens := app.NewTokenService("integration-secret", "triad-test", time.Hour)
	guests := app.NewGuestService(tokens, nil, nil)
	hub := ws.NewHub(rooms, tokens, cat, log, ws.Options{
		GracePeriod: 150 * time.Millisecond,
	})

	router := way.NewRouter()
	router.HandleFunc("GET", "/ws", hub.Handler())
	rest.NewHandler(rooms, guests, log).Routes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &TestServer{URL: srv.URL, Rooms: rooms, Catalog: cat}
}

// serverMsg is the union of the server-to-client payloads the tests
// assert on.
type serverMsg struct {
	Type         string           `json:"type"`
	GameID       string           `json:"gameId"`
	PlayerNumber int              `json:"playerNumber"`
	Message      string           `json:"message"`
	Winner       string           `json:"winner"`
	FromPlayer   int              `json:"fromPlayer"`
	Games        []ws.GameSummary `json:"games"`
	Game         *ws.GameSummary  `json:"game"`
	GameState    *ws.StateView    `json:"gameState"`
	Captures     []ws.CellRefView `json:"captures"`
	HandProof    *ports.HandProof `json:"handProof"`
	MoveProof    *ports.MoveProof `json:"moveProof"`
	HandIndex    int              `json:"handIndex"`
	Row          int              `json:"row"`
	Col          int              `json:"col"`
}

// TestClient is one player: a websocket connection bound to a guest
// identity, plus the proof session for their side.
type TestClient struct {
	t        *testing.T
	PlayerID string
	Name     string
	Conn     *websocket.Conn
	Session  *proofs.Session
}

// NewTestClient registers a guest over REST, connects the websocket with
// the issued token and prepares a proof session for the given side.
func NewTestClient(t *testing.T, ts *TestServer, side domain.Side) *TestClient {
	t.Helper()

	resp, err := http.Post(ts.URL+"/auth/guest", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var guest struct {
		PlayerID string `json:"playerId"`
		Name     string `json:"name"`
		Token    string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&guest))

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + guest.Token
	conn, dialResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if dialResp != nil {
		dialResp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return &TestClient{
		t:        t,
		PlayerID: guest.PlayerID,
		Name:     guest.Name,
		Conn:     conn,
		Session:  proofs.NewSession(mockproof.New(), side, nil),
	}
}

func (c *TestClient) Send(msg any) {
	c.t.Helper()
	c.Conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	require.NoError(c.t, c.Conn.WriteJSON(msg))
}

// Expect reads the next message and requires its type.
func (c *TestClient) Expect(wantType string) serverMsg {
	c.t.Helper()
	c.Conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg serverMsg
	require.NoError(c.t, c.Conn.ReadJSON(&msg))
	require.Equalf(c.t, wantType, msg.Type, "unexpected message %+v", msg)
	return msg
}

// RecordingLedger is a SettlementPort that keeps every submitted bundle.
type RecordingLedger struct {
	mu      sync.Mutex
	Bundles []ports.GameProofBundle
}

var _ ports.SettlementPort = (*RecordingLedger)(nil)

func (l *RecordingLedger) SubmitBundle(ctx context.Context, bundle ports.GameProofBundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Bundles = append(l.Bundles, bundle)
	return nil
}
