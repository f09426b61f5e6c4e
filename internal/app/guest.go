package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Guest is one issued throwaway identity.
type Guest struct {
	PlayerID string
	Name     string
	Token    string
}

// GuestService issues identities for players without accounts: a fresh
// player id, a generated display name and a signed token.
type GuestService struct {
	tokens *TokenService
	newID  func() string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGuestService constructs a guest service. rng may be nil for a
// time-seeded default, newID may be nil for uuid strings.
func NewGuestService(tokens *TokenService, rng *rand.Rand, newID func() string) *GuestService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &GuestService{tokens: tokens, rng: rng, newID: newID}
}

// Register mints a new guest identity.
func (s *GuestService) Register() (Guest, error) {
	id := s.newID()
	name := s.friendlyName()
	token, err := s.tokens.Generate(id, name)
	if err != nil {
		return Guest{}, fmt.Errorf("failed to issue guest token: %w", err)
	}
	return Guest{PlayerID: id, Name: name, Token: token}, nil
}

func (s *GuestService) friendlyName() string {
	adjectives := []string{"Lucky", "Bold", "Quiet", "Fierce", "Nimble", "Stony", "Gentle", "Rash", "Keen", "Grand"}
	nouns := []string{"Drake", "Sprite", "Golem", "Wisp", "Naga", "Imp", "Djinn", "Seraph", "Wraith", "Falcon"}

	s.mu.Lock()
	defer s.mu.Unlock()
	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000
	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
