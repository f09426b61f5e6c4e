package proofs

import (
	"context"
	"errors"
	"fmt"

	"triad/internal/domain"
	"triad/internal/ports"
)

// Session lifecycle errors.
var (
	ErrHandNotInitialized   = errors.New("hand not initialized")
	ErrOpponentProofMissing = errors.New("opponent hand proof not set")
	ErrMatchStarted         = errors.New("match already started")
	ErrMatchNotStarted      = errors.New("match not started")
	ErrMatchNotFinished     = errors.New("match not finished")
	ErrHandMismatch         = errors.New("hand does not match committed cards")
	ErrChainMismatch        = errors.New("move proof does not extend the local chain")
)

// Session drives the commitment and proof chain for one side of a match.
// It mirrors the match locally through the rules engine and asks the
// proof backend to attest every hand and move. State commits only after
// the backend succeeds; a failed call leaves the session unchanged.
//
// A Session belongs to a single caller goroutine.
type Session struct {
	backend   ports.ProofBackend
	stateHash StateHashFunc

	side     domain.Side
	cardIDs  [5]int
	blinding string

	myHandProof  *ports.HandProof
	oppHandProof *ports.HandProof

	started  bool
	state    domain.MatchState
	lastHash string
	moves    []ports.MoveProof
}

// NewSession prepares a session for one side. A nil stateHash selects the
// default StateHash.
func NewSession(backend ports.ProofBackend, side domain.Side, stateHash StateHashFunc) *Session {
	if stateHash == nil {
		stateHash = StateHash
	}
	return &Session{backend: backend, stateHash: stateHash, side: side}
}

// Side returns the side this session plays.
func (s *Session) Side() domain.Side {
	return s.side
}

// InitializeHand commits to the five selected cards: it draws fresh
// blinding, derives the commitment and obtains the hand proof. The
// returned proof is what the player submits to the match server.
func (s *Session) InitializeHand(ctx context.Context, cardIDs []int) (ports.HandProof, error) {
	if s.started {
		return ports.HandProof{}, ErrMatchStarted
	}
	if len(cardIDs) != domain.HandSize {
		return ports.HandProof{}, domain.ErrInvalidHandSize
	}

	var ids [5]int
	copy(ids[:], cardIDs)
	blinding, err := NewBlinding()
	if err != nil {
		return ports.HandProof{}, err
	}
	commitment := HandCommitment(ids, blinding)

	proof, err := s.backend.ProveHand(ctx, ports.HandWitness{
		CardIDs:    ids,
		Blinding:   blinding,
		Commitment: commitment,
	})
	if err != nil {
		return ports.HandProof{}, fmt.Errorf("failed to prove hand: %w", err)
	}

	s.cardIDs = ids
	s.blinding = blinding
	s.myHandProof = &ports.HandProof{Commitment: commitment, Proof: proof}
	return *s.myHandProof, nil
}

// SetOpponentHandProof records the peer's hand proof received from the
// server. Required before StartMatch.
func (s *Session) SetOpponentHandProof(p ports.HandProof) error {
	if s.started {
		return ErrMatchStarted
	}
	proof := p
	s.oppHandProof = &proof
	return nil
}

// StartMatch builds the initial state from both revealed hands and
// records the opening fingerprint. The session's own hand must match the
// ids it committed to.
func (s *Session) StartMatch(hand1, hand2 []domain.Card) error {
	if s.started {
		return ErrMatchStarted
	}
	if s.myHandProof == nil {
		return ErrHandNotInitialized
	}
	if s.oppHandProof == nil {
		return ErrOpponentProofMissing
	}

	state, err := domain.NewMatch(hand1, hand2)
	if err != nil {
		return err
	}
	mine := state.Hand(s.side)
	for i, card := range mine {
		if card.ID != s.cardIDs[i] {
			return fmt.Errorf("%w: index %d has id %d, committed %d",
				ErrHandMismatch, i, card.ID, s.cardIDs[i])
		}
	}

	s.started = true
	s.state = state
	s.lastHash = s.stateHash(state)
	s.moves = nil
	return nil
}

// IsMyTurn reports whether this side moves next.
func (s *Session) IsMyTurn() bool {
	return s.started && s.state.Turn == s.side
}

// IsFinished reports whether the mirrored match has ended.
func (s *Session) IsFinished() bool {
	return s.started && s.state.Status == domain.StatusFinished
}

// MatchState returns a copy of the mirrored state.
func (s *Session) MatchState() (domain.MatchState, error) {
	if !s.started {
		return domain.MatchState{}, ErrMatchNotStarted
	}
	return s.state, nil
}

// MakeMove plays this side's card, proves the transition and extends the
// chain. The rules engine validates the move first; a backend failure
// leaves state, fingerprint and move list untouched so the move can be
// retried.
func (s *Session) MakeMove(ctx context.Context, handIndex, row, col int) (ports.MoveProof, error) {
	if !s.started {
		return ports.MoveProof{}, ErrMatchNotStarted
	}

	next, _, err := domain.Place(s.state, s.side, handIndex, row, col)
	if err != nil {
		return ports.MoveProof{}, err
	}
	card := s.state.Hand(s.side)[handIndex]
	endHash := s.stateHash(next)
	hand1C, hand2C := s.commitments()

	proof, err := s.backend.ProveMove(ctx, ports.MoveWitness{
		Hand1Commitment: hand1C,
		Hand2Commitment: hand2C,
		StartStateHash:  s.lastHash,
		EndStateHash:    endHash,
		GameOver:        next.Status == domain.StatusFinished,
		Winner:          winnerCode(next.Winner),
		CardID:          card.ID,
		HandIndex:       handIndex,
		Row:             row,
		Col:             col,
		MoverCardIDs:    s.cardIDs,
		MoverBlinding:   s.blinding,
	})
	if err != nil {
		return ports.MoveProof{}, fmt.Errorf("failed to prove move: %w", err)
	}

	mp := ports.MoveProof{
		Hand1Commitment: hand1C,
		Hand2Commitment: hand2C,
		StartStateHash:  s.lastHash,
		EndStateHash:    endHash,
		GameOver:        next.Status == domain.StatusFinished,
		Winner:          winnerCode(next.Winner),
		Proof:           proof,
	}
	s.state = next
	s.lastHash = endHash
	s.moves = append(s.moves, mp)
	return mp, nil
}

// ApplyOpponentMove replays the peer's move locally and appends its proof
// to the chain. The proof must link to the local fingerprint chain and
// agree with the replayed transition.
func (s *Session) ApplyOpponentMove(proof ports.MoveProof, handIndex, row, col int) error {
	if !s.started {
		return ErrMatchNotStarted
	}

	next, _, err := domain.Place(s.state, s.side.Opponent(), handIndex, row, col)
	if err != nil {
		return err
	}
	hand1C, hand2C := s.commitments()
	if proof.Hand1Commitment != hand1C || proof.Hand2Commitment != hand2C {
		return fmt.Errorf("%w: commitments differ", ErrChainMismatch)
	}
	if proof.StartStateHash != s.lastHash {
		return fmt.Errorf("%w: start %s, chain tip %s", ErrChainMismatch,
			proof.StartStateHash, s.lastHash)
	}
	if endHash := s.stateHash(next); proof.EndStateHash != endHash {
		return fmt.Errorf("%w: end %s, local replay %s", ErrChainMismatch,
			proof.EndStateHash, endHash)
	}

	s.state = next
	s.lastHash = proof.EndStateHash
	s.moves = append(s.moves, proof)
	return nil
}

// ProofBundle assembles the settlement bundle for a finished match. The
// winner selects one of the loser's cards as stake.
func (s *Session) ProofBundle(selectedCardID int) (ports.GameProofBundle, error) {
	if !s.IsFinished() {
		return ports.GameProofBundle{}, ErrMatchNotFinished
	}

	bundle := ports.GameProofBundle{
		MoveProofs:     append([]ports.MoveProof(nil), s.moves...),
		Winner:         winnerCode(s.state.Winner),
		SelectedCardID: selectedCardID,
	}
	if s.side == domain.Side1 {
		bundle.Hand1Proof = *s.myHandProof
		bundle.Hand2Proof = *s.oppHandProof
	} else {
		bundle.Hand1Proof = *s.oppHandProof
		bundle.Hand2Proof = *s.myHandProof
	}
	return bundle, nil
}

// commitments returns the hand commitments in side order.
func (s *Session) commitments() (string, string) {
	if s.side == domain.Side1 {
		return s.myHandProof.Commitment, s.oppHandProof.Commitment
	}
	return s.oppHandProof.Commitment, s.myHandProof.Commitment
}

func winnerCode(w domain.Winner) int {
	switch w {
	case domain.WinnerSide1:
		return ports.WinnerCodeSide1
	case domain.WinnerSide2:
		return ports.WinnerCodeSide2
	case domain.WinnerDraw:
		return ports.WinnerCodeDraw
	}
	return ports.WinnerCodeNone
}
