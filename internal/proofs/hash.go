package proofs

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"triad/internal/domain"
)

// Domain separation prefixes for every hash this package produces.
const (
	handCommitDomain = "triad/v1/hand-commit"
	stateDomain      = "triad/v1/state"
)

// StateHashFunc fingerprints a match state. Both sides of a match must
// use the same function or their proof chains diverge.
type StateHashFunc func(domain.MatchState) string

// hashWithDomain hashes data under a domain prefix so values hashed in
// different contexts can never collide.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// NewBlinding draws 32 bytes of hex-encoded randomness for a hand
// commitment.
func NewBlinding() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to draw blinding: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// HandCommitment commits to five card ids under the given blinding.
func HandCommitment(cardIDs [5]int, blinding string) string {
	var sb strings.Builder
	for _, id := range cardIDs {
		fmt.Fprintf(&sb, "%d,", id)
	}
	sb.WriteString(blinding)
	return hashWithDomain(handCommitDomain, []byte(sb.String()))
}

// StateHash is the default StateHashFunc: a domain-separated hash over a
// canonical flattening of board, hands, turn, scores, status and winner.
func StateHash(s domain.MatchState) string {
	return hashWithDomain(stateDomain, []byte(flattenState(s)))
}

// flattenState renders a state deterministically. Cells are row major;
// hands keep their index order, which Place preserves on removal.
func flattenState(s domain.MatchState) string {
	var sb strings.Builder
	sb.WriteString(string(s.Status))
	sb.WriteByte('|')
	sb.WriteString(string(s.Turn))
	sb.WriteByte('|')
	sb.WriteString(string(s.Winner))
	sb.WriteByte('|')
	for r := 0; r < domain.BoardSize; r++ {
		for c := 0; c < domain.BoardSize; c++ {
			cell := s.Board[r][c]
			if cell.Owner == domain.SideNone {
				sb.WriteString("-;")
				continue
			}
			fmt.Fprintf(&sb, "%d:%s;", cell.Card.ID, cell.Owner)
		}
	}
	sb.WriteByte('|')
	writeHand(&sb, s.Hand1)
	sb.WriteByte('|')
	writeHand(&sb, s.Hand2)
	fmt.Fprintf(&sb, "|%d:%d", s.Score1, s.Score2)
	return sb.String()
}

func writeHand(sb *strings.Builder, hand []domain.Card) {
	for _, c := range hand {
		fmt.Fprintf(sb, "%d,", c.ID)
	}
}
