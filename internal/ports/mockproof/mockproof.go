// Package mockproof provides a deterministic ProofBackend for development
// and tests. Proof bytes are a domain-separated hash of the witness, so
// the same witness always yields the same proof across runs.
package mockproof

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"

	"triad/internal/ports"
)

const (
	handDomain = "triad/v1/prove/hand"
	moveDomain = "triad/v1/prove/move"
)

// Backend is the deterministic stand-in for the proving circuit.
type Backend struct{}

// New returns a ready Backend.
func New() *Backend {
	return &Backend{}
}

// ProveHand derives a stable pseudo-proof over the hand witness. The
// commitment is the only public input.
func (b *Backend) ProveHand(ctx context.Context, w ports.HandWitness) (ports.Proof, error) {
	if err := ctx.Err(); err != nil {
		return ports.Proof{}, err
	}
	data, err := hashWitness(handDomain, w)
	if err != nil {
		return ports.Proof{}, err
	}
	return ports.Proof{
		Data:         data,
		PublicInputs: []string{w.Commitment},
	}, nil
}

// ProveMove derives a stable pseudo-proof over the move witness. Public
// inputs carry only what the verifier may see; the mover's hand and
// blinding stay inside the hash.
func (b *Backend) ProveMove(ctx context.Context, w ports.MoveWitness) (ports.Proof, error) {
	if err := ctx.Err(); err != nil {
		return ports.Proof{}, err
	}
	data, err := hashWitness(moveDomain, w)
	if err != nil {
		return ports.Proof{}, err
	}
	return ports.Proof{
		Data: data,
		PublicInputs: []string{
			w.Hand1Commitment,
			w.Hand2Commitment,
			w.StartStateHash,
			w.EndStateHash,
			strconv.FormatBool(w.GameOver),
			strconv.Itoa(w.Winner),
		},
	}, nil
}

func hashWitness(domain string, w interface{}) ([]byte, error) {
	payload, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal witness: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0})
	h.Write(payload)
	return h.Sum(nil), nil
}
