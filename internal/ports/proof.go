package ports

import "context"

// Winner codes carried in move proofs and settlement bundles.
const (
	WinnerCodeNone  = 0
	WinnerCodeSide1 = 1
	WinnerCodeSide2 = 2
	WinnerCodeDraw  = 3
)

// HandWitness is the private input for a hand commitment proof.
type HandWitness struct {
	CardIDs    [5]int
	Blinding   string // hex randomness bound into the commitment
	Commitment string // hex commitment the proof attests to
}

// MoveWitness is the private input for a single move proof. The mover's
// card ids and blinding never leave the prover.
type MoveWitness struct {
	Hand1Commitment string
	Hand2Commitment string
	StartStateHash  string
	EndStateHash    string
	GameOver        bool
	Winner          int
	CardID          int
	HandIndex       int
	Row             int
	Col             int
	MoverCardIDs    [5]int
	MoverBlinding   string
}

// Proof is an opaque proof blob together with its public inputs.
type Proof struct {
	Data         []byte   `json:"data"`
	PublicInputs []string `json:"publicInputs"`
}

// HandProof binds a hand commitment to the proof attesting it.
type HandProof struct {
	Commitment string `json:"commitment"`
	Proof      Proof  `json:"proof"`
}

// MoveProof proves one transition of the state fingerprint chain.
type MoveProof struct {
	Hand1Commitment string `json:"hand1Commitment"`
	Hand2Commitment string `json:"hand2Commitment"`
	StartStateHash  string `json:"startStateHash"`
	EndStateHash    string `json:"endStateHash"`
	GameOver        bool   `json:"gameOver"`
	Winner          int    `json:"winner"`
	Proof           Proof  `json:"proof"`
}

// ProofBackend defines the interface for producing hand and move proofs.
// Implementations may be remote and slow; calls respect ctx cancellation
// and a failed call must leave the caller free to retry.
type ProofBackend interface {
	// ProveHand attests that the commitment matches the witness hand.
	ProveHand(ctx context.Context, w HandWitness) (Proof, error)

	// ProveMove attests one legal transition between state fingerprints.
	ProveMove(ctx context.Context, w MoveWitness) (Proof, error)
}
