package ports

import "context"

// GameProofBundle is the settlement artifact for one finished match: both
// hand proofs, the nine move proofs in play order, the overall winner and
// the card the winner takes as stake.
type GameProofBundle struct {
	Hand1Proof     HandProof   `json:"hand1Proof"`
	Hand2Proof     HandProof   `json:"hand2Proof"`
	MoveProofs     []MoveProof `json:"moveProofs"`
	Winner         int         `json:"winner"`
	SelectedCardID int         `json:"selectedCardId"`
}

// SettlementPort defines the interface for handing finished-match bundles
// to the external ledger. Verification happens on the ledger side; this
// process only delivers.
type SettlementPort interface {
	// SubmitBundle delivers the bundle for verification and payout.
	SubmitBundle(ctx context.Context, bundle GameProofBundle) error
}
