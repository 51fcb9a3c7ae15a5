package proposals

import "errors"

var (
	// ErrFetch wraps gateway failures while loading proposals.
	ErrFetch = errors.New("fetch proposals")
	// ErrPersistence wraps gateway failures while writing a decision that passed validation.
	ErrPersistence = errors.New("persist proposal decision")
	// ErrQuote wraps quote provider failures while pricing a new proposal.
	ErrQuote = errors.New("resolve unit price")

	ErrConfirmationRequired = errors.New("legal confirmation required to accept a proposal")
	ErrAlreadyDecided       = errors.New("proposal already decided")
	ErrDecisionInFlight     = errors.New("a decision for this proposal is already in progress")
	ErrForbidden            = errors.New("session is not allowed to act on this proposal")
	ErrNilProposal          = errors.New("proposal is nil")
	ErrNotLoaded            = errors.New("no client proposals loaded")
)
