// Package bridge implements the deterministic outbox/signatory-set core of
// the nBTC<->EVM bridge: a rotating threshold-signed signatory set, an
// append-only outbox of batch/logic-call/valset-update messages, and the
// return pipeline that pulls escrowed coins back out of the module.
//
// The package has two layers. The pure layer (Ethereum, SignatorySet,
// ThresholdSig, OutMessageArgs and friends) holds no store reference and
// performs no I/O: every method is a function of its receiver plus its
// arguments, so independent replicas that apply the same calls in the same
// order reach byte-identical state. The Keeper wraps that pure layer with
// persistence (store.go) and the host capabilities (host.go) the core
// consumes but does not implement.
package bridge

import errorsmod "cosmossdk.io/errors"

const codespace = "bridge"

// Error kinds surfaced by the core (spec §7). Each aborts the call that
// raised it; none is retried internally.
var (
	ErrOutOfRange          = errorsmod.Register(codespace, 2, "message index out of range")
	ErrInvalidInput        = errorsmod.Register(codespace, 3, "invalid input")
	ErrNotAuthorized       = errorsmod.Register(codespace, 4, "not authorized")
	ErrInsufficientBalance = errorsmod.Register(codespace, 5, "insufficient balance")
	ErrSignatureRejected   = errorsmod.Register(codespace, 6, "signature rejected")
	ErrConflict            = errorsmod.Register(codespace, 7, "conflict")
)
