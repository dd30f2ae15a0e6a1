package bridge

import (
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ReturnVerifier authorizes a relay_return call. Today's only
// implementation checks the caller against a fixed allowlist; it is an
// interface so a future light-client-proof verifier can replace it without
// changing RelayReturn's call path or signature.
type ReturnVerifier interface {
	Verify(env HostEnv, consensusProof, accountProof []byte) error
}

// WhitelistVerifier accepts relay_return calls signed by exactly one
// configured address, ignoring the proof arguments entirely. consensusProof
// and accountProof are accepted (not rejected as unused input) so swapping
// in a real light-client verifier later is a drop-in replacement.
type WhitelistVerifier struct {
	Allowed sdk.AccAddress
}

func (w WhitelistVerifier) Verify(env HostEnv, _, _ []byte) error {
	signer, ok := env.SignerContext()
	if !ok {
		return errorsmod.Wrap(ErrNotAuthorized, "relay_return must be signed")
	}
	if !signer.Equals(w.Allowed) {
		return errorsmod.Wrap(ErrNotAuthorized, "caller is not the whitelisted relayer")
	}
	return nil
}
