package bridge

import sdk "github.com/cosmos/cosmos-sdk/types"

// HostEnv is the slice of host-chain capabilities the core consumes but
// does not implement: who signed the current call, and whether it is
// exempt from the host's fee requirement. Call-handling code (sign,
// relay_return) is parameterized over this interface rather than a
// concrete host type so the pure call-handling logic can be unit tested
// without a running chain.
type HostEnv interface {
	// SignerContext returns the address that authorized the current call,
	// and false if the call was not signed by anyone (e.g. an internal/
	// genesis-time invocation).
	SignerContext() (sdk.AccAddress, bool)
	// ExemptFromFee marks the current call as exempt from the host's
	// standard transaction fee, or returns an error if the host declines
	// to grant the exemption.
	ExemptFromFee() error
}

// StaticHostEnv is a fixed HostEnv for tests and for callers (like
// bridgectl) that drive a Keeper outside of a real host transaction.
type StaticHostEnv struct {
	Signer    sdk.AccAddress
	HasSigner bool
	FeeErr    error
}

func (e StaticHostEnv) SignerContext() (sdk.AccAddress, bool) {
	return e.Signer, e.HasSigner
}

func (e StaticHostEnv) ExemptFromFee() error {
	return e.FeeErr
}
