package bridge

import (
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func TestWhitelistVerifierAccepts(t *testing.T) {
	addr := sdk.AccAddress([]byte("whitelisted-relayer-"))
	verifier := WhitelistVerifier{Allowed: addr}
	env := StaticHostEnv{Signer: addr, HasSigner: true}

	require.NoError(t, verifier.Verify(env, nil, nil))
}

func TestWhitelistVerifierRejectsWrongSigner(t *testing.T) {
	allowed := sdk.AccAddress([]byte("whitelisted-relayer-"))
	other := sdk.AccAddress([]byte("some-other-address--"))
	verifier := WhitelistVerifier{Allowed: allowed}
	env := StaticHostEnv{Signer: other, HasSigner: true}

	require.ErrorIs(t, verifier.Verify(env, nil, nil), ErrNotAuthorized)
}

func TestWhitelistVerifierRejectsUnsigned(t *testing.T) {
	allowed := sdk.AccAddress([]byte("whitelisted-relayer-"))
	verifier := WhitelistVerifier{Allowed: allowed}
	env := StaticHostEnv{HasSigner: false}

	require.ErrorIs(t, verifier.Verify(env, nil, nil), ErrNotAuthorized)
}
