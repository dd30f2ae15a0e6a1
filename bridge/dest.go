package bridge

import sdk "github.com/cosmos/cosmos-sdk/types"

// Dest names where a returned coin goes once it leaves escrow. Only one
// variant is exercised anywhere in this module's tests or call sites today;
// it is still a named type rather than a bare sdk.AccAddress so a future
// variant (e.g. an IBC forwarding address) can be added without changing
// every call site that builds a Dest.
type Dest struct {
	NativeAccount sdk.AccAddress
}

// NewNativeAccountDest builds a Dest routing to a native-chain account.
func NewNativeAccountDest(addr sdk.AccAddress) Dest {
	return Dest{NativeAccount: addr}
}
