package bridge

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
)

// Ethereum is the pure, deterministic bridge state machine for a single
// destination EVM network: the outbox, the current signatory set, and the
// escrow balance it is backed by. Every method is a function of the
// receiver and its arguments alone (no clock, no randomness, no I/O), so
// that independent replicas applying the same calls in the same order
// reach byte-identical state. Keeper (store.go) is the persistence wrapper
// around this type; HostEnv (host.go) is the only capability it borrows
// from its caller.
type Ethereum struct {
	ID             [32]byte
	BridgeContract common.Address
	TokenContract  common.Address
	ValsetInterval uint64

	MessageIndex uint64
	BatchIndex   uint64
	ValsetIndex  uint64
	ReturnIndex  uint64

	// Outbox holds a contiguous window of messages ending at MessageIndex;
	// AbsIndex converts a public message index into a slice offset.
	Outbox  []OutMessage
	Pending []PendingReturn

	Coins  Coin
	Valset SignatorySet

	opts Options
}

// PendingReturn is a coin released from escrow by RelayReturn, waiting to
// be claimed by TakePending.
type PendingReturn struct {
	Dest  Dest
	Coins Coin
}

// ReturnEntry is one leg of a relay_return call: an amount to release from
// escrow and the destination it goes to.
type ReturnEntry struct {
	Dest   Dest
	Amount uint64
}

// New constructs a fresh Ethereum bridge instance rooted at the given
// initial signatory set. The set's voting power is normalized immediately,
// matching how every subsequent valset update normalizes its incoming set.
func New(id []byte, bridgeContract, tokenContract common.Address, valset SignatorySet, opts Options) (*Ethereum, error) {
	idB, err := Bytes32(id)
	if err != nil {
		return nil, err
	}
	valset.NormalizeVP(math.MaxUint32)

	return &Ethereum{
		ID:             idB,
		BridgeContract: bridgeContract,
		TokenContract:  tokenContract,
		ValsetInterval: opts.ValsetInterval,
		MessageIndex:   1,
		Valset:         valset,
		opts:           opts,
	}, nil
}

// Step advances the bridge: if active differs from the current signatory
// set and at least ValsetInterval has elapsed since the current set was
// captured, a valset-update message is pushed and the new set takes over.
// Otherwise Step is a no-op. Called once per block by the host.
func (e *Ethereum) Step(active *SignatorySet) error {
	if active.Index == e.Valset.Index {
		return nil
	}
	if active.CreateTime-e.Valset.CreateTime < int64(e.ValsetInterval) {
		return nil
	}
	return e.updateValset(*active)
}

// Transfer escrows coins and enqueues a single-element batch sending them
// to dest, with no relayer fee and the module's default batch timeout.
func (e *Ethereum) Transfer(dest common.Address, coins Coin) error {
	if err := e.Coins.Give(coins); err != nil {
		return err
	}
	e.BatchIndex++

	args, err := NewBatchArgs(
		[]Transfer{{Dest: dest, Amount: coins.Amount, FeeAmount: 0}},
		e.opts.BatchTimeout,
		e.BatchIndex,
	)
	if err != nil {
		return err
	}
	return e.pushOutbox(args)
}

// Call escrows coins and enqueues a logic-call message invoking an
// arbitrary contract on the destination chain.
func (e *Ethereum) Call(call ContractCall, coins Coin) error {
	if err := e.Coins.Give(coins); err != nil {
		return err
	}

	args := OutMessageArgs{
		Kind:    MessageLogicCall,
		NonceID: e.MessageIndex + 1,
		Call:    call,
	}
	return e.pushOutbox(args)
}

// updateValset enqueues a valset-update message for newValset (after
// normalizing its voting power) and installs it as the current set.
func (e *Ethereum) updateValset(newValset SignatorySet) error {
	newValset.NormalizeVP(math.MaxUint32)
	e.ValsetIndex++

	args := OutMessageArgs{
		Kind:        MessageUpdateValset,
		ValsetIndex: e.ValsetIndex,
		Valset:      newValset,
	}
	if err := e.pushOutbox(args); err != nil {
		return err
	}
	e.Valset = newValset
	return nil
}

// pushOutbox is the shared epilogue for every message-producing operation:
// hash the message, wrap it in a fresh threshold signature keyed to the
// current signatory set, and append it to the outbox. MessageIndex only
// advances once the outbox already holds a previous entry, so the very
// first message in a fresh bridge keeps index 1.
func (e *Ethereum) pushOutbox(msg OutMessageArgs) error {
	inner, err := msg.hash(e.ID, e.TokenContract)
	if err != nil {
		return err
	}
	digest := Sighash(inner)

	sigs := NewThresholdSig(&e.Valset)
	if err := sigs.SetMessage(digest); err != nil {
		return err
	}

	if len(e.Outbox) != 0 {
		e.MessageIndex++
	}
	e.Outbox = append(e.Outbox, OutMessage{
		SigsetIndex: e.Valset.Index,
		Sigs:        sigs,
		Msg:         msg,
	})
	return nil
}

// absIndex converts a public message index into a slice offset into
// Outbox, failing if the index has already scrolled out of the retained
// window or has not been produced yet.
func (e *Ethereum) absIndex(msgIndex uint64) (int, error) {
	if len(e.Outbox) == 0 {
		return 0, errorsmod.Wrap(ErrOutOfRange, "outbox is empty")
	}
	start := e.MessageIndex + 1 - uint64(len(e.Outbox))
	if msgIndex > e.MessageIndex || msgIndex < start {
		return 0, errorsmod.Wrap(ErrOutOfRange, "message index out of range")
	}
	return int(msgIndex - start), nil
}

// AbsIndex exposes absIndex for read-only callers (bridgectl, tests) that
// need to translate a public message index into the current outbox window
// without risking a mutating call.
func (e *Ethereum) AbsIndex(msgIndex uint64) (int, error) {
	return e.absIndex(msgIndex)
}

// Get returns the outbox entry at msgIndex.
func (e *Ethereum) Get(msgIndex uint64) (*OutMessage, error) {
	i, err := e.absIndex(msgIndex)
	if err != nil {
		return nil, err
	}
	return &e.Outbox[i], nil
}

// NeedsSig reports whether pubkey still owes a signature on msgIndex.
func (e *Ethereum) NeedsSig(msgIndex uint64, pubkey Pubkey) (bool, error) {
	m, err := e.Get(msgIndex)
	if err != nil {
		return false, err
	}
	return m.Sigs.NeedsSig(pubkey), nil
}

// Sign records pubkey's signature over msgIndex's message, exempting the
// call from the host's standard fee (signing is a validator duty, not a
// user transaction).
func (e *Ethereum) Sign(env HostEnv, msgIndex uint64, pubkey Pubkey, sig Signature) error {
	if err := env.ExemptFromFee(); err != nil {
		return err
	}
	m, err := e.Get(msgIndex)
	if err != nil {
		return err
	}
	return m.Sigs.Sign(pubkey, sig)
}

// RelayReturn authorizes returns (via verifier), then releases the
// requested amounts from escrow into Pending for later claiming. If any
// entry cannot be escrowed out, the call fails as a whole; the caller
// (Keeper) only persists state after this method returns successfully, so
// no partial release is ever observable.
func (e *Ethereum) RelayReturn(env HostEnv, verifier ReturnVerifier, consensusProof, accountProof []byte, returns []ReturnEntry) error {
	if err := env.ExemptFromFee(); err != nil {
		return err
	}
	if err := verifier.Verify(env, consensusProof, accountProof); err != nil {
		return err
	}
	if len(returns) == 0 {
		return errorsmod.Wrap(ErrInvalidInput, "relay_return requires at least one entry")
	}

	for _, r := range returns {
		coins, err := e.Coins.Take(r.Amount)
		if err != nil {
			return err
		}
		e.Pending = append(e.Pending, PendingReturn{Dest: r.Dest, Coins: coins})
		e.ReturnIndex++
	}
	return nil
}

// TakePending drains and returns every pending release, leaving none
// behind. Called by the host once per block to disburse released coins.
func (e *Ethereum) TakePending() []PendingReturn {
	out := e.Pending
	e.Pending = nil
	return out
}

// PruneConfirmed drops every outbox entry up to and including upToIndex
// from the retained window. It is never called internally: the host decides
// when a message is confirmed enough on the destination chain to stop
// retaining it for sign/relay queries.
func (e *Ethereum) PruneConfirmed(upToIndex uint64) {
	if len(e.Outbox) == 0 {
		return
	}
	start := e.MessageIndex + 1 - uint64(len(e.Outbox))
	if upToIndex < start {
		return
	}
	drop := upToIndex - start + 1
	if drop > uint64(len(e.Outbox)) {
		drop = uint64(len(e.Outbox))
	}
	e.Outbox = e.Outbox[drop:]
}
