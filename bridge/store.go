package bridge

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	errorsmod "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/common"
)

// Keeper persists an Ethereum bridge instance through cosmossdk.io/collections
// over a host-provided KVStoreService, the same storage abstraction the rest
// of the Cosmos SDK module ecosystem is built on. Every mutating method
// follows the same shape: load the full Ethereum value, run one pure
// operation against it, and only write the result back if that operation
// succeeded. A failed operation therefore never leaves a partial write
// behind, without this package needing its own rollback machinery.
type Keeper struct {
	schema collections.Schema

	config       collections.Item[moduleConfig]
	valset       collections.Item[SignatorySet]
	coins        collections.Item[uint64]
	messageIndex collections.Sequence
	batchIndex   collections.Sequence
	valsetIndex  collections.Sequence
	returnIndex  collections.Sequence
	outboxLen    collections.Item[uint64]
	outbox       collections.Map[uint64, OutMessage]
	pendingHead  collections.Item[uint64]
	pendingTail  collections.Sequence
	pending      collections.Map[uint64, PendingReturn]

	opts Options
}

type moduleConfig struct {
	ID             [32]byte
	BridgeContract common.Address
	TokenContract  common.Address
}

// NewKeeper builds a Keeper over storeService using opts for every
// Options-gated constant. Panics on a malformed schema, which can only
// happen from a programming error (two collections sharing a prefix), not
// from any runtime condition.
func NewKeeper(storeService corestore.KVStoreService, opts Options) *Keeper {
	sb := collections.NewSchemaBuilder(storeService)

	k := &Keeper{
		config:       collections.NewItem(sb, collections.NewPrefix(0), "config", moduleConfigCodec{}),
		valset:       collections.NewItem(sb, collections.NewPrefix(1), "valset", signatorySetCodec{}),
		coins:        collections.NewItem(sb, collections.NewPrefix(2), "coins", collections.Uint64Value),
		messageIndex: collections.NewSequence(sb, collections.NewPrefix(3), "message_index"),
		batchIndex:   collections.NewSequence(sb, collections.NewPrefix(4), "batch_index"),
		valsetIndex:  collections.NewSequence(sb, collections.NewPrefix(5), "valset_index"),
		returnIndex:  collections.NewSequence(sb, collections.NewPrefix(6), "return_index"),
		outboxLen:    collections.NewItem(sb, collections.NewPrefix(7), "outbox_len", collections.Uint64Value),
		outbox:       collections.NewMap(sb, collections.NewPrefix(8), "outbox", collections.Uint64Key, outMessageCodec{}),
		pendingHead:  collections.NewItem(sb, collections.NewPrefix(9), "pending_head", collections.Uint64Value),
		pendingTail:  collections.NewSequence(sb, collections.NewPrefix(10), "pending_tail"),
		pending:      collections.NewMap(sb, collections.NewPrefix(11), "pending", collections.Uint64Key, pendingReturnCodec{}),
		opts:         opts,
	}

	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}
	k.schema = schema
	return k
}

// Init seeds storage for a brand new bridge instance. It must be called
// exactly once, before any other Keeper method, for a given store.
func (k *Keeper) Init(ctx context.Context, id []byte, bridgeContract, tokenContract common.Address, valset SignatorySet) error {
	e, err := New(id, bridgeContract, tokenContract, valset, k.opts)
	if err != nil {
		return err
	}
	if err := k.save(ctx, e, 0); err != nil {
		return err
	}
	return k.pendingHead.Set(ctx, 0)
}

// load reconstructs the full pure Ethereum value from storage.
func (k *Keeper) load(ctx context.Context) (*Ethereum, error) {
	cfg, err := k.config.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading config")
	}
	valset, err := k.valset.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading valset")
	}
	coinsAmt, err := k.coins.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading coins")
	}
	msgIdx, err := k.messageIndex.Peek(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading message index")
	}
	batchIdx, err := k.batchIndex.Peek(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading batch index")
	}
	valsetIdx, err := k.valsetIndex.Peek(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading valset index")
	}
	returnIdx, err := k.returnIndex.Peek(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading return index")
	}
	outboxLen, err := k.outboxLen.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading outbox length")
	}

	outbox := make([]OutMessage, 0, outboxLen)
	if outboxLen > 0 {
		start := msgIdx + 1 - outboxLen
		for i := uint64(0); i < outboxLen; i++ {
			m, err := k.outbox.Get(ctx, start+i)
			if err != nil {
				return nil, errorsmod.Wrapf(err, "loading outbox entry %d", start+i)
			}
			outbox = append(outbox, m)
		}
	}

	pendingHead, err := k.pendingHead.Get(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading pending head")
	}
	pendingTail, err := k.pendingTail.Peek(ctx)
	if err != nil {
		return nil, errorsmod.Wrap(err, "loading pending tail")
	}
	pending := make([]PendingReturn, 0, pendingTail-pendingHead)
	for i := pendingHead; i < pendingTail; i++ {
		p, err := k.pending.Get(ctx, i)
		if err != nil {
			return nil, errorsmod.Wrapf(err, "loading pending entry %d", i)
		}
		pending = append(pending, p)
	}

	return &Ethereum{
		ID:             cfg.ID,
		BridgeContract: cfg.BridgeContract,
		TokenContract:  cfg.TokenContract,
		ValsetInterval: k.opts.ValsetInterval,
		MessageIndex:   msgIdx,
		BatchIndex:     batchIdx,
		ValsetIndex:    valsetIdx,
		ReturnIndex:    returnIdx,
		Outbox:         outbox,
		Pending:        pending,
		Coins:          Coin{Amount: coinsAmt},
		Valset:         valset,
		opts:           k.opts,
	}, nil
}

// save persists every field of e. pendingBefore is the length of e.Pending
// as it was immediately after load, used to tell whether the operation that
// ran in between appended new pending entries (RelayReturn) or drained them
// all (TakePending): the two mutations this package ever performs on the
// pending queue.
func (k *Keeper) save(ctx context.Context, e *Ethereum, pendingBefore int) error {
	if err := k.config.Set(ctx, moduleConfig{ID: e.ID, BridgeContract: e.BridgeContract, TokenContract: e.TokenContract}); err != nil {
		return err
	}
	if err := k.valset.Set(ctx, e.Valset); err != nil {
		return err
	}
	if err := k.coins.Set(ctx, e.Coins.Amount); err != nil {
		return err
	}
	if err := k.messageIndex.Set(ctx, e.MessageIndex); err != nil {
		return err
	}
	if err := k.batchIndex.Set(ctx, e.BatchIndex); err != nil {
		return err
	}
	if err := k.valsetIndex.Set(ctx, e.ValsetIndex); err != nil {
		return err
	}
	if err := k.returnIndex.Set(ctx, e.ReturnIndex); err != nil {
		return err
	}

	start := uint64(0)
	if len(e.Outbox) > 0 {
		start = e.MessageIndex + 1 - uint64(len(e.Outbox))
	}
	for i, m := range e.Outbox {
		if err := k.outbox.Set(ctx, start+uint64(i), m); err != nil {
			return err
		}
	}
	if err := k.outboxLen.Set(ctx, uint64(len(e.Outbox))); err != nil {
		return err
	}

	switch {
	case len(e.Pending) == 0 && pendingBefore > 0:
		tail, err := k.pendingTail.Peek(ctx)
		if err != nil {
			return err
		}
		if err := k.pendingHead.Set(ctx, tail); err != nil {
			return err
		}
	case len(e.Pending) > pendingBefore:
		tail, err := k.pendingTail.Peek(ctx)
		if err != nil {
			return err
		}
		appended := e.Pending[pendingBefore:]
		for i, p := range appended {
			if err := k.pending.Set(ctx, tail+uint64(i), p); err != nil {
				return err
			}
		}
		if err := k.pendingTail.Set(ctx, tail+uint64(len(appended))); err != nil {
			return err
		}
	}
	return nil
}

// do loads state, runs fn against it, and persists the result only if fn
// succeeds.
func (k *Keeper) do(ctx context.Context, fn func(*Ethereum) error) error {
	e, err := k.load(ctx)
	if err != nil {
		return err
	}
	pendingBefore := len(e.Pending)
	if err := fn(e); err != nil {
		return err
	}
	return k.save(ctx, e, pendingBefore)
}

// Step runs Ethereum.Step against the stored state.
func (k *Keeper) Step(ctx context.Context, active *SignatorySet) error {
	return k.do(ctx, func(e *Ethereum) error { return e.Step(active) })
}

// Transfer runs Ethereum.Transfer against the stored state.
func (k *Keeper) Transfer(ctx context.Context, dest common.Address, coins Coin) error {
	return k.do(ctx, func(e *Ethereum) error { return e.Transfer(dest, coins) })
}

// Call runs Ethereum.Call against the stored state.
func (k *Keeper) Call(ctx context.Context, call ContractCall, coins Coin) error {
	return k.do(ctx, func(e *Ethereum) error { return e.Call(call, coins) })
}

// Sign runs Ethereum.Sign against the stored state.
func (k *Keeper) Sign(ctx context.Context, env HostEnv, msgIndex uint64, pubkey Pubkey, sig Signature) error {
	return k.do(ctx, func(e *Ethereum) error { return e.Sign(env, msgIndex, pubkey, sig) })
}

// RelayReturn runs Ethereum.RelayReturn against the stored state.
func (k *Keeper) RelayReturn(ctx context.Context, env HostEnv, verifier ReturnVerifier, consensusProof, accountProof []byte, returns []ReturnEntry) error {
	return k.do(ctx, func(e *Ethereum) error {
		return e.RelayReturn(env, verifier, consensusProof, accountProof, returns)
	})
}

// TakePending drains the stored pending-return queue.
func (k *Keeper) TakePending(ctx context.Context) ([]PendingReturn, error) {
	e, err := k.load(ctx)
	if err != nil {
		return nil, err
	}
	pendingBefore := len(e.Pending)
	taken := e.TakePending()
	if err := k.save(ctx, e, pendingBefore); err != nil {
		return nil, err
	}
	return taken, nil
}

// PruneConfirmed runs Ethereum.PruneConfirmed against the stored state.
// Unlike the other mutators this never fails, but it still goes through
// load/save so the outbox window and outbox_len item stay consistent.
func (k *Keeper) PruneConfirmed(ctx context.Context, upToIndex uint64) error {
	return k.do(ctx, func(e *Ethereum) error {
		e.PruneConfirmed(upToIndex)
		return nil
	})
}

// OutboxEntry returns the outbox entry at msgIndex without mutating state
// (the SUPPLEMENTED FEATURES get/get_mut accessor).
func (k *Keeper) OutboxEntry(ctx context.Context, msgIndex uint64) (*OutMessage, error) {
	e, err := k.load(ctx)
	if err != nil {
		return nil, err
	}
	return e.Get(msgIndex)
}

// NeedsSig reports whether pubkey still owes a signature on msgIndex (the
// SUPPLEMENTED FEATURES needs_sig query).
func (k *Keeper) NeedsSig(ctx context.Context, msgIndex uint64, pubkey Pubkey) (bool, error) {
	e, err := k.load(ctx)
	if err != nil {
		return false, err
	}
	return e.NeedsSig(msgIndex, pubkey)
}

// Sigs returns every (pubkey, signature) slot recorded so far for
// msgIndex, signed or not (the SUPPLEMENTED FEATURES get_sigs query).
func (k *Keeper) Sigs(ctx context.Context, msgIndex uint64) ([]Slot, error) {
	e, err := k.load(ctx)
	if err != nil {
		return nil, err
	}
	m, err := e.Get(msgIndex)
	if err != nil {
		return nil, err
	}
	return m.Sigs.Slots, nil
}

// CurrentValset returns the active signatory set.
func (k *Keeper) CurrentValset(ctx context.Context) (SignatorySet, error) {
	return k.valset.Get(ctx)
}

// Snapshot returns a read-only copy of the full bridge state, for
// inspection tooling (bridgectl, tests) that needs more than one field at
// a time.
func (k *Keeper) Snapshot(ctx context.Context) (*Ethereum, error) {
	return k.load(ctx)
}

// --- value codecs -----------------------------------------------------
//
// OutMessageArgs and its neighbors are plain Go structs, not protobuf
// messages, so collections.Value's usual codec.CollValue[T] helper (which
// needs a proto.Message) does not apply. Each codec below hand-writes a
// canonical, stable byte layout instead, following an explicit-length-prefix
// discipline and the tag-then-fields shape the reference implementation's
// own wire format uses.

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUint32(buf, uint32(len(b)))
	buf.Write(b)
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type moduleConfigCodec struct{}

func (moduleConfigCodec) Encode(v moduleConfig) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(v.ID[:])
	buf.Write(v.BridgeContract[:])
	buf.Write(v.TokenContract[:])
	return buf.Bytes(), nil
}

func (moduleConfigCodec) Decode(b []byte) (moduleConfig, error) {
	var v moduleConfig
	if len(b) != 32+20+20 {
		return v, fmt.Errorf("bridge: malformed config value (%d bytes)", len(b))
	}
	copy(v.ID[:], b[:32])
	copy(v.BridgeContract[:], b[32:52])
	copy(v.TokenContract[:], b[52:72])
	return v, nil
}

func (c moduleConfigCodec) EncodeJSON(v moduleConfig) ([]byte, error) { return json.Marshal(v) }
func (c moduleConfigCodec) DecodeJSON(b []byte) (moduleConfig, error) {
	var v moduleConfig
	err := json.Unmarshal(b, &v)
	return v, err
}
func (moduleConfigCodec) Stringify(v moduleConfig) string { return fmt.Sprintf("%+v", v) }
func (moduleConfigCodec) ValueType() string               { return "bridge.moduleConfig" }

type signatorySetCodec struct{}

func (signatorySetCodec) Encode(v SignatorySet) ([]byte, error) {
	var buf bytes.Buffer
	writeUint32(&buf, v.Index)
	writeUint64(&buf, uint64(v.CreateTime))
	writeUint64(&buf, v.PresentVP)
	writeUint64(&buf, v.PossibleVP)
	writeUint32(&buf, uint32(len(v.Signatories)))
	for _, s := range v.Signatories {
		buf.Write(s.Pubkey[:])
		writeUint64(&buf, s.VotingPower)
	}
	return buf.Bytes(), nil
}

func (signatorySetCodec) Decode(b []byte) (SignatorySet, error) {
	var v SignatorySet
	r := bytes.NewReader(b)

	idx, err := readUint32(r)
	if err != nil {
		return v, err
	}
	v.Index = idx

	ct, err := readUint64(r)
	if err != nil {
		return v, err
	}
	v.CreateTime = int64(ct)

	if v.PresentVP, err = readUint64(r); err != nil {
		return v, err
	}
	if v.PossibleVP, err = readUint64(r); err != nil {
		return v, err
	}

	n, err := readUint32(r)
	if err != nil {
		return v, err
	}
	v.Signatories = make([]Signatory, n)
	for i := range v.Signatories {
		if _, err := r.Read(v.Signatories[i].Pubkey[:]); err != nil {
			return v, err
		}
		if v.Signatories[i].VotingPower, err = readUint64(r); err != nil {
			return v, err
		}
	}
	return v, nil
}

func (c signatorySetCodec) EncodeJSON(v SignatorySet) ([]byte, error) { return json.Marshal(v) }
func (c signatorySetCodec) DecodeJSON(b []byte) (SignatorySet, error) {
	var v SignatorySet
	err := json.Unmarshal(b, &v)
	return v, err
}
func (signatorySetCodec) Stringify(v SignatorySet) string { return fmt.Sprintf("%+v", v) }
func (signatorySetCodec) ValueType() string               { return "bridge.SignatorySet" }

func encodeOutMessageArgs(buf *bytes.Buffer, m OutMessageArgs) {
	buf.WriteByte(byte(m.Kind))
	switch m.Kind {
	case MessageBatch:
		writeUint64(buf, m.BatchTimeout)
		writeUint64(buf, m.BatchIndex)
		writeUint32(buf, uint32(len(m.Transfers)))
		for _, t := range m.Transfers {
			buf.Write(t.Dest[:])
			writeUint64(buf, t.Amount)
			writeUint64(buf, t.FeeAmount)
		}
	case MessageLogicCall:
		writeUint64(buf, m.NonceID)
		buf.Write(m.Call.Contract[:])
		writeUint64(buf, m.Call.TransferAmount)
		writeUint64(buf, m.Call.FeeAmount)
		writeUint64(buf, m.Call.Timeout)
		writeBytes(buf, m.Call.Payload)
	case MessageUpdateValset:
		writeUint64(buf, m.ValsetIndex)
		c, _ := signatorySetCodec{}.Encode(m.Valset)
		writeBytes(buf, c)
	}
}

func decodeOutMessageArgs(r *bytes.Reader) (OutMessageArgs, error) {
	var m OutMessageArgs
	kind, err := r.ReadByte()
	if err != nil {
		return m, err
	}
	m.Kind = MessageKind(kind)

	switch m.Kind {
	case MessageBatch:
		if m.BatchTimeout, err = readUint64(r); err != nil {
			return m, err
		}
		if m.BatchIndex, err = readUint64(r); err != nil {
			return m, err
		}
		n, err := readUint32(r)
		if err != nil {
			return m, err
		}
		m.Transfers = make([]Transfer, n)
		for i := range m.Transfers {
			if _, err := r.Read(m.Transfers[i].Dest[:]); err != nil {
				return m, err
			}
			if m.Transfers[i].Amount, err = readUint64(r); err != nil {
				return m, err
			}
			if m.Transfers[i].FeeAmount, err = readUint64(r); err != nil {
				return m, err
			}
		}
	case MessageLogicCall:
		if m.NonceID, err = readUint64(r); err != nil {
			return m, err
		}
		if _, err := r.Read(m.Call.Contract[:]); err != nil {
			return m, err
		}
		if m.Call.TransferAmount, err = readUint64(r); err != nil {
			return m, err
		}
		if m.Call.FeeAmount, err = readUint64(r); err != nil {
			return m, err
		}
		if m.Call.Timeout, err = readUint64(r); err != nil {
			return m, err
		}
		if m.Call.Payload, err = readBytes(r); err != nil {
			return m, err
		}
	case MessageUpdateValset:
		if m.ValsetIndex, err = readUint64(r); err != nil {
			return m, err
		}
		raw, err := readBytes(r)
		if err != nil {
			return m, err
		}
		m.Valset, err = signatorySetCodec{}.Decode(raw)
		if err != nil {
			return m, err
		}
	default:
		return m, fmt.Errorf("bridge: unknown message kind %d", m.Kind)
	}
	return m, nil
}

type outMessageCodec struct{}

func (outMessageCodec) Encode(v OutMessage) ([]byte, error) {
	var buf bytes.Buffer
	writeUint32(&buf, v.SigsetIndex)

	writeUint64(&buf, v.Sigs.Threshold)
	writeUint64(&buf, v.Sigs.SignedVP)
	writeUint32(&buf, uint32(len(v.Sigs.Slots)))
	for _, s := range v.Sigs.Slots {
		buf.Write(s.Pubkey[:])
		writeUint64(&buf, s.VotingPower)
		if s.Signature == nil {
			buf.WriteByte(0)
		} else {
			buf.WriteByte(1)
			buf.Write(s.Signature[:])
		}
	}
	buf.Write(v.Sigs.Message[:])

	encodeOutMessageArgs(&buf, v.Msg)
	return buf.Bytes(), nil
}

func (outMessageCodec) Decode(b []byte) (OutMessage, error) {
	var v OutMessage
	r := bytes.NewReader(b)

	idx, err := readUint32(r)
	if err != nil {
		return v, err
	}
	v.SigsetIndex = idx

	threshold, err := readUint64(r)
	if err != nil {
		return v, err
	}
	signedVP, err := readUint64(r)
	if err != nil {
		return v, err
	}
	n, err := readUint32(r)
	if err != nil {
		return v, err
	}
	slots := make([]Slot, n)
	for i := range slots {
		if _, err := r.Read(slots[i].Pubkey[:]); err != nil {
			return v, err
		}
		if slots[i].VotingPower, err = readUint64(r); err != nil {
			return v, err
		}
		has, err := r.ReadByte()
		if err != nil {
			return v, err
		}
		if has == 1 {
			var sig Signature
			if _, err := r.Read(sig[:]); err != nil {
				return v, err
			}
			slots[i].Signature = &sig
		}
	}
	var message [32]byte
	if _, err := r.Read(message[:]); err != nil {
		return v, err
	}

	msg, err := decodeOutMessageArgs(r)
	if err != nil {
		return v, err
	}

	v.Sigs = &ThresholdSig{
		Message:   message,
		Threshold: threshold,
		Slots:     slots,
		SignedVP:  signedVP,
	}
	v.Msg = msg
	return v, nil
}

func (c outMessageCodec) EncodeJSON(v OutMessage) ([]byte, error) { return json.Marshal(v) }
func (c outMessageCodec) DecodeJSON(b []byte) (OutMessage, error) {
	var v OutMessage
	err := json.Unmarshal(b, &v)
	return v, err
}
func (outMessageCodec) Stringify(v OutMessage) string { return fmt.Sprintf("%+v", v) }
func (outMessageCodec) ValueType() string              { return "bridge.OutMessage" }

type pendingReturnCodec struct{}

func (pendingReturnCodec) Encode(v PendingReturn) ([]byte, error) {
	var buf bytes.Buffer
	dest := v.Dest.NativeAccount
	writeBytes(&buf, dest)
	writeUint64(&buf, v.Coins.Amount)
	return buf.Bytes(), nil
}

func (pendingReturnCodec) Decode(b []byte) (PendingReturn, error) {
	var v PendingReturn
	r := bytes.NewReader(b)

	addr, err := readBytes(r)
	if err != nil {
		return v, err
	}
	v.Dest = Dest{NativeAccount: sdk.AccAddress(addr)}

	amt, err := readUint64(r)
	if err != nil {
		return v, err
	}
	v.Coins = Coin{Amount: amt}
	return v, nil
}

func (c pendingReturnCodec) EncodeJSON(v PendingReturn) ([]byte, error) { return json.Marshal(v) }
func (c pendingReturnCodec) DecodeJSON(b []byte) (PendingReturn, error) {
	var v PendingReturn
	err := json.Unmarshal(b, &v)
	return v, err
}
func (pendingReturnCodec) Stringify(v PendingReturn) string { return fmt.Sprintf("%+v", v) }
func (pendingReturnCodec) ValueType() string                { return "bridge.PendingReturn" }
