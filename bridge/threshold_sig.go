package bridge

import errorsmod "cosmossdk.io/errors"

// Signature is a compact 64-byte (r,s) secp256k1 signature, low-S normalized
// at signing time. The recovery ID needed to submit it to the EVM contract
// is not stored here (see ToEthSig), since it is cheap to recompute and
// keeping it out of state keeps accumulation independent of which recovery
// ID a given signer's implementation happened to produce.
type Signature = [64]byte

// Pubkey is a compressed secp256k1 public key.
type Pubkey = [33]byte

// Slot tracks one signatory's accumulated (or pending) signature over a
// ThresholdSig's message.
type Slot struct {
	Pubkey      Pubkey
	VotingPower uint64
	Signature   *Signature
}

// ThresholdSig accumulates per-signatory signatures over a single message
// until the signed voting power crosses Threshold. The signatory set (and
// therefore the slot list and each slot's voting power) is fixed at
// construction; only Message and the per-slot Signature mutate afterward.
type ThresholdSig struct {
	Message   [32]byte
	Threshold uint64
	Slots     []Slot
	SignedVP  uint64

	messageSet bool
}

// NewThresholdSig builds an (unsigned, message-less) ThresholdSig over the
// given signatory set, with the required quorum set to 2/3 of u32 max.
func NewThresholdSig(sigset *SignatorySet) *ThresholdSig {
	slots := make([]Slot, len(sigset.Signatories))
	for i, s := range sigset.Signatories {
		slots[i] = Slot{Pubkey: s.Pubkey, VotingPower: s.VotingPower}
	}
	return &ThresholdSig{
		Threshold: thresholdVP(),
		Slots:     slots,
	}
}

func thresholdVP() uint64 {
	// floor(2/3 * uint32 max), the quorum every valset is normalized against.
	return (uint64(1)<<32 - 1) * 2 / 3
}

// SetMessage fixes the digest this ThresholdSig accumulates signatures
// over. It may be set exactly once.
func (t *ThresholdSig) SetMessage(msg [32]byte) error {
	if t.messageSet {
		return errorsmod.Wrap(ErrConflict, "threshold signature message already set")
	}
	t.Message = msg
	t.messageSet = true
	return nil
}

func (t *ThresholdSig) findSlot(pubkey Pubkey) (int, bool) {
	for i := range t.Slots {
		if t.Slots[i].Pubkey == pubkey {
			return i, true
		}
	}
	return -1, false
}

// NeedsSig reports whether pubkey is a signatory in this set that has not
// yet signed. Unknown pubkeys report false, matching the reference
// implementation's "not a signatory" is not the same error condition as
// "already signed".
func (t *ThresholdSig) NeedsSig(pubkey Pubkey) bool {
	i, ok := t.findSlot(pubkey)
	if !ok {
		return false
	}
	return t.Slots[i].Signature == nil
}

// Signed reports whether the accumulated signed voting power has crossed
// Threshold.
func (t *ThresholdSig) Signed() bool {
	return t.SignedVP >= t.Threshold
}

// Sign verifies sig against pubkey and Message, then records it in pubkey's
// slot. Rejects unknown pubkeys, already-signed slots, and signatures that
// fail verification.
func (t *ThresholdSig) Sign(pubkey Pubkey, sig Signature) error {
	i, ok := t.findSlot(pubkey)
	if !ok {
		return errorsmod.Wrap(ErrSignatureRejected, "pubkey is not a signatory in this set")
	}
	if t.Slots[i].Signature != nil {
		return errorsmod.Wrap(ErrSignatureRejected, "signatory has already signed")
	}

	ok, err := verifySignature(pubkey, t.Message, sig)
	if err != nil {
		return errorsmod.Wrap(ErrSignatureRejected, err.Error())
	}
	if !ok {
		return errorsmod.Wrap(ErrSignatureRejected, "signature does not verify")
	}

	s := sig
	t.Slots[i].Signature = &s
	t.SignedVP += t.Slots[i].VotingPower
	return nil
}
