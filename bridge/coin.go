package bridge

import errorsmod "cosmossdk.io/errors"

// Coin is a minimal stand-in for the host's native token primitive, kept
// out of scope here. It carries just enough behavior (escrow-in,
// escrow-out, overflow/underflow checked) for the bridge core to reason
// about balances without depending on a specific host accounting module.
type Coin struct {
	Amount uint64
}

// Give moves other into the receiver, failing on overflow rather than
// wrapping silently.
func (c *Coin) Give(other Coin) error {
	sum := c.Amount + other.Amount
	if sum < c.Amount {
		return errorsmod.Wrap(ErrInvalidInput, "coin amount overflow")
	}
	c.Amount = sum
	return nil
}

// Take splits amount out of the receiver, failing if the escrowed balance
// is insufficient.
func (c *Coin) Take(amount uint64) (Coin, error) {
	if amount > c.Amount {
		return Coin{}, errorsmod.Wrap(ErrInsufficientBalance, "insufficient escrowed balance")
	}
	c.Amount -= amount
	return Coin{Amount: amount}, nil
}
