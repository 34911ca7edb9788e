package finbook

import (
	"fmt"

	"github.com/google/uuid"
)

// The investment cost-basis engine. Every trade mutation appends to (or
// rewrites) the asset's history and then replays it in full; the matching
// cash movement is pushed through the ledger as a linked transaction sharing
// the trade's id, so amending a trade amends its cash entry through the
// reversal path instead of a raw balance write.

// TradeResult is the state snapshot returned by ExecuteTrade: the replayed
// asset, the settled account, and the linked cash transaction.
type TradeResult struct {
	Asset       Asset
	Account     Account
	Transaction Transaction
}

// checkTrade validates a trade input and applies quick fixes (id generation,
// currency defaulting). It mutates only the trade, never the book.
func (b *Book) checkTrade(trade *Trade) error {
	if !trade.Kind.Valid() {
		return fmt.Errorf("%w: unknown trade kind %q", ErrValidation, trade.Kind)
	}
	if trade.Date.IsZero() {
		return fmt.Errorf("%w: trade date is missing", ErrValidation)
	}
	if !trade.Quantity.IsPositive() {
		return fmt.Errorf("%w: trade quantity must be positive, got %s", ErrValidation, trade.Quantity)
	}
	if !trade.Price.IsPositive() {
		return fmt.Errorf("%w: trade price must be positive, got %s", ErrValidation, trade.Price)
	}
	if trade.Charges.IsNegative() {
		return fmt.Errorf("%w: trade charges cannot be negative, got %s", ErrValidation, trade.Charges)
	}
	trade.Price = M(trade.Price.value, b.currency)
	trade.Charges = M(trade.Charges.value, b.currency)
	return nil
}

// netImpact returns the signed-free cash amount of a trade: the gross value
// plus charges for a buy (cash out), minus charges for a sell (cash in).
func netImpact(trade Trade) Money {
	gross := trade.Price.Mul(trade.Quantity)
	if trade.Kind == BuyTrade {
		return gross.Add(trade.Charges)
	}
	return gross.Sub(trade.Charges)
}

// linkedKind maps a trade kind to the kind of its linked cash transaction.
func linkedKind(k TradeKind) TxKind {
	if k == BuyTrade {
		return Expense
	}
	return Income
}

// ExecuteTrade records a buy or sell against the asset, replays the full
// history to derive quantity, average cost, realized P/L and status, and
// records (or amends) the linked cash transaction on the settlement account.
// When trade.ID matches an existing history entry the call is an amendment:
// the old entry is replaced and the linked transaction goes through the
// ledger's reverse-then-apply path, so repeated amendments of the same trade
// never double-count.
//
// All validation happens before any mutation: a rejected trade leaves the
// book untouched.
func (b *Book) ExecuteTrade(assetID string, trade Trade, settlementAccount string) (TradeResult, error) {
	asset, ok := b.assets[assetID]
	if !ok {
		return TradeResult{}, fmt.Errorf("%w: asset %q", ErrNotFound, assetID)
	}
	if err := b.checkTrade(&trade); err != nil {
		return TradeResult{}, err
	}
	if _, ok := b.accounts[settlementAccount]; !ok {
		return TradeResult{}, fmt.Errorf("%w: settlement account %q does not resolve", ErrReferentialIntegrity, settlementAccount)
	}
	if trade.Kind == SellTrade && asset.Quantity.LessThan(trade.Quantity) {
		return TradeResult{}, fmt.Errorf("%w: cannot sell %s of %s, holding is %s",
			ErrInsufficientHolding, trade.Quantity, asset.Name, asset.Quantity)
	}
	net := netImpact(trade)
	if net.IsZero() {
		// The linked transaction must carry a positive amount; charges that
		// consume the entire proceeds leave nothing to record.
		return TradeResult{}, fmt.Errorf("%w: trade has no net cash impact", ErrValidation)
	}

	// An id matching an existing history entry makes this an amendment. An
	// id that instead collides with an unrelated transaction would clobber
	// that transaction through the Amend below, so it is rejected first.
	at := -1
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	} else {
		for i, h := range asset.history {
			if h.ID == trade.ID {
				at = i
				break
			}
		}
		if at < 0 {
			if _, taken := b.transactions[trade.ID]; taken {
				return TradeResult{}, fmt.Errorf("%w: id %q already names a transaction", ErrValidation, trade.ID)
			}
		}
	}

	// On an amendment, drop the old entry before appending the new one: the
	// amended trade re-enters at the end of its day's tie-break order.
	if at >= 0 {
		asset.history = append(asset.history[:at], asset.history[at+1:]...)
	}
	trade.seq = b.nextSeq()
	asset.history = append(asset.history, trade)
	asset.recompute(b.currency)

	linked := Transaction{
		ID:          trade.ID,
		Kind:        linkedKind(trade.Kind),
		Date:        trade.Date,
		Description: fmt.Sprintf("%s %s %s", trade.Kind, trade.Quantity, asset.Name),
		Category:    "investment",
		Amount:      net.Abs(),
		Account:     settlementAccount,
	}
	var tx Transaction
	var err error
	if _, exists := b.transactions[trade.ID]; exists {
		tx, err = b.Amend(trade.ID, linked)
	} else {
		tx, err = b.Record(linked)
	}
	if err != nil {
		// Unreachable after the validations above, but never swallowed.
		return TradeResult{}, err
	}

	account, _ := b.Account(settlementAccount)
	return TradeResult{Asset: b.assetCopy(asset), Account: account, Transaction: tx}, nil
}

// DeleteTrade removes the trade from the asset's history, replays the
// remaining history, and deletes the linked cash transaction through the
// ledger's reversal path.
func (b *Book) DeleteTrade(assetID, tradeID string) error {
	asset, ok := b.assets[assetID]
	if !ok {
		return fmt.Errorf("%w: asset %q", ErrNotFound, assetID)
	}
	at := -1
	for i, h := range asset.history {
		if h.ID == tradeID {
			at = i
			break
		}
	}
	if at < 0 {
		return fmt.Errorf("%w: trade %q on asset %s", ErrNotFound, tradeID, asset.Name)
	}
	// The linked transaction is resolved before the history is touched: a
	// failing delete must leave the asset exactly as it was.
	if _, ok := b.transactions[tradeID]; !ok {
		return fmt.Errorf("%w: linked transaction %q", ErrNotFound, tradeID)
	}
	asset.history = append(asset.history[:at], asset.history[at+1:]...)
	asset.recompute(b.currency)
	return b.Delete(tradeID)
}

// SetMarkPrice updates the asset's display price. It touches nothing else:
// unrealized P/L is computed from it on demand, never stored.
func (b *Book) SetMarkPrice(assetID string, price Money) (Asset, error) {
	asset, ok := b.assets[assetID]
	if !ok {
		return Asset{}, fmt.Errorf("%w: asset %q", ErrNotFound, assetID)
	}
	if price.IsNegative() {
		return Asset{}, fmt.Errorf("%w: mark price cannot be negative, got %s", ErrValidation, price)
	}
	asset.MarkPrice = M(price.value, b.currency)
	return b.assetCopy(asset), nil
}
