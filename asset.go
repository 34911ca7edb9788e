package finbook

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// TradeKind is a typed string identifying the two trade kinds.
type TradeKind string

const (
	BuyTrade  TradeKind = "buy"
	SellTrade TradeKind = "sell"
)

// Valid reports whether k is a known trade kind.
func (k TradeKind) Valid() bool { return k == BuyTrade || k == SellTrade }

// ParseTradeKind parses a string into a TradeKind.
func ParseTradeKind(s string) (TradeKind, error) {
	k := TradeKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown trade kind %q", ErrValidation, s)
	}
	return k, nil
}

// Trade is a single buy or sell in an asset's history.
type Trade struct {
	ID       string
	Date     Date
	Kind     TradeKind
	Quantity Quantity // units traded, strictly positive
	Price    Money    // per unit, strictly positive
	Charges  Money    // brokerage and fees, never negative

	seq int // insertion order, the stable tie-break for same-day trades
}

// MarshalJSON implements the json.Marshaler interface for Trade with a
// stable field order.
func (t Trade) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("kind", t.Kind)
	w.Append("date", t.Date)
	w.Append("quantity", t.Quantity)
	w.Append("price", t.Price)
	w.Optional("charges", t.Charges)
	return w.MarshalJSON()
}

// AssetStatus tells whether an asset is currently held.
type AssetStatus string

const (
	StatusActive AssetStatus = "active"
	StatusClosed AssetStatus = "closed"
)

// Asset is an investable holding. Quantity, AvgCost, RealizedPL and Status
// are derived by replaying the complete trade history; only Name, Category
// and MarkPrice are set directly.
type Asset struct {
	ID        string
	Name      string
	Category  string // free-form: "stock", "fund", "gold"...
	MarkPrice Money  // latest known unit price, display only

	// Derived by replay, never set directly.
	Quantity   Quantity
	AvgCost    Money // weighted-average acquisition price per unit
	RealizedPL Money
	Status     AssetStatus

	history []Trade
}

// History returns a copy of the trade history in replay order
// (date ascending, insertion order as the tie-break).
func (a Asset) History() []Trade {
	return sortedHistory(a.history)
}

// UnrealizedPL returns the paper gain or loss of the current holding against
// the mark price. It is recomputed for display and never stored.
func (a Asset) UnrealizedPL() Money {
	return a.MarkPrice.Sub(a.AvgCost).Mul(a.Quantity)
}

// MarshalJSON implements the json.Marshaler interface for Asset. Derived
// fields are not persisted; trades are encoded as separate records so their
// insertion order survives a round trip.
func (a Asset) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("name", a.Name)
	w.Optional("category", a.Category)
	if !a.MarkPrice.IsZero() {
		w.Append("mark", a.MarkPrice)
	}
	return w.MarshalJSON()
}

// position is the derived state of a trade history.
type position struct {
	qty      Quantity
	avgCost  Money
	realized Money
	status   AssetStatus
}

// sortedHistory returns the trades sorted by date ascending, with the
// original insertion order as a stable tie-break for same-day trades.
func sortedHistory(history []Trade) []Trade {
	sorted := make([]Trade, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date == sorted[j].Date {
			return sorted[i].seq < sorted[j].seq
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// replay derives a position from a raw trade history with the
// weighted-average-cost method. It is a pure function of the history alone:
// it ignores any previously derived state, so running it twice on the same
// history always yields the same position.
//
// Replaying the full history on every mutation costs O(n) but makes a
// retroactive edit of any trade automatically flow into the average cost used
// by every later sell.
func replay(history []Trade) position {
	var qty Quantity
	var costBasis, realized Money
	for _, h := range sortedHistory(history) {
		switch h.Kind {
		case BuyTrade:
			costBasis = costBasis.Add(h.Price.Mul(h.Quantity)).Add(h.Charges)
			qty = qty.Add(h.Quantity)
		case SellTrade:
			var avgCostNow Money
			if qty.IsPositive() {
				avgCostNow = costBasis.Div(qty)
			}
			realized = realized.Add(h.Price.Sub(avgCostNow).Mul(h.Quantity)).Sub(h.Charges)
			costBasis = costBasis.Sub(avgCostNow.Mul(h.Quantity))
			qty = qty.Sub(h.Quantity)
		}
	}
	if qty.IsNegative() {
		qty = Q(0)
	}
	p := position{qty: qty, realized: realized, status: StatusClosed}
	if qty.IsPositive() {
		p.avgCost = costBasis.Div(qty)
		p.status = StatusActive
	}
	return p
}

// recompute replays the asset's history into its derived fields.
func (a *Asset) recompute(currency string) {
	p := replay(a.history)
	a.Quantity = p.qty
	a.AvgCost = M(p.avgCost.value, currency)
	a.RealizedPL = M(p.realized.value, currency)
	a.Status = p.status
}

// AddAsset registers a new investable asset and returns it. A fresh asset
// has an empty history, so it starts closed.
func (b *Book) AddAsset(name, category string) (Asset, error) {
	if name == "" {
		return Asset{}, fmt.Errorf("%w: asset name is missing", ErrValidation)
	}
	a := &Asset{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
	}
	a.recompute(b.currency)
	b.assets[a.ID] = a
	return b.assetCopy(a), nil
}

// Asset returns a copy of the asset with this id, with a cloned history.
func (b *Book) Asset(id string) (Asset, bool) {
	a, ok := b.assets[id]
	if !ok {
		return Asset{}, false
	}
	return b.assetCopy(a), true
}

// Assets returns copies of all assets, sorted by name.
func (b *Book) Assets() []Asset {
	return b.sortedAssets()
}

// assetCopy returns a value copy with its own history slice, so callers can
// never reach the live history through a snapshot.
func (b *Book) assetCopy(a *Asset) Asset {
	cp := *a
	cp.history = make([]Trade, len(a.history))
	copy(cp.history, a.history)
	return cp
}
