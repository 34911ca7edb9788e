package finbook

import (
	"errors"
	"testing"
)

func newInvestmentBook(t *testing.T) (*Book, Account, Asset) {
	t.Helper()
	b := NewBook("USD")
	account, err := b.AddAccount("broker", "bank", M(10000, "USD"))
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	asset, err := b.AddAsset("ACME", "stock")
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	if asset.Status != StatusClosed {
		t.Fatalf("fresh asset status = %s, want closed", asset.Status)
	}
	return b, account, asset
}

func TestExecuteTrade_BuyThenSell(t *testing.T) {
	b, account, asset := newInvestmentBook(t)

	res, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"), Charges: M(10, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("ExecuteTrade(buy): %v", err)
	}
	if !res.Asset.Quantity.Equal(Q(10)) || !res.Asset.AvgCost.Equal(M(101, "USD")) {
		t.Errorf("after buy: qty=%s avgCost=%s, want 10 and 101", res.Asset.Quantity, res.Asset.AvgCost.value)
	}
	if res.Asset.Status != StatusActive {
		t.Errorf("after buy: status = %s, want active", res.Asset.Status)
	}
	// linked transaction: expense of 10*100+10 on the settlement account
	if res.Transaction.Kind != Expense {
		t.Errorf("linked tx kind = %s, want expense", res.Transaction.Kind)
	}
	if !res.Transaction.Amount.Equal(M(1010, "USD")) {
		t.Errorf("linked tx amount = %s, want 1010", res.Transaction.Amount.value)
	}
	if !res.Account.Balance.Equal(M(8990, "USD")) {
		t.Errorf("account balance = %s, want 8990", res.Account.Balance.value)
	}

	res, err = b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-02-01"), Kind: SellTrade,
		Quantity: Q(4), Price: M(150, "USD"), Charges: M(5, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("ExecuteTrade(sell): %v", err)
	}
	if !res.Asset.RealizedPL.Equal(M(191, "USD")) {
		t.Errorf("realized = %s, want 191", res.Asset.RealizedPL.value)
	}
	// linked transaction: income of 4*150-5
	if res.Transaction.Kind != Income {
		t.Errorf("linked tx kind = %s, want income", res.Transaction.Kind)
	}
	if !res.Transaction.Amount.Equal(M(595, "USD")) {
		t.Errorf("linked tx amount = %s, want 595", res.Transaction.Amount.value)
	}
	if !res.Account.Balance.Equal(M(9585, "USD")) {
		// 10000 - 1010 + 595
		t.Errorf("account balance = %s, want 9585", res.Account.Balance.value)
	}
}

func TestExecuteTrade_Validation(t *testing.T) {
	b, account, asset := newInvestmentBook(t)
	day := MustParse("2025-01-10")

	testCases := []struct {
		name    string
		assetID string
		trade   Trade
		account string
		want    error
	}{
		{
			name:    "unknown asset",
			assetID: "nope",
			trade:   Trade{Date: day, Kind: BuyTrade, Quantity: Q(1), Price: M(1, "USD")},
			account: account.ID,
			want:    ErrNotFound,
		},
		{
			name:    "zero quantity",
			assetID: asset.ID,
			trade:   Trade{Date: day, Kind: BuyTrade, Quantity: Q(0), Price: M(1, "USD")},
			account: account.ID,
			want:    ErrValidation,
		},
		{
			name:    "zero price",
			assetID: asset.ID,
			trade:   Trade{Date: day, Kind: BuyTrade, Quantity: Q(1), Price: M(0, "USD")},
			account: account.ID,
			want:    ErrValidation,
		},
		{
			name:    "negative charges",
			assetID: asset.ID,
			trade:   Trade{Date: day, Kind: BuyTrade, Quantity: Q(1), Price: M(1, "USD"), Charges: M(-1, "USD")},
			account: account.ID,
			want:    ErrValidation,
		},
		{
			name:    "missing date",
			assetID: asset.ID,
			trade:   Trade{Kind: BuyTrade, Quantity: Q(1), Price: M(1, "USD")},
			account: account.ID,
			want:    ErrValidation,
		},
		{
			name:    "unresolved settlement account",
			assetID: asset.ID,
			trade:   Trade{Date: day, Kind: BuyTrade, Quantity: Q(1), Price: M(1, "USD")},
			account: "nope",
			want:    ErrReferentialIntegrity,
		},
		{
			name:    "oversell is rejected",
			assetID: asset.ID,
			trade:   Trade{Date: day, Kind: SellTrade, Quantity: Q(1), Price: M(1, "USD")},
			account: account.ID,
			want:    ErrInsufficientHolding,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := b.ExecuteTrade(tc.assetID, tc.trade, tc.account); !errors.Is(err, tc.want) {
				t.Fatalf("ExecuteTrade error = %v, want %v", err, tc.want)
			}
			got, _ := b.Account(account.ID)
			if !got.Balance.Equal(M(10000, "USD")) {
				t.Errorf("balance mutated to %s on a rejected trade", got.Balance.value)
			}
			gotAsset, _ := b.Asset(asset.ID)
			if len(gotAsset.History()) != 0 {
				t.Error("rejected trade reached the history")
			}
		})
	}
}

func TestExecuteTrade_ZeroNetImpactRejected(t *testing.T) {
	b, account, asset := newInvestmentBook(t)
	// First hold something to sell.
	if _, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade, Quantity: Q(10), Price: M(10, "USD"),
	}, account.ID); err != nil {
		t.Fatalf("buy: %v", err)
	}
	// Sell where charges swallow the entire proceeds: 2*10 - 20 = 0.
	_, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-02-01"), Kind: SellTrade,
		Quantity: Q(2), Price: M(10, "USD"), Charges: M(20, "USD"),
	}, account.ID)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ExecuteTrade error = %v, want ErrValidation", err)
	}
	gotAsset, _ := b.Asset(asset.ID)
	if len(gotAsset.History()) != 1 {
		t.Error("rejected sell reached the history")
	}
}

func TestExecuteTrade_AmendDoesNotDoubleCount(t *testing.T) {
	b, account, asset := newInvestmentBook(t)

	res, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"), Charges: M(10, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	tradeID := res.Transaction.ID

	// Amend the same trade three times; only the last version may count.
	for _, price := range []float64{110, 120, 90} {
		res, err = b.ExecuteTrade(asset.ID, Trade{
			ID: tradeID, Date: MustParse("2025-01-10"), Kind: BuyTrade,
			Quantity: Q(10), Price: M(price, "USD"), Charges: M(10, "USD"),
		}, account.ID)
		if err != nil {
			t.Fatalf("amend @ %v: %v", price, err)
		}
	}

	if got := len(res.Asset.History()); got != 1 {
		t.Fatalf("history length = %d, want 1 after amendments", got)
	}
	if !res.Asset.AvgCost.Equal(M(91, "USD")) {
		// 10*90+10 over 10 units
		t.Errorf("avgCost = %s, want 91", res.Asset.AvgCost.value)
	}
	if !res.Account.Balance.Equal(M(9090, "USD")) {
		// 10000 - (10*90+10): earlier versions fully reversed
		t.Errorf("account balance = %s, want 9090", res.Account.Balance.value)
	}
	if txs := b.Transactions(); len(txs) != 1 {
		t.Fatalf("transaction count = %d, want the single linked transaction", len(txs))
	}
	checkInvariant(t, b)
}

func TestExecuteTrade_IDCollidingWithTransaction(t *testing.T) {
	b, account, asset := newInvestmentBook(t)

	// A plain ledger entry that happens to share the id a caller later
	// hands to ExecuteTrade. It must survive untouched.
	salary, err := b.Record(Transaction{
		ID: "payday", Kind: Income, Date: MustParse("2025-01-05"),
		Description: "january salary", Amount: M(5000, "USD"), Account: account.ID,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	_, err = b.ExecuteTrade(asset.ID, Trade{
		ID: "payday", Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"),
	}, account.ID)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ExecuteTrade error = %v, want ErrValidation", err)
	}
	got, ok := b.Transaction("payday")
	if !ok || !got.Equal(salary) {
		t.Errorf("income transaction altered by the rejected trade: %+v", got)
	}
	gotAsset, _ := b.Asset(asset.ID)
	if len(gotAsset.History()) != 0 {
		t.Error("rejected trade reached the history")
	}
	checkInvariant(t, b)
}

func TestExecuteTrade_RetroactiveEditRipples(t *testing.T) {
	b, account, asset := newInvestmentBook(t)

	first, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	sold, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-02-01"), Kind: SellTrade,
		Quantity: Q(5), Price: M(150, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	before := sold.Asset.RealizedPL

	// Retroactively cheapen the original buy.
	res, err := b.ExecuteTrade(asset.ID, Trade{
		ID: first.Transaction.ID, Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(80, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("amend: %v", err)
	}
	if res.Asset.RealizedPL.Equal(before) {
		t.Fatal("realized P/L unchanged after retroactively editing the earliest buy")
	}
	if !res.Asset.RealizedPL.Equal(M(350, "USD")) {
		t.Errorf("realized = %s, want 350", res.Asset.RealizedPL.value)
	}
	checkInvariant(t, b)
}

func TestDeleteTrade(t *testing.T) {
	b, account, asset := newInvestmentBook(t)

	res, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"), Charges: M(10, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if err := b.DeleteTrade(asset.ID, res.Transaction.ID); err != nil {
		t.Fatalf("DeleteTrade: %v", err)
	}
	gotAsset, _ := b.Asset(asset.ID)
	if len(gotAsset.History()) != 0 || gotAsset.Status != StatusClosed {
		t.Errorf("asset not reset: history=%d status=%s", len(gotAsset.History()), gotAsset.Status)
	}
	got, _ := b.Account(account.ID)
	if !got.Balance.Equal(M(10000, "USD")) {
		t.Errorf("account balance = %s, want restored 10000", got.Balance.value)
	}
	if len(b.Transactions()) != 0 {
		t.Error("linked transaction survived the trade deletion")
	}

	if err := b.DeleteTrade(asset.ID, res.Transaction.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTrade error = %v, want ErrNotFound", err)
	}
}

func TestDeleteTrade_MissingLinkedTransaction(t *testing.T) {
	b, account, asset := newInvestmentBook(t)

	res, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"), Charges: M(10, "USD"),
	}, account.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	// Remove the cash entry straight through the ledger, stranding the trade.
	if err := b.Delete(res.Transaction.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := b.DeleteTrade(asset.ID, res.Transaction.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteTrade error = %v, want ErrNotFound", err)
	}
	gotAsset, _ := b.Asset(asset.ID)
	if got := len(gotAsset.History()); got != 1 {
		t.Fatalf("history length = %d after a failed DeleteTrade, want 1", got)
	}
	if !gotAsset.Quantity.Equal(Q(10)) || gotAsset.Status != StatusActive {
		t.Errorf("asset mutated by a failed DeleteTrade: qty=%s status=%s",
			gotAsset.Quantity, gotAsset.Status)
	}
}

func TestSetMarkPrice(t *testing.T) {
	b, account, asset := newInvestmentBook(t)
	if _, err := b.ExecuteTrade(asset.ID, Trade{
		Date: MustParse("2025-01-10"), Kind: BuyTrade,
		Quantity: Q(10), Price: M(100, "USD"), Charges: M(10, "USD"),
	}, account.ID); err != nil {
		t.Fatalf("buy: %v", err)
	}

	got, err := b.SetMarkPrice(asset.ID, M(110, "USD"))
	if err != nil {
		t.Fatalf("SetMarkPrice: %v", err)
	}
	if !got.MarkPrice.Equal(M(110, "USD")) {
		t.Errorf("mark = %s, want 110", got.MarkPrice.value)
	}
	if !got.UnrealizedPL().Equal(M(90, "USD")) {
		// (110 - 101) * 10
		t.Errorf("unrealized = %s, want 90", got.UnrealizedPL().value)
	}
	if !got.AvgCost.Equal(M(101, "USD")) {
		t.Errorf("avgCost = %s, must be untouched by a mark", got.AvgCost.value)
	}

	if _, err := b.SetMarkPrice(asset.ID, M(-1, "USD")); !errors.Is(err, ErrValidation) {
		t.Errorf("negative mark error = %v, want ErrValidation", err)
	}
	if _, err := b.SetMarkPrice("nope", M(1, "USD")); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown asset error = %v, want ErrNotFound", err)
	}
}
