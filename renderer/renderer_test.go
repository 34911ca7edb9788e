package renderer

import (
	"strings"
	"testing"

	"github.com/finbook/finbook"
)

func newTestBook(t *testing.T) *finbook.Book {
	t.Helper()
	b := finbook.NewBook("USD")
	account, err := b.AddAccount("checking", "bank", finbook.M(1000, "USD"))
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	party, err := b.AddParty("acme")
	if err != nil {
		t.Fatalf("AddParty: %v", err)
	}
	if _, err := b.Record(finbook.Transaction{
		Kind:        finbook.Sale,
		Date:        finbook.MustParse("2025-03-01"),
		Amount:      finbook.M(300, "USD"),
		Account:     account.ID,
		Party:       party.ID,
		Description: "consulting invoice",
	}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	return b
}

func TestTransactionsMarkdown(t *testing.T) {
	b := newTestBook(t)
	got := TransactionsMarkdown(b, b.Transactions())

	for _, want := range []string{
		"# Transactions",
		"| 2025-03-01 | sale | consulting invoice | checking | acme |",
		"+$300.00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report is missing %q:\n%s", want, got)
		}
	}
}

func TestTransactionsMarkdown_Empty(t *testing.T) {
	empty := finbook.NewBook("USD")
	got := TransactionsMarkdown(empty, empty.Transactions())
	if !strings.Contains(got, "No transactions recorded.") {
		t.Errorf("empty report = %q", got)
	}
}

func TestHoldingsMarkdown(t *testing.T) {
	b := newTestBook(t)
	account, _ := b.AccountByName("checking")
	open, err := b.AddAsset("ACME Corp", "stock")
	if err != nil {
		t.Fatalf("AddAsset: %v", err)
	}
	gone, _ := b.AddAsset("Defunct Inc", "stock")

	if _, err := b.ExecuteTrade(open.ID, finbook.Trade{
		Date: finbook.MustParse("2025-01-10"), Kind: finbook.BuyTrade,
		Quantity: finbook.Q(10), Price: finbook.M(100, "USD"), Charges: finbook.M(10, "USD"),
	}, account.ID); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := b.ExecuteTrade(gone.ID, finbook.Trade{
		Date: finbook.MustParse("2025-01-10"), Kind: finbook.BuyTrade,
		Quantity: finbook.Q(2), Price: finbook.M(50, "USD"),
	}, account.ID); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := b.ExecuteTrade(gone.ID, finbook.Trade{
		Date: finbook.MustParse("2025-02-01"), Kind: finbook.SellTrade,
		Quantity: finbook.Q(2), Price: finbook.M(60, "USD"),
	}, account.ID); err != nil {
		t.Fatalf("sell: %v", err)
	}

	got := HoldingsMarkdown(b)
	for _, want := range []string{
		"# Holdings",
		"| ACME Corp | 10 | $101.00 |",
		"## Closed Positions",
		"| Defunct Inc | +$20.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report is missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryMarkdown(t *testing.T) {
	b := newTestBook(t)
	got := SummaryMarkdown(b)

	for _, want := range []string{
		"## Accounts",
		"| checking | bank | $1,300.00 |",
		"| **Total** | | **$1,300.00** |",
		"## Parties",
		"| acme | +$300.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report is missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "## Investments") {
		t.Error("investment section rendered with no assets")
	}
}

func TestHistoryMarkdown(t *testing.T) {
	b := newTestBook(t)
	account, _ := b.AccountByName("checking")
	asset, _ := b.AddAsset("ACME Corp", "stock")
	if _, err := b.ExecuteTrade(asset.ID, finbook.Trade{
		Date: finbook.MustParse("2025-01-10"), Kind: finbook.BuyTrade,
		Quantity: finbook.Q(10), Price: finbook.M(100, "USD"), Charges: finbook.M(10, "USD"),
	}, account.ID); err != nil {
		t.Fatalf("buy: %v", err)
	}

	full, _ := b.Asset(asset.ID)
	got := HistoryMarkdown(b, full)
	for _, want := range []string{
		"# ACME Corp",
		"Status: active",
		"| 2025-01-10 | buy | 10 | $100.00 | $10.00 |",
		"Holding 10 at an average cost of $101.00.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report is missing %q:\n%s", want, got)
		}
	}
}
