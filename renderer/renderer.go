// Package renderer turns book state into markdown reports. It only reads
// snapshots handed to it and never touches the book itself, so a report can
// be rendered at any point without interfering with the engine.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/finbook/finbook"
)

// TransactionsMarkdown renders transactions in the order given, resolving
// account and party names against the book. Pass b.Transactions() or any
// slice of it.
func TransactionsMarkdown(b *finbook.Book, txs []finbook.Transaction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Transactions\n\n")

	if len(txs) == 0 {
		fmt.Fprintln(&sb, "No transactions recorded.")
		return sb.String()
	}

	fmt.Fprintln(&sb, "| Date | Kind | Description | Account | Party | Impact |")
	fmt.Fprintln(&sb, "|:---|:---|:---|:---|:---|---:|")
	for _, tx := range txs {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			tx.Date,
			tx.Kind,
			tx.Description,
			accountName(b, tx.Account),
			partyName(b, tx.Party),
			tx.AccountDelta().SignedString(),
		)
	}
	return sb.String()
}

// HoldingsMarkdown renders the current investment positions with their
// weighted average cost and both realized and unrealized P/L. Closed
// positions are listed separately, keeping only their realized result.
func HoldingsMarkdown(b *finbook.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Holdings\n\n")

	assets := b.Assets()
	if len(assets) == 0 {
		fmt.Fprintln(&sb, "No assets declared.")
		return sb.String()
	}

	active := newSection(func(w io.Writer) {
		fmt.Fprintln(w, "| Asset | Quantity | Avg Cost | Mark | Realized | Unrealized |")
		fmt.Fprintln(w, "|:---|---:|---:|---:|---:|---:|")
	})
	closed := newSection(func(w io.Writer) {
		fmt.Fprint(w, "\n## Closed Positions\n\n")
		fmt.Fprintln(w, "| Asset | Realized |")
		fmt.Fprintln(w, "|:---|---:|")
	})

	for _, a := range assets {
		if a.Status == finbook.StatusClosed {
			closed.printHeader(&sb)
			fmt.Fprintf(&sb, "| %s | %s |\n", a.Name, a.RealizedPL.SignedString())
			continue
		}
		active.printHeader(&sb)
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			a.Name,
			a.Quantity,
			a.AvgCost,
			a.MarkPrice,
			a.RealizedPL.SignedString(),
			a.UnrealizedPL().SignedString(),
		)
	}
	return sb.String()
}

// SummaryMarkdown renders the whole book at a glance: account balances,
// party balances and the investment totals.
func SummaryMarkdown(b *finbook.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Summary\n\n")

	fmt.Fprint(&sb, "## Accounts\n\n")
	fmt.Fprintln(&sb, "| Account | Type | Balance |")
	fmt.Fprintln(&sb, "|:---|:---|---:|")
	total := finbook.M(0, b.Currency())
	for _, a := range b.Accounts() {
		total = total.Add(a.Balance)
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", a.Name, a.Type, a.Balance)
	}
	fmt.Fprintf(&sb, "| **Total** | | **%s** |\n", total)

	parties := newSection(func(w io.Writer) {
		fmt.Fprint(w, "\n## Parties\n\n")
		fmt.Fprintln(w, "| Party | Balance |")
		fmt.Fprintln(w, "|:---|---:|")
	})
	for _, p := range b.Parties() {
		parties.printHeader(&sb)
		fmt.Fprintf(&sb, "| %s | %s |\n", p.Name, p.Balance.SignedString())
	}

	assets := b.Assets()
	if len(assets) > 0 {
		fmt.Fprint(&sb, "\n## Investments\n\n")
		fmt.Fprintln(&sb, "| Asset | Market Value | Realized | Unrealized |")
		fmt.Fprintln(&sb, "|:---|---:|---:|---:|")
		value := finbook.M(0, b.Currency())
		realized := finbook.M(0, b.Currency())
		unrealized := finbook.M(0, b.Currency())
		for _, a := range assets {
			mv := a.MarkPrice.Mul(a.Quantity)
			value = value.Add(mv)
			realized = realized.Add(a.RealizedPL)
			unrealized = unrealized.Add(a.UnrealizedPL())
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				a.Name, mv, a.RealizedPL.SignedString(), a.UnrealizedPL().SignedString())
		}
		fmt.Fprintf(&sb, "| **Total** | **%s** | **%s** | **%s** |\n",
			value, realized.SignedString(), unrealized.SignedString())
	}
	return sb.String()
}

// HistoryMarkdown renders the trade history of one asset in replay order.
func HistoryMarkdown(b *finbook.Book, asset finbook.Asset) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", asset.Name)
	fmt.Fprintf(&sb, "Status: %s\n\n", asset.Status)

	history := asset.History()
	if len(history) == 0 {
		fmt.Fprintln(&sb, "No trades recorded.")
		return sb.String()
	}
	fmt.Fprintln(&sb, "| Date | Kind | Quantity | Price | Charges |")
	fmt.Fprintln(&sb, "|:---|:---|---:|---:|---:|")
	for _, tr := range history {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			tr.Date, tr.Kind, tr.Quantity, tr.Price, tr.Charges)
	}
	fmt.Fprintf(&sb, "\nHolding %s at an average cost of %s. Realized P/L %s.\n",
		asset.Quantity, asset.AvgCost, asset.RealizedPL.SignedString())
	return sb.String()
}

func accountName(b *finbook.Book, id string) string {
	if a, ok := b.Account(id); ok {
		return a.Name
	}
	return id
}

func partyName(b *finbook.Book, id string) string {
	if id == "" {
		return ""
	}
	if p, ok := b.Party(id); ok {
		return p.Name
	}
	return id
}
