package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/finbook"
	"github.com/google/subcommands"
)

// recordCmd implements the four recording commands (income, expense, sale,
// purchase); they share flags and differ only in the transaction kind.
type recordCmd struct {
	kind finbook.TxKind

	date        string
	amount      float64
	account     string
	party       string
	description string
	category    string
	notes       string
}

func newRecordCmd(kind finbook.TxKind) *recordCmd {
	return &recordCmd{kind: kind}
}

func (c *recordCmd) Name() string { return string(c.kind) }
func (c *recordCmd) Synopsis() string {
	return fmt.Sprintf("record a %s transaction", c.kind)
}
func (c *recordCmd) Usage() string {
	return fmt.Sprintf(`fin %s -a <amount> -account <name> [-party <name>] [-d <date>] [-m <description>]

  Records a %s on the given account. Income and sale increase the account
  balance; expense and purchase decrease it.
`, c.kind, c.kind)
}

func (c *recordCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", finbook.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.Float64Var(&c.amount, "a", 0, "Amount, strictly positive")
	f.StringVar(&c.account, "account", "", "Name of the cash account")
	f.StringVar(&c.party, "party", "", "Name of the counterparty (optional)")
	f.StringVar(&c.description, "m", "", "A short description")
	f.StringVar(&c.category, "category", "", "Free-form category (e.g., 'groceries')")
	f.StringVar(&c.notes, "notes", "", "Longer free-form notes")
}

func (c *recordCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "Error: the -account flag is required.")
		return subcommands.ExitUsageError
	}
	date, err := finbook.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	account, ok := b.AccountByName(c.account)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no account named %q.\n", c.account)
		return subcommands.ExitUsageError
	}
	tx := finbook.Transaction{
		Kind:        c.kind,
		Date:        date,
		Amount:      finbook.M(c.amount, b.Currency()),
		Account:     account.ID,
		Description: c.description,
		Category:    c.category,
		Notes:       c.notes,
	}
	if c.party != "" {
		party, ok := partyByName(b, c.party)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no party named %q.\n", c.party)
			return subcommands.ExitUsageError
		}
		tx.Party = party.ID
	}

	recorded, err := b.Record(tx)
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	updated, _ := b.Account(account.ID)
	fmt.Printf("Recorded %s of %s on %s (id %s). %s balance: %s.\n",
		recorded.Kind, recorded.Amount, recorded.Date, recorded.ID, updated.Name, updated.Balance)
	return subcommands.ExitSuccess
}

func partyByName(b *finbook.Book, name string) (finbook.Party, bool) {
	for _, p := range b.Parties() {
		if p.Name == name {
			return p, true
		}
	}
	return finbook.Party{}, false
}

func assetByName(b *finbook.Book, name string) (finbook.Asset, bool) {
	for _, a := range b.Assets() {
		if a.Name == name {
			return a, true
		}
	}
	return finbook.Asset{}, false
}
