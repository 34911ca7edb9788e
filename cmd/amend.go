package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/finbook"
	"github.com/google/subcommands"
)

type amendCmd struct {
	id          string
	kind        string
	date        string
	amount      float64
	account     string
	party       string
	description string
	category    string
	notes       string
}

func (*amendCmd) Name() string     { return "amend" }
func (*amendCmd) Synopsis() string { return "amend a recorded transaction" }
func (*amendCmd) Usage() string {
	return `fin amend -id <id> [-kind <kind>] [-a <amount>] [-account <name>] [-party <name>] [-d <date>] [-m <description>]

  Amends a transaction in place: the old version is reversed and the new one
  applied, so every balance ends up exactly as if the transaction had been
  recorded this way from the start. Flags that are not set keep their
  current value.
`
}

func (c *amendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the transaction to amend")
	f.StringVar(&c.kind, "kind", "", "New kind (income, expense, sale, purchase)")
	f.StringVar(&c.date, "d", "", "New transaction date (YYYY-MM-DD)")
	f.Float64Var(&c.amount, "a", 0, "New amount")
	f.StringVar(&c.account, "account", "", "New cash account name")
	f.StringVar(&c.party, "party", "", "New counterparty name, or 'none' to detach")
	f.StringVar(&c.description, "m", "", "New description")
	f.StringVar(&c.category, "category", "", "New category")
	f.StringVar(&c.notes, "notes", "", "New notes")
}

func (c *amendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: the -id flag is required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	tx, ok := b.Transaction(c.id)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no transaction with id %q.\n", c.id)
		return subcommands.ExitFailure
	}

	// Overlay the set flags on the current content.
	if c.kind != "" {
		kind, err := finbook.ParseTxKind(c.kind)
		if err != nil {
			return fail(err)
		}
		tx.Kind = kind
	}
	if c.date != "" {
		date, err := finbook.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		tx.Date = date
	}
	if c.amount != 0 {
		tx.Amount = finbook.M(c.amount, b.Currency())
	}
	if c.account != "" {
		account, ok := b.AccountByName(c.account)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no account named %q.\n", c.account)
			return subcommands.ExitUsageError
		}
		tx.Account = account.ID
	}
	switch c.party {
	case "":
	case "none":
		tx.Party = ""
	default:
		party, ok := partyByName(b, c.party)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no party named %q.\n", c.party)
			return subcommands.ExitUsageError
		}
		tx.Party = party.ID
	}
	if c.description != "" {
		tx.Description = c.description
	}
	if c.category != "" {
		tx.Category = c.category
	}
	if c.notes != "" {
		tx.Notes = c.notes
	}

	amended, err := b.Amend(c.id, tx)
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Amended transaction %s: %s of %s on %s.\n",
		amended.ID, amended.Kind, amended.Amount, amended.Date)
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	id string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a recorded transaction" }
func (*deleteCmd) Usage() string {
	return `fin delete -id <id>

  Deletes a transaction, reversing its effect on the account and party
  balances. Trades must be deleted with 'delete-trade' so the asset's
  history stays consistent.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Id of the transaction to delete")
}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		fmt.Fprintln(os.Stderr, "Error: the -id flag is required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	if err := b.Delete(c.id); err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Deleted transaction %s.\n", c.id)
	return subcommands.ExitSuccess
}
