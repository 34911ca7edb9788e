package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/finbook/finbook"
	"github.com/google/subcommands"
)

type accountCmd struct {
	name    string
	typ     string
	opening float64
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "declare a new cash account" }
func (*accountCmd) Usage() string {
	return `fin account -name <name> [-type <type>] [-opening <amount>]

  Declares a cash account. The opening balance is the account's starting
  point: every later balance is derived from it plus the recorded
  transactions.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name (e.g., 'checking')")
	f.StringVar(&c.typ, "type", "bank", "Account type (e.g., 'bank', 'wallet', 'broker')")
	f.Float64Var(&c.opening, "opening", 0, "Opening balance")
}

func (c *accountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: the -name flag is required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	account, err := b.AddAccount(c.name, c.typ, finbook.M(c.opening, b.Currency()))
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Declared account %q (%s) with an opening balance of %s.\n", account.Name, account.Type, account.Opening)
	return subcommands.ExitSuccess
}

type partyCmd struct {
	name string
}

func (*partyCmd) Name() string     { return "party" }
func (*partyCmd) Synopsis() string { return "declare a new counterparty" }
func (*partyCmd) Usage() string {
	return `fin party -name <name>

  Declares a counterparty: a person or organization transactions can be
  attributed to. A party's balance is entirely derived from the transactions
  that reference it.
`
}

func (c *partyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Party name (e.g., 'acme corp')")
}

func (c *partyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: the -name flag is required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	party, err := b.AddParty(c.name)
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Declared party %q.\n", party.Name)
	return subcommands.ExitSuccess
}

type assetCmd struct {
	name     string
	category string
}

func (*assetCmd) Name() string     { return "asset" }
func (*assetCmd) Synopsis() string { return "declare a new investable asset" }
func (*assetCmd) Usage() string {
	return `fin asset -name <name> [-category <category>]

  Declares an investable asset. A fresh asset holds nothing: use 'buy' to
  open a position against it.
`
}

func (c *assetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Asset name (e.g., 'ACME Corp')")
	f.StringVar(&c.category, "category", "", "Free-form category (e.g., 'stock', 'fund', 'gold')")
}

func (c *assetCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.name == "" {
		fmt.Fprintln(os.Stderr, "Error: the -name flag is required.")
		return subcommands.ExitUsageError
	}

	a, b, err := loadBook()
	if err != nil {
		return fail(err)
	}
	asset, err := b.AddAsset(c.name, c.category)
	if err != nil {
		return fail(err)
	}
	if err := a.store.Save(b); err != nil {
		return fail(err)
	}
	fmt.Printf("Declared asset %q.\n", asset.Name)
	return subcommands.ExitSuccess
}
