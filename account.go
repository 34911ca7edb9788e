package finbook

import (
	"fmt"

	"github.com/google/uuid"
)

// Account is a cash account. Balance is derived: it always equals the opening
// balance plus the signed deltas of every live transaction referencing the
// account, and is only ever mutated through the ledger.
type Account struct {
	ID      string
	Name    string
	Type    string // free-form: "bank", "cash", "wallet"...
	Opening Money
	Balance Money // derived
}

// MarshalJSON implements the json.Marshaler interface for Account. The
// derived balance is not persisted; it is recomputed on decode.
func (a Account) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("name", a.Name)
	w.Optional("type", a.Type)
	w.Append("opening", a.Opening)
	return w.MarshalJSON()
}

// AddAccount registers a new cash account with the given opening balance and
// returns it. The balance starts at the opening balance.
func (b *Book) AddAccount(name, typ string, opening Money) (Account, error) {
	if name == "" {
		return Account{}, fmt.Errorf("%w: account name is missing", ErrValidation)
	}
	a := &Account{
		ID:      uuid.NewString(),
		Name:    name,
		Type:    typ,
		Opening: M(opening.value, b.currency),
		Balance: M(opening.value, b.currency),
	}
	b.accounts[a.ID] = a
	return *a, nil
}

// Account returns a copy of the account with this id.
func (b *Book) Account(id string) (Account, bool) {
	a, ok := b.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// AccountByName returns a copy of the first account with this name.
func (b *Book) AccountByName(name string) (Account, bool) {
	for _, a := range b.sortedAccounts() {
		if a.Name == name {
			return a, true
		}
	}
	return Account{}, false
}

// Accounts returns copies of all accounts, sorted by name.
func (b *Book) Accounts() []Account {
	return b.sortedAccounts()
}
