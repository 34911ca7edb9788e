package finbook

import "fmt"

// TxKind is a typed string identifying the four transaction kinds.
type TxKind string

// The four transaction kinds.
const (
	Income   TxKind = "income"
	Expense  TxKind = "expense"
	Sale     TxKind = "sale"
	Purchase TxKind = "purchase"
)

// txSigns maps each kind to the polarity it applies to the account balance
// and to the party balance.
//
// The party column is not the mirror of the account column: sale and expense
// share the positive party polarity while purchase and income share the
// negative one. This is the observed convention of the source data and is
// preserved as is; do not "fix" it without product confirmation.
var txSigns = map[TxKind]struct{ account, party int }{
	Income:   {account: +1, party: -1},
	Sale:     {account: +1, party: +1},
	Expense:  {account: -1, party: +1},
	Purchase: {account: -1, party: -1},
}

// Valid reports whether k is one of the four closed kinds.
func (k TxKind) Valid() bool {
	_, ok := txSigns[k]
	return ok
}

// ParseTxKind parses a string into a TxKind.
func ParseTxKind(s string) (TxKind, error) {
	k := TxKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown transaction kind %q", ErrValidation, s)
	}
	return k, nil
}

// Transaction is a single cash movement against an account, optionally
// involving a counterparty. It is immutable once recorded: the only way to
// change one is the ledger's amend operation, which reverses the old
// transaction and records a new one.
type Transaction struct {
	ID          string
	Kind        TxKind
	Date        Date
	Description string
	Category    string
	Amount      Money // strictly positive; the sign comes from the kind
	Account     string // id of the cash account
	Party       string // optional id of the counterparty
	Notes       string

	seq int // insertion order, assigned by the book
}

// AccountDelta returns the signed effect of the transaction on its account
// balance: +amount for income and sale, -amount for expense and purchase.
func (t Transaction) AccountDelta() Money {
	if txSigns[t.Kind].account < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// PartyDelta returns the signed effect of the transaction on its party
// balance, per the txSigns table.
func (t Transaction) PartyDelta() Money {
	if txSigns[t.Kind].party < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Equal reports whether two transactions carry the same user-entered fields.
// Insertion order is not part of a transaction's identity.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Kind == o.Kind &&
		t.Date == o.Date &&
		t.Description == o.Description &&
		t.Category == o.Category &&
		t.Amount.Equal(o.Amount) &&
		t.Account == o.Account &&
		t.Party == o.Party &&
		t.Notes == o.Notes
}

// MarshalJSON implements the json.Marshaler interface for Transaction with a
// stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("kind", t.Kind)
	w.Append("date", t.Date)
	w.Optional("description", t.Description)
	w.Optional("category", t.Category)
	w.Append("amount", t.Amount)
	w.Append("account", t.Account)
	w.Optional("party", t.Party)
	w.Optional("notes", t.Notes)
	return w.MarshalJSON()
}
