package finbook

import (
	"fmt"

	"github.com/google/uuid"
)

// The transaction ledger. Recording applies the transaction's signed deltas
// to its account and party; amending and deleting reverse the old deltas
// before anything else, so an edit can never corrupt a balance, even when it
// moves the transaction to a different account or party.

// checkTransaction validates a transaction against the book and applies
// quick fixes (id generation, currency defaulting). It mutates only the
// transaction, never the book, so a failed check leaves no trace.
func (b *Book) checkTransaction(tx *Transaction) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", ErrValidation, tx.Kind)
	}
	if tx.Date.IsZero() {
		return fmt.Errorf("%w: transaction date is missing", ErrValidation)
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be positive, got %s", ErrValidation, tx.Amount)
	}
	if _, ok := b.accounts[tx.Account]; !ok {
		return fmt.Errorf("%w: account %q does not resolve", ErrReferentialIntegrity, tx.Account)
	}
	if tx.Party != "" {
		if _, ok := b.parties[tx.Party]; !ok {
			return fmt.Errorf("%w: party %q does not resolve", ErrReferentialIntegrity, tx.Party)
		}
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.Amount = M(tx.Amount.value, b.currency)
	return nil
}

// apply adds the transaction's signed deltas to its account and party.
func (b *Book) apply(tx Transaction) {
	account := b.accounts[tx.Account]
	account.Balance = account.Balance.Add(tx.AccountDelta())
	if tx.Party != "" {
		if party, ok := b.parties[tx.Party]; ok {
			party.Balance = party.Balance.Add(tx.PartyDelta())
		}
	}
}

// reverse subtracts the transaction's signed deltas from its account and
// party, undoing a previous apply.
func (b *Book) reverse(tx Transaction) {
	account := b.accounts[tx.Account]
	account.Balance = account.Balance.Sub(tx.AccountDelta())
	if tx.Party != "" {
		if party, ok := b.parties[tx.Party]; ok {
			party.Balance = party.Balance.Sub(tx.PartyDelta())
		}
	}
}

// Record validates the transaction and applies its effects. On any failure
// the book is untouched. The recorded transaction is returned, with its id
// generated when the caller left it empty.
func (b *Book) Record(tx Transaction) (Transaction, error) {
	if err := b.checkTransaction(&tx); err != nil {
		return Transaction{}, err
	}
	if _, exists := b.transactions[tx.ID]; exists {
		return Transaction{}, fmt.Errorf("%w: transaction %q already recorded", ErrValidation, tx.ID)
	}
	tx.seq = b.nextSeq()
	b.transactions[tx.ID] = &tx
	b.apply(tx)
	return tx, nil
}

// Amend replaces the transaction with this id: it reverses the old
// transaction's effects on its account and party, removes it, and records the
// replacement under the same id. The two-phase reverse-then-apply runs even
// when only the amount changed, because the account or party reference may
// differ between old and new.
//
// The replacement is validated up front, before the old transaction is
// reversed, so a rejected amendment leaves the book untouched.
func (b *Book) Amend(id string, tx Transaction) (Transaction, error) {
	old, ok := b.transactions[id]
	if !ok {
		return Transaction{}, fmt.Errorf("%w: transaction %q", ErrNotFound, id)
	}
	tx.ID = id
	if err := b.checkTransaction(&tx); err != nil {
		return Transaction{}, err
	}
	b.reverse(*old)
	delete(b.transactions, id)
	tx.seq = b.nextSeq()
	b.transactions[tx.ID] = &tx
	b.apply(tx)
	return tx, nil
}

// Delete reverses the transaction's effects on its account and party and
// removes it from the history.
func (b *Book) Delete(id string) error {
	old, ok := b.transactions[id]
	if !ok {
		return fmt.Errorf("%w: transaction %q", ErrNotFound, id)
	}
	b.reverse(*old)
	delete(b.transactions, id)
	return nil
}
