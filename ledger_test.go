package finbook

import (
	"errors"
	"testing"
)

// newTestBook returns a book with one account (opening 1000) and one party.
func newTestBook(t *testing.T) (*Book, Account, Party) {
	t.Helper()
	b := NewBook("USD")
	account, err := b.AddAccount("checking", "bank", M(1000, "USD"))
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}
	party, err := b.AddParty("acme")
	if err != nil {
		t.Fatalf("AddParty: %v", err)
	}
	return b, account, party
}

// checkInvariant asserts balance == opening + sum of signed deltas over all
// live transactions, for every account and party.
func checkInvariant(t *testing.T, b *Book) {
	t.Helper()
	for _, account := range b.Accounts() {
		want := account.Opening
		for _, tx := range b.Transactions() {
			if tx.Account == account.ID {
				want = want.Add(tx.AccountDelta())
			}
		}
		if !account.Balance.Equal(want) {
			t.Errorf("account %s balance = %s, want opening+deltas = %s", account.Name, account.Balance.value, want.value)
		}
	}
	for _, party := range b.Parties() {
		want := M(0, b.Currency())
		for _, tx := range b.Transactions() {
			if tx.Party == party.ID {
				want = want.Add(tx.PartyDelta())
			}
		}
		if !party.Balance.Equal(want) {
			t.Errorf("party %s balance = %s, want sum of deltas = %s", party.Name, party.Balance.value, want.value)
		}
	}
}

func TestSignedDeltas(t *testing.T) {
	testCases := []struct {
		kind        TxKind
		accountSign int
		partySign   int
	}{
		{Income, +1, -1},
		{Sale, +1, +1},
		{Expense, -1, +1},
		{Purchase, -1, -1},
	}
	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			tx := Transaction{Kind: tc.kind, Amount: M(50, "USD")}
			if got := tx.AccountDelta(); !got.Equal(M(50*tc.accountSign, "USD")) {
				t.Errorf("AccountDelta = %s, want sign %+d", got.value, tc.accountSign)
			}
			if got := tx.PartyDelta(); !got.Equal(M(50*tc.partySign, "USD")) {
				t.Errorf("PartyDelta = %s, want sign %+d", got.value, tc.partySign)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	b, account, party := newTestBook(t)

	tx, err := b.Record(Transaction{
		Kind:    Income,
		Date:    MustParse("2025-03-01"),
		Amount:  M(200, "USD"),
		Account: account.ID,
		Party:   party.ID,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if tx.ID == "" {
		t.Error("Record did not assign an id")
	}

	got, _ := b.Account(account.ID)
	if !got.Balance.Equal(M(1200, "USD")) {
		t.Errorf("account balance = %s, want 1200", got.Balance.value)
	}
	gotParty, _ := b.Party(party.ID)
	if !gotParty.Balance.Equal(M(-200, "USD")) {
		// income carries the negative party polarity
		t.Errorf("party balance = %s, want -200", gotParty.Balance.value)
	}
	checkInvariant(t, b)
}

func TestRecord_FailsBeforeAnyMutation(t *testing.T) {
	b, account, _ := newTestBook(t)

	testCases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{
			name: "non-positive amount",
			tx:   Transaction{Kind: Income, Date: MustParse("2025-03-01"), Amount: M(0, "USD"), Account: account.ID},
			want: ErrValidation,
		},
		{
			name: "missing date",
			tx:   Transaction{Kind: Income, Amount: M(10, "USD"), Account: account.ID},
			want: ErrValidation,
		},
		{
			name: "unknown kind",
			tx:   Transaction{Kind: "transfer", Date: MustParse("2025-03-01"), Amount: M(10, "USD"), Account: account.ID},
			want: ErrValidation,
		},
		{
			name: "unresolved account",
			tx:   Transaction{Kind: Income, Date: MustParse("2025-03-01"), Amount: M(10, "USD"), Account: "nope"},
			want: ErrReferentialIntegrity,
		},
		{
			name: "unresolved party",
			tx:   Transaction{Kind: Income, Date: MustParse("2025-03-01"), Amount: M(10, "USD"), Account: account.ID, Party: "nope"},
			want: ErrReferentialIntegrity,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := b.Record(tc.tx); !errors.Is(err, tc.want) {
				t.Fatalf("Record error = %v, want %v", err, tc.want)
			}
			got, _ := b.Account(account.ID)
			if !got.Balance.Equal(M(1000, "USD")) {
				t.Errorf("balance mutated to %s on a rejected record", got.Balance.value)
			}
			if len(b.Transactions()) != 0 {
				t.Error("rejected transaction was stored")
			}
		})
	}
}

func TestAmend_IdenticalContentIsANoop(t *testing.T) {
	b, account, party := newTestBook(t)
	tx, err := b.Record(Transaction{
		Kind:    Sale,
		Date:    MustParse("2025-03-01"),
		Amount:  M(300, "USD"),
		Account: account.ID,
		Party:   party.ID,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, err := b.Amend(tx.ID, tx); err != nil {
		t.Fatalf("Amend: %v", err)
	}

	got, _ := b.Account(account.ID)
	if !got.Balance.Equal(M(1300, "USD")) {
		t.Errorf("account balance = %s, want unchanged 1300", got.Balance.value)
	}
	gotParty, _ := b.Party(party.ID)
	if !gotParty.Balance.Equal(M(300, "USD")) {
		t.Errorf("party balance = %s, want unchanged 300", gotParty.Balance.value)
	}
	checkInvariant(t, b)
}

func TestAmend_MovesAcrossAccounts(t *testing.T) {
	b, first, party := newTestBook(t)
	second, err := b.AddAccount("savings", "bank", M(0, "USD"))
	if err != nil {
		t.Fatalf("AddAccount: %v", err)
	}

	tx, err := b.Record(Transaction{
		Kind:    Expense,
		Date:    MustParse("2025-03-01"),
		Amount:  M(100, "USD"),
		Account: first.ID,
		Party:   party.ID,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Amend amount and move the expense to the other account, dropping the party.
	amended := tx
	amended.Amount = M(250, "USD")
	amended.Account = second.ID
	amended.Party = ""
	if _, err := b.Amend(tx.ID, amended); err != nil {
		t.Fatalf("Amend: %v", err)
	}

	got, _ := b.Account(first.ID)
	if !got.Balance.Equal(M(1000, "USD")) {
		t.Errorf("old account balance = %s, want restored 1000", got.Balance.value)
	}
	got, _ = b.Account(second.ID)
	if !got.Balance.Equal(M(-250, "USD")) {
		t.Errorf("new account balance = %s, want -250", got.Balance.value)
	}
	gotParty, _ := b.Party(party.ID)
	if !gotParty.Balance.IsZero() {
		t.Errorf("party balance = %s, want reversed to 0", gotParty.Balance.value)
	}
	checkInvariant(t, b)
}

func TestAmend_RejectedLeavesBookUntouched(t *testing.T) {
	b, account, _ := newTestBook(t)
	tx, err := b.Record(Transaction{
		Kind:    Income,
		Date:    MustParse("2025-03-01"),
		Amount:  M(100, "USD"),
		Account: account.ID,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	bad := tx
	bad.Account = "nope"
	if _, err := b.Amend(tx.ID, bad); !errors.Is(err, ErrReferentialIntegrity) {
		t.Fatalf("Amend error = %v, want ErrReferentialIntegrity", err)
	}

	// The old transaction must still be live and applied.
	if _, ok := b.Transaction(tx.ID); !ok {
		t.Fatal("original transaction lost by a rejected amend")
	}
	got, _ := b.Account(account.ID)
	if !got.Balance.Equal(M(1100, "USD")) {
		t.Errorf("balance = %s, want untouched 1100", got.Balance.value)
	}
}

func TestAmend_NotFound(t *testing.T) {
	b, account, _ := newTestBook(t)
	_, err := b.Amend("missing", Transaction{
		Kind: Income, Date: MustParse("2025-03-01"), Amount: M(10, "USD"), Account: account.ID,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Amend error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	b, account, party := newTestBook(t)
	tx, err := b.Record(Transaction{
		Kind:    Purchase,
		Date:    MustParse("2025-03-01"),
		Amount:  M(400, "USD"),
		Account: account.ID,
		Party:   party.ID,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := b.Delete(tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ := b.Account(account.ID)
	if !got.Balance.Equal(M(1000, "USD")) {
		t.Errorf("account balance = %s, want restored 1000", got.Balance.value)
	}
	gotParty, _ := b.Party(party.ID)
	if !gotParty.Balance.IsZero() {
		t.Errorf("party balance = %s, want restored 0", gotParty.Balance.value)
	}
	if err := b.Delete(tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	checkInvariant(t, b)
}

func TestInvariant_AfterMixedSequence(t *testing.T) {
	b, account, party := newTestBook(t)
	savings, _ := b.AddAccount("savings", "bank", M(500, "USD"))

	days := []string{"2025-01-05", "2025-01-05", "2025-02-10", "2025-02-11", "2025-03-01"}
	kinds := []TxKind{Income, Expense, Sale, Purchase, Expense}
	var ids []string
	for i, kind := range kinds {
		target := account.ID
		if i%2 == 1 {
			target = savings.ID
		}
		tx, err := b.Record(Transaction{
			Kind:    kind,
			Date:    MustParse(days[i]),
			Amount:  M(float64(10*(i+1)), "USD"),
			Account: target,
			Party:   party.ID,
		})
		if err != nil {
			t.Fatalf("Record #%d: %v", i, err)
		}
		ids = append(ids, tx.ID)
	}
	checkInvariant(t, b)

	// Amend one across accounts, delete another, then check again.
	amended, _ := b.Transaction(ids[2])
	amended.Amount = M(75, "USD")
	amended.Account = savings.ID
	if _, err := b.Amend(ids[2], amended); err != nil {
		t.Fatalf("Amend: %v", err)
	}
	if err := b.Delete(ids[0]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	checkInvariant(t, b)
}

func TestTransactions_PresentationOrder(t *testing.T) {
	b, account, _ := newTestBook(t)

	// Insert out of date order with a same-day pair.
	_, _ = b.Record(Transaction{ID: "a", Kind: Income, Date: MustParse("2025-02-01"), Amount: M(1, "USD"), Account: account.ID})
	_, _ = b.Record(Transaction{ID: "b", Kind: Income, Date: MustParse("2025-01-01"), Amount: M(1, "USD"), Account: account.ID})
	_, _ = b.Record(Transaction{ID: "c", Kind: Income, Date: MustParse("2025-02-01"), Amount: M(1, "USD"), Account: account.ID})

	var order []string
	for _, tx := range b.Transactions() {
		order = append(order, tx.ID)
	}
	// Date descending; same-day entries keep insertion order.
	want := []string{"a", "c", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("presentation order = %v, want %v", order, want)
		}
	}
}
