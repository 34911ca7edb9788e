package finbook

import "sort"

// Book is the in-memory aggregate: accounts, parties, transactions and
// assets, owned exclusively by the engine boundary. Every mutating operation
// is a method on *Book that validates fully before touching anything, runs to
// completion synchronously, and assumes a single logical caller at a time.
// Accessors hand out copies, never live references; persisting a book is the
// store package's job, invoked by the caller after a successful operation.
type Book struct {
	currency     string
	accounts     map[string]*Account
	parties      map[string]*Party
	assets       map[string]*Asset
	transactions map[string]*Transaction
	seq          int
}

// NewBook creates an empty book. All amounts in a book share one currency.
func NewBook(currency string) *Book {
	return &Book{
		currency:     currency,
		accounts:     make(map[string]*Account),
		parties:      make(map[string]*Party),
		assets:       make(map[string]*Asset),
		transactions: make(map[string]*Transaction),
	}
}

// Currency returns the book's currency code.
func (b *Book) Currency() string { return b.currency }

// nextSeq returns the next insertion sequence number. Sequence numbers order
// same-day entries: they are the stable tie-break of both the transaction
// listing and the trade replay.
func (b *Book) nextSeq() int {
	b.seq++
	return b.seq
}

// Transaction returns a copy of the transaction with this id.
func (b *Book) Transaction(id string) (Transaction, bool) {
	t, ok := b.transactions[id]
	if !ok {
		return Transaction{}, false
	}
	return *t, true
}

// Transactions returns copies of all transactions in presentation order:
// date descending, same-day entries in insertion order. The order is
// computed here at listing time; storage itself is unordered.
func (b *Book) Transactions() []Transaction {
	txs := make([]Transaction, 0, len(b.transactions))
	for _, t := range b.transactions {
		txs = append(txs, *t)
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date == txs[j].Date {
			return txs[i].seq < txs[j].seq
		}
		return txs[i].Date.After(txs[j].Date)
	})
	return txs
}

func (b *Book) sortedAccounts() []Account {
	accounts := make([]Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		accounts = append(accounts, *a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts
}

func (b *Book) sortedParties() []Party {
	parties := make([]Party, 0, len(b.parties))
	for _, p := range b.parties {
		parties = append(parties, *p)
	}
	sort.Slice(parties, func(i, j int) bool { return parties[i].Name < parties[j].Name })
	return parties
}

func (b *Book) sortedAssets() []Asset {
	assets := make([]Asset, 0, len(b.assets))
	for _, a := range b.assets {
		assets = append(assets, b.assetCopy(a))
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets
}
