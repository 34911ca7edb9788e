package finbook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// A book is persisted as JSONL: one record per line, identified by a
// "record" discriminator. Only raw facts are written — opening balances,
// transactions, trade histories, mark prices. Every derived value is
// recomputed on decode, so a data file can never carry a stale balance.

type recordKind string

const (
	recBook    recordKind = "book"
	recAccount recordKind = "account"
	recParty   recordKind = "party"
	recAsset   recordKind = "asset"
	recTrade   recordKind = "trade"
	recTx      recordKind = "tx"
)

func encodeLine(w io.Writer, kind recordKind, v any) error {
	var obj jsonObjectWriter
	obj.Append("record", kind)
	obj.EmbedFrom(v)
	data, err := obj.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

// EncodeBook writes the book to w in its canonical JSONL form: header,
// accounts, parties, assets, then trades and transactions in insertion
// order, so the same-day tie-break order survives a round trip.
func EncodeBook(w io.Writer, b *Book) error {
	var header jsonObjectWriter
	header.Append("record", recBook)
	header.Append("currency", b.currency)
	data, err := header.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}

	for _, a := range b.sortedAccounts() {
		if err := encodeLine(w, recAccount, a); err != nil {
			return err
		}
	}
	for _, p := range b.sortedParties() {
		if err := encodeLine(w, recParty, p); err != nil {
			return err
		}
	}
	for _, a := range b.sortedAssets() {
		if err := encodeLine(w, recAsset, a); err != nil {
			return err
		}
	}

	// Trades across all assets, in insertion order, each tagged with its
	// asset id.
	type assetTrade struct {
		asset string
		trade Trade
	}
	var trades []assetTrade
	for _, a := range b.assets {
		for _, h := range a.history {
			trades = append(trades, assetTrade{asset: a.ID, trade: h})
		}
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].trade.seq < trades[j].trade.seq })
	for _, t := range trades {
		var obj jsonObjectWriter
		obj.Append("record", recTrade)
		obj.Append("asset", t.asset)
		obj.EmbedFrom(t.trade)
		data, err := obj.MarshalJSON()
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}

	txs := make([]Transaction, 0, len(b.transactions))
	for _, t := range b.transactions {
		txs = append(txs, *t)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].seq < txs[j].seq })
	for _, t := range txs {
		if err := encodeLine(w, recTx, t); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBook reads a JSONL stream written by EncodeBook, rebuilds the raw
// facts, and recomputes every derived value: each asset is replayed from its
// trade history, and every balance is rebuilt from the opening balance plus
// the signed deltas of the live transactions.
func DecodeBook(r io.Reader) (*Book, error) {
	scanner := bufio.NewScanner(r)
	var book *Book

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Record recordKind `json:"record"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify record in line %q: %w", string(line), err)
		}

		if identifier.Record == recBook {
			var header struct {
				Currency string `json:"currency"`
			}
			if err := json.Unmarshal(line, &header); err != nil {
				return nil, err
			}
			book = NewBook(header.Currency)
			continue
		}
		if book == nil {
			return nil, fmt.Errorf("data file must start with a book record, got %q", identifier.Record)
		}

		switch identifier.Record {
		case recAccount:
			var rec struct {
				ID      string          `json:"id"`
				Name    string          `json:"name"`
				Type    string          `json:"type"`
				Opening decimal.Decimal `json:"opening"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, err
			}
			opening := M(rec.Opening, book.currency)
			book.accounts[rec.ID] = &Account{
				ID: rec.ID, Name: rec.Name, Type: rec.Type,
				Opening: opening, Balance: opening,
			}
		case recParty:
			var rec struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, err
			}
			book.parties[rec.ID] = &Party{ID: rec.ID, Name: rec.Name, Balance: M(0, book.currency)}
		case recAsset:
			var rec struct {
				ID       string          `json:"id"`
				Name     string          `json:"name"`
				Category string          `json:"category"`
				Mark     decimal.Decimal `json:"mark"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, err
			}
			book.assets[rec.ID] = &Asset{
				ID: rec.ID, Name: rec.Name, Category: rec.Category,
				MarkPrice: M(rec.Mark, book.currency),
			}
		case recTrade:
			var rec struct {
				Asset    string          `json:"asset"`
				ID       string          `json:"id"`
				Kind     TradeKind       `json:"kind"`
				Date     Date            `json:"date"`
				Quantity Quantity        `json:"quantity"`
				Price    decimal.Decimal `json:"price"`
				Charges  decimal.Decimal `json:"charges"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, err
			}
			asset, ok := book.assets[rec.Asset]
			if !ok {
				return nil, fmt.Errorf("%w: trade %q references unknown asset %q", ErrReferentialIntegrity, rec.ID, rec.Asset)
			}
			asset.history = append(asset.history, Trade{
				ID: rec.ID, Kind: rec.Kind, Date: rec.Date,
				Quantity: rec.Quantity,
				Price:    M(rec.Price, book.currency),
				Charges:  M(rec.Charges, book.currency),
				seq:      book.nextSeq(),
			})
		case recTx:
			var rec struct {
				ID          string          `json:"id"`
				Kind        TxKind          `json:"kind"`
				Date        Date            `json:"date"`
				Description string          `json:"description"`
				Category    string          `json:"category"`
				Amount      decimal.Decimal `json:"amount"`
				Account     string          `json:"account"`
				Party       string          `json:"party"`
				Notes       string          `json:"notes"`
			}
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, err
			}
			tx := Transaction{
				ID: rec.ID, Kind: rec.Kind, Date: rec.Date,
				Description: rec.Description, Category: rec.Category,
				Amount:  M(rec.Amount, book.currency),
				Account: rec.Account, Party: rec.Party, Notes: rec.Notes,
				seq: book.nextSeq(),
			}
			if _, ok := book.accounts[tx.Account]; !ok {
				return nil, fmt.Errorf("%w: transaction %q references unknown account %q", ErrReferentialIntegrity, tx.ID, tx.Account)
			}
			book.transactions[tx.ID] = &tx
			book.apply(tx)
		default:
			return nil, fmt.Errorf("unknown record kind %q", identifier.Record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("empty data stream: no book record")
	}

	for _, asset := range book.assets {
		asset.recompute(book.currency)
	}
	return book, nil
}
