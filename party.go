package finbook

import (
	"fmt"

	"github.com/google/uuid"
)

// Party is a counterparty: a person or business the user transacts with.
// Balance is derived from the live transactions referencing the party and is
// only ever mutated through the ledger's signed-delta path; the registry
// exposes no independent write, so ledger and party state cannot drift apart.
type Party struct {
	ID      string
	Name    string
	Balance Money // derived
}

// MarshalJSON implements the json.Marshaler interface for Party. The derived
// balance is not persisted; it is recomputed on decode.
func (p Party) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", p.ID)
	w.Append("name", p.Name)
	return w.MarshalJSON()
}

// AddParty registers a new counterparty and returns it. Its balance starts
// at zero.
func (b *Book) AddParty(name string) (Party, error) {
	if name == "" {
		return Party{}, fmt.Errorf("%w: party name is missing", ErrValidation)
	}
	p := &Party{
		ID:      uuid.NewString(),
		Name:    name,
		Balance: M(0, b.currency),
	}
	b.parties[p.ID] = p
	return *p, nil
}

// Party returns a copy of the party with this id.
func (b *Book) Party(id string) (Party, bool) {
	p, ok := b.parties[id]
	if !ok {
		return Party{}, false
	}
	return *p, true
}

// Parties returns copies of all parties, sorted by name.
func (b *Book) Parties() []Party {
	return b.sortedParties()
}
