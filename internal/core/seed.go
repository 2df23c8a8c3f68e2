package core

import (
	"encoding/json"
	"fmt"
	"os"
)

// Seed is the on-disk shape of a full ledger snapshot. It is read by the
// memory backend and imported into SQLite by the CLI.
type Seed struct {
	Profile      *Profile          `json:"profile"`
	Categories   []Category        `json:"categories"`
	Transactions []SeedTransaction `json:"transactions"`
	MarketItems  []MarketItem      `json:"market_items"`
	Debts        []Debt            `json:"debts"`
	Vehicles     []Vehicle         `json:"vehicles"`
}

// SeedTransaction is a transaction plus the recurrence flag of incomes.
type SeedTransaction struct {
	Transaction
	Recurrence IncomeKind `json:"recorrencia,omitempty"`
}

// Kind returns the recurrence of an income, defaulting to variavel.
func (st SeedTransaction) Kind() IncomeKind {
	if st.Recurrence == "" {
		return Variavel
	}
	return st.Recurrence
}

// ReadSeed decodes a seed file.
func ReadSeed(path string) (Seed, error) {
	var seed Seed
	b, err := os.ReadFile(path)
	if err != nil {
		return seed, err
	}
	if err := json.Unmarshal(b, &seed); err != nil {
		return seed, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return seed, nil
}
