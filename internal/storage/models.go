package storage

import "database/sql"

type CategoryRow struct {
	ID        string
	Nome      string
	Descricao string
	Cor       string
	Ativa     bool
	Tipo      string
}

type TransactionRow struct {
	ID            string
	Descricao     string
	Valor         string
	Data          string
	Tipo          string
	CategoriaNome sql.NullString
	CategoriaCor  sql.NullString
	Recorrencia   string
}

type MarketItemRow struct {
	ID     string
	Nome   string
	Status string
}

type DebtRow struct {
	ID            string
	Descricao     string
	ValorRestante string
	Status        string
}

type VehicleRow struct {
	ID    string
	Nome  string
	Placa string
}
