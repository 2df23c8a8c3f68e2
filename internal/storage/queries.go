package storage

import (
	"context"
	"database/sql"
)

const listTransactions = `
SELECT t.id, t.descricao, t.valor, t.data, t.tipo, c.nome, c.cor, t.recorrencia
FROM transactions t
LEFT JOIN categories c ON c.id = t.categoria_id
ORDER BY t.rowid
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Descricao, &i.Valor, &i.Data, &i.Tipo, &i.CategoriaNome, &i.CategoriaCor, &i.Recorrencia); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getIncome = `
SELECT t.id, t.descricao, t.valor, t.data, t.tipo, c.nome, c.cor, t.recorrencia
FROM transactions t
LEFT JOIN categories c ON c.id = t.categoria_id
WHERE t.id = ? AND t.tipo = 'receita'
`

func (q *Queries) GetIncome(ctx context.Context, id string) (TransactionRow, error) {
	var i TransactionRow
	err := q.db.QueryRowContext(ctx, getIncome, id).Scan(
		&i.ID, &i.Descricao, &i.Valor, &i.Data, &i.Tipo, &i.CategoriaNome, &i.CategoriaCor, &i.Recorrencia)
	return i, err
}

const upsertTransaction = `
INSERT INTO transactions (id, descricao, valor, data, tipo, categoria_id, recorrencia)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    descricao = excluded.descricao,
    valor = excluded.valor,
    data = excluded.data,
    tipo = excluded.tipo,
    categoria_id = excluded.categoria_id,
    recorrencia = excluded.recorrencia,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertTransactionParams struct {
	ID          string
	Descricao   string
	Valor       string
	Data        string
	Tipo        string
	CategoriaID sql.NullString
	Recorrencia string
}

func (q *Queries) UpsertTransaction(ctx context.Context, arg UpsertTransactionParams) error {
	_, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.ID, arg.Descricao, arg.Valor, arg.Data, arg.Tipo, arg.CategoriaID, arg.Recorrencia)
	return err
}

const updateIncome = `
UPDATE transactions
SET descricao = ?, valor = ?, data = ?, categoria_id = ?, recorrencia = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND tipo = 'receita'
`

type UpdateIncomeParams struct {
	Descricao   string
	Valor       string
	Data        string
	CategoriaID sql.NullString
	Recorrencia string
	ID          string
}

// UpdateIncome returns the number of rows touched.
func (q *Queries) UpdateIncome(ctx context.Context, arg UpdateIncomeParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateIncome,
		arg.Descricao, arg.Valor, arg.Data, arg.CategoriaID, arg.Recorrencia, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listCategories = `
SELECT id, nome, descricao, cor, ativa, tipo
FROM categories
WHERE ?1 = '' OR tipo = '' OR tipo = ?1
ORDER BY nome
`

func (q *Queries) ListCategories(ctx context.Context, tipo string) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, tipo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		var i CategoryRow
		if err := rows.Scan(&i.ID, &i.Nome, &i.Descricao, &i.Cor, &i.Ativa, &i.Tipo); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getCategoryByName = `
SELECT id, nome, descricao, cor, ativa, tipo
FROM categories
WHERE nome = ? COLLATE NOCASE
`

func (q *Queries) GetCategoryByName(ctx context.Context, nome string) (CategoryRow, error) {
	var i CategoryRow
	err := q.db.QueryRowContext(ctx, getCategoryByName, nome).Scan(
		&i.ID, &i.Nome, &i.Descricao, &i.Cor, &i.Ativa, &i.Tipo)
	return i, err
}

const upsertCategory = `
INSERT INTO categories (id, nome, descricao, cor, ativa, tipo)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    nome = excluded.nome,
    descricao = excluded.descricao,
    cor = excluded.cor,
    ativa = excluded.ativa,
    tipo = excluded.tipo
`

func (q *Queries) UpsertCategory(ctx context.Context, arg CategoryRow) error {
	_, err := q.db.ExecContext(ctx, upsertCategory,
		arg.ID, arg.Nome, arg.Descricao, arg.Cor, arg.Ativa, arg.Tipo)
	return err
}

const listMarketItems = `SELECT id, nome, status FROM market_items ORDER BY nome`

func (q *Queries) ListMarketItems(ctx context.Context) ([]MarketItemRow, error) {
	rows, err := q.db.QueryContext(ctx, listMarketItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MarketItemRow
	for rows.Next() {
		var i MarketItemRow
		if err := rows.Scan(&i.ID, &i.Nome, &i.Status); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertMarketItem = `
INSERT INTO market_items (id, nome, status) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET nome = excluded.nome, status = excluded.status
`

func (q *Queries) UpsertMarketItem(ctx context.Context, arg MarketItemRow) error {
	_, err := q.db.ExecContext(ctx, upsertMarketItem, arg.ID, arg.Nome, arg.Status)
	return err
}

const listDebts = `SELECT id, descricao, valor_restante, status FROM debts ORDER BY rowid`

func (q *Queries) ListDebts(ctx context.Context) ([]DebtRow, error) {
	rows, err := q.db.QueryContext(ctx, listDebts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DebtRow
	for rows.Next() {
		var i DebtRow
		if err := rows.Scan(&i.ID, &i.Descricao, &i.ValorRestante, &i.Status); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertDebt = `
INSERT INTO debts (id, descricao, valor_restante, status) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    descricao = excluded.descricao,
    valor_restante = excluded.valor_restante,
    status = excluded.status
`

func (q *Queries) UpsertDebt(ctx context.Context, arg DebtRow) error {
	_, err := q.db.ExecContext(ctx, upsertDebt, arg.ID, arg.Descricao, arg.ValorRestante, arg.Status)
	return err
}

const listVehicles = `SELECT id, nome, placa FROM vehicles ORDER BY rowid`

func (q *Queries) ListVehicles(ctx context.Context) ([]VehicleRow, error) {
	rows, err := q.db.QueryContext(ctx, listVehicles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []VehicleRow
	for rows.Next() {
		var i VehicleRow
		if err := rows.Scan(&i.ID, &i.Nome, &i.Placa); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const upsertVehicle = `
INSERT INTO vehicles (id, nome, placa) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET nome = excluded.nome, placa = excluded.placa
`

func (q *Queries) UpsertVehicle(ctx context.Context, arg VehicleRow) error {
	_, err := q.db.ExecContext(ctx, upsertVehicle, arg.ID, arg.Nome, arg.Placa)
	return err
}

const getProfile = `SELECT name FROM profile WHERE id = 1`

func (q *Queries) GetProfile(ctx context.Context) (string, error) {
	var name string
	err := q.db.QueryRowContext(ctx, getProfile).Scan(&name)
	return name, err
}

const upsertProfile = `
INSERT INTO profile (id, name) VALUES (1, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name
`

func (q *Queries) UpsertProfile(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, upsertProfile, name)
	return err
}
