package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	interfaces "github.com/sheikh-saqib/transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/transaction-engine/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	run_id     TEXT     NOT NULL,
	client_id  INTEGER  NOT NULL,
	available  NUMERIC  NOT NULL,
	held       NUMERIC  NOT NULL,
	locked     BOOLEAN  NOT NULL,
	PRIMARY KEY (run_id, client_id)
);
CREATE TABLE IF NOT EXISTS transactions (
	seq        BIGSERIAL PRIMARY KEY,
	run_id     TEXT      NOT NULL,
	client_id  INTEGER   NOT NULL,
	tx_id      BIGINT    NOT NULL,
	type       TEXT      NOT NULL,
	amount     NUMERIC,
	status     TEXT      NOT NULL
);
CREATE INDEX IF NOT EXISTS transactions_lookup_idx ON transactions (run_id, client_id, tx_id);
`

// PostgresLedgerStore keeps accounts and histories in SQL tables. Every row
// carries the run id, so each run sees an empty store.
type PostgresLedgerStore struct {
	db    *sql.DB
	runID string
}

func NewPostgresLedgerStore(db *sql.DB, runID string) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db:    db,
		runID: runID,
	}
}

// Migrate creates the tables when they do not exist yet.
func (p *PostgresLedgerStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return storageErr("migrate", err)
	}
	return nil
}

func (p *PostgresLedgerStore) GetOrCreateAccount(ctx context.Context, client models.ClientID) (models.Account, error) {
	const query = `INSERT INTO accounts (run_id, client_id, available, held, locked)
	VALUES ($1, $2, 0, 0, FALSE) ON CONFLICT (run_id, client_id) DO NOTHING`

	if _, err := p.db.ExecContext(ctx, query, p.runID, int(client)); err != nil {
		return models.Account{}, storageErr("create account", err)
	}

	account, _, err := p.GetAccount(ctx, client)
	return account, err
}

func (p *PostgresLedgerStore) GetAccount(ctx context.Context, client models.ClientID) (models.Account, bool, error) {
	const query = `SELECT client_id, available, held, locked FROM accounts
	WHERE run_id = $1 AND client_id = $2`

	account, err := scanAccount(p.db.QueryRowContext(ctx, query, p.runID, int(client)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, false, nil
	}
	if err != nil {
		return models.Account{}, false, storageErr("get account", err)
	}
	return account, true, nil
}

func (p *PostgresLedgerStore) PutAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (run_id, client_id, available, held, locked)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (run_id, client_id) DO UPDATE
	SET available = EXCLUDED.available, held = EXCLUDED.held, locked = EXCLUDED.locked`

	_, err := p.db.ExecContext(ctx, query, p.runID, int(account.ClientID), account.Available, account.Held, account.Frozen())
	if err != nil {
		return storageErr("put account", err)
	}
	return nil
}

func (p *PostgresLedgerStore) CountAccounts(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM accounts WHERE run_id = $1`

	var count int
	if err := p.db.QueryRowContext(ctx, query, p.runID).Scan(&count); err != nil {
		return 0, storageErr("count accounts", err)
	}
	return count, nil
}

func (p *PostgresLedgerStore) Accounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT client_id, available, held, locked FROM accounts WHERE run_id = $1`

	rows, err := p.db.QueryContext(ctx, query, p.runID)
	if err != nil {
		return nil, storageErr("list accounts", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, storageErr("list accounts", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list accounts", err)
	}
	return accounts, nil
}

func (p *PostgresLedgerStore) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	const query = `INSERT INTO transactions (run_id, client_id, tx_id, type, amount, status)
	VALUES ($1, $2, $3, $4, $5, $6)`

	amount := decimal.NullDecimal{}
	if tx.Amount != nil {
		amount = decimal.NewNullDecimal(*tx.Amount)
	}

	_, err := p.db.ExecContext(ctx, query, p.runID, int(tx.ClientID), int64(tx.TransactionID), tx.Type.String(), amount, tx.Status.String())
	if err != nil {
		return storageErr("append transaction", err)
	}
	return nil
}

func (p *PostgresLedgerStore) Transactions(ctx context.Context, client models.ClientID) ([]models.Transaction, error) {
	const query = `SELECT client_id, tx_id, type, amount, status FROM transactions
	WHERE run_id = $1 AND client_id = $2 ORDER BY seq`

	rows, err := p.db.QueryContext(ctx, query, p.runID, int(client))
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	var history []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, storageErr("list transactions", err)
		}
		history = append(history, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transactions", err)
	}
	return history, nil
}

func (p *PostgresLedgerStore) FindNonDisputingTransaction(ctx context.Context, client models.ClientID, id models.TransactionID) (models.Transaction, bool, error) {
	const query = `SELECT client_id, tx_id, type, amount, status FROM transactions
	WHERE run_id = $1 AND client_id = $2 AND tx_id = $3 AND type IN ('deposit', 'withdrawal')
	ORDER BY seq DESC LIMIT 1`

	tx, err := scanTransaction(p.db.QueryRowContext(ctx, query, p.runID, int(client), int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, storageErr("find transaction", err)
	}
	return tx, true, nil
}

func (p *PostgresLedgerStore) UpdateTransactionStatus(ctx context.Context, client models.ClientID, id models.TransactionID, status models.TransactionStatus) error {
	const query = `UPDATE transactions SET status = $4 WHERE seq = (
		SELECT seq FROM transactions
		WHERE run_id = $1 AND client_id = $2 AND tx_id = $3 AND type IN ('deposit', 'withdrawal')
		ORDER BY seq DESC LIMIT 1
	)`

	_, err := p.db.ExecContext(ctx, query, p.runID, int(client), int64(id), status.String())
	if err != nil {
		return storageErr("update transaction", err)
	}
	return nil
}

func (p *PostgresLedgerStore) Close() error {
	return p.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (models.Account, error) {
	var (
		account models.Account
		client  int
		locked  bool
	)
	if err := row.Scan(&client, &account.Available, &account.Held, &locked); err != nil {
		return models.Account{}, err
	}
	account.ClientID = models.ClientID(client)
	if locked {
		account.Freeze()
	}
	return account, nil
}

func scanTransaction(row scanner) (models.Transaction, error) {
	var (
		client       int
		id           int64
		kind, status string
		amount       decimal.NullDecimal
		tx           models.Transaction
		parseErr     error
	)
	if err := row.Scan(&client, &id, &kind, &amount, &status); err != nil {
		return models.Transaction{}, err
	}

	tx.ClientID = models.ClientID(client)
	tx.TransactionID = models.TransactionID(id)
	if tx.Type, parseErr = models.ParseTransactionType(kind); parseErr != nil {
		return models.Transaction{}, parseErr
	}
	if tx.Status, parseErr = models.ParseTransactionStatus(status); parseErr != nil {
		return models.Transaction{}, parseErr
	}
	if amount.Valid {
		value := amount.Decimal
		tx.Amount = &value
	}
	return tx, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", interfaces.ErrStorage, op, err)
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
