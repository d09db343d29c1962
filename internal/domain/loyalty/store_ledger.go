package loyalty

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) EnsureWallet(ctx context.Context, userID string) (Wallet, error) {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO coin_wallets (user_id)
    VALUES ($1)
    ON CONFLICT (user_id) DO NOTHING
  `, userID)
	if err != nil {
		return Wallet{}, err
	}
	return s.GetWallet(ctx, userID)
}

func (s *Store) GetWallet(ctx context.Context, userID string) (Wallet, error) {
	var out Wallet
	err := s.DB.QueryRow(ctx, `
    SELECT user_id, total_coins_earned, total_coins_used, available_coins, last_updated
    FROM coin_wallets
    WHERE user_id = $1
  `, userID).Scan(&out.UserID, &out.TotalEarned, &out.TotalUsed, &out.Available, &out.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return Wallet{}, ErrWalletNotFound
	}
	return out, err
}

// ApplyTransaction appends a ledger entry and adjusts the wallet
// aggregate inside one database transaction, so the two writes cannot
// diverge. Positive amounts add to total_coins_earned, negative ones to
// total_coins_used; the wallet CHECK constraints reject any update that
// would take available_coins negative.
func (s *Store) ApplyTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
    INSERT INTO coin_transactions (
      user_id, transaction_type, coins_amount,
      reference_type, reference_id, order_id, product_id,
      description, expires_at
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id, created_at
  `, t.UserID, t.Type, t.Amount,
		nullIfEmpty(t.ReferenceType), nullIfEmpty(t.ReferenceID),
		nullIfEmpty(t.OrderID), nullIfEmpty(t.ProductID),
		t.Description, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return Transaction{}, walletErr(err)
	}

	earnedDelta, usedDelta := int64(0), int64(0)
	if t.Amount >= 0 {
		earnedDelta = t.Amount
	} else {
		usedDelta = -t.Amount
	}

	tag, err := tx.Exec(ctx, `
    UPDATE coin_wallets
    SET total_coins_earned = total_coins_earned + $1,
        total_coins_used = total_coins_used + $2,
        available_coins = available_coins + $3,
        last_updated = now()
    WHERE user_id = $4
  `, earnedDelta, usedDelta, t.Amount, t.UserID)
	if err != nil {
		return Transaction{}, walletErr(err)
	}
	if tag.RowsAffected() == 0 {
		return Transaction{}, ErrWalletNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, transaction_type, coins_amount,
           COALESCE(reference_type, ''), COALESCE(reference_id::text, ''),
           COALESCE(order_id, ''), COALESCE(product_id, ''),
           COALESCE(description, ''), expires_at, created_at
    FROM coin_transactions
    WHERE user_id = $1
    ORDER BY created_at DESC
    LIMIT $2
  `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount,
			&t.ReferenceType, &t.ReferenceID, &t.OrderID, &t.ProductID,
			&t.Description, &t.ExpiresAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ExpirableEarnings returns earned entries whose expiry has passed and
// which have no expired marker referencing them yet.
func (s *Store) ExpirableEarnings(ctx context.Context, asOf time.Time, limit int) ([]Transaction, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ct.id, ct.user_id, ct.coins_amount, ct.expires_at
    FROM coin_transactions ct
    WHERE ct.transaction_type = $1
      AND ct.expires_at IS NOT NULL
      AND ct.expires_at <= $2
      AND NOT EXISTS (
        SELECT 1 FROM coin_transactions marker
        WHERE marker.transaction_type = $3
          AND marker.reference_type = $4
          AND marker.reference_id = ct.id
      )
    ORDER BY ct.expires_at
    LIMIT $5
  `, TxEarned, asOf, TxExpired, ReferenceTransaction, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.ExpiresAt); err != nil {
			return nil, err
		}
		t.Type = TxEarned
		out = append(out, t)
	}
	return out, rows.Err()
}

// walletErr maps constraint violations to domain errors: a CHECK
// failure on the wallet means the balance would have gone negative.
func walletErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514":
			return ErrInsufficientCoins
		case "23503":
			return ErrWalletNotFound
		}
	}
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
