package loyalty

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.DB.QueryRow(ctx, `
    SELECT is_system_enabled, coins_per_rupee, global_multiplier,
           coin_expiry_days, min_coins_to_redeem, max_coins_per_order,
           festive_multiplier, festive_start, festive_end, is_festive_active,
           updated_at
    FROM loyalty_settings
    WHERE id = 1
  `).Scan(
		&out.SystemEnabled, &out.CoinsPerRupee, &out.GlobalMultiplier,
		&out.CoinExpiryDays, &out.MinCoinsToRedeem, &out.MaxCoinsPerOrder,
		&out.FestiveMultiplier, &out.FestiveStart, &out.FestiveEnd, &out.FestiveActive,
		&out.UpdatedAt,
	)
	return out, err
}

func (s *Store) SaveSettings(ctx context.Context, in Settings) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO loyalty_settings (
      id, is_system_enabled, coins_per_rupee, global_multiplier,
      coin_expiry_days, min_coins_to_redeem, max_coins_per_order,
      festive_multiplier, festive_start, festive_end, is_festive_active
    )
    VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (id) DO UPDATE SET
      is_system_enabled = EXCLUDED.is_system_enabled,
      coins_per_rupee = EXCLUDED.coins_per_rupee,
      global_multiplier = EXCLUDED.global_multiplier,
      coin_expiry_days = EXCLUDED.coin_expiry_days,
      min_coins_to_redeem = EXCLUDED.min_coins_to_redeem,
      max_coins_per_order = EXCLUDED.max_coins_per_order,
      festive_multiplier = EXCLUDED.festive_multiplier,
      festive_start = EXCLUDED.festive_start,
      festive_end = EXCLUDED.festive_end,
      is_festive_active = EXCLUDED.is_festive_active,
      updated_at = now()
  `, in.SystemEnabled, in.CoinsPerRupee, in.GlobalMultiplier,
		in.CoinExpiryDays, in.MinCoinsToRedeem, in.MaxCoinsPerOrder,
		in.FestiveMultiplier, in.FestiveStart, in.FestiveEnd, in.FestiveActive)
	return err
}

func (s *Store) GetOrCreateProductSettings(ctx context.Context, productID string) (ProductSettings, error) {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO product_loyalty_settings (product_id)
    VALUES ($1)
    ON CONFLICT (product_id) DO NOTHING
  `, productID)
	if err != nil {
		return ProductSettings{}, err
	}

	var out ProductSettings
	err = s.DB.QueryRow(ctx, `
    SELECT product_id, coins_earned_per_purchase, coins_required_to_buy,
           is_coin_purchase_enabled, is_coin_earning_enabled, updated_at
    FROM product_loyalty_settings
    WHERE product_id = $1
  `, productID).Scan(
		&out.ProductID, &out.CoinsPerPurchase, &out.CoinsToBuy,
		&out.PurchaseEnabled, &out.EarningEnabled, &out.UpdatedAt,
	)
	return out, err
}

func (s *Store) SaveProductSettings(ctx context.Context, ps ProductSettings) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO product_loyalty_settings (
      product_id, coins_earned_per_purchase, coins_required_to_buy,
      is_coin_purchase_enabled, is_coin_earning_enabled
    )
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (product_id) DO UPDATE SET
      coins_earned_per_purchase = EXCLUDED.coins_earned_per_purchase,
      coins_required_to_buy = EXCLUDED.coins_required_to_buy,
      is_coin_purchase_enabled = EXCLUDED.is_coin_purchase_enabled,
      is_coin_earning_enabled = EXCLUDED.is_coin_earning_enabled,
      updated_at = now()
  `, ps.ProductID, ps.CoinsPerPurchase, ps.CoinsToBuy, ps.PurchaseEnabled, ps.EarningEnabled)
	return err
}
