package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"curveScope/internal/model"
	"curveScope/internal/storage"
)

//go:embed schema.sql
var schema string

// Store provides Postgres persistence for assets, pool stats and trades.
// Numeric columns travel as text so no precision is lost on either side.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables and indexes when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// CreateAsset inserts the asset and its zeroed pool stats in one transaction.
func (s *Store) CreateAsset(ctx context.Context, asset model.IssuedAsset, stats model.PoolStats) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var maxSupply *string
	if asset.MaxSupply != nil {
		v := asset.MaxSupply.String()
		maxSupply = &v
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO issued_assets (
			address, name, symbol, creator, decimals, max_supply, icon_uri, project_uri, mint_fee_per_unit, created_at
		) VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9::numeric, $10)
		ON CONFLICT (address) DO NOTHING
	`,
		asset.Address,
		asset.Name,
		asset.Symbol,
		asset.Creator,
		int16(asset.Decimals),
		maxSupply,
		asset.IconURI,
		asset.ProjectURI,
		asset.MintFeePerUnit.String(),
		asset.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO pool_stats (fa_address, apt_reserves, total_volume, trade_count, is_graduated, updated_at)
		VALUES ($1, $2::numeric, $3::numeric, $4, $5, $6)
		ON CONFLICT (fa_address) DO NOTHING
	`,
		asset.Address,
		stats.AptReserves.String(),
		stats.TotalVolume.String(),
		stats.TradeCount,
		stats.IsGraduated,
		stats.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert pool stats: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) GetAsset(ctx context.Context, address string) (model.IssuedAsset, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT address, name, symbol, creator, decimals, max_supply::text, icon_uri, project_uri, mint_fee_per_unit::text, created_at
		FROM issued_assets WHERE address = $1
	`, address)
	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.IssuedAsset{}, storage.ErrNotFound
	}
	return asset, err
}

// CreateTrade inserts a trade unless its transaction hash is already recorded.
func (s *Store) CreateTrade(ctx context.Context, trade model.Trade) (bool, error) {
	return insertTrade(ctx, s.pool, trade)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertTrade(ctx context.Context, db execer, trade model.Trade) (bool, error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO trades (
			id, transaction_hash, version, fa_address, user_address, trade_type,
			apt_amount, token_amount, price_per_token, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10)
		ON CONFLICT (transaction_hash) DO NOTHING
	`,
		trade.ID,
		trade.TransactionHash,
		int64(trade.Version),
		trade.FAAddress,
		trade.UserAddress,
		string(trade.TradeType),
		trade.AptAmount.String(),
		trade.TokenAmount.String(),
		trade.PricePerToken.String(),
		trade.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert trade: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// LatestTrade returns the trade with the highest ledger version.
func (s *Store) LatestTrade(ctx context.Context) (model.Trade, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+tradeColumns+`
		FROM trades t
		ORDER BY t.version DESC, t.created_at DESC
		LIMIT 1
	`)
	var trade model.Trade
	var version int64
	var tradeType, apt, tokens, price string
	err := row.Scan(&trade.ID, &trade.TransactionHash, &version, &trade.FAAddress, &trade.UserAddress,
		&tradeType, &apt, &tokens, &price, &trade.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Trade{}, storage.ErrNotFound
	}
	if err != nil {
		return model.Trade{}, err
	}
	trade.Version = uint64(version)
	trade.TradeType = model.TradeType(tradeType)
	if err := parseDecimals([]string{apt, tokens, price}, &trade.AptAmount, &trade.TokenAmount, &trade.PricePerToken); err != nil {
		return model.Trade{}, err
	}
	return trade, nil
}

func (s *Store) GetPoolStats(ctx context.Context, address string) (model.PoolStats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT fa_address, apt_reserves::text, total_volume::text, trade_count, is_graduated, updated_at
		FROM pool_stats WHERE fa_address = $1
	`, address)
	stats, err := scanPoolStats(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PoolStats{}, storage.ErrNotFound
	}
	return stats, err
}

// RecordPurchase inserts the trade and credits its pool in one transaction.
func (s *Store) RecordPurchase(ctx context.Context, trade model.Trade, credit decimal.Decimal) (bool, *model.PoolStats, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := insertTrade(ctx, tx, trade)
	if err != nil || !created {
		return false, nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE pool_stats SET
			apt_reserves = apt_reserves + $2::numeric,
			total_volume = total_volume + $2::numeric,
			trade_count = trade_count + 1,
			updated_at = $3
		WHERE fa_address = $1
		RETURNING fa_address, apt_reserves::text, total_volume::text, trade_count, is_graduated, updated_at
	`, trade.FAAddress, credit.String(), trade.CreatedAt)
	var out *model.PoolStats
	stats, err := scanPoolStats(row)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return false, nil, fmt.Errorf("credit pool stats: %w", err)
	default:
		out = &stats
	}

	if err := tx.Commit(ctx); err != nil {
		return false, nil, fmt.Errorf("commit: %w", err)
	}
	return true, out, nil
}

// MarkGraduated flips the graduation flag; it never clears it.
func (s *Store) MarkGraduated(ctx context.Context, address string, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pool_stats SET is_graduated = TRUE, updated_at = $2
		WHERE fa_address = $1 AND NOT is_graduated
	`, address, at)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	if _, err := s.GetPoolStats(ctx, address); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Store) ListAssets(ctx context.Context, limit, offset int) ([]model.AssetWithStats, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM issued_assets`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT a.address, a.name, a.symbol, a.creator, a.decimals, a.max_supply::text, a.icon_uri, a.project_uri,
			a.mint_fee_per_unit::text, a.created_at,
			ps.apt_reserves::text, ps.total_volume::text, ps.trade_count, ps.is_graduated, ps.updated_at,
			(SELECT count(*) FROM trades t WHERE t.fa_address = a.address)
		FROM issued_assets a
		LEFT JOIN pool_stats ps ON ps.fa_address = a.address
		ORDER BY a.created_at DESC, a.address
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.AssetWithStats
	for rows.Next() {
		var (
			row              model.AssetWithStats
			decimals         int16
			maxSupply        *string
			mintFee          string
			reserves, volume *string
			tradeCount       *int64
			graduated        *bool
			updatedAt        *time.Time
		)
		if err := rows.Scan(
			&row.Address, &row.Name, &row.Symbol, &row.Creator, &decimals, &maxSupply, &row.IconURI, &row.ProjectURI,
			&mintFee, &row.CreatedAt,
			&reserves, &volume, &tradeCount, &graduated, &updatedAt,
			&row.TradeCount,
		); err != nil {
			return nil, 0, err
		}
		row.Decimals = uint8(decimals)
		if err := fillAssetNumbers(&row.IssuedAsset, maxSupply, mintFee); err != nil {
			return nil, 0, err
		}
		if reserves != nil {
			stats := model.PoolStats{FAAddress: row.Address, TradeCount: *tradeCount, IsGraduated: *graduated, UpdatedAt: *updatedAt}
			if err := parseDecimals([]string{*reserves, *volume}, &stats.AptReserves, &stats.TotalVolume); err != nil {
				return nil, 0, err
			}
			row.PoolStats = &stats
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// TrendingAssets ranks every asset by its signed settlement sum after since.
func (s *Store) TrendingAssets(ctx context.Context, since time.Time, limit int) ([]model.TrendingAsset, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.address, a.name, a.symbol, a.creator,
			COALESCE(SUM(t.apt_amount), 0)::text AS volume_24h,
			COUNT(t.id) AS trade_count_24h,
			COALESCE(ps.apt_reserves, 0)::text,
			COALESCE(ps.total_volume, 0)::text,
			COALESCE(ps.is_graduated, FALSE)
		FROM issued_assets a
		LEFT JOIN trades t ON t.fa_address = a.address AND t.created_at > $1
		LEFT JOIN pool_stats ps ON ps.fa_address = a.address
		GROUP BY a.address, a.name, a.symbol, a.creator, ps.apt_reserves, ps.total_volume, ps.is_graduated
		ORDER BY COALESCE(SUM(t.apt_amount), 0) DESC, a.address
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TrendingAsset
	for rows.Next() {
		var row model.TrendingAsset
		var volume, reserves, total string
		if err := rows.Scan(&row.Address, &row.Name, &row.Symbol, &row.Creator, &volume, &row.TradeCount24h,
			&reserves, &total, &row.IsGraduated); err != nil {
			return nil, err
		}
		if err := parseDecimals([]string{volume, reserves, total}, &row.Volume24h, &row.AptReserves, &row.TotalVolume); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) RecentTrades(ctx context.Context, filter storage.TradeFilter) ([]model.TradeWithAsset, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM trades WHERE ($1::text = '' OR fa_address = $1)
	`, filter.FAAddress).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+tradeColumns+`, COALESCE(a.name, ''), COALESCE(a.symbol, '')
		FROM trades t
		LEFT JOIN issued_assets a ON a.address = t.fa_address
		WHERE ($1::text = '' OR t.fa_address = $1)
		ORDER BY t.created_at DESC, t.version DESC
		LIMIT $2 OFFSET $3
	`, filter.FAAddress, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.TradeWithAsset
	for rows.Next() {
		var row model.TradeWithAsset
		var version int64
		var tradeType, apt, tokens, price string
		if err := rows.Scan(&row.ID, &row.TransactionHash, &version, &row.FAAddress, &row.UserAddress,
			&tradeType, &apt, &tokens, &price, &row.CreatedAt, &row.Name, &row.Symbol); err != nil {
			return nil, 0, err
		}
		row.Version = uint64(version)
		row.TradeType = model.TradeType(tradeType)
		if err := parseDecimals([]string{apt, tokens, price}, &row.AptAmount, &row.TokenAmount, &row.PricePerToken); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

func (s *Store) WindowVolume(ctx context.Context, faAddress string, since time.Time) (model.WindowVolume, error) {
	var volume string
	var result model.WindowVolume
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(apt_amount), 0)::text, COUNT(*)
		FROM trades WHERE fa_address = $1 AND created_at >= $2
	`, faAddress, since).Scan(&volume, &result.TradeCount)
	if err != nil {
		return model.WindowVolume{}, err
	}
	result.Volume, err = decimal.NewFromString(volume)
	return result, err
}

const tradeColumns = `t.id::text, t.transaction_hash, t.version, t.fa_address, t.user_address, t.trade_type,
	t.apt_amount::text, t.token_amount::text, t.price_per_token::text, t.created_at`

func scanAsset(row pgx.Row) (model.IssuedAsset, error) {
	var asset model.IssuedAsset
	var decimals int16
	var maxSupply *string
	var mintFee string
	if err := row.Scan(&asset.Address, &asset.Name, &asset.Symbol, &asset.Creator, &decimals, &maxSupply,
		&asset.IconURI, &asset.ProjectURI, &mintFee, &asset.CreatedAt); err != nil {
		return model.IssuedAsset{}, err
	}
	asset.Decimals = uint8(decimals)
	if err := fillAssetNumbers(&asset, maxSupply, mintFee); err != nil {
		return model.IssuedAsset{}, err
	}
	return asset, nil
}

func fillAssetNumbers(asset *model.IssuedAsset, maxSupply *string, mintFee string) error {
	if maxSupply != nil {
		v, err := decimal.NewFromString(*maxSupply)
		if err != nil {
			return fmt.Errorf("parse max_supply: %w", err)
		}
		asset.MaxSupply = &v
	}
	fee, err := decimal.NewFromString(mintFee)
	if err != nil {
		return fmt.Errorf("parse mint_fee_per_unit: %w", err)
	}
	asset.MintFeePerUnit = fee
	return nil
}

func scanPoolStats(row pgx.Row) (model.PoolStats, error) {
	var stats model.PoolStats
	var reserves, volume string
	if err := row.Scan(&stats.FAAddress, &reserves, &volume, &stats.TradeCount, &stats.IsGraduated, &stats.UpdatedAt); err != nil {
		return model.PoolStats{}, err
	}
	if err := parseDecimals([]string{reserves, volume}, &stats.AptReserves, &stats.TotalVolume); err != nil {
		return model.PoolStats{}, err
	}
	return stats, nil
}

func parseDecimals(values []string, targets ...*decimal.Decimal) error {
	for i, value := range values {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("parse numeric %q: %w", value, err)
		}
		*targets[i] = d
	}
	return nil
}
