package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"curveScope/internal/launchpad"
	"curveScope/internal/metrics"
	"curveScope/internal/model"
	"curveScope/internal/notify"
	"curveScope/internal/storage"
)

// DefaultGraduationThreshold is 21500 APT expressed in octas.
var DefaultGraduationThreshold = decimal.NewFromInt(2_150_000_000_000)

const DefaultFeeBps = 100

// Config controls the derived-state rules.
type Config struct {
	GraduationThreshold decimal.Decimal
	FeeBps              int64
}

// Updater turns decoded launchpad events into asset, pool and trade rows.
// Every write is idempotent on asset address or transaction hash.
type Updater struct {
	cfg      Config
	store    storage.Writer
	notifier notify.Notifier
	metrics  *metrics.Engine
	logger   *zap.Logger
	newID    func() string
}

func NewUpdater(cfg Config, store storage.Writer, notifier notify.Notifier, engine *metrics.Engine, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.GraduationThreshold.Sign() <= 0 {
		cfg.GraduationThreshold = DefaultGraduationThreshold
	}
	if cfg.FeeBps < 0 {
		cfg.FeeBps = DefaultFeeBps
	}
	return &Updater{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		metrics:  engine,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

// Apply persists the effect of one decoded event emitted by tx.
func (u *Updater) Apply(ctx context.Context, tx model.Transaction, event launchpad.DomainEvent) error {
	u.metrics.RecordEvent(string(event.Kind()))

	switch ev := event.(type) {
	case launchpad.AssetCreated:
		return u.createAsset(ctx, tx, ev)
	case launchpad.AssetMinted:
		_, err := u.recordTrade(ctx, tx, model.Trade{
			FAAddress:     ev.FAAddress,
			UserAddress:   ev.Recipient,
			TradeType:     model.TradeMint,
			AptAmount:     ev.TotalMintFee,
			TokenAmount:   ev.Amount,
			PricePerToken: PricePerToken(ev.TotalMintFee, ev.Amount),
		})
		return err
	case launchpad.AssetBurned:
		_, err := u.recordTrade(ctx, tx, model.Trade{
			FAAddress:     ev.FAAddress,
			UserAddress:   ev.Burner,
			TradeType:     model.TradeBurn,
			AptAmount:     decimal.Zero,
			TokenAmount:   ev.Amount,
			PricePerToken: decimal.Zero,
		})
		return err
	case launchpad.TokensPurchased:
		return u.recordPurchase(ctx, tx, model.Trade{
			FAAddress:     ev.FAAddress,
			UserAddress:   ev.Buyer,
			TradeType:     model.TradeBuy,
			AptAmount:     ev.AptAmount,
			TokenAmount:   ev.TokenAmount,
			PricePerToken: PricePerToken(ev.AptAmount, ev.TokenAmount),
		}, ev.AptAmount.Sub(ev.FeeAmount))
	case launchpad.PurchaseCall:
		return u.applyPurchaseCall(ctx, tx, ev)
	case launchpad.TokensSold:
		// Reserves only grow toward graduation; sells are recorded but not debited.
		_, err := u.recordTrade(ctx, tx, model.Trade{
			FAAddress:     ev.FAAddress,
			UserAddress:   ev.Seller,
			TradeType:     model.TradeSell,
			AptAmount:     ev.AptAmount.Neg(),
			TokenAmount:   ev.TokenAmount.Neg(),
			PricePerToken: PricePerToken(ev.AptAmount, ev.TokenAmount),
		})
		return err
	case launchpad.PoolGraduated:
		return u.graduate(ctx, tx, ev.FAAddress, "event")
	case launchpad.DexTelemetry:
		u.logger.Info("dex event observed",
			zap.String("event", ev.Name),
			zap.String("type", ev.Type),
			zap.Uint64("version", tx.Version),
			zap.String("tx", tx.Hash))
		return nil
	case launchpad.Unrecognized:
		u.logger.Debug("unrecognized contract event", zap.String("type", ev.Type), zap.String("tx", tx.Hash))
		return nil
	default:
		return fmt.Errorf("unsupported event kind %s", event.Kind())
	}
}

func (u *Updater) applyPurchaseCall(ctx context.Context, tx model.Transaction, ev launchpad.PurchaseCall) error {
	fee := FeeAmount(ev.GrossAmount, u.cfg.FeeBps)
	return u.recordPurchase(ctx, tx, model.Trade{
		FAAddress:     ev.FAAddress,
		UserAddress:   ev.Buyer,
		TradeType:     model.TradeBuy,
		AptAmount:     ev.GrossAmount,
		TokenAmount:   ev.TokenAmount,
		PricePerToken: PricePerToken(ev.GrossAmount, ev.TokenAmount),
	}, ev.GrossAmount.Sub(fee))
}

func (u *Updater) createAsset(ctx context.Context, tx model.Transaction, ev launchpad.AssetCreated) error {
	at := tx.Time()
	asset := model.IssuedAsset{
		Address:        ev.Address,
		Name:           ev.Name,
		Symbol:         ev.Symbol,
		Creator:        ev.Creator,
		Decimals:       ev.Decimals,
		MaxSupply:      ev.MaxSupply,
		IconURI:        ev.IconURI,
		ProjectURI:     ev.ProjectURI,
		MintFeePerUnit: ev.MintFeePerUnit,
		CreatedAt:      at,
	}
	created, err := u.store.CreateAsset(ctx, asset, model.NewPoolStats(ev.Address, at))
	if err != nil {
		return fmt.Errorf("create asset %s: %w", ev.Address, err)
	}
	if !created {
		u.logger.Debug("asset already exists", zap.String("address", ev.Address), zap.String("symbol", ev.Symbol))
		return nil
	}
	u.logger.Info("asset created",
		zap.String("address", ev.Address),
		zap.String("name", ev.Name),
		zap.String("symbol", ev.Symbol),
		zap.Uint8("decimals", ev.Decimals))
	u.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindAssetCreated,
		FAAddress: ev.Address,
		TxHash:    tx.Hash,
		Version:   tx.Version,
		Data:      asset,
	})
	return nil
}

// recordTrade fills the transaction-derived fields and inserts the row.
// created is false when the transaction hash was already recorded.
func (u *Updater) recordTrade(ctx context.Context, tx model.Transaction, trade model.Trade) (bool, error) {
	u.stamp(tx, &trade)
	created, err := u.store.CreateTrade(ctx, trade)
	if err != nil {
		return false, fmt.Errorf("create %s trade %s: %w", trade.TradeType, tx.Hash, err)
	}
	u.recorded(ctx, tx, trade, created)
	return created, nil
}

// recordPurchase inserts a buy and credits net to its pool in one store write.
func (u *Updater) recordPurchase(ctx context.Context, tx model.Transaction, trade model.Trade, net decimal.Decimal) error {
	u.stamp(tx, &trade)
	created, stats, err := u.store.RecordPurchase(ctx, trade, net)
	if err != nil {
		return fmt.Errorf("record purchase %s: %w", tx.Hash, err)
	}
	u.recorded(ctx, tx, trade, created)
	if !created {
		return nil
	}
	if stats == nil {
		u.logger.Warn("pool stats not found", zap.String("fa", trade.FAAddress), zap.String("tx", tx.Hash))
		return nil
	}
	if stats.IsGraduated || stats.AptReserves.LessThan(u.cfg.GraduationThreshold) {
		return nil
	}
	return u.graduate(ctx, tx, trade.FAAddress, "threshold")
}

func (u *Updater) stamp(tx model.Transaction, trade *model.Trade) {
	trade.ID = u.newID()
	trade.TransactionHash = tx.Hash
	trade.Version = tx.Version
	trade.CreatedAt = tx.Time()
}

func (u *Updater) recorded(ctx context.Context, tx model.Transaction, trade model.Trade, created bool) {
	if !created {
		u.logger.Debug("trade already recorded", zap.String("tx", tx.Hash), zap.String("type", string(trade.TradeType)))
		return
	}
	u.logger.Info("trade recorded",
		zap.String("type", string(trade.TradeType)),
		zap.String("fa", trade.FAAddress),
		zap.String("user", trade.UserAddress),
		zap.String("apt", trade.AptAmount.String()),
		zap.String("tokens", trade.TokenAmount.String()),
		zap.Uint64("version", tx.Version))
	u.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindTradeRecorded,
		FAAddress: trade.FAAddress,
		TxHash:    tx.Hash,
		Version:   tx.Version,
		Data:      trade,
	})
}

func (u *Updater) graduate(ctx context.Context, tx model.Transaction, address, reason string) error {
	changed, err := u.store.MarkGraduated(ctx, address, tx.Time())
	if errors.Is(err, storage.ErrNotFound) {
		u.logger.Warn("graduation for unknown pool", zap.String("fa", address), zap.String("tx", tx.Hash))
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark graduated %s: %w", address, err)
	}
	if !changed {
		return nil
	}
	u.logger.Info("pool graduated", zap.String("fa", address), zap.String("reason", reason), zap.Uint64("version", tx.Version))
	u.notifier.Notify(ctx, notify.Message{
		Kind:      notify.KindPoolGraduated,
		FAAddress: address,
		TxHash:    tx.Hash,
		Version:   tx.Version,
		Data:      map[string]string{"reason": reason},
	})
	return nil
}
