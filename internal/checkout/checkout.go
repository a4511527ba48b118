// Package checkout turns a cart into an order awaiting confirmation over a
// messaging channel.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-storefront/internal/cart"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/storage"
	"github.com/safar/go-storefront/internal/store"
	"go.uber.org/zap"
)

const (
	SourceWeb        = "web"
	PlatformWhatsApp = "whatsapp_redirect"
)

var ErrEmptyCart = errors.New("cart is empty")

type Service struct {
	kv          storage.KV
	pricing     models.PricingConfig
	maxQuantity int
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(kv storage.KV, pricing models.PricingConfig, maxQuantity int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		kv:          kv,
		pricing:     pricing,
		maxQuantity: maxQuantity,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder records the cart as a pending order and empties the cart. The
// cart is taken in one atomic step; if the order cannot be recorded its
// items are merged back.
func (s *Service) PlaceOrder(ctx context.Context, cartID string) (*models.Order, error) {
	var items []models.LineItem
	_, err := store.UpdateCart(ctx, s.kv, cartID, s.maxQuantity, func(current []models.LineItem) ([]models.LineItem, error) {
		if len(current) == 0 {
			return nil, ErrEmptyCart
		}
		items = current
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	totals, err := cart.ComputeTotals(items, s.pricing)
	if err != nil {
		s.restore(ctx, cartID, items)
		return nil, fmt.Errorf("compute totals: %w", err)
	}
	totals = totals.Rounded()

	now := s.now()
	order, err := store.CreateOrder(ctx, s.kv, models.Order{
		Items:     items,
		Totals:    totals,
		Total:     totals.Total,
		Status:    models.OrderStatusPendingWhatsApp,
		CreatedAt: now,
		UpdatedAt: now,
		CustomerInfo: models.CustomerInfo{
			Source:   SourceWeb,
			Platform: PlatformWhatsApp,
		},
	})
	if err != nil {
		s.restore(ctx, cartID, items)
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("cart_id", cartID),
		zap.Int("items", totals.ItemCount),
		zap.String("total", order.Total.StringFixed(2)))

	return order, nil
}

func (s *Service) restore(ctx context.Context, cartID string, items []models.LineItem) {
	_, err := store.UpdateCart(ctx, s.kv, cartID, s.maxQuantity, func(current []models.LineItem) ([]models.LineItem, error) {
		merged := current
		for _, item := range items {
			next, err := cart.AddItem(merged, item, s.maxQuantity)
			if err != nil {
				continue
			}
			merged = next
		}
		return merged, nil
	})
	if err != nil {
		s.logger.Error("restore cart after failed checkout", zap.String("cart_id", cartID), zap.Error(err))
	}
}
