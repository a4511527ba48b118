package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/storage"
	"github.com/shopspring/decimal"
)

// CreateOrder appends order to the admin order log, filling in the id,
// status and timestamps when they are unset.
func CreateOrder(ctx context.Context, kv storage.KV, order models.Order) (*models.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPendingWhatsApp
	}
	if !models.ValidOrderStatus(order.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, order.Status)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	_, err := updateList(ctx, kv, KeyAdminOrders, func(orders []models.Order) ([]models.Order, error) {
		for _, o := range orders {
			if o.ID == order.ID {
				return nil, fmt.Errorf("order %s already exists", order.ID)
			}
		}
		return append(orders, order), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return &order, nil
}

func loadOrders(ctx context.Context, kv storage.KV) ([]models.Order, error) {
	var orders []models.Order
	if _, err := readJSON(ctx, kv, KeyAdminOrders, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func GetOrder(ctx context.Context, kv storage.KV, id string) (*models.Order, error) {
	orders, err := loadOrders(ctx, kv)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// ListOrdersCursor pages through orders newest first. An empty status lists
// every order.
func ListOrdersCursor(ctx context.Context, kv storage.KV, status, cursor string, limit int) (*CursorPage, error) {
	if limit < 1 {
		limit = DefaultPageSize
	}

	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	all, err := loadOrders(ctx, kv)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	orders := make([]models.Order, 0, limit)
	hasMore := false
	for _, o := range all {
		if status != "" && o.Status != status {
			continue
		}
		if !cursorData.after(o.CreatedAt, o.ID) {
			continue
		}
		if len(orders) == limit {
			hasMore = true
			break
		}
		orders = append(orders, o)
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func UpdateOrderStatus(ctx context.Context, kv storage.KV, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
	}

	var updated models.Order
	_, err := updateList(ctx, kv, KeyAdminOrders, func(orders []models.Order) ([]models.Order, error) {
		for i := range orders {
			if orders[i].ID == id {
				orders[i].Status = status
				orders[i].UpdatedAt = time.Now().UTC()
				updated = orders[i]
				return orders, nil
			}
		}
		return nil, ErrOrderNotFound
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// SummarizeOrders computes dashboard figures. Cancelled orders are counted
// by status but excluded from revenue and items sold.
func SummarizeOrders(ctx context.Context, kv storage.KV) (*models.OrderMetrics, error) {
	orders, err := loadOrders(ctx, kv)
	if err != nil {
		return nil, fmt.Errorf("summarize orders: %w", err)
	}

	metrics := &models.OrderMetrics{
		OrderCount:        len(orders),
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
		ByStatus:          make(map[string]int),
	}

	billable := 0
	for _, o := range orders {
		metrics.ByStatus[o.Status]++
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		billable++
		metrics.Revenue = metrics.Revenue.Add(o.Total)
		for _, item := range o.Items {
			metrics.ItemsSold += item.Quantity
		}
	}

	if billable > 0 {
		metrics.AverageOrderValue = metrics.Revenue.Div(decimal.NewFromInt(int64(billable))).Round(2)
	}

	return metrics, nil
}
