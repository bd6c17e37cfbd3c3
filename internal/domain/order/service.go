package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/grocery-orders/internal/domain/basket"
	"github.com/xenking/grocery-orders/internal/domain/catalog"
	"github.com/xenking/grocery-orders/internal/domain/pricing"
)

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	UserID      string
	MailAddress string
	Basket      []string
}

// PlaceResult holds the composed storefront response together with the
// pricing and notification details that produced it.
type PlaceResult struct {
	Message string
	Pricing pricing.Result
	Outcome Outcome
}

// Service orchestrates order fulfillment: stock verification, pricing,
// customer notification, and response composition.
type Service struct {
	catalog  *catalog.Snapshot
	pricer   *pricing.Engine
	mailer   Mailer
	producer Producer
	lg       *zap.Logger

	tracer trace.Tracer
	placed metric.Int64Counter
}

// NewService creates an order Service with the required collaborators.
func NewService(c *catalog.Snapshot, pricer *pricing.Engine, mailer Mailer, producer Producer, lg *zap.Logger) *Service {
	placed, err := otel.Meter("grocery-orders").Int64Counter("orders.placed",
		metric.WithDescription("Orders placed successfully"))
	if err != nil {
		lg.Warn("create orders counter", zap.Error(err))
	}

	return &Service{
		catalog:  c,
		pricer:   pricer,
		mailer:   mailer,
		producer: producer,
		lg:       lg,
		tracer:   otel.Tracer("grocery-orders"),
		placed:   placed,
	}
}

// Place runs the fulfillment workflow for one basket. The basket is tallied
// once and the same tally feeds both the stock check and the pricing engine.
// Insufficient stock short-circuits before any pricing or notification work.
// The returned message is always a normal storefront response; no workflow
// outcome is surfaced as an error.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*PlaceResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.Place",
		trace.WithAttributes(attribute.Int("basket.size", len(req.Basket))))
	defer span.End()

	tally := basket.TallyOf(req.Basket)

	if !s.catalog.HasStock(tally) {
		s.lg.Info("basket rejected, insufficient stock", zap.String("user_id", req.UserID))
		return &PlaceResult{Message: OutOfStockMessage}, nil
	}

	priced := s.pricer.Price(tally)
	contents := formatContents(priced.Lines)
	total := pricing.Amount(priced.Total)

	status, err := s.mailer.Send(ctx, req.UserID, req.MailAddress, true,
		"Your grocery order",
		fmt.Sprintf("Your order of [{%s}] costs %s.", contents, total))
	if err != nil {
		// An unreachable mail channel is reported to the customer as
		// unavailability. Kept for compatibility with the storefront
		// contract; see DESIGN.md.
		s.lg.Warn("mail channel unreachable", zap.Error(err))
		return &PlaceResult{Message: OutOfStockMessage, Pricing: priced}, nil
	}
	if status != MailSentStatus {
		s.lg.Info("mail not delivered", zap.String("status", status))
	}

	orderID := uuid.New().String()
	s.dispatch(orderID)

	if s.placed != nil {
		s.placed.Add(ctx, 1)
	}
	s.lg.Info("order placed",
		zap.String("order_id", orderID),
		zap.String("user_id", req.UserID),
		zap.String("total", total))

	message := fmt.Sprintf("Dear %s! You placed order that contains [{%s}] and costs %s. We sent you details to %s",
		req.UserID, contents, total, req.MailAddress)

	return &PlaceResult{
		Message: message,
		Pricing: priced,
		Outcome: Outcome{PrimaryStatus: status, SecondaryDispatched: true},
	}, nil
}

// dispatch publishes the order event without waiting for the outcome.
// Failures and panics stay on this side of the request boundary.
func (s *Service) dispatch(orderID string) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.lg.Debug("order event dispatch panicked", zap.Any("panic", rec))
			}
		}()
		if err := s.producer.Dispatch(context.Background(), orderID); err != nil {
			s.lg.Debug("order event dispatch failed",
				zap.String("order_id", orderID), zap.Error(err))
		}
	}()
}

// formatContents renders priced lines as "id=quantity" pairs in basket
// first-appearance order, e.g. "orange=3, apple=2".
func formatContents(lines []pricing.Line) string {
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = fmt.Sprintf("%s=%d", line.ItemID, line.Quantity)
	}
	return strings.Join(parts, ", ")
}
