package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/client"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/notify"
	"storefront-checkout/internal/repository"
)

// PaymentService confirms gateway transactions against stored orders. Both
// delivery paths, the shopper's return-URL callback and the async webhook,
// funnel into the same Reconcile; the conditional paid-flip inside the
// transaction is what makes duplicate delivery a no-op.
type PaymentService interface {
	Reconcile(ctx context.Context, reference string) (*model.Order, error)
	HandleWebhook(ctx context.Context, signature string, body []byte) error
}

type paymentServiceImpl struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	userRepo         repository.UserRepository
	webhookEventRepo repository.WebhookEventRepository
	gateway          client.PaymentGateway
	notifier         notify.Sender
	logger           zerolog.Logger
}

func NewPaymentService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	webhookEventRepo repository.WebhookEventRepository,
	gateway client.PaymentGateway,
	notifier notify.Sender,
	logger zerolog.Logger,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		orderRepo:        orderRepo,
		userRepo:         userRepo,
		webhookEventRepo: webhookEventRepo,
		gateway:          gateway,
		notifier:         notifier,
		logger:           logger,
	}
}

func (s *paymentServiceImpl) Reconcile(ctx context.Context, reference string) (*model.Order, error) {
	txn, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, apperr.Wrap(apperr.ExternalVerification, apperr.ReasonVerifyFailed, "gateway verification failed", err)
	}
	if txn.Status != "success" {
		return nil, apperr.New(apperr.ExternalVerification, apperr.ReasonVerifyFailed,
			fmt.Sprintf("transaction status is %q", txn.Status))
	}

	// order and user come from provider-attested metadata, never from the
	// client request
	if txn.Metadata.OrderID == 0 {
		return nil, apperr.New(apperr.ExternalVerification, apperr.ReasonVerifyFailed, "transaction metadata carries no order")
	}

	flipped := false
	var orderID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, txn.Metadata.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, apperr.ReasonOrderNotFound, "order not found")
			}
			return err
		}
		orderID = order.ID

		if order.Reference != "" && order.Reference != txn.Reference {
			return apperr.New(apperr.ExternalVerification, apperr.ReasonVerifyFailed, "reference does not match order")
		}
		if expected := minorUnits(order.TotalAmount); txn.AmountMinor != expected {
			return apperr.New(apperr.ExternalVerification, apperr.ReasonAmountMismatch,
				fmt.Sprintf("paid %d, expected %d", txn.AmountMinor, expected))
		}
		if !strings.EqualFold(txn.Currency, order.Currency) {
			return apperr.New(apperr.ExternalVerification, apperr.ReasonCurrencyMismatch, "currency does not match order")
		}
		if txn.Metadata.UserID != order.UserID {
			return apperr.New(apperr.ExternalVerification, apperr.ReasonUserMismatch, "payer does not match order owner")
		}

		// idempotency gate, checked and applied in one statement: the second
		// delivery of the same payment affects zero rows and skips the side
		// effects below
		flipped, err = s.orderRepo.MarkPaid(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if !flipped {
			return nil
		}

		if order.Status == model.StatusPending {
			moved, err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.StatusPending, model.StatusProcessing)
			if err != nil {
				return err
			}
			if moved {
				err = s.orderRepo.AppendStatusHistory(ctx, tx, &model.OrderStatusHistory{
					OrderID:    order.ID,
					FromStatus: model.StatusPending,
					ToStatus:   model.StatusProcessing,
					Actor:      model.ActorPayment,
					Note:       "payment confirmed",
				})
				if err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if flipped {
		s.sendPaymentConfirmed(ctx, order)
	}

	return order, nil
}

func (s *paymentServiceImpl) sendPaymentConfirmed(ctx context.Context, order *model.Order) {
	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("order_id", order.ID).Msg("load user for payment notification failed")
		return
	}
	err = s.notifier.Send(ctx, user.Email, "payment_confirmed", map[string]interface{}{
		"order_id": order.ID,
		"total":    order.TotalAmount.StringFixed(2),
		"currency": order.Currency,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("order_id", order.ID).Msg("payment confirmed notification failed")
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// HandleWebhook authenticates and dispatches a gateway event. The HMAC check
// runs over the raw body before anything is parsed.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, signature string, body []byte) error {
	if err := s.gateway.ValidateWebhookSignature(signature, body); err != nil {
		return apperr.Wrap(apperr.ExternalVerification, apperr.ReasonBadSignature, "webhook signature invalid", err)
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	if payload.Event != "charge.success" {
		return nil
	}

	// event log short-circuits redeliveries cheaply; Reconcile stays safe
	// without it
	eventID := payload.Event + ":" + payload.Data.Reference
	processed, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	if _, err := s.Reconcile(ctx, payload.Data.Reference); err != nil {
		return fmt.Errorf("reconcile %s: %w", payload.Data.Reference, err)
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, eventID, payload.Event); err != nil {
		s.logger.Warn().Err(err).Str("event_id", eventID).Msg("record webhook event failed")
	}
	return nil
}
