package checkout

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/323network/platform/app/models"
	"github.com/323network/platform/app/repository"
	"github.com/323network/platform/internal/pkg/exchange"
	"github.com/323network/platform/internal/pkg/parcelow"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// Gateway is the slice of the Parcelow client used by the orchestrator,
// injectable so tests can substitute a fake.
type Gateway interface {
	CreateOrder(ctx context.Context, req parcelow.OrderRequest) (*parcelow.Order, error)
}

// Result is the success payload of a checkout creation. TotalUSD always
// equals the original payment amount; the BRL total is a derived quote.
type Result struct {
	CheckoutURL string `json:"checkout_url"`
	OrderID     int64  `json:"order_id"`
	Status      string `json:"status"`
	TotalUSD    int64  `json:"total_usd"`
	TotalBRL    int64  `json:"total_brl"`
	OrderAmount int64  `json:"order_amount"`
}

// Service orchestrates Parcelow checkout creation over a single payment
// record. All collaborators are injected.
type Service struct {
	gateway     Gateway
	quotes      exchange.QuoteService
	payments    repository.PaymentRepository
	users       repository.UserRepository
	environment string
}

// NewService creates a checkout service from injected collaborators.
func NewService(gateway Gateway, quotes exchange.QuoteService, payments repository.PaymentRepository, users repository.UserRepository, environment string) *Service {
	return &Service{
		gateway:     gateway,
		quotes:      quotes,
		payments:    payments,
		users:       users,
		environment: environment,
	}
}

// NormalizeCPF strips punctuation from a brazilian tax id and requires
// exactly 11 digits.
func NormalizeCPF(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &ValidationError{Message: "CPF is required for Parcelow payment. Please update your profile."}
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", &ValidationError{Message: "Invalid CPF format. Must be 11 digits."}
	}
	return digits, nil
}

// CreateCheckout runs the full checkout pipeline for the authenticated
// user. The currency parameter is accepted for API compatibility but
// order creation is always USD-denominated with a derived BRL quote.
func (s *Service) CreateCheckout(ctx context.Context, userID uint, paymentID, currency string) (*Result, error) {
	payment, err := s.payments.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "payment", ID: paymentID}
		}
		return nil, err
	}

	// Ownership must hold before any external side effect.
	if payment.UserID != userID {
		log.Errorf("[Checkout] security violation: user %d tried to access payment %s owned by %d",
			userID, payment.ID, payment.UserID)
		return nil, &AccessDeniedError{UserID: userID, PaymentID: payment.ID}
	}

	// The gateway's treatment of the reference field as a dedup key is
	// unverified, so an already-created order is returned as-is instead
	// of being recreated upstream.
	if payment.ParcelowOrderID != "" && payment.ParcelowCheckoutURL != "" {
		return storedResult(payment), nil
	}

	profile, err := s.users.GetByID(payment.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user profile", ID: strconv.FormatUint(uint64(payment.UserID), 10)}
		}
		return nil, err
	}

	cpf, err := NormalizeCPF(profile.DocumentNumber)
	if err != nil {
		return nil, err
	}

	name := profile.Name
	if name == "" {
		name = "Cliente"
	}

	order, err := s.gateway.CreateOrder(ctx, parcelow.OrderRequest{
		AmountUSDCents: payment.Amount,
		ClientName:     name,
		ClientEmail:    profile.Email,
		ClientCPF:      cpf,
		Reference:      payment.ID,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[Checkout] order created for payment %s: parcelow id %d", payment.ID, order.OrderID)

	rate := s.fetchRate(ctx)
	totalBRL := parcelow.ConvertUSDCentsToBRLCents(payment.Amount, rate)

	payment.ParcelowOrderID = strconv.FormatInt(order.OrderID, 10)
	payment.ParcelowCheckoutURL = order.CheckoutURL
	payment.ParcelowStatus = models.ParcelowStatusOpen
	payment.ParcelowStatusCode = 0
	payment.Metadata = payment.Metadata.Merge(map[string]any{
		"parcelow_environment": s.environment,
		"parcelow_created_at":  time.Now().UTC().Format(time.RFC3339),
		"exchange_rate":        rate,
		"total_brl_calculated": totalBRL,
	})

	// The order already exists upstream; a failed local write is logged
	// and the checkout still succeeds.
	if err := s.payments.AttachParcelowOrder(payment); err != nil {
		log.Errorf("[Checkout] failed to save order data for payment %s: %v", payment.ID, err)
	}

	return &Result{
		CheckoutURL: order.CheckoutURL,
		OrderID:     order.OrderID,
		Status:      models.ParcelowStatusOpen,
		TotalUSD:    payment.Amount,
		TotalBRL:    totalBRL,
		OrderAmount: payment.Amount,
	}, nil
}

// fetchRate never fails the checkout: quote errors fall back to the
// documented constant rate.
func (s *Service) fetchRate(ctx context.Context) float64 {
	rate, err := s.quotes.USDToBRL(ctx)
	if err != nil || rate <= 0 {
		log.Warnf("[Checkout] failed to fetch exchange rate, using fallback %.2f: %v",
			parcelow.FallbackUSDBRLRate, err)
		return parcelow.FallbackUSDBRLRate
	}
	return rate
}

func storedResult(payment *models.ServicePayment) *Result {
	orderID, _ := strconv.ParseInt(payment.ParcelowOrderID, 10, 64)
	status := payment.ParcelowStatus
	if status == "" {
		status = models.ParcelowStatusOpen
	}
	return &Result{
		CheckoutURL: payment.ParcelowCheckoutURL,
		OrderID:     orderID,
		Status:      status,
		TotalUSD:    payment.Amount,
		TotalBRL:    metadataInt64(payment.Metadata, "total_brl_calculated"),
		OrderAmount: payment.Amount,
	}
}

// metadataInt64 reads a numeric metadata value regardless of whether it
// came back from the JSON column as float64 or was just written as int64.
func metadataInt64(m models.MetadataMap, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	default:
		return 0
	}
}
