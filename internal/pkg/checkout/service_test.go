package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/323network/platform/app/models"
	"github.com/323network/platform/internal/pkg/parcelow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGateway struct {
	calls []parcelow.OrderRequest
	order *parcelow.Order
	err   error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req parcelow.OrderRequest) (*parcelow.Order, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

type fakeQuotes struct {
	rate float64
	err  error
}

func (f *fakeQuotes) USDToBRL(ctx context.Context) (float64, error) {
	return f.rate, f.err
}

type fakePayments struct {
	payments map[string]*models.ServicePayment
	saved    *models.ServicePayment
	saveErr  error
}

func (f *fakePayments) Create(p *models.ServicePayment) error { return nil }
func (f *fakePayments) GetByID(id string) (*models.ServicePayment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}
func (f *fakePayments) GetByParcelowOrderID(orderID string) (*models.ServicePayment, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakePayments) Update(p *models.ServicePayment) error { return nil }
func (f *fakePayments) AttachParcelowOrder(p *models.ServicePayment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *p
	f.saved = &cp
	return nil
}
func (f *fakePayments) UpdateParcelowStatus(id string, status string, statusCode int) error {
	return nil
}
func (f *fakePayments) ListByUserID(userID uint, offset, limit int) ([]models.ServicePayment, error) {
	return nil, nil
}

type fakeUsers struct {
	users map[uint]*models.User
}

func (f *fakeUsers) Create(u *models.User) error { return nil }
func (f *fakeUsers) GetByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}
func (f *fakeUsers) GetByEmail(email string) (*models.User, error) { return nil, gorm.ErrRecordNotFound }
func (f *fakeUsers) GetByAPITokenHash(hash string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUsers) Update(u *models.User) error               { return nil }
func (f *fakeUsers) List(offset, limit int) ([]models.User, error) { return nil, nil }
func (f *fakeUsers) Count() (int64, error)                     { return 0, nil }

func newFixture() (*fakeGateway, *fakeQuotes, *fakePayments, *fakeUsers, *Service) {
	gateway := &fakeGateway{
		order: &parcelow.Order{OrderID: 555, CheckoutURL: "https://app.parcelow.com/checkout/555", Status: "Open"},
	}
	quotes := &fakeQuotes{rate: 5.00}
	payments := &fakePayments{payments: map[string]*models.ServicePayment{
		"pay-1": {ID: "pay-1", UserID: 7, Amount: 10000, Currency: "USD", Metadata: models.MetadataMap{"origin": "stripe"}},
	}}
	users := &fakeUsers{users: map[uint]*models.User{
		7: {ID: 7, Name: "Maria Silva", Email: "maria@example.com", DocumentNumber: "123.456.789-09"},
	}}
	svc := NewService(gateway, quotes, payments, users, parcelow.EnvProduction)
	return gateway, quotes, payments, users, svc
}

func TestCreateCheckout_Success(t *testing.T) {
	gateway, _, payments, _, svc := newFixture()

	res, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	require.NoError(t, err)

	assert.Equal(t, "https://app.parcelow.com/checkout/555", res.CheckoutURL)
	assert.Equal(t, int64(555), res.OrderID)
	assert.Equal(t, "Open", res.Status)
	assert.Equal(t, int64(10000), res.TotalUSD)
	assert.Equal(t, int64(10000), res.OrderAmount)
	// USD 100 at rate 5.00: 520.00 / 0.9821 rounds to 52948 cents.
	assert.Equal(t, int64(52948), res.TotalBRL)

	require.Len(t, gateway.calls, 1)
	assert.Equal(t, "12345678909", gateway.calls[0].ClientCPF)
	assert.Equal(t, "maria@example.com", gateway.calls[0].ClientEmail)
	assert.Equal(t, "pay-1", gateway.calls[0].Reference)

	require.NotNil(t, payments.saved)
	assert.Equal(t, "555", payments.saved.ParcelowOrderID)
	assert.Equal(t, models.ParcelowStatusOpen, payments.saved.ParcelowStatus)
	assert.Equal(t, 0, payments.saved.ParcelowStatusCode)
	assert.Equal(t, 5.00, payments.saved.Metadata["exchange_rate"])
	assert.Equal(t, int64(52948), payments.saved.Metadata["total_brl_calculated"])
	assert.Equal(t, parcelow.EnvProduction, payments.saved.Metadata["parcelow_environment"])
	// Existing metadata keys survive the merge.
	assert.Equal(t, "stripe", payments.saved.Metadata["origin"])
}

func TestCreateCheckout_PaymentNotFound(t *testing.T) {
	gateway, _, _, _, svc := newFixture()

	_, err := svc.CreateCheckout(context.Background(), 7, "missing", "USD")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, gateway.calls)
}

func TestCreateCheckout_OwnershipMismatch(t *testing.T) {
	gateway, _, _, _, svc := newFixture()

	_, err := svc.CreateCheckout(context.Background(), 99, "pay-1", "USD")
	var denied *AccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, uint(99), denied.UserID)
	assert.Equal(t, "pay-1", denied.PaymentID)
	// No network side effect may happen on a violation.
	assert.Empty(t, gateway.calls)
}

func TestCreateCheckout_InvalidCPF(t *testing.T) {
	gateway, _, _, users, svc := newFixture()
	users.users[7].DocumentNumber = "123"

	_, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Empty(t, gateway.calls)
}

func TestCreateCheckout_MissingProfile(t *testing.T) {
	gateway, _, _, users, svc := newFixture()
	delete(users.users, 7)

	_, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, gateway.calls)
}

func TestCreateCheckout_RateFailureUsesFallback(t *testing.T) {
	_, quotes, payments, _, svc := newFixture()
	quotes.err = errors.New("quote service down")

	res, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	require.NoError(t, err)

	want := parcelow.ConvertUSDCentsToBRLCents(10000, parcelow.FallbackUSDBRLRate)
	assert.Equal(t, want, res.TotalBRL)
	require.NotNil(t, payments.saved)
	assert.Equal(t, parcelow.FallbackUSDBRLRate, payments.saved.Metadata["exchange_rate"])
}

func TestCreateCheckout_PersistFailureStillSucceeds(t *testing.T) {
	_, _, payments, _, svc := newFixture()
	payments.saveErr = errors.New("db write failed")

	res, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(555), res.OrderID)
}

func TestCreateCheckout_GatewayErrorPropagates(t *testing.T) {
	gateway, _, payments, _, svc := newFixture()
	gateway.err = &parcelow.UpstreamAPIError{Op: "order", StatusCode: 400, Message: "CPF invalido"}

	_, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	var apiErr *parcelow.UpstreamAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Nil(t, payments.saved)
}

func TestCreateCheckout_ExistingOrderShortCircuits(t *testing.T) {
	gateway, _, payments, _, svc := newFixture()
	payments.payments["pay-1"].ParcelowOrderID = "777"
	payments.payments["pay-1"].ParcelowCheckoutURL = "https://app.parcelow.com/checkout/777"
	payments.payments["pay-1"].ParcelowStatus = models.ParcelowStatusOpen
	payments.payments["pay-1"].Metadata = models.MetadataMap{"total_brl_calculated": float64(61234)}

	res, err := svc.CreateCheckout(context.Background(), 7, "pay-1", "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(777), res.OrderID)
	assert.Equal(t, "https://app.parcelow.com/checkout/777", res.CheckoutURL)
	assert.Equal(t, int64(61234), res.TotalBRL)
	assert.Empty(t, gateway.calls)
}

func TestNormalizeCPF(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "punctuated cpf", in: "123.456.789-09", want: "12345678909"},
		{name: "plain digits", in: "12345678909", want: "12345678909"},
		{name: "too short", in: "123", wantErr: true},
		{name: "too long", in: "123456789012", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeCPF(tc.in)
			if tc.wantErr {
				var validation *ValidationError
				require.ErrorAs(t, err, &validation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
