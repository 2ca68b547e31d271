// Package checkoutclient drives the checkout flow from a consumer's
// point of view: create the order, confirm in a modal, then hand off to
// the hosted payment page. It is UI-framework agnostic; navigation is
// injected.
package checkoutclient

import (
	"context"
	"errors"
	"sync"

	"github.com/323network/platform/internal/pkg/checkout"
)

// ErrCheckoutInFlight is returned when a checkout is started while a
// previous one is still running.
var ErrCheckoutInFlight = errors.New("checkout already in progress")

// CheckoutAPI creates orders, typically backed by the HTTP API.
type CheckoutAPI interface {
	CreateCheckout(ctx context.Context, paymentID, currency string) (*checkout.Result, error)
}

// Navigator performs the final redirect to the hosted checkout page.
type Navigator interface {
	Redirect(url string) error
}

// Controller holds the checkout flow state for one consumer session.
type Controller struct {
	api CheckoutAPI
	nav Navigator

	mu        sync.Mutex
	payload   *checkout.Result
	modalOpen bool
	inFlight  bool
	lastError string
}

// NewController creates a controller from injected collaborators.
func NewController(api CheckoutAPI, nav Navigator) *Controller {
	return &Controller{api: api, nav: nav}
}

// CreateCheckout creates the order and opens the confirmation modal on
// success. Only one checkout may run at a time.
func (c *Controller) CreateCheckout(ctx context.Context, paymentID, currency string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrCheckoutInFlight
	}
	c.inFlight = true
	c.lastError = ""
	c.mu.Unlock()

	result, err := c.api.CreateCheckout(ctx, paymentID, currency)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		c.lastError = err.Error()
		return err
	}
	c.payload = result
	c.modalOpen = true
	return nil
}

// ConfirmAndRedirect leaves the flow by navigating to the stored
// checkout URL. This is terminal: the payload stays set so the state
// survives until the page actually unloads.
func (c *Controller) ConfirmAndRedirect() error {
	c.mu.Lock()
	if c.payload == nil || c.payload.CheckoutURL == "" {
		c.lastError = "No checkout URL available"
		c.mu.Unlock()
		return errors.New("No checkout URL available")
	}
	url := c.payload.CheckoutURL
	c.modalOpen = false
	c.mu.Unlock()

	return c.nav.Redirect(url)
}

// CancelCheckout abandons the pending order and closes the modal.
func (c *Controller) CancelCheckout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = nil
	c.modalOpen = false
}

// ClearError resets the last error message.
func (c *Controller) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastError = ""
}

// Payload returns the stored checkout result, nil when none.
func (c *Controller) Payload() *checkout.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

// ModalOpen reports whether the confirmation modal should be shown.
func (c *Controller) ModalOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modalOpen
}

// InFlight reports whether a checkout creation is currently running.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastError returns the stored error message, empty when none.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}
