// Package checkout drives one order attempt through shipping, payment and
// success.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepSuccess  Step = "success"
)

type SubmitStatus string

const (
	SubmitIdle      SubmitStatus = "idle"
	SubmitPending   SubmitStatus = "pending"
	SubmitSucceeded SubmitStatus = "succeeded"
	SubmitFailed    SubmitStatus = "failed"
)

const DefaultOrderTimeout = 20 * time.Second

// Cart is the part of the cart store checkout reads and clears.
type Cart interface {
	Items() []model.LineItem
	Total() decimal.Decimal
	IsEmpty() bool
	Clear()
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error)
}

// Submission tracks the order-creation call.
type Submission struct {
	Status     SubmitStatus  `json:"status"`
	StartedAt  time.Time     `json:"startedAt,omitempty"`
	FinishedAt time.Time     `json:"finishedAt,omitempty"`
	Timeout    time.Duration `json:"-"`
	Err        error         `json:"-"`
	cancel     context.CancelFunc
}

type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Receipt is captured before the cart is cleared so the success screen
// can still show what was ordered.
type Receipt struct {
	OrderID       string                `json:"orderId"`
	Synthesized   bool                  `json:"synthesized"`
	Items         []model.LineItem      `json:"items"`
	Summary       pricing.Summary       `json:"summary"`
	PaymentMethod model.PaymentMethod   `json:"paymentMethod"`
	Shipping      model.ShippingAddress `json:"shipping"`
	PlacedAt      time.Time             `json:"placedAt"`
	URL           string                `json:"url,omitempty"`
}

type EmptyPrompt struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionLabel string `json:"actionLabel"`
	ActionHref  string `json:"actionHref"`
}

var emptyCheckout = EmptyPrompt{
	Title:       "Nothing to checkout",
	Description: "Add some items to your bag first.",
	ActionLabel: "Start Shopping",
	ActionHref:  "/products",
}

// View is what the checkout page renders.
type View struct {
	Step           Step                   `json:"step"`
	Empty          *EmptyPrompt           `json:"empty,omitempty"`
	Shipping       *model.ShippingAddress `json:"shipping,omitempty"`
	PaymentMethod  model.PaymentMethod    `json:"paymentMethod"`
	PaymentOptions []PaymentOption        `json:"paymentOptions"`
	Items          []model.LineItem       `json:"items"`
	Summary        pricing.Summary        `json:"summary"`
	Submit         SubmitStatus           `json:"submit"`
	CanSubmit      bool                   `json:"canSubmit"`
	Notice         *Notice                `json:"notice,omitempty"`
	Receipt        *Receipt               `json:"receipt,omitempty"`
}

type Option func(*Machine)

func WithTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// Machine is the checkout session of one storefront session.
type Machine struct {
	cart     Cart
	orders   OrderCreator
	pricing  pricing.Calculator
	validate *validator.Validate
	timeout  time.Duration
	now      func() time.Time

	mu         sync.Mutex
	step       Step
	shipping   *model.ShippingAddress
	method     model.PaymentMethod
	submission Submission
	notice     *Notice
	receipt    *Receipt
}

func New(cart Cart, orders OrderCreator, calc pricing.Calculator, opts ...Option) *Machine {
	m := &Machine{
		cart:       cart,
		orders:     orders,
		pricing:    calc,
		validate:   validator.New(),
		timeout:    DefaultOrderTimeout,
		now:        time.Now,
		step:       StepShipping,
		method:     DefaultPaymentMethod(),
		submission: Submission{Status: SubmitIdle},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Machine) Submission() Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.submission
	s.cancel = nil
	return s
}

// View evaluates the empty-cart guard. A reached success step is shown
// even though the cart it came from is now empty.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		Step:           m.step,
		PaymentMethod:  m.method,
		PaymentOptions: PaymentOptions,
		Submit:         m.submission.Status,
		Notice:         m.notice,
	}
	if m.receipt != nil {
		receipt := *m.receipt
		v.Receipt = &receipt
	}
	if m.shipping != nil {
		shipping := *m.shipping
		v.Shipping = &shipping
	}

	if m.step == StepSuccess {
		v.Items = m.receipt.Items
		v.Summary = m.receipt.Summary
		return v
	}
	if m.cart.IsEmpty() {
		prompt := emptyCheckout
		v.Empty = &prompt
		v.Items = []model.LineItem{}
		v.Summary = m.pricing.Quote(decimal.Zero)
		return v
	}

	v.Items = m.cart.Items()
	v.Summary = m.pricing.Quote(m.cart.Total())
	v.CanSubmit = m.step == StepPayment && m.submission.Status != SubmitPending
	return v
}

// Prefill stores shipping data without advancing the step.
func (m *Machine) Prefill(addr model.ShippingAddress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepShipping {
		m.shipping = &addr
	}
}

// SubmitShipping validates the destination and advances to payment.
// Nothing is sent to the API.
func (m *Machine) SubmitShipping(addr model.ShippingAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.guard(); err != nil {
		return err
	}
	if m.step != StepShipping {
		return fmt.Errorf("%w: cannot submit shipping from %s", ErrInvalidTransition, m.step)
	}
	if err := m.validateShipping(addr); err != nil {
		m.notice = &Notice{Level: "error", Message: "Please complete your shipping details."}
		return err
	}

	m.shipping = &addr
	m.step = StepPayment
	m.notice = nil
	return nil
}

// EditShipping returns to the shipping step keeping the entered data.
func (m *Machine) EditShipping() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step != StepPayment {
		return fmt.Errorf("%w: cannot edit shipping from %s", ErrInvalidTransition, m.step)
	}
	if m.submission.Status == SubmitPending {
		return ErrSubmissionInFlight
	}
	m.step = StepShipping
	m.notice = nil
	return nil
}

func (m *Machine) SelectPaymentMethod(method model.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.step == StepSuccess {
		return fmt.Errorf("%w: order already placed", ErrInvalidTransition)
	}
	if m.submission.Status == SubmitPending {
		return ErrSubmissionInFlight
	}
	if err := checkPaymentMethod(method); err != nil {
		return err
	}
	m.method = method
	return nil
}

// SubmitPayment creates the order. On success the cart is cleared and the
// step becomes success. On any failure the step stays at payment, the
// cart is kept and a notice is set so the same data can be resubmitted.
func (m *Machine) SubmitPayment(ctx context.Context) (*Receipt, error) {
	m.mu.Lock()
	if err := m.guard(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if m.step != StepPayment {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit payment from %s", ErrInvalidTransition, m.step)
	}
	if m.submission.Status == SubmitPending {
		m.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	items := m.cart.Items()
	summary := m.pricing.Quote(m.cart.Total())
	method := m.method
	shipping := *m.shipping
	req := model.OrderRequestFromItems(items, method)

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	m.submission = Submission{
		Status:    SubmitPending,
		StartedAt: m.now(),
		Timeout:   m.timeout,
		cancel:    cancel,
	}
	m.notice = nil
	m.mu.Unlock()

	confirmation, err := m.orders.CreateOrder(callCtx, req)
	if err == nil && callCtx.Err() != nil {
		err = callCtx.Err()
	}
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.submission.cancel = nil
	m.submission.FinishedAt = m.now()

	if err != nil {
		m.submission.Status = SubmitFailed
		m.submission.Err = err
		m.notice = &Notice{Level: "error", Message: failureMessage(err)}
		logger.Warn("Order submission failed", map[string]interface{}{
			"error":      err.Error(),
			"line_items": len(items),
		})
		return nil, err
	}

	receipt := &Receipt{
		OrderID:       confirmation.OrderID,
		Synthesized:   confirmation.Synthesized,
		Items:         items,
		Summary:       summary,
		PaymentMethod: method,
		Shipping:      shipping,
		PlacedAt:      m.submission.FinishedAt,
	}
	m.cart.Clear()
	m.receipt = receipt
	m.step = StepSuccess
	m.submission.Status = SubmitSucceeded
	m.notice = &Notice{Level: "success", Message: msgOrderPlaced}

	logger.Info("Order placed", map[string]interface{}{
		"order_id": receipt.OrderID,
		"total":    summary.Total.String(),
	})
	return receipt, nil
}

// Cancel aborts an in-flight submission and reports whether one was
// running.
func (m *Machine) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submission.Status != SubmitPending || m.submission.cancel == nil {
		return false
	}
	m.submission.cancel()
	return true
}

// AttachReceiptURL records where the placed order's receipt can be
// downloaded.
func (m *Machine) AttachReceiptURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.receipt != nil {
		m.receipt.URL = url
	}
}

// Done reports whether the order has been placed.
func (m *Machine) Done() bool {
	return m.Step() == StepSuccess
}

func (m *Machine) guard() error {
	if m.step != StepSuccess && m.cart.IsEmpty() {
		return ErrCartEmpty
	}
	return nil
}

func (m *Machine) validateShipping(addr model.ShippingAddress) error {
	err := m.validate.Struct(addr)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidShipping, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: invalid %s", ErrInvalidShipping, strings.Join(fields, ", "))
}
