package service

import (
	"context"
	"sync"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/checkout"
	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	// Begin starts a checkout for the session, or resumes the running one.
	// Signed-in callers get their default address prefilled.
	Begin(ctx context.Context, sessionID string, signedIn bool) checkout.View
	View(ctx context.Context, sessionID string) checkout.View
	SubmitShipping(ctx context.Context, sessionID string, addr model.ShippingAddress) (checkout.View, error)
	EditShipping(ctx context.Context, sessionID string) (checkout.View, error)
	SelectPaymentMethod(ctx context.Context, sessionID string, method model.PaymentMethod) (checkout.View, error)
	SubmitPayment(ctx context.Context, sessionID string) (checkout.View, error)
	Cancel(sessionID string) bool
	Discard(sessionID string)
	// Forget drops the session's checkout without cancelling a running
	// submission.
	Forget(sessionID string)
}

// ReceiptArchiver stores a placed order's receipt and returns its
// download URL.
type ReceiptArchiver interface {
	Archive(ctx context.Context, receipt checkout.Receipt) (string, error)
}

type CheckoutOption func(*checkoutService)

func WithReceiptArchive(archive ReceiptArchiver) CheckoutOption {
	return func(s *checkoutService) {
		s.archive = archive
	}
}

type checkoutService struct {
	registry  *store.Registry
	orders    checkout.OrderCreator
	addresses AddressService
	pricing   pricing.Calculator
	timeout   time.Duration
	archive   ReceiptArchiver

	mu       sync.Mutex
	sessions map[string]*checkout.Machine
}

func NewCheckoutService(
	registry *store.Registry,
	orders checkout.OrderCreator,
	addresses AddressService,
	calc pricing.Calculator,
	timeout time.Duration,
	opts ...CheckoutOption,
) CheckoutService {
	s := &checkoutService{
		registry:  registry,
		orders:    orders,
		addresses: addresses,
		pricing:   calc,
		timeout:   timeout,
		sessions:  make(map[string]*checkout.Machine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *checkoutService) Begin(ctx context.Context, sessionID string, signedIn bool) checkout.View {
	m, created := s.machine(ctx, sessionID, true)
	if created && signedIn && s.addresses != nil {
		s.prefillDefaultAddress(ctx, sessionID, m)
	}
	return m.View()
}

func (s *checkoutService) View(ctx context.Context, sessionID string) checkout.View {
	m, _ := s.machine(ctx, sessionID, false)
	return m.View()
}

// SubmitShipping accepts either a full address or a reference to a saved
// one (addressId with no other fields).
func (s *checkoutService) SubmitShipping(ctx context.Context, sessionID string, addr model.ShippingAddress) (checkout.View, error) {
	m, _ := s.machine(ctx, sessionID, false)

	if addr.AddressID != nil && addr.FirstName == "" && s.addresses != nil {
		saved, err := s.addresses.GetAddress(ctx, *addr.AddressID)
		if err != nil {
			return m.View(), err
		}
		email := addr.Email
		addr = model.ShippingFromAddress(*saved)
		addr.Email = email
	}

	if err := m.SubmitShipping(addr); err != nil {
		logger.Warn("Shipping step rejected", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return m.View(), err
	}
	return m.View(), nil
}

func (s *checkoutService) EditShipping(ctx context.Context, sessionID string) (checkout.View, error) {
	m, _ := s.machine(ctx, sessionID, false)
	err := m.EditShipping()
	return m.View(), err
}

func (s *checkoutService) SelectPaymentMethod(ctx context.Context, sessionID string, method model.PaymentMethod) (checkout.View, error) {
	m, _ := s.machine(ctx, sessionID, false)
	err := m.SelectPaymentMethod(method)
	return m.View(), err
}

func (s *checkoutService) SubmitPayment(ctx context.Context, sessionID string) (checkout.View, error) {
	m, _ := s.machine(ctx, sessionID, false)

	logger.Info("Submitting order", map[string]interface{}{
		"session_id": sessionID,
	})
	receipt, err := m.SubmitPayment(ctx)
	if err != nil {
		return m.View(), err
	}
	if s.archive != nil {
		s.archiveReceipt(ctx, sessionID, m, *receipt)
	}
	return m.View(), nil
}

// archiveReceipt is best effort: the order is already placed.
func (s *checkoutService) archiveReceipt(ctx context.Context, sessionID string, m *checkout.Machine, receipt checkout.Receipt) {
	url, err := s.archive.Archive(ctx, receipt)
	if err != nil {
		logger.Warn("Failed to archive receipt", map[string]interface{}{
			"session_id": sessionID,
			"order_id":   receipt.OrderID,
			"error":      err.Error(),
		})
		return
	}
	m.AttachReceiptURL(url)
}

func (s *checkoutService) Cancel(sessionID string) bool {
	s.mu.Lock()
	m, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return m.Cancel()
}

func (s *checkoutService) Discard(sessionID string) {
	s.mu.Lock()
	m, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if ok {
		m.Cancel()
	}
}

func (s *checkoutService) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// machine returns the session's checkout. A finished checkout is replaced
// by a fresh one only when restart is set, so the success screen stays
// viewable until the next Begin.
func (s *checkoutService) machine(ctx context.Context, sessionID string, restart bool) (*checkout.Machine, bool) {
	// 세션 카트를 미리 로드한다
	s.registry.Cart(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.sessions[sessionID]; ok && !(restart && m.Done()) {
		return m, false
	}
	cart := sessionCart{registry: s.registry, sessionID: sessionID}
	m := checkout.New(cart, s.orders, s.pricing, checkout.WithTimeout(s.timeout))
	s.sessions[sessionID] = m
	return m, true
}

func (s *checkoutService) prefillDefaultAddress(ctx context.Context, sessionID string, m *checkout.Machine) {
	addresses, err := s.addresses.GetAddresses(ctx)
	if err != nil {
		logger.Warn("Could not load addresses for checkout", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}
	if addr, ok := checkout.SelectDefaultAddress(addresses); ok {
		m.Prefill(model.ShippingFromAddress(addr))
	}
}

// sessionCart resolves the session's cart through the registry on every
// call, so checkout always reads and clears the cart the registry serves.
type sessionCart struct {
	registry  *store.Registry
	sessionID string
}

func (c sessionCart) current() *store.Cart {
	return c.registry.Cart(context.Background(), c.sessionID)
}

func (c sessionCart) Items() []model.LineItem { return c.current().Items() }

func (c sessionCart) Total() decimal.Decimal { return c.current().Total() }

func (c sessionCart) IsEmpty() bool { return c.current().IsEmpty() }

func (c sessionCart) Clear() { c.current().Clear() }
