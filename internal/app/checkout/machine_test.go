package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/internal/app/pricing"
	"github.com/ikkim/manajir-storefront/internal/app/store"
	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFunc func(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error)

func (f orderFunc) CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error) {
	return f(ctx, req)
}

func okOrders(id string) orderFunc {
	return func(context.Context, model.OrderRequest) (model.OrderConfirmation, error) {
		return model.OrderConfirmation{OrderID: id}, nil
	}
}

func validShipping() model.ShippingAddress {
	return model.ShippingAddress{
		Email:      "ada@example.com",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Address:    "12 Fashion Ave",
		City:       "New York",
		State:      "NY",
		PostalCode: "10001",
		Country:    "United States",
	}
}

func filledCart() *store.Cart {
	cart := store.NewCart(nil)
	cart.AddItem(model.ProductSnapshot{ID: 1, Name: "Dress", Price: decimal.NewFromInt(100), VariantID: 501}, "M", "Red", 2)
	return cart
}

func atPayment(t *testing.T, cart *store.Cart, orders OrderCreator, opts ...Option) *Machine {
	m := New(cart, orders, pricing.Default(), opts...)
	require.NoError(t, m.SubmitShipping(validShipping()))
	require.Equal(t, StepPayment, m.Step())
	return m
}

func TestMachine_EmptyCartShowsPrompt(t *testing.T) {
	m := New(store.NewCart(nil), okOrders("X"), pricing.Default())

	view := m.View()
	require.NotNil(t, view.Empty)
	assert.Equal(t, "Nothing to checkout", view.Empty.Title)
	assert.Equal(t, "/products", view.Empty.ActionHref)
	assert.False(t, view.CanSubmit)
	assert.True(t, decimal.NewFromInt(15).Equal(view.Summary.Total))

	assert.ErrorIs(t, m.SubmitShipping(validShipping()), ErrCartEmpty)
	assert.Equal(t, StepShipping, m.Step())
}

func TestMachine_SuccessClearsCart(t *testing.T) {
	cart := filledCart()
	var got model.OrderRequest
	orders := orderFunc(func(_ context.Context, req model.OrderRequest) (model.OrderConfirmation, error) {
		got = req
		return model.OrderConfirmation{OrderID: "ORD-9"}, nil
	})
	m := atPayment(t, cart, orders)

	receipt, err := m.SubmitPayment(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ORD-9", receipt.OrderID)
	assert.Equal(t, model.PaymentCashOnDelivery, got.PaymentMethod)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(501), got.Items[0].VariantID)
	assert.Equal(t, 2, got.Items[0].Quantity)

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, StepSuccess, m.Step())
	assert.True(t, m.Done())
	assert.Equal(t, SubmitSucceeded, m.Submission().Status)

	view := m.View()
	assert.Nil(t, view.Empty)
	require.NotNil(t, view.Receipt)
	assert.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(200).Equal(view.Summary.Subtotal))
	assert.True(t, decimal.NewFromInt(216).Equal(view.Summary.Total))
	assert.Equal(t, "success", view.Notice.Level)
}

func TestMachine_TransportErrorKeepsPaymentAndCart(t *testing.T) {
	cart := filledCart()
	calls := 0
	orders := orderFunc(func(context.Context, model.OrderRequest) (model.OrderConfirmation, error) {
		calls++
		if calls == 1 {
			return model.OrderConfirmation{}, fmt.Errorf("failed to create order: %w", storefrontapi.ErrNetworkError)
		}
		return model.OrderConfirmation{OrderID: "ORD-2"}, nil
	})
	m := atPayment(t, cart, orders)

	_, err := m.SubmitPayment(context.Background())
	require.ErrorIs(t, err, storefrontapi.ErrNetworkError)

	assert.Equal(t, StepPayment, m.Step())
	assert.Equal(t, 2, cart.ItemCount())
	assert.Equal(t, SubmitFailed, m.Submission().Status)
	view := m.View()
	require.NotNil(t, view.Notice)
	assert.Equal(t, msgOrderFailed, view.Notice.Message)
	assert.True(t, view.CanSubmit)
	assert.Equal(t, "Ada", view.Shipping.FirstName)

	receipt, err := m.SubmitPayment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-2", receipt.OrderID)
	assert.True(t, cart.IsEmpty())
}

func TestMachine_DomainFailureShowsAPIMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"failed","message":"Size M is out of stock"}`)
	}))
	t.Cleanup(srv.Close)
	client, err := storefrontapi.NewClient(storefrontapi.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	cart := filledCart()
	m := atPayment(t, cart, client)

	_, err = m.SubmitPayment(context.Background())
	require.ErrorIs(t, err, storefrontapi.ErrDomainFailure)

	assert.Equal(t, StepPayment, m.Step())
	assert.False(t, cart.IsEmpty())
	assert.Equal(t, "Size M is out of stock", m.View().Notice.Message)
}

func TestMachine_RejectsSubmitWhilePending(t *testing.T) {
	release := make(chan struct{})
	orders := orderFunc(func(ctx context.Context, _ model.OrderRequest) (model.OrderConfirmation, error) {
		<-release
		return model.OrderConfirmation{OrderID: "ORD-1"}, nil
	})
	m := atPayment(t, filledCart(), orders)

	done := make(chan error, 1)
	go func() {
		_, err := m.SubmitPayment(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return m.Submission().Status == SubmitPending
	}, time.Second, 5*time.Millisecond)

	_, err := m.SubmitPayment(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.ErrorIs(t, m.EditShipping(), ErrSubmissionInFlight)
	assert.False(t, m.View().CanSubmit)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StepSuccess, m.Step())
}

func TestMachine_TimeoutIsRetryable(t *testing.T) {
	orders := orderFunc(func(ctx context.Context, _ model.OrderRequest) (model.OrderConfirmation, error) {
		<-ctx.Done()
		return model.OrderConfirmation{}, ctx.Err()
	})
	cart := filledCart()
	m := atPayment(t, cart, orders, WithTimeout(20*time.Millisecond))

	_, err := m.SubmitPayment(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, StepPayment, m.Step())
	assert.False(t, cart.IsEmpty())
	assert.Equal(t, msgOrderTimeout, m.View().Notice.Message)
	assert.Equal(t, 20*time.Millisecond, m.Submission().Timeout)
}

func TestMachine_CancelInFlight(t *testing.T) {
	orders := orderFunc(func(ctx context.Context, _ model.OrderRequest) (model.OrderConfirmation, error) {
		<-ctx.Done()
		return model.OrderConfirmation{}, ctx.Err()
	})
	m := atPayment(t, filledCart(), orders)
	assert.False(t, m.Cancel())

	done := make(chan error, 1)
	go func() {
		_, err := m.SubmitPayment(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return m.Submission().Status == SubmitPending
	}, time.Second, 5*time.Millisecond)

	assert.True(t, m.Cancel())
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, StepPayment, m.Step())
	assert.Equal(t, msgOrderCancelled, m.View().Notice.Message)
}

func TestMachine_OnlinePaymentCannotBeSelected(t *testing.T) {
	m := atPayment(t, filledCart(), okOrders("X"))

	err := m.SelectPaymentMethod(model.PaymentOnline)
	assert.ErrorIs(t, err, ErrPaymentMethodUnavailable)
	assert.ErrorIs(t, m.SelectPaymentMethod("CRYPTO"), ErrPaymentMethodUnavailable)
	assert.NoError(t, m.SelectPaymentMethod(model.PaymentCashOnDelivery))

	view := m.View()
	assert.Equal(t, model.PaymentCashOnDelivery, view.PaymentMethod)
	require.Len(t, view.PaymentOptions, 2)
	assert.False(t, view.PaymentOptions[1].Enabled)
}

func TestMachine_EditShippingKeepsData(t *testing.T) {
	m := atPayment(t, filledCart(), okOrders("X"))

	require.NoError(t, m.EditShipping())
	assert.Equal(t, StepShipping, m.Step())
	assert.Equal(t, validShipping(), *m.View().Shipping)

	assert.ErrorIs(t, m.EditShipping(), ErrInvalidTransition)
	_, err := m.SubmitPayment(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, m.SubmitShipping(*m.View().Shipping))
	assert.Equal(t, StepPayment, m.Step())
}

func TestMachine_InvalidShipping(t *testing.T) {
	m := New(filledCart(), okOrders("X"), pricing.Default())
	addr := validShipping()
	addr.City = ""
	addr.Email = "not-an-email"

	err := m.SubmitShipping(addr)
	require.ErrorIs(t, err, ErrInvalidShipping)
	assert.Contains(t, err.Error(), "City")
	assert.Contains(t, err.Error(), "Email")
	assert.Equal(t, StepShipping, m.Step())
	assert.Equal(t, "error", m.View().Notice.Level)
}

func TestMachine_ClearingCartLocksOutSteps(t *testing.T) {
	cart := filledCart()
	m := atPayment(t, cart, okOrders("X"))

	cart.Clear()

	assert.NotNil(t, m.View().Empty)
	_, err := m.SubmitPayment(context.Background())
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, StepPayment, m.Step())
}

func TestMachine_PrefillOnlyOnShippingStep(t *testing.T) {
	m := New(filledCart(), okOrders("X"), pricing.Default())
	addr := validShipping()

	m.Prefill(addr)
	assert.Equal(t, addr, *m.View().Shipping)
	assert.Equal(t, StepShipping, m.Step())
}

func TestSelectDefaultAddress(t *testing.T) {
	_, ok := SelectDefaultAddress(nil)
	assert.False(t, ok)

	first, ok := SelectDefaultAddress([]model.Address{{ID: 1}, {ID: 2}})
	require.True(t, ok)
	assert.Equal(t, int64(1), first.ID)

	def, ok := SelectDefaultAddress([]model.Address{{ID: 1}, {ID: 2, IsDefault: true}})
	require.True(t, ok)
	assert.Equal(t, int64(2), def.ID)
}

func TestMachine_AttachReceiptURL(t *testing.T) {
	m := atPayment(t, filledCart(), okOrders("ORD-3"))

	m.AttachReceiptURL("https://example.com/before.json")
	assert.Nil(t, m.View().Receipt)

	_, err := m.SubmitPayment(context.Background())
	require.NoError(t, err)

	view := m.View()
	m.AttachReceiptURL("https://example.com/ORD-3.json")
	assert.Empty(t, view.Receipt.URL, "views are copies")
	assert.Equal(t, "https://example.com/ORD-3.json", m.View().Receipt.URL)
}
