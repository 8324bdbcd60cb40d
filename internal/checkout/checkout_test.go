package checkout

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gamms/storefront/internal/cart"
	"github.com/gamms/storefront/internal/domain"
	"github.com/gamms/storefront/internal/order"
	"github.com/gamms/storefront/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockSubmitter struct {
	m      sync.Mutex
	calls  int
	result order.Result
	delay  time.Duration
	last   *domain.OrderSnapshot
}

func (s *mockSubmitter) Submit(_ context.Context, snap *domain.OrderSnapshot) order.Result {
	s.m.Lock()
	s.calls++
	s.last = snap
	s.m.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.m.Lock()
	defer s.m.Unlock()
	return s.result
}

func (s *mockSubmitter) callCount() int {
	s.m.Lock()
	defer s.m.Unlock()
	return s.calls
}

func newTestService(submitter order.Submitter) (*Service, *cart.Store) {
	store := cart.NewStore(storage.NewMemorySlot(), nil)
	mailer := order.NewMailHandoff("gammsgreisy@gmail.com")
	return NewService(store, submitter, mailer, nil), store
}

func validInput() CustomerInput {
	return CustomerInput{
		Name:    gofakeit.Name(),
		Email:   "Cliente@Example.COM ",
		Phone:   gofakeit.Phone(),
		Address: gofakeit.Street(),
		Comment: "sin comentario",
	}
}

func seedCart(t *testing.T, store *cart.Store) {
	t.Helper()
	store.AddItem(context.Background(), domain.LineItem{
		ID: "1", Name: "Muñequitos tejidos", Price: 25, Quantity: 2,
	})
}

func TestSubmit_EmptyCartNeverInvokesSubmitter(t *testing.T) {
	submitter := &mockSubmitter{result: order.Result{OK: true, Status: http.StatusOK}}
	sut, _ := newTestService(submitter)

	_, err := sut.Submit(context.Background(), validInput())

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, submitter.callCount())
}

func TestSubmit_MissingName(t *testing.T) {
	submitter := &mockSubmitter{}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	in := validInput()
	in.Name = "   "
	_, err := sut.Submit(context.Background(), in)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
	assert.Equal(t, 0, submitter.callCount())
}

func TestSubmit_InvalidEmailRejectedBeforeNetwork(t *testing.T) {
	submitter := &mockSubmitter{}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	in := validInput()
	in.Email = "not-an-email"
	_, err := sut.Submit(context.Background(), in)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)
	assert.Equal(t, 0, submitter.callCount())

	// cart remains unchanged
	assert.Len(t, store.Get(context.Background()), 1)
}

func TestSubmit_Success(t *testing.T) {
	submitter := &mockSubmitter{result: order.Result{OK: true, Status: http.StatusOK}}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	outcome, err := sut.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, StateSubmitted, outcome.State)
	require.NotNil(t, outcome.Order)
	assert.Equal(t, 50.0, outcome.Order.Total)
	assert.Empty(t, outcome.MailtoURL)

	// email was normalized before the snapshot was built
	assert.Equal(t, "cliente@example.com", outcome.Order.Customer.Email)

	// optimistic clear: the cart is empty after a completed checkout
	assert.Empty(t, store.Get(context.Background()))
}

func TestSubmit_RelayFailureFallsBackToMail(t *testing.T) {
	submitter := &mockSubmitter{result: order.Result{OK: false, Status: http.StatusBadGateway, Body: "upstream down"}}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	outcome, err := sut.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, StateFallbackSent, outcome.State)
	assert.Contains(t, outcome.Message, "502")
	assert.Contains(t, outcome.Message, "upstream down")
	assert.Contains(t, outcome.MailtoURL, "mailto:gammsgreisy@gmail.com")

	// the fallback still completes the checkout
	assert.Empty(t, store.Get(context.Background()))
}

func TestSubmit_NetworkErrorFallsBackToMail(t *testing.T) {
	submitter := &mockSubmitter{result: order.Result{OK: false, Status: 0, Body: "network-error"}}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	outcome, err := sut.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, StateFallbackSent, outcome.State)
	assert.Contains(t, outcome.Message, "Error de red")
	assert.NotEmpty(t, outcome.MailtoURL)
}

func TestSubmit_NewCycleAfterFallback(t *testing.T) {
	submitter := &mockSubmitter{result: order.Result{OK: false, Status: http.StatusBadGateway}}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	_, err := sut.Submit(context.Background(), validInput())
	require.NoError(t, err)

	// no state is terminal: build a new cart and check out again
	submitter.m.Lock()
	submitter.result = order.Result{OK: true, Status: http.StatusOK}
	submitter.m.Unlock()

	seedCart(t, store)
	outcome, err := sut.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, outcome.State)
}

func TestSubmit_ConcurrentSubmissionsSingleFlight(t *testing.T) {
	submitter := &mockSubmitter{
		result: order.Result{OK: true, Status: http.StatusOK},
		delay:  50 * time.Millisecond,
	}
	sut, store := newTestService(submitter)
	seedCart(t, store)

	in := validInput()

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := sut.Submit(context.Background(), in)
			assert.NoError(t, err)
			outcomes[i] = outcome
		}(i)
	}
	wg.Wait()

	// a double-click shares the first in-flight attempt
	assert.Equal(t, 1, submitter.callCount())
	assert.Equal(t, outcomes[0].Order.ID, outcomes[1].Order.ID)
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"trims and lowercases", "  Foo@BAR.com ", "foo@bar.com", false},
		{"already normal", "a@b.pe", "a@b.pe", false},
		{"empty", "   ", "", true},
		{"no at sign", "not-an-email", "", true},
		{"no tld", "user@localhost", "", true},
		{"spaces inside", "us er@b.com", "", true},
		{"double at", "a@@b.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeEmail(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
