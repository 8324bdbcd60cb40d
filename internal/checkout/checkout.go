package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/gamms/storefront/internal/cart"
	"github.com/gamms/storefront/internal/domain"
	"github.com/gamms/storefront/internal/order"
)

// State of the checkout flow. No state is terminal: after Submitted or
// FallbackSent a new cart can be built and a new cycle started from Idle.
type State string

const (
	StateIdle         State = "IDLE"
	StateSubmitting   State = "SUBMITTING"
	StateSubmitted    State = "SUBMITTED"
	StateFallbackSent State = "FALLBACK_SENT"
)

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Comment string `json:"comment"`
}

// Outcome describes where a submission ended up. On FallbackSent, MailtoURL
// carries the pre-filled mail-client handoff for the same snapshot.
type Outcome struct {
	State     State                 `json:"state"`
	Message   string                `json:"message"`
	Order     *domain.OrderSnapshot `json:"order,omitempty"`
	Relay     order.Result          `json:"relay"`
	MailtoURL string                `json:"mailto_url,omitempty"`
}

// ValidationError rejects a submission before any network attempt. The flow
// returns to Idle; the user corrects the field and resubmits.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: invalid %s: %s", e.Field, e.Reason)
}

var ErrEmptyCart = errors.New("checkout: cart is empty")

// emailPattern requires a local@domain.tld shape on top of the net/mail
// parse. net/mail alone accepts addresses without a dot in the domain.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// Service runs the cart-page checkout flow: validate, snapshot, submit,
// fall back, clear. It never mutates views directly; views re-render through
// the store's subscriptions.
type Service struct {
	store     *cart.Store
	submitter order.Submitter
	mailer    *order.MailHandoff
	sfg       singleflight.Group
	log       logrus.FieldLogger
}

func NewService(store *cart.Store, submitter order.Submitter, mailer *order.MailHandoff, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:     store,
		submitter: submitter,
		mailer:    mailer,
		log:       log,
	}
}

// Submit validates the customer input against the current cart and attempts
// delivery. Validation failures return an error and leave the cart intact.
// Transport failures do not: a failed relay submission still completes
// through the mail handoff, and both paths clear the cart.
//
// Concurrent submissions are collapsed into a single flight: a double-click
// while one attempt is outstanding observes the first attempt's outcome.
func (s *Service) Submit(ctx context.Context, in CustomerInput) (Outcome, error) {
	v, err, _ := s.sfg.Do("checkout", func() (interface{}, error) {
		return s.submit(ctx, in)
	})
	if err != nil {
		return Outcome{State: StateIdle, Message: err.Error()}, err
	}
	return v.(Outcome), nil
}

func (s *Service) submit(ctx context.Context, in CustomerInput) (Outcome, error) {
	items := s.store.Get(ctx)
	if len(items) == 0 {
		return Outcome{}, ErrEmptyCart
	}

	customer, err := validateCustomer(in)
	if err != nil {
		return Outcome{}, err
	}

	snap := domain.NewOrderSnapshot(customer, items)
	s.log.WithFields(logrus.Fields{
		"order_id": snap.ID,
		"items":    len(snap.Items),
		"total":    snap.Total,
	}).Info("checkout: submitting order")

	res := s.submitter.Submit(ctx, snap)
	if res.OK {
		s.store.Clear(ctx)
		return Outcome{
			State:   StateSubmitted,
			Message: "Pedido enviado correctamente.",
			Order:   snap,
			Relay:   res,
		}, nil
	}

	// Failed remote delivery is still a completed checkout: the mail
	// handoff is the alternate delivery path, not an error state.
	s.log.WithFields(logrus.Fields{
		"order_id": snap.ID,
		"status":   res.Status,
	}).Warn("checkout: relay failed, falling back to mail handoff")

	mailto := s.mailer.URL(snap)
	s.store.Clear(ctx)
	return Outcome{
		State:     StateFallbackSent,
		Message:   fallbackMessage(res),
		Order:     snap,
		Relay:     res,
		MailtoURL: mailto,
	}, nil
}

func fallbackMessage(res order.Result) string {
	if res.Status != 0 {
		detail := res.Body
		if detail == "" {
			detail = "sin detalle"
		}
		return fmt.Sprintf("El servicio de pedidos devolvió %d: %s. Abriendo cliente de correo.", res.Status, detail)
	}
	return "Error de red al enviar el pedido. Abriendo cliente de correo."
}

func validateCustomer(in CustomerInput) (domain.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Customer{}, &ValidationError{Field: "name", Reason: "required"}
	}

	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return domain.Customer{}, err
	}

	return domain.Customer{
		Name:    name,
		Email:   email,
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
		Comment: strings.TrimSpace(in.Comment),
	}, nil
}

// NormalizeEmail trims, lowercases and validates the address with both the
// native parser and the explicit local@domain.tld pattern.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", &ValidationError{Field: "email", Reason: "malformed address"}
	}
	if !emailPattern.MatchString(email) {
		return "", &ValidationError{Field: "email", Reason: "expected local@domain.tld"}
	}
	return email, nil
}
