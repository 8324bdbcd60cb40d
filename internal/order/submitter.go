package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/gamms/storefront/internal/domain"
)

// Result describes the outcome of a delivery attempt. The submitter always
// resolves to a Result: transport failures become a failure Result, never an
// error the caller has to distinguish from a rejection.
type Result struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type Submitter interface {
	Submit(ctx context.Context, snap *domain.OrderSnapshot) Result
}

// RelaySubmitter delivers an order snapshot to the external form-relay
// endpoint. First attempt is JSON; if that does not succeed it retries once
// with the same fields form-urlencoded against the same endpoint.
type RelaySubmitter struct {
	endpoint string
	client   *http.Client
	log      logrus.FieldLogger
}

func NewRelaySubmitter(endpoint string, log logrus.FieldLogger) *RelaySubmitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RelaySubmitter{
		endpoint: endpoint,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// relayPayload is the flat field set the relay expects. The Spanish field
// names are the endpoint's fixed wire contract.
type relayPayload struct {
	Nombre     string `json:"Nombre"`
	Correo     string `json:"Correo"`
	Email      string `json:"email"`
	ReplyTo    string `json:"_replyto"`
	Telefono   string `json:"Telefono"`
	Direccion  string `json:"Direccion"`
	Comentario string `json:"Comentario"`
	Pedido     string `json:"Pedido"`
	Total      string `json:"Total"`
}

func buildPayload(snap *domain.OrderSnapshot) relayPayload {
	return relayPayload{
		Nombre:     snap.Customer.Name,
		Correo:     snap.Customer.Email,
		Email:      snap.Customer.Email,
		ReplyTo:    snap.Customer.Email,
		Telefono:   snap.Customer.Phone,
		Direccion:  snap.Customer.Address,
		Comentario: snap.Customer.Comment,
		Pedido:     strings.Join(ItemLines(snap.Items), "\n"),
		Total:      domain.FormatSoles(snap.Total),
	}
}

// ItemLines renders the human-readable listing sent to the relay and the
// mail handoff: "name (xN) - S/ subtotal" per line.
func ItemLines(items []domain.LineItem) []string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s (x%d) - %s", it.Name, it.Quantity, domain.FormatSoles(it.Subtotal())))
	}
	return lines
}

func (s *RelaySubmitter) Submit(ctx context.Context, snap *domain.OrderSnapshot) Result {
	if s.endpoint == "" {
		return Result{OK: false, Status: 0, Body: "no endpoint configured"}
	}

	payload := buildPayload(snap)

	res, err := s.postJSON(ctx, payload)
	if err == nil && res.OK {
		return res
	}
	if err != nil {
		s.log.WithError(err).Warn("order: JSON submission failed, retrying form-urlencoded")
	} else {
		s.log.WithField("status", res.Status).Warn("order: JSON submission rejected, retrying form-urlencoded")
	}

	res2, err := s.postForm(ctx, payload)
	if err != nil {
		s.log.WithError(err).Warn("order: form submission failed")
		return Result{OK: false, Status: 0, Body: "network-error"}
	}
	return res2
}

func (s *RelaySubmitter) postJSON(ctx context.Context, payload relayPayload) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return s.do(req)
}

func (s *RelaySubmitter) postForm(ctx context.Context, payload relayPayload) (Result, error) {
	form := url.Values{}
	form.Set("Nombre", payload.Nombre)
	form.Set("Correo", payload.Correo)
	form.Set("email", payload.Email)
	form.Set("_replyto", payload.ReplyTo)
	form.Set("Telefono", payload.Telefono)
	form.Set("Direccion", payload.Direccion)
	form.Set("Comentario", payload.Comentario)
	form.Set("Pedido", payload.Pedido)
	form.Set("Total", payload.Total)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return s.do(req)
}

func (s *RelaySubmitter) do(req *http.Request) (Result, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		body = nil
	}

	return Result{
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Status: resp.StatusCode,
		Body:   string(body),
	}, nil
}
