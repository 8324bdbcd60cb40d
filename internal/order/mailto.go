package order

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gamms/storefront/internal/domain"
)

// MailHandoff builds the mailto: navigation target used as the fallback
// delivery channel: the user's own mail client, pre-filled with the order.
type MailHandoff struct {
	To string
}

func NewMailHandoff(to string) *MailHandoff {
	return &MailHandoff{To: to}
}

// URL renders the mailto target with URL-encoded subject and body
// summarizing the order.
func (m *MailHandoff) URL(snap *domain.OrderSnapshot) string {
	subject := "Pedido GAMMS - " + snap.CapturedAt.Format("2/1/2006, 15:04:05")

	var b strings.Builder
	fmt.Fprintf(&b, "Cliente: %s\n", snap.Customer.Name)
	fmt.Fprintf(&b, "Email: %s\n", snap.Customer.Email)
	fmt.Fprintf(&b, "Tel: %s\n", snap.Customer.Phone)
	fmt.Fprintf(&b, "Dirección: %s\n", snap.Customer.Address)
	fmt.Fprintf(&b, "Comentario: %s\n", snap.Customer.Comment)
	b.WriteString("\nPedido:\n")
	b.WriteString(strings.Join(ItemLines(snap.Items), "\n"))
	fmt.Fprintf(&b, "\n\nTotal: %s", domain.FormatSoles(snap.Total))

	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		m.To, queryEscape(subject), queryEscape(b.String()))
}

// queryEscape matches the browser's encodeURIComponent closely enough for
// mail clients: spaces become %20, not '+'.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
