// Package dispatch drives the cartera notification pipeline: it groups a
// snapshot generation by client, persists one durable dispatch record per
// (client, due date, notification type) and processes each record
// asynchronously with per-record status tracking.
package dispatch

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/clients"
)

// EmailType is the closed set of notification types. Each type carries its
// own recipient resolution and suppression rule; there is no shared
// conditional path between them.
type EmailType string

const (
	EmailTypeOrderBlock EmailType = "order_block"
	EmailTypeBalance    EmailType = "balance_notification"
)

// SendStatus is the dispatch-record lifecycle. The only way out of sent or
// failed is a fresh enqueue, which resets the record to pending.
type SendStatus string

const (
	StatusPending SendStatus = "pending"
	StatusSending SendStatus = "sending"
	StatusSent    SendStatus = "sent"
	StatusFailed  SendStatus = "failed"
)

// Record is the durable dispatch row, unique per (client_nit, due_date,
// email_type). Re-enqueueing overwrites it wholesale; last write wins, by
// design, so stale recipients never accumulate.
type Record struct {
	ID                int64      `json:"id"`
	ClientNIT         string     `json:"client_nit"`
	DueDate           time.Time  `json:"due_date"`
	EmailType         EmailType  `json:"email_type"`
	OrderBlockEmails  string     `json:"order_block_notification_emails"`
	BalanceEmails     string     `json:"outstanding_balance_notification_emails"`
	SendStatus        SendStatus `json:"send_status"`
	RetryCount        int        `json:"retry_count"`
	ErrorMessage      *string    `json:"error_message"`
	EmailSentDate     *time.Time `json:"email_sent_date"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ClientGroup is one client's slice of a snapshot generation with its aging
// totals and resolved recipient lists.
type ClientGroup struct {
	NIT                  string                `json:"nit"`
	ClientName           string                `json:"client_name"`
	Rows                 []cartera.SnapshotRow `json:"rows"`
	TotalVencidos        float64               `json:"total_vencidos"`
	TotalPorVencer       float64               `json:"total_por_vencer"`
	OrderBlockRecipients []string              `json:"order_block_recipients"`
	BalanceRecipients    []string              `json:"balance_recipients"`
}

// SendContext is what a notification type inspects to decide suppression.
type SendContext struct {
	DispatchableProducts int
	TotalVencidos        float64
}

// notification is implemented once per email type.
type notification interface {
	Type() EmailType
	Subject(clientName string, dueDate time.Time) string
	// Recipients resolves the outbound list. A nil client or a client with
	// no resolvable name yields an empty list: no notification may target
	// an unknown client even when snapshot rows exist.
	Recipients(c *clients.Client, internalList []string) []string
	// Suppress returns a non-empty reason when the record must be marked
	// failed without invoking the mail sender.
	Suppress(sc SendContext) string
}

func notificationFor(t EmailType) (notification, error) {
	switch t {
	case EmailTypeOrderBlock:
		return orderBlockNotification{}, nil
	case EmailTypeBalance:
		return balanceNotification{}, nil
	default:
		return nil, fmt.Errorf("dispatch: unknown email type %q", t)
	}
}

// Two internal mailboxes always copied on client-facing balance letters.
const (
	balanceCopyCartera  = "cartera@andina-erp.local"
	balanceCopyGerencia = "gerencia@andina-erp.local"
)

type orderBlockNotification struct{}

func (orderBlockNotification) Type() EmailType { return EmailTypeOrderBlock }

func (orderBlockNotification) Subject(clientName string, dueDate time.Time) string {
	return fmt.Sprintf("Bloqueo de despachos - %s - cartera al %s", clientName, dueDate.Format("2006-01-02"))
}

func (orderBlockNotification) Recipients(c *clients.Client, internalList []string) []string {
	if c == nil || c.Name == nil {
		return nil
	}
	list := append([]string(nil), internalList...)
	if c.DispatchConfirmationEmail != nil {
		list = append(list, clients.SplitEmailList(*c.DispatchConfirmationEmail)...)
	}
	return validRecipients(list)
}

// A block alert with nothing to report is not sent even though the record
// was enqueued.
func (orderBlockNotification) Suppress(sc SendContext) string {
	if sc.DispatchableProducts == 0 || sc.TotalVencidos <= 0 {
		return "Sin productos o sin saldo vencido"
	}
	return ""
}

type balanceNotification struct{}

func (balanceNotification) Type() EmailType { return EmailTypeBalance }

func (balanceNotification) Subject(clientName string, dueDate time.Time) string {
	return fmt.Sprintf("Estado de cartera - %s - corte %s", clientName, dueDate.Format("2006-01-02"))
}

func (balanceNotification) Recipients(c *clients.Client, _ []string) []string {
	if c == nil || c.Name == nil {
		return nil
	}
	var list []string
	if c.DispatchConfirmationEmail != nil {
		list = append(list, clients.SplitEmailList(*c.DispatchConfirmationEmail)...)
	}
	if c.ExecutiveEmail != nil {
		list = append(list, clients.SplitEmailList(*c.ExecutiveEmail)...)
	}
	list = append(list, balanceCopyCartera, balanceCopyGerencia)
	if c.PortfolioContactEmail != nil {
		list = append(list, clients.SplitEmailList(*c.PortfolioContactEmail)...)
	}
	return validRecipients(list)
}

func (balanceNotification) Suppress(SendContext) string { return "" }

// validRecipients deduplicates and keeps RFC-valid addresses only. Invalid
// or empty entries are silently dropped.
func validRecipients(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, raw := range list {
		addr := strings.ToLower(strings.TrimSpace(raw))
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out
}
