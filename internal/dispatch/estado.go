package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andina-erp/andina-erp/internal/cartera"
	"github.com/andina-erp/andina-erp/internal/clients"
	"github.com/andina-erp/andina-erp/internal/numfmt"
)

// CarteraPort is the slice of the snapshot store the state machine reads.
type CarteraPort interface {
	ListByDate(ctx context.Context, snapshotDate time.Time) ([]cartera.SnapshotRow, error)
	ListByDateAndNIT(ctx context.Context, snapshotDate time.Time, nit string) ([]cartera.SnapshotRow, error)
}

// ClientsPort resolves client master data for recipient lists.
type ClientsPort interface {
	ListByNITs(ctx context.Context, nits []string) (map[string]clients.Client, error)
	GetByNIT(ctx context.Context, nit string) (*clients.Client, error)
}

// Estado groups a snapshot generation by client and computes per-client
// aging totals and recipient lists for both notification types.
type Estado struct {
	cartera      CarteraPort
	clients      ClientsPort
	internalList []string
}

// NewEstado wires the state query.
func NewEstado(carteraRepo CarteraPort, clientsRepo ClientsPort, internalList []string) *Estado {
	return &Estado{cartera: carteraRepo, clients: clientsRepo, internalList: internalList}
}

// LoadByDate groups the snapshot at snapshotDate by NIT. Clients that cannot
// be resolved keep empty recipient lists on both sides.
func (e *Estado) LoadByDate(ctx context.Context, snapshotDate time.Time) ([]ClientGroup, error) {
	rows, err := e.cartera.ListByDate(ctx, snapshotDate)
	if err != nil {
		return nil, fmt.Errorf("dispatch: load snapshot: %w", err)
	}

	byNIT := make(map[string][]cartera.SnapshotRow)
	for _, r := range rows {
		byNIT[r.NIT] = append(byNIT[r.NIT], r)
	}

	nits := make([]string, 0, len(byNIT))
	for nit := range byNIT {
		nits = append(nits, nit)
	}
	sort.Strings(nits)

	clientMap, err := e.clients.ListByNITs(ctx, nits)
	if err != nil {
		return nil, fmt.Errorf("dispatch: resolve clients: %w", err)
	}

	orderBlock, _ := notificationFor(EmailTypeOrderBlock)
	balance, _ := notificationFor(EmailTypeBalance)

	groups := make([]ClientGroup, 0, len(nits))
	for _, nit := range nits {
		group := ClientGroup{NIT: nit, Rows: byNIT[nit]}
		for _, r := range group.Rows {
			v := numfmt.ParseAmount(r.SaldoContable)
			if r.Dias != nil {
				switch {
				case *r.Dias < 0:
					group.TotalVencidos += v
				case *r.Dias > 0:
					group.TotalPorVencer += v
				}
			}
		}

		var client *clients.Client
		if c, ok := clientMap[nit]; ok {
			client = &c
		}
		if client != nil && client.Name != nil {
			group.ClientName = *client.Name
		}
		group.OrderBlockRecipients = orderBlock.Recipients(client, e.internalList)
		group.BalanceRecipients = balance.Recipients(client, e.internalList)

		groups = append(groups, group)
	}
	return groups, nil
}
