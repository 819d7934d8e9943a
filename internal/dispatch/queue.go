package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/andina-erp/andina-erp/jobs"
)

// RecordsPort is the persistence surface the queue and the worker share.
type RecordsPort interface {
	UpsertGroups(ctx context.Context, dueDate time.Time, etype EmailType, groups []ClientGroup) (int, error)
	MarkSending(ctx context.Context, nit string, dueDate time.Time, etype EmailType) error
	MarkSent(ctx context.Context, nit string, dueDate time.Time, etype EmailType) error
	MarkFailed(ctx context.Context, nit string, dueDate time.Time, etype EmailType, reason string) error
	GetByKey(ctx context.Context, nit string, dueDate time.Time, etype EmailType) (*Record, error)
	List(ctx context.Context, dueDate time.Time, status SendStatus) ([]Record, error)
	CountDispatchableProducts(ctx context.Context, nit string) (int, error)
}

// TaskEnqueuer pushes one processing task per persisted record. Satisfied by
// jobs.Client.
type TaskEnqueuer interface {
	EnqueueDispatchProcess(ctx context.Context, payload jobs.DispatchProcessPayload) (*asynq.TaskInfo, error)
}

// Queue turns a snapshot generation into durable dispatch records and hands
// each one to the background worker.
type Queue struct {
	estado  *Estado
	records RecordsPort
	tasks   TaskEnqueuer
	logger  *slog.Logger
}

// NewQueue wires the enqueue service.
func NewQueue(estado *Estado, records RecordsPort, tasks TaskEnqueuer, logger *slog.Logger) *Queue {
	return &Queue{estado: estado, records: records, tasks: tasks, logger: logger}
}

// Enqueue persists one pending record per client with snapshot rows at
// dueDate and queues a processing task for each. The upsert is transactional
// over all clients; a record that already exists for the key is overwritten
// and reset to pending regardless of its previous status. Returns the number
// of records written.
func (q *Queue) Enqueue(ctx context.Context, dueDate time.Time, etype EmailType) (int, error) {
	if _, err := notificationFor(etype); err != nil {
		return 0, err
	}

	groups, err := q.estado.LoadByDate(ctx, dueDate)
	if err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}

	written, err := q.records.UpsertGroups(ctx, dueDate, etype, groups)
	if err != nil {
		return 0, fmt.Errorf("dispatch: enqueue: %w", err)
	}

	// Task submission happens after commit. A failed submission leaves a
	// pending record that a later enqueue or manual re-run picks up again.
	for _, g := range groups {
		if g.NIT == "" {
			continue
		}
		payload := jobs.DispatchProcessPayload{ClientNIT: g.NIT, DueDate: dueDate, EmailType: string(etype)}
		if _, err := q.tasks.EnqueueDispatchProcess(ctx, payload); err != nil {
			q.logger.Warn("dispatch task submit failed",
				slog.String("nit", g.NIT),
				slog.String("email_type", string(etype)),
				slog.Any("error", err))
		}
	}
	return written, nil
}
