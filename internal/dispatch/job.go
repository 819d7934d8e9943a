package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/andina-erp/andina-erp/internal/mail"
	"github.com/andina-erp/andina-erp/jobs"
)

const errNoData = "No data found for this NIT/date"

// Job processes dispatch records queued by Queue.Enqueue. Every outcome is
// recorded on the row itself, so Handle returns nil for any record-level
// failure: asynq never retries, re-delivery happens only through a fresh
// enqueue.
type Job struct {
	records RecordsPort
	cartera CarteraPort
	clients ClientsPort
	sender  mail.Sender
	estado  *Estado
	logger  *slog.Logger
}

// NewJob wires the worker-side processor.
func NewJob(records RecordsPort, carteraRepo CarteraPort, clientsRepo ClientsPort, sender mail.Sender, estado *Estado, logger *slog.Logger) *Job {
	return &Job{records: records, cartera: carteraRepo, clients: clientsRepo, sender: sender, estado: estado, logger: logger}
}

// Handle is the asynq handler for dispatch processing tasks.
func (j *Job) Handle(ctx context.Context, t *asynq.Task) error {
	var payload jobs.DispatchProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.logger.Error("dispatch payload unmarshal", slog.Any("error", err))
		return asynq.SkipRetry
	}
	j.process(ctx, payload)
	return nil
}

// process re-derives everything live: snapshot rows, client master data and
// recipient lists are read at send time, not from the enqueued record, so a
// record retried days later reflects current data.
func (j *Job) process(ctx context.Context, payload jobs.DispatchProcessPayload) {
	etype := EmailType(payload.EmailType)
	log := j.logger.With(
		slog.String("nit", payload.ClientNIT),
		slog.String("email_type", payload.EmailType),
		slog.Time("due_date", payload.DueDate))

	n, err := notificationFor(etype)
	if err != nil {
		log.Error("dispatch process", slog.Any("error", err))
		return
	}

	if err := j.records.MarkSending(ctx, payload.ClientNIT, payload.DueDate, etype); err != nil {
		log.Error("mark sending", slog.Any("error", err))
		return
	}

	fail := func(reason string) {
		if err := j.records.MarkFailed(ctx, payload.ClientNIT, payload.DueDate, etype, reason); err != nil {
			log.Error("mark failed", slog.Any("error", err))
		}
		log.Info("dispatch failed", slog.String("reason", reason))
	}

	rows, err := j.cartera.ListByDateAndNIT(ctx, payload.DueDate, payload.ClientNIT)
	if err != nil {
		fail(err.Error())
		return
	}
	if len(rows) == 0 {
		fail(errNoData)
		return
	}

	client, err := j.clients.GetByNIT(ctx, payload.ClientNIT)
	if err != nil {
		// Unresolvable client keeps going with a nil client; the recipient
		// resolution then yields an empty list and the record fails below.
		client = nil
	}

	recipients := n.Recipients(client, j.estado.internalList)
	if len(recipients) == 0 {
		fail("no valid recipients")
		return
	}

	sc := SendContext{}
	for _, r := range rows {
		if r.Dias != nil && *r.Dias < 0 {
			sc.TotalVencidos += r.Balance()
		}
	}
	if etype == EmailTypeOrderBlock {
		count, err := j.records.CountDispatchableProducts(ctx, payload.ClientNIT)
		if err != nil {
			fail(err.Error())
			return
		}
		sc.DispatchableProducts = count
	}
	if reason := n.Suppress(sc); reason != "" {
		fail(reason)
		return
	}

	clientName := payload.ClientNIT
	if client != nil && client.Name != nil {
		clientName = *client.Name
	}
	body, err := renderLetter(etype, clientName, payload.ClientNIT, payload.DueDate, rows, sc.DispatchableProducts)
	if err != nil {
		fail(err.Error())
		return
	}

	msg := mail.Message{
		To:      recipients,
		Subject: n.Subject(clientName, payload.DueDate),
		HTML:    body,
	}
	if err := j.sender.Send(ctx, msg); err != nil {
		fail(err.Error())
		return
	}

	if err := j.records.MarkSent(ctx, payload.ClientNIT, payload.DueDate, etype); err != nil {
		log.Error("mark sent", slog.Any("error", err))
		return
	}
	log.Info("dispatch sent", slog.Int("recipients", len(recipients)))
}
