// Package notify implements the deletion notification fan-out: when a
// superuser deletes another user's list, every other known account gets a
// message through the push relay. Delivery is asynchronous, best-effort,
// and independent per recipient.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/job"
	"github.com/Holography7/listkeeper/internal/platform/logger"
	"github.com/Holography7/listkeeper/internal/platform/metrics"
	"github.com/Holography7/listkeeper/internal/store"
)

// JobKindListDeletedNotice is the scheduler job kind for one recipient's
// deletion notification.
const JobKindListDeletedNotice = "list_deleted_notice"

// ErrNotificationFailed indicates the push relay returned something other
// than an acceptance reply.
var ErrNotificationFailed = errors.New("push relay returned unsuccessful response")

// Payload is the per-recipient notification job payload.
type Payload struct {
	OwnerUsername string `json:"owner_username"`
	ListName      string `json:"list_name"`
	Telegram      string `json:"telegram"`
}

// messageTemplate is the relayed text. It names the list's owner and the
// deleted list; the wording follows the product's Russian house style.
const messageTemplate = "Пользователь %[1]s посмел создать TODO лист с оскорбительным названием %[2]s. " +
	"Мы успешно удалили этот TODO List, а пользователь %[1]s получает звание дурака!"

// Message renders the notification text for one deleted list.
func Message(ownerUsername, listName string) string {
	return fmt.Sprintf(messageTemplate, ownerUsername, listName)
}

// Notifier submits notification jobs after an administrative list deletion.
type Notifier struct {
	identities store.IdentityStore
	jobs       job.Scheduler
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(identities store.IdentityStore, jobs job.Scheduler, rec metrics.Recorder, log *slog.Logger) *Notifier {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Notifier{
		identities: identities,
		jobs:       jobs,
		metrics:    rec,
		logger:     log.With(slog.String("component", "deletion_notifier")),
	}
}

// ListDeleted submits one notification job per identity other than the
// list's owner. It fires only when the deleting caller is a superuser and
// the list belonged to someone else; the deleting superuser is a recipient
// like everyone but the owner.
//
// The list is already deleted when this runs. Submission failures are
// logged per recipient and never propagate: the deletion is committed and
// each recipient is an independent unit of work.
func (n *Notifier) ListDeleted(ctx context.Context, caller *domain.Identity, list *domain.List) {
	log := logger.FromContextOrDefault(ctx, n.logger)

	if !caller.IsSuperuser() || caller.ID == list.OwnerID {
		return
	}

	identities, err := n.identities.List(ctx)
	if err != nil {
		log.Error("failed to enumerate notification recipients",
			slog.String("list_id", list.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	ownerUsername := ""
	for _, identity := range identities {
		if identity.ID == list.OwnerID {
			ownerUsername = identity.Username
			break
		}
	}

	submitted := 0
	for _, identity := range identities {
		if identity.ID == list.OwnerID {
			continue
		}

		_, err := n.jobs.Submit(ctx, JobKindListDeletedNotice, Payload{
			OwnerUsername: ownerUsername,
			ListName:      list.Name,
			Telegram:      identity.Telegram,
		})
		if err != nil {
			log.Error("failed to submit deletion notification",
				slog.String("recipient", identity.Username),
				slog.String("list_id", list.ID.String()),
				slog.String("error", err.Error()))
			continue
		}

		n.metrics.RecordNotificationSubmitted()
		submitted++
	}

	log.Info("deletion notification fan-out submitted",
		slog.String("list_id", list.ID.String()),
		slog.String("list_name", list.Name),
		slog.Int("recipients", submitted))
}
