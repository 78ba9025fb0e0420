package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/Holography7/listkeeper/internal/config"
	"github.com/Holography7/listkeeper/internal/job"
	"github.com/Holography7/listkeeper/internal/platform/metrics"
)

// Envelope is the wire format of the push relay: one JSON object per
// connection, answered by one JSON reply.
type Envelope struct {
	Telegram string `json:"telegram"`
	Message  string `json:"message"`
}

// relayReply is the expected acceptance response from the push relay.
type relayReply struct {
	Status string `json:"status"`
}

const relayAcceptedStatus = "accepted"

// Deliverer executes notification jobs: it connects to the push relay,
// sends one envelope, and checks the acknowledgement. A process-wide rate
// limiter caps relay submissions.
type Deliverer struct {
	addr    string
	limiter *rate.Limiter
	dialer  net.Dialer
	timeout time.Duration
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewDeliverer creates a Deliverer for the configured relay endpoint with
// the configured per-minute rate limit shared across all workers.
func NewDeliverer(relayCfg config.RelayConfig, notifyCfg config.NotifyConfig, rec metrics.Recorder, log *slog.Logger) *Deliverer {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}

	ratePerMinute := notifyCfg.RatePerMinute
	if ratePerMinute <= 0 {
		ratePerMinute = 60
	}

	return &Deliverer{
		addr:    fmt.Sprintf("%s:%d", relayCfg.Host, relayCfg.Port),
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60.0), 1),
		timeout: 10 * time.Second,
		metrics: rec,
		logger:  log.With(slog.String("component", "notification_deliverer")),
	}
}

// Executor returns the job executor for the list_deleted_notice kind.
func (d *Deliverer) Executor() job.ExecutorFunc {
	return func(ctx context.Context, raw json.RawMessage) error {
		var p Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("invalid notification payload: %w", err)
		}
		return d.Deliver(ctx, p)
	}
}

// Deliver sends one notification through the relay. The connection is
// one-shot: connect, write the envelope, read one reply, close. Any reply
// other than {"status":"accepted"} fails with ErrNotificationFailed.
func (d *Deliverer) Deliver(ctx context.Context, p Payload) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter interrupted: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	conn, err := d.dialer.DialContext(dialCtx, "tcp", d.addr)
	if err != nil {
		d.metrics.RecordNotificationFailed()
		return fmt.Errorf("failed to connect to push relay at %s: %w", d.addr, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			d.logger.Debug("failed to close relay connection", slog.String("error", closeErr.Error()))
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(d.timeout)); err != nil {
		d.metrics.RecordNotificationFailed()
		return fmt.Errorf("failed to set relay deadline: %w", err)
	}

	envelope := Envelope{
		Telegram: p.Telegram,
		Message:  Message(p.OwnerUsername, p.ListName),
	}
	if err := json.NewEncoder(conn).Encode(envelope); err != nil {
		d.metrics.RecordNotificationFailed()
		return fmt.Errorf("failed to send envelope to push relay: %w", err)
	}

	var reply relayReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		d.metrics.RecordNotificationFailed()
		return fmt.Errorf("failed to read push relay reply: %w", err)
	}

	if reply.Status != relayAcceptedStatus {
		d.metrics.RecordNotificationFailed()
		return fmt.Errorf("%w: status %q", ErrNotificationFailed, reply.Status)
	}

	d.metrics.RecordNotificationDelivered()
	d.logger.Debug("notification delivered",
		slog.String("telegram", p.Telegram),
		slog.String("list_name", p.ListName))
	return nil
}
