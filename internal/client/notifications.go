package client

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/realtime"
	"github.com/apexlens/backoffice/internal/service/storage"
)

const (
	storageWarnPercent  = 80.0
	storageCheckDefault = time.Hour
)

// eventSource is the push side of the realtime bus.
type eventSource interface {
	Subscribe(ctx context.Context) <-chan realtime.Event
}

// storageUsage reports current media storage consumption.
type storageUsage interface {
	Usage(ctx context.Context) (*storage.Usage, error)
}

// Center accumulates dashboard notifications from job events and the
// periodic storage check. Notifications live in memory only.
type Center struct {
	log      *slog.Logger
	events   eventSource
	storage  storageUsage
	interval time.Duration

	mu            sync.Mutex
	notifications []domain.Notification
	overQuota     bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewCenter creates a notification center. It does nothing until Start.
func NewCenter(logger *slog.Logger, events eventSource, usage storageUsage) *Center {
	return &Center{
		log:      logger.With("component", "notifications"),
		events:   events,
		storage:  usage,
		interval: storageCheckDefault,
	}
}

// Start opens the event subscription and the periodic storage check. Both
// run until Close or until ctx is cancelled.
func (c *Center) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	ch := c.events.Subscribe(ctx)

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				c.handleEvent(ev)
			case <-ticker.C:
				c.checkStorage(ctx)
			}
		}
	}()
}

// Close tears down the subscription and the storage ticker.
func (c *Center) Close() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}

// Notifications returns a snapshot, newest first.
func (c *Center) Notifications() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Notification, len(c.notifications))
	for i, n := range c.notifications {
		out[len(out)-1-i] = n
	}
	return out
}

// Unread counts notifications not yet marked read.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, n := range c.notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead marks one notification read. Unknown ids are ignored.
func (c *Center) MarkRead(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			return
		}
	}
}

// MarkAllRead marks every notification read in one pass.
func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.notifications {
		c.notifications[i].Read = true
	}
}

// Clear drops all notifications.
func (c *Center) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notifications = nil
}

func (c *Center) handleEvent(ev realtime.Event) {
	switch ev.Type {
	case realtime.EventInsert:
		if ev.New == nil {
			return
		}
		c.add(domain.Notification{
			Kind:    domain.NotificationNewRequest,
			Title:   "New request",
			Message: fmt.Sprintf("%s requested %s at %s", ev.New.ClientName, ev.New.Service, ev.New.Address),
			Payload: map[string]string{"jobId": ev.New.ID.String()},
		})
	case realtime.EventUpdate:
		if ev.Old == nil || ev.New == nil {
			return
		}
		// Only the transition into paid is worth an alert; repeated
		// updates of an already-paid job are noise.
		if ev.Old.Status == domain.JobStatusPaid.String() || ev.New.Status != domain.JobStatusPaid.String() {
			return
		}
		c.add(domain.Notification{
			Kind:    domain.NotificationPayment,
			Title:   "Payment received",
			Message: fmt.Sprintf("%s paid $%.2f", ev.New.ClientName, float64(ev.New.PriceCents)/100),
			Payload: map[string]string{"jobId": ev.New.ID.String()},
		})
	}
}

func (c *Center) checkStorage(ctx context.Context) {
	usage, err := c.storage.Usage(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "storage check failed, skipping",
			slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	over := usage.Percent >= storageWarnPercent
	if over && !c.overQuota {
		c.addLocked(domain.Notification{
			Kind:    domain.NotificationStorage,
			Title:   "Storage running low",
			Message: fmt.Sprintf("Media storage is at %.0f%% of the quota", usage.Percent),
			Payload: map[string]string{
				"usedBytes":  strconv.FormatInt(usage.UsedBytes, 10),
				"quotaBytes": strconv.FormatInt(usage.QuotaBytes, 10),
			},
		})
	}
	c.overQuota = over
}

func (c *Center) add(n domain.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(n)
}

func (c *Center) addLocked(n domain.Notification) {
	n.ID = uuid.New()
	n.CreatedAt = time.Now().UTC()
	c.notifications = append(c.notifications, n)
}
