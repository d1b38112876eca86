package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"freighthub-backend/internal/domain"
	"freighthub-backend/internal/logger"
)

// SendJoinRequestReminders nudges community admins about join requests that
// have been pending longer than the configured threshold.
func (jr *JobRunner) SendJoinRequestReminders() {
	jr.runWithRecovery("SendJoinRequestReminders", func() {
		ctx := context.Background()
		cutoff := jr.now().UTC().Add(-time.Duration(jr.config.Jobs.JoinRequestReminderHours) * time.Hour)

		communities, err := jr.repos.Communities.ListWithPendingBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to query communities with stale join requests", "error", err)
			return
		}

		count := 0
		for _, c := range communities {
			stale := 0
			for _, req := range c.PendingRequests() {
				if req.RequestedAt.Before(cutoff) {
					stale++
				}
			}
			if stale == 0 {
				continue
			}

			for _, adminID := range c.Admins() {
				jr.notifier.Notify(ctx, &domain.Notification{
					UserID:  adminID,
					Type:    domain.NotificationJoinReminder,
					Title:   "Join requests awaiting review",
					Message: fmt.Sprintf("%d join request(s) for %s have been waiting for more than %d hours", stale, c.Name, jr.config.Jobs.JoinRequestReminderHours),
					Attributes: map[string]string{
						"community_id": c.ID.String(),
						"pending":      fmt.Sprintf("%d", stale),
					},
				})
				count++
			}
			logger.Debug("Sent join request reminders", "community_id", c.ID, "pending", stale)
		}

		logger.Info("Join request reminders sent", "count", count)
	})
}

// NotifyExpiringQuotes warns request owners about pending quotes whose
// validity ends within the configured window. Each quote is reminded once,
// however often the job runs while it sits in the window.
func (jr *JobRunner) NotifyExpiringQuotes() {
	jr.runWithRecovery("NotifyExpiringQuotes", func() {
		ctx := context.Background()
		from := jr.now().UTC()
		to := from.Add(time.Duration(jr.config.Jobs.QuoteExpiryWindowHours) * time.Hour)

		responses, err := jr.repos.Responses.ClaimExpiring(ctx, from, to, from)
		if err != nil {
			logger.Error("Failed to query expiring quotes", "error", err)
			return
		}
		if len(responses) == 0 {
			logger.Info("No expiring quotes")
			return
		}

		ids := make([]uuid.UUID, 0, len(responses))
		for _, r := range responses {
			ids = append(ids, r.QuoteRequestID)
		}
		requests, err := jr.repos.Requests.GetByIDs(ctx, ids)
		if err != nil {
			logger.Error("Failed to load requests for expiring quotes", "error", err)
			return
		}

		count := 0
		for _, r := range responses {
			req, ok := requests[r.QuoteRequestID]
			if !ok {
				continue
			}
			jr.notifier.Notify(ctx, &domain.Notification{
				UserID:  req.CompanyID,
				Type:    domain.NotificationQuoteExpiring,
				Title:   "Quote expiring soon",
				Message: fmt.Sprintf("A quote of %.2f %s for %s to %s expires on %s", r.QuoteAmount, r.Currency, req.PickupLocation, req.DeliveryLocation, r.Validity.Format("2006-01-02")),
				Attributes: map[string]string{
					"quote_request_id":  req.ID.String(),
					"quote_response_id": r.ID.String(),
				},
			})
			count++
		}

		logger.Info("Expiring quote reminders sent", "count", count)
	})
}

// PurgeReadNotifications deletes read notifications older than the
// retention period.
func (jr *JobRunner) PurgeReadNotifications() {
	jr.runWithRecovery("PurgeReadNotifications", func() {
		ctx := context.Background()
		cutoff := jr.now().UTC().AddDate(0, 0, -jr.config.Jobs.NotificationRetentionDays)

		n, err := jr.repos.Notifications.DeleteReadBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge read notifications", "error", err)
			return
		}
		logger.Info("Read notifications purged", "count", n, "cutoff", cutoff)
	})
}
