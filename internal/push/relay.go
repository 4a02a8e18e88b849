package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// Relay delivers best-effort web push messages to stored subscription
// endpoints. Delivery failures are never surfaced to users; endpoints
// the push service reports gone are pruned and forgotten.
type Relay struct {
	subscriptions repo.PushSubscriptionRepository
	vapidPublic   string
	vapidPrivate  string
	subject       string
	logger        *zap.Logger
}

func NewRelay(subscriptions repo.PushSubscriptionRepository, vapidPublic, vapidPrivate, subject string, logger *zap.Logger) *Relay {
	return &Relay{
		subscriptions: subscriptions,
		vapidPublic:   vapidPublic,
		vapidPrivate:  vapidPrivate,
		subject:       subject,
		logger:        logger,
	}
}

// VAPIDPublicKey returns the key browsers need to subscribe.
func (r *Relay) VAPIDPublicKey() string {
	return r.vapidPublic
}

// Send pushes the payload to the user's stored endpoint. A user with no
// subscription is a silent no-op.
func (r *Relay) Send(ctx context.Context, userID string, payload model.PushPayload) error {
	sub, err := r.subscriptions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if sub == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	resp, err := webpush.SendNotification(body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.Keys.P256dh,
			Auth:   sub.Keys.Auth,
		},
	}, &webpush.Options{
		Subscriber:      r.subject,
		VAPIDPublicKey:  r.vapidPublic,
		VAPIDPrivateKey: r.vapidPrivate,
		TTL:             60,
	})
	if err != nil {
		pushFailed.Inc()
		return fmt.Errorf("send push notification: %w", err)
	}
	defer resp.Body.Close()

	if ShouldPrune(resp.StatusCode) {
		pushPruned.Inc()
		r.logger.Info("pruning expired push subscription",
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
		)
		if err := r.subscriptions.Remove(ctx, userID); err != nil {
			r.logger.Warn("failed to prune push subscription", zap.Error(err))
		}
		return nil
	}

	if resp.StatusCode >= http.StatusBadRequest {
		pushFailed.Inc()
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	pushSent.Inc()
	return nil
}

// ShouldPrune reports whether a push service response means the
// endpoint is permanently dead.
func ShouldPrune(statusCode int) bool {
	return statusCode == http.StatusGone || statusCode == http.StatusNotFound
}
