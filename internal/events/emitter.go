package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

const (
	TypeUserLoggedIn        = "user_logged_in"
	TypeTokensRefreshed     = "tokens_refreshed"
	TypeUserLoggedOut       = "user_logged_out"
	TypeRefreshTokensPurged = "refresh_tokens_purged"
	TypeUserRegistered      = "user_registered"
	TypeUserUpdated         = "user_updated"
	TypeUserDeleted         = "user_deleted"
	TypeRoleGranted         = "role_granted"
)

type Event struct {
	Type     string    `json:"type"`
	UserID   uint      `json:"user_id,omitempty"`
	Username string    `json:"username,omitempty"`
	Role     string    `json:"role,omitempty"`
	Count    int64     `json:"count,omitempty"`
	At       time.Time `json:"at"`
}

// Key partitions by user so one user's events stay ordered.
func (e Event) Key() string {
	if e.UserID == 0 {
		return e.Type
	}
	return strconv.FormatUint(uint64(e.UserID), 10)
}

// Emitter publishes best effort: failures are logged and never reach the
// caller. A nil Emitter is valid and drops everything.
type Emitter struct {
	Pub   Publisher
	Topic string
}

func NewEmitter(pub Publisher, topic string) *Emitter {
	return &Emitter{Pub: pub, Topic: topic}
}

func (e *Emitter) Emit(ctx context.Context, ev Event) {
	if e == nil || e.Pub == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := e.Pub.PublishEvent(pctx, e.Topic, ev.Key(), ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", e.Topic, "event", ev.Type, "error", err)
	}
}
