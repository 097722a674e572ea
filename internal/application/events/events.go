package events

import (
	"context"
	"encoding/json"
	"time"

	"wager-backend/internal/domain"

	"github.com/rs/zerolog/log"
)

// Kind names a ledger notification.
type Kind string

const (
	GameCreated         Kind = "GameCreated"
	BetPlaced           Kind = "BetPlaced"
	BetWithdrawn        Kind = "BetWithdrawn"
	GameClosed          Kind = "GameClosed"
	BetStateChanged     Kind = "BetStateChanged"
	SharesListed        Kind = "SharesListed"
	ShareSold           Kind = "ShareSold"
	WinningsDistributed Kind = "WinningsDistributed"
)

// Event is one notification. Fields carries kind-specific values.
type Event struct {
	Kind   Kind                   `json:"kind"`
	GameID uint                   `json:"game_id"`
	Actor  domain.Principal       `json:"actor"`
	Fields map[string]interface{} `json:"fields"`
	At     time.Time              `json:"at"`
}

// Sink receives events after the operation that produced them has committed.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// Marshal encodes e as the JSON envelope shared by every transport.
func Marshal(e Event) ([]byte, error) {
	if e.Fields == nil {
		e.Fields = map[string]interface{}{}
	}
	return json.Marshal(e)
}

// EmitTimeout bounds each sink call made by Dispatch. Dispatch runs while the
// ledger lock is held, so a stalled transport must not stall the ledger.
var EmitTimeout = 2 * time.Second

// Dispatch emits each event to sink. Failures are logged and dropped: the
// outcome of an operation never depends on its notifications. Each emit gets
// its own deadline and ignores cancellation of the request that caused it.
func Dispatch(ctx context.Context, sink Sink, evs []Event) {
	if sink == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	for _, e := range evs {
		ectx, cancel := context.WithTimeout(base, EmitTimeout)
		err := sink.Emit(ectx, e)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("kind", string(e.Kind)).Uint("game_id", e.GameID).Msg("event emit failed")
		}
	}
}

// Multi fans an event out to every sink, returning the first error seen.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, e Event) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, Event) error { return nil }
