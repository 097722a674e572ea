package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"wager-backend/internal/application/events"
	"wager-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Funds is the atomic value-transfer primitive. Implementations must apply
// the transfer on tx so that it commits or rolls back with the operation.
type Funds interface {
	Transfer(ctx context.Context, tx *gorm.DB, from, to domain.Principal, amount int64, memo domain.TransferMemo) error
}

// Authorizer decides which principals may run operator-only operations.
type Authorizer interface {
	IsOperator(p domain.Principal) bool
}

// Metrics receives one observation per operation and per funds movement.
type Metrics interface {
	ObserveOperation(op, outcome string)
	ObserveFunds(kind string, amount int64)
}

// OperatorSet is an Authorizer backed by a fixed set of principals.
type OperatorSet map[domain.Principal]struct{}

func NewOperatorSet(ps ...domain.Principal) OperatorSet {
	s := make(OperatorSet, len(ps))
	for _, p := range ps {
		if !p.IsZero() {
			s[p] = struct{}{}
		}
	}
	return s
}

func (s OperatorSet) IsOperator(p domain.Principal) bool {
	_, ok := s[p]
	return ok
}

// PayoutPolicy selects who receives a winning bet's share of the pool.
type PayoutPolicy string

const (
	// PayPlacer pays each winning bet's share to the principal who placed it.
	PayPlacer PayoutPolicy = "placer"
	// PayHolders splits each winning bet's share across its holdings by units.
	PayHolders PayoutPolicy = "holders"
)

func ParsePayoutPolicy(s string) (PayoutPolicy, error) {
	switch PayoutPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PayPlacer:
		return PayPlacer, nil
	case PayHolders:
		return PayHolders, nil
	}
	return "", fmt.Errorf("unknown payout policy %q", s)
}

// Service is the wagering ledger: game registry, bet ledger, share market and
// settlement engine over one shared store. Mutating operations are fully
// serialized and each runs in a single database transaction.
type Service struct {
	DB        *gorm.DB
	Funds     Funds
	Operators Authorizer
	Events    events.Sink
	Metrics   Metrics
	Custody   domain.Principal
	Payout    PayoutPolicy

	mu sync.RWMutex
}

// op carries the transaction of one running operation and the side effects
// that are released only after it commits.
type op struct {
	ctx    context.Context
	tx     *gorm.DB
	svc    *Service
	events []events.Event
	moved  []movement
}

type movement struct {
	kind   string
	amount int64
}

func (o *op) emit(kind events.Kind, gameID uint, actor domain.Principal, fields map[string]interface{}) {
	o.events = append(o.events, events.Event{Kind: kind, GameID: gameID, Actor: actor, Fields: fields})
}

func (o *op) transfer(from, to domain.Principal, amount int64, memo domain.TransferMemo) error {
	if o.svc.Funds == nil {
		return fmt.Errorf("%w: no funds backend", domain.ErrTransferFailed)
	}
	if err := o.svc.Funds.Transfer(o.ctx, o.tx, from, to, amount, memo); err != nil {
		return err
	}
	o.moved = append(o.moved, movement{kind: memo.Kind, amount: amount})
	return nil
}

func (s *Service) custody() domain.Principal {
	if s.Custody.IsZero() {
		return domain.DefaultCustodyAccount
	}
	return s.Custody
}

func (s *Service) payout() PayoutPolicy {
	if s.Payout == "" {
		return PayPlacer
	}
	return s.Payout
}

// checkCaller refuses the ledger's own escrow and custody accounts as callers.
func (s *Service) checkCaller(caller domain.Principal) error {
	if caller.IsReserved() || caller == domain.EscrowAccount || caller == s.custody() {
		return fmt.Errorf("%w: %s is a ledger account", domain.ErrUnauthorized, caller)
	}
	return nil
}

func (s *Service) requireOperator(caller domain.Principal) error {
	if s.Operators == nil || !s.Operators.IsOperator(caller) {
		return domain.ErrUnauthorized
	}
	return nil
}

// run executes fn with exclusive access to the ledger inside one transaction.
// Events and metrics are released only when the transaction commits.
func (s *Service) run(ctx context.Context, name string, caller domain.Principal, fn func(o *op) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCaller(caller); err != nil {
		s.observe(ctx, name, caller, err)
		return err
	}
	var o *op
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o = &op{ctx: ctx, tx: tx, svc: s}
		return fn(o)
	})
	s.observe(ctx, name, caller, err)
	if err != nil {
		return err
	}
	if s.Metrics != nil {
		for _, m := range o.moved {
			s.Metrics.ObserveFunds(m.kind, m.amount)
		}
	}
	now := time.Now()
	for i := range o.events {
		o.events[i].At = now
	}
	events.Dispatch(ctx, s.Events, o.events)
	return nil
}

func (s *Service) observe(ctx context.Context, name string, caller domain.Principal, err error) {
	l := ctxLogger(ctx)
	outcome := "ok"
	switch {
	case err == nil:
		l.Debug().Str("operation", name).Str("principal", caller.String()).Msg("ledger operation committed")
	case domain.IsFault(err):
		outcome = "fault"
		l.Error().Bool("fault", true).Err(err).Str("operation", name).Str("principal", caller.String()).Msg("ledger invariant violated")
	case domain.IsRejection(err):
		outcome = "rejected"
		l.Warn().Err(err).Str("operation", name).Str("principal", caller.String()).Msg("ledger operation rejected")
	default:
		outcome = "error"
		l.Error().Err(err).Str("operation", name).Str("principal", caller.String()).Msg("ledger operation failed")
	}
	if s.Metrics != nil {
		s.Metrics.ObserveOperation(name, outcome)
	}
}

// ctxLogger returns the request logger carried by ctx, or the global logger.
func ctxLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

func loadGame(tx *gorm.DB, gameID uint) (*domain.Game, error) {
	var game domain.Game
	if err := tx.Where("id = ?", gameID).First(&game).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrInvalidGame
		}
		return nil, err
	}
	return &game, nil
}

func loadBet(tx *gorm.DB, gameID, seq uint) (*domain.Bet, error) {
	var bet domain.Bet
	if err := tx.Where("game_id = ? AND seq = ?", gameID, seq).First(&bet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: game %d bet %d", domain.ErrBetNotFound, gameID, seq)
		}
		return nil, err
	}
	return &bet, nil
}

func gameMemo(kind string, gameID uint) domain.TransferMemo {
	return domain.TransferMemo{Kind: kind, GameID: &gameID}
}

func betMemo(kind string, gameID, seq uint) domain.TransferMemo {
	return domain.TransferMemo{Kind: kind, GameID: &gameID, BetSeq: &seq}
}
