package events

import (
	"context"
	"encoding/json"

	"wager-backend/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service persists events as ledger_events rows and serves them back per game.
type Service struct {
	DB *gorm.DB
}

func (s *Service) Emit(ctx context.Context, e Event) error {
	fields := e.Fields
	if fields == nil {
		fields = map[string]interface{}{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	row := domain.LedgerEvent{
		GameID:  e.GameID,
		Kind:    string(e.Kind),
		Actor:   e.Actor,
		Payload: datatypes.JSON(payload),
	}
	if !e.At.IsZero() {
		row.CreatedAt = e.At
	}
	return s.DB.WithContext(ctx).Create(&row).Error
}

// GetGameEvents returns the recorded events of a game, oldest first.
func (s *Service) GetGameEvents(ctx context.Context, gameID uint) ([]domain.LedgerEvent, error) {
	var game domain.Game
	if err := s.DB.WithContext(ctx).Select("id").Where("id = ?", gameID).First(&game).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrInvalidGame
		}
		return nil, err
	}

	var evs []domain.LedgerEvent
	if err := s.DB.WithContext(ctx).Where("game_id = ?", gameID).Order("created_at ASC").Find(&evs).Error; err != nil {
		return nil, err
	}
	return evs, nil
}
