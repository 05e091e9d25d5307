package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"estates_console/internal/domain"
)

// CallLogService lists recent voice-assistant calls. Every failure,
// including a missing credential, reads as "no calls".
type CallLogService struct {
	client   domain.CallLogClient
	settings *SettingsService
	limit    int
}

func NewCallLogService(c domain.CallLogClient, s *SettingsService, limit int) *CallLogService {
	if limit <= 0 {
		limit = 50
	}
	return &CallLogService{client: c, settings: s, limit: limit}
}

func (s *CallLogService) Recent(ctx context.Context) []domain.Call {
	key := s.settings.PrivateKey(ctx)
	if !domain.UsableKey(key) {
		log.Warn().Msg("call log private key is missing; configure it in settings")
		return []domain.Call{}
	}
	calls, err := s.client.ListCalls(ctx, key, s.limit)
	if err != nil {
		log.Error().Err(err).Msg("call log fetch failed")
		return []domain.Call{}
	}
	if calls == nil {
		return []domain.Call{}
	}
	return calls
}
