package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"estates_console/internal/domain"
)

// Settings keys in the local store.
const (
	keyVapiPublic    = "vapi_public_key"
	keyVapiAssistant = "vapi_assistant_id"
	keyVapiPrivate   = "vapi_private_key"
	keyGeneral       = "app_general_config"
)

// SettingsService keeps operator-managed integration keys next to the
// listing snapshot. Defaults come from configuration.
type SettingsService struct {
	store    domain.Store
	defaults domain.VapiSettings
}

func NewSettingsService(s domain.Store, defaults domain.VapiSettings) *SettingsService {
	return &SettingsService{store: s, defaults: defaults}
}

// Load returns stored values over configured defaults, with placeholder
// values blanked.
func (s *SettingsService) Load(ctx context.Context) domain.Settings {
	out := domain.Settings{
		Vapi: domain.VapiSettings{
			PublicKey:   s.get(ctx, keyVapiPublic, s.defaults.PublicKey),
			AssistantID: s.get(ctx, keyVapiAssistant, s.defaults.AssistantID),
			PrivateKey:  s.get(ctx, keyVapiPrivate, s.defaults.PrivateKey),
		},
		General: domain.DefaultGeneral(),
	}
	if out.Vapi.PublicKey == domain.PlaceholderPublicKey {
		out.Vapi.PublicKey = ""
	}
	if out.Vapi.AssistantID == domain.PlaceholderAssistantID {
		out.Vapi.AssistantID = ""
	}
	if out.Vapi.PrivateKey == domain.PlaceholderPrivateKey {
		out.Vapi.PrivateKey = ""
	}

	if b, ok, err := s.store.Get(ctx, keyGeneral); err != nil {
		log.Warn().Err(err).Msg("general settings load failed")
	} else if ok {
		var g domain.GeneralSettings
		if err := json.Unmarshal(b, &g); err != nil {
			log.Warn().Err(err).Msg("general settings corrupt; using defaults")
		} else {
			out.General = g
		}
	}
	return out
}

// PrivateKey is the credential used for call log requests.
func (s *SettingsService) PrivateKey(ctx context.Context) string {
	return s.Load(ctx).Vapi.PrivateKey
}

// Save writes Vapi keys only when non-empty, so a blank form field never
// erases a stored credential. The general profile is always rewritten.
func (s *SettingsService) Save(ctx context.Context, in domain.Settings) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	for _, kv := range [...]struct{ key, val string }{
		{keyVapiPublic, in.Vapi.PublicKey},
		{keyVapiAssistant, in.Vapi.AssistantID},
		{keyVapiPrivate, in.Vapi.PrivateKey},
	} {
		if kv.val == "" {
			continue
		}
		if err := s.store.Set(ctx, kv.key, []byte(kv.val)); err != nil {
			return fmt.Errorf("settings: save %s: %w", kv.key, err)
		}
	}
	b, err := json.Marshal(in.General)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, keyGeneral, b); err != nil {
		return fmt.Errorf("settings: save %s: %w", keyGeneral, err)
	}
	return nil
}

func (s *SettingsService) get(ctx context.Context, key, def string) string {
	b, ok, err := s.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("settings load failed")
		return def
	}
	if !ok || len(b) == 0 {
		return def
	}
	return string(b)
}
