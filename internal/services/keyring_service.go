package services

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/99designs/keyring"
	"github.com/rs/zerolog/log"

	"taletable/internal/llm/client"
)

const serviceName = "taletable"

// envKeyNames are read when the keyring holds no key for a provider.
var envKeyNames = map[string]string{
	client.ProviderGemini:    "GEMINI_API_KEY",
	client.ProviderOpenAI:    "OPENAI_API_KEY",
	client.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

func GetOS() string {
	return runtime.GOOS
}

// OpenKeyring opens the OS credential store for the application.
func OpenKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
		LibSecretCollectionName:  serviceName,
		KWalletAppID:             serviceName,
		KWalletFolder:            serviceName,
		WinCredPrefix:            serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

type KeyringService struct {
	ring   keyring.Keyring
	getenv func(string) string

	// OnChange runs after a key was stored or removed.
	OnChange func(provider string)
}

func NewKeyringService(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring, getenv: os.Getenv}
}

func (s *KeyringService) Startup() {
	if s.ring == nil {
		log.Warn().Str("os", GetOS()).Msg("no keyring available, API keys are read from the environment only")
	}
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if provider == "" {
		return errors.New("provider is required")
	}
	if s.ring == nil {
		return errors.New("keyring is not available")
	}

	err := s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by Taletable",
	})
	if err != nil {
		return fmt.Errorf("store API key: %w", err)
	}
	s.changed(provider)
	return nil
}

func (s *KeyringService) changed(provider string) {
	log.Info().Str("provider", provider).Msg("API key updated")
	if s.OnChange != nil {
		s.OnChange(provider)
	}
}

// GetApiKey returns the stored key for provider, falling back to the provider's
// environment variable. A missing key yields "" and no error.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	if provider == "" {
		return "", errors.New("provider is required")
	}
	if s.ring != nil {
		item, err := s.ring.Get(provider)
		switch {
		case err == nil && len(item.Data) > 0:
			return string(item.Data), nil
		case err != nil && !errors.Is(err, keyring.ErrKeyNotFound):
			return "", fmt.Errorf("read keyring: %w", err)
		}
	}
	if name, ok := envKeyNames[provider]; ok {
		return strings.TrimSpace(s.getenv(name)), nil
	}
	return "", nil
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	if s.ring == nil {
		return errors.New("keyring is not available")
	}
	if err := s.ring.Remove(provider); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	s.changed(provider)
	return nil
}

func (s *KeyringService) ListApiKeys() ([]map[string]string, error) {
	if s.ring == nil {
		return []map[string]string{}, nil
	}
	providers, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(providers)

	results := make([]map[string]string, 0, len(providers))
	for _, provider := range providers {
		results = append(results, map[string]string{
			"provider":    provider,
			"label":       provider + " API key",
			"description": "API key for " + provider + " used by Taletable",
		})
	}
	return results, nil
}
