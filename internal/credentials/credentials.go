// Package credentials obtains the forecast provider API key and persists it in a
// dotenv file for later runs.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjstillabower/forecast-cli/internal/observability"
	"github.com/kjstillabower/forecast-cli/internal/prompt"
	"github.com/kjstillabower/forecast-cli/internal/validation"
)

// EnvKey is the environment variable and dotenv entry holding the API key.
const EnvKey = "TNT_EX1_OPENWEATHERMAP_API_KEY"

// DefaultDotenvPath is the credential store inside the working directory.
const DefaultDotenvPath = ".env"

const signupHint = "please look at https://openweathermap.org/api for getting an API key and enter it in the following line:"

// Store persists the API key between runs.
type Store interface {
	Load() (string, bool, error)
	Save(key string) error
}

// DotenvStore keeps the key as EnvKey in a dotenv file, preserving other entries.
type DotenvStore struct {
	path string
}

// NewDotenvStore returns a store backed by the dotenv file at path.
func NewDotenvStore(path string) *DotenvStore {
	return &DotenvStore{path: path}
}

// Load returns the stored key. A missing file or entry is reported as not found.
func (s *DotenvStore) Load() (string, bool, error) {
	env, err := s.read()
	if err != nil {
		return "", false, err
	}
	key, ok := env[EnvKey]
	if !ok || key == "" {
		return "", false, nil
	}
	return key, true, nil
}

// Save writes key to the dotenv file, owner-readable only.
func (s *DotenvStore) Save(key string) error {
	env, err := s.read()
	if err != nil {
		return err
	}
	env[EnvKey] = key
	if err := godotenv.Write(env, s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", s.path, err)
	}
	return nil
}

func (s *DotenvStore) read() (map[string]string, error) {
	env, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return env, nil
}

// Provider hands out a validated API key, asking the user until one is valid.
type Provider struct {
	configured string
	store      Store
	asker      prompt.Asker
	logger     *zap.Logger
}

// NewProvider creates a Provider. configured is the key from configuration (env or
// dotenv), possibly empty. A nil logger discards log output.
func NewProvider(configured string, store Store, asker prompt.Asker, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		configured: strings.TrimSpace(configured),
		store:      store,
		asker:      asker,
		logger:     logger,
	}
}

// ObtainKey returns a key of exactly validation.APIKeyLength characters. It starts from
// the configured key, then the store, then asks; invalid keys are asked for again with
// no attempt limit. The accepted key is saved to the store; a save failure is logged
// and does not fail the run.
func (p *Provider) ObtainKey(ctx context.Context) (string, error) {
	key := p.configured
	if key == "" {
		stored, ok, err := p.store.Load()
		if err != nil {
			return "", fmt.Errorf("load stored API key: %w", err)
		}
		if ok {
			key = strings.TrimSpace(stored)
		}
	}

	if key == "" {
		answer, err := p.ask("No API Key found in your environment variables,\n" + signupHint + "\nPlease enter your API Key now:")
		if err != nil {
			return "", err
		}
		key = answer
	}

	for {
		verr := validation.ValidateAPIKey(key)
		if verr == nil {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p.logger.Debug("API key rejected", zap.Error(verr))
		answer, err := p.ask(fmt.Sprintf(
			"Wrong sized API Key inputted (correct length: %d), key found has %d characters,\n%s\nPlease enter your API Key now:",
			validation.APIKeyLength, len([]rune(key)), signupHint))
		if err != nil {
			return "", err
		}
		key = answer
	}

	if err := p.store.Save(key); err != nil {
		p.logger.Warn("could not persist API key", zap.Error(err))
	}
	return key, nil
}

func (p *Provider) ask(question string) (string, error) {
	observability.CredentialPromptsTotal.Inc()
	answer, err := p.asker.Ask(question)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
