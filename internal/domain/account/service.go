package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for the derived key. Memory-hard on purpose: the account
// record survives process restarts even though sessions don't.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64

	saltLen  = 16
	tokenLen = 24
)

// Service implements the authentication boundary: one account with a salted,
// memory-hard derived key, and opaque session tokens held in process memory.
// The token table is volatile; a restart forces re-authentication. That is a
// deliberate simplicity trade-off for a single-account deployment.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]string // token -> email
}

// NewService creates an account service with an empty session table.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]string),
	}
}

// Signup creates the account and returns a session token. It fails with
// ErrMissingFields on blank inputs and ErrAccountExists when an account is
// already persisted.
func (s *Service) Signup(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrMissingFields
	}

	if _, err := s.repo.Get(ctx); err == nil {
		return "", ErrAccountExists
	} else if !errors.Is(err, ErrNoAccount) {
		return "", fmt.Errorf("loading account: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}

	acct := &Account{
		Email:     email,
		Salt:      hex.EncodeToString(salt),
		Key:       hex.EncodeToString(key),
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, acct); err != nil {
		return "", fmt.Errorf("saving account: %w", err)
	}

	s.logger.Info("account created", "email", email)
	return s.createSession(email)
}

// Login verifies the credentials and returns a session token. It fails with
// ErrMissingFields, ErrNoAccount, or ErrInvalidCredentials; transports map
// the latter two to the same status.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrMissingFields
	}

	acct, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, ErrNoAccount) {
			return "", ErrNoAccount
		}
		return "", fmt.Errorf("loading account: %w", err)
	}

	salt, err := hex.DecodeString(acct.Salt)
	if err != nil {
		return "", fmt.Errorf("decoding stored salt: %w", err)
	}
	stored, err := hex.DecodeString(acct.Key)
	if err != nil {
		return "", fmt.Errorf("decoding stored key: %w", err)
	}
	derived, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}

	if subtle.ConstantTimeCompare(derived, stored) != 1 || acct.Email != email {
		return "", ErrInvalidCredentials
	}

	return s.createSession(email)
}

// Logout invalidates a session token. Unknown tokens are ignored, so the
// operation is idempotent.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Session resolves a token to the identity signal.
func (s *Service) Session(token string) Session {
	if token == "" {
		return Session{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.sessions[token]
	if !ok {
		return Session{}
	}
	return Session{Authenticated: true, Email: email}
}

func (s *Service) createSession(email string) (string, error) {
	raw := make([]byte, tokenLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = email
	return token, nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	return key, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
