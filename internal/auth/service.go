package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/umbra-img/umbra/internal/platform/kv"
	"github.com/umbra-img/umbra/internal/shared"
)

// DefaultSessionTTL is the fixed lifetime of an issued token.
const DefaultSessionTTL = 7 * 24 * time.Hour

const minPasswordLength = 6

// Manager mediates all access to the user and token stores. One mutex covers
// both stores because Login mutates them together; lookups take the read
// side and upgrade only when they need to evict an expired token.
type Manager struct {
	mu     sync.RWMutex
	users  userStore
	tokens tokenStore
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager on the given store. A zero ttl selects the
// default seven-day lifetime.
func NewManager(store kv.Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		users:  userStore{kv: store},
		tokens: tokenStore{kv: store},
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register creates a new user account and returns its public projection.
func (m *Manager) Register(ctx context.Context, email, password, name string) (PublicUser, error) {
	if len(password) < minPasswordLength {
		return PublicUser{}, fmt.Errorf("%w: password must be at least %d characters", shared.ErrValidation, minPasswordLength)
	}
	if email == "" || !strings.Contains(email, "@") {
		return PublicUser{}, fmt.Errorf("%w: invalid email address", shared.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists, err := m.users.get(ctx, email); err != nil {
		return PublicUser{}, err
	} else if exists {
		return PublicUser{}, shared.ErrEmailTaken
	}

	digest, err := HashPassword(password)
	if err != nil {
		return PublicUser{}, err
	}
	id, err := m.users.nextID(ctx)
	if err != nil {
		return PublicUser{}, err
	}

	user := User{
		ID:           strconv.FormatInt(id, 10),
		Email:        email,
		Name:         name,
		PasswordHash: digest,
		CreatedAt:    m.now().UTC(),
	}
	if err := m.users.put(ctx, user); err != nil {
		return PublicUser{}, err
	}
	return user.Public(), nil
}

// Login verifies credentials and issues a fresh bearer token. Unknown email
// and wrong password fail with the same error so callers cannot enumerate
// accounts. Each login issues a new token; earlier tokens stay valid.
func (m *Manager) Login(ctx context.Context, email, password string) (string, PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists, err := m.users.get(ctx, email)
	if err != nil {
		return "", PublicUser{}, err
	}
	if !exists {
		VerifyPassword(unknownUserDigest, password)
		return "", PublicUser{}, shared.ErrInvalidCredentials
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return "", PublicUser{}, shared.ErrInvalidCredentials
	}

	token, err := GenerateToken()
	if err != nil {
		return "", PublicUser{}, err
	}

	now := m.now().UTC()
	sess := Session{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.tokens.put(ctx, token, sess); err != nil {
		return "", PublicUser{}, err
	}

	user.LastLogin = &now
	if err := m.users.put(ctx, user); err != nil {
		return "", PublicUser{}, err
	}
	return token, user.Public(), nil
}

// Verify resolves a bearer token to the current identity of its owner. An
// absent or expired token is not an error, just not found; expired tokens
// are evicted on the way out. The owning user is looked up fresh so later
// profile changes are reflected.
func (m *Manager) Verify(ctx context.Context, token string) (PublicUser, bool, error) {
	m.mu.RLock()
	sess, exists, err := m.tokens.get(ctx, token)
	if err != nil {
		m.mu.RUnlock()
		return PublicUser{}, false, err
	}
	if !exists {
		m.mu.RUnlock()
		return PublicUser{}, false, nil
	}
	if !sess.ExpiresAt.After(m.now()) {
		m.mu.RUnlock()
		return PublicUser{}, false, m.evictExpired(ctx, token)
	}

	user, exists, err := m.users.get(ctx, sess.Email)
	m.mu.RUnlock()
	if err != nil {
		return PublicUser{}, false, err
	}
	if !exists {
		// The user store is independently mutable; a dangling token is
		// treated the same as not authenticated.
		return PublicUser{}, false, nil
	}
	return user.Public(), true, nil
}

// evictExpired re-checks under the write lock before deleting, since another
// verification may have already reclaimed the token.
func (m *Manager) evictExpired(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists, err := m.tokens.get(ctx, token)
	if err != nil {
		return err
	}
	if !exists || sess.ExpiresAt.After(m.now()) {
		return nil
	}
	return m.tokens.delete(ctx, token)
}

// Logout revokes a token. It is idempotent and leaves any other tokens the
// same user holds untouched.
func (m *Manager) Logout(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens.delete(ctx, token)
}

// GetUserByID looks a user up by ID with a linear scan of the user store.
func (m *Manager) GetUserByID(ctx context.Context, id string) (PublicUser, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users, err := m.users.scan(ctx)
	if err != nil {
		return PublicUser{}, false, err
	}
	for _, user := range users {
		if user.ID == id {
			return user.Public(), true, nil
		}
	}
	return PublicUser{}, false, nil
}

// SweepExpired removes every expired token record and reports how many were
// reclaimed. Lazy eviction in Verify remains the authoritative path; the
// sweep only keeps storage from accumulating tokens nobody presents again.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.tokens.scan(ctx)
	if err != nil {
		return 0, err
	}

	now := m.now()
	removed := 0
	for _, entry := range entries {
		var sess Session
		if err := json.Unmarshal(entry.Value, &sess); err != nil {
			return removed, fmt.Errorf("auth: decode session %s: %w", entry.Key, err)
		}
		if sess.ExpiresAt.After(now) {
			continue
		}
		if err := m.tokens.delete(ctx, entry.Key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
