package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/umbra-img/umbra/internal/platform/kv"
)

const (
	usersBucket   = "users"
	tokensBucket  = "tokens"
	userIDCounter = "user_id"
)

// userStore persists User records keyed by email.
type userStore struct {
	kv kv.Store
}

func (s userStore) get(ctx context.Context, email string) (User, bool, error) {
	data, err := s.kv.Get(ctx, usersBucket, email)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return User{}, false, nil
		}
		return User{}, false, fmt.Errorf("auth: load user: %w", err)
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return User{}, false, fmt.Errorf("auth: decode user: %w", err)
	}
	return user, true, nil
}

func (s userStore) put(ctx context.Context, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("auth: encode user: %w", err)
	}
	if err := s.kv.Put(ctx, usersBucket, user.Email, data); err != nil {
		return fmt.Errorf("auth: store user: %w", err)
	}
	return nil
}

func (s userStore) scan(ctx context.Context) ([]User, error) {
	entries, err := s.kv.Scan(ctx, usersBucket)
	if err != nil {
		return nil, fmt.Errorf("auth: scan users: %w", err)
	}
	users := make([]User, 0, len(entries))
	for _, entry := range entries {
		var user User
		if err := json.Unmarshal(entry.Value, &user); err != nil {
			return nil, fmt.Errorf("auth: decode user %s: %w", entry.Key, err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (s userStore) nextID(ctx context.Context) (int64, error) {
	id, err := s.kv.Incr(ctx, userIDCounter)
	if err != nil {
		return 0, fmt.Errorf("auth: next user id: %w", err)
	}
	return id, nil
}

// tokenStore persists Session records keyed by the opaque token.
type tokenStore struct {
	kv kv.Store
}

func (s tokenStore) get(ctx context.Context, token string) (Session, bool, error) {
	data, err := s.kv.Get(ctx, tokensBucket, token)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("auth: load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, false, fmt.Errorf("auth: decode session: %w", err)
	}
	return sess, true, nil
}

func (s tokenStore) put(ctx context.Context, token string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("auth: encode session: %w", err)
	}
	if err := s.kv.Put(ctx, tokensBucket, token, data); err != nil {
		return fmt.Errorf("auth: store session: %w", err)
	}
	return nil
}

func (s tokenStore) delete(ctx context.Context, token string) error {
	if err := s.kv.Delete(ctx, tokensBucket, token); err != nil {
		return fmt.Errorf("auth: delete session: %w", err)
	}
	return nil
}

func (s tokenStore) scan(ctx context.Context) ([]kv.Entry, error) {
	entries, err := s.kv.Scan(ctx, tokensBucket)
	if err != nil {
		return nil, fmt.Errorf("auth: scan sessions: %w", err)
	}
	return entries, nil
}
