package shops

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
)

// InMemoryRepo is an in-memory implementation of Repo
type InMemoryRepo struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{tokens: make(map[string]Token)}
}

func (r *InMemoryRepo) Upsert(_ context.Context, token Token) error {
	if token.Shop == "" {
		return fmt.Errorf("shop is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Shop] = token
	return nil
}

func (r *InMemoryRepo) Get(_ context.Context, shop string) (Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[shop]
	if !ok {
		return Token{}, errors.Wrapf(errors.ErrNotFound, "shop %s", shop)
	}
	return t, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, shop)
	return nil
}
