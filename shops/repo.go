package shops

import (
	"context"
	"time"
)

// Token is a shop's installed app admin access token.
type Token struct {
	Shop        string    `json:"shop"`
	AccessToken string    `json:"accessToken"`
	Scope       string    `json:"scope,omitempty"`
	InstalledAt time.Time `json:"installedAt"`
}

// Repo persists admin tokens keyed by shop domain. Get returns errors.ErrNotFound for unknown shops.
type Repo interface {
	Upsert(ctx context.Context, token Token) error
	Get(ctx context.Context, shop string) (Token, error)
	Delete(ctx context.Context, shop string) error
}
