package shops

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/storefront-dashboard/internal/errors"
)

const tokensFileName = "shop_tokens.json"

// FileRepo keeps tokens in a JSON file inside the data folder. Writes go to a temp file
// that is renamed over the original, so a crash never leaves a truncated file.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

func NewFileRepo(folder string) (*FileRepo, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("[shops NewFileRepo] create %s: %w", folder, err)
	}
	return &FileRepo{path: filepath.Join(folder, tokensFileName)}, nil
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Upsert(_ context.Context, token Token) error {
	if token.Shop == "" {
		return fmt.Errorf("shop is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens, err := r.read()
	if err != nil {
		return err
	}
	tokens[token.Shop] = token
	return r.write(tokens)
}

func (r *FileRepo) Get(_ context.Context, shop string) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens, err := r.read()
	if err != nil {
		return Token{}, err
	}
	t, ok := tokens[shop]
	if !ok {
		return Token{}, errors.Wrapf(errors.ErrNotFound, "shop %s", shop)
	}
	return t, nil
}

func (r *FileRepo) Delete(_ context.Context, shop string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tokens, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[shop]; !ok {
		return nil
	}
	delete(tokens, shop)
	return r.write(tokens)
}

func (r *FileRepo) read() (map[string]Token, error) {
	tokens := make(map[string]Token)
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return tokens, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[shops FileRepo] read: %w", err)
	}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("[shops FileRepo] decode %s: %w", r.path, err)
	}
	return tokens, nil
}

func (r *FileRepo) write(tokens map[string]Token) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("[shops FileRepo] encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), tokensFileName+".*")
	if err != nil {
		return fmt.Errorf("[shops FileRepo] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[shops FileRepo] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[shops FileRepo] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[shops FileRepo] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("[shops FileRepo] rename: %w", err)
	}
	return nil
}
