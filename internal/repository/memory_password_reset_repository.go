package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// MemoryPasswordResetRepository is the in-memory counterpart of the reset
// token store.
type MemoryPasswordResetRepository struct {
	mu     sync.Mutex
	nextID int
	tokens map[string]PasswordResetToken
}

// NewMemoryPasswordResetRepository constructs an empty repository.
func NewMemoryPasswordResetRepository() *MemoryPasswordResetRepository {
	return &MemoryPasswordResetRepository{nextID: 1, tokens: make(map[string]PasswordResetToken)}
}

func (r *MemoryPasswordResetRepository) Create(_ context.Context, token *PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token.ID = strconv.Itoa(r.nextID)
	r.nextID++
	token.CreatedAt = time.Now()
	r.tokens[token.ID] = *token
	return nil
}

func (r *MemoryPasswordResetRepository) GetByToken(_ context.Context, tokenStr string) (*PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, token := range r.tokens {
		if token.Token == tokenStr {
			copied := token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *MemoryPasswordResetRepository) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	token.UsedAt = &now
	r.tokens[id] = token
	return nil
}
