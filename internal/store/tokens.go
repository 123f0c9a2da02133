package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
)

// newSecret mints a 64 character hex secret. Only its digest is ever stored.
func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// IssueToken creates a token for a user and returns the plaintext secret.
// This is the only moment the secret exists outside the caller's hands.
func (s *gormStore) IssueToken(ctx context.Context, now time.Time, userUUID string, days int) (*IssuedToken, error) {
	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	var issued *IssuedToken
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := userByUUID(tx, userUUID)
		if err != nil {
			return err
		}
		token := model.ApiToken{
			UserID:    u.ID,
			Prefix:    secret[:8],
			TokenHash: hashSecret(secret),
			ExpiresAt: now.Add(time.Duration(days) * 24 * time.Hour),
			CreatedAt: now,
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}
		issued = &IssuedToken{
			UUID:      token.UUID,
			Token:     secret,
			Prefix:    token.Prefix,
			ExpiresAt: token.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// AuthenticateToken resolves a presented secret to its user, refusing expired
// tokens. Last use is recorded best-effort.
func (s *gormStore) AuthenticateToken(ctx context.Context, now time.Time, secret string) (*model.User, error) {
	var token model.ApiToken
	err := s.db.WithContext(ctx).Where("token_hash = ?", hashSecret(secret)).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}
	if token.Expired(now) {
		return nil, ErrTokenExpired
	}

	var u model.User
	err = s.db.WithContext(ctx).Preload("Building").Preload("Course").First(&u, token.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}

	s.db.WithContext(ctx).Model(&model.ApiToken{}).
		Where("id = ?", token.ID).
		UpdateColumn("last_used_at", now)
	return &u, nil
}

func (s *gormStore) ListTokens(ctx context.Context, userUUID string) ([]TokenView, error) {
	u, err := userByUUID(s.db.WithContext(ctx), userUUID)
	if err != nil {
		return nil, err
	}
	var tokens []model.ApiToken
	err = s.db.WithContext(ctx).Where("user_id = ?", u.ID).
		Order("created_at desc").Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	out := make([]TokenView, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, TokenView{
			UUID:       t.UUID,
			Prefix:     t.Prefix,
			ExpiresAt:  t.ExpiresAt,
			LastUsedAt: t.LastUsedAt,
			CreatedAt:  t.CreatedAt,
		})
	}
	return out, nil
}

func (s *gormStore) RevokeToken(ctx context.Context, tokenUUID string) error {
	res := s.db.WithContext(ctx).Where("uuid = ?", tokenUUID).Delete(&model.ApiToken{})
	if res.Error != nil {
		return fmt.Errorf("failed to revoke token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}
