// Package auth issues and verifies opaque bearer tokens. A plaintext
// token has the form "<id>|<secret>"; only the SHA-256 of the secret is
// persisted, so a database leak does not leak usable credentials.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"incognitor/internal/models"
	"incognitor/internal/repository"
)

const secretBytes = 32

// Issue creates a token row for the user and returns the plaintext form.
// The plaintext is shown to the caller exactly once.
func Issue(ctx context.Context, tokens repository.TokenRepository, userID uint, name string) (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", models.NewInternalError(err)
	}
	secret := hex.EncodeToString(buf)

	token := &models.AuthToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hashSecret(secret),
	}
	if err := tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(token.ID), 10) + "|" + secret, nil
}

// Verify resolves a plaintext bearer token to its row, or nil when the
// token is malformed, unknown, or revoked.
func Verify(ctx context.Context, tokens repository.TokenRepository, plain string) (*models.AuthToken, error) {
	idPart, secret, ok := strings.Cut(plain, "|")
	if !ok {
		return nil, nil
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return nil, nil
	}

	token, err := tokens.FindByID(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	if subtle.ConstantTimeCompare([]byte(token.TokenHash), []byte(hashSecret(secret))) != 1 {
		return nil, nil
	}
	return token, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
