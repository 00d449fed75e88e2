package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	dErrors "account-gateway/pkg/domain-errors"
)

// Claims are the token claims issued by the identity provider for mobile
// clients. The subject carries the uid.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HMAC-signed identity tokens with a shared key.
type JWTVerifier struct {
	signingKey []byte
	logger     *slog.Logger
}

func NewJWTVerifier(signingKey string, logger *slog.Logger) *JWTVerifier {
	return &JWTVerifier{signingKey: []byte(signingKey), logger: logger}
}

// Verify parses and validates the token, returning the caller's principal.
// On failure only the token's presence and length are logged, never its
// contents.
func (v *JWTVerifier) Verify(ctx context.Context, rawToken string) (Principal, error) {
	parsed, err := jwt.ParseWithClaims(rawToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	})
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "token expired"
		}
		v.logger.WarnContext(ctx, "token verification failed",
			"reason", reason,
			"token_length", len(rawToken),
		)
		return Principal{}, dErrors.New(dErrors.CodeForbidden, "Invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		v.logger.WarnContext(ctx, "token verification failed",
			"reason", "invalid claims",
			"token_length", len(rawToken),
		)
		return Principal{}, dErrors.New(dErrors.CodeForbidden, "Invalid or expired token")
	}

	principal := Principal{UID: claims.Subject, Email: claims.Email}
	v.logger.InfoContext(ctx, "token verified",
		"uid", principal.UID,
		"email", principal.Email,
	)
	return principal, nil
}
