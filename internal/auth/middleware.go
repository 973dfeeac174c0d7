package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/shelfmark/internal/errors"
)

// identityKey is the gin context key for the authenticated identity.
// Unexported so handlers go through CurrentIdentity instead of stringly
// typed context lookups.
const identityKey = "auth.identity"

// Identity is the authenticated caller resolved by the middleware.
type Identity struct {
	UserID uuid.UUID
}

// Middleware returns a gin middleware that requires a valid
// "Authorization: Bearer <token>" header. A missing or non-Bearer header is
// rejected as unauthenticated (401); a token that fails verification is
// rejected as forbidden (403). On success the identity is attached to the
// request context for downstream handlers.
func Middleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperrors.Unauthorized("Authorization header required."))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, apperrors.Unauthorized("Authorization header must use the Bearer scheme."))
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				abort(c, apperrors.TokenExpired())
				return
			}
			abort(c, apperrors.InvalidToken())
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			abort(c, apperrors.InvalidToken())
			return
		}

		c.Set(identityKey, Identity{UserID: userID})
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Middleware. The second
// return value is false when the route was not protected.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
