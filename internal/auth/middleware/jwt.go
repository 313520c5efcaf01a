package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/relocity/relocation-backend/internal/auth"
	apperrors "github.com/relocity/relocation-backend/internal/pkg/errors"
	"github.com/relocity/relocation-backend/internal/pkg/logger"
	"github.com/relocity/relocation-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// RequireSuperuser verifies the bearer token and rejects callers without
// superuser privilege. The relocation API is admin-only.
func RequireSuperuser(manager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := manager.VerifyAccessToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()),
			)
			response.ErrorWithCode(c, apperrors.ErrAuthInvalidToken)
			c.Abort()
			return
		}

		if !claims.Superuser {
			response.ErrorWithCode(c, apperrors.ErrAuthNotSuperuser)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}
