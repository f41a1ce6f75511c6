package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/services"
)

// ServiceTokenMiddleware guards the report view route the render worker
// navigates to. The credential arrives as a query parameter, not a cookie:
// the headless renderer is stateless and authenticates per URL. The token is
// scoped to exactly one assignment, so a leaked URL exposes one report for
// the token's lifetime, nothing more.
type ServiceTokenMiddleware struct {
	log    *logger.Logger
	tokens services.ViewTokenService
}

func NewServiceTokenMiddleware(log *logger.Logger, tokens services.ViewTokenService) *ServiceTokenMiddleware {
	return &ServiceTokenMiddleware{
		log:    log.With("middleware", "ServiceTokenMiddleware"),
		tokens: tokens,
	}
}

func (m *ServiceTokenMiddleware) RequireServiceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("service_role_token")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing service role token"})
			return
		}
		tokenAssignmentID, err := m.tokens.Validate(tokenString)
		if err != nil {
			m.log.Warn("Service token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service role token"})
			return
		}
		pathID, err := uuid.Parse(c.Param("assignmentID"))
		if err != nil || pathID != tokenAssignmentID {
			m.log.Warn("Service token assignment mismatch", "path_assignment_id", c.Param("assignmentID"))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token not valid for this report"})
			return
		}
		c.Next()
	}
}
