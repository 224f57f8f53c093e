package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/metashield/jirasync/internal/shared/logger"
	"github.com/metashield/jirasync/internal/shared/utils"
)

// ServiceKeyMiddleware guards the sync trigger endpoints with a shared bearer key.
type ServiceKeyMiddleware struct {
	serviceKey string
	logger     logger.Interface
}

func NewServiceKeyMiddleware(serviceKey string, logger logger.Interface) *ServiceKeyMiddleware {
	return &ServiceKeyMiddleware{
		serviceKey: serviceKey,
		logger:     logger,
	}
}

// RequireServiceKey rejects requests without a matching bearer token.
func (m *ServiceKeyMiddleware) RequireServiceKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authorize(c) {
			return
		}
		c.Next()
	}
}

// RequireServiceKeyUnlessManual lets operator-triggered requests carrying
// ?manual=true through without a credential.
func (m *ServiceKeyMiddleware) RequireServiceKeyUnlessManual() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("manual") == "true" {
			m.logger.Infow("manual trigger accepted without service key",
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
			)
			c.Next()
			return
		}
		if !m.authorize(c) {
			return
		}
		c.Next()
	}
}

func (m *ServiceKeyMiddleware) authorize(c *gin.Context) bool {
	if m.serviceKey == "" {
		m.logger.Errorw("service key is not configured", "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Error: &utils.ErrorInfo{
				Type:    "configuration_error",
				Message: "service key is not configured",
			},
		})
		return false
	}

	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(m.serviceKey)) != 1 {
		m.logger.Warnw("rejected sync trigger",
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
		)
		c.AbortWithStatusJSON(http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Error: &utils.ErrorInfo{
				Type:    "unauthorized",
				Message: "Unauthorized",
			},
		})
		return false
	}

	return true
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
