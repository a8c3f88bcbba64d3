package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-car-rental/token"
	"github.com/rs/zerolog/log"
)

const ctxUserID = "user_id"

var (
	errNoCredentials = gin.H{"detail": "Authentication credentials were not provided."}
	errBadToken      = gin.H{"detail": "Given token not valid for any token type", "code": "token_not_valid"}
	errForbidden     = gin.H{"detail": "You do not have permission to perform this action."}
	errNotFound      = gin.H{"detail": "Not found."}
)

// logRoutes logs each request at debug level once it has been answered
func logRoutes(c *gin.Context) {
	c.Next()
	log.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Str("request_id", c.GetHeader("X-Request-ID")).
		Msg("fakeapi")
}

func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errNoCredentials)
		return
	}

	claims, err := s.issuer.Verify(raw, token.TypeAccess)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errBadToken)
		return
	}

	s.mu.Lock()
	_, live := s.liveAccess[claims.JTI]
	_, exists := s.accounts[claims.UserID]
	s.mu.Unlock()
	if !live || !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errBadToken)
		return
	}

	c.Set(ctxUserID, claims.UserID)
	c.Next()
}

func (s *Server) requireFleet(c *gin.Context) {
	s.mu.Lock()
	acc := s.accounts[c.GetInt(ctxUserID)]
	s.mu.Unlock()
	if acc == nil || !acc.profile.IsFleetManager() {
		c.AbortWithStatusJSON(http.StatusForbidden, errForbidden)
		return
	}
	c.Next()
}

// fieldError answers 400 with a single field error
func fieldError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{field: []string{msg}})
}
