package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

// AccessGate protects the browser-facing page groups. Unlike the API
// middleware it never answers with JSON: failures redirect to the matching
// login page so the user can recover in place. Lookup errors are always
// converted to a redirect, never surfaced as a 500.
type AccessGate struct {
	verifier   TokenVerifier
	userRepo   repositories.UserRepository
	cookieName string
	logger     utils.Logger
}

func NewAccessGate(verifier TokenVerifier, userRepo repositories.UserRepository, cookieName string, logger utils.Logger) *AccessGate {
	return &AccessGate{
		verifier:   verifier,
		userRepo:   userRepo,
		cookieName: cookieName,
		logger:     logger,
	}
}

// AdminGate guards /admin/* pages. Only admins get through; a visitor with a
// valid session but no admin role lands back on the login page with an
// unauthorized marker.
func (g *AccessGate) AdminGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := g.sessionUserID(c, "/admin/login")
		if !ok {
			return
		}

		user, err := g.userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// No row means no role, which means no admin console
				g.redirect(c, "/admin/login?error=unauthorized")
			} else {
				g.logger.Error("Admin gate user lookup failed", "error", err, "path", c.Request.URL.Path)
				g.redirect(c, "/admin/login?error=database_error")
			}
			return
		}

		if user.Role != models.RoleAdmin {
			g.redirect(c, "/admin/login?error=unauthorized")
			return
		}

		g.setUser(c, user)
		c.Next()
	}
}

// DashboardGate guards /dashboard/* pages. Any registered user gets through;
// a session without a matching user row is sent back to register.
func (g *AccessGate) DashboardGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := g.sessionUserID(c, "/login")
		if !ok {
			return
		}

		user, err := g.userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				g.redirect(c, "/login?error=user_not_registered")
			} else {
				g.logger.Error("Dashboard gate user lookup failed", "error", err, "path", c.Request.URL.Path)
				g.redirect(c, "/login?error=database_error")
			}
			return
		}

		g.setUser(c, user)
		c.Next()
	}
}

// sessionUserID resolves the session cookie to a verified account ID. On
// failure it redirects to loginPath with no query and reports false.
func (g *AccessGate) sessionUserID(c *gin.Context, loginPath string) (string, bool) {
	token, err := c.Cookie(g.cookieName)
	if err != nil || token == "" {
		g.redirect(c, loginPath)
		return "", false
	}

	claims, err := g.verifier.ParseToken(token)
	if err != nil || claims.Id == "" {
		// Expired or tampered session, treat like a missing one
		g.redirect(c, loginPath)
		return "", false
	}

	return claims.Id, true
}

func (g *AccessGate) setUser(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("user_role", user.Role)
	c.Set("user_email", user.Email)
}

func (g *AccessGate) redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
