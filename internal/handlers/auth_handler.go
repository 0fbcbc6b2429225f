package handlers

import (
	"net/http"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/config"
	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories/casdoor"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

// sessionMaxAge matches the lifetime Casdoor issues access tokens with
const sessionMaxAge = 7 * 24 * 60 * 60

// IdentityClient is the slice of the Casdoor SDK the login flow needs
type IdentityClient interface {
	TokenVerifier
	SigninURL(redirectURI string) string
	ExchangeCode(code, state string) (string, error)
}

type casdoorIdentityClient struct {
	client *casdoorsdk.Client
}

func (c *casdoorIdentityClient) ParseToken(token string) (*casdoorsdk.Claims, error) {
	return c.client.ParseJwtToken(token)
}

func (c *casdoorIdentityClient) SigninURL(redirectURI string) string {
	return c.client.GetSigninUrl(redirectURI)
}

func (c *casdoorIdentityClient) ExchangeCode(code, state string) (string, error) {
	token, err := c.client.GetOAuthToken(code, state)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// NewIdentityClient builds an IdentityClient backed by the Casdoor SDK
func NewIdentityClient(cfg casdoor.CasdoorConfig) IdentityClient {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.OrganizationName,
		cfg.ApplicationName,
	)
	return &casdoorIdentityClient{client: client}
}

// AuthHandler runs the OAuth login flow against the identity provider and
// manages the session cookie the page gates read.
type AuthHandler struct {
	BaseHandler
	identity     IdentityClient
	provisioning services.ProvisioningService
	session      config.SessionConfig
	baseURL      string
}

func NewAuthHandler(identity IdentityClient, provisioning services.ProvisioningService, session config.SessionConfig, baseURL string, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  NewBaseHandler(logger),
		identity:     identity,
		provisioning: provisioning,
		session:      session,
		baseURL:      baseURL,
	}
}

func (h *AuthHandler) redirectURI() string {
	return h.baseURL + "/auth/callback"
}

// LoginPage serves the student login page payload
// GET /login
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":       "login",
		"signin_url": h.identity.SigninURL(h.redirectURI()),
		"error":      c.Query("error"),
	})
}

// AdminLoginPage serves the admin login page payload
// GET /admin/login
func (h *AuthHandler) AdminLoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":       "admin_login",
		"signin_url": h.identity.SigninURL(h.redirectURI()),
		"error":      c.Query("error"),
	})
}

// Callback completes the OAuth code exchange, makes sure a user row backs
// the account and opens the session
// GET /auth/callback
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/login?error=unauthorized")
		return
	}

	accessToken, err := h.identity.ExchangeCode(code, c.Query("state"))
	if err != nil {
		h.LogError(c, err, "OAuth code exchange failed")
		c.Redirect(http.StatusFound, "/login?error=unauthorized")
		return
	}

	claims, err := h.identity.ParseToken(accessToken)
	if err != nil || claims.Id == "" {
		h.LogError(c, err, "Issued token failed verification")
		c.Redirect(http.StatusFound, "/login?error=unauthorized")
		return
	}

	user, err := h.provisioning.EnsureUser(c.Request.Context(), claims.Id, claims.User.Email)
	if err != nil {
		h.LogError(c, err, "User provisioning on login failed")
		c.Redirect(http.StatusFound, "/login?error=database_error")
		return
	}

	h.setSessionCookie(c, accessToken)

	if user.Role == models.RoleAdmin || user.Role == models.RoleTeacher {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout clears the session cookie
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(h.session.CookieName, token, sessionMaxAge, "/", "", h.session.Secure, true)
}
