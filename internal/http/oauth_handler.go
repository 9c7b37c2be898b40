package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clawdx/internal/service"
)

// Cookies de corta vida que transportan el estado del flujo OAuth
// entre el redirect y el callback. Nada se persiste en el servidor.
const (
	oauthStateCookie    = "oauth_state"
	oauthVerifierCookie = "oauth_code_verifier"
	ownerSessionCookie  = "owner_session"

	oauthCookieMaxAge = 600 // 10 minutos
)

// OAuthHandler inicia y completa el flujo de autorización con X.
type OAuthHandler struct {
	logger      *zap.Logger
	oauthSvc    *service.OAuthService
	sessionSvc  *service.SessionService
	siteBaseURL string
}

func NewOAuthHandler(logger *zap.Logger, oauthSvc *service.OAuthService, sessionSvc *service.SessionService, siteBaseURL string) *OAuthHandler {
	return &OAuthHandler{
		logger:      logger,
		oauthSvc:    oauthSvc,
		sessionSvc:  sessionSvc,
		siteBaseURL: siteBaseURL,
	}
}

// Initiate maneja GET /api/auth/x: genera state y verifier frescos,
// los deja en cookies y redirige al proveedor.
func (h *OAuthHandler) Initiate(c *gin.Context) {
	auth, err := h.oauthSvc.BeginAuthorization()
	if err != nil {
		if errors.Is(err, service.ErrMisconfigured) {
			h.logger.Error("oauth client not configured")
		} else {
			h.logger.Error("oauth initiation failed", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization unavailable"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, auth.State, oauthCookieMaxAge, "/", "", true, true)
	c.SetCookie(oauthVerifierCookie, auth.CodeVerifier, oauthCookieMaxAge, "/", "", true, true)

	c.Redirect(http.StatusFound, auth.URL)
}

// Callback maneja GET /api/auth/x/callback: valida state contra la
// cookie, canjea el code con el verifier y deja una sesión de dueño.
func (h *OAuthHandler) Callback(c *gin.Context) {
	if provErr := c.Query("error"); provErr != "" {
		h.redirectWithError(c, provErr)
		return
	}

	state := c.Query("state")
	storedState, err := c.Cookie(oauthStateCookie)
	if state == "" || err != nil || state != storedState {
		h.redirectWithError(c, "invalid_state")
		return
	}

	code := c.Query("code")
	verifier, err := c.Cookie(oauthVerifierCookie)
	if code == "" || err != nil || verifier == "" {
		h.redirectWithError(c, "missing_code")
		return
	}

	identity, err := h.oauthSvc.Exchange(c.Request.Context(), code, verifier)
	if err != nil {
		h.logger.Error("oauth exchange failed", zap.Error(err))
		h.redirectWithError(c, "token_failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	// Las cookies del flujo ya cumplieron su función.
	c.SetCookie(oauthStateCookie, "", -1, "/", "", true, true)
	c.SetCookie(oauthVerifierCookie, "", -1, "/", "", true, true)

	session, err := h.sessionSvc.IssueOwnerSession(identity)
	if err != nil {
		h.logger.Error("owner session issue failed", zap.Error(err))
		h.redirectWithError(c, "session_failed")
		return
	}
	c.SetCookie(ownerSessionCookie, session, int(h.sessionSvc.TTL().Seconds()), "/", "", true, true)

	dest := h.siteBaseURL + "/create?x_verified=true&x_username=" + url.QueryEscape(identity.Username)
	c.Redirect(http.StatusFound, dest)
}

func (h *OAuthHandler) redirectWithError(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.siteBaseURL+"/create?error="+url.QueryEscape(reason))
}
