package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Endpoints OAuth 2.0 de X (Twitter).
const (
	xAuthorizeURL = "https://twitter.com/i/oauth2/authorize"
	xTokenURL     = "https://api.twitter.com/2/oauth2/token"
	xUserURL      = "https://api.twitter.com/2/users/me"
)

const oauthScopes = "tweet.read users.read offline.access"

// Authorization es el material de un flujo de autorización recién iniciado.
// State y CodeVerifier viajan en cookies de corta vida del cliente; no se
// persiste nada del lado del servidor.
type Authorization struct {
	URL          string
	State        string
	CodeVerifier string
}

// OwnerIdentity es la identidad externa verificada del dueño de una cuenta.
type OwnerIdentity struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Verified  bool   `json:"verified"`
}

// OAuthService inicia y completa el flujo authorization-code con PKCE
// contra el proveedor de identidad externo.
type OAuthService struct {
	clientID     string
	clientSecret string
	callbackURL  string
	authorizeURL string
	tokenURL     string
	userURL      string
	client       *http.Client
}

func NewOAuthService(clientID, clientSecret, callbackURL string) *OAuthService {
	return &OAuthService{
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		authorizeURL: xAuthorizeURL,
		tokenURL:     xTokenURL,
		userURL:      xUserURL,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

// BeginAuthorization genera state y code_verifier frescos y arma la URL
// de autorización del proveedor con el challenge S256 derivado.
func (s *OAuthService) BeginAuthorization() (Authorization, error) {
	if s.clientID == "" || s.callbackURL == "" {
		return Authorization{}, ErrMisconfigured
	}

	stateBuf := make([]byte, 16)
	if _, err := rand.Read(stateBuf); err != nil {
		return Authorization{}, fmt.Errorf("generate state: %w", err)
	}
	state := hex.EncodeToString(stateBuf)

	verifierBuf := make([]byte, 32)
	if _, err := rand.Read(verifierBuf); err != nil {
		return Authorization{}, fmt.Errorf("generate code verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(verifierBuf)

	challenge := sha256.Sum256([]byte(verifier))

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.callbackURL)
	params.Set("scope", oauthScopes)
	params.Set("state", state)
	params.Set("code_challenge", base64.RawURLEncoding.EncodeToString(challenge[:]))
	params.Set("code_challenge_method", "S256")

	return Authorization{
		URL:          s.authorizeURL + "?" + params.Encode(),
		State:        state,
		CodeVerifier: verifier,
	}, nil
}

// Exchange canjea el authorization code por un access token usando el
// code_verifier guardado en el cliente, y trae el perfil del dueño.
func (s *OAuthService) Exchange(ctx context.Context, code, verifier string) (OwnerIdentity, error) {
	if s.clientID == "" || s.clientSecret == "" {
		return OwnerIdentity{}, ErrMisconfigured
	}
	if code == "" || verifier == "" {
		return OwnerIdentity{}, ErrInvalidInput
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", s.callbackURL)
	form.Set("code_verifier", verifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return OwnerIdentity{}, fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return OwnerIdentity{}, fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OwnerIdentity{}, fmt.Errorf("read token response: %w", err)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return OwnerIdentity{}, fmt.Errorf("unmarshal token response: %w", err)
	}
	if resp.StatusCode >= 400 || token.AccessToken == "" {
		return OwnerIdentity{}, fmt.Errorf("token exchange failed: status=%d", resp.StatusCode)
	}

	return s.fetchIdentity(ctx, token.AccessToken)
}

func (s *OAuthService) fetchIdentity(ctx context.Context, accessToken string) (OwnerIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.userURL+"?user.fields=profile_image_url,verified", nil)
	if err != nil {
		return OwnerIdentity{}, fmt.Errorf("create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return OwnerIdentity{}, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return OwnerIdentity{}, fmt.Errorf("read user response: %w", err)
	}

	var user struct {
		Data struct {
			ID              string `json:"id"`
			Username        string `json:"username"`
			Name            string `json:"name"`
			ProfileImageURL string `json:"profile_image_url"`
			Verified        bool   `json:"verified"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return OwnerIdentity{}, fmt.Errorf("unmarshal user response: %w", err)
	}
	if resp.StatusCode >= 400 || user.Data.ID == "" {
		return OwnerIdentity{}, fmt.Errorf("user fetch failed: status=%d", resp.StatusCode)
	}

	return OwnerIdentity{
		ID:        user.Data.ID,
		Username:  user.Data.Username,
		Name:      user.Data.Name,
		AvatarURL: user.Data.ProfileImageURL,
		Verified:  user.Data.Verified,
	}, nil
}
