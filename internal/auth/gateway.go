package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sonar/internal/models"
	"github.com/desertthunder/sonar/internal/server"
	"github.com/desertthunder/sonar/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes requested at login.
var Scopes = []string{
	"user-read-email",
	"user-read-private",
	"user-top-read",
	"user-read-recently-played",
	"streaming",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
}

// Redirect error codes appended to the frontend URL.
const (
	ErrorMissingCode  = "missing_code"
	ErrorInvalidState = "invalid_state"
	ErrorAuthFailed   = "auth_failed"
)

// Config configures a [Gateway].
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
	Topology     Topology

	// AuthURL and TokenURL default to Spotify's accounts service.
	AuthURL  string
	TokenURL string

	// HTTPClient is used for code and refresh exchanges.
	HTTPClient *http.Client
}

// Gateway implements the /api/auth endpoints. Token exchange is delegated to
// [oauth2.Config]; the gateway owns state verification and token delivery.
type Gateway struct {
	oauth       *oauth2.Config
	states      StateStore
	frontendURL string
	topology    Topology
	httpClient  *http.Client
	logger      *log.Logger
}

// NewGateway creates a [Gateway]. states may be nil for an in-memory store.
func NewGateway(cfg Config, states StateStore, logger *log.Logger) (*Gateway, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, shared.ErrMissingCredentials
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: redirect url is required", shared.ErrInvalidConfig)
	}
	if cfg.FrontendURL == "" {
		return nil, fmt.Errorf("%w: frontend url is required", shared.ErrInvalidConfig)
	}
	if cfg.Topology == "" {
		cfg.Topology = InferTopology(cfg.FrontendURL)
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = spotifyAuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = spotifyTokenURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if states == nil {
		states = NewMemoryStateStore(nil)
	}

	return &Gateway{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		states:      states,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		topology:    cfg.Topology,
		httpClient:  cfg.HTTPClient,
		logger:      logger,
	}, nil
}

// Topology returns the delivery mode in effect.
func (g *Gateway) Topology() Topology { return g.topology }

// Register mounts the auth endpoints on r. guard protects /api/auth/token.
func (g *Gateway) Register(r server.Router, guard server.Middleware) {
	r.Handle(http.MethodGet, "/api/auth/login", http.HandlerFunc(g.Login))
	r.Handle(http.MethodGet, "/api/auth/callback", http.HandlerFunc(g.Callback))
	r.Handle(http.MethodPost, "/api/auth/logout", http.HandlerFunc(g.Logout))
	r.Handle(http.MethodGet, "/api/auth/status", http.HandlerFunc(g.Status))
	r.Handle(http.MethodPost, "/api/auth/refresh", http.HandlerFunc(g.Refresh))
	r.Handle(http.MethodGet, "/api/auth/token", guard(http.HandlerFunc(g.Token)))
}

func (g *Gateway) exchangeContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func (g *Gateway) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	callbacksTotal.WithLabelValues(code).Inc()
	server.Redirect(w, r, g.frontendURL+"?error="+url.QueryEscape(code))
}

// Login redirects to the provider's consent page with a fresh state nonce.
func (g *Gateway) Login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateToken(32)
	if err == nil {
		err = g.states.Save(r.Context(), state, StateTTL)
	}
	if err != nil {
		g.logger.Error("failed to start login", "error", err)
		server.Redirect(w, r, g.frontendURL+"?error="+ErrorAuthFailed)
		return
	}

	loginsStarted.Inc()
	server.Redirect(w, r, g.oauth.AuthCodeURL(state))
}

// Callback verifies state, exchanges the code and delivers the token pair
// according to the topology.
func (g *Gateway) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	code := q.Get("code")
	if code == "" {
		if reason := q.Get("error"); reason != "" {
			g.logger.Warn("authorization denied", "reason", reason)
		}
		g.redirectError(w, r, ErrorMissingCode)
		return
	}

	if err := g.consumeState(r.Context(), q.Get("state")); err != nil {
		if errors.Is(err, shared.ErrInvalidState) {
			g.logger.Warn("rejected callback", "error", err)
			g.redirectError(w, r, ErrorInvalidState)
			return
		}
		g.logger.Error("state lookup failed", "error", err)
		g.redirectError(w, r, ErrorAuthFailed)
		return
	}

	token, err := g.oauth.Exchange(g.exchangeContext(r.Context()), code)
	if err != nil {
		g.logger.Error("token exchange failed", "error", err)
		g.redirectError(w, r, ErrorAuthFailed)
		return
	}

	expiresIn := expiresInSeconds(token)
	callbacksTotal.WithLabelValues("success").Inc()

	if g.topology == Local {
		setTokenCookies(w, token.AccessToken, token.RefreshToken, expiresIn)
		server.Redirect(w, r, g.frontendURL+"/app")
		return
	}

	params := url.Values{}
	params.Set("access_token", token.AccessToken)
	params.Set("refresh_token", token.RefreshToken)
	params.Set("expires_in", strconv.Itoa(expiresIn))
	server.Redirect(w, r, g.frontendURL+"/app?"+params.Encode())
}

func (g *Gateway) consumeState(ctx context.Context, state string) error {
	if state == "" {
		return fmt.Errorf("%w: missing", shared.ErrInvalidState)
	}
	ok, err := g.states.Consume(ctx, state)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown or expired", shared.ErrInvalidState)
	}
	return nil
}

// Logout clears both cookies. The provider is not told.
func (g *Gateway) Logout(w http.ResponseWriter, r *http.Request) {
	clearTokenCookies(w)
	server.WriteJSON(w, http.StatusOK, models.LogoutResponse{Success: true, Message: "Logged out successfully"})
}

// Status reports access-cookie presence only.
func (g *Gateway) Status(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(AccessCookie)
	server.WriteJSON(w, http.StatusOK, models.AuthStatus{Authenticated: err == nil && c.Value != ""})
}

// Refresh trades a refresh token from the body or cookie for a new pair.
func (g *Gateway) Refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := refreshTokenFrom(r)
	if err != nil {
		server.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if refresh == "" {
		refreshesTotal.WithLabelValues("missing").Inc()
		server.WriteError(w, http.StatusUnauthorized, "No refresh token provided")
		return
	}

	src := g.oauth.TokenSource(g.exchangeContext(r.Context()), &oauth2.Token{RefreshToken: refresh})
	token, err := src.Token()
	if err != nil {
		refreshesTotal.WithLabelValues("failed").Inc()
		g.logger.Error("token refresh failed", "error", fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err))
		server.WriteError(w, http.StatusUnauthorized, "Token refresh failed")
		return
	}
	refreshesTotal.WithLabelValues("success").Inc()

	pair := models.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresInSeconds(token),
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refresh
	}
	if g.topology == Local {
		setTokenCookies(w, pair.AccessToken, pair.RefreshToken, pair.ExpiresIn)
	}
	server.WriteJSON(w, http.StatusOK, pair)
}

// Token returns the bearer token the guard resolved.
func (g *Gateway) Token(w http.ResponseWriter, r *http.Request) {
	token, _ := TokenFromContext(r.Context())
	server.WriteJSON(w, http.StatusOK, models.TokenResponse{Token: token})
}

func refreshTokenFrom(r *http.Request) (string, error) {
	var body models.RefreshRequest
	if r.Body != nil {
		data, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err != nil {
			return "", err
		}
		if len(strings.TrimSpace(string(data))) > 0 {
			if err := json.Unmarshal(data, &body); err != nil {
				return "", err
			}
		}
	}
	if body.RefreshToken != "" {
		return body.RefreshToken, nil
	}
	if c, err := r.Cookie(RefreshCookie); err == nil {
		return c.Value, nil
	}
	return "", nil
}

// expiresInSeconds prefers the wire expires_in and falls back to Expiry.
func expiresInSeconds(t *oauth2.Token) int {
	if t.ExpiresIn > 0 {
		return int(t.ExpiresIn)
	}
	if t.Expiry.IsZero() {
		return 0
	}
	return max(int(time.Until(t.Expiry).Round(time.Second).Seconds()), 0)
}
