package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/desertthunder/sonar/internal/auth"
	"github.com/desertthunder/sonar/internal/client"
	"github.com/desertthunder/sonar/internal/server"
	"github.com/desertthunder/sonar/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 5 * time.Minute

// Login drives the browser through the gateway's authorization flow.
//
// In remote topology the gateway hands tokens to the frontend URL in the
// redirect query, so the CLI stands in for the frontend: it listens on the
// frontend address, opens the login URL and stores whatever lands on /app.
// Local topology delivers HttpOnly cookies to the browser, which the CLI
// cannot read.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	topology, err := auth.ResolveTopology(r.config.Server.Topology, r.config.Server.FrontendURL)
	if err != nil {
		return err
	}
	if topology != auth.Remote {
		return fmt.Errorf("%w: CLI login needs remote topology (tokens in the redirect); set server.topology = \"remote\" and point frontend_url at a free local port",
			shared.ErrInvalidConfig)
	}

	ln, err := listenFrontend(r.config.Server.FrontendURL)
	if err != nil {
		return err
	}

	c, db, err := r.openClient()
	if err != nil {
		ln.Close()
		return err
	}
	defer db.Close()

	capture := client.NewCallbackCapture(c.Tokens())
	router := server.NewBasicRouter()
	router.Handler(capture)

	serveCtx, stop := context.WithCancel(ctx)
	defer stop()
	srv := server.New(router, server.Options{ShutdownTimeout: 2 * time.Second}, r.logger)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(serveCtx, ln) }()

	loginURL := c.LoginURL()
	if cmd.Bool("no-browser") {
		r.writeLine(r.palette.Title("Open this URL to log in:"))
		r.writeLine(loginURL)
	} else {
		r.logger.Info("opening browser for Spotify authorization", "url", loginURL)
		if err := r.openBrowser(loginURL); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
			r.writeLine(r.palette.Warn("Open this URL manually: %s", loginURL))
		}
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}

	var result client.CaptureResult
	select {
	case result = <-capture.Result():
	case err := <-serveErr:
		return fmt.Errorf("callback listener stopped: %w", err)
	case <-time.After(timeout):
		return fmt.Errorf("%w: timed out waiting for browser login", shared.ErrAuthFailed)
	case <-ctx.Done():
		return ctx.Err()
	}

	stop()
	<-serveErr

	if err := result.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("authentication successful", "expires_in", result.ExpiresIn)
	return r.writeLine(r.palette.OK("Logged in; token expires in %s", time.Duration(result.ExpiresIn)*time.Second))
}

// listenFrontend binds the host:port of the frontend URL.
func listenFrontend(frontendURL string) (net.Listener, error) {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: frontend_url %q is not a URL", shared.ErrInvalidConfig, frontendURL)
	}
	if u.Scheme != "http" {
		return nil, fmt.Errorf("%w: CLI login can only listen on an http frontend_url, got %q", shared.ErrInvalidConfig, u.Scheme)
	}

	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "80")
	}
	ln, err := net.Listen("tcp", host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", host, err)
	}
	return ln, nil
}

// Logout clears the server session and the stored tokens.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	c, db, err := r.openClient()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := c.Logout(ctx); err != nil {
		r.logger.Warn("server logout failed; local tokens cleared", "error", err)
		return r.writeLine(r.palette.Warn("Local tokens cleared; the server could not be reached"))
	}
	return r.writeLine(r.palette.OK("Logged out"))
}

type statusReport struct {
	Server        string     `json:"server"`
	Authenticated bool       `json:"authenticated"`
	HasToken      bool       `json:"has_token"`
	HasRefresh    bool       `json:"has_refresh_token"`
	Expired       bool       `json:"expired"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// Status reports server health and the local token state.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	c, db, err := r.openClient()
	if err != nil {
		return err
	}
	defer db.Close()

	report := statusReport{Server: "ok"}

	var health struct {
		Status string `json:"status"`
	}
	if err := c.FetchInto(ctx, "/api/health", nil, &health); err != nil {
		report.Server = "unreachable"
		r.logger.Debug("health check failed", "error", err)
	} else if health.Status != "" {
		report.Server = health.Status
	}

	tokens := c.Tokens()
	_, report.HasToken = tokens.AccessToken()
	_, report.HasRefresh = tokens.RefreshToken()
	report.Expired = tokens.IsExpired()
	if at, ok := tokens.ExpiresAt(); ok {
		report.ExpiresAt = &at
	}

	if report.Server != "unreachable" && report.HasToken {
		var me struct {
			ID string `json:"id"`
		}
		err := c.FetchInto(ctx, "/api/me", nil, &me)
		report.Authenticated = err == nil

		var apiErr *client.Error
		if errors.As(err, &apiErr) {
			r.logger.Debug("profile check failed", "status", apiErr.Status, "error", apiErr.Message)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	p := r.palette
	r.writeLine(p.Title("sonar status"))
	if report.Server == "unreachable" {
		r.writeLine(p.Err("Server: unreachable at %s", r.config.Client.APIURL))
	} else {
		r.writeLine(p.OK("Server: %s", report.Server))
	}

	switch {
	case !report.HasToken:
		r.writeLine(p.Err("Not logged in"))
		r.writeLine(p.Help("Run 'sonar login'"))
	case report.Authenticated:
		r.writeLine(p.OK("Authenticated"))
	default:
		r.writeLine(p.Warn("Token stored but not accepted"))
	}
	if report.ExpiresAt != nil {
		r.writeLine(p.Help("Token expires %s", report.ExpiresAt.Local().Format(time.RFC1123)))
	}
	return nil
}

// Token prints the stored access token, refreshing it first on request.
func (r *Runner) Token(ctx context.Context, cmd *cli.Command) error {
	c, db, err := r.openClient()
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("refresh") {
		if err := c.Refresh(ctx); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
	}

	token, ok := c.Tokens().AccessToken()
	if !ok {
		return fmt.Errorf("%w: run 'sonar login' first", shared.ErrNotAuthenticated)
	}
	return r.writePlain("%s\n", token)
}
