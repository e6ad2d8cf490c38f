package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sonar/internal/api"
	"github.com/desertthunder/sonar/internal/auth"
	"github.com/desertthunder/sonar/internal/server"
	"github.com/desertthunder/sonar/internal/services"
	"github.com/desertthunder/sonar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the gateway and proxy until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if err := config.Validate(); err != nil {
		return err
	}

	topology, err := auth.ResolveTopology(config.Server.Topology, config.Server.FrontendURL)
	if err != nil {
		return err
	}

	states, closeStates, err := r.stateStore(ctx)
	if err != nil {
		return err
	}
	defer closeStates()

	upstream := services.NewHTTPClient(config.Server.UpstreamTimeout)

	gateway, err := auth.NewGateway(auth.Config{
		ClientID:     config.Credentials.Spotify.ClientID,
		ClientSecret: config.Credentials.Spotify.ClientSecret,
		RedirectURL:  config.Credentials.Spotify.RedirectURI,
		FrontendURL:  config.Server.FrontendURL,
		Topology:     topology,
		HTTPClient:   upstream,
	}, states, shared.WithLogger(r.logger, "component", "auth"))
	if err != nil {
		return fmt.Errorf("failed to create auth gateway: %w", err)
	}

	music := services.NewMusicService(
		config.Music.LyricsURL,
		config.Music.LastFMURL,
		config.Credentials.LastFM.APIKey,
		upstream,
	)
	if config.Credentials.LastFM.APIKey == "" {
		r.logger.Warn("no Last.fm API key configured; similar-track and artist lookups are disabled")
	}

	handler := api.NewHandler(
		api.SpotifyFromService(services.NewSpotifyService("", upstream)),
		music,
		shared.WithLogger(r.logger, "component", "api"),
	)

	router := api.NewRouter(api.RouterOptions{
		Gateway:     gateway,
		Handler:     handler,
		FrontendURL: config.Server.FrontendURL,
		AuthLimit:   server.AuthLimit,
		APILimit:    server.APILimit,
		Logger:      r.logger,
	})

	addr := cmd.String("addr")
	if addr == "" {
		addr = config.Server.Addr()
	}

	r.logger.Info("starting sonar",
		"addr", addr,
		"topology", topology,
		"frontend_url", config.Server.FrontendURL,
	)

	srv := server.New(router, server.Options{
		Addr:         addr,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}, r.logger)
	return srv.Run(ctx)
}

// stateStore picks Redis when a URL is configured and memory otherwise.
func (r *Runner) stateStore(ctx context.Context) (auth.StateStore, func(), error) {
	if r.config.Redis.URL == "" {
		r.logger.Info("keeping OAuth state in memory")
		return auth.NewMemoryStateStore(nil), func() {}, nil
	}

	client, err := auth.NewRedisClient(ctx, r.config.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	r.logger.Info("keeping OAuth state in redis", "prefix", r.config.Redis.KeyPrefix)
	return auth.NewRedisStateStore(client, r.config.Redis.KeyPrefix), func() { client.Close() }, nil
}
