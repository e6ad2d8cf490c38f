package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/sonar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the template when missing and
// initializes the token database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config file", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := config.ApplyEnv(); err != nil {
			return err
		}
		r.config = config
		r.writeLine(r.palette.OK("Created %s", configPath))
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenClientDatabase(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	r.writeLine(r.palette.OK("Token database ready at %s", r.config.Database.Path))

	if err := r.config.Validate(); err != nil {
		r.writeLine(r.palette.Warn("Config is incomplete: %v", err))
		r.writeLine(r.palette.Help("Fill in %s (or set SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET) before running 'sonar serve'", configPath))
	}
	return nil
}
