package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/sonar/internal/client"
	"github.com/desertthunder/sonar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Get calls an API path through the fetch wrapper and prints the JSON response.
func (r *Runner) Get(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	opts := &client.Options{Method: strings.ToUpper(cmd.String("method"))}
	if data := cmd.String("data"); data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
		}
		opts.Body = json.RawMessage(data)
		if opts.Method == http.MethodGet {
			opts.Method = http.MethodPost
		}
	}

	c, db, err := r.openClient()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Debug("api request", "method", opts.Method, "path", path)

	resp, err := c.Fetch(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeJSON(resp, cmd.Bool("pretty"))
}
