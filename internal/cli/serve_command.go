package cli

import (
	"context"
	"fmt"

	"loipen-tracker/internal/server"
)

// ServeCommand runs the JSON API until the context is cancelled
type ServeCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute starts the server with the configured listener settings
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	cfg := c.app.config.Server
	srv, err := server.New(c.app.businessAPI, server.Config{
		Addr:              cfg.Addr,
		JWTSecret:         cfg.JWTSecret,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.ShutdownTimeout,
	}, c.app.log)
	if err != nil {
		return c.errorHandler.Handle("start server", err)
	}

	fmt.Fprintf(c.app.out, "Serving the API on %s\n", cfg.Addr)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// TokenCommand issues a bearer token for the API
type TokenCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewTokenCommand creates a new token command handler
func NewTokenCommand(app *App) *TokenCommand {
	return &TokenCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints a token for the given user, or the current user
func (c *TokenCommand) Execute(ctx context.Context, args []string) error {
	var user string
	if len(args) > 0 {
		user = args[0]
	} else {
		u, err := c.app.userID()
		if err != nil {
			return err
		}
		user = u
	}

	cfg := c.app.config.Server
	token, err := server.GenerateToken(user, []byte(cfg.JWTSecret), cfg.TokenTTL, timeNow())
	if err != nil {
		return c.errorHandler.Handle("issue token", err)
	}
	fmt.Fprintln(c.app.out, token)
	return nil
}
