package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin checks the credentials and stores a session token in the local database.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	sm, err := r.sessionManager()
	if err != nil {
		return err
	}

	user, _, err := sm.IssueToken(cmd.String("username"), cmd.String("password"))
	if errors.Is(err, shared.ErrInvalidCredentials) {
		r.writePlain("✗ %s\n", shared.InvalidCredentialsMessage)
		return err
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	r.logger.Info("logged in", "username", user.Username, "role", user.Role)

	s := sm.Current()
	r.writePlain("✓ Logged in as %s (%s)\n", user.Username, user.Role.Label())
	if s != nil {
		r.writePlain("Expires: %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthLogout clears the stored session token. Logging out without a session is not an error.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	sm, err := r.sessionManager()
	if err != nil {
		return err
	}

	if err := sm.Logout(); err != nil {
		return err
	}

	r.logger.Info("logged out")
	return r.writePlain("✓ Logged out\n")
}

// AuthStatus reports the stored session, discarding it when it is expired or malformed.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sm, err := r.sessionManager()
	if err != nil {
		return err
	}

	s := sm.RestoreSession()
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"authenticated": s != nil, "session": s}, true)
	}

	if s == nil {
		return r.writePlain("✗ Not logged in\n")
	}

	r.writePlain("✓ Logged in\n")
	r.writePlain("Username: %s\n", s.Username)
	r.writePlain("Role: %s\n", s.Role.Label())
	r.writePlain("Expires: %s (in %s)\n", s.ExpiresAt.Local().Format(time.RFC1123), s.ExpiresAt.Sub(r.now()).Round(time.Minute))
	return nil
}
