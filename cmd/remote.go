package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// apiClient builds an [services.APIClient] from the --shell-url and --remote-url flags, falling back to config.
func (r *Runner) apiClient(cmd *cli.Command) (*services.APIClient, error) {
	shellURL := cmd.String("shell-url")
	if shellURL == "" {
		shellURL = r.config.Shell.URL()
	}

	remoteURL := cmd.String("remote-url")
	if remoteURL == "" {
		origin, err := services.Origin(r.config.Shell.RemoteURL)
		if err != nil {
			return nil, fmt.Errorf("%w: shell.remote_url: %v", shared.ErrInvalidConfig, err)
		}
		remoteURL = origin.String()
	}

	return services.NewAPIClient(shellURL, remoteURL, r.httpClient), nil
}

// authenticatedClient is [Runner.apiClient] carrying the stored bearer token.
//
// required controls whether a missing token is an error.
func (r *Runner) authenticatedClient(cmd *cli.Command, required bool) (*services.APIClient, error) {
	client, err := r.apiClient(cmd)
	if err != nil {
		return nil, err
	}

	slot, err := r.slot(RemoteTokenKey)
	if err != nil {
		return nil, err
	}

	token, ok, err := slot.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		if required {
			return nil, fmt.Errorf("%w: run 'songbook remote login' first", shared.ErrNotAuthenticated)
		}
		return client, nil
	}

	client.Authenticate(token)
	return client, nil
}

// RemoteLogin requests a bearer token from the shell's token endpoint and stores it.
func (r *Runner) RemoteLogin(ctx context.Context, cmd *cli.Command) error {
	client, err := r.apiClient(cmd)
	if err != nil {
		return err
	}

	username := cmd.String("username")
	token, err := client.Login(ctx, username, cmd.String("password"))
	if errors.Is(err, shared.ErrInvalidCredentials) {
		r.writePlain("✗ %s\n", shared.InvalidCredentialsMessage)
		return err
	}
	if err != nil {
		return err
	}

	slot, err := r.slot(RemoteTokenKey)
	if err != nil {
		return err
	}
	if err := slot.Save(token.AccessToken); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	r.logger.Info("obtained remote token", "username", username)

	r.writePlain("✓ Logged in as %s\n", username)
	if !token.Expiry.IsZero() {
		r.writePlain("Token expires: %s\n", token.Expiry.Local().Format(time.RFC1123))
	}
	return nil
}

// RemoteLogout forgets the stored bearer token.
func (r *Runner) RemoteLogout(ctx context.Context, cmd *cli.Command) error {
	slot, err := r.slot(RemoteTokenKey)
	if err != nil {
		return err
	}
	if err := slot.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Remote token cleared\n")
}

// RemoteSongs fetches the derived song list from the remote's JSON API.
func (r *Runner) RemoteSongs(ctx context.Context, cmd *cli.Command) error {
	v, err := viewFromFlags(cmd)
	if err != nil {
		return err
	}

	client, err := r.authenticatedClient(cmd, false)
	if err != nil {
		return err
	}

	res, err := client.Songs(ctx, v)
	if err != nil {
		return err
	}
	return r.writeResult(*res, cmd.String("format"), "")
}

// RemoteAdd adds a song through the remote's API. The remote rejects non-admin tokens.
func (r *Runner) RemoteAdd(ctx context.Context, cmd *cli.Command) error {
	in := models.SongInput{
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
		Album:  cmd.String("album"),
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	client, err := r.authenticatedClient(cmd, true)
	if err != nil {
		return err
	}

	song, err := client.AddSong(ctx, in)
	if err != nil {
		return err
	}

	r.logger.Info("added song", "id", song.ID, "title", song.Title)
	return r.writePlain("✓ Added #%d %s by %s\n", song.ID, song.Title, song.Artist)
}

// RemoteDelete deletes a song by id through the remote's API.
func (r *Runner) RemoteDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Int("id")
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", shared.ErrInvalidArgument)
	}

	client, err := r.authenticatedClient(cmd, true)
	if err != nil {
		return err
	}

	if err := client.DeleteSong(ctx, id); err != nil {
		return err
	}

	r.logger.Info("deleted song", "id", id)
	return r.writePlain("✓ Deleted song #%d\n", id)
}

// RemoteImport adds the songs of a CSV file through the remote's API, printing progress as it goes.
func (r *Runner) RemoteImport(ctx context.Context, cmd *cli.Command) error {
	inputs, err := formatter.ReadCSVFile(cmd.String("file"))
	if err != nil {
		return err
	}

	client, err := r.authenticatedClient(cmd, true)
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	prog := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range prog {
			if !asJSON {
				r.writePlain("%s\n", u.Message)
			}
		}
	}()

	importer := tasks.NewImporter(client, r.logger)
	res, err := importer.Run(ctx, prog, inputs, tasks.ImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.logger.Info("import finished", "added", res.Added, "failed", res.Failed)
	if asJSON {
		return r.writeJSON(res, true)
	}

	if res.Failed > 0 {
		r.writePlainln("%d songs were not added:", res.Failed)
		for _, it := range res.Failures() {
			r.writePlain("  row %d: %s - %s: %s\n", it.Row+1, it.Input.Artist, it.Input.Title, it.Error)
		}
	}
	return nil
}
