// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// viewFlags are the filter, sort and group flags shared by every command that derives a view.
func viewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Only songs whose title contains this text"},
		&cli.StringFlag{Name: "artist", Usage: "Only songs whose artist contains this text"},
		&cli.StringFlag{Name: "album", Usage: "Only songs whose album contains this text"},
		&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Usage: "Sort by title, artist or album", Value: "title"},
		&cli.StringFlag{Name: "order", Usage: "Sort order (asc or desc)", Value: "asc"},
		&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "Group by none, artist, album or title", Value: "none"},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (text, csv, markdown, json)",
			Value:   "text",
		},
	}
}

// credentialFlags are the username and password flags for login commands.
func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "Username",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			Usage:    "Password",
			Required: true,
		},
	}
}

// setupCommand initializes the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the local mock session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the local session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Log in and store a session token",
				Flags:  credentialFlags(),
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// libraryCommand queries the seeded catalog locally
func libraryCommand(r *Runner) *cli.Command {
	listFlags := append(viewFlags(), &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the export to this file instead of stdout",
	})

	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Browse the music library",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Filter, sort and group the library",
				Flags:  listFlags,
				Action: r.LibraryList,
			},
			{
				Name:  "values",
				Usage: "List the distinct values of a field",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "field",
						Usage:    "Field to list (title, artist, album)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.LibraryValues,
			},
		},
	}
}

// serveCommand starts the shell and remote web servers
func serveCommand(r *Runner) *cli.Command {
	openFlag := func() cli.Flag {
		return &cli.BoolFlag{Name: "open", Usage: "Open the shell in the default browser"}
	}

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web shell and the music library remote",
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "Serve the shell (login and layout)",
				Flags:  []cli.Flag{openFlag()},
				Action: r.ServeShell,
			},
			{
				Name:   "remote",
				Usage:  "Serve the music library remote",
				Action: r.ServeRemote,
			},
			{
				Name:   "all",
				Usage:  "Serve the shell and the remote together",
				Flags:  []cli.Flag{openFlag()},
				Action: r.ServeAll,
			},
		},
	}
}

// remoteCommand talks to running servers over HTTP
func remoteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "remote",
		Usage: "Use the song API of running servers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "shell-url",
				Usage: "Shell base URL (token endpoint)",
			},
			&cli.StringFlag{
				Name:  "remote-url",
				Usage: "Remote base URL (song API)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Obtain a bearer token from the shell",
				Flags:  credentialFlags(),
				Action: r.RemoteLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored bearer token",
				Action: r.RemoteLogout,
			},
			{
				Name:   "songs",
				Usage:  "Fetch the derived song list",
				Flags:  viewFlags(),
				Action: r.RemoteSongs,
			},
			{
				Name:  "add",
				Usage: "Add a song (admin only)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Song title", Required: true},
					&cli.StringFlag{Name: "artist", Usage: "Artist", Required: true},
					&cli.StringFlag{Name: "album", Usage: "Album", Required: true},
				},
				Action: r.RemoteAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a song by id (admin only)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Usage: "Song id", Required: true},
				},
				Action: r.RemoteDelete,
			},
			{
				Name:  "import",
				Usage: "Add every song in a CSV file (admin only)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "CSV with Title, Artist and Album columns",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests (1 keeps ids in file order)",
						Value: tasks.DefaultWorkers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: tasks.DefaultRateLimit,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the result as JSON",
					},
				},
				Action: r.RemoteImport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive music library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where TUI logs are written",
				Value: "./tmp/songbook-tui.log",
			},
		},
		Action: r.TUI,
	}
}
