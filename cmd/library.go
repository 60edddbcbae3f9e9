package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/urfave/cli/v3"
)

// viewFromFlags builds a [catalog.View] from the shared view flags, rejecting invalid keys.
func viewFromFlags(cmd *cli.Command) (catalog.View, error) {
	v := catalog.DefaultView()

	for _, f := range catalog.Fields {
		if err := v.SetFilter(f, cmd.String(string(f))); err != nil {
			return v, err
		}
	}

	key, err := catalog.ParseField(cmd.String("sort"))
	if err != nil {
		return v, err
	}
	order, err := catalog.ParseOrder(cmd.String("order"))
	if err != nil {
		return v, err
	}
	if err := v.SetSort(key, order); err != nil {
		return v, err
	}

	group, err := catalog.ParseGroup(cmd.String("group"))
	if err != nil {
		return v, err
	}
	if err := v.SetGroup(group); err != nil {
		return v, err
	}
	return v, nil
}

// writeResult renders res in the requested format to the output, or to path when set.
func (r *Runner) writeResult(res catalog.Result, format, path string) error {
	f, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	if path != "" {
		written, err := formatter.WriteExport(res, f, path)
		if err != nil {
			return err
		}
		r.logger.Info("exported songs", "path", written, "format", f, "count", res.Shown)
		return r.writePlain("✓ Exported %d songs to %s\n", res.Shown, written)
	}

	data, err := formatter.Export(res, f)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// LibraryList derives the seeded catalog for the logged-in user.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.requireSession()
	if err != nil {
		return err
	}

	v, err := viewFromFlags(cmd)
	if err != nil {
		return err
	}

	r.logger.Debug("deriving library view", "username", s.Username, "view", v.Query().Encode())

	engine := catalog.NewEngine(nil)
	engine.SetView(v)
	return r.writeResult(engine.DeriveView(), cmd.String("format"), cmd.String("output"))
}

// LibraryValues lists the distinct non-empty values of a field in first-seen order.
func (r *Runner) LibraryValues(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireSession(); err != nil {
		return err
	}

	field, err := catalog.ParseField(cmd.String("field"))
	if err != nil {
		return err
	}

	values := catalog.NewSeededLibrary().Unique(field)
	if cmd.Bool("json") {
		return r.writeJSON(values, false)
	}

	for _, v := range values {
		if err := r.writePlain("%s\n", v); err != nil {
			return err
		}
	}
	return nil
}
