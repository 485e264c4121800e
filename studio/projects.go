package studio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ams/state"
)

// List prints stored projects, most recently updated first.
func List(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	st, err := openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No projects")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Author, s.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

// Delete removes a stored project.
func Delete(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("projects")

	key := cmd.Args().Get(0)
	if len(key) == 0 {
		return errors.New("no project has been specified")
	}

	st, err := openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := resolveProject(st, key, log)
	if err != nil {
		return err
	}
	if err := st.Delete(p.ID); err != nil {
		return err
	}

	log.Info("Project deleted", zap.String("project_id", p.ID), zap.String("title", p.Title))
	return nil
}
