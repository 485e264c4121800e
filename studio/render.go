package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	cli "github.com/urfave/cli/v3"
	"golang.org/x/net/html"

	"ams/css"
	"ams/render"
	"ams/state"
)

// Render projects a stored manuscript into an HTML document. With --tree the
// DOM is dumped as an indented tree instead, which is handy when chasing
// projection problems.
func Render(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

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

	container := render.Element("div")
	render.SetAttr(container, "class", "manuscript")
	r := render.NewRenderer(p.Text, p.Formatting, log)
	r.ChunkSize = env.Cfg.Render.ChunkSize
	r.ContextWindow = env.Cfg.Render.ContextWindow
	r.Render(container, nil)

	out := os.Stdout
	if fname := cmd.Args().Get(1); len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("tree") {
		_, err = io.WriteString(out, render.DumpTree(container))
		return err
	}

	theme, err := css.Load(env.Cfg.Render.ThemePath, log)
	if err != nil {
		return err
	}
	return writeDocument(out, p.Title, theme, container)
}

func writeDocument(out io.Writer, title string, theme *css.Theme, container *html.Node) error {
	if _, err := fmt.Fprintf(out, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\"/>\n<title>%s</title>\n<style>\n%s</style>\n</head>\n<body>\n",
		html.EscapeString(title), theme.Stylesheet()); err != nil {
		return err
	}
	if err := html.Render(out, container); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n</body>\n</html>\n")
	return err
}
