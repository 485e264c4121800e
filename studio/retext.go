package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ams/format"
	"ams/state"
)

// Retext replaces project text with the content of a plain text file while
// keeping formatting ranges and comments attached to the content they
// described. Offsets are shifted through the computed edits, ranges whose
// content disappeared are dropped.
func Retext(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("retext")

	key := cmd.Args().Get(0)
	if len(key) == 0 {
		return errors.New("no project has been specified")
	}
	src := cmd.Args().Get(1)
	if len(src) == 0 {
		return errors.New("no replacement text file has been specified")
	}

	kind, enc, err := isSourceFile(src)
	if err != nil {
		return fmt.Errorf("unable to check file type: %w", err)
	}
	if kind != docText {
		return fmt.Errorf("replacement source must be a plain text file (%s)", src)
	}

	file, err := os.Open(src)
	if err != nil {
		return err
	}
	defer file.Close()

	raw, err := io.ReadAll(selectReader(file, enc))
	if err != nil {
		return err
	}
	newText := strings.ReplaceAll(string(raw), "\r\n", "\n")
	newText = strings.ReplaceAll(newText, "\r", "\n")

	st, err := openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := resolveProject(st, key, log)
	if err != nil {
		return err
	}

	before := len(p.Formatting.Ranges)
	edits := format.DiffTexts(p.Text, newText)
	p.ApplyEdits(newText, edits)

	if err := st.Save(p); err != nil {
		return err
	}

	log.Info("Text replaced",
		zap.String("project_id", p.ID),
		zap.Int("edits", len(edits)),
		zap.Int("ranges_before", before),
		zap.Int("ranges_after", len(p.Formatting.Ranges)))
	return nil
}
