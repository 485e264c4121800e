package studio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"ams/export"
	"ams/state"
)

// Export produces an audiobook production bundle for a stored project.
func Export(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	key := cmd.Args().Get(0)
	if len(key) == 0 {
		return errors.New("no project has been specified")
	}

	dst := cmd.Args().Get(1)
	var err error
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	st, err := openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := resolveProject(st, key, log)
	if err != nil {
		return err
	}

	outputName := export.BuildOutputPath(p, dst, env)

	// Check if output already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output already exists: %s", outputName)
		}
		log.Warn("Overwriting existing output", zap.String("path", outputName))
		if err = os.RemoveAll(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	log.Info("Export starting", zap.String("project_id", p.ID), zap.String("to", outputName))
	defer func(start time.Time) {
		log.Info("Export completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if err := export.Generate(ctx, p, outputName, log); err != nil {
		return fmt.Errorf("unable to generate output: %w", err)
	}

	// Store export result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", p.ID, filepath.Ext(outputName)), outputName)
	}
	return nil
}
