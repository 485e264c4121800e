package studio

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"ams/archive"
	"ams/format"
	"ams/manuscript"
	"ams/richtext"
	"ams/state"
	"ams/store"
)

var sourceExts = []string{".txt", ".text", ".html", ".htm", ".xhtml"}

// Import reads manuscript sources and stores them as projects. A single file
// becomes a single project, directories and archives are walked recursively
// and produce a project per recognized document.
func Import(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("import")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	st, err := openStore(env)
	if err != nil {
		return err
	}
	defer st.Close()

	imp := &importer{
		st:     st,
		title:  cmd.String("title"),
		author: cmd.String("author"),
		into:   cmd.String("into"),
	}

	log.Info("Import starting", zap.String("source", src))
	defer func(start time.Time) {
		log.Info("Import completed", zap.Duration("elapsed", time.Since(start)), zap.Int("projects", imp.count))
	}(time.Now())

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	switch {
	case fi.Mode().IsDir():
		return imp.processDir(ctx, src, log)
	case fi.Mode().IsRegular():
		isArchive, err := isArchiveFile(src)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			return imp.processArchive(ctx, src, log)
		}
		kind, enc, err := isSourceFile(src)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if kind == docUnknown {
			return fmt.Errorf("input was not recognized as manuscript source (%s)", src)
		}
		file, err := os.Open(src)
		if err != nil {
			return err
		}
		defer file.Close()
		return imp.processDocument(ctx, selectReader(file, enc), filepath.Base(src), kind, log)
	default:
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
}

// importer carries per-run import options and counts processed documents.
type importer struct {
	st     *store.Store
	title  string
	author string
	into   string
	count  int
}

// processDir walks directory tree finding manuscript sources and processes them.
func (imp *importer) processDir(ctx context.Context, dir string, log *zap.Logger) (err error) {
	defer func() {
		if err == nil && imp.count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			if err := imp.processArchive(ctx, path, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		kind, enc, err := isSourceFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if kind == docUnknown {
			log.Debug("Skipping file, not recognized as manuscript source", zap.String("file", path))
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		if err := imp.processDocument(ctx, selectReader(file, enc), filepath.Base(path), kind, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

// processArchive walks all recognized documents inside a zip archive.
func (imp *importer) processArchive(ctx context.Context, path string, log *zap.Logger) (err error) {
	defer func() {
		if err == nil && imp.count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	return archive.WalkExts(path, sourceExts, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind, enc, err := isSourceInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if kind == docUnknown {
			return nil
		}

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := imp.processDocument(ctx, selectReader(r, enc), filepath.Base(pathInArchive), kind, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
}

// processDocument turns a single source document into a stored project, or
// merges its formatting into an existing one when requested.
func (imp *importer) processDocument(ctx context.Context, r io.Reader, name string, kind docKind, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var projectID string

	log.Info("Document import starting", zap.String("from", name))
	defer func(start time.Time) {
		// NOTE: extraction works on arbitrary real-world markup, if multiple
		// documents are being processed we do not want to stop.
		if r := recover(); r != nil {
			log.Error("Document import ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("import panic: %v", r)
		} else {
			log.Info("Document import completed", zap.Duration("elapsed", time.Since(start)), zap.String("project_id", projectID))
		}
	}(time.Now())

	text, data, err := extractDocument(r, kind, env, log)
	if err != nil {
		return fmt.Errorf("unable to extract document (%s): %w", name, err)
	}

	if imp.into != "" {
		p, err := resolveProject(imp.st, imp.into, log)
		if err != nil {
			return fmt.Errorf("unable to load merge target: %w", err)
		}
		merger := format.NewMerger(log)
		if d := env.Cfg.Merge.MaxLengthDelta; d > 0 {
			merger.MaxLengthDelta = d
		}
		p.Formatting.Ranges = merger.Merge(p.Formatting.Ranges, p.Text, data.Ranges, text)
		p.Formatting.Sanitize(len(p.Text))
		if err := imp.st.Save(p); err != nil {
			return err
		}
		projectID = p.ID
		imp.count++
		return nil
	}

	title := imp.title
	if title == "" {
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}

	p := manuscript.New(title, imp.author)
	p.Language = env.Cfg.Project.Language
	p.SetContent(text, data)

	if err := imp.st.Save(p); err != nil {
		return err
	}
	projectID = p.ID
	imp.count++
	return nil
}

// extractDocument produces plain text with formatting ranges from a source
// document. HTML goes through the rich text extractor, plain text documents
// get newline normalization and no formatting.
func extractDocument(r io.Reader, kind docKind, env *state.LocalEnv, log *zap.Logger) (string, *format.Data, error) {
	if kind == docHTML {
		res, err := richtext.Extract(r, log)
		if err != nil {
			return "", nil, err
		}
		data := format.NewData()
		data.Ranges = res.Ranges
		return res.Text, data, nil
	}

	if env.CodePage != nil {
		r = env.CodePage.NewDecoder().Reader(r)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", nil, err
	}
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, format.NewData(), nil
}
