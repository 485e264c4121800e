// Package export produces distributable audiobook manuscript bundles: XHTML
// chapters with formatting applied, the stylesheet, cover, narration audio
// and an XML manifest tying it all together.
package export

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"ams/config"
	"ams/content/text"
	"ams/css"
	"ams/manuscript"
	"ams/state"
)

const (
	chaptersDir = "chapters"
	audioDir    = "audio"
	stylesDir   = "styles"

	stylesheetName = "stylesheet.css"
	coverName      = "cover.jpg"
	manifestName   = "manifest.xml"
)

// Generate writes the project to outputPath in the configured layout. For the
// bundle format outputPath names a zip file, for the dir format a directory.
func Generate(ctx context.Context, p *manuscript.Project, outputPath string, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	cfg := &env.Cfg.Export

	log.Info("Generating bundle", zap.Stringer("format", cfg.Format), zap.String("output", outputPath))

	theme, err := css.Load(env.Cfg.Render.ThemePath, log)
	if err != nil {
		return err
	}

	var splitter *text.Splitter
	if cfg.SentencePreviews {
		splitter = newSplitter(p, env, log)
	}
	chapters := p.Chapters(splitter)
	p.AssignAudioToChapters(chapters)

	parts, err := assemble(p, chapters, theme, env, log)
	if err != nil {
		return err
	}

	switch cfg.Format {
	case config.OutputFmtBundle:
		return writeBundle(parts, outputPath, cfg.FixZip)
	case config.OutputFmtDir:
		return writeDir(parts, outputPath)
	default:
		return fmt.Errorf("unsupported export format %s", cfg.Format)
	}
}

// part is a single file of the assembled bundle, in archive order.
type part struct {
	name string
	data []byte
}

func assemble(p *manuscript.Project, chapters []manuscript.Chapter, theme *css.Theme, env *state.LocalEnv, log *zap.Logger) ([]part, error) {
	var parts []part

	for _, c := range chapters {
		data, err := chapterXHTML(p, c, env, log)
		if err != nil {
			return nil, fmt.Errorf("unable to build chapter %q: %w", c.Title, err)
		}
		parts = append(parts, part{name: path.Join(chaptersDir, c.FileName+".xhtml"), data: data})
	}

	parts = append(parts, part{name: path.Join(stylesDir, stylesheetName), data: theme.Stylesheet()})

	if env.Cfg.Export.Cover.Generate {
		cover, err := buildCover(p, env, log)
		if err != nil {
			return nil, fmt.Errorf("unable to build cover: %w", err)
		}
		parts = append(parts, part{name: coverName, data: cover})
	}

	for _, a := range p.Audio {
		parts = append(parts, part{name: path.Join(audioDir, a.Name), data: a.Data})
	}

	manifest, err := buildManifest(p, chapters, env)
	if err != nil {
		return nil, fmt.Errorf("unable to build manifest: %w", err)
	}
	parts = append(parts, part{name: manifestName, data: manifest})
	return parts, nil
}

func newSplitter(p *manuscript.Project, env *state.LocalEnv, log *zap.Logger) *text.Splitter {
	name := p.Language
	if len(name) == 0 {
		name = env.Cfg.Project.Language
	}
	tag, err := language.Parse(name)
	if err != nil {
		log.Warn("Unable to parse project language, previews are off", zap.String("language", name), zap.Error(err))
		return nil
	}
	return text.NewSplitter(tag, log)
}

func writeBundle(parts []part, outputPath string, fixZip bool) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	tmpName := outputPath + ".tmp"
	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()
	defer os.Remove(tmpName)

	zw := zip.NewWriter(f)
	for _, p := range parts {
		if err := writeDataToZip(zw, p.name, p.data); err != nil {
			return fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}

	if fixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return copyFile(tmpName, outputPath)
}

func writeDir(parts []part, outputPath string) error {
	for _, p := range parts {
		full := filepath.Join(outputPath, filepath.FromSlash(p.name))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			return fmt.Errorf("unable to create %s: %w", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, p.data, 0644); err != nil {
			return fmt.Errorf("unable to write %s: %w", full, err)
		}
	}
	return nil
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Some zip consumers choke on streamed entries carrying data descriptors, so
// the archive is rewritten with the flag cleared.
func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destinationFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destinationFile.Close()

	if _, err = io.Copy(destinationFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file contents: %w", err)
	}

	if err = destinationFile.Close(); err != nil {
		return fmt.Errorf("failed to close destination file: %w", err)
	}
	return nil
}
