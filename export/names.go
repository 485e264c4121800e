package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"ams/config"
	"ams/manuscript"
	"ams/state"
)

// Values holds variables available for output name template expansion.
type Values struct {
	Context   string
	Title     string
	Author    string
	Language  string
	Date      string
	Format    string
	ProjectID string
}

func expandTemplate(p *manuscript.Project, name config.TemplateFieldName, field string, format config.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:   string(name),
		Title:     p.Title,
		Author:    p.Author,
		Language:  p.Language,
		Date:      p.UpdatedAt.Format("2006-01-02"),
		Format:    format.String(),
		ProjectID: p.ID,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildOutputPath returns the constructed output path for a project export.
// It uses either the default naming scheme or the user-defined template,
// cleans the result and transliterates it if requested.
func BuildOutputPath(p *manuscript.Project, dst string, env *state.LocalEnv) string {
	defaultFile := buildDefaultFileName(p, env)

	if env.Cfg.Export.OutputNameTemplate == "" {
		return filepath.Join(dst, defaultFile)
	}

	expandedName := expandOutputNameTemplate(p, env)
	if expandedName == "" {
		// fallback to default name if template expansion failed
		return filepath.Join(dst, defaultFile)
	}

	return assemblePathWithSubdirs(dst, expandedName, env)
}

func buildDefaultFileName(p *manuscript.Project, env *state.LocalEnv) string {
	baseName := p.Title
	if baseName == "" {
		baseName = p.ID
	}
	if env.Cfg.Export.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + env.Cfg.Export.Format.Ext()
}

func expandOutputNameTemplate(p *manuscript.Project, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(p, config.OutputNameTemplateFieldName, env.Cfg.Export.OutputNameTemplate, env.Cfg.Export.Format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// assemblePathWithSubdirs takes an expanded template name (which may contain
// path separators for subdirectories) and assembles it into a full output path,
// cleaning and transliterating segments as needed
func assemblePathWithSubdirs(outDir, expandedName string, env *state.LocalEnv) string {
	outExt := env.Cfg.Export.Format.Ext()
	pathSegments := splitAndCleanPath(expandedName)

	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + outExt
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	if !env.NoDirs {
		for _, segment := range pathSegments[:len(pathSegments)-1] {
			dirParts = append(dirParts, cleanPathSegment(segment, env))
		}
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitAndCleanPath(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
		path = head
	}

	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Export.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
