// Package studio implements manuscript workflow commands: importing source
// documents into projects, rendering, reflowing text and exporting bundles.
package studio

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ams/manuscript"
	"ams/state"
	"ams/store"
)

func openStore(env *state.LocalEnv) (*store.Store, error) {
	return store.Open(env.Cfg.Project.StorePath, env.Log)
}

// resolveProject locates a project by its identifier or, failing that, by
// exact title match. Title lookup is case insensitive and must be unambiguous.
func resolveProject(st *store.Store, key string, log *zap.Logger) (*manuscript.Project, error) {
	if p, err := st.Load(key); err == nil {
		return p, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	summaries, err := st.List()
	if err != nil {
		return nil, err
	}

	var id string
	for _, s := range summaries {
		if !strings.EqualFold(s.Title, key) {
			continue
		}
		if id != "" {
			return nil, fmt.Errorf("project title %q is ambiguous, use project id", key)
		}
		id = s.ID
	}
	if id == "" {
		return nil, fmt.Errorf("project %q: %w", key, store.ErrNotFound)
	}

	log.Debug("Resolved project by title", zap.String("title", key), zap.String("id", id))
	return st.Load(id)
}
