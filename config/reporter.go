package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ams/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

// entry is a single item scheduled for the report archive: either a blob of
// data captured at store time, or a path picked up when the archive is built.
type entry struct {
	src  string
	abs  string
	when time.Time
	blob []byte
}

// Report accumulates artifacts for a single debug report archive.
// NOTE: presently not to be used concurrently!
type Report struct {
	entries map[string]entry
	file    *os.File
}

// Close builds the archive and releases the report. Stored directories are
// treated as work directories handed off to the report and are removed after
// archiving; stored files stay where they are.
func (r *Report) Close() error {
	if r == nil {
		// no report has been requested
		return nil
	}
	if r.file == nil {
		return nil
	}
	defer r.file.Close()
	if err := r.finalize(); err != nil {
		return err
	}
	for _, e := range r.entries {
		if len(e.abs) == 0 {
			continue
		}
		if info, err := os.Stat(e.abs); err == nil && info.Mode().IsDir() {
			os.RemoveAll(e.abs)
		}
	}
	return nil
}

// Name returns name of underlying archive file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store schedules a file or directory path for the final archive. The path is
// read when the archive is built, not now.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}

	if old, exists := r.entries[name]; exists && old.src != path {
		// programming error, better to know right away
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.src, path))
	}

	e := entry{src: path, abs: path}
	if p, err := filepath.Abs(path); err == nil {
		e.abs = p
	}
	r.entries[name] = e
}

// StoreData schedules a blob for the final archive under the requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}

	if _, exists := r.entries[name]; exists {
		// programming error, better to know right away
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}

	r.entries[name] = entry{blob: data, when: time.Now()}
}

// StoreCopy snapshots a file or directory into a temporary location so later
// modifications do not leak into the report. Repeated names are versioned
// with a timestamp, storing the same content multiple times is safe.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}

	e := entry{when: time.Now(), src: path}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	e.abs = absPath

	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.when.UnixNano())
	}

	dir, err := os.MkdirTemp("", "ams-r-")
	if err != nil {
		return err
	}

	info, err := os.Stat(e.abs)
	if err != nil {
		return err
	}
	switch {
	case info.Mode().IsRegular():
		where, err := snapshotFile(dir, e.abs, info.ModTime())
		if err != nil {
			return err
		}
		e.abs = where
	case info.Mode().IsDir():
		if err := snapshotTree(dir, e.abs); err != nil {
			return err
		}
		e.abs = dir
	}

	r.entries[name] = e
	return nil
}

func snapshotFile(dir, src string, modTime time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}

	dst := filepath.Join(dir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", err
	}
	if err = out.Sync(); err != nil {
		return "", err
	}
	out.Close()

	if err := os.Chtimes(dst, modTime, modTime); err != nil {
		return "", err
	}
	return dst, nil
}

func snapshotTree(dir, src string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			// ignore links, sockets, etc.
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		_, err = snapshotFile(filepath.Dir(filepath.Join(dir, rel)), path, info.ModTime())
		return err
	})
}

// finalize writes the archive: a MANIFEST listing every entry followed by the
// entries themselves in manifest order. Paths that disappeared since they
// were stored are skipped silently.
func (r *Report) finalize() error {

	arc := zip.NewWriter(r.file)
	defer arc.Close()

	names, manifest := r.manifest()
	if err := archiveData(arc, "MANIFEST", time.Now(), manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]

		if len(e.blob) > 0 {
			if err := archiveData(arc, name, e.when, bytes.NewReader(e.blob)); err != nil {
				return err
			}
			continue
		}

		info, err := os.Stat(e.abs)
		if err != nil {
			continue
		}
		switch {
		case info.Mode().IsRegular():
			if err := archiveFile(arc, name, e.abs, info.ModTime()); err != nil {
				return err
			}
		case info.Mode().IsDir():
			if err := archiveTree(arc, name, e.abs); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Report) manifest() ([]string, *bytes.Buffer) {

	now := time.Now()

	buf := new(bytes.Buffer)
	if len(r.entries) == 0 {
		return nil, buf
	}

	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		e := r.entries[n]
		stamp := e.when
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(buf, "%s\t%s\t%s : %s\n", stamp.UTC().Format(time.UnixDate), n, e.src, e.abs)
	}
	return names, buf
}

func archiveData(dst *zip.Writer, name string, t time.Time, src io.Reader) error {
	w, err := dst.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: t})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func archiveFile(dst *zip.Writer, name, path string, t time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return archiveData(dst, name, t, f)
}

func archiveTree(dst *zip.Writer, name, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			// ignore links, sockets, etc.
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return archiveFile(dst, filepath.ToSlash(filepath.Join(name, rel)), path, info.ModTime())
	})
}
