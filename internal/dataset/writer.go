package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/duncaneddy/SATPLAN/model"
)

// Writer lays constellation files out under a base directory as
// <base>/<family>/spacecraft_<count>_<family>.json.
type Writer struct {
	baseDir string
}

// NewWriter returns a writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Path returns the JSON file path for a family label and size.
func (w *Writer) Path(family string, count int) string {
	slug := model.InclinationFamily{Name: family}.Slug()
	return filepath.Join(w.baseDir, slug, "spacecraft_"+strconv.Itoa(count)+"_"+slug+".json")
}

// CZMLPath returns the visualization file path for a family label and size.
func (w *Writer) CZMLPath(family string, count int) string {
	slug := model.InclinationFamily{Name: family}.Slug()
	return filepath.Join(w.baseDir, slug, "constellation_"+strconv.Itoa(count)+"_"+slug+".czml")
}

// Write serializes rec with four-space indentation and returns the path it
// was written to. The file only appears once fully written.
func (w *Writer) Write(rec *model.ConstellationRecord) (string, error) {
	if rec == nil {
		return "", errors.New("dataset: nil constellation record")
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode constellation: %w", err)
	}
	path := w.Path(rec.Inclination, rec.NumSatellites)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
