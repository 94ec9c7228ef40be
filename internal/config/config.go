// Package config loads benchmark matrix files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/duncaneddy/SATPLAN/internal/dataset"
	"github.com/duncaneddy/SATPLAN/model"
)

// File mirrors the YAML schema. Omitted fields keep their defaults.
type File struct {
	Families     []Family         `yaml:"families"`
	Sizes        []int            `yaml:"sizes"`
	Walker       map[string][]int `yaml:"walker"`
	AltitudeKm   *float64         `yaml:"altitude_km"`
	Eccentricity *float64         `yaml:"eccentricity"`
	ArgPerigee   *float64         `yaml:"arg_perigee_deg"`
	Epoch        string           `yaml:"epoch"`
}

// Family is one inclination family entry.
type Family struct {
	Name           string  `yaml:"name"`
	InclinationDeg float64 `yaml:"inclination_deg"`
	SunSynchronous bool    `yaml:"sun_synchronous"`
}

// Load reads and parses the matrix file at path.
func Load(path string) (dataset.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataset.Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return dataset.Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a matrix document on top of dataset.DefaultConfig. Unknown
// keys are rejected. A walker table, when present, replaces the default one.
func Parse(r io.Reader) (dataset.Config, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return dataset.Config{}, fmt.Errorf("parse: %w", err)
	}
	cfg, err := f.Apply(dataset.DefaultConfig())
	if err != nil {
		return dataset.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return dataset.Config{}, err
	}
	return cfg, nil
}

// Apply overlays the supplied fields of f onto base.
func (f File) Apply(base dataset.Config) (dataset.Config, error) {
	cfg := base.Clone()

	if len(f.Families) > 0 {
		cfg.Families = make([]model.InclinationFamily, 0, len(f.Families))
		for _, fam := range f.Families {
			cfg.Families = append(cfg.Families, model.InclinationFamily{
				Name:           strings.TrimSpace(fam.Name),
				Inclination:    fam.InclinationDeg,
				SunSynchronous: fam.SunSynchronous,
			})
		}
	}
	if len(f.Sizes) > 0 {
		cfg.Sizes = append([]int(nil), f.Sizes...)
	}
	if f.Walker != nil {
		cfg.Walker = make(map[int]model.WalkerConfig, len(f.Walker))
		for key, code := range f.Walker {
			size, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				return dataset.Config{}, fmt.Errorf("walker key %q: %w", key, err)
			}
			if len(code) != 3 {
				return dataset.Config{}, fmt.Errorf("walker %d: want [total, planes, phasing], got %v", size, code)
			}
			cfg.Walker[size] = model.WalkerConfig{Total: code[0], Planes: code[1], Phasing: code[2]}
		}
	}
	if f.AltitudeKm != nil {
		cfg.AltitudeKm = *f.AltitudeKm
	}
	if f.Eccentricity != nil {
		cfg.Eccentricity = *f.Eccentricity
	}
	if f.ArgPerigee != nil {
		cfg.ArgOfPerigee = *f.ArgPerigee
	}
	if f.Epoch != "" {
		epoch, err := time.Parse(time.RFC3339, f.Epoch)
		if err != nil {
			return dataset.Config{}, fmt.Errorf("epoch: %w", err)
		}
		cfg.Epoch = epoch.UTC()
	}
	return cfg, nil
}
