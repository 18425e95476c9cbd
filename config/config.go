// Package config reads the YAML configuration files of the diff and
// validate commands.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tabcheck/tabcheck/validate"
	"gopkg.in/yaml.v3"
)

// Diff holds the configuration of a diff run.
type Diff struct {
	// FileOld is the location of the baseline table
	FileOld string `yaml:"file_old"`

	// FileNew is the location of the table compared against the baseline
	FileNew string `yaml:"file_new"`

	// KeyColumn matches rows by key; rows are matched by position if empty
	KeyColumn string `yaml:"key_column"`

	// Output is where the workbook report is written, if set
	Output string `yaml:"output"`

	// Sheet is the workbook sheet, or SQL table, read from both inputs
	Sheet string `yaml:"sheet"`

	// QueryOld and QueryNew are used when the inputs are databases
	QueryOld string `yaml:"query_old"`
	QueryNew string `yaml:"query_new"`

	// ColumnFilter is a POSIX regexp restricting the compared columns
	ColumnFilter string `yaml:"column_filter"`
}

// Validate holds the configuration of a validation run.
type Validate struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Sheet  string `yaml:"sheet"`
	Query  string `yaml:"query"`

	// Rules maps each column to its rules, in the order written
	Rules validate.RuleSet `yaml:"rules"`
}

// LoadDiff reads a diff configuration. A missing file yields an empty
// configuration. Relative paths are resolved against the file's directory.
func LoadDiff(path string) (Diff, error) {
	var cfg Diff
	found, err := load(path, &cfg)
	if err != nil || !found {
		return cfg, err
	}
	dir := filepath.Dir(path)
	cfg.FileOld = resolvePath(dir, cfg.FileOld)
	cfg.FileNew = resolvePath(dir, cfg.FileNew)
	cfg.Output = resolvePath(dir, cfg.Output)
	return cfg, nil
}

// CheckInputs returns an error if either input is missing.
func (c Diff) CheckInputs() error {
	if c.FileOld == "" {
		return errors.New("file_old is required: pass it as the first argument or set it in the config file")
	}
	if c.FileNew == "" {
		return errors.New("file_new is required: pass it as the second argument or set it in the config file")
	}
	return nil
}

// LoadValidate reads a validation configuration. A missing file yields an
// empty configuration. Relative paths are resolved against the file's
// directory.
func LoadValidate(path string) (Validate, error) {
	var cfg Validate
	found, err := load(path, &cfg)
	if err != nil || !found {
		return cfg, err
	}
	dir := filepath.Dir(path)
	cfg.Input = resolvePath(dir, cfg.Input)
	cfg.Output = resolvePath(dir, cfg.Output)
	return cfg, nil
}

// CheckInputs returns an error if the input is missing.
func (c Validate) CheckInputs() error {
	if c.Input == "" {
		return errors.New("input is required: pass it as an argument or set it in the config file")
	}
	return nil
}

func load(path string, out interface{}) (bool, error) {
	if path == "" {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read config file %s", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return false, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return true, nil
}

// resolvePath makes a relative file path relative to dir. URLs, connection
// strings and absolute paths are returned unchanged.
func resolvePath(dir string, p string) string {
	if p == "" || strings.Contains(p, "://") || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
