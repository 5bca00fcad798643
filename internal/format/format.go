// Package format dispatches files to external code formatters by file
// extension.
package format

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benfiola/devtools/internal/service"
	"github.com/benfiola/devtools/internal/toolchain"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Formatter applies one external formatting tool to a batch of files.

type Formatter interface {
	Name() string
	// Fragments returns the filename fragments (extensions and bare
	// names) the formatter claims.
	Fragments() []string
	// Format rewrites files in place; with check set it only verifies and
	// fails when files need formatting.
	Format(ctx context.Context, files []string, check bool) error
}

// Service routes files to formatters and runs them batch-wise.
type Service struct {
	fs         afero.Fs
	log        *zap.Logger
	configDir  string
	formatters []Formatter
	byFragment map[string]Formatter
}

// NewService creates the formatter registry.  The registry is fixed at
// construction; formatters are not discovered at runtime.
func NewService(
	prefix *toolchain.Prefix,
	runner service.CommandRunner,
	fs afero.Fs,
	log *zap.Logger,
) (*Service, error) {
	extensions, err := loadLanguageExtensions()
	if err != nil {
		return nil, err
	}
	s := &Service{
		fs:         fs,
		log:        log,
		configDir:  filepath.Join(prefix.Path(), "config"),
		byFragment: map[string]Formatter{},
	}
	s.formatters = []Formatter{
		newPythonFormatter(s, prefix, runner, extensions),
		newPrettierFormatter(s, prefix, runner, extensions),
	}
	for _, formatter := range s.formatters {
		for _, fragment := range formatter.Fragments() {
			s.byFragment[fragment] = formatter
		}
	}
	return s, nil
}

// Format formats the given files and directories.  Directories are handed to
// every formatter; files without a matching formatter are skipped.
func (s *Service) Format(ctx context.Context, files []string, check bool) error {
	if len(files) == 0 {
		files = []string{"."}
	}
	batches := make(map[string][]string, len(s.formatters))
	for _, file := range files {
		info, err := s.fs.Stat(file)
		if err != nil {
			if os.IsNotExist(err) {
				s.log.Warn("file does not exist", zap.String("file", file))
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", file, err)
		}
		if info.IsDir() {
			// directories get passed to all formatters
			s.log.Debug("add directory to all formatters", zap.String("dir", file))
			for _, formatter := range s.formatters {
				batches[formatter.Name()] = append(batches[formatter.Name()], file)
			}
			continue
		}
		formatter := s.match(filepath.Base(file))
		if formatter == nil {
			continue
		}
		s.log.Debug("add file to formatter",
			zap.String("formatter", formatter.Name()), zap.String("file", file))
		batches[formatter.Name()] = append(batches[formatter.Name()], file)
	}
	for _, formatter := range s.formatters {
		batch := batches[formatter.Name()]
		if len(batch) == 0 {
			continue
		}
		s.log.Info("formatting files",
			zap.Int("count", len(batch)), zap.String("formatter", formatter.Name()))
		if err := formatter.Format(ctx, batch, check); err != nil {
			return fmt.Errorf("formatter %s failed: %w", formatter.Name(), err)
		}
	}
	return nil
}

// match finds the formatter for a filename by trying its suffixes from most
// to least specific, then its stem.
func (s *Service) match(name string) Formatter {
	for _, fragment := range fragments(name) {
		if formatter, ok := s.byFragment[fragment]; ok {
			return formatter
		}
	}
	return nil
}

// fragments returns the candidate fragments of a filename: the final suffix,
// earlier suffixes, then the stem (the name without its final suffix, which
// covers bare names like ".prettierrc").
func fragments(name string) []string {
	var suffixes []string
	rest := name
	for {
		ext := filepath.Ext(rest)
		if ext == "" || ext == rest {
			break
		}
		suffixes = append(suffixes, ext)
		rest = rest[:len(rest)-len(ext)]
	}
	out := make([]string, 0, len(suffixes)+1)
	out = append(out, suffixes...)
	stem := name
	if ext := filepath.Ext(name); ext != "" && ext != name {
		stem = name[:len(name)-len(ext)]
	}
	out = append(out, stem)
	return out
}

// writeFileIfChanged writes data only when the file is missing or differs,
// so repeated runs do not touch config mtimes.
func writeFileIfChanged(fs afero.Fs, path string, data []byte) error {
	existing, err := afero.ReadFile(fs, path)
	if err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
