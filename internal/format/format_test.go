package format

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFormatter records the batches handed to it.
type stubFormatter struct {
	name      string
	fragments []string
	batches   [][]string
	checked   bool
}

func (f *stubFormatter) Name() string        { return f.name }
func (f *stubFormatter) Fragments() []string { return f.fragments }

func (f *stubFormatter) Format(_ context.Context, files []string, check bool) error {
	f.batches = append(f.batches, files)
	f.checked = check
	return nil
}

func newTestService(fs afero.Fs, formatters ...Formatter) *Service {
	s := &Service{
		fs:         fs,
		log:        zap.NewNop(),
		byFragment: map[string]Formatter{},
		formatters: formatters,
	}
	for _, formatter := range formatters {
		for _, fragment := range formatter.Fragments() {
			s.byFragment[fragment] = formatter
		}
	}
	return s
}

func TestFragments(t *testing.T) {
	t.Run("Should list suffixes from most to least specific then the stem", func(t *testing.T) {
		assert.Equal(t, []string{".py", "main"}, fragments("main.py"))
		assert.Equal(t, []string{".ts", ".d", "lib.d"}, fragments("lib.d.ts"))
	})
	t.Run("Should return bare names unchanged", func(t *testing.T) {
		assert.Equal(t, []string{".prettierrc"}, fragments(".prettierrc"))
		assert.Equal(t, []string{"Makefile"}, fragments("Makefile"))
	})
}

func TestService_Format(t *testing.T) {
	ctx := context.Background()
	t.Run("Should batch files per matching formatter", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		for _, name := range []string{"a.py", "b.py", "c.json", "README"} {
			require.NoError(t, afero.WriteFile(fs, name, []byte("x"), 0o644))
		}
		python := &stubFormatter{name: "python", fragments: []string{".py"}}
		prettier := &stubFormatter{name: "prettier", fragments: []string{".json"}}
		s := newTestService(fs, python, prettier)

		require.NoError(t, s.Format(ctx, []string{"a.py", "b.py", "c.json", "README"}, false))
		require.Len(t, python.batches, 1)
		assert.Equal(t, []string{"a.py", "b.py"}, python.batches[0])
		require.Len(t, prettier.batches, 1)
		assert.Equal(t, []string{"c.json"}, prettier.batches[0])
	})
	t.Run("Should hand directories to every formatter", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("src", 0o755))
		python := &stubFormatter{name: "python", fragments: []string{".py"}}
		prettier := &stubFormatter{name: "prettier", fragments: []string{".json"}}
		s := newTestService(fs, python, prettier)

		require.NoError(t, s.Format(ctx, []string{"src"}, false))
		assert.Equal(t, [][]string{{"src"}}, python.batches)
		assert.Equal(t, [][]string{{"src"}}, prettier.batches)
	})
	t.Run("Should default to the current directory when no files are given", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll(".", 0o755))
		python := &stubFormatter{name: "python", fragments: []string{".py"}}
		s := newTestService(fs, python)

		require.NoError(t, s.Format(ctx, nil, true))
		assert.Equal(t, [][]string{{"."}}, python.batches)
		assert.True(t, python.checked)
	})
	t.Run("Should skip missing files with a warning", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		python := &stubFormatter{name: "python", fragments: []string{".py"}}
		s := newTestService(fs, python)

		require.NoError(t, s.Format(ctx, []string{"missing.py"}, false))
		assert.Empty(t, python.batches)
	})
	t.Run("Should match bare-name fragments", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, ".prettierrc", []byte("{}"), 0o644))
		prettier := &stubFormatter{name: "prettier", fragments: []string{".prettierrc"}}
		s := newTestService(fs, prettier)

		require.NoError(t, s.Format(ctx, []string{".prettierrc"}, false))
		assert.Equal(t, [][]string{{".prettierrc"}}, prettier.batches)
	})
}
