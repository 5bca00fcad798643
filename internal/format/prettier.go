package format

import (
	"context"
	"fmt"

	"github.com/benfiola/devtools/internal/service"
	"github.com/benfiola/devtools/internal/toolchain"
)

// prettierLanguages are the language-table entries prettier claims.
var prettierLanguages = []string{
	"CSS", "PostCSS", "Less", "SCSS", "GraphQL", "Handlebars", "HTML", "Vue",
	"Javascript", "Typescript", "TSX", "JSON", "JSON with Comments", "JSON5",
	"Markdown", "YAML",
}

// prettierExtraFragments are config filenames prettier also formats.
var prettierExtraFragments = []string{
	".babelrc", ".jscsrc", ".jshintrc", ".jslintrc", "swcrc", ".prettierrc",
}

// prettierFormatter formats web-adjacent sources with prettier.
type prettierFormatter struct {
	svc       *Service
	prefix    *toolchain.Prefix
	runner    service.CommandRunner
	fragments []string
}

func newPrettierFormatter(
	svc *Service,
	prefix *toolchain.Prefix,
	runner service.CommandRunner,
	extensions map[string][]string,
) Formatter {
	var fragments []string
	for _, language := range prettierLanguages {
		fragments = append(fragments, extensions[language]...)
	}
	fragments = append(fragments, prettierExtraFragments...)
	return &prettierFormatter{
		svc:       svc,
		prefix:    prefix,
		runner:    runner,
		fragments: fragments,
	}
}

func (f *prettierFormatter) Name() string {
	return "prettier"
}

func (f *prettierFormatter) Fragments() []string {
	return f.fragments
}

func (f *prettierFormatter) Format(ctx context.Context, files []string, check bool) error {
	config, err := f.svc.configFile("prettier.json")
	if err != nil {
		return err
	}
	prettier, err := f.prefix.Tool(ctx, "prettier")
	if err != nil {
		return err
	}
	args := append([]string(nil), prettier...)
	args = append(args, "--config="+config)
	if check {
		args = append(args, "--check")
	} else {
		args = append(args, "--write")
	}
	args = append(args, files...)
	if _, err := f.runner.Run(ctx, service.Command{Args: args}); err != nil {
		return fmt.Errorf("prettier failed: %w", err)
	}
	return nil
}
