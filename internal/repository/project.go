package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/benfiola/devtools/internal/domain"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	pyprojectFile   = "pyproject.toml"
	packageJSONFile = "package.json"
)

// ProjectRepository detects the publishable project in a directory and
// rewrites its version field.

type ProjectRepository interface {
	Detect(ctx context.Context, dir string) (*domain.Project, error)
	SetVersion(ctx context.Context, project *domain.Project, version string) error
}

// fsProjectRepository is the implementation of the ProjectRepository
// interface.
type fsProjectRepository struct {
	fs afero.Fs
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(fs afero.Fs) ProjectRepository {
	return &fsProjectRepository{fs: fs}
}

// Detect identifies the project type by its manifest file.  pyproject.toml
// wins over package.json when both exist.
func (r *fsProjectRepository) Detect(_ context.Context, dir string) (*domain.Project, error) {
	if ok, _ := afero.Exists(r.fs, filepath.Join(dir, pyprojectFile)); ok {
		name, err := r.pyprojectName(dir)
		if err != nil {
			return nil, err
		}
		return &domain.Project{Name: name, Kind: domain.ProjectKindPython, Dir: dir}, nil
	}
	if ok, _ := afero.Exists(r.fs, filepath.Join(dir, packageJSONFile)); ok {
		name, err := r.packageJSONName(dir)
		if err != nil {
			return nil, err
		}
		return &domain.Project{Name: name, Kind: domain.ProjectKindNode, Dir: dir}, nil
	}
	return nil, fmt.Errorf("no %s or %s found in %s", pyprojectFile, packageJSONFile, dir)
}

// SetVersion writes the version into the project's manifest file.
func (r *fsProjectRepository) SetVersion(_ context.Context, project *domain.Project, version string) error {
	switch project.Kind {
	case domain.ProjectKindPython:
		return r.setPyprojectVersion(project.Dir, version)
	case domain.ProjectKindNode:
		return r.setPackageJSONVersion(project.Dir, version)
	}
	return fmt.Errorf("unknown project kind: %q", project.Kind)
}

func (r *fsProjectRepository) pyprojectName(dir string) (string, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(dir, pyprojectFile))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", pyprojectFile, err)
	}
	var doc struct {
		Project struct {
			Name string `toml:"name"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", pyprojectFile, err)
	}
	if doc.Project.Name == "" {
		return "", fmt.Errorf("%s has no project.name", pyprojectFile)
	}
	return doc.Project.Name, nil
}

func (r *fsProjectRepository) setPyprojectVersion(dir, version string) error {
	path := filepath.Join(dir, pyprojectFile)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", pyprojectFile, err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", pyprojectFile, err)
	}
	project, ok := doc["project"].(map[string]any)
	if !ok {
		return fmt.Errorf("%s has no [project] table", pyprojectFile)
	}
	project["version"] = version
	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", pyprojectFile, err)
	}
	if err := afero.WriteFile(r.fs, path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pyprojectFile, err)
	}
	return nil
}

func (r *fsProjectRepository) packageJSONName(dir string) (string, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(dir, packageJSONFile))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", packageJSONFile, err)
	}
	var doc struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", packageJSONFile, err)
	}
	if doc.Name == "" {
		return "", fmt.Errorf("%s has no name field", packageJSONFile)
	}
	return doc.Name, nil
}

func (r *fsProjectRepository) setPackageJSONVersion(dir, version string) error {
	path := filepath.Join(dir, packageJSONFile)
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", packageJSONFile, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", packageJSONFile, err)
	}
	doc["version"] = version
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", packageJSONFile, err)
	}
	out = append(out, '\n')
	if err := afero.WriteFile(r.fs, path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", packageJSONFile, err)
	}
	return nil
}
