package domain

// ProjectKind identifies the package ecosystem a project belongs to.
type ProjectKind string

const (
	ProjectKindPython ProjectKind = "python"
	ProjectKindNode   ProjectKind = "node"
)

// Project describes the publishable project in the current directory.
type Project struct {
	Name string
	Kind ProjectKind
	// Dir is the project root; not part of any manifest file.
	Dir string
}
