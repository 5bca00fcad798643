package toolchain

// Tool describes a package installed into a language directory of the
// prefix (e.g. the "black" pip package, the "prettier" npm package).
type Tool struct {
	Name     string
	Language string
	// Packages are the packages handed to the language's package manager;
	// the first is the one the tool is named after.
	Packages []string
	// Binary is the executable the install provides.  Python tools may
	// leave it empty and run as "python -m <package>".
	Binary string
}

// builtinTools returns the tool table.  The registry is assembled once at
// startup; there is no runtime discovery.
func builtinTools() []Tool {
	return []Tool{
		{Name: "black", Language: "python", Packages: []string{"black"}, Binary: "black"},
		{Name: "isort", Language: "python", Packages: []string{"isort"}, Binary: "isort"},
		{Name: "build", Language: "python", Packages: []string{"build"}},
		{Name: "twine", Language: "python", Packages: []string{"twine"}, Binary: "twine"},
		{Name: "prettier", Language: "node", Packages: []string{"prettier"}, Binary: "prettier"},
	}
}
