package domain

// Commit is a single commit as read from the repository.  Tags holds the tag
// names pointing exactly at this commit.
type Commit struct {
	Hash    string
	Message string
	Tags    []string
}
