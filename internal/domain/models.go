package domain

// Entry is a filesystem candidate offered to the filter
type Entry struct {
	Path  string // absolute path
	Rel   string // path relative to the scan root it was found under
	Name  string // base name
	IsDir bool
}

// Display returns the text shown for the entry in lists
func (e Entry) Display() string {
	if e.Rel != "" {
		return e.Rel
	}
	return e.Path
}
