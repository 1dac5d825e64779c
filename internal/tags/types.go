package tags

import "fmt"

// #region category

// Category groups tags by the aspect of the interface they describe.
type Category string

const (
	CategoryStyle   Category = "style"
	CategoryLayout  Category = "layout"
	CategoryDensity Category = "density"
	CategoryMood    Category = "mood"
)

// #endregion category

// #region tag

// Tag is a named, weighted attribute a UI element can carry.
// ConflictsWith lists tag names that are dampened when this tag is applied.
type Tag struct {
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	ConflictsWith []string `json:"conflicts_with,omitempty"`
}

// #endregion tag

// #region errors

// UnknownTagError reports a resolve or lookup against a name the registry
// has never seen. The registry fails loudly instead of defaulting to an
// empty tag.
type UnknownTagError struct {
	Name string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag %q", e.Name)
}

// #endregion errors
