package layout

// #region element

// Element is one node of the layout tree: a UI element carrying a weighted
// tag map. Elements are owned by the Tree and mutated only through it.
type Element struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"` // container, panel, card, button, ...
	Tags     map[string]float64 `json:"tags"`
	ParentID string             `json:"parent_id,omitempty"`
	Children []string           `json:"children,omitempty"`
}

// #endregion element
