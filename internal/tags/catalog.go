package tags

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region default-catalog

// DefaultCatalog returns the built-in tag catalog used when no external
// tags file is configured.
func DefaultCatalog() []Tag {
	return []Tag{
		// Style
		{Name: "sharp", Category: CategoryStyle, ConflictsWith: []string{"smooth", "soft"}},
		{Name: "smooth", Category: CategoryStyle, ConflictsWith: []string{"sharp", "harsh"}},
		{Name: "soft", Category: CategoryStyle, ConflictsWith: []string{"sharp", "harsh"}},
		{Name: "harsh", Category: CategoryStyle, ConflictsWith: []string{"smooth", "soft"}},
		{Name: "calm", Category: CategoryStyle, ConflictsWith: []string{"energetic", "vibrant"}},
		{Name: "energetic", Category: CategoryStyle, ConflictsWith: []string{"calm", "muted"}},

		// Layout
		{Name: "dense", Category: CategoryLayout, ConflictsWith: []string{"open", "spacious"}},
		{Name: "open", Category: CategoryLayout, ConflictsWith: []string{"dense", "compact"}},
		{Name: "spacious", Category: CategoryLayout, ConflictsWith: []string{"dense", "compact"}},
		{Name: "compact", Category: CategoryLayout, ConflictsWith: []string{"open", "spacious"}},
		{Name: "focused", Category: CategoryLayout, ConflictsWith: []string{"scattered"}},
		{Name: "minimal", Category: CategoryLayout, ConflictsWith: []string{"complex", "busy"}},

		// Density
		{Name: "light", Category: CategoryDensity, ConflictsWith: []string{"heavy", "thick"}},
		{Name: "heavy", Category: CategoryDensity, ConflictsWith: []string{"light", "thin"}},
		{Name: "thin", Category: CategoryDensity, ConflictsWith: []string{"heavy", "thick"}},
		{Name: "thick", Category: CategoryDensity, ConflictsWith: []string{"light", "thin"}},

		// Mood
		{Name: "relaxed", Category: CategoryMood, ConflictsWith: []string{"tense", "urgent"}},
		{Name: "alert", Category: CategoryMood, ConflictsWith: []string{"drowsy", "passive"}},
		{Name: "urgent", Category: CategoryMood, ConflictsWith: []string{"relaxed", "calm"}},
		{Name: "passive", Category: CategoryMood, ConflictsWith: []string{"alert", "active"}},
	}
}

// #endregion default-catalog

// #region load-catalog

// LoadCatalog reads a tag catalog from a JSON file.
func LoadCatalog(path string) ([]Tag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tag catalog: %w", err)
	}
	var catalog []Tag
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse tag catalog: %w", err)
	}
	return catalog, nil
}

// #endregion load-catalog
