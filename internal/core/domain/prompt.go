package domain

// Prompt is a canned natural-language command sourced from the external
// Prompt API. The gateway treats it as an opaque filterable record; the
// only lifecycle owned here is the local favorite toggle.
type Prompt struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Command       string        `json:"command"`
	CloudProvider CloudProvider `json:"cloud_provider"`
	UserID        string        `json:"user_id,omitempty"`
	IsSystem      bool          `json:"is_system,omitempty"`
	IsFavorite    bool          `json:"is_favorite,omitempty"`
}
