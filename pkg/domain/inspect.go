package domain

// StackInfo is the introspection view of one registered stack.
type StackInfo struct {
	Stack    string        `json:"stack"`
	Features []FeatureInfo `json:"features"`
}

// FeatureInfo is the introspection view of a registered feature subtree.
type FeatureInfo struct {
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Actions     []ActionInfo  `json:"actions,omitempty"`
	Features    []FeatureInfo `json:"features,omitempty"`
}

// ActionInfo is the introspection view of a registered action.
type ActionInfo struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	AllowGuests bool   `json:"allow_guests,omitempty"`
	HasPrepare  bool   `json:"has_prepare,omitempty"`
}
