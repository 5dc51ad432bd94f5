package domain

// Reward is an immutable catalog entry that can be bought with points.
type Reward struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	PointCost   int    `json:"point_cost" yaml:"point_cost"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// WasteType is a recyclable material accepted by the bins and what it earns.
type WasteType struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	PointValue int    `json:"point_value" yaml:"point_value"`
}
