// Package catalog holds the reward and waste-type tables the program runs on.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/owaste/rewards-service/internal/domain"
)

// Catalog is the immutable set of rewards and accepted waste types.
type Catalog struct {
	rewards    []domain.Reward
	wasteTypes []domain.WasteType
}

type fileFormat struct {
	Rewards    []domain.Reward    `yaml:"rewards"`
	WasteTypes []domain.WasteType `yaml:"waste_types"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		rewards: []domain.Reward{
			{ID: 1, Name: "Coffee Voucher", PointCost: 500, Description: "Free coffee at partner cafes", Icon: "☕"},
			{ID: 2, Name: "Shopping Discount", PointCost: 1000, Description: "10% off at eco-friendly stores", Icon: "🛍️"},
			{ID: 3, Name: "Plant a Tree", PointCost: 750, Description: "Plant a tree in your name", Icon: "🌱"},
			{ID: 4, Name: "Bus Pass", PointCost: 1500, Description: "1-day public transport pass", Icon: "🚌"},
		},
		wasteTypes: []domain.WasteType{
			{ID: "plastic", Name: "Plastic Bottles", PointValue: 50},
			{ID: "paper", Name: "Paper Waste", PointValue: 25},
			{ID: "metal", Name: "Metal Cans", PointValue: 75},
			{ID: "glass", Name: "Glass Bottles", PointValue: 60},
		},
	}
}

// New validates and builds a catalog.
func New(rewards []domain.Reward, wasteTypes []domain.WasteType) (*Catalog, error) {
	if len(wasteTypes) == 0 {
		return nil, errors.New("catalog: at least one waste type required")
	}
	rewardIDs := make(map[int]struct{}, len(rewards))
	for _, r := range rewards {
		if r.PointCost <= 0 {
			return nil, fmt.Errorf("catalog: reward %d has non-positive cost", r.ID)
		}
		if _, dup := rewardIDs[r.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate reward id %d", r.ID)
		}
		rewardIDs[r.ID] = struct{}{}
	}
	wasteIDs := make(map[string]struct{}, len(wasteTypes))
	for _, w := range wasteTypes {
		if w.ID == "" || w.PointValue <= 0 {
			return nil, fmt.Errorf("catalog: invalid waste type %q", w.ID)
		}
		if _, dup := wasteIDs[w.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate waste type %q", w.ID)
		}
		wasteIDs[w.ID] = struct{}{}
	}
	return &Catalog{
		rewards:    append([]domain.Reward(nil), rewards...),
		wasteTypes: append([]domain.WasteType(nil), wasteTypes...),
	}, nil
}

// LoadFile reads a YAML catalog. Sections missing from the file keep their
// built-in defaults.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	def := Default()
	if ff.Rewards == nil {
		ff.Rewards = def.rewards
	}
	if ff.WasteTypes == nil {
		ff.WasteTypes = def.wasteTypes
	}
	return New(ff.Rewards, ff.WasteTypes)
}

// Rewards returns a copy of the reward list in catalog order.
func (c *Catalog) Rewards() []domain.Reward {
	return append([]domain.Reward(nil), c.rewards...)
}

// WasteTypes returns a copy of the waste-type list in catalog order.
func (c *Catalog) WasteTypes() []domain.WasteType {
	return append([]domain.WasteType(nil), c.wasteTypes...)
}

// Reward looks up a reward by id.
func (c *Catalog) Reward(id int) (domain.Reward, bool) {
	for _, r := range c.rewards {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Reward{}, false
}

// WasteType looks up a waste type by id.
func (c *Catalog) WasteType(id string) (domain.WasteType, bool) {
	for _, w := range c.wasteTypes {
		if w.ID == id {
			return w, true
		}
	}
	return domain.WasteType{}, false
}
