package npc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/s76354m/dnd-ai-dm-sub001/internal/game/dice"
)

// GoldDrop defines the range of gold pieces an NPC can drop on defeat.
type GoldDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable defines the possible loot drops for an NPC template.
type LootTable struct {
	Gold  *GoldDrop  `yaml:"gold"`
	Items []ItemDrop `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all gold and item constraints hold;
// an empty loot table (no gold, no items) is valid.
func (lt *LootTable) Validate() error {
	if lt.Gold != nil {
		if lt.Gold.Min < 0 {
			return fmt.Errorf("loot table: gold min must be >= 0, got %d", lt.Gold.Min)
		}
		if lt.Gold.Min > lt.Gold.Max {
			return fmt.Errorf("loot table: gold min (%d) must be <= max (%d)", lt.Gold.Min, lt.Gold.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// LootItem represents a single item stack in a loot result.
type LootItem struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// LootResult holds the generated loot from a single defeated NPC.
type LootResult struct {
	Gold  int
	Items []LootItem
}

// LootAll rolls each table in order and merges the results into one haul,
// the shape a victorious party collects off the field.
//
// Postcondition: Gold is the sum of the individual table rolls; nil tables
// contribute nothing.
func LootAll(tables []*LootTable, src dice.Source) LootResult {
	var total LootResult
	for _, lt := range tables {
		if lt == nil {
			continue
		}
		r := GenerateLoot(*lt, src)
		total.Gold += r.Gold
		total.Items = append(total.Items, r.Items...)
	}
	return total
}

// GenerateLoot rolls loot from the given LootTable using src, so scripted
// sources give reproducible drops in tests.
//
// Precondition: lt must have passed Validate(); src must be non-nil.
// Postcondition: Gold is in [Gold.Min, Gold.Max] if gold is set; each item's
// Quantity is in [MinQty, MaxQty] for items that pass the chance roll.
func GenerateLoot(lt LootTable, src dice.Source) LootResult {
	var result LootResult

	if lt.Gold != nil && lt.Gold.Max > 0 {
		spread := lt.Gold.Max - lt.Gold.Min
		result.Gold = lt.Gold.Min
		if spread > 0 {
			result.Gold += src.Intn(spread + 1)
		}
	}

	for _, item := range lt.Items {
		// Chance is resolved on a d100: a 0.25 chance drops when the roll
		// lands in the lowest quarter.
		if src.Intn(100) >= int(item.Chance*100) {
			continue
		}
		qty := item.MinQty
		if spread := item.MaxQty - item.MinQty; spread > 0 {
			qty += src.Intn(spread + 1)
		}
		result.Items = append(result.Items, LootItem{
			ItemDefID:  item.ItemID,
			InstanceID: uuid.NewString(),
			Quantity:   qty,
		})
	}

	return result
}
