package game

type CargoType struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BasePrice     int     `json:"base_price"`
	WeightPerUnit int     `json:"weight_per_unit"`
	Volatility    float64 `json:"volatility"`
}

// CargoInventory maps cargo type id to units held. Zero entries are removed.
type CargoInventory map[string]int

func (c CargoInventory) Quantity(cargoID string) int {
	return c[cargoID]
}

func (c CargoInventory) Add(cargoID string, quantity int) {
	if quantity <= 0 {
		return
	}
	c[cargoID] += quantity
}

func (c CargoInventory) Remove(cargoID string, quantity int) bool {
	current, ok := c[cargoID]
	if !ok || quantity < 0 || current < quantity {
		return false
	}
	if current == quantity {
		delete(c, cargoID)
		return true
	}
	c[cargoID] = current - quantity
	return true
}

// TotalWeight ignores cargo ids missing from types.
func (c CargoInventory) TotalWeight(types map[string]CargoType) int {
	total := 0
	for id, qty := range c {
		if t, ok := types[id]; ok {
			total += t.WeightPerUnit * qty
		}
	}
	return total
}

func (c CargoInventory) Clone() map[string]int {
	out := make(map[string]int, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}
