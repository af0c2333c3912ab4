package catalog

// MaterialCost is the quantity of one material needed to build a single unit of an item.
type MaterialCost struct {
	Material string `yaml:"material" json:"material"`
	Quantity int    `yaml:"quantity" json:"quantity"`
}

// Production describes what a module yields once built.
type Production struct {
	Power int `yaml:"power" json:"power"`
}

// PowerCost describes what a module consumes to operate.
type PowerCost struct {
	Power int `yaml:"power" json:"power"`
	Fuel  int `yaml:"fuel" json:"fuel"`
}

// Item is a single outpost module. Production and PowerCost are carried for
// display only and never take part in material aggregation.
type Item struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	MaterialCosts []MaterialCost `yaml:"materialCosts" json:"materialCosts"`
	Production    Production     `yaml:"production" json:"production"`
	PowerCost     PowerCost      `yaml:"powerCost" json:"powerCost"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	out := i
	if i.MaterialCosts != nil {
		out.MaterialCosts = make([]MaterialCost, len(i.MaterialCosts))
		copy(out.MaterialCosts, i.MaterialCosts)
	}
	return out
}

// Category groups items under a display heading.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

func (c Category) clone() Category {
	items := make([]Item, len(c.Items))
	for i, item := range c.Items {
		items[i] = item.Clone()
	}
	return Category{Name: c.Name, Items: items}
}
