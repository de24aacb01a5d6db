package planner

import "strings"

// FoodCategory is the closed set of coarse food classes the fallback
// generator understands.
type FoodCategory int

const (
	CategoryOther FoodCategory = iota
	CategoryProtein
	CategoryGrain
	CategoryDairy
	CategoryFat
	CategoryVegetable
	CategoryFruit
	CategoryLegume
)

func (c FoodCategory) String() string {
	switch c {
	case CategoryProtein:
		return "protein"
	case CategoryGrain:
		return "grain"
	case CategoryDairy:
		return "dairy"
	case CategoryFat:
		return "fat"
	case CategoryVegetable:
		return "vegetable"
	case CategoryFruit:
		return "fruit"
	case CategoryLegume:
		return "legume"
	default:
		return "other"
	}
}

// categoryKeywords maps each category to the lowercase substrings that
// signal it. Categories are checked in the order listed in classifyOrder;
// legumes come before proteins so that tofu and soia land in the legume
// class rather than the generic protein one.
var categoryKeywords = map[FoodCategory][]string{
	CategoryLegume: {
		"lenticchie", "ceci", "fagioli", "piselli", "soia", "tofu", "legum",
	},
	CategoryProtein: {
		"pollo", "tacchino", "manzo", "vitello", "maiale", "pesce", "tonno",
		"salmone", "merluzzo", "orata", "branzino", "uovo", "uova", "bresaola",
		"prosciutto", "carne",
	},
	CategoryDairy: {
		"latte", "yogurt", "formaggio", "ricotta", "mozzarella", "grana",
		"parmigiano", "fiocchi di latte", "kefir",
	},
	CategoryFat: {
		"olio", "burro", "noci", "mandorle", "nocciole", "avocado", "semi di",
		"arachidi",
	},
	CategoryGrain: {
		"riso", "pasta", "pane", "farro", "orzo", "avena", "quinoa", "couscous",
		"patat", "cereali", "crackers", "fette biscottate", "gallette",
	},
	CategoryVegetable: {
		"insalata", "zucchine", "broccoli", "spinaci", "carote", "pomodor",
		"verdur", "finocchi", "melanzan", "peperon", "cavolo", "lattuga",
	},
	CategoryFruit: {
		"mela", "pera", "banana", "arancia", "kiwi", "fragol", "frutt",
		"pesca", "uva", "albicocc", "anguria", "melone",
	},
}

var classifyOrder = []FoodCategory{
	CategoryLegume,
	CategoryProtein,
	CategoryDairy,
	CategoryFat,
	CategoryGrain,
	CategoryVegetable,
	CategoryFruit,
}

// ClassifyFood maps a food name to its coarse category by keyword match.
// Unrecognized names classify as CategoryOther, which routes the fallback
// generator to its generic qualifier suggestions.
func ClassifyFood(name string) FoodCategory {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return CategoryOther
	}
	for _, cat := range classifyOrder {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return CategoryOther
}
