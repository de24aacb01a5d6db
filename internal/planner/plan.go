// Package planner implements the diet-plan generation pipeline: prompt
// construction, model invocation through a tiered retry controller, repair
// of the model's frequently malformed JSON output, structural validation of
// the parsed result, and a deterministic fallback that guarantees a
// schema-conformant plan even when every model attempt fails.
package planner

// WeekDays lists the seven day keys of a complete plan, in week order.
// The model is instructed to use exactly these keys.
var WeekDays = [7]string{
	"Lunedì",
	"Martedì",
	"Mercoledì",
	"Giovedì",
	"Venerdì",
	"Sabato",
	"Domenica",
}

// WeeklyPlan maps each of the seven day names to that day's ordered meals.
type WeeklyPlan map[string][]Meal

// Meal is one scheduled eating occasion within a day.
type Meal struct {
	Name     string     `json:"name"`
	Time     string     `json:"time"`
	Calories int        `json:"calories"`
	Foods    []FoodItem `json:"foods"`
}

// FoodItem is a single food within a meal, with its substitute pair.
type FoodItem struct {
	Name         string            `json:"name"`
	Quantity     string            `json:"quantity"`
	Unit         string            `json:"unit"`
	Calories     int               `json:"calories"`
	Alternatives []FoodAlternative `json:"alternatives"`
}

// FoodAlternative is a substitute suggestion for a FoodItem.
type FoodAlternative struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Calories int    `json:"calories"`
}

// mealSlot is a fixed name/time pair used when synthesizing meals.
type mealSlot struct {
	name string
	time string
}

// mealSlotTable maps a meal count to its fixed slots. Snack slots are
// inserted between the three main meals as the count grows.
var mealSlotTable = map[int][]mealSlot{
	3: {
		{"Colazione", "08:00"},
		{"Pranzo", "13:00"},
		{"Cena", "20:00"},
	},
	4: {
		{"Colazione", "08:00"},
		{"Spuntino", "11:00"},
		{"Pranzo", "13:00"},
		{"Cena", "20:00"},
	},
	5: {
		{"Colazione", "08:00"},
		{"Spuntino", "11:00"},
		{"Pranzo", "13:00"},
		{"Merenda", "17:00"},
		{"Cena", "20:00"},
	},
	6: {
		{"Colazione", "08:00"},
		{"Spuntino", "11:00"},
		{"Pranzo", "13:00"},
		{"Merenda", "17:00"},
		{"Cena", "20:00"},
		{"Spuntino serale", "22:30"},
	},
}

// mealSlotsFor returns the slot list for a clamped meal count.
func mealSlotsFor(count int) []mealSlot {
	if count < minMealsPerDay {
		count = minMealsPerDay
	}
	if count > maxMealsPerDay {
		count = maxMealsPerDay
	}
	return mealSlotTable[count]
}
