package planner

import (
	"fmt"
	"math/rand"
	"strings"
)

// caloriePerturbation bounds the random adjustment applied to placeholder
// alternative calories, as a fraction of the original value.
const caloriePerturbation = 0.10

// categoryPools holds the named suggestions the fallback generator draws
// from, per category. Pool entries are concrete foods a dietitian would
// plausibly swap in.
var categoryPools = map[FoodCategory][]string{
	CategoryProtein: {
		"Tacchino", "Merluzzo", "Uova sode", "Manzo magro", "Tonno al naturale", "Tofu",
	},
	CategoryGrain: {
		"Riso integrale", "Farro", "Orzo perlato", "Quinoa", "Pane di segale",
	},
	CategoryDairy: {
		"Yogurt greco", "Ricotta", "Fiocchi di latte", "Kefir",
	},
	CategoryFat: {
		"Mandorle", "Noci", "Avocado", "Semi di zucca",
	},
	CategoryVegetable: {
		"Zucchine grigliate", "Broccoli al vapore", "Spinaci", "Finocchi",
	},
	CategoryFruit: {
		"Mela", "Pera", "Kiwi", "Arancia",
	},
	CategoryLegume: {
		"Lenticchie", "Ceci", "Fagioli cannellini", "Piselli",
	},
}

// genericQualifiers produce suggestions when no category pool applies or
// the avoid list exhausts the pool.
var genericQualifiers = []string{"biologico", "integrale", "fresco", "di stagione"}

// FallbackWeeklyPlan builds a complete 7-day plan from arithmetic alone:
// the requested meal count from the fixed slot table, each meal at
// floor(target/mealCount) calories, one placeholder food per meal with two
// same-calorie alternatives. It makes no external call and always succeeds.
func FallbackWeeklyPlan(req GenerationRequest) WeeklyPlan {
	plan := make(WeeklyPlan, len(WeekDays))
	for _, day := range WeekDays {
		plan[day] = synthesizeDay(req)
	}
	return plan
}

// synthesizeDay builds one placeholder day for the request. Shared between
// the fallback generator and the structural validator's gap patching.
func synthesizeDay(req GenerationRequest) []Meal {
	slots := mealSlotsFor(req.mealsPerDay())
	perMeal := req.targetCalories() / len(slots)

	meals := make([]Meal, 0, len(slots))
	for _, slot := range slots {
		meals = append(meals, Meal{
			Name:     slot.name,
			Time:     slot.time,
			Calories: perMeal,
			Foods: []FoodItem{
				{
					Name:     "Pasto bilanciato a scelta",
					Quantity: "1",
					Unit:     "porzione",
					Calories: perMeal,
					Alternatives: []FoodAlternative{
						{Name: "Alternativa equivalente 1", Quantity: "1", Unit: "porzione", Calories: perMeal},
						{Name: "Alternativa equivalente 2", Quantity: "1", Unit: "porzione", Calories: perMeal},
					},
				},
			},
		})
	}
	return meals
}

// FallbackAlternatives picks two category-appropriate substitutes for the
// target food without calling the model. The avoid list (and the food
// itself) is never suggested; when the category pool runs dry the generic
// qualifier suggestions fill the pair. Calories are perturbed by up to
// ±10% of the original for plausibility.
func FallbackAlternatives(req AlternativesRequest) []FoodAlternative {
	avoided := make(map[string]bool, len(req.Avoid)+1)
	avoided[strings.ToLower(strings.TrimSpace(req.Food.Name))] = true
	for _, name := range req.Avoid {
		avoided[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var names []string
	for _, candidate := range categoryPools[ClassifyFood(req.Food.Name)] {
		if avoided[strings.ToLower(candidate)] {
			continue
		}
		names = append(names, candidate)
		if len(names) == alternativesPerFood {
			break
		}
	}
	for _, qualifier := range genericQualifiers {
		if len(names) == alternativesPerFood {
			break
		}
		generic := fmt.Sprintf("%s %s", req.Food.Name, qualifier)
		if avoided[strings.ToLower(generic)] {
			continue
		}
		names = append(names, generic)
	}
	// An avoid list can exhaust both the pool and the qualifiers. Numbered
	// variants close the gap so the pair is always full.
	for n := 1; len(names) < alternativesPerFood; n++ {
		names = append(names, fmt.Sprintf("%s alternativa %d", req.Food.Name, n))
	}

	alts := make([]FoodAlternative, 0, alternativesPerFood)
	for _, name := range names {
		alts = append(alts, FoodAlternative{
			Name:     name,
			Quantity: defaultString(req.Food.Quantity, "1"),
			Unit:     defaultString(req.Food.Unit, "porzione"),
			Calories: perturbCalories(req.Food.Calories),
		})
	}
	return alts
}

// perturbCalories shifts a calorie value by a random amount within the
// perturbation bound. Exact values are not reproducible and do not need to
// be; only the bound matters.
func perturbCalories(calories int) int {
	if calories <= 0 {
		return calories
	}
	factor := 1 + (rand.Float64()*2-1)*caloriePerturbation
	perturbed := int(float64(calories) * factor)
	if perturbed < 1 {
		perturbed = 1
	}
	return perturbed
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
