package planner

import "encoding/json"

// alternativesPerFood is the number of substitute suggestions every
// alternatives result must contain.
const alternativesPerFood = 2

// BuildWeeklyPlan turns parsed weekly-plan JSON into a structurally
// complete plan. Every one of the seven day keys is guaranteed present and
// backed by a non-empty meal list: days the model omitted or returned in a
// malformed shape are replaced with synthesized placeholders. Per-meal food
// counts and calorie sums are deliberately not validated; the model is
// trusted for those finer details and downstream consumers may recompute.
func BuildWeeklyPlan(raw []byte, req GenerationRequest) (WeeklyPlan, int) {
	var byDay map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byDay); err != nil {
		byDay = nil
	}

	plan := make(WeeklyPlan, len(WeekDays))
	patched := 0
	for _, day := range WeekDays {
		rawDay, ok := byDay[day]
		if !ok {
			plan[day] = synthesizeDay(req)
			patched++
			continue
		}
		var meals []Meal
		if err := json.Unmarshal(rawDay, &meals); err != nil || len(meals) == 0 {
			plan[day] = synthesizeDay(req)
			patched++
			continue
		}
		plan[day] = meals
	}
	return plan, patched
}

// CoerceAlternatives forces a parsed alternatives list into exactly two
// complete entries: truncate extras, pad shortfalls with placeholders
// derived from the original food (calories perturbed within the fixed
// bound), and default any missing field from the original food's values.
func CoerceAlternatives(alts []FoodAlternative, food FoodRef) []FoodAlternative {
	if len(alts) > alternativesPerFood {
		alts = alts[:alternativesPerFood]
	}

	out := make([]FoodAlternative, 0, alternativesPerFood)
	for _, alt := range alts {
		out = append(out, fillAlternative(alt, food))
	}
	for len(out) < alternativesPerFood {
		out = append(out, FoodAlternative{
			Name:     food.Name,
			Quantity: defaultString(food.Quantity, "1"),
			Unit:     defaultString(food.Unit, "porzione"),
			Calories: perturbCalories(food.Calories),
		})
	}
	return out
}

// fillAlternative defaults each missing field from the original food.
func fillAlternative(alt FoodAlternative, food FoodRef) FoodAlternative {
	alt.Name = defaultString(alt.Name, food.Name)
	alt.Quantity = defaultString(alt.Quantity, defaultString(food.Quantity, "1"))
	alt.Unit = defaultString(alt.Unit, defaultString(food.Unit, "porzione"))
	if alt.Calories <= 0 {
		alt.Calories = food.Calories
	}
	return alt
}
