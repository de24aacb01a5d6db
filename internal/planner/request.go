package planner

// GenerationRequest carries the patient context for one weekly-plan
// generation call. It is read-only to the pipeline: every call builds its
// own prompt from it and never mutates it.
type GenerationRequest struct {
	Name           string   `json:"name"`
	Surname        string   `json:"surname"`
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	HeightCm       float64  `json:"height_cm"`
	WeightKg       float64  `json:"weight_kg"`
	TargetCalories int      `json:"target_calories"`
	Goal           string   `json:"goal"`
	MealsPerDay    int      `json:"meals_per_day"` // 3-6
	Restrictions   []string `json:"restrictions"`
	Allergies      []string `json:"allergies"`
	Notes          string   `json:"notes"`
}

// FoodRef identifies the food an alternatives request targets.
type FoodRef struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
	Calories int    `json:"calories"`
}

// AlternativesRequest asks for a pair of substitute suggestions for a food.
// Avoid lists names already suggested (or already on the plate) so the
// generator does not repeat them.
type AlternativesRequest struct {
	Food           FoodRef  `json:"food"`
	Avoid          []string `json:"avoid"`
	Age            int      `json:"age"`
	Sex            string   `json:"sex"`
	HeightCm       float64  `json:"height_cm"`
	WeightKg       float64  `json:"weight_kg"`
	TargetCalories int      `json:"target_calories"`
	Goal           string   `json:"goal"`
	Restrictions   []string `json:"restrictions"`
	Allergies      []string `json:"allergies"`
	Notes          string   `json:"notes"`
}

const (
	minMealsPerDay = 3
	maxMealsPerDay = 6

	defaultTargetCalories = 2000
)

// mealsPerDay clamps the requested meal count into the supported 3-6 range.
func (r GenerationRequest) mealsPerDay() int {
	switch {
	case r.MealsPerDay < minMealsPerDay:
		return minMealsPerDay
	case r.MealsPerDay > maxMealsPerDay:
		return maxMealsPerDay
	}
	return r.MealsPerDay
}

// targetCalories returns the requested daily total, defaulting when absent.
func (r GenerationRequest) targetCalories() int {
	if r.TargetCalories <= 0 {
		return defaultTargetCalories
	}
	return r.TargetCalories
}
