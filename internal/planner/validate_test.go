package planner

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() GenerationRequest {
	return GenerationRequest{
		Name:           "Maria",
		Surname:        "Rossi",
		Age:            34,
		Sex:            "F",
		HeightCm:       168,
		WeightKg:       62,
		TargetCalories: 1800,
		Goal:           "mantenimento",
		MealsPerDay:    3,
	}
}

// sixDayPlanJSON builds a parsed-plan payload missing one day.
func sixDayPlanJSON(t *testing.T, missing string) []byte {
	t.Helper()
	byDay := map[string][]Meal{}
	for _, day := range WeekDays {
		if day == missing {
			continue
		}
		byDay[day] = []Meal{
			{Name: "Colazione", Time: "08:00", Calories: 600, Foods: []FoodItem{{Name: "Avena", Quantity: "80", Unit: "g", Calories: 600}}},
			{Name: "Pranzo", Time: "13:00", Calories: 600},
			{Name: "Cena", Time: "20:00", Calories: 600},
		}
	}
	raw, err := json.Marshal(byDay)
	require.NoError(t, err)
	return raw
}

func TestBuildWeeklyPlanSynthesizesMissingDay(t *testing.T) {
	req := testRequest()
	plan, patched := BuildWeeklyPlan(sixDayPlanJSON(t, "Domenica"), req)

	assert.Equal(t, 1, patched)
	require.Len(t, plan, 7)
	for _, day := range WeekDays {
		assert.Contains(t, plan, day)
	}

	// The synthesized day matches the requested meal count and carries
	// fair-share calories on its placeholder food.
	sunday := plan["Domenica"]
	require.Len(t, sunday, req.MealsPerDay)
	perMeal := req.TargetCalories / req.MealsPerDay
	for _, meal := range sunday {
		require.Len(t, meal.Foods, 1)
		assert.Equal(t, perMeal, meal.Foods[0].Calories)
		assert.Len(t, meal.Foods[0].Alternatives, 2)
	}

	// Days the model produced are passed through untouched.
	assert.Equal(t, "Avena", plan["Lunedì"][0].Foods[0].Name)
}

func TestBuildWeeklyPlanPatchesMalformedDay(t *testing.T) {
	raw := []byte(`{
		"Lunedì": "not an array",
		"Martedì": []
	}`)
	plan, patched := BuildWeeklyPlan(raw, testRequest())
	assert.Equal(t, 7, patched)
	require.Len(t, plan, 7)
	for _, day := range WeekDays {
		assert.NotEmpty(t, plan[day])
	}
}

func TestBuildWeeklyPlanUnparseableRoot(t *testing.T) {
	plan, patched := BuildWeeklyPlan([]byte(`[1, 2, 3]`), testRequest())
	assert.Equal(t, 7, patched)
	assert.Len(t, plan, 7)
}

func TestCoerceAlternativesTruncatesExtras(t *testing.T) {
	food := FoodRef{Name: "Pollo", Quantity: "150", Unit: "g", Calories: 165}
	alts := CoerceAlternatives([]FoodAlternative{
		{Name: "Tacchino", Quantity: "150", Unit: "g", Calories: 160},
		{Name: "Merluzzo", Quantity: "180", Unit: "g", Calories: 150},
		{Name: "Tofu", Quantity: "200", Unit: "g", Calories: 170},
	}, food)

	require.Len(t, alts, 2)
	assert.Equal(t, "Tacchino", alts[0].Name)
	assert.Equal(t, "Merluzzo", alts[1].Name)
}

func TestCoerceAlternativesPadsShortfall(t *testing.T) {
	food := FoodRef{Name: "Pollo", Quantity: "150", Unit: "g", Calories: 165}
	alts := CoerceAlternatives([]FoodAlternative{
		{Name: "Tacchino", Quantity: "150", Unit: "g", Calories: 160},
	}, food)

	require.Len(t, alts, 2)
	pad := alts[1]
	assert.Equal(t, "Pollo", pad.Name)
	assert.Equal(t, "150", pad.Quantity)
	assert.Equal(t, "g", pad.Unit)
	assert.InDelta(t, food.Calories, pad.Calories, float64(food.Calories)*caloriePerturbation+1)
}

func TestCoerceAlternativesFillsMissingFields(t *testing.T) {
	food := FoodRef{Name: "Pollo", Quantity: "150", Unit: "g", Calories: 165}
	alts := CoerceAlternatives([]FoodAlternative{
		{Name: "Tacchino"},
		{Calories: 170},
	}, food)

	require.Len(t, alts, 2)
	for i, alt := range alts {
		assert.NotEmpty(t, alt.Name, fmt.Sprintf("entry %d name", i))
		assert.NotEmpty(t, alt.Quantity)
		assert.NotEmpty(t, alt.Unit)
		assert.Positive(t, alt.Calories)
	}
	assert.Equal(t, "Tacchino", alts[0].Name)
	assert.Equal(t, 165, alts[0].Calories)
	assert.Equal(t, "Pollo", alts[1].Name)
	assert.Equal(t, 170, alts[1].Calories)
}

func TestCoerceAlternativesFromEmpty(t *testing.T) {
	food := FoodRef{Name: "Riso", Calories: 130}
	alts := CoerceAlternatives(nil, food)
	require.Len(t, alts, 2)
	for _, alt := range alts {
		assert.NotEmpty(t, alt.Name)
		assert.NotEmpty(t, alt.Quantity)
		assert.NotEmpty(t, alt.Unit)
	}
}
