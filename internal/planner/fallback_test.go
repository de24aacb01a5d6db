package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackWeeklyPlanShape(t *testing.T) {
	req := testRequest()
	plan := FallbackWeeklyPlan(req)

	require.Len(t, plan, 7)
	for _, day := range WeekDays {
		meals := plan[day]
		require.Len(t, meals, req.MealsPerDay, day)
		for _, meal := range meals {
			assert.NotEmpty(t, meal.Name)
			assert.NotEmpty(t, meal.Time)
			require.Len(t, meal.Foods, 1)
			assert.Len(t, meal.Foods[0].Alternatives, 2)
		}
	}
}

func TestFallbackWeeklyPlanCalorieSplit(t *testing.T) {
	req := testRequest()
	req.TargetCalories = 2100
	req.MealsPerDay = 5

	plan := FallbackWeeklyPlan(req)
	perMeal := 2100 / 5
	for _, meal := range plan["Giovedì"] {
		assert.Equal(t, perMeal, meal.Calories)
		assert.Equal(t, perMeal, meal.Foods[0].Calories)
	}
}

func TestFallbackWeeklyPlanDefaults(t *testing.T) {
	plan := FallbackWeeklyPlan(GenerationRequest{})
	// Zero-valued requests get three meals at 2000 kcal total.
	require.Len(t, plan["Lunedì"], 3)
	assert.Equal(t, 2000/3, plan["Lunedì"][0].Calories)
}

func TestFallbackAlternativesDrawsFromCategoryPool(t *testing.T) {
	alts := FallbackAlternatives(AlternativesRequest{
		Food:  FoodRef{Name: "Pollo", Quantity: "150", Unit: "g", Calories: 165},
		Avoid: []string{"Pollo", "Tofu"},
	})

	require.Len(t, alts, 2)
	for _, alt := range alts {
		assert.Contains(t, categoryPools[CategoryProtein], alt.Name)
		assert.NotEqual(t, "Tofu", alt.Name)
		assert.NotEqual(t, "Pollo", alt.Name)
		assert.Equal(t, "150", alt.Quantity)
		assert.Equal(t, "g", alt.Unit)
	}
}

func TestFallbackAlternativesCaloriesWithinBound(t *testing.T) {
	req := AlternativesRequest{Food: FoodRef{Name: "Pollo", Calories: 165}}
	for i := 0; i < 50; i++ {
		for _, alt := range FallbackAlternatives(req) {
			assert.GreaterOrEqual(t, alt.Calories, 148)
			assert.LessOrEqual(t, alt.Calories, 181)
		}
	}
}

func TestFallbackAlternativesUnknownFoodUsesQualifiers(t *testing.T) {
	alts := FallbackAlternatives(AlternativesRequest{
		Food: FoodRef{Name: "Barretta misteriosa", Calories: 200},
	})

	require.Len(t, alts, 2)
	for _, alt := range alts {
		assert.True(t, strings.HasPrefix(alt.Name, "Barretta misteriosa "), alt.Name)
		assert.Equal(t, "1", alt.Quantity)
		assert.Equal(t, "porzione", alt.Unit)
	}
	assert.NotEqual(t, alts[0].Name, alts[1].Name)
}

func TestFallbackAlternativesExhaustedPoolFallsThrough(t *testing.T) {
	// Avoid the whole protein pool; the generic qualifiers must still
	// produce a full pair.
	avoid := append([]string{}, categoryPools[CategoryProtein]...)
	alts := FallbackAlternatives(AlternativesRequest{
		Food:  FoodRef{Name: "Pollo", Calories: 165},
		Avoid: avoid,
	})

	require.Len(t, alts, 2)
	for _, alt := range alts {
		assert.True(t, strings.HasPrefix(alt.Name, "Pollo "), alt.Name)
	}
}

// Even an avoid list covering the whole pool and every qualifier variant
// must not shrink the pair; numbered variants fill the remainder.
func TestFallbackAlternativesExhaustedQualifiersStillPairs(t *testing.T) {
	avoid := append([]string{}, categoryPools[CategoryProtein]...)
	for _, qualifier := range genericQualifiers {
		avoid = append(avoid, "Pollo "+qualifier)
	}
	alts := FallbackAlternatives(AlternativesRequest{
		Food:  FoodRef{Name: "Pollo", Quantity: "150", Unit: "g", Calories: 165},
		Avoid: avoid,
	})

	require.Len(t, alts, 2)
	assert.NotEqual(t, alts[0].Name, alts[1].Name)
	for _, alt := range alts {
		assert.NotEmpty(t, alt.Name)
		assert.Equal(t, "150", alt.Quantity)
		assert.Equal(t, "g", alt.Unit)
	}
}

func TestFallbackAlternativesAvoidIsCaseInsensitive(t *testing.T) {
	alts := FallbackAlternatives(AlternativesRequest{
		Food:  FoodRef{Name: "Pollo", Calories: 165},
		Avoid: []string{"  tacchino ", "MERLUZZO"},
	})

	require.Len(t, alts, 2)
	for _, alt := range alts {
		assert.NotEqual(t, "Tacchino", alt.Name)
		assert.NotEqual(t, "Merluzzo", alt.Name)
	}
}

func TestPerturbCalories(t *testing.T) {
	for i := 0; i < 100; i++ {
		got := perturbCalories(1000)
		assert.GreaterOrEqual(t, got, 900)
		assert.LessOrEqual(t, got, 1100)
	}
	assert.Equal(t, 0, perturbCalories(0))
	assert.Equal(t, -5, perturbCalories(-5))
	assert.GreaterOrEqual(t, perturbCalories(1), 1)
}
