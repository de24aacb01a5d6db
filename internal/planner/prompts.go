package planner

import (
	"fmt"
	"strings"
)

/* =================================================================================
                        PROMPT ENGINEERING & OUTPUT CONTRACT
=================================================================================*/

// WeeklySystemPrompt sets the persona and the structural contract for the
// weekly-plan generation call.
const WeeklySystemPrompt = `You are a professional dietitian's assistant that produces weekly diet plans.

RESPONSE FORMAT (CRITICAL):
- Return ONLY a single JSON object, no markdown, no preamble, no commentary.
- The object MUST have exactly these 7 keys, in Italian: "Lunedì", "Martedì", "Mercoledì", "Giovedì", "Venerdì", "Sabato", "Domenica".
- Each key maps to an array of meal objects:
  {"name": "Colazione", "time": "08:00", "calories": 450, "foods": [...]}
- Each food object:
  {"name": "...", "quantity": "80", "unit": "g", "calories": 300, "alternatives": [...]}
- Each food carries EXACTLY 2 alternatives, each:
  {"name": "...", "quantity": "...", "unit": "...", "calories": ...}
- Use standard double quotes only. No trailing commas.`

// AlternativesSystemPrompt sets the contract for the substitute-pair call.
const AlternativesSystemPrompt = `You are a professional dietitian's assistant that suggests food substitutions.

RESPONSE FORMAT (CRITICAL):
- Return ONLY a JSON array of exactly 2 objects, no markdown, no commentary.
- Each object: {"name": "...", "quantity": "...", "unit": "...", "calories": ...}
- Calories must stay close to the original food's calories.
- Use standard double quotes only. No trailing commas.`

// BuildWeeklyPlanPrompt assembles the full-context prompt: complete patient
// profile, explicit rules, explicit structural instructions.
func BuildWeeklyPlanPrompt(req GenerationRequest) string {
	var b strings.Builder

	b.WriteString("PATIENT PROFILE:\n")
	if req.Name != "" || req.Surname != "" {
		fmt.Fprintf(&b, "- Patient: %s %s\n", req.Name, req.Surname)
	}
	if req.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d years\n", req.Age)
	}
	if req.Sex != "" {
		fmt.Fprintf(&b, "- Sex: %s\n", req.Sex)
	}
	if req.HeightCm > 0 {
		fmt.Fprintf(&b, "- Height: %.0f cm\n", req.HeightCm)
	}
	if req.WeightKg > 0 {
		fmt.Fprintf(&b, "- Weight: %.1f kg\n", req.WeightKg)
	}
	fmt.Fprintf(&b, "- Daily calorie target: %d kcal\n", req.targetCalories())
	if req.Goal != "" {
		fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	}
	fmt.Fprintf(&b, "- Meals per day: %d\n", req.mealsPerDay())
	b.WriteString("\n")

	if len(req.Restrictions) > 0 {
		fmt.Fprintf(&b, "DIETARY RESTRICTIONS: %s\n", strings.Join(req.Restrictions, ", "))
	}
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "ALLERGIES (NEVER include these): %s\n", strings.Join(req.Allergies, ", "))
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "NOTES FROM THE DIETITIAN: %s\n", req.Notes)
	}
	b.WriteString("\n")

	b.WriteString("RULES:\n")
	fmt.Fprintf(&b, "1. Produce all 7 days with exactly %d meals per day.\n", req.mealsPerDay())
	fmt.Fprintf(&b, "2. The sum of meal calories for a day must approximate %d kcal.\n", req.targetCalories())
	b.WriteString("3. Each meal's declared calories must approximate the sum of its foods' calories.\n")
	b.WriteString("4. Every food must carry exactly 2 realistic alternatives of similar calories.\n")
	b.WriteString("5. Vary foods across the week; respect restrictions and allergies strictly.\n")
	b.WriteString("6. Use Italian food names and gram-based quantities where sensible.\n\n")

	b.WriteString("Generate the weekly plan now. JSON only.")
	return b.String()
}

// BuildAlternativesPrompt assembles the full-context prompt for the
// substitute pair, including the patient subset and the avoid list.
func BuildAlternativesPrompt(req AlternativesRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TARGET FOOD: %s", req.Food.Name)
	if req.Food.Quantity != "" || req.Food.Unit != "" {
		fmt.Fprintf(&b, " (%s %s)", req.Food.Quantity, req.Food.Unit)
	}
	fmt.Fprintf(&b, ", %d kcal\n\n", req.Food.Calories)

	b.WriteString("PATIENT CONTEXT:\n")
	if req.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d, Sex: %s\n", req.Age, req.Sex)
	}
	if req.HeightCm > 0 && req.WeightKg > 0 {
		fmt.Fprintf(&b, "- Height: %.0f cm, Weight: %.1f kg\n", req.HeightCm, req.WeightKg)
	}
	if req.TargetCalories > 0 {
		fmt.Fprintf(&b, "- Daily calorie target: %d kcal\n", req.TargetCalories)
	}
	if req.Goal != "" {
		fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	}
	if len(req.Restrictions) > 0 {
		fmt.Fprintf(&b, "- Restrictions: %s\n", strings.Join(req.Restrictions, ", "))
	}
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "- Allergies (NEVER suggest these): %s\n", strings.Join(req.Allergies, ", "))
	}
	if req.Notes != "" {
		fmt.Fprintf(&b, "- Notes: %s\n", req.Notes)
	}
	b.WriteString("\n")

	if len(req.Avoid) > 0 {
		fmt.Fprintf(&b, "DO NOT SUGGEST (already proposed): %s\n\n", strings.Join(req.Avoid, ", "))
	}

	b.WriteString("Suggest exactly 2 substitutes with similar calories and the same role in the meal. JSON array only.")
	return b.String()
}

// BuildReducedAlternativesPrompt is the second-tier prompt: only the
// essential food, allergy and avoid-list context survives, dropping the
// verbose profile and formatting instructions that may have pushed the
// first attempt over the output limit.
func BuildReducedAlternativesPrompt(req AlternativesRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest 2 substitutes for: %s (%d kcal).\n", req.Food.Name, req.Food.Calories)
	if len(req.Allergies) > 0 {
		fmt.Fprintf(&b, "Never suggest: %s.\n", strings.Join(req.Allergies, ", "))
	}
	if len(req.Avoid) > 0 {
		fmt.Fprintf(&b, "Exclude: %s.\n", strings.Join(req.Avoid, ", "))
	}
	b.WriteString(`JSON array of 2 objects {"name","quantity","unit","calories"} only.`)
	return b.String()
}
