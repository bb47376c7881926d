package user

import (
	"math"
	"strings"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

// defaultBodyWeightKg stands in when the caller has no recorded weight.
const defaultBodyWeightKg = 70.0

// cardioMET maps activity keywords to MET values (Compendium of Physical
// Activities). Unmatched cardio falls back to a moderate 5.0.
var cardioMET = map[string]float64{
	"run":   9.8,
	"cycl":  7.5,
	"bike":  7.5,
	"swim":  8.0,
	"walk":  3.8,
	"hiit":  8.0,
	"row":   7.0,
	"climb": 8.8,
}

const (
	defaultCardioMET = 5.0
	resistanceMET    = 3.5

	// Volume heuristic for resistance sessions: kcal per kg of total
	// weight moved. Falls back to the MET formula when the result is
	// implausibly low (bodyweight sessions log zero volume).
	caloriesPerVolumeKg = 0.03
	resistanceFloorKcal = 50
)

// EstimateCalories approximates calories burned for a logged workout.
// Cardio uses MET x body weight x hours; resistance uses lifted volume
// with a MET fallback.
func EstimateCalories(workoutType string, exercises []database.Exercise, durationMinutes int32, bodyWeightKg float64) int32 {
	if durationMinutes <= 0 {
		return 0
	}
	if bodyWeightKg <= 0 {
		bodyWeightKg = defaultBodyWeightKg
	}
	hours := float64(durationMinutes) / 60

	if workoutType == "resistance" {
		volume := 0.0
		for _, ex := range exercises {
			volume += float64(ex.Sets) * float64(ex.Reps) * ex.Weight
		}
		kcal := volume * caloriesPerVolumeKg
		if kcal < resistanceFloorKcal {
			kcal = resistanceMET * bodyWeightKg * hours
		}
		return int32(math.Round(kcal))
	}

	// Take the most intense recognized activity; only unrecognized
	// sessions fall back to the default.
	met := 0.0
	for _, ex := range exercises {
		name := strings.ToLower(ex.Name)
		for keyword, m := range cardioMET {
			if strings.Contains(name, keyword) && m > met {
				met = m
			}
		}
	}
	if met == 0 {
		met = defaultCardioMET
	}
	return int32(math.Round(met * bodyWeightKg * hours))
}
