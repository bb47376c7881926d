package user

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

func TestEstimateCaloriesCardio(t *testing.T) {
	exercises := []database.Exercise{{Name: "Morning Run", Duration: 30}}

	// 9.8 MET * 80 kg * 0.5 h = 392
	got := EstimateCalories("cardio", exercises, 30, 80)
	assert.Equal(t, int32(392), got)
}

func TestEstimateCaloriesCardioPicksMostIntenseActivity(t *testing.T) {
	exercises := []database.Exercise{
		{Name: "warmup walk"},
		{Name: "interval running"},
	}

	// Running (9.8) dominates walking (3.8): 9.8 * 70 * 1 = 686
	got := EstimateCalories("cardio", exercises, 60, 70)
	assert.Equal(t, int32(686), got)
}

func TestEstimateCaloriesCardioLowIntensityMatch(t *testing.T) {
	exercises := []database.Exercise{{Name: "evening walk"}}

	// A recognized low-intensity activity must not be bumped to the
	// default: 3.8 * 70 * 1 = 266
	got := EstimateCalories("cardio", exercises, 60, 70)
	assert.Equal(t, int32(266), got)
}

func TestEstimateCaloriesCardioUnknownActivity(t *testing.T) {
	exercises := []database.Exercise{{Name: "trampoline"}}

	// 5.0 MET default * 70 kg * 1 h = 350
	got := EstimateCalories("cardio", exercises, 60, 70)
	assert.Equal(t, int32(350), got)
}

func TestEstimateCaloriesResistanceVolume(t *testing.T) {
	exercises := []database.Exercise{
		{Name: "Squat", Sets: 5, Reps: 5, Weight: 100},    // 2500 kg volume
		{Name: "Bench Press", Sets: 3, Reps: 8, Weight: 60}, // 1440 kg volume
	}

	// (2500 + 1440) * 0.03 = 118.2 -> 118
	got := EstimateCalories("resistance", exercises, 45, 80)
	assert.Equal(t, int32(118), got)
}

func TestEstimateCaloriesResistanceFallsBackToMET(t *testing.T) {
	// Bodyweight training logs no volume, so the volume estimate would be
	// zero; the MET formula takes over: 3.5 * 70 * 0.5 = 122.5 -> 123
	exercises := []database.Exercise{{Name: "Push-ups", Sets: 5, Reps: 20}}

	got := EstimateCalories("resistance", exercises, 30, 70)
	assert.Equal(t, int32(123), got)
}

func TestEstimateCaloriesDefaultsBodyWeight(t *testing.T) {
	exercises := []database.Exercise{{Name: "swimming"}}

	// 8.0 MET * default 70 kg * 0.5 h = 280
	got := EstimateCalories("cardio", exercises, 30, 0)
	assert.Equal(t, int32(280), got)
}

func TestEstimateCaloriesZeroDuration(t *testing.T) {
	assert.Equal(t, int32(0), EstimateCalories("cardio", nil, 0, 80))
}
