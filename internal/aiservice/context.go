package aiservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

// weightTrendWindow bounds how far back weight records count toward the
// trend computation.
const weightTrendWindow = 30 * 24 * time.Hour

const lbsPerKg = 0.453592

// CallerInfo identifies who a prompt is being built for.
type CallerInfo struct {
	ID   string
	Name string
}

// WeightTrend summarizes recent weight direction. Only defined when at
// least two records fall inside the trend window.
type WeightTrend struct {
	ChangeKg  float64 `json:"change_kg"`
	Direction string  `json:"direction"` // gaining | losing | stable
}

// HealthSnapshot is the profile-derived slice of an aggregated context.
// Pointer fields are nil when the underlying datum is missing; derived
// values (BMI, trend) are nil rather than guessed when inputs are absent.
type HealthSnapshot struct {
	Age              *int32
	Gender           string
	HeightCm         *float64
	CurrentWeightKg  *float64
	TargetWeightKg   *float64
	BMI              *float64
	ActivityLevel    string
	ExperienceLevel  string
	WorkoutFrequency *int32

	FitnessGoals        []string
	DietaryRestrictions []string
	Allergies           []string
	MedicalConditions   []string
	Injuries            []string

	WeightTrend *WeightTrend
}

// ActivityStats aggregates a caller's lifetime logged activity.
type ActivityStats struct {
	TotalWorkouts         int64
	TotalMeals            int64
	TotalCaloriesBurned   int64
	AvgCaloriesPerWorkout int64
	TypePreference        string // cardio | resistance | balanced
}

// AggregatedContext is everything the prompt composer may draw on for one
// request. Optional sections are nil when not requested or not available.
type AggregatedContext struct {
	Caller         CallerInfo
	Health         *HealthSnapshot
	Stats          *ActivityStats
	RecentWorkouts []database.Workout
	RecentMeals    []database.Meal
}

// Aggregator fetches and assembles AggregatedContexts from storage.
type Aggregator struct {
	q *database.Queries
}

func NewAggregator(q *database.Queries) *Aggregator {
	return &Aggregator{q: q}
}

// fetchSpec names the optional sections one request kind needs.
type fetchSpec struct {
	recentWorkouts int32
	mealsSince     time.Duration
	workoutsSince  time.Duration
	includeStats   bool
}

// BuildForWorkout gathers the context behind a workout suggestion: profile,
// weight trend, the last few sessions, and lifetime stats.
func (a *Aggregator) BuildForWorkout(ctx context.Context, userID string) (AggregatedContext, error) {
	return a.build(ctx, userID, fetchSpec{recentWorkouts: 3, includeStats: true})
}

// BuildForMeal gathers the context behind a meal suggestion: profile
// (dietary restrictions and allergies matter most) plus today's meals.
func (a *Aggregator) BuildForMeal(ctx context.Context, userID string) (AggregatedContext, error) {
	return a.build(ctx, userID, fetchSpec{mealsSince: 24 * time.Hour})
}

// BuildForWeeklySummary gathers a full week of workouts and meals plus
// lifetime stats.
func (a *Aggregator) BuildForWeeklySummary(ctx context.Context, userID string) (AggregatedContext, error) {
	return a.build(ctx, userID, fetchSpec{
		workoutsSince: 7 * 24 * time.Hour,
		mealsSince:    7 * 24 * time.Hour,
		includeStats:  true,
	})
}

// build fans the independent fetches out on an errgroup. A missing profile
// or empty history is not an error; a failed user lookup is, since without
// an account there is nobody to compose for.
func (a *Aggregator) build(ctx context.Context, userID string, spec fetchSpec) (AggregatedContext, error) {
	now := time.Now()

	var (
		user     database.User
		profile  *database.HealthProfile
		weights  []database.WeightRecord
		workouts []database.Workout
		meals    []database.Meal
		stats    *ActivityStats
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := a.q.GetUserByID(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetching user: %w", err)
		}
		user = u
		return nil
	})

	g.Go(func() error {
		p, err := a.q.GetHealthProfile(gctx, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetching health profile: %w", err)
		}
		profile = &p
		return nil
	})

	g.Go(func() error {
		w, err := a.q.GetWeightHistory(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetching weight history: %w", err)
		}
		weights = w
		return nil
	})

	if spec.recentWorkouts > 0 {
		g.Go(func() error {
			w, err := a.q.ListRecentWorkouts(gctx, database.ListRecentWorkoutsParams{
				UserID: userID,
				Limit:  spec.recentWorkouts,
			})
			if err != nil {
				return fmt.Errorf("fetching recent workouts: %w", err)
			}
			workouts = w
			return nil
		})
	}

	if spec.workoutsSince > 0 {
		g.Go(func() error {
			w, err := a.q.ListWorkoutsSince(gctx, database.ListWorkoutsSinceParams{
				UserID: userID,
				Since:  now.Add(-spec.workoutsSince),
			})
			if err != nil {
				return fmt.Errorf("fetching workouts: %w", err)
			}
			workouts = w
			return nil
		})
	}

	if spec.mealsSince > 0 {
		g.Go(func() error {
			m, err := a.q.ListMealsSince(gctx, database.ListMealsSinceParams{
				UserID: userID,
				Since:  now.Add(-spec.mealsSince),
			})
			if err != nil {
				return fmt.Errorf("fetching meals: %w", err)
			}
			meals = m
			return nil
		})
	}

	if spec.includeStats {
		g.Go(func() error {
			row, err := a.q.GetWorkoutStats(gctx, userID)
			if err != nil {
				return fmt.Errorf("fetching workout stats: %w", err)
			}
			mealCount, err := a.q.GetMealCount(gctx, userID)
			if err != nil {
				return fmt.Errorf("fetching meal count: %w", err)
			}
			stats = NewActivityStats(row, mealCount)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return AggregatedContext{}, err
	}

	agg := BuildContext(CallerInfo{ID: user.UserID, Name: user.Name}, profile, weights, workouts, meals, stats, now)
	log.Debug().
		Str("user_id", userID).
		Bool("has_profile", agg.Health != nil).
		Int("workouts", len(agg.RecentWorkouts)).
		Int("meals", len(agg.RecentMeals)).
		Msg("Aggregated AI context")
	return agg, nil
}

// BuildContext assembles an AggregatedContext from already-fetched records.
// It is pure so the derivations (BMI, trend, preference) are testable
// without a database.
func BuildContext(caller CallerInfo, profile *database.HealthProfile, weights []database.WeightRecord,
	workouts []database.Workout, meals []database.Meal, stats *ActivityStats, now time.Time) AggregatedContext {

	agg := AggregatedContext{
		Caller:         caller,
		Stats:          stats,
		RecentWorkouts: workouts,
		RecentMeals:    meals,
	}
	if profile != nil {
		agg.Health = buildHealthSnapshot(profile, weights, now)
	}
	return agg
}

func buildHealthSnapshot(p *database.HealthProfile, weights []database.WeightRecord, now time.Time) *HealthSnapshot {
	s := &HealthSnapshot{
		Age:                 p.Age,
		HeightCm:            p.HeightCm,
		CurrentWeightKg:     weightKg(p.CurrentWeight, p.WeightUnit),
		TargetWeightKg:      weightKg(p.TargetWeight, p.WeightUnit),
		ActivityLevel:       p.ActivityLevel,
		ExperienceLevel:     p.ExperienceLevel,
		WorkoutFrequency:    p.WorkoutFrequency,
		FitnessGoals:        sanitizeAll(p.FitnessGoals),
		DietaryRestrictions: sanitizeAll(p.DietaryRestrictions),
		Allergies:           sanitizeAll(p.Allergies),
		WeightTrend:         ComputeWeightTrend(weights, now),
	}
	if p.Gender != nil {
		s.Gender = Sanitize(*p.Gender, 50)
	}
	s.BMI = ComputeBMI(s.CurrentWeightKg, p.HeightCm)

	for _, c := range p.MedicalConditions {
		entry := c.Condition
		if c.Severity != "" {
			entry += " (" + c.Severity + ")"
		}
		s.MedicalConditions = append(s.MedicalConditions, Sanitize(entry, 200))
	}
	for _, inj := range p.Injuries {
		entry := inj.Description
		if inj.RecoveryStatus != "" {
			entry += " (" + inj.RecoveryStatus + ")"
		}
		s.Injuries = append(s.Injuries, Sanitize(entry, 200))
	}
	return s
}

// ComputeBMI returns weight / height² rounded to one decimal, or nil when
// either input is missing or non-positive.
func ComputeBMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *weightKg <= 0 || *heightCm <= 0 {
		return nil
	}
	meters := *heightCm / 100
	bmi := math.Round(*weightKg/(meters*meters)*10) / 10
	return &bmi
}

// ComputeWeightTrend derives direction from the oldest and newest records
// inside the trend window. Fewer than two records means no trend.
func ComputeWeightTrend(records []database.WeightRecord, now time.Time) *WeightTrend {
	cutoff := now.Add(-weightTrendWindow)

	var recent []database.WeightRecord
	for _, r := range records {
		if !r.RecordedAt.Before(cutoff) {
			recent = append(recent, r)
		}
	}
	if len(recent) < 2 {
		return nil
	}

	oldest, newest := recent[0], recent[0]
	for _, r := range recent[1:] {
		if r.RecordedAt.Before(oldest.RecordedAt) {
			oldest = r
		}
		if r.RecordedAt.After(newest.RecordedAt) {
			newest = r
		}
	}

	// Direction comes from the raw delta; rounding applies to the
	// displayed change only, so a 0.04 kg gain still reads as gaining.
	change := recordKg(newest) - recordKg(oldest)
	trend := &WeightTrend{ChangeKg: math.Round(change*10) / 10}
	switch {
	case change > 0:
		trend.Direction = "gaining"
	case change < 0:
		trend.Direction = "losing"
	default:
		trend.Direction = "stable"
	}
	return trend
}

// NewActivityStats derives the prompt-facing stats from the raw aggregate
// row. Shared with the workout stats endpoint.
func NewActivityStats(row database.WorkoutStatsRow, mealCount int64) *ActivityStats {
	s := &ActivityStats{
		TotalWorkouts:       row.TotalWorkouts,
		TotalMeals:          mealCount,
		TotalCaloriesBurned: row.TotalCaloriesBurned,
		TypePreference:      classifyPreference(row.CardioCount, row.ResistanceCount),
	}
	if row.TotalWorkouts > 0 {
		s.AvgCaloriesPerWorkout = int64(math.Round(float64(row.TotalCaloriesBurned) / float64(row.TotalWorkouts)))
	}
	return s
}

// classifyPreference picks the majority workout type; ties are balanced.
func classifyPreference(cardio, resistance int64) string {
	switch {
	case cardio > resistance:
		return "cardio"
	case resistance > cardio:
		return "resistance"
	default:
		return "balanced"
	}
}

func weightKg(w *float64, unit string) *float64 {
	if w == nil {
		return nil
	}
	kg := *w
	if unit == "lbs" {
		kg = math.Round(kg*lbsPerKg*10) / 10
	}
	return &kg
}

func recordKg(r database.WeightRecord) float64 {
	if r.Unit == "lbs" {
		return r.Weight * lbsPerKg
	}
	return r.Weight
}

func sanitizeAll(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := Sanitize(item, 100); s != "" {
			out = append(out, s)
		}
	}
	return out
}
