package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries is the hand-written query layer over the pgx pool.
type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

/* ====================================================================
                              Users
==================================================================== */

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	const query = `
		INSERT INTO users (user_id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING user_id, name, email, password_hash, created_at`

	var u User
	err := q.pool.QueryRow(ctx, query, uuid.New().String(), arg.Name, arg.Email, arg.PasswordHash).
		Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const query = `
		SELECT user_id, name, email, password_hash, created_at
		FROM users WHERE email = $1`

	var u User
	err := q.pool.QueryRow(ctx, query, email).
		Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByID(ctx context.Context, userID string) (User, error) {
	const query = `
		SELECT user_id, name, email, password_hash, created_at
		FROM users WHERE user_id = $1`

	var u User
	err := q.pool.QueryRow(ctx, query, userID).
		Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

/* ====================================================================
                          Health profiles
==================================================================== */

func (q *Queries) GetHealthProfile(ctx context.Context, userID string) (HealthProfile, error) {
	const query = `
		SELECT user_id, age, gender, height_cm, current_weight, weight_unit,
		       target_weight, activity_level, experience_level, workout_frequency,
		       fitness_goals, dietary_restrictions, allergies,
		       medical_conditions, injuries, updated_at
		FROM health_profiles WHERE user_id = $1`

	var p HealthProfile
	err := q.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Age, &p.Gender, &p.HeightCm, &p.CurrentWeight, &p.WeightUnit,
		&p.TargetWeight, &p.ActivityLevel, &p.ExperienceLevel, &p.WorkoutFrequency,
		&p.FitnessGoals, &p.DietaryRestrictions, &p.Allergies,
		&p.MedicalConditions, &p.Injuries, &p.UpdatedAt,
	)
	return p, err
}

// UpsertHealthProfile writes the full profile row, creating it on first use.
func (q *Queries) UpsertHealthProfile(ctx context.Context, p HealthProfile) (HealthProfile, error) {
	const query = `
		INSERT INTO health_profiles (
			user_id, age, gender, height_cm, current_weight, weight_unit,
			target_weight, activity_level, experience_level, workout_frequency,
			fitness_goals, dietary_restrictions, allergies,
			medical_conditions, injuries, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, now())
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			height_cm = EXCLUDED.height_cm,
			current_weight = EXCLUDED.current_weight,
			weight_unit = EXCLUDED.weight_unit,
			target_weight = EXCLUDED.target_weight,
			activity_level = EXCLUDED.activity_level,
			experience_level = EXCLUDED.experience_level,
			workout_frequency = EXCLUDED.workout_frequency,
			fitness_goals = EXCLUDED.fitness_goals,
			dietary_restrictions = EXCLUDED.dietary_restrictions,
			allergies = EXCLUDED.allergies,
			medical_conditions = EXCLUDED.medical_conditions,
			injuries = EXCLUDED.injuries,
			updated_at = now()
		RETURNING user_id, age, gender, height_cm, current_weight, weight_unit,
		          target_weight, activity_level, experience_level, workout_frequency,
		          fitness_goals, dietary_restrictions, allergies,
		          medical_conditions, injuries, updated_at`

	var out HealthProfile
	err := q.pool.QueryRow(ctx, query,
		p.UserID, p.Age, p.Gender, p.HeightCm, p.CurrentWeight, p.WeightUnit,
		p.TargetWeight, p.ActivityLevel, p.ExperienceLevel, p.WorkoutFrequency,
		p.FitnessGoals, p.DietaryRestrictions, p.Allergies,
		p.MedicalConditions, p.Injuries,
	).Scan(
		&out.UserID, &out.Age, &out.Gender, &out.HeightCm, &out.CurrentWeight, &out.WeightUnit,
		&out.TargetWeight, &out.ActivityLevel, &out.ExperienceLevel, &out.WorkoutFrequency,
		&out.FitnessGoals, &out.DietaryRestrictions, &out.Allergies,
		&out.MedicalConditions, &out.Injuries, &out.UpdatedAt,
	)
	return out, err
}

type AddWeightRecordParams struct {
	UserID string
	Weight float64
	Unit   string
}

func (q *Queries) AddWeightRecord(ctx context.Context, arg AddWeightRecordParams) (WeightRecord, error) {
	const query = `
		INSERT INTO weight_history (record_id, user_id, weight, unit, recorded_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING record_id, user_id, weight, unit, recorded_at`

	var r WeightRecord
	err := q.pool.QueryRow(ctx, query, uuid.New().String(), arg.UserID, arg.Weight, arg.Unit).
		Scan(&r.RecordID, &r.UserID, &r.Weight, &r.Unit, &r.RecordedAt)
	return r, err
}

func (q *Queries) GetWeightHistory(ctx context.Context, userID string) ([]WeightRecord, error) {
	const query = `
		SELECT record_id, user_id, weight, unit, recorded_at
		FROM weight_history WHERE user_id = $1
		ORDER BY recorded_at DESC`

	rows, err := q.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []WeightRecord
	for rows.Next() {
		var r WeightRecord
		if err := rows.Scan(&r.RecordID, &r.UserID, &r.Weight, &r.Unit, &r.RecordedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

/* ====================================================================
                             Workouts
==================================================================== */

type CreateWorkoutParams struct {
	UserID          string
	WorkoutDate     time.Time
	WorkoutType     string
	Exercises       []Exercise
	DurationMinutes int32
	CaloriesBurned  int32
	Notes           string
}

func (q *Queries) CreateWorkout(ctx context.Context, arg CreateWorkoutParams) (Workout, error) {
	const query = `
		INSERT INTO workouts (workout_id, user_id, workout_date, workout_type,
		                      exercises, duration_minutes, calories_burned, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING workout_id, user_id, workout_date, workout_type,
		          exercises, duration_minutes, calories_burned, notes, created_at`

	var w Workout
	err := q.pool.QueryRow(ctx, query,
		uuid.New().String(), arg.UserID, arg.WorkoutDate, arg.WorkoutType,
		arg.Exercises, arg.DurationMinutes, arg.CaloriesBurned, arg.Notes,
	).Scan(&w.WorkoutID, &w.UserID, &w.WorkoutDate, &w.WorkoutType,
		&w.Exercises, &w.DurationMinutes, &w.CaloriesBurned, &w.Notes, &w.CreatedAt)
	return w, err
}

type ListRecentWorkoutsParams struct {
	UserID string
	Limit  int32
}

func (q *Queries) ListRecentWorkouts(ctx context.Context, arg ListRecentWorkoutsParams) ([]Workout, error) {
	const query = `
		SELECT workout_id, user_id, workout_date, workout_type,
		       exercises, duration_minutes, calories_burned, notes, created_at
		FROM workouts WHERE user_id = $1
		ORDER BY workout_date DESC
		LIMIT $2`

	rows, err := q.pool.Query(ctx, query, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

type ListWorkoutsSinceParams struct {
	UserID string
	Since  time.Time
}

func (q *Queries) ListWorkoutsSince(ctx context.Context, arg ListWorkoutsSinceParams) ([]Workout, error) {
	const query = `
		SELECT workout_id, user_id, workout_date, workout_type,
		       exercises, duration_minutes, calories_burned, notes, created_at
		FROM workouts WHERE user_id = $1 AND workout_date >= $2
		ORDER BY workout_date DESC`

	rows, err := q.pool.Query(ctx, query, arg.UserID, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkouts(rows)
}

func scanWorkouts(rows pgx.Rows) ([]Workout, error) {
	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.WorkoutID, &w.UserID, &w.WorkoutDate, &w.WorkoutType,
			&w.Exercises, &w.DurationMinutes, &w.CaloriesBurned, &w.Notes, &w.CreatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// WorkoutStatsRow aggregates a user's lifetime workout numbers in one round trip.
type WorkoutStatsRow struct {
	TotalWorkouts       int64
	TotalCaloriesBurned int64
	CardioCount         int64
	ResistanceCount     int64
}

func (q *Queries) GetWorkoutStats(ctx context.Context, userID string) (WorkoutStatsRow, error) {
	const query = `
		SELECT count(*),
		       COALESCE(sum(calories_burned), 0),
		       count(*) FILTER (WHERE workout_type = 'cardio'),
		       count(*) FILTER (WHERE workout_type = 'resistance')
		FROM workouts WHERE user_id = $1`

	var s WorkoutStatsRow
	err := q.pool.QueryRow(ctx, query, userID).
		Scan(&s.TotalWorkouts, &s.TotalCaloriesBurned, &s.CardioCount, &s.ResistanceCount)
	return s, err
}

/* ====================================================================
                               Meals
==================================================================== */

type CreateMealParams struct {
	UserID        string
	MealDate      time.Time
	Name          string
	FoodItems     []FoodItem
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
}

func (q *Queries) CreateMeal(ctx context.Context, arg CreateMealParams) (Meal, error) {
	const query = `
		INSERT INTO meals (meal_id, user_id, meal_date, name, food_items,
		                   total_calories, total_protein, total_carbs, total_fat, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		RETURNING meal_id, user_id, meal_date, name, food_items,
		          total_calories, total_protein, total_carbs, total_fat, created_at`

	var m Meal
	err := q.pool.QueryRow(ctx, query,
		uuid.New().String(), arg.UserID, arg.MealDate, arg.Name, arg.FoodItems,
		arg.TotalCalories, arg.TotalProtein, arg.TotalCarbs, arg.TotalFat,
	).Scan(&m.MealID, &m.UserID, &m.MealDate, &m.Name, &m.FoodItems,
		&m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFat, &m.CreatedAt)
	return m, err
}

func (q *Queries) ListMeals(ctx context.Context, userID string) ([]Meal, error) {
	const query = `
		SELECT meal_id, user_id, meal_date, name, food_items,
		       total_calories, total_protein, total_carbs, total_fat, created_at
		FROM meals WHERE user_id = $1
		ORDER BY meal_date DESC`

	rows, err := q.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeals(rows)
}

type ListMealsSinceParams struct {
	UserID string
	Since  time.Time
}

func (q *Queries) ListMealsSince(ctx context.Context, arg ListMealsSinceParams) ([]Meal, error) {
	const query = `
		SELECT meal_id, user_id, meal_date, name, food_items,
		       total_calories, total_protein, total_carbs, total_fat, created_at
		FROM meals WHERE user_id = $1 AND meal_date >= $2
		ORDER BY meal_date DESC`

	rows, err := q.pool.Query(ctx, query, arg.UserID, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeals(rows)
}

func scanMeals(rows pgx.Rows) ([]Meal, error) {
	var meals []Meal
	for rows.Next() {
		var m Meal
		if err := rows.Scan(&m.MealID, &m.UserID, &m.MealDate, &m.Name, &m.FoodItems,
			&m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFat, &m.CreatedAt); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (q *Queries) GetMealCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, `SELECT count(*) FROM meals WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
