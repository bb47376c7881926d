package aiservice

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/config"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
)

// Kind selects which prompt template a request uses.
type Kind string

const (
	KindWorkout       Kind = "workout"
	KindMeal          Kind = "meal"
	KindWeeklySummary Kind = "weekly_summary"
)

// promptTemplate is the data-only skeleton of one request kind: the role
// framing, the fallback instruction, formatting guidance, and how many
// history records get embedded. Adding a kind means adding an entry here,
// not new control flow downstream.
type promptTemplate struct {
	role               string
	defaultInstruction string
	outputGuidance     string
	workoutEmbedLimit  int
	mealEmbedLimit     int
}

var templates = map[Kind]promptTemplate{
	KindWorkout: {
		role:               "You are an expert personal trainer creating a safe, personalized workout plan.",
		defaultInstruction: "Provide a full workout program for today.",
		outputGuidance: "Respond with a structured workout plan: a short title, a warm-up, " +
			"a numbered list of exercises with sets/reps or duration, and a cool-down. " +
			"Respect every medical condition and injury listed above.",
		workoutEmbedLimit: 3,
	},
	KindMeal: {
		role:               "You are an expert nutritionist designing a realistic one-day meal plan.",
		defaultInstruction: "Suggest a meal plan for today.",
		outputGuidance: "Respond with breakfast, lunch, dinner and one snack. For each, list the " +
			"foods with portions and approximate calories. Strictly avoid every allergen and " +
			"dietary restriction listed above.",
		mealEmbedLimit: 10,
	},
	KindWeeklySummary: {
		role:               "You are a supportive fitness coach reviewing a client's past week.",
		defaultInstruction: "Summarize my week and suggest improvements.",
		outputGuidance: "Respond with three short sections: what went well, what to improve, " +
			"and one concrete goal for next week. Keep the tone encouraging and specific to the data.",
		workoutEmbedLimit: 10,
		mealEmbedLimit:    10,
	},
}

// ComposeInput carries everything the composer needs for one prompt.
type ComposeInput struct {
	Kind        Kind
	Context     AggregatedContext
	Instruction string

	// TargetCalories applies to meal prompts only; 0 means unspecified.
	TargetCalories int
}

// Composer renders AggregatedContexts into bounded, sanitized prompts.
type Composer struct {
	cfg config.PromptConfig
}

func NewComposer(cfg config.PromptConfig) *Composer {
	return &Composer{cfg: cfg}
}

// Compose renders one prompt. Every caller-influenced fragment passes
// through Sanitize with its own cap before embedding, and the assembled
// prompt is sanitized and capped once more at the end.
func (c *Composer) Compose(in ComposeInput) (string, error) {
	tpl, ok := templates[in.Kind]
	if !ok {
		return "", fmt.Errorf("unknown prompt kind %q", in.Kind)
	}

	instruction := Sanitize(in.Instruction, c.cfg.InstructionMax)
	if instruction == "" {
		instruction = tpl.defaultInstruction
	}

	var b strings.Builder
	b.WriteString(tpl.role)
	b.WriteString("\n\n")

	c.writeProfileSection(&b, in.Context.Caller, in.Context.Health)
	c.writeStatsSection(&b, in.Context.Stats)

	if tpl.workoutEmbedLimit > 0 {
		c.writeWorkoutHistory(&b, in.Context.RecentWorkouts, tpl.workoutEmbedLimit)
	}
	if tpl.mealEmbedLimit > 0 {
		c.writeMealHistory(&b, in.Context.RecentMeals, tpl.mealEmbedLimit)
	}
	if in.Kind == KindMeal {
		c.writeCalorieTarget(&b, in.TargetCalories, in.Context.Health)
	}

	b.WriteString("Request: ")
	b.WriteString(instruction)
	b.WriteString("\n\n")
	b.WriteString(tpl.outputGuidance)

	return Sanitize(b.String(), c.cfg.PayloadMax), nil
}

// ClampCalories bounds a requested calorie target to the configured safe
// range. Unspecified or non-positive targets fall back to 2000.
func (c *Composer) ClampCalories(target int) int {
	if target <= 0 {
		target = 2000
	}
	if target < c.cfg.CaloriesMin {
		return c.cfg.CaloriesMin
	}
	if target > c.cfg.CaloriesMax {
		return c.cfg.CaloriesMax
	}
	return target
}

func (c *Composer) writeProfileSection(b *strings.Builder, caller CallerInfo, h *HealthSnapshot) {
	name := Sanitize(caller.Name, 60)
	if h == nil {
		if name != "" {
			fmt.Fprintf(b, "Client: %s. Profile: not provided.\n\n", name)
		} else {
			b.WriteString("Client profile: not provided.\n\n")
		}
		return
	}

	b.WriteString("Client profile:\n")
	if name != "" {
		fmt.Fprintf(b, "- Name: %s\n", name)
	}
	if h.Age != nil {
		fmt.Fprintf(b, "- Age: %d\n", *h.Age)
	}
	if h.Gender != "" {
		fmt.Fprintf(b, "- Gender: %s\n", h.Gender)
	}
	if h.HeightCm != nil {
		fmt.Fprintf(b, "- Height: %.0f cm\n", *h.HeightCm)
	}
	if h.CurrentWeightKg != nil {
		fmt.Fprintf(b, "- Current weight: %.1f kg\n", *h.CurrentWeightKg)
	}
	if h.TargetWeightKg != nil {
		fmt.Fprintf(b, "- Target weight: %.1f kg\n", *h.TargetWeightKg)
	}
	if h.BMI != nil {
		fmt.Fprintf(b, "- BMI: %.1f\n", *h.BMI)
	}
	if h.WeightTrend != nil {
		fmt.Fprintf(b, "- Weight trend (30 days): %s (%+.1f kg)\n", h.WeightTrend.Direction, h.WeightTrend.ChangeKg)
	}
	if h.ExperienceLevel != "" {
		fmt.Fprintf(b, "- Experience level: %s\n", h.ExperienceLevel)
	}
	if h.ActivityLevel != "" {
		fmt.Fprintf(b, "- Activity level: %s\n", h.ActivityLevel)
	}
	if h.WorkoutFrequency != nil {
		fmt.Fprintf(b, "- Workout frequency: %d sessions/week\n", *h.WorkoutFrequency)
	}
	if len(h.FitnessGoals) > 0 {
		fmt.Fprintf(b, "- Goals: %s\n", strings.Join(h.FitnessGoals, ", "))
	}
	if len(h.DietaryRestrictions) > 0 {
		fmt.Fprintf(b, "- Dietary restrictions: %s\n", strings.Join(h.DietaryRestrictions, ", "))
	}
	if len(h.Allergies) > 0 {
		fmt.Fprintf(b, "- Allergies: %s\n", strings.Join(h.Allergies, ", "))
	}
	if len(h.MedicalConditions) > 0 {
		fmt.Fprintf(b, "- Medical conditions: %s\n", strings.Join(h.MedicalConditions, "; "))
	}
	if len(h.Injuries) > 0 {
		fmt.Fprintf(b, "- Injuries: %s\n", strings.Join(h.Injuries, "; "))
	}
	b.WriteString("\n")
}

func (c *Composer) writeStatsSection(b *strings.Builder, s *ActivityStats) {
	if s == nil {
		return
	}
	b.WriteString("Activity history:\n")
	fmt.Fprintf(b, "- Total workouts logged: %d\n", s.TotalWorkouts)
	fmt.Fprintf(b, "- Total meals logged: %d\n", s.TotalMeals)
	fmt.Fprintf(b, "- Total calories burned: %d\n", s.TotalCaloriesBurned)
	fmt.Fprintf(b, "- Average calories per workout: %d\n", s.AvgCaloriesPerWorkout)
	fmt.Fprintf(b, "- Workout type preference: %s\n", s.TypePreference)
	b.WriteString("\n")
}

// workoutEmbed and mealEmbed are the slimmed record shapes serialized into
// prompts; embedding full rows would blow the history budget on noise.
type workoutEmbed struct {
	Date      string   `json:"date"`
	Type      string   `json:"type"`
	Exercises []string `json:"exercises,omitempty"`
	Duration  int32    `json:"duration_min"`
	Calories  int32    `json:"calories"`
}

type mealEmbed struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein,omitempty"`
}

func (c *Composer) writeWorkoutHistory(b *strings.Builder, workouts []database.Workout, limit int) {
	if len(workouts) == 0 {
		b.WriteString("Recent workouts: none logged.\n\n")
		return
	}
	if len(workouts) > limit {
		workouts = workouts[:limit]
	}

	embeds := make([]workoutEmbed, 0, len(workouts))
	for _, w := range workouts {
		e := workoutEmbed{
			Date:     w.WorkoutDate.Format("2006-01-02"),
			Type:     w.WorkoutType,
			Duration: w.DurationMinutes,
			Calories: w.CaloriesBurned,
		}
		for _, ex := range w.Exercises {
			e.Exercises = append(e.Exercises, Sanitize(ex.Name, 60))
		}
		embeds = append(embeds, e)
	}
	b.WriteString("Recent workouts:\n")
	b.WriteString(embedJSON(embeds, c.cfg.HistoryEmbedMax))
	b.WriteString("\n\n")
}

func (c *Composer) writeMealHistory(b *strings.Builder, meals []database.Meal, limit int) {
	if len(meals) == 0 {
		b.WriteString("Recent meals: none logged.\n\n")
		return
	}
	if len(meals) > limit {
		meals = meals[:limit]
	}

	embeds := make([]mealEmbed, 0, len(meals))
	for _, m := range meals {
		embeds = append(embeds, mealEmbed{
			Date:     m.MealDate.Format("2006-01-02"),
			Name:     Sanitize(m.Name, 60),
			Calories: m.TotalCalories,
			Protein:  m.TotalProtein,
		})
	}
	b.WriteString("Recent meals:\n")
	b.WriteString(embedJSON(embeds, c.cfg.HistoryEmbedMax))
	b.WriteString("\n\n")
}

func (c *Composer) writeCalorieTarget(b *strings.Builder, target int, h *HealthSnapshot) {
	calories := c.ClampCalories(target)
	protein, carbs, fat := macroSplit(h)
	fmt.Fprintf(b, "Daily calorie target: %d kcal.\n", calories)
	fmt.Fprintf(b, "Macro split: %d%% protein, %d%% carbs, %d%% fat.\n\n", protein, carbs, fat)
}

// macroSplit picks macro percentages from the client's goals: more protein
// for muscle gain, fewer carbs for weight loss.
func macroSplit(h *HealthSnapshot) (protein, carbs, fat int) {
	protein, carbs, fat = 25, 45, 30
	if h == nil {
		return
	}
	if hasGoal(h.FitnessGoals, "muscle_gain") {
		protein = 30
	}
	if hasGoal(h.FitnessGoals, "weight_loss") {
		carbs = 35
	}
	return
}

func hasGoal(goals []string, goal string) bool {
	for _, g := range goals {
		if strings.EqualFold(g, goal) {
			return true
		}
	}
	return false
}

// embedJSON serializes records for embedding and bounds the result. The
// serialized block is sanitized like any other caller-influenced text.
func embedJSON(v any, maxLen int) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return Sanitize(string(data), maxLen)
}
