package database

import (
	"github.com/google/uuid"

	"mindgarden/internal/logging"
)

// SeedIfEmpty наполняет пустой каталог стартовыми рекомендациями и группами
func (r *Repository) SeedIfEmpty() error {
	count, err := r.CountRecommendations()
	if err != nil {
		return err
	}
	if count == 0 {
		for _, rec := range seedRecommendations {
			rec.ID = uuid.NewString()
			rec.Source = "seed"
			if err := r.AddRecommendation(rec); err != nil {
				return err
			}
		}
		logging.Info().Int("count", len(seedRecommendations)).Msg("🌱 Каталог рекомендаций заполнен")
	}

	groups, err := r.CountGroups()
	if err != nil {
		return err
	}
	if groups == 0 {
		for _, g := range seedGroups {
			g.ID = uuid.NewString()
			_, err := r.Db.db.Exec(`
				INSERT INTO community_groups (id, name, description, category)
				VALUES (?, ?, ?, ?)
			`, g.ID, g.Name, g.Description, g.Category)
			if err != nil {
				return err
			}
		}
		logging.Info().Int("count", len(seedGroups)).Msg("👥 Группы сообщества созданы")
	}

	return nil
}

var seedRecommendations = []Recommendation{
	{
		Title:       "Morning Meditation",
		Description: "Start your day with a 5-minute meditation to set a positive tone.",
		Type:        Meditation,
		ForMoods:    []MoodLabel{Anxious, Stressed, Neutral},
		Tags:        []string{"beginner", "morning"},
		Duration:    "5 min",
	},
	{
		Title:       "Bollywood Mood Lifter",
		Description: "Energetic songs to lift your spirits and get you moving.",
		Type:        Music,
		Link:        "https://open.spotify.com/playlist/37i9dQZF1DX6KPLbETVFRI",
		ForMoods:    []MoodLabel{Sad, Neutral, Depressed},
		Tags:        []string{"music", "bollywood"},
		Duration:    "30 min",
	},
	{
		Title:       "Yoga for Anxiety",
		Description: "Gentle yoga poses to help calm your mind and relieve anxiety.",
		Type:        Activity,
		Link:        "https://www.youtube.com/watch?v=hJbRpHZr_d0",
		ForMoods:    []MoodLabel{Anxious, Stressed},
		Tags:        []string{"yoga", "anxiety"},
		Duration:    "15 min",
	},
	{
		Title:       "4-7-8 Breathing Technique",
		Description: "A simple breathing exercise to help reduce stress and anxiety quickly.",
		Type:        Breathing,
		ForMoods:    []MoodLabel{Anxious, Stressed, Neutral},
		Tags:        []string{"breathing", "quick"},
		Duration:    "3 min",
	},
	{
		Title:       "Daily Positive Affirmations",
		Description: "Start your day with these powerful positive affirmations to boost your mood.",
		Type:        Affirmation,
		ForMoods:    []MoodLabel{Depressed, Sad, Neutral},
		Tags:        []string{"affirmation", "morning"},
		Duration:    "5 min",
	},
	{
		Title:       "Gratitude Journaling",
		Description: "Write down three things you are grateful for today.",
		Type:        Journaling,
		ForMoods:    []MoodLabel{Depressed, Sad, Neutral},
		Tags:        []string{"gratitude", "writing"},
		Duration:    "10 min",
	},
	{
		Title:       "Progressive Muscle Relaxation",
		Description: "Systematically tense and relax different muscle groups to reduce physical tension.",
		Type:        Meditation,
		ForMoods:    []MoodLabel{Stressed, Anxious},
		Tags:        []string{"relaxation", "physical"},
		Duration:    "15 min",
	},
	{
		Title:       "Classical Ragas for Peace",
		Description: "Traditional Indian classical music known for its calming properties.",
		Type:        Music,
		ForMoods:    []MoodLabel{Anxious, Neutral, Stressed},
		Tags:        []string{"indian", "classical"},
		Duration:    "20 min",
	},
	{
		Title:       "Nature Walk Mindfulness",
		Description: "Take a walk outside and practice mindfulness by engaging all your senses.",
		Type:        Activity,
		ForMoods:    []MoodLabel{Neutral, Sad, Anxious},
		Tags:        []string{"outdoors", "mindfulness"},
		Duration:    "30 min",
	},
	{
		Title:       "Evening Wind Down Routine",
		Description: "A sequence of activities to prepare your mind and body for restful sleep.",
		Type:        Activity,
		ForMoods:    []MoodLabel{Neutral, Stressed},
		Tags:        []string{"evening", "sleep"},
		Duration:    "20 min",
	},
}

var seedGroups = []CommunityGroup{
	{
		Name:        "Anxiety Support",
		Description: "A safe space to share experiences and coping strategies for anxiety.",
		Category:    "Mental Health",
	},
	{
		Name:        "Mindful Professionals",
		Description: "For working professionals seeking work-life balance and stress management.",
		Category:    "Professional",
	},
	{
		Name:        "Young Adults (18-25)",
		Description: "Navigating emotional wellness during college and early career years.",
		Category:    "Age Group",
	},
	{
		Name:        "Meditation Practice",
		Description: "Share meditation experiences, techniques, and progress with others.",
		Category:    "Practice",
	},
	{
		Name:        "Indian Wellness Traditions",
		Description: "Exploring Ayurveda, yoga, and traditional Indian approaches to mental wellness.",
		Category:    "Cultural",
	},
}
