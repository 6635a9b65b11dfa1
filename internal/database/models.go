package database

import "time"

type PlantLevel string

const (
	Seed   PlantLevel = "seed"
	Sprout PlantLevel = "sprout"
	Leaf   PlantLevel = "leaf"
	Flower PlantLevel = "flower"
	Tree   PlantLevel = "tree"
)

// PlantProgress процент роста растения для еженедельного отчёта
var PlantProgress = map[PlantLevel]int{
	Seed:   0,
	Sprout: 25,
	Leaf:   50,
	Flower: 75,
	Tree:   100,
}

var PlantEmojis = map[PlantLevel]string{
	Seed:   "🌰",
	Sprout: "🌱",
	Leaf:   "🌿",
	Flower: "🌸",
	Tree:   "🌳",
}

type MoodLabel string

// Метки настроения от самой позитивной к самой негативной
const (
	Joyful    MoodLabel = "joyful"
	Happy     MoodLabel = "happy"
	Calm      MoodLabel = "calm"
	Relaxed   MoodLabel = "relaxed"
	Neutral   MoodLabel = "neutral"
	Anxious   MoodLabel = "anxious"
	Stressed  MoodLabel = "stressed"
	Sad       MoodLabel = "sad"
	Depressed MoodLabel = "depressed"
)

var MoodLabels = []MoodLabel{
	Joyful, Happy, Calm, Relaxed, Neutral, Anxious, Stressed, Sad, Depressed,
}

func ValidMoodLabel(label string) bool {
	for _, m := range MoodLabels {
		if string(m) == label {
			return true
		}
	}
	return false
}

type RecommendationType string

const (
	Music       RecommendationType = "music"
	Video       RecommendationType = "video"
	Activity    RecommendationType = "activity"
	Breathing   RecommendationType = "breathing"
	Meditation  RecommendationType = "meditation"
	Affirmation RecommendationType = "affirmation"
	Journaling  RecommendationType = "journaling"
)

// User реестр пользователя: стрик, растение, токены.
// Version растёт на каждой записи и защищает от потерянных обновлений.
type User struct {
	ID           string     `json:"id"`
	Streak       int        `json:"streak"`
	LastCheckIn  *time.Time `json:"last_check_in,omitempty"`
	PlantLevel   PlantLevel `json:"plant_level"`
	TokenBalance int        `json:"token_balance"`
	Version      int64      `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MoodEntry запись настроения; после создания не изменяется
type MoodEntry struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	RecordedAt    time.Time  `json:"recorded_at"`
	MoodScore     int        `json:"mood_score"` // 1-10
	MoodLabel     MoodLabel  `json:"mood_label"`
	Transcription string     `json:"transcription,omitempty"`
	Sentiment     *Sentiment `json:"sentiment,omitempty"`
}

type Sentiment struct {
	Score    float64            `json:"score"` // [-1, 1]
	Label    string             `json:"label"`
	Emotions map[string]float64 `json:"emotions,omitempty"`
}

type Recommendation struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        RecommendationType `json:"type"`
	Link        string             `json:"link,omitempty"`
	ImageURL    string             `json:"image_url,omitempty"`
	ForMoods    []MoodLabel        `json:"for_moods"`
	Tags        []string           `json:"tags"`
	Duration    string             `json:"duration,omitempty"`
	Source      string             `json:"-"` // seed, aiservice, spotify, youtube
	CreatedAt   time.Time          `json:"created_at"`
}

// UserRecommendation рекомендация с отметкой выполнения для конкретного пользователя
type UserRecommendation struct {
	Recommendation
	Completed bool `json:"completed"`
}

type Report struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	WeekNumber         int       `json:"week_number"`
	Year               int       `json:"year"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	AverageMood        float64   `json:"average_mood"`
	StreakMaintained   bool      `json:"streak_maintained"`
	PlantProgress      int       `json:"plant_progress"` // 0, 25, 50, 75, 100
	CompletedRecsCount int       `json:"completed_recommendations"`
	GeneratedAt        time.Time `json:"generated_at"`
	URL                string    `json:"url,omitempty"`
}

type CommunityGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
