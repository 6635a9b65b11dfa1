package utils

import "mindgarden/internal/database"

var moodEmojis = map[database.MoodLabel]string{
	database.Joyful:    "😄",
	database.Happy:     "🙂",
	database.Calm:      "😌",
	database.Relaxed:   "🧘",
	database.Neutral:   "😐",
	database.Anxious:   "😰",
	database.Stressed:  "😫",
	database.Sad:       "😢",
	database.Depressed: "😞",
}

func GetMoodEmoji(label database.MoodLabel) string {
	if emoji, ok := moodEmojis[label]; ok {
		return emoji
	}
	return "🌀"
}

func GetPlantEmoji(level database.PlantLevel) string {
	if emoji, ok := database.PlantEmojis[level]; ok {
		return emoji
	}
	return database.PlantEmojis[database.Seed]
}
