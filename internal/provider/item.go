// Package provider содержит общий формат элементов, которые возвращают
// внешние источники рекомендаций (AI-сервис, Spotify, YouTube).
package provider

// Item рекомендация в том виде, в каком её отдаёт провайдер.
// Необязательные поля нормализует оркестратор при сохранении.
type Item struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Link        string   `json:"link,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	ForMoods    []string `json:"forMoods,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}
