// Package youtube каталожный провайдер видео-рекомендаций (Data API v3).
package youtube

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"mindgarden/internal/provider"
)

const (
	defaultAPIURL = "https://www.googleapis.com"
	pageLimit     = 5
)

// moodQueries поисковые запросы под метку настроения; выбирается случайный
var moodQueries = map[string][]string{
	"joyful":    {"uplifting music", "happy meditation", "joyful yoga"},
	"happy":     {"positive affirmations", "happy bollywood dance", "cheerful music"},
	"calm":      {"calming meditation", "nature sounds", "peaceful music"},
	"relaxed":   {"guided relaxation", "gentle yoga", "relaxing Indian classical music"},
	"neutral":   {"mindfulness meditation", "ambient music", "breathing exercises"},
	"anxious":   {"anxiety relief meditation", "breathing techniques for anxiety", "calming sounds"},
	"stressed":  {"stress relief exercises", "guided imagery", "indian classical for stress"},
	"sad":       {"uplifting inspirational videos", "motivational speeches", "self-compassion meditation"},
	"depressed": {"depression relief meditation", "therapeutic music", "positive psychology exercises"},
}

// videoTypeKeywords слова в заголовке, определяющие тип элемента.
// Порядок фиксирован: первый совпавший тип выигрывает.
var videoTypeKeywords = []struct {
	Type     string
	Keywords []string
}{
	{"meditation", []string{"meditation", "mindfulness", "guided"}},
	{"activity", []string{"yoga", "workout", "exercise", "stretching"}},
	{"music", []string{"music", "playlist", "song"}},
	{"breathing", []string{"breathing", "pranayama"}},
	{"affirmation", []string{"affirmation", "positive", "mantra"}},
}

type Client struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client

	// rnd выбирает запрос из вариантов; подменяется в тестах.
	// *rand.Rand не потокобезопасен, доступ только под rndMu.
	rnd   *rand.Rand
	rndMu sync.Mutex
}

func New(apiKey string, timeout time.Duration) *Client {
	return &Client{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetRecommendations видео под настроение, отображённые в формат каталога
func (c *Client) GetRecommendations(ctx context.Context, moodLabel string) ([]provider.Item, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("youtube: API-ключ не настроен")
	}

	queries, ok := moodQueries[moodLabel]
	if !ok {
		queries = moodQueries["neutral"]
	}
	query := queries[c.pickIndex(len(queries))]

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("maxResults", fmt.Sprintf("%d", pageLimit))
	q.Set("key", c.APIKey)

	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		apiURL+"/youtube/v3/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: запрос поиска: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("youtube: статус %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("youtube: разбор ответа: %w", err)
	}

	items := make([]provider.Item, 0, len(parsed.Items))
	for _, video := range parsed.Items {
		if video.ID.VideoID == "" {
			continue
		}

		videoType := determineVideoType(video.Snippet.Title)
		imageURL := ""
		if video.Snippet.Thumbnails.Default.URL != "" {
			imageURL = video.Snippet.Thumbnails.Default.URL
		}

		items = append(items, provider.Item{
			Title:       video.Snippet.Title,
			Description: fmt.Sprintf("A video to help with your %s mood.", moodLabel),
			Type:        videoType,
			Link:        "https://www.youtube.com/watch?v=" + video.ID.VideoID,
			ImageURL:    imageURL,
			ForMoods:    []string{moodLabel, "neutral"},
			Tags:        []string{"video", "youtube", videoType},
			Duration:    "5 min",
		})
	}
	return items, nil
}

func (c *Client) pickIndex(n int) int {
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.rnd.Intn(n)
}

// determineVideoType тип по ключевым словам заголовка, по умолчанию video
func determineVideoType(title string) string {
	lower := strings.ToLower(title)
	for _, entry := range videoTypeKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(lower, keyword) {
				return entry.Type
			}
		}
	}
	return "video"
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}
