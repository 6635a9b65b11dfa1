// Package spotify каталожный провайдер музыкальных рекомендаций.
package spotify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"mindgarden/internal/provider"
)

const (
	defaultAPIURL   = "https://api.spotify.com"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	maxSeedGenres   = 2 // Spotify принимает до 5 сидов суммарно, берём два жанра
	pageLimit       = 5
)

// moodMapping жанры и звуковые атрибуты под метку настроения
type moodMapping struct {
	Genres     []string
	Attributes map[string]float64
}

var moodMappings = map[string]moodMapping{
	"joyful":    {Genres: []string{"pop", "happy", "dance"}, Attributes: map[string]float64{"min_energy": 0.8, "min_valence": 0.8}},
	"happy":     {Genres: []string{"pop", "indie_pop", "feel-good"}, Attributes: map[string]float64{"min_energy": 0.6, "min_valence": 0.6}},
	"calm":      {Genres: []string{"ambient", "chill", "classical"}, Attributes: map[string]float64{"max_energy": 0.4, "min_valence": 0.5}},
	"relaxed":   {Genres: []string{"acoustic", "chill", "study"}, Attributes: map[string]float64{"max_energy": 0.5, "min_valence": 0.4}},
	"neutral":   {Genres: []string{"indie", "pop", "folk"}, Attributes: map[string]float64{"target_energy": 0.5, "target_valence": 0.5}},
	"anxious":   {Genres: []string{"ambient", "classical", "piano"}, Attributes: map[string]float64{"max_energy": 0.4, "max_tempo": 80}},
	"stressed":  {Genres: []string{"meditation", "ambient", "sleep"}, Attributes: map[string]float64{"max_energy": 0.3, "max_tempo": 70}},
	"sad":       {Genres: []string{"sad", "indie", "emotional"}, Attributes: map[string]float64{"max_energy": 0.5, "max_valence": 0.4}},
	"depressed": {Genres: []string{"chill", "ambient", "acoustic"}, Attributes: map[string]float64{"max_energy": 0.4, "max_valence": 0.3}},
}

type Client struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	TokenURL     string
	HTTPClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func New(clientID, clientSecret string, timeout time.Duration) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

// GetRecommendations треки под настроение, отображённые в формат каталога
func (c *Client) GetRecommendations(ctx context.Context, moodLabel string) ([]provider.Item, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("spotify: учётные данные не настроены")
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	mapping, ok := moodMappings[moodLabel]
	if !ok {
		mapping = moodMappings["neutral"]
	}

	q := url.Values{}
	q.Set("seed_genres", strings.Join(mapping.Genres[:maxSeedGenres], ","))
	q.Set("limit", strconv.Itoa(pageLimit))
	for attr, v := range mapping.Attributes {
		q.Set(attr, strconv.FormatFloat(v, 'f', -1, 64))
	}

	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		apiURL+"/v1/recommendations?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify: запрос рекомендаций: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("spotify: статус %d", resp.StatusCode)
	}

	var parsed recommendationsResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("spotify: разбор ответа: %w", err)
	}

	items := make([]provider.Item, 0, len(parsed.Tracks))
	for _, track := range parsed.Tracks {
		artist := ""
		var names []string
		for _, a := range track.Artists {
			names = append(names, a.Name)
		}
		if len(names) > 0 {
			artist = names[0]
		}

		imageURL := "/placeholder.svg"
		if len(track.Album.Images) > 0 {
			imageURL = track.Album.Images[0].URL
		}

		items = append(items, provider.Item{
			Title:       fmt.Sprintf("%s by %s", track.Name, artist),
			Description: fmt.Sprintf("A song to match your %s mood. Artist: %s", moodLabel, strings.Join(names, ", ")),
			Type:        "music",
			Link:        track.ExternalURLs.Spotify,
			ImageURL:    imageURL,
			ForMoods:    []string{moodLabel, "neutral"},
			Tags:        append([]string{"music", "spotify"}, mapping.Genres...),
			Duration:    msToMinSec(track.DurationMs),
		})
	}
	return items, nil
}

// token client-credentials токен с кэшем до истечения (запас 60 секунд)
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.ClientID, c.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify: запрос токена: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("spotify: токен не выдан, статус %d", resp.StatusCode)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("spotify: разбор токена: %w", err)
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn-60) * time.Second)
	return c.accessToken, nil
}

type recommendationsResponse struct {
	Tracks []struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
		Album struct {
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"album"`
		DurationMs int `json:"duration_ms"`
	} `json:"tracks"`
}

func msToMinSec(ms int) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
