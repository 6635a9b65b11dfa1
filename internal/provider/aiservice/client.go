// Package aiservice клиент AI-сервиса: персональные рекомендации,
// анализ настроения по голосу и расширенный рендеринг отчётов.
package aiservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"mindgarden/internal/logging"
	"mindgarden/internal/provider"
)

const defaultBaseURL = "http://localhost:8000"

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// breaker защищает путь рекомендаций: при лежащем сервисе
	// оркестратор сразу уходит на каталожные провайдеры
	breaker *gobreaker.CircuitBreaker[[]provider.Item]
}

func New(baseURL string, timeout time.Duration) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]provider.Item](gobreaker.Settings{
		Name:        "aiservice",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("⚡ Смена состояния circuit breaker")
		},
	})

	return c
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return defaultBaseURL
	}
	return c.BaseURL
}

type recommendationRequest struct {
	UserID                  string   `json:"userId"`
	MoodLabel               string   `json:"moodLabel"`
	PreviousRecommendations []string `json:"previousRecommendations"`
}

type recommendationResponse struct {
	Recommendations []provider.Item `json:"recommendations"`
}

// GetRecommendations персональные рекомендации; previousIDs смещают выдачу
// от уже показанных элементов
func (c *Client) GetRecommendations(ctx context.Context, userID, moodLabel string, previousIDs []string) ([]provider.Item, error) {
	return c.breaker.Execute(func() ([]provider.Item, error) {
		if previousIDs == nil {
			previousIDs = []string{}
		}
		payload, err := json.Marshal(recommendationRequest{
			UserID:                  userID,
			MoodLabel:               moodLabel,
			PreviousRecommendations: previousIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("сериализация запроса рекомендаций: %w", err)
		}

		var resp recommendationResponse
		if err := c.post(ctx, "/get-recommendations", payload, &resp); err != nil {
			return nil, err
		}
		return resp.Recommendations, nil
	})
}

// SentimentResult ответ анализа голосовой записи
type SentimentResult struct {
	Transcription string                 `json:"transcription"`
	Sentiment     map[string]interface{} `json:"sentiment"`
	MoodLabel     string                 `json:"moodLabel"`
	MoodScore     float64                `json:"moodScore"`
}

// AnalyzeSentiment отправляет аудиозапись на транскрипцию и анализ настроения
func (c *Client) AnalyzeSentiment(ctx context.Context, audio []byte, filename string) (*SentimentResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audioFile", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL()+"/analyze-sentiment", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("запрос анализа настроения: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("анализ настроения: статус %d", resp.StatusCode)
	}

	var result SentimentResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("разбор ответа анализа: %w", err)
	}
	return &result, nil
}

// ReportPayload агрегаты недели для расширенного рендеринга
type ReportPayload struct {
	UserID                   string                   `json:"userId"`
	WeekNumber               int                      `json:"weekNumber"`
	Year                     int                      `json:"year"`
	StartDate                string                   `json:"startDate"`
	EndDate                  string                   `json:"endDate"`
	MoodEntries              []map[string]interface{} `json:"moodEntries"`
	CompletedRecommendations []map[string]interface{} `json:"completedRecommendations"`
	Streak                   map[string]interface{}   `json:"streak"`
}

type reportResponse struct {
	Success        bool   `json:"success"`
	ReportID       string `json:"reportId"`
	ReportFilename string `json:"reportFilename"`
}

// GenerateReport запускает рендеринг отчёта на стороне сервиса,
// возвращает ссылку на будущий артефакт
func (c *Client) GenerateReport(ctx context.Context, p ReportPayload) (string, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("сериализация данных отчёта: %w", err)
	}

	var resp reportResponse
	if err := c.post(ctx, "/generate-report", payload, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.ReportFilename == "" {
		return "", fmt.Errorf("рендеринг отчёта отклонён сервисом")
	}

	return c.baseURL() + "/reports/" + resp.ReportFilename, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("запрос %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("чтение ответа %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: статус %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("разбор ответа %s: %w", path, err)
	}
	return nil
}
