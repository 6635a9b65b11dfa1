package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

const searchResponseBody = `{
  "items": [
    {
      "id": {"videoId": "abc123"},
      "snippet": {
        "title": "10 Minute Guided Meditation for Anxiety",
        "thumbnails": {"default": {"url": "https://i.ytimg.com/vi/abc123/default.jpg"}}
      }
    },
    {
      "id": {"videoId": ""},
      "snippet": {"title": "Channel result, not a video", "thumbnails": {"default": {"url": ""}}}
    },
    {
      "id": {"videoId": "def456"},
      "snippet": {
        "title": "Evening Stretching Routine",
        "thumbnails": {"default": {"url": ""}}
      }
    }
  ]
}`

func TestGetRecommendationsMapsVideos(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("key = %s", r.URL.Query().Get("key"))
		}
		if r.URL.Query().Get("type") != "video" {
			t.Errorf("type = %s", r.URL.Query().Get("type"))
		}
		gotQuery = r.URL.Query().Get("q")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponseBody))
	}))
	defer ts.Close()

	c := New("test-key", time.Second)
	c.APIURL = ts.URL

	items, err := c.GetRecommendations(context.Background(), "anxious")
	if err != nil {
		t.Fatalf("рекомендации: %v", err)
	}

	// результат без videoId пропускается
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}

	first := items[0]
	if first.Type != "meditation" {
		t.Fatalf("type = %q, want meditation (по заголовку)", first.Type)
	}
	if first.Link != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("link = %q", first.Link)
	}
	if first.ImageURL != "https://i.ytimg.com/vi/abc123/default.jpg" {
		t.Fatalf("imageURL = %q", first.ImageURL)
	}

	if items[1].Type != "activity" {
		t.Fatalf("type = %q, want activity (stretching)", items[1].Type)
	}

	// запрос берётся из вариантов для anxious
	found := false
	for _, q := range moodQueries["anxious"] {
		if q == gotQuery {
			found = true
		}
	}
	if !found {
		t.Fatalf("q = %q не из вариантов anxious", gotQuery)
	}
}

func TestGetRecommendationsConcurrent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponseBody))
	}))
	defer ts.Close()

	c := New("test-key", time.Second)
	c.APIURL = ts.URL

	// общий клиент из нескольких горутин, выбор запроса не должен гонять
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := c.GetRecommendations(context.Background(), "anxious")
			if err != nil {
				t.Errorf("рекомендации: %v", err)
				return
			}
			if len(items) != 2 {
				t.Errorf("len = %d, want 2", len(items))
			}
		}()
	}
	wg.Wait()
}

func TestMissingAPIKey(t *testing.T) {
	c := New("", time.Second)

	if _, err := c.GetRecommendations(context.Background(), "calm"); err == nil {
		t.Fatal("без ключа ожидается ошибка")
	}
}

func TestAPIErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer ts.Close()

	c := New("test-key", time.Second)
	c.APIURL = ts.URL

	if _, err := c.GetRecommendations(context.Background(), "calm"); err == nil {
		t.Fatal("ожидалась ошибка на статус 403")
	}
}

func TestDetermineVideoType(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Guided Meditation for Sleep", "meditation"},
		{"Morning Yoga Flow", "activity"},
		{"Lo-fi Music Playlist", "music"},
		{"Pranayama Breathing Technique", "breathing"},
		{"Daily Positive Affirmations", "affirmation"},
		{"Random Vlog Episode 12", "video"},
		// первый совпавший тип выигрывает: guided -> meditation
		{"Guided Yoga Music", "meditation"},
	}

	for _, tc := range tests {
		if got := determineVideoType(tc.title); got != tc.want {
			t.Errorf("determineVideoType(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}
