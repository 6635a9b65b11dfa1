package services

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"mindgarden/internal/database"
	"mindgarden/internal/utils"
)

// LocalRenderer базовый рендеринг отчёта в HTML-файл на диске.
// Используется, когда внешний рендеринг недоступен.
type LocalRenderer struct {
	Dir     string
	BaseURL string
}

func NewLocalRenderer(dir, baseURL string) *LocalRenderer {
	return &LocalRenderer{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Wellness Report - Week {{.Report.WeekNumber}}, {{.Report.Year}}</title>
</head>
<body>
<h1>{{.PlantEmoji}} Weekly Wellness Report</h1>
<p>{{.Report.StartDate.Format "2006-01-02"}} - {{.Report.EndDate.Format "2006-01-02"}}</p>
<ul>
<li>Average mood: {{printf "%.1f" .Report.AverageMood}} / 10</li>
<li>Streak maintained: {{if .Report.StreakMaintained}}yes ({{.User.Streak}} days){{else}}no{{end}}</li>
<li>Plant progress: {{.Report.PlantProgress}}%</li>
<li>Completed recommendations: {{.Report.CompletedRecsCount}}</li>
</ul>
{{if .Moods}}
<h2>Check-ins</h2>
<table border="1" cellpadding="4">
<tr><th>Date</th><th>Mood</th><th>Score</th></tr>
{{range .Moods}}<tr><td>{{.RecordedAt.Format "2006-01-02 15:04"}}</td><td>{{.MoodLabel}}</td><td>{{.MoodScore}}</td></tr>
{{end}}</table>
{{end}}
<p><small>Generated at {{.Report.GeneratedAt.Format "2006-01-02 15:04"}} UTC</small></p>
</body>
</html>
`))

// Render пишет report_<id>.html и возвращает публичную ссылку
func (lr *LocalRenderer) Render(report *database.Report, user *database.User, moods []database.MoodEntry) (string, error) {
	if err := os.MkdirAll(lr.Dir, 0o755); err != nil {
		return "", fmt.Errorf("каталог отчётов: %w", err)
	}

	filename := fmt.Sprintf("report_%s.html", report.ID)
	path := filepath.Join(lr.Dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("создание файла отчёта: %w", err)
	}
	defer f.Close()

	data := struct {
		Report     *database.Report
		User       *database.User
		Moods      []database.MoodEntry
		PlantEmoji string
	}{report, user, moods, utils.GetPlantEmoji(user.PlantLevel)}

	if err := reportTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("рендеринг шаблона отчёта: %w", err)
	}

	return lr.BaseURL + "/" + filename, nil
}
