package report

import (
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/serpkit/internal/storage"
)

// Summary contains aggregated figures about a set of audited queries.
type Summary struct {
	TotalQueries     int
	ByOutcome        map[storage.Outcome]int
	StatusCodes      map[int]int
	CaptchasBySource map[string]int
	DetectedIPs      map[string]int
	TotalResults     int
	AvgDuration      time.Duration
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}

// CaptchaRate is the share of queries that hit a captcha, in [0,1].
func (s Summary) CaptchaRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ByOutcome[storage.OutcomeCaptcha]) / float64(s.TotalQueries)
}

// GenerateSummary processes a slice of records to generate summary figures.
func GenerateSummary(records []*storage.Record) Summary {
	s := Summary{
		ByOutcome:        make(map[storage.Outcome]int),
		StatusCodes:      make(map[int]int),
		CaptchasBySource: make(map[string]int),
		DetectedIPs:      make(map[string]int),
	}

	if len(records) == 0 {
		return s
	}

	s.StartTime = records[0].CreatedAt
	s.EndTime = records[0].CreatedAt

	var total time.Duration
	for _, r := range records {
		s.TotalQueries++
		s.ByOutcome[r.Outcome]++
		if r.StatusCode > 0 {
			s.StatusCodes[r.StatusCode]++
		}
		if r.Outcome == storage.OutcomeCaptcha {
			src := r.CaptchaSource
			if src == "" {
				src = "unknown"
			}
			s.CaptchasBySource[src]++
		}
		if r.DetectedIP != "" {
			s.DetectedIPs[r.DetectedIP]++
		}
		s.TotalResults += r.ResultCount
		total += r.Duration

		if r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if r.CreatedAt.After(s.EndTime) {
			s.EndTime = r.CreatedAt
		}
	}

	s.AvgDuration = total / time.Duration(len(records))
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `serpkit Query Summary
---------------------
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Total Queries: {{.TotalQueries}}
Avg Latency:   {{.AvgDuration}}
Results Seen:  {{.TotalResults}}
Captcha Rate:  {{printf "%.1f" (percent .CaptchaRate)}}%

Outcomes:
{{- range $outcome, $count := .ByOutcome}}
  {{$outcome}}: {{$count}}
{{- else}}
  None
{{- end}}

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Captchas By Source:
{{- range $src, $count := .CaptchasBySource}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}

Detected IPs:
{{- range $ip, $count := .DetectedIPs}}
  {{$ip}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Funcs(template.FuncMap{"percent": percent}).Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>serpkit Query Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  .bad { color: red; }
  .good { color: green; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>serpkit Query Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Total Queries</div>
    <div class="stat-val">{{.TotalQueries}}</div>
  </div>
  <div class="stat-card">
    <div>Avg Latency</div>
    <div class="stat-val">{{.AvgDuration}}</div>
  </div>
  <div class="stat-card">
    <div>Captchas</div>
    <div class="stat-val {{if gt (len .CaptchasBySource) 0}}bad{{else}}good{{end}}">{{printf "%.1f" (percent .CaptchaRate)}}%</div>
  </div>
  <div class="stat-card">
    <div>Results Seen</div>
    <div class="stat-val">{{.TotalResults}}</div>
  </div>

  <h3>Outcomes</h3>
  <table>
    <tr><th>Outcome</th><th>Count</th></tr>
    {{- range $outcome, $count := .ByOutcome}}
    <tr><td>{{$outcome}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Status Codes</h3>
  <table>
    <tr><th>Code</th><th>Count</th></tr>
    {{- range $code, $count := .StatusCodes}}
    <tr><td>{{$code}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Captchas By Source</h3>
  <table>
    <tr><th>Source</th><th>Count</th></tr>
    {{- range $src, $count := .CaptchasBySource}}
    <tr><td>{{$src}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Detected IPs</h3>
  <table>
    <tr><th>IP</th><th>Count</th></tr>
    {{- range $ip, $count := .DetectedIPs}}
    <tr><td>{{$ip}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := htmltemplate.New("htmlReport").Funcs(htmltemplate.FuncMap{"percent": percent}).Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}

	return nil
}

func percent(rate float64) float64 {
	return rate * 100
}
