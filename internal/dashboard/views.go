package dashboard

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/afroash/aqi-monitor/internal/models"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

// Chart geometry for the history polyline
const (
	chartWidth  = 300
	chartHeight = 100
	gaugeMax    = 300
)

// loadTemplatesFromFS parses the dashboard templates under dir in fsys
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded dashboard templates. Call during startup
// before serving requests.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// PollutantBar is one pollutant row on the dashboard
type PollutantBar struct {
	Name    string
	Value   float64
	Percent float64
}

// PanelData is the view model for the refreshable dashboard panel
type PanelData struct {
	Ready          bool
	AQI            float64
	Status         string
	Emoji          string
	Color          string
	GaugePercent   float64
	HistoryPoints  string
	HistoryCount   int
	Pollutants     []PollutantBar
	Details        []PollutantBar
	Location       string
	Timestamp      string
	Sample         bool
	LastUpdated    string
	RefreshSeconds int
}

// NewPanelData builds the panel view model from a snapshot
func NewPanelData(snap models.Snapshot, refresh time.Duration) PanelData {
	cur := snap.Current
	p := cur.Pollutants

	bars := []PollutantBar{
		pollutantBar("PM2.5", p.PM25),
		pollutantBar("PM10", p.PM10),
		pollutantBar("NO₂", p.NO2),
		pollutantBar("SO₂", p.SO2),
		pollutantBar("CO", p.CO),
		pollutantBar("O₃", p.O3),
		pollutantBar("NH₃", p.NH3),
	}

	location := cur.Location
	if location == "" {
		location = "Unknown"
	}

	return PanelData{
		Ready:          true,
		AQI:            cur.AQI,
		Status:         cur.Status.String(),
		Emoji:          cur.Status.Emoji(),
		Color:          cur.Status.Color(),
		GaugePercent:   math.Min(math.Max(cur.AQI, 0)/gaugeMax, 1) * 100,
		HistoryPoints:  historyPoints(snap.History),
		HistoryCount:   len(snap.History),
		Pollutants:     bars,
		Details:        []PollutantBar{bars[0], bars[1], bars[2], bars[5]},
		Location:       location,
		Timestamp:      cur.Timestamp,
		Sample:         snap.Sample,
		LastUpdated:    snap.FetchedAt.Format("15:04:05"),
		RefreshSeconds: int(refresh.Seconds()),
	}
}

// pollutantBar fills the bar at value/100, capped at full width
func pollutantBar(name string, value float64) PollutantBar {
	return PollutantBar{
		Name:    name,
		Value:   value,
		Percent: math.Min(math.Max(value, 0)/100, 1) * 100,
	}
}

// historyPoints returns SVG polyline points for the AQI trend. The y axis is
// scaled to the larger of the highest AQI and the Good band limit.
func historyPoints(history []models.HistoryEntry) string {
	if len(history) == 0 {
		return ""
	}

	maxAQI := 50.0
	for _, e := range history {
		maxAQI = math.Max(maxAQI, e.AQI)
	}

	step := 0.0
	if len(history) > 1 {
		step = float64(chartWidth) / float64(len(history)-1)
	}

	points := make([]string, len(history))
	for i, e := range history {
		x := step * float64(i)
		y := chartHeight - math.Max(e.AQI, 0)/maxAQI*chartHeight
		points[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(points, " ")
}

// RenderDashboard executes the full dashboard page into w
func RenderDashboard(w io.Writer, data *PanelData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call dashboard.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderPanel executes only the panel partial into w
func RenderPanel(w io.Writer, data *PanelData) error {
	if dashboardTmpl == nil {
		return errors.New("panel template not loaded: call dashboard.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "panel", data)
}
