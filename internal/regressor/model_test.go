package regressor

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/afroash/aqi-monitor/internal/models"
)

const featuresLine = `features: ["PM2.5", "PM10", "NO", "NO2", "NH3", "CO", "SO2", "O3"]`

const linearArtifact = `
kind: linear
` + featuresLine + `
intercept: 5
coefficients: [1, 0.5, 0, 0.25, 0, 10, 0, 0.1]
`

// A single stump on PM2.5, so two trees average to a known value.
const forestArtifact = `
kind: random_forest
` + featuresLine + `
trees:
  - nodes:
      - {feature: 0, threshold: 35.5, left: 1, right: 2}
      - {left: -1, right: -1, value: 40}
      - {left: -1, right: -1, value: 160}
  - nodes:
      - {feature: 0, threshold: 35.5, left: 1, right: 2}
      - {left: -1, right: -1, value: 60}
      - {left: -1, right: -1, value: 200}
`

func TestParse_Linear(t *testing.T) {
	m, err := Parse([]byte(linearArtifact))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	x := models.FeatureVector{10, 20, 0, 15, 0, 0.5, 5, 40}
	got, err := m.Predict(x)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	// 5 + 10 + 10 + 3.75 + 5 + 4
	want := 37.75
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Predict = %v, want %v", got, want)
	}
}

func TestParse_RandomForestAveragesTrees(t *testing.T) {
	m, err := Parse([]byte(forestArtifact))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := []struct {
		name string
		pm25 float64
		want float64
	}{
		{"below split", 10, 50},
		{"on split goes left", 35.5, 50},
		{"above split", 36, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Predict(models.FeatureVector{tt.pm25})
			if err != nil {
				t.Fatalf("Predict failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Predict = %v, want %v", got, tt.want)
			}
		})
	}

	if info := m.Info(); info.Kind != KindRandomForest || info.Trees != 2 {
		t.Errorf("Info() = %+v", info)
	}
}

func TestParse_GradientBoosting(t *testing.T) {
	doc := `
kind: gradient_boosting
` + featuresLine + `
init: 100
learning_rate: 0.5
trees:
  - nodes:
      - {feature: 1, threshold: 50, left: 1, right: 2}
      - {left: -1, right: -1, value: -20}
      - {left: -1, right: -1, value: 40}
`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	got, _ := m.Predict(models.FeatureVector{0, 80})
	if got != 120 {
		t.Errorf("Predict = %v, want 120", got)
	}
}

func TestParse_JSONArtifact(t *testing.T) {
	doc := `{"kind": "linear", "features": ["PM2.5", "PM10", "NO", "NO2", "NH3", "CO", "SO2", "O3"],
		"intercept": 1.5, "coefficients": [1, 1, 1, 1, 1, 1, 1, 1]}`
	m, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got, _ := m.Predict(models.FeatureVector{1, 1, 1, 1, 1, 1, 1, 1})
	if got != 9.5 {
		t.Errorf("Predict = %v, want 9.5", got)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "permuted feature order",
			doc:     "kind: linear\nfeatures: [\"PM2.5\", \"NO\", \"NO2\", \"NH3\", \"CO\", \"SO2\", \"O3\", \"PM10\"]\ncoefficients: [1, 1, 1, 1, 1, 1, 1, 1]\n",
			wantErr: "column order",
		},
		{
			name:    "missing features",
			doc:     "kind: linear\ncoefficients: [1, 1, 1, 1, 1, 1, 1, 1]\n",
			wantErr: "declares 0 features",
		},
		{
			name:    "short coefficients",
			doc:     "kind: linear\n" + featuresLine + "\ncoefficients: [1, 1]\n",
			wantErr: "coefficients",
		},
		{
			name:    "unknown kind",
			doc:     "kind: svm\n" + featuresLine + "\n",
			wantErr: "unsupported",
		},
		{
			name:    "missing kind",
			doc:     featuresLine + "\n",
			wantErr: "kind is required",
		},
		{
			name:    "forest without trees",
			doc:     "kind: random_forest\n" + featuresLine + "\n",
			wantErr: "no trees",
		},
		{
			name: "child pointing backwards",
			doc: "kind: random_forest\n" + featuresLine + `
trees:
  - nodes:
      - {feature: 0, threshold: 1, left: 1, right: 2}
      - {feature: 0, threshold: 1, left: 0, right: 2}
      - {left: -1, right: -1, value: 1}
`,
			wantErr: "invalid left child",
		},
		{
			name: "split feature out of range",
			doc: "kind: random_forest\n" + featuresLine + `
trees:
  - nodes:
      - {feature: 8, threshold: 1, left: 1, right: 2}
      - {left: -1, right: -1, value: 1}
      - {left: -1, right: -1, value: 2}
`,
			wantErr: "out of range",
		},
		{
			name:    "boosting without learning rate",
			doc:     "kind: gradient_boosting\n" + featuresLine + "\ntrees:\n  - nodes:\n      - {value: 1}\n",
			wantErr: "learning_rate",
		},
		{
			name:    "malformed document",
			doc:     "kind: [linear",
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestPredict_NonFinite(t *testing.T) {
	m, err := Parse([]byte(linearArtifact))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := m.Predict(models.FeatureVector{math.Inf(1)}); err == nil {
		t.Error("expected error for infinite score")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(forestArtifact), 0644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Info().Path != path {
		t.Errorf("Info().Path = %q, want %q", m.Info().Path, path)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_ShippedArtifact(t *testing.T) {
	m, err := Load("../../assets/aqi_model.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	clean, _ := m.Predict(models.NewFeatureVector(models.PollutantReading{PM25: 8, PM10: 20, NO2: 10, O3: 30}))
	dirty, _ := m.Predict(models.NewFeatureVector(models.PollutantReading{PM25: 180, PM10: 260, NO2: 60, CO: 4, O3: 80}))
	if clean >= dirty {
		t.Errorf("clean air scored %v, dirty air %v; want clean < dirty", clean, dirty)
	}
}

func TestModel_ConcurrentPredict(t *testing.T) {
	m, err := Parse([]byte(forestArtifact))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := m.Predict(models.FeatureVector{float64(i + j)}); err != nil {
					t.Errorf("Predict failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
