package regressor

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/afroash/aqi-monitor/internal/models"
)

// Kind identifies the family of a trained regressor.
type Kind string

const (
	KindLinear           Kind = "linear"
	KindRandomForest     Kind = "random_forest"
	KindGradientBoosting Kind = "gradient_boosting"
)

// Artifact is the on-disk form of a trained model. YAML and JSON are both
// accepted since JSON documents are valid YAML.
type Artifact struct {
	Kind     Kind     `yaml:"kind"`
	Features []string `yaml:"features"`

	// Linear models
	Intercept    float64   `yaml:"intercept"`
	Coefficients []float64 `yaml:"coefficients"`

	// Tree ensembles
	Trees        []Tree  `yaml:"trees"`
	Init         float64 `yaml:"init"`
	LearningRate float64 `yaml:"learning_rate"`
}

// Tree is a single decision tree in flat array layout. Node 0 is the root.
type Tree struct {
	Nodes []Node `yaml:"nodes"`
}

// Node is a split or a leaf. A node whose Left and Right are equal is a leaf.
type Node struct {
	Feature   int     `yaml:"feature"`
	Threshold float64 `yaml:"threshold"`
	Left      int     `yaml:"left"`
	Right     int     `yaml:"right"`
	Value     float64 `yaml:"value"`
}

func (n Node) isLeaf() bool {
	return n.Left == n.Right
}

// Model is a loaded, validated regressor. It is never mutated after
// construction and may be shared between goroutines.
type Model struct {
	artifact Artifact
	path     string
}

// Info describes a loaded model.
type Info struct {
	Kind  Kind   `json:"kind"`
	Trees int    `json:"trees"`
	Path  string `json:"path"`
}

// Load reads and validates a model artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	model, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	model.path = path
	return model, nil
}

// Parse decodes and validates an artifact held in memory.
func Parse(data []byte) (*Model, error) {
	var artifact Artifact
	if err := yaml.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return &Model{artifact: artifact}, nil
}

// Validate checks the artifact is usable with the feature vectors this
// service builds.
func (a *Artifact) Validate() error {
	if len(a.Features) != models.FeatureCount {
		return fmt.Errorf("artifact declares %d features, want %d", len(a.Features), models.FeatureCount)
	}
	for i, name := range a.Features {
		if name != models.FeatureNames[i] {
			return fmt.Errorf("feature %d is %q, want %q: model was trained with a different column order",
				i, name, models.FeatureNames[i])
		}
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) != models.FeatureCount {
			return fmt.Errorf("linear model has %d coefficients, want %d", len(a.Coefficients), models.FeatureCount)
		}
	case KindRandomForest, KindGradientBoosting:
		if len(a.Trees) == 0 {
			return fmt.Errorf("%s model has no trees", a.Kind)
		}
		for i, tree := range a.Trees {
			if err := tree.validate(); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
		}
		if a.Kind == KindGradientBoosting && a.LearningRate <= 0 {
			return errors.New("gradient boosting model needs a positive learning_rate")
		}
	case "":
		return errors.New("artifact kind is required")
	default:
		return fmt.Errorf("unsupported model kind %q", a.Kind)
	}
	return nil
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= models.FeatureCount {
			return fmt.Errorf("node %d splits on feature %d, out of range", i, n.Feature)
		}
		// Children always come after their parent, which also rules out cycles.
		if n.Left <= i || n.Left >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid left child %d", i, n.Left)
		}
		if n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid right child %d", i, n.Right)
		}
	}
	return nil
}

func (t Tree) predict(x models.FeatureVector) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Predict returns the AQI score for a feature vector.
func (m *Model) Predict(x models.FeatureVector) (float64, error) {
	var score float64

	switch m.artifact.Kind {
	case KindLinear:
		score = m.artifact.Intercept
		for i, c := range m.artifact.Coefficients {
			score += c * x[i]
		}
	case KindRandomForest:
		for _, tree := range m.artifact.Trees {
			score += tree.predict(x)
		}
		score /= float64(len(m.artifact.Trees))
	case KindGradientBoosting:
		var sum float64
		for _, tree := range m.artifact.Trees {
			sum += tree.predict(x)
		}
		score = m.artifact.Init + m.artifact.LearningRate*sum
	default:
		return 0, fmt.Errorf("unsupported model kind %q", m.artifact.Kind)
	}

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("model produced a non-finite score for input %v", x)
	}
	return score, nil
}

// Info returns a description of the model.
func (m *Model) Info() Info {
	return Info{
		Kind:  m.artifact.Kind,
		Trees: len(m.artifact.Trees),
		Path:  m.path,
	}
}
