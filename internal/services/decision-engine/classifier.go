package decision_engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
)

// Label is the binary verdict of the classifier.
type Label int

const (
	LabelMoist Label = 0 // no water needed
	LabelDry   Label = 1 // water
)

// numFeatures: [soil_moisture, temperature, air_humidity]
const numFeatures = 3

// ErrModelNotFound is returned when the model artifact does not exist.
// The service cannot start without it.
var ErrModelNotFound = errors.New("model artifact not found")

// Classifier is the narrow predict capability the engine depends on.
type Classifier interface {
	Predict(features []float64) (Label, error)
}

// artifact is the on-disk shape of a trained model (exported by the training pipeline).
type artifact struct {
	Kind     string     `json:"kind"` // "tree" | "logistic"
	Features []string   `json:"features"`
	Nodes    []TreeNode `json:"nodes,omitempty"`

	Coef      []float64 `json:"coef,omitempty"`
	Intercept float64   `json:"intercept,omitempty"`
	Threshold *float64  `json:"threshold,omitempty"`
}

// TreeNode is either a split (Feature/Threshold/Left/Right) or a leaf carrying Label.
type TreeNode struct {
	Leaf      bool    `json:"leaf"`
	Label     Label   `json:"label"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
}

// LoadClassifier legge l'artefatto JSON una sola volta all'avvio.
func LoadClassifier(path string) (Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if n := len(a.Features); n != 0 && n != numFeatures {
		return nil, fmt.Errorf("model %s: expected %d features, got %d", path, numFeatures, n)
	}

	switch a.Kind {
	case "tree":
		t, err := NewTreeClassifier(a.Nodes)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", path, err)
		}
		return t, nil
	case "logistic":
		th := 0.5
		if a.Threshold != nil {
			th = *a.Threshold
		}
		l, err := NewLogisticClassifier(a.Coef, a.Intercept, th)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", path, err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("model %s: unsupported kind %q", path, a.Kind)
	}
}

// ===================== decision tree =====================

// TreeClassifier walks a binary tree stored as a flat node array (root = 0).
// Convention: x[feature] <= threshold → left.
type TreeClassifier struct {
	nodes []TreeNode
}

func NewTreeClassifier(nodes []TreeNode) (*TreeClassifier, error) {
	if len(nodes) == 0 {
		return nil, errors.New("tree: no nodes")
	}
	for i, n := range nodes {
		if n.Leaf {
			if n.Label != LabelMoist && n.Label != LabelDry {
				return nil, fmt.Errorf("tree: node %d has label %d", i, n.Label)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return nil, fmt.Errorf("tree: node %d feature %d out of range", i, n.Feature)
		}
		// children must point forward, otherwise the walk could loop
		if n.Left <= i || n.Left >= len(nodes) || n.Right <= i || n.Right >= len(nodes) {
			return nil, fmt.Errorf("tree: node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return &TreeClassifier{nodes: nodes}, nil
}

func (t *TreeClassifier) Predict(features []float64) (Label, error) {
	if len(features) != numFeatures {
		return 0, fmt.Errorf("tree: expected %d features, got %d", numFeatures, len(features))
	}
	i := 0
	for {
		n := t.nodes[i]
		if n.Leaf {
			return n.Label, nil
		}
		if features[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// ===================== logistic regression =====================

// LogisticClassifier: sigmoid(w·x + b) >= threshold → dry.
type LogisticClassifier struct {
	coef      []float64
	intercept float64
	threshold float64
}

func NewLogisticClassifier(coef []float64, intercept, threshold float64) (*LogisticClassifier, error) {
	if len(coef) != numFeatures {
		return nil, fmt.Errorf("logistic: expected %d coefficients, got %d", numFeatures, len(coef))
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("logistic: threshold %.3f must be in (0,1)", threshold)
	}
	return &LogisticClassifier{coef: coef, intercept: intercept, threshold: threshold}, nil
}

func (l *LogisticClassifier) Predict(features []float64) (Label, error) {
	if len(features) != numFeatures {
		return 0, fmt.Errorf("logistic: expected %d features, got %d", numFeatures, len(features))
	}
	z := l.intercept
	for i, w := range l.coef {
		z += w * features[i]
	}
	if 1/(1+math.Exp(-z)) >= l.threshold {
		return LabelDry, nil
	}
	return LabelMoist, nil
}
