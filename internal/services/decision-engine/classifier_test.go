package decision_engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return path
}

// soil_moisture <= 30 → dry, otherwise moist
const stumpModel = `{
  "kind": "tree",
  "features": ["soil_moisture", "temperature", "air_humidity"],
  "nodes": [
    {"feature": 0, "threshold": 30, "left": 1, "right": 2},
    {"leaf": true, "label": 1},
    {"leaf": true, "label": 0}
  ]
}`

func TestLoadClassifierTree(t *testing.T) {
	cls, err := LoadClassifier(writeModel(t, stumpModel))
	if err != nil {
		t.Fatalf("LoadClassifier: %v", err)
	}
	cases := []struct {
		x    []float64
		want Label
	}{
		{[]float64{10, 30, 40}, LabelDry},
		{[]float64{30, 30, 40}, LabelDry},
		{[]float64{30.1, 30, 40}, LabelMoist},
		{[]float64{80, 20, 70}, LabelMoist},
	}
	for _, tc := range cases {
		got, err := cls.Predict(tc.x)
		if err != nil {
			t.Fatalf("Predict(%v): %v", tc.x, err)
		}
		if got != tc.want {
			t.Errorf("Predict(%v) = %d, want %d", tc.x, got, tc.want)
		}
	}
}

func TestLoadClassifierLogistic(t *testing.T) {
	// z = -0.2*moisture + 6 → dry below 30%
	cls, err := LoadClassifier(writeModel(t, `{"kind":"logistic","coef":[-0.2,0,0],"intercept":6}`))
	if err != nil {
		t.Fatalf("LoadClassifier: %v", err)
	}
	if got, _ := cls.Predict([]float64{10, 25, 50}); got != LabelDry {
		t.Errorf("moisture 10: got %d want dry", got)
	}
	if got, _ := cls.Predict([]float64{60, 25, 50}); got != LabelMoist {
		t.Errorf("moisture 60: got %d want moist", got)
	}
	if _, err := cls.Predict([]float64{1, 2}); err == nil {
		t.Error("expected error for short feature vector")
	}
}

func TestLoadClassifierMissingFile(t *testing.T) {
	_, err := LoadClassifier(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestLoadClassifierRejectsBadArtifacts(t *testing.T) {
	cases := map[string]string{
		"malformed":     `{"kind":`,
		"unknown kind":  `{"kind":"svm"}`,
		"wrong width":   `{"kind":"logistic","features":["a","b"],"coef":[1,2],"intercept":0}`,
		"empty tree":    `{"kind":"tree","nodes":[]}`,
		"bad label":     `{"kind":"tree","nodes":[{"leaf":true,"label":3}]}`,
		"bad feature":   `{"kind":"tree","nodes":[{"feature":5,"threshold":1,"left":1,"right":2},{"leaf":true},{"leaf":true}]}`,
		"back edge":     `{"kind":"tree","nodes":[{"feature":0,"threshold":1,"left":0,"right":1},{"leaf":true}]}`,
		"bad threshold": `{"kind":"logistic","coef":[1,1,1],"intercept":0,"threshold":1.5}`,
	}
	for name, body := range cases {
		if _, err := LoadClassifier(writeModel(t, body)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if errors.Is(err, ErrModelNotFound) {
			t.Errorf("%s: must not be reported as missing model: %v", name, err)
		}
	}
}
