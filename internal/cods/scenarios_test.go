// Golden scenario suite driven by testdata/scenarios.yaml: each entry is
// a literal source with either an expected rendered value, expected sink
// output, or an expected error kind.
package cods_test

import (
	"bytes"
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/cods/internal/cods"
	"github.com/funvibe/cods/internal/errors"
)

type scenario struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Want   string `yaml:"want"`
	Output string `yaml:"output"`
	Error  string `yaml:"error"`
}

func TestScenariosFromFixture(t *testing.T) {
	data, err := os.ReadFile("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("reading fixture: %s", err)
	}
	var scenarios []scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		t.Fatalf("parsing fixture: %s", err)
	}
	if len(scenarios) == 0 {
		t.Fatalf("fixture is empty")
	}

	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			var out bytes.Buffer
			r := cods.New(&out).ParseAndEval(sc.Source)

			if sc.Error != "" {
				if r.Ok() {
					t.Fatalf("expected error %s, got value %s", sc.Error, r.Value)
				}
				if !hasKind(r.Errors, errors.Kind(sc.Error)) {
					t.Fatalf("expected error %s, got %v", sc.Error, r.Errors)
				}
				return
			}

			if !r.Ok() {
				t.Fatalf("unexpected errors: %v", r.Errors)
			}
			if sc.Want != "" && r.Value.String() != sc.Want {
				t.Fatalf("value = %s, want %s", r.Value, sc.Want)
			}
			if sc.Output != "" && out.String() != sc.Output {
				t.Fatalf("sink = %q, want %q", out.String(), sc.Output)
			}
		})
	}
}
