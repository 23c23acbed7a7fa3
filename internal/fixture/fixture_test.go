package fixture

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rangoo94/object-regexp/internal/optimizer"
	"github.com/rangoo94/object-regexp/internal/program"
	"github.com/rangoo94/object-regexp/internal/syntax"
	"github.com/rangoo94/object-regexp/internal/vm"
	"github.com/rangoo94/object-regexp/pkg/objects"
)

const casesPath = "../../testdata/cases.json"

func TestCasesMatchInterpreter(t *testing.T) {
	cases, err := Load(casesPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no cases found")
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			expr, err := c.Expression()
			if err != nil {
				t.Fatalf("Expression() returned error: %v", err)
			}
			root, err := syntax.Parse(expr)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", expr, err)
			}
			p, err := program.Build(optimizer.Optimize(root), program.Direct)
			if err != nil {
				t.Fatalf("Build() returned error: %v", err)
			}
			input, err := c.Objects(nil)
			if err != nil {
				t.Fatalf("Objects() returned error: %v", err)
			}
			if err := c.Check(vm.New(p).Match(input, c.Start)); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestSequenceUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Sequence
		wantErr bool
	}{
		{"types", `["A", "B"]`, Sequence{{Type: "A"}, {Type: "B"}}, false},
		{"short value", `["A=x=y"]`, Sequence{{Type: "A", Value: "x=y"}}, false},
		{"full", `[{"type": "N", "value": 3}]`, Sequence{{Type: "N", Value: float64(3)}}, false},
		{"full without value", `[{"type": "N"}]`, Sequence{{Type: "N"}}, false},
		{"missing type", `[{"value": 3}]`, nil, true},
		{"not a list", `"A"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Sequence
			err := json.Unmarshal([]byte(tt.data), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Unmarshal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	cases := []Case{{Name: "object/match"}, {Name: "object/at-end"}, {Name: "groups/final-path"}}

	tests := []struct {
		glob string
		want int
	}{
		{"", 3},
		{"object/*", 2},
		{"*path", 1},
		{"nothing*", 0},
	}

	for _, tt := range tests {
		if got := Filter(cases, tt.glob); len(got) != tt.want {
			t.Errorf("Filter(%q) = %d cases, want %d", tt.glob, len(got), tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	match := &objects.Result{Finished: true, Length: 2, Groups: objects.Groups{}}
	exp := objects.Expectation{Kind: objects.OneOf, Step: 1, Options: []objects.Option{{Type: "A"}}}

	tests := []struct {
		name    string
		got     *objects.Result
		want    *objects.Result
		wantErr bool
	}{
		{"both nil", nil, nil, false},
		{"unexpected match", match, nil, true},
		{"missing match", nil, match, true},
		{"nil groups equal empty", match, &objects.Result{Finished: true, Length: 2}, false},
		{"length differs", match, &objects.Result{Finished: true, Length: 1}, true},
		{"expectations", &objects.Result{Expectations: []objects.Expectation{exp}}, &objects.Result{Expectations: []objects.Expectation{exp}}, false},
		{"expectation step differs", &objects.Result{Expectations: []objects.Expectation{exp}}, &objects.Result{Expectations: []objects.Expectation{{Kind: objects.OneOf, Step: 2, Options: exp.Options}}}, true},
		{"group differs", &objects.Result{Finished: true, Groups: objects.Groups{"x": {From: 0, To: 1}}}, &objects.Result{Finished: true, Groups: objects.Groups{"x": {From: 0, To: 2}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Compare(tt.got, tt.want)
			if (err != nil) != tt.wantErr {
				t.Errorf("Compare() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	unnamed := filepath.Join(dir, "unnamed.json")
	if err := os.WriteFile(unnamed, []byte(`[{"pattern": "[A]"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(unnamed); err == nil {
		t.Errorf("Load() should reject unnamed cases")
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("Load() should fail on a missing file")
	}
}

func TestDescribe(t *testing.T) {
	r := &objects.Result{
		Finished:     true,
		Index:        1,
		Length:       2,
		Groups:       objects.Groups{"x": {From: 1, To: 2}},
		Expectations: []objects.Expectation{{Kind: objects.Any, Step: 3}},
	}
	want := "match [1, 3) x=[1, 2); expected any at step 3"
	if got := Describe(r); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
	if got := Describe(nil); got != "no match" {
		t.Errorf("Describe(nil) = %q, want %q", got, "no match")
	}
}
