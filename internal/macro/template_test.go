package macro

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []Segment
		wantErr  bool
	}{
		{
			name:     "empty template",
			template: "",
			want:     []Segment{},
		},
		{
			name:     "literal only",
			template: "[Whitespace]++",
			want:     []Segment{{Type: SegmentLiteral, Literal: "[Whitespace]++"}},
		},
		{
			name:     "full match",
			template: "[$0]",
			want: []Segment{
				{Type: SegmentLiteral, Literal: "["},
				{Type: SegmentFullMatch},
				{Type: SegmentLiteral, Literal: "]"},
			},
		},
		{
			name:     "braced full match",
			template: "${0}",
			want:     []Segment{{Type: SegmentFullMatch}},
		},
		{
			name:     "two digit index",
			template: "$12x",
			want: []Segment{
				{Type: SegmentIndex, Index: 12},
				{Type: SegmentLiteral, Literal: "x"},
			},
		},
		{
			name:     "braced index",
			template: "${3}",
			want:     []Segment{{Type: SegmentIndex, Index: 3}},
		},
		{
			name:     "named",
			template: "[AtRule=$name]",
			want: []Segment{
				{Type: SegmentLiteral, Literal: "[AtRule="},
				{Type: SegmentName, Name: "name"},
				{Type: SegmentLiteral, Literal: "]"},
			},
		},
		{
			name:     "braced name",
			template: "${name}s",
			want: []Segment{
				{Type: SegmentName, Name: "name"},
				{Type: SegmentLiteral, Literal: "s"},
			},
		},
		{
			name:     "escaped dollar",
			template: "$$value",
			want: []Segment{
				{Type: SegmentLiteral, Literal: "$"},
				{Type: SegmentLiteral, Literal: "value"},
			},
		},
		{
			name:     "trailing dollar",
			template: "a$",
			want: []Segment{
				{Type: SegmentLiteral, Literal: "a"},
				{Type: SegmentLiteral, Literal: "$"},
			},
		},
		{
			name:     "lone dollar",
			template: "$-",
			want: []Segment{
				{Type: SegmentLiteral, Literal: "$"},
				{Type: SegmentLiteral, Literal: "-"},
			},
		},
		{name: "unclosed brace", template: "${name", wantErr: true},
		{name: "empty brace", template: "${}", wantErr: true},
		{name: "mixed brace", template: "${1a}", wantErr: true},
		{name: "invalid brace name", template: "${a-b}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTemplate(tt.template)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTemplate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(got.Segments, tt.want) {
				t.Errorf("ParseTemplate() = %+v, want %+v", got.Segments, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	names := []string{"", "name", "", "value"}

	parsed, err := ParseTemplate("$name:$2:${value}")
	if err != nil {
		t.Fatalf("ParseTemplate() returned error: %v", err)
	}
	resolved, err := parsed.Resolve(names)
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	want := []Segment{
		{Type: SegmentIndex, Index: 1},
		{Type: SegmentLiteral, Literal: ":"},
		{Type: SegmentIndex, Index: 2},
		{Type: SegmentLiteral, Literal: ":"},
		{Type: SegmentIndex, Index: 3},
	}
	if !reflect.DeepEqual(resolved.Segments, want) {
		t.Errorf("Resolve() = %+v, want %+v", resolved.Segments, want)
	}
	if parsed.Segments[0].Type != SegmentName {
		t.Errorf("Resolve() should not modify the receiver")
	}

	for _, bad := range []string{"$4", "$other"} {
		p, _ := ParseTemplate(bad)
		if _, err := p.Resolve(names); err == nil {
			t.Errorf("Resolve(%q) should fail", bad)
		}
	}
}

func TestExpand(t *testing.T) {
	p, _ := ParseTemplate("<$1|$0|$2>")
	var sb strings.Builder
	// "ab" matched at 0..2, group 1 at 0..1, group 2 unmatched
	p.Expand(&sb, "ab", []int{0, 2, 0, 1, -1, -1})
	if got := sb.String(); got != "<a|ab|>" {
		t.Errorf("Expand() = %q, want %q", got, "<a|ab|>")
	}
}
