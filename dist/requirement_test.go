package dist

import (
	"reflect"
	"testing"
)

func TestParseRequirement(t *testing.T) {
	for _, testCase := range []struct {
		name      string
		input     string
		wanted    Requirement
		hasMarker bool
	}{
		{
			name:   "bare",
			input:  "requests",
			wanted: Requirement{Name: "requests"},
		},
		{
			name:   "specifier",
			input:  "requests >= 2.0, < 3",
			wanted: Requirement{Name: "requests", Specifier: ">=2.0,<3"},
		},
		{
			name:   "parenthesized",
			input:  "six (>=1.10)",
			wanted: Requirement{Name: "six", Specifier: ">=1.10"},
		},
		{
			name:  "extras",
			input: "requests[security, socks]==2.22.0",
			wanted: Requirement{
				Name:      "requests",
				Extras:    []string{"security", "socks"},
				Specifier: "==2.22.0",
			},
		},
		{
			name:   "url",
			input:  "pip @ https://example.com/pip.whl",
			wanted: Requirement{Name: "pip", URL: "https://example.com/pip.whl"},
		},
		{
			name:      "marker",
			input:     `enum34; python_version < "3.4"`,
			wanted:    Requirement{Name: "enum34"},
			hasMarker: true,
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			r, err := ParseRequirement(testCase.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if (r.Marker != nil) != testCase.hasMarker {
				t.Fatalf("Wanted marker presence %v, got %v", testCase.hasMarker, r.Marker)
			}
			r.Marker = nil
			if !reflect.DeepEqual(r, testCase.wanted) {
				t.Fatalf("Wanted %#v, got %#v", testCase.wanted, r)
			}
		})
	}
}

func TestParseRequirementInvalid(t *testing.T) {
	for _, input := range []string{"", "-foo", "foo @", "foo (>=1"} {
		if _, err := ParseRequirement(input); err == nil {
			t.Fatalf("Wanted error for '%s', got nil", input)
		}
	}
}

func TestRequirementString(t *testing.T) {
	r, err := ParseRequirement(`requests[socks] >=2 ; python_version >= "3"`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	wanted := `requests[socks]>=2; python_version >= "3"`
	if r.String() != wanted {
		t.Fatalf("Wanted '%s', got '%s'", wanted, r.String())
	}
}
