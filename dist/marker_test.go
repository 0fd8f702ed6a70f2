package dist

import "testing"

func TestMarkerEvaluate(t *testing.T) {
	env := &Environment{
		OSName:             "posix",
		SysPlatform:        "linux",
		PlatformSystem:     "Linux",
		PythonVersion:      "3.8",
		PythonFullVersion:  "3.8.10",
		ImplementationName: "cpython",
	}

	for _, testCase := range []struct {
		marker string
		wanted bool
	}{
		{`python_version >= "3"`, true},
		{`python_version < "3.4"`, false},
		{`python_version == "3.8"`, true},
		{`python_full_version ~= "3.8.0"`, true},
		{`python_full_version ~= "3.7.0"`, false},
		{`sys_platform == "win32"`, false},
		{`sys_platform != "win32" and os_name == "posix"`, true},
		{`sys_platform == "win32" or platform_system == "Linux"`, true},
		{`(sys_platform == "win32" or os_name == "nt") and python_version > "2"`, false},
		{`"linux" in sys_platform`, true},
		{`"win" not in sys_platform`, true},
		{`extra == "test"`, false},
		{`os.name == "posix"`, true},
		{`implementation_name === "cpython"`, true},
	} {
		t.Run(testCase.marker, func(t *testing.T) {
			m, err := ParseMarker(testCase.marker)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := m.Evaluate(env); got != testCase.wanted {
				t.Fatalf("Wanted %v, got %v", testCase.wanted, got)
			}
		})
	}
}

func TestMarkerEvaluatePreRelease(t *testing.T) {
	env := &Environment{PythonVersion: "3.11", PythonFullVersion: "3.11.0a7"}

	for _, testCase := range []struct {
		marker string
		wanted bool
	}{
		{`python_full_version >= "3.11.0b1"`, false},
		{`python_full_version >= "3.11.0a1"`, true},
		{`python_full_version < "3.11.0"`, true},
		{`python_full_version == "3.11.0"`, false},
		{`python_full_version != "3.11.0"`, true},
		{`python_full_version > "3.11.0.dev1"`, true},
		{`python_full_version < "3.10.post1"`, false},
		{`python_version == "3.*"`, true},
		{`python_version == "2.*"`, false},
	} {
		t.Run(testCase.marker, func(t *testing.T) {
			m, err := ParseMarker(testCase.marker)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := m.Evaluate(env); got != testCase.wanted {
				t.Fatalf("Wanted %v, got %v", testCase.wanted, got)
			}
		})
	}
}

func TestMarkerEvaluateExtra(t *testing.T) {
	m, err := ParseMarker(`extra == "Test_Suite"`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !m.Evaluate(&Environment{Extra: "test-suite"}) {
		t.Fatal("Wanted extra names to compare normalized")
	}
}

func TestMarkerEvaluateNilEnvironment(t *testing.T) {
	for marker, wanted := range map[string]bool{
		`sys_platform == "win32"`:                       true,
		`extra == "test"`:                               false,
		`python_version < "3" and extra == "test"`:      false,
		`python_version < "3" or sys_platform == "foo"`: true,
	} {
		m, err := ParseMarker(marker)
		if err != nil {
			t.Fatalf("Unexpected error parsing '%s': %v", marker, err)
		}
		if got := m.Evaluate(nil); got != wanted {
			t.Fatalf("Wanted %v for '%s', got %v", wanted, marker, got)
		}
	}
}

func TestParseMarkerInvalid(t *testing.T) {
	for _, marker := range []string{
		``,
		`python_version`,
		`python_version >=`,
		`unknown_var == "1"`,
		`(python_version == "3"`,
		`python_version == "3`,
		`python_version == "3" and`,
	} {
		if _, err := ParseMarker(marker); err == nil {
			t.Fatalf("Wanted error for '%s', got nil", marker)
		}
	}
}
