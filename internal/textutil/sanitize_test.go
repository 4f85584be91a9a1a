package textutil

import "testing"

func TestPackageName(t *testing.T) {
	cases := map[string]string{
		"demo":          "demo",
		"My-Project":    "my_project",
		"data.tools":    "data_tools",
		" spaced name ": "spaced_name",
		"2fast":         "_2fast",
		"--":            "",
	}
	for input, want := range cases {
		if got := PackageName(input); got != want {
			t.Errorf("PackageName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestProjectTitle(t *testing.T) {
	cases := map[string]string{
		"my-data_tool": "My Data Tool",
		"demo":         "Demo",
		"":             "Project Title",
		"--":           "Project Title",
	}
	for input, want := range cases {
		if got := ProjectTitle(input); got != want {
			t.Errorf("ProjectTitle(%q) = %q, want %q", input, got, want)
		}
	}
}
