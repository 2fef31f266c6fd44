package cmd

import "testing"

func TestDeploymentToolFor(t *testing.T) {
	tests := []struct {
		version    string
		useDeepsea bool
		want       string
	}{
		{"ses5", false, ""},
		{"ses5", true, ""},
		{"ses6", false, ""},
		{"ses7", false, ""},
		{"ses7", true, "deepsea"},
		{"nautilus", false, ""},
		{"octopus", false, "deepsea"},
		{"octopus", true, "deepsea"},
	}

	for _, tc := range tests {
		if got := deploymentToolFor(tc.version, tc.useDeepsea); got != tc.want {
			t.Errorf("deploymentToolFor(%q, %v) = %q, want %q",
				tc.version, tc.useDeepsea, got, tc.want)
		}
	}
}

func TestValidOS(t *testing.T) {
	for _, os := range osChoices {
		if !validOS(os) {
			t.Errorf("validOS(%q) = false", os)
		}
	}
	for _, os := range []string{"", "leap", "ubuntu-22.04", "sles-15"} {
		if validOS(os) {
			t.Errorf("validOS(%q) = true", os)
		}
	}
}
