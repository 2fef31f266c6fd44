package settings_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/sesdev/sesdev/pkg/roles"
	"github.com/sesdev/sesdev/pkg/settings"
)

func TestDeriveEmptyOverrides(t *testing.T) {
	cfg, err := settings.Derive("", settings.RawOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg) != 0 {
		t.Errorf("Derive with no overrides produced keys: %v", cfg)
	}
}

func TestDeriveOmitsUnsetKeys(t *testing.T) {
	cfg, err := settings.Derive("ses6", settings.RawOverrides{CPUs: 4})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"roles", "os", "num_disks", "ram", "disk_size",
		"libvirt_host", "libvirt_user", "libvirt_storage_pool",
		"use_deepsea_cli", "stop_before_stage", "deepsea_git_repo",
		"deepsea_git_branch", "repos", "vagrant_box", "deployment_tool",
	} {
		if _, ok := cfg[key]; ok {
			t.Errorf("key %q emitted although its input was not supplied", key)
		}
	}
	if cfg["cpus"] != 4 {
		t.Errorf("cpus = %v, want 4", cfg["cpus"])
	}
	if cfg["version"] != "ses6" {
		t.Errorf("version = %v, want ses6", cfg["version"])
	}
}

func TestDeriveSingleNodeDiskFloor(t *testing.T) {
	tests := []struct {
		name     string
		numDisks int
		want     int
	}{
		{"absent defaults to floor", 0, 3},
		{"below floor raised", 2, 3},
		{"above floor kept", 5, 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := settings.Derive("ses6", settings.RawOverrides{
				SingleNode: true,
				NumDisks:   tc.numDisks,
			})
			if err != nil {
				t.Fatal(err)
			}
			if cfg["num_disks"] != tc.want {
				t.Errorf("num_disks = %v, want %d", cfg["num_disks"], tc.want)
			}
		})
	}
}

func TestDeriveNumDisksWithoutSingleNode(t *testing.T) {
	cfg, err := settings.Derive("ses6", settings.RawOverrides{NumDisks: 2})
	if err != nil {
		t.Fatal(err)
	}
	if cfg["num_disks"] != 2 {
		t.Errorf("num_disks = %v, want 2", cfg["num_disks"])
	}
}

func TestDeriveSingleNodeReplacesRoles(t *testing.T) {
	cfg, err := settings.Derive("ses6", settings.RawOverrides{
		SingleNode: true,
		Roles:      "[admin],[storage]",
	})
	if err != nil {
		t.Fatal(err)
	}
	rl := cfg.Roles()
	if len(rl) != 1 {
		t.Fatalf("single-node roles = %v, want one node", rl)
	}
	if !reflect.DeepEqual(rl[0], settings.SingleNodeRoles) {
		t.Errorf("single-node roles = %v, want %v", rl[0], settings.SingleNodeRoles)
	}
}

func TestDeriveParsesRoles(t *testing.T) {
	cfg, err := settings.Derive("ses6", settings.RawOverrides{
		Roles: "[admin, mon, mgr],[storage, mon, mgr, mds]",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := roles.RoleList{{"admin", "mon", "mgr"}, {"storage", "mon", "mgr", "mds"}}
	if !reflect.DeepEqual(cfg.Roles(), want) {
		t.Errorf("roles = %v, want %v", cfg.Roles(), want)
	}
}

func TestDeriveRoleParseErrorPropagates(t *testing.T) {
	_, err := settings.Derive("ses6", settings.RawOverrides{Roles: "[admin, mon"})
	var parseErr *roles.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("err = %v, want *roles.ParseError", err)
	}
}

func TestDeriveExplicitPresenceFields(t *testing.T) {
	deepseaCLI := false
	stage := 0
	cfg, err := settings.Derive("ses6", settings.RawOverrides{
		DeepseaCLI:      &deepseaCLI,
		StopBeforeStage: &stage,
	})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := cfg["use_deepsea_cli"]; !ok || v != false {
		t.Errorf("use_deepsea_cli = %v (present=%v), want false", v, ok)
	}
	if v, ok := cfg["stop_before_stage"]; !ok || v != 0 {
		t.Errorf("stop_before_stage = %v (present=%v), want 0", v, ok)
	}
}

func TestDeriveSes5AppendsOpenattic(t *testing.T) {
	cfg, err := settings.Derive("ses5", settings.RawOverrides{
		Roles: "[admin, mon],[storage]",
	})
	if err != nil {
		t.Fatal(err)
	}
	rl := cfg.Roles()
	want := []string{"admin", "mon", "openattic"}
	if !reflect.DeepEqual(rl[0], want) {
		t.Errorf("first node roles = %v, want %v", rl[0], want)
	}
	if !reflect.DeepEqual(rl[1], []string{"storage"}) {
		t.Errorf("second node roles changed: %v", rl[1])
	}
}

func TestDeriveSes5WithoutRolesIsNoop(t *testing.T) {
	cfg, err := settings.Derive("ses5", settings.RawOverrides{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cfg["roles"]; ok {
		t.Errorf("roles key emitted without any role input: %v", cfg["roles"])
	}
}

func TestDeriveSes5SingleNodeGetsOpenattic(t *testing.T) {
	cfg, err := settings.Derive("ses5", settings.RawOverrides{SingleNode: true})
	if err != nil {
		t.Fatal(err)
	}
	rl := cfg.Roles()
	if len(rl) != 1 {
		t.Fatalf("roles = %v, want one node", rl)
	}
	last := rl[0][len(rl[0])-1]
	if last != "openattic" {
		t.Errorf("last role = %q, want openattic", last)
	}
}

func TestDeriveRepoOrderPreserved(t *testing.T) {
	repos := []string{"http://repo/c", "http://repo/a", "http://repo/b"}
	cfg, err := settings.Derive("ses6", settings.RawOverrides{Repos: repos})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Strings("repos"), repos) {
		t.Errorf("repos = %v, want %v", cfg.Strings("repos"), repos)
	}
}

func TestDeriveScalarPassthroughs(t *testing.T) {
	cfg, err := settings.Derive("octopus", settings.RawOverrides{
		OS:                 "leap-15.2",
		CPUs:               8,
		RAM:                16,
		DiskSize:           20,
		LibvirtHost:        "virthost",
		LibvirtUser:        "virtuser",
		LibvirtStoragePool: "pool",
		DeepseaRepo:        "http://git/deepsea",
		DeepseaBranch:      "devel",
		VagrantBox:         "custom/box",
		DeploymentTool:     "deepsea",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"os": "leap-15.2", "cpus": 8, "ram": 16, "disk_size": 20,
		"libvirt_host": "virthost", "libvirt_user": "virtuser",
		"libvirt_storage_pool": "pool",
		"deepsea_git_repo":     "http://git/deepsea",
		"deepsea_git_branch":   "devel",
		"vagrant_box":          "custom/box",
		"deployment_tool":      "deepsea",
		"version":              "octopus",
	}
	for key, val := range want {
		if cfg[key] != val {
			t.Errorf("%s = %v, want %v", key, cfg[key], val)
		}
	}
}

func TestDeriveValidation(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		o    settings.RawOverrides
	}{
		{"negative num-disks", settings.RawOverrides{NumDisks: -1}},
		{"negative cpus", settings.RawOverrides{CPUs: -2}},
		{"negative ram", settings.RawOverrides{RAM: -4}},
		{"negative disk-size", settings.RawOverrides{DiskSize: -8}},
		{"negative stage", settings.RawOverrides{StopBeforeStage: &negative}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := settings.Derive("ses6", tc.o)
			var validationErr *settings.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("err = %v, want *ValidationError", err)
			}
		})
	}
}
