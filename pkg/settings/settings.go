// Package settings turns the raw command-line overrides into the normalized
// configuration handed to the deployment engine. Only keys the operator
// explicitly set, or that a derivation rule produced, appear in the result;
// everything else is left to downstream defaults.
package settings

import (
	"fmt"

	"github.com/sesdev/sesdev/pkg/roles"
)

// SingleNodeRoles is the exhaustive role set assigned to the one node of a
// --single-node cluster.
var SingleNodeRoles = []string{
	"admin", "storage", "mon", "mgr", "prometheus", "grafana",
	"mds", "igw", "rgw", "ganesha",
}

// singleNodeMinDisks is the floor enforced on num_disks under single-node
// mode; fewer disks cannot form a usable storage cluster on one machine.
const singleNodeMinDisks = 3

// NormalizedConfig maps configuration keys to their frozen values. It is
// built fresh per invocation and consumed once by the deployment engine.
type NormalizedConfig map[string]interface{}

// RawOverrides carries the optional inputs supplied by the operator.
//
// Most fields are gated on their zero value: an empty string or a 0 count is
// treated as "not supplied" and emits no key. This mirrors long-standing
// behaviour and is a known quirk (a deliberate 0 is indistinguishable from
// unset). DeepseaCLI and StopBeforeStage instead use pointers, since false
// and 0 are legitimate values for them.
type RawOverrides struct {
	Roles      string
	OS         string
	NumDisks   int
	CPUs       int
	RAM        int
	DiskSize   int
	SingleNode bool

	LibvirtHost        string
	LibvirtUser        string
	LibvirtStoragePool string

	DeepseaCLI      *bool
	StopBeforeStage *int
	DeepseaRepo     string
	DeepseaBranch   string

	Repos          []string
	VagrantBox     string
	DeploymentTool string
}

// ValidationError indicates an override value that is out of range.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Msg)
}

// Derive builds the NormalizedConfig for a deployment of the given version.
//
// The single-node role override is resolved before the version-specific role
// augmentation, so the augmentation always sees the final first node.
func Derive(version string, o RawOverrides) (NormalizedConfig, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	cfg := NormalizedConfig{}

	if o.SingleNode {
		node := make([]string, len(SingleNodeRoles))
		copy(node, SingleNodeRoles)
		cfg["roles"] = roles.RoleList{node}
	} else if o.Roles != "" {
		rl, err := roles.Parse(o.Roles)
		if err != nil {
			return nil, err
		}
		cfg["roles"] = rl
	}

	switch {
	case o.NumDisks != 0:
		numDisks := o.NumDisks
		if o.SingleNode && numDisks < singleNodeMinDisks {
			numDisks = singleNodeMinDisks
		}
		cfg["num_disks"] = numDisks
	case o.SingleNode:
		cfg["num_disks"] = singleNodeMinDisks
	}

	if o.OS != "" {
		cfg["os"] = o.OS
	}
	if o.CPUs != 0 {
		cfg["cpus"] = o.CPUs
	}
	if o.RAM != 0 {
		cfg["ram"] = o.RAM
	}
	if o.DiskSize != 0 {
		cfg["disk_size"] = o.DiskSize
	}
	if o.LibvirtHost != "" {
		cfg["libvirt_host"] = o.LibvirtHost
	}
	if o.LibvirtUser != "" {
		cfg["libvirt_user"] = o.LibvirtUser
	}
	if o.LibvirtStoragePool != "" {
		cfg["libvirt_storage_pool"] = o.LibvirtStoragePool
	}

	if o.DeepseaCLI != nil {
		cfg["use_deepsea_cli"] = *o.DeepseaCLI
	}
	if o.StopBeforeStage != nil {
		cfg["stop_before_stage"] = *o.StopBeforeStage
	}
	if o.DeepseaRepo != "" {
		cfg["deepsea_git_repo"] = o.DeepseaRepo
	}
	if o.DeepseaBranch != "" {
		cfg["deepsea_git_branch"] = o.DeepseaBranch
	}

	if version != "" {
		cfg["version"] = version
	}
	if len(o.Repos) > 0 {
		repos := make([]string, len(o.Repos))
		copy(repos, o.Repos)
		cfg["repos"] = repos
	}
	if o.VagrantBox != "" {
		cfg["vagrant_box"] = o.VagrantBox
	}
	if o.DeploymentTool != "" {
		cfg["deployment_tool"] = o.DeploymentTool
	}

	// ses5 clusters always run openATTIC on the admin node.
	if version == "ses5" {
		if rl, ok := cfg["roles"].(roles.RoleList); ok && len(rl) > 0 {
			rl[0] = append(rl[0], "openattic")
			cfg["roles"] = rl
		}
	}

	return cfg, nil
}

func (o RawOverrides) validate() error {
	if o.NumDisks < 0 {
		return &ValidationError{Field: "num-disks", Msg: "must not be negative"}
	}
	if o.CPUs < 0 {
		return &ValidationError{Field: "cpus", Msg: "must not be negative"}
	}
	if o.RAM < 0 {
		return &ValidationError{Field: "ram", Msg: "must not be negative"}
	}
	if o.DiskSize < 0 {
		return &ValidationError{Field: "disk-size", Msg: "must not be negative"}
	}
	if o.StopBeforeStage != nil && *o.StopBeforeStage < 0 {
		return &ValidationError{Field: "stop-before-deepsea-stage", Msg: "must not be negative"}
	}
	return nil
}

// Roles returns the role list frozen in the config, tolerating both the
// in-memory representation and the generic shape produced by unmarshalling
// a persisted deployment record.
func (c NormalizedConfig) Roles() roles.RoleList {
	switch v := c["roles"].(type) {
	case roles.RoleList:
		return v
	case [][]string:
		return roles.RoleList(v)
	case []interface{}:
		rl := roles.RoleList{}
		for _, group := range v {
			items, ok := group.([]interface{})
			if !ok {
				continue
			}
			node := make([]string, 0, len(items))
			for _, item := range items {
				node = append(node, fmt.Sprint(item))
			}
			rl = append(rl, node)
		}
		return rl
	}
	return nil
}

// String returns the string value stored under key, or def if the key is
// absent.
func (c NormalizedConfig) String(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

// Int returns the integer value stored under key, or def if the key is
// absent.
func (c NormalizedConfig) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Strings returns the string list stored under key.
func (c NormalizedConfig) Strings(key string) []string {
	switch v := c[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}
