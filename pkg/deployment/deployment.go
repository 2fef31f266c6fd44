// Package deployment owns the on-disk deployment records and drives the
// Vagrant/libvirt tooling that provisions, starts, stops and destroys the
// cluster VMs.
package deployment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sesdev/sesdev/pkg/config"
	"github.com/sesdev/sesdev/pkg/roles"
	"github.com/sesdev/sesdev/pkg/settings"
	"github.com/sesdev/sesdev/pkg/status"
)

const recordFile = "deployment.yml"

// versionDefaultOS maps a release track to the distro it deploys on when
// the operator did not pick one.
var versionDefaultOS = map[string]string{
	"ses5":     "sles-12-sp3",
	"ses6":     "sles-15-sp1",
	"ses7":     "sles-15-sp2",
	"nautilus": "leap-15.1",
	"octopus":  "leap-15.2",
}

// osBoxMapping maps a distro identifier to its Vagrant box.
var osBoxMapping = map[string]string{
	"leap-15.1":   "opensuse/Leap-15.1.x86_64",
	"leap-15.2":   "opensuse/Leap-15.2.x86_64",
	"tumbleweed":  "opensuse/Tumbleweed.x86_64",
	"sles-12-sp3": "suse/sles-12-sp3",
	"sles-15-sp1": "suse/sles-15-sp1",
	"sles-15-sp2": "suse/sles-15-sp2",
}

// Node is one VM of a deployment.
type Node struct {
	Name   string
	Roles  []string
	Status status.NodeState
}

// Deployment is a created cluster: its frozen settings plus the VMs derived
// from the role list.
type Deployment struct {
	ID       string
	Settings settings.NormalizedConfig
	Nodes    map[string]*Node

	// nodeOrder preserves role-list order for naming and display.
	nodeOrder []string
	path      string
}

type record struct {
	ID       string                 `yaml:"id"`
	Settings map[string]interface{} `yaml:"settings"`
}

// Create makes the deployment directory, renders the Vagrantfile from the
// normalized configuration and freezes the configuration in a record file.
func Create(id string, cfg settings.NormalizedConfig) (*Deployment, error) {
	path := filepath.Join(config.C.WorkPath, id)
	if _, err := os.Stat(path); err == nil {
		return nil, &DeploymentError{ID: id, Op: "create", Err: fmt.Errorf("deployment directory %s already exists", path)}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, &DeploymentError{ID: id, Op: "create", Err: err}
	}

	dep := &Deployment{
		ID:       id,
		Settings: cfg,
		path:     path,
	}
	dep.buildNodes()

	if err := dep.renderVagrantfile(); err != nil {
		_ = os.RemoveAll(path)
		return nil, &DeploymentError{ID: id, Op: "create", Err: err}
	}
	if err := dep.save(); err != nil {
		_ = os.RemoveAll(path)
		return nil, &DeploymentError{ID: id, Op: "create", Err: err}
	}

	log.WithFields(log.Fields{"id": id, "path": path}).Info("created deployment")
	return dep, nil
}

// Load reads a deployment record and probes the current state of its nodes.
func Load(id string) (*Deployment, error) {
	path := filepath.Join(config.C.WorkPath, id)
	data, err := os.ReadFile(filepath.Join(path, recordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, &DeploymentError{ID: id, Op: "load", Err: err}
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, &DeploymentError{ID: id, Op: "load", Err: err}
	}

	dep := &Deployment{
		ID:       id,
		Settings: settings.NormalizedConfig(rec.Settings),
		path:     path,
	}
	dep.buildNodes()
	if err := dep.RefreshStatus(); err != nil {
		log.WithField("id", id).WithError(err).Debug("could not probe node states")
	}
	return dep, nil
}

// List returns every deployment found under the work path, sorted by id.
// With refresh set, node states are probed; otherwise nodes report as not
// deployed until queried.
func List(refresh bool) ([]*Deployment, error) {
	entries, err := os.ReadDir(config.C.WorkPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var deps []*Deployment
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(config.C.WorkPath, entry.Name(), recordFile)); err != nil {
			continue
		}
		var dep *Deployment
		if refresh {
			dep, err = Load(entry.Name())
		} else {
			dep, err = loadRecordOnly(entry.Name())
		}
		if err != nil {
			log.WithField("id", entry.Name()).WithError(err).Warn("skipping unreadable deployment")
			continue
		}
		deps = append(deps, dep)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })
	return deps, nil
}

func loadRecordOnly(id string) (*Deployment, error) {
	path := filepath.Join(config.C.WorkPath, id)
	data, err := os.ReadFile(filepath.Join(path, recordFile))
	if err != nil {
		return nil, err
	}
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	dep := &Deployment{ID: id, Settings: settings.NormalizedConfig(rec.Settings), path: path}
	dep.buildNodes()
	return dep, nil
}

func (d *Deployment) save() error {
	data, err := yaml.Marshal(record{ID: d.ID, Settings: d.Settings})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.path, recordFile), data, 0o644)
}

// buildNodes derives node names from the role list. The group carrying the
// admin role becomes the "admin" node; the rest are numbered in role-list
// order. Status aggregation anchors on the admin node, so when no group
// carries the role the first group still gets the name.
func (d *Deployment) buildNodes() {
	rl := d.Settings.Roles()
	if len(rl) == 0 {
		rl = roles.RoleList{{"admin"}}
	}

	adminIdx := 0
	for i, group := range rl {
		if containsRole(group, "admin") {
			adminIdx = i
			break
		}
	}

	d.Nodes = map[string]*Node{}
	d.nodeOrder = nil
	num := 1
	for i, group := range rl {
		name := status.AdminNode
		if i != adminIdx {
			name = fmt.Sprintf("node%d", num)
			num++
		}
		d.Nodes[name] = &Node{Name: name, Roles: group, Status: status.NotDeployed}
		d.nodeOrder = append(d.nodeOrder, name)
	}
}

func containsRole(group []string, role string) bool {
	for _, r := range group {
		if r == role {
			return true
		}
	}
	return false
}

// NodeNames returns the node names in role-list order.
func (d *Deployment) NodeNames() []string {
	names := make([]string, len(d.nodeOrder))
	copy(names, d.nodeOrder)
	return names
}

// NodeStates returns the per-node states keyed by node name.
func (d *Deployment) NodeStates() map[string]status.NodeState {
	states := map[string]status.NodeState{}
	for name, n := range d.Nodes {
		states[name] = n.Status
	}
	return states
}

// Version returns the release track frozen in the settings.
func (d *Deployment) Version() string {
	return d.Settings.String("version", "")
}

// OS returns the distro the deployment runs on, applying the version
// default when the operator did not choose one.
func (d *Deployment) OS() string {
	if osID := d.Settings.String("os", ""); osID != "" {
		return osID
	}
	if c := config.C; c != nil && c.Defaults.OS != "" {
		return c.Defaults.OS
	}
	return versionDefaultOS[d.Version()]
}

// Box returns the Vagrant box for the deployment.
func (d *Deployment) Box() string {
	if box := d.Settings.String("vagrant_box", ""); box != "" {
		return box
	}
	return osBoxMapping[d.OS()]
}

// Status renders a human-readable summary of the deployment configuration
// and its nodes.
func (d *Deployment) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deployment: %s\n", d.ID)
	fmt.Fprintf(&b, "Version:    %s\n", d.Version())
	fmt.Fprintf(&b, "OS:         %s\n", d.OS())
	fmt.Fprintf(&b, "Box:        %s\n", d.Box())
	if tool := d.Settings.String("deployment_tool", ""); tool != "" {
		fmt.Fprintf(&b, "Tool:       %s\n", tool)
	}
	if repos := d.Settings.Strings("repos"); len(repos) > 0 {
		fmt.Fprintf(&b, "Repos:      %s\n", strings.Join(repos, ", "))
	}
	fmt.Fprintf(&b, "Cluster:    %s\n", status.Aggregate(d.NodeStates()))
	fmt.Fprintf(&b, "Nodes:\n")
	for _, name := range d.nodeOrder {
		n := d.Nodes[name]
		fmt.Fprintf(&b, "  - %-8s %-14s [%s]\n", n.Name, "("+string(n.Status)+")", strings.Join(n.Roles, ", "))
	}
	return b.String()
}
