package deployment

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sesdev/sesdev/pkg/command"
	"github.com/sesdev/sesdev/pkg/config"
	"github.com/sesdev/sesdev/pkg/settings"
	"github.com/sesdev/sesdev/pkg/status"
)

func setupConfig(t *testing.T) {
	t.Helper()
	orig := config.C
	config.C = &config.Config{
		WorkPath: t.TempDir(),
		Defaults: config.Defaults{CPUs: 2, RAM: 4, DiskSize: 8, NumDisks: 2},
		Libvirt:  config.Libvirt{StoragePool: "default"},
	}
	t.Cleanup(func() { config.C = orig })
}

// mockCommand implements command.IShellCommand and returns canned output.
type mockCommand struct {
	out []byte
	err error
}

func (m *mockCommand) Run() error                           { return m.err }
func (m *mockCommand) Output() ([]byte, error)              { return m.out, m.err }
func (m *mockCommand) CombinedOutput() ([]byte, error)      { return m.out, m.err }
func (m *mockCommand) RunProgressive() error                { return m.err }
func (m *mockCommand) SetDir(string)                        {}
func (m *mockCommand) AddArgs(...string)                    {}
func (m *mockCommand) Start() error                         { return m.err }
func (m *mockCommand) SetStdin(io.Reader)                   {}
func (m *mockCommand) SetStdout(io.Writer)                  {}
func (m *mockCommand) StdoutPipe() (io.ReadCloser, error)   { return io.NopCloser(strings.NewReader(string(m.out))), nil }
func (m *mockCommand) StderrPipe() (io.ReadCloser, error)   { return io.NopCloser(strings.NewReader("")), nil }
func (m *mockCommand) Wait() error                          { return m.err }

func mockShellCommander(t *testing.T, out string) {
	t.Helper()
	orig := command.ShellCommander
	command.ShellCommander = func(name string, arg ...string) command.IShellCommand {
		return &mockCommand{out: []byte(out)}
	}
	t.Cleanup(func() { command.ShellCommander = orig })
}

func mustDerive(t *testing.T, version string, o settings.RawOverrides) settings.NormalizedConfig {
	t.Helper()
	cfg, err := settings.Derive(version, o)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestBuildNodesNaming(t *testing.T) {
	setupConfig(t)
	cfg := mustDerive(t, "ses6", settings.RawOverrides{
		Roles: "[admin, mon, mgr],[storage, mon],[storage]",
	})
	dep := &Deployment{ID: "x", Settings: cfg}
	dep.buildNodes()

	want := []string{"admin", "node1", "node2"}
	if !reflect.DeepEqual(dep.NodeNames(), want) {
		t.Errorf("NodeNames() = %v, want %v", dep.NodeNames(), want)
	}
	if !reflect.DeepEqual(dep.Nodes["node1"].Roles, []string{"storage", "mon"}) {
		t.Errorf("node1 roles = %v", dep.Nodes["node1"].Roles)
	}
}

func TestBuildNodesAdminNotFirst(t *testing.T) {
	setupConfig(t)
	cfg := mustDerive(t, "ses6", settings.RawOverrides{
		Roles: "[storage, mon],[admin, mon, mgr]",
	})
	dep := &Deployment{ID: "x", Settings: cfg}
	dep.buildNodes()

	want := []string{"node1", "admin"}
	if !reflect.DeepEqual(dep.NodeNames(), want) {
		t.Errorf("NodeNames() = %v, want %v", dep.NodeNames(), want)
	}
}

func TestBuildNodesNoRoles(t *testing.T) {
	setupConfig(t)
	dep := &Deployment{ID: "x", Settings: settings.NormalizedConfig{}}
	dep.buildNodes()

	if len(dep.Nodes) != 1 || dep.Nodes["admin"] == nil {
		t.Fatalf("Nodes = %v, want a single admin node", dep.Nodes)
	}
}

func TestBuildNodesNoAdminRole(t *testing.T) {
	setupConfig(t)
	cfg := mustDerive(t, "ses6", settings.RawOverrides{Roles: "[storage],[storage]"})
	dep := &Deployment{ID: "x", Settings: cfg}
	dep.buildNodes()

	// Aggregation anchors on admin, so the first group takes the name.
	if dep.Nodes["admin"] == nil {
		t.Fatalf("Nodes = %v, want an admin node", dep.NodeNames())
	}
	if !reflect.DeepEqual(dep.NodeNames(), []string{"admin", "node1"}) {
		t.Errorf("NodeNames() = %v", dep.NodeNames())
	}
}

func TestCreateLoadRoundTrip(t *testing.T) {
	setupConfig(t)
	mockShellCommander(t, "")
	cfg := mustDerive(t, "octopus", settings.RawOverrides{
		Roles:    "[admin, mon, mgr],[storage, mon]",
		NumDisks: 4,
		DiskSize: 10,
		Repos:    []string{"http://repo/one", "http://repo/two"},
	})

	dep, err := Create("round_trip", cfg)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := Load("round_trip")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Version() != "octopus" {
		t.Errorf("Version() = %q, want octopus", loaded.Version())
	}
	if loaded.OS() != "leap-15.2" {
		t.Errorf("OS() = %q, want leap-15.2 (octopus default)", loaded.OS())
	}
	if !reflect.DeepEqual(loaded.NodeNames(), dep.NodeNames()) {
		t.Errorf("NodeNames() = %v, want %v", loaded.NodeNames(), dep.NodeNames())
	}
	if !reflect.DeepEqual(loaded.Settings.Strings("repos"), []string{"http://repo/one", "http://repo/two"}) {
		t.Errorf("repos = %v", loaded.Settings.Strings("repos"))
	}
	if loaded.Settings.Int("num_disks", 0) != 4 {
		t.Errorf("num_disks = %d, want 4", loaded.Settings.Int("num_disks", 0))
	}
}

func TestCreateExistingFails(t *testing.T) {
	setupConfig(t)
	cfg := mustDerive(t, "ses6", settings.RawOverrides{SingleNode: true})

	if _, err := Create("dup", cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := Create("dup", cfg); err == nil {
		t.Fatal("second Create succeeded, want DeploymentError")
	}
}

func TestLoadMissing(t *testing.T) {
	setupConfig(t)
	_, err := Load("no_such_cluster")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("err = %v (%T), want *NotFoundError", err, err)
	}
}

func TestRenderVagrantfile(t *testing.T) {
	setupConfig(t)
	cfg := mustDerive(t, "nautilus", settings.RawOverrides{
		Roles:    "[admin, mon],[storage, mon]",
		NumDisks: 3,
		DiskSize: 10,
		CPUs:     4,
		RAM:      8,
	})

	if _, err := Create("render", cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(config.C.WorkPath, "render", "Vagrantfile"))
	if err != nil {
		t.Fatal(err)
	}
	vf := string(data)

	for _, want := range []string{
		`config.vm.box = "opensuse/Leap-15.1.x86_64"`,
		`config.vm.define "admin"`,
		`config.vm.define "node1"`,
		"lv.cpus = 4",
		"lv.memory = 8192",
		`lv.storage_pool_name = "default"`,
	} {
		if !strings.Contains(vf, want) {
			t.Errorf("Vagrantfile missing %q:\n%s", want, vf)
		}
	}

	// Only the storage node gets disks: 3 of them.
	if got := strings.Count(vf, `lv.storage :file, size: "10G"`); got != 3 {
		t.Errorf("storage disk lines = %d, want 3", got)
	}
}

func TestRefreshStatusParsesVagrantOutput(t *testing.T) {
	setupConfig(t)
	cfg := mustDerive(t, "ses6", settings.RawOverrides{Roles: "[admin, mon],[storage]"})
	dep, err := Create("probe", cfg)
	if err != nil {
		t.Fatal(err)
	}

	mockShellCommander(t, strings.Join([]string{
		"1658483521,admin,metadata,provider,libvirt",
		"1658483521,admin,state,running",
		"1658483521,node1,state,poweroff",
		"",
	}, "\n"))

	if err := dep.RefreshStatus(); err != nil {
		t.Fatal(err)
	}
	if dep.Nodes["admin"].Status != status.Running {
		t.Errorf("admin status = %q, want running", dep.Nodes["admin"].Status)
	}
	if dep.Nodes["node1"].Status != status.Stopped {
		t.Errorf("node1 status = %q, want stopped", dep.Nodes["node1"].Status)
	}
	if got := status.Aggregate(dep.NodeStates()); got != status.ClusterPartiallyRunning {
		t.Errorf("aggregate = %q, want partially running", got)
	}
}

func TestParseMachineReadable(t *testing.T) {
	out := strings.Join([]string{
		"1658483521,admin,provider-name,libvirt",
		"1658483521,admin,state,not_created",
		"1658483521,node1,state,running",
		"1658483521,node2,state,saved",
		"1658483521,node3,state,shutoff",
		"1658483521,,ui-info,some message",
	}, "\n")

	got := parseMachineReadable(out)
	want := map[string]status.NodeState{
		"admin": status.NotDeployed,
		"node1": status.Running,
		"node2": status.Suspended,
		"node3": status.Stopped,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseMachineReadable = %v, want %v", got, want)
	}
}

func TestParseSSHConfig(t *testing.T) {
	out := `Host admin
  HostName 192.168.121.34
  User vagrant
  Port 22
  UserKnownHostsFile /dev/null
  StrictHostKeyChecking no
  IdentityFile "/home/user/.sesdev/mini/.vagrant/machines/admin/libvirt/private_key"
  IdentitiesOnly yes
`
	target, err := parseSSHConfig(out)
	if err != nil {
		t.Fatal(err)
	}
	if target.Host != "192.168.121.34" || target.User != "vagrant" || target.Port != "22" {
		t.Errorf("target = %+v", target)
	}
	if target.IdentityFile != "/home/user/.sesdev/mini/.vagrant/machines/admin/libvirt/private_key" {
		t.Errorf("IdentityFile = %q", target.IdentityFile)
	}
}

func TestParseSSHConfigNoHost(t *testing.T) {
	if _, err := parseSSHConfig("User vagrant\n"); err == nil {
		t.Fatal("parseSSHConfig succeeded without HostName")
	}
}
