package deployment

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sesdev/sesdev/internal"
	"github.com/sesdev/sesdev/pkg/command"
	"github.com/sesdev/sesdev/pkg/status"
)

// ProgressFunc receives chunks of provisioning output as work proceeds.
type ProgressFunc = internal.ProgressFunc

// Start brings the deployment's VMs up, running the full provisioning the
// first time. An empty node means all nodes.
func (d *Deployment) Start(progress ProgressFunc, node string) error {
	args := []string{"up"}
	if node != "" {
		args = append(args, node)
	}
	if err := d.vagrant(progress, args...); err != nil {
		return &DeploymentError{ID: d.ID, Op: "start", Err: err}
	}
	if err := d.RefreshStatus(); err != nil {
		log.WithField("id", d.ID).WithError(err).Debug("could not probe node states")
	}
	return nil
}

// Stop halts the deployment's VMs. An empty node means all nodes.
func (d *Deployment) Stop(progress ProgressFunc, node string) error {
	args := []string{"halt"}
	if node != "" {
		args = append(args, node)
	}
	if err := d.vagrant(progress, args...); err != nil {
		return &DeploymentError{ID: d.ID, Op: "stop", Err: err}
	}
	if err := d.RefreshStatus(); err != nil {
		log.WithField("id", d.ID).WithError(err).Debug("could not probe node states")
	}
	return nil
}

// Destroy tears down the VMs and removes the deployment directory.
func (d *Deployment) Destroy(progress ProgressFunc) error {
	if err := d.vagrant(progress, "destroy", "-f"); err != nil {
		return &DeploymentError{ID: d.ID, Op: "destroy", Err: err}
	}
	if err := os.RemoveAll(d.path); err != nil {
		return &DeploymentError{ID: d.ID, Op: "destroy", Err: err}
	}
	log.WithField("id", d.ID).Info("destroyed deployment")
	return nil
}

// SSH replaces the process with an interactive shell on the given node.
func (d *Deployment) SSH(node string) error {
	if node == "" {
		node = status.AdminNode
	}
	if _, ok := d.Nodes[node]; !ok {
		return &DeploymentError{ID: d.ID, Op: "ssh", Err: fmt.Errorf("no such node %q", node)}
	}
	if err := os.Chdir(d.path); err != nil {
		return &DeploymentError{ID: d.ID, Op: "ssh", Err: err}
	}
	return command.Syscall("vagrant", []string{"ssh", node})
}

// RefreshStatus probes the current VM states via vagrant and updates the
// node records.
func (d *Deployment) RefreshStatus() error {
	cmd := command.ShellCommander("vagrant", "status", "--machine-readable")
	cmd.SetDir(d.path)
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("vagrant status: %s", internal.GetCmdStdErr(err))
	}
	for name, state := range parseMachineReadable(string(out)) {
		if n, ok := d.Nodes[name]; ok {
			n.Status = state
		}
	}
	return nil
}

func (d *Deployment) vagrant(progress ProgressFunc, args ...string) error {
	log.WithFields(log.Fields{"id": d.ID, "args": args}).Info("running vagrant")
	progress(fmt.Sprintf("=== Running vagrant %s ===\n", strings.Join(args, " ")))
	cmd := command.ShellCommander("vagrant", args...)
	cmd.SetDir(d.path)
	return internal.RunCmdWithProgress(cmd, progress)
}

// parseMachineReadable extracts per-node states from the output of
// `vagrant status --machine-readable`, whose lines have the form
// timestamp,target,type,data.
func parseMachineReadable(out string) map[string]status.NodeState {
	states := map[string]status.NodeState{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), ",", 4)
		if len(fields) < 4 || fields[1] == "" || fields[2] != "state" {
			continue
		}
		states[fields[1]] = nodeStateFromVagrant(fields[3])
	}
	return states
}

func nodeStateFromVagrant(s string) status.NodeState {
	switch s {
	case "running":
		return status.Running
	case "poweroff", "shutoff":
		return status.Stopped
	case "saved", "paused":
		return status.Suspended
	default:
		// not_created and anything unrecognised
		return status.NotDeployed
	}
}
