package deployment

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/sesdev/sesdev/internal"
	"github.com/sesdev/sesdev/pkg/command"
	"github.com/sesdev/sesdev/pkg/status"
)

// servicePorts are the remote ports of the services a tunnel can target by
// name.
var servicePorts = map[string]int{
	"dashboard": 8443,
	"grafana":   3000,
	"openattic": 80,
}

// sshTarget is the connection endpoint of one node, as reported by
// `vagrant ssh-config`.
type sshTarget struct {
	Host         string
	Port         string
	User         string
	IdentityFile string
}

// StartPortForwarding forwards a local listener to a service port on the
// given node. It blocks, accepting connections until the process is
// interrupted.
func (d *Deployment) StartPortForwarding(service, node string, remotePort, localPort int, localAddr string) error {
	if service != "" {
		port, ok := servicePorts[service]
		if !ok {
			return fmt.Errorf("unknown service %q", service)
		}
		remotePort = port
	}
	if remotePort == 0 {
		return fmt.Errorf("no service or remote port given")
	}
	if localPort == 0 {
		localPort = remotePort
	}
	if localAddr == "" {
		localAddr = "localhost"
	}
	if node == "" {
		node = status.AdminNode
	}
	if _, ok := d.Nodes[node]; !ok {
		return &DeploymentError{ID: d.ID, Op: "tunnel", Err: fmt.Errorf("no such node %q", node)}
	}

	target, err := d.sshTarget(node)
	if err != nil {
		return &DeploymentError{ID: d.ID, Op: "tunnel", Err: err}
	}

	key, err := os.ReadFile(target.IdentityFile)
	if err != nil {
		return &DeploymentError{ID: d.ID, Op: "tunnel", Err: fmt.Errorf("reading identity file: %w", err)}
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return &DeploymentError{ID: d.ID, Op: "tunnel", Err: fmt.Errorf("parsing identity file: %w", err)}
	}

	clientCfg := &ssh.ClientConfig{
		User: target.User,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// Dev VM host keys churn on every redeploy.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}
	client, err := ssh.Dial("tcp", net.JoinHostPort(target.Host, target.Port), clientCfg)
	if err != nil {
		return &DeploymentError{ID: d.ID, Op: "tunnel", Err: err}
	}
	defer client.Close()

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", localAddr, localPort))
	if err != nil {
		return &DeploymentError{ID: d.ID, Op: "tunnel", Err: err}
	}
	defer listener.Close()

	log.WithFields(log.Fields{
		"node":        node,
		"remote-port": remotePort,
		"local":       listener.Addr().String(),
	}).Info("tunnel established")
	fmt.Printf("Forwarding %s -> %s:%d (Ctrl+C to stop)\n", listener.Addr(), node, remotePort)

	for {
		conn, err := listener.Accept()
		if err != nil {
			return &DeploymentError{ID: d.ID, Op: "tunnel", Err: err}
		}
		go forward(conn, client, remotePort)
	}
}

func forward(local net.Conn, client *ssh.Client, remotePort int) {
	defer local.Close()
	remote, err := client.Dial("tcp", fmt.Sprintf("localhost:%d", remotePort))
	if err != nil {
		log.WithError(err).Warn("could not reach remote port")
		return
	}
	defer remote.Close()

	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(remote, local)
		close(done)
	}()
	_, _ = io.Copy(local, remote)
	<-done
}

// sshTarget resolves the node's endpoint from `vagrant ssh-config`.
func (d *Deployment) sshTarget(node string) (*sshTarget, error) {
	cmd := command.ShellCommander("vagrant", "ssh-config", node)
	cmd.SetDir(d.path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("vagrant ssh-config: %s", internal.GetCmdStdErr(err))
	}
	return parseSSHConfig(string(out))
}

func parseSSHConfig(out string) (*sshTarget, error) {
	target := &sshTarget{Port: "22"}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "HostName":
			target.Host = fields[1]
		case "User":
			target.User = fields[1]
		case "Port":
			target.Port = fields[1]
		case "IdentityFile":
			target.IdentityFile = strings.Trim(fields[1], `"`)
		}
	}
	if target.Host == "" {
		return nil, fmt.Errorf("no HostName in ssh-config output")
	}
	return target, nil
}
