// Package status reduces per-node VM power states into a single
// cluster-level status label.
package status

// NodeState is the runtime condition of a single VM as reported by the
// deployment engine.
type NodeState string

const (
	NotDeployed NodeState = "not deployed"
	Running     NodeState = "running"
	Stopped     NodeState = "stopped"
	Suspended   NodeState = "suspended"
)

// ClusterStatus summarises the states of all nodes in a deployment.
type ClusterStatus string

const (
	ClusterNotDeployed       ClusterStatus = "not deployed"
	ClusterRunning           ClusterStatus = "running"
	ClusterStopped           ClusterStatus = "stopped"
	ClusterSuspended         ClusterStatus = "suspended"
	ClusterPartiallyDeployed ClusterStatus = "partially deployed"
	ClusterPartiallyRunning  ClusterStatus = "partially running"
)

// AdminNode is the node every deployment is guaranteed to have; aggregation
// anchors on its state.
const AdminNode = "admin"

// Aggregate maps a node-name to node-state mapping onto one ClusterStatus.
// The result depends only on the admin node's state and the set of states
// seen on the other nodes, so it is independent of map iteration order.
func Aggregate(nodes map[string]NodeState) ClusterStatus {
	admin := nodes[AdminNode]

	var othersRunning, othersHalted bool
	for name, s := range nodes {
		if name == AdminNode {
			continue
		}
		switch s {
		case Running:
			othersRunning = true
		case Stopped, Suspended:
			othersHalted = true
		}
	}

	switch {
	case admin == NotDeployed && othersRunning:
		return ClusterPartiallyDeployed
	case admin == Running && othersHalted:
		return ClusterPartiallyRunning
	case (admin == Stopped || admin == Suspended) && othersRunning:
		return ClusterPartiallyRunning
	}
	return ClusterStatus(admin)
}
