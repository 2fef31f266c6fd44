package deployment

import "fmt"

// NotFoundError indicates an operation targeting a deployment id that does
// not exist under the work path.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("deployment %q does not exist", e.ID)
}

// DeploymentError wraps a failure of the underlying provisioning tooling
// during create/start/stop/destroy.
type DeploymentError struct {
	ID  string
	Op  string
	Err error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment %q: %s failed: %v", e.ID, e.Op, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}
