package topology

import (
	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// Encoder is an externally-owned encoder instance. Once the binding
// framework has routed a controller to it, Controller points at the
// feeding controller; the core only reads that back-reference.
type Encoder struct {
	Name       string
	Controller *Controller
}

// ActiveEndpoint finds the endpoint of the encoder's input node that
// connects to the controller currently feeding it, and returns that
// endpoint's parsed connection descriptor.
//
// The remote port handle of each candidate is needed only for the
// identity comparison and is released immediately. At most one
// endpoint can match since comparison is exact. Errors: INVALID_INPUT
// when node or the encoder's controller reference is absent,
// ENDPOINT_NOT_FOUND when no endpoint reaches the controller's port.
func (r *Resolver) ActiveEndpoint(node *devtree.Ref, enc *Encoder) (devtree.EndpointInfo, error) {
	if node == nil || enc == nil || enc.Controller == nil {
		return devtree.EndpointInfo{}, pterrors.New(pterrors.ErrCodeInvalidInput,
			"active endpoint lookup needs an input node and a routed encoder")
	}

	var (
		info  devtree.EndpointInfo
		found bool
	)
	for ep := range node.Endpoints() {
		remote := ep.RemotePort()
		target := remote.Node()
		remote.Release()
		if target != nil && target == enc.Controller.Port {
			info = ep.ParseEndpoint()
			found = true
			break
		}
	}
	if !found {
		return devtree.EndpointInfo{}, pterrors.New(pterrors.ErrCodeEndpointNotFound,
			"%s: no endpoint reaches the port of controller %s", node.Path(), enc.Controller.Name)
	}
	return info, nil
}
