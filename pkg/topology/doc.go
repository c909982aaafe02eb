// Package topology resolves the physical topology of a display
// pipeline described by a device graph: which controllers can drive
// which output ports, the ordered component match list a binding
// framework needs, the active input path of a bound encoder, and the
// panel or bridge connected downstream of an output node.
//
// # Components
//
//   - [ControllerList.PortMask]: bitmask position of the controller
//     bound to a port.
//   - [Resolver.PossibleControllers]: union of the masks of all
//     controllers reachable through a port's endpoints.
//   - [Resolver.ComponentProbe]: two-pass scan of a device's ports
//     list producing an ordered [MatchList] (ports before encoders)
//     for a [Binder].
//   - [Resolver.ActiveEndpoint]: the endpoint connecting a bound
//     encoder to its controller.
//   - [Resolver.FindSink]: the downstream panel or bridge, tolerant of
//     graphs that omit the standard "ports" container.
//
// # Resource discipline
//
// Every devtree handle acquired during resolution is released before
// the operation returns, on every path. The controller, panel and
// bridge registries are externally owned and only read here; the mask
// index of a controller is derived freshly on every computation and
// never cached.
package topology
