package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pipetree/pipetree/pkg/devtree"
	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// newInspectCmd creates the inspect command for summarizing a device
// graph manifest: the devices it declares, their port and endpoint
// structure, and where each endpoint's remote reference points.
//
// With no device argument on a terminal, an interactive picker lists
// the manifest's devices.
func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <manifest> [device-path]",
		Short: "Summarize a device graph manifest",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			tree, pl, err := devtree.Load(args[0])
			if err != nil {
				return err
			}
			logger.Debug("loaded manifest", "path", args[0], "nodes", tree.Len())

			devicePath := ""
			if len(args) == 2 {
				devicePath = args[1]
			}
			if devicePath == "" {
				devicePath, err = chooseDevice(tree, pl, isatty.IsTerminal(os.Stdout.Fd()))
				if err != nil {
					return err
				}
				if devicePath == "" {
					printWarning("no device selected")
					return nil
				}
			}

			return inspectDevice(tree, devicePath)
		},
	}
	return cmd
}

// chooseDevice picks a device path: the manifest's pipeline device when
// set, the sole declared device when there is exactly one, otherwise an
// interactive picker. The picker needs a terminal; without one the
// caller has to name a device.
func chooseDevice(tree *devtree.Tree, pl *devtree.Pipeline, interactive bool) (string, error) {
	if pl != nil && pl.Device != "" {
		return pl.Device, nil
	}

	devices := listDevices(tree)
	if len(devices) == 0 {
		return "", nil
	}
	if len(devices) == 1 {
		return devices[0].Path, nil
	}
	if !interactive {
		return "", pterrors.New(pterrors.ErrCodeInvalidInput,
			"manifest declares %d devices, pass a device path to pick one", len(devices))
	}
	printInfo("Found %d devices", len(devices))
	return pickDevice(devices)
}

// listDevices collects every node carrying a compatible string.
func listDevices(tree *devtree.Tree) []DeviceEntry {
	var out []DeviceEntry
	for n := range tree.Nodes() {
		if n.Compatible() == "" {
			continue
		}
		out = append(out, DeviceEntry{
			Path:       n.Path(),
			Compatible: n.Compatible(),
			Available:  n.Available(),
		})
	}
	return out
}

// inspectDevice prints the device's graph structure.
func inspectDevice(tree *devtree.Tree, path string) error {
	ref := tree.Lookup(path)
	if ref == nil {
		printError("device %s not found in graph", path)
		return fmt.Errorf("device %s not found", path)
	}
	defer ref.Release()

	fmt.Println(StyleTitle.Render(path))
	printKeyValue("compatible", orDash(ref.Node().Compatible()))
	printKeyValue("available", fmt.Sprintf("%v", ref.Available()))
	printKeyValue("children", fmt.Sprintf("%d", ref.Node().ChildCount()))
	if ref.GraphPresent() {
		printKeyValue("graph", "present")
	} else {
		printKeyValue("graph", "absent")
	}
	fmt.Println()

	count := 0
	for ep := range ref.Endpoints() {
		count++
		info := ep.ParseEndpoint()
		remote := ep.RemoteEndpoint()
		target := "(dangling)"
		if remote != nil {
			target = remote.Path()
			remote.Release()
		}
		status := ""
		if !ep.Available() {
			status = StyleWarning.Render(" (disabled)")
		}
		printDetail("port %d endpoint %d %s %s%s", info.Port, info.ID, iconArrow, target, status)
	}
	if count == 0 {
		printDetail("no endpoints")
	}
	printSuccess("%d endpoint(s)", count)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
