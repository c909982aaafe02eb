package devtree

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	pterrors "github.com/pipetree/pipetree/pkg/errors"
)

// PanelDecl declares a panel device in the manifest's pipeline section.
type PanelDecl struct {
	Path string `toml:"path"`
	Name string `toml:"name"` // defaults to the node's base name
}

// BridgeDecl declares a bridge device in the manifest's pipeline section.
type BridgeDecl struct {
	Path string `toml:"path"`
	Name string `toml:"name"`
}

// Pipeline is the manifest's [pipeline] section: the master device to
// probe plus the sink devices that populate the panel and bridge
// registries.
type Pipeline struct {
	Device  string       `toml:"device"`
	Panels  []PanelDecl  `toml:"panel"`
	Bridges []BridgeDecl `toml:"bridge"`
}

// manifest is the raw TOML shape: an ordered [[node]] array plus an
// optional [pipeline] table. Document order of the node array defines
// child order in the tree.
type manifest struct {
	Nodes    []nodeSpec `toml:"node"`
	Pipeline Pipeline   `toml:"pipeline"`
}

type nodeSpec struct {
	Path       string   `toml:"path"`
	Status     string   `toml:"status"`
	Compatible string   `toml:"compatible"`
	Reg        *int     `toml:"reg"`
	Remote     string   `toml:"remote"`
	Ports      []string `toml:"ports"`
}

// Load reads and parses a device graph manifest from disk.
func Load(path string) (*Tree, *Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, pterrors.Wrap(pterrors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, nil, err
	}
	return Parse(data)
}

// Parse builds a device tree from TOML manifest data. Node paths must
// be absolute and unique; missing intermediate nodes are created
// implicitly as bare structural nodes. Reference properties (remote,
// ports entries) are validated for syntax but may point at nodes that
// do not exist; dangling references simply fail to resolve at
// traversal time, which is an expected topology condition, not a
// manifest defect.
func Parse(data []byte) (*Tree, *Pipeline, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, nil, pterrors.Wrap(pterrors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	if len(m.Nodes) == 0 {
		return nil, nil, pterrors.New(pterrors.ErrCodeInvalidManifest, "manifest declares no nodes")
	}

	t := newTree()
	for _, spec := range m.Nodes {
		if err := pterrors.ValidateNodePath(spec.Path); err != nil {
			return nil, nil, err
		}
		for _, ref := range append([]string{spec.Remote}, spec.Ports...) {
			if ref == "" {
				continue
			}
			if err := pterrors.ValidateNodePath(ref); err != nil {
				return nil, nil, err
			}
		}

		n := t.ensure(spec.Path)
		if n.declared {
			return nil, nil, pterrors.New(pterrors.ErrCodeInvalidManifest, "duplicate node %s", spec.Path)
		}
		n.declared = true
		n.status = spec.Status
		n.compat = spec.Compatible
		n.remote = spec.Remote
		n.ports = spec.Ports
		if spec.Reg != nil {
			n.reg = *spec.Reg
			n.hasReg = true
		}
	}

	if m.Pipeline.Device != "" {
		if t.byPath[m.Pipeline.Device] == nil {
			return nil, nil, pterrors.New(pterrors.ErrCodeInvalidManifest,
				"pipeline device %s is not declared", m.Pipeline.Device)
		}
	}
	for i, p := range m.Pipeline.Panels {
		if t.byPath[p.Path] == nil {
			return nil, nil, pterrors.New(pterrors.ErrCodeInvalidManifest,
				"pipeline panel %s is not declared", p.Path)
		}
		if p.Name == "" {
			m.Pipeline.Panels[i].Name = t.byPath[p.Path].BaseName()
		}
	}
	for i, b := range m.Pipeline.Bridges {
		if t.byPath[b.Path] == nil {
			return nil, nil, pterrors.New(pterrors.ErrCodeInvalidManifest,
				"pipeline bridge %s is not declared", b.Path)
		}
		if b.Name == "" {
			m.Pipeline.Bridges[i].Name = t.byPath[b.Path].BaseName()
		}
	}

	return t, &m.Pipeline, nil
}

// ensure returns the node at path, creating it and any missing
// ancestors as undeclared structural nodes. Children keep the order in
// which they are first mentioned.
func (t *Tree) ensure(path string) *Node {
	if n, ok := t.byPath[path]; ok {
		return n
	}
	parentPath := "/"
	name := strings.TrimPrefix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i > 0 {
		parentPath = path[:i]
		name = path[i+1:]
	}
	parent := t.ensure(parentPath)
	n := &Node{name: name, path: path, parent: parent}
	parent.children = append(parent.children, n)
	t.byPath[path] = n
	return n
}
