package scene

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// Supported scene formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Policy names.
const (
	PolicyBox    = "box"
	PolicyRow    = "row"
	PolicyColumn = "column"
	PolicyLeaf   = "leaf"
	PolicyEmpty  = "empty"
)

// Step operations.
const (
	OpContent     = "content"
	OpConstraints = "constraints"
	OpWindow      = "window"
	OpInsert      = "insert"
	OpRemove      = "remove"
	OpMove        = "move"
	OpModifiers   = "modifiers"
)

// =============================================================================
// Types
// =============================================================================

// Scene is a layout tree, its root constraints and the frames to replay.
type Scene struct {
	Name        string      `toml:"name" yaml:"name" json:"name"`
	Constraints Constraints `toml:"constraints" yaml:"constraints" json:"constraints"`
	Window      Point       `toml:"window" yaml:"window" json:"window"`
	Root        Node        `toml:"root" yaml:"root" json:"root"`
	Frames      []Frame     `toml:"frames" yaml:"frames" json:"frames,omitempty"`
}

// Constraints are root constraints. A missing maximum is unbounded.
type Constraints struct {
	MinWidth  int  `toml:"min_width" yaml:"min_width" json:"min_width,omitempty"`
	MaxWidth  *int `toml:"max_width" yaml:"max_width" json:"max_width,omitempty"`
	MinHeight int  `toml:"min_height" yaml:"min_height" json:"min_height,omitempty"`
	MaxHeight *int `toml:"max_height" yaml:"max_height" json:"max_height,omitempty"`
}

// Geom converts c to engine constraints.
func (c Constraints) Geom() geom.Constraints {
	g := geom.Constraints{MinWidth: c.MinWidth, MaxWidth: geom.Infinity, MinHeight: c.MinHeight, MaxHeight: geom.Infinity}
	if c.MaxWidth != nil {
		g.MaxWidth = *c.MaxWidth
	}
	if c.MaxHeight != nil {
		g.MaxHeight = *c.MaxHeight
	}
	return g
}

// Size is a leaf content size.
type Size struct {
	Width  int `toml:"width" yaml:"width" json:"width"`
	Height int `toml:"height" yaml:"height" json:"height"`
}

// Point is a window offset.
type Point struct {
	X int `toml:"x" yaml:"x" json:"x"`
	Y int `toml:"y" yaml:"y" json:"y"`
}

// Node describes one layout node and its subtree.
type Node struct {
	Name   string `toml:"name" yaml:"name" json:"name,omitempty"`
	Policy string `toml:"policy" yaml:"policy" json:"policy,omitempty"`

	// Box alignment.
	Horizontal string `toml:"horizontal" yaml:"horizontal" json:"horizontal,omitempty"`
	Vertical   string `toml:"vertical" yaml:"vertical" json:"vertical,omitempty"`

	// Row and column.
	Spacing       int    `toml:"spacing" yaml:"spacing" json:"spacing,omitempty"`
	Align         string `toml:"align" yaml:"align" json:"align,omitempty"`
	AlignBaseline bool   `toml:"align_baseline" yaml:"align_baseline" json:"align_baseline,omitempty"`

	// Leaf.
	Content      *Size `toml:"content" yaml:"content" json:"content,omitempty"`
	Baseline     *int  `toml:"baseline" yaml:"baseline" json:"baseline,omitempty"`
	LastBaseline *int  `toml:"last_baseline" yaml:"last_baseline" json:"last_baseline,omitempty"`

	Direction string     `toml:"direction" yaml:"direction" json:"direction,omitempty"`
	Virtual   bool       `toml:"virtual" yaml:"virtual" json:"virtual,omitempty"`
	Lookahead bool       `toml:"lookahead" yaml:"lookahead" json:"lookahead,omitempty"`
	Z         float64    `toml:"z" yaml:"z" json:"z,omitempty"`
	Layer     *Layer     `toml:"layer" yaml:"layer" json:"layer,omitempty"`
	Modifiers []Modifier `toml:"modifiers" yaml:"modifiers" json:"modifiers,omitempty"`
	Children  []Node     `toml:"children" yaml:"children" json:"children,omitempty"`
}

// Layer holds graphics layer properties. Missing values keep their defaults.
type Layer struct {
	Alpha        *float64 `toml:"alpha" yaml:"alpha" json:"alpha,omitempty"`
	ScaleX       *float64 `toml:"scale_x" yaml:"scale_x" json:"scale_x,omitempty"`
	ScaleY       *float64 `toml:"scale_y" yaml:"scale_y" json:"scale_y,omitempty"`
	TranslationX float64  `toml:"translation_x" yaml:"translation_x" json:"translation_x,omitempty"`
	TranslationY float64  `toml:"translation_y" yaml:"translation_y" json:"translation_y,omitempty"`
}

// Modifier is one element of a modifier chain. Exactly one field is set.
type Modifier struct {
	Padding         []int    `toml:"padding" yaml:"padding" json:"padding,omitempty"`
	Size            []int    `toml:"size" yaml:"size" json:"size,omitempty"`
	Width           *int     `toml:"width" yaml:"width" json:"width,omitempty"`
	Height          *int     `toml:"height" yaml:"height" json:"height,omitempty"`
	Offset          []int    `toml:"offset" yaml:"offset" json:"offset,omitempty"`
	ZIndex          *float64 `toml:"z_index" yaml:"z_index" json:"z_index,omitempty"`
	Background      string   `toml:"background" yaml:"background" json:"background,omitempty"`
	Weight          *float64 `toml:"weight" yaml:"weight" json:"weight,omitempty"`
	ID              string   `toml:"id" yaml:"id" json:"id,omitempty"`
	Layer           *Layer   `toml:"layer" yaml:"layer" json:"layer,omitempty"`
	BaselinePadding []int    `toml:"baseline_padding" yaml:"baseline_padding" json:"baseline_padding,omitempty"`
	IntrinsicWidth  string   `toml:"intrinsic_width" yaml:"intrinsic_width" json:"intrinsic_width,omitempty"`
	IntrinsicHeight string   `toml:"intrinsic_height" yaml:"intrinsic_height" json:"intrinsic_height,omitempty"`
	Snap            bool     `toml:"snap_to_lookahead" yaml:"snap_to_lookahead" json:"snap_to_lookahead,omitempty"`
}

// Frame is a group of steps followed by one measure and layout pass.
type Frame struct {
	Label string `toml:"label" yaml:"label" json:"label,omitempty"`
	Steps []Step `toml:"steps" yaml:"steps" json:"steps"`
}

// Step is one scripted change. Node names the target, which is the parent
// for insert, remove and move.
type Step struct {
	Op          string       `toml:"op" yaml:"op" json:"op"`
	Node        string       `toml:"node" yaml:"node" json:"node,omitempty"`
	Content     *Size        `toml:"content" yaml:"content" json:"content,omitempty"`
	Baseline    *int         `toml:"baseline" yaml:"baseline" json:"baseline,omitempty"`
	Constraints *Constraints `toml:"constraints" yaml:"constraints" json:"constraints,omitempty"`
	Window      *Point       `toml:"window" yaml:"window" json:"window,omitempty"`
	Index       int          `toml:"index" yaml:"index" json:"index,omitempty"`
	Count       int          `toml:"count" yaml:"count" json:"count,omitempty"`
	From        int          `toml:"from" yaml:"from" json:"from,omitempty"`
	To          int          `toml:"to" yaml:"to" json:"to,omitempty"`
	Child       *Node        `toml:"child" yaml:"child" json:"child,omitempty"`
	Modifiers   []Modifier   `toml:"modifiers" yaml:"modifiers" json:"modifiers,omitempty"`
}

// =============================================================================
// Decoding
// =============================================================================

// FormatOf picks the scene format from a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot tell scene format of %q", path)
}

// Decode reads a scene in the given format and validates it. Unknown keys
// are errors.
func Decode(r io.Reader, format string) (*Scene, error) {
	if err := errors.ValidateFormat(format, FormatTOML, FormatYAML, FormatJSON); err != nil {
		return nil, err
	}
	var sc Scene
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&sc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode yaml")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode json")
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Parse decodes a scene held in memory.
func Parse(data []byte, format string) (*Scene, error) {
	return Decode(bytes.NewReader(data), format)
}

// Load reads a scene file, choosing the format by extension.
func Load(path string) (*Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	sc, err := Decode(f, format)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Encode writes sc in the given format.
func (sc *Scene) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(sc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sc)
	}
	return errors.ValidateFormat(format, FormatTOML, FormatYAML, FormatJSON)
}

// NodeCount returns the number of nodes in the initial tree.
func (sc *Scene) NodeCount() int {
	var count func(n *Node) int
	count = func(n *Node) int {
		c := 1
		for i := range n.Children {
			c += count(&n.Children[i])
		}
		return c
	}
	return count(&sc.Root)
}
