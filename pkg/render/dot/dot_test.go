package dot

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/host"
)

func sampleSnapshot() *host.Snapshot {
	la := geom.Size{Width: 40, Height: 10}
	return &host.Snapshot{
		Frame: 2,
		Root: &host.NodeSnapshot{
			ID: 1, Name: "root", Size: geom.Size{Width: 100, Height: 20}, Placed: true,
			Children: []*host.NodeSnapshot{
				{ID: 2, Name: "a", Size: geom.Size{Width: 40, Height: 10}, Position: geom.Pt(0, 5), Z: 2, PlaceOrder: 0, Placed: true, Lookahead: &la},
				{ID: 3, Name: "b", PlaceOrder: -1},
			},
		},
	}
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name:    "edges",
			opts:    Options{},
			want:    []string{`n1 [label="root"]`, `n1 -> n2;`, `n1 -> n3;`, `style="rounded,filled,dashed"`},
			notWant: []string{"subgraph", "40x10"},
		},
		{
			name: "geometry",
			opts: Options{Geometry: true},
			want: []string{`"a\n40x10 @ (0, 5)\nz: 2\norder: 0\nlookahead: 40x10"`, `"b\n0x0 @ (0, 0)"`},
		},
		{
			name:    "clusters",
			opts:    Options{Clusters: true},
			want:    []string{"subgraph cluster_n1 {", `label="root";`, `    n2 [label="a"];`},
			notWant: []string{"->"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDOT(sampleSnapshot(), tt.opts)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ToDOT() missing %q in:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("ToDOT() contains %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestToDOTEmpty(t *testing.T) {
	got := ToDOT(nil, Options{})
	if !strings.HasPrefix(got, "digraph G {") || !strings.HasSuffix(got, "}\n") {
		t.Errorf("ToDOT(nil) = %q", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites tag",
			in:   `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{
			name: "no viewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			in:   `<svg viewBox="0 0 0 10"></svg>`,
			want: `<svg viewBox="0 0 0 10"></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleSnapshot(), Options{Geometry: true}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("root")) {
		t.Errorf("RenderSVG() output is not an SVG of the tree")
	}
}
