package roadmap

import (
	"fmt"
	"html"
	"io"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"

	svg "github.com/ajstarks/svgo"
)

var safeColor = regexp.MustCompile(`^[#a-zA-Z0-9(),.% ]{1,40}$`)

const (
	connectorStyle     = "fill:none;stroke:#95a5a6;stroke-width:2"
	rootConnectorStyle = "fill:none;stroke:#2c3e50;stroke-width:3"
	titleStyle         = "fill:#ffffff;font-size:16px;font-family:system-ui,sans-serif;font-weight:600"
	bodyStyle          = "fill:#ffffff;font-size:12px;font-family:system-ui,sans-serif;fill-opacity:0.85"
	selectedStyle      = "fill:none;stroke:#e74c3c;stroke-width:3;stroke-dasharray:6,4"

	descriptionRunes = 28
)

// errWriter remembers the first write error, svgo does not report them
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// RenderSVG draws the view: connectors first, then node boxes and the selection outline
// RenderSVG 绘制视图：先画连接线，再画节点与选中框
func RenderSVG(w io.Writer, v View) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	b := v.Bounds
	canvas.Startview(iround(b.Width()), iround(b.Height()),
		iround(b.MinX), iround(b.MinY), iround(b.Width()), iround(b.Height()))
	canvas.Title("roadmap")

	canvas.Gid("connections")
	for _, c := range v.Connectors {
		style := connectorStyle
		if c.Kind == RootConnector {
			style = rootConnectorStyle
		}
		canvas.Path(c.Path(), `class="`+c.Class()+`"`, style)
		fmt.Fprintf(canvas.Writer, "<polygon class=\"connection-arrow\" points=\"%s\" style=\"fill:%s\" />\n",
			c.ArrowPoints(), arrowFill(c.Kind))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, nv := range v.Nodes {
		drawNode(canvas, nv)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

func drawNode(canvas *svg.SVG, nv NodeView) {
	n := nv.Node
	x, y := iround(n.Position.X), iround(n.Position.Y)
	fill := n.Color
	if !safeColor.MatchString(fill) {
		fill = DefaultAccentColor
	}

	canvas.Group(`id="`+html.EscapeString(n.ID)+`"`, `class="node"`)
	canvas.Roundrect(x, y, NodeWidth, NodeHeight, 8, 8, "fill:"+fill+";stroke:#2c3e50;stroke-width:1")
	canvas.Text(x+12, y+26, n.Title, titleStyle)
	if n.Description != "" {
		canvas.Text(x+12, y+50, truncate(n.Description, descriptionRunes), bodyStyle)
	}
	if len(n.Links) > 0 {
		canvas.Text(x+12, y+NodeHeight-14, linkLabel(len(n.Links)), bodyStyle)
	}
	if nv.CanToggle && !n.Expanded {
		canvas.Text(x+NodeWidth-20, y+NodeHeight-14, "+"+strconv.Itoa(len(n.Children)), bodyStyle)
	}
	if nv.Selected {
		canvas.Roundrect(x-4, y-4, NodeWidth+8, NodeHeight+8, 10, 10, selectedStyle)
	}
	canvas.Gend()
}

func arrowFill(k ConnectorKind) string {
	if k == RootConnector {
		return "#2c3e50"
	}
	return "#95a5a6"
}

func linkLabel(n int) string {
	if n == 1 {
		return "1 link"
	}
	return strconv.Itoa(n) + " links"
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func iround(v float64) int {
	return int(math.Round(v))
}
