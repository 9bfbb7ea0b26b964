package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"
	"github.com/haierkeys/fast-roadmap-service/pkg/fileurl"
	"github.com/haierkeys/fast-roadmap-service/pkg/validator"

	"github.com/gookit/goutil/dump"
	"github.com/pkg/errors"
)

func (s *Shell) execCommand(ctx context.Context, args []string) error {
	switch args[0] {
	case "ls":
		return s.handleList()
	case "tree":
		return s.handleTree()
	case "add-root":
		return s.handleAddRoot(ctx)
	case "branch":
		return s.handleBranch(ctx, args[1:])
	case "select":
		return s.handleSelect(args[1:])
	case "deselect":
		s.engine.Deselect()
		return nil
	case "toggle":
		return s.handleToggle(ctx, args[1:])
	case "minimize":
		return s.handleMinimize(ctx, args[1:])
	case "edit":
		return s.handleEdit(args[1:])
	case "set":
		return s.handleSet(ctx, args[1:])
	case "delete", "del":
		return s.handleDelete(ctx, args[1:])
	case "move":
		return s.handleMove(ctx, args[1:])
	case "drag":
		return s.handleDrag(ctx, args[1:])
	case "color":
		return s.handleColor(args[1:])
	case "export":
		return s.handleExport(args[1:])
	case "import":
		return s.handleImport(args[1:])
	case "render":
		return s.handleRender(args[1:])
	case "pull":
		return s.handlePull(ctx)
	case "clear":
		return s.handleClear()
	case "inspect":
		return s.handleInspect(args[1:])
	case "help":
		s.printHelp(strings.Join(args[1:], " "))
		return nil
	case "quit", "exit":
		return ErrQuit
	default:
		return errors.Errorf("unknown command: %s", args[0])
	}
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return errors.Errorf("usage: %s", usage)
	}
	return nil
}

func parseFloats(args ...string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, errors.Errorf("not a number: %s", a)
		}
		out = append(out, v)
	}
	return out, nil
}

// handleList 平铺列出当前可见节点
func (s *Shell) handleList() error {
	v := s.engine.View()
	if len(v.Nodes) == 0 {
		s.printf("(empty)\n")
		return nil
	}
	for _, nv := range v.Nodes {
		n := nv.Node
		mark := " "
		if nv.Selected {
			mark = "*"
		}
		state := ""
		if nv.CanToggle {
			state = "[-]"
			if !n.Expanded {
				state = "[+]"
			}
		}
		s.printf("%s %-40s %-3s %q level=%d pos=(%g,%g) color=%s links=%d\n",
			mark, n.ID, state, n.Title, n.Level, n.Position.X, n.Position.Y, n.Color, len(n.Links))
	}
	s.printf("%d visible, %d connectors\n", len(v.Nodes), len(v.Connectors))
	return nil
}

// handleTree 按 children 缩进打印整棵树，折叠的子树只显示 [+]
func (s *Shell) handleTree() error {
	t := s.engine.Tree()
	if t.Len() == 0 {
		s.printf("(empty)\n")
		return nil
	}
	printed := map[string]bool{}
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		n, ok := t.Get(id)
		if !ok || printed[id] {
			return
		}
		printed[id] = true
		suffix := ""
		if len(n.Children) > 0 && !n.Expanded {
			suffix = " [+]"
		}
		mark := ""
		if id == s.engine.Selected() {
			mark = " *"
		}
		s.printf("%s- %s (%s)%s%s\n", strings.Repeat("  ", depth), n.Title, n.ID, suffix, mark)
		if !n.Expanded {
			return
		}
		for _, cid := range n.Children {
			walk(cid, depth+1)
		}
	}
	for _, r := range t.Roots() {
		walk(r.ID, 0)
	}
	// 父节点缺失的孤立节点
	for _, n := range t.Nodes() {
		if !printed[n.ID] && !t.Has(n.Parent) && t.IsVisible(n.ID) {
			walk(n.ID, 0)
		}
	}
	return nil
}

func (s *Shell) handleAddRoot(ctx context.Context) error {
	n, err := s.engine.AddRootNode(ctx)
	if err != nil {
		return err
	}
	s.printf("created %s\n", n.ID)
	return nil
}

func (s *Shell) handleBranch(ctx context.Context, args []string) error {
	var (
		n   *roadmap.Node
		err error
	)
	if len(args) > 0 {
		n, err = s.engine.AddBranch(ctx, args[0])
	} else {
		n, err = s.engine.AddBranchToSelected(ctx)
	}
	if errors.Is(err, roadmap.ErrNoSelection) {
		s.alert(AlertNoSelection)
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("created %s under %s\n", n.ID, n.Parent)
	return nil
}

func (s *Shell) handleSelect(args []string) error {
	if err := need(args, 1, "select <id>"); err != nil {
		return err
	}
	return s.engine.Select(args[0])
}

func (s *Shell) handleToggle(ctx context.Context, args []string) error {
	if err := need(args, 1, "toggle <id>"); err != nil {
		return err
	}
	expanded, err := s.engine.ToggleExpand(ctx, args[0])
	if err != nil {
		return err
	}
	if expanded {
		s.printf("%s expanded\n", args[0])
	} else {
		s.printf("%s collapsed\n", args[0])
	}
	return nil
}

func (s *Shell) handleMinimize(ctx context.Context, args []string) error {
	if err := need(args, 1, "minimize <id>"); err != nil {
		return err
	}
	n, err := s.engine.MinimizeAll(ctx, args[0])
	if err != nil {
		return err
	}
	s.printf("%d nodes collapsed\n", n)
	return nil
}

func (s *Shell) handleEdit(args []string) error {
	if err := need(args, 1, "edit <id>"); err != nil {
		return err
	}
	f, err := s.engine.BeginEdit(args[0])
	if err != nil {
		return err
	}
	s.form = &f
	s.printFields(f)
	s.printf("enter 'title|desc|color|links <value>', then 'save' or 'cancel'\n")
	return nil
}

// execEdit 编辑模式下的输入
func (s *Shell) execEdit(ctx context.Context, args []string) error {
	switch args[0] {
	case "save":
		f := *s.form
		if _, err := s.engine.SaveEdit(ctx, f); err != nil {
			// 失败时保持编辑模式
			return err
		}
		s.form = nil
		s.printf("saved\n")
		return nil
	case "cancel":
		s.engine.CancelEdit()
		s.form = nil
		return nil
	case "show":
		s.printFields(*s.form)
		return nil
	default:
		return setField(s.form, args[0], args[1:])
	}
}

func setField(f *roadmap.Fields, field string, values []string) error {
	value := strings.Join(values, " ")
	switch field {
	case "title":
		f.Title = value
	case "desc", "description":
		f.Description = value
	case "color":
		if value != "" && !validator.IsNodeColor(value) {
			return errors.Errorf("invalid color: %s", value)
		}
		f.Color = value
	case "links":
		f.Links = strings.Join(values, "\n")
	default:
		return errors.Errorf("unknown field: %s", field)
	}
	return nil
}

func (s *Shell) printFields(f roadmap.Fields) {
	s.printf("title: %s\ndesc:  %s\ncolor: %s\nlinks: %s\n",
		f.Title, f.Description, f.Color, strings.Join(roadmap.ParseLinks(f.Links), ", "))
}

// handleSet 单字段更新，其余可编辑字段沿用当前值
func (s *Shell) handleSet(ctx context.Context, args []string) error {
	if err := need(args, 2, "set <id> <title|desc|color|links> [value...]"); err != nil {
		return err
	}
	id := args[0]
	n, ok := s.engine.Node(id)
	if !ok {
		return roadmap.ErrNodeNotFound
	}
	f := roadmap.Fields{
		Title:       n.Title,
		Description: n.Description,
		Color:       n.Color,
		Links:       strings.Join(n.Links, "\n"),
	}
	if err := setField(&f, args[1], args[2:]); err != nil {
		return err
	}
	_, err := s.engine.UpdateFields(ctx, id, f)
	return err
}

func (s *Shell) handleDelete(ctx context.Context, args []string) error {
	yes := len(args) > 0 && (args[0] == "-y" || args[0] == "--yes")
	if yes {
		args = args[1:]
	}
	if err := need(args, 1, "delete [-y] <id>"); err != nil {
		return err
	}
	id := args[0]
	if _, ok := s.engine.Node(id); !ok {
		return roadmap.ErrNodeNotFound
	}
	if !yes && !s.confirm("Are you sure you want to delete this node?") {
		return nil
	}
	removed, err := s.engine.DeleteNode(ctx, id)
	if err != nil {
		return err
	}
	s.printf("deleted %d node(s)\n", len(removed))
	return nil
}

func (s *Shell) handleMove(ctx context.Context, args []string) error {
	if err := need(args, 3, "move <id> <x> <y>"); err != nil {
		return err
	}
	xy, err := parseFloats(args[1], args[2])
	if err != nil {
		return err
	}
	pos, err := s.engine.MoveNode(ctx, args[0], xy[0], xy[1])
	if err != nil {
		return err
	}
	s.printf("%s at (%g,%g)\n", args[0], pos.X, pos.Y)
	return nil
}

// handleDrag 模拟一次拖拽：按 steps 次移动指针，松开时只推送一次位置
func (s *Shell) handleDrag(ctx context.Context, args []string) error {
	if err := need(args, 3, "drag <id> <dx> <dy> [steps]"); err != nil {
		return err
	}
	d, err := parseFloats(args[1], args[2])
	if err != nil {
		return err
	}
	steps := 1
	if len(args) > 3 {
		if steps, err = strconv.Atoi(args[3]); err != nil || steps < 1 {
			return errors.Errorf("steps must be a positive integer: %s", args[3])
		}
	}

	n, ok := s.engine.Node(args[0])
	if !ok {
		return roadmap.ErrNodeNotFound
	}
	px, py := n.Position.X, n.Position.Y
	if err := s.engine.BeginDrag(n.ID, px, py); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		if _, err := s.engine.DragTo(px+d[0]*frac, py+d[1]*frac); err != nil {
			return err
		}
	}
	pos, err := s.engine.EndDrag(ctx)
	if err != nil {
		return err
	}
	s.printf("%s at (%g,%g)\n", n.ID, pos.X, pos.Y)
	return nil
}

func (s *Shell) handleColor(args []string) error {
	if len(args) == 0 {
		s.printf("%s\n", s.engine.AccentColor())
		return nil
	}
	if !validator.IsNodeColor(args[0]) {
		return errors.Errorf("invalid color: %s", args[0])
	}
	s.engine.SetAccentColor(args[0])
	return nil
}

func (s *Shell) handleExport(args []string) error {
	path := roadmap.ExportFileName
	if len(args) > 0 {
		path = args[0]
	}
	if err := s.engine.ExportFile(path); err != nil {
		return errors.Wrapf(err, "export %s", path)
	}
	s.printf("exported %d nodes to %s\n", s.engine.Tree().Len(), path)
	return nil
}

func (s *Shell) handleImport(args []string) error {
	if err := need(args, 1, "import <file>"); err != nil {
		return err
	}
	err := s.engine.ImportFile(args[0])
	if errors.Is(err, roadmap.ErrInvalidFile) {
		s.alert(AlertInvalidFile)
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("imported %d nodes\n", s.engine.Tree().Len())
	return nil
}

func (s *Shell) handleRender(args []string) error {
	if err := need(args, 1, "render <file.svg>"); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := roadmap.RenderSVG(&buf, s.engine.Refresh()); err != nil {
		return err
	}
	path := args[0]
	if filepath.Ext(path) == "" {
		path += ".svg"
	}
	if err := fileurl.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	s.printf("rendered %s\n", path)
	return nil
}

func (s *Shell) handlePull(ctx context.Context) error {
	if err := s.engine.Pull(ctx); err != nil {
		return err
	}
	s.printf("pulled %d nodes\n", s.engine.Tree().Len())
	return nil
}

// handleClear 仅清空本地模型
func (s *Shell) handleClear() error {
	if !s.confirm("Clear the local roadmap?") {
		return nil
	}
	s.engine.Clear()
	return nil
}

func (s *Shell) handleInspect(args []string) error {
	if err := need(args, 1, "inspect <id>"); err != nil {
		return err
	}
	n, ok := s.engine.Node(args[0])
	if !ok {
		return roadmap.ErrNodeNotFound
	}
	d := dump.NewWithOptions(func(o *dump.Options) {
		o.Output = s.out
		o.NoColor = true
		o.ShowFlag = dump.Fnopos
	})
	d.Println(n)
	if nv, ok := s.engine.View().Node(n.ID); ok {
		s.printf("visible=true canBranch=%t canToggle=%t\n", nv.CanBranch, nv.CanToggle)
	} else {
		s.printf("visible=false\n")
	}
	return nil
}

func (s *Shell) printHelp(command string) {
	if command == "" {
		s.printf("Available commands:\n")
		for _, name := range commandOrder {
			s.printf("  %-10s %s\n", name, commandHelp[name])
		}
		s.printf("\nUse 'help <command>' for more information about a specific command.\n")
		return
	}
	if help, ok := commandHelp[command]; ok {
		s.printf("%s: %s\n", command, help)
		return
	}
	s.printf("Unknown command: %s\n", command)
}

var commandOrder = []string{
	"ls", "tree", "add-root", "branch", "select", "deselect", "toggle", "minimize",
	"edit", "set", "delete", "move", "drag", "color", "export", "import", "render",
	"pull", "clear", "inspect", "help", "quit",
}

var commandHelp = map[string]string{
	"ls":       "list visible nodes",
	"tree":     "print the roadmap as an indented tree",
	"add-root": "create a root node below the last root",
	"branch":   "branch [id]  add a child to id, or to the selected node",
	"select":   "select <id>",
	"deselect": "clear the selection",
	"toggle":   "toggle <id>  expand or collapse a node",
	"minimize": "minimize <id>  collapse a node and all its descendants",
	"edit":     "edit <id>  open the edit form; then title|desc|color|links <value>, save, cancel",
	"set":      "set <id> <title|desc|color|links> [value...]",
	"delete":   "delete [-y] <id>  delete a node after confirmation",
	"move":     "move <id> <x> <y>",
	"drag":     "drag <id> <dx> <dy> [steps]",
	"color":    "color [#hex]  show or set the color of new nodes",
	"export":   "export [file]  write roadmap.json",
	"import":   "import <file>  replace the roadmap with a JSON file",
	"render":   "render <file.svg>",
	"pull":     "reload the roadmap from the server",
	"clear":    "clear the local roadmap after confirmation",
	"inspect":  "inspect <id>  dump a node",
	"help":     "help [command]",
	"quit":     "exit the shell",
}
