// Package shell is the interactive terminal front-end of the roadmap editor.
// Package shell 路线图编辑器的交互式终端前端
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/haierkeys/fast-roadmap-service/internal/roadmap"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	promptDefault = "roadmap> "
	// AlertNoSelection 未选中节点时添加分支的提示
	AlertNoSelection = "Please select a node first"
	// AlertInvalidFile 导入文件不是有效 JSON 时的提示
	AlertInvalidFile = "Invalid JSON file"
)

// ErrQuit 用户请求退出
var ErrQuit = errors.New("quit")

// Shell 交互式命令解释器，持有编辑引擎并驱动其全部操作
type Shell struct {
	engine  *roadmap.Engine
	out     io.Writer
	logger  *zap.Logger
	confirm func(question string) bool

	// form 编辑中的节点字段，nil 表示未处于编辑模式
	form *roadmap.Fields
}

// Option Shell 配置项
type Option func(*Shell)

// WithOutput 设置输出
func WithOutput(w io.Writer) Option {
	return func(s *Shell) {
		if w != nil {
			s.out = w
		}
	}
}

// WithLogger 设置日志器，网关失败在 debug 级别记录
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfirm 设置 y/N 确认函数，未设置时一律视为拒绝
func WithConfirm(fn func(question string) bool) Option {
	return func(s *Shell) {
		s.confirm = fn
	}
}

// New 创建 Shell
func New(engine *roadmap.Engine, opts ...Option) *Shell {
	s := &Shell{
		engine:  engine,
		out:     os.Stdout,
		logger:  zap.NewNop(),
		confirm: func(string) bool { return false },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Prompt 当前提示符
func (s *Shell) Prompt() string {
	if s.form != nil {
		return fmt.Sprintf("edit(%s)> ", s.engine.Editing())
	}
	if sel := s.engine.Selected(); sel != "" {
		return fmt.Sprintf("roadmap[%s]> ", sel)
	}
	return promptDefault
}

// Run 读取命令直到 quit、EOF 或 ctx 结束
func (s *Shell) Run(ctx context.Context, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.Prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return errors.Wrap(err, "init readline")
	}
	defer rl.Close()

	s.out = rl.Stdout()
	s.confirm = func(question string) bool {
		rl.SetPrompt(question + " [y/N] ")
		defer rl.SetPrompt(s.Prompt())
		answer, err := rl.Readline()
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}

	fmt.Fprintln(s.out, "Roadmap shell. Type 'help' for the list of commands.")
	for {
		if ctx.Err() != nil {
			return nil
		}
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

// Exec 执行一行命令
// 网关拒绝或不可达时不输出任何内容，只在 debug 日志中记录；返回 ErrQuit 表示退出
func (s *Shell) Exec(ctx context.Context, line string) error {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return nil
	}
	var err error
	if s.form != nil {
		err = s.execEdit(ctx, args)
	} else {
		err = s.execCommand(ctx, args)
	}
	if errors.Is(err, roadmap.ErrSyncFailed) {
		s.logger.Debug("change not applied", zap.String("command", args[0]), zap.Error(err))
		return nil
	}
	return err
}

// ParseArgs 按空白切分参数，双引号内的空白保留
func ParseArgs(input string) []string {
	var args []string
	var cur strings.Builder
	inQuotes, quoted := false, false

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			if cur.Len() > 0 || quoted {
				args = append(args, cur.String())
				cur.Reset()
			}
			quoted = false
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 || quoted {
		args = append(args, cur.String())
	}
	return args
}

func (s *Shell) alert(msg string) {
	fmt.Fprintf(s.out, "! %s\n", msg)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *Shell) completer() *readline.PrefixCompleter {
	ids := func(string) []string {
		return s.engine.Tree().IDs()
	}
	fields := []readline.PrefixCompleterInterface{
		readline.PcItem("title"), readline.PcItem("desc"), readline.PcItem("color"), readline.PcItem("links"),
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("ls"),
		readline.PcItem("tree"),
		readline.PcItem("add-root"),
		readline.PcItem("branch", readline.PcItemDynamic(ids)),
		readline.PcItem("select", readline.PcItemDynamic(ids)),
		readline.PcItem("deselect"),
		readline.PcItem("toggle", readline.PcItemDynamic(ids)),
		readline.PcItem("minimize", readline.PcItemDynamic(ids)),
		readline.PcItem("edit", readline.PcItemDynamic(ids)),
		readline.PcItem("set", readline.PcItemDynamic(ids, fields...)),
		readline.PcItem("delete", readline.PcItemDynamic(ids)),
		readline.PcItem("move", readline.PcItemDynamic(ids)),
		readline.PcItem("drag", readline.PcItemDynamic(ids)),
		readline.PcItem("inspect", readline.PcItemDynamic(ids)),
		readline.PcItem("color"),
		readline.PcItem("export"),
		readline.PcItem("import"),
		readline.PcItem("render"),
		readline.PcItem("pull"),
		readline.PcItem("clear"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
