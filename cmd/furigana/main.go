// Command furigana renders annotated Japanese text to ruby markup.
// It provides commands for rendering text and lessons, inspecting markup,
// and serving the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/furigana/core/errors"
	"github.com/FocuswithJustin/furigana/core/furigana"
	"github.com/FocuswithJustin/furigana/core/lesson"
	"github.com/FocuswithJustin/furigana/core/markup"
	"github.com/FocuswithJustin/furigana/internal/api"
	"github.com/FocuswithJustin/furigana/internal/logging"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	Start     string `help:"Annotation start marker" default:"【" env:"FURIGANA_START"`
	Split     string `help:"Reading separator" default:"・" env:"FURIGANA_SPLIT"`
	End       string `help:"Annotation end marker" default:"】" env:"FURIGANA_END"`
	Escape    string `help:"Escape character for literal markers (disabled when empty)" env:"FURIGANA_ESCAPE"`
	LogLevel  string `help:"Log level" enum:"debug,info,warn,error" default:"warn" env:"FURIGANA_LOG_LEVEL"`
	LogFormat string `help:"Log format" enum:"text,json" default:"text" env:"FURIGANA_LOG_FORMAT"`
}

// CLI defines the command-line interface for furigana.
type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Render annotated text to ruby markup"`
	Parse   ParseCmd   `cmd:"" help:"Print the groups of one annotated line as JSON"`
	Lesson  LessonCmd  `cmd:"" help:"Render a lesson file to JSON"`
	Lessons LessonsCmd `cmd:"" help:"List the lessons in a directory"`
	Inspect InspectCmd `cmd:"" help:"Read back rendered ruby markup"`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API server"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// IO carries the streams commands read from and write to.
type IO struct {
	In  io.Reader
	Out io.Writer
}

func (g *Globals) initLogging() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// engine builds the engine described by the flags. Fallback lines are
// logged with source as context.
func (g *Globals) engine(source string) (*furigana.Engine, error) {
	opts := []furigana.Option{
		furigana.WithDelimiters(furigana.Delimiters{Start: g.Start, Split: g.Split, End: g.End}),
		furigana.WithFaultHandler(func(lineNo int, line string, err error) {
			logging.RenderFallback(context.Background(), lineNo, err, "source", source)
		}),
	}
	if g.Escape != "" {
		if utf8.RuneCountInString(g.Escape) != 1 {
			return nil, &errors.ValidationError{Field: "escape", Value: g.Escape, Message: "must be a single character"}
		}
		r, _ := utf8.DecodeRuneInString(g.Escape)
		opts = append(opts, furigana.WithEscape(r))
	}
	return furigana.New(opts...)
}

// readInput reads a file, or stdin when path is empty or "-". Compressed
// input is detected and decompressed.
func readInput(stdin io.Reader, path string) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := lesson.ReadAll(stdin)
		return data, "stdin", err
	}
	data, err := lesson.ReadFile(path)
	return data, path, err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// RenderCmd renders text to markup.
type RenderCmd struct {
	File     string `arg:"" optional:"" help:"Input file (stdin when omitted; .xz accepted)"`
	Collapse bool   `help:"Merge each annotated group into one ruby element"`
	HTML     bool   `name:"html" help:"Turn line breaks into <br />"`
}

func (c *RenderCmd) Run(g *Globals, stdio *IO) error {
	data, source, err := readInput(stdio.In, c.File)
	if err != nil {
		return err
	}
	e, err := g.engine(source)
	if err != nil {
		return err
	}

	var out string
	if c.HTML {
		out = e.RenderHTML(string(data), c.Collapse)
	} else {
		out = e.Render(string(data), c.Collapse)
	}
	_, err = io.WriteString(stdio.Out, out)
	return err
}

// ParseCmd prints the groups of one line.
type ParseCmd struct {
	Line string `arg:"" help:"Annotated line"`
}

func (c *ParseCmd) Run(g *Globals, stdio *IO) error {
	e, err := g.engine("argument")
	if err != nil {
		return err
	}
	groups, err := e.Parse(c.Line)
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []furigana.Group{}
	}
	return writeJSON(stdio.Out, groups)
}

// LessonCmd renders one lesson file.
type LessonCmd struct {
	File     string `arg:"" help:"Lesson file (.json or .json.xz)" type:"existingfile"`
	Collapse bool   `help:"Merge each annotated group into one ruby element"`
}

func (c *LessonCmd) Run(g *Globals, stdio *IO) error {
	data, err := lesson.ReadFile(c.File)
	if err != nil {
		return err
	}
	l, err := lesson.Decode(data)
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = c.File
		}
		return err
	}
	e, err := g.engine(c.File)
	if err != nil {
		return err
	}
	return writeJSON(stdio.Out, lesson.Render(l, e, c.Collapse))
}

// LessonsCmd lists lessons.
type LessonsCmd struct {
	Dir string `arg:"" help:"Lessons directory" type:"existingdir"`
}

func (c *LessonsCmd) Run(stdio *IO) error {
	infos, err := lesson.NewStore(c.Dir).List()
	if err != nil {
		if infos == nil {
			return err
		}
		logging.LessonError(context.Background(), "", err)
	}
	if infos == nil {
		infos = []lesson.Info{}
	}
	return writeJSON(stdio.Out, infos)
}

// InspectCmd reads back rendered markup.
type InspectCmd struct {
	File    string `arg:"" optional:"" help:"Markup file (stdin when omitted)"`
	Plain   bool   `help:"Print the base text without readings" xor:"view"`
	Reading bool   `help:"Print the text with readings in place of their bases" xor:"view"`
	XPath   string `name:"xpath" help:"Print the text of every node matching an XPath expression" xor:"view"`
	Check   bool   `help:"Only check that the markup is well formed" xor:"view"`
}

func (c *InspectCmd) Run(stdio *IO) error {
	data, source, err := readInput(stdio.In, c.File)
	if err != nil {
		return err
	}
	if c.Check {
		if err := markup.Validate(string(data)); err != nil {
			return errors.Wrapf(err, "checking %s", source)
		}
		_, err = fmt.Fprintf(stdio.Out, "%s: ok\n", source)
		return err
	}
	doc, err := markup.Parse(string(data))
	if err != nil {
		return err
	}

	switch {
	case c.Plain:
		_, err = fmt.Fprintln(stdio.Out, doc.PlainText())
	case c.Reading:
		_, err = fmt.Fprintln(stdio.Out, doc.ReadingText())
	case c.XPath != "":
		nodes, qerr := doc.XPath(c.XPath)
		if qerr != nil {
			return qerr
		}
		for _, n := range nodes {
			if _, err = fmt.Fprintln(stdio.Out, n.InnerText()); err != nil {
				return err
			}
		}
	default:
		err = writeJSON(stdio.Out, doc.Units())
	}
	return err
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	Port      int           `help:"HTTP server port" default:"8080" env:"FURIGANA_PORT"`
	Lessons   string        `help:"Lessons directory (lesson endpoints disabled when empty)" type:"path" env:"FURIGANA_LESSONS_DIR"`
	Origins   []string      `help:"Allowed CORS origins (all when empty)" env:"FURIGANA_ALLOWED_ORIGINS"`
	CacheTTL  time.Duration `name:"cache-ttl" help:"Render cache entry lifetime (negative disables)" default:"10m"`
	CacheSize int           `help:"Render cache capacity" default:"1024"`
	MaxBody   int64         `help:"Request body limit in bytes" default:"1048576"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.engine("api")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.Start(ctx, api.Config{
		Port:           c.Port,
		LessonsDir:     c.Lessons,
		AllowedOrigins: c.Origins,
		CacheTTL:       c.CacheTTL,
		CacheSize:      c.CacheSize,
		MaxBodyBytes:   c.MaxBody,
		Version:        version,
		Engine:         e,
	})
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(stdio *IO) error {
	_, err := fmt.Fprintf(stdio.Out, "furigana version %s\n", version)
	return err
}

func newParser(cli *CLI, stdio *IO) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("furigana"),
		kong.Description("Furigana annotation engine: 大学【だい・がく】 to ruby markup"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Bind(&cli.Globals, stdio),
	)
}

// run parses args and runs the selected command.
func run(args []string, stdio *IO) error {
	var cli CLI
	parser, err := newParser(&cli, stdio)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	if err := cli.initLogging(); err != nil {
		return err
	}
	return ctx.Run()
}

func main() {
	if err := run(os.Args[1:], &IO{In: os.Stdin, Out: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "furigana: error: %v\n", err)
		os.Exit(1)
	}
}
