// xterm-query sends escape-sequence queries to the controlling terminal and
// prints what the terminal answers.
//
// With no QUERY it checks whether the terminal implements the kitty graphics
// protocol. QUERY accepts Go string escapes, e.g. '\x1b[c'.
//
// Usage:
//
//	xterm-query [flags] [QUERY]
//
// Flags:
//
//	-osc              Read the reply to QUERY as an OSC response
//	-probe string     Run probes: kitty|background|foreground|da1|version|all, comma separated
//	-timeout duration Query timeout (default from config, 50ms)
//	-buffer int       Reply buffer size in bytes (default from config, 100)
//	-term string      TERM value used to frame OSC queries
//	-format string    Output format: text|json|yaml
//	-config string    Path to configuration file (default: ~/.config/xterm-query/config.toml)
//	-verbose          Enable verbose logging
//	-version          Print version and exit
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/xterm-query/pkg/config"
	"gitlab.com/tinyland/lab/xterm-query/pkg/probe"
	"gitlab.com/tinyland/lab/xterm-query/pkg/terminal"
	"gitlab.com/tinyland/lab/xterm-query/pkg/xtquery"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code: 0 on success
// (including a terminal that lacks the queried feature), 1 on errors, 2 on
// usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("xterm-query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "Path to configuration file")
		osc         = fs.Bool("osc", false, "Read the reply to QUERY as an OSC response")
		probeFlag   = fs.String("probe", "", "Run probes: kitty|background|foreground|da1|version|all, comma separated")
		timeout     = fs.Duration("timeout", 0, "Query timeout (overrides config)")
		bufferSize  = fs.Int("buffer", 0, "Reply buffer size in bytes (overrides config)")
		termName    = fs.String("term", "", "TERM value used to frame OSC queries (overrides config and $TERM)")
		format      = fs.String("format", "", "Output format: text|json|yaml (overrides config)")
		verbose     = fs.Bool("verbose", false, "Enable verbose logging")
		showVersion = fs.Bool("version", false, "Print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintf(stdout, "xterm-query %s (%s) built %s\n", version, commit, date)
		return 0
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	// Flags win over the config file and environment, but only when given.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Timeout = config.Duration{Duration: *timeout}
		case "buffer":
			cfg.BufferSize = *bufferSize
		case "term":
			cfg.Term = *termName
		case "format":
			cfg.Format = *format
		}
	})
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 1
	}

	var query string
	switch fs.NArg() {
	case 0:
	case 1:
		query = unescape(fs.Arg(0))
	default:
		fmt.Fprintf(stderr, "expected at most one QUERY, got %d arguments\n", fs.NArg())
		return 2
	}
	names, err := probeNames(*probeFlag, query)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if *osc && query == "" {
		fmt.Fprintln(stderr, "-osc needs a QUERY")
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	rep, err := exchange(cfg, query, *osc, names, logger)
	if err != nil {
		fmt.Fprintf(stderr, "xterm-query: %v\n", err)
		return 1
	}

	profile := termenv.NewOutput(stdout).EnvColorProfile()
	if err := render(stdout, rep, cfg.Format, profile); err != nil {
		fmt.Fprintf(stderr, "failed to write report: %v\n", err)
		return 1
	}
	return 0
}

// exchange puts the terminal into raw mode, runs the query or probes and
// restores the terminal before returning.
func exchange(cfg *config.Config, query string, osc bool, names []string, logger *slog.Logger) (*report, error) {
	raw := terminal.NewRawModeStdin()
	if err := raw.Enable(); err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	defer func() {
		if err := raw.Restore(); err != nil {
			logger.Warn("failed to restore terminal", "error", err)
		}
	}()

	tty, err := xtquery.OpenTTY()
	if err != nil {
		return nil, err
	}
	defer tty.Close()

	out, closeOut, err := queryWriter()
	if err != nil {
		return nil, err
	}
	defer closeOut()

	opts := []xtquery.Option{xtquery.WithLogger(logger)}
	if cfg.Term != "" {
		opts = append(opts, xtquery.WithTerm(cfg.Term))
	}
	engine := xtquery.New(tty, out, opts...)

	detected := terminal.Detect()
	id := termIdentity(cfg)
	logger.Debug("terminal detected",
		"terminal", detected.String(),
		"multiplexer", detected.Multiplexer(),
		"term", string(id),
		"screen_passthrough", id.Screen(),
		"tmux", id.Tmux(),
		"timeout", cfg.Timeout.Duration,
		"buffer", cfg.BufferSize,
	)

	rep := &report{Terminal: detected.String()}
	start := time.Now()
	if query != "" {
		rep.Query = query
		rep.Reply, err = rawQuery(engine, query, osc, cfg)
		if probe.Absent(err) {
			logger.Debug("no reply", "error", err)
			rep.Absent, err = true, nil
		}
	} else {
		rep.Ran = names
		p := probe.New(engine, cfg.Timeout.Duration, logger)
		rep.Probes, err = p.Detect(names...)
	}
	rep.Elapsed = config.Duration{Duration: time.Since(start)}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func rawQuery(e *xtquery.Engine, query string, osc bool, cfg *config.Config) (string, error) {
	buf := make([]byte, cfg.BufferSize)
	if osc {
		payload, err := e.QueryOSCBuffer(query, buf, cfg.Timeout.Duration)
		return string(payload), err
	}
	n, err := e.QueryBuffer(query, buf, cfg.Timeout.Duration)
	return string(buf[:n]), err
}

// queryWriter returns where queries are written: stdout when it is the
// terminal, otherwise the controlling terminal so redirected output stays
// clean.
func queryWriter() (io.Writer, func(), error) {
	if terminal.IsTerminal(os.Stdout.Fd()) {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open /dev/tty for writing: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// termIdentity returns the TERM value OSC queries will be framed for: the
// configured override, else the environment.
func termIdentity(cfg *config.Config) terminal.Identity {
	if cfg.Term != "" {
		return terminal.Identity(cfg.Term)
	}
	return terminal.Identity(os.Getenv("TERM"))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// probeNames resolves the -probe flag. Without a QUERY and without -probe
// the kitty graphics probe runs.
func probeNames(flagValue, query string) ([]string, error) {
	if flagValue != "" && query != "" {
		return nil, errors.New("-probe and QUERY are mutually exclusive")
	}
	if query != "" {
		return nil, nil
	}
	switch flagValue {
	case "":
		return []string{probe.NameKitty}, nil
	case "all":
		return probe.Names, nil
	}
	names := strings.Split(flagValue, ",")
	for _, n := range names {
		if !slices.Contains(probe.Names, n) {
			return nil, fmt.Errorf("unknown probe %q (known: %s, all)", n, strings.Join(probe.Names, ", "))
		}
	}
	return names, nil
}

// unescape interprets Go string escapes so queries can be typed as
// '\x1b[c'. Input that does not unquote cleanly is used verbatim.
func unescape(s string) string {
	if u, err := strconv.Unquote(`"` + s + `"`); err == nil {
		return u
	}
	return s
}

func logLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}
