// Command-line entry point for the TAC converter.
//
// Input formats
// -------------
// convert and tokenize read one message per line. A line may be:
//  1. bare TAC text:  METAR EFHK 111111Z 24015KT 9999 FEW020 15/12 Q1013=
//  2. a flat object:  {"text":"...","type":"METAR","reference_month":"2017-05"}
//  3. a feed envelope: {"source":{...},"message":{"id":"...","text":"..."}}
//
// reconstruct reads JSONL objects of the form {"type":"TAF","model":{...}}.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"tac_converter/internal/api"
	"tac_converter/internal/config"
	"tac_converter/internal/conversion"
	"tac_converter/internal/feed"
	"tac_converter/internal/observability"
	"tac_converter/internal/rules"
	"tac_converter/internal/service"
	"tac_converter/internal/storage"
	"tac_converter/internal/timeref"
	"tac_converter/internal/tokenizer"
)

type Stats struct {
	Lines      int
	Skipped    int
	Success    int
	WithErrors int
	Failed     int
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "tacconv - commands:")
	fmt.Fprintln(w, "  tokenize     - show the lexemes of each message")
	fmt.Fprintln(w, "  convert      - parse messages into JSON models")
	fmt.Fprintln(w, "  reconstruct  - render JSON models back to TAC")
	fmt.Fprintln(w, "  trace        - show every rule tried on one span")
	fmt.Fprintln(w, "  serve        - run the HTTP API (and the NATS feed when TAC_NATS_URL is set)")
	fmt.Fprintln(w, "  listen       - run only the NATS feed")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tacconv tokenize [-input msgs.txt] [-type METAR] [-json]")
	fmt.Fprintln(w, "  tacconv convert [-input msgs.txt] [-output out.json] [-type TAF] [-month 2017-05] [-hints hints.yaml] [-archive conv.db] [-pretty] [-stats]")
	fmt.Fprintln(w, "  tacconv reconstruct [-input models.jsonl] [-hints hints.yaml]")
	fmt.Fprintln(w, "  tacconv trace -text \"TAF EFHK ...\" [-type TAF] -pos 3")
	fmt.Fprintln(w, "  tacconv serve | listen   (configured from TAC_* environment variables)")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "tokenize":
		runTokenize(os.Args[2:])
	case "convert":
		runConvert(os.Args[2:])
	case "reconstruct":
		runReconstruct(os.Args[2:])
	case "trace":
		runTrace(os.Args[2:])
	case "serve":
		runServe(true)
	case "listen":
		runServe(false)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func openInput(path string) (io.Reader, func()) {
	if path == "" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		fail("Failed to open input: %v", err)
	}
	return f, func() { _ = f.Close() }
}

func openOutput(path string) (io.Writer, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fail("Failed to create output: %v", err)
	}
	return f, func() { _ = f.Close() }
}

// eachLine calls fn for every non-blank input line.
func eachLine(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}
	return scanner.Err()
}

func parseCommon(typ, hintsFile string) (conversion.ReportType, *conversion.Hints) {
	var t conversion.ReportType
	if typ != "" {
		parsed, err := conversion.ParseReportType(typ)
		if err != nil {
			fail("%v", err)
		}
		t = parsed
	}
	if hintsFile == "" {
		return t, nil
	}
	h, err := conversion.LoadHints(hintsFile)
	if err != nil {
		fail("%v", err)
	}
	return t, &h
}

func newCLIService(opts ...service.Option) *service.Service {
	logger := observability.NewLogger(os.Getenv("TAC_LOG_LEVEL"), "text")
	return service.New(logger, observability.NewMetrics(), opts...)
}

func runTokenize(args []string) {
	fs := flag.NewFlagSet("tokenize", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file, one message per line (default: stdin)")
	typ := fs.String("type", "", "Report type (default: detect)")
	hintsFile := fs.String("hints", "", "YAML hints file")
	asJSON := fs.Bool("json", false, "Emit JSONL instead of a table")
	_ = fs.Parse(args)

	t, hints := parseCommon(*typ, *hintsFile)
	svc := newCLIService()

	r, closeIn := openInput(*inPath)
	defer closeIn()

	err := eachLine(r, func(line string) {
		msg, err := feed.Decode([]byte(line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip: %v\n", err)
			return
		}
		mt := t
		if mt == "" {
			mt = msg.Type
		}
		res, err := svc.Tokenize(msg.Text, mt, hints)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip: %v\n", err)
			return
		}
		if *asJSON {
			enc, _ := json.Marshal(res)
			fmt.Println(string(enc))
			return
		}
		fmt.Printf("%s\n", res.ReportType)
		for i, l := range res.Lexemes {
			fmt.Printf("  %3d  %-28s %-16s %v\n", i, l.Identity, l.Raw, l.Values)
		}
		for _, issue := range res.Issues {
			fmt.Printf("  ! %s\n", issue)
		}
	})
	if err != nil {
		fail("Input read error: %v", err)
	}
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file, one message per line (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	typ := fs.String("type", "", "Report type (default: detect)")
	month := fs.String("month", "", "Reference month YYYY-MM (default: current UTC month)")
	hintsFile := fs.String("hints", "", "YAML hints file")
	archive := fs.String("archive", "", "SQLite file to archive conversions in")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	t, hints := parseCommon(*typ, *hintsFile)
	var ym *timeref.YearMonth
	if *month != "" {
		parsed, err := timeref.ParseYearMonth(*month)
		if err != nil {
			fail("%v", err)
		}
		ym = &parsed
	}

	var opts []service.Option
	if *archive != "" {
		store, err := storage.OpenSQLite(*archive)
		if err != nil {
			fail("Failed to open archive: %v", err)
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, service.WithStore(store))
	}
	svc := newCLIService(opts...)

	r, closeIn := openInput(*inPath)
	defer closeIn()

	ctx := context.Background()
	out := make([]*service.Response, 0, 64)
	st := &Stats{}
	err := eachLine(r, func(line string) {
		st.Lines++
		msg, err := feed.Decode([]byte(line))
		if err != nil {
			st.Skipped++
			return
		}
		req := service.Request{Text: msg.Text, Type: msg.Type, ReferenceMonth: msg.ReferenceMonth, Hints: hints}
		if t != "" {
			req.Type = t
		}
		if ym != nil {
			req.ReferenceMonth = ym
		}
		resp, err := svc.Convert(ctx, req)
		if err != nil {
			st.Skipped++
			return
		}
		switch resp.Status {
		case conversion.Success:
			st.Success++
		case conversion.WithErrors:
			st.WithErrors++
		default:
			st.Failed++
		}
		out = append(out, resp)
	})
	if err != nil {
		fail("Input read error: %v", err)
	}

	w, closeOut := openOutput(*outPath)
	defer closeOut()
	enc, err := marshalJSON(out, *pretty)
	if err != nil {
		fail("JSON encode error: %v", err)
	}
	_, _ = w.Write(enc)
	if w == os.Stdout {
		_, _ = w.Write([]byte("\n"))
	}

	if *showStats {
		fmt.Fprintf(os.Stderr, "stats: lines=%d skipped=%d success=%d with_errors=%d failed=%d\n",
			st.Lines, st.Skipped, st.Success, st.WithErrors, st.Failed)
	}
}

func runReconstruct(args []string) {
	fs := flag.NewFlagSet("reconstruct", flag.ExitOnError)
	inPath := fs.String("input", "", "Input JSONL file of {\"type\",\"model\"} objects (default: stdin)")
	hintsFile := fs.String("hints", "", "YAML hints file")
	_ = fs.Parse(args)

	_, hints := parseCommon("", *hintsFile)
	svc := newCLIService()

	r, closeIn := openInput(*inPath)
	defer closeIn()

	failed := 0
	err := eachLine(r, func(line string) {
		var in struct {
			Type  string          `json:"type"`
			Model json.RawMessage `json:"model"`
		}
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			fmt.Fprintf(os.Stderr, "skip: %v\n", err)
			failed++
			return
		}
		t, err := conversion.ParseReportType(in.Type)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip: %v\n", err)
			failed++
			return
		}
		report, err := service.DecodeReport(t, in.Model)
		if err == nil {
			var text string
			if text, err = svc.Reconstruct(report, hints); err == nil {
				fmt.Println(text)
				return
			}
		}
		fmt.Fprintf(os.Stderr, "skip: %v\n", err)
		failed++
	})
	if err != nil {
		fail("Input read error: %v", err)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runTrace(args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	text := fs.String("text", "", "Message text")
	typ := fs.String("type", "", "Report type (default: detect)")
	pos := fs.Int("pos", -1, "Span position to trace (default: every span)")
	_ = fs.Parse(args)

	if *text == "" {
		fail("-text is required")
	}
	t, _ := parseCommon(*typ, "")
	if t == "" {
		detected, ok := conversion.DetectReportType(*text)
		if !ok {
			fail("%v", service.ErrUnknownType)
		}
		t = detected
	}
	set, err := rules.ForType(t)
	if err != nil {
		fail("%v", err)
	}

	spans := tokenizer.Spans(*text)
	if *pos >= 0 {
		fmt.Print(rules.FormatTrace(set.Trace(spans, *pos)))
		return
	}
	for i := range spans {
		fmt.Print(rules.FormatTrace(set.Trace(spans, i)))
	}
}

// runServe runs the long-lived service: the HTTP API when withHTTP is set
// and the NATS feed when TAC_NATS_URL is configured.
func runServe(withHTTP bool) {
	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open archive", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}
	opts := []service.Option{service.WithHints(cfg.Hints)}
	if store != nil {
		opts = append(opts, service.WithStore(store))
	}
	svc := service.New(logger, metrics, opts...)

	if !withHTTP && cfg.NATSURL == "" {
		logger.Error("listen needs TAC_NATS_URL")
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	if withHTTP {
		srv := api.NewServer(svc, logger, api.Config{
			AuthEnabled: len(cfg.APIKeys) > 0,
			APIKeys:     cfg.APIKeys,
		})
		g.Go(func() error { return srv.Run(gctx, cfg.HTTPAddr, cfg.ShutdownTimeout) })
	}
	if cfg.NATSURL != "" {
		nc, err := feed.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Error("failed to connect to nats", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		sub := feed.NewSubscriber(svc, nc, cfg.NATSOutputSubject, logger, metrics)
		g.Go(func() error { return sub.Run(gctx, nc, cfg.NATSSubject) })
	}

	logger.Info("tac converter started", "http", withHTTP, "nats", cfg.NATSURL != "", "store", cfg.Store.Backend)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
