// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

// schemasynth generates random documents that follow a JSON or YAML schema.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/woozymasta/schemasynth"
	"github.com/woozymasta/schemasynth/internal/sink"
	"github.com/woozymasta/schemasynth/internal/store"
)

const (
	// envFileVariable selects dotenv file loaded before flag parsing.
	envFileVariable = "SCHEMASYNTH_ENV_FILE"
	// defaultEnvFile is loaded when envFileVariable is not set.
	defaultEnvFile = ".env"
)

var (
	Version    = "dev"
	Commit     = "unknown"
	BuildTime  = time.Unix(0, 0)
	URL        = "https://github.com/woozymasta/schemasynth"
	_buildTime string
)

// cliOptions describes schemasynth CLI subcommands.
type cliOptions struct {
	Version  versionCommand  `command:"version" description:"Print version information"`
	Generate generateCommand `command:"generate" alias:"gen" description:"Generate random documents from schema"`
	Validate validateCommand `command:"validate" description:"Check that schema can drive document generation"`
	Describe describeCommand `command:"describe" description:"Print markdown outline of schema fields"`
	Runs     runsCommand     `command:"runs" description:"List generation runs stored in fixture database"`
	Dump     dumpCommand     `command:"dump" description:"Print documents of stored generation run"`
}

// schemaInputFlags groups schema source flags.
type schemaInputFlags struct {
	SchemaPath   string `short:"s" long:"schema-from-file" env:"SCHEMASYNTH_SCHEMA" description:"Path to schema file (stdin when omitted)"`
	SchemaFormat string `long:"schema-format" env:"SCHEMASYNTH_SCHEMA_FORMAT" description:"Schema input format" choice:"auto" choice:"json" choice:"yaml" default:"auto"`
	Repair       bool   `long:"repair" description:"Try to repair malformed JSON schema before decoding"`
	MaxDepth     int    `long:"max-depth" env:"SCHEMASYNTH_MAX_DEPTH" description:"Maximum object nesting depth" default:"64"`
}

// outputFlags groups document destination flags.
type outputFlags struct {
	OutputFile string `short:"o" long:"output-file" description:"Write all documents to one file"`
	OutputDir  string `long:"output-dir" description:"Write every document to its own file in directory"`
	OutputDB   string `long:"output-db" env:"SCHEMASYNTH_DB" description:"Store documents as a run in bbolt fixture database"`
	Format     string `short:"f" long:"format" env:"SCHEMASYNTH_FORMAT" description:"Document format" choice:"json" choice:"yaml" default:"json"`
	Rate       int    `long:"rate" env:"SCHEMASYNTH_RATE" description:"Maximum documents written per second (0 is unlimited)" default:"0"`
}

// generateCommand generates documents from schema.
type generateCommand struct {
	runner *cliRunner

	Input  schemaInputFlags `group:"Schema Input"`
	Output outputFlags      `group:"Output"`

	Count   int    `short:"c" long:"count" env:"SCHEMASYNTH_COUNT" description:"Number of documents to generate" default:"100"`
	Seed    string `long:"seed" env:"SCHEMASYNTH_SEED" description:"Unsigned seed for reproducible output"`
	Workers int    `short:"j" long:"workers" env:"SCHEMASYNTH_WORKERS" description:"Parallel workers (0 uses all CPUs)" default:"0"`
	Verbose bool   `short:"v" long:"verbose" description:"Log debug details to stderr"`
}

// Execute runs generate subcommand.
func (command *generateCommand) Execute(_ []string) error {
	return command.runner.runGenerate(command)
}

// validateCommand compiles schema and reports its shape.
type validateCommand struct {
	runner *cliRunner
	Input  schemaInputFlags `group:"Schema Input"`
}

// Execute runs validate subcommand.
func (command *validateCommand) Execute(_ []string) error {
	return command.runner.runValidate(command.Input)
}

// describeCommand prints schema outline.
type describeCommand struct {
	runner *cliRunner
	Input  schemaInputFlags `group:"Schema Input"`

	Title        string `short:"T" long:"title" description:"Markdown document title" default:"schema outline"`
	TemplatePath string `long:"template-file" description:"Path to custom outline template (.gotmpl)"`
	ListMarker   string `short:"l" long:"list-marker" description:"Unordered list marker" choice:"-" choice:"*" default:"*"`
}

// Execute runs describe subcommand.
func (command *describeCommand) Execute(_ []string) error {
	return command.runner.runDescribe(command)
}

// storeFlags selects fixture database.
type storeFlags struct {
	DB string `short:"d" long:"db" env:"SCHEMASYNTH_DB" description:"Path to bbolt fixture database" required:"yes"`
}

// runsCommand lists stored runs.
type runsCommand struct {
	runner *cliRunner
	Store  storeFlags `group:"Store"`
}

// Execute runs runs subcommand.
func (command *runsCommand) Execute(_ []string) error {
	return command.runner.runRuns(command.Store.DB)
}

// dumpCommand prints documents of one stored run.
type dumpCommand struct {
	runner *cliRunner
	Store  storeFlags `group:"Store"`
	Args   struct {
		RunID string `positional-arg-name:"run-id" description:"Run id printed by generate --output-db" required:"yes"`
	} `positional-args:"yes"`
}

// Execute runs dump subcommand.
func (command *dumpCommand) Execute(_ []string) error {
	return command.runner.runDump(command.Store.DB, command.Args.RunID)
}

// versionCommand prints version information.
type versionCommand struct {
	runner *cliRunner
}

// Execute runs version subcommand.
func (command *versionCommand) Execute(_ []string) error {
	return command.runner.printVersionInfo()
}

// cliRunner executes CLI operations with custom IO streams.
type cliRunner struct {
	ctx         context.Context
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	programName string
}

func init() {
	if _buildTime != "" {
		if t, err := time.Parse(time.RFC3339, _buildTime); err == nil {
			BuildTime = t.UTC()
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runWithContext(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes CLI logic and returns process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	return runWithIO(args, os.Stdin, stdout, stderr)
}

// runWithIO executes CLI logic with custom stdin, for tests.
func runWithIO(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return runWithContext(context.Background(), args, stdin, stdout, stderr)
}

// runWithContext loads dotenv configuration and executes CLI logic.
func runWithContext(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	programName := strings.TrimSpace(os.Args[0])
	if programName == "" {
		programName = "schemasynth"
	}

	if err := loadEnvFile(os.Getenv(envFileVariable)); err != nil {
		writeCLIError(stderr, err)
		return 1
	}

	runner := cliRunner{
		ctx:         ctx,
		programName: filepath.Base(programName),
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
	}

	return runner.run(args)
}

// loadEnvFile loads dotenv file without overriding existing variables.
// A missing default file is not an error.
func loadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}

	return fmt.Errorf("load env file %q: %w", path, err)
}

// run parses CLI args and maps errors to process exit codes.
func (runner *cliRunner) run(args []string) int {
	err := parseCLIArgs(args, runner)
	if err == nil {
		return 0
	}

	var flagErr *flags.Error
	if errors.As(err, &flagErr) {
		if flagErr.Type == flags.ErrHelp {
			writeCLIError(runner.stdout, err)
			return 0
		}

		writeCLIError(runner.stderr, err)
		return 2
	}

	writeCLIError(runner.stderr, err)
	return 1
}

// newLogger builds stderr text logger, debug level when verbose.
func (runner *cliRunner) newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(runner.stderr, &slog.HandlerOptions{Level: level}))
}

// runGenerate generates documents and writes them to the selected destination.
func (runner *cliRunner) runGenerate(command *generateCommand) error {
	logger := runner.newLogger(command.Verbose)

	if command.Count < 0 {
		return fmt.Errorf("--count must not be negative, got %d", command.Count)
	}

	format, err := schemasynth.ParseDocumentFormat(command.Output.Format)
	if err != nil {
		return err
	}

	options := []schemasynth.Option{
		schemasynth.WithWorkers(command.Workers),
		schemasynth.WithLogger(logger),
	}

	seed, seeded, err := parseSeed(command.Seed)
	if err != nil {
		return err
	}

	if seeded {
		options = append(options, schemasynth.WithSeed(seed))
	}

	schema, sourcePath, err := runner.loadSchema(command.Input)
	if err != nil {
		return err
	}

	logger.Debug("schema compiled",
		slog.String("schema", sourcePath),
		slog.Int("fields", len(schema.Properties())),
		slog.Int("depth", schema.Depth()),
	)

	out, finish, err := runner.openSink(command, format, sourcePath, seed, seeded, logger)
	if err != nil {
		return err
	}

	documents, genErr := schemasynth.Generate(runner.ctx, schema, command.Count, options...)
	writeErr := writeDocuments(runner.ctx, out, documents)
	closeErr := out.Close()

	if genErr != nil {
		return genErr
	}

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	return finish(len(documents))
}

// writeDocuments writes documents to sink in order.
func writeDocuments(ctx context.Context, out sink.Sink, documents []*schemasynth.Document) error {
	for _, doc := range documents {
		if err := out.Write(ctx, doc); err != nil {
			return err
		}
	}

	return nil
}

// openSink resolves exactly one output destination and wraps it with throttle.
// The returned finish callback reports the destination after a successful write.
func (runner *cliRunner) openSink(command *generateCommand, format schemasynth.DocumentFormat, sourcePath string, seed uint64, seeded bool, logger *slog.Logger) (sink.Sink, func(int) error, error) {
	destinations := 0
	for _, value := range []string{command.Output.OutputFile, command.Output.OutputDir, command.Output.OutputDB} {
		if strings.TrimSpace(value) != "" {
			destinations++
		}
	}

	if destinations > 1 {
		return nil, nil, errors.New("--output-file, --output-dir and --output-db are mutually exclusive")
	}

	done := func(int) error { return nil }

	var (
		out sink.Sink
		err error
	)

	switch {
	case strings.TrimSpace(command.Output.OutputFile) != "":
		path := command.Output.OutputFile
		logger.Info("writing documents to file", slog.String("path", path))
		out, err = sink.NewFile(path, format)

	case strings.TrimSpace(command.Output.OutputDir) != "":
		dir := command.Output.OutputDir
		logger.Info("writing documents to directory", slog.String("dir", dir))
		out, err = sink.NewDirectory(dir, format)

	case strings.TrimSpace(command.Output.OutputDB) != "":
		out, done, err = runner.openStoreSink(command, format, sourcePath, seed, seeded, logger)

	default:
		out, err = sink.NewStream(runner.stdout, format)
	}

	if err != nil {
		return nil, nil, err
	}

	return sink.NewThrottle(out, command.Output.Rate), done, nil
}

// openStoreSink opens fixture database and creates a new run in it.
func (runner *cliRunner) openStoreSink(command *generateCommand, format schemasynth.DocumentFormat, sourcePath string, seed uint64, seeded bool, logger *slog.Logger) (sink.Sink, func(int) error, error) {
	st, err := store.Open(command.Output.OutputDB)
	if err != nil {
		return nil, nil, err
	}

	run := store.Run{
		Schema: sourcePath,
		Format: string(format),
		Count:  command.Count,
	}
	if seeded {
		run.Seed = &seed
	}

	storeSink, err := sink.NewStore(st, run)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	logger.Info("writing documents to fixture database",
		slog.String("db", st.Path()),
		slog.String("run", storeSink.Run().ID),
	)

	done := func(stored int) error {
		_, err := fmt.Fprintf(runner.stdout, "%s\t%d\n", storeSink.Run().ID, stored)
		return err
	}

	return &storeRunSink{Store: storeSink, db: st}, done, nil
}

// storeRunSink closes fixture database after the run is completed.
type storeRunSink struct {
	*sink.Store
	db *store.Store
}

// Close completes run and closes database.
func (s *storeRunSink) Close() error {
	err := s.Store.Close()
	if dbErr := s.db.Close(); err == nil && dbErr != nil {
		err = fmt.Errorf("close fixture database: %w", dbErr)
	}

	return err
}

// runValidate compiles schema and prints summary.
func (runner *cliRunner) runValidate(input schemaInputFlags) error {
	schema, sourcePath, err := runner.loadSchema(input)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(runner.stdout, "%s: ok (%d top-level fields, depth %d)\n", sourcePath, len(schema.Properties()), schema.Depth())
	return err
}

// runDescribe renders schema outline to stdout.
func (runner *cliRunner) runDescribe(command *describeCommand) error {
	schema, _, err := runner.loadSchema(command.Input)
	if err != nil {
		return err
	}

	opt := schemasynth.DescribeOptions{
		Title:      command.Title,
		ListMarker: command.ListMarker,
	}

	if command.TemplatePath != "" {
		customTemplate, err := os.ReadFile(command.TemplatePath)
		if err != nil {
			return fmt.Errorf("read template file %q: %w", command.TemplatePath, err)
		}

		opt.TemplateText = string(customTemplate)
	}

	rendered, err := schemasynth.Describe(schema, opt)
	if err != nil {
		return fmt.Errorf("describe schema: %w", err)
	}

	if _, err := io.WriteString(runner.stdout, rendered); err != nil {
		return fmt.Errorf("write outline to stdout: %w", err)
	}

	return nil
}

// runRuns prints stored runs as a table.
func (runner *cliRunner) runRuns(dbPath string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	runs, err := st.Runs()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	table := tabwriter.NewWriter(runner.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "ID\tCREATED\tCOUNT\tSTORED\tSIZE\tFORMAT\tSCHEMA")
	for _, run := range runs {
		_, _ = fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.Created.Format(time.RFC3339),
			humanize.Comma(int64(run.Count)),
			humanize.Comma(int64(run.Stored)),
			humanize.Bytes(uint64(max(run.Bytes, 0))),
			run.Format,
			run.Schema,
		)
	}

	return table.Flush()
}

// runDump writes stored documents of run to stdout in stored format.
func (runner *cliRunner) runDump(dbPath, runID string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = st.Close()
	}()

	run, err := st.Run(runID)
	if err != nil {
		return err
	}

	out, err := sink.NewStream(runner.stdout, schemasynth.DocumentFormat(run.Format))
	if err != nil {
		return err
	}

	return st.Documents(run.ID, func(entry store.Entry) error {
		return out.WriteEncoded(entry.Data)
	})
}

// loadSchema reads and compiles schema from file or stdin.
func (runner *cliRunner) loadSchema(input schemaInputFlags) (*schemasynth.Schema, string, error) {
	opt := schemasynth.ParseOptions{
		Format:   schemasynth.SchemaFormat(input.SchemaFormat),
		Repair:   input.Repair,
		MaxDepth: input.MaxDepth,
	}

	path := strings.TrimSpace(input.SchemaPath)
	if path != "" {
		schema, err := schemasynth.ParseSchemaFile(path, opt)
		if err != nil {
			return nil, "", fmt.Errorf("load schema %q: %w", path, err)
		}

		return schema, path, nil
	}

	data, err := io.ReadAll(runner.stdin)
	if err != nil {
		return nil, "", fmt.Errorf("read schema from stdin: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, "", errors.New("read schema from stdin: empty input")
	}

	schema, err := schemasynth.ParseSchema(data, opt)
	if err != nil {
		return nil, "", fmt.Errorf("load schema from stdin: %w", err)
	}

	return schema, "(stdin)", nil
}

// parseSeed parses optional unsigned seed flag value.
func parseSeed(value string) (uint64, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}

	seed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid --seed %q: %w", value, err)
	}

	return seed, true, nil
}

// writeCLIError writes a plain-text CLI error line to the selected stream.
func writeCLIError(output io.Writer, err error) {
	if err == nil {
		return
	}

	//nolint:gosec // CLI writes plain-text diagnostics to terminal streams, not HTTP responses.
	_, _ = fmt.Fprintln(output, err.Error())
}

// parseCLIArgs parses CLI arguments and triggers selected subcommand execution.
func parseCLIArgs(args []string, runner *cliRunner) error {
	options := &cliOptions{}
	options.Version.runner = runner
	options.Generate.runner = runner
	options.Validate.runner = runner
	options.Describe.runner = runner
	options.Runs.runner = runner
	options.Dump.runner = runner

	parser := flags.NewParser(options, flags.HelpFlag)
	parser.Name = runner.programName
	applyCommandLongDescriptions(parser, runner.programName)

	_, err := parser.ParseArgs(args)
	return err
}

// applyCommandLongDescriptions configures detailed command help text with examples.
func applyCommandLongDescriptions(parser *flags.Parser, programName string) {
	descriptions := map[string]string{
		"generate": strings.TrimSpace(fmt.Sprintf(`
Generate random documents from schema.
Reads schema from --schema-from-file or stdin; writes one JSON document per line to stdout
unless --output-file, --output-dir or --output-db is set.

Examples:
> $ %s generate -s schema.json -c 10
> $ %s generate -s schema.yaml -f yaml --seed 42 -o fixtures.yaml
> $ %s generate -s schema.json -c 100000 --output-db fixtures.db
`, programName, programName, programName)),
		"validate": strings.TrimSpace(fmt.Sprintf(`
Compile schema without generating documents.
Fails with the same error generate would report.

Examples:
> $ %s validate -s schema.json
> $ cat schema.json | %s validate
`, programName, programName)),
		"describe": strings.TrimSpace(fmt.Sprintf(`
Print markdown table of every schema field with its path and type.

Examples:
> $ %s describe -s schema.json > schema.md
> $ %s describe -s schema.json --template-file outline.gotmpl
`, programName, programName)),
		"dump": strings.TrimSpace(fmt.Sprintf(`
Print documents stored by generate --output-db.

Examples:
> $ %s runs --db fixtures.db
> $ %s dump --db fixtures.db 0b6f3c2e-9a43-4b6d-9f8e-2f1c7f0d9a11
`, programName, programName)),
	}

	for commandName, description := range descriptions {
		command := parser.Find(commandName)
		if command == nil {
			continue
		}

		command.LongDescription = description
	}
}

func (runner *cliRunner) printVersionInfo() error {
	_, err := fmt.Fprintf(runner.stdout, `url:      %s
file:     %s
version:  %s
commit:   %s
built:    %s
`, URL, os.Args[0], Version, Commit, BuildTime)
	return err
}
