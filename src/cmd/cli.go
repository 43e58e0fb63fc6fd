package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/VectorBits/Polaris/src/internal/ui"
)

type CLIConfig struct {
	SourceFile   string
	ContractName string
	ABIFile      string
	BytecodeFile string
	ErrorsFile   string
	Intent       string
	FormatOnly   bool
	DocOnly      bool
	ExplainOnly  bool
	GasOnly      bool
	TargetSource string
	TargetFile   string
	TargetAddr   string
	BlockRange   *BlockRange
	HistoryLimit int
	Concurrency  int
	Verbose      bool
	Timeout      time.Duration
	ReportDir    string
	NoHistory    bool
}

type BlockRange struct {
	Start uint64
	End   uint64
}

func (b *BlockRange) String() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", b.Start, b.End)
}

func parseBlockRange(s string) (*BlockRange, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return nil, errors.New("invalid block range format, expected start-end")
	}
	startStr := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])
	var br BlockRange
	if startStr == "" {
		return nil, errors.New("start block required")
	}
	start, err := strconv.ParseUint(startStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start block: %w", err)
	}
	br.Start = start
	if endStr == "" {
		br.End = ^uint64(0) // max uint64 to indicate open-ended
	} else {
		end, err := strconv.ParseUint(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid end block: %w", err)
		}
		if end < start {
			return nil, errors.New("end block must be >= start block")
		}
		br.End = end
	}
	return &br, nil
}

func looksLikeBlockRange(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.Count(s, "-") != 1 {
		return false
	}
	_, err := parseBlockRange(s)
	return err == nil
}

func looksLikeTargetFile(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	if strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return true
	}
	info, err := os.Stat(s)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (c *CLIConfig) Validate() error {
	// 独立子操作不需要目标来源
	if c.Intent != "" || c.ErrorsFile != "" || c.HistoryLimit > 0 {
		return nil
	}
	if c.GasOnly {
		if c.ABIFile == "" {
			return errors.New("-abi is required with -gas")
		}
		return nil
	}
	if c.FormatOnly || c.DocOnly || c.ExplainOnly {
		if c.SourceFile == "" {
			return errors.New("-file is required for -fmt / -doc / -explain")
		}
		return nil
	}

	switch c.TargetSource {
	case "file", "batch", "db", "contract":
	default:
		return errors.New("-t must be: a .sol file / target list (.txt/.yaml) / contract address / block range (start-end) / or db")
	}
	if c.TargetSource == "file" && c.SourceFile == "" {
		return errors.New("-file is required when -t=file")
	}
	if c.TargetSource == "batch" && c.TargetFile == "" {
		return errors.New("a target list file is required when -t=batch")
	}
	if c.TargetSource == "contract" && c.TargetAddr == "" {
		return errors.New("-addr is required when -t=contract")
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	return nil
}

func showHelp(topic string) {
	switch topic {
	case "t", "target":
		showTargetHelp()
	case "gas":
		showGasHelp()
	case "diagnose", "errors":
		showDiagnoseHelp()
	case "validate":
		showValidateHelp()
	case "history":
		showHistoryHelp()
	default:
		showGeneralHelp()
	}
}

func showGeneralHelp() {
	fmt.Println(ui.Cyan + "USAGE:" + ui.Reset)
	fmt.Println("  polaris [COMMAND] [OPTIONS]")
	fmt.Println()

	fmt.Println(ui.Cyan + "CORE COMMANDS:" + ui.Reset)
	fmt.Printf("  %-25s %s\n", "-file <path.sol>", "Analyze a local Solidity source file")
	fmt.Printf("  %-25s %s\n", "-t <target>", "Analysis target (auto-detect)")
	fmt.Printf("  %-25s %s\n", "-gas -abi <abi.json>", "Gas estimation from ABI (+optional -bytecode/-file)")
	fmt.Printf("  %-25s %s\n", "-diagnose <errors.txt>", "Classify compiler error messages")
	fmt.Printf("  %-25s %s\n", "-validate <text>", "Validate a natural-language contract request")
	fmt.Printf("  %-25s %s\n", "-fmt", "Format the source file and print it")
	fmt.Printf("  %-25s %s\n", "-doc", "Generate markdown documentation for the source file")
	fmt.Printf("  %-25s %s\n", "-explain", "Section-by-section code walkthrough")
	fmt.Printf("  %-25s %s\n", "-history <n>", "Show the last n analysis runs")
	fmt.Printf("  %-25s %s\n", "-r <dir>", "Report output directory (default: reports)")
	fmt.Println()

	fmt.Println(ui.Cyan + "HELP:" + ui.Reset)
	fmt.Println("  polaris [COMMAND] --help   Show detailed help for a specific command")
	fmt.Println()

	fmt.Println(ui.Cyan + "EXAMPLES:" + ui.Reset)
	fmt.Println(ui.Gray + "  # Full analysis of a local file" + ui.Reset)
	fmt.Println("  polaris -file Token.sol -name MyToken")
	fmt.Println()
	fmt.Println(ui.Gray + "  # Batch analysis of every contract in a list" + ui.Reset)
	fmt.Println("  polaris -t contracts.yaml -concurrency 8")
	fmt.Println()
	fmt.Println(ui.Gray + "  # Analyze contracts stored in the database" + ui.Reset)
	fmt.Println("  polaris -t 18000000-18001000")
}

func showTargetHelp() {
	fmt.Println(ui.Cyan + "🎯 ANALYSIS TARGETS (-t)" + ui.Reset)
	fmt.Println(ui.Gray + "Specify the source of contracts to analyze." + ui.Reset)
	fmt.Println()

	fmt.Println(ui.Cyan + "AUTO DETECTION:" + ui.Reset)
	fmt.Println("  -t <Token.sol>       => analyze single source file")
	fmt.Println("  -t <targets.txt>     => analyze every file listed")
	fmt.Println("  -t <0x...>           => fetch source from database by address")
	fmt.Println("  -t <start-end>       => database contracts from block range")
	fmt.Println()

	fmt.Println(ui.Cyan + "TARGET TYPES:" + ui.Reset)
	fmt.Printf("  %-25s %s\n", "file", "Single Solidity source file")
	fmt.Printf("  %-25s %s\n", "batch", "List of source paths from file (txt/yaml)")
	fmt.Printf("  %-25s %s\n", "db", "Contracts from local database")
	fmt.Printf("  %-25s %s\n", "contract", "Single contract address from database")
	fmt.Println()

	fmt.Println(ui.Cyan + "OPTIONS:" + ui.Reset)
	fmt.Printf("  %-25s %s\n", "-addr <addr>", "Target address (for -t contract)")
	fmt.Printf("  %-25s %s\n", "-range <range>", "Block range filter (for -t db) e.g. 1000-2000")
	fmt.Printf("  %-25s %s\n", "-concurrency <n>", "Number of concurrent analysis workers")
}

func showGasHelp() {
	fmt.Println(ui.Cyan + "⛽ GAS ESTIMATION (-gas)" + ui.Reset)
	fmt.Println(ui.Gray + "Estimate per-function and deployment gas from a contract ABI." + ui.Reset)
	fmt.Println()

	fmt.Println(ui.Cyan + "USAGE:" + ui.Reset)
	fmt.Println("  polaris -gas -abi <abi.json> [-bytecode <hex file>] [-file <source.sol>]")
	fmt.Println()

	fmt.Println(ui.Cyan + "DETAILS:" + ui.Reset)
	fmt.Println("  Supplying -file refines function estimates using the source body.")
	fmt.Println("  Supplying -bytecode adds a deployment gas estimate.")
}

func showDiagnoseHelp() {
	fmt.Println(ui.Cyan + "🩺 COMPILER DIAGNOSTICS (-diagnose)" + ui.Reset)
	fmt.Println(ui.Gray + "Classify raw solc error messages and suggest fixes." + ui.Reset)
	fmt.Println()

	fmt.Println(ui.Cyan + "USAGE:" + ui.Reset)
	fmt.Println("  polaris -diagnose errors.txt")
	fmt.Println()

	fmt.Println(ui.Cyan + "DETAILS:" + ui.Reset)
	fmt.Println("  The input file holds one compiler message per line.")
}

func showValidateHelp() {
	fmt.Println(ui.Cyan + "📝 REQUEST VALIDATION (-validate)" + ui.Reset)
	fmt.Println(ui.Gray + "Check whether a natural-language contract request is actionable." + ui.Reset)
	fmt.Println()

	fmt.Println(ui.Cyan + "USAGE:" + ui.Reset)
	fmt.Println("  polaris -validate \"create an erc20 token named Gold with symbol GLD\"")
}

func showHistoryHelp() {
	fmt.Println(ui.Cyan + "🗂  ANALYSIS HISTORY (-history)" + ui.Reset)
	fmt.Println(ui.Gray + "List recent analysis runs from the local history database." + ui.Reset)
	fmt.Println()

	fmt.Println(ui.Cyan + "USAGE:" + ui.Reset)
	fmt.Println("  polaris -history 20")
}

// ParseFlags 解析命令行参数
func ParseFlags() (*CLIConfig, error) {
	// 检查是否请求帮助
	if len(os.Args) > 1 {
		// 处理特定命令的帮助请求 (如 -t --help, -gas --help)
		for i := 1; i < len(os.Args)-1; i++ {
			if os.Args[i+1] == "--help" || os.Args[i+1] == "-h" {
				cmd := os.Args[i]
				if strings.HasPrefix(cmd, "--") {
					cmd = cmd[2:]
				} else if strings.HasPrefix(cmd, "-") {
					cmd = cmd[1:]
				}
				showHelp(cmd)
				os.Exit(0)
			}
		}

		for _, arg := range os.Args[1:] {
			if arg == "--help" || arg == "-h" {
				showGeneralHelp()
				os.Exit(0)
			}
		}
	}

	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.Usage = func() {
		showGeneralHelp()
	}

	sourceFile := fs.String("file", "", "Solidity source file to analyze")
	name := fs.String("name", "", "Contract name (default: source file base name)")
	abiFile := fs.String("abi", "", "ABI JSON file (for -gas)")
	bytecodeFile := fs.String("bytecode", "", "Bytecode hex file (for -gas)")
	gasOnly := fs.Bool("gas", false, "Gas estimation only")
	diagnose := fs.String("diagnose", "", "File of compiler error messages to classify")
	validate := fs.String("validate", "", "Natural-language contract request to validate")
	formatOnly := fs.Bool("fmt", false, "Format the source file and print the result")
	docOnly := fs.Bool("doc", false, "Generate markdown documentation for the source file")
	explainOnly := fs.Bool("explain", false, "Section-by-section walkthrough of the source file")
	target := fs.String("t", "", "Target: file|batch|db|contract OR <path.sol>|<targets.txt>|<address>|<start-end>")
	rangeFlag := fs.String("range", "", "Block range (start-end) for -t db")
	addrFlag := fs.String("addr", "", "Contract address for -t contract")
	history := fs.Int("history", 0, "Show the last n analysis runs")
	concurrency := fs.Int("concurrency", 4, "Worker concurrency for batch analysis")
	verbose := fs.Bool("v", false, "Verbose output")
	timeout := fs.Duration("timeout", 60*time.Second, "Per-contract analysis timeout")
	reportDir := fs.String("r", "reports", "Markdown report output directory (default: reports)")
	noHistory := fs.Bool("no-history", false, "Skip writing to the history database")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}

	cfg := &CLIConfig{
		SourceFile:   strings.TrimSpace(*sourceFile),
		ContractName: strings.TrimSpace(*name),
		ABIFile:      strings.TrimSpace(*abiFile),
		BytecodeFile: strings.TrimSpace(*bytecodeFile),
		ErrorsFile:   strings.TrimSpace(*diagnose),
		Intent:       strings.TrimSpace(*validate),
		FormatOnly:   *formatOnly,
		DocOnly:      *docOnly,
		ExplainOnly:  *explainOnly,
		GasOnly:      *gasOnly,
		TargetAddr:   strings.TrimSpace(*addrFlag),
		HistoryLimit: *history,
		Concurrency:  *concurrency,
		Verbose:      *verbose,
		Timeout:      *timeout,
		ReportDir:    strings.TrimSpace(*reportDir),
		NoHistory:    *noHistory,
	}

	// Smart parsing for -t
	targetSource := strings.TrimSpace(*target)
	rangeStr := strings.TrimSpace(*rangeFlag)

	switch strings.ToLower(targetSource) {
	case "":
		if cfg.SourceFile != "" {
			targetSource = "file"
		}
	case "file", "batch", "db", "contract":
		targetSource = strings.ToLower(targetSource)
	default:
		if common.IsHexAddress(targetSource) {
			cfg.TargetAddr = targetSource
			targetSource = "contract"
		} else if looksLikeBlockRange(targetSource) {
			if rangeStr == "" {
				rangeStr = targetSource
			}
			targetSource = "db"
		} else if strings.HasSuffix(strings.ToLower(targetSource), ".sol") {
			cfg.SourceFile = targetSource
			targetSource = "file"
		} else if looksLikeTargetFile(targetSource) {
			cfg.TargetFile = targetSource
			targetSource = "batch"
		}
	}
	cfg.TargetSource = targetSource

	if rangeStr != "" {
		br, err := parseBlockRange(rangeStr)
		if err != nil {
			return nil, err
		}
		cfg.BlockRange = br
	}

	// 相对路径统一转成基于当前工作目录的绝对路径
	for _, p := range []*string{&cfg.SourceFile, &cfg.TargetFile, &cfg.ABIFile, &cfg.BytecodeFile, &cfg.ErrorsFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			cwd, _ := os.Getwd()
			*p = filepath.Join(cwd, *p)
		}
	}

	if cfg.ContractName == "" && cfg.SourceFile != "" {
		base := filepath.Base(cfg.SourceFile)
		cfg.ContractName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Run() error {
	cfg, err := ParseFlags()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()

	go func() {
		count := 0
		for range sigChan {
			count++
			if count == 1 {
				fmt.Fprintln(os.Stderr, "\nInterrupt received, stopping... (press Ctrl+C again to force exit)")
				cancel()
				continue
			}
			fmt.Fprintln(os.Stderr, "\nForce exiting...")
			os.Exit(130)
		}
	}()

	return Execute(ctx, cfg)
}

func PrintFatal(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
