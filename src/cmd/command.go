package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/VectorBits/Polaris/src/internal"
	"github.com/VectorBits/Polaris/src/internal/analyzer"
	"github.com/VectorBits/Polaris/src/internal/cleaner"
	"github.com/VectorBits/Polaris/src/internal/config"
	"github.com/VectorBits/Polaris/src/internal/dbutil"
	"github.com/VectorBits/Polaris/src/internal/diagnostics"
	"github.com/VectorBits/Polaris/src/internal/docgen"
	"github.com/VectorBits/Polaris/src/internal/format"
	"github.com/VectorBits/Polaris/src/internal/gas"
	"github.com/VectorBits/Polaris/src/internal/intent"
	"github.com/VectorBits/Polaris/src/internal/logger"
	"github.com/VectorBits/Polaris/src/internal/report"
	"github.com/VectorBits/Polaris/src/internal/solc"
	"github.com/VectorBits/Polaris/src/internal/store"
	"github.com/VectorBits/Polaris/src/internal/ui"
)

func Execute(ctx context.Context, cfg *CLIConfig) error {
	if cfg.Verbose {
		fmt.Printf(ui.Gray+"Running Polaris with config: %+v"+ui.Reset+"\n", cfg)
	}

	switch {
	case cfg.Intent != "":
		return ExecuteValidate(cfg)
	case cfg.ErrorsFile != "":
		return ExecuteDiagnose(cfg)
	case cfg.HistoryLimit > 0:
		return ExecuteHistory(cfg)
	case cfg.GasOnly:
		return ExecuteGas(cfg)
	case cfg.FormatOnly:
		return ExecuteFormat(cfg)
	case cfg.DocOnly:
		return ExecuteDoc(cfg)
	case cfg.ExplainOnly:
		return ExecuteExplain(cfg)
	case cfg.TargetSource == "batch":
		return ExecuteBatch(ctx, cfg)
	case cfg.TargetSource == "db" || cfg.TargetSource == "contract":
		return ExecuteDB(ctx, cfg)
	default:
		return ExecuteAnalyze(ctx, cfg)
	}
}

// ExecuteAnalyze 单文件完整分析入口
func ExecuteAnalyze(ctx context.Context, cfg *CLIConfig) error {
	if err := logger.InitLogger(); err != nil {
		fmt.Printf(ui.Yellow+"⚠️  Warning: Failed to init logger: %v"+ui.Reset+"\n", err)
	}
	defer logger.Close()

	source, err := os.ReadFile(cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	start := time.Now()
	a := newAnalyzer()

	ui.UpdateStatus("Analyzing %s...", cfg.ContractName)
	res := a.Full(ctx, string(source), cfg.ContractName)
	if !res.OK() {
		return fmt.Errorf("analysis failed: %s", res.ErrorMessage)
	}
	full := res.Data.(*analyzer.FullReport)

	rep := report.NewReport()
	rep.Add(full)

	path, err := saveReport(cfg, rep)
	if err != nil {
		return err
	}

	critical := rep.SeverityDistribution["critical"]
	ui.LogFindings(full.ContractName, rep.TotalFindings, critical)
	ui.LogSuccess("Report saved: %s", path)
	ui.PrintStats(1, 1, 0, rep.TotalFindings, time.Since(start))

	if !cfg.NoHistory {
		recordHistory(cfg, full, rep.TotalFindings, path)
	}
	return nil
}

// ExecuteBatch 按列表文件并发分析多个合约
func ExecuteBatch(ctx context.Context, cfg *CLIConfig) error {
	if err := logger.InitLogger(); err != nil {
		fmt.Printf(ui.Yellow+"⚠️  Warning: Failed to init logger: %v"+ui.Reset+"\n", err)
	}
	defer logger.Close()

	paths, err := internal.ReadLines(cfg.TargetFile)
	if err != nil {
		return fmt.Errorf("failed to read target list: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("target list is empty: %s", cfg.TargetFile)
	}

	start := time.Now()
	a := newAnalyzer()
	rep := report.NewReport()
	pb := ui.NewProgressBar(len(paths), "Analyzing contracts")

	var mu sync.Mutex
	var failed int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, p := range paths {
		path := p
		g.Go(func() error {
			defer pb.Increment()

			source, err := os.ReadFile(path)
			if err != nil {
				logger.Error("read %s: %v", path, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			name := contractNameFromPath(path)

			tctx, cancel := context.WithTimeout(gctx, cfg.Timeout)
			res := a.Full(tctx, string(source), name)
			cancel()
			if !res.OK() {
				logger.Error("analyze %s: %s", name, res.ErrorMessage)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			full := res.Data.(*analyzer.FullReport)

			mu.Lock()
			rep.Add(full)
			if full.Review != nil && full.Review.Summary.Total > 0 {
				pb.AddFinding()
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	pb.Finish()

	path, err := saveReport(cfg, rep)
	if err != nil {
		return err
	}
	ui.LogSuccess("Report saved: %s", path)
	ui.PrintStats(len(paths), rep.TotalContracts, failed, rep.TotalFindings, time.Since(start))
	return nil
}

// ExecuteDB 从数据库取源码分析
func ExecuteDB(ctx context.Context, cfg *CLIConfig) error {
	if err := logger.InitLogger(); err != nil {
		fmt.Printf(ui.Yellow+"⚠️  Warning: Failed to init logger: %v"+ui.Reset+"\n", err)
	}
	defer logger.Close()

	fmt.Println(ui.Blue + "📊 Connecting to MySQL database..." + ui.Reset)
	db, err := config.InitDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer db.Close()
	fmt.Println(ui.Green + "✅ Database connected!" + ui.Reset)

	var contracts []internal.Contract
	if cfg.TargetSource == "contract" {
		contracts, err = config.GetContractsByAddresses(ctx, db, []string{cfg.TargetAddr})
	} else {
		var br *dbutil.BlockRange
		if cfg.BlockRange != nil {
			br = &dbutil.BlockRange{Start: cfg.BlockRange.Start, End: cfg.BlockRange.End}
		}
		var addrs []string
		addrs, err = dbutil.GetAddressesFromDB(db, br)
		if err == nil && len(addrs) > 0 {
			contracts, err = config.GetContractsByAddresses(ctx, db, addrs)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to load contracts: %w", err)
	}
	if len(contracts) == 0 {
		return fmt.Errorf("no contracts matched the target")
	}

	start := time.Now()
	a := newAnalyzer()
	rep := report.NewReport()
	pb := ui.NewProgressBar(len(contracts), "Analyzing contracts")

	var failed int
	for _, c := range contracts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := c.Name
		if name == "" {
			name = c.Address
		}

		source, err := cleaner.Normalize(c.Source)
		if err != nil {
			logger.Error("normalize %s: %v", name, err)
			pb.Increment()
			failed++
			continue
		}

		tctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		res := a.Full(tctx, source, name)
		cancel()
		pb.Increment()
		if !res.OK() {
			logger.Error("analyze %s: %s", name, res.ErrorMessage)
			failed++
			continue
		}
		full := res.Data.(*analyzer.FullReport)
		rep.Add(full)
		if full.Review != nil && full.Review.Summary.Total > 0 {
			pb.AddFinding()
		}
	}
	pb.Finish()

	path, err := saveReport(cfg, rep)
	if err != nil {
		return err
	}
	ui.LogSuccess("Report saved: %s", path)
	ui.PrintStats(len(contracts), rep.TotalContracts, failed, rep.TotalFindings, time.Since(start))
	return nil
}

// ExecuteGas 仅做 gas 估算
func ExecuteGas(cfg *CLIConfig) error {
	abiJSON, err := os.ReadFile(cfg.ABIFile)
	if err != nil {
		return fmt.Errorf("failed to read ABI file: %w", err)
	}

	var bytecode, source string
	if cfg.BytecodeFile != "" {
		bs, err := os.ReadFile(cfg.BytecodeFile)
		if err != nil {
			return fmt.Errorf("failed to read bytecode file: %w", err)
		}
		bytecode = strings.TrimSpace(string(bs))
	}
	if cfg.SourceFile != "" {
		bs, err := os.ReadFile(cfg.SourceFile)
		if err != nil {
			return fmt.Errorf("failed to read source file: %w", err)
		}
		source = string(bs)
	}

	res := analyzer.New().Gas(string(abiJSON), bytecode, source)
	if !res.OK() {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	est := res.Data.(*gas.Estimate)

	fmt.Println(ui.Cyan + "⛽ Gas Estimates" + ui.Reset)
	for _, f := range est.Functions {
		fmt.Printf("  %-30s %10d gas  %-12s %s\n", f.Name, f.EstimatedGas, f.StateMutability, f.Category)
	}
	if est.DeploymentGas > 0 {
		fmt.Printf("\n  %-30s %10d gas\n", "deployment", est.DeploymentGas)
	}
	fmt.Printf("\n  Efficiency score: %d/100\n", est.EfficiencyScore)
	for _, note := range est.Optimizations {
		fmt.Println(ui.Yellow + "  💡 " + note + ui.Reset)
	}
	return nil
}

// ExecuteDiagnose 分类编译器错误
func ExecuteDiagnose(cfg *CLIConfig) error {
	f, err := os.Open(cfg.ErrorsFile)
	if err != nil {
		return fmt.Errorf("failed to open errors file: %w", err)
	}
	defer f.Close()

	var messages []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			messages = append(messages, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read errors file: %w", err)
	}

	res := analyzer.New().Diagnose(messages)
	if !res.OK() {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	summary := res.Data.(*diagnostics.Summary)

	fmt.Printf(ui.Cyan+"🩺 %d diagnostics"+ui.Reset+"\n", summary.Total)
	for _, d := range summary.Diagnostics {
		line := ""
		if d.Line > 0 {
			line = fmt.Sprintf(" (line %d)", d.Line)
		}
		fmt.Printf("  [%s]%s %s\n", d.Kind, line, d.Raw)
		fmt.Printf("    %s Fix: %s\n", ui.Gray, d.SuggestedFix+ui.Reset)
	}
	if len(summary.GeneralSuggestions) > 0 {
		fmt.Println(ui.Cyan + "\nGeneral suggestions:" + ui.Reset)
		for _, s := range summary.GeneralSuggestions {
			fmt.Println("  - " + s)
		}
	}
	return nil
}

// ExecuteValidate 校验自然语言合约需求
func ExecuteValidate(cfg *CLIConfig) error {
	res := analyzer.New().Validate(cfg.Intent)
	if !res.OK() {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	r := res.Data.(*intent.Result)

	if r.Feasible {
		fmt.Println(ui.Green + "✅ Request looks actionable" + ui.Reset)
	} else {
		fmt.Println(ui.Yellow + "⚠️  Request needs clarification" + ui.Reset)
	}
	if r.RecommendedType != "" {
		fmt.Printf("  Recommended type: %s\n", r.RecommendedType)
	}
	fmt.Printf("  Clarity score: %d\n", r.ClarityScore)
	fmt.Printf("  Estimated complexity: %s\n", r.EstimatedComplexity)
	if len(r.MissingInfo) > 0 {
		fmt.Println("\n  Missing information:")
		for _, m := range r.MissingInfo {
			fmt.Println("    - " + m)
		}
	}
	if len(r.ClarifyingQuestions) > 0 {
		fmt.Println("\n  Clarifying questions:")
		for _, q := range r.ClarifyingQuestions {
			fmt.Println("    - " + q)
		}
	}
	if len(r.Suggestions) > 0 {
		fmt.Println("\n  Suggestions:")
		for _, s := range r.Suggestions {
			fmt.Println("    - " + s)
		}
	}
	return nil
}

// ExecuteFormat 排版源码并输出
func ExecuteFormat(cfg *CLIConfig) error {
	source, err := os.ReadFile(cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	res := analyzer.New().Format(string(source))
	if !res.OK() {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	fmt.Print(res.Data.(*format.Result).Code)
	return nil
}

// ExecuteDoc 生成文档
func ExecuteDoc(cfg *CLIConfig) error {
	source, err := os.ReadFile(cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	res := analyzer.New().Document(string(source), cfg.ContractName)
	if !res.OK() {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	fmt.Print(res.Data.(*docgen.Documentation).Markdown)
	return nil
}

// ExecuteExplain 逐段讲解
func ExecuteExplain(cfg *CLIConfig) error {
	source, err := os.ReadFile(cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}
	res := analyzer.New().Explain(string(source))
	if !res.OK() {
		return fmt.Errorf("%s", res.ErrorMessage)
	}
	er := res.Data.(*docgen.ExplainResult)

	fmt.Println(ui.Cyan + "📖 Code Walkthrough" + ui.Reset)
	for _, e := range er.Explanations {
		fmt.Printf("\n  [%s] lines %d-%d (%s)\n", e.Section, e.LineStart, e.LineEnd, e.Importance)
		fmt.Println("    " + e.Explanation)
	}
	fmt.Printf("\n  Overall complexity: %s (score %d)\n", er.Summary.Complexity, er.ComplexityScore)
	return nil
}

// ExecuteHistory 打印最近的分析历史
func ExecuteHistory(cfg *CLIConfig) error {
	appConfig, err := config.LoadConfig()
	historyPath := "polaris_history.db"
	if err == nil && appConfig.Storage.HistoryPath != "" {
		historyPath = appConfig.Storage.HistoryPath
	}

	st, err := store.Open(historyPath)
	if err != nil {
		return err
	}
	records, err := st.Recent(cfg.HistoryLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(ui.Gray + "No analysis history yet." + ui.Reset)
		return nil
	}

	fmt.Println(ui.Cyan + "🗂  Recent Analyses" + ui.Reset)
	for _, r := range records {
		fmt.Printf("  %s  %-24s findings=%-3d score=%-3d %s\n",
			r.AnalyzedAt.Format("2006-01-02 15:04"), r.ContractName, r.TotalFindings, r.ImprovementScore, r.ReportPath)
	}
	return nil
}

func saveReport(cfg *CLIConfig, rep *report.Report) (string, error) {
	reportDir := cfg.ReportDir
	if appConfig, err := config.LoadConfig(); err == nil && reportDir == "reports" && appConfig.Storage.ReportDir != "" {
		reportDir = appConfig.Storage.ReportDir
	}

	reporter := report.NewReporter(report.NewMarkdownGenerator(), report.NewFileStorage(reportDir))
	path, err := reporter.GenerateAndSave(rep)
	if err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func recordHistory(cfg *CLIConfig, full *analyzer.FullReport, findings int, reportPath string) {
	appConfig, err := config.LoadConfig()
	historyPath := "polaris_history.db"
	if err == nil && appConfig.Storage.HistoryPath != "" {
		historyPath = appConfig.Storage.HistoryPath
	}

	st, err := store.Open(historyPath)
	if err != nil {
		logger.Warn("history store unavailable: %v", err)
		return
	}

	rec := &store.Record{
		ContractName:  full.ContractName,
		PragmaVersion: full.PragmaVersion,
		TotalFindings: findings,
		ReportPath:    reportPath,
		AnalyzedAt:    full.GeneratedAt,
	}
	if full.Review != nil {
		rec.ImprovementScore = full.Review.Summary.ImprovementScore
	}
	if full.Metrics != nil {
		rec.OverallScore = int(full.Metrics.OverallScore)
	}
	if full.Gas != nil {
		rec.DeploymentGas = uint64(full.Gas.DeploymentGas)
	}
	if err := st.Save(rec); err != nil {
		logger.Warn("failed to save history: %v", err)
	}
}

// newAnalyzer 完整分析路径挂载 solc 编译服务，缺少 solc 时自动降级
func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.WithCompiler(solc.NewCompiler()))
}

func contractNameFromPath(path string) string {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	return base
}
