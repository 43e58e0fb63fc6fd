// Package analyzer 把各个独立引擎编排成统一的对外操作。
// 每个操作都是输入的纯函数：内部失败一律转成错误信封，不向外抛出。
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/VectorBits/Polaris/src/internal/compiler"
	"github.com/VectorBits/Polaris/src/internal/decompose"
	"github.com/VectorBits/Polaris/src/internal/diagnostics"
	"github.com/VectorBits/Polaris/src/internal/docgen"
	"github.com/VectorBits/Polaris/src/internal/format"
	"github.com/VectorBits/Polaris/src/internal/gas"
	"github.com/VectorBits/Polaris/src/internal/intent"
	"github.com/VectorBits/Polaris/src/internal/logger"
	"github.com/VectorBits/Polaris/src/internal/metrics"
	"github.com/VectorBits/Polaris/src/internal/suggest"
)

// Analyzer 持有不可变的规则表和可选的编译服务协作方。
// 没有跨调用缓存，多个调用方并发使用无需加锁
type Analyzer struct {
	engine     *suggest.Engine
	classifier *diagnostics.Classifier
	compilerFn compiler.Service

	group singleflight.Group
}

// Option 构造选项
type Option func(*Analyzer)

// WithCompiler 注入外部编译服务，Full 分析会顺带产出 gas 估算
func WithCompiler(svc compiler.Service) Option {
	return func(a *Analyzer) { a.compilerFn = svc }
}

// WithRules 替换默认建议规则表
func WithRules(rules []suggest.Rule) Option {
	return func(a *Analyzer) { a.engine = suggest.NewEngine(rules) }
}

// New 构造分析器
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		engine:     suggest.NewEngine(nil),
		classifier: diagnostics.NewClassifier(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FullReport 一次完整分析的数据载荷
type FullReport struct {
	ContractName  string               `json:"contract_name"`
	PragmaVersion string               `json:"pragma_version,omitempty"`
	Sections      []decompose.Section  `json:"sections"`
	Metrics       *metrics.Report      `json:"metrics"`
	Review        *suggest.Review      `json:"review"`
	Gas           *gas.Estimate        `json:"gas,omitempty"`
	Diagnostics   *diagnostics.Summary `json:"diagnostics,omitempty"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// Decompose 结构分解
func (a *Analyzer) Decompose(source string) (result Result) {
	defer recoverTo(&result)
	return success(decompose.Decompose(source))
}

// Metrics 度量计算
func (a *Analyzer) Metrics(source string) (result Result) {
	defer recoverTo(&result)
	return success(metrics.Compute(source))
}

// Suggestions 建议评估
func (a *Analyzer) Suggestions(source string) (result Result) {
	defer recoverTo(&result)
	return success(a.engine.Evaluate(source))
}

// Gas 按 ABI 和可选源码估算 gas
func (a *Analyzer) Gas(abiJSON, bytecode, source string) (result Result) {
	defer recoverTo(&result)
	est, err := gas.Analyze(abiJSON, bytecode, source)
	if err != nil {
		return failure(ErrValidationFailure, fmt.Sprintf("Gas analysis failed: %v", err))
	}
	return success(est)
}

// Diagnose 编译器诊断分类
func (a *Analyzer) Diagnose(messages []string) (result Result) {
	defer recoverTo(&result)
	return success(a.classifier.Classify(messages))
}

// Validate 自由文本需求校验
func (a *Analyzer) Validate(request string) (result Result) {
	defer recoverTo(&result)
	return success(intent.Validate(request))
}

// Document 文档生成
func (a *Analyzer) Document(source, contractName string) (result Result) {
	defer recoverTo(&result)
	return success(docgen.Generate(source, contractName))
}

// Explain 逐段讲解
func (a *Analyzer) Explain(source string) (result Result) {
	defer recoverTo(&result)
	return success(docgen.Explain(source))
}

// Format 源码排版
func (a *Analyzer) Format(source string) (result Result) {
	defer recoverTo(&result)
	return success(format.Format(source))
}

// Full 对同一份不可变源码并行运行各引擎并汇总。
// 源码与合约名都相同的并发调用通过 singleflight 合并为一次计算，
// 名称进 key 保证每个调用方拿到的报告挂着自己传入的名字
func (a *Analyzer) Full(ctx context.Context, source, contractName string) Result {
	key := sourceKey(source, contractName)
	v, err, _ := a.group.Do(key, func() (any, error) {
		return a.runFull(ctx, source, contractName)
	})
	if err != nil {
		return failure(ErrProcessingFailure, err.Error())
	}
	return success(v)
}

func (a *Analyzer) runFull(ctx context.Context, source, contractName string) (report *FullReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	report = &FullReport{
		ContractName:  contractName,
		PragmaVersion: decompose.ExtractPragmaVersion(source),
		GeneratedAt:   time.Now(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.Sections = decompose.Decompose(source)
		return nil
	})
	g.Go(func() error {
		report.Metrics = metrics.Compute(source)
		return nil
	})
	g.Go(func() error {
		report.Review = a.engine.Evaluate(source)
		return nil
	})
	if a.compilerFn != nil {
		g.Go(func() error {
			compiled, cerr := a.compilerFn.Compile(gctx, source, contractName)
			if cerr != nil {
				var ce *compiler.CompileError
				if errors.As(cerr, &ce) {
					report.Diagnostics = a.classifier.Classify(ce.Diagnostics)
					return nil
				}
				logger.Warn("compiler service unavailable: %v", cerr)
				return nil
			}
			est, gerr := gas.Analyze(string(compiled.ABI), compiled.Bytecode, source)
			if gerr != nil {
				return fmt.Errorf("gas analysis: %w", gerr)
			}
			report.Gas = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func sourceKey(source, contractName string) string {
	h := sha256.New()
	h.Write([]byte(contractName))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

func recoverTo(result *Result) {
	if r := recover(); r != nil {
		*result = failure(ErrProcessingFailure, fmt.Sprintf("internal analysis failure: %v", r))
	}
}
