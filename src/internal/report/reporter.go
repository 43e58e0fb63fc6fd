package report

import (
	"fmt"
	"time"

	"github.com/VectorBits/Polaris/src/internal/analyzer"
)

type Reporter struct {
	generator Generator
	storage   Storage
}

func NewReporter(generator Generator, storage Storage) *Reporter {
	return &Reporter{
		generator: generator,
		storage:   storage,
	}
}

func (r *Reporter) GenerateAndSave(report *Report) (string, error) {
	// 生成报告内容
	content, err := r.generator.Generate(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	// 保存报告
	filepath, err := r.storage.Save(report, content)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return filepath, nil
}

func NewReport() *Report {
	return &Report{
		GeneratedAt:          time.Now(),
		TotalContracts:       0,
		TotalFindings:        0,
		SeverityDistribution: make(map[string]int),
		Results:              make([]*analyzer.FullReport, 0),
	}
}

func (r *Report) Add(result *analyzer.FullReport) {
	r.Results = append(r.Results, result)
	r.TotalContracts++
	r.TotalFindings += countBySeverity(result.Review, r.SeverityDistribution)
}
