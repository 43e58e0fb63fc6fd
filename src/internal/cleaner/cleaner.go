// Package cleaner 把数据库里各种形态的合约源码归一成可分析的单文件文本。
// 链上浏览器导出的源码可能是多文件 standard-input JSON，也可能带 {{ }} 双括号包裹。
package cleaner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var LibraryPatterns = []string{
	"@openzeppelin",
	"node_modules",
	"lib/openzeppelin",
	"lib/solmate",
	"lib/forge-std",
	"test/",
	"mock/",
}

type StandardInputJSON struct {
	Language string                 `json:"language"`
	Sources  map[string]SourceFile  `json:"sources"`
	Settings map[string]interface{} `json:"settings,omitempty"`
}

type SourceFile struct {
	Content string `json:"content"`
}

// IsJSONSource 检查源代码是否为多文件 JSON 格式
func IsJSONSource(source string) bool {
	trimmed := strings.TrimSpace(normalizeJSONSource(source))
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, "\"content\"")
}

// Normalize 归一化源码：多文件 JSON 会被拼接成单文件，
// 重复的 pragma 只保留最高版本。普通单文件源码原样返回
func Normalize(source string) (string, error) {
	if !IsJSONSource(source) {
		return source, nil
	}
	return flattenJSONSource(source)
}

func flattenJSONSource(source string) (string, error) {
	var input StandardInputJSON
	normalized := normalizeJSONSource(source)
	if err := json.Unmarshal([]byte(normalized), &input); err != nil {
		// 也可能是裸的 {path: {content}} 映射
		var bare map[string]SourceFile
		if err2 := json.Unmarshal([]byte(normalized), &bare); err2 != nil || len(bare) == 0 {
			return "", fmt.Errorf("failed to parse multi-file source: %w", err)
		}
		input.Sources = bare
	}
	if len(input.Sources) == 0 {
		return "", fmt.Errorf("multi-file source contains no files")
	}

	// 路径排序保证输出稳定，主合约（非库文件）排在后面
	paths := make([]string, 0, len(input.Sources))
	for p := range input.Sources {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		li, lj := isLibrary(paths[i]), isLibrary(paths[j])
		if li != lj {
			return li
		}
		return paths[i] < paths[j]
	})

	var sb strings.Builder
	for _, p := range paths {
		content := stripImports(input.Sources[p].Content)
		fmt.Fprintf(&sb, "// File: %s\n", p)
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}

	return cleanupPragmas(sb.String()), nil
}

func normalizeJSONSource(jsonStr string) string {
	trimmed := strings.TrimSpace(jsonStr)
	if strings.HasPrefix(trimmed, "{{") && strings.HasSuffix(trimmed, "}}") {
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}

var importRe = regexp.MustCompile(`(?m)^\s*import\s+[^;]+;\s*$`)

// stripImports 拼接后的单文件里文件级 import 已无意义
func stripImports(content string) string {
	return importRe.ReplaceAllString(content, "")
}

// cleanupPragmas 移除重复的 pragma 声明，只保留最高版本
func cleanupPragmas(source string) string {
	pragmaRe := regexp.MustCompile(`pragma\s+solidity\s+([^;]+);`)

	matches := pragmaRe.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return source
	}

	var highestVersion string
	var highestVerMajor, highestVerMinor, highestVerPatch int

	for _, match := range matches {
		versionStr := match[1]
		verNumRe := regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
		verMatches := verNumRe.FindAllStringSubmatch(versionStr, -1)

		for _, verMatch := range verMatches {
			major, _ := strconv.Atoi(verMatch[1])
			minor, _ := strconv.Atoi(verMatch[2])
			patch, _ := strconv.Atoi(verMatch[3])

			isHigher := false
			if major > highestVerMajor {
				isHigher = true
			} else if major == highestVerMajor {
				if minor > highestVerMinor {
					isHigher = true
				} else if minor == highestVerMinor {
					if patch > highestVerPatch {
						isHigher = true
					}
				}
			}

			if isHigher || highestVersion == "" {
				highestVerMajor = major
				highestVerMinor = minor
				highestVerPatch = patch
				highestVersion = fmt.Sprintf("%d.%d.%d", major, minor, patch)
			}
		}
	}

	if highestVersion == "" {
		return source
	}

	cleanedSource := pragmaRe.ReplaceAllString(source, "")
	finalPragma := fmt.Sprintf("pragma solidity ^%s;", highestVersion)

	lines := strings.Split(cleanedSource, "\n")
	var finalLines []string

	spdxIndex := -1
	for i, line := range lines {
		if strings.Contains(line, "SPDX-License-Identifier") {
			spdxIndex = i
			break
		}
	}

	if spdxIndex != -1 {
		finalLines = append(finalLines, lines[:spdxIndex+1]...)
		finalLines = append(finalLines, finalPragma)
		finalLines = append(finalLines, lines[spdxIndex+1:]...)
	} else {
		finalLines = append([]string{finalPragma}, lines...)
	}

	return strings.Join(finalLines, "\n")
}

func isLibrary(path string) bool {
	pathLower := strings.ToLower(path)
	for _, pattern := range LibraryPatterns {
		if strings.Contains(pathLower, pattern) {
			return true
		}
	}
	return false
}
