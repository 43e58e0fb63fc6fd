package decompose

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	pragmaRe  = regexp.MustCompile(`pragma\s+solidity\s+([^;]+);`)
	versionRe = regexp.MustCompile(`(\d+\.\d+\.\d+)`)
)

// ExtractPragmaVersion 从合约源码中提取 pragma solidity 版本。
// pragma solidity ^0.8.16; 或 pragma solidity >=0.8.0 <0.9.0;
// 存在多个约束时返回最高版本。
func ExtractPragmaVersion(source string) string {
	matches := pragmaRe.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return ""
	}

	var versions []string
	for _, match := range matches {
		versions = append(versions, versionRe.FindAllString(match[1], -1)...)
	}
	if len(versions) == 0 {
		return ""
	}

	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})
	return versions[0]
}

func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")
	for i := 0; i < 3; i++ {
		var n1, n2 int
		if i < len(parts1) {
			fmt.Sscanf(parts1[i], "%d", &n1)
		}
		if i < len(parts2) {
			fmt.Sscanf(parts2[i], "%d", &n2)
		}
		if n1 != n2 {
			if n1 > n2 {
				return 1
			}
			return -1
		}
	}
	return 0
}
