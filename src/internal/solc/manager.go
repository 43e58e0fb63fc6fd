// Package solc 定位本机的 solc 二进制并提供编译服务。
// 版本按源码 pragma 自动匹配，查找顺序：solc-select、~/.solcx、自动安装。
package solc

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// SolcManager solc 版本管理器
type SolcManager struct {
	mu           sync.RWMutex
	versionCache map[string]string // version -> solc path
	currentVer   string            // 当前 solc-select 激活的版本
	installLocks sync.Map          // version -> *sync.Once，用于确保每个版本只安装一次
}

var (
	defaultManager *SolcManager
	once           sync.Once
)

func GetManager() *SolcManager {
	once.Do(func() {
		defaultManager = &SolcManager{
			versionCache: make(map[string]string),
		}
	})
	return defaultManager
}

// GetSolcPath 获取指定版本的 solc 路径（带缓存）
func (m *SolcManager) GetSolcPath(version string) (string, error) {
	if version == "" {
		return "", fmt.Errorf("version is empty")
	}

	version = normalizeVersion(version)

	// 检查缓存
	m.mu.RLock()
	if path, ok := m.versionCache[version]; ok {
		m.mu.RUnlock()
		if fileExists(path) {
			return path, nil
		}
	} else {
		m.mu.RUnlock()
	}

	// 方法1: 检查 solc-select 安装的版本
	path, err := m.trySolcSelect(version)
	if err == nil && path != "" {
		m.cachePath(version, path)
		return path, nil
	}

	// 方法2: 检查 ~/.solcx 目录（py-solc-x 安装位置）
	path, err = m.trySolcx(version)
	if err == nil && path != "" {
		m.cachePath(version, path)
		return path, nil
	}

	// 方法3: 尝试安装
	path, err = m.installVersion(version)
	if err == nil && path != "" {
		m.cachePath(version, path)
		return path, nil
	}

	return "", fmt.Errorf("failed to get solc %s: %v", version, err)
}

func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "v")
	// 移除约束符号
	for _, prefix := range []string{"^", ">=", "<=", ">", "<", "~", "="} {
		version = strings.TrimPrefix(version, prefix)
	}
	return strings.TrimSpace(version)
}

func (m *SolcManager) cachePath(version, path string) {
	m.mu.Lock()
	m.versionCache[version] = path
	m.mu.Unlock()
}

func (m *SolcManager) trySolcSelect(version string) (string, error) {
	// 检查 solc-select 是否可用
	if _, err := exec.LookPath("solc-select"); err != nil {
		return "", err
	}

	// 检查版本是否已安装
	cmd := exec.Command("solc-select", "versions")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	installed := false
	lines := strings.Split(string(output), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		// solc-select versions 输出格式: "0.8.16" 或 "0.8.16 (current)"
		if strings.HasPrefix(line, version) {
			installed = true
			break
		}
	}

	// 如果未安装，尝试安装（使用 sync.Once 避免竞态）
	if !installed {
		once, _ := m.installLocks.LoadOrStore(version, &sync.Once{})
		installOnce := once.(*sync.Once)

		var installErr error
		installOnce.Do(func() {
			installCmd := exec.Command("solc-select", "install", version)
			if err := installCmd.Run(); err != nil {
				installErr = fmt.Errorf("solc-select install failed: %v", err)
			}
		})
		if installErr != nil {
			return "", installErr
		}
	}

	// 直接返回 solc-select 安装的二进制文件路径（避免并发切换问题）
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var possiblePaths []string
	solcSelectDir := filepath.Join(homeDir, ".solc-select", "artifacts", fmt.Sprintf("solc-%s", version))

	if runtime.GOOS == "windows" {
		possiblePaths = []string{
			filepath.Join(solcSelectDir, fmt.Sprintf("solc-%s.exe", version)),
			filepath.Join(solcSelectDir, "solc.exe"),
		}
	} else {
		possiblePaths = []string{
			filepath.Join(solcSelectDir, fmt.Sprintf("solc-%s", version)),
			filepath.Join(homeDir, ".solc-select", "artifacts", version, fmt.Sprintf("solc-%s", version)),
		}
	}

	for _, path := range possiblePaths {
		if fileExists(path) && isExecutable(path) {
			return path, nil
		}
	}

	// 回退：使用 solc-select use 切换后获取路径（单线程场景）
	m.mu.Lock()
	defer m.mu.Unlock()

	useCmd := exec.Command("solc-select", "use", version)
	if err := useCmd.Run(); err != nil {
		return "", fmt.Errorf("solc-select use failed: %v", err)
	}
	m.currentVer = version

	solcPath, err := exec.LookPath("solc")
	if err != nil {
		return "", err
	}

	return solcPath, nil
}

func (m *SolcManager) trySolcx(version string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	solcxDir := filepath.Join(homeDir, ".solcx")

	possiblePaths := []string{
		filepath.Join(solcxDir, fmt.Sprintf("solc-v%s", version)),
		filepath.Join(solcxDir, fmt.Sprintf("solc-%s", version)),
	}

	// macOS 特殊路径
	if runtime.GOOS == "darwin" {
		possiblePaths = append(possiblePaths,
			filepath.Join(solcxDir, fmt.Sprintf("solc-v%s", version), "bin", "solc"),
		)
	}

	for _, path := range possiblePaths {
		if fileExists(path) && isExecutable(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("solcx version %s not found", version)
}

func (m *SolcManager) installVersion(version string) (string, error) {
	// 优先使用 solc-select 安装
	if _, err := exec.LookPath("solc-select"); err == nil {
		cmd := exec.Command("solc-select", "install", version)
		if err := cmd.Run(); err == nil {
			return m.trySolcSelect(version)
		}
	}

	return "", fmt.Errorf("failed to install solc %s, please install manually: solc-select install %s", version, version)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	// Windows 上所有文件都可以执行，只需检查文件存在
	if runtime.GOOS == "windows" {
		return !info.IsDir()
	}
	return info.Mode()&0111 != 0
}
