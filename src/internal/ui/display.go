package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
	Bold   = "\033[1m"
)

var (
	lastLineLength int
	mu             sync.Mutex
)

func PrintBanner() {
	banner := `
 _____      _            _
|  __ \    | |          (_)
| |__) |__ | | __ _ _ __ _ ___
|  ___/ _ \| |/ _` + "`" + ` | '__| / __|
| |  | (_) | | (_| | |  | \__ \
|_|   \___/|_|\__,_|_|  |_|___/
`
	fmt.Println(Cyan + banner + Reset)
	fmt.Println(Gray + "  v1.0.0 - Heuristic Smart Contract Analysis & Advisory Framework" + Reset)
	fmt.Println()
}

func clearLine() {
	fmt.Print("\r\033[K")
}

func UpdateStatus(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	msg := fmt.Sprintf(format, a...)
	clearLine()

	// 过长时截断，避免折行破坏状态行
	if len(msg) > 100 {
		msg = msg[:97] + "..."
	}

	fmt.Print(Cyan + "⚡ " + msg + Reset)
	lastLineLength = len(msg)
}

func LogSuccess(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	fmt.Printf(Green+"[SUCCESS] "+Reset+format+"\n", a...)
}

// LogFindings 汇报单个合约的建议命中情况
func LogFindings(name string, total, critical int) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	if critical > 0 {
		fmt.Printf(Red+"[FINDINGS] "+Reset+"%s | Total: %d | Critical: %d\n", name, total, critical)
		return
	}
	fmt.Printf(Yellow+"[FINDINGS] "+Reset+"%s | Total: %d\n", name, total)
}

func LogInfo(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	fmt.Printf(Blue+"[INFO] "+Reset+format+"\n", a...)
}

func LogError(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	fmt.Printf(Red+"[ERROR] "+Reset+format+"\n", a...)
}

func StartSpinner(msg string) chan bool {
	stop := make(chan bool)
	go func() {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		i := 0
		for {
			select {
			case <-stop:
				return
			default:
				mu.Lock()
				clearLine()
				fmt.Printf(Cyan+"%s %s"+Reset, frames[i%len(frames)], msg)
				mu.Unlock()
				time.Sleep(100 * time.Millisecond)
				i++
			}
		}
	}()
	return stop
}

func PrintStats(total, success, failed, findings int, duration time.Duration) {
	fmt.Println()
	fmt.Println(Gray + strings.Repeat("─", 50) + Reset)
	fmt.Printf("🏁 Analysis Completed in %s\n", duration)
	fmt.Printf("📊 Total: %d | ✅ Success: %d | ❌ Failed: %d | 💡 Findings: %d\n", total, success, failed, findings)
	fmt.Println(Gray + strings.Repeat("─", 50) + Reset)
}
