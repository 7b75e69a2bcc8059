// Package util 平台相关的小工具。
package util

import (
	"os/exec"
	"runtime"
)

// openCommand 各平台用默认程序打开文件的命令
func openCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "windows":
		// rundll32 兼容 Windows 7
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	default:
		return exec.Command("xdg-open", path)
	}
}

// OpenFile 用系统默认程序打开文件（输出工作簿）
func OpenFile(path string) error {
	err := openCommand(runtime.GOOS, path).Start()
	if err == nil {
		return nil
	}

	// 降级方案
	if runtime.GOOS == "windows" {
		return exec.Command("explorer", path).Start()
	}
	return err
}
