// logger/logpath.go

package logger

import (
	"os"
	"path/filepath"
	"time"
)

// EnsureLogFilePath checks the provided path and prepares it for use with the logger.
// If the path is a directory (or does not exist), a timestamp-based filename is appended.
// An existing file path is used as is. The parent directory is created when missing.
func EnsureLogFilePath(logPath string) (string, error) {
	if logPath == "" {
		logPath = filepath.Join(".", "wechat_"+time.Now().Format("20060102_150405")+".log")
	} else {
		info, err := os.Stat(logPath)

		if os.IsNotExist(err) || (err == nil && info.IsDir()) {
			logPath = filepath.Join(logPath, "wechat_"+time.Now().Format("20060102_150405")+".log")
		} else if err != nil {
			return "", err
		}
	}

	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return logPath, nil
}
