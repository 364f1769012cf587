package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/ziflex/lecho/v3"
)

// Logger builds the shared lecho logger, writing to STDOUT or, when a log
// file path is configured, to a timestamped file next to it.
func Logger(logFilePath string) *lecho.Logger {
	logger := lecho.New(
		os.Stdout,
		lecho.WithLevel(log.INFO),
		lecho.WithTimestamp(),
	)
	if logFilePath != "" {
		file, err := openLogFile(logFilePath)
		if err != nil {
			logger.Errorf("failed to open log file: %v", err)
			return logger
		}
		logger.SetOutput(file)
	}
	return logger
}

func openLogFile(path string) (*os.File, error) {
	extension := filepath.Ext(path)
	stamp := time.Now().Format("2006-01-02")
	if extension != "" {
		path = strings.Replace(path, extension, "-"+stamp+extension, 1)
	} else {
		path = path + "-" + stamp + ".log"
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
}
