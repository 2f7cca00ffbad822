package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New は LOG_LEVEL / LOG_FORMAT から logrus.Logger を作る。
// レベルが不正なら info にして警告を出す。
func New(level string, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format)
}

func NewWithOutput(w io.Writer, level string, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logger.SetLevel(lvl)
		logger.Warnf("invalid LOG_LEVEL %q, using %s", level, lvl.String())
		return logger
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard はテスト用。何も出力しない。
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
