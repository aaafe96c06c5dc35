package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	InfoLogger  *logrus.Logger
	WarnLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

// InitLoggers sets up the shared loggers. Logs go to stdout and to a
// rotated file so container logs and the on-disk history stay in sync.
func InitLoggers() {
	rotator := &lumberjack.Logger{
		Filename:   logFilePath(),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	out := io.MultiWriter(os.Stdout, rotator)

	InfoLogger = newLogger(out, logrus.InfoLevel)
	WarnLogger = newLogger(out, logrus.WarnLevel)
	ErrorLogger = newLogger(out, logrus.ErrorLevel)
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
	return l
}

func logFilePath() string {
	if p := os.Getenv("LOG_FILE"); p != "" {
		return p
	}
	return "logs/mentorloop.log"
}
