package logger

import (
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// New returns a logrus logger writing to ./logs/<name> with daily rotation
// and a 7-day retention, mirrored to stdout in development.
func New(name string) *logrus.Logger {
	log := logrus.New()
	logPath := "./logs/" + name
	_ = os.MkdirAll(logPath, 0o755)

	writer, err := rotatelogs.New(
		logPath+"/"+name+".log.%Y-%m-%d",
		rotatelogs.WithLinkName(logPath+"/"+name+".log"),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		log.SetOutput(os.Stdout)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, writer))
	}

	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetLevel(logrus.InfoLevel)
	return log
}
