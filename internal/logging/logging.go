package logging

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceName はすべてのログに付与するサービス名。
const ServiceName = "recaptcha-gateway"

// New は実行モードに応じたロガーを生成する。
// development 以外はすべて本番として扱う。
func New(env string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.TimeOnly,
		})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	logger.AddHook(serviceHook{})
	return logger
}

// serviceHook はすべてのエントリにサービス名を付与する。
type serviceHook struct{}

func (serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = ServiceName
	}
	return nil
}
