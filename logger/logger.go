package logger

import (
	"io"
	"log"
	"os"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"

	"github.com/Krish-Depani/mold-tracker/config"
)

// Setup configures the standard logrus logger and redirects the stdlib logger to it.
func Setup(env *config.Env) {
	formatter := &logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
	if os.Getenv("NO_COLOR") != "" {
		formatter.DisableColors = true
	}
	logrus.SetFormatter(formatter)

	if env.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetReportCaller(true)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetReportCaller(false)
	}

	if env.LogFile != "" {
		var w io.Writer = &lumberjack.Logger{
			Filename:   env.LogFile,
			MaxSize:    env.LogMaxSize, // megabytes
			MaxBackups: env.LogMaxBackups,
			MaxAge:     env.LogMaxAge, // days
			Compress:   env.LogCompress,
		}
		if env.IsDevelopment() {
			w = io.MultiWriter(os.Stdout, w)
		}
		logrus.SetOutput(w)
	}
	log.SetOutput(logrus.StandardLogger().Out)
	logrus.Debugf("logger initialised (env=%s)", env.AppEnv)
}
