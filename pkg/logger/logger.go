package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init configures the process logger. Production gets JSON output for log
// shippers, everything else stays human-readable.
func Init(environment string) {
	log.SetOutput(os.Stdout)

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	}
}

// fields pairs up variadic args into logrus fields. A lone trailing value
// (or a bare error) lands under "error" so call sites can do
// logger.Error("msg", err) as well as logger.Info("msg", "key", val).
func fields(args []any) logrus.Fields {
	f := logrus.Fields{}
	i := 0
	for i < len(args) {
		if i == len(args)-1 {
			if err, ok := args[i].(error); ok {
				f["error"] = err.Error()
			} else {
				f["error"] = args[i]
			}
			break
		}
		key, ok := args[i].(string)
		if !ok {
			i++
			continue
		}
		f[key] = args[i+1]
		i += 2
	}
	return f
}

func Debug(msg string, args ...any) {
	log.WithFields(fields(args)).Debug(msg)
}

func Info(msg string, args ...any) {
	log.WithFields(fields(args)).Info(msg)
}

func Warn(msg string, args ...any) {
	log.WithFields(fields(args)).Warn(msg)
}

func Error(msg string, args ...any) {
	log.WithFields(fields(args)).Error(msg)
}

func Fatal(msg string, args ...any) {
	log.WithFields(fields(args)).Fatal(msg)
}
