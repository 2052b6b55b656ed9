package pkg

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelErrOnly
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

func ParseLogLevel(s string) LogLevel {
	switch s {
	case "none", "off":
		return LogLevelNone
	case "warn", "warning":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelErrOnly
	}
}

type LogFileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	Compress   bool
}

var Log = logrus.New()

var log_level = LogLevelErrOnly

var log_output io.Writer = os.Stderr

func SetLogLevel(level LogLevel) {
	log_level = level

	switch level {
	case LogLevelNone:
		Log.SetOutput(io.Discard)
		Log.SetLevel(logrus.PanicLevel)
		return
	case LogLevelErrOnly:
		Log.SetLevel(logrus.ErrorLevel)
	case LogLevelWarn:
		Log.SetLevel(logrus.WarnLevel)
	case LogLevelInfo:
		Log.SetLevel(logrus.InfoLevel)
	case LogLevelDebug:
		Log.SetLevel(logrus.DebugLevel)
	}
	Log.SetOutput(log_output)
	Log.Debugln("log level set to", level)
}

// SetLogFile mirrors log output to a rotating file. An empty path logs to
// stderr only. The output survives later SetLogLevel calls.
func SetLogFile(opts LogFileOptions) {
	if opts.Path == "" {
		log_output = os.Stderr
	} else {
		if opts.MaxSizeMB <= 0 {
			opts.MaxSizeMB = 10
		}
		log_output = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     28,
			Compress:   opts.Compress,
		})
	}
	if log_level != LogLevelNone {
		Log.SetOutput(log_output)
	}
}

func init() {
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	Log.SetOutput(os.Stderr)
	Log.SetLevel(logrus.ErrorLevel)
}

func InfoLog(args ...any)  { Log.Infoln(args...) }
func ErrorLog(args ...any) { Log.Errorln(args...) }
func FatalLog(args ...any) { Log.Fatalln(args...) }
func WarnLog(args ...any)  { Log.Warnln(args...) }
func DebugLog(args ...any) { Log.Debugln(args...) }
