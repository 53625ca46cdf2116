// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

const Service = "site-content-api"

// serviceHook stamps every entry with the service name.
type serviceHook struct{ name string }

func (h serviceHook) Levels() []log.Level { return log.AllLevels }

func (h serviceHook) Fire(e *log.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = h.name
	}
	return nil
}

// Setup configures the standard logger and returns it. Unknown levels fall
// back to info.
func Setup(level string) *log.Logger {
	return configure(log.StandardLogger(), os.Stdout, level)
}

func configure(l *log.Logger, out io.Writer, level string) *log.Logger {
	l.SetOutput(out)
	l.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	l.AddHook(serviceHook{name: Service})
	return l
}
