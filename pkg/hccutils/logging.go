package hccutils

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets up the text formatter with full timestamps used by
// every binary. An unknown level keeps info.
func ConfigureLogging(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
