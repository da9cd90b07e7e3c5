package logging

import (
	"time"

	"github.com/getsentry/sentry-go"
	sentrylogrus "github.com/getsentry/sentry-go/logrus"
	log "github.com/sirupsen/logrus"
)

const sentryFlushTimeout = 2 * time.Second

// sentryLevels are reported to sentry, everything else only reaches the log output.
var sentryLevels = []log.Level{
	log.PanicLevel,
	log.FatalLevel,
	log.ErrorLevel,
}

// newSentryHook reports error entries through client. An entry sentry
// drops (BeforeSend, sampling) is not an error for logrus.
func newSentryHook(client *sentry.Client) *sentrylogrus.Hook {
	hook := sentrylogrus.NewFromClient(sentryLevels, client)
	hook.SetFallback(func(entry *log.Entry) error {
		return nil
	})
	return hook
}
