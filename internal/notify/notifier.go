// Package notify sends fire-and-forget HTTP notifications for
// conversation events. The primary use case is ntfy.sh, but any HTTP
// webhook works.
package notify

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/loop"
)

// Notifier posts plain-text HTTP notifications for selected events.
type Notifier struct {
	url             string
	title           string
	onTopicComplete bool
	onError         bool
	client          *http.Client
}

// New creates a Notifier. projectName is used as the X-Title header; if
// empty, "Duologue" is used instead.
func New(notifURL, projectName string, onTopicComplete, onError bool) *Notifier {
	title := "Duologue"
	if projectName != "" {
		title = projectName
	}
	return &Notifier{
		url:             notifURL,
		title:           title,
		onTopicComplete: onTopicComplete,
		onError:         onError,
		client:          &http.Client{Timeout: 10 * time.Second},
	}
}

// Hook fires asynchronous POSTs for events matching the configured flags.
// Wire it into the event fan-out between the loop and its consumer.
func (n *Notifier) Hook(ev loop.Event) {
	switch ev.Kind {
	case loop.EventTopicComplete:
		if n.onTopicComplete {
			go n.post(fmt.Sprintf("topic complete: %s (%d messages)", ev.Topic, ev.MessageCount))
		}
	case loop.EventError:
		if n.onError {
			go n.post(ev.Message)
		}
	}
}

// post sends a plain-text POST to the configured URL. Errors are silently
// discarded so notification failures never interrupt the loop.
func (n *Notifier) post(message string) {
	req, err := http.NewRequest(http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Title", n.title)
	resp, err := n.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
