package notify

import (
	"fmt"
	"strings"

	"ticketwatch/internal/remote"
	"ticketwatch/internal/transport"
)

// maxBatchLines bounds how many tickets a summary notification lists.
const maxBatchLines = 5

// buildNotification shapes one poll cycle's new tickets into a single alert.
//
// One ticket gets a direct notification linking to the ticket itself.
// Several get a count summary listing the first maxBatchLines as
// "#id — subject" lines, linking to the recent-tickets view.
func buildNotification(items []remote.Ticket, ticketURLBase, recentURL string) transport.Notification {
	if len(items) == 1 {
		t := items[0]
		return transport.Notification{
			Title: fmt.Sprintf("New ticket #%d", t.ID),
			Body:  t.Subject,
			Tag:   fmt.Sprintf("ticket-%d", t.ID),
			URL:   ticketURL(ticketURLBase, t.ID),
		}
	}

	var b strings.Builder
	for i, t := range items {
		if i == maxBatchLines {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "#%d — %s", t.ID, t.Subject)
	}
	if extra := len(items) - maxBatchLines; extra > 0 {
		fmt.Fprintf(&b, "\n…and %d more", extra)
	}

	return transport.Notification{
		Title: fmt.Sprintf("%d new tickets", len(items)),
		Body:  b.String(),
		Tag:   "ticket-batch",
		URL:   recentURL,
	}
}

func ticketURL(base string, id int64) string {
	if base == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%s%d", base, id)
}
