package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amora_messages_sent_total",
		Help: "Messages accepted by the conversation service.",
	})

	MessagesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amora_messages_expired_total",
		Help: "Messages hard-deleted by the expiration sweep.",
	})

	PrincipalsMarkedStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amora_principals_marked_stale_total",
		Help: "Principals flipped offline by the staleness sweep.",
	})

	ConversationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amora_conversations_purged_total",
		Help: "Conversations deleted by the quick-access disconnect cascade.",
	})

	NotificationsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "amora_notifications_emitted_total",
		Help: "Notifications written for later polling.",
	})
)
