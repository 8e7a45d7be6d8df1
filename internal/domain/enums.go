package domain

// SubscriberStatus mirrors the Mailchimp member status
type SubscriberStatus string

const (
	SubscriberStatusSubscribed   SubscriberStatus = "subscribed"
	SubscriberStatusPending      SubscriberStatus = "pending"
	SubscriberStatusUnsubscribed SubscriberStatus = "unsubscribed"
	SubscriberStatusCleaned      SubscriberStatus = "cleaned"
)

// IsValid checks if the subscriber status is one Mailchimp reports
func (s SubscriberStatus) IsValid() bool {
	switch s {
	case SubscriberStatusSubscribed,
		SubscriberStatusPending,
		SubscriberStatusUnsubscribed,
		SubscriberStatusCleaned:
		return true
	default:
		return false
	}
}

// ResolutionOutcome tells how a request path was turned into a handle
type ResolutionOutcome string

const (
	// ResolutionExact - path found in the menu mapping
	ResolutionExact ResolutionOutcome = "exact"
	// ResolutionFallback - last path segment used as a best-effort handle
	ResolutionFallback ResolutionOutcome = "fallback"
	// ResolutionEmpty - path had no segment to fall back on
	ResolutionEmpty ResolutionOutcome = "empty"
)
