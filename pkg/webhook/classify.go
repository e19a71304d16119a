package webhook

// Action is the subscription-state transition derived from an event name.
type Action int

const (
	// ActionIgnore means the event does not affect subscription state.
	ActionIgnore Action = iota

	// ActionActivate marks the subscription active.
	ActionActivate

	// ActionDeactivate marks the subscription inactive.
	ActionDeactivate
)

func (a Action) String() string {
	switch a {
	case ActionActivate:
		return "activate"
	case ActionDeactivate:
		return "deactivate"
	default:
		return "ignore"
	}
}

// activateEvents are the normalized event names that mark a subscription
// active: approvals and renewals, including the Portuguese names Kiwify sends.
var activateEvents = map[string]struct{}{
	"compra_aprovada":      {},
	"order_approved":       {},
	"purchase_approved":    {},
	"subscription_renewed": {},
	"assinatura_renovada":  {},
}

// deactivateEvents are the normalized event names that mark a subscription
// inactive: cancellations, chargebacks, refunds and payment lateness.
//
// The two sets must stay disjoint; classification must never depend on
// evaluation order. A unit test enforces this.
var deactivateEvents = map[string]struct{}{
	"subscription_canceled": {},
	"subscription_late":     {},
	"order_refunded":        {},
	"compra_reembolsada":    {},
	"chargeback":            {},
	"order_chargedback":     {},
}

// Classify maps a normalized event name to its subscription-state transition.
// Every name outside the two explicit sets, including the empty string,
// classifies as ActionIgnore.
func Classify(event string) Action {
	if _, ok := activateEvents[event]; ok {
		return ActionActivate
	}
	if _, ok := deactivateEvents[event]; ok {
		return ActionDeactivate
	}
	return ActionIgnore
}
