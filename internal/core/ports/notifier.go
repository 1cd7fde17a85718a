package ports

import "dopamine-deck/internal/core/domain/entities"

// Notifier receives best-effort notifications from a deck.
type Notifier interface {
	Notify(n entities.Notification)
}

type NotifierFunc func(n entities.Notification)

func (f NotifierFunc) Notify(n entities.Notification) {
	f(n)
}

// Notifiers fans a notification out to every member.
type Notifiers []Notifier

func (ns Notifiers) Notify(n entities.Notification) {
	for _, notifier := range ns {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}
