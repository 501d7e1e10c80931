// Package presenter defines the prompts the compliance worker raises for
// the host's UI. The worker never renders anything; it hands a prompt value
// to a Presenter and reacts to whichever reply callback the UI invokes.
package presenter

import (
	"context"
	"errors"

	"playgate/internal/models"
)

// ErrCancelled is reported when the player dismisses a prompt without
// completing it.
var ErrCancelled = errors.New("cancelled by player")

// Presenter renders prompts. Implementations may call reply callbacks
// synchronously from within a Show method or later from another goroutine.
// Each callback is effective at most once.
type Presenter interface {
	ShowIdentityForm(ctx context.Context, p IdentityPrompt)
	ShowVerifyingTip(ctx context.Context, p TipPrompt)
	ShowHealthReminder(ctx context.Context, p ReminderPrompt)
	ShowPaymentBlocked(ctx context.Context, p PaymentPrompt)
}

// IdentityPrompt asks for a real name and ID number. Submit returns an
// error when verification did not succeed, so the form can stay open.
type IdentityPrompt struct {
	Submit func(name, idCard string) error
	Cancel func()
}

// TipPrompt is a blocking one-button notice.
type TipPrompt struct {
	Title   string
	Content string
	Button  string
	Dismiss func()
}

// ReminderPrompt is the anti-addiction health reminder. Exactly one of
// Continue and Exit is set: Continue while play time remains, Exit once it
// is used up. SwitchAccount is set only for restrictions when the host
// enabled it.
type ReminderPrompt struct {
	Playable      models.PlayableResult
	Continue      func()
	Exit          func()
	SwitchAccount func()
}

// Restricted reports whether the reminder announces that play must stop.
func (p ReminderPrompt) Restricted() bool {
	return p.Continue == nil
}

// PaymentPrompt explains why a payment was blocked.
type PaymentPrompt struct {
	Title   string
	Content string
}

// Nop ignores every prompt. Identity forms are cancelled immediately and
// tips dismissed, so flows that need an answer end with a stop outcome.
type Nop struct{}

func (Nop) ShowIdentityForm(_ context.Context, p IdentityPrompt) {
	if p.Cancel != nil {
		p.Cancel()
	}
}

func (Nop) ShowVerifyingTip(_ context.Context, p TipPrompt) {
	if p.Dismiss != nil {
		p.Dismiss()
	}
}

func (Nop) ShowHealthReminder(_ context.Context, p ReminderPrompt) {
	if p.Continue != nil {
		p.Continue()
	}
}

func (Nop) ShowPaymentBlocked(context.Context, PaymentPrompt) {}
