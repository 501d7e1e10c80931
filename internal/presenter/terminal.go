package presenter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// Terminal renders prompts as lines on a text terminal. Prompts are served
// one at a time from background goroutines.
type Terminal struct {
	out io.Writer

	mu          sync.Mutex
	in          *bufio.Scanner
	restriction atomic.Bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

func (t *Terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

// readLine returns the next trimmed input line and false on EOF.
func (t *Terminal) readLine() (string, bool) {
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *Terminal) ShowIdentityForm(_ context.Context, p IdentityPrompt) {
	go func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for {
			t.printf("Real-name verification required. Leave the name empty to cancel.\nName: ")
			name, ok := t.readLine()
			if !ok || name == "" {
				p.Cancel()
				return
			}
			t.printf("ID number: ")
			idCard, ok := t.readLine()
			if !ok {
				p.Cancel()
				return
			}
			if err := p.Submit(name, idCard); err != nil {
				t.printf("Verification failed: %v\n", err)
				continue
			}
			return
		}
	}()
}

func (t *Terminal) ShowVerifyingTip(_ context.Context, p TipPrompt) {
	go func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.printf("%s\n%s\n[%s] ", p.Title, p.Content, p.Button)
		t.readLine()
		p.Dismiss()
	}()
}

// ShowHealthReminder queues reminders that carry play time; the caller waits
// on their Continue. A restriction raised while another is open is dropped.
func (t *Terminal) ShowHealthReminder(_ context.Context, p ReminderPrompt) {
	if !p.Restricted() {
		go t.remind(p)
		return
	}
	if !t.restriction.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer t.restriction.Store(false)
		t.restrict(p)
	}()
}

func (t *Terminal) remind(p ReminderPrompt) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n%s\n", p.Playable.Title, p.Playable.Content)
	t.printf("Remaining: %ds. Press enter to continue. ", p.Playable.RemainTime)
	t.readLine()
	p.Continue()
}

func (t *Terminal) restrict(p ReminderPrompt) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n%s\n", p.Playable.Title, p.Playable.Content)
	if p.SwitchAccount != nil {
		t.printf("[q]uit or [s]witch account: ")
	} else {
		t.printf("Press enter to quit. ")
	}
	answer, _ := t.readLine()
	if p.SwitchAccount != nil && strings.EqualFold(answer, "s") {
		p.SwitchAccount()
		return
	}
	if p.Exit != nil {
		p.Exit()
	}
}

func (t *Terminal) ShowPaymentBlocked(_ context.Context, p PaymentPrompt) {
	t.printf("%s\n%s\n", p.Title, p.Content)
}
