package models

// UnrestrictedRemainTime is the remaining-time sentinel for adults.
const UnrestrictedRemainTime = 9999

// PlayableResult is the answer of a playability check.
type PlayableResult struct {
	// RemainTime is in seconds; zero or negative means play is blocked.
	RemainTime int    `json:"remain_time"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

// Playable reports whether any play time remains.
func (p PlayableResult) Playable() bool {
	return p.RemainTime > 0
}

// PayableResult is the answer of a payment-limit check.
type PayableResult struct {
	Status  bool   `json:"status"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HasCopy reports whether the server supplied text worth showing.
func (p PayableResult) HasCopy() bool {
	return p.Title != "" && p.Content != ""
}

// CheckPayResult is the facade shape of a payment-limit check.
type CheckPayResult struct {
	// Status is 1 when the payment may proceed, 0 otherwise.
	Status      int
	Title       string
	Description string
}

// NewCheckPayResult converts a server answer into the facade shape.
func NewCheckPayResult(p PayableResult) CheckPayResult {
	status := 0
	if p.Status {
		status = 1
	}
	return CheckPayResult{Status: status, Title: p.Title, Description: p.Content}
}
