package models

// AgeLimit is the age tier reported by the compliance service.
type AgeLimit int

const (
	AgeUnknown AgeLimit = -1
	AgeChild   AgeLimit = 0
	AgeTeen    AgeLimit = 8
	AgeYoung   AgeLimit = 16
	AgeAdult   AgeLimit = 18
	// AgeUnknownMinor marks a verified minor who did not share an age range.
	AgeUnknownMinor AgeLimit = 100
	// AgeUnknownAdult marks a verified adult who did not share an age range.
	AgeUnknownAdult AgeLimit = 110
)

// Normalize maps a negative server age limit onto the unknown-range sentinels.
func NormalizeAgeLimit(limit AgeLimit, isAdult bool) AgeLimit {
	if limit >= 0 {
		return limit
	}
	if isAdult {
		return AgeUnknownAdult
	}
	return AgeUnknownMinor
}

// VerificationStatus is the tri-state of an identity verification.
type VerificationStatus string

const (
	StatusVerified  VerificationStatus = "pass"
	StatusVerifying VerificationStatus = "waiting"
	StatusFailed    VerificationStatus = "failed"
)

// ParseVerificationStatus maps a server status onto the tri-state. Anything
// unrecognised counts as failed so the player is asked to verify again.
func ParseVerificationStatus(s string) VerificationStatus {
	switch VerificationStatus(s) {
	case StatusVerified:
		return StatusVerified
	case StatusVerifying:
		return StatusVerifying
	default:
		return StatusFailed
	}
}

// VerificationResult is the server payload of every verification endpoint.
type VerificationResult struct {
	ComplianceToken string   `json:"anti_addiction_token"`
	Status          string   `json:"status"`
	AgeLimit        AgeLimit `json:"age_limit"`
	IsAdult         bool     `json:"is_adult"`
}

// VerificationRecord is the resident (and persisted) verification state of
// the logged-in player.
type VerificationRecord struct {
	UserID          string             `json:"user_id"`
	ComplianceToken string             `json:"anti_addiction_token"`
	Status          VerificationStatus `json:"status"`
	AgeLimit        AgeLimit           `json:"age_limit"`
	IsAdult         bool               `json:"is_adult"`
}

// NewVerificationRecord derives a record for userID from a server result.
func NewVerificationRecord(userID string, result VerificationResult) *VerificationRecord {
	return &VerificationRecord{
		UserID:          userID,
		ComplianceToken: result.ComplianceToken,
		Status:          ParseVerificationStatus(result.Status),
		AgeLimit:        result.AgeLimit,
		IsAdult:         result.IsAdult,
	}
}

func (r *VerificationRecord) IsVerified() bool     { return r.Status == StatusVerified }
func (r *VerificationRecord) IsVerifying() bool    { return r.Status == StatusVerifying }
func (r *VerificationRecord) IsVerifyFailed() bool { return r.Status == StatusFailed }

// HasToken reports whether the record carries a usable compliance token.
func (r *VerificationRecord) HasToken() bool {
	return r != nil && r.ComplianceToken != ""
}

// CheckIsAdult reports adulthood from either the flag or the age tier.
func (r *VerificationRecord) CheckIsAdult() bool {
	return r.IsAdult || r.AgeLimit == AgeAdult || r.AgeLimit == AgeUnknownAdult
}
