package models

// Outcome is the result code delivered to the host game's callbacks.
type Outcome int

const (
	OutcomeLoginSuccess                Outcome = 0
	OutcomeExited                      Outcome = 1000
	OutcomeSwitchAccount               Outcome = 1001
	OutcomePeriodRestrict              Outcome = 1030
	OutcomeDurationLimit               Outcome = 1050
	OutcomeAgeLimit                    Outcome = 1100
	OutcomeInvalidClientOrNetworkError Outcome = 1200
	OutcomeRealNameStop                Outcome = 9002
)

var outcomeNames = map[Outcome]string{
	OutcomeLoginSuccess:                "login_success",
	OutcomeExited:                      "exited",
	OutcomeSwitchAccount:               "switch_account",
	OutcomePeriodRestrict:              "period_restrict",
	OutcomeDurationLimit:               "duration_limit",
	OutcomeAgeLimit:                    "age_limit",
	OutcomeInvalidClientOrNetworkError: "invalid_client_or_network_error",
	OutcomeRealNameStop:                "real_name_stop",
}

// String returns the snake_case name used in logs and metric labels.
func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Known reports whether o is one of the published outcome codes.
func (o Outcome) Known() bool {
	_, ok := outcomeNames[o]
	return ok
}

// EndsCheck reports whether delivering o ends the player check started by
// Startup, releasing the re-entrancy guard.
func (o Outcome) EndsCheck() bool {
	switch o {
	case OutcomeLoginSuccess, OutcomeRealNameStop, OutcomeExited,
		OutcomeAgeLimit, OutcomeSwitchAccount, OutcomeInvalidClientOrNetworkError:
		return true
	}
	return false
}

// AllowsPlay reports the CanPlay value implied by o. The second return is
// false when o leaves CanPlay unchanged.
func (o Outcome) AllowsPlay() (allowed bool, changes bool) {
	switch o {
	case OutcomeLoginSuccess:
		return true, true
	case OutcomeAgeLimit, OutcomePeriodRestrict, OutcomeDurationLimit,
		OutcomeExited, OutcomeInvalidClientOrNetworkError, OutcomeSwitchAccount:
		return false, true
	}
	return false, false
}
