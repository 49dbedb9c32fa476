package session

import (
	"fmt"
	"strings"
)

// buildAgentNotes summarizes the engagement for the report. Caller
// holds s.mu.
func (s *Session) buildAgentNotes() string {
	var parts []string

	if s.scamDetected {
		types := make([]string, len(s.scamTypes))
		for i, t := range s.scamTypes {
			types[i] = string(t)
		}
		if len(types) > 0 {
			parts = append(parts, fmt.Sprintf("Scam detected (%s) with peak confidence %.2f.",
				strings.Join(types, ", "), s.maxConfidence))
		} else {
			parts = append(parts, fmt.Sprintf("Scam detected with peak confidence %.2f.", s.maxConfidence))
		}
	} else {
		parts = append(parts, "No scam conclusively detected.")
	}

	if len(s.redFlags) > 0 {
		flags := make([]string, len(s.redFlags))
		for i, f := range s.redFlags {
			flags[i] = string(f)
		}
		parts = append(parts, "Observed tactics: "+strings.Join(flags, ", ")+".")
	}

	var collected []string
	if n := len(s.intel.PhoneNumbers); n > 0 {
		collected = append(collected, fmt.Sprintf("%d phone number(s)", n))
	}
	if n := len(s.intel.UPIIDs); n > 0 {
		collected = append(collected, fmt.Sprintf("%d UPI id(s)", n))
	}
	if n := len(s.intel.BankAccounts); n > 0 {
		collected = append(collected, fmt.Sprintf("%d bank account(s)", n))
	}
	if n := len(s.intel.IFSCCodes); n > 0 {
		collected = append(collected, fmt.Sprintf("%d IFSC code(s)", n))
	}
	if n := len(s.intel.PhishingLinks); n > 0 {
		collected = append(collected, fmt.Sprintf("%d link(s)", n))
	}
	if n := len(s.intel.EmailAddresses); n > 0 {
		collected = append(collected, fmt.Sprintf("%d email(s)", n))
	}
	if n := len(s.intel.ReferenceIDs) + len(s.intel.PolicyNumbers) + len(s.intel.OrderNumbers); n > 0 {
		collected = append(collected, fmt.Sprintf("%d reference code(s)", n))
	}
	if len(collected) > 0 {
		parts = append(parts, "Collected "+strings.Join(collected, ", ")+".")
	} else {
		parts = append(parts, "No identifiers collected.")
	}

	parts = append(parts, fmt.Sprintf("Engaged as %s for %d message(s).", s.persona.Name, s.turnCount))
	if s.terminationReason != "" {
		parts = append(parts, fmt.Sprintf("Session ended: %s.", s.terminationReason))
	}

	return strings.Join(parts, " ")
}
