package models

import "strings"

// ExtractedIntelligence holds identifiers harvested from scammer messages.
// Field names follow the reporting callback contract.
type ExtractedIntelligence struct {
	PhoneNumbers       []string `json:"phoneNumbers"`
	UPIIDs             []string `json:"upiIds"`
	BankAccounts       []string `json:"bankAccounts"`
	IFSCCodes          []string `json:"ifscCodes"`
	PhishingLinks      []string `json:"phishingLinks"`
	EmailAddresses     []string `json:"emailAddresses"`
	ReferenceIDs       []string `json:"referenceIds"`
	PolicyNumbers      []string `json:"policyNumbers"`
	OrderNumbers       []string `json:"orderNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

// Merge folds other into i, deduplicating while preserving first-seen order.
func (i *ExtractedIntelligence) Merge(other *ExtractedIntelligence) {
	if other == nil {
		return
	}
	i.PhoneNumbers = appendUnique(i.PhoneNumbers, other.PhoneNumbers)
	i.UPIIDs = appendUnique(i.UPIIDs, other.UPIIDs)
	i.BankAccounts = appendUnique(i.BankAccounts, other.BankAccounts)
	i.IFSCCodes = appendUnique(i.IFSCCodes, other.IFSCCodes)
	i.PhishingLinks = appendUnique(i.PhishingLinks, other.PhishingLinks)
	i.EmailAddresses = appendUnique(i.EmailAddresses, other.EmailAddresses)
	i.ReferenceIDs = appendUnique(i.ReferenceIDs, other.ReferenceIDs)
	i.PolicyNumbers = appendUnique(i.PolicyNumbers, other.PolicyNumbers)
	i.OrderNumbers = appendUnique(i.OrderNumbers, other.OrderNumbers)
	i.SuspiciousKeywords = appendUnique(i.SuspiciousKeywords, other.SuspiciousKeywords)
}

// CategoryCount returns the number of actionable identifier categories
// that hold at least one value. Suspicious keywords are commentary, not
// an identifier, so they do not count.
func (i *ExtractedIntelligence) CategoryCount() int {
	count := 0
	for _, c := range [][]string{
		i.PhoneNumbers, i.UPIIDs, i.BankAccounts, i.IFSCCodes,
		i.PhishingLinks, i.EmailAddresses, i.ReferenceIDs,
		i.PolicyNumbers, i.OrderNumbers,
	} {
		if len(c) > 0 {
			count++
		}
	}
	return count
}

// IsEmpty reports whether no identifiers have been collected
func (i *ExtractedIntelligence) IsEmpty() bool {
	return i.CategoryCount() == 0
}

// HasPhones reports whether any phone number was collected
func (i *ExtractedIntelligence) HasPhones() bool { return len(i.PhoneNumbers) > 0 }

// HasUPI reports whether any UPI handle was collected
func (i *ExtractedIntelligence) HasUPI() bool { return len(i.UPIIDs) > 0 }

// HasBankDetails reports whether an account number or IFSC was collected
func (i *ExtractedIntelligence) HasBankDetails() bool {
	return len(i.BankAccounts) > 0 || len(i.IFSCCodes) > 0
}

// HasLinks reports whether any URL was collected
func (i *ExtractedIntelligence) HasLinks() bool { return len(i.PhishingLinks) > 0 }

// HasReferences reports whether any case, policy or order code was collected
func (i *ExtractedIntelligence) HasReferences() bool {
	return len(i.ReferenceIDs) > 0 || len(i.PolicyNumbers) > 0 || len(i.OrderNumbers) > 0
}

// appendUnique appends values not already present, keeping first-seen
// order. Duplicates are detected case-insensitively; the first-seen
// casing is the one stored.
func appendUnique(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		seen[strings.ToLower(v)] = struct{}{}
	}
	for _, v := range src {
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
