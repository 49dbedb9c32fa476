package extraction

import (
	"regexp"
	"strings"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

// Extractor pulls structured identifiers out of scammer messages,
// including obfuscated forms. Safe for concurrent use.
type Extractor struct {
	logger *logger.Logger
}

// New creates an intelligence extractor
func New(log *logger.Logger) *Extractor {
	return &Extractor{logger: log.WithComponent("extraction")}
}

var (
	// Indian mobile numbers: optional +91/91/0 prefix, 10 digits starting
	// 6-9, separators tolerated. RE2 has no lookaround, so adjacency to
	// other digits is rejected after matching.
	phoneIndianRe = regexp.MustCompile(`(?:(?:\+91|91|0)[\s\-.]?)?([6-9](?:[0-9][\s\-.]?){8}[0-9])`)
	phoneParenRe  = regexp.MustCompile(`\(([6-9][0-9]{4})\)\s*([0-9]{5})`)
	phoneIntlRe   = regexp.MustCompile(`\+([0-9]{1,3})[\s\-]?([0-9]{7,14})`)

	phoneSepRe = regexp.MustCompile(`[\s\-.]`)

	// UPI: local part @ provider. Obfuscated form accepts only explicit
	// markers, "(at)" or uppercase AT, never the plain English word.
	upiStandardRe   = regexp.MustCompile(`(?i)\b([a-zA-Z0-9.\-_]{2,256}@[a-zA-Z]{2,64})\b`)
	upiObfuscatedRe = regexp.MustCompile(`\b([a-zA-Z0-9.\-_]{2,256})\s*(?:\(at\)|AT)\s*([a-zA-Z]{2,64})\b`)

	bankAccountRe = regexp.MustCompile(`\b([0-9]{9,18})\b`)
	ifscRe        = regexp.MustCompile(`(?i)\b([A-Z]{4}0[A-Z0-9]{6})\b`)
)

// Known UPI provider handles
var upiHandles = []string{
	"paytm", "phonepe", "gpay", "okaxis", "okicici", "okhdfcbank",
	"ybl", "ibl", "axl", "sbi", "hdfc", "icici", "axis", "upi",
	"apl", "waaxis", "wahdfcbank", "waicici",
}

// Bank-like provider fragments accepted as UPI handles
var upiBankParts = []string{
	"bank", "axis", "hdfc", "icici", "sbi", "pnb", "bob", "canara",
	"kotak", "pay", "wallet", "cash", "money", "fin", "upi",
}

// Context words gating bank account extraction
var bankContextWords = []string{
	"account", "a/c", "acc", "bank", "savings", "current",
	"deposit", "transfer", "ifsc", "branch", "neft", "rtgs", "imps",
}

// Narrower context checked in the 60 chars before an ambiguous number
var bankNearbyWords = []string{
	"account", "a/c", "acc", "bank", "ifsc", "transfer", "neft", "rtgs",
}

// Extract pulls every supported identifier category from one message
func (e *Extractor) Extract(text string) models.ExtractedIntelligence {
	var intel models.ExtractedIntelligence
	if strings.TrimSpace(text) == "" {
		return intel
	}

	intel.PhoneNumbers = e.extractPhones(text)
	intel.UPIIDs = e.extractUPI(text)
	intel.BankAccounts = e.extractBankAccounts(text)
	intel.IFSCCodes = e.extractIFSC(text)
	intel.PhishingLinks = e.extractLinks(text)
	intel.EmailAddresses = e.extractEmails(text)
	intel.ReferenceIDs = e.extractReferenceIDs(text)
	intel.PolicyNumbers = e.extractPolicyNumbers(text)
	intel.OrderNumbers = e.extractOrderNumbers(text)
	intel.SuspiciousKeywords = extractSuspiciousKeywords(text)

	if !intel.IsEmpty() {
		e.logger.Debug().
			Int("phones", len(intel.PhoneNumbers)).
			Int("upi", len(intel.UPIIDs)).
			Int("accounts", len(intel.BankAccounts)).
			Int("links", len(intel.PhishingLinks)).
			Msg("identifiers extracted")
	}
	return intel
}

// ExtractFromHistory merges identifiers from every non-victim message
func (e *Extractor) ExtractFromHistory(history []models.HistoryEntry) models.ExtractedIntelligence {
	var combined models.ExtractedIntelligence
	for _, m := range history {
		if strings.EqualFold(m.Sender, "user") || m.Text == "" {
			continue
		}
		part := e.Extract(m.Text)
		combined.Merge(&part)
	}
	return combined
}

func (e *Extractor) extractPhones(text string) []string {
	var phones []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			phones = append(phones, p)
		}
	}

	for _, idx := range phoneIndianRe.FindAllStringSubmatchIndex(text, -1) {
		// Reject matches glued to surrounding digits: those are slices
		// of a longer number such as a bank account.
		if digitAdjacent(text, idx[0], idx[1]) {
			continue
		}
		// Reject tails of foreign numbers such as "+44 7911...".
		if precededByCountryCode(text, idx[0]) {
			continue
		}
		digits := phoneSepRe.ReplaceAllString(text[idx[2]:idx[3]], "")
		if validIndianPhone(digits) {
			add("+91" + digits)
		}
	}

	for _, m := range phoneParenRe.FindAllStringSubmatch(text, -1) {
		digits := m[1] + m[2]
		if validIndianPhone(digits) {
			add("+91" + digits)
		}
	}

	for _, idx := range phoneIntlRe.FindAllStringSubmatchIndex(text, -1) {
		cc := text[idx[2]:idx[3]]
		if cc == "91" {
			continue // already handled by the Indian form
		}
		if digitAdjacent(text, idx[0], idx[1]) {
			continue
		}
		add("+" + cc + text[idx[4]:idx[5]])
	}

	return phones
}

// digitAdjacent reports whether the match at [start,end) touches a digit
func digitAdjacent(text string, start, end int) bool {
	if start > 0 && isDigit(text[start-1]) {
		return true
	}
	if end < len(text) && isDigit(text[end]) {
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// precededByCountryCode reports whether the digits just before the
// match belong to a "+<cc>" prefix, making the match the national part
// of a non-Indian international number.
func precededByCountryCode(text string, start int) bool {
	i := start - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '-' || text[i] == '.') {
		i--
	}
	for i >= 0 && isDigit(text[i]) {
		i--
	}
	return i >= 0 && text[i] == '+'
}

func validIndianPhone(digits string) bool {
	if len(digits) != 10 {
		return false
	}
	if digits[0] < '6' || digits[0] > '9' {
		return false
	}
	// All-same-digit runs are placeholders, not numbers
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return true
		}
	}
	return false
}

func (e *Extractor) extractUPI(text string) []string {
	var ids []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, idx := range upiStandardRe.FindAllStringSubmatchIndex(text, -1) {
		if looksLikeEmailDomain(text, idx[1]) {
			continue
		}
		id := strings.ToLower(text[idx[2]:idx[3]])
		if validUPI(id) {
			add(id)
		}
	}

	for _, idx := range upiObfuscatedRe.FindAllStringSubmatchIndex(text, -1) {
		if looksLikeEmailDomain(text, idx[1]) {
			continue
		}
		id := strings.ToLower(text[idx[2]:idx[3]]) + "@" + strings.ToLower(text[idx[4]:idx[5]])
		if validUPI(id) {
			add(id)
		}
	}

	return ids
}

// looksLikeEmailDomain reports whether the text right after the match
// continues as a dotted or dashed domain, meaning the match was the
// local half of an email address.
func looksLikeEmailDomain(text string, end int) bool {
	if end+1 >= len(text) {
		return false
	}
	if text[end] != '.' && text[end] != '-' {
		return false
	}
	c := text[end+1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func validUPI(id string) bool {
	at := strings.LastIndex(id, "@")
	if at < 0 {
		return false
	}
	local, handle := id[:at], id[at+1:]
	if len(local) < 2 {
		return false
	}
	// Dotted providers are email domains
	if strings.Contains(handle, ".") {
		return false
	}
	for _, h := range upiHandles {
		if strings.Contains(handle, h) {
			return true
		}
	}
	for _, part := range upiBankParts {
		if strings.Contains(handle, part) {
			return true
		}
	}
	return len(handle) <= 20
}

func (e *Extractor) extractBankAccounts(text string) []string {
	lower := strings.ToLower(text)
	hasContext := false
	for _, w := range bankContextWords {
		if strings.Contains(lower, w) {
			hasContext = true
			break
		}
	}
	if !hasContext {
		return nil
	}

	var accounts []string
	seen := make(map[string]struct{})
	for _, idx := range bankAccountRe.FindAllStringSubmatchIndex(text, -1) {
		num := text[idx[2]:idx[3]]
		if !likelyBankAccount(num, text, idx[2]) {
			continue
		}
		if _, ok := seen[num]; !ok {
			seen[num] = struct{}{}
			accounts = append(accounts, num)
		}
	}
	return accounts
}

func likelyBankAccount(num, text string, pos int) bool {
	// A 10-digit run starting 6-9 is a phone number
	if len(num) == 10 && num[0] >= '6' && num[0] <= '9' {
		return false
	}
	// Typical Indian account lengths need no further context
	if len(num) >= 11 && len(num) <= 16 {
		return true
	}
	start := pos - 60
	if start < 0 {
		start = 0
	}
	window := strings.ToLower(text[start:pos])
	for _, w := range bankNearbyWords {
		if strings.Contains(window, w) {
			return true
		}
	}
	return false
}

func (e *Extractor) extractIFSC(text string) []string {
	var codes []string
	seen := make(map[string]struct{})
	for _, m := range ifscRe.FindAllStringSubmatch(text, -1) {
		code := strings.ToUpper(m[1])
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}
	return codes
}
