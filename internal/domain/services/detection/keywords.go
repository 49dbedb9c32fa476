package detection

import (
	"sort"
	"strings"
)

// Keyword tiers for the first scoring layer. High-risk terms carry
// weights 6-10, medium-risk 3-5. A total of 30 points normalizes to 1.0.

var highRiskKeywords = map[string]int{
	// Bank fraud
	"blocked": 10, "suspended": 10, "frozen": 10, "verify": 8,
	"kyc": 9, "account closed": 10, "deactivated": 10, "unauthorized": 9,
	"security alert": 9, "fraud alert": 9, "account will be": 10,
	"account has been": 10, "unusual activity": 9, "suspicious activity": 9,
	"avoid suspension": 9, "to avoid": 6,
	// UPI fraud
	"upi": 7, "paytm": 6, "phonepe": 6, "gpay": 6, "google pay": 6,
	"send money": 9, "transfer money": 9, "payment request": 8,
	"receive money": 7, "bhim": 6,
	// OTP theft
	"otp": 10, "verification code": 10, "one time password": 10,
	"pin": 8, "cvv": 10, "password": 8, "share otp": 10, "send otp": 10,
	"share pin": 10, "atm pin": 10, "mpin": 9,
	// Urgency
	"urgent": 8, "immediately": 9, "right now": 9, "within 24 hours": 8,
	"expire": 8, "last chance": 9, "final notice": 9, "final warning": 9,
	"act fast": 8, "hurry": 7, "time is running out": 8,
	// Authority impersonation
	"rbi": 9, "reserve bank": 9, "income tax": 9, "government": 8,
	"police": 9, "legal action": 9, "court": 8, "officer": 7,
	"cyber cell": 9, "crime branch": 9, "customs": 8,
	// Threats
	"arrested": 10, "jail": 10, "fir": 10, "penalty": 8,
	"fine": 7, "blacklisted": 8, "warrant": 10,
	"legal proceedings": 9, "criminal case": 10,
	// Prizes and lottery
	"won": 7, "lottery": 9, "prize": 8, "reward": 7,
	"cashback": 6, "refund": 7, "lucky": 7,
	"congratulations": 7, "winner": 8, "claim": 8,
	// Investment
	"investment": 7, "guaranteed returns": 9, "double money": 10,
	"high returns": 8, "profit": 6, "scheme": 7,
	"easy money": 9, "quick money": 9,
	// Job scams
	"work from home": 7, "part time job": 7, "earn from home": 8,
	"registration fee": 9, "advance payment": 9,
	// Action words
	"click here": 8, "click link": 8, "click below": 8,
	"visit link": 8, "open link": 8, "update details": 8,
	"verify identity": 9, "confirm identity": 9, "submit": 6,
	// Utility bills
	"electricity": 6, "disconnected": 8, "power cut": 8, "overdue bill": 8,
	"outstanding bill": 7, "meter reading": 5,
	// Customs and parcels
	"parcel": 6, "customs duty": 8, "seized": 8, "detained": 8,
	"shipment": 5, "courier": 5, "clearance fee": 8,
	// Insurance
	"insurance": 5, "policy": 5, "premium": 5, "matured": 7,
	"lapsed": 7, "claim amount": 7,
	// Loans
	"pre-approved": 8, "loan": 5, "sanctioned": 7, "emi": 5,
	"processing fee": 9, "stamp duty": 7,
	// Crypto
	"crypto": 6, "bitcoin": 6, "ethereum": 6, "mining": 6,
	"staking": 6, "nft": 5, "token": 4,
	// Government schemes
	"subsidy": 6, "yojana": 7, "aadhaar": 6, "pm kisan": 7,
	"benefit": 4, "grant": 5,
	// Tech support
	"virus": 7, "malware": 8, "hacked": 8, "compromised": 8,
	"antivirus": 6, "remote access": 9,
	// Hindi
	"khata band": 10, "turant": 8,
}

var mediumRiskKeywords = map[string]int{
	"confirm": 4, "account": 3, "bank": 3, "payment": 4,
	"transfer": 4, "update": 3, "details": 3, "information": 3,
	"card": 4, "link": 4, "register": 3, "activate": 4,
	"form": 3, "process": 3, "amount": 3, "transaction": 4,
	"balance": 3, "statement": 3, "customer care": 5,
	"support team": 5, "helpline": 4, "toll free": 4,
	"whatsapp": 3, "telegram": 3, "offer": 3, "deal": 3,
	"limited": 3, "special": 3, "exclusive": 3,
	// Utility bills
	"overdue": 5, "pending": 4, "outstanding": 4, "unpaid": 5,
	"disconnect": 5, "due date": 4,
	// Parcels
	"delivery": 3, "tracking": 3, "warehouse": 3,
	// Insurance and loans
	"maturity": 4, "nominee": 3, "beneficiary": 3, "disburse": 4,
	// General indicators
	"selected": 4, "eligible": 4, "entitled": 4, "receive": 3,
	"collect": 4, "avail": 3, "complimentary": 4,
}

// keywordNormalizer: total keyword weight at or above this scores 1.0
const keywordNormalizer = 30.0

// Matching walks the tiers in sorted term order so identical input
// always reports identical matched-term lists.
var (
	highRiskKeywordOrder   = sortedTerms(highRiskKeywords)
	mediumRiskKeywordOrder = sortedTerms(mediumRiskKeywords)
)

func sortedTerms[V any](m map[string]V) []string {
	terms := make([]string, 0, len(m))
	for t := range m {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// scoreKeywords runs the keyword layer over lowercased text.
// Returns the normalized score and the matched terms.
func scoreKeywords(text string) (float64, []string) {
	lower := strings.ToLower(text)
	total := 0
	var matched []string

	for _, kw := range highRiskKeywordOrder {
		if strings.Contains(lower, kw) {
			total += highRiskKeywords[kw]
			matched = append(matched, kw)
		}
	}
	for _, kw := range mediumRiskKeywordOrder {
		if strings.Contains(lower, kw) {
			total += mediumRiskKeywords[kw]
			matched = append(matched, kw)
		}
	}

	score := float64(total) / keywordNormalizer
	if score > 1.0 {
		score = 1.0
	}
	return score, matched
}

// SuspiciousTerms returns every tiered keyword present in the text.
// Shared with the extractor, which reports matched terms alongside the
// harvested identifiers.
func SuspiciousTerms(text string) []string {
	_, matched := scoreKeywords(text)
	return matched
}

// shortMessageKeywords trigger the fast path for messages under three words
var shortMessageKeywords = []string{
	"otp", "send money", "blocked", "suspended", "urgent",
	"click", "verify", "upi", "pin", "cvv",
}

func matchShortMessage(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range shortMessageKeywords {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
