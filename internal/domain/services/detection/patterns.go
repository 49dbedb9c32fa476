package detection

import (
	"fmt"
	"regexp"

	"honeytrap-lab/internal/domain/models"
)

// patternRule is a weighted multi-token regex tied to a scam category
type patternRule struct {
	expr     string
	scamType models.ScamType
	weight   float64
}

var patternRules = []patternRule{
	// Bank impersonation
	{`(?:your|the)\s+(?:bank\s+)?account\s+(?:will be|has been|is being|is)\s+(?:blocked|suspended|frozen|closed|terminated|deactivated)`, models.ScamTypeBankImpersonation, 0.9},
	{`(?:bank|rbi|sbi|hdfc|icici|axis)\s+(?:officer|manager|executive|representative)\s+(?:here|calling|speaking)`, models.ScamTypeBankImpersonation, 0.8},
	{`(?:dear|respected)\s+(?:customer|account holder|sir|madam)`, models.ScamTypeBankImpersonation, 0.5},
	{`(?:unusual|suspicious)\s+(?:activity|transaction)\s+(?:on|in|detected)`, models.ScamTypeBankImpersonation, 0.7},
	{`(?:verify|confirm|update)\s+(?:your)?\s*(?:details|identity|information)\s+(?:to avoid|or|otherwise)`, models.ScamTypeBankImpersonation, 0.7},

	// UPI fraud
	{`(?:send|transfer|pay)\s+(?:money|amount|rs|₹|inr)\s+(?:to|via|through)\s+(?:upi|paytm|phonepe|gpay)`, models.ScamTypeUPIFraud, 0.9},
	{`(?:upi|paytm|phonepe|gpay)\s+(?:id|number)\s*[:=]?\s*\w+@\w+`, models.ScamTypeUPIFraud, 0.85},
	{`(?:scan|use)\s+(?:this|the)\s+(?:qr|upi)\s+(?:code|link)`, models.ScamTypeUPIFraud, 0.8},

	// OTP theft
	{`(?:share|send|give|tell|provide)\s+(?:me|us)?\s*(?:the|your)?\s*(?:otp|verification code|one time password|pin|mpin)`, models.ScamTypeOTPTheft, 0.95},
	{`(?:otp|code|pin)\s+(?:sent|received|generated)\s+(?:to|on)\s+(?:your|the)\s+(?:phone|mobile|number)`, models.ScamTypeOTPTheft, 0.7},

	// Phishing links
	{`(?:click|open|visit|go to)\s+(?:this|the|below)?\s*(?:link|url|website)`, models.ScamTypePhishingLink, 0.8},
	{`(?:https?://|bit\.ly|tinyurl|goo\.gl)`, models.ScamTypePhishingLink, 0.6},

	// Investment scams
	{`(?:guaranteed|assured|fixed)\s+(?:returns?|profit|income)`, models.ScamTypeInvestment, 0.9},
	{`(?:double|triple|multiply)\s+(?:your)?\s*(?:money|investment|amount)`, models.ScamTypeInvestment, 0.95},
	{`(?:invest|deposit)\s+(?:rs|₹|inr)?\s*\d+\s+(?:and|to)\s+(?:get|earn|receive)`, models.ScamTypeInvestment, 0.85},

	// Job scams
	{`(?:work|earn|job)\s+(?:from|at)\s+home`, models.ScamTypeJob, 0.6},
	{`(?:registration|processing|admission)\s+fee`, models.ScamTypeJob, 0.8},
	{`(?:earn|make)\s+(?:rs|₹|inr)?\s*\d+\s*(?:per|every|daily|weekly)`, models.ScamTypeJob, 0.7},

	// KYC update scams
	{`(?:kyc|know your customer)\s+(?:update|verification|expired|pending|mandatory)`, models.ScamTypeKYCUpdate, 0.85},
	{`(?:complete|update)\s+(?:your)?\s*kyc\s+(?:immediately|now|today|urgently)`, models.ScamTypeKYCUpdate, 0.9},

	// Prize and lottery scams
	{`(?:you have|you've|you)\s+(?:won|been selected|been chosen)\s+(?:a|the)?\s*(?:prize|lottery|reward|gift|cashback)`, models.ScamTypePrizeLottery, 0.9},
	{`(?:claim|collect|receive)\s+(?:your)?\s*(?:prize|reward|winnings|gift)`, models.ScamTypePrizeLottery, 0.85},

	// Tax and legal threats
	{`(?:income tax|it department|tax department)\s+(?:notice|alert|warning|action)`, models.ScamTypeTaxLegal, 0.85},
	{`(?:legal|court|police)\s+(?:action|notice|case)\s+(?:will be|has been|against)`, models.ScamTypeTaxLegal, 0.9},
	{`(?:arrest|fir|warrant)\s+(?:will be|has been|issued)`, models.ScamTypeTaxLegal, 0.95},

	// Refund scams
	{`(?:refund|cashback|reimbursement)\s+(?:of|worth)?\s*(?:rs|₹|inr)?\s*\d+`, models.ScamTypeRefund, 0.7},
	{`(?:process|initiate|complete)\s+(?:your)?\s*(?:refund|cashback)`, models.ScamTypeRefund, 0.75},

	// Tech support scams
	{`(?:virus|malware|hacked|compromised)\s+(?:detected|found|in your)`, models.ScamTypeTechSupport, 0.8},
	{`(?:install|download)\s+(?:this|the)\s+(?:app|software|antivirus)`, models.ScamTypeTechSupport, 0.75},

	// Utility bill scams
	{`(?:electricity|power|gas|water)\s+(?:bill|connection|supply)\s+(?:.*?\s+)?(?:overdue|unpaid|disconnected|pending|due)`, models.ScamTypeElectricityBill, 0.85},
	{`(?:electricity|power|gas|water)\s+(?:.*?\s+)?(?:will be|be)\s+(?:disconnected|cut|terminated|stopped)`, models.ScamTypeElectricityBill, 0.9},
	{`(?:disconnect|cut off|terminate)\s+(?:your)?\s*(?:electricity|power|gas|water|connection)`, models.ScamTypeElectricityBill, 0.9},
	{`(?:pay|clear)\s+(?:your)?\s*(?:outstanding|pending|overdue)\s+(?:bill|dues|amount)`, models.ScamTypeElectricityBill, 0.7},
	{`(?:bill|dues)\s+(?:is|are)?\s*(?:overdue|pending|unpaid|outstanding)`, models.ScamTypeElectricityBill, 0.75},

	// Government scheme scams
	{`(?:government|govt|pm|pradhan mantri)\s+(?:scheme|yojana|subsidy|benefit|grant)`, models.ScamTypeGovtScheme, 0.8},
	{`(?:eligible|selected|entitled)\s+(?:for|to)\s+(?:a|the)?\s*(?:subsidy|benefit|grant|scheme|relief)`, models.ScamTypeGovtScheme, 0.85},
	{`(?:aadhaar|aadhar)\s+(?:linked|verified|required|update)`, models.ScamTypeGovtScheme, 0.6},

	// Crypto investment scams
	{`(?:crypto|bitcoin|ethereum|nft|token)\s+(?:investment|trading|profit|opportunity)`, models.ScamTypeCryptoInvestment, 0.85},
	{`(?:guaranteed|assured|minimum)\s+(?:\d+%|\d+x)\s+(?:returns?|profit|gains?)`, models.ScamTypeCryptoInvestment, 0.9},
	{`(?:mining|staking|defi)\s+(?:pool|platform|opportunity|profit)`, models.ScamTypeCryptoInvestment, 0.8},

	// Customs and parcel scams
	{`(?:customs|parcel|package|courier|shipment)\s+(?:held|seized|detained|stuck|pending)`, models.ScamTypeCustomsParcel, 0.85},
	{`(?:release|clear|collect)\s+(?:your)?\s*(?:parcel|package|shipment|goods)`, models.ScamTypeCustomsParcel, 0.8},
	{`(?:customs|import)\s+(?:duty|fee|tax|charge|clearance)`, models.ScamTypeCustomsParcel, 0.75},

	// Insurance scams
	{`(?:insurance|policy)\s+(?:.*?\s+)?(?:claim|premium|expired|lapsed|matured|bonus)`, models.ScamTypeInsurance, 0.8},
	{`(?:policy|insurance)\s+(?:.*?\s+)?(?:has|is)\s+(?:matured|expired|lapsed)`, models.ScamTypeInsurance, 0.85},
	{`(?:claim|collect)\s+(?:your)?\s*(?:insurance|policy|amount|benefit|maturity|bonus)`, models.ScamTypeInsurance, 0.85},
	{`(?:policy|insurance)\s+(?:no\.?|number|id)\s*[:.]?\s*[A-Za-z0-9]`, models.ScamTypeInsurance, 0.6},

	// Loan approval scams
	{`(?:loan|credit)\s+(?:approved|sanctioned|pre-approved|eligible|offer)`, models.ScamTypeLoanApproval, 0.8},
	{`(?:pre-approved|instant|guaranteed)\s+(?:loan|credit|financing)`, models.ScamTypeLoanApproval, 0.85},
	{`(?:processing|documentation|stamp duty)\s+fee\s+(?:of|for|rs|₹)`, models.ScamTypeLoanApproval, 0.8},
}

type compiledRule struct {
	re       *regexp.Regexp
	scamType models.ScamType
	weight   float64
}

// PatternDB holds the compiled weighted scam pattern rules
type PatternDB struct {
	rules []compiledRule
}

// NewPatternDB compiles the built-in rule set
func NewPatternDB() *PatternDB {
	db := &PatternDB{rules: make([]compiledRule, 0, len(patternRules))}
	for _, r := range patternRules {
		db.rules = append(db.rules, compiledRule{
			re:       regexp.MustCompile("(?i)" + r.expr),
			scamType: r.scamType,
			weight:   r.weight,
		})
	}
	return db
}

// Score runs the pattern layer. The score is the highest matched weight,
// boosted by 0.1 when rules from two or more scam types match.
// Returns the score, the matched rule labels and the per-type weight sums.
func (db *PatternDB) Score(text string) (float64, []string, map[models.ScamType]float64) {
	var matched []string
	typeWeights := make(map[models.ScamType]float64)
	maxScore := 0.0

	for _, r := range db.rules {
		if !r.re.MatchString(text) {
			continue
		}
		matched = append(matched, fmt.Sprintf("%s:%.2f", r.scamType, r.weight))
		typeWeights[r.scamType] += r.weight
		if r.weight > maxScore {
			maxScore = r.weight
		}
	}

	if len(typeWeights) >= 2 {
		maxScore = min(1.0, maxScore+0.1)
	}
	return maxScore, matched, typeWeights
}

// DominantType returns the scam type with the highest summed weight
func DominantType(typeWeights map[models.ScamType]float64) models.ScamType {
	best := models.ScamTypeUnknown
	bestWeight := 0.0
	for t, w := range typeWeights {
		if w > bestWeight {
			best, bestWeight = t, w
		}
	}
	return best
}
