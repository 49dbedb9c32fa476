package models

// ScamType categorizes the fraud scheme a message belongs to
type ScamType string

const (
	ScamTypeBankImpersonation ScamType = "bank_impersonation"
	ScamTypeUPIFraud          ScamType = "upi_fraud"
	ScamTypeOTPTheft          ScamType = "otp_theft"
	ScamTypePhishingLink      ScamType = "phishing_link"
	ScamTypeInvestment        ScamType = "investment_scam"
	ScamTypeJob               ScamType = "job_scam"
	ScamTypePrizeLottery      ScamType = "prize_lottery"
	ScamTypeTaxLegal          ScamType = "tax_legal"
	ScamTypeKYCUpdate         ScamType = "kyc_update"
	ScamTypeRefund            ScamType = "refund_scam"
	ScamTypeElectricityBill   ScamType = "electricity_bill"
	ScamTypeGovtScheme        ScamType = "govt_scheme"
	ScamTypeCryptoInvestment  ScamType = "crypto_investment"
	ScamTypeCustomsParcel     ScamType = "customs_parcel"
	ScamTypeInsurance         ScamType = "insurance"
	ScamTypeLoanApproval      ScamType = "loan_approval"
	ScamTypeTechSupport       ScamType = "tech_support"
	ScamTypeUnknown           ScamType = "unknown"
)

// RedFlag names an independent warning signal raised during analysis
type RedFlag string

const (
	FlagUrgency                RedFlag = "urgency_detected"
	FlagContactInfoPresent     RedFlag = "contact_info_present"
	FlagLinkDetected           RedFlag = "link_detected"
	FlagAuthorityImpersonation RedFlag = "authority_impersonation"
	FlagSensitiveInfoRequest   RedFlag = "sensitive_info_request"
	FlagThreatDetected         RedFlag = "threat_detected"
	FlagMoneyAmountMentioned   RedFlag = "money_amount_mentioned"
)

// ComponentScores breaks the final confidence into its rule-based parts
type ComponentScores struct {
	Keyword    float64 `json:"keyword"`
	Pattern    float64 `json:"pattern"`
	Context    float64 `json:"context"`
	Feature    float64 `json:"feature"`
	Classifier float64 `json:"classifier"`
}

// DetectionResult is the outcome of scoring a single sender message
type DetectionResult struct {
	IsScam          bool            `json:"is_scam"`
	Confidence      float64         `json:"confidence"`
	ScamType        ScamType        `json:"scam_type"`
	RedFlags        []RedFlag       `json:"red_flags,omitempty"`
	MatchedKeywords []string        `json:"matched_keywords,omitempty"`
	MatchedPatterns []string        `json:"matched_patterns,omitempty"`
	Components      ComponentScores `json:"components"`
}
