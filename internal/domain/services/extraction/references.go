package extraction

import (
	"regexp"
	"strings"
)

// Reference code extraction: case/ticket ids, policy numbers and order
// numbers, matched either by a leading cue word or an all-caps prefix.

var (
	caseCueRe    = regexp.MustCompile(`(?i)(?:case|ref|reference|complaint|ticket|incident|file)\s*(?:no\.?|number|id|#|:)\s*[:.]?\s*([A-Za-z0-9\-/]{3,30})`)
	casePrefixRe = regexp.MustCompile(`\b((?:CASE|REF|CRN|TKT|INC|FIR|CR|SR|COMP|FILE)[- /#]?[A-Z0-9\-]{3,20})\b`)

	policyCueRe    = regexp.MustCompile(`(?i)(?:policy|insurance)\s*(?:no\.?|number|id|#|:)\s*[:.]?\s*([A-Za-z0-9\-/]{3,30})`)
	policyPrefixRe = regexp.MustCompile(`\b((?:POL|INS|LIC|POLICY)[- /#]?[A-Z0-9\-]{3,20})\b`)

	orderCueRe    = regexp.MustCompile(`(?i)(?:order|transaction|txn|invoice|bill)\s*(?:no\.?|number|id|#|:)\s*[:.]?\s*([A-Za-z0-9\-/]{3,30})`)
	orderPrefixRe = regexp.MustCompile(`\b((?:ORD|TXN|INV|BILL|ORDER)[- /#]?[A-Z0-9\-]{3,20})\b`)
)

func extractCodes(text string, cueRe, prefixRe *regexp.Regexp) []string {
	var codes []string
	seen := make(map[string]struct{})
	add := func(code string) {
		code = strings.Trim(strings.TrimSpace(code), ":.")
		if len(code) < 3 {
			return
		}
		k := strings.ToLower(code)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			codes = append(codes, code)
		}
	}

	for _, m := range cueRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range prefixRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	return codes
}

func (e *Extractor) extractReferenceIDs(text string) []string {
	return extractCodes(text, caseCueRe, casePrefixRe)
}

func (e *Extractor) extractPolicyNumbers(text string) []string {
	return extractCodes(text, policyCueRe, policyPrefixRe)
}

func (e *Extractor) extractOrderNumbers(text string) []string {
	return extractCodes(text, orderCueRe, orderPrefixRe)
}
