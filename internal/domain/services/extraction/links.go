package extraction

import (
	"regexp"
	"strings"
)

var (
	urlRe      = regexp.MustCompile(`(?i)https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)
	shortURLRe = regexp.MustCompile(`(?i)\b(?:bit\.ly|goo\.gl|t\.co|tinyurl\.com|is\.gd|buff\.ly|ow\.ly|rebrand\.ly|cutt\.ly|shorturl\.at)/[a-zA-Z0-9]+\b`)

	// Obfuscated domain: "example[dot]com", "example (dot) com/path"
	obfuscatedURLRe = regexp.MustCompile(`(?i)\b([a-zA-Z0-9\-]+)\s*[\[\(]?\s*(?:dot|\.)\s*[\]\)]?\s*([a-zA-Z]{2,10})(/[^\s]*)?`)

	emailRe           = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	obfuscatedEmailRe = regexp.MustCompile(`(?i)\b([A-Za-z0-9._%+\-]+)\s*(?:\(at\)|AT)\s*([A-Za-z0-9.\-]+)\s*(?:\(dot\)|DOT)\s*([A-Za-z]{2,})\b`)
)

// TLDs accepted when reconstructing an obfuscated domain
var obfuscatedTLDs = map[string]struct{}{
	"com": {}, "in": {}, "org": {}, "net": {}, "co": {}, "io": {},
	"xyz": {}, "tk": {}, "ml": {}, "info": {}, "link": {},
}

func (e *Extractor) extractLinks(text string) []string {
	var links []string
	seen := make(map[string]struct{})
	add := func(l string) {
		k := strings.ToLower(l)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			links = append(links, l)
		}
	}

	// Positions claimed by emails and explicit URLs must not be
	// re-interpreted as obfuscated domains.
	covered := make([]bool, len(text))
	cover := func(start, end int) {
		for i := start; i < end && i < len(covered); i++ {
			covered[i] = true
		}
	}

	for _, idx := range emailRe.FindAllStringIndex(text, -1) {
		cover(idx[0], idx[1])
	}
	for _, idx := range urlRe.FindAllStringIndex(text, -1) {
		add(strings.TrimRight(text[idx[0]:idx[1]], ".,;:!?)"))
		cover(idx[0], idx[1])
	}
	for _, idx := range shortURLRe.FindAllStringIndex(text, -1) {
		add(text[idx[0]:idx[1]])
		cover(idx[0], idx[1])
	}

	for _, idx := range obfuscatedURLRe.FindAllStringSubmatchIndex(text, -1) {
		if overlaps(covered, idx[0], idx[1]) {
			continue
		}
		tld := strings.ToLower(text[idx[4]:idx[5]])
		if _, ok := obfuscatedTLDs[tld]; !ok {
			continue
		}
		reconstructed := text[idx[2]:idx[3]] + "." + tld
		if idx[6] >= 0 {
			reconstructed += text[idx[6]:idx[7]]
		}
		add(reconstructed)
	}

	return links
}

func overlaps(covered []bool, start, end int) bool {
	for i := start; i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

func (e *Extractor) extractEmails(text string) []string {
	var emails []string
	seen := make(map[string]struct{})
	add := func(addr string) {
		addr = strings.ToLower(addr)
		if _, ok := seen[addr]; !ok {
			seen[addr] = struct{}{}
			emails = append(emails, addr)
		}
	}

	for _, m := range emailRe.FindAllString(text, -1) {
		add(m)
	}
	for _, m := range obfuscatedEmailRe.FindAllStringSubmatch(text, -1) {
		add(m[1] + "@" + m[2] + "." + m[3])
	}
	return emails
}
