package extraction

import "honeytrap-lab/internal/domain/services/detection"

func extractSuspiciousKeywords(text string) []string {
	return detection.SuspiciousTerms(text)
}
