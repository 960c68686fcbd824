// Package match scores incoming documents against stored templates. The
// email matcher is rule-based over sender/subject/body; the suggestion scorer
// works heuristically over already-extracted field/value pairs.
package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/digitool/docparse/constants"
	"github.com/digitool/docparse/internal/entity"
)

// EmailInput is the email-level evidence available before any PDF work.
type EmailInput struct {
	Sender  string
	Subject string
	Body    string
}

// ScoreTemplate evaluates one template against one email. The reasons list
// is populated even when the final confidence is 0, so callers can show why
// a template was disqualified.
func ScoreTemplate(tpl *entity.EmailTemplate, in EmailInput) *entity.EmailMatchResult {
	result := &entity.EmailMatchResult{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
	}
	crit := tpl.MatchingCriteria

	senderAddr := extractAddress(in.Sender)
	senderDomain := domainPart(senderAddr)
	subjectLower := strings.ToLower(in.Subject)
	haystack := subjectLower + " " + strings.ToLower(in.Body)

	confidence := 0.0
	for _, domain := range crit.SenderDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" && senderDomain != "" && strings.Contains(senderDomain, domain) {
			confidence += constants.DomainMatchWeight
			result.MatchReasons = append(result.MatchReasons, fmt.Sprintf("sender domain matches %q", domain))
			break
		}
	}
	for _, addr := range crit.SenderEmails {
		if addr != "" && strings.EqualFold(senderAddr, strings.TrimSpace(addr)) {
			confidence += constants.ExactSenderWeight
			result.MatchReasons = append(result.MatchReasons, fmt.Sprintf("sender address is %q", senderAddr))
			break
		}
	}

	keywordScore := 0.0
	for _, kw := range crit.SubjectKeywords {
		kw = strings.TrimSpace(kw)
		if kw != "" && strings.Contains(subjectLower, strings.ToLower(kw)) {
			keywordScore += constants.SubjectKeywordWeight
			result.MatchReasons = append(result.MatchReasons, fmt.Sprintf("subject contains %q", kw))
		}
	}
	if keywordScore > constants.SubjectKeywordCap {
		keywordScore = constants.SubjectKeywordCap
	}
	confidence += keywordScore

	// Required words form an AND-gate; excluded words always disqualify.
	for _, word := range crit.RequiredWords {
		word = strings.TrimSpace(word)
		if word != "" && !strings.Contains(haystack, strings.ToLower(word)) {
			result.MatchReasons = append(result.MatchReasons, fmt.Sprintf("required word %q missing", word))
			result.ConfidenceScore = 0
			return result
		}
	}
	for _, word := range crit.ExcludedWords {
		word = strings.TrimSpace(word)
		if word != "" && strings.Contains(haystack, strings.ToLower(word)) {
			result.MatchReasons = append(result.MatchReasons, fmt.Sprintf("excluded word %q present", word))
			result.ConfidenceScore = 0
			return result
		}
	}

	if confidence > 1 {
		confidence = 1
	}
	result.ConfidenceScore = confidence
	result.AutoProcessable = confidence >= constants.EmailAutoProcessThreshold
	return result
}

// FindBest scores the email against every active template and returns the
// single strongest match, or nil when nothing scored above 0. Ties go to the
// template whose name sorts first.
func FindBest(templates []*entity.EmailTemplate, in EmailInput) *entity.EmailMatchResult {
	var results []*entity.EmailMatchResult
	for _, tpl := range templates {
		if !tpl.IsActive {
			continue
		}
		if r := ScoreTemplate(tpl, in); r.ConfidenceScore > 0 {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return nil
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].ConfidenceScore != results[j].ConfidenceScore {
			return results[i].ConfidenceScore > results[j].ConfidenceScore
		}
		return results[i].TemplateName < results[j].TemplateName
	})
	return results[0]
}

// extractAddress pulls the bare address out of a "Display Name <addr>"
// From header; a bare address passes through unchanged.
func extractAddress(sender string) string {
	if open := strings.LastIndex(sender, "<"); open >= 0 {
		if close := strings.Index(sender[open:], ">"); close > 0 {
			return strings.TrimSpace(sender[open+1 : open+close])
		}
	}
	return strings.TrimSpace(sender)
}

// domainPart returns the lowercased "@domain" portion of a bare address, or
// "" when the address has no "@". Criteria may name the domain with or
// without the leading "@".
func domainPart(addr string) string {
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		return strings.ToLower(addr[at:])
	}
	return ""
}
