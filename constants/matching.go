package constants

// Email matcher weights. Exact sender evidence outranks a bare domain match
// and the two may stack; subject keywords contribute at most SubjectKeywordCap.
const (
	DomainMatchWeight    = 0.3
	ExactSenderWeight    = 0.4
	SubjectKeywordWeight = 0.1
	SubjectKeywordCap    = 0.3
)

// Match thresholds. Email confidence is on a 0..1 scale, PDF confidence on
// 0..100. Values carried over from the original deployment unchanged.
const (
	EmailAutoProcessThreshold = 0.7
	EmailSuggestionThreshold  = 0.5
	PdfAutoProcessThreshold   = 70.0
	PdfSuggestionThreshold    = 50.0
)

// Heuristic PDF template suggestion scoring.
const (
	SuggestNameHitScore  = 10.0
	SuggestFieldHitScore = 2.0
)

// PromptTextLimit caps how much extracted document text is embedded in a
// model prompt (cost/latency bound).
const PromptTextLimit = 4000
