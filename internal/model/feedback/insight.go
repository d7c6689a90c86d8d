package feedback

// Severity grades how urgently a coaching insight deserves attention.
type Severity string

const (
	SeverityInfo       Severity = "info"
	SeveritySuggestion Severity = "suggestion"
	SeverityConcern    Severity = "concern"
)

// Categories is the fixed coaching taxonomy. Insights outside it are
// normalized rather than rejected; the model occasionally invents labels.
var Categories = []string{
	"Question Quality",
	"Mathematical Reasoning",
	"Connecting Ideas",
	"Use of Representations",
	"Precision of Language",
	"Addressing Misconceptions",
}

// Insight is one discrete coaching observation about the teacher's latest
// move, emitted incrementally during a coaching stream.
type Insight struct {
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// NormalizeSeverity maps unknown severities to info.
func NormalizeSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityInfo, SeveritySuggestion, SeverityConcern:
		return Severity(s)
	default:
		return SeverityInfo
	}
}
