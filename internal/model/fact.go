package model

// PeriodKind distinguishes the two XBRL context shapes. Profit-and-loss
// concepts bind to duration contexts, balance-sheet concepts to instants.
type PeriodKind string

// Period kind constants.
const (
	PeriodDuration PeriodKind = "duration"
	PeriodInstant  PeriodKind = "instant"
)

// Context is a reporting context declared in a tagged filing. Dimensional
// contexts carry segment or subsidiary breakdowns and are excluded from
// canonical resolution in favour of the consolidated totals.
type Context struct {
	ID          string
	Kind        PeriodKind
	Start       string // ISO date, duration contexts only
	End         string // ISO date: period end or instant date
	Dimensional bool
}

// TaggedFact is one atomic datum extracted from a tagged filing: a taxonomy
// concept name bound to a context, with the numeric value already cleaned of
// presentation formatting (thousands separators, accounting brackets, scale).
type TaggedFact struct {
	Concept     string // local concept name, namespace prefix stripped
	FullName    string // original name attribute including prefix
	ContextRef  string
	Unit        string
	Value       float64
	Decimals    int // reported precision; DecimalsUnknown when absent
	Order       int // position in document order, for deterministic tie-breaks
	Dimensional bool
}

// DecimalsUnknown marks facts that carry no decimals attribute. It sorts
// below any declared precision when resolving duplicate facts.
const DecimalsUnknown = -1000
