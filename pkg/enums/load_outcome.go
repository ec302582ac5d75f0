package enums

// LoadOutcome is the result of marking a package loaded. Duplicate is a
// normal control-flow signal, not an error: re-scanning a loaded package
// changes nothing and must not bump any counter.
type LoadOutcome string

const (
	LoadOutcomeLoaded    LoadOutcome = "loaded"
	LoadOutcomeDuplicate LoadOutcome = "duplicate"
)

// String implements fmt.Stringer.
func (o LoadOutcome) String() string {
	return string(o)
}
