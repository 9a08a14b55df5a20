// Package status maps between the watch-list labels shown to users and the
// status codes stored by the list backend. The domain is closed: six labels,
// six codes, one-to-one.
package status

// Label is the human-readable status text.
type Label string

// Code is the backend enumeration value.
type Code string

const (
	LabelWantToWatch   Label = "Want to Watch"
	LabelWatching      Label = "Watching"
	LabelCompleted     Label = "Completed"
	LabelPaused        Label = "Paused"
	LabelDropped       Label = "Dropped"
	LabelNotInterested Label = "Not Interested"

	// LabelUnknown is displayed for codes outside the domain.
	LabelUnknown Label = "Unknown"
	// LabelAll is the filter choice that disables status filtering.
	LabelAll Label = "All Statuses"
)

const (
	WantToWatch   Code = "WANT_TO_WATCH"
	Watching      Code = "WATCHING"
	Completed     Code = "COMPLETED"
	Paused        Code = "PAUSED"
	Dropped       Code = "DROPPED"
	NotInterested Code = "NOT_INTERESTED"
)

// Default is the code used when a label is not recognized.
const Default = WantToWatch

var pairs = []struct {
	label Label
	code  Code
}{
	{LabelWantToWatch, WantToWatch},
	{LabelWatching, Watching},
	{LabelCompleted, Completed},
	{LabelPaused, Paused},
	{LabelDropped, Dropped},
	{LabelNotInterested, NotInterested},
}

var (
	byLabel = make(map[Label]Code, len(pairs))
	byCode  = make(map[Code]Label, len(pairs))
)

func init() {
	for _, p := range pairs {
		byLabel[p.label] = p.code
		byCode[p.code] = p.label
	}
}

// ToCode never fails: unrecognized labels map to WANT_TO_WATCH.
func ToCode(l Label) Code {
	if c, ok := byLabel[l]; ok {
		return c
	}
	return Default
}

// ToLabel returns "Unknown" for codes outside the domain.
func ToLabel(c Code) Label {
	if l, ok := byCode[c]; ok {
		return l
	}
	return LabelUnknown
}

// ParseCode reports whether s is one of the six codes.
func ParseCode(s string) (Code, bool) {
	c := Code(s)
	_, ok := byCode[c]
	return c, ok
}

// FilterCode converts a filter selection into the code to query by.
// An empty selection (or "All Statuses") means no filter and yields "".
func FilterCode(l Label) Code {
	if l == "" || l == LabelAll {
		return ""
	}
	return ToCode(l)
}

// Labels returns the labels in display order.
func Labels() []Label {
	out := make([]Label, len(pairs))
	for i, p := range pairs {
		out[i] = p.label
	}
	return out
}

// Codes returns the codes in display order.
func Codes() []Code {
	out := make([]Code, len(pairs))
	for i, p := range pairs {
		out[i] = p.code
	}
	return out
}
