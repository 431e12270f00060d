package textblock

import (
	"strings"
)

// Layout describes a section and the fixed positions of its record fields.
type Layout struct {
	Name       string
	Start      string
	End        string
	SkipHead   int
	SkipTail   int
	LabelIndex int
	ValueIndex int
}

// Markers returns the marker pair of the layout.
func (l Layout) Markers() Markers {
	return Markers{Start: l.Start, End: l.End}
}

// Gaussian layouts.
var (
	MullikenLayout = Layout{
		Name:       "mulliken",
		Start:      " Mulliken atomic charges",
		End:        "Sum of Mulliken atomic",
		SkipHead:   2,
		SkipTail:   1,
		LabelIndex: 0,
		ValueIndex: 2,
	}
	OptimizedParametersLayout = Layout{
		Name:       "optimized_parameters",
		Start:      " Optimized Parameters",
		End:        "GradGrad",
		SkipHead:   5,
		SkipTail:   2,
		LabelIndex: 1,
		ValueIndex: 3,
	}
)

// Token is one record of a block.  Value is kept as text; numeric coercion
// is the caller's job.
type Token struct {
	Line  int
	Label string
	Value string
}

// Skipped describes a record line that did not carry enough fields.
type Skipped struct {
	Line   int
	Text   string
	Fields int
}

// Tokenize splits block into lines, drops the layout's head and tail lines
// and extracts the label and value field of every remaining line.  Line
// numbers are 1-based positions within block.
func Tokenize(block string, l Layout) ([]Token, []Skipped) {
	lines := strings.Split(block, "\n")
	lo, hi := l.SkipHead, len(lines)-l.SkipTail
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return nil, nil
	}
	need := l.LabelIndex
	if l.ValueIndex > need {
		need = l.ValueIndex
	}
	need++

	var (
		tokens  []Token
		skipped []Skipped
	)
	for i := lo; i < hi; i++ {
		text := strings.TrimRight(lines[i], "\r")
		fields := strings.Fields(text)
		if len(fields) < need {
			skipped = append(skipped, Skipped{Line: i + 1, Text: text, Fields: len(fields)})
			continue
		}
		tokens = append(tokens, Token{
			Line:  i + 1,
			Label: fields[l.LabelIndex],
			Value: fields[l.ValueIndex],
		})
	}
	return tokens, skipped
}

//Personal.AI order the ending
