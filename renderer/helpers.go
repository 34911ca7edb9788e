package renderer

import "io"

// section prints its header lazily, on the first row only, so empty sections
// leave no trace in the report.
type section struct {
	headerFunc func(io.Writer)
	printed    bool
}

func newSection(header func(io.Writer)) *section {
	return &section{headerFunc: header}
}

func (s *section) printHeader(w io.Writer) {
	if s.printed {
		return
	}
	s.printed = true
	s.headerFunc(w)
}
