// Package textblock locates labelled sections in free-form tool output and
// splits them into fixed-position records.
//
// Tools that iterate (geometry optimisers, SCF loops) print the same section
// many times; text order is chronological, so the last complete occurrence
// is the converged one.  The extractor keeps only that occurrence.
package textblock

import (
	"bufio"
	"io"
	"strings"

	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// readerSize is the buffer size of the streaming scanner.  Lines longer than
// this are still read whole.
const readerSize = 64 * 1024

// Markers is a start/end marker pair.  Neither marker may contain a newline.
type Markers struct {
	Start string
	End   string
}

// Match is the outcome of scanning for one marker pair.
type Match struct {
	Markers Markers
	Text    string
	Found   bool
}

// tracker follows one marker pair through a forward scan.  It holds the
// block being matched and the most recently completed one.
type tracker struct {
	m     Markers
	open  bool
	cur   strings.Builder
	last  string
	found bool
}

// feed consumes one chunk of text.  A chunk is a line including its trailing
// newline, so a marker never straddles two chunks.
func (t *tracker) feed(chunk string) {
	rest := chunk
	for rest != "" {
		if !t.open {
			i := strings.Index(rest, t.m.Start)
			if i < 0 {
				return
			}
			t.open = true
			t.cur.Reset()
			t.cur.WriteString(t.m.Start)
			rest = rest[i+len(t.m.Start):]
		}
		j := strings.Index(rest, t.m.End)
		if j < 0 {
			t.cur.WriteString(rest)
			return
		}
		t.cur.WriteString(rest[:j+len(t.m.End)])
		t.last = t.cur.String()
		t.found = true
		t.open = false
		t.cur.Reset()
		rest = rest[j+len(t.m.End):]
	}
}

func newTrackers(pairs []Markers) ([]*tracker, error) {
	out := make([]*tracker, 0, len(pairs))
	for _, m := range pairs {
		if m.Start == "" || m.End == "" {
			return nil, errors.InvalidParam("textblock: start and end markers are required")
		}
		if strings.ContainsAny(m.Start, "\r\n") || strings.ContainsAny(m.End, "\r\n") {
			return nil, errors.InvalidParam("textblock: markers must not contain line breaks")
		}
		out = append(out, &tracker{m: m})
	}
	return out, nil
}

func results(ts []*tracker) []Match {
	out := make([]Match, len(ts))
	for i, t := range ts {
		out[i] = Match{Markers: t.m, Text: t.last, Found: t.found}
	}
	return out
}

// ScanLastBlocks reads r once and returns, for every marker pair, the last
// non-overlapping span from Start through the first End that follows it.
// Absence of a pair is reported through Match.Found, not as an error.
func ScanLastBlocks(r io.Reader, pairs ...Markers) ([]Match, error) {
	ts, err := newTrackers(pairs)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(r, readerSize)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			for _, t := range ts {
				t.feed(line)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeLogReadFailed, "textblock: scan failed")
		}
	}
	return results(ts), nil
}

// ScanLastBlock is ScanLastBlocks for a single marker pair.
func ScanLastBlock(r io.Reader, start, end string) (string, bool, error) {
	ms, err := ScanLastBlocks(r, Markers{Start: start, End: end})
	if err != nil {
		return "", false, err
	}
	return ms[0].Text, ms[0].Found, nil
}

// LastBlock returns the last start..end span of text.
func LastBlock(text, start, end string) (string, bool) {
	ts, err := newTrackers([]Markers{{Start: start, End: end}})
	if err != nil {
		return "", false
	}
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			ts[0].feed(text)
			break
		}
		ts[0].feed(text[:i+1])
		text = text[i+1:]
	}
	return ts[0].last, ts[0].found
}

//Personal.AI order the ending
