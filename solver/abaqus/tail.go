package abaqus

import (
	"bytes"
	"strings"
	"sync"

	"heatopt/deque"
)

// tailLines is how many engine stderr lines are kept for error messages.
const tailLines = 16

// lineTail is an io.Writer remembering the last complete lines written to it.
type lineTail struct {
	mu      sync.Mutex
	lines   *deque.ArrDeque[string]
	partial []byte
	dropped int
}

func newLineTail(n int) *lineTail {
	return &lineTail{lines: deque.NewArrDeque[string](n)}
}

func (t *lineTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	buf := append(t.partial, p...)
	for {
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			break
		}
		t.push(string(bytes.TrimRight(buf[:i], "\r")))
		buf = buf[i+1:]
	}
	t.partial = append(t.partial[:0:0], buf...)
	return len(p), nil
}

func (t *lineTail) push(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	if t.lines.IsFull() {
		t.dropped++
	}
	t.lines.Push(line)
}

// String joins the kept lines plus any unterminated last line.
func (t *lineTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	lines := t.lines.Slice()
	if rest := strings.TrimSpace(string(t.partial)); rest != "" {
		lines = append(lines, rest)
	}
	s := strings.Join(lines, "\n")
	if t.dropped > 0 && s != "" {
		s = "...\n" + s
	}
	return s
}
