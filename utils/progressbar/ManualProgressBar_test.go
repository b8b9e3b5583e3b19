package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestManualProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewManualProgressBar(&buf, 10, 4)

	bar.Increment()
	bar.Increment()
	if s := bar.String(); !strings.Contains(s, "50.00%") ||
		strings.Count(s, "█") != 5 {
		t.Errorf("half way: have(%q)", s)
	}

	for i := 0; i < 10; i++ {
		bar.Increment()
	}
	bar.Display()
	bar.Close()
	if s := buf.String(); !strings.Contains(s, "100.00%") ||
		!strings.HasSuffix(s, "\n") {
		t.Errorf("display: have(%q)", s)
	}
}
