package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLevelFiltersLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	})

	SetLevel("warn")
	Infof("hidden %d", 1)
	Warnf("missing markup %q", "profit_own_forces")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "profit_own_forces")

	buf.Reset()
	SetLevel("DEBUG")
	Debugf("step %d", 3)
	assert.Contains(t, buf.String(), "step 3")

	buf.Reset()
	SetLevel("nonsense")
	Debugf("dropped")
	Errorf("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
