package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newBufferPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewWithOptions(out, errOut, ColorNever), out, errOut
}

func TestError(t *testing.T) {
	p, out, errOut := newBufferPresenter()

	p.Error(errors.New("boom"), "while importing")
	assert.Contains(t, errOut.String(), "[ERROR] while importing: boom")
	assert.Empty(t, out.String())

	errOut.Reset()
	p.Error(nil, "no-op for nil errors")
	assert.Empty(t, errOut.String())
}

func TestMessages(t *testing.T) {
	p, out, _ := newBufferPresenter()

	p.Success("imported catalog")
	p.Warning("one orphan agent")
	p.Info("63 agents total")

	got := out.String()
	assert.Contains(t, got, "✓ imported catalog")
	assert.Contains(t, got, "⚠ one orphan agent")
	assert.Contains(t, got, "63 agents total")
}

func TestQuietMode(t *testing.T) {
	p, out, errOut := newBufferPresenter()
	p.SetQuiet(true)
	assert.True(t, p.IsQuiet())

	p.Success("hidden")
	p.Warning("hidden")
	p.Info("hidden")
	p.Section("hidden")
	p.Separator()
	assert.Empty(t, out.String())

	// Errors always surface.
	p.Error(errors.New("still shown"), "")
	assert.Contains(t, errOut.String(), "still shown")
}

func TestSection(t *testing.T) {
	p, out, _ := newBufferPresenter()
	p.Section("Statistics")
	assert.Contains(t, out.String(), "Statistics\n----------\n")
}
