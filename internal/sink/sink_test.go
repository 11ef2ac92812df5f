package sink

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsole_EmitsOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsole(&buf)

	s.TableStarted("users", "table")
	s.ChunkCommitted("users", 100, 100)
	s.TableDone("users", 100)
	s.Warning("dropped an index")
	s.Error(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "WARNING: dropped an index")
	assert.Contains(t, out, "ERROR: boom")
}

func TestQuiet_SuppressesEverythingButError(t *testing.T) {
	var buf bytes.Buffer
	s := NewQuiet(NewConsole(&buf))

	s.TableStarted("users", "table")
	s.ChunkCommitted("users", 100, 100)
	s.TableDone("users", 100)
	s.Warning("dropped an index")
	assert.Empty(t, buf.String())

	s.Error(errors.New("boom"))
	assert.Contains(t, buf.String(), "ERROR: boom")
}
