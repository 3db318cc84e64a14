package translate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	SetLocale("en-US")

	assert.Equal("opcode 0x08", From("opcode 0x%02X", 8))
	assert.Equal("1,234 cycles", From("%d cycles", 1234))
}

func TestFprintf(t *testing.T) {
	assert := assert.New(t)

	SetLocale()

	sb := &strings.Builder{}
	n, err := Fprintf(sb, "%d instructions\n", 42)
	assert.NoError(err)
	assert.Equal(len("42 instructions\n"), n)
	assert.Equal("42 instructions\n", sb.String())
}
