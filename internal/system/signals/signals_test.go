package signals

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminatingIncludesInterrupt(t *testing.T) {
	assert.Contains(t, Terminating(), os.Interrupt)
}
