package contextwindow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	crank "github.com/spetersoncode/crank"
)

func TestCountTokens(t *testing.T) {
	assert.Zero(t, CountTokens(""))

	got := CountTokens("hello world")
	assert.Greater(t, got, 0)
	assert.LessOrEqual(t, got, 4)
}

func TestEstimateFast(t *testing.T) {
	assert.Zero(t, EstimateFast("   "))
	assert.Equal(t, 1, EstimateFast("hi"))

	text := strings.Repeat("word ", 100)
	got := EstimateFast(text)
	assert.GreaterOrEqual(t, got, 100)
}

func TestCountMessageTokens(t *testing.T) {
	text := crank.NewUserMessage(crank.NewTextPart("some text content here"))
	withImage := crank.NewUserMessage(
		crank.NewTextPart("some text content here"),
		crank.NewImagePart("aGk=", "image/png"),
	)

	assert.Equal(t, CountMessageTokens(text)+imageTokenOverhead, CountMessageTokens(withImage))
}
