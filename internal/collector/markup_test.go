package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkupPlainTextUnchanged(t *testing.T) {
	assert.Equal(t, "smoky incense opening", StripMarkup("smoky incense opening"))
}

func TestStripMarkupRemovesTags(t *testing.T) {
	in := "<div><p>Opens with <strong>oud</strong> and rose.</p></div>"
	assert.Equal(t, "Opens with oud and rose.", StripMarkup(in))
}

func TestStripMarkupDecodesCharRefs(t *testing.T) {
	assert.Equal(t, "longevity & sillage", StripMarkup("longevity &amp; sillage"))
}
