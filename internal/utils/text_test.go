package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Acme":               "A",
		"coff ai":            "CA",
		"  Blue   Bottle Co": "BB",
		"":                   "",
		"élan vital":         "ÉV",
	}
	for in, want := range cases {
		assert.Equal(t, want, Initials(in), "Initials(%q)", in)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"AI Creation Showcase":    "ai-creation-showcase",
		"Use Cases & Inspiration": "use-cases-inspiration",
		"  Community & UGC  ":     "community-ugc",
		"Product/Innovation!":     "product-innovation",
		"***":                     "",
		"Café Culture":            "café-culture",
		"Top 10 Tips":             "top-10-tips",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
	assert.Equal(t, "コーヒー-文化", Slugify("コーヒー 文化"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
}
