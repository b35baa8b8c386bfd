package domainutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"HTTPS://WWW.Example.com/": "example.com",
		"http://example.com":       "example.com",
		"www.example.com":          "example.com",
		"example.com.":             "example.com",
		"  Example.COM  ":          "example.com",
		"blog.example.com/path":    "blog.example.com",
		"example.com":              "example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"HTTPS://WWW.Example.com/", "blog.example.com", "example.com.", "not a domain"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("example.com"))
	assert.True(t, IsValid("blog.example-site.co"))
	assert.False(t, IsValid("not a domain"))
	assert.False(t, IsValid("example"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("-bad.example.com"))
}

func TestIsSubdomain(t *testing.T) {
	assert.True(t, IsSubdomain("blog.example.com"))
	assert.False(t, IsSubdomain("example.com"))
}
