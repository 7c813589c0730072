package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	t.Setenv("HC_USER", "user")
	t.Setenv("HC_PASS", "challenge")

	assert.Equal(t, "user:challenge", Expand("${HC_USER}:${HC_PASS}"))
	assert.Equal(t, "p$ss", Expand("p$ss"))
	assert.Equal(t, "$HC_USER", Expand("$HC_USER"))
	assert.Equal(t, "", Expand("${HC_UNSET_VARIABLE}"))
}

func TestMissing(t *testing.T) {
	t.Setenv("HC_SET", "1")
	assert.Equal(t, []string{"HC_NOT_SET"}, Missing("${HC_SET}/${HC_NOT_SET}"))
	assert.Empty(t, Missing("plain"))
}

func TestExpandValue(t *testing.T) {
	t.Setenv("HC_HOST", "httpbin.org")

	doc := map[string]any{
		"host":    "${HC_HOST}",
		"port":    8080,
		"headers": map[string]any{"X-Host": "${HC_HOST}"},
		"list":    []any{"${HC_HOST}", true},
	}
	ExpandValue(doc)

	assert.Equal(t, "httpbin.org", doc["host"])
	assert.Equal(t, 8080, doc["port"])
	assert.Equal(t, "httpbin.org", doc["headers"].(map[string]any)["X-Host"])
	assert.Equal(t, []any{"httpbin.org", true}, doc["list"])
}

func TestTypedDefaults(t *testing.T) {
	t.Setenv("HC_STR", "value")
	t.Setenv("HC_BOOL", "yes")
	t.Setenv("HC_INT", "42")
	t.Setenv("HC_FLOAT", "2.5")
	t.Setenv("HC_BAD_INT", "x")

	assert.Equal(t, "value", String("HC_STR", "default"))
	assert.Equal(t, "default", String("HC_STR_UNSET", "default"))
	assert.True(t, Bool("HC_BOOL", false))
	assert.Equal(t, 42, Int("HC_INT", 0))
	assert.Equal(t, 7, Int("HC_BAD_INT", 7))
	assert.Equal(t, 2.5, Float("HC_FLOAT", 0))
}
