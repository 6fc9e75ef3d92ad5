package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetString(t *testing.T) {
	t.Setenv("CQ_TEST_STRING", "value")

	assert.Equal(t, "value", GetString("CQ_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetString("CQ_TEST_STRING_MISSING", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("CQ_TEST_INT", "42")
	t.Setenv("CQ_TEST_INT_BAD", "forty-two")

	assert.Equal(t, 42, GetInt("CQ_TEST_INT", 1))
	assert.Equal(t, 1, GetInt("CQ_TEST_INT_BAD", 1))
	assert.Equal(t, 1, GetInt("CQ_TEST_INT_MISSING", 1))
}

func TestGetBool(t *testing.T) {
	cases := map[string]bool{
		"yes":   true,
		"no":    false,
		"true":  true,
		"0":     false,
		" On ":  true,
		"False": false,
	}

	for raw, want := range cases {
		t.Setenv("CQ_TEST_BOOL", raw)
		assert.Equal(t, want, GetBool("CQ_TEST_BOOL", !want), raw)
	}

	t.Setenv("CQ_TEST_BOOL", "maybe")
	assert.True(t, GetBool("CQ_TEST_BOOL", true))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("CQ_TEST_DURATION", "15m")

	assert.Equal(t, 15*time.Minute, GetDuration("CQ_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetDuration("CQ_TEST_DURATION_MISSING", time.Second))
}

func TestGetStrings(t *testing.T) {
	t.Setenv("CQ_TEST_LIST", "https://a.example, https://b.example,,")

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetStrings("CQ_TEST_LIST", nil))
	assert.Equal(t, []string{"*"}, GetStrings("CQ_TEST_LIST_MISSING", []string{"*"}))
}
