package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWellFormedPIN(t *testing.T) {
	valid := []string{"0000", "1234", "9999"}
	for _, pin := range valid {
		assert.True(t, IsWellFormedPIN(pin), "pin %q", pin)
	}

	invalid := []string{"", "123", "12345", "12a4", "abcd", " 123", "12.4"}
	for _, pin := range invalid {
		assert.False(t, IsWellFormedPIN(pin), "pin %q", pin)
	}
}

func TestValidateStruct_PINTag(t *testing.T) {
	type loginForm struct {
		PIN string `validate:"required,pin"`
	}

	assert.Empty(t, ValidateStruct(&loginForm{PIN: "1234"}))

	errs := ValidateStruct(&loginForm{PIN: "12ab"})
	assert.NotEmpty(t, errs)
	assert.Equal(t, "pin", errs[0].Tag)
}
