package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"claimdesk/internal/domain"
)

func TestFormKey(t *testing.T) {
	tests := []struct {
		name     string
		formCode string
		title    string
		want     string
	}{
		{"code normalized", " ho 04  16 ", "Premises Alarm", "HO 04 16"},
		{"code wins over title", "TDP 004", "Roof Surface Payment Schedule", "TDP 004"},
		{"title fallback", "", "Roof Surface  payment schedule", "TITLE:ROOF SURFACE PAYMENT SCHEDULE"},
		{"both blank", " ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.FormKey(tt.formCode, tt.title))
		})
	}
}

func TestDisplayFormCode(t *testing.T) {
	assert.Equal(t, "HO 04 16", domain.DisplayFormCode("HO 04 16"))
	assert.Empty(t, domain.DisplayFormCode("TITLE:ROOF SURFACE PAYMENT SCHEDULE"))
}
