package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlastEmailRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     BlastEmailRequest
		wantErr bool
	}{
		{"valid", BlastEmailRequest{Subject: "Reminder", Message: "See you\nTomorrow"}, false},
		{"missing subject", BlastEmailRequest{Message: "body"}, true},
		{"missing message", BlastEmailRequest{Subject: "Reminder"}, true},
		{"crlf in subject", BlastEmailRequest{Subject: "Hi\r\nBcc: x@evil.test", Message: "body"}, true},
		{"lf in subject", BlastEmailRequest{Subject: "Hi\nthere", Message: "body"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
