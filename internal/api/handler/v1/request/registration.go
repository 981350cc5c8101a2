package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterRequest is bound from a multipart form. The payment proof travels
// as the "payment_proof" file field.
type RegisterRequest struct {
	FullName    string `form:"full_name"`
	Email       string `form:"email"`
	Phone       string `form:"phone"`
	Institution string `form:"institution"`
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Required, validation.Length(6, 20)),
		validation.Field(&req.Institution, validation.Length(0, 200)),
	)
}

type LookupRequest struct {
	Email string `json:"email"`
}

func (req *LookupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
	)
}

var singleLine = validation.NewStringRule(func(s string) bool {
	return !strings.ContainsAny(s, "\r\n")
}, "must not contain line breaks")

type BlastEmailRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (req *BlastEmailRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Subject, validation.Required, validation.Length(1, 200), singleLine),
		validation.Field(&req.Message, validation.Required),
	)
}

type BlacklistRequest struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

func (req *BlacklistRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Reason, validation.Length(0, 500)),
	)
}
