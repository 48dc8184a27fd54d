// Package validation implements record validation for users and products.
// Each rule appends a human-readable message to a field keyed map; the map is
// what the API serializes under the "errors" key on 422 responses.
package validation

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation messages, matching the wire contract exactly.
const (
	MsgBlank        = "can't be blank"
	MsgInvalid      = "is invalid"
	MsgTaken        = "has already been taken"
	MsgNotANumber   = "is not a number"
	MsgNotNegative  = "must be greater than or equal to 0"
	MsgConfirmation = "doesn't match Password"
)

// Errors maps a field name to its ordered violation messages. A nil or empty
// Errors means the record is valid.
type Errors map[string][]string

// Add appends a message to the given field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Valid reports whether no violations were recorded.
func (e Errors) Valid() bool {
	return len(e) == 0
}

var validate = validator.New()

func emailFormatOK(email string) bool {
	return validate.Var(email, "email") == nil
}

// EmailLookup answers uniqueness checks against the current store state.
// excludeID is the id of the record being validated, 0 for new records.
type EmailLookup interface {
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
}

// UserCandidate is the field set checked before persisting a user. Pointer
// fields distinguish "absent" from "empty" so partial updates only re-check
// what they touch; NewRecord forces password presence.
type UserCandidate struct {
	ID                   uint
	Email                string
	Password             *string
	PasswordConfirmation *string
	NewRecord            bool
}

// User validates a user candidate. Rule violations come back in Errors; the
// returned error is reserved for store failures during the uniqueness check.
func User(ctx context.Context, lookup EmailLookup, u UserCandidate) (Errors, error) {
	errs := Errors{}

	email := strings.TrimSpace(u.Email)
	switch {
	case email == "":
		errs.Add("email", MsgBlank)
	case !emailFormatOK(email):
		errs.Add("email", MsgInvalid)
	default:
		taken, err := lookup.EmailTaken(ctx, email, u.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", MsgTaken)
		}
	}

	if u.NewRecord && (u.Password == nil || *u.Password == "") {
		errs.Add("password", MsgBlank)
	}
	if u.Password != nil && u.PasswordConfirmation != nil && *u.Password != *u.PasswordConfirmation {
		errs.Add("password_confirmation", MsgConfirmation)
	}

	return errs, nil
}

// ProductCandidate is the field set checked before persisting a product. For
// partial updates the caller merges the incoming attributes over the stored
// record first, so the candidate is always a complete picture.
type ProductCandidate struct {
	Title  string
	Price  Price
	UserID uint
}

// Product validates a product candidate. Pure; needs no store state.
func Product(p ProductCandidate) Errors {
	errs := Errors{}

	if strings.TrimSpace(p.Title) == "" {
		errs.Add("title", MsgBlank)
	}

	switch {
	case !p.Price.Present():
		errs.Add("price", MsgBlank)
	default:
		d, err := p.Price.Decimal()
		if err != nil {
			errs.Add("price", MsgNotANumber)
		} else if d.IsNegative() {
			errs.Add("price", MsgNotNegative)
		}
	}

	if p.UserID == 0 {
		errs.Add("user_id", MsgBlank)
	}

	return errs
}
