package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Field wraps err with the name of the message attribute it was produced
// for. It returns nil if err is nil. A stack trace is attached unless err
// already carries one.
//
// Field names use Go naming and dot notation for nested values, for example
// Action.Amount. Elements of a list are addressed by their index, for example
// Members.2.Signer. FieldPath builds such names.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds err, attributed to fieldName, to the errors collected so
// far. Nil values are ignored.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

// FieldPath joins the segments of a nested field name with dots.
//
//   FieldPath("Members", 2, "Signer") == "Members.2.Signer"
func FieldPath(segments ...interface{}) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, ".")
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error {
	return err.parent
}

func (err *fieldError) Field() string {
	return err.field
}

// FieldErrors returns every error attributed to fieldName. Multi errors are
// searched in all their members. Once a matching field error is found its
// causes are not searched any further.
func FieldErrors(err error, fieldName string) []error {
	var res []error
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			return append(res, err)
		}
		switch e := err.(type) {
		case unpacker:
			for _, member := range e.Unpack() {
				res = append(res, FieldErrors(member, fieldName)...)
			}
			return res
		case causer:
			err = e.Cause()
		default:
			return res
		}
	}
	return res
}

type fielder interface {
	Field() string
}
