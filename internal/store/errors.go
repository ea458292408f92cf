package store

import (
	"errors"

	"github.com/aws/smithy-go"
)

// IsConditionalCheckFailed reports whether err is a DynamoDB
// conditional write rejection. The entity stores translate this into
// their own sentinel errors.
func IsConditionalCheckFailed(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}
