package openai

import (
	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a request locally before it is sent: the model must
// be named and the messages sequence must be non-empty. A compliant target
// rejects the same payloads with HTTP 400, so the client never calls this
// implicitly; conformance scenarios send invalid requests on purpose.
func ValidateRequest(request *ChatRequest) error {
	if request == nil {
		return errors.New("chat request is nil")
	}
	if err := validate.Struct(request); err != nil {
		return errors.Wrap(err, "invalid chat request")
	}
	return nil
}
