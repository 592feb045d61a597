package domain

import "context"

// Vision is the port for an external vision-language model.
// Describe returns the model's raw text reply.
type Vision interface {
	Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
