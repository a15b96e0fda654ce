// Package scan extracts candidate medicine-record fields from a photo of a
// medicine box or label. It is an optional convenience on top of the normal
// add path: a scan only ever produces a proposal, which still passes the
// store's validation and identity policy before anything is persisted.
package scan

import (
	"context"
	"io"
)

// LabelPrompt is the shared prompt used by all scanner adapters.
const LabelPrompt = `Read the medicine box or label in this photo.
Respond with exactly one line in the format: name | strength | form | expiry
Use YYYY-MM-DD for the expiry date. Leave a field blank if it is not visible.`

// Scanner reads an image and proposes record fields from it.
type Scanner interface {
	Scan(ctx context.Context, r io.Reader, mimeType string) (*Result, error)
}

// Result is the scanner's proposal plus the raw model output for debugging.
type Result struct {
	Label       Label
	RawResponse string
}

// Label holds the fields a scanner may recognize on a package. Expiry is
// text in YYYY-MM-DD form when the model followed the prompt; the add path
// validates it either way.
type Label struct {
	Name     string
	Strength string
	Form     string
	Expiry   string
}
