package extract

import "fmt"

// UnsupportedFormatError indicates the uploaded document type is not one
// of PDF, DOC or DOCX.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %q (use PDF, DOC or DOCX)", e.Format)
}

// CorruptDocumentError indicates the decoder failed on the payload.
type CorruptDocumentError struct {
	Format string
	Cause  error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt %s document: %v", e.Format, e.Cause)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Cause
}

// EmptyDocumentError indicates extraction produced no text.
type EmptyDocumentError struct {
	Format string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("document decoded but contained no text (%s)", e.Format)
}
