package upload

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/reamshq/statement-parser/constants"
	"github.com/reamshq/statement-parser/internal/common"
)

// FileMeta describes an uploaded statement file before its bytes are read.
type FileMeta struct {
	Filename    string
	ContentType string
	Size        int64
}

// Validator rejects uploads that are not plausible PDF statements: wrong
// extension, wrong MIME type, over the size cap, or missing the %PDF magic.
type Validator struct {
	maxFileSize int64
}

func NewValidator(maxFileSizeMB int) *Validator {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = constants.MaxFileSizeMBDefault
	}
	return &Validator{maxFileSize: int64(maxFileSizeMB) * 1024 * 1024}
}

// ValidateUpload checks file metadata. Size may be zero when the transport
// did not report it; ValidateContent re-checks against the actual bytes.
func (v *Validator) ValidateUpload(meta FileMeta) error {
	if meta.Filename == "" {
		return &common.ValidationError{Field: "file", Message: "no file uploaded"}
	}
	ext := constants.NormalizeExt(filepath.Ext(meta.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return &common.ValidationError{Field: "file", Message: "invalid file type, only PDF files are allowed"}
	}
	if meta.ContentType != "" {
		if _, ok := constants.AllowedMIMETypes[meta.ContentType]; !ok {
			return &common.ValidationError{Field: "file", Message: fmt.Sprintf("unsupported content type %q", meta.ContentType)}
		}
	}
	if meta.Size > v.maxFileSize {
		return &common.ValidationError{Field: "file", Message: fmt.Sprintf("file too large, maximum size is %dMB", v.maxFileSize/(1024*1024))}
	}
	return nil
}

// ValidateContent checks the actual bytes against the size cap and the PDF
// magic-number signature.
func (v *Validator) ValidateContent(data []byte) error {
	if int64(len(data)) > v.maxFileSize {
		return &common.ValidationError{Field: "file", Message: fmt.Sprintf("file too large, maximum size is %dMB", v.maxFileSize/(1024*1024))}
	}
	if !bytes.HasPrefix(data, constants.PDFMagic) {
		return &common.ValidationError{Field: "file", Message: "invalid PDF file content"}
	}
	return nil
}
