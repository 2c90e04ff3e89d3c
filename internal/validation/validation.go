package validation

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-scanner/internal/models"
	"fjacquet/statement-scanner/internal/scanerror"
)

// IsValidInputFile checks that path exists and is a regular file.
func IsValidInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported.
func IsValidOutputFormat(format string) error {
	switch format {
	case "csv", "json", "xml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'csv', 'json', 'xml'", format)
	}
}

// IsValidReportFormat checks if the given summary format is supported.
func IsValidReportFormat(format string) error {
	switch format {
	case "json", "xml":
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s. Supported formats are 'json', 'xml'", format)
	}
}

// DetectMIMEType returns the media type of a document. The declared type
// wins unless it is empty or the generic application/octet-stream;
// otherwise the file extension, then the content, decide.
func DetectMIMEType(name, declared string, data []byte) string {
	if declared := normalizeMIMEType(declared); declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); byExt != "" {
		return normalizeMIMEType(byExt)
	}
	return normalizeMIMEType(http.DetectContentType(data))
}

func normalizeMIMEType(value string) string {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mediaType
}

// ValidateDocument accepts PDF documents only.
func ValidateDocument(name, mimeType string, data []byte) error {
	if normalizeMIMEType(mimeType) != models.MIMETypePDF {
		return &scanerror.ValidationError{FileName: name, MIMEType: mimeType, Reason: "not a PDF document"}
	}
	if len(data) == 0 {
		return &scanerror.ValidationError{FileName: name, MIMEType: mimeType, Reason: "document is empty"}
	}
	return nil
}
