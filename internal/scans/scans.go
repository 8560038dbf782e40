// Package scans validates uploaded scan files before they are stored.
package scans

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Supported upload formats: mesh scans and DICOM studies.
var allowedExtensions = map[string]string{
	".stl": "model/stl",
	".obj": "model/obj",
	".dcm": "application/dicom",
}

// Allowed reports whether the filename carries a supported extension
// and returns the content type to store it under.
func Allowed(filename string) (string, bool) {
	ct, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// Metadata is what we can pull out of a DICOM scan header.
type Metadata struct {
	PatientName string
	Modality    string
}

// InspectDICOM parses a .dcm payload to confirm it really is DICOM and
// extracts the patient name and modality when present. Mesh formats
// are stored as-is and never pass through here.
func InspectDICOM(data []byte) (*Metadata, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("not a valid DICOM file: %w", err)
	}

	meta := &Metadata{}
	if elem, err := ds.FindElementByTag(tag.PatientName); err == nil {
		meta.PatientName = firstString(elem.Value.GetValue())
	}
	if elem, err := ds.FindElementByTag(tag.Modality); err == nil {
		meta.Modality = firstString(elem.Value.GetValue())
	}
	return meta, nil
}

func firstString(v interface{}) string {
	if vals, ok := v.([]string); ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
