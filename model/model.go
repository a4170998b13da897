// Package model contains the types that represent gateway runtime artifacts and where they are stored
package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// ContentType is the content type every artifact is stored with
	ContentType = "application/json"

	artifactKeySuffix = ".json"
	bucketRegexStr    = "^[a-z0-9][a-z0-9\\.\\-]{1,61}[a-z0-9]$"
)

// Metadata keys attached to every stored artifact. These are the only query mechanism,
// so they must not change.
const (
	MetadataAPIName            = "apiName"
	MetadataVersion            = "version"
	MetadataTenantDomain       = "tenantDomain"
	MetadataAPIID              = "apiId"
	MetadataGatewayInstruction = "gatewayInstruction"
	MetadataGatewayEnv         = "gatewayEnv"
)

// Gateway instructions
const (
	InstructionPublish = "publish"
	InstructionRemove  = "remove"
	InstructionAny     = "any"
)

// Keys of the attribute map returned when looking an artifact up by name/version/tenant
const (
	AttributeAPIID = "apiId"
	AttributeLabel = "label"
)

var (
	bucketRegex = regexp.MustCompile(bucketRegexStr)
)

// Artifact is a gateway runtime artifact. Raw holds the document exactly as it was received.
type Artifact struct {
	APIID        string
	Name         string
	Version      string
	TenantDomain string

	Raw []byte
}

// String returns a human readable string representing this artifact
func (a *Artifact) String() string {
	return fmt.Sprintf("%s/%s-%s (%s)", a.TenantDomain, a.Name, a.Version, a.APIID)
}

// Metadata returns the object metadata for this artifact when stored for label with instruction
func (a *Artifact) Metadata(label, instruction string) map[string]string {
	return map[string]string{
		MetadataAPIName:            a.Name,
		MetadataVersion:            a.Version,
		MetadataTenantDomain:       a.TenantDomain,
		MetadataAPIID:              a.APIID,
		MetadataGatewayInstruction: instruction,
		MetadataGatewayEnv:         label,
	}
}

// ParseArtifact extracts the identifying fields of a gateway runtime artifact. The payload
// itself is not modified.
func ParseArtifact(payload []byte) (*Artifact, error) {
	if !gjson.ValidBytes(payload) {
		return nil, &ValidationError{Field: "artifact", Reason: "not a valid JSON document"}
	}

	document := gjson.ParseBytes(payload)
	if !document.IsObject() {
		return nil, &ValidationError{Field: "artifact", Reason: "must be a JSON object"}
	}

	fields := []string{MetadataAPIID, "name", MetadataVersion, MetadataTenantDomain}
	values := make([]string, len(fields))
	for i, field := range fields {
		value := document.Get(field)
		if !value.Exists() {
			return nil, &ValidationError{Field: field, Reason: "is missing"}
		}
		if value.Type != gjson.String {
			return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be a string, got %s", value.Type)}
		}
		values[i] = value.String()
	}

	if values[0] == "" {
		return nil, &ValidationError{Field: MetadataAPIID, Reason: "must not be empty"}
	}

	return &Artifact{
		APIID:        values[0],
		Name:         values[1],
		Version:      values[2],
		TenantDomain: values[3],
		Raw:          payload,
	}, nil
}

// NormalizeLabel turns a gateway label into a bucket name: surrounding control characters and
// spaces are trimmed, remaining whitespace is removed and the result is lower cased.
func NormalizeLabel(label string) string {
	trimmed := strings.TrimFunc(label, func(r rune) bool {
		return r <= ' '
	})

	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return -1
		}
		return r
	}, trimmed)

	return strings.ToLower(stripped)
}

// Location is where an artifact is stored in the object store
type Location struct {
	Bucket string
	Key    string
}

// String returns the location as bucket/key
func (l Location) String() string {
	return l.Bucket + "/" + l.Key
}

// BucketForLabel returns the bucket used for a gateway label
func BucketForLabel(label string) (string, error) {
	bucket := NormalizeLabel(label)
	if !bucketRegex.MatchString(bucket) {
		return "", &ValidationError{
			Field:  "label",
			Reason: fmt.Sprintf("%q normalizes to %q which does not match %s", label, bucket, bucketRegexStr),
		}
	}
	return bucket, nil
}

// KeyForAPI returns the object key of the artifact for apiID
func KeyForAPI(apiID string) string {
	return apiID + artifactKeySuffix
}

// NewLocation returns the location of the artifact for apiID stored for label
func NewLocation(apiID, label string) (Location, error) {
	if apiID == "" {
		return Location{}, &ValidationError{Field: MetadataAPIID, Reason: "must not be empty"}
	}

	bucket, err := BucketForLabel(label)
	if err != nil {
		return Location{}, err
	}

	return Location{Bucket: bucket, Key: KeyForAPI(apiID)}, nil
}

// MetadataValue looks key up in metadata ignoring case. Object stores canonicalize user metadata
// names on read, e.g. gatewayInstruction comes back as Gatewayinstruction.
func MetadataValue(metadata map[string]string, key string) (string, bool) {
	if value, ok := metadata[key]; ok {
		return value, true
	}

	for k, value := range metadata {
		if strings.EqualFold(k, key) {
			return value, true
		}
	}

	return "", false
}
