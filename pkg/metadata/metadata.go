// Package metadata signs generated post files so a later run can tell a
// complete file from a truncated one.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the signature block.
	TagStart = "<!-- DEVIMPORT_START"
	// TagEnd is the end of the signature block.
	TagEnd = "DEVIMPORT_END -->"
)

// Signature verification errors.
var (
	ErrNoMetadataBlock = errors.New("no signature block found")
	ErrNoHashFound     = errors.New("no hash found in signature block")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata is the content of a signature block.
type Metadata struct {
	ImportedAt time.Time
	Hash       string
	SourceID   int64
}

// metadataRegex matches the entire signature block including tags.
var metadataRegex = regexp.MustCompile(`(?s)\n*<!--\s*DEVIMPORT_START\s*\n(.*?)\n\s*DEVIMPORT_END\s*-->\n*`)

// Extract removes the signature block from content and returns both the
// parsed block (nil when absent) and the remaining content, which is what the
// hash covers.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	clean := metadataRegex.ReplaceAllString(content, "\n")
	clean = strings.TrimRight(clean, "\n")

	if len(match) < 2 {
		return nil, clean
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "SOURCE_ID":
			if id, err := strconv.ParseInt(val, 10, 64); err == nil {
				meta.SourceID = id
			}
		case "IMPORTED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.ImportedAt = t
			}
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, clean
}

// CalculateHash computes the SHA-256 of content with any signature block removed.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign appends a fresh signature block, replacing any existing one.
func Sign(content string, sourceID int64, now time.Time) string {
	_, clean := Extract(content)

	block := fmt.Sprintf("\n\n%s\nSOURCE_ID: %d\nIMPORTED_AT: %s\nHASH: %s\n%s\n",
		TagStart, sourceID, now.UTC().Format(time.RFC3339), CalculateHash(clean), TagEnd)

	return clean + block
}

// Verify checks that content matches the hash in its signature block.
func Verify(content string) (bool, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return false, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return true, nil
}
