package archive

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseLocation parses an archive_backup_location of the form
// "s3://bucket/prefix" into a Config's Bucket/KeyPrefix, the form
// SPEC_FULL.md §6 specifies. ok is false if location does not use the s3
// scheme (e.g. it names a local filesystem path instead).
func ParseLocation(location string) (cfg Config, ok bool, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return Config{}, false, fmt.Errorf("archive: parse location %q: %w", location, err)
	}
	if u.Scheme != "s3" {
		return Config{}, false, nil
	}

	prefix := strings.TrimPrefix(u.Path, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return Config{Bucket: u.Host, KeyPrefix: prefix}, true, nil
}
