package normalize

import (
	"encoding/json"
	"fmt"
)

// channelDocument is the raw shape of a channel.json.
type channelDocument struct {
	SchemaVersion json.RawMessage `json:"schema_version"`
	Repositories  []string        `json:"repositories"`
	Includes      []string        `json:"includes"`
}

// repositoryDocument is the raw shape of a repository.json.
type repositoryDocument struct {
	SchemaVersion json.RawMessage `json:"schema_version"`
	Includes      []string        `json:"includes"`
	Packages      []entryJSON     `json:"packages"`
	Libraries     []entryJSON     `json:"libraries"`
}

// entryJSON is a raw package or library object.
type entryJSON struct {
	Name          string          `json:"name"`
	Details       string          `json:"details"`
	Description   string          `json:"description"`
	Author        stringOrList    `json:"author"`
	Homepage      string          `json:"homepage"`
	Issues        string          `json:"issues"`
	PreviousNames stringOrList    `json:"previous_names"`
	Releases      []releaseJSON   `json:"releases"`
}

// releaseJSON is a raw release object. Its shape is a dynamic union in the
// source format; normalization decides the kind exactly once.
type releaseJSON struct {
	Base           string          `json:"base"`
	Details        string          `json:"details"`
	Version        string          `json:"version"`
	URL            string          `json:"url"`
	Date           string          `json:"date"`
	Sha256         string          `json:"sha256"`
	SublimeText    string          `json:"sublime_text"`
	Platforms      stringOrList    `json:"platforms"`
	PythonVersions stringOrList    `json:"python_versions"`
	Tags           json.RawMessage `json:"tags"`
	Branch         string          `json:"branch"`
	Asset          string          `json:"asset"`
	Libraries      stringOrList    `json:"libraries"`
	Dependencies   stringOrList    `json:"dependencies"`
}

// tagsFilter decodes the "tags" key, which is either the boolean true
// (accept every parsable tag) or a literal prefix string.
func (r *releaseJSON) tagsFilter() (tagsAny bool, prefix string, present bool, err error) {
	if len(r.Tags) == 0 {
		return false, "", false, nil
	}

	var b bool
	if err := json.Unmarshal(r.Tags, &b); err == nil {
		if !b {
			return false, "", false, nil
		}
		return true, "", true, nil
	}

	var s string
	if err := json.Unmarshal(r.Tags, &s); err == nil {
		return false, s, true, nil
	}

	return false, "", false, fmt.Errorf("\"tags\" must be true or a prefix string")
}

// libraryNames merges the modern "libraries" key with the legacy
// "dependencies" spelling.
func (r *releaseJSON) libraryNames() []string {
	if len(r.Libraries) > 0 {
		return r.Libraries
	}
	return r.Dependencies
}

// stringOrList tolerates catalog authors writing a single string where a
// list is expected.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}

// first returns the first element, or "".
func (s stringOrList) first() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
