// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package identity

import (
	"encoding/hex"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

const (
	namePrefix = "rag_"

	// fingerprintBytes is the BLAKE2b digest width used for the name
	// fingerprint. 4 bytes = 8 hex characters.
	fingerprintBytes = 4

	// readableMaxLen bounds the human-readable fragment of a name.
	readableMaxLen = 50

	// maxNameLen is the backing store's identifier length limit.
	maxNameLen = 255
)

// CollectionName generates a storage-safe collection name for a source key.
// The result is deterministic: the same key always yields the same name.
//
// Names have the form "rag_<readable>_<fingerprint>" where the readable
// fragment is the URL host or the file stem and the fingerprint is the
// first 8 hex characters of a BLAKE2b digest of the full key. The
// fingerprint keeps names unique when readable fragments collide.
func CollectionName(sourceKey string) string {
	name := namePrefix + readableFragment(sourceKey) + "_" + fingerprint(sourceKey)

	// Qdrant identifiers: letters, digits and underscore only.
	name = sanitize(name)
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

// fingerprint returns the first 8 hex characters of a BLAKE2b digest.
func fingerprint(sourceKey string) string {
	h, _ := blake2b.New(fingerprintBytes, nil)
	h.Write([]byte(sourceKey))
	return hex.EncodeToString(h.Sum(nil))
}

// readableFragment extracts a human-readable piece of the source key:
// the host for URLs, the file stem (or directory name) for paths.
func readableFragment(sourceKey string) string {
	if host := urlHost(sourceKey); host != "" {
		return truncate(host, readableMaxLen)
	}

	base := filepath.Base(sourceKey)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return truncate(base, readableMaxLen)
}

// urlHost returns the host component if the key parses as an absolute URL.
func urlHost(sourceKey string) string {
	if !strings.Contains(sourceKey, "://") {
		return ""
	}
	u, err := url.Parse(sourceKey)
	if err != nil {
		return ""
	}
	return u.Host
}

func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
