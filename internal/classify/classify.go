// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package classify implements the pure entry-classification rules shared by
// the shrinker (internal/shrink) and the analyzer (internal/analyze).
package classify

import (
	"strings"
)

// Category is the closed set of archive-entry classifications.
type Category int

const (
	Class Category = iota
	Resource
	NativeLib
	Metadata
	ClojureSource
	JavaSource
)

func (c Category) String() string {
	switch c {
	case Class:
		return "Class"
	case Resource:
		return "Resource"
	case NativeLib:
		return "NativeLib"
	case Metadata:
		return "Metadata"
	case ClojureSource:
		return "ClojureSource"
	case JavaSource:
		return "JavaSource"
	default:
		return "Unknown"
	}
}

// Classify maps an archive entry name to its category using the priority
// fixed order: .class, then Clojure sources, then .java,
// then native libs, then META-INF/ prefix, else Resource.
func Classify(name string) Category {
	switch {
	case strings.HasSuffix(name, ".class"):
		return Class
	case strings.HasSuffix(name, ".clj"), strings.HasSuffix(name, ".cljc"), strings.HasSuffix(name, ".cljs"):
		return ClojureSource
	case strings.HasSuffix(name, ".java"):
		return JavaSource
	case strings.HasSuffix(name, ".so"), strings.HasSuffix(name, ".dylib"), strings.HasSuffix(name, ".dll"), strings.HasSuffix(name, ".jnilib"):
		return NativeLib
	case strings.HasPrefix(name, "META-INF/"):
		return Metadata
	default:
		return Resource
	}
}

// ExtractPackage returns the first up-to-3 directory segments of name (the
// final file name is not counted) joined by ".", or "(root)" if name has no
// slash. Used only by the analyzer for grouping.
func ExtractPackage(name string) string {
	parts := strings.Split(name, "/")
	depth := len(parts) - 1
	if depth > 3 {
		depth = 3
	}
	if depth <= 0 {
		return "(root)"
	}
	return strings.Join(parts[:depth], ".")
}

// DetectClojureNS returns the Clojure namespace for a compiled "__init.class"
// entry, or ("", false) if name doesn't match that pattern.
func DetectClojureNS(name string) (string, bool) {
	stem, ok := cutSuffix(name, "__init.class")
	if !ok {
		return "", false
	}
	return strings.ReplaceAll(stem, "/", "."), true
}

func cutSuffix(s, suffix string) (string, bool) {
	if !strings.HasSuffix(s, suffix) {
		return s, false
	}
	return s[:len(s)-len(suffix)], true
}

// ShouldSkip reports whether the shrinker must drop the named entry
// It is total and deterministic, and implies
// ¬essential(name): class files, Clojure source, MANIFEST.MF, and legal
// notices never match.
func ShouldSkip(name string) bool {
	if strings.HasPrefix(name, "META-INF/maven/") {
		return true
	}

	if rest, ok := cutPrefix(name, "META-INF/"); ok {
		if strings.HasSuffix(rest, ".SF") || strings.HasSuffix(rest, ".DSA") ||
			strings.HasSuffix(rest, ".RSA") || strings.HasSuffix(rest, ".EC") {
			return true
		}
	}

	if strings.HasSuffix(name, ".java") {
		return true
	}

	if strings.HasPrefix(name, "META-INF/leiningen/") || name == "project.clj" {
		return true
	}

	if strings.HasPrefix(name, "META-INF/") {
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".html") {
			base := lower
			if idx := strings.LastIndex(lower, "/"); idx != -1 {
				base = lower[idx+1:]
			}
			if !strings.HasPrefix(base, "license") && !strings.HasPrefix(base, "notice") {
				return true
			}
		}
	}

	return false
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
