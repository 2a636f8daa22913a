package harmonize

import (
	"regexp"
	"strings"
)

// AttributeKind tags a free-text variant attribute after classification
type AttributeKind int

const (
	// AttributeGeneric is descriptive free text (scent, color, flavor)
	AttributeGeneric AttributeKind = iota
	// AttributeVolume is a size-like token such as "500ml" or "1.5L"
	AttributeVolume
)

// volumePattern matches digits immediately followed by a unit token. This
// is a heuristic, not an exhaustive parser: attribute strings with no
// volume-like token are fully assigned to the generic slot.
var volumePattern = regexp.MustCompile(`(?i)\b\d+(\.\d+)?\s*(ml|l|g|kg|oz)\b`)

// ClassifyAttribute tags one attribute string
func ClassifyAttribute(s string) AttributeKind {
	if volumePattern.MatchString(s) {
		return AttributeVolume
	}
	return AttributeGeneric
}

// SplitAttributes distributes raw attribute strings into the variant's two
// slots: the first volume-like string fills the volume slot and the first
// remaining string fills the generic (scent) slot. Later strings of the
// same kind are dropped, matching the dimension's two-attribute shape.
func SplitAttributes(attrs []string) (scent, volume string) {
	for _, raw := range attrs {
		a := strings.TrimSpace(raw)
		if a == "" {
			continue
		}
		if ClassifyAttribute(a) == AttributeVolume {
			if volume == "" {
				volume = a
			}
			continue
		}
		if scent == "" {
			scent = a
		}
	}
	return scent, volume
}
