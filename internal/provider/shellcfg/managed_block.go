package shellcfg

import (
	"fmt"
	"strings"
)

// Managed blocks delimit the lines rig owns inside user-owned files. Edits
// replace the block in place; everything outside it is preserved verbatim.
const (
	beginMarkerFmt = "# >>> rig %s >>>"
	endMarkerFmt   = "# <<< rig %s <<<"
)

// BlockMarkers returns the begin and end marker lines for a section.
func BlockMarkers(section string) (string, string) {
	return fmt.Sprintf(beginMarkerFmt, section), fmt.Sprintf(endMarkerFmt, section)
}

// RenderBlock returns the full managed block for a section.
func RenderBlock(section, body string) string {
	begin, end := BlockMarkers(section)
	return begin + "\n" + strings.TrimRight(body, "\n") + "\n" + end
}

// HasBlock reports whether content already carries exactly this block.
func HasBlock(content, section, body string) bool {
	return strings.Contains(content, RenderBlock(section, body))
}

// UpsertBlock inserts or replaces the section's managed block and reports
// whether content changed. An existing block is replaced in place, so the
// markers never appear twice.
func UpsertBlock(content, section, body string) (string, bool) {
	block := RenderBlock(section, body)
	begin, end := BlockMarkers(section)

	beginIdx := strings.Index(content, begin)
	if beginIdx >= 0 {
		endIdx := strings.Index(content[beginIdx:], end)
		if endIdx >= 0 {
			existing := content[beginIdx : beginIdx+endIdx+len(end)]
			if existing == block {
				return content, false
			}
			return content[:beginIdx] + block + content[beginIdx+endIdx+len(end):], true
		}
		// Orphaned begin marker without end: fall through and append a
		// complete block after it rather than guessing the block's extent.
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if content != "" {
		content += "\n"
	}
	return content + block + "\n", true
}
