package wormhole

import (
	"fmt"
	"strings"

	"github.com/status-im/keycard-go/hexutils"
)

// hexString renders b the way the validator and debug dumps display
// anchors and record keys: as a hex string.
func hexString(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	return "0x" + hexutils.BytesToHex(b)
}

// dump renders a leaf's anchor, size and record keys for diagnostic
// output. Nothing in the module calls it.
func (l *leaf) dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "leaf anchor=%s size=%d/%d sorted=%d left=%v right=%v\n",
		hexString(l.anchor.b), l.size, l.capacity, l.sortedCount, l.left, l.right)
	for i := 0; i < l.size; i++ {
		fmt.Fprintf(&sb, "  [%d] key=%s\n", i, hexString(l.records[i].Enc.b))
	}
	return sb.String()
}
