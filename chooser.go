package pzip

import (
	"path/filepath"
	"strings"
)

// method identifies the ZIP compression method ultimately written to the
// wire. These are the APPNOTE-registered method codes this engine is
// willing to produce.
type method uint16

const (
	methodStore method = 0
	methodFlate method = 8
	methodZstd  method = 93
	methodXz    method = 95
)

// Decision is the Chooser's verdict for one entry: a method plus whatever
// parameter that method needs.
type Decision struct {
	Method method
	Level  int // deflate/xz compression level or zstd speed tier
}

// StoreDecision is returned by the built-in chooser's default rule and by
// the zero-length-file and downgrade paths.
var StoreDecision = Decision{Method: methodStore}

// DeflateDecision builds a Decision for raw DEFLATE at the given level.
func DeflateDecision(level int) Decision { return Decision{Method: methodFlate, Level: level} }

// ZstdDecision builds a Decision for a single-frame zstd entry.
func ZstdDecision(level int) Decision { return Decision{Method: methodZstd, Level: level} }

// XzDecision builds a Decision for a single-frame xz entry. XZ is a
// registered APPNOTE method (95) that round-trips through any conforming
// reader exactly like Zstd, so it is the one chooser method added beyond
// Store/Deflate/Zstd.
func XzDecision(preset int) Decision { return Decision{Method: methodXz, Level: preset} }

// fanOut reports whether this method's payload is split into multiple
// chunk jobs run across the worker pool. Store and Deflate fan out
// (Store purely for parallel CRC, Deflate for parallel compression too);
// Zstd and Xz run as one job on one worker because neither has a
// sync-flush primitive that lets independently compressed chunks
// concatenate into a single valid stream.
func (m method) fanOut() bool { return m == methodStore || m == methodFlate }

// rule is one declarative Chooser rule. Exactly one of ext/glob/minSize is
// meaningful per rule; rules are evaluated in order and the first match
// wins.
type rule struct {
	ext      string // case-insensitive extension match, including the dot
	glob     string // glob against the full archive name
	minSize  int64  // matches when the sample is at least this many bytes
	decision Decision
}

// Chooser is pure policy: given a filename and a sniff of its first bytes,
// it selects a compression method or store. It is also consulted after
// compression to decide whether to downgrade an entry to Store.
type Chooser struct {
	rules    []rule
	fallback Decision
}

// NewChooser builds a Chooser from declarative rules, evaluated in order.
// A rule with a non-empty Ext matches on (case-insensitive) file
// extension; a rule with a non-empty Glob matches filepath.Match against
// the archive name; a rule with MinSize > 0 matches when the sample is at
// least that many bytes long (and no smaller-scoped field is set).
// fallback is used when no rule matches.
func NewChooser(rules []ChooserRule, fallback Decision) *Chooser {
	c := &Chooser{fallback: fallback}
	for _, r := range rules {
		c.rules = append(c.rules, rule{ext: strings.ToLower(r.Ext), glob: r.Glob, minSize: r.MinSize, decision: r.Decision})
	}
	return c
}

// ChooserRule is the declarative input to NewChooser.
type ChooserRule struct {
	Ext      string
	Glob     string
	MinSize  int64
	Decision Decision
}

// Decide returns the compression decision for an entry given its archive
// name and up to the first 16 KiB of its payload.
func (c *Chooser) Decide(name string, sample []byte) Decision {
	for _, r := range c.rules {
		switch {
		case r.ext != "":
			if strings.ToLower(filepath.Ext(name)) == r.ext {
				return r.decision
			}
		case r.glob != "":
			if ok, _ := filepath.Match(r.glob, name); ok {
				return r.decision
			}
		case r.minSize > 0:
			if int64(len(sample)) >= r.minSize {
				return r.decision
			}
		}
	}
	return c.fallback
}

// minStoreSize is the threshold below which the default chooser stores
// rather than deflates: 5 KiB, below which deflating rarely earns back its
// own overhead.
const minStoreSize = 5 * 1024

// defaultStoredExts lists extensions the default chooser treats as already
// compressed, where a second compression pass would only waste cycles.
var defaultStoredExts = []string{
	".zip", ".gz", ".bz2", ".xz", ".7z", ".zst",
	".png", ".jpg", ".jpeg", ".webp", ".mp4", ".mp3",
}

// DefaultChooser is the built-in policy: store already-compressed media
// and archive formats regardless of size, deflate anything at least
// minStoreSize bytes, and store everything smaller (deflating a tiny file
// rarely earns back its own overhead). Rules are evaluated in the order
// given, first match wins; the size rule is a minimum-size predicate, so
// small samples fall through to the Store fallback.
func DefaultChooser() *Chooser {
	c := &Chooser{fallback: StoreDecision}
	for _, ext := range defaultStoredExts {
		c.rules = append(c.rules, rule{ext: ext, decision: StoreDecision})
	}
	c.rules = append(c.rules, rule{minSize: minStoreSize, decision: DeflateDecision(6)})
	return c
}

// downgrade prefers the uncompressed bytes when compression made the entry
// no smaller.
func downgrade(original Decision, compressedSize, uncompressedSize uint64) Decision {
	if original.Method == methodStore {
		return original
	}
	if compressedSize >= uncompressedSize {
		return StoreDecision
	}
	return original
}
