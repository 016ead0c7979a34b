package nonesafe

// NumberMode dictates how numbers are interpreted.
type NumberMode int

const (
	NumberJSONNumber NumberMode = iota // Preserve json.Number (default).
	NumberFloat64                      // Fast mode (with potential precision loss).
)

// Severity expresses the severity level for duplicate keys.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn (reported to ParseOpt.OnIssue) or Error.
}

// ParseOpt bundles options for ParseFrom, StreamParse and ParseYAML.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int   // 0 means unlimited.
	MaxBytes   int64 // 0 means unlimited.
	// OnIssue receives non-fatal issues such as duplicate key warnings.
	OnIssue func(Issue)
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}
