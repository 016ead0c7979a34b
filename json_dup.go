package nonesafe

import (
	eng "github.com/reoring/nonesafe/internal/engine"
)

// DetectDuplicateKeys scans the whole JSON value in src and reports every
// duplicated object key as a duplicate_key Issue, without constructing a
// record. maxIssues < 0 means no limit.
func DetectDuplicateKeys(src *Source, maxIssues int) (Issues, error) {
	if src == nil {
		return nil, singleIssue(CodeParseError, "nil source")
	}
	var iss Issues
	tokens := eng.WrapWithEnforcement(src.inner, eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink: func(si eng.SimpleIssue) {
			if maxIssues >= 0 && len(iss) >= maxIssues {
				return
			}
			iss = AppendIssues(iss, Issue{Code: si.Code, Path: si.Path, Message: si.Message})
		},
	})
	if _, err := eng.DecodeAny(tokens, eng.JSONNumber); err != nil {
		return nil, toIssues(err)
	}
	return iss, nil
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
