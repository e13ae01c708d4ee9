package invoke

import (
	"errors"
	"regexp"
)

// Sentinel errors produced by Classify. There is no single reliable way to
// know why an interpreter invocation failed; these are recognized from output
// text, which is the only signal available.
var (
	ErrAccessDenied        = errors.New("access denied")
	ErrUserAborted         = errors.New("operation canceled by user")
	ErrCommandNotFound     = errors.New("command not found")
	ErrInterpreterDisabled = errors.New("interpreter disabled by policy")
)

// classRules maps sentinel errors to the output patterns that imply them.
// The patterns are intended to be mutually exclusive.
var classRules = []struct {
	err      error
	patterns []*regexp.Regexp
}{
	{ErrAccessDenied, compileAll(
		`(?i)\baccess.*?not\s+allowed\b`,
		`(?i)\baccess.*?denied\b`,
		`(?i)PermissionDenied(?:Exception)?`,
		`(?i)SecurityException`,
	)},
	{ErrUserAborted, compileAll(
		`(?i)\boperation.*?cancell?ed\b`,
		`(?i)\bcancell?ed\s+by.*?user\b`,
	)},
	{ErrCommandNotFound, compileAll(
		`(?i)\bthe\s+term.*?is\s+not\s+recogni[sz]ed\b`,
		`(?i)\bnot\s+recogni[sz]ed\s+as\s+the\s+name\s+of\b`,
		`(?i)CommandNotFound(?:Exception)?`,
	)},
	{ErrInterpreterDisabled, compileAll(
		`(?i)\b(?:program.*?blocked)?.*?group\s+policy\b`,
		`(?i)\b(?:contact\s+your\s+)?system\s+admins?(?:istrators?)?\b`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// Classify inspects interpreter output and returns the sentinel error it
// implies, or nil when nothing matches. Callers branch with errors.Is.
func Classify(output string) error {
	for _, rule := range classRules {
		for _, re := range rule.patterns {
			if re.MatchString(output) {
				return rule.err
			}
		}
	}
	return nil
}
