package mock

import "github.com/fwojciec/docchat"

var _ docchat.ScriptFinder = (*ScriptFinder)(nil)

// ScriptFinder is a mock implementation of docchat.ScriptFinder.
type ScriptFinder struct {
	FindScriptsFn func(html string, pageURL string) ([]string, error)
}

func (f *ScriptFinder) FindScripts(html string, pageURL string) ([]string, error) {
	return f.FindScriptsFn(html, pageURL)
}
