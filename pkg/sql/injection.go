package sql

import (
	"sort"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a request value that tripped the injection
// screen before reaching the warehouse.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	ParamName   string // Name of the parameter that failed the check
	Value       string // The string value that was flagged
}

// CheckParameterForInjection runs libinjection over a request-supplied value
// such as a table name or LOT identifier. Non-string values cannot carry an
// injection payload and always pass.
//
// Returns nil when the value is clean. The identifier allowlist still applies
// afterwards; this screen only rejects values libinjection can fingerprint.
func CheckParameterForInjection(paramName string, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if !isSQLi {
		return nil
	}

	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		ParamName:   paramName,
		Value:       strValue,
	}
}

// CheckAllParameters screens every request filter value and returns one
// result per flagged parameter, in parameter-name order so log output is
// stable. An empty slice means all values are clean.
func CheckAllParameters(params map[string]any) []*InjectionCheckResult {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*InjectionCheckResult
	for _, name := range names {
		if result := CheckParameterForInjection(name, params[name]); result != nil {
			results = append(results, result)
		}
	}
	return results
}
