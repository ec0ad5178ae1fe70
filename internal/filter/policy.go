package filter

import (
	"fmt"

	"github.com/user/linkstitcher/internal/db"
)

// ErrorPolicy decides what happens to a preview whose check failed.
type ErrorPolicy string

const (
	// ExcludeOnError drops failed checks from the batch.
	ExcludeOnError ErrorPolicy = "exclude"
	// IncludeOnError keeps failed checks.
	IncludeOnError ErrorPolicy = "include"
	// FailOnError aborts the batch on the first failed check.
	FailOnError ErrorPolicy = "fail"
)

func ParsePolicy(s string) (ErrorPolicy, error) {
	switch p := ErrorPolicy(s); p {
	case ExcludeOnError, IncludeOnError, FailOnError:
		return p, nil
	case "":
		return ExcludeOnError, nil
	default:
		return "", fmt.Errorf("unknown filter error policy: %q", s)
	}
}

// Keep returns the previews that passed plus, depending on policy, those
// whose check failed. The failed verdicts are always returned for reporting.
func Keep(verdicts []Verdict, policy ErrorPolicy) (kept []*db.Preview, failed []Verdict, err error) {
	for _, v := range verdicts {
		if v.Err != nil {
			failed = append(failed, v)
			switch policy {
			case FailOnError:
				return nil, failed, v.Err
			case IncludeOnError:
				kept = append(kept, v.Preview)
			}
			continue
		}
		if v.Passed {
			kept = append(kept, v.Preview)
		}
	}
	return kept, failed, nil
}
