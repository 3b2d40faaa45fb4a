package offgate

import (
	"fmt"
	"strings"
)

// PrecacheFailure records one failed precache fetch during install.
type PrecacheFailure struct {
	URL string
	Err error
}

// InstallError aggregates precache failures when a strict install aborts.
type InstallError struct {
	Failures []PrecacheFailure
	Total    int
}

func (e *InstallError) Error() string {
	if len(e.Failures) == 0 {
		return "offgate: install failed"
	}
	urls := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		urls = append(urls, f.URL)
	}
	return fmt.Sprintf("offgate: install failed: %d of %d precache fetches failed (%s): %v",
		len(e.Failures), e.Total, strings.Join(urls, ", "), e.Failures[0].Err)
}

func (e *InstallError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}
