package crash

import (
	"net/url"
	"strings"

	"djdeploy/internal/browser"
	"djdeploy/internal/i18n"
	"djdeploy/internal/logger"
)

// Submitter pre-fills an issue on the tracker through the user's browser.
type Submitter struct {
	BaseURL string
	Opener  browser.Opener
}

// IssueURL returns BaseURL with title and body as query parameters.
func (s Submitter) IssueURL(title, body string) string {
	params := url.Values{}
	params.Set("title", title)
	params.Set("body", body)
	sep := "?"
	if strings.Contains(s.BaseURL, "?") {
		sep = "&"
	}
	return s.BaseURL + sep + params.Encode()
}

// Submit opens the pre-filled issue page and returns its URL. Whether a
// browser actually appeared is not checked.
func (s Submitter) Submit(title, body string) string {
	u := s.IssueURL(title, body)
	if s.Opener == nil {
		return u
	}
	if err := s.Opener.Open(u); err != nil {
		logger.Log.Debug().Err(err).Msg(i18n.T(i18n.MsgLogBrowserOpenFailed))
		return u
	}
	logger.Log.Info().Str("title", title).Msg(i18n.T(i18n.MsgLogReportSubmitted))
	return u
}
