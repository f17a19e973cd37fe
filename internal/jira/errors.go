package jira

import "fmt"

// maxBodyExcerpt caps how much of a response body is carried in errors.
const maxBodyExcerpt = 200

// StatusError reports a non-2xx response from the Jira API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jira returned status %d: %s", e.Status, e.Body)
}

// ParseError reports a Jira response body that was not valid JSON.
type ParseError struct {
	Msg  string
	Body string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jira response is not JSON: %s: %s", e.Msg, e.Body)
}

func excerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		body = body[:maxBodyExcerpt]
	}
	return string(body)
}
