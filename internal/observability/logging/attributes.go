package logging

import (
	"log/slog"
	"net/url"
)

// RedactedURI is a connection string that hides its password when logged
type RedactedURI string

// LogValue implements slog.LogValuer so Mongo credentials stay out of the logs
func (s RedactedURI) LogValue() slog.Value {
	u, err := url.Parse(string(s))
	if err != nil {
		return slog.StringValue("<unparseable uri>")
	}
	return slog.StringValue(u.Redacted())
}

// RedactURI returns a safely loggable connection string
func RedactURI(s string) slog.LogValuer {
	return RedactedURI(s)
}

// Principal returns the attributes identifying the caller of a request
func Principal(id, role string) slog.Attr {
	return slog.Group("principal", slog.String("id", id), slog.String("role", role))
}
