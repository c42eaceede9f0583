package model

import (
	"net/url"
	"strings"
	"time"
)

// Service is one onion service entry of the directory.
// Records are produced by an external monitor and treated as read-only.
//
// Optional metadata is modelled with pointers so that "absent" survives a
// JSON round trip; callers should read it through the accessor methods,
// which treat nil and "" the same way.
type Service struct {
	// Title is the human-readable display name.
	Title string `json:"title"`

	// Name is the stable identifier, unique within a snapshot.
	Name string `json:"name"`

	// OnionAddress is the service's address as stored by the monitor.
	// It usually carries an http:// scheme; see Host.
	OnionAddress string `json:"onion_address"`

	// Status is the result of the most recent check.
	Status Status `json:"status"`

	// PrevStatus is the status observed at the check before that.
	PrevStatus Status `json:"prev_status"`

	// LastChecked is nil when the service was never checked.
	LastChecked *time.Time `json:"last_checked"`

	Category        *string  `json:"category,omitempty"`
	Description     *string  `json:"description,omitempty"`
	OfficialWebsite *string  `json:"official_website,omitempty"`
	GitHub          *string  `json:"github,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref returns the pointed-to string or "".
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// CategoryText returns the category, or "" when absent.
func (s Service) CategoryText() string { return deref(s.Category) }

// DescriptionText returns the description, or "" when absent.
func (s Service) DescriptionText() string { return deref(s.Description) }

// OfficialWebsiteText returns the clearnet website, or "" when absent.
func (s Service) OfficialWebsiteText() string { return deref(s.OfficialWebsite) }

// GitHubText returns the source repository link, or "" when absent.
func (s Service) GitHubText() string { return deref(s.GitHub) }

// Class classifies the service's current status.
func (s Service) Class() DisplayClass {
	return Classify(s.Status)
}

// Checked reports whether the service has been checked at least once.
func (s Service) Checked() bool {
	return s.LastChecked != nil && !s.LastChecked.IsZero()
}

// Host returns the host of OnionAddress without scheme, port, path or
// query. The case is kept as stored so that validation still sees an
// upper-case address.
func (s Service) Host() string {
	addr := strings.TrimSpace(s.OnionAddress)
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if idx := strings.IndexAny(addr, "/?#"); idx != -1 {
		addr = addr[:idx]
	}
	return addr
}
