package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/onionmonitor/internal/model"
)

// ErrUnknownFilterTag is returned by ParseFilterTag for tags outside FilterTags.
var ErrUnknownFilterTag = errors.New("unknown status filter")

// FilterTag selects which statuses are visible.
// There is deliberately no error bucket: services with an "error-<code>"
// status only show up under FilterAll.
type FilterTag string

// Filter tags.
const (
	FilterAll     FilterTag = "all"
	FilterOnline  FilterTag = "online"
	FilterOffline FilterTag = "offline"
	FilterUnknown FilterTag = "unknown"
)

// FilterTags lists every tag in display order.
var FilterTags = []FilterTag{FilterAll, FilterOnline, FilterOffline, FilterUnknown}

// ParseFilterTag converts user input into a FilterTag.
// Matching is case-insensitive; an empty string means FilterAll.
func ParseFilterTag(s string) (FilterTag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, tag := range FilterTags {
		if string(tag) == s {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of all, online, offline, unknown)", ErrUnknownFilterTag, s)
}

// MatchesSearch reports whether query occurs, case-insensitively, in the
// service's title, name, description, category or any tag.
// An empty query matches every service; absent fields never match.
func MatchesSearch(s model.Service, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)

	fields := []string{s.Title, s.Name, s.DescriptionText(), s.CategoryText()}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	for _, tag := range s.Tags {
		if tag != "" && strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// MatchesStatus reports whether the service is visible under tag.
// Only exact equality counts, so error statuses never match online,
// offline or unknown.
func MatchesStatus(s model.Service, tag FilterTag) bool {
	if tag == FilterAll {
		return true
	}
	return string(s.Status) == string(tag)
}

// Filter returns the services matching both query and tag, in input order.
// The input slice is not modified.
func Filter(services []model.Service, query string, tag FilterTag) []model.Service {
	result := make([]model.Service, 0, len(services))
	for _, s := range services {
		if MatchesSearch(s, query) && MatchesStatus(s, tag) {
			result = append(result, s)
		}
	}
	return result
}

// Counts maps each filter tag to the number of services whose status equals
// the tag literal. FilterAll holds the total. Counts ignores any search
// query; it always describes the whole collection.
func Counts(services []model.Service) map[FilterTag]int {
	counts := map[FilterTag]int{
		FilterAll:     len(services),
		FilterOnline:  0,
		FilterOffline: 0,
		FilterUnknown: 0,
	}
	for _, s := range services {
		tag := FilterTag(s.Status)
		if tag == FilterAll {
			continue
		}
		if _, ok := counts[tag]; ok {
			counts[tag]++
		}
	}
	return counts
}

// View is a filtered directory ready for rendering.
type View struct {
	Query    string            `json:"query"`
	Filter   FilterTag         `json:"filter"`
	Services []model.Service   `json:"services"`
	Counts   map[FilterTag]int `json:"counts"`
}

// NewView filters services and attaches the whole-collection counts.
func NewView(services []model.Service, query string, tag FilterTag) *View {
	return &View{
		Query:    query,
		Filter:   tag,
		Services: Filter(services, query, tag),
		Counts:   Counts(services),
	}
}

// Summary is a run summary by display class.
type Summary struct {
	Online  int `json:"online"`
	Offline int `json:"offline"`
	Errors  int `json:"errors"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}

// Summarize counts services by display class. Unlike Counts, error statuses
// get their own bucket and unrecognised statuses count as unknown.
func Summarize(services []model.Service) Summary {
	sum := Summary{Total: len(services)}
	for _, s := range services {
		switch s.Class().Kind {
		case model.KindOnline:
			sum.Online++
		case model.KindOffline:
			sum.Offline++
		case model.KindError:
			sum.Errors++
		default:
			sum.Unknown++
		}
	}
	return sum
}
