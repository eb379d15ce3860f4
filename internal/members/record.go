// Package members holds the record schema and the pure per-site policies:
// normalizing loose extractor output into fixed CSV rows, filtering
// already-known members, and scoring how much a run added.
package members

import (
	"fmt"
	"strings"

	"github.com/scoutline/board-member-search/internal/extract"
)

// Comments written onto Not Found rows.
const (
	CommentNoMembers  = "No board members found"
	CommentAPIFailure = "API call failed or no data returned"
)

// StatusNotFound marks rows that carry no member data.
const StatusNotFound = "Not Found"

// noResultsSentinel is the Status value the model uses for its explicit
// "nothing found" single-record reply.
const noResultsSentinel = "No board members found"

// Record is the fixed single-shot output schema. Every field renders as a CSV
// cell; absent source data renders as "" rather than being omitted.
type Record struct {
	WebsiteURL       string
	Status           string
	Comments         string
	FirstName        string
	LastName         string
	Title            string
	TitleSource      string
	Phone            string
	PhoneType        string
	PhoneSource      string
	Email            string
	EmailSource      string
	LinkedInURL      string
	Biography        string
	BiographySource  string
	Designation      string
	UndergradCollege string
	UndergradYear    string
	PostgradCollege  string
	PostgradYear     string
	MetroArea        string
	MailingStreet    string
	MailingCity      string
	MailingState     string
	MailingZip       string
	MailingCountry   string
}

// Columns returns the stable CSV header, led by Website URL.
func Columns() []string {
	return []string{
		"Website URL",
		"Status",
		"Comments",
		"First Name",
		"Last Name",
		"Title",
		"Title Source",
		"Phone",
		"Phone Type",
		"Phone Source",
		"Email",
		"Email Source",
		"LinkedIn URL",
		"Biography",
		"Biography Source",
		"Designation",
		"Undergrad College",
		"Undergrad Year",
		"Postgrad College",
		"Postgrad Year",
		"Metro Area",
		"Mailing Street",
		"Mailing City",
		"Mailing State/Province",
		"Mailing Zip/Postal Code",
		"Mailing Country",
	}
}

// Values returns the record's cells in Columns() order.
func (r Record) Values() []string {
	return []string{
		r.WebsiteURL,
		r.Status,
		r.Comments,
		r.FirstName,
		r.LastName,
		r.Title,
		r.TitleSource,
		r.Phone,
		r.PhoneType,
		r.PhoneSource,
		r.Email,
		r.EmailSource,
		r.LinkedInURL,
		r.Biography,
		r.BiographySource,
		r.Designation,
		r.UndergradCollege,
		r.UndergradYear,
		r.PostgradCollege,
		r.PostgradYear,
		r.MetroArea,
		r.MailingStreet,
		r.MailingCity,
		r.MailingState,
		r.MailingZip,
		r.MailingCountry,
	}
}

// FromRaw maps one loose extractor record into the fixed schema. All
// missing-key-to-empty-string policy lives here.
func FromRaw(websiteURL string, raw extract.RawRecord) Record {
	get := func(key string) string {
		v, ok := raw[key]
		if !ok || v == nil {
			return ""
		}
		switch s := v.(type) {
		case string:
			return strings.TrimSpace(s)
		case float64:
			// Years sometimes come back as JSON numbers.
			if s == float64(int64(s)) {
				return fmt.Sprintf("%d", int64(s))
			}
			return fmt.Sprintf("%g", s)
		default:
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}

	return Record{
		WebsiteURL:       websiteURL,
		Status:           get("Status"),
		Comments:         get("Comments"),
		FirstName:        get("First Name"),
		LastName:         get("Last Name"),
		Title:            get("Title"),
		TitleSource:      get("Title Source"),
		Phone:            get("Phone"),
		PhoneType:        get("Phone Type"),
		PhoneSource:      get("Phone Source"),
		Email:            get("Email"),
		EmailSource:      get("Email Source"),
		LinkedInURL:      get("LinkedIn URL"),
		Biography:        get("Biography"),
		BiographySource:  get("Biography Source"),
		Designation:      get("Designation"),
		UndergradCollege: get("Undergrad College"),
		UndergradYear:    get("Undergrad Year"),
		PostgradCollege:  get("Postgrad College"),
		PostgradYear:     get("Postgrad Year"),
		MetroArea:        get("Metro Area"),
		MailingStreet:    get("Mailing Street"),
		MailingCity:      get("Mailing City"),
		MailingState:     get("Mailing State/Province"),
		MailingZip:       get("Mailing Zip/Postal Code"),
		MailingCountry:   get("Mailing Country"),
	}
}

// NotFound builds the single row emitted when a site produced no member data.
func NotFound(websiteURL, comment string) Record {
	return Record{
		WebsiteURL: websiteURL,
		Status:     StatusNotFound,
		Comments:   comment,
	}
}

// IsNoResultsSentinel reports whether the extractor returned the explicit
// "no results" reply: exactly one record with the sentinel Status, which must
// not be treated as member data.
func IsNoResultsSentinel(records []extract.RawRecord) bool {
	if len(records) != 1 {
		return false
	}
	status, ok := records[0]["Status"].(string)
	return ok && strings.TrimSpace(status) == noResultsSentinel
}

// Normalize converts one site's raw extractor output into output rows:
// nil/empty input and the sentinel reply collapse to a single Not Found row,
// anything else maps record by record.
func Normalize(websiteURL string, records []extract.RawRecord) []Record {
	if len(records) == 0 {
		return []Record{NotFound(websiteURL, CommentAPIFailure)}
	}
	if IsNoResultsSentinel(records) {
		return []Record{NotFound(websiteURL, CommentNoMembers)}
	}
	out := make([]Record, 0, len(records))
	for _, raw := range records {
		out = append(out, FromRaw(websiteURL, raw))
	}
	return out
}
