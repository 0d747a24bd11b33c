// Package registration defines the domain model for food business
// registrations: the registration document itself, the per-council contact
// configuration and the notification delivery status that records which
// emails have been sent for a registration.
package registration

import (
	"strings"
	"time"
)

// TmpPrefix marks an application reference that has not been issued yet.
// Registrations submitted while the numbering service is unavailable carry a
// temporary reference until the permanent one arrives.
const TmpPrefix = "tmp_"

// Submission languages.
const (
	LanguageEnglish = "en"
	LanguageWelsh   = "cy"
)

// NotificationType identifies one logical notification owed for a
// registration.
type NotificationType string

// Notification types, in the order they appear in a full plan.
const (
	// TypeRNGPending acknowledges a submission whose application reference
	// is still temporary.
	TypeRNGPending NotificationType = "RNG_PENDING"
	// TypeLC is the council-facing copy of the registration, with the
	// summary document attached.
	TypeLC NotificationType = "LC"
	// TypeFBO is the operator-facing submission confirmation.
	TypeFBO NotificationType = "FBO"
	// TypeFBOFeedback invites the operator to give feedback.
	TypeFBOFeedback NotificationType = "FBO_FB"
	// TypeFDFeedback forwards the opt-in to the future-delivery inbox.
	TypeFDFeedback NotificationType = "FD_FB"
)

// View is the registration document as seen by the dispatch engine: the
// submitted data plus, when one exists, the persisted delivery status.
type View struct {
	FsaID              string        `json:"fsa_rn"`
	SubmissionLanguage string        `json:"submission_language,omitempty"`
	SubmissionDate     time.Time     `json:"reg_submission_date"`
	Establishment      Establishment `json:"establishment"`
	Declaration        Declaration   `json:"declaration"`
	Status             *Status       `json:"status,omitempty"`
}

// HasPendingReference reports whether the application reference is still the
// temporary one issued at submission time.
func (v *View) HasPendingReference() bool {
	return strings.HasPrefix(v.FsaID, TmpPrefix)
}

// Welsh reports whether the registration was submitted in Welsh.
func (v *View) Welsh() bool {
	return v.SubmissionLanguage == LanguageWelsh
}

// OperatorContactAddress returns the address operator-facing notifications
// go to: the operator's own email, or the contact representative's when the
// operator registered through a representative.
func (v *View) OperatorContactAddress() string {
	op := v.Establishment.Operator
	if op.Email != "" {
		return op.Email
	}
	return op.ContactRepresentativeEmail
}

// Establishment is the food business being registered.
type Establishment struct {
	Details    EstablishmentDetails `json:"establishment_details"`
	Operator   Operator             `json:"operator"`
	Premise    Premise              `json:"premise"`
	Activities Activities           `json:"activities"`
}

// EstablishmentDetails holds the trading identity of the establishment.
type EstablishmentDetails struct {
	TradingName string    `json:"establishment_trading_name"`
	Phone       string    `json:"establishment_primary_number,omitempty"`
	Email       string    `json:"establishment_email,omitempty"`
	OpeningDate time.Time `json:"establishment_opening_date,omitempty"`
}

// Operator is the person or company responsible for the establishment.
type Operator struct {
	FirstName                  string    `json:"operator_first_name,omitempty"`
	LastName                   string    `json:"operator_last_name,omitempty"`
	CompanyName                string    `json:"operator_company_name,omitempty"`
	Email                      string    `json:"operator_email,omitempty"`
	ContactRepresentativeEmail string    `json:"contact_representative_email,omitempty"`
	Postcode                   string    `json:"operator_postcode,omitempty"`
	Type                       string    `json:"operator_type,omitempty"`
	Partners                   []Partner `json:"partners,omitempty"`
}

// Partner is one member of a partnership operator.
type Partner struct {
	Name             string `json:"partner_name"`
	IsPrimaryContact bool   `json:"partner_is_primary_contact"`
}

// Premise is the establishment's address.
type Premise struct {
	AddressLine1 string `json:"establishment_address_line_1,omitempty"`
	AddressLine2 string `json:"establishment_address_line_2,omitempty"`
	Town         string `json:"establishment_town,omitempty"`
	Postcode     string `json:"establishment_postcode,omitempty"`
	Type         string `json:"establishment_type,omitempty"`
}

// Activities describes what the establishment does.
type Activities struct {
	CustomerType string `json:"customer_type,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	ImportExport string `json:"import_export_activities,omitempty"`
	WaterSupply  string `json:"water_supply,omitempty"`
}

// Declaration holds the statements the operator agreed to at submission.
// Feedback1 is non-empty when the operator opted in to being contacted.
type Declaration struct {
	Declaration1 string `json:"declaration1,omitempty"`
	Declaration2 string `json:"declaration2,omitempty"`
	Declaration3 string `json:"declaration3,omitempty"`
	Feedback1    string `json:"feedback1,omitempty"`
}

// FeedbackOptIn reports whether the operator opted in to feedback contact.
func (d Declaration) FeedbackOptIn() bool {
	return d.Feedback1 != ""
}

// CouncilContact is one council inbox configuration. NotifyAddresses lists
// the addresses that each receive a copy of the council notification.
type CouncilContact struct {
	Name            string   `json:"name" yaml:"name"`
	NameWelsh       string   `json:"name_welsh,omitempty" yaml:"name_welsh"`
	Email           string   `json:"email" yaml:"email"`
	Phone           string   `json:"phone,omitempty" yaml:"phone"`
	Country         string   `json:"country" yaml:"country"`
	NotifyAddresses []string `json:"notify_addresses" yaml:"notify_addresses"`
}

// LocalName returns the council's Welsh name for Welsh submissions when one
// is configured, and the English name otherwise.
func (c *CouncilContact) LocalName(welsh bool) string {
	if welsh && c.NameWelsh != "" {
		return c.NameWelsh
	}
	return c.Name
}

// CouncilContactConfig is a council's contact configuration: either a single
// combined hygiene-and-standards contact, or separate hygiene and standards
// contacts when different authorities handle the two functions.
type CouncilContactConfig struct {
	HygieneAndStandards *CouncilContact `json:"hygiene_and_standards,omitempty" yaml:"hygiene_and_standards"`
	Hygiene             *CouncilContact `json:"hygiene,omitempty" yaml:"hygiene"`
	Standards           *CouncilContact `json:"standards,omitempty" yaml:"standards"`
}

// Groups returns the configured contacts in notification order: the
// combined contact when present, otherwise hygiene then standards.
func (c CouncilContactConfig) Groups() []*CouncilContact {
	if c.HygieneAndStandards != nil {
		return []*CouncilContact{c.HygieneAndStandards}
	}
	groups := make([]*CouncilContact, 0, 2)
	if c.Hygiene != nil {
		groups = append(groups, c.Hygiene)
	}
	if c.Standards != nil {
		groups = append(groups, c.Standards)
	}
	return groups
}

// NotificationRecord is the delivery state of one planned notification.
// Records correlate with plan items by position.
type NotificationRecord struct {
	Type    NotificationType `json:"type"`
	Address string           `json:"address"`
	Sent    bool             `json:"sent"`
	Time    *time.Time       `json:"time,omitempty"`
}

// Status is the persisted delivery status for a registration.
type Status struct {
	Notifications []NotificationRecord `json:"notifications"`
}

// Pending reports whether any notification is still unsent.
func (s Status) Pending() bool {
	for _, n := range s.Notifications {
		if !n.Sent {
			return true
		}
	}
	return false
}
