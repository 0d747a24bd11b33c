package dispatch

import (
	"strings"
	"time"

	"github.com/foodregister/regnotify/internal/registration"
)

// welshMonths maps English three-letter month abbreviations to their Welsh
// equivalents for submission-date formatting.
var welshMonths = map[string]string{
	"Jan": "Ion", "Feb": "Chwe", "Mar": "Maw", "Apr": "Ebr",
	"May": "Mai", "Jun": "Meh", "Jul": "Gor", "Aug": "Awst",
	"Sep": "Medi", "Oct": "Hyd", "Nov": "Tach", "Dec": "Rhag",
}

// formatDate renders a date as "02 Jan 2006" in the submission language.
func formatDate(t time.Time, welsh bool) string {
	s := t.Format("02 Jan 2006")
	if !welsh {
		return s
	}
	for en, cy := range welshMonths {
		if strings.Contains(s, en) {
			return strings.Replace(s, en, cy, 1)
		}
	}
	return s
}

// buildNotifyData flattens the registration and council contact details
// into the key/value personalisation map the email transport substitutes
// into templates. The same map is shared by every item in one dispatch.
func buildNotifyData(reg *registration.View, councils registration.CouncilContactConfig) map[string]string {
	welsh := reg.Welsh()
	data := make(map[string]string)

	if councils.HygieneAndStandards != nil {
		c := councils.HygieneAndStandards
		data["local_council"] = c.LocalName(welsh)
		data["local_council_email"] = c.Email
		data["country"] = c.Country
		if c.Phone != "" {
			data["local_council_phone_number"] = c.Phone
		}
	} else {
		if c := councils.Hygiene; c != nil {
			data["local_council_hygiene"] = c.LocalName(welsh)
			data["local_council_email_hygiene"] = c.Email
			data["country"] = c.Country
			if c.Phone != "" {
				data["local_council_phone_number_hygiene"] = c.Phone
			}
		}
		if c := councils.Standards; c != nil {
			data["local_council_standards"] = c.LocalName(welsh)
			data["local_council_email_standards"] = c.Email
			if c.Phone != "" {
				data["local_council_phone_number_standards"] = c.Phone
			}
		}
	}

	data["fsa_rn"] = reg.FsaID
	data["reg_submission_date"] = formatDate(reg.SubmissionDate, welsh)

	op := reg.Establishment.Operator
	setIf(data, "operator_first_name", op.FirstName)
	setIf(data, "operator_last_name", op.LastName)
	setIf(data, "operator_company_name", op.CompanyName)
	setIf(data, "operator_email", op.Email)
	setIf(data, "contact_representative_email", op.ContactRepresentativeEmail)
	setIf(data, "operator_postcode", op.Postcode)
	setIf(data, "operator_type", op.Type)

	if len(op.Partners) > 0 {
		names := make([]string, 0, len(op.Partners))
		for _, p := range op.Partners {
			names = append(names, p.Name)
		}
		data["partner_names"] = strings.Join(names, ", ")
		for _, p := range op.Partners {
			if p.IsPrimaryContact {
				data["main_contact"] = p.Name
				break
			}
		}
	}

	det := reg.Establishment.Details
	setIf(data, "establishment_trading_name", det.TradingName)
	setIf(data, "establishment_primary_number", det.Phone)
	setIf(data, "establishment_email", det.Email)
	if !det.OpeningDate.IsZero() {
		data["establishment_opening_date"] = formatDate(det.OpeningDate, welsh)
	}

	prem := reg.Establishment.Premise
	setIf(data, "establishment_address_line_1", prem.AddressLine1)
	setIf(data, "establishment_town", prem.Town)
	setIf(data, "establishment_type", prem.Type)
	if prem.Postcode != "" {
		data["establishment_postcode"] = prem.Postcode
		data["establishment_postcode_FD"] = postcodeDistrict(prem.Postcode)
	}

	act := reg.Establishment.Activities
	setIf(data, "customer_type", act.CustomerType)
	setIf(data, "business_type", act.BusinessType)
	setIf(data, "import_export_activities", act.ImportExport)
	setIf(data, "water_supply", act.WaterSupply)

	dec := reg.Declaration
	setIf(data, "declaration1", dec.Declaration1)
	setIf(data, "declaration2", dec.Declaration2)
	setIf(data, "declaration3", dec.Declaration3)

	return data
}

func setIf(data map[string]string, key, value string) {
	if value != "" {
		data[key] = value
	}
}

// postcodeDistrict strips the inward code (final three characters) from a
// postcode, e.g. "SW1A 1AA" -> "SW1A".
func postcodeDistrict(postcode string) string {
	compact := strings.ReplaceAll(postcode, " ", "")
	if len(compact) <= 3 {
		return compact
	}
	return compact[:len(compact)-3]
}
