// Package document renders the registration summary attached to
// council-facing notification emails.
package document

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/foodregister/regnotify/internal/registration"
)

// Renderer produces the HTML registration summary document. It satisfies
// the dispatch engine's renderer interface.
type Renderer struct{}

// NewRenderer returns a new Renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

type row struct {
	Label string
	Value string
}

type section struct {
	Title string
	Rows  []row
}

type summaryData struct {
	Reference   string
	SubmittedOn string
	Councils    []row
	Sections    []section
}

// Render builds the summary document for a registration and the council
// configuration it was routed to.
func (r *Renderer) Render(reg *registration.View, councils registration.CouncilContactConfig) ([]byte, error) {
	if reg == nil {
		return nil, fmt.Errorf("no registration to render")
	}

	data := summaryData{
		Reference:   reg.FsaID,
		SubmittedOn: reg.SubmissionDate.Format("02 Jan 2006"),
		Councils:    councilRows(councils),
		Sections:    buildSections(reg),
	}

	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering registration summary: %w", err)
	}
	return buf.Bytes(), nil
}

func councilRows(councils registration.CouncilContactConfig) []row {
	var rows []row
	if c := councils.HygieneAndStandards; c != nil {
		rows = addRow(rows, "Local council", c.Name)
		rows = addRow(rows, "Email", c.Email)
		rows = addRow(rows, "Phone", c.Phone)
		return rows
	}
	if c := councils.Hygiene; c != nil {
		rows = addRow(rows, "Hygiene authority", c.Name)
		rows = addRow(rows, "Hygiene email", c.Email)
	}
	if c := councils.Standards; c != nil {
		rows = addRow(rows, "Standards authority", c.Name)
		rows = addRow(rows, "Standards email", c.Email)
	}
	return rows
}

// buildSections assembles the detail sections in the order they appear in
// the document: partnership or operator, establishment, activities,
// declaration.
func buildSections(reg *registration.View) []section {
	var sections []section

	op := reg.Establishment.Operator
	if len(op.Partners) > 0 {
		names := make([]string, 0, len(op.Partners))
		mainContact := ""
		for _, p := range op.Partners {
			names = append(names, p.Name)
			if p.IsPrimaryContact {
				mainContact = p.Name
			}
		}
		sections = append(sections, section{
			Title: "Partnership details",
			Rows: []row{
				{Label: "Partners", Value: strings.Join(names, ", ")},
				{Label: "Main contact", Value: mainContact},
			},
		})
		sections = append(sections, operatorSection(op, "Main partnership contact details"))
	} else {
		sections = append(sections, operatorSection(op, "Operator details"))
	}

	det := reg.Establishment.Details
	prem := reg.Establishment.Premise
	var est []row
	est = addRow(est, "Trading name", det.TradingName)
	est = addRow(est, "Phone", det.Phone)
	est = addRow(est, "Email", det.Email)
	if !det.OpeningDate.IsZero() {
		est = addRow(est, "Opening date", det.OpeningDate.Format("02 Jan 2006"))
	}
	est = addRow(est, "Address line 1", prem.AddressLine1)
	est = addRow(est, "Address line 2", prem.AddressLine2)
	est = addRow(est, "Town", prem.Town)
	est = addRow(est, "Postcode", prem.Postcode)
	est = addRow(est, "Premise type", prem.Type)
	sections = append(sections, section{Title: "Establishment details", Rows: est})

	act := reg.Establishment.Activities
	var activities []row
	activities = addRow(activities, "Customer type", act.CustomerType)
	activities = addRow(activities, "Business type", act.BusinessType)
	activities = addRow(activities, "Import and export activities", act.ImportExport)
	activities = addRow(activities, "Water supply", act.WaterSupply)
	sections = append(sections, section{Title: "Activities", Rows: activities})

	dec := reg.Declaration
	var declaration []row
	declaration = addRow(declaration, "Declaration 1", dec.Declaration1)
	declaration = addRow(declaration, "Declaration 2", dec.Declaration2)
	declaration = addRow(declaration, "Declaration 3", dec.Declaration3)
	sections = append(sections, section{Title: "Declaration", Rows: declaration})

	return sections
}

func operatorSection(op registration.Operator, title string) section {
	var rows []row
	rows = addRow(rows, "First name", op.FirstName)
	rows = addRow(rows, "Last name", op.LastName)
	rows = addRow(rows, "Company name", op.CompanyName)
	rows = addRow(rows, "Email", op.Email)
	rows = addRow(rows, "Contact representative email", op.ContactRepresentativeEmail)
	rows = addRow(rows, "Postcode", op.Postcode)
	rows = addRow(rows, "Operator type", op.Type)
	return section{Title: title, Rows: rows}
}

func addRow(rows []row, label, value string) []row {
	if value == "" {
		return rows
	}
	return append(rows, row{Label: label, Value: value})
}

var summaryTmpl = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>New food business registration received</title>
</head>
<body style="margin:0;padding:24px;font-family:Arial,Helvetica,sans-serif;color:#0b0c0c;">
  <h1 style="font-size:24px;margin:0 0 16px;">New food business registration received</h1>

  <table cellpadding="4" cellspacing="0" style="font-size:14px;margin-bottom:16px;">
  {{range .Councils}}
    <tr><td style="font-weight:bold;padding-right:12px;">{{.Label}}</td><td>{{.Value}}</td></tr>
  {{end}}
  </table>

  <p style="font-size:14px;line-height:1.5;">
    You have received a new food business registration. The registration
    details are included in this email. The new registration should also be
    available on your management information system.
  </p>

  <div style="border:3px solid #0b0c0c;padding:12px 16px;margin:16px 0;display:inline-block;">
    <span style="font-size:13px;display:block;">Application reference</span>
    <span style="font-size:20px;font-weight:bold;">{{.Reference}}</span>
  </div>

  <h2 style="font-size:20px;margin:16px 0 8px;">Registration details</h2>
  <p style="font-size:14px;margin:0 0 16px;"><strong>Submitted on</strong> {{.SubmittedOn}}</p>

  {{range .Sections}}
  <h3 style="font-size:16px;border-bottom:1px solid #b1b4b6;padding-bottom:4px;margin:20px 0 8px;">{{.Title}}</h3>
  <table cellpadding="4" cellspacing="0" style="font-size:14px;">
    {{range .Rows}}
    <tr><td style="font-weight:bold;padding-right:12px;vertical-align:top;">{{.Label}}</td><td>{{.Value}}</td></tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>
`))
