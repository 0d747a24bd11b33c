package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/foodregister/regnotify/internal/dispatch"
)

// MessageTemplate defines the subject and body of one outgoing email. Both
// are text/template sources evaluated against the personalisation data map,
// so {{.fsa_rn}} interpolates the registration application reference.
type MessageTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Catalog resolves a template id to a renderable subject and body.
type Catalog struct {
	templates map[string]parsedTemplate
}

type parsedTemplate struct {
	subject *template.Template
	body    *template.Template
}

// NewCatalog parses the given template definitions. Every subject and body
// must be a valid text/template source.
func NewCatalog(defs map[string]MessageTemplate) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]parsedTemplate, len(defs))}
	for id, def := range defs {
		subject, err := template.New(id + ":subject").Parse(def.Subject)
		if err != nil {
			return nil, fmt.Errorf("parsing subject of template %q: %w", id, err)
		}
		body, err := template.New(id + ":body").Parse(def.Body)
		if err != nil {
			return nil, fmt.Errorf("parsing body of template %q: %w", id, err)
		}
		c.templates[id] = parsedTemplate{subject: subject, body: body}
	}
	return c, nil
}

// Render evaluates the subject and body of templateID against data.
// Unknown template ids are an error; missing data keys interpolate as empty
// strings.
func (c *Catalog) Render(templateID string, data map[string]string) (string, string, error) {
	parsed, ok := c.templates[templateID]
	if !ok {
		return "", "", fmt.Errorf("unknown notify template %q", templateID)
	}

	var subject, body bytes.Buffer
	if err := parsed.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("rendering subject of %q: %w", templateID, err)
	}
	if err := parsed.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("rendering body of %q: %w", templateID, err)
	}
	return subject.String(), body.String(), nil
}

// Has reports whether templateID is present in the catalog.
func (c *Catalog) Has(templateID string) bool {
	_, ok := c.templates[templateID]
	return ok
}

// DefaultCatalog returns the built-in message catalog covering the default
// template ids for every notification type, including the Welsh variants and
// the reference-pending acknowledgements.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultMessages)
	if err != nil {
		// The built-in sources are static; a parse failure is a programming error.
		panic(err)
	}
	return c
}

var defaultMessages = map[string]MessageTemplate{
	"lc-new-registration": {
		Subject: "New food business registration: {{.establishment_trading_name}}",
		Body: `A new food business has registered with {{.local_council}}.

Application reference: {{.fsa_rn}}
Trading name: {{.establishment_trading_name}}
Submitted on: {{.reg_submission_date}}

The full registration details are attached to this email.`,
	},
	"lc-new-registration-cy": {
		Subject: "Cofrestriad busnes bwyd newydd: {{.establishment_trading_name}}",
		Body: `Mae busnes bwyd newydd wedi cofrestru gyda {{.local_council}}.

Cyfeirnod y cais: {{.fsa_rn}}
Enw masnachu: {{.establishment_trading_name}}
Cyflwynwyd ar: {{.reg_submission_date}}

Mae manylion llawn y cofrestriad ynghlwm wrth yr e-bost hwn.`,
	},
	"fbo-submission-complete": {
		Subject: "Your food business registration has been submitted",
		Body: `Thank you for registering {{.establishment_trading_name}}.

Your registration has been sent to {{.local_council}}.

Application reference: {{.fsa_rn}}
Submitted on: {{.reg_submission_date}}

Keep this reference in case you need to contact your local council about
your registration.`,
	},
	"fbo-submission-complete-cy": {
		Subject: "Mae eich cofrestriad busnes bwyd wedi'i gyflwyno",
		Body: `Diolch am gofrestru {{.establishment_trading_name}}.

Mae eich cofrestriad wedi'i anfon at {{.local_council}}.

Cyfeirnod y cais: {{.fsa_rn}}
Cyflwynwyd ar: {{.reg_submission_date}}

Cadwch y cyfeirnod hwn rhag ofn y bydd angen i chi gysylltu a'ch cyngor
lleol am eich cofrestriad.`,
	},
	"fbo-feedback": {
		Subject: "Tell us about registering your food business",
		Body: `You recently registered {{.establishment_trading_name}} (reference
{{.fsa_rn}}).

We would like to hear how the registration service worked for you. Your
feedback helps us improve the service for other food businesses.`,
	},
	"fbo-feedback-cy": {
		Subject: "Dywedwch wrthym am gofrestru eich busnes bwyd",
		Body: `Fe wnaethoch gofrestru {{.establishment_trading_name}} yn ddiweddar
(cyfeirnod {{.fsa_rn}}).

Hoffem glywed sut y gweithiodd y gwasanaeth cofrestru i chi. Mae eich
adborth yn ein helpu i wella'r gwasanaeth i fusnesau bwyd eraill.`,
	},
	"fd-feedback": {
		Subject: "Future delivery feedback: {{.fsa_rn}}",
		Body: `A registration opted in to feedback.

Application reference: {{.fsa_rn}}
Trading name: {{.establishment_trading_name}}
Council: {{.local_council}}
Submitted on: {{.reg_submission_date}}`,
	},
	dispatch.RNGPendingTemplateID: {
		Subject: "We have received your food business registration",
		Body: `Thank you for registering {{.establishment_trading_name}}.

Your registration has been received but your application reference is not
available yet. We will send it to you, and notify {{.local_council}}, as
soon as it has been issued. You do not need to do anything else.`,
	},
	dispatch.RNGPendingTemplateIDWelsh: {
		Subject: "Rydym wedi derbyn eich cofrestriad busnes bwyd",
		Body: `Diolch am gofrestru {{.establishment_trading_name}}.

Mae eich cofrestriad wedi dod i law ond nid yw cyfeirnod eich cais ar gael
eto. Byddwn yn ei anfon atoch, ac yn hysbysu {{.local_council}}, cyn
gynted ag y bydd wedi'i gyhoeddi. Nid oes angen i chi wneud unrhyw beth
arall.`,
	},
}
