package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TemplateKeys maps each notification type to its notify template id, with
// Welsh variants where the notification is operator-facing. The
// reference-pending template ids are dedicated constants in the dispatch
// package, not part of this configuration.
type TemplateKeys struct {
	LCNewRegistration          string `yaml:"lc_new_registration"`
	LCNewRegistrationWelsh     string `yaml:"lc_new_registration_welsh"`
	FBOSubmissionComplete      string `yaml:"fbo_submission_complete"`
	FBOSubmissionCompleteWelsh string `yaml:"fbo_submission_complete_welsh"`
	FBOFeedback                string `yaml:"fbo_feedback"`
	FBOFeedbackWelsh           string `yaml:"fbo_feedback_welsh"`
	FDFeedback                 string `yaml:"fd_feedback"`
}

// NotifyTemplates is the template configuration handed to the plan builder.
type NotifyTemplates struct {
	Keys                TemplateKeys `yaml:"notify_template_keys"`
	FutureDeliveryEmail string       `yaml:"future_delivery_email"`
}

// defaultNotifyTemplates is used when no templates file is present.
var defaultNotifyTemplates = NotifyTemplates{
	Keys: TemplateKeys{
		LCNewRegistration:          "lc-new-registration",
		LCNewRegistrationWelsh:     "lc-new-registration-cy",
		FBOSubmissionComplete:      "fbo-submission-complete",
		FBOSubmissionCompleteWelsh: "fbo-submission-complete-cy",
		FBOFeedback:                "fbo-feedback",
		FBOFeedbackWelsh:           "fbo-feedback-cy",
		FDFeedback:                 "fd-feedback",
	},
	FutureDeliveryEmail: "fd-feedback@food-register.example",
}

// LoadNotifyTemplates reads the notify template configuration YAML at
// filePath. If the file does not exist, built-in defaults are returned
// (not an error).
func LoadNotifyTemplates(filePath string) (*NotifyTemplates, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			t := defaultNotifyTemplates
			return &t, nil
		}
		return nil, fmt.Errorf("reading notify templates %q: %w", filePath, err)
	}

	t := defaultNotifyTemplates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing notify templates %q: %w", filePath, err)
	}
	return &t, nil
}
