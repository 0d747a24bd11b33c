package notification

import (
	"bytes"
	"html/template"
)

// emailTmpl is the HTML wrapper applied to every outgoing notification.
// {{.Subject}} and {{.Body}} are auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f3f2f1;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f3f2f1;padding:32px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;">

          <tr>
            <td style="background-color:#0b0c0c;padding:20px 32px;">
              <span style="font-size:18px;font-weight:700;color:#ffffff;">
                Register a food business
              </span>
            </td>
          </tr>

          <tr>
            <td style="background-color:#ffffff;padding:16px 32px;border-left:4px solid #00703c;">
              <p style="margin:0;font-size:16px;font-weight:600;color:#0b0c0c;">{{.Subject}}</p>
            </td>
          </tr>

          <tr>
            <td style="background-color:#ffffff;padding:24px 32px 32px;">
              <div style="font-size:14px;line-height:1.6;color:#0b0c0c;
                          white-space:pre-wrap;word-break:break-word;">{{.Body}}</div>
            </td>
          </tr>

          <tr>
            <td style="background-color:#f3f2f1;padding:16px 32px;border-top:1px solid #b1b4b6;">
              <p style="margin:0;font-size:12px;color:#505a5f;">
                This is an automated notification from the food business
                registration service. Do not reply to this email.
              </p>
            </td>
          </tr>

        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

// buildEmailHTML renders the HTML email wrapper with the given subject and body.
func buildEmailHTML(subject, body string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct{ Subject, Body string }{subject, body})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
