package mail

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/323network/platform/internal/pkg/env"
)

const connectionRequestTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    .email-container {
      font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif;
      max-width: 600px;
      margin: 0 auto;
      background-color: #ffffff;
      border: 1px solid #e2e8f0;
      border-radius: 8px;
      overflow: hidden;
    }
    .header {
      background-color: #0c0f16;
      padding: 40px 30px;
      text-align: center;
    }
    .logo {
      width: 130px;
      height: auto;
    }
    .content {
      padding: 50px 40px;
      color: #1e293b;
      line-height: 1.6;
    }
    .greeting {
      font-size: 22px;
      font-weight: 600;
      margin-bottom: 24px;
      color: #0f172a;
      text-align: center;
    }
    .message {
      font-size: 16px;
      margin-bottom: 32px;
      text-align: center;
      color: #475569;
    }
    .requester-box {
      background-color: #f8fafc;
      border: 1px solid #f1f5f9;
      border-radius: 8px;
      padding: 30px;
      margin-bottom: 32px;
      text-align: center;
    }
    .button-container {
      text-align: center;
    }
    .button {
      display: inline-block;
      background-color: #f425f4;
      color: #ffffff !important;
      padding: 16px 48px;
      text-decoration: none;
      border-radius: 6px;
      font-weight: 600;
      font-size: 14px;
      text-transform: uppercase;
      letter-spacing: 1.5px;
    }
    .footer {
      background-color: #ffffff;
      padding: 40px 20px;
      text-align: center;
      font-size: 11px;
      color: #94a3b8;
      border-top: 1px solid #f1f5f9;
      text-transform: uppercase;
      letter-spacing: 1px;
    }
  </style>
</head>
<body style="background-color: #f8fafc; padding: 40px 0;">
  <div class="email-container">
    <div class="header">
      <img src="{{.LogoURL}}" alt="323 Network" class="logo">
    </div>
    <div class="content">
      <h1 class="greeting">Olá, {{.RecipientName}}</h1>
      <p class="message">
        Você recebeu uma nova solicitação para expandir sua rede profissional na 323 Network.
      </p>
      <div class="requester-box">
        <div style="font-size: 12px; color: #94a3b8; text-transform: uppercase; letter-spacing: 2px; font-weight: 700; margin-bottom: 12px;">Solicitação de Conexão</div>
        <div style="font-size: 20px; color: #0f172a; font-weight: 600;">{{.RequesterName}}</div>
      </div>
      <div class="button-container">
        <a href="{{.ProfileURL}}" class="button">Ver Perfil</a>
      </div>
    </div>
    <div class="footer">
      323 Network<br>
      Building bridges, creating opportunities.
    </div>
  </div>
</body>
</html>`

var connectionRequestTmpl = template.Must(template.New("connection_request").Parse(connectionRequestTemplate))

// SendConnectionRequestEmail notifies a user about an incoming
// connection request.
func SendConnectionRequestEmail(toEmail, recipientName, requesterName string) error {
	subject := fmt.Sprintf("Nova solicitação de conexão - %s", requesterName)
	body, err := BuildConnectionRequestEmail(recipientName, requesterName)
	if err != nil {
		return err
	}
	return SendMail(toEmail, subject, body)
}

// BuildConnectionRequestEmail renders the HTML body of the
// connection-request notification.
func BuildConnectionRequestEmail(recipientName, requesterName string) (string, error) {
	site := strings.TrimRight(env.GetEnv("SITE_URL", "https://323network.com"), "/")
	data := struct {
		LogoURL       string
		RecipientName string
		RequesterName string
		ProfileURL    string
	}{
		LogoURL:       env.GetEnv("MAIL_LOGO_URL", site+"/assets/logo.png"),
		RecipientName: recipientName,
		RequesterName: requesterName,
		ProfileURL:    site + "/conexoes",
	}

	var b strings.Builder
	if err := connectionRequestTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
