package mail

import (
	"bytes"
	"html/template"
	"strconv"
	"time"
)

const ResetSubject = "Redefinição de senha - Eco Histórias"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<body style="font-family: sans-serif; color: #222;">
  <h2>Eco Histórias</h2>
  <p>Recebemos um pedido para redefinir a senha da sua conta.</p>
  <p><a href="{{.Link}}">Clique aqui para escolher uma nova senha</a></p>
  <p>O link expira em {{.ExpiresIn}}. Se você não fez este pedido, ignore este email.</p>
</body>
</html>
`))

type resetData struct {
	Link      string
	ExpiresIn string
}

// ResetMessage builds the password reset email for a link valid for ttl.
func ResetMessage(to, link string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, resetData{
		Link:      link,
		ExpiresIn: humanDuration(ttl),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: ResetSubject, HTML: buf.String()}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hora"
	case d > time.Hour && d%time.Hour == 0:
		return strconv.Itoa(int(d/time.Hour)) + " horas"
	case d >= time.Minute:
		return strconv.Itoa(int(d/time.Minute)) + " minutos"
	default:
		return d.String()
	}
}
