package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

type Kind string

const (
	KindPasswordReset  Kind = "password_reset"
	KindAccountCreated Kind = "account_created"
	KindMemberInvited  Kind = "member_invited"
)

const layout = `<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="UTF-8"><title>{{template "title" .}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f5; padding: 24px;">
	<div style="max-width: 560px; margin: auto; background-color: #ffffff; padding: 24px; border-radius: 8px;">
		<h2 style="color: #18181b;">{{template "title" .}}</h2>
		{{template "content" .}}
		<p style="margin-top: 32px; color: #71717a;">Equipe MasterSight</p>
	</div>
</body>
</html>`

var contents = map[Kind]struct {
	subject string
	body    string
}{
	KindPasswordReset: {
		subject: "Redefinição de senha",
		body: `{{define "title"}}Redefinição de senha{{end}}
{{define "content"}}
<p>Olá,</p>
<p>Recebemos um pedido para redefinir a senha da sua conta MasterSight.</p>
<p><a href="{{.Link}}" style="color: #2563eb;">Clique aqui para escolher uma nova senha</a>.</p>
<p>O link expira em {{.ExpiresIn}}. Se você não fez este pedido, ignore este e-mail.</p>
{{end}}`,
	},
	KindAccountCreated: {
		subject: "Sua conta MasterSight foi criada",
		body: `{{define "title"}}Bem-vindo ao MasterSight{{end}}
{{define "content"}}
<p>Olá, {{.Name}}!</p>
<p>Uma conta foi criada para você com o e-mail <strong>{{.Email}}</strong>.</p>
<p>Sua senha temporária é <strong>{{.TemporaryPassword}}</strong>. Troque-a no primeiro acesso.</p>
<p><a href="{{.Link}}" style="color: #2563eb;">Acessar o MasterSight</a></p>
{{end}}`,
	},
	KindMemberInvited: {
		subject: "Você foi convidado para uma empresa",
		body: `{{define "title"}}Novo convite{{end}}
{{define "content"}}
<p>Olá, {{.Name}}!</p>
<p>{{.InviterName}} convidou você para fazer parte da empresa <strong>{{.CompanyName}}</strong>.</p>
<p><a href="{{.Link}}" style="color: #2563eb;">Ver convites</a></p>
{{end}}`,
	},
}

// Renderer turns a message kind and its data into a subject and HTML body.
type Renderer struct {
	templates map[Kind]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[Kind]*template.Template, len(contents))}
	for kind, c := range contents {
		t, err := template.New(string(kind)).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := t.Parse(c.body); err != nil {
			return nil, fmt.Errorf("parse %s: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

func (r *Renderer) Render(kind Kind, data interface{}) (subject, body string, err error) {
	t, ok := r.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", kind)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return contents[kind].subject, buf.String(), nil
}

type passwordResetData struct {
	Link      string
	ExpiresIn string
}

type accountCreatedData struct {
	Name              string
	Email             string
	TemporaryPassword string
	Link              string
}

type memberInvitedData struct {
	Name        string
	InviterName string
	CompanyName string
	Link        string
}
