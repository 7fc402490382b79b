package auth

import (
	"time"

	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/martinsuchenak/campusctl/internal/session"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		LoginCommand(),
		LogoutCommand(),
		WhoamiCommand(),
	}
}

// identity is what whoami prints
type identity struct {
	Server    string      `json:"server" yaml:"server"`
	User      *model.User `json:"user" yaml:"user"`
	Subject   string      `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func newIdentity(server string, u *model.User, sess *session.Session) identity {
	id := identity{Server: server, User: u}
	if claims, ok := sess.Claims(); ok {
		id.Subject = claims.Subject
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			id.ExpiresAt = &exp
		}
	}
	return id
}

func printIdentity(out *render.Printer, id identity) error {
	return out.Emit(id, func(p *render.Printer) {
		p.Field("Server", id.Server)
		p.Field("Name", id.User.Name)
		p.Field("Email", id.User.Email)
		p.Field("Role", id.User.Role)
		if id.User.Status != "" {
			p.Field("Status", id.User.Status)
		}
		if id.User.LastLogin != "" {
			p.Field("Last login", id.User.LastLogin)
		}
		if id.ExpiresAt != nil {
			p.Field("Token expires", id.ExpiresAt.Local().Format(time.RFC3339))
		}
	})
}
