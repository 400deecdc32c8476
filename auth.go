package folio

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash to put in admin_password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *App) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Config.AdminUsername)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passOK := bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(password)) == nil
	return userOK && passOK
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	username := c.FormValue("username")
	if a.checkCredentials(username, c.FormValue("password")) {
		s := Session{Authenticated: true, Username: username, OperatorID: uuid.NewString()}
		if err := saveSession(c, s); err != nil {
			return err
		}
		a.loginLimiter.Reset(ip)
		a.Log.Info().Str("ip", ip).Str("operator", s.OperatorID).Msg("admin login")
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Log.Warn().Str("ip", ip).Msg("failed admin login")
	return Render(c, a.Views.AdminLogin(LoginPage{
		Page:     a.page(c, "Sign in"),
		Failed:   true,
		Username: username,
	}))
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if s := GetSession(c); s.OperatorID != "" {
		a.workspaces.Drop(s.OperatorID)
	}
	if err := clearSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}
