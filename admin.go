package quotemill

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const adminDashboardLimit = 100

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, AdminLoginPage(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	return Render(c, AdminLoginPage(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin")
}

func (a *App) handleAdminRequeue(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := a.Items.Requeue(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin?msg=requeued")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	ctx := c.Request().Context()
	items, err := a.Store.ListItems(ctx, ListOptions{Limit: adminDashboardLimit})
	if err != nil {
		return err
	}
	counts, err := a.Store.StatusCounts(ctx)
	if err != nil {
		return err
	}
	return Render(c, AdminDashboardPage(items, counts, msg, CsrfToken(c)))
}
