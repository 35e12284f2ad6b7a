package quotemill

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

func adminLayout(title string, body func(w io.Writer, write func(string))) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var err error
		write := func(s string) {
			if err == nil {
				_, err = io.WriteString(w, s)
			}
		}
		write("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
		write("<meta charset=\"utf-8\">\n")
		write("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		write("<meta name=\"robots\" content=\"noindex\">\n")
		write("<title>" + html.EscapeString(title) + "</title>\n")
		write("<style>" + adminCSS + "</style>\n")
		write("</head>\n<body>\n")
		body(w, write)
		write("</body>\n</html>\n")
		return err
	})
}

const adminCSS = `body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1b1f2a}
main{max-width:64rem;margin:2rem auto;padding:0 1rem}
h1{font-size:1.4rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{text-align:left;padding:.5rem .75rem;border-bottom:1px solid #e3e5ea;font-size:.9rem}
.status{display:inline-block;padding:.1rem .5rem;border-radius:.75rem;font-size:.75rem}
.status-queued{background:#eef1ff;color:#3547a8}
.status-rendering{background:#fff6e0;color:#96690a}
.status-rendered{background:#e4f7ec;color:#1d7a46}
.status-failed{background:#fdeaea;color:#a83535}
.counts{display:flex;gap:1rem;margin:1rem 0}
.counts div{background:#fff;padding:.75rem 1rem;border-radius:.5rem;border:1px solid #e3e5ea}
form.inline{display:inline}
button{cursor:pointer;border:1px solid #c6cad3;background:#fff;border-radius:.3rem;padding:.2rem .6rem}
.error{color:#a83535}
.msg{background:#e4f7ec;padding:.5rem .75rem;border-radius:.3rem}`

// AdminLoginPage renders the password prompt.
func AdminLoginPage(showError bool, csrfToken string) templ.Component {
	return adminLayout("Admin login", func(w io.Writer, write func(string)) {
		write("<main>\n<h1>Admin login</h1>\n")
		if showError {
			write("<p class=\"error\">Wrong password.</p>\n")
		}
		write("<form method=\"post\" action=\"/admin/login\">\n")
		write("<input type=\"hidden\" name=\"_csrf\" value=\"" + html.EscapeString(csrfToken) + "\">\n")
		write("<input type=\"password\" name=\"password\" autofocus>\n")
		write("<button type=\"submit\">Log in</button>\n")
		write("</form>\n</main>\n")
	})
}

// AdminDashboardPage renders the render-queue overview: per-status counts
// and the most recent items with a requeue action.
func AdminDashboardPage(items []Item, counts map[RenderStatus]int, message, csrfToken string) templ.Component {
	return adminLayout("Render queue", func(w io.Writer, write func(string)) {
		write("<main>\n<h1>Render queue</h1>\n")
		if message != "" {
			write("<p class=\"msg\">" + html.EscapeString(message) + "</p>\n")
		}
		write("<div class=\"counts\">\n")
		for _, status := range []RenderStatus{StatusQueued, StatusRendering, StatusRendered, StatusFailed} {
			write(fmt.Sprintf("<div><strong>%d</strong> %s</div>\n", counts[status], status))
		}
		write("</div>\n")
		write("<form method=\"post\" action=\"/admin/logout\" class=\"inline\">")
		write("<input type=\"hidden\" name=\"_csrf\" value=\"" + html.EscapeString(csrfToken) + "\">")
		write("<button type=\"submit\">Log out</button></form>\n")
		write("<table>\n<tr><th>ID</th><th>Type</th><th>Title</th><th>Status</th><th>Failures</th><th>Updated</th><th></th></tr>\n")
		for i := range items {
			item := &items[i]
			write("<tr>")
			write(fmt.Sprintf("<td>%d</td>", item.ID))
			write("<td>" + html.EscapeString(item.Type) + "</td>")
			write("<td>" + html.EscapeString(item.Title) + "</td>")
			write("<td><span class=\"status status-" + string(item.RenderStatus) + "\">" + string(item.RenderStatus) + "</span></td>")
			write(fmt.Sprintf("<td>%d</td>", item.RenderFailures))
			write("<td>" + item.UpdatedAt.Format("2006-01-02 15:04") + "</td>")
			write("<td><form method=\"post\" action=\"" + fmt.Sprintf("/admin/requeue/%d", item.ID) + "\" class=\"inline\">")
			write("<input type=\"hidden\" name=\"_csrf\" value=\"" + html.EscapeString(csrfToken) + "\">")
			write("<button type=\"submit\">Requeue</button></form></td>")
			write("</tr>\n")
		}
		write("</table>\n</main>\n")
	})
}

// NotFoundPage is the generic 404 page.
func NotFoundPage() templ.Component {
	return simplePage("Not found", "The page you were looking for does not exist.")
}

// ServerErrorPage is the generic 500 page.
func ServerErrorPage() templ.Component {
	return simplePage("Something went wrong", "An internal error occurred. Try again in a moment.")
}

func simplePage(title, body string) templ.Component {
	return adminLayout(title, func(w io.Writer, write func(string)) {
		write("<main>\n<h1>" + html.EscapeString(title) + "</h1>\n")
		write("<p>" + html.EscapeString(body) + "</p>\n</main>\n")
	})
}
