package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/filegate/filegate/internal/service"
)

// All failure kinds render the same HTTP status. Distinct codes per kind
// would be cleaner, but the observed behavior is a single 403 across the
// board and clients depend on it; do not change without a product decision.
const errorPageStatus = http.StatusForbidden

type errorCopy struct {
	Title   string
	Message string
	Details string
}

var errorCopyByKind = map[service.ErrorKind]errorCopy{
	service.ErrorInvalidToken: {
		Title:   "Invalid Link",
		Message: "This link is not valid.",
		Details: "The link is malformed, was deleted, or has expired.",
	},
	service.ErrorInvalidKey: {
		Title:   "Invalid Key",
		Message: "The security key did not verify.",
		Details: "The key in this link is wrong. Make sure the link was copied completely.",
	},
	service.ErrorExpired: {
		Title:   "Link Expired",
		Message: "This link has expired.",
		Details: "Free-tier links are time limited. Ask the sender for a fresh one.",
	},
	service.ErrorFileNotFound: {
		Title:   "File Not Found",
		Message: "The file behind this link is gone.",
		Details: "The file was deleted or is temporarily unavailable.",
	},
	service.ErrorAccessDenied: {
		Title:   "Access Denied",
		Message: "Too many downloads right now.",
		Details: "The owner of this link hit the access limit. Try again later.",
	},
	service.ErrorServerError: {
		Title:   "Server Error",
		Message: "Something went wrong on our side.",
		Details: "Try again in a little while.",
	},
}

var errorPageTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; background: #1a1a2e; color: #eee;
       min-height: 100vh; display: flex; justify-content: center; align-items: center; margin: 0; }
.card { background: #16213e; border-radius: 12px; padding: 40px; max-width: 480px;
        text-align: center; box-shadow: 0 10px 40px rgba(0,0,0,0.4); }
h1 { font-size: 24px; margin: 0 0 12px; }
.message { color: #e94560; font-weight: 600; margin-bottom: 8px; }
.details { color: #aaa; font-size: 14px; line-height: 1.5; }
</style>
</head>
<body>
<div class="card">
<h1>{{.Title}}</h1>
<p class="message">{{.Message}}</p>
<p class="details">{{.Details}}</p>
</div>
</body>
</html>
`))

// renderErrorPage writes the HTML error page for a failure kind.
func renderErrorPage(w http.ResponseWriter, kind service.ErrorKind) {
	c, ok := errorCopyByKind[kind]
	if !ok {
		c = errorCopyByKind[service.ErrorServerError]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(errorPageStatus)

	err := errorPageTmpl.Execute(w, c)
	if err != nil {
		slog.Error("failed to render error page", "error", err, "kind", string(kind))
	}
}
