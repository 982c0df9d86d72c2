// Package httperrors writes the HTML pages of the error responses generated
// by the server itself. Errors of the fallback upstream are passed through
// untouched.
package httperrors

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"gitlab.com/gitlab-org/pages-fallback/internal/errortracking"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
)

type page struct {
	Status  int
	Title   string
	Summary string
	Details []string
}

var pages = []page{
	{
		Status:  http.StatusNotFound,
		Title:   "Not Found",
		Summary: "The page you are looking for could not be found.",
		Details: []string{
			"The resource that you are attempting to access does not exist.",
			"Make sure the address is correct and that the page has not moved.",
		},
	},
	{
		Status:  http.StatusMethodNotAllowed,
		Title:   "Method Not Allowed",
		Summary: "The request method is not supported by this server.",
	},
	{
		Status:  http.StatusRequestURITooLong,
		Title:   "Request URI Too Long",
		Summary: "The URI provided was too long for the server to process.",
		Details: []string{"Try to make the request URI shorter."},
	},
	{
		Status:  http.StatusTooManyRequests,
		Title:   "Too Many Requests",
		Summary: "Too many requests.",
		Details: []string{"Slow down, then try again."},
	},
	{
		Status:  http.StatusInternalServerError,
		Title:   "Internal Server Error",
		Summary: "Something went wrong on our end.",
		Details: []string{
			"Try refreshing the page, or going back and attempting the action again.",
			"Check the server logs if this problem persists.",
		},
	},
	{
		Status:  http.StatusBadGateway,
		Title:   "Bad Gateway",
		Summary: "The application did not respond.",
		Details: []string{"Make sure the application server is running and reachable."},
	},
	{
		Status:  http.StatusGatewayTimeout,
		Title:   "Gateway Timeout",
		Summary: "The application took too long to respond.",
		Details: []string{"Try again, or increase the fallback timeout."},
	},
}

var pageTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} ({{.Status}})</title>
  <style>
    body { color: #555; font-family: -apple-system, "Helvetica Neue", Arial, sans-serif; margin: 10vh auto; max-width: 720px; padding: 0 20px; text-align: center; }
    h1 { color: #345; font-size: 56px; font-weight: 400; margin: 0; }
    h2 { color: #345; font-size: 20px; font-weight: 400; }
    hr { border: 0; border-top: 1px solid #eee; margin: 18px 0; }
  </style>
</head>
<body>
  <h1>{{.Status}}</h1>
  <h2>{{.Summary}}</h2>
  <hr>
{{- range .Details}}
  <p>{{.}}</p>
{{- end}}
</body>
</html>
`))

// rendered holds the body of every page by status
var rendered = map[int][]byte{}

func init() {
	for _, p := range pages {
		rendered[p.Status] = render(p)
	}
}

func render(p page) []byte {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		panic(err)
	}

	return buf.Bytes()
}

func serve(w http.ResponseWriter, status int) {
	body := rendered[status]

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(body)
}

// Serve404 writes the Not Found page
func Serve404(w http.ResponseWriter) {
	serve(w, http.StatusNotFound)
}

// Serve405 writes the Method Not Allowed page
func Serve405(w http.ResponseWriter) {
	serve(w, http.StatusMethodNotAllowed)
}

// Serve414 writes the Request URI Too Long page
func Serve414(w http.ResponseWriter) {
	serve(w, http.StatusRequestURITooLong)
}

// Serve429 writes the Too Many Requests page
func Serve429(w http.ResponseWriter) {
	serve(w, http.StatusTooManyRequests)
}

// Serve500 writes the Internal Server Error page
func Serve500(w http.ResponseWriter) {
	serve(w, http.StatusInternalServerError)
}

// Serve500WithRequest logs and reports err, then writes a 500 page
func Serve500WithRequest(w http.ResponseWriter, r *http.Request, reason string, err error) {
	logging.LogRequest(r).WithError(err).Error(reason)
	errortracking.CaptureRequest(err, r)
	Serve500(w)
}

// Serve502 writes the Bad Gateway page
func Serve502(w http.ResponseWriter) {
	serve(w, http.StatusBadGateway)
}

// Serve504 writes the Gateway Timeout page
func Serve504(w http.ResponseWriter) {
	serve(w, http.StatusGatewayTimeout)
}
