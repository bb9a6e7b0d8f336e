package helper

import "net/http"

// Accept headers sent with browser-style requests.
const (
	AcceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	AcceptLanguage = "en-US,en;q=0.9"
)

// SetBrowserHeaders makes req look like a desktop browser. Some sources
// degrade or block responses without these.
func SetBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", AcceptHTML)
	req.Header.Set("Accept-Language", AcceptLanguage)
}
