package publisher

import (
	"net/url"
	"regexp"
	"strings"
)

// Generic hostname labels stripped during normalization.
var stripLabels = map[string]bool{
	"www": true, "feeds": true, "rss": true, "feed": true,
	"news": true, "m": true, "mobile": true, "amp": true,
	"api": true, "static": true, "cdn": true, "media": true,
}

var allinurlRe = regexp.MustCompile(`allinurl:(\S+)`)

// Normalize extracts the bare publisher domain from an article or feed URL.
//
//	https://www.apnews.com/article/...  -> apnews.com
//	https://feeds.npr.org/1001/rss.xml  -> npr.org
//	Google News proxy feeds carrying allinurl:apnews.com -> apnews.com
//
// The result is resolved through the dataset alias map. Malformed input
// yields "".
func (d *Directory) Normalize(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	aliases := d.current().aliases

	if strings.Contains(rawURL, "news.google.com") {
		if domain := googleNewsDomain(rawURL); domain != "" {
			return resolveAlias(domain, aliases)
		}
	}

	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	hostname := strings.Trim(strings.ToLower(parsed.Hostname()), ".")
	if hostname == "" {
		return ""
	}

	return resolveAlias(stripSubdomains(hostname), aliases)
}

// googleNewsDomain pulls the real publisher domain out of a Google News
// search-proxy URL, which embeds it as an allinurl: token in the q parameter.
func googleNewsDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	q := strings.Join(parsed.Query()["q"], " ")
	match := allinurlRe.FindStringSubmatch(q)
	if match == nil {
		return ""
	}
	return stripSubdomains(strings.Trim(strings.ToLower(match[1]), "."))
}

// stripSubdomains removes known generic labels from the front of a hostname
// while more than two labels remain.
func stripSubdomains(hostname string) string {
	parts := strings.Split(hostname, ".")
	for len(parts) > 2 && stripLabels[parts[0]] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

func resolveAlias(domain string, aliases map[string]string) string {
	if canonical, ok := aliases[domain]; ok {
		return canonical
	}
	return domain
}
