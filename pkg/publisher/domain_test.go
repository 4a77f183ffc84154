package publisher

import "testing"

func TestNormalize(t *testing.T) {
	d := NewDirectory()
	d.LoadMap(nil, map[string]string{
		"bbc.co.uk": "bbc.com",
	})

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty", "", ""},
		{"plain", "https://apnews.com/article/abc-123", "apnews.com"},
		{"www stripped", "https://www.bbc.com/news/world", "bbc.com"},
		{"feeds stripped", "https://feeds.npr.org/1001/rss.xml", "npr.org"},
		{"stacked generics", "https://www.feeds.npr.org/1001/rss.xml", "npr.org"},
		{"keeps non-generic subdomain", "https://edition.cnn.com/world", "edition.cnn.com"},
		{
			"google news proxy",
			"https://news.google.com/rss/search?q=when:24h+allinurl:apnews.com&ceid=US:en",
			"apnews.com",
		},
		{"alias resolution", "https://www.bbc.co.uk/news", "bbc.com"},
		{"scheme-less", "www.reuters.com/world/", "reuters.com"},
		{"trailing dot", "https://www.reuters.com./world", "reuters.com"},
		{"garbage", "::::not a url::::", ""},
		{"uppercase host", "HTTPS://WWW.Reuters.COM/article", "reuters.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Normalize(tt.url); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	d := NewDirectory()
	urls := []string{
		"https://www.apnews.com/article/abc",
		"https://feeds.npr.org/1001/rss.xml",
		"https://news.google.com/rss/search?q=when:24h+allinurl:reuters.com&ceid=US:en",
		"https://edition.cnn.com/",
	}
	for _, u := range urls {
		once := d.Normalize(u)
		if once == "" {
			t.Fatalf("Normalize(%q) unexpectedly empty", u)
		}
		if twice := d.Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", u, once, twice)
		}
	}
}

func TestNormalizeNilDirectory(t *testing.T) {
	var d *Directory
	if got := d.Normalize("https://www.apnews.com/x"); got != "apnews.com" {
		t.Errorf("nil directory Normalize = %q, want apnews.com", got)
	}
}
