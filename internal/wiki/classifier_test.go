package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidArticleURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"ValidArticle", "https://en.wikipedia.org/wiki/Artificial_intelligence", true},
		{"ValidHTTP", "http://en.wikipedia.org/wiki/Go_(programming_language)", true},
		{"ValidOtherLanguage", "https://de.wikipedia.org/wiki/Informatik", true},
		{"NotAURL", "not a url", false},
		{"Empty", "", false},
		{"MissingScheme", "en.wikipedia.org/wiki/Artificial_intelligence", false},
		{"WrongHost", "https://en.wikipedia.com/wiki/Artificial_intelligence", false},
		{"NotWikipedia", "https://example.com/wiki/Artificial_intelligence", false},
		{"ThreeLetterCode", "https://eng.wikipedia.org/wiki/Artificial_intelligence", false},
		{"SpecialNamespace", "https://en.wikipedia.org/wiki/Special:Random", false},
		{"TalkNamespace", "https://en.wikipedia.org/wiki/Talk:Physics", false},
		{"UserNamespace", "https://en.wikipedia.org/wiki/User:Example", false},
		{"CategoryNamespace", "https://en.wikipedia.org/wiki/Category:Physics", false},
		{"FileNamespace", "https://en.wikipedia.org/wiki/File:Example.png", false},
		{"TemplateNamespace", "https://en.wikipedia.org/wiki/Template:Infobox", false},
		{"HelpNamespace", "https://en.wikipedia.org/wiki/Help:Contents", false},
		{"PortalNamespace", "https://en.wikipedia.org/wiki/Portal:Science", false},
		{"WikipediaNamespace", "https://en.wikipedia.org/wiki/Wikipedia:About", false},
		{"MediaWikiNamespace", "https://en.wikipedia.org/wiki/MediaWiki:Common.css", false},
		{"NamespaceCaseInsensitive", "https://en.wikipedia.org/wiki/SPECIAL:Export", false},
		{"QueryString", "https://en.wikipedia.org/wiki/Artificial_intelligence?action=edit", false},
		{"Fragment", "https://en.wikipedia.org/wiki/Artificial_intelligence#History", false},
		{"EmptyArticleSegment", "https://en.wikipedia.org/wiki/", false},
		{"ExtraPathSegment", "https://en.wikipedia.org/wiki/Foo/Bar", false},
		{"NoWikiPath", "https://en.wikipedia.org/w/index.php", false},
		{"RootOnly", "https://en.wikipedia.org", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidArticleURL(tt.url), "url: %s", tt.url)
		})
	}
}

func TestProberCheckAccessible(t *testing.T) {
	newServer := func(status int, contentType string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if contentType != "" {
				w.Header().Set("Content-Type", contentType)
			}
			w.WriteHeader(status)
		}))
	}
	ctx := context.Background()

	t.Run("Accessible", func(t *testing.T) {
		srv := newServer(http.StatusOK, "text/html; charset=utf-8")
		defer srv.Close()
		p := NewProber(time.Second, "test-agent")
		ok, reason := p.CheckAccessible(ctx, srv.URL)
		assert.True(t, ok)
		assert.Equal(t, "URL is accessible", reason)
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := newServer(http.StatusNotFound, "text/html")
		defer srv.Close()
		p := NewProber(time.Second, "test-agent")
		ok, reason := p.CheckAccessible(ctx, srv.URL)
		assert.False(t, ok)
		assert.Equal(t, "Wikipedia article not found", reason)
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := newServer(http.StatusInternalServerError, "text/html")
		defer srv.Close()
		p := NewProber(time.Second, "test-agent")
		ok, reason := p.CheckAccessible(ctx, srv.URL)
		assert.False(t, ok)
		assert.Contains(t, reason, "HTTP error")
	})

	t.Run("WrongContentType", func(t *testing.T) {
		srv := newServer(http.StatusOK, "application/json")
		defer srv.Close()
		p := NewProber(time.Second, "test-agent")
		ok, reason := p.CheckAccessible(ctx, srv.URL)
		assert.False(t, ok)
		assert.Contains(t, reason, "content type")
	})

	t.Run("ConnectionError", func(t *testing.T) {
		srv := newServer(http.StatusOK, "text/html")
		srv.Close() // closed before the probe
		p := NewProber(time.Second, "test-agent")
		ok, reason := p.CheckAccessible(ctx, srv.URL)
		assert.False(t, ok)
		assert.Contains(t, reason, "Connection error")
	})

	t.Run("SendsUserAgent", func(t *testing.T) {
		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "text/html")
		}))
		defer srv.Close()
		p := NewProber(time.Second, "AI-Wiki-Quiz-Generator/1.0 (Educational Tool)")
		ok, _ := p.CheckAccessible(ctx, srv.URL)
		assert.True(t, ok)
		assert.Equal(t, "AI-Wiki-Quiz-Generator/1.0 (Educational Tool)", gotUA)
	})
}
