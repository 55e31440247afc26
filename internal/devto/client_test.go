package devto

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"devimport/internal/config"
	"devimport/internal/logger"
)

// newTestClient points a client at srv with the default API settings.
func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()

	cfg := config.Default().API
	cfg.BaseURL = srv.URL + "/api/"
	cfg.APIKey = "secret"

	return NewClientWithHTTP(cfg, srv.Client(), logger.Discard())
}

func TestClient_ListArticles_RequestShape(t *testing.T) {
	var gotPath, gotQuery, gotUA, gotAccept, gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotKey = r.Header.Get("Api-Key")

		fmt.Fprint(w, `[{"id": 1, "title": "One", "tag_list": ["go"]}]`)
	}))
	defer srv.Close()

	list, err := newTestClient(t, srv).ListArticles(context.Background(), "ada")
	if err != nil {
		t.Fatalf("ListArticles failed: %v", err)
	}

	if len(list) != 1 || list[0].Title != "One" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if gotPath != "/api/articles" {
		t.Errorf("path = %q", gotPath)
	}

	if gotQuery != "per_page=1000&username=ada" {
		t.Errorf("query = %q", gotQuery)
	}

	if gotUA != "devto-importer/1.0" || gotAccept != "application/json" || gotKey != "secret" {
		t.Errorf("headers: ua=%q accept=%q key=%q", gotUA, gotAccept, gotKey)
	}
}

func TestClient_ListArticles_NonSuccessIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).ListArticles(context.Background(), "ada")
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("expected ErrUnexpectedStatusCode, got %v", err)
	}

	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should carry the status, got %v", err)
	}
}

func TestClient_ListArticles_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": "not a list"`)
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv).ListArticles(context.Background(), "ada"); err == nil {
		t.Fatal("expected JSON error")
	}
}

func TestClient_FetchArticles_DetailFallback(t *testing.T) {
	var detailCalls []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/articles":
			fmt.Fprint(w, `[
				{"id": 1, "title": "Full", "tags": "a"},
				{"id": 2, "title": "Summary only", "body_html": "<p>from <strong>html</strong></p>"},
				{"id": 3, "title": "Third"}
			]`)
		case "/api/articles/1":
			detailCalls = append(detailCalls, "1")
			fmt.Fprint(w, `{"id": 1, "title": "Full", "body_markdown": "# Body", "tag_list": "a, b"}`)
		case "/api/articles/2":
			detailCalls = append(detailCalls, "2")
			w.WriteHeader(http.StatusNotFound)
		case "/api/articles/3":
			detailCalls = append(detailCalls, "3")
			fmt.Fprint(w, `{"id": 3, "title": "Third", "body_markdown": "three"}`)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	articles, err := newTestClient(t, srv).FetchArticles(context.Background(), "ada")
	if err != nil {
		t.Fatalf("FetchArticles failed: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	if strings.Join(detailCalls, ",") != "1,2,3" {
		t.Errorf("detail calls out of order: %v", detailCalls)
	}

	if articles[0].BodyMarkdown != "# Body" || len(articles[0].AllTags()) != 2 {
		t.Errorf("article 1 not enriched: %+v", articles[0])
	}

	if articles[1].Title != "Summary only" {
		t.Errorf("article 2 should fall back to summary, got %+v", articles[1])
	}

	if articles[1].BodyMarkdown != "from **html**" {
		t.Errorf("article 2 body should be converted from html, got %q", articles[1].BodyMarkdown)
	}

	if articles[2].BodyMarkdown != "three" {
		t.Errorf("run should continue after a failed detail, got %+v", articles[2])
	}
}

func TestClient_FetchArticles_ListFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	articles, err := newTestClient(t, srv).FetchArticles(context.Background(), "ada")
	if err == nil || articles != nil {
		t.Fatalf("expected fatal error, got %v / %v", articles, err)
	}
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if r.Header.Get("Accept") != "*/*" {
			t.Errorf("image Accept = %q", r.Header.Get("Accept"))
		}

		fmt.Fprint(w, "PNGDATA")
	}))
	defer srv.Close()

	c := newTestClient(t, srv)

	data, err := c.Download(context.Background(), srv.URL+"/a.png")
	if err != nil || string(data) != "PNGDATA" {
		t.Fatalf("Download = %q, %v", data, err)
	}

	if _, err := c.Download(context.Background(), srv.URL+"/missing.png"); !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("expected status error, got %v", err)
	}

	if _, err := c.Download(context.Background(), " "); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
}

func TestClient_Download_RespectsBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 2*1024*1024))
	}))
	defer srv.Close()

	cfg := config.Default().API
	cfg.BaseURL = srv.URL
	cfg.MaxBodyMB = 1

	data, err := NewClientWithHTTP(cfg, srv.Client(), nil).Download(context.Background(), srv.URL+"/big")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if len(data) != 1024*1024 {
		t.Errorf("expected body capped at 1MB, got %d bytes", len(data))
	}
}
