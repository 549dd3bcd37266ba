package prerender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/ssr/internal/config"
	ssrerrors "github.com/vango-dev/ssr/internal/errors"
	"github.com/vango-dev/ssr/pkg/render"
	"github.com/vango-dev/ssr/pkg/routepath"
)

func quiet() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func page(parts ...any) render.Factory {
	return func(*render.Session, render.Props, render.Slots) (any, error) {
		return render.Template(parts...), nil
	}
}

func respond(resp *render.Response) render.Factory {
	return func(*render.Session, render.Props, render.Slots) (any, error) {
		return resp, nil
	}
}

type memStore struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
}

func (m *memStore) Put(_ context.Context, path, contentType string, body []byte) error {
	if m.err != nil {
		return m.err
	}
	if contentType != contentTypeHTML {
		return errors.New("unexpected content type " + contentType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages == nil {
		m.pages = make(map[string]string)
	}
	m.pages[path] = string(body)
	return nil
}

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"/":           "index.html",
		"":            "index.html",
		"/about":      "about/index.html",
		"/blog/post/": "blog/post/index.html",
		"/404.html":   "404.html",
	}
	for route, want := range tests {
		if got := OutputPath(route); got != want {
			t.Errorf("OutputPath(%q) = %q, want %q", route, got, want)
		}
	}
}

func TestPrerender(t *testing.T) {
	store := &memStore{}
	pages := []Page{
		{Route: "/", Factory: page(render.Text("<h1>home</h1>"))},
		{Route: "/about", Factory: func(_ *render.Session, props render.Props, _ render.Slots) (any, error) {
			return render.Template(render.Text("<p>"), props["who"], render.Text("</p>")), nil
		}, Props: render.Props{"who": "us"}},
		{Route: "/old", Factory: respond(render.NewRedirect("/new?a=1&b=2", http.StatusMovedPermanently))},
		{Route: "/gone", Factory: respond(&render.Response{Status: http.StatusGone})},
	}

	res, err := Prerender(context.Background(), store, pages, quiet())
	if err != nil {
		t.Fatal(err)
	}

	if got := store.pages["index.html"]; got != "<!DOCTYPE html>\n<h1>home</h1>" {
		t.Errorf("index.html = %q", got)
	}
	if got := store.pages["about/index.html"]; got != "<!DOCTYPE html>\n<p>us</p>" {
		t.Errorf("about/index.html = %q", got)
	}
	stub := store.pages["old/index.html"]
	if !strings.Contains(stub, `content="0;url=/new?a=1&amp;b=2"`) {
		t.Errorf("redirect stub = %q", stub)
	}
	if _, ok := store.pages["gone/index.html"]; ok {
		t.Error("non-redirect response should not be stored")
	}

	if len(res.Written) != 2 || len(res.Redirects) != 1 || len(res.Skipped) != 1 || res.Skipped[0] != "/gone" {
		t.Errorf("result = %+v", res)
	}
}

func TestPrerenderStopsOnRenderError(t *testing.T) {
	store := &memStore{}
	boom := errors.New("boom")
	pages := []Page{
		{Route: "/a", Factory: func(*render.Session, render.Props, render.Slots) (any, error) { return nil, boom }},
		{Route: "/b", Factory: page("b")},
	}
	_, err := Prerender(context.Background(), store, pages, quiet())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(store.pages) != 0 {
		t.Errorf("stored %v after a failure", store.pages)
	}
}

func TestPrerenderCleansRoutes(t *testing.T) {
	store := &memStore{}
	res, err := Prerender(context.Background(), store, []Page{{Route: "/docs//intro/", Factory: page("x")}}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.pages["docs/intro/index.html"]; !ok || res.Written[0] != "/docs/intro" {
		t.Errorf("pages = %v, written = %v", store.pages, res.Written)
	}

	_, err = Prerender(context.Background(), store, []Page{{Route: "/../x", Factory: page("x")}}, quiet())
	if !errors.Is(err, routepath.ErrEscapesRoot) {
		t.Errorf("err = %v, want ErrEscapesRoot", err)
	}
}

func TestPrerenderStoreFailure(t *testing.T) {
	disk := errors.New("disk full")
	_, err := Prerender(context.Background(), &memStore{err: disk}, []Page{{Route: "/", Factory: page("x")}}, quiet())
	if !errors.Is(err, disk) {
		t.Fatalf("err = %v", err)
	}
	if code := ssrerrors.CodeOf(err); code != "E160" {
		t.Errorf("code = %q, want E160", code)
	}
}

func TestPrerenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Prerender(ctx, &memStore{}, []Page{{Route: "/", Factory: page("x")}}, quiet())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}

	res, err := Prerender(context.Background(), store, []Page{
		{Route: "/", Factory: page("root")},
		{Route: "/docs/intro", Factory: page("intro")},
	}, quiet())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Written) != 2 {
		t.Fatalf("written = %v", res.Written)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), "docs", "intro", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "intro") {
		t.Errorf("docs/intro/index.html = %q", data)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "docs", "intro", "index.html.tmp")); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestFileStoreRejectsEscapingPaths(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "/etc/passwd", "../x.html", "a/../../x.html"} {
		if err := store.Put(context.Background(), key, contentTypeHTML, nil); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Put(%q) = %v, want ErrInvalidPath", key, err)
		}
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "site", "www/").WithCacheControl("no-cache")

	if err := store.Put(context.Background(), "blog/index.html", contentTypeHTML, []byte("<p>hi</p>")); err != nil {
		t.Fatal(err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("PutObject calls = %d", len(client.inputs))
	}
	in := client.inputs[0]
	if aws.ToString(in.Bucket) != "site" || aws.ToString(in.Key) != "www/blog/index.html" {
		t.Errorf("bucket/key = %q/%q", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != contentTypeHTML || aws.ToString(in.CacheControl) != "no-cache" {
		t.Errorf("content type = %q, cache control = %q", aws.ToString(in.ContentType), aws.ToString(in.CacheControl))
	}
	if aws.ToInt64(in.ContentLength) != 9 || client.bodies[0] != "<p>hi</p>" {
		t.Errorf("body = %q (%d)", client.bodies[0], aws.ToInt64(in.ContentLength))
	}
}

func TestS3StoreError(t *testing.T) {
	denied := errors.New("access denied")
	store := NewS3Store(&fakeS3{err: denied}, "site", "")
	if err := store.Put(context.Background(), "index.html", contentTypeHTML, nil); !errors.Is(err, denied) {
		t.Errorf("err = %v", err)
	}
}

func TestNewS3StoreFromConfig(t *testing.T) {
	if _, err := NewS3StoreFromConfig(config.S3Config{}); ssrerrors.CodeOf(err) != "E161" {
		t.Errorf("missing bucket err = %v, want E161", err)
	}

	store, err := NewS3StoreFromConfig(config.S3Config{
		Bucket:       "site",
		Prefix:       "p/",
		Region:       "eu-west-1",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.bucket != "site" || store.prefix != "p/" {
		t.Errorf("store = %+v", store)
	}
	client, ok := store.client.(*s3.Client)
	if !ok {
		t.Fatalf("client = %T", store.client)
	}
	if opts := client.Options(); opts.Region != "eu-west-1" || !opts.UsePathStyle || aws.ToString(opts.BaseEndpoint) != "http://localhost:9000" {
		t.Errorf("options region=%q pathStyle=%v endpoint=%q", opts.Region, opts.UsePathStyle, aws.ToString(opts.BaseEndpoint))
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials().Retrieve(context.Background()); err == nil {
		t.Error("expected an error without credentials")
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials().Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" || creds.Source != "environment" {
		t.Errorf("creds = %+v", creds)
	}
}
