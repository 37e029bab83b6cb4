package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/todos/config"
	"github.com/xiaoyuanzhu-com/todos/db"
	"github.com/xiaoyuanzhu-com/todos/notifications"
	"github.com/xiaoyuanzhu-com/todos/session"
	"github.com/xiaoyuanzhu-com/todos/views"
)

const testCookie = "sid"

// client replays the session cookie like a browser would
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

func newTestClient(t *testing.T) (*client, *notifications.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Open(db.Config{
		Path:   filepath.Join(t.TempDir(), "sessions.sqlite"),
		Driver: config.DriverPure,
	})
	if err != nil {
		t.Fatalf("db.Open failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	tmpl, err := views.Templates()
	if err != nil {
		t.Fatalf("views.Templates failed: %v", err)
	}

	notif := notifications.NewService()
	t.Cleanup(notif.Shutdown)

	sessions := session.NewManager(session.Config{CookieName: testCookie, MaxAge: time.Hour}, database)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	SetupRoutes(r, NewHandlers(notif), sessions.Middleware())

	return &client{t: t, router: r}, notif
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	cl.t.Helper()
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookie {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("status: got %d, want 302 (body %q)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("Location: got %s, want %s", got, location)
	}
}

func expectBody(t *testing.T, w *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	body := w.Body.String()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRoot_RedirectsToLists(t *testing.T) {
	cl, _ := newTestClient(t)
	expectRedirect(t, cl.get("/"), "/lists")
}

func TestCreateList_FlashShownOnce(t *testing.T) {
	cl, _ := newTestClient(t)

	w := cl.postForm("/lists", url.Values{"todoListTitle": {"  Work  "}})
	expectRedirect(t, w, "/lists")

	w = cl.get("/lists")
	expectBody(t, w, "<h3>Work</h3>", "The todo list has been created.", `href="/lists/1"`)

	w = cl.get("/lists")
	if strings.Contains(w.Body.String(), "has been created") {
		t.Error("flash should be shown only once")
	}
}

func TestCreateList_Validation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"empty", "", "The list title is required."},
		{"blank", "   ", "The list title is required."},
		{"too long", strings.Repeat("x", 101), "List title must be between 1 and 100 characters."},
		{"duplicate", "Work", "List title must be unique."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl, _ := newTestClient(t)
			expectRedirect(t, cl.postForm("/lists", url.Values{"todoListTitle": {"Work"}}), "/lists")

			w := cl.postForm("/lists", url.Values{"todoListTitle": {tt.title}})
			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", w.Code)
			}
			expectBody(t, w, tt.want)
		})
	}
}

func TestCreateList_MultibyteTitleWithinLimit(t *testing.T) {
	cl, _ := newTestClient(t)

	title := strings.Repeat("é", 100)
	expectRedirect(t, cl.postForm("/lists", url.Values{"todoListTitle": {title}}), "/lists")
}

func TestToggleTodo_FlashReflectsNewState(t *testing.T) {
	cl, _ := newTestClient(t)
	cl.postForm("/lists", url.Values{"todoListTitle": {"Groceries"}})
	expectRedirect(t, cl.postForm("/lists/1/todos", url.Values{"todoTitle": {"Milk"}}), "/lists/1")

	expectRedirect(t, cl.postForm("/lists/1/todos/1/toggle", nil), "/lists/1")
	expectBody(t, cl.get("/lists/1"), "&#34;Milk&#34; marked done.")

	expectRedirect(t, cl.postForm("/lists/1/todos/1/toggle", nil), "/lists/1")
	expectBody(t, cl.get("/lists/1"), "&#34;Milk&#34; marked as NOT done!")
}

func TestListPage_Actions(t *testing.T) {
	cl, _ := newTestClient(t)
	cl.postForm("/lists", url.Values{"todoListTitle": {"Groceries"}})
	cl.postForm("/lists/1/todos", url.Values{"todoTitle": {"Milk"}})
	cl.postForm("/lists/1/todos", url.Values{"todoTitle": {"Eggs"}})

	w := cl.postForm("/lists/1/todos", url.Values{"todoTitle": {""}})
	if w.Code != http.StatusOK {
		t.Fatalf("invalid todo: got %d, want 200", w.Code)
	}
	expectBody(t, w, "The todo title is required.", "<h3>Eggs</h3>")

	expectRedirect(t, cl.postForm("/lists/1/complete_all", nil), "/lists/1")
	expectBody(t, cl.get("/lists/1"), "All todos have been marked as done.", `<section id="todos" class="done">`)

	expectRedirect(t, cl.postForm("/lists/1/todos/2/destroy", nil), "/lists/1")
	w = cl.get("/lists/1")
	expectBody(t, w, "The todo has been deleted.")
	if strings.Contains(w.Body.String(), "<h3>Eggs</h3>") {
		t.Error("deleted todo still listed")
	}
}

func TestEditList(t *testing.T) {
	cl, _ := newTestClient(t)
	cl.postForm("/lists", url.Values{"todoListTitle": {"Work"}})
	cl.postForm("/lists", url.Values{"todoListTitle": {"Home"}})

	expectBody(t, cl.get("/lists/1/edit"), "Editing 'Work'")

	// Keeping the current title is allowed
	expectRedirect(t, cl.postForm("/lists/1/edit", url.Values{"todoListTitle": {"Work"}}), "/lists/1")
	expectBody(t, cl.get("/lists/1"), "Todo list updated.")

	w := cl.postForm("/lists/1/edit", url.Values{"todoListTitle": {"Home"}})
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate rename: got %d, want 200", w.Code)
	}
	expectBody(t, w, "List title must be unique.", `value="Home"`)

	expectRedirect(t, cl.postForm("/lists/1/edit", url.Values{"todoListTitle": {"Office"}}), "/lists/1")
	expectBody(t, cl.get("/lists"), "<h3>Office</h3>")

	expectRedirect(t, cl.postForm("/lists/1/destroy", nil), "/lists")
	w = cl.get("/lists")
	expectBody(t, w, "Todo list deleted.")
	if strings.Contains(w.Body.String(), "Office") {
		t.Error("deleted list still shown")
	}
}

func TestNotFound(t *testing.T) {
	cl, _ := newTestClient(t)
	cl.postForm("/lists", url.Values{"todoListTitle": {"Work"}})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/lists/99"},
		{http.MethodGet, "/lists/abc"},
		{http.MethodGet, "/lists/99/edit"},
		{http.MethodPost, "/lists/99/edit"},
		{http.MethodPost, "/lists/99/destroy"},
		{http.MethodPost, "/lists/99/complete_all"},
		{http.MethodPost, "/lists/99/todos"},
		{http.MethodPost, "/lists/1/todos/9/toggle"},
		{http.MethodPost, "/lists/1/todos/x/destroy"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var w *httptest.ResponseRecorder
			if tt.method == http.MethodGet {
				w = cl.get(tt.path)
			} else {
				w = cl.postForm(tt.path, url.Values{"todoListTitle": {"New"}, "todoTitle": {"New"}})
			}
			if w.Code != http.StatusNotFound {
				t.Fatalf("status: got %d, want 404", w.Code)
			}
			if w.Body.String() != "Not found." {
				t.Errorf("body: got %q", w.Body.String())
			}
		})
	}
}

func TestNotFound_RecordsError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	notFound(c)

	if w.Code != http.StatusNotFound || w.Body.String() != "Not found." {
		t.Errorf("response: got %d %q", w.Code, w.Body.String())
	}
	last := c.Errors.Last()
	if last == nil || !errors.Is(last.Err, errNotFound) {
		t.Fatalf("error not recorded for the request log: %v", c.Errors)
	}
	if msg := last.Err.Error(); msg != strings.ToLower(msg) || strings.HasSuffix(msg, ".") {
		t.Errorf("error string %q should be lowercase without trailing punctuation", msg)
	}
}

func TestAPI_ListLifecycle(t *testing.T) {
	cl, _ := newTestClient(t)

	w := cl.sendJSON(http.MethodPost, "/api/lists", `{"title":" Work "}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: got %d (%s)", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/api/lists/1" {
		t.Errorf("Location: got %s", loc)
	}

	if w := cl.sendJSON(http.MethodPost, "/api/lists", `{"title":"Work"}`); w.Code != http.StatusConflict {
		t.Errorf("duplicate: got %d, want 409", w.Code)
	}

	w = cl.sendJSON(http.MethodPost, "/api/lists", `{"title":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty title: got %d, want 400", w.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error.Code != ErrCodeValidation || len(errResp.Error.Details) != 1 ||
		errResp.Error.Details[0].Message != "The list title is required." {
		t.Errorf("unexpected error response: %+v", errResp)
	}

	if w := cl.sendJSON(http.MethodPost, "/api/lists/1/todos", `{"title":"Email"}`); w.Code != http.StatusCreated {
		t.Fatalf("create todo: got %d", w.Code)
	}

	w = cl.sendJSON(http.MethodPost, "/api/lists/1/todos/1/toggle", "")
	var toggled DataResponse[struct {
		Title string `json:"title"`
		Done  bool   `json:"done"`
	}]
	if err := json.Unmarshal(w.Body.Bytes(), &toggled); err != nil {
		t.Fatalf("decode toggle: %v", err)
	}
	if !toggled.Data.Done || toggled.Data.Title != "Email" {
		t.Errorf("toggle: got %+v", toggled.Data)
	}

	w = cl.get("/api/lists")
	var lists ListResponse[TodoListSummary]
	if err := json.Unmarshal(w.Body.Bytes(), &lists); err != nil {
		t.Fatalf("decode lists: %v", err)
	}
	if len(lists.Data) != 1 || !lists.Data[0].IsDone || lists.Data[0].CountDone != 1 {
		t.Errorf("lists: got %+v", lists.Data)
	}

	if w := cl.sendJSON(http.MethodPut, "/api/lists/1", `{"title":"Office"}`); w.Code != http.StatusOK {
		t.Errorf("rename: got %d", w.Code)
	}
	if w := cl.sendJSON(http.MethodDelete, "/api/lists/1/todos/1", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete todo: got %d", w.Code)
	}
	if w := cl.sendJSON(http.MethodDelete, "/api/lists/1", ""); w.Code != http.StatusNoContent {
		t.Errorf("delete list: got %d", w.Code)
	}
	if w := cl.get("/api/lists/1"); w.Code != http.StatusNotFound {
		t.Errorf("get deleted list: got %d, want 404", w.Code)
	}
}

func TestMutations_NotifySession(t *testing.T) {
	cl, notif := newTestClient(t)
	cl.get("/lists")
	if cl.cookie == nil {
		t.Fatal("no session cookie")
	}

	events, unsubscribe := notif.Subscribe(cl.cookie.Value)
	defer unsubscribe()

	cl.postForm("/lists", url.Values{"todoListTitle": {"Work"}})
	cl.postForm("/lists/1/todos", url.Values{"todoTitle": {"Email"}})

	want := []notifications.Event{
		{Type: notifications.EventListsChanged},
		{Type: notifications.EventListChanged, ListID: 1},
	}
	for _, w := range want {
		select {
		case got := <-events:
			if got.Type != w.Type || got.ListID != w.ListID {
				t.Errorf("event: got %s/%d, want %s/%d", got.Type, got.ListID, w.Type, w.ListID)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", w.Type)
		}
	}
}
