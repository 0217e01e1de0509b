package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/codestock/apps/api/echo"
	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/assignment"
	"github.com/trezcool/codestock/core/award"
	"github.com/trezcool/codestock/core/material"
	"github.com/trezcool/codestock/core/presence"
	"github.com/trezcool/codestock/core/session"
	"github.com/trezcool/codestock/core/user"
	"github.com/trezcool/codestock/core/visit"
	"github.com/trezcool/codestock/services/email"
	"github.com/trezcool/codestock/services/logger"
	"github.com/trezcool/codestock/storage/database/inmem"
	"github.com/trezcool/codestock/storage/session"
)

type testApp struct {
	app     Server
	usrRepo user.Repository
	usrSvc  *user.Service
	sessSvc *session.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	core.Conf.Debug = false
	core.Conf.TestMode = true
	core.Conf.Env = "DEV"

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	usrRepo := inmemdb.NewUserRepository(db)

	logger := logsvc.NewConsoleLogger(log.Default())
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	sessSvc := session.NewService(sessionstore.NewInMemStore(), core.Conf.Server.SessionTTL)
	presSvc := presence.NewService(inmemdb.NewPresenceRepository(db), usrSvc, logger)

	app := NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			SignalShutdown: func() {},

			UserSvc:       usrSvc,
			SessionSvc:    sessSvc,
			PresenceSvc:   presSvc,
			MaterialSvc:   material.NewService(inmemdb.NewMaterialRepository(db)),
			AssignmentSvc: assignment.NewService(inmemdb.NewAssignmentRepository(db)),
			AwardSvc:      award.NewService(inmemdb.NewAwardRepository(db)),
			VisitSvc:      visit.NewService(inmemdb.NewVisitRepository(db)),
		},
	)
	return &testApp{app: app, usrRepo: usrRepo, usrSvc: usrSvc, sessSvc: sessSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	wantCode int
	wantData []byte
}

func newSessionRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newSessionRequest(method, path, nil, data...)
}

// login runs a real login round trip and hands back the session cookie.
func login(t *testing.T, app Server, username, password string) *http.Cookie {
	t.Helper()

	body := marchallObj(t, map[string]string{"username": username, "password": password})
	req, rec := newRequest(http.MethodPost, "/v1/login", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login() code = %v; body %s", rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == "sessionid" {
			return c
		}
	}
	t.Fatal("sessionCookie(): no sessionid cookie in response")
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
