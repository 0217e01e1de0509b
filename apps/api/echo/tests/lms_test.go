package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/codestock/core/assignment"
	"github.com/trezcool/codestock/core/award"
	"github.com/trezcool/codestock/core/material"
	"github.com/trezcool/codestock/core/user"
	"github.com/trezcool/codestock/core/visit"
	"github.com/trezcool/codestock/tests"
)

func lmsSetup(t *testing.T) (*testApp, *http.Cookie, *http.Cookie) {
	t.Helper()

	ta := setup(t)
	testutil.CreateUser(t, ta.usrRepo, "alice", "st001", "alice@test.cd", "secret123", user.RoleStudent)
	testutil.CreateUser(t, ta.usrRepo, "admin", "adm001", "admin@test.cd", "secret123", user.RoleAdmin)
	return ta, login(t, ta.app, "alice", "secret123"), login(t, ta.app, "admin", "secret123")
}

func Test_materialApi_crud(t *testing.T) {
	ta, aliceCookie, adminCookie := lmsSetup(t)

	body := marchallObj(t, map[string]interface{}{
		"title":     "Introduction to Go",
		"content":   "Start with the tour.",
		"category":  "golang",
		"read_time": 12,
	})

	// mutations are admin only
	req, rec := newSessionRequest(http.MethodPost, "/v1/materials", aliceCookie, body)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)

	req, rec = newSessionRequest(http.MethodPost, "/v1/materials", adminCookie, body)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create material code = %v; body %s", rec.Code, rec.Body.String())
	}
	var m material.Material
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshalling material: %v", err)
	}
	if m.ID == 0 || m.AuthorID == 0 {
		t.Errorf("create material = %+v; want ID and author set", m)
	}

	// a student can read
	req, rec = newSessionRequest(http.MethodGet, fmt.Sprintf("/v1/materials/%d", m.ID), aliceCookie)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get material code = %v", rec.Code)
	}

	req, rec = newSessionRequest(http.MethodPut, fmt.Sprintf("/v1/materials/%d", m.ID), adminCookie,
		marchallObj(t, map[string]string{"title": "Advanced Go"}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update material code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshalling material: %v", err)
	}
	if m.Title != "Advanced Go" || m.Content != "Start with the tour." {
		t.Errorf("update material = %+v; want title changed, content kept", m)
	}

	req, rec = newSessionRequest(http.MethodDelete, fmt.Sprintf("/v1/materials/%d", m.ID), adminCookie)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete material code = %v", rec.Code)
	}

	req, rec = newSessionRequest(http.MethodGet, fmt.Sprintf("/v1/materials/%d", m.ID), aliceCookie)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted material code = %v; want 404", rec.Code)
	}
}

func Test_assignmentApi_submissions(t *testing.T) {
	ta, aliceCookie, adminCookie := lmsSetup(t)

	req, rec := newSessionRequest(http.MethodPost, "/v1/assignments", adminCookie, marchallObj(t, map[string]interface{}{
		"title":       "HTTP server basics",
		"description": "Build a small REST endpoint.",
		"course":      "golang",
		"due_date":    time.Now().AddDate(0, 0, 14).Format(time.RFC3339),
	}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create assignment code = %v; body %s", rec.Code, rec.Body.String())
	}
	var a assignment.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("unmarshalling assignment: %v", err)
	}

	// submitting against a missing assignment is a 400
	req, rec = newSessionRequest(http.MethodPost, "/v1/submissions", aliceCookie, marchallObj(t, map[string]interface{}{
		"assignment_id": 999,
		"file_url":      "https://files.test.cd/sub.pdf",
	}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("submit to missing assignment code = %v; want 400", rec.Code)
	}

	req, rec = newSessionRequest(http.MethodPost, "/v1/submissions", aliceCookie, marchallObj(t, map[string]interface{}{
		"assignment_id": a.ID,
		"file_url":      "https://files.test.cd/sub.pdf",
		"comment":       "first try",
	}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit code = %v; body %s", rec.Code, rec.Body.String())
	}
	var sub assignment.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("unmarshalling submission: %v", err)
	}
	if sub.Status != assignment.StatusSubmitted {
		t.Errorf("submission status = %q; want %q", sub.Status, assignment.StatusSubmitted)
	}

	// the student sees their own submissions
	req, rec = newSessionRequest(http.MethodGet, "/v1/submissions", aliceCookie)
	ta.app.ServeHTTP(rec, req)
	var mine []assignment.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("unmarshalling submissions: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("my submissions = %d; want 1", len(mine))
	}

	// grading is admin only
	gradeBody := marchallObj(t, map[string]interface{}{"grade": 85})
	req, rec = newSessionRequest(http.MethodPut, fmt.Sprintf("/v1/submissions/%d/grade", sub.ID), aliceCookie, gradeBody)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student grade code = %v; want 403", rec.Code)
	}

	req, rec = newSessionRequest(http.MethodPut, fmt.Sprintf("/v1/submissions/%d/grade", sub.ID), adminCookie, gradeBody)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("grade code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("unmarshalling submission: %v", err)
	}
	if sub.Grade == nil || *sub.Grade != 85 {
		t.Errorf("graded submission = %+v; want grade 85", sub)
	}
	if sub.Status != assignment.StatusGraded {
		t.Errorf("graded submission status = %q; want %q", sub.Status, assignment.StatusGraded)
	}
}

func Test_awardApi_userAwards(t *testing.T) {
	ta, aliceCookie, adminCookie := lmsSetup(t)

	req, rec := newSessionRequest(http.MethodPost, "/v1/awards", adminCookie, marchallObj(t, map[string]string{
		"name":        "First Steps",
		"description": "Completed the onboarding track.",
		"badge":       "GO",
	}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create award code = %v; body %s", rec.Code, rec.Body.String())
	}
	var a award.Award
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("unmarshalling award: %v", err)
	}

	alice, err := ta.usrSvc.GetByUsername("alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}

	// assigning an unknown award is a 400
	req, rec = newSessionRequest(http.MethodPost, "/v1/user-awards", adminCookie,
		marchallObj(t, map[string]int{"user_id": alice.ID, "award_id": 999}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("assign unknown award code = %v; want 400", rec.Code)
	}

	req, rec = newSessionRequest(http.MethodPost, "/v1/user-awards", adminCookie,
		marchallObj(t, map[string]int{"user_id": alice.ID, "award_id": a.ID}))
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign award code = %v; body %s", rec.Code, rec.Body.String())
	}

	req, rec = newSessionRequest(http.MethodGet, "/v1/user-awards", aliceCookie)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("user-awards code = %v", rec.Code)
	}
	var details []award.UserAwardDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("unmarshalling user awards: %v", err)
	}
	if len(details) != 1 || details[0].Award.Name != "First Steps" {
		t.Errorf("user-awards = %+v; want the First Steps award", details)
	}
}

func Test_visitApi_stats(t *testing.T) {
	ta, aliceCookie, adminCookie := lmsSetup(t)

	record := func(cookie *http.Cookie, page string) {
		req, rec := newSessionRequest(http.MethodPost, "/v1/page-visits", cookie, marchallObj(t, map[string]string{"page": page}))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("record visit code = %v; body %s", rec.Code, rec.Body.String())
		}
	}

	record(aliceCookie, "/dashboard")
	record(aliceCookie, "/dashboard")
	record(aliceCookie, "/materials")
	record(adminCookie, "/dashboard")

	// stats are admin only
	req, rec := newSessionRequest(http.MethodGet, "/v1/page-visits/stats", aliceCookie)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermissionDenied)}, rec)

	req, rec = newSessionRequest(http.MethodGet, "/v1/page-visits/stats?limit=1", adminCookie)
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats code = %v; body %s", rec.Code, rec.Body.String())
	}
	var stats []visit.PageCount
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshalling stats: %v", err)
	}
	if len(stats) != 1 || stats[0].Page != "/dashboard" || stats[0].Count != 3 {
		t.Errorf("stats = %+v; want /dashboard with 3 visits", stats)
	}

	// the student sees their own history
	req, rec = newSessionRequest(http.MethodGet, "/v1/page-visits", aliceCookie)
	ta.app.ServeHTTP(rec, req)
	var mine []visit.Visit
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("unmarshalling visits: %v", err)
	}
	if len(mine) != 3 {
		t.Errorf("my visits = %d; want 3", len(mine))
	}
}
