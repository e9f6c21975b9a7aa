package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/shikshaconnect/shiksha/apps/api/echo"
	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
	identitysvc "github.com/shikshaconnect/shiksha/services/identity"
	insightsvc "github.com/shikshaconnect/shiksha/services/insight"
	visionsvc "github.com/shikshaconnect/shiksha/services/vision"
	inmemdb "github.com/shikshaconnect/shiksha/storage/database/inmem"
	testutil "github.com/shikshaconnect/shiksha/tests"
)

var (
	conf     *core.Config
	usrRepo  user.Repository
	stdRepo  student.Repository
	attRepo  attendance.Repository
	sessions map[string]core.SessionData

	errNotAuthenticated = httpErr{Error: "not authenticated"}
	errInvalidSession   = httpErr{Error: "invalid session"}
)

const mockInsightText = "Attendance is stable; watch class 10-B on Mondays."

func setup(t *testing.T) Server {
	conf = testutil.NewConfig()
	conf.Debug = false // keep canned error messages in responses

	// set up DB & repos
	db := testutil.OpenDB(t)
	usrRepo = inmemdb.NewUserRepository(db)
	stdRepo = inmemdb.NewStudentRepository(db)
	attRepo = inmemdb.NewAttendanceRepository(db)

	// set up services
	usrSvc := user.NewService(usrRepo, conf)
	stdSvc := student.NewService(stdRepo, visionsvc.NewServiceMock(core.ProcessedPhoto{ImageBase64: "cGhvdG8="}, nil), conf)
	attSvc := attendance.NewService(attRepo, stdRepo, insightsvc.NewServiceMock(mockInsightText, nil), conf)

	sessions = make(map[string]core.SessionData)
	validate, translator := testutil.NewValidator()

	// set up server
	return NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Conf:          conf,
			Logger:        testutil.Logger{},
			Identity:      identitysvc.NewServiceMock(sessions),
			UserSvc:       usrSvc,
			StudentSvc:    stdSvc,
			AttendanceSvc: attSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newCookieRequest authenticates via the session cookie instead of the
// Authorization header.
func newCookieRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	req, rec := newRequest(method, path, data...)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	return req, rec
}

func createTeacher(t *testing.T, token string) user.User {
	return testutil.CreateUser(t, usrRepo, "Asha Verma", "asha@test.in", user.RoleTeacher, "school-1", token)
}

func createAdmin(t *testing.T, token string) user.User {
	return testutil.CreateUser(t, usrRepo, "Admin", "admin@test.in", user.RoleAdministrator, "school-1", token)
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
