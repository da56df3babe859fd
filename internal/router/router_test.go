package router

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/userdir/internal/db/memorystorage"
	"github.com/patric-chuzhbe/userdir/internal/logger"
	"github.com/patric-chuzhbe/userdir/internal/mockstorage"
	"github.com/patric-chuzhbe/userdir/internal/service"
	"github.com/patric-chuzhbe/userdir/internal/user"
)

var uuidPattern = regexp.MustCompile(`^\w+-\w+-\w+-\w+-\w+$`)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	err := logger.Init("debug")
	require.NoError(t, err)

	db, err := memorystorage.New()
	require.NoError(t, err)

	srv := httptest.NewServer(New(service.New(db)))
	t.Cleanup(srv.Close)

	return srv
}

func newMockedServer(t *testing.T, db *mockstorage.StorageMock) *httptest.Server {
	t.Helper()

	err := logger.Init("debug")
	require.NoError(t, err)

	srv := httptest.NewServer(New(service.New(db)))
	t.Cleanup(srv.Close)

	return srv
}

func createUser(t *testing.T, srv *httptest.Server, username string) user.User {
	t.Helper()

	var created user.User
	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": username}).
		SetResult(&created).
		Post(srv.URL + "/api/users")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	return created
}

func TestPostApiusers(t *testing.T) {
	type tRequest struct {
		method string
		body   string
	}
	type tExpectedResponse struct {
		code int
		body *regexp.Regexp
	}
	testCases := []struct {
		name             string
		request          tRequest
		expectedResponse tExpectedResponse
	}{
		{
			name: "positive",
			request: tRequest{
				http.MethodPost,
				`{"username": "testuser"}`,
			},
			expectedResponse: tExpectedResponse{
				http.StatusCreated,
				regexp.MustCompile(`\{\s*"id"\s*:\s*"\w+-\w+-\w+-\w+-\w+"\s*,\s*"username"\s*:\s*"testuser"\s*\}`),
			},
		},
		{
			name: "empty_JSON",
			request: tRequest{
				http.MethodPost,
				`{}`,
			},
			expectedResponse: tExpectedResponse{
				http.StatusUnprocessableEntity,
				nil,
			},
		},
		{
			name: "malformed_JSON",
			request: tRequest{
				http.MethodPost,
				`{"username": `,
			},
			expectedResponse: tExpectedResponse{
				http.StatusUnprocessableEntity,
				nil,
			},
		},
		{
			name: "unsupported_method_patch",
			request: tRequest{
				http.MethodPatch,
				`{"username": "testuser"}`,
			},
			expectedResponse: tExpectedResponse{
				http.StatusMethodNotAllowed,
				nil,
			},
		},
	}

	srv := newTestServer(t)

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			req := resty.New().R()
			req.Method = testCase.request.method
			req.URL = fmt.Sprintf("%s/api/users", srv.URL)
			req.SetHeader("Content-Type", "application/json")
			req.SetBody(testCase.request.body)

			resp, err := req.Send()
			assert.NoError(t, err, "error making HTTP request")

			assert.Equal(t, testCase.expectedResponse.code, resp.StatusCode(), "Response code didn't match expected value")

			if testCase.expectedResponse.body != nil {
				assert.NotNil(
					t,
					testCase.expectedResponse.body.FindIndex(resp.Body()),
					fmt.Sprintf(
						"The response body should match expected value (%s)",
						testCase.expectedResponse.body.String(),
					),
				)
			}
		})
	}
}

func TestCreateIsIdempotentByUsername(t *testing.T) {
	srv := newTestServer(t)

	first := createUser(t, srv, "alice")
	assert.Regexp(t, uuidPattern, first.ID)
	assert.Equal(t, "alice", first.Username)

	var second user.User
	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"username": "alice"}).
		SetResult(&second).
		Post(srv.URL + "/api/users")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode(), "repeated create should answer 200, not 201")
	assert.Equal(t, first, second, "repeated create should return the already existing record")
}

func TestGetApiuserRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	created := createUser(t, srv, "bob")

	var fetched user.User
	resp, err := resty.New().R().
		SetResult(&fetched).
		Get(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, created, fetched, "the just-created record should be fetched unchanged")
}

func TestPutApiuser(t *testing.T) {
	srv := newTestServer(t)

	created := createUser(t, srv, "carol")

	var updated user.User
	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(user.User{ID: created.ID, Username: "caroline"}).
		SetResult(&updated).
		Put(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, created.ID, updated.ID, "update should preserve the id")
	assert.Equal(t, "caroline", updated.Username)

	var fetched user.User
	resp, err = resty.New().R().
		SetResult(&fetched).
		Get(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, updated, fetched, "a subsequent get should reflect the new username")
}

func TestPutApiuserIDMismatch(t *testing.T) {
	srv := newTestServer(t)

	created := createUser(t, srv, "dave")

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(user.User{ID: "some-other-id", Username: "mallory"}).
		Put(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

	var fetched user.User
	resp, err = resty.New().R().
		SetResult(&fetched).
		Get(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, created, fetched, "a rejected update should leave the storage unchanged")
}

func TestDeleteApiuserIsTerminal(t *testing.T) {
	srv := newTestServer(t)

	created := createUser(t, srv, "erin")

	resp, err := resty.New().R().Delete(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	resp, err = resty.New().R().Get(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = resty.New().R().Delete(srv.URL + "/api/users/" + created.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode(), "a second delete should answer 404")
}

func TestMissingUserYields404(t *testing.T) {
	srv := newTestServer(t)

	const unknownID = "00000000-0000-0000-0000-000000000000"

	resp, err := resty.New().R().Get(srv.URL + "/api/users/" + unknownID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(user.User{ID: unknownID, Username: "nobody"}).
		Put(srv.URL + "/api/users/" + unknownID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())

	resp, err = resty.New().R().Delete(srv.URL + "/api/users/" + unknownID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestGetApiusers(t *testing.T) {
	srv := newTestServer(t)

	var empty []user.User
	resp, err := resty.New().R().
		SetResult(&empty).
		Get(srv.URL + "/api/users")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Empty(t, empty, "an empty directory should yield an empty array")

	alice := createUser(t, srv, "alice")
	bob := createUser(t, srv, "bob")
	carol := createUser(t, srv, "carol")

	resp, err = resty.New().R().Delete(srv.URL + "/api/users/" + bob.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode())

	var users []user.User
	resp, err = resty.New().R().
		SetResult(&users).
		Get(srv.URL + "/api/users")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.ElementsMatch(
		t,
		[]user.User{alice, carol},
		users,
		"the list should contain committed creates and exclude deleted users",
	)
}

func TestPostApiusersGzipped(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"username": "zipped"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Content-Encoding", "gzip").
		SetBody(buf.Bytes()).
		Post(srv.URL + "/api/users")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `"username":"zipped"`)
}

func TestStorageFailureYields500(t *testing.T) {
	dbErr := errors.New("connection refused")

	testCases := []struct {
		name    string
		arrange func(db *mockstorage.StorageMock)
		act     func(srv *httptest.Server) (*resty.Response, error)
	}{
		{
			name: "list",
			arrange: func(db *mockstorage.StorageMock) {
				db.On("ListUsers", mock.Anything).Return(nil, dbErr)
			},
			act: func(srv *httptest.Server) (*resty.Response, error) {
				return resty.New().R().Get(srv.URL + "/api/users")
			},
		},
		{
			name: "create",
			arrange: func(db *mockstorage.StorageMock) {
				db.On("FindUserByUsername", mock.Anything, "alice").Return(user.User{}, false, dbErr)
			},
			act: func(srv *httptest.Server) (*resty.Response, error) {
				return resty.New().R().
					SetHeader("Content-Type", "application/json").
					SetBody(map[string]string{"username": "alice"}).
					Post(srv.URL + "/api/users")
			},
		},
		{
			name: "get",
			arrange: func(db *mockstorage.StorageMock) {
				db.On("FindUserByID", mock.Anything, "some-id").Return(user.User{}, false, dbErr)
			},
			act: func(srv *httptest.Server) (*resty.Response, error) {
				return resty.New().R().Get(srv.URL + "/api/users/some-id")
			},
		},
		{
			name: "update",
			arrange: func(db *mockstorage.StorageMock) {
				db.On("UpdateUser", mock.Anything, mock.Anything).Return(user.User{}, false, dbErr)
			},
			act: func(srv *httptest.Server) (*resty.Response, error) {
				return resty.New().R().
					SetHeader("Content-Type", "application/json").
					SetBody(user.User{ID: "some-id", Username: "alice"}).
					Put(srv.URL + "/api/users/some-id")
			},
		},
		{
			name: "delete",
			arrange: func(db *mockstorage.StorageMock) {
				db.On("DeleteUser", mock.Anything, "some-id").Return(false, dbErr)
			},
			act: func(srv *httptest.Server) (*resty.Response, error) {
				return resty.New().R().Delete(srv.URL + "/api/users/some-id")
			},
		},
		{
			name: "ping",
			arrange: func(db *mockstorage.StorageMock) {
				db.On("Ping", mock.Anything).Return(dbErr)
			},
			act: func(srv *httptest.Server) (*resty.Response, error) {
				return resty.New().R().Get(srv.URL + "/ping")
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			db := &mockstorage.StorageMock{}
			testCase.arrange(db)

			srv := newMockedServer(t, db)

			resp, err := testCase.act(srv)
			require.NoError(t, err)

			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
			db.AssertExpectations(t)
		})
	}
}

func TestGetPing(t *testing.T) {
	srv := newTestServer(t)

	resp, err := resty.New().R().Get(srv.URL + "/ping")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
}
