// Package router binds the HTTP surface of the user directory to the
// service layer: one handler per verb, each mapping the service outcome
// to a status code and JSON body.
package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/userdir/internal/gzippedhttp"
	"github.com/patric-chuzhbe/userdir/internal/logger"
	"github.com/patric-chuzhbe/userdir/internal/models"
	"github.com/patric-chuzhbe/userdir/internal/user"
)

type userDirectory interface {
	CreateOrFetchUser(ctx context.Context, username string) (user.User, bool, error)

	ListUsers(ctx context.Context) ([]user.User, error)

	GetUser(ctx context.Context, id string) (user.User, bool, error)

	UpdateUser(ctx context.Context, usr user.User) (user.User, bool, error)

	DeleteUser(ctx context.Context, id string) (bool, error)

	Ping(ctx context.Context) error
}

// Router holds the handler methods for the user resource.
type Router struct {
	users    userDirectory
	validate *validator.Validate
}

// New builds the chi mux with logging and gzip middleware and the
// /api/users routes bound to the Router's handler methods.
func New(users userDirectory) *chi.Mux {
	theRouter := &Router{
		users:    users,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Get(`/ping`, theRouter.GetPing)

	router.Route(`/api/users`, func(router chi.Router) {
		router.Get(`/`, theRouter.GetApiusers)
		router.Post(`/`, theRouter.PostApiusers)
		router.Get(`/{userID}`, theRouter.GetApiuser)
		router.Put(`/{userID}`, theRouter.PutApiuser)
		router.Delete(`/{userID}`, theRouter.DeleteApiuser)
	})

	return router
}

// GetApiusers handles GET /api/users and responds with all known users.
func (r *Router) GetApiusers(res http.ResponseWriter, req *http.Request) {
	users, err := r.users.ListUsers(req.Context())
	if err != nil {
		logger.Log.Errorln("unable to list users:", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(res, http.StatusOK, users)
}

// PostApiusers handles POST /api/users. A username already present in the
// directory yields the existing record with 200; otherwise a new record is
// created and answered with 201.
func (r *Router) PostApiusers(res http.ResponseWriter, req *http.Request) {
	var request models.CreateUserRequest
	if !r.decodeAndValidate(res, req, &request) {
		return
	}

	usr, created, err := r.users.CreateOrFetchUser(req.Context(), request.Username)
	if err != nil {
		logger.Log.Errorln("unable to create user:", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	writeJSON(res, status, usr)
}

// GetApiuser handles GET /api/users/{userID}.
func (r *Router) GetApiuser(res http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "userID")

	usr, found, err := r.users.GetUser(req.Context(), userID)
	if err != nil {
		logger.Log.Errorln("unable to get user:", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		res.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(res, http.StatusOK, usr)
}

// PutApiuser handles PUT /api/users/{userID}. The id in the body must
// repeat the id from the path; a mismatch is rejected with 400 before the
// storage is touched.
func (r *Router) PutApiuser(res http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "userID")

	var request models.UpdateUserRequest
	if !r.decodeAndValidate(res, req, &request) {
		return
	}

	if request.ID != userID {
		res.WriteHeader(http.StatusBadRequest)
		return
	}

	usr, found, err := r.users.UpdateUser(
		req.Context(),
		user.User{
			ID:       request.ID,
			Username: request.Username,
		},
	)
	if err != nil {
		logger.Log.Errorln("unable to update user:", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		res.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(res, http.StatusOK, usr)
}

// DeleteApiuser handles DELETE /api/users/{userID}.
func (r *Router) DeleteApiuser(res http.ResponseWriter, req *http.Request) {
	userID := chi.URLParam(req, "userID")

	found, err := r.users.DeleteUser(req.Context(), userID)
	if err != nil {
		logger.Log.Errorln("unable to delete user:", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !found {
		res.WriteHeader(http.StatusNotFound)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}

// GetPing handles GET /ping and reports storage health.
func (r *Router) GetPing(res http.ResponseWriter, req *http.Request) {
	if err := r.users.Ping(req.Context()); err != nil {
		logger.Log.Errorln("storage ping failed:", err)
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}

func (r *Router) decodeAndValidate(res http.ResponseWriter, req *http.Request, target any) bool {
	if err := json.NewDecoder(req.Body).Decode(target); err != nil {
		res.WriteHeader(http.StatusUnprocessableEntity)
		return false
	}

	if err := r.validate.Struct(target); err != nil {
		res.WriteHeader(http.StatusUnprocessableEntity)
		return false
	}

	return true
}

func writeJSON(res http.ResponseWriter, status int, value any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)

	if err := json.NewEncoder(res).Encode(value); err != nil {
		logger.Log.Errorln("unable to encode the response:", err)
	}
}
