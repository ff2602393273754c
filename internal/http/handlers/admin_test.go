package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyflow/accounthub/internal/domain/user"
	"github.com/studyflow/accounthub/internal/http/handlers"
	"github.com/studyflow/accounthub/internal/http/middlewares"
)

type fakeAdminStore struct {
	listFn       func(ctx context.Context) ([]user.User, error)
	updateRoleFn func(ctx context.Context, id int64, role string) (user.User, error)
	deleteFn     func(ctx context.Context, id int64) error
	countAllFn   func(ctx context.Context) (int, error)
	countRoleFn  func(ctx context.Context, role string) (int, error)
	countSinceFn func(ctx context.Context, since time.Time) (int, error)
}

func (f *fakeAdminStore) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeAdminStore) UpdateRole(ctx context.Context, id int64, role string) (user.User, error) {
	if f.updateRoleFn != nil {
		return f.updateRoleFn(ctx, id, role)
	}
	return user.User{}, nil
}

func (f *fakeAdminStore) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAdminStore) CountAll(ctx context.Context) (int, error) {
	if f.countAllFn != nil {
		return f.countAllFn(ctx)
	}
	return 0, nil
}

func (f *fakeAdminStore) CountByRole(ctx context.Context, role string) (int, error) {
	if f.countRoleFn != nil {
		return f.countRoleFn(ctx, role)
	}
	return 0, nil
}

func (f *fakeAdminStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	if f.countSinceFn != nil {
		return f.countSinceFn(ctx, since)
	}
	return 0, nil
}

type fakeDeleteGate struct {
	fn func(ctx context.Context, callerID, targetID int64) (user.User, error)
}

func (f *fakeDeleteGate) AuthorizeDelete(ctx context.Context, callerID, targetID int64) (user.User, error) {
	if f.fn != nil {
		return f.fn(ctx, callerID, targetID)
	}
	return user.User{}, nil
}

// withCaller plants the identity RequireAuth would have established.
func withCaller(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxUserID, id)
		c.Next()
	}
}

func TestAdminStats(t *testing.T) {
	store := &fakeAdminStore{
		countAllFn:   func(ctx context.Context) (int, error) { return 10, nil },
		countRoleFn:  func(ctx context.Context, role string) (int, error) { return 2, nil },
		countSinceFn: func(ctx context.Context, since time.Time) (int, error) { return 3, nil },
	}

	h := handlers.NewAdminHandler(store, &fakeDeleteGate{}, nil)
	r := setupRouter(http.MethodGet, "/api/admin/stats", h.Stats)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var s user.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &s); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	want := user.Stats{TotalUsers: 10, TotalAdmins: 2, RecentUsers: 3}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}
}

func TestAdminListUsersOmitsHashes(t *testing.T) {
	now := time.Now().UTC()

	store := &fakeAdminStore{
		listFn: func(ctx context.Context) ([]user.User, error) {
			return []user.User{
				{ID: 2, Email: "b@x.com", PasswordHash: "hash-b", Role: user.RoleUser, CreatedAt: now},
				{ID: 1, Email: "a@x.com", PasswordHash: "hash-a", Role: user.RoleAdmin, CreatedAt: now.Add(-time.Hour)},
			}, nil
		},
	}

	h := handlers.NewAdminHandler(store, &fakeDeleteGate{}, nil)
	r := setupRouter(http.MethodGet, "/api/admin/users", h.ListUsers)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Items []map[string]interface{} `json:"items"`
		Count int                      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.Count != 2 || len(resp.Items) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	for _, item := range resp.Items {
		for key := range item {
			if key == "passwordHash" || key == "password_hash" {
				t.Fatalf("listing leaked a hash field: %v", item)
			}
		}
	}
}

func TestAdminUpdateRole(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		storeSetup     func(*fakeAdminStore)
		wantStatusCode int
	}{
		{
			name: "success",
			path: "/api/admin/users/2/role",
			body: `{"role":"admin"}`,
			storeSetup: func(f *fakeAdminStore) {
				f.updateRoleFn = func(ctx context.Context, id int64, role string) (user.User, error) {
					return user.User{ID: id, Email: "b@x.com", Role: role}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_role_value",
			path:           "/api/admin/users/2/role",
			body:           `{"role":"superuser"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_role",
			path:           "/api/admin/users/2/role",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_id",
			path:           "/api/admin/users/abc/role",
			body:           `{"role":"admin"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "target_not_found",
			path: "/api/admin/users/99/role",
			body: `{"role":"admin"}`,
			storeSetup: func(f *fakeAdminStore) {
				f.updateRoleFn = func(ctx context.Context, id int64, role string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeAdminStore{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewAdminHandler(store, &fakeDeleteGate{}, nil)
			r := setupRouter(http.MethodPut, "/api/admin/users/:id/role", h.UpdateRole)

			w := doJSON(t, r, http.MethodPut, tt.path, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestAdminDeleteUser(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		callerID       int64
		gateSetup      func(*fakeDeleteGate)
		storeSetup     func(*fakeAdminStore)
		wantStatusCode int
		wantCode       string
	}{
		{
			name:     "success",
			path:     "/api/admin/users/2",
			callerID: 1,
			gateSetup: func(f *fakeDeleteGate) {
				f.fn = func(ctx context.Context, callerID, targetID int64) (user.User, error) {
					return user.User{ID: callerID, Role: user.RoleAdmin}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:     "self_delete_rejected",
			path:     "/api/admin/users/1",
			callerID: 1,
			gateSetup: func(f *fakeDeleteGate) {
				f.fn = func(ctx context.Context, callerID, targetID int64) (user.User, error) {
					return user.User{}, user.ErrSelfDeletion
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantCode:       "self_delete",
		},
		{
			name:     "caller_vanished",
			path:     "/api/admin/users/2",
			callerID: 1,
			gateSetup: func(f *fakeDeleteGate) {
				f.fn = func(ctx context.Context, callerID, targetID int64) (user.User, error) {
					return user.User{}, user.ErrUnauthenticated
				}
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:     "target_not_found",
			path:     "/api/admin/users/99",
			callerID: 1,
			gateSetup: func(f *fakeDeleteGate) {
				f.fn = func(ctx context.Context, callerID, targetID int64) (user.User, error) {
					return user.User{ID: callerID, Role: user.RoleAdmin}, nil
				}
			},
			storeSetup: func(f *fakeAdminStore) {
				f.deleteFn = func(ctx context.Context, id int64) error {
					return user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			store := &fakeAdminStore{}
			gate := &fakeDeleteGate{}

			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}
			if tt.gateSetup != nil {
				tt.gateSetup(gate)
			}

			h := handlers.NewAdminHandler(store, gate, nil)

			r := gin.New()
			r.DELETE("/api/admin/users/:id", withCaller(tt.callerID), h.DeleteUser)

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				var e apiErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
					t.Fatalf("bad error body: %v", err)
				}
				if e.Error.Code != tt.wantCode {
					t.Fatalf("got code %q, want %q", e.Error.Code, tt.wantCode)
				}
			}
		})
	}
}
