package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"mechmarket-server/models"
)

func buildRoleApp(allowed ...models.Role) *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	verifierMiddleware := verifier.Verify(func() interface{} { return new(AccessToken) })

	app.Get("/guarded", verifierMiddleware, RequireRole(allowed...), func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"userID": ctx.Values().Get("userID"),
			"role":   ctx.Values().Get("role"),
		})
	})
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func signRoleToken(t *testing.T, role models.Role) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, err := signer.Sign(AccessToken{ID: 7, Role: role})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(token)
}

func TestRequireRole(t *testing.T) {
	t.Run("allowed role passes", func(t *testing.T) {
		app := buildRoleApp(models.RoleShop)

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signRoleToken(t, models.RoleShop))
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for allowed role, got %d", resp.Code)
		}
	})

	t.Run("known but disallowed role gets 403", func(t *testing.T) {
		app := buildRoleApp(models.RoleShop)

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signRoleToken(t, models.RoleOwner))
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for disallowed role, got %d", resp.Code)
		}
	})

	t.Run("unknown role is rejected even if listed", func(t *testing.T) {
		bogus := models.Role("SUPERUSER")
		app := buildRoleApp(bogus)

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signRoleToken(t, bogus))
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403 for unknown role, got %d", resp.Code)
		}
	})

	t.Run("no token is rejected", func(t *testing.T) {
		app := buildRoleApp(models.RoleAdmin)

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		resp := httptest.NewRecorder()
		app.ServeHTTP(resp, req)
		if resp.Code == http.StatusOK {
			t.Fatalf("expected non-200 without token, got %d", resp.Code)
		}
	})
}
